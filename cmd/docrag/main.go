package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"

	"github.com/alecthomas/kong"
	"github.com/fwojciec/docrag"
	"github.com/fwojciec/docrag/crawl"
	"github.com/fwojciec/docrag/gemini"
	"github.com/fwojciec/docrag/goquery"
	dochttp "github.com/fwojciec/docrag/http"
	"github.com/fwojciec/docrag/ingest"
	"github.com/fwojciec/docrag/rag"
	docslog "github.com/fwojciec/docrag/slog"
	"github.com/fwojciec/docrag/sqlite"
	"github.com/fwojciec/docrag/supabase"
	"google.golang.org/genai"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	m := NewMain()

	// Run reports errors on stderr itself.
	if err := m.Run(ctx, os.Args[1:], os.Stdout, os.Stderr); err != nil {
		stop()
		os.Exit(1)
	}
}

// Main represents the program.
type Main struct {
	// Getenv reads configuration. Set before calling Run().
	Getenv func(string) string

	// Stdin feeds the chat loop.
	Stdin io.Reader

	// SQLite database, opened when the sqlite store is selected.
	DB *sqlite.DB

	// Services for end-to-end testing. Nil fields are built from Config.
	Fetcher      docrag.Fetcher
	Embedder     docrag.Embedder
	Model        docrag.LanguageModel
	Store        docrag.VectorStore
	TokenCounter docrag.TokenCounter
}

// NewMain returns a new instance of Main with defaults.
func NewMain() *Main {
	return &Main{
		Getenv: os.Getenv,
		Stdin:  os.Stdin,
	}
}

// Close gracefully stops the program.
func (m *Main) Close() error {
	if m.DB != nil {
		return m.DB.Close()
	}
	return nil
}

// Run executes the CLI with the given arguments.
func (m *Main) Run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	deps := &Dependencies{
		Ctx:    ctx,
		Stdin:  m.Stdin,
		Stdout: stdout,
		Stderr: stderr,
	}

	cli := &CLI{}
	parser, err := kong.New(cli,
		kong.Name("docrag"),
		kong.Description("Ingest a documentation site into a vector store and answer questions about it."),
		kong.Writers(stdout, stderr),
		kong.Exit(func(int) {}), // Don't exit on help
		kong.Bind(deps),
	)
	if err != nil {
		return fmt.Errorf("failed to create parser: %w", err)
	}

	if len(args) == 0 {
		_, _ = parser.Parse([]string{"--help"})
		fmt.Fprintln(stderr, "error: no command specified")
		return fmt.Errorf("no command specified. Run 'docrag --help' to see available commands")
	}
	if args[0] == "help" || args[0] == "--help" || args[0] == "-h" {
		_, _ = parser.Parse([]string{"--help"})
		return nil
	}

	// Parse arguments first to know which command and its flags
	kongCtx, err := parser.Parse(args)
	if err != nil {
		fmt.Fprintf(stderr, "error: %v\n", err)
		return err
	}
	cmd := strings.Fields(kongCtx.Command())[0]

	level := slog.LevelInfo
	if cli.Verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: level}))
	deps.Logger = logger

	// Configuration problems are fatal before any crawl or query starts.
	cfg := LoadConfig(m.Getenv)
	if cli.DB != "" {
		cfg.DBPath = cli.DB
	}
	if err := cfg.Validate(cli.Store); err != nil {
		fmt.Fprintf(stderr, "error: %s\n", docrag.ErrorMessage(err))
		if cfg.GeminiAPIKey == "" {
			fmt.Fprintln(stderr, "Hint: Get a Gemini API key at https://aistudio.google.com/apikey")
		}
		return err
	}

	var client *genai.Client
	if m.Embedder == nil || m.Model == nil {
		client, err = genai.NewClient(ctx, &genai.ClientConfig{
			APIKey:  cfg.GeminiAPIKey,
			Backend: genai.BackendGeminiAPI,
		})
		if err != nil {
			fmt.Fprintf(stderr, "error: failed to connect to Gemini API: %v\n", err)
			fmt.Fprintln(stderr, "Hint: Check your GEMINI_API_KEY is valid")
			return fmt.Errorf("failed to connect to Gemini API: %w", err)
		}
	}

	embedder := m.Embedder
	if embedder == nil {
		embedder = gemini.NewEmbedder(client)
	}
	embedder = docslog.NewLoggingEmbedder(embedder, logger)

	store, err := m.openStore(cli.Store, cfg, stderr)
	if err != nil {
		return err
	}
	defer m.Close()
	store = docslog.NewLoggingVectorStore(store, logger)

	switch cmd {
	case "ingest":
		splitter, err := docrag.NewSplitter(cli.Ingest.ChunkSize, cli.Ingest.ChunkOverlap)
		if err != nil {
			fmt.Fprintf(stderr, "error: %s\n", docrag.ErrorMessage(err))
			return err
		}

		fetcher := m.Fetcher
		if fetcher == nil {
			fetcher = dochttp.NewFetcher(dochttp.WithTimeout(cli.Ingest.Timeout))
		}

		tokenCounter := m.TokenCounter
		if tokenCounter == nil {
			tokenCounter = gemini.NewTokenCounter(gemini.DefaultChatModel)
		}

		deps.Crawler = &crawl.Crawler{
			Fetcher:   docslog.NewLoggingFetcher(fetcher, logger),
			Extractor: goquery.NewExtractor(),
		}
		if cli.Ingest.Rate > 0 {
			deps.Crawler.RateLimiter = crawl.NewDomainLimiter(cli.Ingest.Rate)
		}

		deps.Ingester = &ingest.Ingester{
			Crawler:      deps.Crawler,
			Splitter:     splitter,
			Embedder:     embedder,
			Store:        store,
			TokenCounter: tokenCounter,
			KeepExisting: cli.Ingest.KeepExisting,
		}

	case "chat", "ask":
		model := m.Model
		if model == nil {
			model = gemini.NewModel(client, gemini.DefaultChatModel)
		}

		topK := cli.Chat.TopK
		if cmd == "ask" {
			topK = cli.Ask.TopK
		}

		deps.Asker = &rag.Asker{
			Embedder: embedder,
			Store:    store,
			Model:    docslog.NewLoggingLanguageModel(model, logger),
			TopK:     topK,
		}
	}

	return kongCtx.Run(deps)
}

// openStore returns the configured vector store, opening the SQLite
// database when that backend is selected.
func (m *Main) openStore(backend string, cfg Config, stderr io.Writer) (docrag.VectorStore, error) {
	if m.Store != nil {
		return m.Store, nil
	}

	if backend == StoreSQLite {
		if err := os.MkdirAll(filepath.Dir(cfg.DBPath), 0o755); err != nil {
			fmt.Fprintf(stderr, "error: %v\n", err)
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
		m.DB = sqlite.NewDB(cfg.DBPath)
		if err := m.DB.Open(); err != nil {
			fmt.Fprintf(stderr, "error: failed to open database at %q: %v\n", cfg.DBPath, err)
			fmt.Fprintln(stderr, "Hint: Set DOCRAG_DB or --db to use a different database path")
			return nil, fmt.Errorf("failed to open database at %q: %w", cfg.DBPath, err)
		}
		return sqlite.NewStore(m.DB), nil
	}

	return supabase.NewStore(cfg.SupabaseURL, cfg.SupabaseKey, supabase.WithTable(cfg.Table)), nil
}
