package main

import (
	"context"
	"io"
	"log/slog"
	"time"

	"github.com/fwojciec/docrag"
	"github.com/fwojciec/docrag/crawl"
	"github.com/fwojciec/docrag/ingest"
)

// Dependencies holds all services and configuration for command execution.
type Dependencies struct {
	Ctx      context.Context
	Stdin    io.Reader
	Stdout   io.Writer
	Stderr   io.Writer
	Logger   *slog.Logger
	Crawler  *crawl.Crawler
	Ingester *ingest.Ingester
	Asker    docrag.Asker
}

// CLI defines the command-line interface structure for Kong.
type CLI struct {
	Verbose bool   `short:"v" help:"Enable debug logging"`
	Store   string `enum:"supabase,sqlite" default:"supabase" help:"Vector store backend (supabase, sqlite)"`
	DB      string `name:"db" help:"SQLite database path (defaults to $DOCRAG_DB or ~/.docrag/docrag.db)"`

	Ingest IngestCmd `cmd:"" help:"Crawl a documentation site and store its embedded chunks"`
	Chat   ChatCmd   `cmd:"" help:"Answer questions interactively from the stored documentation"`
	Ask    AskCmd    `cmd:"" help:"Answer a single question from the stored documentation"`
}

// IngestCmd is the "ingest" subcommand.
type IngestCmd struct {
	URL          string        `arg:"" help:"Seed URL to start crawling from"`
	Scope        string        `help:"Only crawl URLs starting with this prefix (defaults to the seed URL)"`
	MaxPages     int           `default:"50" help:"Maximum number of URLs to fetch"`
	ChunkSize    int           `default:"1500" help:"Maximum chunk length in characters"`
	ChunkOverlap int           `default:"300" help:"Characters shared by consecutive chunks"`
	Timeout      time.Duration `default:"10s" help:"Per-page fetch timeout"`
	Rate         float64       `default:"0" help:"Requests per second per host (0 disables limiting)"`
	KeepExisting bool          `help:"Append chunks instead of replacing rows stored for the same pages"`
}

// ChatCmd is the "chat" subcommand.
type ChatCmd struct {
	TopK int `default:"4" help:"Number of chunks retrieved per question"`
}

// AskCmd is the "ask" subcommand.
type AskCmd struct {
	Question string `arg:"" help:"Question to ask about the documentation"`
	TopK     int    `default:"4" help:"Number of chunks retrieved for the question"`
}
