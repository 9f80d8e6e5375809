package main

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/fwojciec/docrag"
	"github.com/fwojciec/docrag/supabase"
)

// Store backends selectable with --store.
const (
	StoreSupabase = "supabase"
	StoreSQLite   = "sqlite"
)

// Config holds settings read from the environment.
type Config struct {
	SupabaseURL  string
	SupabaseKey  string
	GeminiAPIKey string
	Table        string
	DBPath       string
}

// LoadConfig reads the configuration through getenv, applying defaults.
func LoadConfig(getenv func(string) string) Config {
	c := Config{
		SupabaseURL:  getenv("SUPABASE_URL"),
		SupabaseKey:  getenv("SUPABASE_SERVICE_KEY"),
		GeminiAPIKey: getenv("GEMINI_API_KEY"),
		Table:        getenv("DOCRAG_TABLE"),
		DBPath:       getenv("DOCRAG_DB"),
	}
	if c.Table == "" {
		c.Table = supabase.DefaultTable
	}
	if c.DBPath == "" {
		c.DBPath = defaultDBPath()
	}
	return c
}

// Validate reports every required variable missing for the given store.
func (c Config) Validate(store string) error {
	var missing []string
	if c.GeminiAPIKey == "" {
		missing = append(missing, "GEMINI_API_KEY")
	}
	if store == StoreSupabase {
		if c.SupabaseURL == "" {
			missing = append(missing, "SUPABASE_URL")
		}
		if c.SupabaseKey == "" {
			missing = append(missing, "SUPABASE_SERVICE_KEY")
		}
	}
	if len(missing) > 0 {
		return docrag.Errorf(docrag.EINVALID, "missing environment variables: %s", strings.Join(missing, ", "))
	}
	return nil
}

func defaultDBPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "docrag.db"
	}
	return filepath.Join(home, ".docrag", "docrag.db")
}
