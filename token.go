package docrag

import "context"

// TokenCounter counts tokens in text for a specific model.
// Used for reporting the size of an ingestion run.
type TokenCounter interface {
	CountTokens(ctx context.Context, text string) (int, error)
}
