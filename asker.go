package docrag

import "context"

// Asker provides natural language question answering over ingested documentation.
type Asker interface {
	// Ask answers a question using only the stored chunks nearest to it.
	// Returns ENOTFOUND if the store holds nothing to answer from.
	Ask(ctx context.Context, question string) (string, error)
}

// LanguageModel completes a prompt with a hosted language model.
type LanguageModel interface {
	Complete(ctx context.Context, prompt string) (string, error)
}
