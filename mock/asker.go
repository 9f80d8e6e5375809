package mock

import (
	"context"

	"github.com/fwojciec/docrag"
)

var (
	_ docrag.Asker         = (*Asker)(nil)
	_ docrag.LanguageModel = (*LanguageModel)(nil)
)

// Asker is a mock implementation of docrag.Asker.
type Asker struct {
	AskFn func(ctx context.Context, question string) (string, error)
}

func (a *Asker) Ask(ctx context.Context, question string) (string, error) {
	return a.AskFn(ctx, question)
}

// LanguageModel is a mock implementation of docrag.LanguageModel.
type LanguageModel struct {
	CompleteFn func(ctx context.Context, prompt string) (string, error)
}

func (m *LanguageModel) Complete(ctx context.Context, prompt string) (string, error) {
	return m.CompleteFn(ctx, prompt)
}
