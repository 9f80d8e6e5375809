package gemini

import (
	"context"
	"sync"

	"github.com/fwojciec/docrag"
	"google.golang.org/genai"
	"google.golang.org/genai/tokenizer"
)

var _ docrag.TokenCounter = (*TokenCounter)(nil)

// TokenCounter counts tokens using the local Gemini tokenizer.
// The tokenizer model is downloaded on first use.
type TokenCounter struct {
	model string

	once sync.Once
	tok  *tokenizer.LocalTokenizer
	err  error
}

// NewTokenCounter creates a new TokenCounter for the given model.
func NewTokenCounter(model string) *TokenCounter {
	return &TokenCounter{model: model}
}

// CountTokens counts the number of tokens in the given text.
func (tc *TokenCounter) CountTokens(ctx context.Context, text string) (int, error) {
	if text == "" {
		return 0, nil
	}

	tc.once.Do(func() {
		tc.tok, tc.err = tokenizer.NewLocalTokenizer(tc.model)
	})
	if tc.err != nil {
		return 0, tc.err
	}

	result, err := tc.tok.CountTokens([]*genai.Content{
		genai.NewContentFromText(text, "user"),
	}, nil)
	if err != nil {
		return 0, err
	}

	return int(result.TotalTokens), nil
}
