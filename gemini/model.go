package gemini

import (
	"context"
	"strings"

	"github.com/fwojciec/docrag"
	"google.golang.org/genai"
)

// Ensure Model implements docrag.LanguageModel at compile time.
var _ docrag.LanguageModel = (*Model)(nil)

// Model implements docrag.LanguageModel using Gemini text generation.
type Model struct {
	client *genai.Client
	name   string
}

// NewModel creates a Model for the named chat model.
// An empty name selects DefaultChatModel.
func NewModel(client *genai.Client, name string) *Model {
	if name == "" {
		name = DefaultChatModel
	}
	return &Model{client: client, name: name}
}

// Complete sends prompt as a single user turn and returns the reply text.
func (m *Model) Complete(ctx context.Context, prompt string) (string, error) {
	if strings.TrimSpace(prompt) == "" {
		return "", docrag.Errorf(docrag.EINVALID, "prompt required")
	}

	result, err := m.client.Models.GenerateContent(ctx, m.name,
		[]*genai.Content{{
			Parts: []*genai.Part{{Text: prompt}},
		}},
		BuildConfig(),
	)
	if err != nil {
		return "", err
	}
	if result == nil {
		return "", docrag.Errorf(docrag.EINTERNAL, "gemini returned nil result")
	}

	return result.Text(), nil
}

// BuildConfig returns the GenerateContentConfig for answer generation.
// A low temperature keeps answers close to the supplied context.
func BuildConfig() *genai.GenerateContentConfig {
	temp := float32(0.2)
	return &genai.GenerateContentConfig{
		Temperature: &temp,
	}
}
