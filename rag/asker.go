// Package rag answers questions by retrieval-augmented generation over a
// docrag.VectorStore.
package rag

import (
	"context"
	"strings"

	"github.com/fwojciec/docrag"
)

// DefaultTopK is the number of chunks retrieved per question.
const DefaultTopK = 4

// PromptTemplate is filled with the retrieved context and the question.
const PromptTemplate = `You are a helpful AI assistant. Use the following context to answer accurately. If the answer is not in the context, say so.

Context:
{context}

Question: {question}
Answer:`

// Ensure Asker implements docrag.Asker at compile time.
var _ docrag.Asker = (*Asker)(nil)

// Asker embeds a question, retrieves the nearest chunks and asks a language
// model to answer from them. It keeps no state between questions.
type Asker struct {
	Embedder docrag.Embedder
	Store    docrag.VectorStore
	Model    docrag.LanguageModel

	// TopK is the number of chunks retrieved. Defaults to DefaultTopK.
	TopK int
}

// Ask answers question from the stored chunks.
func (a *Asker) Ask(ctx context.Context, question string) (string, error) {
	question = strings.TrimSpace(question)
	if question == "" {
		return "", docrag.Errorf(docrag.EINVALID, "question required")
	}

	vector, err := a.Embedder.Embed(ctx, question)
	if err != nil {
		return "", err
	}

	k := a.TopK
	if k <= 0 {
		k = DefaultTopK
	}
	rows, err := a.Store.TopK(ctx, vector, k)
	if err != nil {
		return "", err
	}
	if len(rows) == 0 {
		return "", docrag.Errorf(docrag.ENOTFOUND, "no documents found; run ingest first")
	}

	return a.Model.Complete(ctx, BuildPrompt(rows, question))
}

// BuildPrompt fills PromptTemplate with rows and question.
func BuildPrompt(rows []*docrag.StoredRow, question string) string {
	return strings.NewReplacer(
		"{context}", docrag.FormatContext(rows),
		"{question}", question,
	).Replace(PromptTemplate)
}
