// Package gemini implements docrag's model-backed services using Google Gemini.
package gemini

// Pinned model identifiers. Ingestion and query must embed with the same model.
const (
	DefaultEmbeddingModel = "gemini-embedding-001"
	DefaultChatModel      = "gemini-2.0-flash"
)

// DefaultDimensions is the requested embedding width. It must match the
// vector column of the store.
const DefaultDimensions = 768
