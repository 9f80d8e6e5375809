// Package docrag provides a CLI-based retrieval-augmented question answering
// tool for documentation sites. It crawls a site breadth-first, extracts the
// visible text of each page, splits it into overlapping chunks, embeds the
// chunks and stores them in a vector store. Questions are answered by a
// language model using only the chunks nearest to the question.
//
// This package contains domain types and interfaces following Ben Johnson's
// Standard Package Layout. Implementations live in subdirectories named
// after their primary dependency (e.g., goquery/, gemini/, sqlite/, supabase/).
package docrag
