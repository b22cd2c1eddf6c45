// embeddings/embedder.go
package embeddings

import "context"

// Vocabulary is the fixed category vocabulary new entries are categorized
// against. Categorize must never return a category outside this list.
var Vocabulary = []string{
	"Tech", "AI", "Music", "Fun", "News", "Science",
	"Sports", "Food", "Travel", "Art", "Business", "Health",
}

// Embedder generates a dense semantic vector for a piece of text. A nil,
// nil return means the caller could not produce an embedding and the
// candidate should be treated as embedding-less rather than failed.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float64, error)
}

// Categorizer assigns one or two categories from Vocabulary to a piece of
// text.
type Categorizer interface {
	Categorize(ctx context.Context, text string) ([]string, error)
}

// Provider bundles both capabilities behind a single configured backend.
type Provider interface {
	Embedder
	Categorizer
}
