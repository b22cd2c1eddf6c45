// embeddings/noop.go
package embeddings

import (
	"context"
	"fmt"
)

// NoopProvider is used when no embedding/categorization provider key is
// configured. Both methods fail so the ingestor applies its documented
// fallbacks (nil embedding, ["Fun"] categories) rather than silently
// returning fabricated data.
type NoopProvider struct{}

func (NoopProvider) Embed(ctx context.Context, text string) ([]float64, error) {
	return nil, fmt.Errorf("external failure: no embedding provider configured")
}

func (NoopProvider) Categorize(ctx context.Context, text string) ([]string, error) {
	return nil, fmt.Errorf("external failure: no categorization provider configured")
}
