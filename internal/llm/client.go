package llm

import (
	"context"
)

// Client is a generative completion endpoint: one prompt in, full text out.
// No streaming; the pipeline waits for the complete response.
type Client interface {
	Generate(ctx context.Context, prompt string) (string, error)
}
