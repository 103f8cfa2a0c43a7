// Package llm is the provider-neutral seam for text generation. Services depend on
// Generator; platform/gemini and platform/openai implement it.
package llm

import (
	"context"
	"errors"
)

var (
	// ErrUpstreamAuth means the provider rejected our credentials.
	ErrUpstreamAuth = errors.New("ai provider rejected credentials")
	// ErrEmptyResponse means the provider answered without any text.
	ErrEmptyResponse = errors.New("ai provider returned no text")
)

// Image is an inline image attached to a request.
type Image struct {
	Bytes    []byte
	MimeType string
}

type Request struct {
	// Kind names the prompt for spans and metrics (recommendations, custom, diagnosis).
	Kind   string
	System string
	User   string
	Images []Image
	// JSON asks providers that support it for a JSON-only response.
	JSON bool
}

type Generator interface {
	Generate(ctx context.Context, req Request) (string, error)
	Provider() string
}

// GeneratorFunc adapts a function to Generator.
type GeneratorFunc func(ctx context.Context, req Request) (string, error)

func (f GeneratorFunc) Generate(ctx context.Context, req Request) (string, error) {
	return f(ctx, req)
}

func (f GeneratorFunc) Provider() string { return "func" }
