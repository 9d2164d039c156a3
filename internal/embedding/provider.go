// Package embedding provides text embedding generation for similarity search.
package embedding

import (
	"context"
	"fmt"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

// Provider is an abstraction over embedding model providers.
// Embed is order-preserving and deterministic: the same text always
// maps to the same vector.
type Provider interface {
	// Embed generates one fixed-dimension vector per input text
	Embed(ctx context.Context, texts []string) ([][]float32, error)
	// Dimension returns the vector dimension this provider produces
	Dimension() int
	// Close releases any resources held by the provider
	Close() error
}

// GeminiProvider implements Provider using Google's embedding models.
type GeminiProvider struct {
	client    *genai.Client
	model     string
	dimension int
}

// NewGeminiProvider creates a Gemini-backed embedding provider.
func NewGeminiProvider(ctx context.Context, apiKey, model string, dimension int) (*GeminiProvider, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("API key is required")
	}
	if dimension <= 0 {
		return nil, fmt.Errorf("embedding dimension must be positive, got %d", dimension)
	}

	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	return &GeminiProvider{
		client:    client,
		model:     model,
		dimension: dimension,
	}, nil
}

// Embed generates embeddings for texts in a single batch call.
func (p *GeminiProvider) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	model := p.client.EmbeddingModel(p.model)
	batch := model.NewBatch()
	for _, text := range texts {
		batch = batch.AddContent(genai.Text(text))
	}

	resp, err := model.BatchEmbedContents(ctx, batch)
	if err != nil {
		return nil, fmt.Errorf("failed to embed %d texts: %w", len(texts), err)
	}
	if len(resp.Embeddings) != len(texts) {
		return nil, fmt.Errorf("embedding count mismatch: sent %d texts, got %d vectors", len(texts), len(resp.Embeddings))
	}

	vectors := make([][]float32, len(resp.Embeddings))
	for i, e := range resp.Embeddings {
		if len(e.Values) < p.dimension {
			return nil, fmt.Errorf("model %s returned %d dims, need %d", p.model, len(e.Values), p.dimension)
		}
		// The model family supports Matryoshka truncation; cosine
		// distance is scale-invariant so no renormalization is needed.
		vectors[i] = e.Values[:p.dimension]
	}
	return vectors, nil
}

// Dimension returns the configured vector dimension.
func (p *GeminiProvider) Dimension() int {
	return p.dimension
}

// Close releases resources held by the underlying client.
func (p *GeminiProvider) Close() error {
	if p.client != nil {
		return p.client.Close()
	}
	return nil
}
