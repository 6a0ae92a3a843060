package retrieval

import (
	"context"
	"errors"
	"time"

	"myclaim/internal/apperr"
	"myclaim/internal/embed"
	"myclaim/internal/metrics"
	"myclaim/internal/vector"
)

const DefaultTopK = 5

type Chunk struct {
	Text string `json:"text"`
	Rank int    `json:"rank"`
}

type Retriever struct {
	Embedder      embed.Provider
	Index         vector.Store
	TopK          int
	EmbedTimeout  time.Duration
	SearchTimeout time.Duration
	Metrics       *metrics.Metrics
}

func New(embedder embed.Provider, index vector.Store, topK int) *Retriever {
	if topK <= 0 {
		topK = DefaultTopK
	}
	return &Retriever{Embedder: embedder, Index: index, TopK: topK}
}

// Retrieve embeds query, normalizes the vector and returns at most TopK
// chunks ranked from 1 in the index's order.
func (r *Retriever) Retrieve(ctx context.Context, query string) ([]Chunk, error) {
	if r.Embedder == nil || r.Index == nil {
		return nil, apperr.New(apperr.UpstreamService, "retrieval not configured")
	}
	vec, err := r.embed(ctx, query)
	if err != nil {
		r.Metrics.Upstream("embedding", err)
		return nil, apperr.Upstream("embedding", err)
	}
	r.Metrics.Upstream("embedding", nil)

	searchCtx, cancel := withTimeout(ctx, r.SearchTimeout)
	defer cancel()
	hits, err := r.Index.Search(searchCtx, vec, r.TopK)
	r.Metrics.Upstream("vector_search", err)
	if err != nil {
		return nil, apperr.Upstream("vector search", err)
	}
	if len(hits) > r.TopK {
		hits = hits[:r.TopK]
	}
	out := make([]Chunk, 0, len(hits))
	for i, hit := range hits {
		out = append(out, Chunk{Text: hit.Text(), Rank: i + 1})
	}
	return out, nil
}

func (r *Retriever) embed(ctx context.Context, query string) ([]float32, error) {
	embedCtx, cancel := withTimeout(ctx, r.EmbedTimeout)
	defer cancel()
	vecs, err := r.Embedder.Embed(embedCtx, []string{query})
	if err != nil {
		return nil, err
	}
	if len(vecs) == 0 || len(vecs[0]) == 0 {
		return nil, errors.New("empty embedding")
	}
	return embed.Normalize(vecs[0]), nil
}

// Texts returns the chunk texts in rank order.
func Texts(chunks []Chunk) []string {
	out := make([]string, len(chunks))
	for i, c := range chunks {
		out[i] = c.Text
	}
	return out
}

func withTimeout(ctx context.Context, d time.Duration) (context.Context, context.CancelFunc) {
	if d <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, d)
}
