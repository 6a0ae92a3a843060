// Package embed turns query text into vectors for similarity search.
package embed

import (
	"context"
	"hash/fnv"
	"math"
	"strings"
	"unicode"
)

type Provider interface {
	Embed(ctx context.Context, texts []string) ([][]float32, error)
	Dim() int
	Name() string
}

// Noop hashes lower-cased word tokens into a fixed number of buckets, so
// texts sharing words land near each other without an embedding service.
type Noop struct {
	dim int
}

func NewNoop(dim int) *Noop {
	if dim <= 0 {
		dim = 1024
	}
	return &Noop{dim: dim}
}

func (n *Noop) Name() string { return "noop" }
func (n *Noop) Dim() int     { return n.dim }

func (n *Noop) Embed(_ context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i, text := range texts {
		out[i] = n.hashed(text)
	}
	return out, nil
}

func (n *Noop) hashed(text string) []float32 {
	vec := make([]float32, n.dim)
	words := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	for _, w := range words {
		h := fnv.New64a()
		_, _ = h.Write([]byte(w))
		sum := h.Sum64()
		sign := float32(1)
		if sum>>63 == 1 {
			sign = -1
		}
		vec[sum%uint64(n.dim)] += sign
	}
	return Normalize(vec)
}

// Normalize scales vec in place to unit Euclidean length. A zero vector is
// returned unchanged.
func Normalize(vec []float32) []float32 {
	var sum float64
	for _, v := range vec {
		sum += float64(v) * float64(v)
	}
	if sum == 0 {
		return vec
	}
	inv := 1 / math.Sqrt(sum)
	for i := range vec {
		vec[i] = float32(float64(vec[i]) * inv)
	}
	return vec
}
