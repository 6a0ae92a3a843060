package retrieval

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"myclaim/internal/apperr"
	"myclaim/internal/vector"
)

type fixedEmbedder struct {
	vec []float32
	err error
}

func (f fixedEmbedder) Embed(context.Context, []string) ([][]float32, error) {
	if f.err != nil {
		return nil, f.err
	}
	return [][]float32{append([]float32(nil), f.vec...)}, nil
}
func (f fixedEmbedder) Dim() int     { return len(f.vec) }
func (f fixedEmbedder) Name() string { return "fixed" }

type recordingIndex struct {
	got   []float32
	limit int
	hits  []vector.SearchHit
	err   error
}

func (r *recordingIndex) Search(_ context.Context, vec []float32, limit int) ([]vector.SearchHit, error) {
	r.got = vec
	r.limit = limit
	return r.hits, r.err
}
func (r *recordingIndex) Name() string { return "recording" }

func hit(text string) vector.SearchHit {
	return vector.SearchHit{Payload: map[string]any{"text": text}}
}

func TestRetrieveNormalizesAndRanks(t *testing.T) {
	idx := &recordingIndex{hits: []vector.SearchHit{hit("first"), {Payload: map[string]any{}}, hit("third")}}
	r := New(fixedEmbedder{vec: []float32{3, 4}}, idx, 0)

	chunks, err := r.Retrieve(context.Background(), "what is covered?")
	require.NoError(t, err)

	assert.Equal(t, DefaultTopK, idx.limit)
	var sum float64
	for _, v := range idx.got {
		sum += float64(v) * float64(v)
	}
	assert.InDelta(t, 1.0, math.Sqrt(sum), 1e-6)

	assert.Equal(t, []Chunk{{"first", 1}, {"", 2}, {"third", 3}}, chunks)
	assert.Equal(t, []string{"first", "", "third"}, Texts(chunks))
}

func TestRetrieveCapsAtTopK(t *testing.T) {
	idx := &recordingIndex{hits: []vector.SearchHit{hit("a"), hit("b"), hit("c")}}
	chunks, err := New(fixedEmbedder{vec: []float32{1}}, idx, 2).Retrieve(context.Background(), "q")
	require.NoError(t, err)
	assert.Len(t, chunks, 2)
}

func TestRetrieveFailuresAreUpstream(t *testing.T) {
	_, err := New(fixedEmbedder{err: errors.New("quota")}, &recordingIndex{}, 5).Retrieve(context.Background(), "q")
	assert.True(t, apperr.Is(err, apperr.UpstreamService))

	_, err = New(fixedEmbedder{vec: []float32{1}}, &recordingIndex{err: errors.New("down")}, 5).Retrieve(context.Background(), "q")
	assert.True(t, apperr.Is(err, apperr.UpstreamService))

	_, err = New(nil, nil, 5).Retrieve(context.Background(), "q")
	assert.True(t, apperr.Is(err, apperr.UpstreamService))
}
