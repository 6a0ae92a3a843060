package embed

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/sashabaranov/go-openai"
)

// OpenAI calls any OpenAI-compatible /embeddings endpoint (DashScope
// compatible mode by default).
type OpenAI struct {
	client *openai.Client
	model  string
	dim    int
}

func NewOpenAI(apiKey, baseURL, model string, dim int) (*OpenAI, error) {
	if apiKey == "" {
		return nil, errors.New("embedding api key not configured")
	}
	if model == "" {
		model = "text-embedding-v3"
	}
	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}
	return &OpenAI{client: openai.NewClientWithConfig(cfg), model: model, dim: dim}, nil
}

func (o *OpenAI) Name() string {
	return "openai"
}

func (o *OpenAI) Dim() int {
	return o.dim
}

func (o *OpenAI) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	resp, err := o.client.CreateEmbeddings(ctx, openai.EmbeddingRequest{
		Input:          texts,
		Model:          openai.EmbeddingModel(o.model),
		EncodingFormat: openai.EmbeddingEncodingFormatFloat,
	})
	if err != nil {
		return nil, err
	}
	if len(resp.Data) != len(texts) {
		return nil, fmt.Errorf("embedding: got %d vectors for %d inputs", len(resp.Data), len(texts))
	}
	sort.Slice(resp.Data, func(i, j int) bool { return resp.Data[i].Index < resp.Data[j].Index })
	out := make([][]float32, 0, len(resp.Data))
	for _, item := range resp.Data {
		out = append(out, item.Embedding)
	}
	return out, nil
}
