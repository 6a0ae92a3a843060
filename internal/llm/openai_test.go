package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/sashabaranov/go-openai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func chatServer(t *testing.T, reply string, seen *openai.ChatCompletionRequest) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
		if seen != nil {
			require.NoError(t, json.NewDecoder(r.Body).Decode(seen))
		}
		_ = json.NewEncoder(w).Encode(openai.ChatCompletionResponse{
			ID:    "chatcmpl-1",
			Model: "qwen-turbo",
			Choices: []openai.ChatCompletionChoice{{
				Message:      openai.ChatCompletionMessage{Role: "assistant", Content: reply},
				FinishReason: "stop",
			}},
		})
	}))
	t.Cleanup(server.Close)
	return server
}

func TestCompleteSendsSingleUserMessage(t *testing.T) {
	var seen openai.ChatCompletionRequest
	server := chatServer(t, "  Third-party liability is covered.\n", &seen)

	provider, err := NewOpenAI(Config{
		APIKey:      "test-key",
		BaseURL:     server.URL,
		ChatModel:   "qwen-turbo",
		Temperature: 0.7,
		MaxTokens:   512,
	})
	require.NoError(t, err)

	text, err := provider.Complete(context.Background(), "grounded prompt")
	require.NoError(t, err)
	assert.Equal(t, "Third-party liability is covered.", text)

	assert.Equal(t, "qwen-turbo", seen.Model)
	assert.InDelta(t, 0.7, seen.Temperature, 1e-6)
	assert.Equal(t, 512, seen.MaxTokens)
	require.Len(t, seen.Messages, 1)
	assert.Equal(t, openai.ChatMessageRoleUser, seen.Messages[0].Role)
	assert.Equal(t, "grounded prompt", seen.Messages[0].Content)
}

func TestVisionEmbedsImageAsDataURI(t *testing.T) {
	var raw map[string]any
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&raw))
		_ = json.NewEncoder(w).Encode(openai.ChatCompletionResponse{
			Choices: []openai.ChatCompletionChoice{{
				Message: openai.ChatCompletionMessage{Role: "assistant", Content: `{"damage_severity_score": 0.4}`},
			}},
		})
	}))
	defer server.Close()

	provider, err := NewOpenAI(Config{APIKey: "test-key", BaseURL: server.URL})
	require.NoError(t, err)

	text, err := provider.Vision(context.Background(), VisionRequest{
		Model:       "qwen-vl-plus",
		Instruction: "rate the damage",
		Image:       []byte("img"),
		MIME:        "image/png",
	})
	require.NoError(t, err)
	assert.Equal(t, `{"damage_severity_score": 0.4}`, text)

	assert.Equal(t, "qwen-vl-plus", raw["model"])
	messages := raw["messages"].([]any)
	require.Len(t, messages, 1)
	parts := messages[0].(map[string]any)["content"].([]any)
	require.Len(t, parts, 2)
	image := parts[0].(map[string]any)["image_url"].(map[string]any)
	assert.Equal(t, "data:image/png;base64,aW1n", image["url"])
	assert.Equal(t, "rate the damage", parts[1].(map[string]any)["text"])
}

func TestCompleteUpstreamError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error": {"message": "boom", "type": "server_error"}}`))
	}))
	defer server.Close()

	provider, err := NewOpenAI(Config{APIKey: "test-key", BaseURL: server.URL})
	require.NoError(t, err)
	_, err = provider.Complete(context.Background(), "q")
	assert.Error(t, err)
}

func TestCompleteNoChoices(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(openai.ChatCompletionResponse{})
	}))
	defer server.Close()

	provider, err := NewOpenAI(Config{APIKey: "test-key", BaseURL: server.URL})
	require.NoError(t, err)
	_, err = provider.Complete(context.Background(), "q")
	assert.ErrorContains(t, err, "no choices")
}

func TestCompleteTimeout(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
	}))
	defer server.Close()

	provider, err := NewOpenAI(Config{APIKey: "test-key", BaseURL: server.URL, CompletionTimeout: 20 * time.Millisecond})
	require.NoError(t, err)
	_, err = provider.Complete(context.Background(), "q")
	assert.Error(t, err)
}

func TestNewOpenAIRequiresKey(t *testing.T) {
	_, err := NewOpenAI(Config{})
	assert.Error(t, err)
}

func TestLimiterPerModel(t *testing.T) {
	l := newLimiter(1, 1)
	ctx := context.Background()
	require.NoError(t, l.Wait(ctx, "a"))
	require.NoError(t, l.Wait(ctx, "b"))

	short, cancel := context.WithTimeout(ctx, 10*time.Millisecond)
	defer cancel()
	assert.Error(t, l.Wait(short, "a"))

	var none *limiter
	assert.NoError(t, none.Wait(ctx, "a"))
}
