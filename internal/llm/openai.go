package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/sashabaranov/go-openai"
)

// DashScopeBaseURL is the OpenAI-compatible endpoint of Alibaba Model Studio.
const DashScopeBaseURL = "https://dashscope-intl.aliyuncs.com/compatible-mode/v1"

type Config struct {
	APIKey            string
	BaseURL           string
	ChatModel         string
	Temperature       float32
	MaxTokens         int
	CompletionTimeout time.Duration
	VisionTimeout     time.Duration
	RequestsPerSecond float64
}

type OpenAI struct {
	client  *openai.Client
	cfg     Config
	limiter *limiter
}

func NewOpenAI(cfg Config) (*OpenAI, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("llm api key not configured")
	}
	if cfg.ChatModel == "" {
		cfg.ChatModel = "qwen-turbo"
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = DashScopeBaseURL
	}
	clientConfig := openai.DefaultConfig(cfg.APIKey)
	clientConfig.BaseURL = cfg.BaseURL
	return &OpenAI{
		client:  openai.NewClientWithConfig(clientConfig),
		cfg:     cfg,
		limiter: newLimiter(cfg.RequestsPerSecond, int(cfg.RequestsPerSecond)+1),
	}, nil
}

func (o *OpenAI) Name() string  { return "openai" }
func (o *OpenAI) Model() string { return o.cfg.ChatModel }

func (o *OpenAI) Complete(ctx context.Context, prompt string) (string, error) {
	return o.chat(ctx, o.cfg.CompletionTimeout, openai.ChatCompletionRequest{
		Model: o.cfg.ChatModel,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
		Temperature: o.cfg.Temperature,
		MaxTokens:   o.cfg.MaxTokens,
	})
}

func (o *OpenAI) Vision(ctx context.Context, req VisionRequest) (string, error) {
	model := req.Model
	if model == "" {
		model = o.cfg.ChatModel
	}
	return o.chat(ctx, o.cfg.VisionTimeout, openai.ChatCompletionRequest{
		Model: model,
		Messages: []openai.ChatCompletionMessage{
			{
				Role: openai.ChatMessageRoleUser,
				MultiContent: []openai.ChatMessagePart{
					{
						Type:     openai.ChatMessagePartTypeImageURL,
						ImageURL: &openai.ChatMessageImageURL{URL: req.DataURI()},
					},
					{Type: openai.ChatMessagePartTypeText, Text: req.Instruction},
				},
			},
		},
	})
}

func (o *OpenAI) chat(ctx context.Context, timeout time.Duration, req openai.ChatCompletionRequest) (string, error) {
	if err := o.limiter.Wait(ctx, req.Model); err != nil {
		return "", err
	}
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}
	resp, err := o.client.CreateChatCompletion(ctx, req)
	if err != nil {
		return "", fmt.Errorf("chat completion %s: %w", req.Model, err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("chat completion %s: no choices", req.Model)
	}
	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}
