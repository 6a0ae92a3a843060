// Package rag answers policy questions from retrieved context, degrading to
// canned answers when any step fails.
package rag

import (
	"context"
	"errors"
	"strings"

	"myclaim/internal/extract"
	"myclaim/internal/llm"
	"myclaim/internal/logging"
	"myclaim/internal/metrics"
	"myclaim/internal/prompt"
	"myclaim/internal/retrieval"
)

const (
	SourceModel    = "model"
	SourceFallback = "fallback"
)

type Answer struct {
	Text   string `json:"answer"`
	Source string `json:"-"`
}

var answerSchema = extract.NewSchema("rag_answer", extract.Field{Name: "answer", Kind: extract.String})

var errEmptyAnswer = errors.New("empty completion")

type Service struct {
	Retriever *retrieval.Retriever
	LLM       llm.Provider
	Log       logging.Logger
	Metrics   *metrics.Metrics
}

func NewService(r *retrieval.Retriever, provider llm.Provider, log logging.Logger, m *metrics.Metrics) *Service {
	return &Service{Retriever: r, LLM: provider, Log: logging.OrNop(log).Named("rag"), Metrics: m}
}

// Answer never fails; the error path ends in Fallback.
func (s *Service) Answer(ctx context.Context, query string) Answer {
	text, err := s.answer(ctx, query)
	if err != nil {
		s.Log.Warn("rag fallback", logging.Err(err))
		s.Metrics.RAGAnswer(SourceFallback)
		return Answer{Text: Fallback(query), Source: SourceFallback}
	}
	s.Metrics.RAGAnswer(SourceModel)
	return Answer{Text: text, Source: SourceModel}
}

func (s *Service) answer(ctx context.Context, query string) (string, error) {
	if s.Retriever == nil || s.LLM == nil {
		return "", errors.New("rag not configured")
	}
	chunks, err := s.Retriever.Retrieve(ctx, query)
	if err != nil {
		return "", err
	}
	completion, err := s.LLM.Complete(ctx, prompt.Grounding(query, retrieval.Texts(chunks)))
	s.Metrics.Upstream("completion", err)
	if err != nil {
		return "", err
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}
	return unwrapAnswer(completion)
}

// unwrapAnswer accepts plain text or a JSON object carrying an "answer" key.
func unwrapAnswer(completion string) (string, error) {
	text := strings.TrimSpace(completion)
	if text == "" {
		return "", errEmptyAnswer
	}
	if !looksWrapped(text) {
		return text, nil
	}
	out := extract.Parse(text, answerSchema)
	if !out.OK() {
		return "", out.Err
	}
	answer, _ := out.Result["answer"].(string)
	if strings.TrimSpace(answer) == "" {
		return "", errEmptyAnswer
	}
	return strings.TrimSpace(answer), nil
}

func looksWrapped(text string) bool {
	t := strings.TrimPrefix(text, "```json")
	t = strings.TrimSpace(strings.TrimPrefix(t, "```"))
	return strings.HasPrefix(t, "{") && strings.Contains(t, `"answer"`)
}
