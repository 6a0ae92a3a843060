package rag

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"myclaim/internal/llm"
	"myclaim/internal/retrieval"
	"myclaim/internal/vector"
)

func TestFallbackLadder(t *testing.T) {
	cases := []struct {
		query string
		want  string
	}{
		{"What happened to claim 1?", cannedClaims["1"]},
		{"status of CLAIM   2 please", cannedClaims["2"]},
		{"what about claim 7", faqs[1].answer},
		{"What does my coverage include?", faqs[2].answer},
		{"policy and coverage limits", faqs[0].answer},
		{"how do I contact you", faqs[3].answer},
		{"how long does it take to PROCESS", faqs[4].answer},
		{"hello there", DefaultAnswer},
		{"", DefaultAnswer},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, Fallback(tc.query), tc.query)
	}
}

func TestFallbackExactTexts(t *testing.T) {
	assert.Equal(t, "Claim #1 was approved on April 15, 2023. The payment of RM3,000 was processed on April 20.", Fallback("claim 1"))
	assert.Equal(t, "Basic coverage includes third-party bodily injury, third-party property damage, and limited own damage.", Fallback("coverage"))
}

type stubEmbedder struct{}

func (stubEmbedder) Embed(_ context.Context, texts []string) ([][]float32, error) {
	return [][]float32{{1, 1}}, nil
}
func (stubEmbedder) Dim() int     { return 2 }
func (stubEmbedder) Name() string { return "stub" }

type stubIndex struct {
	err error
}

func (s stubIndex) Search(context.Context, []float32, int) ([]vector.SearchHit, error) {
	if s.err != nil {
		return nil, s.err
	}
	return []vector.SearchHit{{Payload: map[string]any{"text": "Third-party limit is RM10,000."}}}, nil
}
func (stubIndex) Name() string { return "stub" }

type stubLLM struct {
	reply  string
	err    error
	prompt string
}

func (s *stubLLM) Complete(_ context.Context, p string) (string, error) {
	s.prompt = p
	return s.reply, s.err
}
func (s *stubLLM) Vision(context.Context, llm.VisionRequest) (string, error) {
	return "", llm.ErrDisabled
}
func (s *stubLLM) Name() string  { return "stub" }
func (s *stubLLM) Model() string { return "stub" }

func newService(index vector.Store, provider llm.Provider) *Service {
	return NewService(retrieval.New(stubEmbedder{}, index, 5), provider, nil, nil)
}

func TestAnswerFromModel(t *testing.T) {
	provider := &stubLLM{reply: " The limit is RM10,000. "}
	ans := newService(stubIndex{}, provider).Answer(context.Background(), "What is the policy limit?")

	assert.Equal(t, Answer{Text: "The limit is RM10,000.", Source: SourceModel}, ans)
	assert.Contains(t, provider.prompt, "[1] Third-party limit is RM10,000.")
	assert.Contains(t, provider.prompt, "Question: What is the policy limit?\n")
}

func TestAnswerUnwrapsJSON(t *testing.T) {
	provider := &stubLLM{reply: "```json\n{\"answer\": \"Covered up to RM10,000.\"}\n```"}
	ans := newService(stubIndex{}, provider).Answer(context.Background(), "limit?")
	assert.Equal(t, "Covered up to RM10,000.", ans.Text)
	assert.Equal(t, SourceModel, ans.Source)
}

func TestAnswerRecoversBrokenJSON(t *testing.T) {
	provider := &stubLLM{reply: `{"answer": "Covered up to RM10,000.", "sources": [1,`}
	ans := newService(stubIndex{}, provider).Answer(context.Background(), "limit?")
	assert.Equal(t, "Covered up to RM10,000.", ans.Text)
}

func TestAnswerFallsBack(t *testing.T) {
	cases := map[string]*Service{
		"retrieval failure":  newService(stubIndex{err: errors.New("index down")}, &stubLLM{reply: "x"}),
		"completion failure": newService(stubIndex{}, &stubLLM{err: errors.New("quota")}),
		"empty completion":   newService(stubIndex{}, &stubLLM{reply: "   "}),
		"unusable json":      newService(stubIndex{}, &stubLLM{reply: `{"answer": 42`}),
		"disabled model":     newService(stubIndex{}, llm.NewNoop()),
		"not configured":     NewService(nil, nil, nil, nil),
	}
	for name, svc := range cases {
		ans := svc.Answer(context.Background(), "tell me about claim 2")
		require.Equal(t, SourceFallback, ans.Source, name)
		assert.Equal(t, cannedClaims["2"], ans.Text, name)
	}
}
