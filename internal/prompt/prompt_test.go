package prompt

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGroundingExactFormat(t *testing.T) {
	got := Grounding("What is the third-party limit?", []string{"Limit is RM10,000.", "Own damage is optional."})
	want := "You are an AI assistant specialized in answering questions about insurance policies.\n" +
		"Use only provided context; if missing, say 'The information is not available.'\n\n" +
		"Context:\n[1] Limit is RM10,000.[2] Own damage is optional.\n\n" +
		"Question: What is the third-party limit?\n"
	assert.Equal(t, want, got)
}

func TestGroundingDeterministic(t *testing.T) {
	chunks := []string{"a", "b", "c"}
	assert.Equal(t, Grounding("q", chunks), Grounding("q", chunks))
}

func TestGroundingNoChunks(t *testing.T) {
	got := Grounding("hello", nil)
	assert.True(t, strings.HasSuffix(got, "Context:\n\n\nQuestion: hello\n"))
}

func TestVisionInstructionsAskForJSON(t *testing.T) {
	for name, text := range map[string]string{
		"damage":   Damage,
		"identity": Identity,
		"police":   PoliceReport,
		"policy":   InsurancePolicy,
		"claim":    ClaimReport,
	} {
		assert.Contains(t, text, "JSON", name)
	}
	assert.Contains(t, PoliceReport, `"num_witnesses": 2`)
}
