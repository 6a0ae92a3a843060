package rag

import (
	"regexp"
	"strings"
)

const DefaultAnswer = "I apologize, but I encountered an issue processing your question. Please try again or contact customer support for assistance."

var claimRef = regexp.MustCompile(`claim\s+(\d+)`)

var cannedClaims = map[string]string{
	"1": "Claim #1 was approved on April 15, 2023. The payment of RM3,000 was processed on April 20.",
	"2": "Claim #2 is currently under review. Our adjuster is scheduled to inspect the vehicle on May 25.",
}

type faq struct {
	keyword string
	answer  string
}

// Checked in order; the first keyword found wins.
var faqs = []faq{
	{"policy", "Our standard policy covers third-party liability up to RM10,000, with options to increase coverage."},
	{"claim", "The claim process involves submitting your police report and accident photos through our portal."},
	{"coverage", "Basic coverage includes third-party bodily injury, third-party property damage, and limited own damage."},
	{"contact", "You can contact our support team at support@myclaim.example.com."},
	{"process", "Claims are typically processed within 3-5 business days after submission."},
}

// Fallback answers from canned content when the model path fails. A known
// claim number takes precedence over the keyword table.
func Fallback(query string) string {
	q := strings.ToLower(query)
	if m := claimRef.FindStringSubmatch(q); m != nil {
		if answer, ok := cannedClaims[m[1]]; ok {
			return answer
		}
	}
	for _, f := range faqs {
		if strings.Contains(q, f.keyword) {
			return f.answer
		}
	}
	return DefaultAnswer
}
