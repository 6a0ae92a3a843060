// Package prompt builds the text sent to the hosted language models.
package prompt

import (
	"strconv"
	"strings"
)

const groundingHeader = "You are an AI assistant specialized in answering questions about insurance policies.\n" +
	"Use only provided context; if missing, say 'The information is not available.'\n\n"

// Grounding labels chunks [1]..[k] with no separator between them and
// appends the question verbatim. Output depends only on its inputs.
func Grounding(query string, chunks []string) string {
	var b strings.Builder
	b.WriteString(groundingHeader)
	b.WriteString("Context:\n")
	for i, c := range chunks {
		b.WriteString("[")
		b.WriteString(strconv.Itoa(i + 1))
		b.WriteString("] ")
		b.WriteString(c)
	}
	b.WriteString("\n\nQuestion: ")
	b.WriteString(query)
	b.WriteString("\n")
	return b.String()
}
