package extract

import (
	"bytes"
	"encoding/json"
	"fmt"
	"regexp"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

type Kind int

const (
	Bool Kind = iota
	Int
	Float
	String
)

func (k Kind) jsonType() string {
	switch k {
	case Bool:
		return "boolean"
	case Int:
		return "integer"
	case Float:
		return "number"
	default:
		return "string"
	}
}

// pattern matches the value following the literal quoted key.
func (k Kind) pattern(key string) *regexp.Regexp {
	q := regexp.QuoteMeta(key)
	switch k {
	case Bool:
		return regexp.MustCompile(`"` + q + `"\s*:\s*((?i:true|false))`)
	case Int:
		return regexp.MustCompile(`"` + q + `"\s*:\s*(\d+)`)
	case Float:
		return regexp.MustCompile(`"` + q + `"\s*:\s*(\d+(?:\.\d+)?)`)
	default:
		return regexp.MustCompile(`"` + q + `"\s*:\s*"([^"]+)"`)
	}
}

type Field struct {
	Name string
	Kind Kind
}

// Schema names the fields a reply is expected to carry. Build it with
// NewSchema so recovery patterns and the JSON Schema are compiled once.
type Schema struct {
	Name   string
	Fields []Field

	patterns []*regexp.Regexp
	compiled *jsonschema.Schema
}

func NewSchema(name string, fields ...Field) *Schema {
	s := &Schema{Name: name, Fields: fields}
	s.patterns = make([]*regexp.Regexp, len(fields))
	for i, f := range fields {
		s.patterns[i] = f.Kind.pattern(f.Name)
	}
	compiled, err := compile(s.Document())
	if err != nil {
		panic(fmt.Sprintf("extract: schema %s: %v", name, err))
	}
	s.compiled = compiled
	return s
}

// Document renders the schema as a JSON Schema object. Fields are optional.
func (s *Schema) Document() map[string]any {
	props := make(map[string]any, len(s.Fields))
	for _, f := range s.Fields {
		props[f.Name] = map[string]any{"type": f.Kind.jsonType()}
	}
	return map[string]any{
		"$schema":    "http://json-schema.org/draft-07/schema#",
		"title":      s.Name,
		"type":       "object",
		"properties": props,
	}
}

func compile(doc map[string]any) (*jsonschema.Schema, error) {
	raw, err := json.Marshal(doc)
	if err != nil {
		return nil, err
	}
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource("schema.json", bytes.NewReader(raw)); err != nil {
		return nil, err
	}
	return compiler.Compile("schema.json")
}

// check reports JSON Schema violations; it never changes the value.
func (s *Schema) check(v any) []string {
	if s.compiled == nil {
		return nil
	}
	if err := s.compiled.Validate(v); err != nil {
		return []string{err.Error()}
	}
	return nil
}

// covers reports whether obj has a value for any of the schema's fields.
func (s *Schema) covers(obj map[string]any) bool {
	for _, f := range s.Fields {
		if _, ok := obj[f.Name]; ok {
			return true
		}
	}
	return false
}
