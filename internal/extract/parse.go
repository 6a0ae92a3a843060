// Package extract turns free-form model replies into structured fields.
//
// A reply is first decoded as a JSON object. When that fails each schema
// field is recovered independently from the raw text; fields that cannot be
// recovered are left out, never defaulted.
package extract

import (
	"encoding/json"
	"errors"
	"strconv"
	"strings"

	"myclaim/internal/apperr"
)

type State int

const (
	RawResponse State = iota
	Success
	PartialResult
	TotalFailure
)

func (s State) String() string {
	switch s {
	case Success:
		return "success"
	case PartialResult:
		return "partial"
	case TotalFailure:
		return "failure"
	default:
		return "raw"
	}
}

type Outcome struct {
	State    State
	Result   map[string]any
	Warnings []string
	Err      error
}

// OK reports whether callers can use Result.
func (o Outcome) OK() bool {
	return o.State == Success || o.State == PartialResult
}

var errNotObject = errors.New("reply is not a JSON object")

// Parse runs the reply through JSON decoding and, failing that, per-field
// recovery. A decoded object only counts when it carries at least one schema
// field; other keys ride along with it.
func Parse(raw string, s *Schema) Outcome {
	if obj, decoded, err := decodeObject(raw); err == nil && s.covers(obj) {
		return Outcome{State: Success, Result: obj, Warnings: s.check(decoded)}
	}
	result := recoverFields(raw, s)
	if len(result) == 0 {
		return Outcome{
			State: TotalFailure,
			Err:   apperr.New(apperr.ExtractionIncomplete, "Could not extract required information from response"),
		}
	}
	return Outcome{State: PartialResult, Result: result}
}

// decodeObject returns the object with numbers converted to int64 or
// float64, and the raw decoded value for schema checks.
func decodeObject(raw string) (map[string]any, any, error) {
	text := trimFence(raw)
	dec := json.NewDecoder(strings.NewReader(text))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, nil, err
	}
	if dec.More() {
		return nil, nil, errNotObject
	}
	obj, ok := v.(map[string]any)
	if !ok {
		return nil, nil, errNotObject
	}
	return convertNumbers(obj).(map[string]any), v, nil
}

func trimFence(raw string) string {
	text := strings.TrimSpace(raw)
	if !strings.HasPrefix(text, "```") {
		return text
	}
	text = strings.TrimPrefix(text, "```")
	if i := strings.IndexByte(text, '\n'); i >= 0 {
		// language tag, e.g. ```json
		text = text[i+1:]
	}
	text = strings.TrimSuffix(strings.TrimSpace(text), "```")
	return strings.TrimSpace(text)
}

func convertNumbers(v any) any {
	switch t := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, val := range t {
			out[k] = convertNumbers(val)
		}
		return out
	case []any:
		out := make([]any, len(t))
		for i, val := range t {
			out[i] = convertNumbers(val)
		}
		return out
	case json.Number:
		if n, err := t.Int64(); err == nil {
			return n
		}
		f, _ := t.Float64()
		return f
	default:
		return v
	}
}

func recoverFields(raw string, s *Schema) map[string]any {
	out := map[string]any{}
	for i, f := range s.Fields {
		m := s.patterns[i].FindStringSubmatch(raw)
		if m == nil {
			continue
		}
		if v, ok := coerce(f.Kind, m[1]); ok {
			out[f.Name] = v
		}
	}
	return out
}

func coerce(k Kind, s string) (any, bool) {
	switch k {
	case Bool:
		return strings.EqualFold(s, "true"), true
	case Int:
		n, err := strconv.ParseInt(s, 10, 64)
		return n, err == nil
	case Float:
		f, err := strconv.ParseFloat(s, 64)
		return f, err == nil
	default:
		return s, true
	}
}
