package llm

import "context"

// Noop stands in when no API key is configured. Every call fails with
// ErrDisabled so callers take their degraded path.
type Noop struct{}

func NewNoop() *Noop {
	return &Noop{}
}

func (n *Noop) Name() string  { return "noop" }
func (n *Noop) Model() string { return "noop" }

func (n *Noop) Complete(context.Context, string) (string, error) {
	return "", ErrDisabled
}

func (n *Noop) Vision(context.Context, VisionRequest) (string, error) {
	return "", ErrDisabled
}
