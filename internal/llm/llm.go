// Package llm talks to hosted chat and vision models.
package llm

import (
	"context"
	"encoding/base64"
	"errors"
)

// ErrDisabled is returned by providers that have no upstream configured.
var ErrDisabled = errors.New("llm provider disabled")

// VisionRequest pairs an instruction with one image.
type VisionRequest struct {
	Model       string
	Instruction string
	Image       []byte
	MIME        string
}

// DataURI renders the image the way OpenAI-compatible endpoints accept it
// inside an image_url part.
func (r VisionRequest) DataURI() string {
	mime := r.MIME
	if mime == "" {
		mime = "image/jpeg"
	}
	return "data:" + mime + ";base64," + base64.StdEncoding.EncodeToString(r.Image)
}

type Provider interface {
	// Complete sends prompt as a single user message and returns the reply text.
	Complete(ctx context.Context, prompt string) (string, error)
	Vision(ctx context.Context, req VisionRequest) (string, error)
	Name() string
	Model() string
}
