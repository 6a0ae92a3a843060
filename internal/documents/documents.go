// Package documents runs uploaded claim documents through a vision model and
// turns the reply into structured fields.
package documents

import (
	"context"
	"time"

	"myclaim/internal/apperr"
	"myclaim/internal/extract"
	"myclaim/internal/llm"
	"myclaim/internal/logging"
	"myclaim/internal/metrics"
)

// Archiver keeps a copy of each upload. objectstore.Store satisfies it.
type Archiver interface {
	Put(ctx context.Context, kind string, data []byte, contentType string) (string, error)
}

type Models struct {
	Damage   string
	Document string
}

type Service struct {
	LLM     llm.Provider
	Models  Models
	Archive Archiver
	Log     logging.Logger
	Metrics *metrics.Metrics
	Now     func() time.Time
}

func NewService(provider llm.Provider, models Models, archive Archiver, log logging.Logger, m *metrics.Metrics) *Service {
	return &Service{
		LLM:     provider,
		Models:  models,
		Archive: archive,
		Log:     logging.OrNop(log).Named("documents"),
		Metrics: m,
		Now:     time.Now,
	}
}

func (s *Service) model(kind Kind) string {
	if kind.damage {
		return s.Models.Damage
	}
	return s.Models.Document
}

// Analyze returns the extracted and derived fields for one image. Partial
// results are returned as-is; a reply with nothing recoverable is an
// ExtractionIncomplete error.
func (s *Service) Analyze(ctx context.Context, kind Kind, image []byte, contentType string) (map[string]any, error) {
	if len(image) == 0 {
		return nil, apperr.Invalid("file", "empty upload")
	}
	if s.LLM == nil {
		return nil, apperr.New(apperr.UpstreamService, "vision model not configured")
	}
	log := s.Log.With(logging.String("kind", kind.Name))
	s.archive(ctx, log, kind, image, contentType)

	raw, err := s.LLM.Vision(ctx, llm.VisionRequest{
		Model:       s.model(kind),
		Instruction: kind.Instruction,
		Image:       image,
		MIME:        contentType,
	})
	s.Metrics.Upstream("vision", err)
	if err != nil {
		return nil, apperr.Upstream("vision model", err)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	out := extract.Parse(raw, kind.Schema)
	s.Metrics.Extraction(kind.Name, out.State.String())
	for _, w := range out.Warnings {
		log.Warn("extraction schema mismatch", logging.String("detail", w))
	}
	if !out.OK() {
		log.Warn("extraction failed", logging.Int("reply_len", len(raw)))
		return nil, out.Err
	}
	if out.State == extract.PartialResult {
		log.Info("extraction recovered partially", logging.Int("fields", len(out.Result)))
	}
	return Assemble(kind, out.Result, s.now()), nil
}

func (s *Service) archive(ctx context.Context, log logging.Logger, kind Kind, image []byte, contentType string) {
	if s.Archive == nil || ctx.Err() != nil {
		return
	}
	key, err := s.Archive.Put(ctx, kind.Name, image, contentType)
	if err != nil {
		log.Warn("archive upload failed", logging.Err(err))
		return
	}
	log.Debug("archived upload", logging.String("key", key))
}

func (s *Service) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}
