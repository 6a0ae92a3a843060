// Package worker scores queued claims in the background.
package worker

import (
	"context"
	"errors"
	"time"

	"myclaim/internal/claims"
	"myclaim/internal/logging"
	"myclaim/internal/metrics"
	"myclaim/internal/queue"
	"myclaim/internal/scoring"
	"myclaim/internal/store"
)

type Jobs interface {
	PopScoringJob(ctx context.Context, timeout time.Duration) (string, error)
	Depth(ctx context.Context) (int64, error)
}

type Claims interface {
	GetClaim(ctx context.Context, id string) (store.Claim, error)
	SetScoring(ctx context.Context, id string, approved bool, coverage *float64) error
}

type Scorer interface {
	Score(ctx context.Context, f claims.Features) (scoring.Result, error)
}

type Worker struct {
	Jobs        Jobs
	Claims      Claims
	Scorer      Scorer
	PollTimeout time.Duration
	Log         logging.Logger
	Metrics     *metrics.Metrics
}

func New(jobs Jobs, claimStore Claims, scorer Scorer, log logging.Logger, m *metrics.Metrics) *Worker {
	return &Worker{
		Jobs:        jobs,
		Claims:      claimStore,
		Scorer:      scorer,
		PollTimeout: 5 * time.Second,
		Log:         logging.OrNop(log).Named("worker"),
		Metrics:     m,
	}
}

// Run pops jobs until ctx is cancelled. A failed job is logged and dropped.
func (w *Worker) Run(ctx context.Context) error {
	w.Log.Info("worker started")
	for {
		if err := ctx.Err(); err != nil {
			w.Log.Info("worker stopped")
			return nil
		}
		id, err := w.Jobs.PopScoringJob(ctx, w.PollTimeout)
		if err != nil {
			if !errors.Is(err, queue.ErrEmpty) && ctx.Err() == nil {
				w.Log.Warn("queue pop failed", logging.Err(err))
				sleep(ctx, time.Second)
			}
			w.reportDepth(ctx)
			continue
		}
		if err := w.Process(ctx, id); err != nil {
			w.Log.Warn("scoring job failed", logging.String("claim_id", id), logging.Err(err))
			continue
		}
		w.reportDepth(ctx)
	}
}

// Process scores one stored claim and writes the outcome back. Coverage is
// stored only for approved claims.
func (w *Worker) Process(ctx context.Context, id string) error {
	c, err := w.Claims.GetClaim(ctx, id)
	if err != nil {
		return err
	}
	if err := c.Features.Validate(); err != nil {
		return err
	}
	res, err := w.Scorer.Score(ctx, c.Features)
	if err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	var coverage *float64
	if res.Coverage != nil {
		amount := res.Coverage.Amount
		coverage = &amount
	}
	if err := w.Claims.SetScoring(ctx, id, res.Approval.Decision == 1, coverage); err != nil {
		return err
	}
	w.Log.Info("claim scored",
		logging.String("claim_id", id),
		logging.Int("decision", res.Approval.Decision),
		logging.Float64("probability", res.Approval.Probability))
	return nil
}

func (w *Worker) reportDepth(ctx context.Context) {
	if w.Metrics == nil || ctx.Err() != nil {
		return
	}
	if n, err := w.Jobs.Depth(ctx); err == nil {
		w.Metrics.QueueDepth(n)
	}
}

func sleep(ctx context.Context, d time.Duration) {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
	case <-t.C:
	}
}
