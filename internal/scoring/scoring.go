// Package scoring runs the approval, coverage and anomaly models for one
// claim and assembles a single result.
package scoring

import (
	"context"
	"errors"
	"time"

	"myclaim/internal/apperr"
	"myclaim/internal/claims"
	"myclaim/internal/logging"
	"myclaim/internal/metrics"
)

// OutlierLabel is the label an anomaly detector assigns to outliers.
const OutlierLabel = -1

type ApprovalModel interface {
	// Approve returns the predicted class (0 or 1) and the positive-class probability.
	Approve(ctx context.Context, f claims.Features) (int, float64, error)
}

type CoverageModel interface {
	Estimate(ctx context.Context, f claims.Features) (float64, error)
}

type AnomalyModel interface {
	// Detect returns the raw decision-function score and the detector's label.
	Detect(ctx context.Context, f claims.Features) (float64, int, error)
}

type ApprovalOutcome struct {
	Decision    int     `json:"decision"`
	Probability float64 `json:"probability"`
}

type CoverageOutcome struct {
	Amount float64 `json:"amount"`
}

type AnomalyOutcome struct {
	Score     float64 `json:"score"`
	IsAnomaly bool    `json:"is_anomaly"`
}

type Result struct {
	Approval ApprovalOutcome  `json:"approval"`
	Coverage *CoverageOutcome `json:"coverage"`
	Anomaly  *AnomalyOutcome  `json:"anomaly"`
}

type Orchestrator struct {
	approval ApprovalModel
	coverage CoverageModel
	anomaly  AnomalyModel
	loadErr  error
	timeout  time.Duration
	log      logging.Logger
	metrics  *metrics.Metrics
}

type Option func(*Orchestrator)

func WithTimeout(d time.Duration) Option {
	return func(o *Orchestrator) { o.timeout = d }
}

func WithLogger(l logging.Logger) Option {
	return func(o *Orchestrator) { o.log = logging.OrNop(l) }
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(o *Orchestrator) { o.metrics = m }
}

// New returns a ready orchestrator. anomaly may be nil, in which case results
// carry no anomaly block.
func New(approval ApprovalModel, coverage CoverageModel, anomaly AnomalyModel, opts ...Option) *Orchestrator {
	o := &Orchestrator{approval: approval, coverage: coverage, anomaly: anomaly, log: logging.NewNop()}
	for _, opt := range opts {
		opt(o)
	}
	if approval == nil || coverage == nil {
		o.loadErr = errors.New("approval and coverage models are required")
	}
	return o
}

// Unavailable returns an orchestrator that rejects every call with cause.
func Unavailable(cause error, opts ...Option) *Orchestrator {
	o := &Orchestrator{loadErr: cause, log: logging.NewNop()}
	for _, opt := range opts {
		opt(o)
	}
	if o.loadErr == nil {
		o.loadErr = errors.New("models not loaded")
	}
	return o
}

// Ready reports the startup load error, if any. It never changes after construction.
func (o *Orchestrator) Ready() error {
	if o.loadErr == nil {
		return nil
	}
	return apperr.Wrap(o.loadErr, apperr.ModelUnavailable, "scoring models unavailable")
}

func (o *Orchestrator) Score(ctx context.Context, f claims.Features) (Result, error) {
	if err := o.Ready(); err != nil {
		return Result{}, err
	}
	if o.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, o.timeout)
		defer cancel()
	}

	var res Result
	decision, prob, err := o.approval.Approve(ctx, f)
	if err != nil {
		return Result{}, o.upstream("approval", err)
	}
	if decision != 0 && decision != 1 {
		return Result{}, apperr.New(apperr.UpstreamService, "approval model returned a non-binary label")
	}
	res.Approval = ApprovalOutcome{Decision: decision, Probability: prob}
	o.metrics.Decision(decision)

	if decision == 1 {
		amount, err := o.coverage.Estimate(ctx, f)
		if err != nil {
			return Result{}, o.upstream("coverage", err)
		}
		res.Coverage = &CoverageOutcome{Amount: amount}
	}

	if o.anomaly != nil {
		score, label, err := o.anomaly.Detect(ctx, f)
		if err != nil {
			return Result{}, o.upstream("anomaly", err)
		}
		res.Anomaly = &AnomalyOutcome{Score: score, IsAnomaly: label == OutlierLabel}
	}
	return res, nil
}

func (o *Orchestrator) upstream(model string, err error) error {
	o.log.Warn("scoring model call failed", logging.String("model", model), logging.Err(err))
	return apperr.Upstream(model+" model", err)
}
