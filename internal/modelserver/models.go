package modelserver

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"myclaim/internal/claims"
	"myclaim/internal/logging"
	"myclaim/internal/scoring"
)

type Classifier struct {
	client *Client
	name   string
}

func NewClassifier(c *Client, name string) *Classifier { return &Classifier{client: c, name: name} }

func (m *Classifier) Approve(ctx context.Context, f claims.Features) (int, float64, error) {
	raw, err := m.client.Invoke(ctx, m.name, MethodPredict, f)
	if err != nil {
		return 0, 0, err
	}
	label, err := decodeLabel(raw)
	if err != nil {
		return 0, 0, err
	}
	raw, err = m.client.Invoke(ctx, m.name, MethodPredictProba, f)
	if err != nil {
		return 0, 0, err
	}
	var proba []float64
	if err := json.Unmarshal(raw, &proba); err != nil {
		return 0, 0, fmt.Errorf("%s predict_proba: %w", m.name, err)
	}
	if len(proba) < 2 {
		return 0, 0, fmt.Errorf("%s predict_proba: expected two classes, got %d", m.name, len(proba))
	}
	return label, proba[1], nil
}

type Regressor struct {
	client *Client
	name   string
}

func NewRegressor(c *Client, name string) *Regressor { return &Regressor{client: c, name: name} }

func (m *Regressor) Estimate(ctx context.Context, f claims.Features) (float64, error) {
	raw, err := m.client.Invoke(ctx, m.name, MethodPredict, f)
	if err != nil {
		return 0, err
	}
	return decodeNumber(raw)
}

type Detector struct {
	client *Client
	name   string
}

func NewDetector(c *Client, name string) *Detector { return &Detector{client: c, name: name} }

func (m *Detector) Detect(ctx context.Context, f claims.Features) (float64, int, error) {
	raw, err := m.client.Invoke(ctx, m.name, MethodDecisionFunction, f)
	if err != nil {
		return 0, 0, err
	}
	score, err := decodeNumber(raw)
	if err != nil {
		return 0, 0, err
	}
	raw, err = m.client.Invoke(ctx, m.name, MethodPredict, f)
	if err != nil {
		return 0, 0, err
	}
	label, err := decodeLabel(raw)
	if err != nil {
		return 0, 0, err
	}
	return score, label, nil
}

type Names struct {
	Approval string
	Coverage string
	Anomaly  string
}

// Load checks every configured model once. The orchestrator it returns is
// unready, and the error non-nil, when any model is missing or not loaded;
// the process keeps serving everything except scoring.
func Load(ctx context.Context, c *Client, names Names, log logging.Logger, opts ...scoring.Option) (*scoring.Orchestrator, error) {
	log = logging.OrNop(log)
	if c == nil || c.BaseURL == "" {
		err := errors.New("models.serving_url not configured")
		return scoring.Unavailable(err, opts...), err
	}
	check := []string{names.Approval, names.Coverage}
	if names.Anomaly != "" {
		check = append(check, names.Anomaly)
	}
	for _, name := range check {
		ready, err := c.Ready(ctx, name)
		if err == nil && !ready {
			err = fmt.Errorf("model %s is not ready", name)
		}
		if err != nil {
			log.Error("scoring model unavailable", logging.String("model", name), logging.Err(err))
			return scoring.Unavailable(err, opts...), err
		}
	}

	var anomaly scoring.AnomalyModel
	if names.Anomaly != "" {
		anomaly = NewDetector(c, names.Anomaly)
	}
	log.Info("scoring models ready", logging.Any("models", check))
	return scoring.New(NewClassifier(c, names.Approval), NewRegressor(c, names.Coverage), anomaly, opts...), nil
}
