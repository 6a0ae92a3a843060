// Package modelserver talks to the inference server hosting the approval,
// coverage and anomaly models (KServe v1 style REST).
package modelserver

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"myclaim/internal/claims"
)

const (
	MethodPredict          = "predict"
	MethodPredictProba     = "predict_proba"
	MethodDecisionFunction = "decision_function"
)

type Client struct {
	BaseURL string
	Client  *http.Client
}

func NewClient(baseURL string) *Client {
	return &Client{BaseURL: strings.TrimRight(baseURL, "/"), Client: &http.Client{Timeout: 15 * time.Second}}
}

type modelStatus struct {
	Name  string `json:"name"`
	Ready bool   `json:"ready"`
}

// Ready asks the server whether model name is loaded.
func (c *Client) Ready(ctx context.Context, name string) (bool, error) {
	if c.BaseURL == "" {
		return false, errors.New("model server url not configured")
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.BaseURL+"/v1/models/"+url.PathEscape(name), nil)
	if err != nil {
		return false, err
	}
	resp, err := c.Client.Do(req)
	if err != nil {
		return false, err
	}
	defer resp.Body.Close()
	if resp.StatusCode == http.StatusNotFound {
		return false, nil
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return false, fmt.Errorf("model status %s: http %d", name, resp.StatusCode)
	}
	var st modelStatus
	if err := json.NewDecoder(resp.Body).Decode(&st); err != nil {
		return false, err
	}
	return st.Ready, nil
}

// Invoke runs method on a single feature row and returns the first prediction.
func (c *Client) Invoke(ctx context.Context, name, method string, f claims.Features) (json.RawMessage, error) {
	if c.BaseURL == "" {
		return nil, errors.New("model server url not configured")
	}
	body, err := json.Marshal(map[string]any{
		"columns":   claims.FieldOrder,
		"instances": [][]any{f.Row()},
	})
	if err != nil {
		return nil, err
	}
	endpoint := fmt.Sprintf("%s/v1/models/%s:%s", c.BaseURL, url.PathEscape(name), method)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := c.Client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("%s %s: http %d: %s", name, method, resp.StatusCode, strings.TrimSpace(string(msg)))
	}
	var decoded struct {
		Predictions []json.RawMessage `json:"predictions"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return nil, err
	}
	if len(decoded.Predictions) == 0 {
		return nil, fmt.Errorf("%s %s: empty predictions", name, method)
	}
	return decoded.Predictions[0], nil
}

func decodeNumber(raw json.RawMessage) (float64, error) {
	var f float64
	if err := json.Unmarshal(raw, &f); err == nil {
		return f, nil
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return strconv.ParseFloat(s, 64)
	}
	var b bool
	if err := json.Unmarshal(raw, &b); err == nil {
		if b {
			return 1, nil
		}
		return 0, nil
	}
	return 0, fmt.Errorf("unexpected prediction %s", string(raw))
}

func decodeLabel(raw json.RawMessage) (int, error) {
	f, err := decodeNumber(raw)
	if err != nil {
		return 0, err
	}
	if f != float64(int(f)) {
		return 0, fmt.Errorf("non-integral label %v", f)
	}
	return int(f), nil
}
