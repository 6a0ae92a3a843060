package vector

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// Store is a read-only similarity index. Hits come back in the index's
// native order, most similar first.
type Store interface {
	Search(ctx context.Context, vector []float32, limit int) ([]SearchHit, error)
	Name() string
}

type SearchHit struct {
	ID      string         `json:"id"`
	Score   float64        `json:"score"`
	Payload map[string]any `json:"payload"`
}

// Text returns the payload's "text" field, or "" when absent.
func (h SearchHit) Text() string {
	if s, ok := h.Payload["text"].(string); ok {
		return s
	}
	return ""
}

type Qdrant struct {
	BaseURL    string
	APIKey     string
	Collection string
	Client     *http.Client
}

func NewQdrant(baseURL, apiKey, collection string) *Qdrant {
	if collection == "" {
		collection = "quickstart"
	}
	return &Qdrant{
		BaseURL:    strings.TrimRight(baseURL, "/"),
		APIKey:     apiKey,
		Collection: collection,
		Client:     &http.Client{Timeout: 15 * time.Second},
	}
}

func (q *Qdrant) Name() string { return "qdrant" }

func (q *Qdrant) Search(ctx context.Context, vector []float32, limit int) ([]SearchHit, error) {
	if q.BaseURL == "" {
		return nil, errors.New("qdrant url not configured")
	}
	if limit <= 0 {
		limit = 5
	}
	body := map[string]any{
		"vector":       vector,
		"limit":        limit,
		"with_payload": true,
	}
	payload, _ := json.Marshal(body)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, fmt.Sprintf("%s/collections/%s/points/search", q.BaseURL, q.Collection), bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	if q.APIKey != "" {
		req.Header.Set("api-key", q.APIKey)
	}
	resp, err := q.Client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("qdrant search failed: http %d", resp.StatusCode)
	}
	var decoded struct {
		Result []struct {
			ID      any            `json:"id"`
			Score   float64        `json:"score"`
			Payload map[string]any `json:"payload"`
		} `json:"result"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return nil, err
	}
	out := make([]SearchHit, 0, len(decoded.Result))
	for _, item := range decoded.Result {
		out = append(out, SearchHit{ID: fmt.Sprintf("%v", item.ID), Score: item.Score, Payload: item.Payload})
	}
	return out, nil
}

// DashVector queries an Alibaba Cloud DashVector collection over its REST API.
type DashVector struct {
	Endpoint   string
	APIKey     string
	Collection string
	Client     *http.Client
}

func NewDashVector(endpoint, apiKey, collection string) *DashVector {
	if collection == "" {
		collection = "quickstart"
	}
	endpoint = strings.TrimRight(endpoint, "/")
	if endpoint != "" && !strings.HasPrefix(endpoint, "http://") && !strings.HasPrefix(endpoint, "https://") {
		endpoint = "https://" + endpoint
	}
	return &DashVector{
		Endpoint:   endpoint,
		APIKey:     apiKey,
		Collection: collection,
		Client:     &http.Client{Timeout: 15 * time.Second},
	}
}

func (d *DashVector) Name() string { return "dashvector" }

func (d *DashVector) Search(ctx context.Context, vector []float32, limit int) ([]SearchHit, error) {
	if d.Endpoint == "" {
		return nil, errors.New("dashvector endpoint not configured")
	}
	if limit <= 0 {
		limit = 5
	}
	payload, _ := json.Marshal(map[string]any{
		"vector":         vector,
		"topk":           limit,
		"include_vector": false,
	})
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, fmt.Sprintf("%s/v1/collections/%s/query", d.Endpoint, d.Collection), bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("dashvector-auth-token", d.APIKey)
	resp, err := d.Client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	var decoded struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
		Output  []struct {
			ID     string         `json:"id"`
			Score  float64        `json:"score"`
			Fields map[string]any `json:"fields"`
		} `json:"output"`
	}
	if err := json.Unmarshal(raw, &decoded); err != nil {
		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			return nil, fmt.Errorf("dashvector query failed: http %d", resp.StatusCode)
		}
		return nil, err
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 || decoded.Code != 0 {
		return nil, fmt.Errorf("dashvector query failed: http %d code %d: %s", resp.StatusCode, decoded.Code, decoded.Message)
	}
	out := make([]SearchHit, 0, len(decoded.Output))
	for _, doc := range decoded.Output {
		out = append(out, SearchHit{ID: doc.ID, Score: doc.Score, Payload: doc.Fields})
	}
	return out, nil
}
