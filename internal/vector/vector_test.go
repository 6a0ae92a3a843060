package vector

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDashVectorQuery(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/collections/policies/query", r.URL.Path)
		assert.Equal(t, "secret", r.Header.Get("dashvector-auth-token"))
		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, 2.0, body["topk"])
		_, _ = w.Write([]byte(`{"code":0,"message":"","output":[
			{"id":"a","score":0.12,"fields":{"text":"Third-party cover up to RM10,000."}},
			{"id":"b","score":0.30,"fields":{"title":"no text"}}
		]}`))
	}))
	defer srv.Close()

	dv := NewDashVector(srv.URL, "secret", "policies")
	hits, err := dv.Search(context.Background(), []float32{0.6, 0.8}, 2)
	require.NoError(t, err)
	require.Len(t, hits, 2)
	assert.Equal(t, "Third-party cover up to RM10,000.", hits[0].Text())
	assert.Equal(t, "", hits[1].Text())
	assert.Equal(t, "dashvector", dv.Name())
}

func TestDashVectorErrorCode(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"code":-2,"message":"invalid api key"}`))
	}))
	defer srv.Close()

	_, err := NewDashVector(srv.URL, "bad", "").Search(context.Background(), []float32{1}, 5)
	assert.ErrorContains(t, err, "invalid api key")
}

func TestDashVectorEndpointScheme(t *testing.T) {
	dv := NewDashVector("vrs-sg-example.dashvector.aliyuncs.com/", "k", "")
	assert.Equal(t, "https://vrs-sg-example.dashvector.aliyuncs.com", dv.Endpoint)
	assert.Equal(t, "quickstart", dv.Collection)

	_, err := NewDashVector("", "k", "").Search(context.Background(), nil, 1)
	assert.Error(t, err)
}

func TestQdrantSearch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/collections/quickstart/points/search", r.URL.Path)
		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, 5.0, body["limit"])
		_, _ = w.Write([]byte(`{"result":[{"id":7,"score":0.91,"payload":{"text":"Own damage is limited."}}]}`))
	}))
	defer srv.Close()

	hits, err := NewQdrant(srv.URL, "", "").Search(context.Background(), []float32{1, 0}, 0)
	require.NoError(t, err)
	require.Len(t, hits, 1)
	assert.Equal(t, "7", hits[0].ID)
	assert.Equal(t, "Own damage is limited.", hits[0].Text())
}

func TestQdrantHTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	_, err := NewQdrant(srv.URL, "", "c").Search(context.Background(), []float32{1}, 3)
	assert.Error(t, err)
}
