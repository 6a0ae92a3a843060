package queue

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testQueue(t *testing.T) *Queue {
	t.Helper()
	url := os.Getenv("MC_TEST_REDIS_URL")
	if url == "" {
		url = "redis://127.0.0.1:6379/15"
	}
	q, err := New(url)
	require.NoError(t, err)
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := q.Ping(ctx); err != nil {
		_ = q.Close()
		t.Skipf("redis unavailable for queue tests (%s): %v", url, err)
	}
	q.key = "scoring_jobs_test_" + uuid.NewString()
	t.Cleanup(func() {
		_ = q.client.Del(context.Background(), q.key).Err()
		_ = q.Close()
	})
	return q
}

func TestScoringJobsAreFIFO(t *testing.T) {
	q := testQueue(t)
	ctx := context.Background()

	require.NoError(t, q.PushScoringJob(ctx, "a"))
	require.NoError(t, q.PushScoringJob(ctx, "b"))

	depth, err := q.Depth(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), depth)

	first, err := q.PopScoringJob(ctx, time.Second)
	require.NoError(t, err)
	assert.Equal(t, "a", first)
	second, err := q.PopScoringJob(ctx, time.Second)
	require.NoError(t, err)
	assert.Equal(t, "b", second)
}

func TestPopTimesOutEmpty(t *testing.T) {
	q := testQueue(t)
	_, err := q.PopScoringJob(context.Background(), 100*time.Millisecond)
	assert.ErrorIs(t, err, ErrEmpty)
}

func TestNewRejectsBadURL(t *testing.T) {
	_, err := New("not a url")
	assert.Error(t, err)
}
