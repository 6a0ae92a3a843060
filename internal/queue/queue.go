// Package queue carries claim scoring jobs over a Redis list.
package queue

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

const scoringKey = "scoring_jobs"

// ErrEmpty is returned by PopScoringJob when the wait timed out.
var ErrEmpty = errors.New("queue empty")

type Queue struct {
	client *redis.Client
	key    string
}

func New(url string) (*Queue, error) {
	opt, err := redis.ParseURL(url)
	if err != nil {
		return nil, err
	}
	return &Queue{client: redis.NewClient(opt), key: scoringKey}, nil
}

func (q *Queue) Ping(ctx context.Context) error {
	return q.client.Ping(ctx).Err()
}

func (q *Queue) PushScoringJob(ctx context.Context, claimID string) error {
	return q.client.LPush(ctx, q.key, claimID).Err()
}

// PopScoringJob blocks up to timeout for the oldest queued claim ID.
func (q *Queue) PopScoringJob(ctx context.Context, timeout time.Duration) (string, error) {
	res, err := q.client.BRPop(ctx, timeout, q.key).Result()
	if errors.Is(err, redis.Nil) {
		return "", ErrEmpty
	}
	if err != nil {
		return "", err
	}
	if len(res) < 2 {
		return "", ErrEmpty
	}
	return res[1], nil
}

func (q *Queue) Depth(ctx context.Context) (int64, error) {
	return q.client.LLen(ctx, q.key).Result()
}

func (q *Queue) Close() error {
	return q.client.Close()
}
