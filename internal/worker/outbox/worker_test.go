package outbox

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	outboxmodel "github.com/1241007/shop-spark-45/internal/service/models/outbox"
)

type recordingOutboxRepo struct {
	deleted     []int64
	retryCounts []int
	retryTimes  []time.Time
}

func (r *recordingOutboxRepo) Insert(context.Context, outboxmodel.Message) error { return nil }

func (r *recordingOutboxRepo) GetPendingMessages(context.Context, int) ([]outboxmodel.Message, error) {
	return nil, nil
}

func (r *recordingOutboxRepo) Delete(_ context.Context, id int64) error {
	r.deleted = append(r.deleted, id)
	return nil
}

func (r *recordingOutboxRepo) UpdateRetry(
	_ context.Context,
	_ int64,
	retryCount int,
	_ string,
	nextRetryAt time.Time,
) error {
	r.retryCounts = append(r.retryCounts, retryCount)
	r.retryTimes = append(r.retryTimes, nextRetryAt)
	return nil
}

func TestScheduleRetry_BackoffFromConfiguredInterval(t *testing.T) {
	repo := &recordingOutboxRepo{}
	w := &Worker{outboxRepo: repo, retryInterval: 15 * time.Second}

	before := time.Now()
	w.scheduleRetry(context.Background(), outboxmodel.Message{
		ID:         7,
		RetryCount: 0,
		MaxRetries: 5,
	}, assert.AnError)

	require.Len(t, repo.retryCounts, 1)
	assert.Equal(t, 1, repo.retryCounts[0])
	assert.Empty(t, repo.deleted)

	// First retry waits 2^1 times the configured interval.
	wait := repo.retryTimes[0].Sub(before)
	assert.InDelta(t, (30 * time.Second).Seconds(), wait.Seconds(), 1)
}

func TestScheduleRetry_DropsExhaustedMessage(t *testing.T) {
	repo := &recordingOutboxRepo{}
	w := &Worker{outboxRepo: repo, retryInterval: 30 * time.Second}

	w.scheduleRetry(context.Background(), outboxmodel.Message{
		ID:         9,
		RetryCount: 4,
		MaxRetries: 5,
	}, assert.AnError)

	assert.Equal(t, []int64{9}, repo.deleted)
	assert.Empty(t, repo.retryCounts)
}
