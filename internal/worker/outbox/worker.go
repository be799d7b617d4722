package outbox

import (
	"context"
	"log/slog"
	"math"
	"time"

	"github.com/spf13/viper"
	"github.com/streadway/amqp"

	"github.com/1241007/shop-spark-45/internal/dal/interfaces/ioutboxrepo"
	"github.com/1241007/shop-spark-45/internal/dal/rabbitmq"
	outboxmodel "github.com/1241007/shop-spark-45/internal/service/models/outbox"
)

// Worker drains audit events from the outbox table into RabbitMQ.
type Worker struct {
	outboxRepo    ioutboxrepo.IOutboxRepository
	rabbitClient  *rabbitmq.Client
	pollInterval  time.Duration
	batchSize     int
	retryInterval time.Duration
	stopCh        chan struct{}
}

// NewWorker creates a new outbox worker.
func NewWorker(
	outboxRepo ioutboxrepo.IOutboxRepository,
	rabbitClient *rabbitmq.Client,
) *Worker {
	pollIntervalSeconds := viper.GetInt("rabbitmq.outbox.poll_interval_seconds")
	if pollIntervalSeconds == 0 {
		pollIntervalSeconds = 10
	}

	batchSize := viper.GetInt("rabbitmq.outbox.batch_size")
	if batchSize == 0 {
		batchSize = 100
	}

	retryIntervalSeconds := viper.GetInt("rabbitmq.outbox.retry_interval_seconds")
	if retryIntervalSeconds == 0 {
		retryIntervalSeconds = 30
	}

	return &Worker{
		outboxRepo:    outboxRepo,
		rabbitClient:  rabbitClient,
		pollInterval:  time.Duration(pollIntervalSeconds) * time.Second,
		batchSize:     batchSize,
		retryInterval: time.Duration(retryIntervalSeconds) * time.Second,
		stopCh:        make(chan struct{}),
	}
}

// Start begins processing messages from the outbox.
func (w *Worker) Start(ctx context.Context) {
	ticker := time.NewTicker(w.pollInterval)
	defer ticker.Stop()

	slog.Info("Outbox worker started", "poll_interval", w.pollInterval, "batch_size", w.batchSize)

	for {
		select {
		case <-ctx.Done():
			slog.Info("Outbox worker shutting down")

			return
		case <-w.stopCh:
			slog.Info("Outbox worker stopped")

			return
		case <-ticker.C:
			w.processMessages(ctx)
		}
	}
}

// Stop stops the worker.
func (w *Worker) Stop() {
	close(w.stopCh)
}

// processMessages retrieves and processes pending messages from the outbox.
func (w *Worker) processMessages(ctx context.Context) {
	messages, err := w.outboxRepo.GetPendingMessages(ctx, w.batchSize)
	if err != nil {
		slog.Error("Failed to get pending messages from outbox", "error", err)

		return
	}

	if len(messages) == 0 {
		return
	}

	slog.Info("Processing outbox messages", "count", len(messages))

	for _, msg := range messages {
		err := w.rabbitClient.Channel().Publish(
			msg.ExchangeName,
			msg.RoutingKey,
			false,
			false,
			amqp.Publishing{
				ContentType: msg.ContentType,
				Body:        msg.Payload,
			},
		)

		if err != nil {
			w.scheduleRetry(ctx, msg, err)

			continue
		}

		if err := w.outboxRepo.Delete(ctx, msg.ID); err != nil {
			slog.Error("Failed to delete message from outbox after successful publish",
				"outbox_id", msg.ID,
				"error", err,
			)
		} else {
			slog.Info("Message successfully published and removed from outbox", "outbox_id", msg.ID)
		}
	}
}

// scheduleRetry records a failed publish with exponential backoff. A message
// that exhausted MaxRetries is deleted instead of rescheduled.
func (w *Worker) scheduleRetry(ctx context.Context, msg outboxmodel.Message, cause error) {
	newRetryCount := msg.RetryCount + 1

	if msg.MaxRetries > 0 && newRetryCount >= msg.MaxRetries {
		slog.Error("Outbox message exhausted retries, dropping",
			"outbox_id", msg.ID,
			"retry_count", newRetryCount,
			"error", cause,
		)
		if err := w.outboxRepo.Delete(ctx, msg.ID); err != nil {
			slog.Error("Failed to drop exhausted outbox message", "outbox_id", msg.ID, "error", err)
		}

		return
	}

	backoff := time.Duration(math.Pow(2, float64(newRetryCount))) * w.retryInterval // 60s, 120s, 240s with the 30s default
	nextRetryAt := time.Now().Add(backoff)

	slog.Warn("Failed to publish message from outbox, will retry",
		"outbox_id", msg.ID,
		"retry_count", newRetryCount,
		"next_retry", nextRetryAt,
		"error", cause,
	)

	if err := w.outboxRepo.UpdateRetry(ctx, msg.ID, newRetryCount, cause.Error(), nextRetryAt); err != nil {
		slog.Error("Failed to update retry information", "outbox_id", msg.ID, "error", err)
	}
}
