package audit

import (
	"context"
	"encoding/json"
	"time"

	"github.com/streadway/amqp"
	"golang.org/x/sync/errgroup"

	"github.com/1241007/shop-spark-45/internal/dal/rabbitmq"
	auditmodel "github.com/1241007/shop-spark-45/internal/service/models/audit"
)

// QueueName is where order audit events land. The outbox worker publishes
// to the same queue, so consumers see one stream.
const QueueName = "shop.orders.audit"

// AuditRabbitMQRepository publishes best-effort audit events directly to
// RabbitMQ. Events that must survive a broker outage go through the outbox
// instead.
type AuditRabbitMQRepository struct {
	client *rabbitmq.Client
	queue  amqp.Queue
}

func NewAuditRabbitMQRepository(client *rabbitmq.Client) *AuditRabbitMQRepository {
	queue, err := client.DeclareQueue(rabbitmq.DeclareQueueConfig{
		Name:       QueueName,
		Durable:    true,
		Exclusive:  false,
		AutoDelete: false,
	})
	if err != nil {
		panic(err)
	}

	return &AuditRabbitMQRepository{
		client: client,
		queue:  queue,
	}
}

func (r *AuditRabbitMQRepository) Publish(ctx context.Context, events []auditmodel.Event) error {
	pubCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	g, _ := errgroup.WithContext(pubCtx)
	g.SetLimit(3)

	for _, event := range events {
		g.Go(func() error {
			payload, err := json.Marshal(event)
			if err != nil {
				return err
			}

			return r.client.Channel().Publish(
				"",
				r.queue.Name,
				false,
				false,
				amqp.Publishing{
					ContentType: "application/json",
					Body:        payload,
				},
			)
		})
	}

	return g.Wait()
}
