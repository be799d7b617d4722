package iauditrepo

import (
	"context"

	"github.com/1241007/shop-spark-45/internal/service/models/audit"
)

// IAuditRepository publishes audit events to the message broker.
type IAuditRepository interface {
	Publish(ctx context.Context, events []audit.Event) error
}
