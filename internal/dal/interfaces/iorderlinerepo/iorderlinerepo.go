package iorderlinerepo

import (
	"context"

	"github.com/1241007/shop-spark-45/internal/service/models/orderline"
)

// IOrderLineRepository is an interface for the order line postgres repository.
type IOrderLineRepository interface {
	BulkInsert(ctx context.Context, lines []orderline.OrderLine) ([]orderline.OrderLine, error)
	Query(ctx context.Context, filter *orderline.QueryOrderLinesModel) ([]orderline.OrderLine, error)
}
