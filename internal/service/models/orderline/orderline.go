package orderline

import (
	"time"
)

// OrderLine is one product/quantity entry within an order. Product name and
// unit price are snapshots taken at order time; later catalog changes must
// not alter historical orders. Lines are immutable once written.
type OrderLine struct {
	ID             int64     `json:"id"`
	OrderID        string    `json:"orderId"`
	ProductID      int64     `json:"productId"`
	ProductName    string    `json:"productName"`
	UnitPriceMinor int64     `json:"unitPriceMinor"`
	ImageURL       string    `json:"imageUrl"`
	Quantity       int       `json:"quantity"`
	CreatedAt      time.Time `json:"createdAt"`
}

// QueryOrderLinesModel represents filter parameters for querying order lines.
type QueryOrderLinesModel struct {
	Ids        []int64  `json:"ids,omitempty"`
	OrderIds   []string `json:"orderIds,omitempty"`
	ProductIds []int64  `json:"productIds,omitempty"`
	Limit      int      `json:"limit,omitempty"`
	Offset     int      `json:"offset,omitempty"`
}
