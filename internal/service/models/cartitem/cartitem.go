package cartitem

import "time"

// CartItem is one (user, product) row of a persisted cart. A quantity of
// zero is never stored; removing an item deletes the row.
type CartItem struct {
	UserID    string    `json:"userId"`
	ProductID int64     `json:"productId"`
	Quantity  int       `json:"quantity"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}
