package entity

import "time"

// Event is anything the backend publishes to the message broker.
type Event interface {
	EventType() string
}

// OrderPlaced is emitted after an order transaction commits.
type OrderPlaced struct {
	OrderID    string      `json:"order_id"`
	UserID     string      `json:"user_id"`
	Lines      []OrderLine `json:"lines"`
	TotalPrice float64     `json:"total_price"`
	PlacedAt   time.Time   `json:"placed_at"`
}

func (e OrderPlaced) EventType() string { return "OrderPlaced" }

// OrderStatusChanged is emitted after a status transition commits.
type OrderStatusChanged struct {
	OrderID   string      `json:"order_id"`
	From      OrderStatus `json:"from"`
	To        OrderStatus `json:"to"`
	ChangedAt time.Time   `json:"changed_at"`
}

func (e OrderStatusChanged) EventType() string { return "OrderStatusChanged" }

// CommentCreated is emitted when a review is accepted, feeding the real-time
// channel that pushes new reviews to connected clients.
type CommentCreated struct {
	CommentID string    `json:"comment_id"`
	BookID    string    `json:"book_id"`
	UserID    string    `json:"user_id"`
	Star      int       `json:"star"`
	CreatedAt time.Time `json:"created_at"`
}

func (e CommentCreated) EventType() string { return "CommentCreated" }
