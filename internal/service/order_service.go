package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/egannguyen/go-bookstore-backend/internal/entity"
	"github.com/egannguyen/go-bookstore-backend/internal/messaging"
	"github.com/egannguyen/go-bookstore-backend/internal/repository"
	"github.com/google/uuid"
)

// OrderService is the order workflow engine. Placing an order and changing
// its status each run as one atomic unit against the store: inventory
// mutations, the order write and the history write commit together or not
// at all.
type OrderService struct {
	orders    repository.OrderStore
	publisher messaging.Publisher
}

func NewOrderService(orders repository.OrderStore, publisher messaging.Publisher) *OrderService {
	return &OrderService{
		orders:    orders,
		publisher: publisher,
	}
}

// CreateOrderRequest is a checkout submission.
type CreateOrderRequest struct {
	Name       string             `json:"name"`
	Address    string             `json:"address"`
	Phone      string             `json:"phone"`
	Type       string             `json:"type"`
	TotalPrice float64            `json:"total_price"`
	Lines      []entity.OrderLine `json:"lines"`
}

func (r *CreateOrderRequest) validate() error {
	if len(r.Lines) == 0 {
		return fmt.Errorf("order must have at least one line item")
	}
	for _, line := range r.Lines {
		if line.BookID == "" {
			return fmt.Errorf("line item is missing a book id")
		}
		if line.Quantity <= 0 {
			return fmt.Errorf("line quantity for book %s must be positive", line.BookID)
		}
	}
	return nil
}

// Create places an order for the acting user. Within a single transaction it
// re-checks stock per line under a row lock, decrements quantity and
// increments sold by the line quantity, inserts the order (PENDING) and
// inserts the matching history record. Any failure aborts every write.
func (s *OrderService) Create(ctx context.Context, req *CreateOrderRequest, user entity.ActingUser) (*entity.Order, error) {
	if err := req.validate(); err != nil {
		return nil, err
	}

	slog.Info("Placing order", "user_id", user.ID, "lines", len(req.Lines))

	now := time.Now()
	order := &entity.Order{
		ID:         uuid.New().String(),
		UserID:     user.ID,
		Name:       req.Name,
		Address:    req.Address,
		Phone:      req.Phone,
		Type:       req.Type,
		TotalPrice: req.TotalPrice,
		Lines:      req.Lines,
		Status:     entity.StatusPending,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	history := &entity.History{
		ID:         uuid.New().String(),
		UserID:     user.ID,
		Name:       req.Name,
		Email:      user.Email,
		Phone:      req.Phone,
		Lines:      req.Lines,
		TotalPrice: req.TotalPrice,
		CreatedAt:  now,
	}

	err := s.orders.WithinTx(ctx, func(tx repository.OrderTx) error {
		for _, line := range req.Lines {
			book, err := tx.BookForUpdate(ctx, line.BookID)
			if err != nil {
				return err
			}
			if book.Quantity < line.Quantity {
				return &entity.InsufficientStockError{
					BookName:  book.MainText,
					Remaining: book.Quantity,
				}
			}
			if err := tx.AdjustBookStock(ctx, line.BookID, -line.Quantity); err != nil {
				return err
			}
		}

		if err := tx.InsertOrder(ctx, order); err != nil {
			return err
		}
		return tx.InsertHistory(ctx, history)
	})
	if err != nil {
		return nil, err
	}

	slog.Info("Order placed", "order_id", order.ID, "total", order.TotalPrice)

	// The order is committed; a broker hiccup must not undo it.
	event := entity.OrderPlaced{
		OrderID:    order.ID,
		UserID:     order.UserID,
		Lines:      order.Lines,
		TotalPrice: order.TotalPrice,
		PlacedAt:   now,
	}
	if err := s.publisher.PublishEvent(ctx, messaging.TopicOrdersPlaced, order.ID, event); err != nil {
		slog.Error("Failed to publish OrderPlaced", "order_id", order.ID, "err", err)
	}

	return order, nil
}

// UpdateStatus transitions an order. Transitions out of DELIVERED or
// CANCELLED are rejected. Moving to CANCELLED restores each line's stock and
// reverses its sold counter in the same transaction as the status write.
func (s *OrderService) UpdateStatus(ctx context.Context, orderID string, newStatus entity.OrderStatus) error {
	var from entity.OrderStatus

	err := s.orders.WithinTx(ctx, func(tx repository.OrderTx) error {
		order, err := tx.OrderForUpdate(ctx, orderID)
		if err != nil {
			return err
		}
		if !order.Status.CanTransitionTo(newStatus) {
			return &entity.InvalidTransitionError{From: order.Status, To: newStatus}
		}
		from = order.Status

		if newStatus == entity.StatusCancelled {
			for _, line := range order.Lines {
				if err := tx.AdjustBookStock(ctx, line.BookID, line.Quantity); err != nil {
					return err
				}
			}
		}
		return tx.SetOrderStatus(ctx, orderID, newStatus)
	})
	if err != nil {
		return err
	}

	slog.Info("Order status updated", "order_id", orderID, "from", from, "to", newStatus)

	event := entity.OrderStatusChanged{
		OrderID:   orderID,
		From:      from,
		To:        newStatus,
		ChangedAt: time.Now(),
	}
	if err := s.publisher.PublishEvent(ctx, messaging.TopicOrdersStatusChanged, orderID, event); err != nil {
		slog.Error("Failed to publish OrderStatusChanged", "order_id", orderID, "err", err)
	}
	return nil
}

// FindByUser returns the user's orders, newest first.
func (s *OrderService) FindByUser(ctx context.Context, userID string) ([]entity.Order, error) {
	return s.orders.FindByUser(ctx, userID)
}

// FindByID returns one order with its lines.
func (s *OrderService) FindByID(ctx context.Context, orderID string) (*entity.Order, error) {
	return s.orders.FindByID(ctx, orderID)
}

// FindAll returns a page of all orders for the admin view.
func (s *OrderService) FindAll(ctx context.Context, offset, limit int) ([]entity.Order, int, error) {
	if limit <= 0 {
		limit = 10
	}
	return s.orders.FindAll(ctx, offset, limit)
}

// Delete is the admin hard delete. It bypasses the state machine and never
// touches inventory.
func (s *OrderService) Delete(ctx context.Context, orderID string) error {
	return s.orders.Delete(ctx, orderID)
}
