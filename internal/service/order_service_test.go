package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/egannguyen/go-bookstore-backend/internal/entity"
	"github.com/egannguyen/go-bookstore-backend/internal/repository"
)

// memOrderStore is an in-memory OrderStore with real transaction semantics:
// WithinTx snapshots all state up front and restores it when fn fails, so
// partial writes never survive.
type memOrderStore struct {
	books     map[string]*entity.Book
	orders    map[string]*entity.Order
	histories map[string]*entity.History

	failInsertHistory bool
}

func newMemOrderStore(books ...*entity.Book) *memOrderStore {
	s := &memOrderStore{
		books:     map[string]*entity.Book{},
		orders:    map[string]*entity.Order{},
		histories: map[string]*entity.History{},
	}
	for _, b := range books {
		s.books[b.ID] = b
	}
	return s
}

func snapshotBooks(src map[string]*entity.Book) map[string]*entity.Book {
	out := make(map[string]*entity.Book, len(src))
	for id, b := range src {
		copied := *b
		out[id] = &copied
	}
	return out
}

func snapshotOrders(src map[string]*entity.Order) map[string]*entity.Order {
	out := make(map[string]*entity.Order, len(src))
	for id, o := range src {
		copied := *o
		out[id] = &copied
	}
	return out
}

func snapshotHistories(src map[string]*entity.History) map[string]*entity.History {
	out := make(map[string]*entity.History, len(src))
	for id, h := range src {
		copied := *h
		out[id] = &copied
	}
	return out
}

func (s *memOrderStore) WithinTx(ctx context.Context, fn func(tx repository.OrderTx) error) error {
	books := snapshotBooks(s.books)
	orders := snapshotOrders(s.orders)
	histories := snapshotHistories(s.histories)

	if err := fn(&memOrderTx{store: s}); err != nil {
		s.books = books
		s.orders = orders
		s.histories = histories
		return err
	}
	return nil
}

func (s *memOrderStore) FindByID(ctx context.Context, orderID string) (*entity.Order, error) {
	order, ok := s.orders[orderID]
	if !ok {
		return nil, &entity.NotFoundError{Kind: "order", ID: orderID}
	}
	return order, nil
}

func (s *memOrderStore) FindByUser(ctx context.Context, userID string) ([]entity.Order, error) {
	var out []entity.Order
	for _, o := range s.orders {
		if o.UserID == userID {
			out = append(out, *o)
		}
	}
	return out, nil
}

func (s *memOrderStore) FindAll(ctx context.Context, offset, limit int) ([]entity.Order, int, error) {
	var out []entity.Order
	for _, o := range s.orders {
		out = append(out, *o)
	}
	return out, len(out), nil
}

func (s *memOrderStore) Delete(ctx context.Context, orderID string) error {
	if _, ok := s.orders[orderID]; !ok {
		return &entity.NotFoundError{Kind: "order", ID: orderID}
	}
	delete(s.orders, orderID)
	return nil
}

type memOrderTx struct {
	store *memOrderStore
}

func (tx *memOrderTx) BookForUpdate(ctx context.Context, bookID string) (*entity.Book, error) {
	book, ok := tx.store.books[bookID]
	if !ok {
		return nil, &entity.NotFoundError{Kind: "book", ID: bookID}
	}
	return book, nil
}

func (tx *memOrderTx) AdjustBookStock(ctx context.Context, bookID string, delta int) error {
	book, ok := tx.store.books[bookID]
	if !ok {
		return &entity.NotFoundError{Kind: "book", ID: bookID}
	}
	book.Quantity += delta
	book.Sold -= delta
	return nil
}

func (tx *memOrderTx) InsertOrder(ctx context.Context, order *entity.Order) error {
	copied := *order
	tx.store.orders[order.ID] = &copied
	return nil
}

func (tx *memOrderTx) InsertHistory(ctx context.Context, history *entity.History) error {
	if tx.store.failInsertHistory {
		return errors.New("history insert failed")
	}
	copied := *history
	tx.store.histories[history.ID] = &copied
	return nil
}

func (tx *memOrderTx) OrderForUpdate(ctx context.Context, orderID string) (*entity.Order, error) {
	order, ok := tx.store.orders[orderID]
	if !ok {
		return nil, &entity.NotFoundError{Kind: "order", ID: orderID}
	}
	return order, nil
}

func (tx *memOrderTx) SetOrderStatus(ctx context.Context, orderID string, status entity.OrderStatus) error {
	order, ok := tx.store.orders[orderID]
	if !ok {
		return &entity.NotFoundError{Kind: "order", ID: orderID}
	}
	order.Status = status
	return nil
}

// capturingPublisher records published events; when fail is set every publish
// errors.
type capturingPublisher struct {
	topics []string
	events []any
	fail   bool
}

func (p *capturingPublisher) PublishEvent(ctx context.Context, topic, key string, event any) error {
	if p.fail {
		return errors.New("broker unavailable")
	}
	p.topics = append(p.topics, topic)
	p.events = append(p.events, event)
	return nil
}

func testBook(id string, quantity int) *entity.Book {
	return &entity.Book{ID: id, MainText: "Book " + id, Quantity: quantity}
}

var buyer = entity.ActingUser{ID: "user-1", Email: "buyer@example.com", Role: entity.RoleUser}

func TestCreateOrderDecrementsStockAndRecordsHistory(t *testing.T) {
	store := newMemOrderStore(testBook("b1", 10), testBook("b2", 5))
	publisher := &capturingPublisher{}
	svc := NewOrderService(store, publisher)

	order, err := svc.Create(context.Background(), &CreateOrderRequest{
		Name:       "Buyer",
		Address:    "1 Main St",
		Phone:      "555-0100",
		TotalPrice: 42.50,
		Lines: []entity.OrderLine{
			{BookID: "b1", BookName: "Book b1", Quantity: 3},
			{BookID: "b2", BookName: "Book b2", Quantity: 5},
		},
	}, buyer)
	require.NoError(t, err)

	assert.Equal(t, entity.StatusPending, order.Status)
	assert.Equal(t, buyer.ID, order.UserID)

	assert.Equal(t, 7, store.books["b1"].Quantity)
	assert.Equal(t, 3, store.books["b1"].Sold)
	assert.Equal(t, 0, store.books["b2"].Quantity)
	assert.Equal(t, 5, store.books["b2"].Sold)

	require.Len(t, store.orders, 1)
	require.Len(t, store.histories, 1)
	for _, h := range store.histories {
		assert.Equal(t, buyer.ID, h.UserID)
		assert.Equal(t, buyer.Email, h.Email)
		assert.Equal(t, order.Lines, h.Lines)
		assert.Equal(t, order.TotalPrice, h.TotalPrice)
	}

	require.Len(t, publisher.events, 1)
	placed, ok := publisher.events[0].(entity.OrderPlaced)
	require.True(t, ok)
	assert.Equal(t, order.ID, placed.OrderID)
	assert.Equal(t, order.Lines, placed.Lines)
}

func TestCreateOrderInsufficientStockAbortsEverything(t *testing.T) {
	store := newMemOrderStore(testBook("b1", 10), testBook("b2", 2))
	publisher := &capturingPublisher{}
	svc := NewOrderService(store, publisher)

	_, err := svc.Create(context.Background(), &CreateOrderRequest{
		Lines: []entity.OrderLine{
			{BookID: "b1", Quantity: 4},
			{BookID: "b2", Quantity: 3},
		},
	}, buyer)

	var stockErr *entity.InsufficientStockError
	require.ErrorAs(t, err, &stockErr)
	assert.Equal(t, "Book b2", stockErr.BookName)
	assert.Equal(t, 2, stockErr.Remaining)

	// The first line had already been decremented inside the transaction;
	// the abort must restore it.
	assert.Equal(t, 10, store.books["b1"].Quantity)
	assert.Equal(t, 0, store.books["b1"].Sold)
	assert.Equal(t, 2, store.books["b2"].Quantity)
	assert.Empty(t, store.orders)
	assert.Empty(t, store.histories)
	assert.Empty(t, publisher.events)
}

func TestCreateOrderExactStockSucceeds(t *testing.T) {
	store := newMemOrderStore(testBook("b1", 3))
	svc := NewOrderService(store, &capturingPublisher{})

	_, err := svc.Create(context.Background(), &CreateOrderRequest{
		Lines: []entity.OrderLine{{BookID: "b1", Quantity: 3}},
	}, buyer)
	require.NoError(t, err)
	assert.Equal(t, 0, store.books["b1"].Quantity)
	assert.Equal(t, 3, store.books["b1"].Sold)
}

func TestCreateOrderUnknownBook(t *testing.T) {
	store := newMemOrderStore(testBook("b1", 10))
	svc := NewOrderService(store, &capturingPublisher{})

	_, err := svc.Create(context.Background(), &CreateOrderRequest{
		Lines: []entity.OrderLine{
			{BookID: "b1", Quantity: 2},
			{BookID: "missing", Quantity: 1},
		},
	}, buyer)

	var notFound *entity.NotFoundError
	require.ErrorAs(t, err, &notFound)
	assert.Equal(t, "missing", notFound.ID)

	assert.Equal(t, 10, store.books["b1"].Quantity)
	assert.Empty(t, store.orders)
}

func TestCreateOrderValidation(t *testing.T) {
	store := newMemOrderStore(testBook("b1", 10))
	svc := NewOrderService(store, &capturingPublisher{})

	_, err := svc.Create(context.Background(), &CreateOrderRequest{}, buyer)
	require.Error(t, err)

	_, err = svc.Create(context.Background(), &CreateOrderRequest{
		Lines: []entity.OrderLine{{BookID: "b1", Quantity: 0}},
	}, buyer)
	require.Error(t, err)

	_, err = svc.Create(context.Background(), &CreateOrderRequest{
		Lines: []entity.OrderLine{{Quantity: 1}},
	}, buyer)
	require.Error(t, err)

	assert.Equal(t, 10, store.books["b1"].Quantity)
}

func TestCreateOrderHistoryFailureRollsBackStock(t *testing.T) {
	store := newMemOrderStore(testBook("b1", 10))
	store.failInsertHistory = true
	publisher := &capturingPublisher{}
	svc := NewOrderService(store, publisher)

	_, err := svc.Create(context.Background(), &CreateOrderRequest{
		Lines: []entity.OrderLine{{BookID: "b1", Quantity: 4}},
	}, buyer)
	require.Error(t, err)

	assert.Equal(t, 10, store.books["b1"].Quantity)
	assert.Equal(t, 0, store.books["b1"].Sold)
	assert.Empty(t, store.orders)
	assert.Empty(t, publisher.events)
}

func TestCreateOrderPublishFailureDoesNotUndoOrder(t *testing.T) {
	store := newMemOrderStore(testBook("b1", 10))
	publisher := &capturingPublisher{fail: true}
	svc := NewOrderService(store, publisher)

	order, err := svc.Create(context.Background(), &CreateOrderRequest{
		Lines: []entity.OrderLine{{BookID: "b1", Quantity: 1}},
	}, buyer)
	require.NoError(t, err)

	assert.Equal(t, 9, store.books["b1"].Quantity)
	assert.Contains(t, store.orders, order.ID)
}

func placeOrder(t *testing.T, svc *OrderService, lines ...entity.OrderLine) *entity.Order {
	t.Helper()
	order, err := svc.Create(context.Background(), &CreateOrderRequest{Lines: lines}, buyer)
	require.NoError(t, err)
	return order
}

func TestUpdateStatusForwardFlow(t *testing.T) {
	store := newMemOrderStore(testBook("b1", 10))
	publisher := &capturingPublisher{}
	svc := NewOrderService(store, publisher)
	order := placeOrder(t, svc, entity.OrderLine{BookID: "b1", Quantity: 2})

	for _, next := range []entity.OrderStatus{
		entity.StatusProcessing, entity.StatusShipped, entity.StatusDelivered,
	} {
		require.NoError(t, svc.UpdateStatus(context.Background(), order.ID, next))
		assert.Equal(t, next, store.orders[order.ID].Status)
	}

	// Delivery never touches inventory.
	assert.Equal(t, 8, store.books["b1"].Quantity)
	assert.Equal(t, 2, store.books["b1"].Sold)

	// One OrderPlaced plus three status changes.
	require.Len(t, publisher.events, 4)
	last, ok := publisher.events[3].(entity.OrderStatusChanged)
	require.True(t, ok)
	assert.Equal(t, entity.StatusShipped, last.From)
	assert.Equal(t, entity.StatusDelivered, last.To)
}

func TestUpdateStatusTerminalIsImmutable(t *testing.T) {
	store := newMemOrderStore(testBook("b1", 10))
	svc := NewOrderService(store, &capturingPublisher{})
	order := placeOrder(t, svc, entity.OrderLine{BookID: "b1", Quantity: 2})

	require.NoError(t, svc.UpdateStatus(context.Background(), order.ID, entity.StatusDelivered))

	for _, next := range []entity.OrderStatus{
		entity.StatusPending, entity.StatusProcessing, entity.StatusShipped, entity.StatusCancelled,
	} {
		err := svc.UpdateStatus(context.Background(), order.ID, next)
		var transitionErr *entity.InvalidTransitionError
		require.ErrorAs(t, err, &transitionErr)
		assert.Equal(t, entity.StatusDelivered, transitionErr.From)
		assert.Equal(t, next, transitionErr.To)
	}

	assert.Equal(t, entity.StatusDelivered, store.orders[order.ID].Status)
	// A rejected CANCELLED must not have restored stock.
	assert.Equal(t, 8, store.books["b1"].Quantity)
}

func TestCancelRestoresStock(t *testing.T) {
	store := newMemOrderStore(testBook("b1", 10), testBook("b2", 5))
	svc := NewOrderService(store, &capturingPublisher{})
	order := placeOrder(t, svc,
		entity.OrderLine{BookID: "b1", Quantity: 3},
		entity.OrderLine{BookID: "b2", Quantity: 1},
	)

	require.NoError(t, svc.UpdateStatus(context.Background(), order.ID, entity.StatusShipped))
	require.NoError(t, svc.UpdateStatus(context.Background(), order.ID, entity.StatusCancelled))

	assert.Equal(t, entity.StatusCancelled, store.orders[order.ID].Status)
	assert.Equal(t, 10, store.books["b1"].Quantity)
	assert.Equal(t, 0, store.books["b1"].Sold)
	assert.Equal(t, 5, store.books["b2"].Quantity)
	assert.Equal(t, 0, store.books["b2"].Sold)

	// Cancelling twice must not restore stock twice.
	err := svc.UpdateStatus(context.Background(), order.ID, entity.StatusCancelled)
	var transitionErr *entity.InvalidTransitionError
	require.ErrorAs(t, err, &transitionErr)
	assert.Equal(t, 10, store.books["b1"].Quantity)
}

func TestUpdateStatusUnknownOrder(t *testing.T) {
	store := newMemOrderStore()
	svc := NewOrderService(store, &capturingPublisher{})

	err := svc.UpdateStatus(context.Background(), "nope", entity.StatusShipped)
	var notFound *entity.NotFoundError
	require.ErrorAs(t, err, &notFound)
}
