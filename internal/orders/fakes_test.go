package orders_test

import (
	"context"
	"errors"
	"sync"

	"github.com/shopspring/decimal"

	"vegorder/internal/models"
	"vegorder/internal/port"
)

// memStore keeps committed state separate from the writes staged by an open
// transaction, so a failed callback leaves no trace.
type memStore struct {
	mu sync.Mutex

	products map[int64]models.Product
	orders   map[int64]models.Order
	items    []models.OrderItem
	failures []models.EmailFailure
	nextID   int64

	lookups         [][]int64
	failInsertItems error
	failAudit       error
}

func newMemStore(products ...models.Product) *memStore {
	s := &memStore{
		products: make(map[int64]models.Product),
		orders:   make(map[int64]models.Order),
	}
	for _, p := range products {
		s.products[p.ID] = p
	}
	return s
}

func (s *memStore) WithinTransaction(ctx context.Context, fn func(ctx context.Context, tx port.OrderTx) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx := &memTx{store: s, nextID: s.nextID, used: make(map[int64]decimal.Decimal)}
	if err := fn(ctx, tx); err != nil {
		return err
	}

	for _, o := range tx.orders {
		s.orders[o.ID] = o
	}
	s.items = append(s.items, tx.items...)
	for id, qty := range tx.used {
		p := s.products[id]
		p.Used = p.Used.Add(qty)
		s.products[id] = p
	}
	s.nextID = tx.nextID
	return nil
}

func (s *memStore) InsertEmailFailure(_ context.Context, failure *models.EmailFailure) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.failAudit != nil {
		return s.failAudit
	}
	failure.ID = int64(len(s.failures) + 1)
	s.failures = append(s.failures, *failure)
	return nil
}

func (s *memStore) orderCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.orders)
}

func (s *memStore) itemCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.items)
}

func (s *memStore) emailFailures() []models.EmailFailure {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]models.EmailFailure(nil), s.failures...)
}

func (s *memStore) product(id int64) models.Product {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.products[id]
}

type memTx struct {
	store  *memStore
	nextID int64
	orders []models.Order
	items  []models.OrderItem
	used   map[int64]decimal.Decimal
}

func (tx *memTx) FindProductsByIDs(_ context.Context, ids []int64) ([]models.Product, error) {
	tx.store.lookups = append(tx.store.lookups, append([]int64(nil), ids...))

	var out []models.Product
	for _, id := range ids {
		if p, ok := tx.store.products[id]; ok {
			out = append(out, p)
		}
	}
	return out, nil
}

func (tx *memTx) InsertOrder(_ context.Context, order *models.Order) error {
	tx.nextID++
	order.ID = tx.nextID
	tx.orders = append(tx.orders, *order)
	return nil
}

func (tx *memTx) InsertOrderItems(_ context.Context, items []models.OrderItem) error {
	if tx.store.failInsertItems != nil {
		return tx.store.failInsertItems
	}
	for i := range items {
		tx.nextID++
		items[i].ID = tx.nextID
	}
	tx.items = append(tx.items, items...)
	return nil
}

func (tx *memTx) RecordProductUsage(_ context.Context, productID int64, quantity decimal.Decimal) error {
	if _, ok := tx.store.products[productID]; !ok {
		return errors.New("product vanished")
	}
	tx.used[productID] = tx.used[productID].Add(quantity)
	return nil
}

type notifierFunc func(ctx context.Context, order models.Order, items []models.OrderItem) error

func (f notifierFunc) SendOrderNotification(ctx context.Context, order models.Order, items []models.OrderItem) error {
	return f(ctx, order, items)
}

type recordingNotifier struct {
	mu    sync.Mutex
	calls []models.Order
	err   error
}

func (n *recordingNotifier) SendOrderNotification(_ context.Context, order models.Order, _ []models.OrderItem) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.calls = append(n.calls, order)
	return n.err
}
