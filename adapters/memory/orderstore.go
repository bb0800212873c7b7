package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/starfeed/starfeed/domain/order"
	"github.com/starfeed/starfeed/ports"
)

// OrderStore is an in-memory implementation of ports.OrderStore.
type OrderStore struct {
	mu     sync.RWMutex
	orders map[string]order.Order
}

// NewOrderStore creates an empty in-memory order store.
func NewOrderStore() *OrderStore {
	return &OrderStore{orders: make(map[string]order.Order)}
}

// Create stores a new order.
func (s *OrderStore) Create(ctx context.Context, o order.Order) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.orders[o.ID] = o
	return nil
}

// Get retrieves an order by ID.
func (s *OrderStore) Get(ctx context.Context, id string) (order.Order, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	o, ok := s.orders[id]
	if !ok {
		return order.Order{}, ErrNotFound
	}
	return o, nil
}

// GetPending retrieves a created-status order by gateway order id and owner.
func (s *OrderStore) GetPending(ctx context.Context, gatewayOrderID, ownerID string) (order.Order, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, o := range s.orders {
		if o.GatewayOrderID == gatewayOrderID && o.OwnerID == ownerID && o.Status == order.StatusCreated {
			return o, nil
		}
	}
	return order.Order{}, ErrNotFound
}

// MarkPaid flips a created order to paid. The status guard acts as the
// optimistic lock: a second concurrent attempt sees ErrNotFound.
func (s *OrderStore) MarkPaid(ctx context.Context, id, paymentID, signature string, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	o, ok := s.orders[id]
	if !ok || o.Status != order.StatusCreated {
		return ErrNotFound
	}
	o.Status = order.StatusPaid
	o.GatewayPaymentID = paymentID
	o.GatewaySignature = signature
	o.UpdatedAt = at.UTC()
	s.orders[id] = o
	return nil
}

// UpdateStatus applies a status transition.
func (s *OrderStore) UpdateStatus(ctx context.Context, id string, status order.Status, note string, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	o, ok := s.orders[id]
	if !ok {
		return ErrNotFound
	}
	if !order.CanTransition(o.Status, status) {
		return ErrNotFound
	}
	o.Status = status
	if note != "" {
		o.Note = note
	}
	o.UpdatedAt = at.UTC()
	s.orders[id] = o
	return nil
}

// ListByStatus returns orders in a status, newest first.
func (s *OrderStore) ListByStatus(ctx context.Context, status order.Status, limit, offset int) ([]order.Order, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []order.Order
	for _, o := range s.orders {
		if o.Status == status {
			out = append(out, o)
		}
	}
	return paginate(out, limit, offset), nil
}

// ListByOwner returns a user's orders, newest first.
func (s *OrderStore) ListByOwner(ctx context.Context, ownerID string, limit, offset int) ([]order.Order, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []order.Order
	for _, o := range s.orders {
		if o.OwnerID == ownerID {
			out = append(out, o)
		}
	}
	return paginate(out, limit, offset), nil
}

func paginate(orders []order.Order, limit, offset int) []order.Order {
	sort.Slice(orders, func(i, j int) bool { return orders[i].CreatedAt.After(orders[j].CreatedAt) })
	return page(orders, limit, offset)
}

// Ensure interface compliance.
var _ ports.OrderStore = (*OrderStore)(nil)
