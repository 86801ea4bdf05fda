package kanban

import (
	"sync"

	"orderboard/internal/domain"
)

// Store holds the authoritative in-memory order list for one dashboard
// session. It is rebuilt wholesale from the gateway on every refresh and owns
// nothing durable. Only the Coordinator mutates it; everything else reads.
//
// Ordering within the list is the fetch order (id descending from the
// gateway) and is preserved across status changes: a drag moves a card
// between columns, it never reorders a column.
type Store struct {
	mu     sync.RWMutex
	orders []domain.Order
	index  map[int64]int
}

func NewStore() *Store {
	return &Store{index: make(map[int64]int)}
}

// ReplaceAll swaps in a fresh snapshot. Always succeeds; derived groupings
// computed before the call are stale afterwards.
func (s *Store) ReplaceAll(orders []domain.Order) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.orders = make([]domain.Order, len(orders))
	copy(s.orders, orders)
	s.index = make(map[int64]int, len(orders))
	for i, o := range s.orders {
		s.index[o.ID] = i
	}
}

// ApplyStatusChange sets the status of the order in place and returns the
// full previous value for rollback. A missing id is a stale reference and
// comes back as *domain.NotFoundError.
func (s *Store) ApplyStatusChange(orderID int64, status domain.Status) (domain.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i, ok := s.index[orderID]
	if !ok {
		return domain.Order{}, &domain.NotFoundError{OrderID: orderID}
	}
	prev := s.orders[i]
	s.orders[i].Status = status
	return prev, nil
}

// Restore puts a previous order value back, undoing an optimistic apply. If
// the id is gone (removed by a concurrent full refresh) the rollback is
// silently dropped: the refresh already holds the remote truth.
func (s *Store) Restore(prev domain.Order) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if i, ok := s.index[prev.ID]; ok {
		s.orders[i] = prev
	}
}

// GroupByStatus derives column membership. Orders appear under their current
// status in list order. Statuses outside the closed set (possible in rows
// written by older revisions) still get a bucket; the board simply has no
// column for them.
func (s *Store) GroupByStatus() map[domain.Status][]domain.Order {
	s.mu.RLock()
	defer s.mu.RUnlock()
	groups := make(map[domain.Status][]domain.Order)
	for _, o := range s.orders {
		groups[o.Status] = append(groups[o.Status], o)
	}
	return groups
}

// Get returns a copy of the order with the given id.
func (s *Store) Get(orderID int64) (domain.Order, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	i, ok := s.index[orderID]
	if !ok {
		return domain.Order{}, false
	}
	return s.orders[i], true
}

// All returns a copy of the full list in fetch order.
func (s *Store) All() []domain.Order {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.Order, len(s.orders))
	copy(out, s.orders)
	return out
}

func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.orders)
}
