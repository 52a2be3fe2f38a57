package storage

import (
	"sort"
	"sync"
)

// Memory keeps everything in process maps. State is lost on restart; it is
// the default backend and the one the tests run against.
type Memory struct {
	mu     sync.RWMutex
	users  map[int64]User
	orders map[string]Order
}

func NewMemory() *Memory {
	return &Memory{
		users:  make(map[int64]User),
		orders: make(map[string]Order),
	}
}

func (m *Memory) SaveUser(u User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.users[u.ID] = u
	return nil
}

func (m *Memory) GetUser(id int64) (User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	u, ok := m.users[id]
	if !ok {
		return User{}, ErrNotFound
	}
	return u, nil
}

func (m *Memory) SaveOrder(o Order) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.orders[o.ID] = o
	return nil
}

func (m *Memory) GetOrder(id string) (Order, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	o, ok := m.orders[id]
	if !ok {
		return Order{}, ErrNotFound
	}
	return o, nil
}

func (m *Memory) ListOrders() ([]Order, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]Order, 0, len(m.orders))
	for _, o := range m.orders {
		out = append(out, o)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

func (m *Memory) UpdateOrderStatus(id string, status Status) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	o, ok := m.orders[id]
	if !ok {
		return ErrNotFound
	}
	o.Status = status
	m.orders[id] = o
	return nil
}

func (m *Memory) RevenueByMonth() (map[string]MonthTotal, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	orders := make([]Order, 0, len(m.orders))
	for _, o := range m.orders {
		orders = append(orders, o)
	}
	return aggregate(orders), nil
}

func (m *Memory) Close() error { return nil }
