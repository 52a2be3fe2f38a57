package storage

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"sync"
)

// JSONFile persists users and orders as two flat JSON files under dir.
// Every mutation rewrites the whole file through a temp file and rename, so
// a crash mid-write never leaves a truncated file behind. A process-wide
// mutex serializes writers; running two processes against the same files is
// still not supported.
type JSONFile struct {
	mu     sync.Mutex
	dir    string
	users  map[int64]User
	orders map[string]Order
}

func NewJSONFile(dir string) (*JSONFile, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("storage: create data dir: %w", err)
	}

	s := &JSONFile{
		dir:    dir,
		users:  make(map[int64]User),
		orders: make(map[string]Order),
	}
	if err := s.load(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *JSONFile) usersPath() string  { return filepath.Join(s.dir, "users.json") }
func (s *JSONFile) ordersPath() string { return filepath.Join(s.dir, "orders.json") }

func (s *JSONFile) load() error {
	// Users are keyed by chat id rendered as a string, matching how the
	// files were historically written.
	var rawUsers map[string]User
	if err := readJSON(s.usersPath(), &rawUsers); err != nil {
		return err
	}
	for key, u := range rawUsers {
		id, err := strconv.ParseInt(key, 10, 64)
		if err != nil {
			return fmt.Errorf("storage: bad user key %q in users.json", key)
		}
		u.ID = id
		s.users[id] = u
	}

	if err := readJSON(s.ordersPath(), &s.orders); err != nil {
		return err
	}
	for id, o := range s.orders {
		o.ID = id
		s.orders[id] = o
	}
	return nil
}

func readJSON(path string, v any) error {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("storage: read %s: %w", path, err)
	}
	if len(data) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("storage: parse %s: %w", path, err)
	}
	return nil
}

func writeJSON(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("storage: encode %s: %w", path, err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("storage: temp file for %s: %w", path, err)
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("storage: write %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("storage: close %s: %w", path, err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("storage: replace %s: %w", path, err)
	}
	return nil
}

func (s *JSONFile) persistUsers() error {
	raw := make(map[string]User, len(s.users))
	for id, u := range s.users {
		raw[strconv.FormatInt(id, 10)] = u
	}
	return writeJSON(s.usersPath(), raw)
}

func (s *JSONFile) persistOrders() error {
	return writeJSON(s.ordersPath(), s.orders)
}

func (s *JSONFile) SaveUser(u User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.users[u.ID] = u
	return s.persistUsers()
}

func (s *JSONFile) GetUser(id int64) (User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return User{}, ErrNotFound
	}
	return u, nil
}

func (s *JSONFile) SaveOrder(o Order) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.orders[o.ID] = o
	return s.persistOrders()
}

func (s *JSONFile) GetOrder(id string) (Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	o, ok := s.orders[id]
	if !ok {
		return Order{}, ErrNotFound
	}
	return o, nil
}

func (s *JSONFile) ListOrders() ([]Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Order, 0, len(s.orders))
	for _, o := range s.orders {
		out = append(out, o)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

func (s *JSONFile) UpdateOrderStatus(id string, status Status) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	o, ok := s.orders[id]
	if !ok {
		return ErrNotFound
	}
	o.Status = status
	s.orders[id] = o
	return s.persistOrders()
}

func (s *JSONFile) RevenueByMonth() (map[string]MonthTotal, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	orders := make([]Order, 0, len(s.orders))
	for _, o := range s.orders {
		orders = append(orders, o)
	}
	return aggregate(orders), nil
}

func (s *JSONFile) Close() error { return nil }
