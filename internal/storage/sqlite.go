package storage

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	_ "modernc.org/sqlite" // pure Go SQLite driver
)

// SQLite stores users and orders in a single embedded database file. Item
// snapshots are kept as a JSON column; they are read back whole, never
// queried field by field.
type SQLite struct {
	db *sql.DB
}

func NewSQLite(dsn string) (*SQLite, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("storage: open sqlite: %w", err)
	}
	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("storage: ping sqlite: %w", err)
	}

	s := &SQLite{db: db}
	if err := s.initSchema(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *SQLite) initSchema() error {
	query := `
	CREATE TABLE IF NOT EXISTS users (
		id INTEGER PRIMARY KEY,
		name TEXT NOT NULL,
		phone TEXT NOT NULL,
		created_at TEXT NOT NULL
	);
	CREATE TABLE IF NOT EXISTS orders (
		id TEXT PRIMARY KEY,
		user_id INTEGER NOT NULL,
		user_name TEXT NOT NULL,
		items TEXT NOT NULL,
		item_count INTEGER NOT NULL,
		total_cents INTEGER NOT NULL,
		status TEXT NOT NULL,
		created_at TEXT NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_orders_created_at ON orders(created_at);
	`
	_, err := s.db.Exec(query)
	if err != nil {
		return fmt.Errorf("storage: init schema: %w", err)
	}
	return nil
}

func (s *SQLite) SaveUser(u User) error {
	query := `
		INSERT INTO users (id, name, phone, created_at) VALUES (?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET name = excluded.name, phone = excluded.phone
	`
	_, err := s.db.Exec(query, u.ID, u.Name, u.Phone, u.CreatedAt.Format(time.RFC3339))
	return err
}

func (s *SQLite) GetUser(id int64) (User, error) {
	var u User
	var createdAt string
	err := s.db.QueryRow("SELECT id, name, phone, created_at FROM users WHERE id = ?", id).
		Scan(&u.ID, &u.Name, &u.Phone, &createdAt)
	if err == sql.ErrNoRows {
		return User{}, ErrNotFound
	}
	if err != nil {
		return User{}, err
	}
	u.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
	return u, nil
}

func (s *SQLite) SaveOrder(o Order) error {
	items, err := json.Marshal(o.Items)
	if err != nil {
		return fmt.Errorf("storage: encode items: %w", err)
	}
	query := `
		INSERT INTO orders (id, user_id, user_name, items, item_count, total_cents, status, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`
	_, err = s.db.Exec(query, o.ID, o.UserID, o.UserName, string(items), len(o.Items),
		o.Total.Mul(decimal.New(100, 0)).IntPart(), string(o.Status), o.CreatedAt.Format(time.RFC3339))
	return err
}

func (s *SQLite) GetOrder(id string) (Order, error) {
	row := s.db.QueryRow(`
		SELECT id, user_id, user_name, items, total_cents, status, created_at
		FROM orders WHERE id = ?`, id)
	o, err := scanOrder(row)
	if err == sql.ErrNoRows {
		return Order{}, ErrNotFound
	}
	return o, err
}

func (s *SQLite) ListOrders() ([]Order, error) {
	rows, err := s.db.Query(`
		SELECT id, user_id, user_name, items, total_cents, status, created_at
		FROM orders ORDER BY created_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var orders []Order
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		orders = append(orders, o)
	}
	return orders, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanOrder(row rowScanner) (Order, error) {
	var o Order
	var items, createdAt string
	var totalCents int64
	var status string
	if err := row.Scan(&o.ID, &o.UserID, &o.UserName, &items, &totalCents, &status, &createdAt); err != nil {
		return Order{}, err
	}
	if err := json.Unmarshal([]byte(items), &o.Items); err != nil {
		return Order{}, fmt.Errorf("storage: decode items for order %s: %w", o.ID, err)
	}
	o.Total = decimal.New(totalCents, -2)
	o.Status = Status(status)
	o.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
	return o, nil
}

func (s *SQLite) UpdateOrderStatus(id string, status Status) error {
	res, err := s.db.Exec("UPDATE orders SET status = ? WHERE id = ?", string(status), id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *SQLite) RevenueByMonth() (map[string]MonthTotal, error) {
	rows, err := s.db.Query(`
		SELECT strftime('%Y-%m', created_at), COUNT(*), SUM(item_count), SUM(total_cents)
		FROM orders
		WHERE status IN (?, ?)
		GROUP BY 1`, string(StatusApproved), string(StatusDelivered))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make(map[string]MonthTotal)
	for rows.Next() {
		var month string
		var t MonthTotal
		var cents int64
		if err := rows.Scan(&month, &t.Orders, &t.Items, &cents); err != nil {
			return nil, err
		}
		t.Revenue = decimal.New(cents, -2)
		out[month] = t
	}
	return out, rows.Err()
}

func (s *SQLite) Close() error { return s.db.Close() }
