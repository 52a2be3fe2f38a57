// Package storage persists users and orders behind a backend-agnostic
// interface so the conversation code never knows whether it is talking to
// process memory, a flat JSON file or SQLite.
package storage

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

var ErrNotFound = errors.New("storage: not found")

type Status string

const (
	StatusPending   Status = "pending"
	StatusApproved  Status = "approved"
	StatusDelivered Status = "delivered"
)

type User struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Phone     string    `json:"phone"`
	CreatedAt time.Time `json:"created_at"`
}

// OrderItem is the snapshot of a cart item taken at checkout. Later catalog
// changes never retroactively change an order.
type OrderItem struct {
	Name  string          `json:"name"`
	Price decimal.Decimal `json:"price"`
	MAC   string          `json:"mac,omitempty"`
}

type Order struct {
	ID        string          `json:"id"`
	UserID    int64           `json:"user_id"`
	UserName  string          `json:"user_name"`
	Items     []OrderItem     `json:"items"`
	Total     decimal.Decimal `json:"total"`
	Status    Status          `json:"status"`
	CreatedAt time.Time       `json:"created_at"`
}

// MonthTotal aggregates the paid orders of one calendar month.
type MonthTotal struct {
	Orders  int
	Items   int
	Revenue decimal.Decimal
}

type Store interface {
	SaveUser(u User) error
	GetUser(id int64) (User, error)

	SaveOrder(o Order) error
	GetOrder(id string) (Order, error)
	// ListOrders returns all orders, newest first.
	ListOrders() ([]Order, error)
	// UpdateOrderStatus returns ErrNotFound for an unknown order id.
	UpdateOrderStatus(id string, status Status) error

	// RevenueByMonth aggregates approved and delivered orders keyed by
	// "YYYY-MM" of their creation time.
	RevenueByMonth() (map[string]MonthTotal, error)

	Close() error
}

// paidStatus reports whether an order counts toward revenue.
func paidStatus(s Status) bool {
	return s == StatusApproved || s == StatusDelivered
}

// aggregate computes RevenueByMonth from a plain order list. The memory and
// JSON backends share it; SQLite pushes the same grouping into SQL.
func aggregate(orders []Order) map[string]MonthTotal {
	out := make(map[string]MonthTotal)
	for _, o := range orders {
		if !paidStatus(o.Status) {
			continue
		}
		month := o.CreatedAt.Format("2006-01")
		t := out[month]
		t.Orders++
		t.Items += len(o.Items)
		t.Revenue = t.Revenue.Add(o.Total)
		out[month] = t
	}
	return out
}
