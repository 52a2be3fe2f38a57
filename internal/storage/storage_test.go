package storage

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func backends(t *testing.T) map[string]Store {
	t.Helper()

	jsonStore, err := NewJSONFile(t.TempDir())
	require.NoError(t, err)

	sqliteStore, err := NewSQLite(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { sqliteStore.Close() })

	return map[string]Store{
		"memory": NewMemory(),
		"json":   jsonStore,
		"sqlite": sqliteStore,
	}
}

func sampleOrder(id string, status Status, createdAt time.Time) Order {
	return Order{
		ID:       id,
		UserID:   42,
		UserName: "Maria",
		Items: []OrderItem{
			{Name: "produto A", Price: decimal.New(15000, -2)},
			{Name: "produto B", Price: decimal.New(8000, -2), MAC: "AABBCCDDEEFF"},
		},
		Total:     decimal.New(23000, -2),
		Status:    status,
		CreatedAt: createdAt,
	}
}

func TestUserRoundTrip(t *testing.T) {
	for name, store := range backends(t) {
		t.Run(name, func(t *testing.T) {
			_, err := store.GetUser(42)
			assert.ErrorIs(t, err, ErrNotFound)

			u := User{ID: 42, Name: "Maria", Phone: "11988887777", CreatedAt: time.Now()}
			require.NoError(t, store.SaveUser(u))

			// Saving again overwrites rather than duplicating.
			u.Phone = "11900001111"
			require.NoError(t, store.SaveUser(u))

			got, err := store.GetUser(42)
			require.NoError(t, err)
			assert.Equal(t, "Maria", got.Name)
			assert.Equal(t, "11900001111", got.Phone)
		})
	}
}

func TestOrderLifecycle(t *testing.T) {
	for name, store := range backends(t) {
		t.Run(name, func(t *testing.T) {
			now := time.Now().Truncate(time.Second)
			require.NoError(t, store.SaveOrder(sampleOrder("o-1", StatusPending, now.Add(-time.Hour))))
			require.NoError(t, store.SaveOrder(sampleOrder("o-2", StatusPending, now)))

			got, err := store.GetOrder("o-1")
			require.NoError(t, err)
			assert.Len(t, got.Items, 2)
			assert.Equal(t, "AABBCCDDEEFF", got.Items[1].MAC)
			assert.True(t, got.Total.Equal(decimal.New(23000, -2)))

			orders, err := store.ListOrders()
			require.NoError(t, err)
			require.Len(t, orders, 2)
			assert.Equal(t, "o-2", orders[0].ID, "newest first")

			require.NoError(t, store.UpdateOrderStatus("o-1", StatusDelivered))
			got, err = store.GetOrder("o-1")
			require.NoError(t, err)
			assert.Equal(t, StatusDelivered, got.Status)

			assert.ErrorIs(t, store.UpdateOrderStatus("missing", StatusDelivered), ErrNotFound)
		})
	}
}

func TestRevenueByMonthCountsOnlyPaidOrders(t *testing.T) {
	jan := time.Date(2026, 1, 10, 12, 0, 0, 0, time.UTC)
	feb := time.Date(2026, 2, 3, 9, 30, 0, 0, time.UTC)

	for name, store := range backends(t) {
		t.Run(name, func(t *testing.T) {
			require.NoError(t, store.SaveOrder(sampleOrder("jan-paid", StatusApproved, jan)))
			require.NoError(t, store.SaveOrder(sampleOrder("jan-delivered", StatusDelivered, jan.Add(time.Hour))))
			require.NoError(t, store.SaveOrder(sampleOrder("jan-pending", StatusPending, jan.Add(2*time.Hour))))
			require.NoError(t, store.SaveOrder(sampleOrder("feb-paid", StatusApproved, feb)))

			totals, err := store.RevenueByMonth()
			require.NoError(t, err)

			require.Contains(t, totals, "2026-01")
			assert.Equal(t, 2, totals["2026-01"].Orders)
			assert.Equal(t, 4, totals["2026-01"].Items)
			assert.True(t, totals["2026-01"].Revenue.Equal(decimal.New(46000, -2)),
				"got %s", totals["2026-01"].Revenue)

			require.Contains(t, totals, "2026-02")
			assert.Equal(t, 1, totals["2026-02"].Orders)
		})
	}
}

func TestJSONFileSurvivesReload(t *testing.T) {
	dir := t.TempDir()

	first, err := NewJSONFile(dir)
	require.NoError(t, err)
	require.NoError(t, first.SaveUser(User{ID: 7, Name: "João", Phone: "21911112222", CreatedAt: time.Now()}))
	require.NoError(t, first.SaveOrder(sampleOrder("persisted", StatusApproved, time.Now())))

	second, err := NewJSONFile(dir)
	require.NoError(t, err)

	u, err := second.GetUser(7)
	require.NoError(t, err)
	assert.Equal(t, "João", u.Name)

	o, err := second.GetOrder("persisted")
	require.NoError(t, err)
	assert.Equal(t, StatusApproved, o.Status)
	assert.Len(t, o.Items, 2)
}
