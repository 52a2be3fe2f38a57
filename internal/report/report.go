// Package report turns the order log into a monthly CSV summary.
package report

import (
	"encoding/csv"
	"fmt"
	"io"
	"sort"

	"telegram-shop-bot/internal/storage"
)

// WriteMonthlyCSV writes one row per month with order count, item count and
// revenue over the paid orders in the store. Rows are sorted by month.
func WriteMonthlyCSV(store storage.Store, w io.Writer) (int, error) {
	totals, err := store.RevenueByMonth()
	if err != nil {
		return 0, fmt.Errorf("report: aggregate orders: %w", err)
	}

	months := make([]string, 0, len(totals))
	for m := range totals {
		months = append(months, m)
	}
	sort.Strings(months)

	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"mes", "pedidos", "itens", "arrecadado"}); err != nil {
		return 0, err
	}
	for _, m := range months {
		t := totals[m]
		row := []string{
			m,
			fmt.Sprintf("%d", t.Orders),
			fmt.Sprintf("%d", t.Items),
			t.Revenue.StringFixed(2),
		}
		if err := cw.Write(row); err != nil {
			return 0, err
		}
	}
	cw.Flush()
	return len(months), cw.Error()
}
