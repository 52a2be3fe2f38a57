// Command report aggregates the recorded orders into a monthly CSV summary.
//
// Usage:
//
//	report [-backend json|sqlite] [-data data] [-out relatorio_mensal.csv]
package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"telegram-shop-bot/internal/report"
	"telegram-shop-bot/internal/storage"
)

func main() {
	backend := flag.String("backend", "json", "storage backend the bot was run with (json or sqlite)")
	dataDir := flag.String("data", "data", "data directory")
	out := flag.String("out", "relatorio_mensal.csv", "output CSV path")
	flag.Parse()

	store, err := openStore(*backend, *dataDir)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	defer store.Close()

	f, err := os.Create(*out)
	if err != nil {
		fmt.Fprintf(os.Stderr, "create %s: %v\n", *out, err)
		os.Exit(1)
	}
	defer f.Close()

	months, err := report.WriteMonthlyCSV(store, f)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	if months == 0 {
		fmt.Println("Nenhum pedido pago encontrado.")
		return
	}
	fmt.Printf("Relatório salvo em: %s (%d meses)\n", *out, months)
}

func openStore(backend, dataDir string) (storage.Store, error) {
	switch backend {
	case "json":
		return storage.NewJSONFile(dataDir)
	case "sqlite":
		return storage.NewSQLite(filepath.Join(dataDir, "shopbot.db"))
	default:
		return nil, fmt.Errorf("unknown backend %q (want json or sqlite)", backend)
	}
}
