package config

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"
)

const (
	defaultStorageBackend = "memory"
	defaultDataDir        = "data"
	defaultWebhookAddr    = ":5000"
	defaultPayerDomain    = "cliente.bot"
)

// Config holds everything read from the environment at startup.
// There is no hot reload: the process is restarted to pick up changes.
type Config struct {
	TelegramToken    string
	MercadoPagoToken string
	AdminIDs         []int64
	StorageBackend   string // memory | json | sqlite
	DataDir          string
	WebhookAddr      string
	PayerEmailDomain string
}

// Load reads configuration from the environment, falling back to a .env
// file in the working directory for any key the environment lacks.
func Load() (*Config, error) {
	fileVals := loadDotEnv(".env")

	get := func(key, def string) string {
		if v := os.Getenv(key); v != "" {
			return v
		}
		if v, ok := fileVals[key]; ok && v != "" {
			return v
		}
		return def
	}

	cfg := &Config{
		TelegramToken:    get("TELEGRAM_TOKEN", ""),
		MercadoPagoToken: get("MERCADO_PAGO_TOKEN", ""),
		StorageBackend:   strings.ToLower(get("STORAGE_BACKEND", defaultStorageBackend)),
		DataDir:          get("DATA_DIR", defaultDataDir),
		WebhookAddr:      get("WEBHOOK_ADDR", defaultWebhookAddr),
		PayerEmailDomain: get("PAYER_EMAIL_DOMAIN", defaultPayerDomain),
	}

	if cfg.TelegramToken == "" {
		return nil, fmt.Errorf("config: TELEGRAM_TOKEN is required")
	}
	if cfg.MercadoPagoToken == "" {
		return nil, fmt.Errorf("config: MERCADO_PAGO_TOKEN is required")
	}

	switch cfg.StorageBackend {
	case "memory", "json", "sqlite":
	default:
		return nil, fmt.Errorf("config: unknown STORAGE_BACKEND %q", cfg.StorageBackend)
	}

	ids, err := parseAdminIDs(get("ADMIN_IDS", ""))
	if err != nil {
		return nil, err
	}
	cfg.AdminIDs = ids

	return cfg, nil
}

// IsAdmin reports whether chatID is on the operator allow-list.
func (c *Config) IsAdmin(chatID int64) bool {
	for _, id := range c.AdminIDs {
		if id == chatID {
			return true
		}
	}
	return false
}

func parseAdminIDs(raw string) ([]int64, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, nil
	}
	var ids []int64
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		id, err := strconv.ParseInt(part, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("config: invalid admin id %q: %w", part, err)
		}
		ids = append(ids, id)
	}
	return ids, nil
}

// loadDotEnv parses KEY=VALUE lines. Missing file is not an error; the
// environment alone is a valid configuration source.
func loadDotEnv(path string) map[string]string {
	vals := make(map[string]string)

	f, err := os.Open(path)
	if err != nil {
		return vals
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		key, value, ok := strings.Cut(line, "=")
		if !ok {
			continue
		}
		key = strings.TrimSpace(key)
		value = strings.Trim(strings.TrimSpace(value), `"'`)
		if key != "" {
			vals[key] = value
		}
	}
	return vals
}
