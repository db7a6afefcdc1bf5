package config

import (
	"fmt"
	"os"
	"path/filepath"
)

const configTemplate = `# Trade Confirmer Configuration

[defaults]
# Clearing exchange when the notation names none
exchange = "CME"
# Quantity of the default counterparties
quantity = 100
buyer_name = "BUYER_1"
seller_name = "SELLER_1"
# Hedge ratio used when a leg carries no delta
hedge_fallback = 0.4

[journal]
# Record every confirmation in a local SQLite file
enabled = false
# path = "~/.config/trade-confirmer/journal.db"

[server]
addr = ":8080"
# Ristretto budget shared by the parse cache and the session store
cache_max_cost = 1048576
# Idle sessions expire after this long (e.g. "8h", "30m")
session_ttl = "8h"
cors_origin = "*"

[batch]
# Notations processed in parallel
workers = 4

[log]
# debug, info, warn, error
level = "info"
console = true
file = true
max_size = 20
max_backups = 5
max_age = 30

[ui]
# Enable colored output
color_enabled = true
`

// Template returns the text written for a missing config file.
func Template() string {
	return configTemplate
}

func createTemplateConfig(configDir, name string) (string, error) {
	if err := os.MkdirAll(configDir, 0755); err != nil {
		return "", fmt.Errorf("creating config directory: %w", err)
	}

	path := filepath.Join(configDir, name+".toml")
	if err := os.WriteFile(path, []byte(configTemplate), 0644); err != nil {
		return "", fmt.Errorf("writing config template: %w", err)
	}

	return path, nil
}
