package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadAppliesDefaults(t *testing.T) {
	path := writeConfig(t, `
environment: test
data:
  backend: csv
  prices_csv: data/prices.csv
  events_csv: data/events.csv
`)

	c, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if c.Server.Port != 8080 {
		t.Fatalf("expected default port 8080, got %d", c.Server.Port)
	}
	if c.Server.ShutdownTimeout != 10*time.Second {
		t.Fatalf("expected default shutdown timeout, got %v", c.Server.ShutdownTimeout)
	}
	if c.Analysis.Draws != 1000 || c.Analysis.Chains != 2 {
		t.Fatalf("unexpected analysis defaults: draws=%d chains=%d", c.Analysis.Draws, c.Analysis.Chains)
	}
	if c.Correlation.LagWindowDays != 30 || c.Correlation.PriceWindowDays != 7 {
		t.Fatalf("unexpected correlation defaults: %+v", c.Correlation)
	}
	if c.Data.Symbol != "BRENT" {
		t.Fatalf("expected default symbol BRENT, got %q", c.Data.Symbol)
	}
}

func TestLoadRejectsUnknownBackend(t *testing.T) {
	path := writeConfig(t, `
environment: test
data:
  backend: postgres
`)

	if _, err := Load(path); err == nil {
		t.Fatal("expected validation error for unknown backend")
	}
}

func TestLoadRejectsFeedWithoutURL(t *testing.T) {
	path := writeConfig(t, `
environment: test
data:
  backend: csv
  prices_csv: p.csv
  events_csv: e.csv
feed:
  enabled: true
  symbols: ["OANDA:BCO_USD"]
ingest:
  backend: kafka
kafka:
  brokers: ["localhost:9092"]
`)

	if _, err := Load(path); err == nil {
		t.Fatal("expected validation error for feed without websocket_url")
	}
}

func TestLoadWithEnvOverrides(t *testing.T) {
	path := writeConfig(t, `
environment: test
data:
  backend: csv
  prices_csv: data/prices.csv
  events_csv: data/events.csv
`)

	t.Setenv("PRICES_CSV", "/tmp/override.csv")
	t.Setenv("KAFKA_BROKERS", "b1:9092,b2:9092")

	c, err := LoadWithEnv(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if c.Data.PricesCSV != "/tmp/override.csv" {
		t.Fatalf("env override not applied: %q", c.Data.PricesCSV)
	}
	if len(c.Kafka.Brokers) != 2 || c.Kafka.Brokers[1] != "b2:9092" {
		t.Fatalf("broker override not applied: %v", c.Kafka.Brokers)
	}
}
