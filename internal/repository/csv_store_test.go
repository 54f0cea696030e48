package repository

import (
	"context"
	"os"
	"path/filepath"
	"testing"
)

func writeTemp(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write temp file: %v", err)
	}
	return path
}

func TestCSVPriceStoreLoad(t *testing.T) {
	path := writeTemp(t, "prices.csv", "Date,Price\n20-May-87,18.63\n21-May-87,18.45\n22-May-87,18.55\n")
	series, err := NewCSVPriceStore(path, nil).Load(context.Background(), "BRENT")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(series.Points) != 3 {
		t.Fatalf("expected 3 points, got %d", len(series.Points))
	}
	if series.Points[0].Price != 18.63 {
		t.Fatalf("unexpected first price %v", series.Points[0].Price)
	}
	if series.Points[0].Date.Year() != 1987 {
		t.Fatalf("legacy date layout not parsed: %v", series.Points[0].Date)
	}
}

func TestCSVPriceStoreSkipsBadRows(t *testing.T) {
	path := writeTemp(t, "prices.csv", "Date,Price\n20-May-87,18.63\nnot-a-date,1.0\n21-May-87,abc\n22-May-87,18.55\n")
	series, err := NewCSVPriceStore(path, nil).Load(context.Background(), "BRENT")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(series.Points) != 2 {
		t.Fatalf("expected 2 valid points, got %d", len(series.Points))
	}
}

func TestCSVPriceStoreSortsAndDeduplicates(t *testing.T) {
	path := writeTemp(t, "prices.csv", "Date,Price\n22-May-87,18.55\n20-May-87,18.63\n21-May-87,18.45\n21-May-87,18.50\n")
	series, err := NewCSVPriceStore(path, nil).Load(context.Background(), "BRENT")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(series.Points) != 3 {
		t.Fatalf("expected 3 points after dedup, got %d", len(series.Points))
	}
	for i := 1; i < len(series.Points); i++ {
		if !series.Points[i-1].Date.Before(series.Points[i].Date) {
			t.Fatalf("points not sorted at %d", i)
		}
	}
	if series.Points[1].Price != 18.50 {
		t.Fatalf("expected last quote kept for repeated date, got %v", series.Points[1].Price)
	}
}

func TestCSVEventStoreLoad(t *testing.T) {
	path := writeTemp(t, "events.csv", "Start_Date,Event_Name,Category\n1990-08-02,Gulf War,geopolitical\n2008-09-15,Financial crisis,economic\n2016-11-30,Production cut,opec\n")
	events, err := NewCSVEventStore(path, nil).Load(context.Background())
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(events) != 3 {
		t.Fatalf("expected 3 events, got %d", len(events))
	}
	if events[0].Name != "Gulf War" {
		t.Fatalf("unexpected event name %q", events[0].Name)
	}
	if events[2].Category != "opec" {
		t.Fatalf("unexpected category %q", events[2].Category)
	}
}
