package data

import (
	"context"
	"testing"
	"time"
)

func TestGenerateHourlyDeterministic(t *testing.T) {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	a := GenerateHourly(start, 100, 42)
	b := GenerateHourly(start, 100, 42)

	if a.Len() != 100 {
		t.Fatalf("Expected 100 points, got %d", a.Len())
	}
	for i := range a.Values {
		if a.Values[i] != b.Values[i] {
			t.Fatalf("Same seed must produce identical series, diverged at %d", i)
		}
	}

	c := GenerateHourly(start, 100, 43)
	same := true
	for i := range a.Values {
		if a.Values[i] != c.Values[i] {
			same = false
			break
		}
	}
	if same {
		t.Error("Different seeds should produce different series")
	}
}

func TestGenerateHourlyIndex(t *testing.T) {
	start := time.Date(2024, 3, 1, 6, 0, 0, 0, time.UTC)
	s := GenerateHourly(start, 48, 1)

	if !s.Timestamps[0].Equal(start) {
		t.Errorf("Expected first timestamp %v, got %v", start, s.Timestamps[0])
	}
	if got := s.InferFreq(); got != time.Hour {
		t.Errorf("Expected hourly frequency, got %v", got)
	}
}

func TestSyntheticFetchHistorical(t *testing.T) {
	src := NewSyntheticSource(7)
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	end := start.Add(23 * time.Hour)

	s, err := src.FetchHistorical(context.Background(), start, end)
	if err != nil {
		t.Fatalf("FetchHistorical failed: %v", err)
	}
	if s.Len() != 24 {
		t.Errorf("Expected 24 hourly points, got %d", s.Len())
	}
}

func TestSyntheticPricesLookLikePrices(t *testing.T) {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	s := GenerateHourly(start, 720, 99)

	mean := s.Mean()
	if mean < 30 || mean > 70 {
		t.Errorf("Mean price drifted out of range: %v", mean)
	}
	if s.Std() < 5 {
		t.Errorf("Expected the daily cycle to show up in the spread, std=%v", s.Std())
	}
}

func TestSourceFactory(t *testing.T) {
	src, err := New(Config{Type: "synthetic", Seed: 1})
	if err != nil {
		t.Fatalf("Factory failed for synthetic: %v", err)
	}
	if src.Name() != "synthetic" {
		t.Errorf("Expected synthetic, got %s", src.Name())
	}

	if _, err := New(Config{Type: "gridstatus"}); err == nil {
		t.Error("Expected error for gridstatus without credentials")
	}
	if _, err := New(Config{Type: "eia"}); err == nil {
		t.Error("Expected error for eia without an API key")
	}
	if _, err := New(Config{Type: "bogus"}); err == nil {
		t.Error("Expected error for unknown source type")
	}
}

func TestTypes(t *testing.T) {
	types := Types()
	if len(types) != 3 {
		t.Fatalf("Expected 3 source types, got %d", len(types))
	}
}
