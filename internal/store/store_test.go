package store

import (
	"strings"
	"testing"
	"time"
)

func TestSaveAndLoad(t *testing.T) {
	s := New(time.Minute)
	defer s.Close()

	summary := s.Save("stock_prices", map[string]any{"symbol": "AAPL"}, `[{"date":"2026-01-02","close":195.5}]`)

	if summary.ID == "" {
		t.Fatal("Save() returned empty ID")
	}
	if summary.ToolName != "stock_prices" {
		t.Errorf("ToolName = %q, want stock_prices", summary.ToolName)
	}
	if summary.Digest == "" {
		t.Error("Save() returned empty digest")
	}

	result, ok := s.Load(summary.ID)
	if !ok {
		t.Fatal("Load() did not find saved entry")
	}
	if !strings.Contains(result, "2026-01-02") {
		t.Errorf("Load() = %q, missing original data", result)
	}
}

func TestLoad_Missing(t *testing.T) {
	s := New(time.Minute)
	defer s.Close()

	if _, ok := s.Load("nonexistent"); ok {
		t.Error("Load() found entry that was never saved")
	}
}

func TestDistinctIDsForDifferentResults(t *testing.T) {
	s := New(time.Minute)
	defer s.Close()

	args := map[string]any{"symbol": "MSFT"}
	first := s.Save("stock_prices", args, `{"close":400}`)
	second := s.Save("stock_prices", args, `{"close":401}`)

	if first.ID == second.ID {
		t.Error("same ID for different results of the same call")
	}
	if s.Size() != 2 {
		t.Errorf("Size() = %d, want 2", s.Size())
	}
}

func TestLoadMany(t *testing.T) {
	s := New(time.Minute)
	defer s.Close()

	a := s.Save("stock_prices", map[string]any{"symbol": "AAPL"}, "result-a")
	b := s.Save("market_news", map[string]any{"topic": "tech"}, "result-b")

	results := s.LoadMany([]string{a.ID, "missing", b.ID})
	if len(results) != 2 {
		t.Fatalf("LoadMany() returned %d results, want 2", len(results))
	}
	if results[0].Data != "result-a" || results[1].Data != "result-b" {
		t.Errorf("LoadMany() order not preserved: %v", results)
	}
	if results[0].ID != a.ID {
		t.Errorf("LoadMany() ID = %q, want %q", results[0].ID, a.ID)
	}
}

func TestDescribe(t *testing.T) {
	tests := []struct {
		name     string
		toolName string
		args     map[string]any
		want     string
	}{
		{
			name:     "no args",
			toolName: "market_news",
			args:     nil,
			want:     "market_news",
		},
		{
			name:     "single arg",
			toolName: "stock_prices",
			args:     map[string]any{"symbol": "AAPL"},
			want:     "stock_prices(symbol=AAPL)",
		},
		{
			name:     "args sorted by key",
			toolName: "company_financials",
			args:     map[string]any{"period": "annual", "symbol": "MSFT"},
			want:     "company_financials(period=annual, symbol=MSFT)",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Describe(tt.toolName, tt.args); got != tt.want {
				t.Errorf("Describe() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestCleanupRemovesExpired(t *testing.T) {
	s := New(time.Minute)
	defer s.Close()

	summary := s.Save("stock_prices", map[string]any{"symbol": "AAPL"}, "data")

	s.mu.Lock()
	s.entries[summary.ID].accessedAt = time.Now().Add(-2 * time.Minute)
	s.mu.Unlock()

	s.cleanup()

	if _, ok := s.Load(summary.ID); ok {
		t.Error("expired entry survived cleanup")
	}
}

func TestClear(t *testing.T) {
	s := New(time.Minute)
	defer s.Close()

	s.Save("stock_prices", map[string]any{"symbol": "AAPL"}, "data")
	s.Clear()

	if s.Size() != 0 {
		t.Errorf("Size() after Clear = %d, want 0", s.Size())
	}
}
