package yahoo

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func newTestMarket(server *httptest.Server) *YahooMarket {
	cfg := Config{
		BaseURL: server.URL,
		Timeout: 10 * time.Second,
	}
	return NewYahooMarket(cfg, server.Client())
}

func TestYahooMarket_GetDailyBars_Success(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasPrefix(r.URL.Path, "/v8/finance/chart/INFY.NS") {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if r.URL.Query().Get("interval") != "1d" {
			t.Errorf("expected interval 1d, got %s", r.URL.Query().Get("interval"))
		}
		if r.URL.Query().Get("range") != "2y" {
			t.Errorf("expected range 2y, got %s", r.URL.Query().Get("range"))
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{
			"chart": {
				"result": [{
					"timestamp": [1716854400, 1716940800, 1717027200],
					"indicators": {"quote": [{
						"open":   [1500.0, null, 1510.0],
						"high":   [1520.0, null, 1530.0],
						"low":    [1490.0, null, 1500.0],
						"close":  [1510.0, null, 1525.0],
						"volume": [1000000, null, 1200000]
					}]}
				}],
				"error": null
			}
		}`))
	}))
	defer server.Close()

	bars, err := newTestMarket(server).GetDailyBars(context.Background(), "INFY.NS", "2y")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// The null middle bar is skipped.
	if len(bars) != 2 {
		t.Fatalf("expected 2 bars, got %d", len(bars))
	}
	if bars[0].Open != 1500.0 {
		t.Errorf("expected open 1500, got %f", bars[0].Open)
	}
	if bars[1].Close != 1525.0 {
		t.Errorf("expected close 1525, got %f", bars[1].Close)
	}
	if bars[1].Volume != 1200000 {
		t.Errorf("expected volume 1200000, got %d", bars[1].Volume)
	}
	if !bars[0].Date.Before(bars[1].Date) {
		t.Errorf("expected ascending dates, got %v then %v", bars[0].Date, bars[1].Date)
	}
}

func TestYahooMarket_GetDailyBars_ShortQuoteArrays(t *testing.T) {
	t.Parallel()

	// Truncated payloads: quote arrays shorter than the timestamp list.
	// These rows must be skipped, never dereferenced.
	tests := []struct {
		name string
		body string
	}{
		{
			name: "short open array",
			body: `{
				"chart": {
					"result": [{
						"timestamp": [1716854400, 1716940800],
						"indicators": {"quote": [{
							"open":   [1500.0],
							"high":   [1520.0, 1530.0],
							"low":    [1490.0, 1500.0],
							"close":  [1510.0, 1525.0],
							"volume": [1000000, 1200000]
						}]}
					}],
					"error": null
				}
			}`,
		},
		{
			name: "short close array",
			body: `{
				"chart": {
					"result": [{
						"timestamp": [1716854400, 1716940800],
						"indicators": {"quote": [{
							"open":   [1500.0, 1510.0],
							"high":   [1520.0, 1530.0],
							"low":    [1490.0, 1500.0],
							"close":  [1510.0],
							"volume": [1000000, 1200000]
						}]}
					}],
					"error": null
				}
			}`,
		},
		{
			name: "short high low volume arrays",
			body: `{
				"chart": {
					"result": [{
						"timestamp": [1716854400, 1716940800],
						"indicators": {"quote": [{
							"open":   [1500.0, 1510.0],
							"high":   [1520.0],
							"low":    [1490.0],
							"close":  [1510.0, 1525.0],
							"volume": [1000000]
						}]}
					}],
					"error": null
				}
			}`,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusOK)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer server.Close()

			bars, err := newTestMarket(server).GetDailyBars(context.Background(), "INFY.NS", "2y")
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if len(bars) != 1 {
				t.Fatalf("expected 1 bar, got %d", len(bars))
			}
		})
	}
}

func TestYahooMarket_GetDailyBars_HTTPError(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer server.Close()

	_, err := newTestMarket(server).GetDailyBars(context.Background(), "INFY.NS", "2y")
	if err == nil {
		t.Fatal("expected error, got nil")
	}
	if !strings.Contains(err.Error(), "yahoo http") {
		t.Errorf("expected HTTP error message, got %v", err)
	}
}

func TestYahooMarket_GetDailyBars_APIError(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{
			"chart": {
				"result": null,
				"error": {"code": "Not Found", "description": "No data found, symbol may be delisted"}
			}
		}`))
	}))
	defer server.Close()

	_, err := newTestMarket(server).GetDailyBars(context.Background(), "NOPE.NS", "2y")
	if err == nil {
		t.Fatal("expected error, got nil")
	}
	if !strings.Contains(err.Error(), "symbol may be delisted") {
		t.Errorf("expected API error message, got %v", err)
	}
}

func TestYahooMarket_GetDailyBars_InvalidJSON(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{invalid json`))
	}))
	defer server.Close()

	_, err := newTestMarket(server).GetDailyBars(context.Background(), "INFY.NS", "2y")
	if err == nil {
		t.Fatal("expected error, got nil")
	}
	if !strings.Contains(err.Error(), "yahoo decode") {
		t.Errorf("expected decode error, got %v", err)
	}
}

func TestYahooMarket_GetDailyBars_NoResult(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"chart": {"result": [], "error": null}}`))
	}))
	defer server.Close()

	_, err := newTestMarket(server).GetDailyBars(context.Background(), "INFY.NS", "2y")
	if err == nil {
		t.Fatal("expected error, got nil")
	}
	if !strings.Contains(err.Error(), "no data returned") {
		t.Errorf("expected no-data error, got %v", err)
	}
}

func TestLoadConfig(t *testing.T) {
	cfg := LoadConfig()

	if cfg.BaseURL != "https://query1.finance.yahoo.com" {
		t.Errorf("expected default base URL, got %q", cfg.BaseURL)
	}
	if cfg.Timeout != 30*time.Second {
		t.Errorf("expected timeout 30s, got %v", cfg.Timeout)
	}
}
