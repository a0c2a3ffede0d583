package handler_test

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stockintel/internal/feature/marketdata/domain"
	marketentity "stockintel/internal/feature/marketdata/domain/entity"
	"stockintel/internal/feature/quotes/domain/entity"
	"stockintel/internal/feature/quotes/transport/handler"
)

// mockQuotesUsecase is a mock implementation of the QuotesUsecase interface.
type mockQuotesUsecase struct {
	ListSymbolsFunc func(ctx context.Context) ([]string, error)
	GetSeriesFunc   func(ctx context.Context, symbol string, limit int) ([]marketentity.MetricRow, error)
	GetSummaryFunc  func(ctx context.Context, symbol string) (*entity.Summary, error)
	CompareFunc     func(ctx context.Context, symbol1, symbol2 string, days int) ([]entity.ComparePoint, error)
}

func (m *mockQuotesUsecase) ListSymbols(ctx context.Context) ([]string, error) {
	return m.ListSymbolsFunc(ctx)
}

func (m *mockQuotesUsecase) GetSeries(ctx context.Context, symbol string, limit int) ([]marketentity.MetricRow, error) {
	return m.GetSeriesFunc(ctx, symbol, limit)
}

func (m *mockQuotesUsecase) GetSummary(ctx context.Context, symbol string) (*entity.Summary, error) {
	return m.GetSummaryFunc(ctx, symbol)
}

func (m *mockQuotesUsecase) Compare(ctx context.Context, symbol1, symbol2 string, days int) ([]entity.ComparePoint, error) {
	return m.CompareFunc(ctx, symbol1, symbol2, days)
}

func newRouter(uc handler.QuotesUsecase) *gin.Engine {
	gin.SetMode(gin.TestMode)
	h := handler.NewQuotesHandler(uc)

	r := gin.New()
	r.GET("/", h.RootHandler)
	r.GET("/healthz", h.HealthHandler)
	r.GET("/companies", h.CompaniesHandler)
	r.GET("/data/:symbol", h.SeriesHandler)
	r.GET("/summary/:symbol", h.SummaryHandler)
	r.GET("/compare", h.CompareHandler)
	return r
}

func get(t *testing.T, r *gin.Engine, url string) *httptest.ResponseRecorder {
	t.Helper()
	w := httptest.NewRecorder()
	req, err := http.NewRequest(http.MethodGet, url, nil)
	require.NoError(t, err)
	r.ServeHTTP(w, req)
	return w
}

func TestQuotesHandler_HealthHandler(t *testing.T) {
	r := newRouter(&mockQuotesUsecase{})

	w := get(t, r, "/healthz")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())
}

func TestQuotesHandler_CompaniesHandler(t *testing.T) {
	tests := []struct {
		name           string
		mockList       func(ctx context.Context) ([]string, error)
		expectedStatus int
		expectedBody   string
	}{
		{
			name: "success",
			mockList: func(_ context.Context) ([]string, error) {
				return []string{"INFY.NS", "TCS.NS"}, nil
			},
			expectedStatus: http.StatusOK,
			expectedBody:   `{"companies":["INFY.NS","TCS.NS"]}`,
		},
		{
			name: "empty store maps to 404",
			mockList: func(_ context.Context) ([]string, error) {
				return nil, nil
			},
			expectedStatus: http.StatusNotFound,
			expectedBody:   `{"error":"No companies found. Run the ingest pipeline to fetch data."}`,
		},
		{
			name: "uninitialized store maps to 503",
			mockList: func(_ context.Context) ([]string, error) {
				return nil, domain.ErrStoreUninitialized
			},
			expectedStatus: http.StatusServiceUnavailable,
			expectedBody:   `{"error":"Database not initialized"}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := newRouter(&mockQuotesUsecase{ListSymbolsFunc: tt.mockList})

			w := get(t, r, "/companies")
			assert.Equal(t, tt.expectedStatus, w.Code)
			assert.JSONEq(t, tt.expectedBody, w.Body.String())
		})
	}
}

func TestQuotesHandler_SeriesHandler(t *testing.T) {
	testDate := time.Date(2024, 5, 31, 0, 0, 0, 0, time.UTC)

	row := marketentity.MetricRow{
		Bar: marketentity.Bar{
			Symbol: "INFY.NS",
			Date:   testDate,
			Open:   1500, High: 1520, Low: 1490, Close: 1510, Volume: 100000,
		},
		DailyReturn: 0.0067,
		MA7:         1505,
		RollingHigh: 1600,
		RollingLow:  1400,
		Volatility:  0.2,
	}

	t.Run("success: uppercases symbol and applies default days", func(t *testing.T) {
		uc := &mockQuotesUsecase{
			GetSeriesFunc: func(_ context.Context, symbol string, limit int) ([]marketentity.MetricRow, error) {
				assert.Equal(t, "INFY.NS", symbol)
				assert.Equal(t, 30, limit)
				return []marketentity.MetricRow{row}, nil
			},
		}

		w := get(t, newRouter(uc), "/data/infy.ns")
		require.Equal(t, http.StatusOK, w.Code)

		var body struct {
			Symbol string `json:"symbol"`
			Data   []struct {
				Date        string  `json:"date"`
				Close       float64 `json:"close"`
				MA7         float64 `json:"ma_7"`
				DailyReturn float64 `json:"daily_return"`
			} `json:"data"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
		assert.Equal(t, "INFY.NS", body.Symbol)
		require.Len(t, body.Data, 1)
		assert.Equal(t, "2024-05-31", body.Data[0].Date)
		assert.Equal(t, 1510.0, body.Data[0].Close)
		assert.Equal(t, 1505.0, body.Data[0].MA7)
	})

	t.Run("custom days query", func(t *testing.T) {
		uc := &mockQuotesUsecase{
			GetSeriesFunc: func(_ context.Context, _ string, limit int) ([]marketentity.MetricRow, error) {
				assert.Equal(t, 7, limit)
				return []marketentity.MetricRow{row}, nil
			},
		}

		w := get(t, newRouter(uc), "/data/INFY.NS?days=7")
		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("unknown symbol maps to 404", func(t *testing.T) {
		uc := &mockQuotesUsecase{
			GetSeriesFunc: func(_ context.Context, _ string, _ int) ([]marketentity.MetricRow, error) {
				return nil, nil
			},
		}

		w := get(t, newRouter(uc), "/data/NOPE.NS")
		assert.Equal(t, http.StatusNotFound, w.Code)
		assert.JSONEq(t, `{"error":"Symbol NOPE.NS not found"}`, w.Body.String())
	})

	t.Run("uninitialized store maps to 503", func(t *testing.T) {
		uc := &mockQuotesUsecase{
			GetSeriesFunc: func(_ context.Context, _ string, _ int) ([]marketentity.MetricRow, error) {
				return nil, domain.ErrStoreUninitialized
			},
		}

		w := get(t, newRouter(uc), "/data/INFY.NS")
		assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	})
}

func TestQuotesHandler_SummaryHandler(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		uc := &mockQuotesUsecase{
			GetSummaryFunc: func(_ context.Context, symbol string) (*entity.Summary, error) {
				assert.Equal(t, "TCS.NS", symbol)
				return &entity.Summary{High52w: 4000, Low52w: 3000, AvgClose: 3500.5}, nil
			},
		}

		w := get(t, newRouter(uc), "/summary/tcs.ns")
		assert.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `{"symbol":"TCS.NS","high_52w":4000,"low_52w":3000,"avg_close":3500.5}`, w.Body.String())
	})

	t.Run("unknown symbol maps to 404", func(t *testing.T) {
		uc := &mockQuotesUsecase{
			GetSummaryFunc: func(_ context.Context, _ string) (*entity.Summary, error) {
				return nil, nil
			},
		}

		w := get(t, newRouter(uc), "/summary/NOPE.NS")
		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}

func TestQuotesHandler_CompareHandler(t *testing.T) {
	testDate := time.Date(2024, 5, 31, 0, 0, 0, 0, time.UTC)

	t.Run("success: dynamic normalized keys", func(t *testing.T) {
		uc := &mockQuotesUsecase{
			CompareFunc: func(_ context.Context, symbol1, symbol2 string, days int) ([]entity.ComparePoint, error) {
				assert.Equal(t, "INFY.NS", symbol1)
				assert.Equal(t, "TCS.NS", symbol2)
				assert.Equal(t, 30, days)
				return []entity.ComparePoint{
					{Date: testDate, Normalized1: 100, Normalized2: 100},
					{Date: testDate.AddDate(0, 0, 1), Normalized1: 105.25, Normalized2: 98.5},
				}, nil
			},
		}

		w := get(t, newRouter(uc), "/compare?symbol1=infy.ns&symbol2=tcs.ns")
		require.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `{
			"symbol1": "INFY.NS",
			"symbol2": "TCS.NS",
			"days": 30,
			"data": [
				{"date":"2024-05-31","INFY.NS_normalized":100,"TCS.NS_normalized":100},
				{"date":"2024-06-01","INFY.NS_normalized":105.25,"TCS.NS_normalized":98.5}
			]
		}`, w.Body.String())
	})

	t.Run("missing symbols map to 400", func(t *testing.T) {
		w := get(t, newRouter(&mockQuotesUsecase{}), "/compare?symbol1=INFY.NS")
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("days out of range maps to 400", func(t *testing.T) {
		for _, q := range []string{"days=0", "days=91", "days=abc"} {
			w := get(t, newRouter(&mockQuotesUsecase{}), "/compare?symbol1=A&symbol2=B&"+q)
			assert.Equal(t, http.StatusBadRequest, w.Code, q)
		}
	})

	t.Run("missing data maps to 404 with symbols listed", func(t *testing.T) {
		uc := &mockQuotesUsecase{
			CompareFunc: func(_ context.Context, _, _ string, _ int) ([]entity.ComparePoint, error) {
				return nil, fmt.Errorf("%w: no data for A.NS", domain.ErrNotFound)
			},
		}

		w := get(t, newRouter(uc), "/compare?symbol1=A.NS&symbol2=B.NS")
		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("disjoint windows map to 400", func(t *testing.T) {
		uc := &mockQuotesUsecase{
			CompareFunc: func(_ context.Context, _, _ string, _ int) ([]entity.ComparePoint, error) {
				return nil, domain.ErrInsufficientData
			},
		}

		w := get(t, newRouter(uc), "/compare?symbol1=A.NS&symbol2=B.NS")
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.JSONEq(t, `{"error":"Not enough data points for comparison in the selected date range"}`, w.Body.String())
	})
}
