// Package handler provides the HTTP handlers for the quotes feature.
package handler

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"stockintel/internal/feature/marketdata/domain"
	marketentity "stockintel/internal/feature/marketdata/domain/entity"
	"stockintel/internal/feature/quotes/domain/entity"
	"stockintel/internal/feature/quotes/transport/http/dto"
)

const (
	defaultSeriesDays  = 30
	defaultCompareDays = 30
	maxCompareDays     = 90
)

// QuotesUsecase defines the query operations the handlers need.
// Following Go convention: interfaces are defined by the consumer
// (handler), not the provider (usecase).
type QuotesUsecase interface {
	ListSymbols(ctx context.Context) ([]string, error)
	GetSeries(ctx context.Context, symbol string, limit int) ([]marketentity.MetricRow, error)
	GetSummary(ctx context.Context, symbol string) (*entity.Summary, error)
	Compare(ctx context.Context, symbol1, symbol2 string, days int) ([]entity.ComparePoint, error)
}

// QuotesHandler handles HTTP requests for stored stock data.
type QuotesHandler struct {
	uc QuotesUsecase
}

// NewQuotesHandler creates a QuotesHandler with the given usecase.
func NewQuotesHandler(uc QuotesUsecase) *QuotesHandler {
	return &QuotesHandler{uc: uc}
}

// RootHandler describes the API.
//
// GET /
func (h *QuotesHandler) RootHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"message": "Stock Data Intelligence API",
		"endpoints": gin.H{
			"/companies":       "GET - List all available companies",
			"/data/:symbol":    "GET - Recent daily data with metrics",
			"/summary/:symbol": "GET - 52-week summary",
			"/compare":         "GET - Compare two symbols (symbol1, symbol2, days)",
			"/healthz":         "GET - Liveness check",
		},
	})
}

// HealthHandler reports liveness.
//
// GET /healthz
func (h *QuotesHandler) HealthHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// CompaniesHandler lists every symbol with stored data.
//
// GET /companies
func (h *QuotesHandler) CompaniesHandler(c *gin.Context) {
	symbols, err := h.uc.ListSymbols(c.Request.Context())
	if err != nil {
		h.writeError(c, err)
		return
	}
	if len(symbols) == 0 {
		c.JSON(http.StatusNotFound, dto.ErrorResponse{
			Error: "No companies found. Run the ingest pipeline to fetch data.",
		})
		return
	}
	c.JSON(http.StatusOK, dto.CompaniesResponse{Companies: symbols})
}

// SeriesHandler returns the most recent daily rows for a symbol.
//
// GET /data/:symbol?days=30
func (h *QuotesHandler) SeriesHandler(c *gin.Context) {
	symbol := strings.ToUpper(c.Param("symbol"))

	days, err := strconv.Atoi(c.DefaultQuery("days", strconv.Itoa(defaultSeriesDays)))
	if err != nil || days < 1 {
		days = defaultSeriesDays
	}

	rows, err := h.uc.GetSeries(c.Request.Context(), symbol, days)
	if err != nil {
		h.writeError(c, err)
		return
	}
	if len(rows) == 0 {
		c.JSON(http.StatusNotFound, dto.ErrorResponse{
			Error: fmt.Sprintf("Symbol %s not found", symbol),
		})
		return
	}

	out := make([]dto.MetricRowResponse, 0, len(rows))
	for _, r := range rows {
		out = append(out, dto.MetricRowResponse{
			Date:        r.Date.Format(marketentity.DateLayout),
			Open:        r.Open,
			High:        r.High,
			Low:         r.Low,
			Close:       r.Close,
			Volume:      r.Volume,
			DailyReturn: r.DailyReturn,
			MA7:         r.MA7,
			RollingHigh: r.RollingHigh,
			RollingLow:  r.RollingLow,
			Volatility:  r.Volatility,
			Symbol:      r.Symbol,
		})
	}
	c.JSON(http.StatusOK, dto.SeriesResponse{Symbol: symbol, Data: out})
}

// SummaryHandler returns the 52-week summary for a symbol.
//
// GET /summary/:symbol
func (h *QuotesHandler) SummaryHandler(c *gin.Context) {
	symbol := strings.ToUpper(c.Param("symbol"))

	s, err := h.uc.GetSummary(c.Request.Context(), symbol)
	if err != nil {
		h.writeError(c, err)
		return
	}
	if s == nil {
		c.JSON(http.StatusNotFound, dto.ErrorResponse{
			Error: fmt.Sprintf("Symbol %s not found", symbol),
		})
		return
	}

	c.JSON(http.StatusOK, dto.SummaryResponse{
		Symbol:   symbol,
		High52w:  s.High52w,
		Low52w:   s.Low52w,
		AvgClose: s.AvgClose,
	})
}

// CompareHandler compares two symbols' normalized performance.
//
// GET /compare?symbol1=INFY.NS&symbol2=TCS.NS&days=30
func (h *QuotesHandler) CompareHandler(c *gin.Context) {
	symbol1 := strings.ToUpper(c.Query("symbol1"))
	symbol2 := strings.ToUpper(c.Query("symbol2"))
	if symbol1 == "" || symbol2 == "" {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{
			Error: "symbol1 and symbol2 are required",
		})
		return
	}

	days, err := strconv.Atoi(c.DefaultQuery("days", strconv.Itoa(defaultCompareDays)))
	if err != nil || days < 1 || days > maxCompareDays {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{
			Error: fmt.Sprintf("days must be between 1 and %d", maxCompareDays),
		})
		return
	}

	points, err := h.uc.Compare(c.Request.Context(), symbol1, symbol2, days)
	if err != nil {
		h.writeError(c, err)
		return
	}

	data := make([]map[string]any, 0, len(points))
	for _, p := range points {
		data = append(data, map[string]any{
			"date":                  p.Date.Format(marketentity.DateLayout),
			symbol1 + "_normalized": p.Normalized1,
			symbol2 + "_normalized": p.Normalized2,
		})
	}
	c.JSON(http.StatusOK, dto.CompareResponse{
		Symbol1: symbol1,
		Symbol2: symbol2,
		Days:    days,
		Data:    data,
	})
}

// writeError maps domain errors to HTTP status codes.
func (h *QuotesHandler) writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, domain.ErrStoreUninitialized):
		c.JSON(http.StatusServiceUnavailable, dto.ErrorResponse{Error: "Database not initialized"})
	case errors.Is(err, domain.ErrNotFound):
		c.JSON(http.StatusNotFound, dto.ErrorResponse{Error: err.Error()})
	case errors.Is(err, domain.ErrInsufficientData):
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{
			Error: "Not enough data points for comparison in the selected date range",
		})
	default:
		c.JSON(http.StatusInternalServerError, dto.ErrorResponse{Error: err.Error()})
	}
}
