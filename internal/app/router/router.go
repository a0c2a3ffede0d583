// Package router wires the HTTP routes.
package router

import (
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	quoteshandler "stockintel/internal/feature/quotes/transport/handler"
)

// NewRouter builds the gin engine with CORS enabled for the dashboard
// frontend. Every route is read-only; writes happen through the ingest
// command.
func NewRouter(quotes *quoteshandler.QuotesHandler) *gin.Engine {
	r := gin.Default()
	r.Use(cors.Default())

	r.GET("/", quotes.RootHandler)
	r.GET("/healthz", quotes.HealthHandler)
	r.GET("/companies", quotes.CompaniesHandler)
	r.GET("/data/:symbol", quotes.SeriesHandler)
	r.GET("/summary/:symbol", quotes.SummaryHandler)
	r.GET("/compare", quotes.CompareHandler)

	return r
}
