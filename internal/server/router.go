// Package server implements the remote authority: the server-side
// canonical store the offline clients reconcile against. It exposes
// idempotent upsert-by-identifier sync endpoints plus catalog routes.
package server

import (
	"github.com/gin-gonic/gin"

	"github.com/mrlokans/circulate/internal/auth"
	"github.com/mrlokans/circulate/internal/circulation"
	"github.com/mrlokans/circulate/internal/database/books"
	"github.com/mrlokans/circulate/internal/database/checkouts"
)

// RouterConfig carries the router's dependencies.
type RouterConfig struct {
	Books     *books.Repository
	Checkouts *checkouts.Repository
	Ledger    *circulation.Ledger
	Verifier  auth.TokenVerifier
	Version   string
}

// NewRouter creates the authority's HTTP router. Every /api route except
// the health check requires an authenticated principal.
func NewRouter(cfg RouterConfig) *gin.Engine {
	router := gin.New()
	router.Use(gin.Logger())
	router.Use(gin.Recovery())

	healthController := NewHealthController(cfg.Books, cfg.Version)
	router.GET("/api/health", healthController.Status)

	api := router.Group("/api")
	if cfg.Verifier != nil {
		api.Use(auth.Middleware(cfg.Verifier))
	}

	booksController := NewBooksController(cfg.Books)
	api.GET("/books", booksController.List)
	api.POST("/books", booksController.Create)

	syncController := NewSyncController(cfg.Books, cfg.Checkouts)
	api.POST("/sync", syncController.FullSync)
	api.POST("/offline-sync", syncController.OfflineSync)

	if cfg.Ledger != nil {
		checkoutController := NewCheckoutController(cfg.Ledger)
		api.POST("/checkout", checkoutController.Process)
		api.GET("/checkouts", checkoutController.History)
	}

	return router
}
