package server

import (
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/circulate/internal/database/books"
	"github.com/mrlokans/circulate/internal/database/checkouts"
	"github.com/mrlokans/circulate/internal/entities"
)

// SyncController handles the two reconciliation endpoints.
type SyncController struct {
	books     *books.Repository
	checkouts *checkouts.Repository
}

func NewSyncController(booksRepo *books.Repository, checkoutsRepo *checkouts.Repository) *SyncController {
	return &SyncController{books: booksRepo, checkouts: checkoutsRepo}
}

type fullSyncRequest struct {
	Books     []entities.Book     `json:"books"`
	Checkouts []entities.Checkout `json:"checkouts"`
}

type offlineSyncRequest struct {
	Checkouts []entities.Checkout `json:"checkouts"`
}

type syncResult struct {
	ID      string `json:"id"`
	Success bool   `json:"success"`
}

// FullSync upserts the whole batch. All-or-nothing: the first failed upsert
// aborts the request with a 500 and the client keeps its synced flags down.
// Upserts are by identifier and idempotent, so retrying the identical batch
// converges on the same state.
func (s *SyncController) FullSync(c *gin.Context) {
	var req fullSyncRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid sync data format"})
		return
	}

	for i := range req.Books {
		book := req.Books[i]
		if err := s.books.Upsert(&book); err != nil {
			log.Printf("[SYNC] failed to upsert book %s: %v", book.ID, err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
	}

	for i := range req.Checkouts {
		checkout := req.Checkouts[i]
		checkout.Synced = true
		if err := s.checkouts.Upsert(&checkout); err != nil {
			log.Printf("[SYNC] failed to upsert checkout %s: %v", checkout.ID, err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
	}

	c.JSON(http.StatusOK, gin.H{"success": true})
}

// OfflineSync upserts each checkout independently and reports a per-record
// acknowledgement. A rejected record does not abort its siblings.
func (s *SyncController) OfflineSync(c *gin.Context) {
	if c.Request.ContentLength == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "No data to sync"})
		return
	}

	var req offlineSyncRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Checkouts == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid sync data format"})
		return
	}

	results := make([]syncResult, 0, len(req.Checkouts))
	for i := range req.Checkouts {
		checkout := req.Checkouts[i]
		if checkout.CheckoutDate.IsZero() {
			checkout.CheckoutDate = time.Now()
		}
		checkout.Synced = true

		if checkout.ID == "" || checkout.BookID == "" {
			results = append(results, syncResult{ID: checkout.ID, Success: false})
			continue
		}
		if err := s.checkouts.Upsert(&checkout); err != nil {
			log.Printf("[SYNC] failed to upsert checkout %s: %v", checkout.ID, err)
			results = append(results, syncResult{ID: checkout.ID, Success: false})
			continue
		}
		results = append(results, syncResult{ID: checkout.ID, Success: true})
	}

	c.JSON(http.StatusOK, gin.H{"results": results})
}
