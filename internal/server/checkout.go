package server

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/circulate/internal/auth"
	"github.com/mrlokans/circulate/internal/circulation"
	"github.com/mrlokans/circulate/internal/database"
	"github.com/mrlokans/circulate/internal/entities"
)

// CheckoutController exposes the circulation lifecycle over HTTP.
type CheckoutController struct {
	ledger *circulation.Ledger
}

func NewCheckoutController(ledger *circulation.Ledger) *CheckoutController {
	return &CheckoutController{ledger: ledger}
}

type checkoutRequest struct {
	BookID       string `json:"bookId"`
	Action       string `json:"action"`
	StudentEmail string `json:"studentEmail"`
}

// Process borrows or returns a book. The borrower defaults to the
// authenticated principal when the request names no student.
func (ctl *CheckoutController) Process(c *gin.Context) {
	var req checkoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid data"})
		return
	}
	if req.BookID == "" || (req.Action != string(entities.OfflineActionBorrow) && req.Action != string(entities.OfflineActionReturn)) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid data"})
		return
	}

	student := req.StudentEmail
	if student == "" {
		principal, ok := auth.PrincipalFromContext(c)
		if !ok {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid data"})
			return
		}
		student = principal
	}

	var (
		checkout *entities.Checkout
		err      error
	)
	if req.Action == string(entities.OfflineActionBorrow) {
		checkout, err = ctl.ledger.Checkout(req.BookID, student)
	} else {
		checkout, err = ctl.ledger.CheckIn(req.BookID)
	}
	if err != nil {
		switch {
		case errors.Is(err, database.ErrNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "Book not found"})
		case errors.Is(err, database.ErrConstraintViolation):
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		case errors.Is(err, database.ErrInvalidState):
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid data"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to process checkout"})
		}
		return
	}

	c.JSON(http.StatusOK, checkout)
}

// History lists checkouts joined with their books, newest first. The
// optional student query parameter narrows the listing to one borrower.
func (ctl *CheckoutController) History(c *gin.Context) {
	var (
		records []entities.BorrowingRecord
		err     error
	)
	if student := c.Query("student"); student != "" {
		records, err = ctl.ledger.HistoryFor(student)
	} else {
		records, err = ctl.ledger.AllHistory()
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch history"})
		return
	}
	c.JSON(http.StatusOK, records)
}
