package cli

import (
	"flag"
	"fmt"
	"os"

	"github.com/mrlokans/circulate/internal/circulation"
	"github.com/mrlokans/circulate/internal/config"
	"github.com/mrlokans/circulate/internal/database"
	"github.com/mrlokans/circulate/internal/database/books"
	"github.com/mrlokans/circulate/internal/database/checkouts"
	"github.com/mrlokans/circulate/internal/database/outbox"
)

// CheckinCommand closes the active checkout for a book.
type CheckinCommand struct {
	DatabasePath string
	BookID       string
}

// NewCheckinCommand creates a new CheckinCommand.
func NewCheckinCommand() *CheckinCommand {
	return &CheckinCommand{}
}

// ParseFlags parses command line flags.
func (cmd *CheckinCommand) ParseFlags(args []string) error {
	fs := flag.NewFlagSet("checkin", flag.ExitOnError)

	cfg := config.NewConfig()
	fs.StringVar(&cmd.DatabasePath, "db", cfg.Database.Path, "Path to the local database file")
	fs.StringVar(&cmd.BookID, "book", "", "Identifier of the book to return")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s checkin [options]\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Return a book. The active checkout is closed locally and the change\n")
		fmt.Fprintf(os.Stderr, "is pushed to the remote authority on the next sync.\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		fs.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExample:\n")
		fmt.Fprintf(os.Stderr, "  %s checkin -book <id>\n", os.Args[0])
	}

	if err := fs.Parse(args); err != nil {
		return err
	}

	if cmd.BookID == "" {
		fs.Usage()
		return fmt.Errorf("book is required")
	}
	return nil
}

// Run executes the checkin command.
func (cmd *CheckinCommand) Run() error {
	db, err := database.NewDatabase(cmd.DatabasePath)
	if err != nil {
		return err
	}
	defer db.Close()

	ledger := circulation.NewLedger(
		books.NewRepository(db.DB),
		checkouts.NewRepository(db.DB),
		outbox.NewRepository(db.DB),
	)

	checkout, err := ledger.CheckIn(cmd.BookID)
	if err != nil {
		return err
	}

	fmt.Printf("Checked in book %s from %s (returned %s, pending sync)\n",
		checkout.BookID, checkout.StudentEmail, checkout.ReturnDate.Format("2006-01-02 15:04"))
	return nil
}
