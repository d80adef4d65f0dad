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

// CheckoutCommand records a borrow in the local ledger.
type CheckoutCommand struct {
	DatabasePath string
	BookID       string
	Student      string
}

// NewCheckoutCommand creates a new CheckoutCommand.
func NewCheckoutCommand() *CheckoutCommand {
	return &CheckoutCommand{}
}

// ParseFlags parses command line flags.
func (cmd *CheckoutCommand) ParseFlags(args []string) error {
	fs := flag.NewFlagSet("checkout", flag.ExitOnError)

	cfg := config.NewConfig()
	fs.StringVar(&cmd.DatabasePath, "db", cfg.Database.Path, "Path to the local database file")
	fs.StringVar(&cmd.BookID, "book", "", "Identifier of the book to borrow")
	fs.StringVar(&cmd.Student, "student", "", "Email of the borrowing student")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s checkout [options]\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Borrow a book. The new checkout is recorded locally and pushed to\n")
		fmt.Fprintf(os.Stderr, "the remote authority on the next sync.\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		fs.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExample:\n")
		fmt.Fprintf(os.Stderr, "  %s checkout -book <id> -student alice@example.com\n", os.Args[0])
	}

	if err := fs.Parse(args); err != nil {
		return err
	}

	if cmd.BookID == "" || cmd.Student == "" {
		fs.Usage()
		return fmt.Errorf("book and student are required")
	}
	return nil
}

// Run executes the checkout command.
func (cmd *CheckoutCommand) Run() error {
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

	checkout, err := ledger.Checkout(cmd.BookID, cmd.Student)
	if err != nil {
		return err
	}

	fmt.Printf("Checked out book %s to %s (checkout %s, pending sync)\n",
		checkout.BookID, checkout.StudentEmail, checkout.ID)
	return nil
}
