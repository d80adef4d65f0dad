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
	"github.com/mrlokans/circulate/internal/entities"
)

// HistoryCommand lists checkouts joined with their books, newest first.
type HistoryCommand struct {
	DatabasePath string
	Student      string
}

// NewHistoryCommand creates a new HistoryCommand.
func NewHistoryCommand() *HistoryCommand {
	return &HistoryCommand{}
}

// ParseFlags parses command line flags.
func (cmd *HistoryCommand) ParseFlags(args []string) error {
	fs := flag.NewFlagSet("history", flag.ExitOnError)

	cfg := config.NewConfig()
	fs.StringVar(&cmd.DatabasePath, "db", cfg.Database.Path, "Path to the local database file")
	fs.StringVar(&cmd.Student, "student", "", "Limit the listing to one student's email")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s history [options]\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "List borrowing history, newest checkout first.\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		fs.PrintDefaults()
	}

	return fs.Parse(args)
}

// Run executes the history command.
func (cmd *HistoryCommand) Run() error {
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

	var records []entities.BorrowingRecord
	if cmd.Student != "" {
		records, err = ledger.HistoryFor(cmd.Student)
	} else {
		records, err = ledger.AllHistory()
	}
	if err != nil {
		return err
	}

	if len(records) == 0 {
		fmt.Println("No checkouts recorded.")
		return nil
	}

	for _, record := range records {
		state := "borrowed"
		when := record.CheckoutDate.Format("2006-01-02")
		if record.ReturnDate != nil {
			state = "returned " + record.ReturnDate.Format("2006-01-02")
		}
		fmt.Printf("%s  %-30q %-25s %s (%s)\n",
			when, record.Book.Title, record.StudentEmail, state, record.ID)
	}
	return nil
}
