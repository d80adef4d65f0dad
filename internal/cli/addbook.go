package cli

import (
	"flag"
	"fmt"
	"os"

	"github.com/google/uuid"

	"github.com/mrlokans/circulate/internal/config"
	"github.com/mrlokans/circulate/internal/database"
	"github.com/mrlokans/circulate/internal/database/books"
	"github.com/mrlokans/circulate/internal/entities"
)

// AddBookCommand registers a book in the local catalog.
type AddBookCommand struct {
	DatabasePath string
	Title        string
	Author       string
	ISBN         string
	Quantity     int
}

// NewAddBookCommand creates a new AddBookCommand.
func NewAddBookCommand() *AddBookCommand {
	return &AddBookCommand{}
}

// ParseFlags parses command line flags.
func (cmd *AddBookCommand) ParseFlags(args []string) error {
	fs := flag.NewFlagSet("add-book", flag.ExitOnError)

	cfg := config.NewConfig()
	fs.StringVar(&cmd.DatabasePath, "db", cfg.Database.Path, "Path to the local database file")
	fs.StringVar(&cmd.Title, "title", "", "Book title")
	fs.StringVar(&cmd.Author, "author", "", "Book author")
	fs.StringVar(&cmd.ISBN, "isbn", "", "ISBN (10 or 13 digits, unique)")
	fs.IntVar(&cmd.Quantity, "quantity", 1, "Number of copies")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s add-book [options]\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Register a book in the local catalog. Books carry no synced flag;\n")
		fmt.Fprintf(os.Stderr, "the full set travels with every full sync.\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		fs.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExample:\n")
		fmt.Fprintf(os.Stderr, "  %s add-book -title Dune -author Herbert -isbn 1234567890 -quantity 2\n", os.Args[0])
	}

	if err := fs.Parse(args); err != nil {
		return err
	}

	if cmd.Title == "" || cmd.Author == "" || cmd.ISBN == "" {
		fs.Usage()
		return fmt.Errorf("title, author and isbn are required")
	}
	return nil
}

// Run executes the add-book command.
func (cmd *AddBookCommand) Run() error {
	db, err := database.NewDatabase(cmd.DatabasePath)
	if err != nil {
		return err
	}
	defer db.Close()

	book := &entities.Book{
		ID:       uuid.NewString(),
		Title:    cmd.Title,
		Author:   cmd.Author,
		ISBN:     cmd.ISBN,
		Quantity: cmd.Quantity,
	}
	if err := books.NewRepository(db.DB).AddBook(book); err != nil {
		return err
	}

	fmt.Printf("Added %q by %s (%s)\n", book.Title, book.Author, book.ID)
	return nil
}
