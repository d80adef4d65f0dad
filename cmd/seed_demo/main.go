// Command seed_demo populates a circulation database with demo catalog
// data plus a librarian user, and prints the user's API token.
package main

import (
	"flag"
	"fmt"
	"log"

	"github.com/google/uuid"

	"github.com/mrlokans/circulate/internal/database"
	"github.com/mrlokans/circulate/internal/database/books"
	"github.com/mrlokans/circulate/internal/database/users"
	"github.com/mrlokans/circulate/internal/entities"
)

var demoBooks = []entities.Book{
	{Title: "Dune", Author: "Frank Herbert", ISBN: "9780441013593", Quantity: 2},
	{Title: "The Left Hand of Darkness", Author: "Ursula K. Le Guin", ISBN: "9780441478125", Quantity: 1},
	{Title: "Snow Crash", Author: "Neal Stephenson", ISBN: "9780553380958", Quantity: 3},
	{Title: "The Dispossessed", Author: "Ursula K. Le Guin", ISBN: "9780061054884", Quantity: 1},
	{Title: "Neuromancer", Author: "William Gibson", ISBN: "9780441569595", Quantity: 2},
}

func main() {
	dbPath := flag.String("db", "./circulate.db", "Path to the database file")
	email := flag.String("email", "librarian@example.com", "Demo librarian email")
	flag.Parse()

	db, err := database.NewDatabase(*dbPath)
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	defer db.Close()

	booksRepo := books.NewRepository(db.DB)
	for _, book := range demoBooks {
		book.ID = uuid.NewString()
		if err := booksRepo.AddBook(&book); err != nil {
			log.Printf("Skipping %q: %v", book.Title, err)
			continue
		}
		fmt.Printf("Added %q by %s\n", book.Title, book.Author)
	}

	usersRepo := users.NewRepository(db.DB)

	// Re-running the seeder reuses the existing librarian and its token.
	var user *entities.User
	existing, err := usersRepo.GetAllUsers()
	if err != nil {
		log.Fatalf("Failed to list users: %v", err)
	}
	for i := range existing {
		if existing[i].Email == *email {
			user = &existing[i]
			break
		}
	}
	if user == nil {
		user, err = usersRepo.CreateUser(*email, "Demo Librarian")
		if err != nil {
			log.Fatalf("Failed to create demo user: %v", err)
		}
	}

	fmt.Printf("\nDemo librarian: %s\nAPI token: %s\n", user.Email, user.Token)
}
