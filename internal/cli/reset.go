package cli

import (
	"flag"
	"fmt"
	"os"

	"github.com/mrlokans/circulate/internal/config"
	"github.com/mrlokans/circulate/internal/database"
)

// ResetCommand clears every collection in the local store.
type ResetCommand struct {
	DatabasePath string
	Force        bool
}

// NewResetCommand creates a new ResetCommand.
func NewResetCommand() *ResetCommand {
	return &ResetCommand{}
}

// ParseFlags parses command line flags.
func (cmd *ResetCommand) ParseFlags(args []string) error {
	fs := flag.NewFlagSet("reset", flag.ExitOnError)

	cfg := config.NewConfig()
	fs.StringVar(&cmd.DatabasePath, "db", cfg.Database.Path, "Path to the local database file")
	fs.BoolVar(&cmd.Force, "force", false, "Skip the confirmation prompt")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s reset [options]\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Clear every collection in the local store: books, checkouts, users,\n")
		fmt.Fprintf(os.Stderr, "offline sync journal, and sync run history. All collections are cleared\n")
		fmt.Fprintf(os.Stderr, "in one transaction; a failed clear leaves everything in place.\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		fs.PrintDefaults()
	}

	return fs.Parse(args)
}

// Run executes the reset command.
func (cmd *ResetCommand) Run() error {
	if !cmd.Force {
		fmt.Printf("This clears ALL local data in %s. Continue? [y/N] ", cmd.DatabasePath)
		var answer string
		fmt.Scanln(&answer)
		if answer != "y" && answer != "Y" {
			fmt.Println("Aborted.")
			return nil
		}
	}

	db, err := database.NewDatabase(cmd.DatabasePath)
	if err != nil {
		return err
	}
	defer db.Close()

	if err := db.Reset(); err != nil {
		return fmt.Errorf("reset failed, no data was cleared: %w", err)
	}

	fmt.Println("All collections cleared.")
	return nil
}
