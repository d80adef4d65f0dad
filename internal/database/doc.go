// Package database provides the local durable store for the circulation
// client: a sqlite database mirroring server state that keeps accepting
// writes while the network is away.
//
// # Architecture
//
// The store is organized into domain-specific sub-packages, one per
// collection:
//
//	database/
//	├── database.go      # Connection setup, migrations, bulk reset
//	├── errors.go        # Storage error taxonomy
//	├── books/           # Catalog records (unique ISBN, status index)
//	├── checkouts/       # Borrow transactions and the synced partition
//	├── users/           # Reference users + API tokens
//	├── outbox/          # OfflineSync journal entries
//	└── syncruns/        # Reconciliation attempt tracking
//
// # Using Sub-packages
//
// Each sub-package provides a Repository type with domain-specific
// operations over a shared *gorm.DB handle:
//
//	db, err := database.NewDatabase("./circulate.db")
//	booksRepo := books.NewRepository(db.DB)
//	checkoutsRepo := checkouts.NewRepository(db.DB)
//
//	available, err := booksRepo.ListAvailable()
//	pending, err := checkoutsRepo.GetUnsynced()
//
// # Error Handling
//
// Repositories return the sentinel errors declared in errors.go
// (ErrNotFound, ErrConstraintViolation, ...) and callers match them with
// errors.Is. gorm errors are mapped via Translate.
package database
