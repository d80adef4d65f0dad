package syncer

import (
	"context"
	"fmt"
	"log"

	"github.com/mrlokans/circulate/internal/database/books"
	"github.com/mrlokans/circulate/internal/database/checkouts"
	"github.com/mrlokans/circulate/internal/database/outbox"
	"github.com/mrlokans/circulate/internal/database/syncruns"
	"github.com/mrlokans/circulate/internal/entities"
)

// Engine drives reconciliation between the local store and the remote
// authority. It is the only component that flips synced flags.
type Engine struct {
	client    *Client
	books     *books.Repository
	checkouts *checkouts.Repository
	outbox    *outbox.Repository
	runs      *syncruns.Repository
}

// NewEngine creates a reconciliation engine.
func NewEngine(client *Client, booksRepo *books.Repository, checkoutsRepo *checkouts.Repository, outboxRepo *outbox.Repository, runsRepo *syncruns.Repository) *Engine {
	return &Engine{
		client:    client,
		books:     booksRepo,
		checkouts: checkoutsRepo,
		outbox:    outboxRepo,
		runs:      runsRepo,
	}
}

// Report summarizes one reconciliation attempt.
type Report struct {
	Mode      entities.SyncMode
	Books     int
	Pushed    int
	Succeeded int
	Failed    int
}

// SyncWithServer runs the full-batch protocol: every book plus the unsynced
// checkouts go to the authority in one request. On any transport or remote
// failure the attempt aborts with ErrSyncFailed and no synced flag changes,
// so the next attempt retries the identical (idempotent) batch. On success
// each pushed checkout is marked synced best-effort: a failure updating one
// record is logged and does not stop the rest, which is the documented
// divergence surface between local flags and the remote acknowledgement.
func (e *Engine) SyncWithServer(ctx context.Context) (*Report, error) {
	all, err := e.checkouts.GetAll()
	if err != nil {
		return nil, fmt.Errorf("read checkouts: %w", err)
	}
	unsynced := make([]entities.Checkout, 0, len(all))
	for _, c := range all {
		if !c.Synced {
			unsynced = append(unsynced, c)
		}
	}

	// Books are low-cardinality and rarely conflict; the full set goes out
	// on every sync rather than tracking a dirty subset.
	allBooks, err := e.books.GetAllBooks()
	if err != nil {
		return nil, fmt.Errorf("read books: %w", err)
	}

	run, err := e.runs.Start(entities.SyncModeFull, len(allBooks), len(unsynced))
	if err != nil {
		return nil, fmt.Errorf("start sync run: %w", err)
	}

	report := &Report{Mode: entities.SyncModeFull, Books: len(allBooks), Pushed: len(unsynced)}

	if err := e.client.FullSync(ctx, allBooks, unsynced); err != nil {
		if cerr := e.runs.Complete(run.ID, 0, len(unsynced), err); cerr != nil {
			log.Printf("[SYNC] failed to close run %d: %v", run.ID, cerr)
		}
		return report, err
	}

	for _, c := range unsynced {
		if err := e.checkouts.MarkSynced(c.ID); err != nil {
			log.Printf("[SYNC] failed to mark checkout %s synced: %v", c.ID, err)
			report.Failed++
			continue
		}
		report.Succeeded++
	}

	e.flushOutbox()

	if err := e.runs.Complete(run.ID, report.Succeeded, report.Failed, nil); err != nil {
		log.Printf("[SYNC] failed to close run %d: %v", run.ID, err)
	}

	log.Printf("[SYNC] full sync complete: %d books, %d checkouts pushed, %d marked synced",
		report.Books, report.Pushed, report.Succeeded)
	return report, nil
}

// PushUnsynced runs the per-record protocol: only unsynced checkouts go
// out, and the authority acknowledges each one individually. Only records
// acknowledged with success are marked synced; rejected records stay
// unsynced for the next attempt. Zero pending records short-circuits
// without a network call.
func (e *Engine) PushUnsynced(ctx context.Context) (*Report, error) {
	unsynced, err := e.checkouts.GetUnsynced()
	if err != nil {
		return nil, fmt.Errorf("read unsynced checkouts: %w", err)
	}

	report := &Report{Mode: entities.SyncModePush, Pushed: len(unsynced)}
	if len(unsynced) == 0 {
		return report, nil
	}

	run, err := e.runs.Start(entities.SyncModePush, 0, len(unsynced))
	if err != nil {
		return nil, fmt.Errorf("start sync run: %w", err)
	}

	results, err := e.client.PushCheckouts(ctx, unsynced)
	if err != nil {
		if cerr := e.runs.Complete(run.ID, 0, len(unsynced), err); cerr != nil {
			log.Printf("[SYNC] failed to close run %d: %v", run.ID, cerr)
		}
		return report, err
	}

	for _, result := range results {
		if !result.Success {
			log.Printf("[SYNC] server rejected checkout %s", result.ID)
			report.Failed++
			continue
		}
		if err := e.checkouts.MarkSynced(result.ID); err != nil {
			log.Printf("[SYNC] failed to mark checkout %s synced: %v", result.ID, err)
			report.Failed++
			continue
		}
		report.Succeeded++
	}

	if err := e.runs.Complete(run.ID, report.Succeeded, report.Failed, nil); err != nil {
		log.Printf("[SYNC] failed to close run %d: %v", run.ID, err)
	}

	log.Printf("[SYNC] push complete: %d pushed, %d acknowledged, %d rejected",
		report.Pushed, report.Succeeded, report.Failed)
	return report, nil
}

// flushOutbox marks journal entries synced after a successful full sync.
// Best-effort, same policy as checkout flags.
func (e *Engine) flushOutbox() {
	entries, err := e.outbox.GetUnsynced()
	if err != nil {
		log.Printf("[SYNC] failed to read outbox: %v", err)
		return
	}
	for _, entry := range entries {
		if err := e.outbox.MarkSynced(entry.ID); err != nil {
			log.Printf("[SYNC] failed to mark outbox entry %s synced: %v", entry.ID, err)
		}
	}
}
