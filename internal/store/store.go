// Package store holds the canonical transaction store and the delta-merge
// operation that reconciles freshly normalized batches against it.
package store

import (
	"fmt"
	"sort"
	"time"

	"github.com/saldo-fin/saldo/internal/domain"
)

// Store is the ordered collection of canonical records, the single source of
// truth the presentation layer reads. It is an in-memory value threaded
// through orchestration; persistence lives behind the Persister interface.
type Store struct {
	records []domain.Record
}

// New creates an empty store.
func New() *Store {
	return &Store{}
}

// FromRecords creates a store from existing records, sorted by date.
func FromRecords(records []domain.Record) *Store {
	s := &Store{records: append([]domain.Record(nil), records...)}
	s.sortByDate()
	return s
}

// Records returns a defensive copy of the record list.
func (s *Store) Records() []domain.Record {
	return append([]domain.Record(nil), s.records...)
}

// Len returns the number of records.
func (s *Store) Len() int { return len(s.records) }

// AccountRecords returns the records belonging to one account, in store order.
func (s *Store) AccountRecords(accountID string) []domain.Record {
	var out []domain.Record
	for _, r := range s.records {
		if r.AccountID == accountID {
			out = append(out, r)
		}
	}
	return out
}

func (s *Store) sortByDate() {
	sort.SliceStable(s.records, func(i, j int) bool {
		return s.records[i].Date.Before(s.records[j].Date)
	})
}

// Merge returns a new store where accountID's records inside the batch's
// date span are replaced by the batch. The input store is not modified.
//
// The batch's span is [min date, max date], inclusive on both ends. Records
// for other accounts, and records for this account outside the span, are
// carried over untouched. Within the batch, records sharing an ID collapse
// last-write-wins: an ID collision is the same logical transaction
// re-imported. Re-applying the same batch is idempotent because the span is
// cleared before the batch is re-added.
//
// An empty batch, or a batch containing records for another account, fails
// with domain.ErrInvalidBatch.
func Merge(s *Store, accountID string, batch []domain.Record) (*Store, error) {
	if len(batch) == 0 {
		return nil, fmt.Errorf("merge for account %s: empty batch has no date span: %w",
			accountID, domain.ErrInvalidBatch)
	}

	minDate, maxDate := batch[0].Date, batch[0].Date
	for _, rec := range batch {
		if rec.AccountID != accountID {
			return nil, fmt.Errorf("merge for account %s: batch contains record %s for account %s: %w",
				accountID, rec.ID, rec.AccountID, domain.ErrInvalidBatch)
		}
		if rec.Date.Before(minDate) {
			minDate = rec.Date
		}
		if rec.Date.After(maxDate) {
			maxDate = rec.Date
		}
	}

	// Drop existing rows for this account inside the span.
	kept := make([]domain.Record, 0, len(s.records))
	for _, rec := range s.records {
		if rec.AccountID == accountID && withinSpan(rec.Date, minDate, maxDate) {
			continue
		}
		kept = append(kept, rec)
	}

	// Collapse ID collisions inside the batch, last write wins. Collisions
	// with records outside the batch are impossible: the ID embeds account
	// and date, and every same-account date in the span was just removed.
	slot := make(map[string]int, len(batch))
	deduped := make([]domain.Record, 0, len(batch))
	for _, rec := range batch {
		if i, seen := slot[rec.ID]; seen {
			deduped[i] = rec
			continue
		}
		slot[rec.ID] = len(deduped)
		deduped = append(deduped, rec)
	}

	merged := &Store{records: append(kept, deduped...)}
	merged.sortByDate()
	return merged, nil
}

func withinSpan(d, min, max time.Time) bool {
	return !d.Before(min) && !d.After(max)
}
