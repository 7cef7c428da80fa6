package store

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/saldo-fin/saldo/internal/domain"
)

// Persister loads and saves the canonical store. Implementations must make
// Save all-or-nothing: a failed save leaves the prior state readable.
type Persister interface {
	Load() (*Store, error)
	Save(*Store) error
}

// storeHeader is the fixed column order of the persisted table.
var storeHeader = []string{
	"id", "date", "description", "amount",
	"created_at", "updated_at", "account_id", "category_id", "transaction_type",
}

// CSVFile persists the store as a delimited table, written atomically via
// a temp file and rename so a failed save never corrupts the prior state.
type CSVFile struct {
	Path string
}

// NewCSVFile creates a CSV-backed persister.
func NewCSVFile(path string) *CSVFile {
	return &CSVFile{Path: path}
}

// Load reads the store from disk. A missing file yields an empty store.
func (c *CSVFile) Load() (*Store, error) {
	f, err := os.Open(c.Path)
	if err != nil {
		if os.IsNotExist(err) {
			return New(), nil
		}
		return nil, fmt.Errorf("failed to open store %s: %v: %w", c.Path, err, domain.ErrPersistence)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = len(storeHeader)

	rows, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read store %s: %v: %w", c.Path, err, domain.ErrPersistence)
	}
	if len(rows) == 0 {
		return New(), nil
	}

	if got := strings.Join(rows[0], ","); got != strings.Join(storeHeader, ",") {
		return nil, fmt.Errorf("store %s has unexpected header %q: %w", c.Path, got, domain.ErrPersistence)
	}

	records := make([]domain.Record, 0, len(rows)-1)
	for i, row := range rows[1:] {
		rec, err := unmarshalRecord(row)
		if err != nil {
			return nil, fmt.Errorf("store %s row %d: %v: %w", c.Path, i+2, err, domain.ErrPersistence)
		}
		records = append(records, *rec)
	}

	return FromRecords(records), nil
}

// Save writes the store atomically: marshal to a temp file in the target
// directory, then rename over the previous file.
func (c *CSVFile) Save(s *Store) error {
	dir := filepath.Dir(c.Path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create store directory: %v: %w", err, domain.ErrPersistence)
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(c.Path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("failed to create temp store file: %v: %w", err, domain.ErrPersistence)
	}
	tmpName := tmp.Name()

	w := csv.NewWriter(tmp)
	writeErr := w.Write(storeHeader)
	if writeErr == nil {
		for _, rec := range s.records {
			if writeErr = w.Write(marshalRecord(rec)); writeErr != nil {
				break
			}
		}
	}
	if writeErr == nil {
		w.Flush()
		writeErr = w.Error()
	}
	if closeErr := tmp.Close(); writeErr == nil {
		writeErr = closeErr
	}
	if writeErr != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to write store %s: %v: %w", c.Path, writeErr, domain.ErrPersistence)
	}

	if err := os.Rename(tmpName, c.Path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to replace store %s: %v: %w", c.Path, err, domain.ErrPersistence)
	}

	return nil
}

func marshalRecord(rec domain.Record) []string {
	return []string{
		rec.ID,
		domain.FormatDate(rec.Date),
		rec.Description,
		rec.Amount.String(),
		rec.CreatedAt.UTC().Format(time.RFC3339),
		rec.UpdatedAt.UTC().Format(time.RFC3339),
		rec.AccountID,
		rec.CategoryID,
		string(rec.TransactionType),
	}
}

func unmarshalRecord(row []string) (*domain.Record, error) {
	date, err := time.Parse("2006-01-02", row[1])
	if err != nil {
		return nil, fmt.Errorf("invalid date %q: %v", row[1], err)
	}
	amount, err := decimal.NewFromString(row[3])
	if err != nil {
		return nil, fmt.Errorf("invalid amount %q: %v", row[3], err)
	}
	createdAt, err := time.Parse(time.RFC3339, row[4])
	if err != nil {
		return nil, fmt.Errorf("invalid created_at %q: %v", row[4], err)
	}
	updatedAt, err := time.Parse(time.RFC3339, row[5])
	if err != nil {
		return nil, fmt.Errorf("invalid updated_at %q: %v", row[5], err)
	}

	txnType := domain.TransactionType(row[8])
	if !domain.ValidateTransactionType(txnType) {
		return nil, fmt.Errorf("invalid transaction type %q", row[8])
	}

	return &domain.Record{
		ID:              row[0],
		Date:            domain.DateOnly(date),
		Description:     row[2],
		Amount:          amount,
		CreatedAt:       createdAt,
		UpdatedAt:       updatedAt,
		AccountID:       row[6],
		CategoryID:      row[7],
		TransactionType: txnType,
	}, nil
}
