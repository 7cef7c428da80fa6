package store

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	_ "modernc.org/sqlite"

	"github.com/saldo-fin/saldo/internal/domain"
)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS records (
	id               TEXT PRIMARY KEY,
	date             TEXT NOT NULL,
	description      TEXT NOT NULL,
	amount           TEXT NOT NULL,
	created_at       TEXT NOT NULL,
	updated_at       TEXT NOT NULL,
	account_id       TEXT NOT NULL,
	category_id      TEXT NOT NULL DEFAULT '',
	transaction_type TEXT NOT NULL DEFAULT ''
);
CREATE INDEX IF NOT EXISTS idx_records_account_date ON records (account_id, date);
`

// SQLite persists the store in a local SQLite database. Save replaces the
// whole table inside one transaction, so a failed save rolls back to the
// prior state.
type SQLite struct {
	db *sql.DB
}

// OpenSQLite opens (creating if needed) a SQLite-backed persister.
func OpenSQLite(path string) (*SQLite, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite store %s: %v: %w", path, err, domain.ErrPersistence)
	}
	if _, err := db.Exec(sqliteSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize sqlite schema: %v: %w", err, domain.ErrPersistence)
	}
	return &SQLite{db: db}, nil
}

// Close releases the database handle.
func (s *SQLite) Close() error {
	return s.db.Close()
}

// Load reads all records ordered by date.
func (s *SQLite) Load() (*Store, error) {
	rows, err := s.db.Query(`SELECT id, date, description, amount, created_at, updated_at,
		account_id, category_id, transaction_type FROM records ORDER BY date, id`)
	if err != nil {
		return nil, fmt.Errorf("failed to query sqlite store: %v: %w", err, domain.ErrPersistence)
	}
	defer rows.Close()

	var records []domain.Record
	for rows.Next() {
		var rec domain.Record
		var dateStr, amountStr, createdStr, updatedStr, txnType string
		if err := rows.Scan(&rec.ID, &dateStr, &rec.Description, &amountStr,
			&createdStr, &updatedStr, &rec.AccountID, &rec.CategoryID, &txnType); err != nil {
			return nil, fmt.Errorf("failed to scan sqlite row: %v: %w", err, domain.ErrPersistence)
		}

		date, err := time.Parse("2006-01-02", dateStr)
		if err != nil {
			return nil, fmt.Errorf("sqlite record %s: invalid date %q: %w", rec.ID, dateStr, domain.ErrPersistence)
		}
		rec.Date = domain.DateOnly(date)

		rec.Amount, err = decimal.NewFromString(amountStr)
		if err != nil {
			return nil, fmt.Errorf("sqlite record %s: invalid amount %q: %w", rec.ID, amountStr, domain.ErrPersistence)
		}
		rec.CreatedAt, err = time.Parse(time.RFC3339, createdStr)
		if err != nil {
			return nil, fmt.Errorf("sqlite record %s: invalid created_at %q: %w", rec.ID, createdStr, domain.ErrPersistence)
		}
		rec.UpdatedAt, err = time.Parse(time.RFC3339, updatedStr)
		if err != nil {
			return nil, fmt.Errorf("sqlite record %s: invalid updated_at %q: %w", rec.ID, updatedStr, domain.ErrPersistence)
		}
		rec.TransactionType = domain.TransactionType(txnType)

		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read sqlite store: %v: %w", err, domain.ErrPersistence)
	}

	return FromRecords(records), nil
}

// Save replaces the table contents with the store's records in one
// transaction.
func (s *SQLite) Save(st *Store) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin sqlite transaction: %v: %w", err, domain.ErrPersistence)
	}

	if err := saveTx(tx, st); err != nil {
		tx.Rollback()
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit sqlite store: %v: %w", err, domain.ErrPersistence)
	}
	return nil
}

func saveTx(tx *sql.Tx, st *Store) error {
	if _, err := tx.Exec(`DELETE FROM records`); err != nil {
		return fmt.Errorf("failed to clear sqlite store: %v: %w", err, domain.ErrPersistence)
	}

	stmt, err := tx.Prepare(`INSERT INTO records
		(id, date, description, amount, created_at, updated_at, account_id, category_id, transaction_type)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("failed to prepare sqlite insert: %v: %w", err, domain.ErrPersistence)
	}
	defer stmt.Close()

	for _, rec := range st.records {
		_, err := stmt.Exec(
			rec.ID,
			domain.FormatDate(rec.Date),
			rec.Description,
			rec.Amount.String(),
			rec.CreatedAt.UTC().Format(time.RFC3339),
			rec.UpdatedAt.UTC().Format(time.RFC3339),
			rec.AccountID,
			rec.CategoryID,
			string(rec.TransactionType),
		)
		if err != nil {
			return fmt.Errorf("failed to insert record %s: %v: %w", rec.ID, err, domain.ErrPersistence)
		}
	}

	return nil
}
