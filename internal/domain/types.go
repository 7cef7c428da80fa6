// Package domain defines the canonical schema shared by every stage of the
// ingestion pipeline: reference metadata (accounts, presets, categories) and
// the normalized transaction record.
package domain

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// TransactionType is the optional debit/credit tag on a canonical record.
// Use ValidateTransactionType to ensure validity before use.
type TransactionType string

const (
	TypeDebit  TransactionType = "debit"
	TypeCredit TransactionType = "credit"
)

var validTransactionTypes = map[TransactionType]struct{}{
	TypeDebit: {}, TypeCredit: {},
}

// ValidateTransactionType checks if a transaction type is valid.
// The empty string is valid and means "unset".
func ValidateTransactionType(t TransactionType) bool {
	if t == "" {
		return true
	}
	_, ok := validTransactionTypes[t]
	return ok
}

// TypeRuleKind selects how a preset infers the transaction type.
type TypeRuleKind string

const (
	// TypeRuleSign infers debit/credit from the sign of the amount.
	TypeRuleSign TypeRuleKind = "sign"
	// TypeRuleColumn reads a source column and maps its value to debit/credit.
	TypeRuleColumn TypeRuleKind = "column"
)

// TypeRule is a preset's optional transaction-type inference rule.
type TypeRule struct {
	Kind TypeRuleKind
	// Column is the source column read when Kind is TypeRuleColumn.
	Column string
}

// Account is immutable reference data describing one bank account.
type Account struct {
	ID       string
	Name     string
	Bank     string
	PresetID string // default import preset
	Currency string // ISO 4217 code, e.g. "EUR"
}

// NewAccount creates a validated account.
func NewAccount(id, name, bank, presetID, currency string) (*Account, error) {
	if id == "" {
		return nil, fmt.Errorf("account ID cannot be empty")
	}
	if name == "" {
		return nil, fmt.Errorf("account name cannot be empty")
	}
	if presetID == "" {
		return nil, fmt.Errorf("account %s: default preset ID cannot be empty", id)
	}
	return &Account{ID: id, Name: name, Bank: bank, PresetID: presetID, Currency: currency}, nil
}

// Preset is a named set of parsing rules mapping raw export columns to
// canonical fields. Many accounts may reference the same preset.
type Preset struct {
	ID                string
	DateColumn        string
	AmountColumn      string
	DescriptionColumn string
	// DateLayout is a Go reference layout, e.g. "01/02/2006".
	DateLayout string
	Delimiter  rune
	// TypeRule is nil when the preset does not infer a transaction type.
	TypeRule *TypeRule
}

// NewPreset creates a validated preset. Delimiter defaults to comma.
func NewPreset(id, dateColumn, amountColumn, descriptionColumn, dateLayout string, delimiter rune) (*Preset, error) {
	if id == "" {
		return nil, fmt.Errorf("preset ID cannot be empty")
	}
	if dateColumn == "" || amountColumn == "" || descriptionColumn == "" {
		return nil, fmt.Errorf("preset %s: date, amount and description columns are all required", id)
	}
	if dateLayout == "" {
		return nil, fmt.Errorf("preset %s: date layout cannot be empty", id)
	}
	if delimiter == 0 {
		delimiter = ','
	}
	return &Preset{
		ID:                id,
		DateColumn:        dateColumn,
		AmountColumn:      amountColumn,
		DescriptionColumn: descriptionColumn,
		DateLayout:        dateLayout,
		Delimiter:         delimiter,
	}, nil
}

// Columns returns the source column names this preset requires, in fixed
// order. Used to fail fast when a raw file is missing a declared column.
func (p *Preset) Columns() []string {
	cols := []string{p.DateColumn, p.AmountColumn, p.DescriptionColumn}
	if p.TypeRule != nil && p.TypeRule.Kind == TypeRuleColumn {
		cols = append(cols, p.TypeRule.Column)
	}
	return cols
}

// Category is immutable reference data used only for lookup during joining.
type Category struct {
	ID      string
	Name    string
	GroupID string
}

// CategoryGroup groups categories for presentation.
type CategoryGroup struct {
	ID   string
	Name string
}

// RawRow is one line of a raw export file, keyed by source column name.
// Values are untyped strings; the normalizer owns all parsing.
type RawRow map[string]string

// Record is the unit of the processed store: one normalized transaction.
//
// ID is a pure function of (AccountID, Date, Amount, Description); the store
// never contains two records sharing an ID. See normalize.RecordID.
type Record struct {
	ID          string
	Date        time.Time // calendar date, UTC midnight
	Description string
	Amount      decimal.Decimal
	CreatedAt   time.Time // UTC
	UpdatedAt   time.Time // UTC
	AccountID   string
	// CategoryID is empty when no category rule matched.
	CategoryID string
	// TransactionType is empty when the preset has no inference rule.
	TransactionType TransactionType
}

// NewRecord creates a validated record. The date is truncated to a UTC
// calendar date and the description is trimmed.
func NewRecord(id string, date time.Time, description string, amount decimal.Decimal, accountID string, now time.Time) (*Record, error) {
	if id == "" {
		return nil, fmt.Errorf("record ID cannot be empty")
	}
	if date.IsZero() {
		return nil, fmt.Errorf("record date cannot be zero")
	}
	if accountID == "" {
		return nil, fmt.Errorf("record account ID cannot be empty")
	}
	description = strings.TrimSpace(description)
	if description == "" {
		return nil, fmt.Errorf("record description cannot be empty")
	}
	return &Record{
		ID:          id,
		Date:        DateOnly(date),
		Description: description,
		Amount:      amount,
		CreatedAt:   now.UTC(),
		UpdatedAt:   now.UTC(),
		AccountID:   accountID,
	}, nil
}

// DateOnly truncates a time to its UTC calendar date.
func DateOnly(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// FormatDate renders a date in the canonical YYYY-MM-DD form used by the
// store and by identity hashing.
func FormatDate(t time.Time) string {
	return t.Format("2006-01-02")
}
