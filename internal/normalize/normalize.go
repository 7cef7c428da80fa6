// Package normalize converts raw export rows into canonical records under a
// resolved preset. Normalization is a pure function of its inputs plus the
// injected clock; it performs no I/O.
package normalize

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/saldo-fin/saldo/internal/domain"
	"github.com/saldo-fin/saldo/internal/rules"
)

// FailureReason classifies why a single row could not be normalized.
type FailureReason string

const (
	ReasonBadDate      FailureReason = "BadDate"
	ReasonBadAmount    FailureReason = "BadAmount"
	ReasonMissingField FailureReason = "MissingField"
)

// RowError is a per-row normalization failure. It is collected and reported
// by the orchestrator; it never aborts the batch the row came from.
type RowError struct {
	Reason FailureReason
	Column string
	Value  string
	Err    error
}

func (e *RowError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s (column %q, value %q): %v", e.Reason, e.Column, e.Value, e.Err)
	}
	return fmt.Sprintf("%s (column %q, value %q)", e.Reason, e.Column, e.Value)
}

func (e *RowError) Unwrap() error { return e.Err }

// Joiner looks up a category for a description. *rules.Engine satisfies it.
type Joiner interface {
	Match(description string) (*rules.Match, bool)
}

// Normalizer turns raw rows into canonical records.
type Normalizer struct {
	joiner Joiner // nil disables category joining
}

// New creates a normalizer. Pass nil to skip category joining.
func New(joiner Joiner) *Normalizer {
	return &Normalizer{joiner: joiner}
}

// Normalize converts one raw row into a canonical record. The returned
// *RowError is non-nil when the row must be skipped; exactly one of the two
// return values is non-nil.
func (n *Normalizer) Normalize(row domain.RawRow, account domain.Account, preset domain.Preset, now time.Time) (*domain.Record, *RowError) {
	date, rowErr := parseDate(row, preset)
	if rowErr != nil {
		return nil, rowErr
	}

	rawAmount := strings.TrimSpace(row[preset.AmountColumn])
	amount, err := ParseAmount(rawAmount)
	if err != nil {
		return nil, &RowError{Reason: ReasonBadAmount, Column: preset.AmountColumn, Value: rawAmount, Err: err}
	}

	description := strings.TrimSpace(row[preset.DescriptionColumn])
	if description == "" {
		return nil, &RowError{Reason: ReasonMissingField, Column: preset.DescriptionColumn}
	}

	id := RecordID(account.ID, date, amount, description)
	rec, err := domain.NewRecord(id, date, description, amount, account.ID, now)
	if err != nil {
		// NewRecord's inputs are validated above; a failure here is a bug.
		return nil, &RowError{Reason: ReasonMissingField, Column: preset.DescriptionColumn, Err: err}
	}

	rec.TransactionType = inferType(row, preset, amount)

	if n.joiner != nil {
		if m, ok := n.joiner.Match(description); ok {
			rec.CategoryID = m.CategoryID
		}
	}

	return rec, nil
}

func parseDate(row domain.RawRow, preset domain.Preset) (time.Time, *RowError) {
	raw := strings.TrimSpace(row[preset.DateColumn])
	if raw == "" {
		return time.Time{}, &RowError{Reason: ReasonBadDate, Column: preset.DateColumn}
	}
	t, err := time.Parse(preset.DateLayout, raw)
	if err != nil {
		return time.Time{}, &RowError{Reason: ReasonBadDate, Column: preset.DateColumn, Value: raw, Err: err}
	}
	return domain.DateOnly(t), nil
}

// inferType applies the preset's optional transaction-type rule. Sign rules
// tag positive amounts as credit and everything else as debit. Column rules
// map well-known source values; unrecognized values leave the type unset.
func inferType(row domain.RawRow, preset domain.Preset, amount decimal.Decimal) domain.TransactionType {
	if preset.TypeRule == nil {
		return ""
	}

	switch preset.TypeRule.Kind {
	case domain.TypeRuleSign:
		if amount.Sign() > 0 {
			return domain.TypeCredit
		}
		return domain.TypeDebit
	case domain.TypeRuleColumn:
		switch strings.ToLower(strings.TrimSpace(row[preset.TypeRule.Column])) {
		case "debit", "dr", "d", "soll", "withdrawal", "lastschrift":
			return domain.TypeDebit
		case "credit", "cr", "c", "haben", "deposit", "gutschrift":
			return domain.TypeCredit
		}
	}

	return ""
}
