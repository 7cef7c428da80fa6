package normalize

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/saldo-fin/saldo/internal/domain"
)

// CanonicalAmount renders a decimal in the fixed text form used for identity
// hashing: no thousands separators, no currency symbol, trailing fractional
// zeros trimmed. "10.00", "10.0" and "10" all render as "10", so the same
// logical amount always hashes identically regardless of source formatting.
func CanonicalAmount(d decimal.Decimal) string {
	s := d.String()
	if strings.ContainsRune(s, '.') {
		s = strings.TrimRight(s, "0")
		s = strings.TrimSuffix(s, ".")
	}
	if s == "-0" || s == "" {
		s = "0"
	}
	return s
}

// RecordID computes the deterministic identity of a canonical record:
// SHA-256 over "accountID|YYYY-MM-DD|amount|description" with the amount in
// canonical form and the description trimmed. Two records with the same
// quadruple always collide to the same ID.
func RecordID(accountID string, date time.Time, amount decimal.Decimal, description string) string {
	input := strings.Join([]string{
		accountID,
		domain.FormatDate(date),
		CanonicalAmount(amount),
		strings.TrimSpace(description),
	}, "|")

	sum := sha256.Sum256([]byte(input))
	return hex.EncodeToString(sum[:])
}
