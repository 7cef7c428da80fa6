package normalize

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/shopspring/decimal"
)

// currencyRunes are symbols stripped from amount fields before parsing.
var currencyRunes = "$€£¥₹"

// thousandsComma matches comma-grouped integers like "1,200" or "12,345,678".
var thousandsComma = regexp.MustCompile(`^\d{1,3}(,\d{3})+$`)

// ParseAmount parses a raw amount field as a signed decimal. Currency
// symbols, spaces and thousands separators are stripped. Both "1,200.00"
// (US grouping) and "1.200,00" (EU grouping) parse to 1200; a lone comma
// that is not a group-of-three separator is taken as a decimal comma
// ("12,5" parses to 12.5).
func ParseAmount(raw string) (decimal.Decimal, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return decimal.Decimal{}, fmt.Errorf("amount is empty")
	}

	s = strings.Map(func(r rune) rune {
		if strings.ContainsRune(currencyRunes, r) || r == ' ' || r == '\u00a0' {
			return -1
		}
		return r
	}, s)

	neg := false
	if strings.HasPrefix(s, "(") && strings.HasSuffix(s, ")") {
		// Accounting notation: (10.00) means -10.00.
		neg = true
		s = s[1 : len(s)-1]
	}

	dot := strings.LastIndexByte(s, '.')
	comma := strings.LastIndexByte(s, ',')
	switch {
	case dot >= 0 && comma >= 0:
		// Both present: the rightmost is the decimal separator, the
		// other is grouping.
		if dot > comma {
			s = strings.ReplaceAll(s, ",", "")
		} else {
			s = strings.ReplaceAll(s, ".", "")
			s = strings.Replace(s, ",", ".", 1)
		}
	case comma >= 0:
		trimmed := strings.TrimPrefix(strings.TrimPrefix(s, "-"), "+")
		if thousandsComma.MatchString(trimmed) {
			s = strings.ReplaceAll(s, ",", "")
		} else {
			s = strings.Replace(s, ",", ".", 1)
		}
	}

	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Decimal{}, fmt.Errorf("invalid amount %q: %w", raw, err)
	}
	if neg {
		d = d.Neg()
	}
	return d, nil
}
