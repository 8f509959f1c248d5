package schedule

import (
	"strings"

	"github.com/shopspring/decimal"
)

// parsePay reads a fee such as "45", "$45.00", "1,045.50" or "45,50".
// A lone comma followed by one or two digits is a decimal comma; any other
// comma groups thousands.
func parsePay(s string) (decimal.Decimal, error) {
	clean := strings.Map(func(r rune) rune {
		switch r {
		case '$', '€', '£', ' ', '\u00a0':
			return -1
		}

		return r
	}, s)

	if clean == "" {
		return decimal.Zero, nil
	}

	if i := strings.LastIndexByte(clean, ','); i >= 0 && !strings.Contains(clean, ".") &&
		strings.Count(clean, ",") == 1 && len(clean)-i-1 <= 2 {
		clean = clean[:i] + "." + clean[i+1:]
	}

	clean = strings.ReplaceAll(clean, ",", "")

	return decimal.NewFromString(clean)
}
