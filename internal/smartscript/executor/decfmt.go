// File: decfmt.go
// Title: SmartScript Decimal Formatting
// Description: Parses DecimalFormat style patterns (0, #, grouping and one
//              decimal point) and formats numbers with golang.org/x/text.
// Author: msto63
// Version: v0.1.0
// Created: 2026-03-09
// Modified: 2026-03-09
//
// Change History:
// - 2026-03-09 v0.1.0: Initial decfmt implementation

package executor

import (
	"fmt"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"

	"github.com/msto63/smartweb/internal/smartscript/value"
)

// decimalPattern is the parsed form of a pattern such as "#,##0.00"
type decimalPattern struct {
	minInteger  int
	minFraction int
	maxFraction int
	grouping    bool
}

// parseDecimalPattern accepts the characters 0 # , and at most one '.'.
// A '0' is a mandatory digit and '#' an optional one; any ',' in the
// integer part enables grouping by thousands.
func parseDecimalPattern(pattern string) (decimalPattern, error) {
	var p decimalPattern
	if pattern == "" {
		return p, fmt.Errorf("empty decimal pattern")
	}

	intPart, fracPart, hasFraction := strings.Cut(pattern, ".")
	for _, ch := range intPart {
		switch ch {
		case '0':
			p.minInteger++
		case '#':
		case ',':
			p.grouping = true
		default:
			return p, fmt.Errorf("invalid character %q in decimal pattern %q", ch, pattern)
		}
	}
	if hasFraction {
		for _, ch := range fracPart {
			switch ch {
			case '0':
				if p.maxFraction > p.minFraction {
					return p, fmt.Errorf("'0' after '#' in fraction of decimal pattern %q", pattern)
				}
				p.minFraction++
				p.maxFraction++
			case '#':
				p.maxFraction++
			default:
				return p, fmt.Errorf("invalid character %q in decimal pattern %q", ch, pattern)
			}
		}
	}
	if p.minInteger == 0 {
		p.minInteger = 1
	}
	return p, nil
}

// FormatDecimal formats a numeric value with a decimal pattern using
// English digits and separators.
func FormatDecimal(v any, pattern string) (string, error) {
	p, err := parseDecimalPattern(pattern)
	if err != nil {
		return "", err
	}
	n, err := value.Coerce(v)
	if err != nil {
		return "", err
	}

	opts := []number.Option{
		number.MinIntegerDigits(p.minInteger),
		number.MinFractionDigits(p.minFraction),
		number.MaxFractionDigits(p.maxFraction),
	}
	if !p.grouping {
		opts = append(opts, number.NoSeparator())
	}
	return message.NewPrinter(language.English).Sprintf("%v", number.Decimal(n, opts...)), nil
}
