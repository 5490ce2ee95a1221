package normalize

import (
	"fmt"
	"strings"
	"time"

	"cloud.google.com/go/civil"
	"github.com/shopspring/decimal"
)

// dateLayouts are the accepted date formats, tried in order. ISO first,
// then common locale variants (day-first for slash and dash forms).
var dateLayouts = []string{
	"2006-01-02",
	"2006/01/02",
	"02/01/2006",
	"02-01-2006",
	"02.01.2006",
	"2 Jan 2006",
	"02 Jan 2006",
	"Jan 2, 2006",
	"2006-01-02 15:04:05",
	time.RFC3339,
}

// parseDate coerces a cell into a calendar date using the accepted layouts.
func parseDate(s string) (civil.Date, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return civil.Date{}, fmt.Errorf("empty date")
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return civil.DateOf(t), nil
		}
	}
	return civil.Date{}, fmt.Errorf("unrecognized date %q", s)
}

var currencyStripper = strings.NewReplacer(
	"$", "", "€", "", "£", "", "₹", "", "¥", "",
	",", "", " ", "", " ", "",
)

// parseAmount coerces a cell into an exact decimal amount. Currency symbols
// and thousands separators are stripped before parsing; a parenthesized
// value is treated as negative (accounting notation).
func parseAmount(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.Decimal{}, fmt.Errorf("empty amount")
	}

	negative := false
	if strings.HasPrefix(s, "(") && strings.HasSuffix(s, ")") {
		negative = true
		s = s[1 : len(s)-1]
	}

	s = strings.TrimSpace(currencyStripper.Replace(s))
	if s == "" {
		return decimal.Decimal{}, fmt.Errorf("no numeric content")
	}

	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Decimal{}, fmt.Errorf("unrecognized amount %q", s)
	}
	if negative {
		d = d.Neg()
	}
	return d, nil
}
