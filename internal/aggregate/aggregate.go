// Package aggregate computes deterministic summaries of a dataset. All
// sums are exact decimals; rounding to two fractional digits happens only
// in presentation helpers, never mid-computation.
package aggregate

import (
	"fmt"
	"sort"

	"cloud.google.com/go/civil"
	"github.com/Medini-eng/AICW-01-Financial-Analysis-LLM/internal/domain"
	"github.com/shopspring/decimal"
)

// Spec selects the subset of transactions to aggregate. Zero-valued fields
// mean "no filter"; the date range is inclusive on both ends.
type Spec struct {
	From     civil.Date
	To       civil.Date
	Category string
}

// Result holds every supported aggregate over the selected subset. An
// empty selection yields zero-valued totals and empty groupings, not an
// error.
type Result struct {
	Count      int
	NetTotal   decimal.Decimal
	Income     decimal.Decimal
	Expense    decimal.Decimal
	ByCategory map[string]decimal.Decimal
	ByMonth    map[string]decimal.Decimal
}

// Aggregate is a pure function of the dataset and spec.
func Aggregate(ds *domain.Dataset, spec Spec) Result {
	res := Result{
		ByCategory: make(map[string]decimal.Decimal),
		ByMonth:    make(map[string]decimal.Decimal),
	}
	if ds == nil {
		return res
	}

	for _, t := range ds.Transactions {
		if !spec.matches(t) {
			continue
		}
		res.Count++
		res.NetTotal = res.NetTotal.Add(t.Amount)
		if t.Amount.IsPositive() {
			res.Income = res.Income.Add(t.Amount)
		} else {
			res.Expense = res.Expense.Add(t.Amount)
		}
		res.ByCategory[t.Category] = res.ByCategory[t.Category].Add(t.Amount)
		res.ByMonth[monthKey(t.Date)] = res.ByMonth[monthKey(t.Date)].Add(t.Amount)
	}
	return res
}

func (s Spec) matches(t domain.Transaction) bool {
	if s.From != (civil.Date{}) && t.Date.Before(s.From) {
		return false
	}
	if s.To != (civil.Date{}) && t.Date.After(s.To) {
		return false
	}
	if s.Category != "" && t.Category != s.Category {
		return false
	}
	return true
}

func monthKey(d civil.Date) string {
	return fmt.Sprintf("%04d-%02d", d.Year, d.Month)
}

// SortedCategories returns category keys in lexical order so callers can
// render groupings deterministically.
func (r Result) SortedCategories() []string {
	keys := make([]string, 0, len(r.ByCategory))
	for k := range r.ByCategory {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// SortedMonths returns month keys in chronological order.
func (r Result) SortedMonths() []string {
	keys := make([]string, 0, len(r.ByMonth))
	for k := range r.ByMonth {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Present rounds a decimal for display. Only presentation rounds; running
// sums keep full precision.
func Present(d decimal.Decimal) string {
	return d.StringFixed(2)
}
