package normalize

import "strings"

// columnMap holds the index of each recognized column, -1 when absent.
type columnMap struct {
	date        int
	description int
	amount      int
	debit       int
	credit      int
	category    int
}

// Synonym tables are evaluated in order: exact (case-insensitive) matches
// win over substring fallbacks, and earlier entries win over later ones.
// Derived from the header variants seen in real bank exports.
var (
	dateExact      = []string{"date", "txn date", "transaction date", "posting date", "posted date", "value date", "booking date"}
	dateContains   = []string{"date"}
	descExact      = []string{"description", "narration", "details", "remarks", "particulars", "payee", "merchant", "memo"}
	descContains   = []string{"desc", "narr", "particular", "detail"}
	amountExact    = []string{"amount", "amt", "value", "transaction amount", "sum"}
	amountContains = []string{"amount", "amt"}
	debitExact     = []string{"debit", "paid out", "money out", "withdrawal", "withdrawals", "dr"}
	creditExact    = []string{"credit", "paid in", "money in", "deposit", "deposits", "cr"}
	categoryExact  = []string{"category", "type", "tag", "label"}
)

// detectColumns maps input headers onto the canonical fields.
// Debit/credit columns are tracked separately so a split-column file can be
// merged into a single signed amount later.
func detectColumns(headers []string) columnMap {
	cols := columnMap{date: -1, description: -1, amount: -1, debit: -1, credit: -1, category: -1}

	lower := make([]string, len(headers))
	for i, h := range headers {
		lower[i] = strings.ToLower(strings.TrimSpace(h))
	}

	cols.date = matchColumn(lower, dateExact, dateContains)
	cols.description = matchColumn(lower, descExact, descContains)
	cols.amount = matchColumn(lower, amountExact, amountContains)
	cols.debit = matchColumn(lower, debitExact, nil)
	cols.credit = matchColumn(lower, creditExact, nil)
	cols.category = matchColumn(lower, categoryExact, nil)

	// A column claimed as debit or credit must not double as the signed
	// amount column ("amount" substring match can collide with
	// "debit amount" style headers).
	if cols.amount != -1 && (cols.amount == cols.debit || cols.amount == cols.credit) {
		cols.amount = -1
	}

	return cols
}

func matchColumn(lowerHeaders, exact, contains []string) int {
	for _, want := range exact {
		for i, h := range lowerHeaders {
			if h == want {
				return i
			}
		}
	}
	for _, want := range contains {
		for i, h := range lowerHeaders {
			if strings.Contains(h, want) {
				return i
			}
		}
	}
	return -1
}

// hasAmountSource reports whether the mapping yields any amount at all:
// either a single signed column or a debit/credit pair.
func (c columnMap) hasAmountSource() bool {
	return c.amount != -1 || (c.debit != -1 && c.credit != -1)
}
