package query

import (
	"fmt"
	"strings"

	"github.com/Medini-eng/AICW-01-Financial-Analysis-LLM/internal/aggregate"
	"github.com/Medini-eng/AICW-01-Financial-Analysis-LLM/internal/domain"
)

const promptPreamble = `You are a personal finance analysis assistant.
Answer the user's question using ONLY the context below. Quote exact
figures from the context; do not invent numbers. Amounts are signed:
income is positive, spending is negative. If the context does not
contain the answer, say so plainly.`

// buildPrompt renders the fixed context block followed by the user's
// question, verbatim. The block is deterministic for a given dataset so
// identical questions against identical data produce identical prompts.
func buildPrompt(question string, ds *domain.Dataset, res aggregate.Result, maxExcerptRows int) string {
	var b strings.Builder
	b.WriteString(promptPreamble)
	b.WriteString("\n\n")

	fmt.Fprintf(&b, "DATASET: source=%s rows=%d", ds.Provenance.SourceFilename, ds.Len())
	if from, to, ok := ds.DateRange(); ok {
		fmt.Fprintf(&b, " date_range=%s..%s", from, to)
	}
	b.WriteString("\n")

	fmt.Fprintf(&b, "TOTALS: net=%s income=%s expense=%s\n",
		aggregate.Present(res.NetTotal),
		aggregate.Present(res.Income),
		aggregate.Present(res.Expense))

	b.WriteString("BY CATEGORY:\n")
	for _, cat := range res.SortedCategories() {
		fmt.Fprintf(&b, "  %s: %s\n", cat, aggregate.Present(res.ByCategory[cat]))
	}

	b.WriteString("BY MONTH:\n")
	for _, month := range res.SortedMonths() {
		fmt.Fprintf(&b, "  %s: %s\n", month, aggregate.Present(res.ByMonth[month]))
	}

	rows := ds.Transactions
	if maxExcerptRows > 0 && len(rows) > maxExcerptRows {
		rows = rows[len(rows)-maxExcerptRows:]
	}
	fmt.Fprintf(&b, "RECENT TRANSACTIONS (last %d of %d):\n", len(rows), ds.Len())
	for _, tx := range rows {
		fmt.Fprintf(&b, "  %s | %s | %s | %s\n",
			tx.Date, tx.Description, aggregate.Present(tx.Amount), tx.Category)
	}

	b.WriteString("\nQUESTION: ")
	b.WriteString(question)
	b.WriteString("\n")
	return b.String()
}
