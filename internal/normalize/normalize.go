// Package normalize turns heterogeneous CSV/spreadsheet exports into the
// canonical transaction dataset. Column detection is an ordered synonym
// table, type coercion is explicit per field, and rows failing coercion are
// rejected (counted) rather than silently corrupted.
package normalize

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/Medini-eng/AICW-01-Financial-Analysis-LLM/internal/domain"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
)

// DefaultMaxRejectRatio is the fraction of parsed rows that may fail
// coercion before the whole upload is refused.
const DefaultMaxRejectRatio = 0.5

// Options tune normalization behavior.
type Options struct {
	// MaxRejectRatio overrides DefaultMaxRejectRatio when set. An
	// explicit 0 is valid and means any rejected row fails the upload.
	MaxRejectRatio *float64
}

func (o Options) maxRejectRatio() float64 {
	if o.MaxRejectRatio == nil {
		return DefaultMaxRejectRatio
	}
	if *o.MaxRejectRatio < 0 {
		return 0
	}
	return *o.MaxRejectRatio
}

// Normalize parses the uploaded bytes according to the filename's extension
// and maps them onto the canonical schema. Row order is preserved; rejected
// rows are removed and counted in provenance.
func Normalize(data []byte, filename string, opts Options) (*domain.Dataset, error) {
	headers, rows, err := tabulate(data, filename)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("%w: file contains no data rows", ErrParse)
	}

	cols := detectColumns(headers)
	if cols.date == -1 {
		return nil, fmt.Errorf("%w: no date column among %v (expected one of %v)",
			ErrSchema, headers, dateExact)
	}
	if !cols.hasAmountSource() {
		return nil, fmt.Errorf("%w: no amount column and no debit/credit pair among %v",
			ErrSchema, headers)
	}

	// A header can match by name while every value in the column is junk.
	// Such a column is not plausibly a date or amount column, and that is
	// a schema problem rather than a row-level one.
	if countParseableDates(rows, cols.date) == 0 {
		return nil, fmt.Errorf("%w: column %q matched as date but holds no parseable dates",
			ErrSchema, headers[cols.date])
	}
	if countParseableAmounts(rows, cols) == 0 {
		return nil, fmt.Errorf("%w: no numeric values found in the amount column(s)", ErrSchema)
	}

	txs := make([]domain.Transaction, 0, len(rows))
	rejected := 0
	for _, row := range rows {
		tx, ok := coerceRow(row, cols)
		if !ok {
			rejected++
			continue
		}
		txs = append(txs, tx)
	}

	parsed := len(rows)
	if float64(rejected)/float64(parsed) > opts.maxRejectRatio() {
		return nil, fmt.Errorf("%w: %d of %d rows failed coercion", ErrTooManyInvalidRows, rejected, parsed)
	}

	return &domain.Dataset{
		Provenance: domain.Provenance{
			DatasetID:      uuid.NewString(),
			SourceFilename: filepath.Base(filename),
			UploadedAt:     time.Now().UTC(),
			RowsParsed:     parsed,
			RowsAccepted:   len(txs),
			RowsRejected:   rejected,
		},
		Transactions: txs,
	}, nil
}

// tabulate parses raw bytes into headers plus data rows, dispatching on the
// file extension. Empty rows are dropped.
func tabulate(data []byte, filename string) ([]string, [][]string, error) {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".csv":
		return tabulateCSV(data)
	case ".xlsx", ".xls":
		// .xls is accepted by extension, but excelize reads only OOXML
		// workbooks. A legacy binary .xls fails to open and surfaces as
		// ErrParse rather than ErrUnsupportedFormat.
		return tabulateXLSX(data)
	default:
		return nil, nil, fmt.Errorf("%w: %q (upload .csv, .xlsx, or .xls)",
			ErrUnsupportedFormat, filepath.Ext(filename))
	}
}

func tabulateCSV(data []byte) ([]string, [][]string, error) {
	reader := csv.NewReader(bytes.NewReader(data))
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true
	reader.TrimLeadingSpace = true

	all, err := reader.ReadAll()
	if err != nil {
		return nil, nil, fmt.Errorf("%w: reading CSV: %v", ErrParse, err)
	}
	return splitHeader(all)
}

func tabulateXLSX(data []byte) ([]string, [][]string, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, nil, fmt.Errorf("%w: opening spreadsheet: %v", ErrParse, err)
	}
	defer f.Close()

	sheet := f.GetSheetName(0)
	if sheet == "" {
		return nil, nil, fmt.Errorf("%w: spreadsheet has no sheets", ErrParse)
	}
	all, err := f.GetRows(sheet)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: reading sheet %q: %v", ErrParse, sheet, err)
	}
	return splitHeader(all)
}

func splitHeader(all [][]string) ([]string, [][]string, error) {
	if len(all) == 0 {
		return nil, nil, fmt.Errorf("%w: file is empty", ErrParse)
	}
	headers := make([]string, len(all[0]))
	for i, h := range all[0] {
		headers[i] = strings.TrimSpace(h)
	}
	rows := make([][]string, 0, len(all)-1)
	for _, row := range all[1:] {
		if !isRowEmpty(row) {
			rows = append(rows, row)
		}
	}
	return headers, rows, nil
}

func isRowEmpty(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}

// coerceRow maps one raw row to a Transaction. ok is false when date or
// amount coercion fails; such rows are rejected, never partially kept.
func coerceRow(row []string, cols columnMap) (domain.Transaction, bool) {
	date, err := parseDate(cell(row, cols.date))
	if err != nil {
		return domain.Transaction{}, false
	}

	amount, err := rowAmount(row, cols)
	if err != nil {
		return domain.Transaction{}, false
	}

	desc := strings.TrimSpace(cell(row, cols.description))
	category := strings.TrimSpace(cell(row, cols.category))
	if category == "" {
		category = Categorize(desc)
	}

	return domain.Transaction{
		Date:        date,
		Description: desc,
		Amount:      amount,
		Category:    category,
	}, true
}

// rowAmount resolves the signed amount for a row: either the single signed
// column or a debit/credit pair merged as credit minus debit. Spending is
// negative, income positive.
func rowAmount(row []string, cols columnMap) (decimal.Decimal, error) {
	if cols.amount != -1 {
		return parseAmount(cell(row, cols.amount))
	}

	debitCell := strings.TrimSpace(cell(row, cols.debit))
	creditCell := strings.TrimSpace(cell(row, cols.credit))
	if debitCell == "" && creditCell == "" {
		return decimal.Decimal{}, fmt.Errorf("neither debit nor credit present")
	}

	var amount decimal.Decimal
	if creditCell != "" {
		credit, err := parseAmount(creditCell)
		if err != nil {
			return decimal.Decimal{}, err
		}
		amount = amount.Add(credit)
	}
	if debitCell != "" {
		debit, err := parseAmount(debitCell)
		if err != nil {
			return decimal.Decimal{}, err
		}
		amount = amount.Sub(debit.Abs())
	}
	return amount, nil
}

func cell(row []string, i int) string {
	if i < 0 || i >= len(row) {
		return ""
	}
	return row[i]
}

func countParseableDates(rows [][]string, col int) int {
	n := 0
	for _, row := range rows {
		if _, err := parseDate(cell(row, col)); err == nil {
			n++
		}
	}
	return n
}

func countParseableAmounts(rows [][]string, cols columnMap) int {
	n := 0
	for _, row := range rows {
		if _, err := rowAmount(row, cols); err == nil {
			n++
		}
	}
	return n
}
