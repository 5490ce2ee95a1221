package normalize

import (
	"errors"
	"testing"

	"github.com/xuri/excelize/v2"
)

func TestDetectColumns(t *testing.T) {
	tests := []struct {
		name    string
		headers []string
		date    int
		desc    int
		amount  int
		debit   int
		credit  int
	}{
		{
			name:    "plain bank export",
			headers: []string{"Date", "Description", "Amount"},
			date:    0, desc: 1, amount: 2, debit: -1, credit: -1,
		},
		{
			name:    "indian bank narration",
			headers: []string{"Txn Date", "Narration", "Value"},
			date:    0, desc: 1, amount: 2, debit: -1, credit: -1,
		},
		{
			name:    "split debit credit",
			headers: []string{"Posting Date", "Particulars", "Debit", "Credit"},
			date:    0, desc: 1, amount: -1, debit: 2, credit: 3,
		},
		{
			name:    "substring fallbacks",
			headers: []string{"Booking date", "Txn Details", "Txn Amt"},
			date:    0, desc: 1, amount: 2, debit: -1, credit: -1,
		},
		{
			name:    "debit amount header not claimed as signed amount",
			headers: []string{"Date", "Remarks", "Debit", "Credit"},
			date:    0, desc: 1, amount: -1, debit: 2, credit: 3,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cols := detectColumns(tt.headers)
			if cols.date != tt.date || cols.description != tt.desc ||
				cols.amount != tt.amount || cols.debit != tt.debit || cols.credit != tt.credit {
				t.Errorf("detectColumns(%v) = %+v, want date=%d desc=%d amount=%d debit=%d credit=%d",
					tt.headers, cols, tt.date, tt.desc, tt.amount, tt.debit, tt.credit)
			}
		})
	}
}

func TestParseDate(t *testing.T) {
	tests := []struct {
		input   string
		want    string
		wantErr bool
	}{
		{"2024-01-05", "2024-01-05", false},
		{"2024/01/05", "2024-01-05", false},
		{"05/01/2024", "2024-01-05", false},
		{"05-01-2024", "2024-01-05", false},
		{"5 Jan 2024", "2024-01-05", false},
		{"Jan 5, 2024", "2024-01-05", false},
		{"2024-01-05 13:37:00", "2024-01-05", false},
		{" 2024-01-05 ", "2024-01-05", false},
		{"", "", true},
		{"not a date", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := parseDate(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("parseDate(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if err == nil && got.String() != tt.want {
				t.Errorf("parseDate(%q) = %s, want %s", tt.input, got, tt.want)
			}
		})
	}
}

func TestParseAmount(t *testing.T) {
	tests := []struct {
		input   string
		want    string
		wantErr bool
	}{
		{"1990.75", "1990.75", false},
		{"-4.50", "-4.5", false},
		{"$2,000.00", "2000", false},
		{"£1 234.56", "1234.56", false},
		{"₹500", "500", false},
		{"(42.00)", "-42", false},
		{"", "", true},
		{"free text", "", true},
		{"$", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := parseAmount(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("parseAmount(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if err == nil && got.String() != tt.want {
				t.Errorf("parseAmount(%q) = %s, want %s", tt.input, got, tt.want)
			}
		})
	}
}

func TestCategorize(t *testing.T) {
	tests := []struct {
		desc string
		want string
	}{
		{"Monthly Salary Credit", "Income"},
		{"Shell Fuel Station", "Fuel"},
		{"ZOMATO ORDER 1234", "Food"},
		{"Amazon.in purchase", "Shopping"},
		{"SIP Mutual Fund", "Investments"},
		{"UPI transfer to friend", "Transfers"},
		{"Coffee", "Others"},
		{"", "Others"},
	}

	for _, tt := range tests {
		t.Run(tt.desc, func(t *testing.T) {
			if got := Categorize(tt.desc); got != tt.want {
				t.Errorf("Categorize(%q) = %q, want %q", tt.desc, got, tt.want)
			}
		})
	}
}

const sampleCSV = "date,description,amount\n2024-01-01,Coffee,-4.50\n2024-01-02,Salary,2000.00\n2024-01-03,Coffee,-4.75\n"

func TestNormalize_CSV(t *testing.T) {
	ds, err := Normalize([]byte(sampleCSV), "statement.csv", Options{})
	if err != nil {
		t.Fatalf("Normalize failed: %v", err)
	}

	if ds.Provenance.RowsParsed != 3 || ds.Provenance.RowsAccepted != 3 || ds.Provenance.RowsRejected != 0 {
		t.Errorf("counts = %d/%d/%d, want 3/3/0",
			ds.Provenance.RowsParsed, ds.Provenance.RowsAccepted, ds.Provenance.RowsRejected)
	}
	if ds.Provenance.SourceFilename != "statement.csv" {
		t.Errorf("SourceFilename = %q", ds.Provenance.SourceFilename)
	}

	// Input order must be preserved.
	if ds.Transactions[0].Description != "Coffee" || ds.Transactions[1].Description != "Salary" {
		t.Errorf("row order not preserved: %+v", ds.Transactions)
	}
	if got := ds.Transactions[1].Amount.String(); got != "2000" {
		t.Errorf("salary amount = %s, want 2000", got)
	}
	if ds.Transactions[0].Category != "Others" || ds.Transactions[1].Category != "Income" {
		t.Errorf("categories = %q, %q", ds.Transactions[0].Category, ds.Transactions[1].Category)
	}
}

func TestNormalize_Idempotent(t *testing.T) {
	a, err := Normalize([]byte(sampleCSV), "statement.csv", Options{})
	if err != nil {
		t.Fatalf("first Normalize failed: %v", err)
	}
	b, err := Normalize([]byte(sampleCSV), "statement.csv", Options{})
	if err != nil {
		t.Fatalf("second Normalize failed: %v", err)
	}

	if len(a.Transactions) != len(b.Transactions) {
		t.Fatalf("lengths differ: %d vs %d", len(a.Transactions), len(b.Transactions))
	}
	for i := range a.Transactions {
		x, y := a.Transactions[i], b.Transactions[i]
		if x.Date != y.Date || x.Description != y.Description ||
			!x.Amount.Equal(y.Amount) || x.Category != y.Category {
			t.Errorf("row %d differs: %+v vs %+v", i, x, y)
		}
	}
}

func TestNormalize_DebitCreditMerge(t *testing.T) {
	input := "Date,Particulars,Debit,Credit\n2024-02-01,Groceries,55.25,\n2024-02-02,Salary,,2000.00\n"
	ds, err := Normalize([]byte(input), "split.csv", Options{})
	if err != nil {
		t.Fatalf("Normalize failed: %v", err)
	}
	if got := ds.Transactions[0].Amount.String(); got != "-55.25" {
		t.Errorf("debit row amount = %s, want -55.25", got)
	}
	if got := ds.Transactions[1].Amount.String(); got != "2000" {
		t.Errorf("credit row amount = %s, want 2000", got)
	}
}

func TestNormalize_Errors(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		filename string
		wantErr  error
	}{
		{
			name:     "unsupported extension",
			input:    sampleCSV,
			filename: "statement.pdf",
			wantErr:  ErrUnsupportedFormat,
		},
		{
			name:     "no amount column",
			input:    "date,description\n2024-01-01,Coffee\n",
			filename: "noamount.csv",
			wantErr:  ErrSchema,
		},
		{
			name:     "no date column",
			input:    "description,amount\nCoffee,-4.50\n",
			filename: "nodate.csv",
			wantErr:  ErrSchema,
		},
		{
			name:     "amount column holds only text",
			input:    "date,description,amount\n2024-01-01,Coffee,four fifty\n2024-01-02,Tea,two\n",
			filename: "textamount.csv",
			wantErr:  ErrSchema,
		},
		{
			name:     "empty file",
			input:    "",
			filename: "empty.csv",
			wantErr:  ErrParse,
		},
		{
			name:     "header only",
			input:    "date,description,amount\n",
			filename: "headeronly.csv",
			wantErr:  ErrParse,
		},
		{
			name:     "too many invalid rows",
			input:    "date,description,amount\n2024-01-01,OK,1.00\nbad,Bad,xx\nbad,Bad,xx\nbad,Bad,xx\n",
			filename: "mostlybad.csv",
			wantErr:  ErrTooManyInvalidRows,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Normalize([]byte(tt.input), tt.filename, Options{})
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Normalize error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestNormalize_RejectsUnderThreshold(t *testing.T) {
	input := "date,description,amount\n2024-01-01,OK,1.00\n2024-01-02,OK,2.00\nbad,Bad,3.00\n"
	ds, err := Normalize([]byte(input), "somebad.csv", Options{})
	if err != nil {
		t.Fatalf("Normalize failed: %v", err)
	}
	p := ds.Provenance
	if p.RowsParsed != 3 || p.RowsAccepted != 2 || p.RowsRejected != 1 {
		t.Errorf("counts = %d/%d/%d, want 3/2/1", p.RowsParsed, p.RowsAccepted, p.RowsRejected)
	}
	if p.RowsAccepted+p.RowsRejected != p.RowsParsed {
		t.Errorf("accepted+rejected != parsed")
	}
}

func TestNormalize_StrictRejectRatio(t *testing.T) {
	// The same input passes under the default ratio but an explicit
	// zero refuses any rejected row.
	input := "date,description,amount\n2024-01-01,OK,1.00\n2024-01-02,OK,2.00\nbad,Bad,3.00\n"
	zero := 0.0
	_, err := Normalize([]byte(input), "somebad.csv", Options{MaxRejectRatio: &zero})
	if !errors.Is(err, ErrTooManyInvalidRows) {
		t.Errorf("error = %v, want ErrTooManyInvalidRows", err)
	}

	negative := -1.0
	_, err = Normalize([]byte(input), "somebad.csv", Options{MaxRejectRatio: &negative})
	if !errors.Is(err, ErrTooManyInvalidRows) {
		t.Errorf("negative ratio: error = %v, want ErrTooManyInvalidRows", err)
	}
}

func TestNormalize_XLSX(t *testing.T) {
	f := excelize.NewFile()
	sheet := f.GetSheetName(0)
	rows := [][]interface{}{
		{"Date", "Description", "Amount"},
		{"2024-01-01", "Coffee", "-4.50"},
		{"2024-01-02", "Salary", "2000.00"},
	}
	for i, row := range rows {
		for j, v := range row {
			cell, err := excelize.CoordinatesToCellName(j+1, i+1)
			if err != nil {
				t.Fatalf("cell name: %v", err)
			}
			if err := f.SetCellValue(sheet, cell, v); err != nil {
				t.Fatalf("set cell: %v", err)
			}
		}
	}
	buf, err := f.WriteToBuffer()
	if err != nil {
		t.Fatalf("write xlsx: %v", err)
	}

	ds, err := Normalize(buf.Bytes(), "statement.xlsx", Options{})
	if err != nil {
		t.Fatalf("Normalize failed: %v", err)
	}
	if ds.Provenance.RowsAccepted != 2 {
		t.Errorf("accepted = %d, want 2", ds.Provenance.RowsAccepted)
	}
	if got := ds.Transactions[1].Amount.String(); got != "2000" {
		t.Errorf("amount = %s, want 2000", got)
	}
}

func TestNormalize_GarbageXLSX(t *testing.T) {
	_, err := Normalize([]byte("this is not a zip archive"), "broken.xlsx", Options{})
	if !errors.Is(err, ErrParse) {
		t.Errorf("error = %v, want ErrParse", err)
	}
}

func TestNormalize_LegacyXLS(t *testing.T) {
	// Legacy binary workbooks start with the OLE2 magic. The extension
	// is accepted but the content cannot be opened as OOXML.
	ole2 := []byte{0xD0, 0xCF, 0x11, 0xE0, 0xA1, 0xB1, 0x1A, 0xE1}
	_, err := Normalize(append(ole2, make([]byte, 512)...), "statement.xls", Options{})
	if !errors.Is(err, ErrParse) {
		t.Errorf("error = %v, want ErrParse", err)
	}
}
