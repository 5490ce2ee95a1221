package domain

import (
	"time"

	"cloud.google.com/go/civil"
	"github.com/shopspring/decimal"
)

// Transaction is one normalized row of the canonical schema.
// Sign convention: money IN is positive, money OUT is negative.
type Transaction struct {
	Date        civil.Date      `json:"date"`
	Description string          `json:"description"`
	Amount      decimal.Decimal `json:"amount"`
	Category    string          `json:"category,omitempty"`
}

// Provenance records where a dataset came from and how normalization went.
type Provenance struct {
	DatasetID      string    `json:"dataset_id"`
	SourceFilename string    `json:"source_filename"`
	UploadedAt     time.Time `json:"uploaded_at"`
	RowsParsed     int       `json:"rows_parsed"`
	RowsAccepted   int       `json:"rows_accepted"`
	RowsRejected   int       `json:"rows_rejected"`
}

// Dataset is the ordered collection of accepted transactions plus provenance.
// It is replaced wholesale on each upload; there is no incremental merge.
type Dataset struct {
	Provenance   Provenance    `json:"provenance"`
	Transactions []Transaction `json:"transactions"`
}

// Len returns the number of accepted transactions.
func (d *Dataset) Len() int {
	if d == nil {
		return 0
	}
	return len(d.Transactions)
}

// DateRange returns the earliest and latest transaction dates.
// ok is false for an empty dataset.
func (d *Dataset) DateRange() (first, last civil.Date, ok bool) {
	if d.Len() == 0 {
		return civil.Date{}, civil.Date{}, false
	}
	first = d.Transactions[0].Date
	last = d.Transactions[0].Date
	for _, t := range d.Transactions[1:] {
		if t.Date.Before(first) {
			first = t.Date
		}
		if t.Date.After(last) {
			last = t.Date
		}
	}
	return first, last, true
}
