package store

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"cloud.google.com/go/civil"
	"github.com/Medini-eng/AICW-01-Financial-Analysis-LLM/internal/domain"
	"github.com/google/go-cmp/cmp"
	"github.com/shopspring/decimal"
)

var decimalComparer = cmp.Comparer(func(a, b decimal.Decimal) bool {
	return a.Equal(b)
})

func testDataset() *domain.Dataset {
	return &domain.Dataset{
		Provenance: domain.Provenance{
			DatasetID:      "ds-1",
			SourceFilename: "statement.csv",
			UploadedAt:     time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC),
			RowsParsed:     3,
			RowsAccepted:   3,
		},
		Transactions: []domain.Transaction{
			{Date: civil.Date{Year: 2024, Month: 1, Day: 1}, Description: "Coffee", Amount: decimal.RequireFromString("-4.50"), Category: "Others"},
			{Date: civil.Date{Year: 2024, Month: 1, Day: 2}, Description: "Salary", Amount: decimal.RequireFromString("2000.00"), Category: "Income"},
			{Date: civil.Date{Year: 2024, Month: 1, Day: 3}, Description: "Coffee", Amount: decimal.RequireFromString("-4.75"), Category: "Others"},
		},
	}
}

func TestStore_RoundTrip(t *testing.T) {
	s, err := New(t.TempDir())
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	want := testDataset()
	if err := s.Save(want); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	got, err := s.Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if diff := cmp.Diff(want, got, decimalComparer); diff != "" {
		t.Errorf("round-trip mismatch (-want +got):\n%s", diff)
	}
}

func TestStore_LoadNotFound(t *testing.T) {
	s, err := New(t.TempDir())
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	if _, err := s.Load(); !errors.Is(err, ErrNotFound) {
		t.Errorf("Load error = %v, want ErrNotFound", err)
	}
}

func TestStore_SaveReplacesWholesale(t *testing.T) {
	s, err := New(t.TempDir())
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	first := testDataset()
	if err := s.Save(first); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	second := &domain.Dataset{
		Provenance: domain.Provenance{DatasetID: "ds-2", SourceFilename: "other.csv", RowsParsed: 1, RowsAccepted: 1},
		Transactions: []domain.Transaction{
			{Date: civil.Date{Year: 2025, Month: 6, Day: 1}, Description: "Rent", Amount: decimal.RequireFromString("-900.00"), Category: "Others"},
		},
	}
	if err := s.Save(second); err != nil {
		t.Fatalf("second Save failed: %v", err)
	}

	got, err := s.Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if got.Provenance.DatasetID != "ds-2" || len(got.Transactions) != 1 {
		t.Errorf("expected second dataset only, got %+v", got.Provenance)
	}
}

func TestStore_SaveLeavesNoTempFile(t *testing.T) {
	dir := t.TempDir()
	s, err := New(dir)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	if err := s.Save(testDataset()); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	if _, err := os.Stat(filepath.Join(dir, datasetFilename+".tmp")); !os.IsNotExist(err) {
		t.Errorf("temp file left behind after Save")
	}
}

func TestStore_Clear(t *testing.T) {
	s, err := New(t.TempDir())
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	// Clearing an empty store is fine.
	if err := s.Clear(); err != nil {
		t.Fatalf("Clear on empty store failed: %v", err)
	}

	if err := s.Save(testDataset()); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	if err := s.Clear(); err != nil {
		t.Fatalf("Clear failed: %v", err)
	}
	if _, err := s.Load(); !errors.Is(err, ErrNotFound) {
		t.Errorf("Load after Clear = %v, want ErrNotFound", err)
	}
}
