package domain

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func TestNewAccount(t *testing.T) {
	tests := []struct {
		name     string
		id       string
		accName  string
		presetID string
		wantErr  bool
	}{
		{name: "valid", id: "16", accName: "Capital 7729", presetID: "p1"},
		{name: "empty id", id: "", accName: "Capital 7729", presetID: "p1", wantErr: true},
		{name: "empty name", id: "16", accName: "", presetID: "p1", wantErr: true},
		{name: "empty preset", id: "16", accName: "Capital 7729", presetID: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			acc, err := NewAccount(tt.id, tt.accName, "Capital", tt.presetID, "USD")
			if (err != nil) != tt.wantErr {
				t.Fatalf("NewAccount() error = %v, wantErr %v", err, tt.wantErr)
			}
			if !tt.wantErr && acc.PresetID != tt.presetID {
				t.Errorf("PresetID = %q, want %q", acc.PresetID, tt.presetID)
			}
		})
	}
}

func TestNewPreset_DefaultDelimiter(t *testing.T) {
	p, err := NewPreset("p1", "Date", "Amount", "Description", "01/02/2006", 0)
	if err != nil {
		t.Fatalf("NewPreset() error = %v", err)
	}
	if p.Delimiter != ',' {
		t.Errorf("Delimiter = %q, want ','", p.Delimiter)
	}
}

func TestNewPreset_MissingColumn(t *testing.T) {
	if _, err := NewPreset("p1", "Date", "", "Description", "01/02/2006", ','); err == nil {
		t.Error("NewPreset() with empty amount column should fail")
	}
}

func TestPresetColumns(t *testing.T) {
	p, err := NewPreset("p1", "Date", "Amount", "Description", "2006-01-02", ';')
	if err != nil {
		t.Fatalf("NewPreset() error = %v", err)
	}

	got := p.Columns()
	want := []string{"Date", "Amount", "Description"}
	if len(got) != len(want) {
		t.Fatalf("Columns() = %v, want %v", got, want)
	}

	// Column-based type rule adds its source column.
	p.TypeRule = &TypeRule{Kind: TypeRuleColumn, Column: "Type"}
	got = p.Columns()
	if len(got) != 4 || got[3] != "Type" {
		t.Errorf("Columns() with type rule = %v, want trailing \"Type\"", got)
	}

	// Sign-based rules read no extra column.
	p.TypeRule = &TypeRule{Kind: TypeRuleSign}
	if got := p.Columns(); len(got) != 3 {
		t.Errorf("Columns() with sign rule = %v, want 3 columns", got)
	}
}

func TestNewRecord(t *testing.T) {
	now := time.Date(2024, 3, 1, 12, 30, 0, 0, time.UTC)
	date := time.Date(2024, 1, 5, 15, 4, 5, 0, time.FixedZone("CET", 3600))
	amount := decimal.RequireFromString("-42.50")

	rec, err := NewRecord("abc", date, "  WHOLE FOODS  ", amount, "16", now)
	if err != nil {
		t.Fatalf("NewRecord() error = %v", err)
	}

	if rec.Description != "WHOLE FOODS" {
		t.Errorf("Description = %q, want trimmed", rec.Description)
	}
	if rec.Date.Hour() != 0 || rec.Date.Location() != time.UTC {
		t.Errorf("Date = %v, want UTC midnight", rec.Date)
	}
	if !rec.CreatedAt.Equal(now) || !rec.UpdatedAt.Equal(now) {
		t.Errorf("timestamps = %v/%v, want %v", rec.CreatedAt, rec.UpdatedAt, now)
	}
	if rec.CategoryID != "" || rec.TransactionType != "" {
		t.Errorf("optional fields should start unset, got %q/%q", rec.CategoryID, rec.TransactionType)
	}
}

func TestNewRecord_Invalid(t *testing.T) {
	now := time.Now()
	amount := decimal.New(100, -2)

	if _, err := NewRecord("", now, "desc", amount, "16", now); err == nil {
		t.Error("empty ID should fail")
	}
	if _, err := NewRecord("abc", time.Time{}, "desc", amount, "16", now); err == nil {
		t.Error("zero date should fail")
	}
	if _, err := NewRecord("abc", now, "   ", amount, "16", now); err == nil {
		t.Error("blank description should fail")
	}
	if _, err := NewRecord("abc", now, "desc", amount, "", now); err == nil {
		t.Error("empty account ID should fail")
	}
}

func TestValidateTransactionType(t *testing.T) {
	if !ValidateTransactionType(TypeDebit) || !ValidateTransactionType(TypeCredit) {
		t.Error("debit/credit should validate")
	}
	if !ValidateTransactionType("") {
		t.Error("empty type means unset and should validate")
	}
	if ValidateTransactionType("withdrawal") {
		t.Error("unknown type should not validate")
	}
}

func TestDateOnly(t *testing.T) {
	in := time.Date(2024, 6, 15, 23, 59, 59, 1, time.FixedZone("UTC+5", 5*3600))
	got := DateOnly(in)
	// 23:59 UTC+5 is 18:59 UTC, still the 15th.
	want := time.Date(2024, 6, 15, 0, 0, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Errorf("DateOnly(%v) = %v, want %v", in, got, want)
	}
}
