// Package testutil builds fixed-width customer fixtures for tests.
package testutil

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"unicode/utf8"
)

// Row holds the source fields of one customer line, in file order
type Row struct {
	FiscalID   string
	FirstName  string
	LastName   string
	Gender     string
	BirthDate  string
	DueDate    string
	DueBalance string
	Address    string
	Occupation string
	Height     string
	Weight     string
	Email      string
	Status     string
	Phone      string
	Priority   string
}

// ValidRow returns a well-formed row for fiscalID
func ValidRow(fiscalID string) Row {
	return Row{
		FiscalID:   fiscalID,
		FirstName:  "maria",
		LastName:   "silva",
		Gender:     "f",
		BirthDate:  "1990-06-15",
		DueDate:    "2024-06-01",
		DueBalance: "150.5",
		Address:    "rua das flores 10",
		Occupation: "engineer",
		Height:     "1.70",
		Weight:     "65",
		Email:      "Maria@Example.com",
		Status:     "valido",
		Phone:      "912345678",
		Priority:   "1",
	}
}

// Fields returns the row values in file order
func (r Row) Fields() []string {
	return []string{
		r.FiscalID, r.FirstName, r.LastName, r.Gender, r.BirthDate,
		r.DueDate, r.DueBalance, r.Address, r.Occupation, r.Height,
		r.Weight, r.Email, r.Status, r.Phone, r.Priority,
	}
}

// Line renders the row as a fixed-width line, padding every field to its
// width. Values longer than their width are cut.
func (r Row) Line(widths []int) string {
	return Line(widths, r.Fields()...)
}

// Line renders fields as a fixed-width line
func Line(widths []int, fields ...string) string {
	var b strings.Builder
	for i, w := range widths {
		var v string
		if i < len(fields) {
			v = fields[i]
		}
		n := utf8.RuneCountInString(v)
		if n > w {
			v = string([]rune(v)[:w])
			n = w
		}
		b.WriteString(v)
		b.WriteString(strings.Repeat(" ", w-n))
	}
	return b.String()
}

// Lines renders rows as newline-terminated fixed-width text
func Lines(widths []int, rows ...Row) string {
	var b strings.Builder
	for _, r := range rows {
		b.WriteString(r.Line(widths))
		b.WriteByte('\n')
	}
	return b.String()
}

// WriteInput writes rows to a file in t.TempDir and returns its path
func WriteInput(t testing.TB, widths []int, rows ...Row) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "customers.txt")
	if err := os.WriteFile(path, []byte(Lines(widths, rows...)), 0644); err != nil {
		t.Fatalf("write input: %v", err)
	}
	return path
}
