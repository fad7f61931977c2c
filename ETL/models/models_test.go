package models

import (
	"errors"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseError(t *testing.T) {
	_, cause := strconv.Atoi("x")
	var err error = &ParseError{Line: 3, Field: "priority", Value: "x", Err: cause}

	assert.ErrorIs(t, err, ErrParse)
	assert.ErrorIs(t, err, strconv.ErrSyntax)
	assert.Contains(t, err.Error(), "line 3")
	assert.Contains(t, err.Error(), "priority")

	var perr *ParseError
	require.True(t, errors.As(err, &perr))
	assert.Equal(t, "x", perr.Value)
}

func TestCustomerValues(t *testing.T) {
	birth := time.Date(1990, 6, 15, 0, 0, 0, 0, time.UTC)
	due := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)

	c := Customer{FiscalID: "00000001", FirstName: "ANA", BirthDate: birth, Age: 34, AgeGroup: 3, DueDate: due, Delinquency: 14}
	values := c.Values()

	require.Len(t, values, len(CustomerColumns))
	assert.Equal(t, "00000001", values[0])
	assert.Equal(t, "ANA", values[1])
	assert.Nil(t, values[2], "empty last name is NULL")
	assert.Equal(t, birth, values[4])
	assert.Nil(t, values[9], "missing balance is NULL")
	assert.Equal(t, false, values[12])

	balance := 12.5
	c.DueBalance = &balance
	assert.Equal(t, 12.5, c.Values()[9])
}

func TestTables(t *testing.T) {
	data := &TransformedData{
		Records:   make([]TransformedRecord, 4),
		Customers: []Customer{{FiscalID: "A"}},
		Emails:    []Email{{FiscalID: "A", Email: "a@x.com"}, {FiscalID: "A", Email: "b@x.com"}},
		Phones:    []Phone{{FiscalID: "A", Phone: "911", Status: StatusValid, Priority: 2}},
	}

	assert.Equal(t, 4, data.RecordsProcessed())

	tables := data.Tables()
	require.Len(t, tables, 3)
	assert.Equal(t, TableCustomers, tables[0].Name)
	assert.Equal(t, 1, tables[0].Len())
	assert.Equal(t, EmailColumns, tables[1].Columns)
	assert.Equal(t, 2, tables[1].Len())
	assert.Equal(t, []any{"A", "911", StatusValid, 2}, tables[2].Rows[0])
}
