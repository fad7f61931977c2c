package models

import (
	"time"
)

// StatusValid marks a validated contact record
const StatusValid = "VALIDO"

// TransformedRecord is a cleaned raw record with its derived fields.
// The anthropometric fields of the source are not carried over.
type TransformedRecord struct {
	FiscalID              string    `json:"fiscal_id"`
	FirstName             string    `json:"first_name"`
	LastName              string    `json:"last_name"`
	Gender                string    `json:"gender"`
	BirthDate             time.Time `json:"birth_date"`
	Age                   int       `json:"age"`
	AgeGroup              int       `json:"age_group"`
	DueDate               time.Time `json:"due_date"`
	Delinquency           int       `json:"delinquency"`
	DueBalance            *float64  `json:"due_balance"`
	Address               string    `json:"address"`
	Occupation            string    `json:"occupation"`
	Email                 string    `json:"email"`
	Status                string    `json:"status"`
	Phone                 string    `json:"phone"`
	Priority              int       `json:"priority"`
	BestContactOccupation bool      `json:"best_contact_occupation"`
}

// TransformedData holds the merged records of a run and the three entity
// tables split from them
type TransformedData struct {
	// Merged records of all chunks, in file order, before deduplication
	Records []TransformedRecord
	Chunks  int

	Customers []Customer
	Emails    []Email
	Phones    []Phone
}

// RecordsProcessed returns the number of merged records
func (d *TransformedData) RecordsProcessed() int {
	return len(d.Records)
}

// Tables returns the entity tables in load order: customers, emails, phones
func (d *TransformedData) Tables() []Table {
	return []Table{
		CustomersTable(d.Customers),
		EmailsTable(d.Emails),
		PhonesTable(d.Phones),
	}
}
