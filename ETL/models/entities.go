package models

import (
	"time"
)

// Entity table names
const (
	TableCustomers = "customers"
	TableEmails    = "emails"
	TablePhones    = "phones"
)

// Column order of each entity, shared by the database and the exports
var (
	CustomerColumns = []string{
		"fiscal_id", "first_name", "last_name", "gender", "birth_date",
		"age", "age_group", "due_date", "delinquency", "due_balance",
		"address", "occupation", "best_contact_occupation",
	}
	EmailColumns = []string{"fiscal_id", "email", "status", "priority"}
	PhoneColumns = []string{"fiscal_id", "phone", "status", "priority"}
)

// Customer is one row per unique fiscal id
type Customer struct {
	FiscalID              string
	FirstName             string
	LastName              string
	Gender                string
	BirthDate             time.Time
	Age                   int
	AgeGroup              int
	DueDate               time.Time
	Delinquency           int
	DueBalance            *float64
	Address               string
	Occupation            string
	BestContactOccupation bool
}

// Email is one row per unique (fiscal id, email) pair
type Email struct {
	FiscalID string
	Email    string
	Status   string
	Priority int
}

// Phone is one row per unique (fiscal id, phone) pair
type Phone struct {
	FiscalID string
	Phone    string
	Status   string
	Priority int
}

// Values returns the customer in CustomerColumns order
func (c Customer) Values() []any {
	var balance any
	if c.DueBalance != nil {
		balance = *c.DueBalance
	}
	return []any{
		c.FiscalID, nullable(c.FirstName), nullable(c.LastName), nullable(c.Gender), c.BirthDate,
		c.Age, c.AgeGroup, c.DueDate, c.Delinquency, balance,
		nullable(c.Address), nullable(c.Occupation), c.BestContactOccupation,
	}
}

// Values returns the email in EmailColumns order
func (e Email) Values() []any {
	return []any{e.FiscalID, e.Email, nullable(e.Status), e.Priority}
}

// Values returns the phone in PhoneColumns order
func (p Phone) Values() []any {
	return []any{p.FiscalID, p.Phone, nullable(p.Status), p.Priority}
}

// nullable keeps the empty-string missing marker as a NULL value
func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}
