package transform

import (
	"sort"

	"github.com/LilVoxy/customers_etl/ETL/models"
)

// Splitter derives the customer, email and phone entities from the merged
// records of a run
type Splitter struct{}

// NewSplitter creates a new Splitter
func NewSplitter() *Splitter {
	return &Splitter{}
}

// Split flags the best contact per occupation on records, in place, and
// returns the three de-duplicated entity tables. Keep-first is applied in
// record order.
func (s *Splitter) Split(records []models.TransformedRecord) (customers []models.Customer, emails []models.Email, phones []models.Phone) {
	// 1. Best contact per occupation, over the whole run
	MarkBestContacts(records)

	// 2. One pass over the records, keeping the first customer per fiscal id
	// and the first email and phone per (fiscal id, value) pair
	customers = make([]models.Customer, 0, len(records))
	seenCustomers := make(map[string]struct{}, len(records))

	type pair struct{ fiscalID, value string }
	seenEmails := make(map[pair]struct{})
	seenPhones := make(map[pair]struct{})

	for _, r := range records {
		if _, dup := seenCustomers[r.FiscalID]; !dup {
			seenCustomers[r.FiscalID] = struct{}{}
			customers = append(customers, customerOf(r))
		}

		// empty contacts never produce a row
		if r.Email != "" {
			k := pair{r.FiscalID, r.Email}
			if _, dup := seenEmails[k]; !dup {
				seenEmails[k] = struct{}{}
				emails = append(emails, models.Email{FiscalID: r.FiscalID, Email: r.Email, Status: r.Status, Priority: r.Priority})
			}
		}

		if r.Phone != "" {
			k := pair{r.FiscalID, r.Phone}
			if _, dup := seenPhones[k]; !dup {
				seenPhones[k] = struct{}{}
				phones = append(phones, models.Phone{FiscalID: r.FiscalID, Phone: r.Phone, Status: r.Status, Priority: r.Priority})
			}
		}
	}
	return customers, emails, phones
}

// BestContacts returns, per occupation, the fiscal id with the most records
// in status VALIDO. Ties go to the smallest fiscal id. Records without an
// occupation are not grouped.
func BestContacts(records []models.TransformedRecord) map[string]string {
	// 1. Count the valid records of every fiscal id per occupation
	counts := make(map[string]map[string]int)
	for _, r := range records {
		if r.Status != models.StatusValid || r.Occupation == "" {
			continue
		}
		byID, ok := counts[r.Occupation]
		if !ok {
			byID = make(map[string]int)
			counts[r.Occupation] = byID
		}
		byID[r.FiscalID]++
	}

	// 2. Pick the highest count; ids are visited in ascending order and only
	// a strictly greater count replaces the current best
	winners := make(map[string]string, len(counts))
	for occupation, byID := range counts {
		ids := make([]string, 0, len(byID))
		for id := range byID {
			ids = append(ids, id)
		}
		sort.Strings(ids)

		best := ids[0]
		for _, id := range ids[1:] {
			if byID[id] > byID[best] {
				best = id
			}
		}
		winners[occupation] = best
	}
	return winners
}

// MarkBestContacts sets BestContactOccupation on every record whose fiscal
// id wins at least one occupation, whatever the record's own status
func MarkBestContacts(records []models.TransformedRecord) {
	winners := make(map[string]struct{})
	for _, id := range BestContacts(records) {
		winners[id] = struct{}{}
	}
	for i := range records {
		_, ok := winners[records[i].FiscalID]
		records[i].BestContactOccupation = ok
	}
}

func customerOf(r models.TransformedRecord) models.Customer {
	return models.Customer{
		FiscalID:              r.FiscalID,
		FirstName:             r.FirstName,
		LastName:              r.LastName,
		Gender:                r.Gender,
		BirthDate:             r.BirthDate,
		Age:                   r.Age,
		AgeGroup:              r.AgeGroup,
		DueDate:               r.DueDate,
		Delinquency:           r.Delinquency,
		DueBalance:            r.DueBalance,
		Address:               r.Address,
		Occupation:            r.Occupation,
		BestContactOccupation: r.BestContactOccupation,
	}
}
