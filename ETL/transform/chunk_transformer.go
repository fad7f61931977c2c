package transform

import (
	"strconv"
	"strings"
	"time"

	"github.com/LilVoxy/customers_etl/ETL/models"
)

const dateLayout = "2006-01-02"

// ChunkTransformer cleans raw chunks and derives the computed fields.
// It holds no mutable state, so one instance can serve every worker.
type ChunkTransformer struct {
	now time.Time
}

// NewChunkTransformer creates a transformer pinned to the run timestamp now
func NewChunkTransformer(now time.Time) *ChunkTransformer {
	return &ChunkTransformer{now: now}
}

// TransformChunk maps one raw chunk to its transformed records. Any invalid
// field fails the whole chunk.
func (t *ChunkTransformer) TransformChunk(chunk models.RawChunk) ([]models.TransformedRecord, error) {
	out := make([]models.TransformedRecord, 0, len(chunk.Records))
	for _, raw := range chunk.Records {
		rec, err := t.TransformRecord(raw)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, nil
}

// TransformRecord cleans a single raw record
func (t *ChunkTransformer) TransformRecord(raw models.RawRecord) (models.TransformedRecord, error) {
	// 1. Dates, parsed in the location of the run timestamp
	birthDate, err := t.parseDate(raw, models.FieldBirthDate)
	if err != nil {
		return models.TransformedRecord{}, err
	}
	dueDate, err := t.parseDate(raw, models.FieldDueDate)
	if err != nil {
		return models.TransformedRecord{}, err
	}

	// two-digit years in the source can land in the future
	if !birthDate.Before(t.now) {
		birthDate = birthDate.AddDate(-100, 0, 0)
	}

	// 2. Numeric fields; empty values fall back to their defaults
	balance, err := parseBalance(raw)
	if err != nil {
		return models.TransformedRecord{}, err
	}
	phone, err := normalizePhone(raw)
	if err != nil {
		return models.TransformedRecord{}, err
	}
	priority, err := parsePriority(raw)
	if err != nil {
		return models.TransformedRecord{}, err
	}

	// 3. Casing and derived fields. The unused height and weight columns
	// are dropped here.
	age := AgeAt(birthDate, t.now)
	return models.TransformedRecord{
		FiscalID:    raw.Get(models.FieldFiscalID),
		FirstName:   strings.ToUpper(raw.Get(models.FieldFirstName)),
		LastName:    strings.ToUpper(raw.Get(models.FieldLastName)),
		Gender:      strings.ToUpper(raw.Get(models.FieldGender)),
		BirthDate:   birthDate,
		Age:         age,
		AgeGroup:    AgeGroup(age),
		DueDate:     dueDate,
		Delinquency: DelinquencyDays(dueDate, t.now),
		DueBalance:  balance,
		Address:     strings.ToUpper(raw.Get(models.FieldAddress)),
		Occupation:  strings.ToUpper(raw.Get(models.FieldOccupation)),
		Email:       strings.ToLower(raw.Get(models.FieldEmail)),
		Status:      strings.ToUpper(raw.Get(models.FieldStatus)),
		Phone:       phone,
		Priority:    priority,
	}, nil
}

func (t *ChunkTransformer) parseDate(raw models.RawRecord, field int) (time.Time, error) {
	value := raw.Get(field)
	d, err := time.ParseInLocation(dateLayout, value, t.now.Location())
	if err != nil {
		return time.Time{}, &models.ParseError{Line: raw.Line, Field: models.RawColumns[field], Value: value, Err: err}
	}
	return d, nil
}

// AgeAt returns the completed years between birth and now
func AgeAt(birth, now time.Time) int {
	years := now.Year() - birth.Year()
	if now.Before(birth.AddDate(years, 0, 0)) {
		years--
	}
	return years
}

// AgeGroup buckets an age: (0,20]→1, (20,30]→2, (30,40]→3, (40,50]→4,
// (50,60]→5, above 60→6. Age 0 belongs to the first bucket.
func AgeGroup(age int) int {
	switch {
	case age <= 20:
		return 1
	case age <= 30:
		return 2
	case age <= 40:
		return 3
	case age <= 50:
		return 4
	case age <= 60:
		return 5
	default:
		return 6
	}
}

// DelinquencyDays returns the calendar days from the due date to the date of
// now; negative when the due date is still ahead. The wall-clock dates are
// compared, so a daylight saving change in between does not shorten the
// count.
func DelinquencyDays(due, now time.Time) int {
	dueDay := time.Date(due.Year(), due.Month(), due.Day(), 0, 0, 0, 0, time.UTC)
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	return int(today.Sub(dueDay) / (24 * time.Hour))
}

// normalizePhone renders the phone as an integer string. Missing and zero
// phones become "", meaning no phone.
func normalizePhone(raw models.RawRecord) (string, error) {
	value := raw.Get(models.FieldPhone)
	if value == "" {
		return "", nil
	}
	n, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		return "", &models.ParseError{Line: raw.Line, Field: models.RawColumns[models.FieldPhone], Value: value, Err: err}
	}
	if n == 0 {
		return "", nil
	}
	return strconv.FormatInt(n, 10), nil
}

func parsePriority(raw models.RawRecord) (int, error) {
	value := raw.Get(models.FieldPriority)
	if value == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, &models.ParseError{Line: raw.Line, Field: models.RawColumns[models.FieldPriority], Value: value, Err: err}
	}
	return n, nil
}

func parseBalance(raw models.RawRecord) (*float64, error) {
	value := raw.Get(models.FieldDueBalance)
	if value == "" {
		return nil, nil
	}
	f, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return nil, &models.ParseError{Line: raw.Line, Field: models.RawColumns[models.FieldDueBalance], Value: value, Err: err}
	}
	return &f, nil
}
