package models

// Positions of the fields in a fixed-width customer line
const (
	FieldFiscalID = iota
	FieldFirstName
	FieldLastName
	FieldGender
	FieldBirthDate
	FieldDueDate
	FieldDueBalance
	FieldAddress
	FieldOccupation
	FieldHeight
	FieldWeight
	FieldEmail
	FieldStatus
	FieldPhone
	FieldPriority

	// RawFieldCount is the number of positional fields in a source line
	RawFieldCount
)

// RawColumns holds the canonical names of the positional fields, in file order
var RawColumns = [RawFieldCount]string{
	"fiscal_id", "first_name", "last_name", "gender", "birth_date",
	"due_date", "due_balance", "address", "occupation", "height",
	"weight", "email", "status", "phone", "priority",
}

// RawRecord represents one decoded fixed-width line of the source extract
type RawRecord struct {
	Line   int // 1-based line number in the input file
	Fields [RawFieldCount]string
}

// Get returns the value of the field at position i
func (r RawRecord) Get(i int) string {
	return r.Fields[i]
}

// RawChunk is an ordered batch of raw records processed as one unit of work
type RawChunk struct {
	Index   int
	Records []RawRecord
}
