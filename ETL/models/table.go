package models

// Table is a sink-neutral projection of an entity: a name, a fixed column
// order, and rows whose values follow that order. A nil value is missing.
type Table struct {
	Name    string
	Columns []string
	Rows    [][]any
}

// Len returns the number of rows in the table
func (t Table) Len() int {
	return len(t.Rows)
}

// CustomersTable projects customers into a Table
func CustomersTable(customers []Customer) Table {
	rows := make([][]any, 0, len(customers))
	for _, c := range customers {
		rows = append(rows, c.Values())
	}
	return Table{Name: TableCustomers, Columns: CustomerColumns, Rows: rows}
}

// EmailsTable projects emails into a Table
func EmailsTable(emails []Email) Table {
	rows := make([][]any, 0, len(emails))
	for _, e := range emails {
		rows = append(rows, e.Values())
	}
	return Table{Name: TableEmails, Columns: EmailColumns, Rows: rows}
}

// PhonesTable projects phones into a Table
func PhonesTable(phones []Phone) Table {
	rows := make([][]any, 0, len(phones))
	for _, p := range phones {
		rows = append(rows, p.Values())
	}
	return Table{Name: TablePhones, Columns: PhoneColumns, Rows: rows}
}
