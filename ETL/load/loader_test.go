package load

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/suite"

	"github.com/LilVoxy/customers_etl/ETL/config"
	"github.com/LilVoxy/customers_etl/ETL/models"
	"github.com/LilVoxy/customers_etl/ETL/utils"
)

const schemaPath = "../sql/schema.sql"

func sampleData() *models.TransformedData {
	balance := 150.5
	return &models.TransformedData{
		Customers: []models.Customer{
			{
				FiscalID: "00000001", FirstName: "MARIA", LastName: "SILVA", Gender: "F",
				BirthDate: time.Date(1990, 6, 15, 0, 0, 0, 0, time.UTC), Age: 34, AgeGroup: 3,
				DueDate: time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC), Delinquency: 14, DueBalance: &balance,
				Address: "RUA DAS FLORES 10", Occupation: "ENGINEER", BestContactOccupation: true,
			},
			{
				FiscalID: "00000002", FirstName: "JOAO",
				BirthDate: time.Date(1960, 1, 1, 0, 0, 0, 0, time.UTC), Age: 64, AgeGroup: 6,
				DueDate: time.Date(2024, 7, 1, 0, 0, 0, 0, time.UTC), Delinquency: -16,
			},
		},
		Emails: []models.Email{
			{FiscalID: "00000001", Email: "maria@example.com", Status: models.StatusValid, Priority: 1},
		},
		Phones: []models.Phone{
			{FiscalID: "00000001", Phone: "912345678", Status: models.StatusValid, Priority: 1},
			{FiscalID: "00000002", Phone: "223456789", Priority: 0},
		},
	}
}

type SQLLoaderSuite struct {
	suite.Suite
	ctx  context.Context
	conn *config.DBConnection
}

func TestSQLLoaderSuite(t *testing.T) {
	suite.Run(t, new(SQLLoaderSuite))
}

func (s *SQLLoaderSuite) SetupTest() {
	s.ctx = context.Background()
	conn, err := config.ConnectDatabase(s.ctx, config.DatabaseConfig{
		Driver: config.DriverSQLite,
		DSN:    filepath.Join(s.T().TempDir(), "etl.db3"),
	})
	s.Require().NoError(err)
	s.Require().NoError(config.BootstrapSchema(s.ctx, conn.DB, schemaPath))
	s.conn = conn
}

func (s *SQLLoaderSuite) TearDownTest() {
	config.CloseDatabase(s.conn)
}

func (s *SQLLoaderSuite) count(table string) int {
	var n int
	s.Require().NoError(s.conn.DB.QueryRowContext(s.ctx, "SELECT COUNT(*) FROM "+table).Scan(&n))
	return n
}

func (s *SQLLoaderSuite) loader(batchSize int, atomic bool) *SQLLoader {
	return NewSQLLoader(s.conn.DB, s.conn.Dialect, batchSize, atomic, utils.NewNopLogger())
}

func (s *SQLLoaderSuite) TestAppendAll() {
	s.Require().NoError(s.loader(5000, true).AppendAll(s.ctx, sampleData().Tables()))

	s.Equal(2, s.count(models.TableCustomers))
	s.Equal(1, s.count(models.TableEmails))
	s.Equal(2, s.count(models.TablePhones))

	var (
		firstName  string
		lastName   *string
		balance    *float64
		best       bool
		delinquent int
	)
	row := s.conn.DB.QueryRowContext(s.ctx,
		"SELECT first_name, last_name, due_balance, best_contact_occupation, delinquency FROM customers WHERE fiscal_id = ?", "00000002")
	s.Require().NoError(row.Scan(&firstName, &lastName, &balance, &best, &delinquent))
	s.Equal("JOAO", firstName)
	s.Nil(lastName)
	s.Nil(balance)
	s.False(best)
	s.Equal(-16, delinquent)
}

func (s *SQLLoaderSuite) TestAppendNeverTruncates() {
	loader := s.loader(5000, false)
	tables := sampleData().Tables()

	s.Require().NoError(loader.AppendAll(s.ctx, tables))
	s.Require().NoError(loader.Append(s.ctx, tables[0]))

	s.Equal(4, s.count(models.TableCustomers))
	s.Equal(1, s.count(models.TableEmails))
}

func (s *SQLLoaderSuite) TestBatches() {
	phones := make([]models.Phone, 11)
	for i := range phones {
		phones[i] = models.Phone{FiscalID: "00000001", Phone: "91234567" + string(rune('0'+i%10))}
	}
	table := models.PhonesTable(phones)

	s.Run("batch size", func() {
		s.Require().NoError(s.loader(3, true).Append(s.ctx, table))
		s.Equal(11, s.count(models.TablePhones))
	})

	s.Run("parameter limit", func() {
		dialect := s.conn.Dialect
		dialect.MaxParams = 8
		loader := NewSQLLoader(s.conn.DB, dialect, 5000, true, utils.NewNopLogger())

		s.Require().NoError(loader.Append(s.ctx, table))
		s.Equal(22, s.count(models.TablePhones))
	})
}

func (s *SQLLoaderSuite) TestEmptyTable() {
	s.NoError(s.loader(10, true).Append(s.ctx, models.EmailsTable(nil)))
	s.Zero(s.count(models.TableEmails))
}

func (s *SQLLoaderSuite) brokenTables() []models.Table {
	tables := sampleData().Tables()
	// email is NOT NULL
	tables[1].Rows = append(tables[1].Rows, []any{"00000002", nil, nil, 0})
	return tables
}

func (s *SQLLoaderSuite) TestAtomicRollback() {
	err := s.loader(5000, true).AppendAll(s.ctx, s.brokenTables())
	s.Require().Error(err)
	s.Contains(err.Error(), models.TableEmails)

	s.Zero(s.count(models.TableCustomers))
	s.Zero(s.count(models.TableEmails))
	s.Zero(s.count(models.TablePhones))
}

func (s *SQLLoaderSuite) TestNonAtomicKeepsEarlierTables() {
	err := s.loader(5000, false).AppendAll(s.ctx, s.brokenTables())
	s.Require().Error(err)

	s.Equal(2, s.count(models.TableCustomers))
	s.Zero(s.count(models.TablePhones))
}

func TestRowsPerStatement(t *testing.T) {
	assert.Equal(t, 5000, RowsPerStatement(5000, 4, 65535))
	assert.Equal(t, 2520, RowsPerStatement(5000, 13, 32766))
	assert.Equal(t, 2, RowsPerStatement(5000, 4, 8))
	assert.Equal(t, 1, RowsPerStatement(5000, 13, 8))
	assert.Equal(t, 1, RowsPerStatement(0, 4, 65535))
}

func TestBuildInsert(t *testing.T) {
	query, args := BuildInsert("phones", []string{"fiscal_id", "phone"}, [][]any{
		{"A", "911"},
		{"B", "922"},
	})

	assert.Equal(t, "INSERT INTO phones (fiscal_id, phone) VALUES (?, ?), (?, ?)", query)
	assert.Equal(t, []any{"A", "911", "B", "922"}, args)

	pg, err := config.DialectFor(config.DriverPostgres)
	assert.NoError(t, err)
	assert.Equal(t, "INSERT INTO phones (fiscal_id, phone) VALUES ($1, $2), ($3, $4)", pg.Rebind(query))
}
