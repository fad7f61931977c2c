package load

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/LilVoxy/customers_etl/ETL/config"
	"github.com/LilVoxy/customers_etl/ETL/models"
	"github.com/LilVoxy/customers_etl/ETL/utils"
)

// Loader appends entity tables to the destination store
type Loader interface {
	// Append appends the rows of one table
	Append(ctx context.Context, table models.Table) error

	// AppendAll appends several tables in order
	AppendAll(ctx context.Context, tables []models.Table) error
}

// execer is satisfied by *sql.DB and *sql.Tx
type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

// SQLLoader implements Loader with multi-row INSERT batches. It never
// truncates and assumes the schema already exists.
type SQLLoader struct {
	db        *sql.DB
	dialect   config.Dialect
	batchSize int
	atomic    bool
	logger    *utils.ETLLogger
}

// NewSQLLoader creates a new SQLLoader. With atomic set, AppendAll runs in
// a single transaction.
func NewSQLLoader(db *sql.DB, dialect config.Dialect, batchSize int, atomic bool, logger *utils.ETLLogger) *SQLLoader {
	if batchSize < 1 {
		batchSize = 1
	}
	return &SQLLoader{
		db:        db,
		dialect:   dialect,
		batchSize: batchSize,
		atomic:    atomic,
		logger:    logger,
	}
}

// Append appends the rows of one table outside of any transaction
func (l *SQLLoader) Append(ctx context.Context, table models.Table) error {
	return l.insert(ctx, l.db, table)
}

// AppendAll appends the tables in order. Without the atomic option a
// failure leaves the tables appended before it in place.
func (l *SQLLoader) AppendAll(ctx context.Context, tables []models.Table) error {
	// each table commits on its own
	if !l.atomic {
		for _, table := range tables {
			if err := l.insert(ctx, l.db, table); err != nil {
				return err
			}
		}
		return nil
	}

	// one transaction for all tables, rolled back on the first failure
	tx, err := l.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	for _, table := range tables {
		if err := l.insert(ctx, tx, table); err != nil {
			if rbErr := tx.Rollback(); rbErr != nil {
				l.logger.Error("Rollback failed: %v", rbErr)
			}
			return err
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

func (l *SQLLoader) insert(ctx context.Context, exec execer, table models.Table) error {
	if table.Len() == 0 {
		l.logger.Debug("No rows to load into %s", table.Name)
		return nil
	}

	startTime := time.Now()
	l.logger.Info("Loading %d rows into %s", table.Len(), table.Name)

	// rows are sent in slices small enough for the driver's parameter limit;
	// a failed slice leaves the earlier ones in place unless exec is a
	// transaction
	perStmt := RowsPerStatement(l.batchSize, len(table.Columns), l.dialect.MaxParams)
	for start := 0; start < table.Len(); start += perStmt {
		end := start + perStmt
		if end > table.Len() {
			end = table.Len()
		}

		query, args := BuildInsert(table.Name, table.Columns, table.Rows[start:end])
		if _, err := exec.ExecContext(ctx, l.dialect.Rebind(query), args...); err != nil {
			return fmt.Errorf("insert rows %d-%d into %s: %w", start, end-1, table.Name, err)
		}
		l.logger.Debug("Loaded %d of %d rows into %s", end, table.Len(), table.Name)
	}

	l.logger.Info("Loading into %s finished. Duration: %v", table.Name, time.Since(startTime))
	return nil
}

// RowsPerStatement caps batchSize so that a statement stays within the
// driver's bind-parameter limit
func RowsPerStatement(batchSize, columns, maxParams int) int {
	n := batchSize
	if columns > 0 && maxParams > 0 {
		if limit := maxParams / columns; limit < n {
			n = limit
		}
	}
	if n < 1 {
		n = 1
	}
	return n
}

// BuildInsert builds a multi-row INSERT with '?' placeholders
func BuildInsert(table string, columns []string, rows [][]any) (string, []any) {
	var b strings.Builder
	b.WriteString("INSERT INTO ")
	b.WriteString(table)
	b.WriteString(" (")
	b.WriteString(strings.Join(columns, ", "))
	b.WriteString(") VALUES ")

	group := "(" + strings.TrimSuffix(strings.Repeat("?, ", len(columns)), ", ") + ")"
	args := make([]any, 0, len(rows)*len(columns))
	for i, row := range rows {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(group)
		args = append(args, row...)
	}
	return b.String(), args
}
