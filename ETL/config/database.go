package config

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/go-sql-driver/mysql"
	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
)

// DBConnection holds the destination database and its dialect
type DBConnection struct {
	DB      *sql.DB
	Dialect Dialect
}

// ConnectDatabase opens and pings the destination database
func ConnectDatabase(ctx context.Context, config DatabaseConfig) (*DBConnection, error) {
	dialect, err := DialectFor(config.Driver)
	if err != nil {
		return nil, err
	}

	dsn, err := NormalizeDSN(config.Driver, config.DSN)
	if err != nil {
		return nil, err
	}

	db, err := sql.Open(config.Driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("open %s database: %w", config.Driver, err)
	}

	if dialect.Driver == DriverSQLite {
		// a single writer avoids "database is locked" on file databases
		db.SetMaxOpenConns(1)
	} else {
		db.SetMaxOpenConns(10)
		db.SetMaxIdleConns(5)
	}
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping %s database: %w", config.Driver, err)
	}

	return &DBConnection{DB: db, Dialect: dialect}, nil
}

// NormalizeDSN adjusts a data source name to what the loaders and the run
// log expect. MySQL DSNs always get parseTime=true so that DATETIME and
// TIMESTAMP columns scan into time.Time.
func NormalizeDSN(driver, dsn string) (string, error) {
	if driver != DriverMySQL {
		return dsn, nil
	}

	cfg, err := mysql.ParseDSN(dsn)
	if err != nil {
		return "", fmt.Errorf("parse mysql dsn: %w", err)
	}
	cfg.ParseTime = true
	return cfg.FormatDSN(), nil
}

// BootstrapSchema runs the DDL script at schemaPath statement by statement.
// The script is expected to be idempotent (CREATE TABLE IF NOT EXISTS).
func BootstrapSchema(ctx context.Context, db *sql.DB, schemaPath string) error {
	script, err := os.ReadFile(schemaPath)
	if err != nil {
		return fmt.Errorf("read schema %s: %w", schemaPath, err)
	}

	for _, stmt := range SplitStatements(string(script)) {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("execute schema statement %q: %w", firstLine(stmt), err)
		}
	}
	return nil
}

// SplitStatements splits a DDL script on ';' and drops empty statements and
// '--' comment lines
func SplitStatements(script string) []string {
	var cleaned strings.Builder
	for _, line := range strings.Split(script, "\n") {
		if strings.HasPrefix(strings.TrimSpace(line), "--") {
			continue
		}
		cleaned.WriteString(line)
		cleaned.WriteByte('\n')
	}

	var stmts []string
	for _, part := range strings.Split(cleaned.String(), ";") {
		if stmt := strings.TrimSpace(part); stmt != "" {
			stmts = append(stmts, stmt)
		}
	}
	return stmts
}

// CloseDatabase closes the destination database
func CloseDatabase(conn *DBConnection) {
	if conn == nil || conn.DB == nil {
		return
	}
	if err := conn.DB.Close(); err != nil {
		log.Printf("error closing %s database: %v", conn.Dialect.Driver, err)
	}
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}
	return s
}
