package config

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/LilVoxy/customers_etl/ETL/models"
)

// Supported database drivers
const (
	DriverSQLite   = "sqlite3"
	DriverMySQL    = "mysql"
	DriverPostgres = "postgres"
)

// Dialect describes the bind style and limits of a database driver
type Dialect struct {
	Driver string

	// Maximum number of bind parameters in one statement
	MaxParams int

	numbered bool
}

var dialects = map[string]Dialect{
	DriverSQLite:   {Driver: DriverSQLite, MaxParams: 32766},
	DriverMySQL:    {Driver: DriverMySQL, MaxParams: 65535},
	DriverPostgres: {Driver: DriverPostgres, MaxParams: 65535, numbered: true},
}

// DialectFor returns the dialect of a driver name
func DialectFor(driver string) (Dialect, error) {
	d, ok := dialects[driver]
	if !ok {
		return Dialect{}, fmt.Errorf("%w: %q", models.ErrUnsupportedDriver, driver)
	}
	return d, nil
}

// Rebind rewrites '?' placeholders into the dialect's bind style.
// Queries must not contain literal question marks.
func (d Dialect) Rebind(query string) string {
	if !d.numbered {
		return query
	}

	var b strings.Builder
	b.Grow(len(query) + 16)
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}
