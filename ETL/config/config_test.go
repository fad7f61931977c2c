package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"

	"github.com/LilVoxy/customers_etl/ETL/models"
)

func TestGetConfigDefaults(t *testing.T) {
	cfg := GetConfig()

	assert.Equal(t, DefaultWidths, cfg.Widths)
	assert.Equal(t, 242, cfg.RecordWidth())
	assert.Equal(t, 5000, cfg.ChunkSize)
	assert.Positive(t, cfg.Workers)
	assert.False(t, cfg.AtomicLoad)
	assert.Equal(t, DriverSQLite, cfg.Database.Driver)
	assert.NoError(t, cfg.Validate())

	// widths are copied, not shared
	cfg.Widths[0] = 99
	assert.Equal(t, 8, DefaultWidths[0])
}

func TestFromEnv(t *testing.T) {
	t.Setenv("ETL_DB_DRIVER", DriverPostgres)
	t.Setenv("ETL_DB_DSN", "postgres://etl@localhost/customers")
	t.Setenv("ETL_SCHEMA_PATH", "/etc/etl/schema.sql")
	t.Setenv("ETL_OUTPUT_DIR", "/var/lib/etl")
	t.Setenv("ETL_LOG_DIR", "/var/log/etl")

	cfg := GetConfig()

	assert.Equal(t, DriverPostgres, cfg.Database.Driver)
	assert.Equal(t, "postgres://etl@localhost/customers", cfg.Database.DSN)
	assert.Equal(t, "/etc/etl/schema.sql", cfg.SchemaPath)
	assert.Equal(t, "/var/lib/etl", cfg.OutputDir)
	assert.Equal(t, "/var/log/etl", cfg.LogDir)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*ETLConfig)
		wantErr error
	}{
		{"missing column width", func(c *ETLConfig) { c.Widths = c.Widths[:14] }, nil},
		{"zero width", func(c *ETLConfig) { c.Widths[3] = 0 }, nil},
		{"zero chunk size", func(c *ETLConfig) { c.ChunkSize = 0 }, nil},
		{"no workers", func(c *ETLConfig) { c.Workers = 0 }, nil},
		{"no timeout", func(c *ETLConfig) { c.ChunkTimeout = 0 }, nil},
		{"zero batch size", func(c *ETLConfig) { c.BatchSize = 0 }, nil},
		{"unknown encoding", func(c *ETLConfig) { c.InputEncoding = "ebcdic" }, models.ErrUnsupportedEncoding},
		{"unknown driver", func(c *ETLConfig) { c.Database.Driver = "oracle" }, models.ErrUnsupportedDriver},
		{"empty schema path", func(c *ETLConfig) { c.SchemaPath = " " }, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := GetConfig()
			tt.mutate(&cfg)

			err := cfg.Validate()
			require.Error(t, err)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			}
		})
	}

	t.Run("database settings ignored when skipped", func(t *testing.T) {
		cfg := GetConfig()
		cfg.SkipDatabase = true
		cfg.Database.Driver = "oracle"
		cfg.SchemaPath = ""
		assert.NoError(t, cfg.Validate())
	})
}

func TestLookupEncoding(t *testing.T) {
	enc, err := LookupEncoding(EncodingLatin1)
	require.NoError(t, err)
	assert.Equal(t, charmap.ISO8859_1, enc)

	enc, err = LookupEncoding(EncodingWindows)
	require.NoError(t, err)
	assert.Equal(t, charmap.Windows1252, enc)

	enc, err = LookupEncoding(EncodingUTF8)
	require.NoError(t, err)
	assert.Equal(t, unicode.UTF8, enc)

	_, err = LookupEncoding("utf-16")
	assert.ErrorIs(t, err, models.ErrUnsupportedEncoding)
}
