package config

import (
	"fmt"
	"os"
	"runtime"
	"strings"
	"time"

	"github.com/LilVoxy/customers_etl/ETL/models"
)

// ETLConfig holds the settings of one ETL run. It is built once at startup
// and passed by value into every component.
type ETLConfig struct {
	// Path of the fixed-width input file
	InputPath string `json:"input_path"`

	// Character encoding of the input: utf-8, latin1 or windows-1252
	InputEncoding string `json:"input_encoding"`

	// Column widths of the fixed-width format, in characters
	Widths []int `json:"widths"`

	// Number of records per chunk of parallel work
	ChunkSize int `json:"chunk_size"`

	// Size of the transform worker pool
	Workers int `json:"workers"`

	// Maximum wait for each chunk result
	ChunkTimeout time.Duration `json:"chunk_timeout"`

	// Destination database
	Database DatabaseConfig `json:"database"`

	// DDL script executed at startup
	SchemaPath string `json:"schema_path"`

	// Rows per INSERT batch
	BatchSize int `json:"batch_size"`

	// Wrap the three entity appends in one transaction. Off by default:
	// each table is appended on its own.
	AtomicLoad bool `json:"atomic_load"`

	// Directory receiving the xlsx exports
	OutputDir string `json:"output_dir"`

	// Optional snappy-compressed dump of the merged records
	StagingPath string `json:"staging_path"`

	// Optional Prometheus textfile written at the end of each run
	MetricsFile string `json:"metrics_file"`

	// Directory of the daily log file
	LogDir string `json:"log_dir"`

	// Interval between runs in scheduled mode
	RunInterval time.Duration `json:"run_interval"`

	SkipDatabase bool `json:"skip_database"`
	SkipExport   bool `json:"skip_export"`

	// Enable debug logging
	EnableDetailedLogging bool `json:"enable_detailed_logging"`
}

// DatabaseConfig holds the connection settings of the destination store
type DatabaseConfig struct {
	Driver string `json:"driver"`
	DSN    string `json:"dsn"`
}

// DefaultWidths is the layout of the customer extract
var DefaultWidths = []int{8, 20, 25, 9, 10, 10, 6, 50, 30, 4, 2, 50, 8, 9, 1}

// Default configuration values
var (
	DefaultDatabaseConfig = DatabaseConfig{
		Driver: DriverSQLite,
		DSN:    "database.db3",
	}

	DefaultETLConfig = ETLConfig{
		InputEncoding:         EncodingUTF8,
		ChunkSize:             5000,
		ChunkTimeout:          120 * time.Second,
		Database:              DefaultDatabaseConfig,
		SchemaPath:            "ETL/sql/schema.sql",
		BatchSize:             5000,
		OutputDir:             "output",
		LogDir:                ".",
		RunInterval:           24 * time.Hour,
		EnableDetailedLogging: false,
	}
)

// GetConfig returns the default configuration with environment overrides
// applied
func GetConfig() ETLConfig {
	config := DefaultETLConfig
	config.Widths = append([]int(nil), DefaultWidths...)
	config.Workers = runtime.NumCPU()
	return FromEnv(config)
}

// FromEnv overrides base with the ETL_* environment variables that are set
func FromEnv(base ETLConfig) ETLConfig {
	if v := os.Getenv("ETL_DB_DRIVER"); v != "" {
		base.Database.Driver = v
	}
	if v := os.Getenv("ETL_DB_DSN"); v != "" {
		base.Database.DSN = v
	}
	if v := os.Getenv("ETL_SCHEMA_PATH"); v != "" {
		base.SchemaPath = v
	}
	if v := os.Getenv("ETL_OUTPUT_DIR"); v != "" {
		base.OutputDir = v
	}
	if v := os.Getenv("ETL_LOG_DIR"); v != "" {
		base.LogDir = v
	}
	return base
}

// Validate reports the first invalid setting
func (c ETLConfig) Validate() error {
	if len(c.Widths) != models.RawFieldCount {
		return fmt.Errorf("widths: expected %d columns, got %d", models.RawFieldCount, len(c.Widths))
	}
	for i, w := range c.Widths {
		if w <= 0 {
			return fmt.Errorf("widths: column %d has non-positive width %d", i, w)
		}
	}
	if c.ChunkSize <= 0 {
		return fmt.Errorf("chunk size must be positive, got %d", c.ChunkSize)
	}
	if c.Workers <= 0 {
		return fmt.Errorf("workers must be positive, got %d", c.Workers)
	}
	if c.ChunkTimeout <= 0 {
		return fmt.Errorf("chunk timeout must be positive, got %v", c.ChunkTimeout)
	}
	if c.BatchSize <= 0 {
		return fmt.Errorf("batch size must be positive, got %d", c.BatchSize)
	}
	if _, err := LookupEncoding(c.InputEncoding); err != nil {
		return err
	}
	if !c.SkipDatabase {
		if _, err := DialectFor(c.Database.Driver); err != nil {
			return err
		}
		if strings.TrimSpace(c.SchemaPath) == "" {
			return fmt.Errorf("schema path is required")
		}
	}
	return nil
}

// RecordWidth returns the total width of a well-formed line
func (c ETLConfig) RecordWidth() int {
	total := 0
	for _, w := range c.Widths {
		total += w
	}
	return total
}
