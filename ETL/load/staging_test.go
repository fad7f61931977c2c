package load

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/LilVoxy/customers_etl/ETL/models"
)

func TestStagingRoundTrip(t *testing.T) {
	balance := 99.9
	records := []models.TransformedRecord{
		{
			FiscalID: "00000001", FirstName: "MARIA", BirthDate: time.Date(1990, 6, 15, 0, 0, 0, 0, time.UTC),
			Age: 34, AgeGroup: 3, DueDate: time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC), Delinquency: 14,
			DueBalance: &balance, Email: "maria@example.com", Status: models.StatusValid, Phone: "912345678",
			Priority: 1, BestContactOccupation: true,
		},
		{FiscalID: "00000002", BirthDate: time.Date(1960, 1, 1, 0, 0, 0, 0, time.UTC), DueDate: time.Date(2024, 7, 1, 0, 0, 0, 0, time.UTC)},
	}

	path := filepath.Join(t.TempDir(), "staging.jsonl.sz")
	require.NoError(t, WriteStaging(path, records))

	got, err := ReadStaging(path)
	require.NoError(t, err)
	assert.Equal(t, records, got)
}

func TestStagingEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.sz")
	require.NoError(t, WriteStaging(path, nil))

	got, err := ReadStaging(path)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestReadStagingCorrupt(t *testing.T) {
	path := filepath.Join(t.TempDir(), "corrupt.sz")
	require.NoError(t, os.WriteFile(path, []byte("not snappy at all"), 0644))

	_, err := ReadStaging(path)
	assert.Error(t, err)
}
