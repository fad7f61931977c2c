package load

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/LilVoxy/customers_etl/ETL/models"
)

func readSheet(t *testing.T, path string) ([]string, [][]string) {
	t.Helper()
	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()

	sheets := f.GetSheetList()
	require.Len(t, sheets, 1)
	rows, err := f.GetRows(sheets[0])
	require.NoError(t, err)
	return sheets, rows
}

func TestExcelExporter(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "output")
	exporter := NewExcelExporter(dir)

	for _, table := range sampleData().Tables() {
		t.Run(table.Name, func(t *testing.T) {
			path, err := exporter.Export(table)
			require.NoError(t, err)
			assert.Equal(t, filepath.Join(dir, table.Name+".xlsx"), path)

			sheets, rows := readSheet(t, path)
			assert.Equal(t, []string{table.Name}, sheets)
			require.Len(t, rows, table.Len()+1)
			assert.Equal(t, table.Columns, rows[0])
			for i, row := range table.Rows {
				assert.Equal(t, row[0], rows[i+1][0])
			}
		})
	}
}

func TestExcelExporterValues(t *testing.T) {
	exporter := NewExcelExporter(t.TempDir())

	path, err := exporter.Export(models.EmailsTable([]models.Email{
		{FiscalID: "00000001", Email: "maria@example.com", Status: models.StatusValid, Priority: 3},
	}))
	require.NoError(t, err)

	_, rows := readSheet(t, path)
	require.Len(t, rows, 2)
	assert.Equal(t, []string{"00000001", "maria@example.com", models.StatusValid, "3"}, rows[1])
}

func TestExcelExporterEmptyTable(t *testing.T) {
	exporter := NewExcelExporter(t.TempDir())

	path, err := exporter.Export(models.PhonesTable(nil))
	require.NoError(t, err)

	sheets, rows := readSheet(t, path)
	assert.Equal(t, []string{models.TablePhones}, sheets)
	require.Len(t, rows, 1)
	assert.Equal(t, models.PhoneColumns, rows[0])
}
