package load

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/LilVoxy/customers_etl/ETL/models"
)

const defaultSheet = "Sheet1"

// Exporter writes an entity table to a file and returns its path
type Exporter interface {
	Export(table models.Table) (string, error)
}

// ExcelExporter writes one <name>.xlsx workbook per table, with a single
// sheet named after the table and a header row in column order
type ExcelExporter struct {
	dir string
}

// NewExcelExporter creates an exporter writing into dir
func NewExcelExporter(dir string) *ExcelExporter {
	return &ExcelExporter{dir: dir}
}

// Export writes table to <dir>/<table.Name>.xlsx
func (e *ExcelExporter) Export(table models.Table) (string, error) {
	if err := os.MkdirAll(e.dir, 0755); err != nil {
		return "", fmt.Errorf("create output dir %s: %w", e.dir, err)
	}

	x := excelize.NewFile()
	defer x.Close()

	idx, err := x.NewSheet(table.Name)
	if err != nil {
		return "", fmt.Errorf("create sheet %s: %w", table.Name, err)
	}
	x.SetActiveSheet(idx)
	if err := x.DeleteSheet(defaultSheet); err != nil {
		return "", fmt.Errorf("delete default sheet: %w", err)
	}

	dateFmt := "yyyy-mm-dd"
	dateStyle, err := x.NewStyle(&excelize.Style{CustomNumFmt: &dateFmt})
	if err != nil {
		return "", fmt.Errorf("create date style: %w", err)
	}

	sw, err := x.NewStreamWriter(table.Name)
	if err != nil {
		return "", fmt.Errorf("open stream writer: %w", err)
	}

	header := make([]any, len(table.Columns))
	for i, c := range table.Columns {
		header[i] = c
	}
	if err := sw.SetRow("A1", header); err != nil {
		return "", fmt.Errorf("write header: %w", err)
	}

	for r, row := range table.Rows {
		cell, err := excelize.CoordinatesToCellName(1, r+2)
		if err != nil {
			return "", err
		}
		values := make([]any, len(row))
		for c, v := range row {
			if t, ok := v.(time.Time); ok {
				values[c] = excelize.Cell{StyleID: dateStyle, Value: t}
				continue
			}
			values[c] = v
		}
		if err := sw.SetRow(cell, values); err != nil {
			return "", fmt.Errorf("write row %d: %w", r+1, err)
		}
	}
	if err := sw.Flush(); err != nil {
		return "", fmt.Errorf("flush sheet %s: %w", table.Name, err)
	}

	out := filepath.Join(e.dir, table.Name+".xlsx")
	if err := x.SaveAs(out); err != nil {
		return "", fmt.Errorf("save %s: %w", out, err)
	}
	return out, nil
}
