package artifacts

import (
	"fmt"
	"strconv"

	"github.com/xuri/excelize/v2"

	"analytics-exporter/internal/core/domain"
)

const workbookSheet = "Analytics"

// GenerateWorkbook renders the sample table as an xlsx workbook. Numeric
// cells are written as numbers so spreadsheet formulas work on them.
func GenerateWorkbook(metrics []domain.MetricKey) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", workbookSheet); err != nil {
		return nil, fmt.Errorf("failed to rename sheet: %w", err)
	}

	for i, record := range tableRows(metrics) {
		cells := make([]interface{}, len(record))
		for j, value := range record {
			cells[j] = cellValue(i, j, value)
		}

		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve cell for row %d: %w", i, err)
		}
		if err := f.SetSheetRow(workbookSheet, cell, &cells); err != nil {
			return nil, fmt.Errorf("failed to write row %d: %w", i, err)
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to encode workbook: %w", err)
	}
	return buf.Bytes(), nil
}

func cellValue(row, col int, value string) interface{} {
	if row == 0 || col == 0 {
		return value
	}
	if n, err := strconv.ParseFloat(value, 64); err == nil {
		return n
	}
	return value
}
