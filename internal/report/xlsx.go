package report

import (
	"bytes"
	"fmt"

	"github.com/xuri/excelize/v2"
)

const sheetName = "Payouts"

var xlsxHeader = []any{"Employee ID", "Employee", "Completed", "Revenue", "Per record", "Fixed", "Percent", "Total"}

func RenderXLSX(doc Document) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", sheetName); err != nil {
		return nil, err
	}

	if err := f.SetSheetRow(sheetName, "A1", &xlsxHeader); err != nil {
		return nil, err
	}

	for i, r := range doc.Rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return nil, err
		}
		revenue, _ := r.Revenue.Float64()
		row := []any{r.EmployeeID, r.Name, r.Completed, revenue, r.PerRecordRate, r.FixedRate, r.PercentRate, r.Total}
		if err := f.SetSheetRow(sheetName, cell, &row); err != nil {
			return nil, err
		}
	}

	completed, revenue := doc.Totals()
	rev, _ := revenue.Float64()
	totalCell, err := excelize.CoordinatesToCellName(1, len(doc.Rows)+2)
	if err != nil {
		return nil, err
	}
	totals := []any{"", "Total", completed, rev, nil, nil, nil, doc.Total}
	if err := f.SetSheetRow(sheetName, totalCell, &totals); err != nil {
		return nil, err
	}

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err == nil {
		_ = f.SetRowStyle(sheetName, 1, 1, bold)
		_ = f.SetRowStyle(sheetName, len(doc.Rows)+2, len(doc.Rows)+2, bold)
	}
	_ = f.SetColWidth(sheetName, "B", "B", 32)

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, fmt.Errorf("render xlsx: %w", err)
	}
	return buf.Bytes(), nil
}
