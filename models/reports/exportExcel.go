package reports

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"
)

type ExcelExporter interface {
	GetCellValues() []interface{}
}

// WriteExcel streams rows as an xlsx workbook: one heading row, then one row
// per record. Decimal cells are written as their string form so spreadsheet
// apps keep the exact value.
func WriteExcel(w io.Writer, rows []ExcelExporter, headings ...string) error {
	f := excelize.NewFile()
	defer f.Close()

	sheetName := "Sheet1"
	if _, err := f.NewSheet(sheetName); err != nil {
		return err
	}

	col := 'A'
	for _, h := range headings {
		if err := f.SetCellValue(sheetName, string(col)+"1", h); err != nil {
			return err
		}
		col++
	}

	rowNo := 2
	for _, row := range rows {
		col := 'A'
		for _, value := range row.GetCellValues() {
			cell := string(col) + fmt.Sprint(rowNo)
			if s, ok := value.(fmt.Stringer); ok {
				value = s.String()
			}
			if err := f.SetCellValue(sheetName, cell, value); err != nil {
				return err
			}
			col++
		}
		rowNo++
	}

	return f.Write(w)
}
