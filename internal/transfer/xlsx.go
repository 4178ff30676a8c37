package transfer

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"github.com/bkarpinos/linkvault/internal/errx"
)

const defaultSheet = "Sheet1"

// WriteXLSX encodes the workbook as an .xlsx file.
func WriteXLSX(w io.Writer, wb Workbook) error {
	const op = "transfer.WriteXLSX"
	if len(wb.Sheets) == 0 {
		return errx.Errorf(op, errx.Invalid, "workbook has no sheets")
	}

	f := excelize.NewFile()
	defer f.Close()

	for _, sheet := range wb.Sheets {
		if _, err := f.NewSheet(sheet.Name); err != nil {
			return errx.E(op, errx.Invalid, fmt.Errorf("sheet %q: %w", sheet.Name, err))
		}
		for i, row := range sheet.Rows {
			cell, err := excelize.CoordinatesToCellName(1, i+1)
			if err != nil {
				return errx.E(op, errx.Internal, err)
			}
			values := make([]interface{}, len(row))
			for j, v := range row {
				values[j] = v
			}
			if err := f.SetSheetRow(sheet.Name, cell, &values); err != nil {
				return errx.E(op, errx.Internal, fmt.Errorf("sheet %q row %d: %w", sheet.Name, i+1, err))
			}
		}
		for i, width := range sheet.Widths {
			col, err := excelize.ColumnNumberToName(i + 1)
			if err != nil {
				return errx.E(op, errx.Internal, err)
			}
			if err := f.SetColWidth(sheet.Name, col, col, width); err != nil {
				return errx.E(op, errx.Internal, err)
			}
		}
	}

	if !hasSheet(wb, defaultSheet) {
		if err := f.DeleteSheet(defaultSheet); err != nil {
			return errx.E(op, errx.Internal, err)
		}
	}
	f.SetActiveSheet(0)

	if err := f.Write(w); err != nil {
		return errx.E(op, errx.Unavailable, err)
	}
	return nil
}

// ReadXLSX decodes every sheet of an .xlsx file, in workbook order.
func ReadXLSX(r io.Reader) (Workbook, error) {
	const op = "transfer.ReadXLSX"

	f, err := excelize.OpenReader(r)
	if err != nil {
		return Workbook{}, errx.E(op, errx.Invalid, fmt.Errorf("not a spreadsheet: %w", err))
	}
	defer f.Close()

	var wb Workbook
	for _, name := range f.GetSheetList() {
		rows, err := f.GetRows(name)
		if err != nil {
			return Workbook{}, errx.E(op, errx.Invalid, fmt.Errorf("sheet %q: %w", name, err))
		}
		wb.Sheets = append(wb.Sheets, Sheet{Name: name, Rows: rows})
	}
	return wb, nil
}

func hasSheet(wb Workbook, name string) bool {
	for _, s := range wb.Sheets {
		if s.Name == name {
			return true
		}
	}
	return false
}
