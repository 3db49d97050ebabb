package dataprocessing

import (
	"bytes"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/extrame/xls"
	"github.com/xuri/excelize/v2"

	apperrors "salespulse/internal/errors"
)

// legacyWorkbookExt is the BIFF8 format written by Excel 97-2003.
const legacyWorkbookExt = ".xls"

var supportedWorkbookExt = map[string]bool{
	".xlsx":           true,
	".xlsm":           true,
	".xltx":           true,
	".xltm":           true,
	legacyWorkbookExt: true,
}

// CheckWorkbookFormat rejects file names no workbook reader can open.
func CheckWorkbookFormat(name string) error {
	ext := strings.ToLower(filepath.Ext(name))
	if supportedWorkbookExt[ext] {
		return nil
	}
	return apperrors.NewParsingError(
		fmt.Sprintf("unsupported workbook format %q", ext), nil,
	).WithContext("file", filepath.Base(name))
}

// sheetRows returns the cells of the first sheet, one slice per row.
// OOXML date cells keep their serial form.
func sheetRows(name string, r io.Reader) ([][]string, error) {
	if err := CheckWorkbookFormat(name); err != nil {
		return nil, err
	}
	if strings.EqualFold(filepath.Ext(name), legacyWorkbookExt) {
		return legacySheetRows(name, r)
	}

	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, apperrors.NewParsingError("failed to open workbook", err).WithContext("file", name)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, apperrors.NewParsingError("workbook has no sheets", nil).WithContext("file", name)
	}

	rows, err := f.GetRows(sheets[0], excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, apperrors.NewParsingError("failed to read sheet", err).
			WithContext("file", name).WithContext("sheet", sheets[0])
	}
	return rows, nil
}

func legacySheetRows(name string, r io.Reader) (rows [][]string, err error) {
	// The BIFF decoder panics on some truncated streams.
	defer func() {
		if p := recover(); p != nil {
			rows = nil
			err = apperrors.NewParsingError("corrupt workbook", fmt.Errorf("%v", p)).WithContext("file", name)
		}
	}()

	data, err := io.ReadAll(r)
	if err != nil {
		return nil, apperrors.NewParsingError("failed to read workbook", err).WithContext("file", name)
	}

	wb, err := xls.OpenReader(bytes.NewReader(data), "utf-8")
	if err != nil {
		return nil, apperrors.NewParsingError("failed to open workbook", err).WithContext("file", name)
	}
	if wb.NumSheets() == 0 {
		return nil, apperrors.NewParsingError("workbook has no sheets", nil).WithContext("file", name)
	}
	sheet := wb.GetSheet(0)
	if sheet == nil {
		return nil, apperrors.NewParsingError("failed to read sheet", nil).WithContext("file", name)
	}

	rows = make([][]string, 0, int(sheet.MaxRow)+1)
	for i := 0; i <= int(sheet.MaxRow); i++ {
		row := sheet.Row(i)
		if row == nil {
			rows = append(rows, nil)
			continue
		}
		cells := make([]string, row.LastCol())
		for c := row.FirstCol(); c < row.LastCol(); c++ {
			cells[c] = row.Col(c)
		}
		rows = append(rows, cells)
	}
	return trimTrailingBlankRows(rows), nil
}

// trimTrailingBlankRows drops the empty rows BIFF files often carry after
// the data.
func trimTrailingBlankRows(rows [][]string) [][]string {
	for len(rows) > 0 && blankRow(rows[len(rows)-1]) {
		rows = rows[:len(rows)-1]
	}
	return rows
}

// sheetColumns transposes rows. Short rows leave blank cells.
func sheetColumns(rows [][]string) [][]string {
	width := 0
	for _, row := range rows {
		if len(row) > width {
			width = len(row)
		}
	}

	cols := make([][]string, width)
	for c := range cols {
		cols[c] = make([]string, len(rows))
		for r, row := range rows {
			if c < len(row) {
				cols[c][r] = row[c]
			}
		}
	}
	return cols
}
