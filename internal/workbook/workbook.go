// Package workbook reads a roster sheet from an .xlsx file and writes the
// classified views back as a multi-sheet workbook.
package workbook

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/xuri/excelize/v2"

	"github.com/mediapoint/roster/internal/roster"
)

var (
	ErrUnreadable = errors.New("workbook is not a readable .xlsx file")
	ErrNoSheets   = errors.New("workbook has no sheets")
	ErrNoViews    = errors.New("no views to write")
)

// Read loads the first sheet of the workbook in r. Cells are read raw, so
// date cells arrive as serial numbers. Fully blank rows are skipped.
func Read(r io.Reader) (roster.Table, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return roster.Table{}, fmt.Errorf("%w: %v", ErrUnreadable, err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return roster.Table{}, ErrNoSheets
	}
	rows, err := f.GetRows(sheets[0], excelize.Options{RawCellValue: true})
	if err != nil {
		return roster.Table{}, fmt.Errorf("read sheet %q: %w", sheets[0], err)
	}
	if len(rows) == 0 {
		return roster.Table{}, nil
	}

	t := roster.Table{Header: rows[0]}
	for _, row := range rows[1:] {
		if blank(row) {
			continue
		}
		t.Rows = append(t.Rows, row)
	}
	return t, nil
}

func blank(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}

// Write renders each view as a sheet, in order, and writes the workbook to
// w. Every column is sized to its longest value plus one.
func Write(w io.Writer, views []roster.View) error {
	if len(views) == 0 {
		return ErrNoViews
	}

	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), views[0].Name); err != nil {
		return fmt.Errorf("rename first sheet: %w", err)
	}
	for i, v := range views {
		if i > 0 {
			if _, err := f.NewSheet(v.Name); err != nil {
				return fmt.Errorf("create sheet %q: %w", v.Name, err)
			}
		}
		if err := writeView(f, v); err != nil {
			return fmt.Errorf("write sheet %q: %w", v.Name, err)
		}
	}
	f.SetActiveSheet(0)

	if err := f.Write(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}

func writeView(f *excelize.File, v roster.View) error {
	header := make([]any, len(v.Columns))
	for i, c := range v.Columns {
		header[i] = c
	}
	if err := f.SetSheetRow(v.Name, "A1", &header); err != nil {
		return err
	}
	for i, row := range v.Rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(v.Name, cell, &row); err != nil {
			return err
		}
	}

	for col, width := range columnWidths(v) {
		name, err := excelize.ColumnNumberToName(col + 1)
		if err != nil {
			return err
		}
		if err := f.SetColWidth(v.Name, name, name, width); err != nil {
			return err
		}
	}
	return nil
}

// columnWidths returns, per column, the length of the longest rendered value
// (header included) plus one, capped at the workbook maximum.
func columnWidths(v roster.View) []float64 {
	widths := make([]float64, len(v.Columns))
	for i, c := range v.Columns {
		widths[i] = float64(utf8.RuneCountInString(c))
	}
	for _, row := range v.Rows {
		for i, cell := range row {
			if i >= len(widths) {
				break
			}
			if n := float64(utf8.RuneCountInString(fmt.Sprint(cell))); n > widths[i] {
				widths[i] = n
			}
		}
	}
	for i := range widths {
		widths[i]++
		if widths[i] > float64(excelize.MaxColumnWidth) {
			widths[i] = float64(excelize.MaxColumnWidth)
		}
	}
	return widths
}
