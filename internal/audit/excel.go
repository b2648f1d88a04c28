package audit

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"
)

// maxSheetName is the Excel limit on sheet name length, in characters.
const maxSheetName = 31

// Workbook writes rows sheet by sheet into an xlsx file.
type Workbook struct {
	file   *excelize.File
	sheet  string
	row    int
	header int
}

func NewWorkbook() *Workbook {
	return &Workbook{file: excelize.NewFile()}
}

// AddSheet starts a new sheet. The first call renames the default one.
func (w *Workbook) AddSheet(name string) error {
	if runes := []rune(name); len(runes) > maxSheetName {
		name = string(runes[:maxSheetName])
	}

	if w.sheet == "" {
		if err := w.file.SetSheetName("Sheet1", name); err != nil {
			return fmt.Errorf("rename sheet %s: %w", name, err)
		}
	} else if _, err := w.file.NewSheet(name); err != nil {
		return fmt.Errorf("create sheet %s: %w", name, err)
	}

	w.sheet = name
	w.row = 1
	return nil
}

// WriteHeader writes a bold header row and freezes it.
func (w *Workbook) WriteHeader(columns []string) error {
	cells := make([]interface{}, len(columns))
	for i, c := range columns {
		cells[i] = c
	}
	if err := w.WriteRow(cells); err != nil {
		return err
	}
	w.header = w.row - 1

	style, err := w.file.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("header style: %w", err)
	}
	first, _ := excelize.CoordinatesToCellName(1, w.header)
	last, _ := excelize.CoordinatesToCellName(len(columns), w.header)
	if err := w.file.SetCellStyle(w.sheet, first, last, style); err != nil {
		return fmt.Errorf("apply header style: %w", err)
	}
	return w.file.SetPanes(w.sheet, &excelize.Panes{Freeze: true, YSplit: w.header, TopLeftCell: "A2", ActivePane: "bottomLeft"})
}

// WriteRow appends one row to the current sheet.
func (w *Workbook) WriteRow(values []interface{}) error {
	if w.sheet == "" {
		return fmt.Errorf("no active sheet")
	}
	start, err := excelize.CoordinatesToCellName(1, w.row)
	if err != nil {
		return err
	}
	if err := w.file.SetSheetRow(w.sheet, start, &values); err != nil {
		return fmt.Errorf("write row %d of %s: %w", w.row, w.sheet, err)
	}
	w.row++
	return nil
}

// SetWidths sets the width of the first len(widths) columns.
func (w *Workbook) SetWidths(widths ...float64) error {
	for i, width := range widths {
		col, err := excelize.ColumnNumberToName(i + 1)
		if err != nil {
			return err
		}
		if err := w.file.SetColWidth(w.sheet, col, col, width); err != nil {
			return err
		}
	}
	return nil
}

func (w *Workbook) Save(wr io.Writer) error {
	return w.file.Write(wr)
}

func (w *Workbook) SaveToFile(path string) error {
	return w.file.SaveAs(path)
}

func (w *Workbook) Close() error {
	return w.file.Close()
}
