package storage

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"airbnb-etl/models"
	"airbnb-etl/utils"
)

// maxSheetRows is the hard Excel ceiling per sheet, header included. Tables
// larger than that are split across numbered sheets.
const maxSheetRows = 1_048_576

type sheetRef struct {
	name string
	rows int
}

// XLSXWriter exports the cleaned intermediate tables to one workbook.
type XLSXWriter struct {
	path   string
	logger *utils.Logger

	usedNames map[string]struct{}
	registry  map[string][]sheetRef
	expected  map[string]int
	order     []string
}

// NewXLSXWriter creates a writer targeting the given workbook path.
func NewXLSXWriter(path string, logger *utils.Logger) *XLSXWriter {
	return &XLSXWriter{
		path:      path,
		logger:    logger,
		usedNames: make(map[string]struct{}),
		registry:  make(map[string][]sheetRef),
		expected:  make(map[string]int),
	}
}

// Write saves every table to the workbook. An empty table still produces a
// header-only "<name>_sin_datos" sheet so its absence of data is visible.
func (w *XLSXWriter) Write(tables []NamedTable) error {
	if err := os.MkdirAll(filepath.Dir(w.path), 0755); err != nil {
		return fmt.Errorf("xlsx: create output dir: %w", err)
	}

	f := excelize.NewFile()
	defer f.Close()

	for _, nt := range tables {
		w.expected[nt.Name] = nt.Table.Len()
		w.order = append(w.order, nt.Name)
		if err := w.writeTable(f, nt); err != nil {
			return err
		}
	}

	// Drop the implicit default sheet and activate the first real one.
	f.DeleteSheet("Sheet1")
	if len(tables) > 0 && len(w.registry[tables[0].Name]) > 0 {
		if idx, err := f.GetSheetIndex(w.registry[tables[0].Name][0].name); err == nil {
			f.SetActiveSheet(idx)
		}
	}

	if err := f.SaveAs(w.path); err != nil {
		return fmt.Errorf("xlsx: save %q: %w", w.path, err)
	}

	total := 0
	for _, refs := range w.registry {
		total += len(refs)
	}
	w.logger.Info("[xlsx] %d sheets saved to %s", total, w.path)
	return nil
}

func (w *XLSXWriter) writeTable(f *excelize.File, nt NamedTable) error {
	t := nt.Table
	if t.Len() == 0 {
		sheet := w.uniqueSheetName(nt.Name + "_sin_datos")
		if err := w.writeSheet(f, sheet, t, 0, 0); err != nil {
			return err
		}
		w.registry[nt.Name] = append(w.registry[nt.Name], sheetRef{sheet, 0})
		return nil
	}

	perSheet := maxSheetRows - 1 // one row reserved for the header
	segments := (t.Len() + perSheet - 1) / perSheet
	if segments > 1 {
		w.logger.Warn("[xlsx] %q exceeds %d rows; splitting into %d sheets",
			nt.Name, perSheet, segments)
	}

	for seg := 0; seg < segments; seg++ {
		base := nt.Name
		if segments > 1 {
			base = fmt.Sprintf("%s_%d", nt.Name, seg+1)
		}
		sheet := w.uniqueSheetName(base)

		start := seg * perSheet
		end := start + perSheet
		if end > t.Len() {
			end = t.Len()
		}
		if err := w.writeSheet(f, sheet, t, start, end); err != nil {
			return err
		}
		w.registry[nt.Name] = append(w.registry[nt.Name], sheetRef{sheet, end - start})
	}
	return nil
}

func (w *XLSXWriter) writeSheet(f *excelize.File, sheet string, t *models.Table, start, end int) error {
	if _, err := f.NewSheet(sheet); err != nil {
		return fmt.Errorf("xlsx: create sheet %q: %w", sheet, err)
	}

	cols := t.Columns()
	header := make([]any, len(cols))
	for i, c := range cols {
		header[i] = c
	}
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return fmt.Errorf("xlsx: write header: %w", err)
	}

	for i := start; i < end; i++ {
		r := t.Row(i)
		row := make([]any, len(cols))
		for j, c := range cols {
			row[j] = cellValue(r[c])
		}
		cell, err := excelize.CoordinatesToCellName(1, i-start+2)
		if err != nil {
			return fmt.Errorf("xlsx: cell name: %w", err)
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return fmt.Errorf("xlsx: write row: %w", err)
		}
	}
	return nil
}

// Verify reopens the workbook and compares per-sheet row counts with what
// was written. Mismatches are logged as warnings.
func (w *XLSXWriter) Verify() error {
	f, err := excelize.OpenFile(w.path)
	if err != nil {
		return fmt.Errorf("xlsx: open for verify: %w", err)
	}
	defer f.Close()

	for _, name := range w.order {
		total := 0
		ok := true
		for _, ref := range w.registry[name] {
			rows, err := f.GetRows(ref.name)
			if err != nil {
				w.logger.Warn("[xlsx] sheet %q missing for %q", ref.name, name)
				ok = false
				break
			}
			got := len(rows) - 1 // header
			if got < 0 {
				got = 0
			}
			if got != ref.rows {
				w.logger.Warn("[xlsx] mismatch in %q (expected %d, found %d)", ref.name, ref.rows, got)
				ok = false
				break
			}
			total += got
		}
		if ok {
			if total == w.expected[name] {
				w.logger.Info("[xlsx] %q ok (%d rows in %d sheets)", name, total, len(w.registry[name]))
			} else {
				w.logger.Warn("[xlsx] mismatch in %q (expected total %d, found %d)", name, w.expected[name], total)
			}
		}
	}
	return nil
}

// uniqueSheetName produces a valid (≤31 chars), not yet used sheet name.
func (w *XLSXWriter) uniqueSheetName(name string) string {
	var b strings.Builder
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == ' ', r == '_':
			b.WriteRune(r)
		default:
			b.WriteRune('_')
		}
	}
	sanitized := strings.TrimSpace(b.String())
	if sanitized == "" {
		sanitized = "Sheet"
	}
	if len(sanitized) > 31 {
		sanitized = sanitized[:31]
	}

	candidate := sanitized
	for counter := 1; ; counter++ {
		if _, taken := w.usedNames[candidate]; !taken {
			break
		}
		suffix := fmt.Sprintf("_%d", counter)
		candidate = sanitized
		if len(candidate)+len(suffix) > 31 {
			candidate = candidate[:31-len(suffix)]
		}
		candidate += suffix
	}
	w.usedNames[candidate] = struct{}{}
	return candidate
}

func cellValue(v any) any {
	switch val := v.(type) {
	case time.Time:
		return val.Format("2006-01-02 15:04:05")
	default:
		return v
	}
}
