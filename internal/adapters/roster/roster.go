// Package roster exports the classified member tables as CSV files and an
// Excel workbook.
package roster

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/okian/labsite/internal/domain/status"
	"github.com/okian/labsite/pkg/logger"
	"github.com/xuri/excelize/v2"
)

// File names inside the roster directory.
const (
	CurrentFile  = "current.csv"
	AlumniFile   = "alumni.csv"
	WorkbookFile = "roster.xlsx"

	CurrentSheet = "Current"
	AlumniSheet  = "Alumni"
)

var (
	currentHeader = []string{"order", "id", "name", "role", "project"} //nolint:gochecknoglobals // read-only
	alumniHeader  = []string{"id", "name", "role"}                     //nolint:gochecknoglobals // read-only
)

// Exporter writes roster files.
type Exporter struct {
	dir      string
	workbook bool
	log      logger.Logger
}

// New creates an Exporter writing to ./roster unless WithDir says otherwise.
func New(opts ...Option) *Exporter {
	e := &Exporter{dir: "roster", workbook: true, log: logger.Nop()}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Dir returns the output directory.
func (e *Exporter) Dir() string { return e.dir }

// Export writes the current and alumni tables. It returns the paths written.
func (e *Exporter) Export(ctx context.Context, res status.Result) ([]string, error) {
	current, alumni := Rows(res)
	if err := os.MkdirAll(e.dir, 0o755); err != nil {
		return nil, fmt.Errorf("%w: create %s: %w", ErrExport, e.dir, err)
	}

	var written []string
	for _, t := range []struct {
		name   string
		header []string
		rows   [][]string
	}{
		{CurrentFile, currentHeader, current},
		{AlumniFile, alumniHeader, alumni},
	} {
		path := filepath.Join(e.dir, t.name)
		if err := writeCSV(path, t.header, t.rows); err != nil {
			return written, err
		}
		written = append(written, path)
	}

	if e.workbook {
		path := filepath.Join(e.dir, WorkbookFile)
		if err := writeWorkbook(path, current, alumni); err != nil {
			return written, err
		}
		written = append(written, path)
	}

	e.log.Info(ctx, "roster exported",
		logger.String("dir", e.dir),
		logger.Int("current", len(current)),
		logger.Int("alumni", len(alumni)))
	return written, nil
}

// Rows flattens a classification result into table rows, without headers.
func Rows(res status.Result) (current, alumni [][]string) {
	current = make([][]string, 0, len(res.Current))
	for i, m := range res.Current {
		current = append(current, []string{strconv.Itoa(i + 1), string(m.ID), m.Info.FullName(), m.Role, m.ProjectTitle})
	}
	alumni = make([][]string, 0, len(res.Alumni))
	for _, m := range res.Alumni {
		alumni = append(alumni, []string{string(m.ID), m.FullName, m.Role})
	}
	return current, alumni
}

func writeCSV(path string, header []string, rows [][]string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("%w: create %s: %w", ErrExport, path, err)
	}
	w := csv.NewWriter(f)
	_ = w.Write(header)
	_ = w.WriteAll(rows)
	if err := w.Error(); err != nil {
		_ = f.Close()
		return fmt.Errorf("%w: write %s: %w", ErrExport, path, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("%w: close %s: %w", ErrExport, path, err)
	}
	return nil
}

func writeWorkbook(path string, current, alumni [][]string) error {
	f := excelize.NewFile()
	defer f.Close()

	header, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#D9E1F2"}, Pattern: 1},
	})
	if err != nil {
		return fmt.Errorf("%w: workbook style: %w", ErrExport, err)
	}

	if err := f.SetSheetName("Sheet1", CurrentSheet); err != nil {
		return fmt.Errorf("%w: workbook: %w", ErrExport, err)
	}
	if _, err := f.NewSheet(AlumniSheet); err != nil {
		return fmt.Errorf("%w: workbook: %w", ErrExport, err)
	}

	for _, s := range []struct {
		name   string
		header []string
		rows   [][]string
	}{
		{CurrentSheet, currentHeader, current},
		{AlumniSheet, alumniHeader, alumni},
	} {
		if err := fillSheet(f, s.name, s.header, s.rows, header); err != nil {
			return fmt.Errorf("%w: sheet %s: %w", ErrExport, s.name, err)
		}
	}
	f.SetActiveSheet(0)

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("%w: save %s: %w", ErrExport, path, err)
	}
	return nil
}

func fillSheet(f *excelize.File, sheet string, header []string, rows [][]string, style int) error {
	if err := setRow(f, sheet, 1, header); err != nil {
		return err
	}
	last, err := excelize.CoordinatesToCellName(len(header), 1)
	if err != nil {
		return err
	}
	if err := f.SetCellStyle(sheet, "A1", last, style); err != nil {
		return err
	}
	for i, row := range rows {
		if err := setRow(f, sheet, i+2, row); err != nil {
			return err
		}
	}
	lastCol, err := excelize.ColumnNumberToName(len(header))
	if err != nil {
		return err
	}
	return f.SetColWidth(sheet, "A", lastCol, 24)
}

func setRow(f *excelize.File, sheet string, row int, values []string) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return err
	}
	vals := make([]any, len(values))
	for i, v := range values {
		vals[i] = v
	}
	return f.SetSheetRow(sheet, cell, &vals)
}
