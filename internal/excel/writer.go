package excel

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/Veraticus/notecheck/internal/common"
	"github.com/Veraticus/notecheck/internal/layout"
	"github.com/Veraticus/notecheck/internal/model"
	"github.com/xuri/excelize/v2"
)

// shortDateFormat is Excel's built-in locale short date.
const shortDateFormat = 14

// Writer renders a matrix into an .xlsx file.
type Writer struct {
	logger *slog.Logger
	config Config
}

// NewWriter creates a new workbook writer.
func NewWriter(config Config, logger *slog.Logger) (*Writer, error) {
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &Writer{
		config: config,
		logger: logger,
	}, nil
}

// Path returns where the workbook is written.
func (w *Writer) Path() string {
	return w.config.Path
}

// Render writes the matrix to the configured path.
func (w *Writer) Render(ctx context.Context, m model.Matrix) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	f, err := w.Workbook(m)
	if err != nil {
		return err
	}
	defer func() {
		_ = f.Close()
	}()

	if dir := filepath.Dir(w.config.Path); dir != "." {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return fmt.Errorf("%w: %v", common.ErrWriteFailed, err)
		}
	}

	if err := f.SaveAs(w.config.Path); err != nil {
		return common.NewUserError(
			fmt.Sprintf("Could not save %s. Is it open in Excel?", w.config.Path),
			fmt.Errorf("%w: %v", common.ErrWriteFailed, err))
	}

	w.logger.Info("Excel file has been written",
		"path", w.config.Path,
		"clients", len(m.Rows))

	return nil
}

// Workbook builds the in-memory workbook for the matrix. Callers must Close it.
func (w *Writer) Workbook(m model.Matrix) (*excelize.File, error) {
	f := excelize.NewFile()

	sheet := w.config.SheetName
	if err := f.SetSheetName(f.GetSheetName(0), sheet); err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("failed to name sheet: %w", err)
	}

	styles, err := newStyleSet(f)
	if err != nil {
		_ = f.Close()
		return nil, err
	}

	if err := w.writeHeader(f, sheet, m.Catalogue, styles); err != nil {
		_ = f.Close()
		return nil, err
	}

	for i, row := range m.Rows {
		if err := w.writeRow(f, sheet, i+2, m.Catalogue, row, styles); err != nil {
			_ = f.Close()
			return nil, err
		}
	}

	if err := w.applyLayout(f, sheet, m.Catalogue); err != nil {
		_ = f.Close()
		return nil, err
	}

	return f, nil
}

func (w *Writer) writeHeader(f *excelize.File, sheet string, catalogue model.Catalogue, styles styleSet) error {
	headers := layout.Headers(catalogue)
	for col, title := range headers {
		cell, err := excelize.CoordinatesToCellName(col+1, 1)
		if err != nil {
			return err
		}
		if err := f.SetCellValue(sheet, cell, title); err != nil {
			return fmt.Errorf("failed to write header %q: %w", title, err)
		}

		style := styles.header
		if col == layout.ClientNameColumn {
			style = styles.clientHeader
		}
		if err := f.SetCellStyle(sheet, cell, cell, style); err != nil {
			return fmt.Errorf("failed to style header %q: %w", title, err)
		}
	}
	return nil
}

func (w *Writer) writeRow(f *excelize.File, sheet string, rowNum int, catalogue model.Catalogue, row model.ClientReportRow, styles styleSet) error {
	values := make([]any, 0, len(catalogue)+3)
	var started any = row.EarliestDate
	if row.EarliestDate.IsZero() {
		started = ""
	}
	values = append(values, row.ClientName, started)
	for i := range catalogue {
		values = append(values, row.Status(i).String())
	}
	values = append(values, row.AuthorList())

	start, err := excelize.CoordinatesToCellName(1, rowNum)
	if err != nil {
		return err
	}
	if err := f.SetSheetRow(sheet, start, &values); err != nil {
		return fmt.Errorf("failed to write row for %q: %w", row.ClientName, err)
	}

	dateCell, err := excelize.CoordinatesToCellName(layout.StartDateColumn+1, rowNum)
	if err != nil {
		return err
	}
	if err := f.SetCellStyle(sheet, dateCell, dateCell, styles.date); err != nil {
		return fmt.Errorf("failed to style date for %q: %w", row.ClientName, err)
	}

	for i := range catalogue {
		style, ok := styles.status[row.Status(i)]
		if !ok {
			continue
		}
		cell, err := excelize.CoordinatesToCellName(layout.FirstStatusColumn+i+1, rowNum)
		if err != nil {
			return err
		}
		if err := f.SetCellStyle(sheet, cell, cell, style); err != nil {
			return fmt.Errorf("failed to style status for %q: %w", row.ClientName, err)
		}
	}

	return nil
}

func (w *Writer) applyLayout(f *excelize.File, sheet string, catalogue model.Catalogue) error {
	widths := []struct {
		first, last int
		width       float64
	}{
		{layout.ClientNameColumn + 1, layout.ClientNameColumn + 1, w.config.ClientColumnWidth},
		{layout.StartDateColumn + 1, layout.AuthorsColumn(catalogue), w.config.StatusColumnWidth},
		{layout.AuthorsColumn(catalogue) + 1, layout.AuthorsColumn(catalogue) + 1, w.config.AuthorColumnWidth},
	}

	for _, cw := range widths {
		if cw.width <= 0 || cw.last < cw.first {
			continue
		}
		first, err := excelize.ColumnNumberToName(cw.first)
		if err != nil {
			return err
		}
		last, err := excelize.ColumnNumberToName(cw.last)
		if err != nil {
			return err
		}
		if err := f.SetColWidth(sheet, first, last, cw.width); err != nil {
			return fmt.Errorf("failed to set column width: %w", err)
		}
	}

	if w.config.FreezeHeader {
		if err := f.SetPanes(sheet, &excelize.Panes{
			Freeze:      true,
			YSplit:      1,
			TopLeftCell: "A2",
			ActivePane:  "bottomLeft",
		}); err != nil {
			return fmt.Errorf("failed to freeze header row: %w", err)
		}
	}

	return nil
}
