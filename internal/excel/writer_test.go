package excel

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/Veraticus/notecheck/internal/common"
	"github.com/Veraticus/notecheck/internal/layout"
	"github.com/Veraticus/notecheck/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func testMatrix() model.Matrix {
	catalogue := model.DefaultCatalogue()
	mcr := catalogue.Defaults(model.CaseTypeMCR)
	mcr[catalogue.Index(model.DocServiceRegistrationForm)] = model.StatusPresent
	cs := catalogue.Defaults(model.CaseTypeCS)

	return model.Matrix{
		Catalogue: catalogue,
		Rows: []model.ClientReportRow{
			{
				EarliestDate: time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC),
				ClientName:   "Doe, Jane (MCR)",
				CaseType:     model.CaseTypeMCR,
				Statuses:     mcr,
				Authors:      []string{"Smith", "Lee"},
			},
			{
				EarliestDate: time.Date(2024, 1, 5, 0, 0, 0, 0, time.UTC),
				ClientName:   "Roe, Rick (CS)",
				CaseType:     model.CaseTypeCS,
				Statuses:     cs,
			},
		},
	}
}

func newTestWriter(t *testing.T) *Writer {
	t.Helper()
	cfg := DefaultConfig()
	cfg.Path = filepath.Join(t.TempDir(), "out", "report.xlsx")
	w, err := NewWriter(cfg, nil)
	require.NoError(t, err)
	return w
}

func cell(t *testing.T, col, row int) string {
	t.Helper()
	name, err := excelize.CoordinatesToCellName(col+1, row)
	require.NoError(t, err)
	return name
}

func fillColor(t *testing.T, f *excelize.File, sheet, ref string) string {
	t.Helper()
	id, err := f.GetCellStyle(sheet, ref)
	require.NoError(t, err)
	style, err := f.GetStyle(id)
	require.NoError(t, err)
	if len(style.Fill.Color) == 0 {
		return ""
	}
	return strings.ToUpper(style.Fill.Color[0])
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr error
	}{
		{name: "defaults", mutate: func(*Config) {}},
		{name: "empty path", mutate: func(c *Config) { c.Path = " " }, wantErr: common.ErrMissingConfig},
		{name: "wrong extension", mutate: func(c *Config) { c.Path = "report.csv" }, wantErr: common.ErrInvalidConfig},
		{name: "upper extension", mutate: func(c *Config) { c.Path = "REPORT.XLSX" }},
		{name: "bad sheet name", mutate: func(c *Config) { c.SheetName = "a/b" }, wantErr: common.ErrInvalidConfig},
		{name: "long sheet name", mutate: func(c *Config) { c.SheetName = strings.Repeat("x", 32) }, wantErr: common.ErrInvalidConfig},
		{name: "negative width", mutate: func(c *Config) { c.AuthorColumnWidth = -1 }, wantErr: common.ErrInvalidConfig},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestWriter_Render(t *testing.T) {
	w := newTestWriter(t)
	m := testMatrix()

	require.NoError(t, w.Render(context.Background(), m))

	f, err := excelize.OpenFile(w.Path())
	require.NoError(t, err)
	defer func() { _ = f.Close() }()

	sheet := DefaultConfig().SheetName
	assert.Equal(t, []string{sheet}, f.GetSheetList())

	rows, err := f.GetRows(sheet)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, layout.Headers(m.Catalogue), rows[0])

	t.Run("fixed columns", func(t *testing.T) {
		assert.Equal(t, "Doe, Jane (MCR)", rows[1][layout.ClientNameColumn])
		assert.Equal(t, "Smith, Lee", rows[1][layout.AuthorsColumn(m.Catalogue)])
		assert.Equal(t, "Roe, Rick (CS)", rows[2][layout.ClientNameColumn])
	})

	t.Run("status text", func(t *testing.T) {
		idx := m.Catalogue.Index(model.DocServiceRegistrationForm)
		assert.Equal(t, "IN", rows[1][layout.FirstStatusColumn+idx])
		assert.Equal(t, "N/A", rows[2][layout.FirstStatusColumn+idx])

		isp := m.Catalogue.Index(model.DocISP)
		assert.Equal(t, "N/A", rows[1][layout.FirstStatusColumn+isp])
		assert.Equal(t, "NO", rows[2][layout.FirstStatusColumn+isp])
	})

	t.Run("date is a real date", func(t *testing.T) {
		raw, err := f.GetCellValue(sheet, cell(t, layout.StartDateColumn, 2), excelize.Options{RawCellValue: true})
		require.NoError(t, err)
		serial, err := strconv.ParseFloat(raw, 64)
		require.NoError(t, err)
		got, err := excelize.ExcelDateToTime(serial, false)
		require.NoError(t, err)
		assert.Equal(t, "2024-01-02", got.Format(model.DateLayout))

		id, err := f.GetCellStyle(sheet, cell(t, layout.StartDateColumn, 2))
		require.NoError(t, err)
		style, err := f.GetStyle(id)
		require.NoError(t, err)
		assert.Equal(t, shortDateFormat, style.NumFmt)
	})

	t.Run("fills", func(t *testing.T) {
		assert.True(t, strings.HasSuffix(fillColor(t, f, sheet, "A1"), layout.ClientNameHeaderFill))
		assert.True(t, strings.HasSuffix(fillColor(t, f, sheet, "B1"), layout.HeaderFill))

		idx := m.Catalogue.Index(model.DocServiceRegistrationForm)
		assert.True(t, strings.HasSuffix(fillColor(t, f, sheet, cell(t, layout.FirstStatusColumn+idx, 2)), layout.PresentFill))
		assert.True(t, strings.HasSuffix(fillColor(t, f, sheet, cell(t, layout.FirstStatusColumn+idx, 3)), layout.NotApplicableFill))

		crisis := m.Catalogue.Index(model.DocCrisisEducationPlan)
		assert.True(t, strings.HasSuffix(fillColor(t, f, sheet, cell(t, layout.FirstStatusColumn+crisis, 2)), layout.MissingFill))

		assert.Empty(t, fillColor(t, f, sheet, cell(t, layout.AuthorsColumn(m.Catalogue), 2)))
	})
}

func TestWriter_RenderEmptyMatrix(t *testing.T) {
	w := newTestWriter(t)
	m := model.Matrix{Catalogue: model.DefaultCatalogue()}

	require.NoError(t, w.Render(context.Background(), m))

	f, err := excelize.OpenFile(w.Path())
	require.NoError(t, err)
	defer func() { _ = f.Close() }()

	rows, err := f.GetRows(DefaultConfig().SheetName)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Len(t, rows[0], len(m.Catalogue)+3)
}

func TestWriter_RenderCanceled(t *testing.T) {
	w := newTestWriter(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := w.Render(ctx, testMatrix())
	assert.True(t, errors.Is(err, context.Canceled))
	assert.NoFileExists(t, w.Path())
}

func TestWriter_RenderUnwritablePath(t *testing.T) {
	dir := t.TempDir()
	cfg := DefaultConfig()
	// parent is a regular file
	cfg.Path = filepath.Join(dir, "taken.xlsx", "report.xlsx")
	require.NoError(t, os.WriteFile(filepath.Join(dir, "taken.xlsx"), []byte("file"), 0o600))

	w, err := NewWriter(cfg, nil)
	require.NoError(t, err)

	err = w.Render(context.Background(), testMatrix())
	assert.ErrorIs(t, err, common.ErrWriteFailed)
}

func TestWriter_UndatedClientLeavesDateBlank(t *testing.T) {
	w := newTestWriter(t)
	m := testMatrix()
	m.Rows[1].EarliestDate = time.Time{}

	f, err := w.Workbook(m)
	require.NoError(t, err)
	defer func() { _ = f.Close() }()

	sheet := DefaultConfig().SheetName
	value, err := f.GetCellValue(sheet, cell(t, layout.StartDateColumn, 3))
	require.NoError(t, err)
	assert.Empty(t, value)

	name, err := f.GetCellValue(sheet, "A3")
	require.NoError(t, err)
	assert.Equal(t, "Roe, Rick (CS)", name)
}
