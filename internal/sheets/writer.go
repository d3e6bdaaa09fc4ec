package sheets

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/Veraticus/notecheck/internal/common"
	"github.com/Veraticus/notecheck/internal/layout"
	"github.com/Veraticus/notecheck/internal/model"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"
)

// Writer renders a matrix into a Google Sheets tab.
type Writer struct {
	service *sheets.Service
	logger  *slog.Logger
	config  Config
}

// target identifies the tab being written.
type target struct {
	spreadsheetID string
	url           string
	sheetID       int64
}

// NewWriter creates a new Google Sheets writer.
func NewWriter(ctx context.Context, config Config, logger *slog.Logger) (*Writer, error) {
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	service, err := createSheetsService(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("failed to create sheets service: %w", err)
	}

	return NewWriterWithService(service, config, logger)
}

// NewWriterWithService creates a writer around an existing Sheets service.
func NewWriterWithService(service *sheets.Service, config Config, logger *slog.Logger) (*Writer, error) {
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &Writer{
		config:  config,
		service: service,
		logger:  logger,
	}, nil
}

// Render replaces the contents of the configured tab with the matrix.
func (w *Writer) Render(ctx context.Context, m model.Matrix) error {
	w.logger.Info("Publishing report to Google Sheets", "clients", len(m.Rows))

	t, err := w.getOrCreateSpreadsheet(ctx)
	if err != nil {
		return fmt.Errorf("%w: failed to get spreadsheet: %v", common.ErrWriteFailed, err)
	}

	if err := w.clearSheet(ctx, t); err != nil {
		return fmt.Errorf("%w: failed to clear sheet: %v", common.ErrWriteFailed, err)
	}

	values := prepareValues(m)
	if err := w.writeData(ctx, t, values); err != nil {
		return fmt.Errorf("%w: failed to write data: %v", common.ErrWriteFailed, err)
	}

	if w.config.EnableFormatting {
		if err := w.applyFormatting(ctx, t, m); err != nil {
			w.logger.Warn("Failed to apply formatting", "error", err)
		}
	}

	w.logger.Info("Google Sheets report written",
		"spreadsheet_id", t.spreadsheetID,
		"url", t.url,
		"rows_written", len(values))

	return nil
}

// createSheetsService creates a Google Sheets API service.
func createSheetsService(ctx context.Context, config Config) (*sheets.Service, error) {
	var tokenSource oauth2.TokenSource

	if config.ServiceAccountPath != "" {
		jsonKey, err := os.ReadFile(config.ServiceAccountPath)
		if err != nil {
			return nil, fmt.Errorf("unable to read service account key file: %w", err)
		}

		jwtConfig, err := google.JWTConfigFromJSON(jsonKey, sheets.SpreadsheetsScope)
		if err != nil {
			return nil, fmt.Errorf("unable to parse service account key: %w", err)
		}

		tokenSource = jwtConfig.TokenSource(ctx)
	} else {
		client := oauthConfig(config.ClientID, config.ClientSecret, "")
		token := &oauth2.Token{
			RefreshToken: config.RefreshToken,
			TokenType:    "Bearer",
		}
		tokenSource = client.TokenSource(ctx, token)
	}

	httpClient := oauth2.NewClient(ctx, tokenSource)
	srv, err := sheets.NewService(ctx, option.WithHTTPClient(httpClient))
	if err != nil {
		return nil, fmt.Errorf("unable to create sheets service: %w", err)
	}

	return srv, nil
}

// getOrCreateSpreadsheet resolves the configured spreadsheet and tab,
// creating whichever is missing.
func (w *Writer) getOrCreateSpreadsheet(ctx context.Context) (target, error) {
	if w.config.SpreadsheetID == "" {
		return w.createSpreadsheet(ctx)
	}

	existing, err := w.service.Spreadsheets.Get(w.config.SpreadsheetID).Context(ctx).Do()
	if err != nil {
		return target{}, fmt.Errorf("unable to access spreadsheet %s: %w", w.config.SpreadsheetID, err)
	}

	t := target{spreadsheetID: existing.SpreadsheetId, url: existing.SpreadsheetUrl}
	for _, s := range existing.Sheets {
		if s.Properties != nil && s.Properties.Title == w.config.SheetName {
			t.sheetID = s.Properties.SheetId
			return t, nil
		}
	}

	resp, err := w.service.Spreadsheets.BatchUpdate(t.spreadsheetID, &sheets.BatchUpdateSpreadsheetRequest{
		Requests: []*sheets.Request{{
			AddSheet: &sheets.AddSheetRequest{
				Properties: &sheets.SheetProperties{Title: w.config.SheetName},
			},
		}},
	}).Context(ctx).Do()
	if err != nil {
		return target{}, fmt.Errorf("unable to add sheet %q: %w", w.config.SheetName, err)
	}
	if len(resp.Replies) == 0 || resp.Replies[0].AddSheet == nil || resp.Replies[0].AddSheet.Properties == nil {
		return target{}, fmt.Errorf("add sheet %q returned no properties", w.config.SheetName)
	}

	t.sheetID = resp.Replies[0].AddSheet.Properties.SheetId
	w.logger.Info("Added sheet to spreadsheet", "sheet", w.config.SheetName, "id", t.spreadsheetID)
	return t, nil
}

func (w *Writer) createSpreadsheet(ctx context.Context) (target, error) {
	spreadsheet := &sheets.Spreadsheet{
		Properties: &sheets.SpreadsheetProperties{
			Title:    w.config.SpreadsheetName,
			TimeZone: w.config.TimeZone,
		},
		Sheets: []*sheets.Sheet{
			{
				Properties: &sheets.SheetProperties{
					Title: w.config.SheetName,
				},
			},
		},
	}

	created, err := w.service.Spreadsheets.Create(spreadsheet).Context(ctx).Do()
	if err != nil {
		return target{}, fmt.Errorf("unable to create spreadsheet: %w", err)
	}

	t := target{spreadsheetID: created.SpreadsheetId, url: created.SpreadsheetUrl}
	if len(created.Sheets) > 0 && created.Sheets[0].Properties != nil {
		t.sheetID = created.Sheets[0].Properties.SheetId
	}

	w.logger.Info("Created new spreadsheet",
		"id", created.SpreadsheetId,
		"url", created.SpreadsheetUrl)

	return t, nil
}

func (w *Writer) a1(cell string) string {
	return fmt.Sprintf("'%s'!%s", w.config.SheetName, cell)
}

// clearSheet clears all values from the tab.
func (w *Writer) clearSheet(ctx context.Context, t target) error {
	_, err := w.service.Spreadsheets.Values.Clear(t.spreadsheetID, fmt.Sprintf("'%s'", w.config.SheetName), &sheets.ClearValuesRequest{}).Context(ctx).Do()
	return err
}

// writeData writes the rows in batches.
func (w *Writer) writeData(ctx context.Context, t target, values [][]any) error {
	for i := 0; i < len(values); i += w.config.BatchSize {
		end := min(i+w.config.BatchSize, len(values))

		batch := values[i:end]
		valueRange := &sheets.ValueRange{
			Values: batch,
		}

		_, err := w.service.Spreadsheets.Values.Update(t.spreadsheetID, w.a1(fmt.Sprintf("A%d", i+1)), valueRange).
			ValueInputOption("RAW").
			Context(ctx).
			Do()
		if err != nil {
			return fmt.Errorf("failed to write batch starting at row %d: %w", i+1, err)
		}

		w.logger.Debug("Wrote batch", "start_row", i+1, "rows", len(batch))
	}

	return nil
}

// prepareValues lays the matrix out as header plus one row per client. Dates
// are written as serial day numbers so the sheet can format them.
func prepareValues(m model.Matrix) [][]any {
	values := make([][]any, 0, len(m.Rows)+1)

	headers := layout.Headers(m.Catalogue)
	header := make([]any, len(headers))
	for i, h := range headers {
		header[i] = h
	}
	values = append(values, header)

	for _, row := range m.Rows {
		line := make([]any, 0, len(headers))
		var started any = ""
		if !row.EarliestDate.IsZero() {
			started = serialDate(row.EarliestDate)
		}
		line = append(line, row.ClientName, started)
		for i := range m.Catalogue {
			line = append(line, row.Status(i).String())
		}
		line = append(line, row.AuthorList())
		values = append(values, line)
	}

	return values
}

var serialEpoch = time.Date(1899, 12, 30, 0, 0, 0, 0, time.UTC)

// serialDate converts the calendar date of t to a spreadsheet day number.
func serialDate(t time.Time) float64 {
	y, m, d := t.Date()
	day := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	return float64(day.Sub(serialEpoch) / (24 * time.Hour))
}
