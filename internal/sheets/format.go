package sheets

import (
	"context"

	"github.com/Veraticus/notecheck/internal/layout"
	"github.com/Veraticus/notecheck/internal/model"
	"google.golang.org/api/sheets/v4"
)

func sheetColor(hex string) *sheets.Color {
	r, g, b, err := layout.RGB(hex)
	if err != nil {
		return nil
	}
	return &sheets.Color{Red: r, Green: g, Blue: b}
}

// applyFormatting colors the header and status cells, formats the date
// column and freezes the header row.
func (w *Writer) applyFormatting(ctx context.Context, t target, m model.Matrix) error {
	batchUpdate := &sheets.BatchUpdateSpreadsheetRequest{
		Requests: formattingRequests(t.sheetID, m),
	}

	_, err := w.service.Spreadsheets.BatchUpdate(t.spreadsheetID, batchUpdate).Context(ctx).Do()
	return err
}

func formattingRequests(sheetID int64, m model.Matrix) []*sheets.Request {
	columns := int64(len(layout.Headers(m.Catalogue)))
	rows := int64(len(m.Rows))

	headerText := &sheets.TextFormat{
		Bold:            true,
		ForegroundColor: sheetColor(layout.HeaderFont),
	}

	requests := []*sheets.Request{
		// Drop formatting left by a previous run.
		{
			UpdateCells: &sheets.UpdateCellsRequest{
				Range:  &sheets.GridRange{SheetId: sheetID},
				Fields: "userEnteredFormat",
			},
		},
		{
			RepeatCell: &sheets.RepeatCellRequest{
				Range: &sheets.GridRange{
					SheetId:          sheetID,
					StartRowIndex:    0,
					EndRowIndex:      1,
					StartColumnIndex: 0,
					EndColumnIndex:   columns,
				},
				Cell: &sheets.CellData{
					UserEnteredFormat: &sheets.CellFormat{
						BackgroundColor: sheetColor(layout.HeaderFill),
						TextFormat:      headerText,
					},
				},
				Fields: "userEnteredFormat(backgroundColor,textFormat)",
			},
		},
		{
			RepeatCell: &sheets.RepeatCellRequest{
				Range: &sheets.GridRange{
					SheetId:          sheetID,
					StartRowIndex:    0,
					EndRowIndex:      1,
					StartColumnIndex: layout.ClientNameColumn,
					EndColumnIndex:   layout.ClientNameColumn + 1,
				},
				Cell: &sheets.CellData{
					UserEnteredFormat: &sheets.CellFormat{
						BackgroundColor: sheetColor(layout.ClientNameHeaderFill),
					},
				},
				Fields: "userEnteredFormat.backgroundColor",
			},
		},
	}

	if rows > 0 {
		requests = append(requests,
			&sheets.Request{
				RepeatCell: &sheets.RepeatCellRequest{
					Range: &sheets.GridRange{
						SheetId:          sheetID,
						StartRowIndex:    1,
						EndRowIndex:      rows + 1,
						StartColumnIndex: layout.StartDateColumn,
						EndColumnIndex:   layout.StartDateColumn + 1,
					},
					Cell: &sheets.CellData{
						UserEnteredFormat: &sheets.CellFormat{
							NumberFormat: &sheets.NumberFormat{Type: "DATE"},
						},
					},
					Fields: "userEnteredFormat.numberFormat",
				},
			},
			&sheets.Request{
				UpdateCells: &sheets.UpdateCellsRequest{
					Start: &sheets.GridCoordinate{
						SheetId:     sheetID,
						RowIndex:    1,
						ColumnIndex: layout.FirstStatusColumn,
					},
					Rows:   statusRows(m),
					Fields: "userEnteredFormat.backgroundColor",
				},
			},
		)
	}

	requests = append(requests,
		&sheets.Request{
			UpdateSheetProperties: &sheets.UpdateSheetPropertiesRequest{
				Properties: &sheets.SheetProperties{
					SheetId: sheetID,
					GridProperties: &sheets.GridProperties{
						FrozenRowCount: 1,
					},
				},
				Fields: "gridProperties.frozenRowCount",
			},
		},
		&sheets.Request{
			AutoResizeDimensions: &sheets.AutoResizeDimensionsRequest{
				Dimensions: &sheets.DimensionRange{
					SheetId:    sheetID,
					Dimension:  "COLUMNS",
					StartIndex: 0,
					EndIndex:   columns,
				},
			},
		},
	)

	return requests
}

// statusRows builds one RowData per client carrying only the status fills.
func statusRows(m model.Matrix) []*sheets.RowData {
	rows := make([]*sheets.RowData, 0, len(m.Rows))
	for _, row := range m.Rows {
		cells := make([]*sheets.CellData, len(m.Catalogue))
		for i := range m.Catalogue {
			cells[i] = &sheets.CellData{
				UserEnteredFormat: &sheets.CellFormat{
					BackgroundColor: sheetColor(layout.StatusFill(row.Status(i))),
				},
			}
		}
		rows = append(rows, &sheets.RowData{Values: cells})
	}
	return rows
}
