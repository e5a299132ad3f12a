package ledger

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"
)

// SheetsBackend implements Backend over one tab of a Google Sheets
// spreadsheet.
type SheetsBackend struct {
	service       *sheets.Service
	logger        *slog.Logger
	spreadsheetID string
	sheetName     string
	sheetID       int64
}

// NewSheetsService creates an authenticated Google Sheets API service
// from config.
func NewSheetsService(ctx context.Context, config Config) (*sheets.Service, error) {
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
		oauthConfig := &oauth2.Config{
			ClientID:     config.ClientID,
			ClientSecret: config.ClientSecret,
			Endpoint:     google.Endpoint,
			Scopes:       []string{sheets.SpreadsheetsScope},
		}

		token := &oauth2.Token{
			RefreshToken: config.RefreshToken,
			TokenType:    "Bearer",
		}

		tokenSource = oauthConfig.TokenSource(ctx, token)
	}

	httpClient := oauth2.NewClient(ctx, tokenSource)
	srv, err := sheets.NewService(ctx, option.WithHTTPClient(httpClient))
	if err != nil {
		return nil, fmt.Errorf("unable to create sheets service: %w", err)
	}

	return srv, nil
}

// NewSheetsBackend creates a backend over one named tab, resolving the
// tab's numeric sheet id up front.
func NewSheetsBackend(ctx context.Context, service *sheets.Service, spreadsheetID, sheetName string, logger *slog.Logger) (*SheetsBackend, error) {
	spreadsheet, err := service.Spreadsheets.Get(spreadsheetID).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("unable to access spreadsheet %s: %w", spreadsheetID, err)
	}

	for _, sheet := range spreadsheet.Sheets {
		if sheet.Properties != nil && sheet.Properties.Title == sheetName {
			return &SheetsBackend{
				service:       service,
				logger:        logger,
				spreadsheetID: spreadsheetID,
				sheetName:     sheetName,
				sheetID:       sheet.Properties.SheetId,
			}, nil
		}
	}

	return nil, fmt.Errorf("sheet %q not found in spreadsheet %s", sheetName, spreadsheetID)
}

// RowCount returns the last non-empty row of the tab, counted by the
// first column.
func (b *SheetsBackend) RowCount(ctx context.Context) (int64, error) {
	resp, err := b.service.Spreadsheets.Values.
		Get(b.spreadsheetID, fmt.Sprintf("%s!A:A", b.sheetName)).
		Context(ctx).
		Do()
	if err != nil {
		return 0, fmt.Errorf("failed to read sheet size: %w", err)
	}
	return int64(len(resp.Values)), nil
}

// ReadRows fetches rows [startRow, endRow] across the full schema range.
func (b *SheetsBackend) ReadRows(ctx context.Context, startRow, endRow int64) ([][]string, error) {
	rangeStr := fmt.Sprintf("%s!A%d:%s%d", b.sheetName, startRow, columnLetter(columnCount-1), endRow)
	resp, err := b.service.Spreadsheets.Values.
		Get(b.spreadsheetID, rangeStr).
		Context(ctx).
		Do()
	if err != nil {
		return nil, fmt.Errorf("failed to read range %s: %w", rangeStr, err)
	}

	rows := make([][]string, len(resp.Values))
	for i, raw := range resp.Values {
		row := make([]string, len(raw))
		for j, cell := range raw {
			row[j] = fmt.Sprint(cell)
		}
		rows[i] = row
	}
	return rows, nil
}

// Apply commits buffered mutations: one values batch for cells and one
// formatting batch for row paints.
func (b *SheetsBackend) Apply(ctx context.Context, muts Mutations) error {
	if len(muts.Cells) > 0 {
		data := make([]*sheets.ValueRange, len(muts.Cells))
		for i, cell := range muts.Cells {
			data[i] = &sheets.ValueRange{
				Range:  fmt.Sprintf("%s!%s%d", b.sheetName, columnLetter(cell.Col), cell.Row),
				Values: [][]any{{cell.Value}},
			}
		}

		_, err := b.service.Spreadsheets.Values.
			BatchUpdate(b.spreadsheetID, &sheets.BatchUpdateValuesRequest{
				ValueInputOption: "USER_ENTERED",
				Data:             data,
			}).
			Context(ctx).
			Do()
		if err != nil {
			return fmt.Errorf("failed to write cells: %w", err)
		}
	}

	if len(muts.Paints) > 0 {
		requests := make([]*sheets.Request, len(muts.Paints))
		for i, paint := range muts.Paints {
			requests[i] = b.paintRequest(paint.Row, paint.Row, paint.Color)
		}

		_, err := b.service.Spreadsheets.
			BatchUpdate(b.spreadsheetID, &sheets.BatchUpdateSpreadsheetRequest{
				Requests: requests,
			}).
			Context(ctx).
			Do()
		if err != nil {
			return fmt.Errorf("failed to paint rows: %w", err)
		}
	}

	return nil
}

// AppendRows appends rows after the sheet's current data, clears the
// formatting they inherit from neighbouring rows, then paints them.
func (b *SheetsBackend) AppendRows(ctx context.Context, rows [][]any, color *Color) (int64, error) {
	resp, err := b.service.Spreadsheets.Values.
		Append(b.spreadsheetID, fmt.Sprintf("%s!A1", b.sheetName), &sheets.ValueRange{Values: rows}).
		ValueInputOption("USER_ENTERED").
		InsertDataOption("INSERT_ROWS").
		Context(ctx).
		Do()
	if err != nil {
		return 0, fmt.Errorf("failed to append rows: %w", err)
	}
	if resp.Updates == nil || resp.Updates.UpdatedRange == "" {
		return 0, fmt.Errorf("append response missing updated range")
	}

	firstRow, err := rangeStartRow(resp.Updates.UpdatedRange)
	if err != nil {
		return 0, err
	}
	lastRow := firstRow + int64(len(rows)) - 1

	requests := []*sheets.Request{
		// Drop whatever formatting the append inherited.
		{
			RepeatCell: &sheets.RepeatCellRequest{
				Range:  b.rowRange(firstRow, lastRow),
				Cell:   &sheets.CellData{UserEnteredFormat: &sheets.CellFormat{}},
				Fields: "userEnteredFormat",
			},
		},
	}
	if color != nil {
		requests = append(requests, b.paintRequest(firstRow, lastRow, color))
	}

	_, err = b.service.Spreadsheets.
		BatchUpdate(b.spreadsheetID, &sheets.BatchUpdateSpreadsheetRequest{Requests: requests}).
		Context(ctx).
		Do()
	if err != nil {
		return 0, fmt.Errorf("failed to format appended rows: %w", err)
	}

	b.logger.Debug("rows appended", "sheet", b.sheetName, "first_row", firstRow, "rows", len(rows))

	return firstRow, nil
}

func (b *SheetsBackend) rowRange(firstRow, lastRow int64) *sheets.GridRange {
	return &sheets.GridRange{
		SheetId:          b.sheetID,
		StartRowIndex:    firstRow - 1,
		EndRowIndex:      lastRow,
		StartColumnIndex: 0,
		EndColumnIndex:   int64(columnCount),
	}
}

func (b *SheetsBackend) paintRequest(firstRow, lastRow int64, color *Color) *sheets.Request {
	return &sheets.Request{
		RepeatCell: &sheets.RepeatCellRequest{
			Range: b.rowRange(firstRow, lastRow),
			Cell: &sheets.CellData{
				UserEnteredFormat: &sheets.CellFormat{
					BackgroundColor: &sheets.Color{
						Red:   color.Red,
						Green: color.Green,
						Blue:  color.Blue,
					},
				},
			},
			Fields: "userEnteredFormat.backgroundColor",
		},
	}
}

// rangeStartRow extracts the first row number from an A1 range like
// "Orders!A101:V103".
func rangeStartRow(a1 string) (int64, error) {
	ref := a1
	if i := strings.IndexByte(ref, '!'); i >= 0 {
		ref = ref[i+1:]
	}
	if i := strings.IndexByte(ref, ':'); i >= 0 {
		ref = ref[:i]
	}
	digits := strings.TrimLeft(ref, "ABCDEFGHIJKLMNOPQRSTUVWXYZ")
	row, err := strconv.ParseInt(digits, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("cannot parse range %q: %w", a1, err)
	}
	return row, nil
}
