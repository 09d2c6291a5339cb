package export

import (
	"context"
	"fmt"
	"os"

	"github.com/Moontok/WorkshopApp/internal/logger"
	"github.com/Moontok/WorkshopApp/internal/workshop"
	"google.golang.org/api/option"
	sheetsv4 "google.golang.org/api/sheets/v4"
)

const (
	DefaultWorkshopSheet = "Workshops"
	DefaultRosterSheet   = "Participants"

	// USER_ENTERED lets Sheets parse numbers and dates the way a person typing them would
	valueInputOption = "USER_ENTERED"
)

// SheetsExporter writes workshop tables into an existing spreadsheet
type SheetsExporter struct {
	srv           *sheetsv4.Service
	spreadsheetID string
	workshopSheet string
	rosterSheet   string
}

// SheetsOption configures a SheetsExporter
type SheetsOption func(*SheetsExporter)

// WithWorkshopSheet sets the sheet (tab) receiving the workshop table
func WithWorkshopSheet(name string) SheetsOption {
	return func(e *SheetsExporter) {
		e.workshopSheet = name
	}
}

// WithRosterSheet also writes the participant roster to the named sheet
func WithRosterSheet(name string) SheetsOption {
	return func(e *SheetsExporter) {
		e.rosterSheet = name
	}
}

// ServiceAccountOptions authenticates with a service account JSON key file
func ServiceAccountOptions(path string) ([]option.ClientOption, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("service account json: %w", err)
	}
	return []option.ClientOption{
		option.WithCredentialsFile(path),
		option.WithScopes(sheetsv4.SpreadsheetsScope),
	}, nil
}

// NewSheetsExporter connects to the Sheets API.
// clientOpts carry authentication, see ServiceAccountOptions.
func NewSheetsExporter(ctx context.Context, spreadsheetID string, clientOpts []option.ClientOption, opts ...SheetsOption) (*SheetsExporter, error) {
	if spreadsheetID == "" {
		return nil, fmt.Errorf("spreadsheet id is required")
	}

	srv, err := sheetsv4.NewService(ctx, clientOpts...)
	if err != nil {
		return nil, fmt.Errorf("creating sheets service: %w", err)
	}

	e := &SheetsExporter{
		srv:           srv,
		spreadsheetID: spreadsheetID,
		workshopSheet: DefaultWorkshopSheet,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e, nil
}

// Export replaces the contents of the workshop sheet (and roster sheet, if configured)
func (e *SheetsExporter) Export(ctx context.Context, workshops []*workshop.Workshop) error {
	data := []*sheetsv4.ValueRange{{
		Range:  e.workshopSheet + "!A1",
		Values: toValues(workshopTable(workshops)),
	}}
	sheets := []string{e.workshopSheet}

	if e.rosterSheet != "" {
		data = append(data, &sheetsv4.ValueRange{
			Range:  e.rosterSheet + "!A1",
			Values: toValues(rosterTable(workshops)),
		})
		sheets = append(sheets, e.rosterSheet)
	}

	for _, sheet := range sheets {
		_, err := e.srv.Spreadsheets.Values.Clear(e.spreadsheetID, sheet+"!A:Z", &sheetsv4.ClearValuesRequest{}).
			Context(ctx).
			Do()
		if err != nil {
			return fmt.Errorf("clearing sheet %s: %w", sheet, err)
		}
	}

	req := &sheetsv4.BatchUpdateValuesRequest{
		ValueInputOption: valueInputOption,
		Data:             data,
	}
	resp, err := e.srv.Spreadsheets.Values.BatchUpdate(e.spreadsheetID, req).Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("writing sheet values: %w", err)
	}

	logger.Info("Exported workshops to Google Sheets", logger.Fields{
		"spreadsheet_id": e.spreadsheetID,
		"workshops":      len(workshops),
		"updated_cells":  resp.TotalUpdatedCells,
	})
	return nil
}

func toValues(table [][]string) [][]interface{} {
	values := make([][]interface{}, len(table))
	for i, row := range table {
		values[i] = make([]interface{}, len(row))
		for j, cell := range row {
			values[i][j] = cell
		}
	}
	return values
}
