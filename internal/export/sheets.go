package export

import (
	"context"
	"fmt"

	"github.com/Eursukkul/race-registration/internal/models"
	"google.golang.org/api/option"
	sheets "google.golang.org/api/sheets/v4"
)

type valuesAPI interface {
	clear(ctx context.Context, spreadsheetID, rng string) error
	update(ctx context.Context, spreadsheetID, rng string, values [][]interface{}) error
}

// SheetsExporter mirrors the active registration list into a Google spreadsheet tab.
type SheetsExporter struct {
	api           valuesAPI
	spreadsheetID string
	sheetName     string
}

func NewSheetsExporter(ctx context.Context, credentialsFile, spreadsheetID, sheetName string) (*SheetsExporter, error) {
	srv, err := sheets.NewService(ctx,
		option.WithCredentialsFile(credentialsFile),
		option.WithScopes(sheets.SpreadsheetsScope),
	)
	if err != nil {
		return nil, fmt.Errorf("sheets service: %w", err)
	}
	return &SheetsExporter{
		api:           &sheetsValues{srv: srv},
		spreadsheetID: spreadsheetID,
		sheetName:     sheetName,
	}, nil
}

// Export replaces the sheet contents with the header and the active rows.
func (s *SheetsExporter) Export(ctx context.Context, regs []models.Registration) (int, error) {
	rows := Rows(regs)
	values := make([][]interface{}, 0, len(rows)+1)
	values = append(values, toCells(Header))
	for _, row := range rows {
		values = append(values, toCells(row))
	}

	rng := s.sheetName + "!A:J"
	if err := s.api.clear(ctx, s.spreadsheetID, rng); err != nil {
		return 0, fmt.Errorf("clear %s: %w", rng, err)
	}
	if err := s.api.update(ctx, s.spreadsheetID, s.sheetName+"!A1", values); err != nil {
		return 0, fmt.Errorf("update %s: %w", s.sheetName, err)
	}
	return len(rows), nil
}

func toCells(row []string) []interface{} {
	cells := make([]interface{}, len(row))
	for i, v := range row {
		cells[i] = v
	}
	return cells
}

type sheetsValues struct {
	srv *sheets.Service
}

func (v *sheetsValues) clear(ctx context.Context, spreadsheetID, rng string) error {
	_, err := v.srv.Spreadsheets.Values.Clear(spreadsheetID, rng, &sheets.ClearValuesRequest{}).
		Context(ctx).Do()
	return err
}

func (v *sheetsValues) update(ctx context.Context, spreadsheetID, rng string, values [][]interface{}) error {
	_, err := v.srv.Spreadsheets.Values.Update(spreadsheetID, rng, &sheets.ValueRange{Values: values}).
		ValueInputOption("RAW").
		Context(ctx).Do()
	return err
}
