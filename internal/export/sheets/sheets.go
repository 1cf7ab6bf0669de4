// Package sheets exports detection runs to a Google Sheets spreadsheet.
package sheets

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"

	"sequenze/internal/services"
	"sequenze/internal/storage"
)

var _ services.SequenceExporter = (*Exporter)(nil)

// Exporter appends one row per sequence member to a configured sheet. It is
// an optional sink; detection runs are durable in SQLite regardless.
type Exporter struct {
	svc           *gsheet.Service
	spreadsheetID string
	sheetName     string
}

// New creates an Exporter for the given spreadsheet. Credentials come from
// the environment, see newSheetsService.
func New(ctx context.Context, spreadsheetID, sheetName string) (*Exporter, error) {
	if strings.TrimSpace(spreadsheetID) == "" {
		return nil, errors.New("missing spreadsheet id")
	}
	if strings.TrimSpace(sheetName) == "" {
		sheetName = "Sequences"
	}

	svc, err := newSheetsService(ctx)
	if err != nil {
		return nil, fmt.Errorf("sheets service: %w", err)
	}

	return &Exporter{
		svc:           svc,
		spreadsheetID: spreadsheetID,
		sheetName:     sheetName,
	}, nil
}

// newSheetsService initializes a Sheets Service using Service Account credentials.
// Uses GOOGLE_SERVICE_ACCOUNT_JSON, GOOGLE_SERVICE_ACCOUNT_FILE, or GOOGLE_APPLICATION_CREDENTIALS.
func newSheetsService(ctx context.Context) (*gsheet.Service, error) {
	serviceAccountJSON := strings.TrimSpace(os.Getenv("GOOGLE_SERVICE_ACCOUNT_JSON"))
	serviceAccountFile := strings.TrimSpace(os.Getenv("GOOGLE_SERVICE_ACCOUNT_FILE"))

	if serviceAccountJSON == "" && serviceAccountFile == "" {
		serviceAccountFile = strings.TrimSpace(os.Getenv("GOOGLE_APPLICATION_CREDENTIALS"))
	}

	var credentialsJSON []byte
	var err error

	switch {
	case serviceAccountJSON != "":
		credentialsJSON = []byte(serviceAccountJSON)
	case serviceAccountFile != "":
		credentialsJSON, err = os.ReadFile(serviceAccountFile)
		if err != nil {
			return nil, fmt.Errorf("read service account file: %w", err)
		}
	default:
		return nil, errors.New("missing service account credentials (set GOOGLE_SERVICE_ACCOUNT_JSON, GOOGLE_SERVICE_ACCOUNT_FILE, or GOOGLE_APPLICATION_CREDENTIALS)")
	}

	service, err := gsheet.NewService(ctx,
		goption.WithCredentialsJSON(credentialsJSON),
		goption.WithScopes(gsheet.SpreadsheetsScope))
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}
	return service, nil
}

// ExportRun appends the run to the sheet, one row per member:
// run id, created at, sequence index, representative, frequency,
// member date, description, amount.
func (e *Exporter) ExportRun(ctx context.Context, run storage.Run) error {
	if e.svc == nil {
		return errors.New("sheets service not initialized")
	}

	var values [][]any
	for i, s := range run.Sequences {
		for _, m := range s.Members {
			values = append(values, []any{
				run.ID,
				run.CreatedAt.Format("2006-01-02 15:04:05"),
				i + 1,
				s.Representative,
				s.Frequency,
				m.Date.Format("2006-01-02"),
				m.Description,
				float64(m.Amount.Cents) / 100.0,
			})
		}
	}
	if len(values) == 0 {
		return nil
	}

	rng := fmt.Sprintf("%s!A:H", e.sheetName)
	vr := &gsheet.ValueRange{Values: values}
	_, err := e.svc.Spreadsheets.Values.Append(e.spreadsheetID, rng, vr).
		ValueInputOption("USER_ENTERED").
		InsertDataOption("INSERT_ROWS").
		Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("append to sheet %s: %w", e.sheetName, err)
	}

	slog.InfoContext(ctx, "Exported run to spreadsheet",
		"run_id", run.ID,
		"rows", len(values),
		"sheet", e.sheetName)
	return nil
}
