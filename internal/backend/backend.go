// Package backend picks the export target the worker writes rows to.
package backend

import (
	"context"
	"fmt"

	"centavo/internal/config"
	"centavo/internal/log"
	"centavo/internal/sheets"
	"centavo/internal/sheets/google"
	"centavo/internal/sheets/memory"
)

// Type names an export target.
type Type string

const (
	GoogleSheets Type = "sheets"
	Memory       Type = "memory"
)

// TypeFor reports which target cfg selects.
func TypeFor(cfg *config.Config) Type {
	if cfg.SheetsEnabled() {
		return GoogleSheets
	}
	return Memory
}

// NewRowWriter builds the row writer for cfg. Without a spreadsheet ID rows
// are kept in memory, which is only useful for local runs.
func NewRowWriter(ctx context.Context, cfg *config.Config, logger *log.Logger) (sheets.RowWriter, error) {
	if cfg == nil {
		return nil, fmt.Errorf("app config is nil")
	}

	switch TypeFor(cfg) {
	case GoogleSheets:
		client, err := google.New(ctx, google.Config{
			SpreadsheetID:   cfg.GoogleSpreadsheetID,
			SheetName:       cfg.GoogleSheetName,
			CredentialsJSON: cfg.GoogleServiceAccountJSON,
			CredentialsFile: cfg.GoogleServiceAccountFile,
		}, logger)
		if err != nil {
			return nil, fmt.Errorf("initialize google sheets: %w", err)
		}
		logger.Info("Initialized Google Sheets export", "sheet", cfg.GoogleSheetName)
		return client, nil
	default:
		logger.Warn("Google Sheets disabled - no GOOGLE_SPREADSHEET_ID provided, rows are kept in memory")
		return memory.New(), nil
	}
}
