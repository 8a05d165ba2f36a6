package sheets

import (
	"time"

	"orderboard/internal/config"
)

// Export formats understood by the decoder
const (
	FormatCSV  = "csv"
	FormatXLSX = "xlsx"
)

// Config holds the settings of a published spreadsheet export
type Config struct {
	SpreadsheetID string        `json:"spreadsheet_id"`
	SheetGID      string        `json:"sheet_gid"`
	Format        string        `json:"format"`
	BaseURL       string        `json:"base_url"`
	Timeout       time.Duration `json:"timeout"`
	MaxBytes      int64         `json:"max_bytes"`
}

// DefaultConfig returns the settings for the built-in order sheet
func DefaultConfig() Config {
	return Config{
		SpreadsheetID: config.DefaultSpreadsheetID,
		SheetGID:      config.DefaultSheetGID,
		Format:        FormatCSV,
		BaseURL:       config.DefaultExportBaseURL,
		Timeout:       15 * time.Second,
		MaxBytes:      10 << 20,
	}
}

// ConfigFrom maps the application source settings onto an export config
func ConfigFrom(src config.SourceConfig) Config {
	return Config{
		SpreadsheetID: src.SpreadsheetID,
		SheetGID:      src.SheetGID,
		Format:        src.Format,
		BaseURL:       src.BaseURL,
		Timeout:       src.Timeout,
		MaxBytes:      src.MaxBytes,
	}
}
