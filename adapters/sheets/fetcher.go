package sheets

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"orderboard/domain/core"
	"orderboard/domain/order"
	"orderboard/internal"
)

// Fetcher downloads a published sheet through the spreadsheet export endpoint
type Fetcher struct {
	config     Config
	httpClient *http.Client
	decoder    *Decoder
	logger     *internal.Logger
}

// NewFetcher creates a fetcher. The request deadline comes from config.Timeout,
// so the client itself carries no timeout.
func NewFetcher(config Config, httpClient *http.Client, logger *internal.Logger) *Fetcher {
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	if logger == nil {
		logger = internal.DefaultLogger
	}
	return &Fetcher{
		config:     config,
		httpClient: httpClient,
		decoder:    NewDecoder(logger),
		logger:     logger.WithComponent("Fetcher"),
	}
}

// SourceID identifies the sheet being exported
func (f *Fetcher) SourceID() core.SourceID {
	return core.NewSourceID(f.config.SpreadsheetID, f.config.SheetGID)
}

// ExportURL builds the export link for the configured sheet
func (f *Fetcher) ExportURL() string {
	q := url.Values{}
	q.Set("format", f.config.Format)
	q.Set("gid", f.config.SheetGID)
	return fmt.Sprintf("%s/%s/export?%s", f.config.BaseURL, url.PathEscape(f.config.SpreadsheetID), q.Encode())
}

// Fetch downloads and decodes the sheet
func (f *Fetcher) Fetch(ctx context.Context) (*order.RawTable, error) {
	startTime := time.Now()
	if f.config.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, f.config.Timeout)
		defer cancel()
	}

	exportURL := f.ExportURL()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, exportURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Accept", "text/csv, "+xlsxMIME+";q=0.9, */*;q=0.1")

	resp, err := f.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", core.ErrSourceUnreachable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, core.NewSourceStatusError(resp.StatusCode, exportURL)
	}

	body, err := readLimited(resp.Body, f.config.MaxBytes)
	if err != nil {
		return nil, err
	}
	f.logger.Debug("downloaded %d bytes from %s in %s", len(body), exportURL, time.Since(startTime))

	table, err := f.decoder.Decode(body, f.config.Format)
	if err != nil {
		return nil, err
	}
	f.logger.Info("fetched %d rows from %s", len(table.Rows), f.SourceID())
	return table, nil
}

// readLimited reads at most limit bytes and fails when the body is larger
func readLimited(r io.Reader, limit int64) ([]byte, error) {
	if limit <= 0 {
		body, err := io.ReadAll(r)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", core.ErrSourceUnreachable, err)
		}
		return body, nil
	}
	body, err := io.ReadAll(io.LimitReader(r, limit+1))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", core.ErrSourceUnreachable, err)
	}
	if int64(len(body)) > limit {
		return nil, fmt.Errorf("%w: more than %d bytes", core.ErrPayloadTooLarge, limit)
	}
	return body, nil
}
