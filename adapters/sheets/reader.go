package sheets

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"github.com/xuri/excelize/v2"

	"orderboard/domain/core"
	"orderboard/domain/order"
	"orderboard/internal"
)

const xlsxMIME = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// Decoder turns an exported payload into a RawTable
type Decoder struct {
	logger *internal.Logger
}

// NewDecoder creates a decoder; a nil logger uses the default one
func NewDecoder(logger *internal.Logger) *Decoder {
	if logger == nil {
		logger = internal.DefaultLogger
	}
	return &Decoder{logger: logger.WithComponent("Decoder")}
}

// Decode sniffs the payload and parses it as the requested format.
// Sign-in pages and other non-tabular content yield core.ErrNonTabular.
func (d *Decoder) Decode(data []byte, format string) (*order.RawTable, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, core.ErrEmptySource
	}

	mime := mimetype.Detect(data)
	d.logger.Debug("payload %d bytes detected as %s", len(data), mime.String())

	switch format {
	case FormatXLSX:
		if !mime.Is(xlsxMIME) && !descendsFrom(mime, "application/zip") {
			return nil, core.NewNonTabularError(mime.String())
		}
		return d.readExcelData(data)
	case FormatCSV:
		if !isPlainText(mime) {
			return nil, core.NewNonTabularError(mime.String())
		}
		return d.readCSVData(data)
	default:
		return nil, fmt.Errorf("unsupported export format: %s", format)
	}
}

// descendsFrom reports whether mime is parent or one of its descendants
func descendsFrom(mime *mimetype.MIME, parent string) bool {
	for m := mime; m != nil; m = m.Parent() {
		if m.Is(parent) {
			return true
		}
	}
	return false
}

// isPlainText accepts text/plain and its descendants except markup
func isPlainText(mime *mimetype.MIME) bool {
	for m := mime; m != nil; m = m.Parent() {
		if m.Is("text/html") || m.Is("text/xml") || m.Is("application/json") {
			return false
		}
		if m.Is("text/plain") {
			return true
		}
	}
	return false
}

// readExcelData reads the first worksheet of an XLSX export
func (d *Decoder) readExcelData(data []byte) (*order.RawTable, error) {
	startTime := time.Now()
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", core.ErrNonTabular, err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, core.ErrEmptySource
	}

	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %s: %w", sheets[0], err)
	}
	d.logger.Debug("sheet %s read in %.2fms (%d rows)", sheets[0], float64(time.Since(startTime).Nanoseconds())/1e6, len(rows))

	return d.processRows(rows)
}

// readCSVData reads a CSV export, tolerating ragged rows and a leading BOM
func (d *Decoder) readCSVData(data []byte) (*order.RawTable, error) {
	data = bytes.TrimPrefix(data, []byte("\xef\xbb\xbf"))

	reader := csv.NewReader(bytes.NewReader(data))
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	readStart := time.Now()
	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", core.ErrNonTabular, err)
	}
	d.logger.Debug("CSV read in %.2fms (%d rows)", float64(time.Since(readStart).Nanoseconds())/1e6, len(rows))

	return d.processRows(rows)
}

// processRows maps records onto canonical headers. Short records are padded
// so every header column is present in every row. Blank and repeated header
// cells are ignored.
func (d *Decoder) processRows(rows [][]string) (*order.RawTable, error) {
	if len(rows) == 0 {
		return nil, core.ErrEmptySource
	}

	headerRow := rows[0]
	headers := make([]string, 0, len(headerRow))
	index := make([]string, len(headerRow))
	seen := make(map[string]bool, len(headerRow))
	for i, h := range headerRow {
		name := order.CanonicalHeader(h)
		if name == "" || seen[name] {
			continue
		}
		seen[name] = true
		index[i] = name
		headers = append(headers, name)
	}
	if len(headers) == 0 {
		return nil, core.NewNonTabularError("header row is blank")
	}

	dataRows := make([]order.RawRow, 0, len(rows)-1)
	for _, row := range rows[1:] {
		rowData := make(order.RawRow, len(headers))
		for _, h := range headers {
			rowData[h] = ""
		}
		for j, cell := range row {
			if j < len(index) && index[j] != "" {
				rowData[index[j]] = cell
			}
		}
		dataRows = append(dataRows, rowData)
	}

	d.logger.Debug("table processed (%d columns: %s; %d rows)", len(headers), strings.Join(headers, ", "), len(dataRows))

	return &order.RawTable{
		Headers:     headers,
		Rows:        dataRows,
		Fingerprint: core.ComputeTableHash(headerRow, rows[1:]),
	}, nil
}
