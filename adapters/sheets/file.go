package sheets

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"orderboard/domain/core"
	"orderboard/domain/order"
	"orderboard/internal"
)

// FileSource reads a previously downloaded export from disk
type FileSource struct {
	filePath string
	fileType string
	decoder  *Decoder
	logger   *internal.Logger
}

// NewFileSource creates a file source; the format follows the file extension
func NewFileSource(filePath string, logger *internal.Logger) *FileSource {
	if logger == nil {
		logger = internal.DefaultLogger
	}
	fileType := FormatCSV
	if strings.EqualFold(filepath.Ext(filePath), ".xlsx") {
		fileType = FormatXLSX
	}
	return &FileSource{
		filePath: filePath,
		fileType: fileType,
		decoder:  NewDecoder(logger),
		logger:   logger.WithComponent("FileSource"),
	}
}

// SourceID identifies the file being read
func (s *FileSource) SourceID() core.SourceID {
	return core.NewSourceID("file", filepath.Base(s.filePath))
}

// Fetch reads and decodes the file
func (s *FileSource) Fetch(ctx context.Context) (*order.RawTable, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", core.ErrSourceUnreachable, err)
	}

	data, err := os.ReadFile(s.filePath)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", core.ErrSourceUnreachable, err)
	}

	table, err := s.decoder.Decode(data, s.fileType)
	if err != nil {
		return nil, err
	}
	s.logger.Info("read %d rows from %s", len(table.Rows), s.filePath)
	return table, nil
}
