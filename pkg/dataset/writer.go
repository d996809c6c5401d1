// Package dataset reads and writes newline-delimited JSON fine-tuning
// datasets.
package dataset

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/mtechzilla/sitetune/models"
	"github.com/mtechzilla/sitetune/pkg/storage"
)

type Writer struct {
	storage *storage.Storage
	logger  *slog.Logger
}

func NewWriter(s *storage.Storage, logger *slog.Logger) *Writer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Writer{storage: s, logger: logger}
}

// Write stores records at path, one JSON object per line. An empty record
// list writes nothing and reports false.
func (w *Writer) Write(path string, records []models.TrainingRecord) (bool, error) {
	if len(records) == 0 {
		w.logger.Warn("No training data to save", "path", path)
		return false, nil
	}

	var buf bytes.Buffer
	for i, record := range records {
		line, err := json.Marshal(record)
		if err != nil {
			return false, fmt.Errorf("marshaling record %d: %w", i, err)
		}
		if i > 0 {
			buf.WriteByte('\n')
		}
		buf.Write(line)
	}

	if err := w.storage.SaveFile(path, buf.Bytes()); err != nil {
		return false, err
	}
	w.logger.Info("Saved training data", "path", path, "examples", len(records))
	return true, nil
}
