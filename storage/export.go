package storage

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"vram-calculator/core/models"
	"vram-calculator/core/report"

	"github.com/google/uuid"
)

// ContentType is the media type of an exported record
const ContentType = "application/json; charset=utf-8"

// timestampLayout is ISO-8601 in UTC with millisecond precision
const timestampLayout = "2006-01-02T15:04:05.000Z07:00"

// Record is the exported form of one calculation
type Record struct {
	ID            string                  `json:"id"`
	Timestamp     string                  `json:"timestamp"`
	Configuration models.Configuration    `json:"configuration"`
	Results       models.EstimationResult `json:"results"`
	Summary       string                  `json:"summary"`
}

// NewRecord builds an export record for a finished calculation
func NewRecord(cfg models.Configuration, res models.EstimationResult, lang models.Language, now time.Time) Record {
	return Record{
		ID:            uuid.New().String(),
		Timestamp:     now.UTC().Format(timestampLayout),
		Configuration: cfg,
		Results:       res,
		Summary:       report.Summary(cfg, lang),
	}
}

// FileName returns the export file name for a configuration,
// e.g. "vram-calculation-7B-fp16-inference.json"
func FileName(cfg models.Configuration) string {
	return fmt.Sprintf("vram-calculation-%sB-%s-%s.json", report.FormatParameters(cfg.Parameters), cfg.Precision, cfg.Task)
}

// Encode writes the record as indented UTF-8 JSON
func (r Record) Encode(w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(r)
}

// Exporter writes export records into a directory
type Exporter struct {
	dir string
}

// NewExporter creates an exporter writing into dir
func NewExporter(dir string) *Exporter {
	return &Exporter{dir: dir}
}

// Export writes the record and returns the file path. An earlier export of the same
// configuration is overwritten.
func (e *Exporter) Export(ctx context.Context, record Record) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	var buf bytes.Buffer
	if err := record.Encode(&buf); err != nil {
		return "", fmt.Errorf("failed to encode export: %w", err)
	}

	if err := os.MkdirAll(e.dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create export dir %s: %w", e.dir, err)
	}

	path := filepath.Join(e.dir, FileName(record.Configuration))
	tmp, err := os.CreateTemp(e.dir, ".vram-export-*")
	if err != nil {
		return "", fmt.Errorf("failed to create export file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(buf.Bytes()); err != nil {
		tmp.Close()
		return "", fmt.Errorf("failed to write export: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return "", fmt.Errorf("failed to write export: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return "", fmt.Errorf("failed to write export %s: %w", path, err)
	}

	return path, nil
}

// Load reads a previously exported record
func Load(path string) (Record, error) {
	var record Record

	data, err := os.ReadFile(path)
	if err != nil {
		return record, err
	}
	if err := json.Unmarshal(data, &record); err != nil {
		return record, fmt.Errorf("failed to decode export %s: %w", path, err)
	}
	return record, nil
}
