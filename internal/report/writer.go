// Package report persists run reports as JSON files.
package report

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/azizemirhan/hubcenter/internal/entity"
)

// FileName returns the default report name for a run started at t.
func FileName(t time.Time) string {
	return "scrape_results_" + t.Format("20060102_150405") + ".json"
}

// FileWriter writes reports to Path, or to a timestamped file in Dir when
// Path is empty.
type FileWriter struct {
	Dir  string
	Path string
}

// Save writes the report through a temp file and a rename, so readers never
// see a partially written report.
func (w FileWriter) Save(_ context.Context, r *entity.RunReport) (string, error) {
	target := w.Path
	if target == "" {
		dir := w.Dir
		if dir == "" {
			dir = "."
		}
		target = filepath.Join(dir, FileName(r.Timestamp))
	}

	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal report: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(target), ".report-*.json")
	if err != nil {
		return "", fmt.Errorf("create temp report: %w", err)
	}
	defer func() { _ = os.Remove(tmp.Name()) }()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return "", fmt.Errorf("write report: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return "", fmt.Errorf("close report: %w", err)
	}
	if err := os.Rename(tmp.Name(), target); err != nil {
		return "", fmt.Errorf("rename report: %w", err)
	}
	return target, nil
}
