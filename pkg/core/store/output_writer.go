package store

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"ecosystem_mapper/pkg/models"
)

const timestampLayout = "20060102_150405"

// RawDataBundle is the persisted snapshot of everything collected for a
// run, written alongside the taxonomy so runs can be re-analyzed offline.
type RawDataBundle struct {
	RunID        string                    `json:"run_id"`
	Keyword      string                    `json:"keyword"`
	Timestamp    string                    `json:"timestamp"`
	Repositories []models.RepositoryRecord `json:"github_repositories"`
	WebResults   *models.WebResultSet      `json:"web_results"`
}

// OutputWriter writes run artifacts into an outputs directory. Each run
// produces independently named timestamped documents plus a "latest"
// taxonomy copy overwritten every run. Writes are plain file writes, no
// atomic replace.
type OutputWriter struct {
	dir string
}

// NewOutputWriter ensures the outputs directory exists.
func NewOutputWriter(dir string) (*OutputWriter, error) {
	if dir == "" {
		dir = "outputs"
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create outputs directory: %w", err)
	}
	return &OutputWriter{dir: dir}, nil
}

// Dir returns the outputs directory.
func (w *OutputWriter) Dir() string { return w.dir }

// SaveRawData writes the collected source records as a timestamped JSON
// document and returns its path.
func (w *OutputWriter) SaveRawData(keyword string, repos []models.RepositoryRecord, web *models.WebResultSet) (string, error) {
	timestamp := time.Now().Format(timestampLayout)
	bundle := RawDataBundle{
		RunID:        uuid.New().String(),
		Keyword:      keyword,
		Timestamp:    timestamp,
		Repositories: repos,
		WebResults:   web,
	}

	filename := filepath.Join(w.dir, fmt.Sprintf("%s_raw_data_%s.json", SanitizeKeyword(keyword), timestamp))
	if err := writeJSON(filename, bundle); err != nil {
		return "", err
	}

	fmt.Printf("✓ Raw data saved to: %s\n", filename)
	return filename, nil
}

// SaveTaxonomy writes the run result (taxonomy or error document) as a
// timestamped JSON file and refreshes the "latest" copy. Returns the
// timestamped path.
func (w *OutputWriter) SaveTaxonomy(keyword string, result models.Result) (string, error) {
	timestamp := time.Now().Format(timestampLayout)
	safe := SanitizeKeyword(keyword)

	filename := filepath.Join(w.dir, fmt.Sprintf("%s_taxonomy_%s.json", safe, timestamp))
	if err := writeJSON(filename, result); err != nil {
		return "", err
	}
	fmt.Printf("✓ Taxonomy saved to: %s\n", filename)

	latest := filepath.Join(w.dir, fmt.Sprintf("%s_taxonomy_latest.json", safe))
	if err := writeJSON(latest, result); err != nil {
		return "", err
	}
	fmt.Printf("✓ Latest taxonomy: %s\n", latest)

	return filename, nil
}

// SaveReport writes rendered report bytes next to the taxonomy files.
func (w *OutputWriter) SaveReport(keyword string, ext string, content []byte) (string, error) {
	filename := filepath.Join(w.dir, fmt.Sprintf("%s_report_latest.%s", SanitizeKeyword(keyword), ext))
	if err := os.WriteFile(filename, content, 0o644); err != nil {
		return "", fmt.Errorf("failed to write report: %w", err)
	}
	return filename, nil
}

// SanitizeKeyword makes a keyword filesystem-safe: spaces become
// underscores, path separators become dashes.
func SanitizeKeyword(keyword string) string {
	safe := strings.ReplaceAll(keyword, " ", "_")
	return strings.ReplaceAll(safe, "/", "-")
}

func writeJSON(path string, v interface{}) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal %s: %w", filepath.Base(path), err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}
