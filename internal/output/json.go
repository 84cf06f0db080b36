package output

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/kubegate-io/kubegate/internal/models"
)

// RenderJSON writes the report as indented JSON to w. Per-violation field
// names (ruleId, severity, resourcePath, message) are stable; CI gates parse
// them.
func RenderJSON(w io.Writer, report *models.BatchReport) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(report)
}

// WriteReportFile serialises the report as indented JSON to path, creating
// or overwriting the file. It does not affect stdout output.
func WriteReportFile(path string, report *models.BatchReport) error {
	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal report: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write report file %q: %w", path, err)
	}
	return nil
}
