// Package export writes processed meeting results to disk as JSON.
package export

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/otherjamesbrown/minutes-cli/pkg/meeting"
	"github.com/otherjamesbrown/minutes-cli/pkg/pipeline"
)

// Bundle is the exported document: the full run state plus the validation
// report.
type Bundle struct {
	State  *meeting.State   `json:"state"`
	Report *pipeline.Report `json:"report,omitempty"`
}

// Write serializes the bundle into dir as minutes_<run_id>.json and returns
// the file path. The directory is created if missing.
func Write(dir string, st *meeting.State, report *pipeline.Report) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("creating output directory: %w", err)
	}

	path := filepath.Join(dir, fmt.Sprintf("minutes_%s.json", st.RunID))
	data, err := json.MarshalIndent(Bundle{State: st, Report: report}, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshaling results: %w", err)
	}
	data = append(data, '\n')

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("writing results file: %w", err)
	}
	return path, nil
}
