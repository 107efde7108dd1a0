package telemetry

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/gocarina/gocsv"

	"github.com/pthm-cable/inkfall/config"
)

// OutputManager handles structured session output with CSV logging. A nil
// manager is valid and silently discards everything, so callers never need
// to branch on whether output is enabled.
type OutputManager struct {
	dir        string
	roundsFile *os.File

	roundsHeaderWritten bool
}

// NewOutputManager creates an output manager rooted at dir. Returns nil
// when dir is empty (output disabled).
func NewOutputManager(dir string) (*OutputManager, error) {
	if dir == "" {
		return nil, nil
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("creating output directory: %w", err)
	}

	om := &OutputManager{dir: dir}

	f, err := os.Create(filepath.Join(dir, "rounds.csv"))
	if err != nil {
		return nil, fmt.Errorf("creating rounds.csv: %w", err)
	}
	om.roundsFile = f
	return om, nil
}

// WriteConfig saves the effective configuration next to the CSVs so a
// session's numbers can always be traced to its tuning.
func (om *OutputManager) WriteConfig(cfg *config.Config) error {
	if om == nil {
		return nil
	}
	return cfg.WriteYAML(filepath.Join(om.dir, "config.yaml"))
}

// WriteRound appends one finished round to rounds.csv.
func (om *OutputManager) WriteRound(rec RoundRecord) error {
	if om == nil {
		return nil
	}
	records := []RoundRecord{rec}
	if !om.roundsHeaderWritten {
		if err := gocsv.Marshal(records, om.roundsFile); err != nil {
			return fmt.Errorf("writing round: %w", err)
		}
		om.roundsHeaderWritten = true
		return nil
	}
	if err := gocsv.MarshalWithoutHeaders(records, om.roundsFile); err != nil {
		return fmt.Errorf("writing round: %w", err)
	}
	return nil
}

// WriteStats writes the session summary to stats.csv.
func (om *OutputManager) WriteStats(stats SessionStats) error {
	if om == nil {
		return nil
	}
	f, err := os.Create(filepath.Join(om.dir, "stats.csv"))
	if err != nil {
		return fmt.Errorf("creating stats.csv: %w", err)
	}
	defer f.Close()
	if err := gocsv.Marshal([]SessionStats{stats}, f); err != nil {
		return fmt.Errorf("writing stats: %w", err)
	}
	return nil
}

// Close flushes and releases the output files.
func (om *OutputManager) Close() {
	if om == nil {
		return
	}
	if om.roundsFile != nil {
		om.roundsFile.Close()
	}
}
