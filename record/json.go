package record

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/sirupsen/logrus"

	"github.com/netprobe/pingstats/statistics"
)

// jsonRecorder keeps the destination as a single JSON array holding every
// snapshot ever appended. Appending reads the existing array, adds the new
// entry and rewrites the whole file, which is fine for the handful of
// snapshots a run produces.
type jsonRecorder struct {
	path string
}

func (r *jsonRecorder) Path() string { return r.path }

func (r *jsonRecorder) Append(stats *statistics.SessionStats) error {
	entries, err := ReadJSON(r.path)
	if err != nil {
		return err
	}
	entries = append(entries, *stats)

	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding history: %w", err)
	}
	if err := ensureDir(r.path); err != nil {
		return err
	}
	return os.WriteFile(r.path, data, 0644)
}

// ReadJSON loads the snapshot history from path. A missing file is an empty
// history; an unreadable one is treated the same way so a damaged history
// never blocks saving new results.
func ReadJSON(path string) ([]statistics.SessionStats, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading history: %w", err)
	}

	var entries []statistics.SessionStats
	if err := json.Unmarshal(data, &entries); err != nil {
		logrus.Warnf("Discarding unreadable history in %v: %v", path, err)
		return nil, nil
	}
	return entries, nil
}
