// Package record persists SessionStats snapshots to disk. A destination is
// append-only at the snapshot level: every call to Append adds one entry to
// the history without disturbing what was written before.
package record

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/netprobe/pingstats/statistics"
)

type Format string

const (
	FormatJSON Format = "json"
	FormatCSV  Format = "csv"
)

func ParseFormat(s string) (Format, error) {
	switch Format(strings.ToLower(s)) {
	case FormatJSON:
		return FormatJSON, nil
	case FormatCSV:
		return FormatCSV, nil
	default:
		return "", fmt.Errorf("unknown output format %q", s)
	}
}

// Recorder appends one immutable snapshot per call to its destination.
type Recorder interface {
	Append(stats *statistics.SessionStats) error
	Path() string
}

// New returns a Recorder for the given format and destination path.
func New(format Format, path string) (Recorder, error) {
	switch format {
	case FormatJSON:
		return &jsonRecorder{path: path}, nil
	case FormatCSV:
		return &csvRecorder{path: path}, nil
	default:
		return nil, fmt.Errorf("unknown output format %q", format)
	}
}

// NormalizeExt rewrites the file extension of name to match the format.
func NormalizeExt(name string, format Format) string {
	want := "." + string(format)
	if strings.EqualFold(filepath.Ext(name), want) {
		return name
	}
	return strings.TrimSuffix(name, filepath.Ext(name)) + want
}

func ensureDir(path string) error {
	dir := filepath.Dir(path)
	if dir == "." || dir == "" {
		return nil
	}
	return os.MkdirAll(dir, 0755)
}
