package record

import (
	"encoding/csv"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/netprobe/pingstats/statistics"
)

// csvRecorder keeps the destination as a row-oriented table: a fixed header
// followed by one row per snapshot, with a column for every histogram bucket
// in declared order.
type csvRecorder struct {
	path string
}

func (r *csvRecorder) Path() string { return r.path }

// Header returns the CSV column layout.
func Header() []string {
	cols := []string{"target", "timestamp", "sent", "received", "loss_percent", "min", "max", "avg"}
	return append(cols, statistics.BucketNames...)
}

func (r *csvRecorder) Append(stats *statistics.SessionStats) error {
	if err := ensureDir(r.path); err != nil {
		return err
	}

	needHeader := true
	if info, err := os.Stat(r.path); err == nil && info.Size() > 0 {
		needHeader = false
	}

	f, err := os.OpenFile(r.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return fmt.Errorf("opening history: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if needHeader {
		if err := w.Write(Header()); err != nil {
			return err
		}
	}
	if err := w.Write(row(stats)); err != nil {
		return err
	}
	w.Flush()

	return w.Error()
}

func row(stats *statistics.SessionStats) []string {
	r := []string{
		stats.Target,
		stats.Timestamp.Format(time.RFC3339),
		strconv.FormatUint(stats.Sent, 10),
		strconv.FormatUint(stats.Received, 10),
		fmt.Sprintf("%.2f", stats.LossPercent),
		optional(stats.Min),
		optional(stats.Max),
		optional(stats.Avg),
	}
	for _, name := range statistics.BucketNames {
		r = append(r, strconv.FormatUint(stats.LatencyBuckets[name], 10))
	}
	return r
}

// optional renders an absent value as an empty field, distinct from "0.00".
func optional(v *float64) string {
	if v == nil {
		return ""
	}
	return fmt.Sprintf("%.2f", *v)
}
