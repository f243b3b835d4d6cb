package statistics

import (
	"math"
	"time"
)

// SessionStats is the aggregate record for one reporting window, either the
// whole session so far or a single auto-save interval. Field names match the
// persisted JSON encoding.
type SessionStats struct {
	Target    string    `json:"target"`
	Timestamp time.Time `json:"timestamp"`

	Sent        uint64  `json:"sent"`
	Received    uint64  `json:"received"`
	LossPercent float64 `json:"loss_percent"`

	// Min, Max and Avg are nil when no replies were received, which is not
	// the same thing as a zero latency.
	Min *float64 `json:"min"`
	Max *float64 `json:"max"`
	Avg *float64 `json:"avg"`

	LatencyBuckets Histogram `json:"latency_buckets"`
}

// New returns an empty stats record for the given resolved target.
func New(target string) *SessionStats {
	return &SessionStats{
		Target:         target,
		Timestamp:      time.Now().UTC(),
		LatencyBuckets: NewHistogram(),
	}
}

// Recompute replaces every derived field from the full sample set and the
// sent counter in one step. Samples are round-trip times in milliseconds.
func (s *SessionStats) Recompute(sent uint64, samples []float64) {
	s.Sent = sent
	s.Received = uint64(len(samples))
	s.Timestamp = time.Now().UTC()

	if s.Sent > 0 {
		s.LossPercent = 100 * float64(s.Sent-s.Received) / float64(s.Sent)
	} else {
		s.LossPercent = 0
	}

	if len(samples) == 0 {
		s.Min, s.Max, s.Avg = nil, nil, nil
	} else {
		min, max, sum := math.MaxFloat64, -math.MaxFloat64, 0.0
		for _, ms := range samples {
			min = math.Min(min, ms)
			max = math.Max(max, ms)
			sum += ms
		}
		avg := sum / float64(len(samples))
		s.Min, s.Max, s.Avg = &min, &max, &avg
	}

	if s.LatencyBuckets == nil {
		s.LatencyBuckets = NewHistogram()
	}
	s.LatencyBuckets.Rebuild(samples)
}
