package statistics

// BucketNames is the declared bucket order, used for the CSV column layout
// and for building zeroed histograms.
var BucketNames = []string{
	"< 100ms",
	"100-199ms",
	"200-299ms",
	"300-399ms",
	"400-499ms",
	"500-999ms",
	">= 1000ms",
}

// Histogram maps a bucket name to the number of samples that fell into it.
// The bucket ranges partition [0, ∞) with no gaps or overlaps.
type Histogram map[string]uint64

func NewHistogram() Histogram {
	h := make(Histogram, len(BucketNames))
	for _, name := range BucketNames {
		h[name] = 0
	}
	return h
}

// Classify returns the bucket name for a round-trip time in milliseconds.
// The sample is truncated to whole milliseconds before comparison, so 99.9ms
// still lands in "< 100ms".
func Classify(ms float64) string {
	switch v := uint64(ms); {
	case v < 100:
		return BucketNames[0]
	case v < 200:
		return BucketNames[1]
	case v < 300:
		return BucketNames[2]
	case v < 400:
		return BucketNames[3]
	case v < 500:
		return BucketNames[4]
	case v < 1000:
		return BucketNames[5]
	default:
		return BucketNames[6]
	}
}

// Rebuild resets every bucket to zero and reclassifies the full sample set.
func (h Histogram) Rebuild(samples []float64) {
	for _, name := range BucketNames {
		h[name] = 0
	}
	for _, ms := range samples {
		h[Classify(ms)]++
	}
}

// Total is the sum of all bucket counts.
func (h Histogram) Total() (n uint64) {
	for _, c := range h {
		n += c
	}
	return
}

func (h Histogram) Clone() Histogram {
	c := make(Histogram, len(h))
	for k, v := range h {
		c[k] = v
	}
	return c
}
