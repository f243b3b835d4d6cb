package statistics_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/netprobe/pingstats/statistics"
)

func TestClassify(t *testing.T) {
	cases := []struct {
		ms     float64
		bucket string
	}{
		{0, "< 100ms"},
		{42.7, "< 100ms"},
		{99.99, "< 100ms"},
		{100, "100-199ms"},
		{199.4, "100-199ms"},
		{200, "200-299ms"},
		{315, "300-399ms"},
		{450.01, "400-499ms"},
		{500, "500-999ms"},
		{999.9, "500-999ms"},
		{1000, ">= 1000ms"},
		{123456, ">= 1000ms"},
	}
	for _, c := range cases {
		assert.Equal(t, c.bucket, statistics.Classify(c.ms), "sample %vms", c.ms)
		// Classification is stable
		assert.Equal(t, statistics.Classify(c.ms), statistics.Classify(c.ms))
	}
}

func TestRebuildPartitionsSamples(t *testing.T) {
	samples := []float64{0, 12.5, 99.9, 100, 250, 399.9, 499, 750, 1000, 5000}

	h := statistics.NewHistogram()
	h.Rebuild(samples)

	assert.Equal(t, uint64(len(samples)), h.Total(), "each sample lands in exactly one bucket")
	assert.Equal(t, uint64(3), h["< 100ms"])
	assert.Equal(t, uint64(1), h["100-199ms"])
	assert.Equal(t, uint64(1), h["200-299ms"])
	assert.Equal(t, uint64(1), h["300-399ms"])
	assert.Equal(t, uint64(1), h["400-499ms"])
	assert.Equal(t, uint64(1), h["500-999ms"])
	assert.Equal(t, uint64(2), h[">= 1000ms"])
}

func TestRebuildResetsCounts(t *testing.T) {
	h := statistics.NewHistogram()
	h.Rebuild([]float64{10, 20, 30})
	h.Rebuild([]float64{1500})

	assert.Equal(t, uint64(1), h.Total())
	assert.Equal(t, uint64(0), h["< 100ms"])
	assert.Equal(t, uint64(1), h[">= 1000ms"])

	h.Rebuild(nil)
	assert.Equal(t, uint64(0), h.Total())
	for _, name := range statistics.BucketNames {
		assert.Contains(t, h, name)
	}
}
