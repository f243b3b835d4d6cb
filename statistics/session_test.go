package statistics_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/netprobe/pingstats/statistics"
)

func TestRecomputeEmptySamples(t *testing.T) {
	s := statistics.New("192.0.2.1")
	s.Recompute(5, nil)

	assert.Equal(t, uint64(5), s.Sent)
	assert.Equal(t, uint64(0), s.Received)
	assert.Equal(t, float64(100), s.LossPercent)
	assert.Nil(t, s.Min)
	assert.Nil(t, s.Max)
	assert.Nil(t, s.Avg)
	assert.Equal(t, uint64(0), s.LatencyBuckets.Total())
}

func TestRecomputeNothingSent(t *testing.T) {
	s := statistics.New("192.0.2.1")
	s.Recompute(0, nil)

	assert.Equal(t, float64(0), s.LossPercent, "loss is defined as zero before anything is sent")
}

func TestRecomputeLoss(t *testing.T) {
	cases := []struct {
		sent     uint64
		received int
		loss     float64
	}{
		{1, 0, 100},
		{1, 1, 0},
		{4, 3, 25},
		{10, 8, 20},
		{3, 2, 100.0 / 3.0},
	}
	for _, c := range cases {
		s := statistics.New("192.0.2.1")
		samples := make([]float64, c.received)
		for i := range samples {
			samples[i] = 10
		}
		s.Recompute(c.sent, samples)
		assert.InDelta(t, c.loss, s.LossPercent, 1e-9, "sent=%d received=%d", c.sent, c.received)
	}
}

func TestRecomputeSession(t *testing.T) {
	s := statistics.New("192.0.2.1")
	samples := []float64{20, 25, 30, 1200, 15, 22, 18, 19}
	s.Recompute(10, samples)

	assert.Equal(t, uint64(10), s.Sent)
	assert.Equal(t, uint64(8), s.Received)
	assert.InDelta(t, 20.0, s.LossPercent, 1e-9)

	require.NotNil(t, s.Min)
	require.NotNil(t, s.Max)
	require.NotNil(t, s.Avg)
	assert.Equal(t, 15.0, *s.Min)
	assert.Equal(t, 1200.0, *s.Max)
	assert.InDelta(t, 168.625, *s.Avg, 1e-9)

	assert.Equal(t, uint64(7), s.LatencyBuckets["< 100ms"])
	assert.Equal(t, uint64(1), s.LatencyBuckets[">= 1000ms"])
	assert.Equal(t, s.Received, s.LatencyBuckets.Total())
}

func TestRecomputeReplacesPreviousWindow(t *testing.T) {
	s := statistics.New("192.0.2.1")
	s.Recompute(4, []float64{10, 20, 30})
	s.Recompute(6, []float64{1100})

	assert.Equal(t, uint64(6), s.Sent)
	assert.Equal(t, uint64(1), s.Received)
	require.NotNil(t, s.Min)
	assert.Equal(t, 1100.0, *s.Min)
	assert.Equal(t, uint64(0), s.LatencyBuckets["< 100ms"])
	assert.Equal(t, uint64(1), s.LatencyBuckets[">= 1000ms"])
}
