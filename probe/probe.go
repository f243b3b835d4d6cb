// Package probe performs single ICMP echo round trips against one target.
package probe

import (
	"context"
	"errors"
	"time"
)

// Prober performs one network round trip per call. A timeout or transport
// error is reported as an error and counts as a lost packet.
type Prober interface {
	// Target returns the resolved address being probed.
	Target() string

	// Probe sends one echo request with the given sequence number and waits
	// for the matching reply, the per-probe timeout, or ctx cancellation.
	Probe(ctx context.Context, seq int) (time.Duration, error)

	Close() error
}

var (
	// ErrUnsupportedFamily is returned when the target resolves only to an
	// IPv6 address.
	ErrUnsupportedFamily = errors.New("IPv6 targets are not supported")

	// ErrTimeout is returned when no matching reply arrived in time.
	ErrTimeout = errors.New("request timed out")

	// ErrClosed is returned by Probe after Close.
	ErrClosed = errors.New("prober is closed")
)
