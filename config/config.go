// Package config holds the immutable run configuration, built once at
// startup from flags or interactive prompts and passed by reference into the
// session engine.
package config

import (
	"path/filepath"
	"time"

	"github.com/netprobe/pingstats/record"
)

const (
	DefaultOutput      = "ping_history.json"
	DefaultTimeout     = 4 * time.Second
	DefaultInterval    = time.Second
	DefaultPayloadSize = 56
	DefaultTTL         = 64
)

type Config struct {
	// Target host name or IP. Resolved exactly once at startup.
	Target string

	// Count of probes to send; 0 means continuous.
	Count uint64

	// Interval is the fixed tick period between probes.
	Interval time.Duration

	// Timeout bounds each individual probe.
	Timeout time.Duration

	// PayloadSize is the ICMP payload size in bytes.
	PayloadSize int

	// Output file name, Directory and Format select the snapshot
	// destination. The extension of Output is normalized to the format.
	Output    string
	Directory string
	Format    record.Format

	// SaveEvery is the auto-save period; 0 disables interval snapshots.
	SaveEvery time.Duration

	TTL        int
	Privileged bool
	Interface  string
}

func Default() *Config {
	return &Config{
		Interval:    DefaultInterval,
		Timeout:     DefaultTimeout,
		PayloadSize: DefaultPayloadSize,
		Output:      DefaultOutput,
		Format:      record.FormatJSON,
		TTL:         DefaultTTL,
	}
}

// SavePath returns the snapshot destination: directory joined with the
// output name, extension normalized to the selected format.
func (c *Config) SavePath() string {
	name := record.NormalizeExt(c.Output, c.Format)
	if c.Directory == "" {
		return name
	}
	return filepath.Join(c.Directory, name)
}
