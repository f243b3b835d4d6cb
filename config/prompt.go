package config

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"
)

// Interactive fills cfg by prompting on r/w, used when no target was given
// on the command line. Every prompt states its default; invalid input falls
// back to that default instead of aborting. Returns false when the operator
// entered an empty host to exit.
func Interactive(r io.Reader, w io.Writer, cfg *Config) bool {
	in := bufio.NewScanner(r)

	cfg.Target = prompt(in, w, "Enter host to ping (or Enter to exit): ")
	if cfg.Target == "" {
		return false
	}

	cfg.Count = promptUint(in, w, "Number of packets (empty=continuous): ", 0, 1)

	secs := promptFloat(in, w, fmt.Sprintf("Timeout in seconds (default %v): ", cfg.Timeout.Seconds()), cfg.Timeout.Seconds())
	cfg.Timeout = time.Duration(secs * float64(time.Second))

	cfg.PayloadSize = int(promptUint(in, w, fmt.Sprintf("Packet size bytes (default %v): ", cfg.PayloadSize), uint64(cfg.PayloadSize), 0))

	if name := prompt(in, w, fmt.Sprintf("Results filename (default %v): ", cfg.Output)); name != "" {
		cfg.Output = name
	}
	cfg.Directory = prompt(in, w, "Directory to save (default current dir): ")

	if every := promptUint(in, w, "Auto-save interval in seconds (empty=disabled): ", 0, 1); every > 0 {
		cfg.SaveEvery = time.Duration(every) * time.Second
	}

	return true
}

func prompt(in *bufio.Scanner, w io.Writer, msg string) string {
	fmt.Fprint(w, msg)
	if !in.Scan() {
		return ""
	}
	return strings.TrimSpace(in.Text())
}

// promptUint reads an unsigned number, falling back to def on empty, invalid
// or below-minimum input.
func promptUint(in *bufio.Scanner, w io.Writer, msg string, def, min uint64) uint64 {
	input := prompt(in, w, msg)
	if input == "" {
		return def
	}
	v, err := strconv.ParseUint(input, 10, 64)
	if err != nil || v < min {
		fmt.Fprintln(w, "Invalid input, using default.")
		return def
	}
	return v
}

func promptFloat(in *bufio.Scanner, w io.Writer, msg string, def float64) float64 {
	input := prompt(in, w, msg)
	if input == "" {
		return def
	}
	v, err := strconv.ParseFloat(input, 64)
	if err != nil || v <= 0 {
		fmt.Fprintf(w, "Invalid input, using default %.1f.\n", def)
		return def
	}
	return v
}
