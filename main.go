package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"time"

	"github.com/fatih/color"
	"github.com/sirupsen/logrus"
	flag "github.com/spf13/pflag"

	"github.com/netprobe/pingstats/config"
	"github.com/netprobe/pingstats/probe"
	"github.com/netprobe/pingstats/record"
	"github.com/netprobe/pingstats/session"
	"github.com/netprobe/pingstats/statistics"
	"github.com/netprobe/pingstats/util"
)

func main() {
	cfg := config.Default()
	var (
		format  string
		verbose bool
	)

	flag.Uint64VarP(&cfg.Count, "count", "c", 0, "Packets to send (default: continuous)")
	flag.DurationVarP(&cfg.Interval, "interval", "i", config.DefaultInterval, "Wait between packets")
	flag.DurationVarP(&cfg.Timeout, "timeout", "t", config.DefaultTimeout, "Timeout per ping")
	flag.IntVarP(&cfg.PayloadSize, "size", "s", config.DefaultPayloadSize, "ICMP payload size")
	flag.StringVarP(&cfg.Output, "output", "o", config.DefaultOutput, "Output file")
	flag.StringVarP(&cfg.Directory, "directory", "d", "", "Output directory (default: current dir)")
	flag.StringVarP(&format, "format", "f", string(record.FormatJSON), "Output format, json or csv")
	flag.DurationVar(&cfg.SaveEvery, "save-interval", 0, "Interval to save results automatically")
	flag.IntVar(&cfg.TTL, "ttl", config.DefaultTTL, "IP time to live")
	flag.BoolVar(&cfg.Privileged, "privileged", false, "Use a raw ICMP socket instead of unprivileged UDP")
	flag.StringVarP(&cfg.Interface, "interface", "I", "", "Source interface to ping from")
	flag.BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")
	flag.Parse()

	if verbose {
		logrus.SetLevel(logrus.DebugLevel)
	}

	var err error
	cfg.Format, err = record.ParseFormat(format)
	if err != nil {
		logrus.Fatal(err)
	}

	cfg.Target = flag.Arg(0)
	if cfg.Target == "" {
		fmt.Println("For help run with -h")
		if !config.Interactive(os.Stdin, os.Stdout, cfg) {
			fmt.Println("Exiting.")
			return
		}
	}

	pinger, err := probe.NewPinger(cfg.Target)
	if err != nil {
		logrus.Fatal(err)
	}
	pinger.Size = cfg.PayloadSize
	pinger.Timeout = cfg.Timeout
	pinger.TTL = cfg.TTL
	pinger.SetPrivileged(cfg.Privileged)
	if cfg.Interface != "" {
		src, err := util.IfaceAddr(cfg.Interface)
		if err != nil {
			logrus.Fatal("Binding source interface: ", err)
		}
		pinger.SetSource(src)
	}
	if err := pinger.Start(); err != nil {
		logrus.Fatal(err)
	}
	defer pinger.Close()

	recorder, err := record.New(cfg.Format, cfg.SavePath())
	if err != nil {
		logrus.Fatal(err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	logrus.Infof("Pinging %v...", pinger.Target())
	stats := session.New(cfg, pinger, recorder).Run(ctx)
	if stats != nil {
		printSummary(stats)
	}
}

func printSummary(stats *statistics.SessionStats) {
	color.New(color.Bold).Println("\n=== Current Session Stats ===")
	fmt.Println("Target:", stats.Target)
	fmt.Println("Timestamp:", stats.Timestamp.Format(time.RFC3339))
	fmt.Printf("Packets: Sent=%v, Received=%v\n", stats.Sent, stats.Received)
	fmt.Printf("Packet Loss: %.1f%%\n", stats.LossPercent)
	if stats.Min != nil && stats.Max != nil && stats.Avg != nil {
		fmt.Printf("Latency: Min=%.2fms, Max=%.2fms, Avg=%.2fms\n", *stats.Min, *stats.Max, *stats.Avg)
	} else {
		fmt.Println("Latency: No data available.")
	}
	color.New(color.Bold).Println("Latency distribution:")
	for _, name := range statistics.BucketNames {
		fmt.Printf("  %-10v %v\n", name, stats.LatencyBuckets[name])
	}
}
