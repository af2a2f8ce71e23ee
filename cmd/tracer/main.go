// Command tracer loads the eBPF process-and-syscall telemetry collector,
// prints each delivered event as a human-readable line (plus an argv line
// when the event carries argv), and shuts down gracefully on SIGTERM or
// SIGINT.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/tripwire/tracer/internal/config"
	"github.com/tripwire/tracer/internal/probe"
	"github.com/tripwire/tracer/internal/telemetry"
)

func main() {
	objectPath := flag.String("bpf-object", "/usr/local/lib/tracer/tracer.bpf.o", "path to the compiled BPF object")
	configPath := flag.String("config", "/etc/tracer/config.yaml", "path to the tracer YAML configuration file")
	verbose := flag.Bool("v", false, "enable verbose (debug) logging")
	flag.Parse()

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "tracer: %v\n", err)
		os.Exit(1)
	}
	if *verbose {
		cfg.LogLevel = "debug"
	}

	logger := newLogger(cfg.LogLevel)
	slog.SetDefault(logger)

	pr, err := probe.NewProbe(*objectPath, logger)
	if err != nil {
		logger.Error("failed to load BPF probe", slog.Any("error", err))
		os.Exit(2)
	}
	defer pr.Close()

	collector, err := telemetry.NewCollector(pr,
		telemetry.WithLogger(logger),
		telemetry.WithBlacklistPredicate(telemetry.NewPatternPredicate(cfg.BlacklistPatterns)),
		telemetry.WithKernelBlacklistMirror(cfg.MirrorBlacklistToKernel),
	)
	if err != nil {
		logger.Error("failed to initialize collector", slog.Any("error", err))
		os.Exit(2)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGTERM, syscall.SIGINT)
	go func() {
		sig := <-sigCh
		logger.Info("received shutdown signal", slog.String("signal", sig.String()))
		collector.Shutdown()
	}()

	logger.Info("tracer started", slog.String("bpf_object", *objectPath))

	if err := collector.Initialize(ctx, printEvent); err != nil {
		logger.Error("collector exited with error", slog.Any("error", err))
		os.Exit(3)
	}

	logger.Info("tracer exited cleanly")
}

// printEvent renders one delivered event as:
//
//	TIME EVENT COMM PID PPID FILENAME-OR-EXITCODE
//	  argv: ...
func printEvent(e telemetry.Event) {
	t := time.Unix(0, int64(e.Header.TimestampNS)).Format(time.RFC3339Nano)
	detail := eventDetail(e)
	fmt.Printf("%s %-28s %-16s %-8d %-8d %s\n",
		t, e.Header.EventType, e.Header.CommString(), e.Header.Pid, e.Header.Ppid, detail)

	if len(e.Payload.Argv) > 0 {
		fmt.Printf("  argv: %s\n", strings.Join(e.Payload.Argv, " "))
	}
}

func eventDetail(e telemetry.Event) string {
	switch e.Header.EventType {
	case telemetry.EventProcessExit:
		if e.Payload.ExitCode != 0 {
			return fmt.Sprintf("exit_code=%d", e.Payload.ExitCode)
		}
		return fmt.Sprintf("exit_signal=%d", e.Payload.ExitSignal)
	case telemetry.EventSysEnterOpenat, telemetry.EventSysExitOpenat:
		return e.Payload.Filename
	default:
		return ""
	}
}

// newLogger constructs a *slog.Logger that writes JSON-structured log
// records to stderr at the requested minimum level.
func newLogger(level string) *slog.Logger {
	var l slog.Level
	switch level {
	case "debug":
		l = slog.LevelDebug
	case "warn":
		l = slog.LevelWarn
	case "error":
		l = slog.LevelError
	default:
		l = slog.LevelInfo
	}
	return slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: l}))
}
