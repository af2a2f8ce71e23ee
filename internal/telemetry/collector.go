package telemetry

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
)

// Probe is the minimal surface internal/probe exposes once a BPF object is
// loaded and its tracepoints attached: a ring reader, an arena reader, a
// config-map writer, and teardown. Collector depends only on this
// interface, never on cilium/ebpf or any kernel type directly, so the core
// reassembler/filter/clock logic stays unit-testable without root or a
// real kernel (spec.md §1's "adjacent service" split).
type Probe interface {
	Ring() RingReader
	Arena() ArenaReader
	Config() ConfigWriter
	Close() error
}

// Collector is the external entry point matching spec.md §6's
// initialize/shutdown surface: it owns clock alignment, the PID filter, the
// event-id generator, and the reassembler's drain loop, running against
// whatever Probe the caller supplies.
type Collector struct {
	probe     Probe
	reasm     *Reassembler
	log       *slog.Logger
	cancel    context.CancelFunc
	stopOnce  sync.Once
	runDoneCh chan struct{}
}

// Option is a functional option for Collector construction.
type Option func(*collectorConfig)

type collectorConfig struct {
	logger         *slog.Logger
	predicate      BlacklistPredicate
	mirrorToKernel bool
}

// WithLogger sets the structured logger used for warnings about dropped or
// malformed records. Defaults to slog.Default() if not provided.
func WithLogger(l *slog.Logger) Option {
	return func(c *collectorConfig) { c.logger = l }
}

// WithBlacklistPredicate overrides the default name/cmdline pattern
// predicate used to classify newly exec'd processes.
func WithBlacklistPredicate(p BlacklistPredicate) Option {
	return func(c *collectorConfig) { c.predicate = p }
}

// WithKernelBlacklistMirror enables publishing the PID filter's blacklist
// into the probe's config map so tracepoint handlers can short-circuit.
func WithKernelBlacklistMirror(enabled bool) Option {
	return func(c *collectorConfig) { c.mirrorToKernel = enabled }
}

// NewCollector wires a Collector from a loaded Probe. It performs clock
// alignment immediately (spec.md §4.7): BootOffsetNS is computed and
// written into the probe's config map under ConfigSystemBootNS before any
// event is processed.
func NewCollector(probe Probe, opts ...Option) (*Collector, error) {
	cc := &collectorConfig{}
	for _, opt := range opts {
		opt(cc)
	}
	if cc.logger == nil {
		cc.logger = slog.Default()
	}

	bootNS, err := BootOffsetNS()
	if err != nil {
		return nil, fmt.Errorf("telemetry: clock alignment failed: %w", err)
	}
	if err := probe.Config().SetConfig(ConfigSystemBootNS, uint64(bootNS)); err != nil {
		return nil, fmt.Errorf("telemetry: writing boot offset to config map: %w", err)
	}

	var mirror ConfigWriter
	if cc.mirrorToKernel {
		mirror = probe.Config()
	}
	filter := NewFilter(cc.predicate, mirror)

	reasm := NewReassembler(probe.Ring(), probe.Arena(), filter, NewEventIDGenerator(), cc.logger)

	return &Collector{
		probe:     probe,
		reasm:     reasm,
		log:       cc.logger,
		runDoneCh: make(chan struct{}),
	}, nil
}

// Initialize starts the drain loop and blocks until Shutdown is called or
// ctx is cancelled, invoking cb for each delivered event. It returns nil on
// clean exit. Matches spec.md §6's blocking initialize() entry point.
func (c *Collector) Initialize(ctx context.Context, cb Callback) error {
	ctx, cancel := context.WithCancel(ctx)
	c.cancel = cancel

	done := make(chan struct{})
	go func() {
		defer close(done)
		c.reasm.Run(cb)
	}()

	go func() {
		<-ctx.Done()
		c.probe.Ring().Close()
	}()

	<-done
	close(c.runDoneCh)
	return nil
}

// Shutdown sets the exit flag, causing Initialize's drain loop to exit at
// the next poll boundary. Safe to call from a signal handler and safe to
// call multiple times.
func (c *Collector) Shutdown() {
	c.stopOnce.Do(func() {
		if c.cancel != nil {
			c.cancel()
		}
	})
}
