package telemetry

import (
	"context"
	"testing"
	"time"
)

type fakeProbe struct {
	ring   *fakeRing
	arena  *fakeArena
	config *fakeConfigWriter
}

func newFakeProbe() *fakeProbe {
	return &fakeProbe{ring: &fakeRing{}, arena: newFakeArena(), config: newFakeConfigWriter()}
}

func (p *fakeProbe) Ring() RingReader     { return p.ring }
func (p *fakeProbe) Arena() ArenaReader   { return p.arena }
func (p *fakeProbe) Config() ConfigWriter { return p.config }
func (p *fakeProbe) Close() error         { return nil }

func TestNewCollectorWritesBootOffset(t *testing.T) {
	probe := newFakeProbe()
	_, err := NewCollector(probe)
	if err != nil {
		t.Fatalf("NewCollector: %v", err)
	}
	if _, ok := probe.config.values[ConfigSystemBootNS]; !ok {
		t.Fatal("expected NewCollector to write a boot offset into the config map")
	}
}

func TestCollectorInitializeReturnsOnShutdown(t *testing.T) {
	probe := newFakeProbe()
	c, err := NewCollector(probe)
	if err != nil {
		t.Fatalf("NewCollector: %v", err)
	}

	doneCh := make(chan error, 1)
	go func() {
		doneCh <- c.Initialize(context.Background(), func(Event) {})
	}()

	// Allow Initialize's goroutines to start, then shut down.
	time.Sleep(10 * time.Millisecond)
	c.Shutdown()

	select {
	case err := <-doneCh:
		if err != nil {
			t.Fatalf("Initialize returned error: %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Initialize did not return after Shutdown")
	}
}

func TestCollectorShutdownIdempotent(t *testing.T) {
	probe := newFakeProbe()
	c, err := NewCollector(probe)
	if err != nil {
		t.Fatalf("NewCollector: %v", err)
	}
	go c.Initialize(context.Background(), func(Event) {})
	time.Sleep(10 * time.Millisecond)
	c.Shutdown()
	c.Shutdown() // must not panic
}
