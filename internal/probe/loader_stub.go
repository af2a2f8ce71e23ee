// loader_stub.go — non-Linux stub for the probe package.
//
// On non-Linux platforms every exported symbol is available but NewProbe
// always returns ErrNotSupported, so callers can import the package
// unconditionally and branch on errors rather than on runtime.GOOS.

//go:build !linux

package probe

import (
	"log/slog"

	"github.com/tripwire/tracer/internal/telemetry"
)

// Loader is a no-op stub on non-Linux platforms.
type Loader struct{}

// NewProbe always returns ErrNotSupported on non-Linux platforms.
func NewProbe(_ string, _ *slog.Logger) (*Loader, error) {
	return nil, ErrNotSupported
}

// Ring, Arena, and Config return nil on non-Linux platforms.
func (l *Loader) Ring() telemetry.RingReader     { return nil }
func (l *Loader) Arena() telemetry.ArenaReader   { return nil }
func (l *Loader) Config() telemetry.ConfigWriter { return nil }

// Close is a no-op on non-Linux platforms.
func (l *Loader) Close() error { return nil }
