// object_embed_linux.go — embedded BPF object variant.
//
// This file is compiled when the "bpf_embedded" build tag is set, which
// requires a pre-compiled tracer.bpf.o at the embed path, which is
// internal/probe/tracer.bpf.o (next to this file).
//
// Build sequence:
//
//	clang -O2 -g -target bpf -c bpf/tracer.bpf.c -o internal/probe/tracer.bpf.o
//	go build -tags bpf_embedded ./...
//
//go:build linux && bpf_embedded

package probe

import (
	_ "embed"
	"log/slog"
	"os"
)

//go:embed tracer.bpf.o
var embeddedBPFObject []byte

// NewEmbeddedProbe writes the embedded BPF object to a temp file and loads
// it via NewProbe, for callers that don't want to manage an on-disk object
// path themselves.
func NewEmbeddedProbe(log *slog.Logger) (*Loader, error) {
	f, err := os.CreateTemp("", "tracer-bpf-*.o")
	if err != nil {
		return nil, err
	}
	defer os.Remove(f.Name())
	if _, err := f.Write(embeddedBPFObject); err != nil {
		f.Close()
		return nil, err
	}
	if err := f.Close(); err != nil {
		return nil, err
	}
	return NewProbe(f.Name(), log)
}
