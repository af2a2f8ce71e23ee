package telemetry

import (
	"log/slog"
)

// RingReader is the read side of the header ring buffer: blocking-with-
// timeout delivery of raw HeaderSize-byte records. Implemented by
// internal/probe against cilium/ebpf's ringbuf reader; faked in tests.
type RingReader interface {
	// ReadHeader blocks until a header is available or the reader is
	// closed, in which case it returns ok == false.
	ReadHeader() (buf []byte, ok bool)
	Close() error
}

// Event is the fully materialized record delivered to a consumer callback:
// a decoded Header plus its resolved Payload and an assigned event id.
// The consumer must not retain Event.Payload's slice/map fields beyond the
// callback's return; copy them to persist (spec.md §6's callback
// contract).
type Event struct {
	ID      uint64
	Header  Header
	Payload Payload
}

// Callback is invoked once per delivered event, on the single drain
// goroutine. It must not block indefinitely and must not call
// Reassembler.Run or Collector.Initialize re-entrantly.
type Callback func(Event)

// Reassembler implements spec.md §4.5: for each ring header, it consults
// the PID filter, resolves the payload slice from the per-CPU arena,
// decodes the fixed struct, resolves any dynamic-field descriptors, assigns
// a monotonically increasing event id, and invokes the callback.
type Reassembler struct {
	ring   RingReader
	arena  ArenaReader
	filter *Filter
	ids    *EventIDGenerator
	log    *slog.Logger
}

// NewReassembler wires a Reassembler from its collaborators. log may be
// nil, in which case slog.Default() is used.
func NewReassembler(ring RingReader, arena ArenaReader, filter *Filter, ids *EventIDGenerator, log *slog.Logger) *Reassembler {
	if log == nil {
		log = slog.Default()
	}
	return &Reassembler{ring: ring, arena: arena, filter: filter, ids: ids, log: log}
}

// Run drains the ring until ReadHeader reports the reader closed, invoking
// cb for every event that survives filtering. It runs synchronously on the
// calling goroutine, matching spec.md §5's single-threaded drain loop; the
// caller is expected to run it in its own goroutine and stop it by closing
// the ring.
func (r *Reassembler) Run(cb Callback) {
	for {
		buf, ok := r.ring.ReadHeader()
		if !ok {
			return
		}
		r.handle(buf, cb)
	}
}

func (r *Reassembler) handle(buf []byte, cb Callback) {
	h, ok := decodeHeader(buf)
	if !ok {
		r.log.Warn("telemetry: dropping short header record", slog.Int("len", len(buf)))
		return
	}
	if !h.EventType.Known() {
		r.log.Warn("telemetry: unknown event type, possible version skew", slog.Any("event_type", h.EventType))
	}
	if r.filter.Observe(h) {
		return
	}

	id := r.ids.Next()

	cpu, startInCPU, endInCPU := splitGlobalIndices(h.StartIndex, h.EndIndex)

	slice, err := resolveSlice(r.arena, cpu, startInCPU, endInCPU)
	if err != nil {
		r.log.Warn("telemetry: arena resolution failed, delivering header-only event",
			slog.String("error", err.Error()), slog.Any("event_type", h.EventType))
		cb(Event{ID: id, Header: h})
		return
	}
	if slice == nil {
		cb(Event{ID: id, Header: h})
		return
	}

	payload, descs, ok := decodeFixed(h.EventType, slice)
	if !ok {
		r.log.Warn("telemetry: payload slice shorter than the fixed struct, delivering header-only event",
			slog.Any("event_type", h.EventType))
		cb(Event{ID: id, Header: h})
		return
	}

	startByte := startInCPU * ArenaEntrySize
	resolveDynamicFields(h.EventType, &payload, descs, slice, startByte)

	cb(Event{ID: id, Header: h, Payload: payload})
}

// resolveDynamicFields fills in the dynamic portions of payload (argv,
// filename, write content) from descs, in the same order decodeFixed
// returned them. On any bounds-check failure the corresponding field is
// left empty rather than aborting delivery (spec.md §4.5 step 6c).
func resolveDynamicFields(t EventType, payload *Payload, descs []Descriptor, slice []byte, sliceStartByte uint32) {
	get := func(d Descriptor) ([]byte, bool) {
		if d.IsAbsent() {
			return nil, false
		}
		off := sliceByteOffset(sliceStartByte, d.ByteIndex())
		length := d.ByteLength()
		if uint64(off)+uint64(length) > uint64(len(slice)) {
			return nil, false
		}
		return slice[off : off+length], true
	}

	switch t {
	case EventProcessExec:
		if len(descs) < 2 {
			return
		}
		if b, ok := get(descs[0]); ok {
			payload.Argv = splitNUL(b)
		}
		if b, ok := get(descs[1]); ok {
			payload.Env = parseEnvBlock(b)
		}
	case EventSysEnterOpenat:
		if len(descs) < 1 {
			return
		}
		if b, ok := get(descs[0]); ok {
			payload.Filename = trimNUL(b)
		}
	case EventSysEnterWrite:
		if len(descs) < 1 {
			return
		}
		if b, ok := get(descs[0]); ok {
			payload.WriteContent = append([]byte(nil), b...)
		}
	}
}

func splitNUL(b []byte) []string {
	var out []string
	start := 0
	for i, c := range b {
		if c == 0 {
			if i > start {
				out = append(out, string(b[start:i]))
			}
			start = i + 1
		}
	}
	if start < len(b) {
		out = append(out, string(b[start:]))
	}
	return out
}

func trimNUL(b []byte) string {
	for i, c := range b {
		if c == 0 {
			return string(b[:i])
		}
	}
	return string(b)
}

// parseEnvBlock splits a NUL-separated "KEY=VALUE" block (as produced by an
// environment-key scan during process_exec) into a map. Entries without an
// '=' are ignored.
func parseEnvBlock(b []byte) map[string]string {
	out := make(map[string]string)
	for _, kv := range splitNUL(b) {
		for i := 0; i < len(kv); i++ {
			if kv[i] == '=' {
				out[kv[:i]] = kv[i+1:]
				break
			}
		}
	}
	return out
}
