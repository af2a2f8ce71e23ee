package telemetry

import "encoding/binary"

// Payload is the materialized, typed view of an event's payload bytes. It
// stands in for the C source's `union` of per-event-type structs: Go has no
// tagged union, so every possible field is a member here and EventType says
// which are meaningful, exactly the tagged-variant shape spec.md's own
// design notes recommend for a Go port. Only the fields relevant to Header.EventType
// are populated; the rest are left at their zero value.
type Payload struct {
	// process_exec
	Argv []string
	Env  map[string]string

	// process_exit
	ExitCode   int32
	ExitSignal int32

	// openat enter/exit
	Dfd      int32
	Filename string
	Flags    int32
	Mode     uint32
	Fd       int32

	// read/write enter
	Count        uint64
	WriteContent []byte
}

// fixedSize returns the compile-time size in bytes of an event type's fixed
// (non-dynamic) payload struct, taken from the reference layouts in
// bootstrap.templ.h's payload_structs section. Event types with no fixed
// struct (the bare markers) return 0.
func fixedSize(t EventType) int {
	switch t {
	case EventProcessExec:
		return 16 // argv descriptor u64 + env descriptor u64
	case EventProcessExit:
		return 8 // exit_code int32 + exit_signal int32
	case EventSysEnterOpenat:
		return 20 // dfd int32 + filename descriptor u64 + flags int32 + mode u32
	case EventSysExitOpenat:
		return 4 // fd int32
	case EventSysEnterRead:
		return 12 // fd int32 + count u64
	case EventSysEnterWrite:
		return 20 // fd int32 + count u64 + content descriptor u64
	case EventVMScanDirectReclaimBegin, EventPSIMemstallEnter:
		return 4 // context marker u32
	case EventOOMMarkVictim:
		return 0
	default:
		return 0
	}
}

// decodeFixed parses the fixed-size prefix of a resolved payload slice into
// scalar fields on a Payload, returning the trailing descriptors it
// declares (in field-declaration order) so the reassembler can resolve
// dynamic fields uniformly across event types.
//
// Only the scalar portion is populated here; dynamic fields (argv,
// filename, write content) are filled in by the reassembler after
// resolving each returned descriptor.
func decodeFixed(t EventType, buf []byte) (Payload, []Descriptor, bool) {
	need := fixedSize(t)
	if len(buf) < need {
		return Payload{}, nil, false
	}
	var p Payload
	switch t {
	case EventProcessExec:
		argvDesc := Descriptor(binary.LittleEndian.Uint64(buf[0:8]))
		envDesc := Descriptor(binary.LittleEndian.Uint64(buf[8:16]))
		return p, []Descriptor{argvDesc, envDesc}, true
	case EventProcessExit:
		p.ExitCode = int32(binary.LittleEndian.Uint32(buf[0:4]))
		p.ExitSignal = int32(binary.LittleEndian.Uint32(buf[4:8]))
		return p, nil, true
	case EventSysEnterOpenat:
		p.Dfd = int32(binary.LittleEndian.Uint32(buf[0:4]))
		filenameDesc := Descriptor(binary.LittleEndian.Uint64(buf[4:12]))
		p.Flags = int32(binary.LittleEndian.Uint32(buf[12:16]))
		p.Mode = binary.LittleEndian.Uint32(buf[16:20])
		return p, []Descriptor{filenameDesc}, true
	case EventSysExitOpenat:
		p.Fd = int32(binary.LittleEndian.Uint32(buf[0:4]))
		return p, nil, true
	case EventSysEnterRead:
		p.Fd = int32(binary.LittleEndian.Uint32(buf[0:4]))
		p.Count = binary.LittleEndian.Uint64(buf[4:12])
		return p, nil, true
	case EventSysEnterWrite:
		p.Fd = int32(binary.LittleEndian.Uint32(buf[0:4]))
		p.Count = binary.LittleEndian.Uint64(buf[4:12])
		contentDesc := Descriptor(binary.LittleEndian.Uint64(buf[12:20]))
		return p, []Descriptor{contentDesc}, true
	default:
		return p, nil, true
	}
}
