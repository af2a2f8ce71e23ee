package telemetry

import "encoding/binary"

// HeaderSize is the wire size in bytes of one ring-buffer record, matching
// bootstrap.templ.h's packed `struct event_header_kernel` field-for-field:
//
//	payload.start_index  u32   offset 0
//	payload.end_index    u32   offset 4
//	event_type            u32  offset 8
//	timestamp_ns           u64 offset 12
//	pid                    u32 offset 20
//	ppid                   u32 offset 24
//	upid                   u64 offset 28
//	uppid                  u64 offset 36
//	comm                   [16]byte offset 44
//
// Go's usual struct layout would insert 4 bytes of padding before the u64
// fields that follow u32 fields, which the C compiler's
// __attribute__((packed)) struct does not have; so the header is decoded by
// explicit byte offset rather than by declaring a naturally-aligned Go
// struct and calling encoding/binary.Read on it.
const HeaderSize = 60

const (
	offStartIndex  = 0
	offEndIndex    = 4
	offEventType   = 8
	offTimestampNS = 12
	offPid         = 20
	offPpid        = 24
	offUpid        = 28
	offUppid       = 36
	offComm        = 44
)

// Header is the user-space representation of one ring-buffer record. It
// carries identity, timing, and a payload locator, but no payload bytes —
// those live in the per-CPU arena and are resolved separately (arena.go).
type Header struct {
	StartIndex  uint32
	EndIndex    uint32
	EventType   EventType
	TimestampNS uint64
	Pid         uint32
	Ppid        uint32
	Upid        uint64
	Uppid       uint64
	Comm        [16]byte
}

// decodeHeader parses a HeaderSize-byte little-endian record into a Header.
// It reports false if buf is shorter than HeaderSize.
func decodeHeader(buf []byte) (Header, bool) {
	if len(buf) < HeaderSize {
		return Header{}, false
	}
	var h Header
	h.StartIndex = binary.LittleEndian.Uint32(buf[offStartIndex:])
	h.EndIndex = binary.LittleEndian.Uint32(buf[offEndIndex:])
	h.EventType = EventType(binary.LittleEndian.Uint32(buf[offEventType:]))
	h.TimestampNS = binary.LittleEndian.Uint64(buf[offTimestampNS:])
	h.Pid = binary.LittleEndian.Uint32(buf[offPid:])
	h.Ppid = binary.LittleEndian.Uint32(buf[offPpid:])
	h.Upid = binary.LittleEndian.Uint64(buf[offUpid:])
	h.Uppid = binary.LittleEndian.Uint64(buf[offUppid:])
	copy(h.Comm[:], buf[offComm:offComm+16])
	return h, true
}

// encodeHeader is the inverse of decodeHeader, used by tests to build
// synthetic ring records without depending on a real kernel object.
func encodeHeader(h Header) []byte {
	buf := make([]byte, HeaderSize)
	binary.LittleEndian.PutUint32(buf[offStartIndex:], h.StartIndex)
	binary.LittleEndian.PutUint32(buf[offEndIndex:], h.EndIndex)
	binary.LittleEndian.PutUint32(buf[offEventType:], uint32(h.EventType))
	binary.LittleEndian.PutUint64(buf[offTimestampNS:], h.TimestampNS)
	binary.LittleEndian.PutUint32(buf[offPid:], h.Pid)
	binary.LittleEndian.PutUint32(buf[offPpid:], h.Ppid)
	binary.LittleEndian.PutUint64(buf[offUpid:], h.Upid)
	binary.LittleEndian.PutUint64(buf[offUppid:], h.Uppid)
	copy(buf[offComm:offComm+16], h.Comm[:])
	return buf
}

// CommString returns Comm as a string, truncated at the first NUL.
func (h Header) CommString() string {
	for i, b := range h.Comm {
		if b == 0 {
			return string(h.Comm[:i])
		}
	}
	return string(h.Comm[:])
}
