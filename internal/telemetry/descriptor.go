package telemetry

// Descriptor is the inline 64-bit reference a fixed-size payload struct
// carries for each variable-length field (argv block, filename, write
// content). It packs an absolute arena byte index and a byte length:
//
//	descriptor = (byteIndex << 32) | byteLength
//
// A zero descriptor means the field is absent. This is the index/length
// encoding spec.md §4.4 adopts; see the chain-encoding note below for why
// the alternative is not implemented here.
type Descriptor uint64

// ZeroDescriptor is the "field absent" sentinel.
const ZeroDescriptor Descriptor = 0

// NewDescriptor packs an absolute arena byte index and length into a
// Descriptor.
func NewDescriptor(byteIndex uint32, byteLength uint32) Descriptor {
	return Descriptor(uint64(byteIndex)<<32 | uint64(byteLength))
}

// ByteIndex returns the absolute arena byte offset the descriptor points at.
func (d Descriptor) ByteIndex() uint32 {
	return uint32(d >> 32)
}

// ByteLength returns the number of bytes the descriptor covers.
func (d Descriptor) ByteLength() uint32 {
	return uint32(d)
}

// IsAbsent reports whether d refers to an empty field. A zero byte length
// means "field absent" regardless of the index half, matching spec.md
// §4.5's edge case: a descriptor with byte_length == 0 must never be
// treated as a non-empty field with a null pointer.
func (d Descriptor) IsAbsent() bool {
	return d.ByteLength() == 0
}

// Chain-encoding note (spec.md §4.4, resolved per SPEC_FULL's Open Question
// notes): an alternative encoding, `[is_final:1][order:16][size:47]` with
// non-final nodes followed by an 8-byte chain-next descriptor, exists for
// payloads that exceed one arena page and therefore cannot be referenced by
// a single contiguous index/length pair. This port's arena is sized so that
// the largest captured field (write-content capture, capped at 32 KiB by
// WRITE_CONTENT_MAX_SIZE in bpf/tracer.bpf.c)
// fits in a single contiguous region, so no dynamic field ever needs to
// span a chain; the chain encoding is therefore not implemented, only
// documented here for fidelity to the source material.
