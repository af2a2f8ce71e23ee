package telemetry

import "fmt"

// ArenaEntrySize and ArenaEntriesPerCPU are the per-CPU payload arena
// layout constants, taken from bootstrap.templ.h
// (PAYLOAD_BUFFER_ENTRY_SIZE, PAYLOAD_BUFFER_N_ENTRIES_PER_CPU): 64-byte
// entries, 16384 per CPU, for a 1 MiB-per-CPU arena.
const (
	ArenaEntrySize     = 64
	ArenaEntriesPerCPU = 16 * 1024
	bytesPerCPU        = ArenaEntrySize * ArenaEntriesPerCPU
)

// ArenaReader is the read side of the per-CPU payload arena: a key→value
// lookup over a BPF array map, keyed globally so CPU c owns keys
// [c*ArenaEntriesPerCPU, (c+1)*ArenaEntriesPerCPU). Implemented by
// internal/probe against a real kernel map; faked in tests.
type ArenaReader interface {
	// LookupEntry returns the ArenaEntrySize bytes stored at the given
	// global arena key. ok is false if the lookup fails.
	LookupEntry(key uint32) (entry [ArenaEntrySize]byte, ok bool)
}

// resolveSlice copies the byte range [start, end) of cpu's arena band into
// a freshly allocated scratch buffer, following spec.md §4.5 step 4: entry
// count is computed modulo the per-CPU capacity so a producer wraparound
// between start and end is handled transparently, and each entry is copied
// out of the arena map individually (the arena is not addressable as a
// single flat slice; it is backed by discrete map lookups).
//
// start and end are CPU-local entry indices (not byte offsets) in
// [0, ArenaEntriesPerCPU). Their difference, taken modulo ArenaEntriesPerCPU,
// is the number of entries in the slice; zero means a header-only event.
func resolveSlice(r ArenaReader, cpu uint32, start, end uint32) ([]byte, error) {
	entries := int((uint64(end) + ArenaEntriesPerCPU - uint64(start)) % ArenaEntriesPerCPU)
	if entries == 0 {
		return nil, nil
	}
	cpuBase := cpu * ArenaEntriesPerCPU
	out := make([]byte, 0, entries*ArenaEntrySize)
	for i := 0; i < entries; i++ {
		idx := (start + uint32(i)) % ArenaEntriesPerCPU
		entry, ok := r.LookupEntry(cpuBase + idx)
		if !ok {
			return nil, fmt.Errorf("telemetry: arena lookup miss at cpu %d entry %d", cpu, idx)
		}
		out = append(out, entry[:]...)
	}
	return out, nil
}

// splitGlobalIndices derives the owning CPU and that CPU's local entry
// range from the global start/end indices the wire header carries,
// following bootstrap.c:handle_header_flush's arithmetic exactly:
//
//	cpu_base     = raw_start - (raw_start % per_cpu)
//	start_in_cpu = raw_start % per_cpu
//	end_in_cpu   = raw_end % per_cpu
//
// The header has no CPU field of its own; raw_start's high bits (above the
// per-CPU modulus) are the CPU index, since the kernel's payload array is
// laid out as per_cpu-sized bands, one per CPU, addressed by a single
// global entry index.
func splitGlobalIndices(rawStart, rawEnd uint32) (cpu, startInCPU, endInCPU uint32) {
	cpu = rawStart / ArenaEntriesPerCPU
	startInCPU = rawStart % ArenaEntriesPerCPU
	endInCPU = rawEnd % ArenaEntriesPerCPU
	return cpu, startInCPU, endInCPU
}

// sliceByteOffset translates an absolute arena byte index into an offset
// within a scratch buffer produced by resolveSlice for the given start
// entry index, following spec.md §4.5 step 6b: wraparound is handled
// modulo bytesPerCPU, since the absolute index is itself expressed modulo
// the CPU's byte capacity.
func sliceByteOffset(scratchStartByte uint32, absoluteByteIndex uint32) uint32 {
	return (absoluteByteIndex + bytesPerCPU - scratchStartByte) % bytesPerCPU
}
