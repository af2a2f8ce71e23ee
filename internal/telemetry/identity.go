package telemetry

// pidMask and startNSMask select the low 24 bits of a pid and the low 40
// bits of a start-time-in-nanoseconds, respectively. Ported from
// bootstrap.bpf.c's make_upid: the kernel side computes upid with the same
// masks, and the two sides must agree exactly or upids generated in-kernel
// and upids recomputed here (e.g. in tests) would disagree.
const (
	pidMask    = 0x00FFFFFF
	startNSMask = 0x000000FFFFFFFFFF
)

// MakeUPID combines the low 24 bits of pid with the low 40 bits of startNS
// into a 64-bit identifier that survives PID reuse: two processes with
// distinct (pid, startNS) pairs produce distinct upids with overwhelming
// probability, and identical inputs always produce identical outputs
// (spec.md §3, §8).
func MakeUPID(pid uint32, startNS uint64) uint64 {
	return (uint64(pid&pidMask) << 40) | (startNS & startNSMask)
}
