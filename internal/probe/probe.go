// Package probe is the "adjacent service" spec.md §1 carves out of the
// core: choosing tracepoints and loading the compiled BPF object into the
// kernel. It hands internal/telemetry three live handles — a ring reader,
// an arena reader, a config-map writer — and knows nothing about header
// decoding, descriptor resolution, or PID filtering.
package probe

import "errors"

// ErrNotSupported is returned by NewProbe on non-Linux platforms. On Linux,
// load failures, including a kernel too old for ring buffers (< 5.8), are
// returned as wrapped errors from the BPF library instead.
var ErrNotSupported = errors.New("probe: eBPF tracing is only supported on Linux >= 5.8")

// Tracepoint names the spec.md §4.3 roster attaches to. Grouped by
// subsystem the way bootstrap.bpf.c's SEC() annotations are grouped.
type Tracepoint struct {
	Group   string
	Name    string
	Program string // name of the BPF program in the compiled object
}

// Tracepoints is the fixed roster this collector attaches, grounded on
// bootstrap.bpf.c's SEC("tracepoint/...") handlers.
var Tracepoints = []Tracepoint{
	{Group: "sched", Name: "sched_process_exec", Program: "handle_exec"},
	{Group: "sched", Name: "sched_process_exit", Program: "handle_exit"},
	{Group: "syscalls", Name: "sys_enter_openat", Program: "handle_openat_enter"},
	{Group: "syscalls", Name: "sys_exit_openat", Program: "handle_openat_exit"},
	{Group: "syscalls", Name: "sys_enter_read", Program: "handle_read_enter"},
	{Group: "syscalls", Name: "sys_exit_read", Program: "handle_read_exit"},
	{Group: "syscalls", Name: "sys_enter_write", Program: "handle_write_enter"},
	{Group: "syscalls", Name: "sys_exit_write", Program: "handle_write_exit"},
	{Group: "vmscan", Name: "mm_vmscan_direct_reclaim_begin", Program: "handle_vmscan_direct_reclaim_begin"},
	{Group: "oom", Name: "mark_victim", Program: "handle_oom_mark_victim"},
	{Group: "psi", Name: "psi_memstall_enter", Program: "handle_psi_memstall_enter"},
}
