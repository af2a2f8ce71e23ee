// Package telemetry implements the kernel-to-user event pipeline: header
// decoding, payload-arena resolution, dynamic-field descriptors, PID
// filtering, clock alignment, and event-id assignment. It knows nothing
// about how a BPF program is loaded or attached — see package probe for
// that — so it can be exercised in tests with fake ring and arena readers.
package telemetry

import "fmt"

// EventType is the closed numeric enumeration of event kinds the kernel
// program can emit. Values are stable across releases; new variants must be
// appended with new numbers rather than reusing or renumbering existing
// ones, since the same values appear in a compiled BPF object this package
// never controls.
type EventType uint32

// Reference numbering (spec.md §6). Values are arbitrary but fixed.
const (
	EventProcessExec EventType = 0
	EventProcessExit EventType = 1

	EventSysEnterOpenat EventType = 1024
	EventSysExitOpenat  EventType = 1025
	EventSysEnterRead   EventType = 1026
	EventSysExitRead    EventType = 1027
	EventSysEnterWrite  EventType = 1028
	EventSysExitWrite   EventType = 1029

	EventVMScanDirectReclaimBegin EventType = 2048
	EventPSIMemstallEnter         EventType = 2049

	EventOOMMarkVictim EventType = 3072
)

var eventTypeNames = map[EventType]string{
	EventProcessExec:              "process_exec",
	EventProcessExit:              "process_exit",
	EventSysEnterOpenat:           "sys_enter_openat",
	EventSysExitOpenat:            "sys_exit_openat",
	EventSysEnterRead:             "sys_enter_read",
	EventSysExitRead:              "sys_exit_read",
	EventSysEnterWrite:            "sys_enter_write",
	EventSysExitWrite:             "sys_exit_write",
	EventVMScanDirectReclaimBegin: "vmscan_direct_reclaim_begin",
	EventPSIMemstallEnter:         "psi_memstall_enter",
	EventOOMMarkVictim:            "oom_mark_victim",
}

// String renders a human-readable name for t, or "unknown(<n>)" for a value
// outside the closed enumeration — which indicates version skew between the
// kernel object and this package and must be surfaced, never silently
// dropped (spec.md §6).
func (t EventType) String() string {
	if name, ok := eventTypeNames[t]; ok {
		return name
	}
	return fmt.Sprintf("unknown(%d)", uint32(t))
}

// Known reports whether t is a member of the closed enumeration.
func (t EventType) Known() bool {
	_, ok := eventTypeNames[t]
	return ok
}
