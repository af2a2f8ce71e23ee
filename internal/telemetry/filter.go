package telemetry

import (
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"
)

// BlacklistPredicate decides whether a process identified by pid and its
// comm should be suppressed. Returns true to blacklist. The default
// implementation (NewPatternPredicate) ports bootstrap-filter.h's
// should_blacklist_process; callers may substitute their own.
type BlacklistPredicate func(pid uint32, comm string) bool

// ConfigWriter is the write side of the config map: the PID filter mirrors
// a bounded subset of its blacklist into it so the kernel can short-circuit
// events before they ever reach the ring (spec.md §4.6). Implemented by
// internal/probe against a real kernel map; faked in tests.
type ConfigWriter interface {
	SetConfig(key uint32, value uint64) error
}

// Config map keys, from bootstrap.templ.h.
const (
	ConfigPIDBlacklistBase = 0
	MaxBlacklistEntries    = 32
	ConfigDebugEnabled     = 32
	ConfigSystemBootNS     = 33
)

// Filter maintains the blacklist/whitelist described in spec.md §4.6:
// pids are classified on exec via a configurable predicate, invalidated on
// re-exec (PID reuse), and dropped on exit. It is not safe for concurrent
// use — the reassembler's single drain thread is its only caller.
type Filter struct {
	blacklist map[uint32]bool
	whitelist map[uint32]bool
	predicate BlacklistPredicate
	mirror    ConfigWriter // nil disables kernel-side mirroring
}

// NewFilter returns a Filter pre-seeded with the blacklist
// {0, 1, 2, os.Getpid()} per spec.md §3. mirror may be nil to disable
// publishing the blacklist into the kernel config map.
func NewFilter(predicate BlacklistPredicate, mirror ConfigWriter) *Filter {
	f := &Filter{
		blacklist: make(map[uint32]bool),
		whitelist: make(map[uint32]bool),
		predicate: predicate,
		mirror:    mirror,
	}
	for _, pid := range []uint32{0, 1, 2, uint32(os.Getpid())} {
		f.blacklist[pid] = true
	}
	return f
}

// Observe updates filter state for one header's (pid, ppid, event type) and
// reports whether the event should be suppressed. It must be called for
// every header, including ones that will be dropped, so exec/exit
// transitions are never missed.
func (f *Filter) Observe(h Header) (suppress bool) {
	pid := h.Pid
	switch h.EventType {
	case EventProcessExec:
		delete(f.blacklist, pid)
		delete(f.whitelist, pid)
		if f.predicate != nil && f.predicate(pid, h.CommString()) {
			f.blacklist[pid] = true
		} else {
			f.whitelist[pid] = true
		}
		f.syncMirror()
	case EventProcessExit:
		defer func() {
			delete(f.blacklist, pid)
			delete(f.whitelist, pid)
		}()
	}
	return f.blacklist[pid] || f.blacklist[h.Ppid]
}

// syncMirror publishes the first MaxBlacklistEntries blacklist pids,
// sorted ascending, into the config map as CONFIG_PID_BLACKLIST_0.., padded
// with zero sentinels, per spec.md §4.6. No-op if mirroring is disabled.
func (f *Filter) syncMirror() {
	if f.mirror == nil {
		return
	}
	pids := make([]uint32, 0, len(f.blacklist))
	for pid := range f.blacklist {
		pids = append(pids, pid)
	}
	sort.Slice(pids, func(i, j int) bool { return pids[i] < pids[j] })
	if len(pids) > MaxBlacklistEntries {
		pids = pids[:MaxBlacklistEntries]
	}
	for i := 0; i < MaxBlacklistEntries; i++ {
		var v uint64
		if i < len(pids) {
			v = uint64(pids[i])
		}
		f.mirror.SetConfig(ConfigPIDBlacklistBase+uint32(i), v)
	}
}

// defaultBlacklistPatterns is the configurable name/cmdline substring list
// NewPatternPredicate matches against, case-insensitively.
var defaultBlacklistPatterns = []string{"tracer", "containerd-shim"}

// NewPatternPredicate returns a BlacklistPredicate matching comm, falling
// back to /proc/<pid>/cmdline, against patterns (case-insensitive
// substring). An empty cmdline never blacklists. Ports
// bootstrap-filter.h's should_blacklist_process.
func NewPatternPredicate(patterns []string) BlacklistPredicate {
	if patterns == nil {
		patterns = defaultBlacklistPatterns
	}
	lower := make([]string, len(patterns))
	for i, p := range patterns {
		lower[i] = strings.ToLower(p)
	}
	return func(pid uint32, comm string) bool {
		if matchesAny(strings.ToLower(comm), lower) {
			return true
		}
		cmdline := readCmdline(pid)
		if cmdline == "" {
			return false
		}
		return matchesAny(strings.ToLower(cmdline), lower)
	}
}

func matchesAny(s string, patterns []string) bool {
	for _, p := range patterns {
		if p != "" && strings.Contains(s, p) {
			return true
		}
	}
	return false
}

// readCmdline reads /proc/<pid>/cmdline and replaces its NUL separators
// with spaces, as bootstrap-filter.h's get_cmdline does.
func readCmdline(pid uint32) string {
	raw, err := os.ReadFile(fmt.Sprintf("/proc/%s/cmdline", strconv.FormatUint(uint64(pid), 10)))
	if err != nil {
		return ""
	}
	return strings.TrimSpace(strings.ReplaceAll(string(raw), "\x00", " "))
}
