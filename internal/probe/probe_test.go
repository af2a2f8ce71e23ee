package probe

import "testing"

func TestTracepointsRosterComplete(t *testing.T) {
	want := map[string]bool{
		"sched_process_exec":            true,
		"sched_process_exit":            true,
		"sys_enter_openat":               true,
		"sys_exit_openat":                true,
		"sys_enter_read":                 true,
		"sys_exit_read":                  true,
		"sys_enter_write":                true,
		"sys_exit_write":                 true,
		"mm_vmscan_direct_reclaim_begin": true,
		"mark_victim":                    true,
		"psi_memstall_enter":             true,
	}
	got := make(map[string]bool, len(Tracepoints))
	for _, tp := range Tracepoints {
		if tp.Group == "" || tp.Name == "" || tp.Program == "" {
			t.Errorf("tracepoint %+v has an empty field", tp)
		}
		got[tp.Name] = true
	}
	for name := range want {
		if !got[name] {
			t.Errorf("expected tracepoint %q in the roster, not found", name)
		}
	}
	if len(got) != len(want) {
		t.Errorf("roster has %d distinct tracepoints, want %d", len(got), len(want))
	}
}
