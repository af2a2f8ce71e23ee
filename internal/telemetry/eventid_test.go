package telemetry

import "testing"

func TestEventIDGeneratorStrictlyIncreasing(t *testing.T) {
	g := NewEventIDGenerator()
	prev := g.Next()
	for i := 0; i < 1000; i++ {
		next := g.Next()
		if next <= prev {
			t.Fatalf("event ids must strictly increase: %d then %d", prev, next)
		}
		prev = next
	}
}

func TestEventIDGeneratorsHaveDistinctBases(t *testing.T) {
	a := NewEventIDGenerator().Next()
	b := NewEventIDGenerator().Next()
	if a == b {
		t.Fatal("two independently seeded generators produced the same first id; random base is not varying")
	}
}
