package telemetry

import "testing"

func TestDescriptorPackUnpack(t *testing.T) {
	cases := []struct {
		index, length uint32
	}{
		{0, 0},
		{1, 1},
		{0x1234, 384},
		{0xFFFFFFFF, 0xFFFFFFFF},
	}
	for _, c := range cases {
		d := NewDescriptor(c.index, c.length)
		if got := d.ByteIndex(); got != c.index {
			t.Errorf("NewDescriptor(%d, %d).ByteIndex() = %d, want %d", c.index, c.length, got, c.index)
		}
		if got := d.ByteLength(); got != c.length {
			t.Errorf("NewDescriptor(%d, %d).ByteLength() = %d, want %d", c.index, c.length, got, c.length)
		}
	}
}

func TestDescriptorIsAbsent(t *testing.T) {
	if !ZeroDescriptor.IsAbsent() {
		t.Fatal("ZeroDescriptor must report IsAbsent")
	}
	if NewDescriptor(0, 1).IsAbsent() {
		t.Fatal("a descriptor with nonzero length must not report IsAbsent")
	}
	if !NewDescriptor(1, 0).IsAbsent() {
		t.Fatal("a descriptor with zero length must report IsAbsent even with a nonzero index")
	}
}
