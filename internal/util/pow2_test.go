package util

import "testing"

func TestIsPowerOfTwo(t *testing.T) {
	t.Parallel()

	for _, x := range []uint64{1, 2, 4, 1 << 20, 1 << 63} {
		if !IsPowerOfTwo(x) {
			t.Fatalf("IsPowerOfTwo(%d) must be true", x)
		}
	}
	for _, x := range []uint64{0, 3, 6, (1 << 20) + 1} {
		if IsPowerOfTwo(x) {
			t.Fatalf("IsPowerOfTwo(%d) must be false", x)
		}
	}
}

func TestNextPow2(t *testing.T) {
	t.Parallel()

	cases := [][2]uint64{
		{0, 1}, {1, 1}, {2, 2}, {3, 4}, {4, 4}, {5, 8},
		{1000, 1024}, {1 << 40, 1 << 40}, {(1 << 40) + 1, 1 << 41},
	}
	for _, c := range cases {
		if got := NextPow2(c[0]); got != c[1] {
			t.Fatalf("NextPow2(%d) want %d, got %d", c[0], c[1], got)
		}
	}
	// Overflow clamps to the top 64-bit power of two.
	if got := NextPow2((1 << 63) + 1); got != 1<<63 {
		t.Fatalf("NextPow2 overflow clamp: got %d", got)
	}
}

func TestCeilLog2(t *testing.T) {
	t.Parallel()

	cases := []struct {
		in   uint32
		want uint
	}{
		{0, 0}, {1, 0}, {2, 1}, {3, 2}, {4, 2}, {5, 3},
		{1 << 16, 16}, {(1 << 16) + 1, 17}, {1<<31 + 1, 32}, {^uint32(0), 32},
	}
	for _, c := range cases {
		if got := CeilLog2(c.in); got != c.want {
			t.Fatalf("CeilLog2(%d) want %d, got %d", c.in, c.want, got)
		}
	}
}
