// SPDX-License-Identifier: MIT
// Copyright (c) 2026 pydist contributors
// Source: github.com/pydist/pydist

package pydist

import "testing"

func TestNormalizePermBits(t *testing.T) {
	t.Parallel()

	cases := []struct {
		mode int64
		want int64
	}{
		{0o644, 0o644},
		{0o600, 0o644},
		{0o664, 0o644},
		{0o444, 0o644},
		{0o755, 0o755},
		{0o700, 0o755},
		{0o777, 0o755},
		{0o4755, 0o755},
		{0o2644, 0o644},
		{0o1777, 0o755},
	}

	for _, tc := range cases {
		if got := normalizePermBits(tc.mode); got != tc.want {
			t.Fatalf("normalizePermBits(%o)=%o, want %o", tc.mode, got, tc.want)
		}
	}
}

func TestNormalizePermBits_Idempotent(t *testing.T) {
	t.Parallel()

	for mode := int64(0); mode <= 0o7777; mode++ {
		once := normalizePermBits(mode)
		if once != 0o644 && once != 0o755 {
			t.Fatalf("normalizePermBits(%o)=%o, want 0644 or 0755", mode, once)
		}

		if twice := normalizePermBits(once); twice != once {
			t.Fatalf("normalizePermBits(%o) not idempotent: %o then %o", mode, once, twice)
		}
	}
}

func TestNormalizeFileMode_KeepsTypeBits(t *testing.T) {
	t.Parallel()

	if got := normalizeFileMode(0o741); got != 0o755 {
		t.Fatalf("normalizeFileMode(0741)=%o, want 0755", got)
	}

	if got := normalizeFileMode(0o640); got != 0o644 {
		t.Fatalf("normalizeFileMode(0640)=%o, want 0644", got)
	}
}
