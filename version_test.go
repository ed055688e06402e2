// SPDX-License-Identifier: MIT
// Copyright (c) 2026 pydist contributors
// Source: github.com/pydist/pydist

package pydist

import (
	"errors"
	"testing"
)

func TestNormalizeVersion(t *testing.T) {
	t.Parallel()

	cases := []struct {
		raw  string
		want string
	}{
		{"1.0", "1.0"},
		{"V1.0", "1.0"},
		{"1.01", "1.1"},
		{"4!1.0", "4!1.0"},
		{"04!1.0", "4!1.0"},
		{"1.01beta002", "1.1b2"},
		{"1.0alpha3", "1.0a3"},
		{"1.0-preview2", "1.0rc2"},
		{"1.0_c", "1.0rc0"},
		{"1.0rc1", "1.0rc1"},
		{"1.0-2", "1.0.post2"},
		{"1.0post2", "1.0.post2"},
		{"1.0rev2", "1.0.post2"},
		{"1.0.post", "1.0.post0"},
		{"1.0dev3", "1.0.dev3"},
		{"1.0-dev", "1.0.dev0"},
		{"1.0+ubuntu-01", "1.0+ubuntu.1"},
		{"1.0-alpha3-post02+ubuntu_xenial_5", "1.0a3.post2+ubuntu.xenial.5"},
	}

	for _, tc := range cases {
		got, err := normalizeVersion(tc.raw)
		if err != nil {
			t.Fatalf("normalizeVersion(%q): %v", tc.raw, err)
		}

		if got != tc.want {
			t.Fatalf("normalizeVersion(%q)=%q, want %q", tc.raw, got, tc.want)
		}
	}
}

func TestNormalizeVersion_Idempotent(t *testing.T) {
	t.Parallel()

	for _, raw := range []string{"1.01beta002", "1.0-alpha3-post02+ubuntu_xenial_5", "2!3.0.dev1"} {
		once, err := normalizeVersion(raw)
		if err != nil {
			t.Fatalf("normalizeVersion(%q): %v", raw, err)
		}

		twice, err := normalizeVersion(once)
		if err != nil {
			t.Fatalf("normalizeVersion(%q): %v", once, err)
		}

		if twice != once {
			t.Fatalf("normalizeVersion not idempotent: %q then %q", once, twice)
		}
	}
}

func TestNormalizeVersion_Invalid(t *testing.T) {
	t.Parallel()

	for _, raw := range []string{"abc", "3!", "1.0+", "1.0-alpha-dev-post"} {
		if _, err := normalizeVersion(raw); !errors.Is(err, ErrVersion) {
			t.Fatalf("normalizeVersion(%q) err=%v, want ErrVersion", raw, err)
		}
	}
}

func TestCheckVersion_Empty(t *testing.T) {
	t.Parallel()

	if _, err := CheckVersion("   "); !errors.Is(err, ErrVersion) {
		t.Fatalf("CheckVersion err=%v, want ErrVersion", err)
	}
}

func TestCheckVersion_Canonicalizes(t *testing.T) {
	t.Parallel()

	got, err := CheckVersion("1.01beta002")
	if err != nil {
		t.Fatalf("CheckVersion: %v", err)
	}

	if got != "1.1b2" {
		t.Fatalf("CheckVersion=%q, want 1.1b2", got)
	}
}
