package uuid

import (
	"strings"
	"testing"
)

func TestNew(t *testing.T) {
	id := New()
	if !IsValid(id) {
		t.Fatalf("expected valid uuid, got %q", id)
	}
	if id[14] != '7' {
		t.Errorf("expected version 7, got %q", id)
	}

	// Time-ordered: a later id sorts after an earlier one.
	first := New()
	for i := 0; i < 5; i++ {
		next := New()
		if next[:8] < first[:8] {
			t.Errorf("expected timestamp prefix to be non-decreasing: %s then %s", first, next)
		}
	}
}

func TestShort(t *testing.T) {
	id := "0190a1b2-c3d4-7e5f-8a9b-0c1d2e3f4a5b"
	if got := Short(id, 8); got != "0190a1b2" {
		t.Errorf("expected 0190a1b2, got %s", got)
	}
	if got := Short("abc", 8); got != "abc" {
		t.Errorf("expected abc, got %s", got)
	}
}

func TestCode(t *testing.T) {
	code := Code(8)
	if len(code) != 8 {
		t.Fatalf("expected 8 chars, got %q", code)
	}
	if code != strings.ToUpper(code) {
		t.Errorf("expected upper case, got %q", code)
	}
	if Code(8) == Code(8) {
		t.Error("expected distinct codes")
	}
}
