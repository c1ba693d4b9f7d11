package config

import (
	"testing"
	"time"
)

func TestPort(t *testing.T) {
	t.Setenv("TEST_PORT", "8091")
	if p, err := Port("TEST_PORT", "1"); err != nil || p != "8091" {
		t.Fatalf("expected 8091, got %q (%v)", p, err)
	}
	t.Setenv("TEST_PORT", "70000")
	if _, err := Port("TEST_PORT", "1"); err == nil {
		t.Fatal("expected error for out-of-range port")
	}
}

func TestIntAndDuration(t *testing.T) {
	if n, err := Int("TEST_UNSET_INT", 7); err != nil || n != 7 {
		t.Fatalf("expected fallback 7, got %d (%v)", n, err)
	}
	t.Setenv("TEST_INT", "-3")
	if _, err := Int("TEST_INT", 1); err == nil {
		t.Fatal("expected error for negative int")
	}
	t.Setenv("TEST_INT", "0")
	if n, err := IntAtLeast("TEST_INT", 5, 0); err != nil || n != 0 {
		t.Fatalf("expected 0 to be accepted with floor 0, got %d (%v)", n, err)
	}

	t.Setenv("TEST_DURATION", "90s")
	d, err := Duration("TEST_DURATION", time.Second)
	if err != nil || d != 90*time.Second {
		t.Fatalf("expected 90s, got %s (%v)", d, err)
	}
	t.Setenv("TEST_DURATION", "soon")
	if _, err := Duration("TEST_DURATION", time.Second); err == nil {
		t.Fatal("expected error for invalid duration")
	}
}

func TestBoolAndList(t *testing.T) {
	t.Setenv("TEST_BOOL", "off")
	if Bool("TEST_BOOL", true) {
		t.Fatal("expected off to be false")
	}
	if !Bool("TEST_UNSET_BOOL", true) {
		t.Fatal("expected fallback true")
	}

	t.Setenv("TEST_LIST", " a, ,b ,c")
	got := List("TEST_LIST")
	if len(got) != 3 || got[0] != "a" || got[1] != "b" || got[2] != "c" {
		t.Fatalf("expected [a b c], got %v", got)
	}
}
