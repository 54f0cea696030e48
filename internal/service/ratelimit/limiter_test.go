package ratelimit

import "testing"

func TestAllowConsumesTokens(t *testing.T) {
	l := New()
	for i := 0; i < 3; i++ {
		if !l.Allow("BRENT", 3, 0) {
			t.Fatalf("expected token %d to be granted", i)
		}
	}
	if l.Allow("BRENT", 3, 0) {
		t.Fatalf("expected bucket to be drained")
	}
}

func TestAllowKeysAreIndependent(t *testing.T) {
	l := New()
	if !l.Allow("a", 1, 0) {
		t.Fatalf("first key should have a token")
	}
	if !l.Allow("b", 1, 0) {
		t.Fatalf("second key must not share the first bucket")
	}
	if l.Allow("a", 1, 0) {
		t.Fatalf("first bucket should be empty")
	}
}
