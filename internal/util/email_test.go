package util

import "testing"

func TestNormalizeEmail(t *testing.T) {
	cases := map[string]string{
		"":                          "",
		"  a@b.com ":                "a@b.com",
		"Alice@Example.COM":         "Alice@example.com",
		"Alice <Alice@Example.COM>": "Alice@example.com",
		"not-an-address":            "not-an-address",
		"trailing@":                 "trailing@",
	}
	for in, want := range cases {
		if got := NormalizeEmail(in); got != want {
			t.Errorf("NormalizeEmail(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestLooksLikeEmail(t *testing.T) {
	if !LooksLikeEmail("a@b.com") {
		t.Fatal("expected a@b.com to be accepted")
	}
	for _, s := range []string{"", "a", "a@", "Alice <a@b.com>"} {
		if LooksLikeEmail(s) {
			t.Errorf("expected %q to be rejected", s)
		}
	}
}

func TestNewIDMonotonic(t *testing.T) {
	prev := NewID()
	for i := 0; i < 100; i++ {
		next := NewID()
		if next <= prev {
			t.Fatalf("ids not increasing: %s then %s", prev, next)
		}
		prev = next
	}
}

func TestValidID(t *testing.T) {
	if id := NewID(); !ValidID(id) {
		t.Fatalf("NewID() = %q rejected", id)
	}
	for _, s := range []string{"", "01HZZZ", "01HZZZZZZZZZZZZZZZZZZZZZZZZ", "not-a-ulid-not-a-ulid-abcd"} {
		if ValidID(s) {
			t.Errorf("expected %q to be rejected", s)
		}
	}
}
