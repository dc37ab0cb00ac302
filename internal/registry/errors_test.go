package registry

import (
	"errors"
	"testing"
)

func TestScrubConnString_RedactsPassword(t *testing.T) {
	cases := map[string]string{
		"postgres://u:secret@h:5432/db":        "postgres://u:***@h:5432/db",
		"postgres://u:secret@h/db?sslmode=off": "postgres://u:***@h/db?sslmode=off",
		"not-a-url":                            "not-a-url",
		"postgres://nouserinfo.example.com/db": "postgres://nouserinfo.example.com/db",
	}
	for in, want := range cases {
		if got := scrubConnString(in); got != want {
			t.Errorf("scrubConnString(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestScrubConnString_NeverLeaksPasswordSubstring(t *testing.T) {
	got := scrubConnString("postgres://u:secret@h/db")
	if got == "" {
		t.Fatal("expected non-empty output")
	}
	for i := 0; i+len("secret") <= len(got); i++ {
		if got[i:i+len("secret")] == "secret" {
			t.Fatalf("scrubbed connection string still contains the password: %q", got)
		}
	}
}

func TestError_IsMatchesSentinelByKind(t *testing.T) {
	err := newError(KindPoolTimeout, "no connection available", nil)
	if !errors.Is(err, ErrPoolTimeout) {
		t.Fatalf("expected errors.Is(err, ErrPoolTimeout) to hold")
	}
	if errors.Is(err, ErrPoolClosed) {
		t.Fatalf("expected errors.Is(err, ErrPoolClosed) to be false")
	}
}

func TestValidateIdentifier_RejectsInjectionAttempt(t *testing.T) {
	err := validateIdentifier("t; DROP TABLE x --")
	if err == nil {
		t.Fatal("expected validation error")
	}
	var rerr *Error
	if !errors.As(err, &rerr) || rerr.Kind != KindInvalidIdentifier {
		t.Fatalf("expected KindInvalidIdentifier, got %v", err)
	}
}

func TestValidateIdentifier_AcceptsOrdinaryNames(t *testing.T) {
	for _, name := range []string{"t", "_t", "json_objects", "Col1"} {
		if err := validateIdentifier(name); err != nil {
			t.Errorf("expected %q to be valid, got error: %v", name, err)
		}
	}
}

func TestValidateIdentifier_RejectsTooLong(t *testing.T) {
	long := ""
	for i := 0; i < 64; i++ {
		long += "a"
	}
	if err := validateIdentifier(long); err == nil {
		t.Fatal("expected error for identifier exceeding 63 characters")
	}
}
