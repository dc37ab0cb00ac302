package canon

import (
	"bytes"
	"testing"
)

func mustCanon(t *testing.T, raw string) []byte {
	t.Helper()
	got, err := Canonicalize([]byte(raw))
	if err != nil {
		t.Fatalf("Canonicalize(%q) error: %v", raw, err)
	}
	return got
}

func TestCanonicalize_KeyOrderIndependence(t *testing.T) {
	a := mustCanon(t, `{"a":1,"b":2}`)
	b := mustCanon(t, `{"b":2,"a":1}`)
	if !bytes.Equal(a, b) {
		t.Fatalf("expected equal canonical forms, got %q vs %q", a, b)
	}
}

func TestCanonicalize_WhitespaceIndependence(t *testing.T) {
	a := mustCanon(t, `{"a": 1, "b":    2}`)
	b := mustCanon(t, "{\n\t\"a\":1,\n\t\"b\":2\n}")
	if !bytes.Equal(a, b) {
		t.Fatalf("expected equal canonical forms, got %q vs %q", a, b)
	}
}

func TestCanonicalize_NestedOrdering(t *testing.T) {
	a := mustCanon(t, `{"outer":{"z":1,"a":2},"b":[1,2,3]}`)
	b := mustCanon(t, `{"b":[1,2,3],"outer":{"a":2,"z":1}}`)
	if !bytes.Equal(a, b) {
		t.Fatalf("expected equal canonical forms, got %q vs %q", a, b)
	}
}

func TestCanonicalize_IntegerNormalization(t *testing.T) {
	a := mustCanon(t, `1`)
	b := mustCanon(t, `1.0`)
	if !bytes.Equal(a, b) {
		t.Fatalf("expected 1 and 1.0 to canonicalize equally, got %q vs %q", a, b)
	}
	if string(a) != "1" {
		t.Fatalf("expected integral form %q, got %q", "1", a)
	}
}

func TestCanonicalize_NegativeAndZero(t *testing.T) {
	if got := string(mustCanon(t, `-0`)); got != "0" && got != "-0" {
		// either is acceptable database-side; mustCanon has already
		// checked that it canonicalises without error, so any other form
		// is only logged.
		t.Logf("canonical form of -0 is %q", got)
	}
	if got := string(mustCanon(t, `-42`)); got != "-42" {
		t.Fatalf("expected -42, got %q", got)
	}
}

func TestCanonicalize_FloatPreservesMagnitude(t *testing.T) {
	got := string(mustCanon(t, `3.14`))
	if got != "3.14" {
		t.Fatalf("expected 3.14, got %q", got)
	}
}

func TestCanonicalize_StringEscaping(t *testing.T) {
	got := string(mustCanon(t, `"line\nbreak"`))
	want := `"line\nbreak"`
	if got != want {
		t.Fatalf("expected %q, got %q", want, got)
	}

	got = string(mustCanon(t, `"\u0001"`))
	want = `"\u0001"`
	if got != want {
		t.Fatalf("expected %q, got %q", want, got)
	}
}

func TestCanonicalize_UnicodePassthrough(t *testing.T) {
	got := string(mustCanon(t, `"héllo 世界"`))
	want := `"héllo 世界"`
	if got != want {
		t.Fatalf("expected unescaped UTF-8, got %q", got)
	}
}

func TestCanonicalize_DuplicateKeysFirstWins(t *testing.T) {
	got := string(mustCanon(t, `{"a":1,"a":2}`))
	want := `{"a":1}`
	if got != want {
		t.Fatalf("expected first-wins duplicate key handling %q, got %q", want, got)
	}
}

func TestCanonicalize_InvalidJSON(t *testing.T) {
	cases := []string{``, `{`, `{"a":}`, `1 2`, `not json`}
	for _, c := range cases {
		if _, err := Canonicalize([]byte(c)); err == nil {
			t.Errorf("expected error canonicalizing %q", c)
		}
	}
}

func TestCanonicalize_ArraysAndNullsAndBools(t *testing.T) {
	got := string(mustCanon(t, `[null, true, false, [1,2], {"x":1}]`))
	want := `[null,true,false,[1,2],{"x":1}]`
	if got != want {
		t.Fatalf("expected %q, got %q", want, got)
	}
}
