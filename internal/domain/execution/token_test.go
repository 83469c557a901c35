package execution

import "testing"

func TestNewContinuationToken(t *testing.T) {
	tok, err := NewContinuationToken("tok-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if tok.String() != "tok-1" {
		t.Errorf("token value = %q", tok.String())
	}
	if tok.IsZero() {
		t.Error("token reported zero")
	}
}

func TestNewContinuationTokenRejectsEmpty(t *testing.T) {
	for _, v := range []string{"", "   ", "\n"} {
		if _, err := NewContinuationToken(v); err == nil {
			t.Errorf("value %q should be rejected", v)
		}
	}
}

func TestContinuationTokenEquals(t *testing.T) {
	a := MustContinuationToken("tok-1")
	b := MustContinuationToken("tok-1")
	c := MustContinuationToken("tok-2")

	if !a.Equals(b) {
		t.Error("identical tokens reported unequal")
	}
	if a.Equals(c) {
		t.Error("distinct tokens reported equal")
	}
	if a.Equals(ContinuationToken{}) {
		t.Error("token equal to zero value")
	}
}
