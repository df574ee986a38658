package domain

import (
	"errors"
	"fmt"
	"testing"
)

func TestErrorKinds(t *testing.T) {
	cases := []struct {
		err  error
		want ErrorKind
	}{
		{Validationf("bad input"), KindValidation},
		{Statef("report closed"), KindState},
		{Authf("no permission"), KindAuth},
		{NotFoundf("missing"), KindNotFound},
		{Infraf("disk full"), KindInfra},
		{RuleViolationError{}, KindValidation},
		{errors.New("plain"), KindInfra},
		{fmt.Errorf("wrapped: %w", NotFoundf("inner")), KindNotFound},
	}
	for i, c := range cases {
		if got := KindOf(c.err); got != c.want {
			t.Fatalf("case %d: KindOf = %q, want %q", i, got, c.want)
		}
		if !IsKind(c.err, c.want) {
			t.Fatalf("case %d: IsKind false", i)
		}
	}
}

func TestErrorFieldsSortedInMessage(t *testing.T) {
	err := Validationf("organization incomplete").
		WithField("team", "required").
		WithField("institution", "required")
	msg := err.Error()
	want := "validation: organization incomplete (institution: required; team: required)"
	if msg != want {
		t.Fatalf("message = %q, want %q", msg, want)
	}
}

func TestIsKindNil(t *testing.T) {
	if IsKind(nil, KindInfra) {
		t.Fatalf("nil error must not match any kind")
	}
}
