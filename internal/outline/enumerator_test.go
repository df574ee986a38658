package outline

import "testing"

func TestEnumeratorLevels(t *testing.T) {
	e := NewEnumerator()
	cases := []struct {
		level int
		want  string
	}{
		{1, "1"},
		{2, "1.1"},
		{3, "1.1.1"},
		{3, "1.1.2"},
		{2, "1.2"},
		{3, "1.2.1"},
		{1, "2"},
		{2, "2.1"},
		{0, "Figura 1"},
		{0, "Figura 2"},
		{1, "3"},
	}
	for i, c := range cases {
		got, err := e.Enumerate(c.level)
		if err != nil {
			t.Fatalf("case %d: %v", i, err)
		}
		if got != c.want {
			t.Fatalf("case %d: got %q want %q", i, got, c.want)
		}
	}
	if e.NextTop() != 4 {
		t.Fatalf("next top = %d, want 4", e.NextTop())
	}
	if e.FigureCount() != 2 {
		t.Fatalf("figure count = %d, want 2", e.FigureCount())
	}
}

func TestEnumeratorNonStrictAutoInit(t *testing.T) {
	e := NewEnumerator()
	got, err := e.Enumerate(3)
	if err != nil {
		t.Fatalf("enumerate: %v", err)
	}
	if got != "1.1.1" {
		t.Fatalf("got %q, want 1.1.1", got)
	}
}

func TestStrictEnumeratorRejectsDeepFirst(t *testing.T) {
	e := NewStrictEnumerator()
	if _, err := e.Enumerate(2); err == nil {
		t.Fatalf("expected error enumerating level 2 first")
	}
	if _, err := e.Enumerate(1); err != nil {
		t.Fatalf("level 1: %v", err)
	}
	if _, err := e.Enumerate(3); err == nil {
		t.Fatalf("expected error enumerating level 3 before 2")
	}
}

func TestEnumeratorInvalidLevel(t *testing.T) {
	e := NewEnumerator()
	if _, err := e.Enumerate(4); err == nil {
		t.Fatalf("expected error for level 4")
	}
}

func TestEnumeratorResets(t *testing.T) {
	e := NewEnumerator()
	_, _ = e.Enumerate(1)
	_, _ = e.Enumerate(0)

	e.ResetTitles()
	if got, _ := e.Enumerate(1); got != "1" {
		t.Fatalf("after title reset got %q", got)
	}
	if got, _ := e.Enumerate(0); got != "Figura 2" {
		t.Fatalf("title reset touched figures: %q", got)
	}

	e.ResetFigures()
	if got, _ := e.Enumerate(0); got != "Figura 1" {
		t.Fatalf("after figure reset got %q", got)
	}

	e.ResetAll()
	if got, _ := e.Enumerate(1); got != "1" {
		t.Fatalf("after full reset got %q", got)
	}
}
