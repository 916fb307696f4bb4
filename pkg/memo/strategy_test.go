package memo

import (
	"testing"

	"github.com/evalgraph/evalgraph/pkg/task"
)

func TestNoop_NeverHitsNeverStores(t *testing.T) {
	tk := newTask(t, task.Def{Name: "anything", Process: func([]any) (any, error) { return nil, nil }})
	s := Noop()

	if err := s.Store(tk, "v"); err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if _, ok, err := s.Lookup(tk); ok || err != nil {
		t.Errorf("Expected a miss with no error, got ok=%v err=%v", ok, err)
	}
}

func TestInMemory_StoreThenLookup(t *testing.T) {
	tk := newTask(t, task.Def{Name: "kept", Process: func([]any) (any, error) { return nil, nil }})
	s := InMemory()

	if _, ok, _ := s.Lookup(tk); ok {
		t.Fatalf("Expected a miss on an empty strategy")
	}

	if err := s.Store(tk, 7); err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}

	v, ok, err := s.Lookup(tk)
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if !ok || v != 7 {
		t.Errorf("Expected a hit with 7, got ok=%v v=%v", ok, v)
	}
	if s.Len() != 1 {
		t.Errorf("Expected 1 entry, got %d", s.Len())
	}
}

func TestInMemory_KeysByStructuralIdentity(t *testing.T) {
	build := func(date string) task.Task {
		return newTask(t, task.Def{
			Name:    "fetch",
			Args:    []task.Arg{{Name: "date", Value: date}},
			Process: func([]any) (any, error) { return nil, nil },
		})
	}

	s := InMemory()
	if err := s.Store(build("2024-01-01"), "monday"); err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}

	// A structurally equal definition hits; a different argument misses.
	if v, ok, _ := s.Lookup(build("2024-01-01")); !ok || v != "monday" {
		t.Errorf("Expected a hit for the structurally equal task, got ok=%v v=%v", ok, v)
	}
	if _, ok, _ := s.Lookup(build("2024-01-02")); ok {
		t.Errorf("Expected a miss for a different argument")
	}
}
