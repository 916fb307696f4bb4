package task

import (
	"strings"
	"testing"
)

func TestWalk_VisitsDistinctTasksPreOrder(t *testing.T) {
	shared := mustTask(t, Def{Name: "shared", Process: noop})
	left := mustTask(t, Def{
		Name:      "left",
		Upstreams: func() []Task { return []Task{shared} },
		Process:   noop,
	})
	right := mustTask(t, Def{
		Name:      "right",
		Upstreams: func() []Task { return []Task{shared} },
		Process:   noop,
	})
	root := mustTask(t, Def{
		Name:      "root",
		Upstreams: func() []Task { return []Task{left, right} },
		Process:   noop,
	})

	var names []string
	Walk(root, func(tk Task) bool {
		names = append(names, tk.ID().Name)
		return true
	})

	want := []string{"root", "left", "shared", "right"}
	if len(names) != len(want) {
		t.Fatalf("Expected %d visits, got %d: %v", len(want), len(names), names)
	}
	for i := range want {
		if names[i] != want[i] {
			t.Errorf("Expected visit %d to be %q, got %q", i, want[i], names[i])
		}
	}
}

func TestWalk_StopsWhenCallbackReturnsFalse(t *testing.T) {
	leaf := mustTask(t, Def{Name: "leaf", Process: noop})
	root := mustTask(t, Def{
		Name:      "root",
		Upstreams: func() []Task { return []Task{leaf} },
		Process:   noop,
	})

	visits := 0
	Walk(root, func(Task) bool {
		visits++
		return false
	})

	if visits != 1 {
		t.Errorf("Expected the walk to stop after the first visit, got %d visits", visits)
	}
}

func TestValidateAcyclic_AcceptsDAG(t *testing.T) {
	shared := mustTask(t, Def{Name: "shared", Process: noop})
	root := mustTask(t, Def{
		Name: "root",
		Upstreams: func() []Task {
			return []Task{shared, shared}
		},
		Process: noop,
	})

	if err := ValidateAcyclic(root); err != nil {
		t.Errorf("Expected no error for a DAG, got: %v", err)
	}
}

func TestValidateAcyclic_ReportsCyclePath(t *testing.T) {
	var a, b Task
	a = mustTask(t, Def{
		Name:      "a",
		Upstreams: func() []Task { return []Task{b} },
		Process:   noop,
	})
	b = mustTask(t, Def{
		Name:      "b",
		Upstreams: func() []Task { return []Task{a} },
		Process:   noop,
	})

	err := ValidateAcyclic(a)
	if !IsConstructionError(err) {
		t.Fatalf("Expected a construction error, got: %v", err)
	}
	if !strings.Contains(err.Error(), "a -> b -> a") {
		t.Errorf("Expected the cycle path in the error, got: %v", err)
	}
}

func TestValidateAcyclic_SelfReference(t *testing.T) {
	var selfish Task
	selfish = mustTask(t, Def{
		Name:      "selfish",
		Upstreams: func() []Task { return []Task{selfish} },
		Process:   noop,
	})

	if err := ValidateAcyclic(selfish); err == nil {
		t.Errorf("Expected an error for a self-referencing task")
	}
}
