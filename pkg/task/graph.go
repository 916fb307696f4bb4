package task

import (
	"fmt"
	"strings"
)

// Walk visits every distinct task in the upstream closure of root in
// pre-order, calling fn for each. Distinctness is by structural identity,
// so equal definitions are visited once. fn returning false stops the
// walk. Walk forces identities and must only run on acyclic graphs; use
// ValidateAcyclic first when the graph shape is not known.
func Walk(root Task, fn func(t Task) bool) {
	visited := make(map[ID]bool)
	var visit func(t Task) bool
	visit = func(t Task) bool {
		id := t.ID()
		if visited[id] {
			return true
		}
		visited[id] = true
		if !fn(t) {
			return false
		}
		for _, u := range t.Upstreams() {
			if !visit(u) {
				return false
			}
		}
		return true
	}
	visit(root)
}

// ValidateAcyclic verifies that the upstream closure reachable from root
// contains no dependency cycle. It traverses by task instance, not by
// identity, so it is safe to call on definitions whose identities would
// never resolve. The returned error names the cycle path.
func ValidateAcyclic(root Task) error {
	visited := make(map[Task]bool)
	recStack := make(map[Task]bool)

	var visit func(t Task, path []string) error
	visit = func(t Task, path []string) error {
		visited[t] = true
		recStack[t] = true
		path = append(path, describeTask(t))

		for _, u := range t.Upstreams() {
			if recStack[u] {
				cycle := append(path, describeTask(u))
				return NewConstructionError(describeTask(u),
					"dependency cycle: "+strings.Join(cycle, " -> "), nil)
			}
			if !visited[u] {
				if err := visit(u, path); err != nil {
					return err
				}
			}
		}

		recStack[t] = false
		return nil
	}
	return visit(root, nil)
}

// describeTask names a task without forcing its identity, which would not
// terminate on cyclic definitions.
func describeTask(t Task) string {
	if named, ok := t.(interface{ Name() string }); ok {
		return named.Name()
	}
	return fmt.Sprintf("%T", t)
}
