package task

// LazyList combines deferred task references into a deferred list. The
// references are not forced until the returned function is called, and
// nothing is cached: every call re-forces every reference in order.
func LazyList(refs ...func() Task) func() []Task {
	return func() []Task {
		tasks := make([]Task, len(refs))
		for i, ref := range refs {
			tasks[i] = ref()
		}
		return tasks
	}
}

// LazyFlatten combines deferred task-list references into one deferred
// list, concatenated in argument order. Like LazyList it neither forces
// nor caches.
func LazyFlatten(lists ...func() []Task) func() []Task {
	return func() []Task {
		var tasks []Task
		for _, list := range lists {
			tasks = append(tasks, list()...)
		}
		return tasks
	}
}
