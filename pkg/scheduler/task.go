package scheduler

import "reflect"

// UpdateContext is handed to an update function when the engine applies it.
type UpdateContext struct {
	// Vertex is the vertex being updated.
	Vertex int
	// Worker is the id of the worker executing the update.
	Worker int
	// Callback submits follow-up tasks to the owning scheduler on behalf of
	// the executing worker.
	Callback *DirectCallback
}

// UpdateFunc is the update function applied to every scheduled vertex. The
// scheduler treats it as opaque; all tasks share the single configured
// function.
type UpdateFunc func(uc UpdateContext)

// Task pairs a vertex with the update function to apply to it.
type Task struct {
	Vertex int
	Fn     UpdateFunc
}

// NewTask builds a task record for vertex v.
func NewTask(v int, fn UpdateFunc) Task {
	return Task{Vertex: v, Fn: fn}
}

// Status is the result of polling the scheduler for work.
type Status int

const (
	// StatusNewTask indicates a task was produced.
	StatusNewTask Status = iota
	// StatusWaiting indicates no work is currently available.
	StatusWaiting
	// StatusComplete indicates global quiescence: every worker is idle and
	// no pending work remains.
	StatusComplete
)

// String returns the string representation of a status.
func (s Status) String() string {
	switch s {
	case StatusNewTask:
		return "NEW_TASK"
	case StatusWaiting:
		return "WAITING"
	case StatusComplete:
		return "COMPLETE"
	default:
		return "UNKNOWN"
	}
}

// sameFn reports whether two update functions are the same function value.
// Go functions are not comparable, so identity is checked via code pointers.
func sameFn(a, b UpdateFunc) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return reflect.ValueOf(a).Pointer() == reflect.ValueOf(b).Pointer()
}
