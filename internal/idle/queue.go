// Package idle is a single-threaded FIFO queue of callbacks deferred to a
// later iteration of the main loop.
package idle

// Result tells the queue what to do with a task after it ran.
type Result int

const (
	// Remove drops the task after this run.
	Remove Result = iota
	// Repeat keeps the task queued for the next drain.
	Repeat
)

// Func is an idle callback.
type Func func() Result

// ID identifies a queued task.
type ID uint64

type task struct {
	id ID
	fn Func
}

// Queue holds idle tasks. It is not safe for concurrent use; all calls
// happen on the loop goroutine.
type Queue struct {
	tasks  []task
	nextID ID
}

// New creates an empty queue.
func New() *Queue {
	return &Queue{nextID: 1}
}

// Add enqueues fn to run on the next drain.
func (q *Queue) Add(fn Func) ID {
	id := q.nextID
	q.nextID++
	q.tasks = append(q.tasks, task{id: id, fn: fn})
	return id
}

// Once enqueues fn to run exactly once.
func (q *Queue) Once(fn func()) ID {
	return q.Add(func() Result {
		fn()
		return Remove
	})
}

// Len returns the number of queued tasks.
func (q *Queue) Len() int { return len(q.tasks) }

// Drain runs, in FIFO order, every task queued before the call. Tasks added
// while draining wait for the next drain. It returns the number of tasks run.
func (q *Queue) Drain() int {
	pending := q.tasks
	q.tasks = nil

	var kept []task
	for _, t := range pending {
		if t.fn() == Repeat {
			kept = append(kept, t)
		}
	}
	// Repeating tasks keep their place ahead of anything added meanwhile.
	q.tasks = append(kept, q.tasks...)
	return len(pending)
}
