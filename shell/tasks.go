// SPDX-License-Identifier: Unlicense OR MIT

package shell

import "sync"

// QueueRunner is a TaskRunner that collects posted tasks for its
// owner to run between native event batches. Post may be called from
// any goroutine; RunPending must be called from the dispatch
// goroutine only.
type QueueRunner struct {
	mu    sync.Mutex
	tasks []func()
}

func (q *QueueRunner) Post(f func()) {
	q.mu.Lock()
	q.tasks = append(q.tasks, f)
	q.mu.Unlock()
}

// RunPending runs queued tasks until the queue is empty, including
// tasks posted by the tasks themselves.
func (q *QueueRunner) RunPending() {
	for {
		q.mu.Lock()
		if len(q.tasks) == 0 {
			q.mu.Unlock()
			return
		}
		f := q.tasks[0]
		q.tasks = q.tasks[1:]
		q.mu.Unlock()
		f()
	}
}

// Pending reports the number of queued tasks.
func (q *QueueRunner) Pending() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.tasks)
}
