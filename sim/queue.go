// Implements the JobQueue, which holds jobs waiting for a machine.
// Jobs are enqueued on arrival and drained oldest-first by dispatch passes.

package sim

import "container/heap"

// JobQueue is a priority queue of pending jobs ordered by arrival timestamp.
// Ties are broken by enqueue sequence, so jobs sharing a timestamp keep
// their stream order and the queue is fully deterministic.
type JobQueue struct {
	items jobHeap
	seq   uint64
}

// NewJobQueue creates an empty JobQueue.
func NewJobQueue() *JobQueue {
	q := &JobQueue{items: make(jobHeap, 0)}
	heap.Init(&q.items)
	return q
}

// Len returns the number of pending jobs.
func (q *JobQueue) Len() int {
	return len(q.items)
}

// Push enqueues a job.
func (q *JobQueue) Push(j Job) {
	q.seq++
	heap.Push(&q.items, pendingJob{job: j, seq: q.seq})
}

// Peek returns the oldest pending job without removing it.
// The boolean is false if the queue is empty.
func (q *JobQueue) Peek() (Job, bool) {
	if len(q.items) == 0 {
		return Job{}, false
	}
	return q.items[0].job, true
}

// Pop removes and returns the oldest pending job.
// The boolean is false if the queue is empty.
func (q *JobQueue) Pop() (Job, bool) {
	if len(q.items) == 0 {
		return Job{}, false
	}
	return heap.Pop(&q.items).(pendingJob).job, true
}

type pendingJob struct {
	job Job
	seq uint64
}

// jobHeap implements heap.Interface.
// Ordering: timestamp → enqueue sequence.
type jobHeap []pendingJob

func (h jobHeap) Len() int { return len(h) }

func (h jobHeap) Less(i, j int) bool {
	if h[i].job.Timestamp() != h[j].job.Timestamp() {
		return h[i].job.Timestamp() < h[j].job.Timestamp()
	}
	return h[i].seq < h[j].seq
}

func (h jobHeap) Swap(i, j int) { h[i], h[j] = h[j], h[i] }

func (h *jobHeap) Push(x any) {
	*h = append(*h, x.(pendingJob))
}

func (h *jobHeap) Pop() any {
	old := *h
	n := len(old)
	item := old[n-1]
	*h = old[0 : n-1]
	return item
}
