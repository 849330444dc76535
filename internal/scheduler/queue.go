package scheduler

import "container/heap"

// taskHeap orders pending tasks by (nextFireTime, priority desc,
// insertionSeq asc) and tracks each
// task's position so DeleteAgentTasks can remove arbitrary entries in
// O(log N) each (container/heap's standard index-tracking idiom).
type taskHeap []*Task

func (h taskHeap) Len() int { return len(h) }

func (h taskHeap) Less(i, j int) bool {
	a, b := h[i], h[j]
	if a.NextFireTime != b.NextFireTime {
		return a.NextFireTime < b.NextFireTime
	}
	if a.Priority != b.Priority {
		return a.Priority > b.Priority // higher priority first
	}
	return a.insertionSeq < b.insertionSeq
}

func (h taskHeap) Swap(i, j int) {
	h[i], h[j] = h[j], h[i]
	h[i].heapIndex = i
	h[j].heapIndex = j
}

func (h *taskHeap) Push(x interface{}) {
	t := x.(*Task)
	t.heapIndex = len(*h)
	*h = append(*h, t)
}

func (h *taskHeap) Pop() interface{} {
	old := *h
	n := len(old)
	t := old[n-1]
	old[n-1] = nil
	t.heapIndex = -1
	*h = old[:n-1]
	return t
}

// queue wraps taskHeap behind the container/heap package-level functions
// so callers never juggle heap.Interface directly.
type queue struct {
	h taskHeap
}

func newQueue() *queue {
	q := &queue{}
	heap.Init(&q.h)
	return q
}

func (q *queue) insert(t *Task) {
	heap.Push(&q.h, t)
}

func (q *queue) removeAt(i int) *Task {
	return heap.Remove(&q.h, i).(*Task)
}

func (q *queue) peek() (*Task, bool) {
	if len(q.h) == 0 {
		return nil, false
	}
	return q.h[0], true
}

func (q *queue) len() int { return len(q.h) }
