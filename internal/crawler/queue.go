package crawler

// Queue is the FIFO crawl queue with visited-set deduplication. The visited
// set covers paths already fetched or still pending, so no path is ever
// enqueued (and therefore fetched) twice even across reference cycles.
// The crawl is strictly sequential, so the queue needs no locking.
type Queue struct {
	items []string
	seen  map[string]bool
}

// NewQueue creates an empty crawl queue
func NewQueue() *Queue {
	return &Queue{
		seen: make(map[string]bool),
	}
}

// Push enqueues a path unless it was already queued or visited.
// Returns true if the path was added.
func (q *Queue) Push(path string) bool {
	if q.seen[path] {
		return false
	}

	q.seen[path] = true
	q.items = append(q.items, path)

	return true
}

// Pop removes and returns the oldest pending path.
// Returns false when the queue is drained.
func (q *Queue) Pop() (string, bool) {
	if len(q.items) == 0 {
		return "", false
	}

	path := q.items[0]
	q.items = q.items[1:]

	return path, true
}

// Len returns the number of pending paths
func (q *Queue) Len() int {
	return len(q.items)
}
