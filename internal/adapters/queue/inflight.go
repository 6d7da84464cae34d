package queue

import (
	"errors"
	"sync"

	"github.com/harris-mohamed/sensorsync/internal/ports"
)

var (
	// ErrAlreadyInflight means the endpoint already has an invocation running.
	ErrAlreadyInflight = errors.New("queue: endpoint already in flight")
	// ErrInflightFull means the set is at capacity.
	ErrInflightFull = errors.New("queue: in-flight set full")
)

// InflightSet is a bounded set of endpoint names with a running invocation.
// A capacity of zero means unbounded.
type InflightSet struct {
	mu   sync.Mutex
	data map[string]struct{}
	cap  int
}

func NewInflightSet(capacity int) *InflightSet {
	if capacity < 0 {
		capacity = 0
	}
	return &InflightSet{
		data: make(map[string]struct{}, capacity),
		cap:  capacity,
	}
}

// Acquire marks endpoint as running.
func (q *InflightSet) Acquire(endpoint string) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	if _, ok := q.data[endpoint]; ok {
		return ErrAlreadyInflight
	}
	if q.cap > 0 && len(q.data) >= q.cap {
		return ErrInflightFull
	}
	q.data[endpoint] = struct{}{}
	return nil
}

func (q *InflightSet) TryAcquire(endpoint string) bool {
	return q.Acquire(endpoint) == nil
}

func (q *InflightSet) Release(endpoint string) {
	q.mu.Lock()
	defer q.mu.Unlock()
	delete(q.data, endpoint)
}

func (q *InflightSet) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.data)
}

var _ ports.InflightGuard = (*InflightSet)(nil)
