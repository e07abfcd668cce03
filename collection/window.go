package collection

import (
	"sync"
)

// TSD is one time-stamped datum held in a Window.
type TSD interface {
	GetTimestamp() int64
}

// Window is a bounded, timestamp-ordered ring buffer of samples. Once full,
// the oldest sample is overwritten. Writes to one Window must come from a
// single producer; concurrent readers are safe.
type Window struct {
	lock     sync.RWMutex
	data     []TSD
	capacity int
	cursor   int
	count    int
}

func NewWindow(capacity int) *Window {
	if capacity <= 0 {
		panic("invalid window capacity")
	}
	return &Window{
		data:     make([]TSD, capacity),
		capacity: capacity,
	}
}

func (w *Window) Put(d TSD) {
	w.lock.Lock()
	defer w.lock.Unlock()

	w.data[w.cursor] = d
	w.cursor = (w.cursor + 1) % w.capacity
	if w.count < w.capacity {
		w.count++
	}
}

func (w *Window) Len() int {
	w.lock.RLock()
	defer w.lock.RUnlock()
	return w.count
}

// Recent returns up to n of the newest samples, oldest first.
func (w *Window) Recent(n int) []TSD {
	w.lock.RLock()
	defer w.lock.RUnlock()

	if n > w.count {
		n = w.count
	}
	result := make([]TSD, 0, n)
	start := w.cursor - n
	for i := 0; i < n; i++ {
		result = append(result, w.data[((start+i)+w.capacity)%w.capacity])
	}
	return result
}

// Query returns the samples with timestamps in [start, end), oldest first.
// The second return value is false when the window may have already evicted
// part of the requested range.
func (w *Window) Query(start, end int64) ([]TSD, bool) {
	w.lock.RLock()
	defer w.lock.RUnlock()

	result := []TSD{}
	oldest := w.cursor - w.count
	var oldestTimestamp int64
	for i := 0; i < w.count; i++ {
		d := w.data[((oldest+i)+w.capacity)%w.capacity]
		if i == 0 {
			oldestTimestamp = d.GetTimestamp()
		}
		ts := d.GetTimestamp()
		if ts >= start && ts < end {
			result = append(result, d)
		}
	}
	complete := w.count < w.capacity || start >= oldestTimestamp
	return result, complete
}
