package hub

import (
	"sync"
	"time"
)

// RateLimiter coalesces messages per key. The first Add for a key starts a
// timer; when it fires only the most recent message for that key is flushed.
type RateLimiter struct {
	mu       sync.Mutex
	pending  map[string]*pendingMessage
	interval time.Duration
	onFlush  func(key string, data []byte)
}

type pendingMessage struct {
	data  []byte
	timer *time.Timer
}

func NewRateLimiter(interval time.Duration, onFlush func(string, []byte)) *RateLimiter {
	return &RateLimiter{
		pending:  make(map[string]*pendingMessage),
		interval: interval,
		onFlush:  onFlush,
	}
}

func (r *RateLimiter) Add(key string, data []byte) {
	r.mu.Lock()
	defer r.mu.Unlock()

	p, exists := r.pending[key]
	if !exists {
		p = &pendingMessage{}
		r.pending[key] = p
	}
	p.data = data

	if p.timer == nil {
		p.timer = time.AfterFunc(r.interval, func() {
			r.flush(key)
		})
	}
}

func (r *RateLimiter) flush(key string) {
	r.mu.Lock()
	p, exists := r.pending[key]
	if !exists {
		r.mu.Unlock()
		return
	}
	delete(r.pending, key)
	if p.timer != nil {
		p.timer.Stop()
	}
	r.mu.Unlock()

	if r.onFlush != nil && p.data != nil {
		r.onFlush(key, p.data)
	}
}

func (r *RateLimiter) FlushAll() {
	r.mu.Lock()
	keys := make([]string, 0, len(r.pending))
	for k := range r.pending {
		keys = append(keys, k)
	}
	r.mu.Unlock()

	for _, k := range keys {
		r.flush(k)
	}
}

func (r *RateLimiter) Pending() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.pending)
}
