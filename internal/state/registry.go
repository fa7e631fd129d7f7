package state

import (
	"sync"
	"sync/atomic"

	"go.uber.org/zap"
)

type subscriber[T any] struct {
	fn     func(T)
	active atomic.Bool
}

type delivery[T any] struct {
	subs  []*subscriber[T]
	value T
}

// registry holds subscribers and a FIFO of pending deliveries. Only one
// goroutine drains at a time, so every subscriber sees values in the order
// they were enqueued.
type registry[T any] struct {
	mu       sync.Mutex
	subs     []*subscriber[T]
	queue    []delivery[T]
	draining bool
}

// enqueueLocked must be called with mu held. It reports whether the caller
// has become the draining goroutine.
func (r *registry[T]) enqueueLocked(d delivery[T]) bool {
	r.queue = append(r.queue, d)
	if r.draining {
		return false
	}
	r.draining = true
	return true
}

func (r *registry[T]) broadcastLocked(v T) bool {
	subs := make([]*subscriber[T], len(r.subs))
	copy(subs, r.subs)
	return r.enqueueLocked(delivery[T]{subs: subs, value: v})
}

func (r *registry[T]) drain() {
	finished := false
	defer func() {
		// a panicking callback must not leave the queue wedged
		if !finished {
			r.mu.Lock()
			r.draining = false
			r.mu.Unlock()
		}
	}()
	for {
		r.mu.Lock()
		if len(r.queue) == 0 {
			r.draining = false
			r.mu.Unlock()
			finished = true
			return
		}
		d := r.queue[0]
		r.queue[0] = delivery[T]{}
		r.queue = r.queue[1:]
		r.mu.Unlock()

		for _, s := range d.subs {
			if s.active.Load() {
				s.fn(d.value)
			}
		}
	}
}

func (r *registry[T]) addLocked(fn func(T)) *subscriber[T] {
	s := &subscriber[T]{fn: fn}
	s.active.Store(true)
	r.subs = append(r.subs, s)
	return s
}

func (r *registry[T]) remove(s *subscriber[T]) bool {
	if !s.active.Swap(false) {
		return false
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, cur := range r.subs {
		if cur == s {
			r.subs = append(r.subs[:i:i], r.subs[i+1:]...)
			break
		}
	}
	return true
}

func (r *registry[T]) len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.subs)
}

type options struct {
	name   string
	logger *zap.Logger
}

// Option configures a Writable or a Topic.
type Option func(*options)

// WithLogger logs subscription changes and writes at debug level.
func WithLogger(logger *zap.Logger) Option {
	return func(o *options) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// WithName sets the "store" field attached to log entries.
func WithName(name string) Option {
	return func(o *options) { o.name = name }
}

func buildOptions(opts []Option) options {
	o := options{name: "store", logger: zap.NewNop()}
	for _, opt := range opts {
		opt(&o)
	}
	o.logger = o.logger.With(zap.String("store", o.name))
	return o
}
