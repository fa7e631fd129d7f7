package state

import "go.uber.org/zap"

// Readable is the read side of a Writable.
type Readable[T any] interface {
	Get() T
	Subscribe(fn func(T)) (unsubscribe func())
}

// Writable is a shared value cell that pushes every write to its subscribers.
//
// Subscribers run synchronously on the goroutine that called Set. A Set made
// from inside a callback, or from another goroutine while a notification pass
// is running, is queued and delivered by the goroutine already notifying, so
// each subscriber observes one total order of values with none skipped.
type Writable[T any] struct {
	reg    registry[T]
	value  T
	logger *zap.Logger
}

func NewWritable[T any](initial T, opts ...Option) *Writable[T] {
	o := buildOptions(opts)
	return &Writable[T]{value: initial, logger: o.logger}
}

func (w *Writable[T]) Get() T {
	w.reg.mu.Lock()
	defer w.reg.mu.Unlock()
	return w.value
}

// Set replaces the value and notifies every current subscriber. It performs no validation.
func (w *Writable[T]) Set(v T) {
	w.reg.mu.Lock()
	w.value = v
	n := len(w.reg.subs)
	run := w.reg.broadcastLocked(v)
	w.reg.mu.Unlock()

	w.logger.Debug("value set", zap.Int("subscribers", n), zap.Bool("queued", !run))
	if run {
		w.reg.drain()
	}
}

// Update sets the value to fn applied to the current one, with no other write in between.
// fn must not call back into w.
func (w *Writable[T]) Update(fn func(T) T) {
	w.reg.mu.Lock()
	v := fn(w.value)
	w.value = v
	run := w.reg.broadcastLocked(v)
	w.reg.mu.Unlock()

	if run {
		w.reg.drain()
	}
}

// Subscribe registers fn and calls it with the current value, then with every
// subsequently set value. If a notification pass is already running the
// initial call is queued behind it. The returned func cancels the
// subscription; calling it more than once is harmless.
func (w *Writable[T]) Subscribe(fn func(T)) (unsubscribe func()) {
	w.reg.mu.Lock()
	s := w.reg.addLocked(fn)
	run := w.reg.enqueueLocked(delivery[T]{subs: []*subscriber[T]{s}, value: w.value})
	n := len(w.reg.subs)
	w.reg.mu.Unlock()

	w.logger.Debug("subscribed", zap.Int("subscribers", n))
	if run {
		w.reg.drain()
	}
	return func() {
		if w.reg.remove(s) {
			w.logger.Debug("unsubscribed")
		}
	}
}

// Len returns the number of live subscriptions.
func (w *Writable[T]) Len() int { return w.reg.len() }
