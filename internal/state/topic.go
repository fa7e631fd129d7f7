package state

import "go.uber.org/zap"

// Topic broadcasts values to subscribers without retaining them. Delivery
// order follows the same rules as Writable.
type Topic[T any] struct {
	reg    registry[T]
	logger *zap.Logger
}

func NewTopic[T any](opts ...Option) *Topic[T] {
	o := buildOptions(opts)
	return &Topic[T]{logger: o.logger}
}

func (t *Topic[T]) Publish(v T) {
	t.reg.mu.Lock()
	run := t.reg.broadcastLocked(v)
	t.reg.mu.Unlock()
	if run {
		t.reg.drain()
	}
}

func (t *Topic[T]) Subscribe(fn func(T)) (unsubscribe func()) {
	t.reg.mu.Lock()
	s := t.reg.addLocked(fn)
	n := len(t.reg.subs)
	t.reg.mu.Unlock()

	t.logger.Debug("subscribed", zap.Int("subscribers", n))
	return func() {
		if t.reg.remove(s) {
			t.logger.Debug("unsubscribed")
		}
	}
}

func (t *Topic[T]) Len() int { return t.reg.len() }
