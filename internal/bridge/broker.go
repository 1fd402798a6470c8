package bridge

import (
	"context"
	"sync"
)

// broker fans status snapshots out to connected bridge clients without ever
// blocking the publisher; the coordinator must not stall on a slow client.
type broker[T any] struct {
	mu        sync.RWMutex
	subs      map[chan T]struct{}
	done      chan struct{}
	bufferCap int
}

func newBroker[T any]() *broker[T] {
	return &broker[T]{
		subs:      make(map[chan T]struct{}),
		done:      make(chan struct{}),
		bufferCap: 16,
	}
}

// shutdown closes the broker and every subscriber channel.
func (b *broker[T]) shutdown() {
	select {
	case <-b.done:
		return
	default:
		close(b.done)
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	for ch := range b.subs {
		close(ch)
	}
	clear(b.subs)
}

// subscribe registers for future snapshots. The returned channel closes when
// ctx is done or the broker shuts down.
func (b *broker[T]) subscribe(ctx context.Context) <-chan T {
	b.mu.Lock()
	defer b.mu.Unlock()

	select {
	case <-b.done:
		ch := make(chan T)
		close(ch)
		return ch
	default:
	}

	ch := make(chan T, b.bufferCap)
	b.subs[ch] = struct{}{}

	go func() {
		<-ctx.Done()

		b.mu.Lock()
		defer b.mu.Unlock()
		if _, ok := b.subs[ch]; !ok {
			return
		}
		delete(b.subs, ch)
		close(ch)
	}()

	return ch
}

// publish delivers payload best-effort: a subscriber with a full buffer is
// skipped, not waited for.
func (b *broker[T]) publish(payload T) {
	b.mu.RLock()
	select {
	case <-b.done:
		b.mu.RUnlock()
		return
	default:
	}
	subs := make([]chan T, 0, len(b.subs))
	for ch := range b.subs {
		subs = append(subs, ch)
	}
	b.mu.RUnlock()

	for _, ch := range subs {
		select {
		case ch <- payload:
		default:
		}
	}
}

func (b *broker[T]) subscriberCount() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subs)
}
