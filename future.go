package fsextender

import (
	"context"
	"io"
	"sync"
)

// Future is the pending result of an asynchronous operation. Await blocks for it,
// Then delivers it to a callback. Both observe the same value and error.
type Future[T any] struct {
	done chan struct{}
	once sync.Once
	val  T
	err  error
}

func newFuture[T any]() *Future[T] {
	return &Future[T]{done: make(chan struct{})}
}

// resolve completes the future. It reports false when the future was already
// complete, in which case v is not delivered.
func (f *Future[T]) resolve(v T, err error) bool {
	won := false
	f.once.Do(func() {
		f.val, f.err = v, err
		won = true
		close(f.done)
	})
	return won
}

// Done is closed once the result is available.
func (f *Future[T]) Done() <-chan struct{} {
	return f.done
}

// Await blocks until the operation completes or ctx is done.
func (f *Future[T]) Await(ctx context.Context) (T, error) {
	select {
	case <-f.done:
		return f.val, f.err
	case <-ctx.Done():
		var zero T
		return zero, ctx.Err()
	}
}

// Then calls cb exactly once, on its own goroutine, when the operation completes.
func (f *Future[T]) Then(cb func(T, error)) {
	go func() {
		<-f.done
		cb(f.val, f.err)
	}()
}

// settle resolves fut with v unless ctx already won. A value that lost the race and
// owns a resource is closed.
func settle[T any](fut *Future[T], v T, err error) {
	if fut.resolve(v, err) || err != nil {
		return
	}
	if c, ok := any(v).(io.Closer); ok {
		c.Close()
	}
}

// goAsync runs fn on a new goroutine. Cancelling ctx resolves the future with
// ctx.Err() without waiting for fn.
func goAsync[T any](ctx context.Context, fn func(ctx context.Context) (T, error)) *Future[T] {
	fut := newFuture[T]()
	stop := context.AfterFunc(ctx, func() {
		var zero T
		fut.resolve(zero, ctx.Err())
	})
	go func() {
		v, err := fn(ctx)
		stop()
		settle(fut, v, err)
	}()
	return fut
}
