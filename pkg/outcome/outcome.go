// Package outcome models the loading/success/failure result shape used by
// cart operations: a single-shot sequence that emits a pending marker, then
// exactly one terminal ready-or-failed value.
package outcome

import "context"

type State string

const (
	StatePending State = "pending"
	StateReady   State = "ready"
	StateFailed  State = "failed"
)

// Outcome is one emission of a tri-state sequence. Warning carries a
// non-fatal condition attached to an otherwise ready outcome.
type Outcome[T any] struct {
	State   State
	Data    T
	Warning string
	Err     error
}

func Pending[T any]() Outcome[T] {
	return Outcome[T]{State: StatePending}
}

func Ready[T any](data T) Outcome[T] {
	return Outcome[T]{State: StateReady, Data: data}
}

func ReadyWithWarning[T any](data T, warning string) Outcome[T] {
	return Outcome[T]{State: StateReady, Data: data, Warning: warning}
}

func Failed[T any](err error) Outcome[T] {
	return Outcome[T]{State: StateFailed, Err: err}
}

// Terminal reports whether no further emissions follow this one.
func (o Outcome[T]) Terminal() bool {
	return o.State != StatePending
}

// Observe runs fn lazily and produces the pending marker followed by one
// terminal outcome, then closes the channel. Abandoning the channel after
// cancelling ctx stops further emission; fn observes the same ctx so an
// in-flight call is cancelled with it.
func Observe[T any](ctx context.Context, fn func(context.Context) (T, error)) <-chan Outcome[T] {
	out := make(chan Outcome[T], 2)
	go func() {
		defer close(out)
		if !emit(ctx, out, Pending[T]()) {
			return
		}
		data, err := fn(ctx)
		if err != nil {
			emit(ctx, out, Failed[T](err))
			return
		}
		emit(ctx, out, Ready(data))
	}()
	return out
}

// First drains the sequence until its terminal outcome. A cancelled ctx
// yields a failed outcome carrying the ctx error.
func First[T any](ctx context.Context, seq <-chan Outcome[T]) Outcome[T] {
	for {
		select {
		case <-ctx.Done():
			return Failed[T](ctx.Err())
		case o, ok := <-seq:
			if !ok {
				return Failed[T](context.Canceled)
			}
			if o.Terminal() {
				return o
			}
		}
	}
}

func emit[T any](ctx context.Context, out chan<- Outcome[T], o Outcome[T]) bool {
	select {
	case out <- o:
		return true
	case <-ctx.Done():
		return false
	}
}
