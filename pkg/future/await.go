package future

import (
	"context"
)

// Await blocks until v reaches a terminal state or ctx is done. It returns
// the completed value, the failure error, or ctx.Err() if the context ends
// first. Cancellation only abandons the wait; the underlying evaluation
// keeps running.
func Await(ctx context.Context, v Value) (any, error) {
	type outcome struct {
		value any
		err   error
	}
	ch := make(chan outcome, 1)
	v.Consume(func(val any) { ch <- outcome{value: val} })
	v.OnFail(func(err error) { ch <- outcome{err: err} })

	select {
	case o := <-ch:
		return o.value, o.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}
