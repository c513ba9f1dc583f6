package concurrency

import (
	"context"
	"sync"
)

// WorkerFn is run once per worker; index identifies the worker.
type WorkerFn func(ctx context.Context, index int)

// Run starts n workers (at least one) and blocks until all of them return.
func Run(ctx context.Context, n int, fn WorkerFn) {
	if n < 1 {
		n = 1
	}
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(idx int) {
			defer wg.Done()
			fn(ctx, idx)
		}(i)
	}
	wg.Wait()
}

// Drain runs one worker per channel of in. Each worker handles its channel's
// items in order and returns once the channel is closed and drained, or ctx
// is done. Drain returns when every worker has.
func Drain[T any](ctx context.Context, in []chan T, handle func(ctx context.Context, item T)) {
	if len(in) == 0 {
		return
	}
	Run(ctx, len(in), func(ctx context.Context, idx int) {
		for {
			select {
			case item, ok := <-in[idx]:
				if !ok {
					return
				}
				handle(ctx, item)
			case <-ctx.Done():
				return
			}
		}
	})
}
