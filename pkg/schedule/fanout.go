package schedule

import (
	"context"
	"fmt"
	"sync"

	"github.com/panjf2000/ants/v2"
)

// fanOut runs task for 0..n-1 with at most workers running at once. The
// first task error cancels the context handed to the remaining tasks and is
// returned once every submitted task has finished.
func fanOut(parent context.Context, n, workers int, task func(ctx context.Context, i int) error) error {
	ctx, cancel := context.WithCancel(parent)
	defer cancel()

	pool, err := ants.NewPool(workers)
	if err != nil {
		return fmt.Errorf("create worker pool: %w", err)
	}
	defer pool.Release()

	var (
		wg       sync.WaitGroup
		once     sync.Once
		firstErr error
	)
	fail := func(err error) {
		once.Do(func() {
			firstErr = err
			cancel()
		})
	}

	for i := 0; i < n; i++ {
		if ctx.Err() != nil {
			break
		}

		wg.Add(1)
		if err := pool.Submit(func() {
			defer wg.Done()
			if ctx.Err() != nil {
				return
			}
			if err := task(ctx, i); err != nil {
				fail(err)
			}
		}); err != nil {
			wg.Done()
			fail(fmt.Errorf("submit task to worker pool: %w", err))
			break
		}
	}

	wg.Wait()

	if firstErr != nil {
		return firstErr
	}
	return parent.Err()
}
