package bridge

import (
	"context"
	"time"
)

// RunInline executes tasks one after the other on the calling goroutine,
// applying each result before running the next. The CLI uses it as its event
// loop. Each task gets its own timeout when timeout is positive.
func RunInline(ctx context.Context, b *Bridge, timeout time.Duration, tasks ...Task) {
	queue := append([]Task(nil), tasks...)
	for len(queue) > 0 {
		task := queue[0]
		queue = queue[1:]
		queue = append(queue, b.Apply(runTask(ctx, timeout, task))...)
	}
}

func runTask(ctx context.Context, timeout time.Duration, task Task) Event {
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}
	return task(ctx)
}
