package chain

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/vk/sigchain/internal/ctxlog"
	"github.com/vk/sigchain/internal/module"
	"github.com/vk/sigchain/internal/sequence"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

// pass accumulates the task statuses of one traversal.
type pass struct {
	statuses []int
	sum      int
}

func (p *pass) record(id, status int) {
	if p.statuses != nil {
		p.statuses[id] = status
	}
	p.sum += status
}

// Exec runs every replica, one pass of its tree at a time, until stop returns
// true for it or a failure cancels all threads. stop receives the statuses of
// the pass just finished, indexed by task execution order; it is shared by
// every thread and must be safe for concurrent use. A failing thread stops the
// others within one further pass.
func (c *Chain) Exec(ctx context.Context, stop func(statuses []int) bool) error {
	return c.run(ctx, "statuses", func(ctx context.Context, tid int) int {
		tree := c.trees[tid]
		p := &pass{statuses: make([]int, tree.TaskCount())}
		return c.drive(ctx, tid, p, func() bool { return stop(p.statuses) })
	})
}

// ExecNoStatus is Exec without the status vector.
func (c *Chain) ExecNoStatus(ctx context.Context, stop func() bool) error {
	return c.run(ctx, "plain", func(ctx context.Context, tid int) int {
		return c.drive(ctx, tid, &pass{}, stop)
	})
}

// ExecThread runs the tree of thread tid exactly once on the calling
// goroutine and returns the sum of the task statuses.
func (c *Chain) ExecThread(ctx context.Context, tid int) (int, error) {
	if tid < 0 || tid >= c.threads {
		return 0, fmt.Errorf("%w: %d not in [0, %d)", ErrThreadID, tid, c.threads)
	}
	p := &pass{}
	if _, err := execNode(c.trees[tid], 0, p); err != nil {
		return p.sum, err
	}
	return p.sum, nil
}

// run starts threads 1..N-1 on their own goroutines, drives thread 0 inline
// and joins them all.
func (c *Chain) run(ctx context.Context, mode string, drive func(ctx context.Context, tid int) int) error {
	initMetrics(ctx)
	ctx, span := tracer.Start(ctx, "chain.Exec", trace.WithAttributes(
		attribute.Int("chain.threads", c.threads),
		attribute.String("chain.mode", mode),
	))
	defer span.End()
	logger := ctxlog.FromContext(ctx)
	logger.Info("Chain execution started.", "threads", c.threads, "mode", mode)
	start := time.Now()

	passes := make([]int, c.threads)
	var wg sync.WaitGroup
	for tid := 1; tid < c.threads; tid++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			passes[tid] = drive(ctx, tid)
		}()
	}
	passes[0] = drive(ctx, 0)
	wg.Wait()

	var total int
	for _, n := range passes {
		total += n
	}
	elapsed := time.Since(start)
	if passCounter != nil {
		passCounter.Add(ctx, int64(total), metric.WithAttributes(attribute.String("mode", mode)))
	}
	if execDuration != nil {
		execDuration.Record(ctx, elapsed.Seconds(), metric.WithAttributes(attribute.String("mode", mode)))
	}
	span.SetAttributes(attribute.Int("chain.passes", total))

	execErr := c.failures.drain()
	c.cancel.Store(false)
	if execErr != nil {
		span.RecordError(execErr)
		span.SetStatus(codes.Error, execErr.Message)
		logger.Error("Chain execution failed.", "failures", len(execErr.Failures), "error", execErr.Message)
		return execErr
	}
	if err := ctx.Err(); err != nil {
		span.SetStatus(codes.Error, err.Error())
		return fmt.Errorf("chain execution interrupted after %d passes: %w", total, err)
	}
	span.SetStatus(codes.Ok, "")
	logger.Info("Chain execution finished.", "passes", total, "duration", elapsed)
	return nil
}

// drive repeats whole-tree passes for one thread and returns how many passes
// completed.
func (c *Chain) drive(ctx context.Context, tid int, p *pass, stop func() bool) int {
	tree := c.trees[tid]
	for n := 0; ; n++ {
		p.sum = 0
		if failed, err := execNode(tree, 0, p); err != nil {
			c.fail(ctx, Failure{Thread: tid, Pass: n, Task: failed.String(), Err: err})
			return n
		}
		if c.cancel.Load() || ctx.Err() != nil || stop() {
			return n + 1
		}
	}
}

// fail records a task error and asks every thread to stop.
func (c *Chain) fail(ctx context.Context, f Failure) {
	c.cancel.Store(true)
	c.failures.record(f)
	if failCounter != nil {
		failCounter.Add(ctx, 1)
	}
	ctxlog.FromContext(ctx).Error("Task failed, cancelling all threads.",
		"thread", f.Thread, "task", f.Task, "pass", f.Pass, "error", f.Err)
}

// execNode runs node i of tree: a standard node runs its tasks and then its
// children, a loop node alternates its loop task and body until the task
// returns module.LoopExit, resets the loop module and runs the continuation.
// On error it also returns the task that failed.
func execNode(tree *sequence.Tree, i int, p *pass) (*module.Task, error) {
	n := tree.Node(i)
	if n.Kind == sequence.Loop {
		task := n.Tasks[0]
		for {
			status, err := task.Execute()
			if err != nil {
				return task, err
			}
			p.record(n.TaskIDs[0], status)
			if status == module.LoopExit {
				break
			}
			if failed, err := execNode(tree, n.Children[sequence.Body], p); err != nil {
				return failed, err
			}
		}
		task.Module().Reset()
		return execNode(tree, n.Children[sequence.Continuation], p)
	}

	for j, task := range n.Tasks {
		status, err := task.Execute()
		if err != nil {
			return task, err
		}
		p.record(n.TaskIDs[j], status)
	}
	for _, child := range n.Children {
		if failed, err := execNode(tree, child, p); err != nil {
			return failed, err
		}
	}
	return nil, nil
}
