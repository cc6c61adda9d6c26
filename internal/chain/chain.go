package chain

import (
	"context"
	"fmt"
	"sync/atomic"

	"github.com/vk/sigchain/internal/ctxlog"
	"github.com/vk/sigchain/internal/module"
	"github.com/vk/sigchain/internal/sequence"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// Chain owns one replica of the task graph per thread.
type Chain struct {
	threads     int
	first, last *module.Task
	reference   *sequence.Tree

	trees   []*sequence.Tree
	modules [][]*module.Module

	cancel   atomic.Bool
	failures failureLog
}

// New partitions the graph bound downstream of first, up to last when it is
// not nil, and replicates it threads times. The reference graph is only read.
func New(ctx context.Context, first, last *module.Task, threads int) (*Chain, error) {
	ctx, span := tracer.Start(ctx, "chain.New", trace.WithAttributes(attribute.Int("chain.threads", threads)))
	defer span.End()
	logger := ctxlog.FromContext(ctx)

	if threads < 1 {
		err := constructionError("new", fmt.Errorf("%w: got %d", ErrThreads, threads))
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	ref, err := sequence.Partition(first, last)
	if err != nil {
		err = constructionError("partition", err)
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	logger.Debug("Graph partitioned.", "nodes", ref.Len(), "tasks", ref.TaskCount(), "first", first.String())

	c := &Chain{threads: threads, first: first, last: last, reference: ref}
	if err := c.replicate(ctx); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	span.SetAttributes(attribute.Int("chain.nodes", ref.Len()), attribute.Int("chain.tasks", ref.TaskCount()))
	logger.Debug("Chain constructed.", "threads", threads, "modules", len(c.modules[0]))
	return c, nil
}

// Clone returns an independent chain with the same topology. It shares no
// replica, cancellation state or failure history with c.
func (c *Chain) Clone(ctx context.Context) (*Chain, error) {
	n := &Chain{threads: c.threads, first: c.first, last: c.last, reference: c.reference}
	if err := n.replicate(ctx); err != nil {
		return nil, err
	}
	return n, nil
}

// Threads is the number of replicas.
func (c *Chain) Threads() int { return c.threads }

// Reference is the sub-sequence tree over the caller's original tasks.
func (c *Chain) Reference() *sequence.Tree { return c.reference }

// Tree returns the sub-sequence tree driven by thread tid.
func (c *Chain) Tree(tid int) *sequence.Tree { return c.trees[tid] }

// Modules returns the modules cloned for thread tid, in execution order.
func (c *Chain) Modules(tid int) []*module.Module { return c.modules[tid] }

// ForEachModule calls fn for every replica module of every thread.
func (c *Chain) ForEachModule(fn func(tid int, m *module.Module)) {
	for tid, mods := range c.modules {
		for _, m := range mods {
			fn(tid, m)
		}
	}
}
