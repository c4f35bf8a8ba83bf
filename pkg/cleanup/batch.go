package cleanup

import (
	"context"
	"errors"
	"fmt"
	"math"
	"runtime"
	"runtime/debug"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"
)

// DefaultMemoryBudget is used when the process has no memory limit set.
const DefaultMemoryBudget uint64 = 256 << 20

// BatchSizePolicy maps a memory budget to the number of documents parsed
// at once. Steps[i] applies when the budget rounds to i units; the last
// step applies to everything larger.
type BatchSizePolicy struct {
	Unit  uint64
	Steps []int
}

// DefaultBatchSizePolicy returns 25 documents below 32 MiB, growing by
// one step per 64 MiB up to 500.
func DefaultBatchSizePolicy() BatchSizePolicy {
	return BatchSizePolicy{
		Unit:  64 << 20,
		Steps: []int{25, 100, 200, 300, 400, 500},
	}
}

// MaxBatch returns the batch size for budget bytes. It is non-decreasing in
// budget as long as Steps is.
func (p BatchSizePolicy) MaxBatch(budget uint64) int {
	if p.Unit == 0 || len(p.Steps) == 0 {
		p = DefaultBatchSizePolicy()
	}
	ratio := budget/p.Unit + boolToUint(budget%p.Unit >= (p.Unit+1)/2)
	idx := min(ratio, uint64(len(p.Steps)-1))
	return max(p.Steps[idx], 1)
}

func boolToUint(b bool) uint64 {
	if b {
		return 1
	}
	return 0
}

// AvailableMemory returns the runtime soft memory limit, or fallback when
// none is configured.
func AvailableMemory(fallback uint64) uint64 {
	limit := debug.SetMemoryLimit(-1)
	if limit <= 0 || limit == math.MaxInt64 {
		return fallback
	}
	return uint64(limit)
}

// AcceptFunc receives one parsed document. tree is nil when err is set;
// err is then a *ParseError. The tree is closed after AcceptFunc returns.
// A non-nil return stops the parse after the current batch.
type AcceptFunc func(doc *Document, tree Tree, err error) error

// BatchParser parses documents in memory-bounded batches.
type BatchParser struct {
	parser Parser
	size   int
	jobs   int
}

// NewBatchParser creates a batch parser whose batch size is policy applied
// to budget. jobs bounds parallelism within a batch; 0 uses GOMAXPROCS.
func NewBatchParser(parser Parser, policy BatchSizePolicy, budget uint64, jobs int) *BatchParser {
	if jobs <= 0 {
		jobs = runtime.GOMAXPROCS(0)
	}
	return &BatchParser{
		parser: parser,
		size:   policy.MaxBatch(budget),
		jobs:   jobs,
	}
}

// BatchSize returns the maximum number of trees alive at once.
func (bp *BatchParser) BatchSize() int {
	return bp.size
}

// ParseAll parses docs with opts and streams each result to accept on the
// calling goroutine. Batches are processed in order; order within a batch
// is unspecified. Cancellation is honoured between batches only, so a
// batch always completes.
func (bp *BatchParser) ParseAll(ctx context.Context, docs []*Document, opts Options, accept AcceptFunc) error {
	for start, n := 0, 0; start < len(docs); start, n = start+bp.size, n+1 {
		if err := ctx.Err(); err != nil {
			return fmt.Errorf("%w: %w", ErrCancelled, err)
		}
		end := min(start+bp.size, len(docs))
		if err := bp.parseBatch(ctx, n, docs[start:end], opts, accept); err != nil {
			return err
		}
	}
	return nil
}

type parsed struct {
	doc  *Document
	tree Tree
	err  error
}

func (bp *BatchParser) parseBatch(ctx context.Context, index int, batch []*Document, opts Options, accept AcceptFunc) error {
	ctx, span := tracer.Start(ctx, "cleanup.ParseBatch",
		trace.WithAttributes(
			attribute.Int("cleanup.batch_index", index),
			attribute.Int("cleanup.batch_size", len(batch)),
		),
	)
	defer span.End()
	recordBatch(ctx, len(batch))

	results := make(chan parsed, len(batch))
	g, gctx := errgroup.WithContext(context.WithoutCancel(ctx))
	g.SetLimit(bp.jobs)

	go func() {
		for _, doc := range batch {
			g.Go(func() error {
				tree, err := bp.parser.Parse(gctx, doc, opts)
				results <- parsed{doc: doc, tree: tree, err: err}
				return nil
			})
		}
		_ = g.Wait()
		close(results)
	}()

	var acceptErr error
	for r := range results {
		if acceptErr != nil {
			closeTree(r.tree)
			continue
		}
		if r.err != nil {
			closeTree(r.tree)
			r.tree = nil
			var perr *ParseError
			if !errors.As(r.err, &perr) {
				r.err = &ParseError{DocumentID: r.doc.ID, Err: r.err}
			}
		}
		acceptErr = accept(r.doc, r.tree, r.err)
		closeTree(r.tree)
	}
	if acceptErr != nil {
		span.RecordError(acceptErr)
	}
	return acceptErr
}

func closeTree(t Tree) {
	if t != nil {
		t.Close()
	}
}
