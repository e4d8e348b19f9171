package ingest

import (
	"context"
	"errors"
	"log/slog"
	"runtime"
	"sync"
	"time"

	"github.com/panjf2000/ants/v2"
	"github.com/poiesic/recall/ai"
	"github.com/poiesic/recall/core"
	"github.com/poiesic/recall/engine"
)

const (
	defaultMaxAttempts = 3
	defaultBaseDelay   = 500 * time.Millisecond
)

// Pipeline indexes batches of documents through a retrieval engine with
// bounded parallelism. Individual document failures are logged and
// counted, not fatal; transient embedding failures are retried with
// exponential backoff before a document is counted as failed.
type Pipeline struct {
	engine      *engine.Engine
	pool        *ants.Pool
	maxAttempts int
	baseDelay   time.Duration
	logger      *slog.Logger
}

// Option configures a Pipeline.
type Option func(*Pipeline) error

// WithPoolSize sets the worker pool size for concurrent indexing.
// Default is runtime.NumCPU() / 2, with a minimum of 1.
func WithPoolSize(size int) Option {
	return func(p *Pipeline) error {
		if size < 1 {
			size = 1
		}

		if p.pool != nil {
			p.pool.Release()
		}

		pool, err := ants.NewPool(size)
		if err != nil {
			return err
		}
		p.pool = pool
		return nil
	}
}

// WithRetry sets the retry policy for transient embedding failures.
// Default is 3 attempts with a 500ms base delay.
func WithRetry(maxAttempts int, baseDelay time.Duration) Option {
	return func(p *Pipeline) error {
		if maxAttempts <= 0 {
			return ErrInvalidMaxAttempts
		}
		p.maxAttempts = maxAttempts
		p.baseDelay = baseDelay
		return nil
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(p *Pipeline) error {
		if logger == nil {
			logger = slog.Default()
		}
		p.logger = logger
		return nil
	}
}

// NewPipeline creates an indexing pipeline over an engine.
func NewPipeline(eng *engine.Engine, opts ...Option) (*Pipeline, error) {
	if eng == nil {
		return nil, ErrEngineRequired
	}

	poolSize := runtime.NumCPU() / 2
	if poolSize < 1 {
		poolSize = 1
	}
	pool, err := ants.NewPool(poolSize)
	if err != nil {
		return nil, err
	}

	p := &Pipeline{
		engine:      eng,
		pool:        pool,
		maxAttempts: defaultMaxAttempts,
		baseDelay:   defaultBaseDelay,
		logger:      slog.Default().With("component", "ingest"),
	}

	// Apply options
	for _, opt := range opts {
		if err := opt(p); err != nil {
			p.Release()
			return nil, err
		}
	}

	return p, nil
}

// Result summarizes one IndexAll run.
type Result struct {
	// Indexed is the number of successfully indexed documents.
	Indexed int

	// Failed is the number of documents that could not be indexed.
	Failed int

	// Skipped is the number of documents not attempted because the
	// context was canceled.
	Skipped int
}

// IndexAll indexes every document through the engine. Cancellation is
// cooperative and takes effect between documents: a document whose
// indexing has started is always finished. Already-indexed documents
// are not rolled back on a later failure.
func (p *Pipeline) IndexAll(ctx context.Context, documents []*core.Document) (Result, error) {
	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		result  Result
		skipped int
	)

	for _, doc := range documents {
		if ctx.Err() != nil {
			skipped++
			continue
		}

		doc := doc
		wg.Add(1)
		err := p.pool.Submit(func() {
			defer wg.Done()

			if ctx.Err() != nil {
				mu.Lock()
				result.Skipped++
				mu.Unlock()
				return
			}

			err := p.indexOne(ctx, doc)

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				p.logger.Warn("failed to index document", "documentID", doc.ID, "err", err)
				result.Failed++
				return
			}
			result.Indexed++
		})
		if err != nil {
			wg.Done()
			mu.Lock()
			result.Failed++
			mu.Unlock()
		}
	}

	wg.Wait()
	result.Skipped += skipped

	p.logger.Info("indexing run finished",
		"indexed", result.Indexed, "failed", result.Failed, "skipped", result.Skipped)

	if err := ctx.Err(); err != nil {
		return result, err
	}
	return result, nil
}

// indexOne indexes a single document, retrying transient embedding
// failures. Validation and storage errors are never retried.
func (p *Pipeline) indexOne(ctx context.Context, doc *core.Document) error {
	var permanent error
	err := retryWithBackoff(ctx, func() error {
		err := p.engine.IndexDocument(ctx, doc)
		if err != nil && !errors.Is(err, ai.ErrEmbeddingFailed) {
			// Not transient; stop the retry loop and report below.
			permanent = err
			return nil
		}
		return err
	}, p.maxAttempts, p.baseDelay)
	if permanent != nil {
		return permanent
	}
	return err
}

// Release releases the worker pool.
// The pipeline should not be used after calling Release.
func (p *Pipeline) Release() {
	if p.pool != nil {
		p.pool.Release()
	}
}
