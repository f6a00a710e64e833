package driver

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/arloliu/fragscan/errs"
	"github.com/arloliu/fragscan/format"
	"github.com/arloliu/fragscan/internal/collision"
	"github.com/arloliu/fragscan/internal/options"
	"github.com/arloliu/fragscan/search"
)

// Sink receives matches from concurrent workers.
type Sink interface {
	Write(m search.Match) error
}

// Request describes one search run.
type Request struct {
	Query      string
	Accessions []string
	Algorithm  format.Algorithm
	Mode       search.Mode
	// UnalignedOnly limits the search to unaligned fragments, see search.WithUnalignedOnly.
	UnalignedOnly bool
	// Ordered emits the matches of each accession in buffer order.
	Ordered bool
}

// Driver searches accessions resolved through an Opener.
type Driver struct {
	opener search.Opener
	cfg    *config
	logger *slog.Logger
}

// New creates a Driver.
func New(opener search.Opener, opts ...Option) (*Driver, error) {
	if opener == nil {
		return nil, fmt.Errorf("%w: opener is required", errs.ErrInvalidConfig)
	}

	cfg := defaultConfig()
	if err := options.Apply(cfg, opts...); err != nil {
		return nil, err
	}

	logger := cfg.logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Driver{opener: opener, cfg: cfg, logger: logger}, nil
}

// sinkError marks a failure of the sink, which aborts the whole run.
type sinkError struct{ err error }

func (e *sinkError) Error() string { return "write match: " + e.err.Error() }
func (e *sinkError) Unwrap() error { return e.err }

// Run searches every accession of req and writes matches to sink. Duplicate
// accessions are searched once.
//
// The returned error is non-nil only for an invalid request, a sink failure or a
// cancelled context; per-accession failures are reported in the Report.
func (d *Driver) Run(ctx context.Context, req Request, sink Sink) (*Report, error) {
	if _, err := search.NewBlockFactory([]byte(req.Query), req.Algorithm); err != nil {
		return nil, err
	}
	if sink == nil {
		return nil, fmt.Errorf("%w: sink is required", errs.ErrInvalidConfig)
	}

	tracker := collision.NewTracker()
	for _, accession := range req.Accessions {
		if _, err := tracker.Track(accession); err != nil {
			return nil, fmt.Errorf("%w: empty accession in request", err)
		}
	}
	accessions := tracker.Names()
	report := &Report{Results: make([]Result, len(accessions))}

	d.logger.Info("search started",
		slog.String("query", req.Query),
		slog.Int("accessions", len(accessions)),
		slog.String("algorithm", req.Algorithm.Resolve().String()),
		slog.String("mode", req.Mode.String()),
		slog.Int("threads", d.cfg.threads),
	)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(d.cfg.threads)

	for i, accession := range accessions {
		report.Results[i].Accession = accession
		g.Go(func() error {
			res := &report.Results[i]
			if err := gctx.Err(); err != nil {
				res.Err = err
				return nil
			}

			d.searchAccession(gctx, req, res, sink)

			var se *sinkError
			if errors.As(res.Err, &se) {
				return se
			}

			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return report, err
	}
	if err := ctx.Err(); err != nil {
		return report, err
	}

	d.logger.Info("search finished",
		slog.Uint64("matches", report.Matches()),
		slog.Int("failed", len(report.Failed())),
	)

	return report, nil
}

func (d *Driver) searchAccession(ctx context.Context, req Request, res *Result, sink Sink) {
	start := time.Now()
	logger := d.logger.With(slog.String("accession", res.Accession))

	res.Err = d.scanAccession(ctx, req, res, sink, logger)
	res.Duration = time.Since(start)

	if res.Err != nil {
		logger.Warn("accession failed",
			slog.String("kind", res.Kind().String()),
			slog.Any("error", res.Err),
		)

		return
	}

	logger.Info("accession searched",
		slog.Uint64("buffers", res.Buffers),
		slog.Uint64("matches", res.Matches),
		slog.Duration("duration", res.Duration),
	)
}

func (d *Driver) scanAccession(ctx context.Context, req Request, res *Result, sink Sink, logger *slog.Logger) error {
	it, err := search.OpenMatchIterator(ctx, d.opener, res.Accession, req.Query,
		search.WithAlgorithm(req.Algorithm),
		search.WithMode(req.Mode),
		search.WithUnalignedOnly(req.UnalignedOnly),
		search.WithLogger(logger),
	)
	if err != nil {
		return err
	}
	defer func() { _ = it.Close() }()

	var buffers, matches atomic.Uint64
	emit := func(m search.Match) error {
		if err := sink.Write(m); err != nil {
			return &sinkError{err: err}
		}
		matches.Add(1)

		return nil
	}

	var ord *reorder
	if req.Ordered {
		ord = newReorder(emit)
	}

	queue := make(chan search.Buffer)
	g, gctx := errgroup.WithContext(ctx)

	// dispatcher
	g.Go(func() error {
		defer close(queue)
		for {
			if err := gctx.Err(); err != nil {
				return err
			}

			buf, ok, err := it.NextBuffer()
			if err != nil {
				return err
			}
			if !ok {
				return nil
			}
			buffers.Add(1)

			select {
			case queue <- buf:
			case <-gctx.Done():
				buf.Close()
				return gctx.Err()
			}
		}
	})

	for range d.cfg.workers {
		g.Go(func() error {
			for buf := range queue {
				if gctx.Err() != nil {
					buf.Close()
					continue
				}

				err := scanBuffer(buf, emit, ord)
				buf.Close()
				if err != nil {
					return err
				}
			}

			return nil
		})
	}

	err = g.Wait()
	res.Buffers = buffers.Load()
	res.Matches = matches.Load()

	return err
}

// scanBuffer drains buf, writing matches straight to emit or through ord.
func scanBuffer(buf search.Buffer, emit func(search.Match) error, ord *reorder) error {
	var found []search.Match
	for {
		m, ok, err := buf.NextMatch()
		if err != nil {
			return fmt.Errorf("scan %s: %w", buf.ID(), err)
		}
		if !ok {
			break
		}

		if ord != nil {
			found = append(found, m)
			continue
		}
		if err := emit(m); err != nil {
			return err
		}
	}

	if ord != nil {
		return ord.complete(buf.Seq(), found)
	}

	return nil
}

// reorder releases per-buffer match lists in sequence order.
type reorder struct {
	mu      sync.Mutex
	emit    func(search.Match) error
	next    uint64
	pending map[uint64][]search.Match
}

func newReorder(emit func(search.Match) error) *reorder {
	return &reorder{emit: emit, pending: make(map[uint64][]search.Match)}
}

// complete records the matches of buffer seq and emits every buffer that is now next
// in line. Buffers without matches must be completed too.
func (r *reorder) complete(seq uint64, matches []search.Match) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.pending[seq] = matches
	for {
		ready, ok := r.pending[r.next]
		if !ok {
			return nil
		}
		delete(r.pending, r.next)
		r.next++

		for _, m := range ready {
			if err := r.emit(m); err != nil {
				return err
			}
		}
	}
}
