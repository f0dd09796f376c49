// Package pipeline runs one cleaning pass: parse raw lines, build the padded
// table and type the date columns.
package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/ccollicutt/fieldnotes/pkg/config"
	"github.com/ccollicutt/fieldnotes/pkg/logging"
	"github.com/ccollicutt/fieldnotes/pkg/record"
	"github.com/ccollicutt/fieldnotes/pkg/table"
)

// minChunk is the smallest number of lines handed to one parse goroutine.
const minChunk = 256

// Pipeline turns raw observation lines into a cleaned table.
type Pipeline struct {
	cfg     *config.Config
	parser  *record.Parser
	logger  *slog.Logger
	workers int
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithLogger sets the logger. A nil logger discards output.
func WithLogger(l *slog.Logger) Option {
	return func(p *Pipeline) {
		if l != nil {
			p.logger = l
		}
	}
}

// WithWorkers overrides cfg.Workers. Values below 2 parse sequentially.
func WithWorkers(n int) Option {
	return func(p *Pipeline) {
		p.workers = n
	}
}

// New creates a pipeline from configuration.
func New(cfg *config.Config, opts ...Option) *Pipeline {
	p := &Pipeline{
		cfg:     cfg,
		logger:  logging.Discard(),
		workers: cfg.Workers,
	}
	for _, opt := range opts {
		opt(p)
	}
	p.parser = record.NewParser(
		record.WithMarker(cfg.Record.Marker),
		record.WithDateWidth(cfg.Record.DateWidth),
	)
	return p
}

// Result is the outcome of a successful run.
type Result struct {
	// Table is the cleaned table, one row per input line.
	Table *table.Table

	// Records classifies each parsed line against the table width.
	Records []record.Record

	// DateIssues lists values nulled under the warn date policy.
	DateIssues []table.DateIssue

	Stats Stats
}

// Stats summarizes a run.
type Stats struct {
	LinesRead    int           `json:"lines_read"`
	Rows         int           `json:"rows"`
	PaddedRows   int           `json:"padded_rows"`
	MissingCells int           `json:"missing_cells"`
	Duration     time.Duration `json:"duration"`
}

// HasDateIssues reports whether any date was nulled.
func (r *Result) HasDateIssues() bool {
	return len(r.DateIssues) > 0
}

// Run cleans lines. Any parse, shape or (under the fail policy) date error
// aborts the run and no result is returned.
func (p *Pipeline) Run(ctx context.Context, lines []string) (*Result, error) {
	start := time.Now()
	p.logger.Debug("parsing lines",
		slog.Int("lines", len(lines)),
		slog.Int("workers", p.workers))

	fields, err := p.parse(ctx, lines)
	if err != nil {
		return nil, fmt.Errorf("parsing: %w", err)
	}

	tbl, records, err := table.Build(fields, p.cfg.Record.Columns)
	if err != nil {
		return nil, fmt.Errorf("building table: %w", err)
	}

	issues, err := table.FixDates(tbl, table.DateOptions{
		Columns:           p.cfg.Dates.Columns,
		ImpliedYearSuffix: p.cfg.Dates.ImpliedYearSuffix,
		Layout:            p.cfg.Dates.Layout,
		OnError:           p.cfg.Dates.Policy(),
		Logger:            p.logger,
	})
	if err != nil {
		return nil, fmt.Errorf("fixing dates: %w", err)
	}

	result := &Result{
		Table:      tbl,
		Records:    records,
		DateIssues: issues,
		Stats: Stats{
			LinesRead: len(lines),
			Rows:      tbl.NumRows(),
		},
	}
	for _, rec := range records {
		if !rec.Complete() {
			result.Stats.PaddedRows++
		}
	}
	for i := 0; i < tbl.NumColumns(); i++ {
		for _, c := range tbl.ColumnAt(i).Cells {
			if c.Missing {
				result.Stats.MissingCells++
			}
		}
	}
	result.Stats.Duration = time.Since(start)

	p.logger.Info("cleaning complete",
		slog.Int("rows", result.Stats.Rows),
		slog.Int("padded_rows", result.Stats.PaddedRows),
		slog.Int("date_issues", len(issues)),
		slog.Duration("duration", result.Stats.Duration))

	return result, nil
}

// parse splits lines into contiguous chunks parsed concurrently. Each chunk
// stops at its first bad line; the error reported is the one from the
// earliest chunk, which is the lowest failing line number overall.
func (p *Pipeline) parse(ctx context.Context, lines []string) ([]record.FieldSequence, error) {
	if p.workers < 2 || len(lines) < 2*minChunk {
		return p.parser.ParseLines(ctx, lines)
	}

	chunk := (len(lines) + p.workers - 1) / p.workers
	if chunk < minChunk {
		chunk = minChunk
	}
	nChunks := (len(lines) + chunk - 1) / chunk

	out := make([]record.FieldSequence, len(lines))
	errs := make([]error, nChunks)

	var g errgroup.Group
	g.SetLimit(p.workers)
	for c := 0; c < nChunks; c++ {
		lo := c * chunk
		hi := min(lo+chunk, len(lines))
		g.Go(func() error {
			for i := lo; i < hi; i++ {
				if err := ctx.Err(); err != nil {
					return err
				}
				fields, err := p.parser.ParseLine(i+1, lines[i])
				if err != nil {
					errs[c] = err
					return nil
				}
				out[i] = fields
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	for _, err := range errs {
		if err != nil {
			return nil, err
		}
	}
	return out, nil
}
