// Package report builds the table profiling report.
//
// The generator owns no aggregation logic. It resolves a table through an
// engine.Session and issues a fixed, strictly ordered sequence of read-only
// queries (count, schema, per-column distinct counts, a bounded sample, one
// aggregate null-count query), then renders the results as text:
//
//	Using database: <name>                 (only if database supplied)
//	=== Details for table: <table> ===
//	Total rows: <int>
//	Total columns: <int>
//	Distinct values per column:
//	  <col>: <int>
//	Schema:
//	  <col>: <type>
//	Sample data (first 5 rows):
//	{"<col>": <value>, ...}
//	Null counts per column:
//	  <col>: <int>
//
// Either the complete report is returned or an error is; there is no partial
// output. Engine errors are returned unmodified.
package report

import (
	"context"
	"fmt"
	"io"
	"log"
	"strings"
	"time"

	"profiler/internal/config"
	"profiler/internal/engine"
	"profiler/internal/metrics"
)

// DefaultSampleSize is the number of rows materialized when Generator.SampleSize
// is not set.
const DefaultSampleSize = 5

// Step names used in stage logs and metrics labels.
const (
	StepUseNamespace = "use_namespace"
	StepLookup       = "lookup"
	StepResolve      = "resolve"
	StepCount        = "count"
	StepSchema       = "schema"
	StepDistinct     = "distinct"
	StepSample       = "sample"
	StepNullCounts   = "null_counts"
)

// Logger is the minimal logging interface used by the generator.
// *log.Logger satisfies this interface.
type Logger interface {
	Printf(format string, v ...any)
}

// Generator produces profiling reports. The zero value is ready to use.
type Generator struct {
	// Logger receives one "stage=<step> ..." line per step. Nil discards.
	Logger Logger

	// Now is the clock used for step timings. Nil uses time.Now.
	Now func() time.Time

	// SampleSize caps the sample rows. Values <= 0 use DefaultSampleSize.
	SampleSize int
}

// ColumnProfile is the per-column part of a Profile.
type ColumnProfile struct {
	Name     string `json:"name"`
	Type     string `json:"type"`
	Distinct int64  `json:"distinct"`
	Nulls    int64  `json:"nulls"`
}

// Profile is the structured result of one generator run.
type Profile struct {
	// Database is the namespace selected from the "database" key, or "".
	Database string
	Table    string

	TotalRows int64
	Columns   []ColumnProfile

	// SampleSize is the cap the sample was taken with.
	SampleSize int
	Sample     []engine.Row
}

// Generate builds the report for cfg with a zero Generator and renders it.
func Generate(ctx context.Context, s engine.Session, cfg config.Values) (string, error) {
	var g Generator
	return g.Generate(ctx, s, cfg)
}

// Generate is Build followed by Profile.Text.
func (g *Generator) Generate(ctx context.Context, s engine.Session, cfg config.Values) (string, error) {
	p, err := g.Build(ctx, s, cfg)
	if err != nil {
		return "", err
	}
	return p.Text(), nil
}

// Build runs the profile queries against s.
//
// Sequence:
//  1. "table" must be non-blank, otherwise *ConfigError and no queries.
//  2. A non-blank "database" is selected with Session.UseNamespace.
//  3. The table must appear in Session.ListTables, otherwise *LookupError.
//  4. Table handle, row count, schema, distinct count per column, sample,
//     null counts (one aggregate query).
//
// Errors:
//   - *ConfigError (matches ErrConfiguration).
//   - *LookupError (matches ErrLookup).
//   - Any engine error, returned as-is.
func (g *Generator) Build(ctx context.Context, s engine.Session, cfg config.Values) (p *Profile, err error) {
	table := cfg.Get(config.KeyTable)
	if table == "" {
		return nil, &ConfigError{Key: config.KeyTable}
	}

	p = &Profile{Table: table, SampleSize: g.sampleSize()}
	defer func() {
		if err != nil {
			metrics.RecordReport("error", 0)
			return
		}
		metrics.RecordReport("ok", p.TotalRows)
	}()

	if db := cfg.Get(config.KeyDatabase); db != "" {
		if err := g.step(StepUseNamespace, func() error { return s.UseNamespace(ctx, db) }); err != nil {
			return nil, err
		}
		p.Database = db
	}

	if err := g.step(StepLookup, func() error { return lookup(ctx, s, table) }); err != nil {
		return nil, err
	}

	var t engine.Table
	if err := g.step(StepResolve, func() (err error) {
		t, err = s.Table(ctx, table)
		return err
	}); err != nil {
		return nil, err
	}

	if err := g.step(StepCount, func() (err error) {
		p.TotalRows, err = t.Count(ctx)
		return err
	}); err != nil {
		return nil, err
	}

	if err := g.step(StepSchema, func() error {
		fields, err := t.Schema(ctx)
		if err != nil {
			return err
		}
		p.Columns = make([]ColumnProfile, len(fields))
		for i, f := range fields {
			p.Columns[i] = ColumnProfile{Name: f.Name, Type: f.Type}
		}
		return nil
	}); err != nil {
		return nil, err
	}

	if err := g.step(StepDistinct, func() error {
		for i := range p.Columns {
			n, err := t.DistinctCount(ctx, p.Columns[i].Name)
			if err != nil {
				return err
			}
			p.Columns[i].Distinct = n
		}
		return nil
	}); err != nil {
		return nil, err
	}

	if err := g.step(StepSample, func() (err error) {
		p.Sample, err = t.Sample(ctx, p.SampleSize)
		return err
	}); err != nil {
		return nil, err
	}

	if err := g.step(StepNullCounts, func() error {
		counts, err := t.NullCounts(ctx)
		if err != nil {
			return err
		}
		return p.applyNullCounts(counts)
	}); err != nil {
		return nil, err
	}

	return p, nil
}

func lookup(ctx context.Context, s engine.Session, table string) error {
	names, err := s.ListTables(ctx)
	if err != nil {
		return err
	}
	for _, n := range names {
		if n == table {
			return nil
		}
	}
	return &LookupError{Table: table, Namespace: s.Namespace()}
}

// applyNullCounts copies engine null counts onto the schema columns. The
// engine reports them in schema order; a mismatch means the schema changed
// between queries.
func (p *Profile) applyNullCounts(counts []engine.ColumnCount) error {
	if len(counts) != len(p.Columns) {
		return fmt.Errorf("report: null counts cover %d columns, schema has %d", len(counts), len(p.Columns))
	}
	for i, c := range counts {
		if c.Column != p.Columns[i].Name {
			return fmt.Errorf("report: null count column %q at position %d, schema has %q", c.Column, i, p.Columns[i].Name)
		}
		p.Columns[i].Nulls = c.Count
	}
	return nil
}

// step times fn, logs its outcome and records it as a metric.
func (g *Generator) step(name string, fn func() error) error {
	start := g.now()
	err := fn()
	d := g.now().Sub(start).Truncate(time.Millisecond)

	logf := g.logger()
	if err != nil {
		logf("stage=%s status=error duration=%s err=%v", name, d, err)
		metrics.RecordStep(name, "error", d)
		return err
	}
	logf("stage=%s ok duration=%s", name, d)
	metrics.RecordStep(name, "ok", d)
	return nil
}

func (g *Generator) now() time.Time {
	if g.Now == nil {
		return time.Now()
	}
	return g.Now()
}

func (g *Generator) sampleSize() int {
	if g.SampleSize <= 0 {
		return DefaultSampleSize
	}
	return g.SampleSize
}

func (g *Generator) logger() func(format string, v ...any) {
	if g.Logger == nil {
		return log.New(io.Discard, "", 0).Printf
	}
	return g.Logger.Printf
}

// Text renders the report lines joined by "\n", without a trailing newline.
func (p *Profile) Text() string {
	var lines []string
	if p.Database != "" {
		lines = append(lines, "Using database: "+p.Database)
	}
	lines = append(lines,
		fmt.Sprintf("=== Details for table: %s ===", p.Table),
		fmt.Sprintf("Total rows: %d", p.TotalRows),
		fmt.Sprintf("Total columns: %d", len(p.Columns)),
		"Distinct values per column:",
	)
	for _, c := range p.Columns {
		lines = append(lines, fmt.Sprintf("  %s: %d", c.Name, c.Distinct))
	}
	lines = append(lines, "Schema:")
	for _, c := range p.Columns {
		lines = append(lines, fmt.Sprintf("  %s: %s", c.Name, c.Type))
	}
	lines = append(lines, fmt.Sprintf("Sample data (first %d rows):", p.SampleSize))
	for _, r := range p.Sample {
		lines = append(lines, RenderRow(r))
	}
	lines = append(lines, "Null counts per column:")
	for _, c := range p.Columns {
		lines = append(lines, fmt.Sprintf("  %s: %d", c.Name, c.Nulls))
	}
	return strings.Join(lines, "\n")
}
