// Package pipeline wires the reduction stages to a pipeline file: it loads
// every configured source, runs the per-source chain concurrently, then
// merges and reduces the result once.
//
//	source ─┬─ Normalize → Coerce → Downcast → Sanitize → Consolidate ─┐
//	source ─┘                                                          ├→ Merge → DropColumns → Balance → Eliminate → Split
//	   ...                                                             ┘
package pipeline

import (
	"context"
	"fmt"
	"log"
	"runtime"
	"slices"
	"time"

	"flowprep/internal/config"
	"flowprep/internal/datasource"
	"flowprep/internal/datasource/file"
	"flowprep/internal/datasource/httpds"
	"flowprep/internal/metrics"
	"flowprep/internal/parser"
	csvparser "flowprep/internal/parser/csv"
	"flowprep/internal/table"
	"flowprep/internal/transformer"
	"flowprep/internal/transformer/builtin"

	"golang.org/x/sync/errgroup"
)

// Result is everything a run produces.
type Result struct {
	// Reduced is the balanced table after column elimination, before the
	// split. It still holds the label column.
	Reduced *table.Table

	Dataset *builtin.SplitDataset
	Report  builtin.EliminationReport

	// HadMissing lists columns that held non-finite values in any source,
	// sorted and without duplicates.
	HadMissing []string
}

// Input is one raw source table and where it came from.
type Input struct {
	Name  string
	Table *table.Table
}

// BuildParser maps parser configuration into a concrete parser implementation.
func BuildParser(p config.Parser) (parser.Parser, error) {
	switch p.Kind {
	case "", "csv":
		return csvparser.NewParser(csvparser.Options{
			Comma:      p.Options.Rune("comma", ','),
			TrimSpace:  p.Options.Bool("trim_space", true),
			LazyQuotes: p.Options.Bool("lazy_quotes", false),
			HeaderMap:  p.Options.StringMap("header_map"),

			ExpectedFields: p.Options.Int("expected_fields", 0),
		}), nil
	default:
		return nil, fmt.Errorf("unsupported parser.kind=%s", p.Kind)
	}
}

// SourcePaths expands every configured source into paths or URLs, in order.
func SourcePaths(p config.Pipeline) ([]string, error) {
	var out []string
	for i, s := range p.Sources {
		paths, err := file.Resolve(s.Path, s.List)
		if err != nil {
			return nil, fmt.Errorf("sources[%d]: %w", i, err)
		}
		out = append(out, paths...)
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("no sources configured")
	}
	return out, nil
}

// LoadSources parses every source into a raw table. Sources are read
// concurrently, at most runtime.workers at a time; the result keeps source
// order.
func LoadSources(ctx context.Context, p config.Pipeline) ([]Input, error) {
	paths, err := SourcePaths(p)
	if err != nil {
		return nil, err
	}
	out := make([]Input, len(paths))
	client := httpds.NewClient(httpds.Config{
		Timeout:            time.Duration(p.HTTP.TimeoutSeconds) * time.Second,
		MaxRetries:         p.HTTP.MaxRetries,
		InsecureSkipVerify: p.HTTP.InsecureSkipVerify,
	})

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers(p.Runtime.Workers))
	for i, path := range paths {
		g.Go(func() error {
			t, err := loadOne(ctx, p.Parser, newSource(client, path))
			if err != nil {
				return err
			}
			out[i] = Input{Name: path, Table: t}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

// newSource picks the HTTP source for URLs and the local file source
// otherwise.
func newSource(c *httpds.Client, path string) datasource.Source {
	if httpds.IsURL(path) {
		return httpds.NewSource(c, path)
	}
	return file.NewLocal(path)
}

func loadOne(ctx context.Context, pc config.Parser, src datasource.Source) (*table.Table, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	start := time.Now()
	rc, err := src.Open(ctx)
	if err != nil {
		return nil, err
	}
	defer rc.Close()

	// Parsers are not safe for concurrent use; build one per source.
	ps, err := BuildParser(pc)
	if err != nil {
		return nil, err
	}
	t, skipped, err := ps.Parse(rc)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", src.Name(), err)
	}
	log.Printf("source: path=%s rows=%d cols=%d skipped=%d dur=%s",
		src.Name(), t.NumRows(), t.NumCols(), skipped, time.Since(start).Round(time.Millisecond))
	return t, nil
}

// Run loads the configured sources and reduces them.
func Run(ctx context.Context, p config.Pipeline) (*Result, error) {
	inputs, err := LoadSources(ctx, p)
	if err != nil {
		return nil, err
	}
	return Reduce(ctx, p, inputs)
}

// Reduce runs the full stage sequence over already parsed raw tables.
func Reduce(ctx context.Context, p config.Pipeline, inputs []Input) (*Result, error) {
	if len(inputs) == 0 {
		return nil, fmt.Errorf("%w: no input tables", transformer.ErrEmptyResult)
	}
	job := p.Job
	labelCol := p.Labels.Column
	if labelCol == "" {
		labelCol = builtin.DefaultLabelColumn
	}

	prepared := make([]*table.Table, len(inputs))
	missing := make([][]string, len(inputs))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers(p.Runtime.Workers))
	for i, in := range inputs {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			metrics.RecordRows(job, "loaded", int64(in.Table.NumRows()))
			chain := sourceChain(p, labelCol, &missing[i])
			t, err := chain.Apply(in.Table)
			if err != nil {
				return fmt.Errorf("source %s: %w", in.Name, err)
			}
			prepared[i] = t
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	res := &Result{HadMissing: mergeNames(missing)}
	if len(res.HadMissing) > 0 {
		log.Printf("pipeline: job=%s had_missing=%v", job, res.HadMissing)
	}

	merged, err := step(job, "merge", func() (*table.Table, error) { return builtin.Merge(prepared...) })
	if err != nil {
		return nil, err
	}
	if dropped := unshared(prepared, merged); dropped > 0 {
		metrics.RecordColumnsDropped(job, "merge", dropped)
	}

	seed := p.Reduce.RandomSeed
	tail := transformer.Steps(job,
		transformer.Step{Name: "drop_columns", T: builtin.DropColumns{Names: p.Reduce.DropColumns}},
		transformer.Step{Name: "balance", T: counted(job, "undersampled", builtin.Balance{
			Column:  labelCol,
			Exclude: p.Reduce.ExcludedLabels,
			Rand:    builtin.NewRand(derive(seed, 0)),
		})},
	)
	balanced, err := tail.Apply(merged)
	if err != nil {
		return nil, err
	}

	elim := builtin.Eliminate{Threshold: p.Reduce.Threshold, Protect: []string{labelCol}}
	res.Reduced, err = step(job, "eliminate", func() (*table.Table, error) {
		out, rep, err := elim.Reduce(balanced)
		res.Report = rep
		return out, err
	})
	if err != nil {
		return nil, err
	}
	metrics.RecordColumnsDropped(job, "constant", len(res.Report.Constant))
	metrics.RecordColumnsDropped(job, "duplicate", len(res.Report.Duplicate))
	metrics.RecordColumnsDropped(job, "correlated", len(res.Report.Correlated))
	log.Printf("eliminate: job=%s constant=%v duplicate=%v correlated=%v",
		job, res.Report.Constant, res.Report.Duplicate, res.Report.Correlated)

	split := builtin.Split{
		Column:       labelCol,
		TestFraction: p.Reduce.TestFraction,
		Rand:         builtin.NewRand(derive(seed, 1)),
	}
	start := time.Now()
	res.Dataset, err = split.Split(res.Reduced)
	metrics.RecordStep(job, "split", err, time.Since(start))
	if err != nil {
		return nil, err
	}
	log.Printf("split: job=%s train=%d test=%d features=%d labels=%d",
		job, res.Dataset.TrainX.NumRows(), res.Dataset.TestX.NumRows(),
		res.Dataset.TrainX.NumCols(), len(res.Dataset.Encoding.Labels))
	return res, nil
}

// sourceChain builds the per-source stages. Columns the downcaster reports
// as having held non-finite values are stored into missing.
func sourceChain(p config.Pipeline, labelCol string, missing *[]string) transformer.Chain {
	job := p.Job
	downcast := transformer.Func(func(in *table.Table) (*table.Table, error) {
		out, had, err := builtin.Downcast{}.Reduce(in)
		*missing = had
		return out, err
	})
	return transformer.Steps(job,
		transformer.Step{Name: "normalize", T: builtin.Normalize{}},
		transformer.Step{Name: "coerce", T: counted(job, "sentinel_dropped", builtin.Coerce{
			Schema:         p.SchemaFields(),
			SentinelColumn: p.Schema.SentinelColumn,
		})},
		transformer.Step{Name: "downcast", T: downcast},
		transformer.Step{Name: "sanitize", T: counted(job, "nonfinite_dropped", builtin.Sanitize{})},
		transformer.Step{Name: "consolidate", T: counted(job, "unwanted_dropped", builtin.Consolidate{
			Column:   labelCol,
			Mapping:  p.LabelMapping(),
			Unwanted: p.Labels.UnwantedCategories,
		})},
	)
}

// counted records the rows t removed under the given kind.
func counted(job, kind string, t transformer.Transformer) transformer.Transformer {
	return transformer.Func(func(in *table.Table) (*table.Table, error) {
		out, err := t.Apply(in)
		if err == nil {
			metrics.RecordRows(job, kind, int64(in.NumRows()-out.NumRows()))
		}
		return out, err
	})
}

// step times fn as a named stage for stages that do not fit Transformer.
func step(job, name string, fn func() (*table.Table, error)) (*table.Table, error) {
	start := time.Now()
	out, err := fn()
	d := time.Since(start)
	metrics.RecordStep(job, name, err, d)
	if err != nil {
		log.Printf("transform: job=%s step=%s err=%v", job, name, err)
		return nil, err
	}
	log.Printf("transform: job=%s step=%s rows=%d cols=%d dur=%s",
		job, name, out.NumRows(), out.NumCols(), d.Round(time.Millisecond))
	return out, nil
}

// derive gives each randomized stage its own seed so results do not depend
// on how many draws another stage made. A nil seed stays nil.
func derive(seed *uint64, stage uint64) *uint64 {
	if seed == nil {
		return nil
	}
	s := *seed + stage
	return &s
}

func workers(n int) int {
	if n > 0 {
		return n
	}
	return runtime.GOMAXPROCS(0)
}

func mergeNames(lists [][]string) []string {
	var out []string
	for _, l := range lists {
		out = append(out, l...)
	}
	slices.Sort(out)
	return slices.Compact(out)
}

// unshared counts the distinct columns of the inputs that did not survive
// the merge.
func unshared(inputs []*table.Table, merged *table.Table) int {
	seen := map[string]struct{}{}
	for _, t := range inputs {
		for _, n := range t.Names() {
			if merged.Index(n) < 0 {
				seen[n] = struct{}{}
			}
		}
	}
	return len(seen)
}
