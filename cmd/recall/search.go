package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/poiesic/recall/core"
	"github.com/poiesic/recall/search"
	"github.com/urfave/cli/v2"
)

func searchCommand() *cli.Command {
	return &cli.Command{
		Name:      "search",
		Usage:     "Search stored documents",
		ArgsUsage: "QUERY...",
		Action:    searchAction,
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:    "limit",
				Aliases: []string{"n"},
				Usage:   "Maximum number of results (0 for all)",
				Value:   10,
			},
			&cli.StringSliceFlag{
				Name:    "source-type",
				Aliases: []string{"s"},
				Usage:   "Only search these source types (repeatable)",
			},
			&cli.StringFlag{
				Name:  "after",
				Usage: "Only documents created at or after this time",
			},
			&cli.StringFlag{
				Name:  "before",
				Usage: "Only documents created at or before this time",
			},
			&cli.BoolFlag{
				Name:  "hard",
				Usage: "Drop documents outside a time range named in the query instead of down-ranking them",
			},
			&cli.DurationFlag{
				Name:  "timeout",
				Usage: "Give up ranking after this long (0 for no limit)",
			},
			&cli.BoolFlag{
				Name:  "partial",
				Usage: "Print results scored before a timeout",
			},
			&cli.BoolFlag{
				Name:    "verbose",
				Aliases: []string{"v"},
				Usage:   "Trace each search stage on stderr",
			},
		},
	}
}

func searchAction(c *cli.Context) error {
	rankConfig, err := loadRankConfig(c)
	if err != nil {
		return err
	}
	loc, err := rankConfig.Location()
	if err != nil {
		return err
	}

	q := &core.Query{
		Text:         strings.Join(c.Args().Slice(), " "),
		Limit:        c.Int("limit"),
		AllowPartial: c.Bool("partial"),
	}
	if c.Bool("hard") {
		q.TemporalMode = core.TemporalHard
	}
	if q.SourceTypes, err = parseSourceTypes(c.StringSlice("source-type")); err != nil {
		return err
	}
	if q.DateFilter, err = dateFilter(c.String("after"), c.String("before"), loc); err != nil {
		return err
	}

	db, err := openDatabase(c)
	if err != nil {
		return err
	}
	defer db.Close()

	searcher, err := db.NewSearcher()
	if err != nil {
		return fmt.Errorf("failed to create searcher: %w", err)
	}
	defer searcher.Close()

	ctx := c.Context
	if timeout := c.Duration("timeout"); timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	var monitor search.Monitor
	if c.Bool("verbose") {
		monitor = &traceMonitor{w: c.App.ErrWriter, start: time.Now()}
	}

	results, err := searcher.SearchWithMonitor(ctx, q, monitor)
	if err != nil {
		if !q.AllowPartial || !errors.Is(err, core.ErrResourceBudgetExceeded) {
			return fmt.Errorf("search failed: %w", err)
		}
		fmt.Fprintf(c.App.ErrWriter, "warning: %v\n", err)
	}

	printResults(c.App.Writer, results)
	return nil
}

func printResults(w io.Writer, results []*core.ScoredResult) {
	fmt.Fprintf(w, "Found %d results\n", len(results))
	for i, r := range results {
		doc := r.Document
		s := r.Signals

		fmt.Fprintf(w, "\n%d. %s [confidence %.3f]\n", i+1, displayTitle(doc), r.Confidence)
		fmt.Fprintf(w, "   id %d | %s | %s\n", doc.Id, doc.SourceType, doc.Timestamp.Local().Format("2006-01-02 15:04"))
		fmt.Fprintf(w, "   signals: exact=%s coverage=%.2f (%d/%d terms) semantic=%.2f (%s) temporal=%.2f title-only=%s\n",
			yesNo(s.ExactPhrase), s.Coverage, s.MatchedTerms, s.TotalTerms,
			s.Semantic, s.SemanticMethod, s.Temporal, yesNo(s.TitleOnly))
		fmt.Fprintf(w, "   points: exact %.1f + coverage %.1f + semantic %.1f = %.1f (relevance %.3f)\n",
			s.Points.ExactPhrase, s.Points.Coverage, s.Points.Semantic, s.Points.Total, r.ContentRelevance)
		if r.Excerpt != "" {
			fmt.Fprintf(w, "   %s\n", strings.ReplaceAll(r.Excerpt, "\n", "\n   "))
		}
	}
}

func displayTitle(doc *core.Document) string {
	if doc.Title != "" {
		return doc.Title
	}
	return "(untitled)"
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}

// traceMonitor prints each search stage with the elapsed time.
type traceMonitor struct {
	w     io.Writer
	start time.Time
}

var _ search.Monitor = (*traceMonitor)(nil)

func (m *traceMonitor) printf(format string, args ...any) {
	fmt.Fprintf(m.w, "[%8s] "+format+"\n", append([]any{time.Since(m.start).Round(time.Microsecond)}, args...)...)
}

func (m *traceMonitor) AfterQueryEmbedding(embedding []float32, err error) {
	if err != nil {
		m.printf("query embedding failed, using term overlap: %v", err)
		return
	}
	m.printf("query embedded (%d dimensions)", len(embedding))
}

func (m *traceMonitor) AfterCandidateRetrieval(candidates []*core.Document) {
	m.printf("retrieved %d candidates", len(candidates))
}

func (m *traceMonitor) Start(q *core.Query, candidates int) {
	m.printf("ranking %d candidates for %q", candidates, q.Text)
}

func (m *traceMonitor) AfterTemporalResolution(rng core.TimeRange) {
	if rng.IsResolved() {
		m.printf("time range %q (%s): %s .. %s", rng.Expression, rng.Rule,
			rng.Start.Local().Format(time.DateTime), rng.End.Local().Format(time.DateTime))
		return
	}
	m.printf("time range: %s", rng.Kind)
}

func (m *traceMonitor) AfterFiltering(remaining int) {
	m.printf("%d candidates after filters", remaining)
}

func (m *traceMonitor) Included(r *core.ScoredResult) {
	m.printf("  + %d %.3f %s", r.Document.Id, r.Confidence, displayTitle(r.Document))
}

func (m *traceMonitor) Excluded(doc *core.Document, confidence float64) {
	m.printf("  - %d %.3f %s", doc.Id, confidence, displayTitle(doc))
}

func (m *traceMonitor) Finish(results []*core.ScoredResult, err error) {
	if err != nil {
		m.printf("ranking finished with %d results: %v", len(results), err)
		return
	}
	m.printf("ranking finished with %d results", len(results))
}
