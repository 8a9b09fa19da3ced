package pipeline

import (
	"context"
	"fmt"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"

	"github.com/ipfeeds/listgen/src/internal/blocklist"
	"github.com/ipfeeds/listgen/src/internal/cidr"
	"github.com/ipfeeds/listgen/src/internal/config"
	"github.com/ipfeeds/listgen/src/internal/errors"
	"github.com/ipfeeds/listgen/src/internal/feeds"
	"github.com/ipfeeds/listgen/src/internal/log"
	"github.com/ipfeeds/listgen/src/internal/output"
	"github.com/ipfeeds/listgen/src/internal/parser"
)

// Fetcher retrieves one source payload.
type Fetcher interface {
	Fetch(ctx context.Context, url string, compression feeds.Compression) ([]byte, error)
}

type Runner struct {
	fetcher   Fetcher
	outputDir string
	fetchSem  *semaphore.Weighted
	maxLists  int
}

// NewRunner creates a runner writing into outputDir. settings must have
// defaults applied.
func NewRunner(fetcher Fetcher, outputDir string, settings *config.Settings) *Runner {
	maxFetches := settings.MaxParallelFetches
	if maxFetches <= 0 {
		maxFetches = config.DefaultMaxParallelFetches
	}
	return &Runner{
		fetcher:   fetcher,
		outputDir: outputDir,
		fetchSem:  semaphore.NewWeighted(int64(maxFetches)),
		maxLists:  settings.MaxParallelLists,
	}
}

// Run processes all lists and returns their results in input order. A failing
// list never cancels the others.
func (r *Runner) Run(ctx context.Context, lists []*config.ListSpec) []ListResult {
	results := make([]ListResult, len(lists))

	var g errgroup.Group
	if r.maxLists > 0 {
		g.SetLimit(r.maxLists)
	}
	for i, spec := range lists {
		g.Go(func() error {
			results[i] = r.RunList(ctx, spec)
			return nil
		})
	}
	_ = g.Wait()

	return results
}

// sourceOutput is what one source contributes to its list.
type sourceOutput struct {
	url     string
	raw     []byte
	entries []parser.Entry
	ranges  []cidr.NetworkRange
	diag    *parser.Diagnostics
}

type listRun struct {
	spec   *config.ListSpec
	result ListResult
}

func (lr *listRun) transition(next State) {
	log.Debugf("List %q: %s -> %s", lr.spec.Name, lr.result.State, next)
	lr.result.State = next
}

func (lr *listRun) fail(source string, err error) ListResult {
	lr.result.FailedIn = lr.result.State
	lr.result.FailedSource = source
	lr.result.Err = err
	lr.transition(StateFailed)
	if source != "" {
		log.Errorf("List %q failed while %s %s: %v", lr.spec.Name, lr.result.FailedIn, source, err)
	} else {
		log.Errorf("List %q failed while %s: %v", lr.spec.Name, lr.result.FailedIn, err)
	}
	return lr.result
}

// RunList takes a single list from pending to done or failed.
func (r *Runner) RunList(ctx context.Context, spec *config.ListSpec) (res ListResult) {
	started := time.Now()
	lr := &listRun{
		spec: spec,
		result: ListResult{
			Name:        spec.Name,
			State:       StatePending,
			Diagnostics: parser.NewDiagnostics(spec.Name),
		},
	}
	defer func() { res.Duration = time.Since(started) }()

	sources := make([]*sourceOutput, len(spec.Sources))
	for i, src := range spec.Sources {
		sources[i] = &sourceOutput{url: src.URL, diag: parser.NewDiagnostics(src.URL)}
	}

	lr.transition(StateFetching)
	if failedURL, err := r.fetchAll(ctx, spec, sources); err != nil {
		return lr.fail(failedURL, err)
	}

	lr.transition(StateParsing)
	for i, src := range spec.Sources {
		out := sources[i]
		parsed, err := parser.Parse(out.url, out.raw, src.Format, src.Options())
		if err != nil {
			return lr.fail(out.url, err)
		}
		out.raw = nil
		out.entries = parsed.Entries
		out.diag = parsed.Diagnostics
		lr.result.Stats.EntriesIn += len(parsed.Entries)
	}

	lr.transition(StateNormalizing)
	for _, out := range sources {
		ranges, coerced := normalize(out.entries, out.diag)
		out.ranges = ranges
		lr.result.Stats.Coerced += coerced
		out.entries = nil
		lr.result.Diagnostics.Merge(out.diag)
	}

	lr.transition(StateMerging)
	perSource := make([][]cidr.NetworkRange, 0, len(sources))
	for _, out := range sources {
		perSource = append(perSource, out.ranges)
	}
	list := blocklist.Merge(perSource...)
	lr.result.Stats.AfterDedup = list.Len()
	if spec.Dedupe == blocklist.DedupeCovered {
		lr.result.Stats.Covered = list.RemoveCovered()
	}

	lr.transition(StateExcluding)
	excludes, err := spec.ExcludeRanges()
	if err != nil {
		return lr.fail("", errors.NewInternalError("exclusions were not validated", err))
	}
	filtered := blocklist.Filter(list, excludes)
	lr.result.Stats.Excluded = len(filtered.Removed)
	lr.result.Stats.Flagged = len(filtered.Flagged)
	lr.result.Flags = filtered.Flagged
	for _, flag := range filtered.Flagged {
		log.Warnf("List %q: kept %s", spec.Name, flag)
	}

	lr.transition(StateWriting)
	written, err := output.NewWriter(spec.Output).Write(filtered.List, output.Path(r.outputDir, spec.Name))
	if err != nil {
		return lr.fail("", err)
	}
	lr.result.Files = written.Files
	lr.result.Stats.Written = written.Lines()

	lr.transition(StateDone)
	if skipped := lr.result.Diagnostics.Total(); skipped > 0 {
		log.Warnf("List %q: skipped %d entries (%s)", spec.Name, skipped, lr.result.Diagnostics.Summary())
		if log.IsVerbose() {
			for _, issue := range lr.result.Diagnostics.Samples() {
				log.Debugf("List %q: skipped %s", spec.Name, issue)
			}
		}
	}
	log.Infof("List %q: %d ranges written (changed: %t)", spec.Name, written.Lines(), written.Changed())

	return lr.result
}

// fetchAll downloads every source concurrently. The first failure cancels the
// remaining fetches of this list and is returned with its URL.
func (r *Runner) fetchAll(ctx context.Context, spec *config.ListSpec, sources []*sourceOutput) (string, error) {
	g, gctx := errgroup.WithContext(ctx)

	var (
		once      sync.Once
		failedURL string
		firstErr  error
	)
	failure := func(url string, err error) error {
		once.Do(func() { failedURL, firstErr = url, err })
		return err
	}

	for i, src := range spec.Sources {
		g.Go(func() error {
			url, err := src.ExpandedURL()
			if err != nil {
				return failure(src.URL, errors.NewConfigError(fmt.Sprintf("cannot expand URL %s", src.URL), err))
			}
			sources[i].url = url

			if err := r.fetchSem.Acquire(gctx, 1); err != nil {
				return failure(url, errors.NewFetchError(fmt.Sprintf("fetch of %s cancelled", url), err))
			}
			defer r.fetchSem.Release(1)

			log.Debugf("List %q: fetching %s", spec.Name, url)
			raw, err := r.fetcher.Fetch(gctx, url, src.Compression)
			if err != nil {
				return failure(url, err)
			}
			sources[i].raw = raw
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return failedURL, firstErr
	}
	return "", nil
}

// normalize converts entries to ranges. Invalid entries are recorded in d.
func normalize(entries []parser.Entry, d *parser.Diagnostics) ([]cidr.NetworkRange, int) {
	coerced := 0
	ranges := make([]cidr.NetworkRange, 0, len(entries))
	for _, e := range entries {
		r, wasCoerced, err := cidr.ParseRange(e.Value)
		if err != nil {
			d.Record(parser.ReasonInvalidAddress, e.Line, e.Value, err)
			continue
		}
		if wasCoerced {
			coerced++
		}
		ranges = append(ranges, r)
	}
	return ranges, coerced
}
