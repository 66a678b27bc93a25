// Package batch runs the extractor over a corpus of text renderings with a
// bounded worker pool.
package batch

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/coolbeans/becas/pkg/extract"
	"github.com/coolbeans/becas/pkg/logging"
	"github.com/coolbeans/becas/pkg/store"
	"github.com/coolbeans/becas/pkg/types"
)

// ErrNoDocuments is returned when the corpus holds no text files.
var ErrNoDocuments = errors.New("no documents found")

// Failure is a document that could not be read. It never aborts the run.
type Failure struct {
	Path string `json:"path"`
	Err  error  `json:"-"`
}

func (f Failure) Error() string {
	return fmt.Sprintf("%s: %v", f.Path, f.Err)
}

func (f Failure) Unwrap() error {
	return f.Err
}

// Result is the record produced for one document.
type Result struct {
	Path   string       `json:"path"`
	Record types.Record `json:"record"`
	Cached bool         `json:"cached"`
}

// Summary is the outcome of a run. Results and Failures follow input order.
type Summary struct {
	Results  []Result      `json:"results"`
	Failures []Failure     `json:"failures,omitempty"`
	Duration time.Duration `json:"duration"`
}

// Records returns the records of every successful document.
func (s *Summary) Records() []types.Record {
	records := make([]types.Record, len(s.Results))
	for i, r := range s.Results {
		records[i] = r.Record
	}
	return records
}

// Counts returns how many records were valid and invalid.
func (s *Summary) Counts() (valid, invalid int) {
	for _, r := range s.Results {
		if r.Record.Valid {
			valid++
		} else {
			invalid++
		}
	}
	return valid, invalid
}

// ProgressFunc is called after each document with the number processed so
// far. Calls are serialised.
type ProgressFunc func(done, total int, res Result, failure *Failure)

// Runner processes documents concurrently.
type Runner struct {
	extractor  *extract.Extractor
	store      *store.Store
	workers    int
	preprocess bool
	progress   ProgressFunc
	log        *logging.Logger
}

// Option configures a Runner.
type Option func(*Runner)

// WithWorkers sets the worker pool size. Values below one select one worker.
func WithWorkers(n int) Option {
	return func(r *Runner) { r.workers = n }
}

// WithStore enables the record cache.
func WithStore(s *store.Store) Option {
	return func(r *Runner) { r.store = s }
}

// WithPreprocess strips PDF stamp lines and shredded text before extraction.
func WithPreprocess(on bool) Option {
	return func(r *Runner) { r.preprocess = on }
}

// WithProgress sets the progress callback.
func WithProgress(fn ProgressFunc) Option {
	return func(r *Runner) { r.progress = fn }
}

// WithLogger sets the logger.
func WithLogger(log *logging.Logger) Option {
	return func(r *Runner) { r.log = logging.OrNop(log) }
}

// NewRunner creates a runner around an extractor.
func NewRunner(extractor *extract.Extractor, opts ...Option) *Runner {
	r := &Runner{
		extractor: extractor,
		workers:   1,
		log:       logging.Nop(),
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.workers < 1 {
		r.workers = 1
	}
	return r
}

// Discover lists the .txt files of dir in name order.
func Discover(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading corpus directory: %w", err)
	}

	var paths []string
	for _, entry := range entries {
		if entry.IsDir() || !strings.EqualFold(filepath.Ext(entry.Name()), ".txt") {
			continue
		}
		paths = append(paths, filepath.Join(dir, entry.Name()))
	}
	sort.Strings(paths)

	if len(paths) == 0 {
		return nil, fmt.Errorf("%s: %w", dir, ErrNoDocuments)
	}
	return paths, nil
}

// Variant identifies the catalog and options behind a cached record.
func (r *Runner) Variant() string {
	c := r.extractor.Catalog()
	return fmt.Sprintf("%s@%s;defaults=%t;preprocess=%t",
		c.CatalogID, c.Version, r.extractor.Options().CanonicalDefaults, r.preprocess)
}

// Run processes paths. Unreadable documents become Failures. Cancelling ctx
// stops scheduling; the partial summary is returned with the context error.
func (r *Runner) Run(ctx context.Context, paths []string) (*Summary, error) {
	if len(paths) == 0 {
		return nil, ErrNoDocuments
	}
	start := time.Now()

	results := make([]*Result, len(paths))
	failures := make([]*Failure, len(paths))
	variant := r.Variant()

	var mu sync.Mutex
	done := 0
	report := func(i int) {
		mu.Lock()
		defer mu.Unlock()
		done++
		if r.progress == nil {
			return
		}
		var res Result
		if results[i] != nil {
			res = *results[i]
		}
		r.progress(done, len(paths), res, failures[i])
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.workers)

	for i, path := range paths {
		if gctx.Err() != nil {
			break
		}
		i, path := i, path
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			res, err := r.process(gctx, path, variant)
			if err != nil {
				r.log.Error().Err(err).Str("path", path).Msg("document failed")
				failures[i] = &Failure{Path: path, Err: err}
			} else {
				results[i] = &res
			}
			report(i)
			return nil
		})
	}
	err := g.Wait()
	if err == nil {
		err = ctx.Err()
	}

	summary := &Summary{Duration: time.Since(start)}
	for i := range paths {
		if results[i] != nil {
			summary.Results = append(summary.Results, *results[i])
		}
		if failures[i] != nil {
			summary.Failures = append(summary.Failures, *failures[i])
		}
	}

	valid, invalid := summary.Counts()
	r.log.Info().
		Int("documents", len(paths)).
		Int("valid", valid).
		Int("invalid", invalid).
		Int("failed", len(summary.Failures)).
		Dur("duration", summary.Duration).
		Msg("batch finished")

	return summary, err
}

func (r *Runner) process(ctx context.Context, path, variant string) (Result, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Result{}, fmt.Errorf("reading document: %w", err)
	}
	text := string(data)
	if strings.TrimSpace(text) == "" {
		return Result{}, errors.New("document is empty")
	}
	if r.preprocess {
		text = extract.Preprocess(text)
	}

	doc := types.Document{
		Name:   filepath.Base(path),
		Path:   path,
		Text:   text,
		ReadAt: time.Now(),
	}
	res := Result{Path: path}
	log := r.log.WithDocument(doc.Name)

	var hash string
	if r.store != nil {
		hash = store.Hash(text)
		rec, err := r.store.GetRecord(ctx, hash, variant)
		switch {
		case err == nil:
			rec.FileName = doc.Name
			res.Record, res.Cached = rec, true
			log.Debug().Msg("record served from store")
			return res, nil
		case !errors.Is(err, store.ErrNotFound):
			log.Warn().Err(err).Msg("store lookup failed")
		}
	}

	res.Record = r.extractor.Extract(doc)

	if r.store != nil {
		if _, err := r.store.PutDocument(ctx, doc); err != nil {
			log.Warn().Err(err).Msg("caching document text failed")
		}
		if err := r.store.PutRecord(ctx, hash, variant, res.Record); err != nil {
			log.Warn().Err(err).Msg("caching record failed")
		}
	}
	return res, nil
}
