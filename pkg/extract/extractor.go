// Package extract locates the articles of a scholarship resolution and reads
// its structured fields.
package extract

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/coolbeans/becas/pkg/logging"
	"github.com/coolbeans/becas/pkg/pattern"
	"github.com/coolbeans/becas/pkg/types"
)

// Article keys of the default catalog.
const (
	KeyEligibleStudies      = "eligible_studies"
	KeyScholarshipClasses   = "scholarship_classes"
	KeyScholarshipAmounts   = "scholarship_amounts"
	KeyIncomeThresholds     = "income_thresholds"
	KeyAcademicRequirements = "academic_requirements"
	KeyApplicationProcedure = "application_procedure"
	KeyApplicationDeadlines = "application_deadlines"
)

// Options controls optional extraction behavior.
type Options struct {
	// CanonicalDefaults backfills incomplete study groups from the canonical
	// lists.
	CanonicalDefaults bool
}

// DefaultOptions returns the options used by the CLI.
func DefaultOptions() Options {
	return Options{CanonicalDefaults: true}
}

// Extractor runs the classifier, the locator and every field extractor over
// one document. It holds no per-document state and is safe for concurrent use.
type Extractor struct {
	catalog  *pattern.Catalog
	detector *pattern.Detector
	locator  *Locator
	opts     Options
	log      *logging.Logger
	now      func() time.Time
	newID    func() string
}

// Option configures an Extractor.
type Option func(*Extractor)

// WithLogger sets the logger.
func WithLogger(log *logging.Logger) Option {
	return func(e *Extractor) { e.log = logging.OrNop(log) }
}

// WithOptions sets the extraction options.
func WithOptions(opts Options) Option {
	return func(e *Extractor) { e.opts = opts }
}

// WithClock sets the clock used for ProcessedAt.
func WithClock(now func() time.Time) Option {
	return func(e *Extractor) { e.now = now }
}

// WithIDs sets the record ID generator.
func WithIDs(newID func() string) Option {
	return func(e *Extractor) { e.newID = newID }
}

// New creates an extractor for a compiled catalog. A nil catalog selects the
// embedded default.
func New(catalog *pattern.Catalog, opts ...Option) *Extractor {
	if catalog == nil {
		catalog = pattern.Default()
	}
	e := &Extractor{
		catalog:  catalog,
		detector: pattern.NewDetector(catalog),
		locator:  NewLocator(catalog),
		opts:     DefaultOptions(),
		log:      logging.Nop(),
		now:      time.Now,
		newID:    uuid.NewString,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Catalog returns the catalog the extractor was built with.
func (e *Extractor) Catalog() *pattern.Catalog {
	return e.catalog
}

// Options returns the extraction options in effect.
func (e *Extractor) Options() Options {
	return e.opts
}

// Classify runs the validity classifier on prepared text.
func (e *Extractor) Classify(text string) types.Verdict {
	return e.detector.Classify(Prepare(text))
}

// Sections locates every article of the catalog.
func (e *Extractor) Sections(text string) map[string]types.ArticleSection {
	text = Prepare(text)
	sections := make(map[string]types.ArticleSection, len(e.catalog.Articles))
	for _, spec := range e.catalog.Articles {
		sections[spec.Key] = e.locator.Find(text, spec)
	}
	return sections
}

// Extract builds the record for one document. It never fails: a text that is
// not a scholarship resolution yields an invalid record carrying identity
// fields only, and fields that cannot be read are left empty.
func (e *Extractor) Extract(doc types.Document) types.Record {
	log := e.log.WithDocument(doc.Name)

	rec := types.Record{
		ID:          e.newID(),
		FileName:    doc.Name,
		ProcessedAt: e.now().UTC(),
	}

	text := Prepare(doc.Text)
	verdict := e.detector.Classify(text)
	log.Debug().Strs("signatures", verdict.Matched).Int("count", verdict.Count).Msg("classified")

	if !verdict.Valid {
		rec.Error = fmt.Sprintf("not a scholarship resolution: %d of %d required signatures", verdict.Count, verdict.Required)
		log.Info().Int("signatures", verdict.Count).Msg("skipping document")
		return rec
	}
	rec.Valid = true

	sections := make(map[string]types.ArticleSection, len(e.catalog.Articles))
	for _, spec := range e.catalog.Articles {
		s := e.locator.Find(text, spec)
		sections[spec.Key] = s
		log.Debug().Msg(describeSection(s))
	}
	body := func(key string) string { return sections[key].Text }

	rec.AcademicYear = ExtractAcademicYear(e.catalog, text)
	rec.EligibleStudies, rec.Fallbacks = ExtractEligibleStudies(body(KeyEligibleStudies), e.opts.CanonicalDefaults)
	rec.ScholarshipClasses = ExtractClasses(body(KeyScholarshipClasses))
	rec.ScholarshipAmounts = ExtractAmounts(body(KeyScholarshipAmounts))
	rec.IncomeThresholds = ExtractThresholds(e.catalog, body(KeyIncomeThresholds))
	rec.ApplicationProcedure = ExtractProcedure(e.catalog, body(KeyApplicationProcedure))
	rec.ApplicationDeadlines = ExtractDeadlines(e.catalog, body(KeyApplicationDeadlines))
	rec.AcademicRequirements = ExtractRequirements(e.catalog, body(KeyAcademicRequirements), text)

	if len(rec.Fallbacks) > 0 {
		log.Warn().Strs("fallbacks", rec.Fallbacks).Msg("canonical defaults used")
	}
	if missing := rec.MissingFields(); len(missing) > 0 {
		log.Warn().Strs("fields", missing).Msg("extraction incomplete")
	}
	return rec
}
