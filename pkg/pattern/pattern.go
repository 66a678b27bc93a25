// Package pattern provides declarative pattern catalogs for scholarship
// resolutions: the signature headers that identify a resolution, the articles
// to locate, and ordered candidate pattern lists per extracted field.
package pattern

import (
	"fmt"
	"regexp"
)

// Catalog is the YAML-defined pattern set for one family of resolutions.
type Catalog struct {
	// Metadata
	Name        string `yaml:"name"`
	CatalogID   string `yaml:"catalog_id"`
	Version     string `yaml:"version"`
	Description string `yaml:"description,omitempty"`

	// Detection rules for the validity classifier
	Detection DetectionConfig `yaml:"detection"`

	// Articles of interest, located per document
	Articles []ArticleSpec `yaml:"articles"`

	// Candidate pattern lists keyed by field name
	Fields map[string]Candidates `yaml:"fields"`

	compiled bool
}

// DetectionConfig defines the signature headers used to accept a document.
type DetectionConfig struct {
	// MinSignatures is the number of distinct signatures that must match
	MinSignatures int `yaml:"min_signatures"`

	// Signatures stand in for canonical article headers
	Signatures []Indicator `yaml:"signatures"`
}

// Indicator is one named signature pattern. Signatures always match
// case-insensitively.
type Indicator struct {
	Name    string `yaml:"name"`
	Pattern string `yaml:"pattern"`

	compiled *regexp.Regexp
}

// Regexp returns the compiled pattern, or nil before Compile.
func (i *Indicator) Regexp() *regexp.Regexp {
	return i.compiled
}

// ArticleSpec names an article of interest.
type ArticleSpec struct {
	// Key is the record field the article feeds (e.g. "scholarship_amounts")
	Key string `yaml:"key"`

	// Number is the article number in the current numbering
	Number int `yaml:"number"`

	// Title is the article title, matched case-insensitively
	Title string `yaml:"title"`

	// Anchors are last-resort patterns marking where the article body starts
	Anchors []string `yaml:"anchors,omitempty"`

	anchorsCompiled []*regexp.Regexp
}

// AnchorPatterns returns the compiled anchor patterns.
func (a *ArticleSpec) AnchorPatterns() []*regexp.Regexp {
	return a.anchorsCompiled
}

// Compile compiles every regex in the catalog.
func (c *Catalog) Compile() error {
	for i := range c.Detection.Signatures {
		ind := &c.Detection.Signatures[i]
		compiled, err := regexp.Compile("(?i)" + ind.Pattern)
		if err != nil {
			return fmt.Errorf("compiling signature %d (%s): %w", i, ind.Name, err)
		}
		ind.compiled = compiled
	}

	for i := range c.Articles {
		art := &c.Articles[i]
		art.anchorsCompiled = art.anchorsCompiled[:0]
		for j, anchor := range art.Anchors {
			compiled, err := regexp.Compile(anchor)
			if err != nil {
				return fmt.Errorf("compiling anchor %d of article %q: %w", j, art.Key, err)
			}
			art.anchorsCompiled = append(art.anchorsCompiled, compiled)
		}
	}

	for field, candidates := range c.Fields {
		if err := candidates.Compile(); err != nil {
			return fmt.Errorf("compiling field %q: %w", field, err)
		}
	}

	c.compiled = true
	return nil
}

// IsCompiled returns true if the catalog has been compiled.
func (c *Catalog) IsCompiled() bool {
	return c.compiled
}

// Article returns the ArticleSpec for a record field key.
func (c *Catalog) Article(key string) (ArticleSpec, bool) {
	for _, a := range c.Articles {
		if a.Key == key {
			return a, true
		}
	}
	return ArticleSpec{}, false
}

// Field returns the candidate list for a field; nil when the catalog has none.
func (c *Catalog) Field(name string) Candidates {
	return c.Fields[name]
}

// Validate checks that the catalog has all required fields.
func (c *Catalog) Validate() error {
	if c.Name == "" {
		return fmt.Errorf("catalog name is required")
	}
	if c.CatalogID == "" {
		return fmt.Errorf("catalog catalog_id is required")
	}
	if c.Version == "" {
		return fmt.Errorf("catalog version is required")
	}
	if len(c.Detection.Signatures) == 0 {
		return fmt.Errorf("at least one signature is needed for document detection")
	}
	if c.Detection.MinSignatures < 1 || c.Detection.MinSignatures > len(c.Detection.Signatures) {
		return fmt.Errorf("min_signatures must be between 1 and %d", len(c.Detection.Signatures))
	}
	return nil
}
