package extract

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"sync"

	"github.com/coolbeans/becas/pkg/pattern"
	"github.com/coolbeans/becas/pkg/types"
)

// anyHeaderExpr matches any article header. The trailing group keeps
// cross-references such as "artículo 12.3" from counting as headers.
const anyHeaderExpr = `Art[íi]culo\s+(\d+)\s*\.(\D|$)`

var (
	anyHeaderLine = regexp.MustCompile(`(?im)^[ \t]*` + anyHeaderExpr)
	anyHeader     = regexp.MustCompile(`(?i)` + anyHeaderExpr)

	headerCache sync.Map // expr -> *regexp.Regexp
)

func cachedRegexp(expr string) *regexp.Regexp {
	if re, ok := headerCache.Load(expr); ok {
		return re.(*regexp.Regexp)
	}
	re := regexp.MustCompile(expr)
	headerCache.Store(expr, re)
	return re
}

// titleExpr turns a title into a whitespace-tolerant pattern fragment.
func titleExpr(title string) string {
	words := strings.Fields(strings.Trim(title, " .:"))
	for i, w := range words {
		words[i] = regexp.QuoteMeta(w)
	}
	return strings.Join(words, `\s+`)
}

// headerPatterns returns the line-anchored and the unanchored pattern for an
// article header. number < 0 matches any number; an empty title matches the
// number only. Group 1 is the number; the body starts at the end of group 2
// when present, otherwise at the end of the match.
func headerPatterns(number int, title string) (*regexp.Regexp, *regexp.Regexp) {
	num := `(\d+)`
	if number >= 0 {
		num = `(` + strconv.Itoa(number) + `)`
	}

	var expr string
	if title == "" {
		expr = `Art[íi]culo\s+` + num + `\s*\.()(?:\D|$)`
	} else {
		expr = `Art[íi]culo\s+` + num + `\s*\.\s*` + titleExpr(title) + `\s*\.?()`
	}

	return cachedRegexp(`(?im)^[ \t]*` + expr), cachedRegexp(`(?i)` + expr)
}

// headerMatch is a located article header.
type headerMatch struct {
	number    int
	start     int // start of "Artículo"
	bodyStart int
}

// findHeader returns the first header, preferring occurrences at the start
// of a line over occurrences inside running text.
func findHeader(text string, from int, anchored, loose *regexp.Regexp) (headerMatch, bool) {
	for _, re := range []*regexp.Regexp{anchored, loose} {
		loc := re.FindStringSubmatchIndex(text[from:])
		if loc == nil {
			continue
		}
		n, _ := strconv.Atoi(text[from+loc[2] : from+loc[3]])
		start := strings.Index(strings.ToLower(text[from+loc[0]:from+loc[1]]), "art")
		return headerMatch{
			number:    n,
			start:     from + loc[0] + max(start, 0),
			bodyStart: from + loc[5],
		}, true
	}
	return headerMatch{}, false
}

// sectionEnd returns the offset of the header of article number+1 after from,
// or len(text) when there is none.
func sectionEnd(text string, from, number int) int {
	anchored, loose := headerPatterns(number+1, "")
	if h, ok := findHeader(text, from, anchored, loose); ok {
		return h.start
	}
	return len(text)
}

// nextAnyHeader returns the offset of the next article header of any number
// after from, or len(text).
func nextAnyHeader(text string, from int) int {
	if h, ok := findHeader(text, from, anyHeaderLine, anyHeader); ok {
		return h.start
	}
	return len(text)
}

// ExtractArticle returns the body of article number: the text after its
// "Artículo N. Title." header up to, excluding, the header of article N+1, or
// to the end of text. It first matches number and title, then the number
// alone, dropping whatever title follows it. An empty result means the
// article was not found.
func ExtractArticle(text string, number int, title string) string {
	body, _ := extractArticle(text, number, title)
	return body
}

func extractArticle(text string, number int, title string) (string, string) {
	if title != "" {
		anchored, loose := headerPatterns(number, title)
		if h, ok := findHeader(text, 0, anchored, loose); ok {
			return spanBody(text, h.bodyStart, sectionEnd(text, h.bodyStart, number)), types.StrategyNumberTitle
		}
	}

	anchored, loose := headerPatterns(number, "")
	if h, ok := findHeader(text, 0, anchored, loose); ok {
		return spanBody(text, skipHeaderTitle(text, h.bodyStart), sectionEnd(text, h.bodyStart, number)), types.StrategyNumber
	}

	return "", ""
}

// skipHeaderTitle moves past the title that follows a bare "Artículo N."
// header: up to the first period on the header line, or the whole line when
// the title has no period.
func skipHeaderTitle(text string, from int) int {
	rest := text[from:]
	lineEnd := strings.IndexByte(rest, '\n')
	if lineEnd < 0 {
		lineEnd = len(rest)
	}
	line := rest[:lineEnd]
	if strings.TrimSpace(line) == "" {
		return from
	}
	if dot := strings.IndexByte(line, '.'); dot >= 0 {
		return from + dot + 1
	}
	return from + lineEnd
}

func spanBody(text string, start, end int) string {
	if start >= end {
		return ""
	}
	return strings.TrimSpace(text[start:end])
}

// Locator finds the articles named by a catalog.
type Locator struct {
	catalog *pattern.Catalog
}

// NewLocator creates a locator for a compiled catalog.
func NewLocator(catalog *pattern.Catalog) *Locator {
	return &Locator{catalog: catalog}
}

// FindKey locates the article registered under key in the catalog.
func (l *Locator) FindKey(text, key string) types.ArticleSection {
	spec, ok := l.catalog.Article(key)
	if !ok {
		return types.ArticleSection{Key: key}
	}
	return l.Find(text, spec)
}

// Find locates an article trying, in order: number and title, title under
// any number, number alone, and the catalog anchors.
func (l *Locator) Find(text string, spec pattern.ArticleSpec) types.ArticleSection {
	section := types.ArticleSection{Key: spec.Key, Number: spec.Number, Title: spec.Title}
	if text == "" {
		return section
	}

	if spec.Title != "" {
		anchored, loose := headerPatterns(spec.Number, spec.Title)
		if h, ok := findHeader(text, 0, anchored, loose); ok {
			section.Text = spanBody(text, h.bodyStart, sectionEnd(text, h.bodyStart, spec.Number))
			section.Strategy = types.StrategyNumberTitle
			return section
		}

		// Renumbered article: same title, different number.
		anchored, loose = headerPatterns(-1, spec.Title)
		if h, ok := findHeader(text, 0, anchored, loose); ok {
			end := sectionEnd(text, h.bodyStart, h.number)
			if end == len(text) {
				end = nextAnyHeader(text, h.bodyStart)
			}
			section.Number = h.number
			section.Text = spanBody(text, h.bodyStart, end)
			section.Strategy = types.StrategyTitle
			return section
		}
	}

	anchored, loose := headerPatterns(spec.Number, "")
	if h, ok := findHeader(text, 0, anchored, loose); ok {
		section.Text = spanBody(text, skipHeaderTitle(text, h.bodyStart), sectionEnd(text, h.bodyStart, spec.Number))
		section.Strategy = types.StrategyNumber
		return section
	}

	for _, anchor := range spec.AnchorPatterns() {
		loc := anchor.FindStringIndex(text)
		if loc == nil {
			continue
		}
		section.Text = spanBody(text, loc[0], nextAnyHeader(text, loc[1]))
		section.Strategy = types.StrategyAnchor
		return section
	}

	return section
}

// describeSection renders a located section for debug logs.
func describeSection(s types.ArticleSection) string {
	if !s.Found() {
		return fmt.Sprintf("%s (art. %d): not found", s.Key, s.Number)
	}
	return fmt.Sprintf("%s (art. %d, %s): %d chars", s.Key, s.Number, s.Strategy, len(s.Text))
}
