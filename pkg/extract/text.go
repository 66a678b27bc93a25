package extract

import (
	"regexp"
	"strings"
)

// amountExpr matches a Spanish-formatted amount: "1.234,56", "8.000", "300,00", "125".
const amountExpr = `\d{1,3}(?:\.\d{3})+(?:,\d{1,2})?|\d+(?:,\d{1,2})?`

var (
	// euroAmountPattern matches an amount followed by "euros" or "€".
	euroAmountPattern = regexp.MustCompile(`(?i)(` + amountExpr + `)\s*(?:euros|€)`)

	// itemMarkerPattern matches a lowercase item marker at the start of a line.
	itemMarkerPattern = regexp.MustCompile(`^([a-z])\)\s*(.*)$`)

	// inlineItemMarkerPattern matches lowercase item markers inside running text.
	inlineItemMarkerPattern = regexp.MustCompile(`(?:^|[\s:;.,])([a-z])\)`)

	// componentMarkerPattern matches uppercase component markers A) to F).
	componentMarkerPattern = regexp.MustCompile(`(?:^|\s)([A-F])\)`)

	// numberedParagraphPattern matches "3. " at the start of a line.
	numberedParagraphPattern = regexp.MustCompile(`(?m)^[ \t]*\d+\.\s`)
)

// marker is a lettered marker located in a text.
type marker struct {
	letter byte
	start  int // offset of the letter
	end    int // offset just after ")"
}

// findMarkers returns markers whose letters strictly ascend from a or A, so
// repeated or cross-referenced letters ("apartado b)") inside an item are
// skipped.
func findMarkers(re *regexp.Regexp, text string) []marker {
	return ascendingMarkers(re, text, false)
}

// findMarkersFromAny is findMarkers for excerpts that open on a later letter,
// such as a fragment starting at "B)". The first marker must begin a line.
func findMarkersFromAny(re *regexp.Regexp, text string) []marker {
	return ascendingMarkers(re, text, true)
}

func ascendingMarkers(re *regexp.Regexp, text string, anyStart bool) []marker {
	var markers []marker
	var last byte
	for _, loc := range re.FindAllStringSubmatchIndex(text, -1) {
		letter := text[loc[2]]
		if last != 0 && letter <= last {
			continue
		}
		if last == 0 {
			if anyStart && !atLineStart(text, loc[2]) {
				continue
			}
			if !anyStart && letter != 'a' && letter != 'A' {
				continue
			}
		}
		markers = append(markers, marker{letter: letter, start: loc[2], end: loc[1]})
		last = letter
	}
	return markers
}

// atLineStart reports whether only blanks precede offset on its line.
func atLineStart(text string, offset int) bool {
	lineStart := strings.LastIndexByte(text[:offset], '\n') + 1
	return strings.TrimSpace(text[lineStart:offset]) == ""
}

// splitByMarkers returns the text following each marker up to the next one.
func splitByMarkers(text string, markers []marker) []string {
	parts := make([]string, len(markers))
	for i, m := range markers {
		end := len(text)
		if i+1 < len(markers) {
			end = markers[i+1].start
		}
		parts[i] = text[m.end:end]
	}
	return parts
}

// nextParagraph returns the offset of the next numbered paragraph after
// from, or len(text).
func nextParagraph(text string, from int) int {
	if from >= len(text) {
		return len(text)
	}
	if loc := numberedParagraphPattern.FindStringIndex(text[from:]); loc != nil {
		return from + loc[0]
	}
	return len(text)
}

// firstLine returns the text up to the first newline.
func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}
	return s
}
