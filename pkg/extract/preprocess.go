package extract

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/unicode/norm"
)

var (
	// shreddedLinePattern matches lines that some PDF renderers emit as single
	// letters separated by wide gaps ("C o n v o c a t o r i a").
	shreddedLinePattern = regexp.MustCompile(`^\s*(?:\p{L}\s+){5,}\p{L}?\s*$`)

	// stampLinePatterns match electronic signature and verification stamps.
	stampLinePatterns = []*regexp.Regexp{
		regexp.MustCompile(`CSV\s*:\s*GEN-`),
		regexp.MustCompile(`DIRECCIÓN\s+DE\s+VALIDACIÓN`),
		regexp.MustCompile(`FIRMANTE\(\d+\)`),
		regexp.MustCompile(`(?i)Código\s+seguro\s+de\s+Verificación`),
		regexp.MustCompile(`consultaCSV`),
	}

	// boeHeaderPattern matches BOE running headers such as
	// "Núm. 151 Lunes 26 de junio de 2023 Sec. III. Pág. 89766".
	boeHeaderPattern = regexp.MustCompile(`^Núm\.\s+\d+\s+.*Pág\.\s+\d+\s*$`)

	// boeFooterPatterns match BOE page furniture repeated on every page.
	boeFooterPatterns = []*regexp.Regexp{
		regexp.MustCompile(`^BOLETÍN\s+OFICIAL\s+DEL\s+ESTADO\s*$`),
		regexp.MustCompile(`^cve:\s*BOE-[A-Z]-\d{4}-\d+`),
		regexp.MustCompile(`^Verificable\s+en\s+https?://www\.boe\.es`),
		regexp.MustCompile(`^D\.\s*L\.:\s*M-\d+/\d+`),
	}

	// standalonePageNumberPattern matches lines containing only a page number.
	// Single digits are kept since tabular layouts put family sizes on their own line.
	standalonePageNumberPattern = regexp.MustCompile(`^\d{2,6}\s*$`)

	// hyphenatedLineEndPattern matches lines ending with a hyphen (word break across lines).
	hyphenatedLineEndPattern = regexp.MustCompile(`\p{L}-$`)

	blankRunPattern = regexp.MustCompile(`\n{3,}`)
)

// Prepare makes raw text safe for the extraction patterns: it applies NFC
// normalization so accented letters are precomposed, and folds form feeds,
// vertical tabs and non-breaking spaces. It does not drop any content.
func Prepare(text string) string {
	text = norm.NFC.String(text)
	text = strings.NewReplacer(
		"\r\n", "\n",
		"\r", "\n",
		"\f", "\n",
		"\v", "\n",
		"\u00a0", " ",
		"\u202f", " ",
	).Replace(text)
	return text
}

// Preprocess cleans PDF-extracted resolution text by removing signature
// stamps, BOE page furniture, shredded letter lines and standalone page
// numbers, rejoining hyphenated words split across line breaks, and
// collapsing runs of blank lines.
func Preprocess(text string) string {
	lines := strings.Split(Prepare(text), "\n")

	cleanedLines := make([]string, 0, len(lines))
	for _, line := range lines {
		trimmedLine := strings.TrimSpace(line)

		if isStampLine(trimmedLine) {
			continue
		}

		if boeHeaderPattern.MatchString(trimmedLine) || matchesAny(boeFooterPatterns, trimmedLine) {
			continue
		}

		if shreddedLinePattern.MatchString(trimmedLine) {
			continue
		}

		if standalonePageNumberPattern.MatchString(trimmedLine) {
			continue
		}

		cleanedLines = append(cleanedLines, strings.TrimRight(line, " \t"))
	}

	cleanedLines = rejoinHyphenatedLines(cleanedLines)

	out := strings.Join(cleanedLines, "\n")
	out = blankRunPattern.ReplaceAllString(out, "\n\n")
	return strings.TrimSpace(out)
}

// PreprocessLines applies Preprocess to text already split into lines.
func PreprocessLines(lines []string) []string {
	cleaned := Preprocess(strings.Join(lines, "\n"))
	if cleaned == "" {
		return nil
	}
	return strings.Split(cleaned, "\n")
}

func isStampLine(line string) bool {
	return matchesAny(stampLinePatterns, line)
}

func matchesAny(patterns []*regexp.Regexp, line string) bool {
	for _, p := range patterns {
		if p.MatchString(line) {
			return true
		}
	}
	return false
}

// rejoinHyphenatedLines merges lines where a word is split across a line
// break with a hyphen. For example:
//
//	"la presente convoca-"
//	"toria de becas"
//
// becomes:
//
//	"la presente convocatoria de becas"
func rejoinHyphenatedLines(lines []string) []string {
	if len(lines) == 0 {
		return lines
	}

	var result []string
	for i := 0; i < len(lines); i++ {
		currentLine := lines[i]
		trimmedCurrent := strings.TrimRight(currentLine, " \t")

		if i+1 < len(lines) && hyphenatedLineEndPattern.MatchString(trimmedCurrent) {
			trimmedNext := strings.TrimSpace(lines[i+1])

			// Only rejoin word continuations, not new sentences or list items
			first, _ := utf8.DecodeRuneInString(trimmedNext)
			if trimmedNext != "" && unicode.IsLower(first) && !itemMarkerPattern.MatchString(trimmedNext) {
				joined := trimmedCurrent[:len(trimmedCurrent)-1] + trimmedNext
				result = append(result, joined)
				i++
				continue
			}
		}

		result = append(result, currentLine)
	}

	return result
}
