package extract

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/coolbeans/becas/pkg/normalize"
	"github.com/coolbeans/becas/pkg/pattern"
	"github.com/coolbeans/becas/pkg/types"
)

const monthExpr = `enero|febrero|marzo|abril|mayo|junio|julio|agosto|septiembre|setiembre|octubre|noviembre|diciembre`

var (
	longDatePattern    = regexp.MustCompile(`(?i)(\d{1,2})\s+de\s+(` + monthExpr + `)\s+de\s+(\d{4})`)
	numericDatePattern = regexp.MustCompile(`(\d{1,2})/(\d{1,2})/(\d{4})`)
	looseDatePattern   = regexp.MustCompile(`(?is)hasta\s+el\s+(?:día\s+)?((\d{1,2}).{0,40}?(\d{4}))`)
	monthNamePattern   = regexp.MustCompile(`(?i)` + monthExpr)
	tantoComoPattern   = regexp.MustCompile(`(?is)\btanto\b.*\bcomo\b`)
)

// ExtractDeadlines reads the submission deadlines by applicant category and
// the exceptional late-submission clause.
func ExtractDeadlines(catalog *pattern.Catalog, section string) *types.ApplicationDeadlines {
	if strings.TrimSpace(section) == "" {
		return nil
	}

	result := &types.ApplicationDeadlines{Deadlines: categoryDeadlines(section)}

	if len(result.Deadlines) == 0 {
		if d, ok := generalDeadline(catalog, section); ok {
			result.Deadlines = append(result.Deadlines, d)
		}
	}

	if m, ok := catalog.Field("exceptional_deadline").First(section); ok {
		if date, iso, ok := ParseDate(m.Group(1)); ok {
			result.Exceptional = &types.ExceptionalDeadline{
				Date:       date,
				ISODate:    iso,
				Conditions: normalize.CollapseSpace(m.Group(2)),
			}
		}
	}

	if len(result.Deadlines) == 0 && result.Exceptional == nil {
		return nil
	}
	return result
}

// categoryDeadlines reads the A) university and B) non-university segments.
// Either segment may appear on its own.
func categoryDeadlines(section string) []types.Deadline {
	a, b := categoryMarkers(section)
	if a == nil && b == nil {
		return nil
	}

	var deadlines []types.Deadline
	if a != nil {
		aEnd := len(section)
		if b != nil {
			aEnd = b.start
		}
		if d, ok := segmentDeadline(section[a.end:aEnd], types.DeadlineUniversity); ok {
			deadlines = append(deadlines, d)
		}
	}

	if b != nil {
		bEnd := min(nextParagraph(section, b.end), nextAnyHeader(section, b.end))
		if d, ok := segmentDeadline(section[b.end:bEnd], types.DeadlineNonUniversity); ok {
			deadlines = append(deadlines, d)
		}
	}
	return deadlines
}

// categoryMarkers returns the first A) marker and the first B) marker after
// it, or a B) marker standing alone.
func categoryMarkers(section string) (a, b *marker) {
	for _, loc := range componentMarkerPattern.FindAllStringSubmatchIndex(section, -1) {
		m := marker{letter: section[loc[2]], start: loc[2], end: loc[1]}
		switch {
		case m.letter == 'A' && a == nil && b == nil:
			a = &m
		case m.letter == 'B' && b == nil:
			b = &m
		}
		if b != nil {
			break
		}
	}
	return a, b
}

func segmentDeadline(segment string, fallback types.DeadlineCategory) (types.Deadline, bool) {
	date, iso, ok := ParseDate(segment)
	if !ok {
		return types.Deadline{}, false
	}
	category := segmentCategory(segment, fallback)
	return types.Deadline{
		Category:    category,
		Label:       category.Label(),
		Date:        date,
		ISODate:     iso,
		Description: normalize.CollapseSpace(segment),
	}, true
}

func segmentCategory(segment string, fallback types.DeadlineCategory) types.DeadlineCategory {
	lower := strings.ToLower(segment)
	switch {
	case strings.Contains(lower, "no universitari"):
		return types.DeadlineNonUniversity
	case strings.Contains(lower, "universitari"):
		return types.DeadlineUniversity
	default:
		return fallback
	}
}

// generalDeadline handles sections without category markers.
func generalDeadline(catalog *pattern.Catalog, section string) (types.Deadline, bool) {
	if m, ok := catalog.Field("general_deadline").First(section); ok {
		if date, iso, ok := ParseDate(m.Group(1)); ok {
			category := types.DeadlineGeneral
			if tantoComoPattern.MatchString(m.Group(0)) {
				category = types.DeadlineAll
			}
			return types.Deadline{
				Category:    category,
				Label:       category.Label(),
				Date:        date,
				ISODate:     iso,
				Description: normalize.CollapseSpace(m.Group(0)),
			}, true
		}
	}

	if date, iso, ok := ParseDate(section); ok {
		return types.Deadline{
			Category: types.DeadlineUnspecified,
			Label:    types.DeadlineUnspecified.Label(),
			Date:     date,
			ISODate:  iso,
		}, true
	}
	return types.Deadline{}, false
}

// ParseDate finds the first date in text, trying "15 de mayo de 2023", then
// "15/05/2023", then any "hasta el 15 ... 2023" span. The first two are
// rendered canonically; the span is kept as written. iso is set when the
// date is a complete calendar date.
func ParseDate(text string) (date, iso string, ok bool) {
	if m := longDatePattern.FindStringSubmatch(text); m != nil {
		day, _ := strconv.Atoi(m[1])
		year, _ := strconv.Atoi(m[3])
		month := normalize.Month(m[2])
		return normalize.CanonicalDate(day, month, year), normalize.ISODate(day, month, year), true
	}

	if m := numericDatePattern.FindStringSubmatch(text); m != nil {
		day, _ := strconv.Atoi(m[1])
		mon, _ := strconv.Atoi(m[2])
		year, _ := strconv.Atoi(m[3])
		if iso := normalize.ISODate(day, time.Month(mon), year); iso != "" {
			return normalize.CanonicalDate(day, time.Month(mon), year), iso, true
		}
	}

	if m := looseDatePattern.FindStringSubmatch(text); m != nil {
		span := normalize.CollapseSpace(m[1])
		if name := monthNamePattern.FindString(span); name != "" {
			day, _ := strconv.Atoi(m[2])
			year, _ := strconv.Atoi(m[3])
			iso = normalize.ISODate(day, normalize.Month(name), year)
		}
		return span, iso, true
	}

	return "", "", false
}
