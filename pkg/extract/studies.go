package extract

import (
	"regexp"
	"sort"
	"strings"

	"github.com/coolbeans/becas/pkg/normalize"
	"github.com/coolbeans/becas/pkg/types"
)

// Group names used when the section does not provide its own wording.
const (
	NonUniversityGroupName = "Enseñanzas postobligatorias y superiores no universitarias"
	UniversityGroupName    = "Enseñanzas universitarias del sistema universitario español"
)

// Minimum item counts below which a group is considered incomplete.
const (
	minNonUniversityItems = 8
	minUniversityItems    = 3
	minStudyLength        = 10
)

// Fallback paths recorded on a Record when canonical items are used.
const (
	FallbackNonUniversity = "eligible_studies.non_university"
	FallbackUniversity    = "eligible_studies.university"
)

var (
	nonUniversityHeaderLine = regexp.MustCompile(`(?i)^\s*1\.\s.*postobligatori`)
	universityHeaderLine    = regexp.MustCompile(`(?i)^\s*2\.\s.*universitari`)
	numberedLine            = regexp.MustCompile(`^\s*\d+\.\s`)

	nonUniversityInline = regexp.MustCompile(`(?i)1\.\s+Enseñanzas\s+postobligatorias`)
	universityInline    = regexp.MustCompile(`(?i)2\.\s+Enseñanzas\s+universitarias`)
)

// canonicalNonUniversity and canonicalUniversity are the stable item lists of
// the studies article across recent calls.
var (
	canonicalNonUniversity = []types.Study{
		{Identifier: "a)", Description: "Primer y segundo cursos de bachillerato."},
		{Identifier: "b)", Description: "Formación Profesional de grado medio y de grado superior, incluidos los estudios de formación profesional realizados en los centros docentes militares."},
		{Identifier: "c)", Description: "Enseñanzas artísticas profesionales."},
		{Identifier: "d)", Description: "Enseñanzas deportivas."},
		{Identifier: "e)", Description: "Enseñanzas artísticas superiores."},
		{Identifier: "f)", Description: "Estudios religiosos superiores."},
		{Identifier: "g)", Description: "Estudios de idiomas realizados en escuelas oficiales de titularidad de las administraciones educativas, incluida la modalidad de distancia."},
		{Identifier: "h)", Description: "Cursos de acceso y cursos de preparación para las pruebas de acceso a la formación profesional y cursos de formación específicos para el acceso a los ciclos formativos de grado medio y de grado superior impartidos en centros públicos y en centros privados concertados que tengan autorizadas enseñanzas de formación profesional."},
		{Identifier: "i)", Description: "Ciclos Formativos de Grado Básico"},
	}

	canonicalUniversity = []types.Study{
		{Identifier: "a)", Description: "Enseñanzas universitarias conducentes a títulos oficiales de grado y de máster, incluidos los estudios de grado y máster cursados en los centros universitarios de la defensa y de la guardia civil."},
		{Identifier: "b)", Description: "Curso de preparación para acceso a la universidad de mayores de 25 años impartido por universidades públicas."},
		{Identifier: "c)", Description: "Complementos de formación para acceso u obtención del título de máster y créditos complementarios para la obtención del título de grado. No se incluyen en esta convocatoria las becas para la realización de estudios correspondientes al tercer ciclo o doctorado, estudios de especialización ni títulos propios de las universidades."},
	}
)

// CanonicalStudies returns copies of the canonical non-university and
// university item lists.
func CanonicalStudies() (nonUniversity, university []types.Study) {
	return append([]types.Study(nil), canonicalNonUniversity...),
		append([]types.Study(nil), canonicalUniversity...)
}

// ExtractEligibleStudies splits the studies article into its two groups of
// lettered items. With useDefaults, a group recovered with too few items is
// backfilled from the canonical lists and its path is returned as a fallback.
// It returns nil for an empty section, and nil when nothing was recovered and
// defaults are off.
func ExtractEligibleStudies(section string, useDefaults bool) (*types.EligibleStudies, []string) {
	if strings.TrimSpace(section) == "" {
		return nil, nil
	}

	nonUni, uni := scanStudyLines(section)
	if len(nonUni) == 0 {
		nonUni = scanInlineStudies(section, nonUniversityInline, universityInline)
	}
	if len(uni) == 0 {
		uni = scanInlineStudies(section, universityInline, nil)
	}

	nonUni = cleanStudies(nonUni)
	uni = cleanStudies(uni)

	var fallbacks []string
	if useDefaults {
		var used bool
		if nonUni, used = backfill(nonUni, canonicalNonUniversity, minNonUniversityItems); used {
			fallbacks = append(fallbacks, FallbackNonUniversity)
		}
		if uni, used = backfill(uni, canonicalUniversity, minUniversityItems); used {
			fallbacks = append(fallbacks, FallbackUniversity)
		}
	}

	if len(nonUni) == 0 && len(uni) == 0 {
		return nil, nil
	}

	return &types.EligibleStudies{
		NonUniversity: types.StudyGroup{Name: NonUniversityGroupName, Items: nonUni},
		University:    types.StudyGroup{Name: UniversityGroupName, Items: uni},
	}, fallbacks
}

// scanStudyLines reads the section line by line. A "1. ... postobligatori..."
// or "2. ... universitari..." line opens a group, any other numbered paragraph
// closes it, and "a)" lines open items. Other lines continue the open item.
func scanStudyLines(section string) (nonUni, uni []types.Study) {
	var current *[]types.Study
	var last byte

	for _, line := range strings.Split(section, "\n") {
		trimmed := strings.TrimSpace(line)
		switch {
		case trimmed == "":
			continue
		case nonUniversityHeaderLine.MatchString(trimmed):
			current, last = &nonUni, 0
			continue
		case universityHeaderLine.MatchString(trimmed):
			current, last = &uni, 0
			continue
		case numberedLine.MatchString(trimmed):
			current = nil
			continue
		}
		if current == nil {
			continue
		}

		if m := itemMarkerPattern.FindStringSubmatch(trimmed); m != nil {
			letter := m[1][0]
			if (last == 0 && letter == 'a') || (last != 0 && letter > last) {
				*current = append(*current, types.Study{Identifier: m[1] + ")", Description: m[2]})
				last = letter
				continue
			}
		}

		if n := len(*current); n > 0 {
			(*current)[n-1].Description += " " + trimmed
		}
	}
	return nonUni, uni
}

// scanInlineStudies reads items from the span starting at start and ending at
// end (or at the next numbered paragraph when end is nil or absent), for text
// where the PDF layout put every item on one line.
func scanInlineStudies(section string, start, end *regexp.Regexp) []types.Study {
	loc := start.FindStringIndex(section)
	if loc == nil {
		return nil
	}
	stop := len(section)
	if end != nil {
		if e := end.FindStringIndex(section[loc[1]:]); e != nil {
			stop = loc[1] + e[0]
		}
	} else {
		stop = nextParagraph(section, loc[1])
	}
	span := section[loc[1]:stop]

	markers := findMarkers(inlineItemMarkerPattern, span)
	parts := splitByMarkers(span, markers)
	items := make([]types.Study, 0, len(markers))
	for i, m := range markers {
		items = append(items, types.Study{Identifier: string(m.letter) + ")", Description: parts[i]})
	}
	return items
}

func cleanStudies(items []types.Study) []types.Study {
	out := make([]types.Study, 0, len(items))
	for _, it := range items {
		it.Description = normalize.CollapseSpace(it.Description)
		if len([]rune(it.Description)) < minStudyLength {
			continue
		}
		out = append(out, it)
	}
	return out
}

// backfill adds the canonical items whose identifiers are missing when items
// has fewer than want entries. The result is sorted by identifier.
func backfill(items, canonical []types.Study, want int) ([]types.Study, bool) {
	if len(items) >= want {
		return items, false
	}
	seen := make(map[string]bool, len(items))
	for _, it := range items {
		seen[it.Identifier] = true
	}
	for _, c := range canonical {
		if !seen[c.Identifier] {
			items = append(items, c)
		}
	}
	sort.SliceStable(items, func(i, j int) bool {
		return items[i].Identifier < items[j].Identifier
	})
	return items, true
}
