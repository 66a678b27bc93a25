package extract

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/coolbeans/becas/pkg/normalize"
	"github.com/coolbeans/becas/pkg/types"
)

// TuitionCoverage describes what the tuition component pays for.
const TuitionCoverage = "Cobertura del precio público oficial de los servicios académicos"

// FormulaDescription summarises the variable amount formula.
const FormulaDescription = "Resultará de la ponderación de la nota media del expediente y la renta familiar"

// BasicSpecialCaseName is the vocational track with its own basic grant.
const BasicSpecialCaseName = "Ciclos Formativos de Grado Básico"

const scoreExpr = `\d{1,2}[,.]\d{1,2}`

var (
	excellenceRangePattern = regexp.MustCompile(`(?is)(?:entre|de)\s+(` + scoreExpr + `)\s+(?:y|a)\s+(` + scoreExpr + `)\s*(?:puntos)?.{0,40}?(` + amountExpr + `)\s*(?:euros|€)`)
	excellenceTopPattern   = regexp.MustCompile(`(?is)(` + scoreExpr + `)\s*puntos?\s+o\s+más.{0,40}?(` + amountExpr + `)\s*(?:euros|€)`)
	basicSpecialPattern    = regexp.MustCompile(`(?is)grado\s+básico.{0,200}?(` + amountExpr + `)\s*(?:euros|€)`)
	variableMinimumPattern = regexp.MustCompile(`(?is)mínimo.{0,100}?(` + amountExpr + `)\s*(?:euros|€)`)
	formulaPattern         = regexp.MustCompile(`(?i)siguiente\s+fórmula`)

	bulletLinePattern = regexp.MustCompile(`(?m)^[ \t]*[-•][ \t]*(.+)$`)
	euroLinePattern   = regexp.MustCompile(`(?mi)^.*euros.*$`)
)

// componentKeywords is the classification order. Keywords are lowercase.
var componentKeywords = []struct {
	typ      types.ComponentType
	keywords []string
}{
	{types.ComponentTuition, []string{"matrícula", "matricula"}},
	{types.ComponentIncomeLinked, []string{"renta"}},
	{types.ComponentResidence, []string{"residencia"}},
	{types.ComponentExcellence, []string{"excelencia"}},
	{types.ComponentBasic, []string{"básica", "basica"}},
	{types.ComponentVariable, []string{"variable"}},
}

// ExtractAmounts splits the amounts article into its lettered components and
// reads the figures each type carries. An excerpt may open on a later letter
// such as B). Without markers it falls back to bullet items, then to lines
// mentioning euros.
func ExtractAmounts(section string) *types.ScholarshipAmounts {
	if strings.TrimSpace(section) == "" {
		return nil
	}

	var components []types.AmountComponent
	markers := findMarkers(componentMarkerPattern, section)
	if len(markers) == 0 {
		markers = findMarkersFromAny(componentMarkerPattern, section)
	}
	if len(markers) > 0 {
		for i, body := range splitByMarkers(section, markers) {
			components = append(components, buildComponent(string(markers[i].letter)+")", body))
		}
	} else {
		lines := bulletLinePattern.FindAllStringSubmatch(section, -1)
		bodies := make([]string, 0, len(lines))
		for _, l := range lines {
			bodies = append(bodies, l[1])
		}
		if len(bodies) == 0 {
			bodies = euroLinePattern.FindAllString(section, -1)
		}
		for i, body := range bodies {
			components = append(components, buildComponent(strconv.Itoa(i+1), body))
		}
	}

	if len(components) == 0 {
		return nil
	}
	return &types.ScholarshipAmounts{Components: components}
}

// ClassifyComponent tags a component by its heading (text up to the first
// colon, period or line break), then by its full text.
func ClassifyComponent(text string) types.ComponentType {
	lower := strings.ToLower(text)
	heading := lower
	if i := strings.IndexAny(heading, ":.\n"); i >= 0 {
		heading = heading[:i]
	}

	best, bestPos := types.ComponentOther, -1
	for _, ck := range componentKeywords {
		for _, kw := range ck.keywords {
			if pos := strings.Index(heading, kw); pos >= 0 && (bestPos < 0 || pos < bestPos) {
				best, bestPos = ck.typ, pos
			}
		}
	}
	if bestPos >= 0 {
		return best
	}

	for _, ck := range componentKeywords {
		for _, kw := range ck.keywords {
			if strings.Contains(lower, kw) {
				return ck.typ
			}
		}
	}
	return types.ComponentOther
}

func buildComponent(identifier, body string) types.AmountComponent {
	typ := ClassifyComponent(body)
	c := types.AmountComponent{
		Identifier:  identifier,
		Type:        typ,
		Label:       typ.Label(),
		Description: normalize.CollapseSpace(body),
	}

	switch typ {
	case types.ComponentTuition:
		c.Coverage = TuitionCoverage
	case types.ComponentExcellence:
		c.Bands = excellenceBands(body)
	case types.ComponentVariable:
		c.MinimumAmount = firstAmount(variableMinimumPattern, body)
		if formulaPattern.MatchString(body) {
			c.FormulaDescription = FormulaDescription
		}
	case types.ComponentBasic:
		c.Amount = firstAmount(euroAmountPattern, body)
		if amt := firstAmount(basicSpecialPattern, body); amt != "" {
			c.SpecialCase = &types.SpecialCase{Name: BasicSpecialCaseName, Amount: amt}
		}
	default:
		c.Amount = firstAmount(euroAmountPattern, body)
	}
	return c
}

// firstAmount returns group 1 of the first match, normalized, or "".
func firstAmount(re *regexp.Regexp, text string) string {
	m := re.FindStringSubmatch(text)
	if m == nil {
		return ""
	}
	amt, err := normalize.NormalizeAmount(m[1])
	if err != nil {
		return ""
	}
	return amt
}

func excellenceBands(body string) []types.ScoreBand {
	var bands []types.ScoreBand
	for _, m := range excellenceRangePattern.FindAllStringSubmatch(body, -1) {
		lo, err1 := normalize.NormalizeScore(m[1])
		hi, err2 := normalize.NormalizeScore(m[2])
		amt, err3 := normalize.NormalizeAmount(m[3])
		if err1 != nil || err2 != nil || err3 != nil {
			continue
		}
		bands = append(bands, types.ScoreBand{MinScore: lo, MaxScore: hi, Amount: amt})
	}

	if m := excellenceTopPattern.FindStringSubmatch(body); m != nil {
		lo, err1 := normalize.NormalizeScore(m[1])
		amt, err2 := normalize.NormalizeAmount(m[2])
		if err1 == nil && err2 == nil {
			bands = append(bands, types.ScoreBand{MinScore: lo, MaxScore: "10.00", Amount: amt})
		}
	}
	return bands
}
