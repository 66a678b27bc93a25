package extract

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/coolbeans/becas/pkg/normalize"
	"github.com/coolbeans/becas/pkg/pattern"
	"github.com/coolbeans/becas/pkg/types"
)

// creditTableSpan bounds the credit percentage table after its heading.
const creditTableSpan = 800

var (
	creditTableHeading = regexp.MustCompile(`(?i)Rama\s+o\s+área\s+de\s+conocimiento`)

	// Longer names first: "Ciencias" alone would shadow the others.
	knowledgeAreaPattern = regexp.MustCompile(`Artes\s+y\s+Humanidades|Ciencias\s+Sociales\s+y\s+Jurídicas|Ciencias\s+de\s+la\s+Salud|Ingenier[íi]a\s+(?:o|y)\s+Arquitectura|Ciencias`)
	percentagePattern    = regexp.MustCompile(`(\d{1,3})\s*%`)
	namedPercentageLine  = regexp.MustCompile(`(?m)^[ \t]*(\p{L}[\p{L} ,]*?\p{L})[ \t:.]+(\d{1,3})[ \t]*%[ \t]*$`)
)

// ExtractRequirements reads the academic performance rules. When the
// requirements article was not located the whole document is searched.
func ExtractRequirements(catalog *pattern.Catalog, section, document string) *types.AcademicRequirements {
	scope := section
	if strings.TrimSpace(scope) == "" {
		scope = document
	}
	if strings.TrimSpace(scope) == "" {
		return nil
	}

	var reqs []types.Requirement

	if g, ok := catalogGrade(catalog, "first_year_grade", scope); ok {
		reqs = append(reqs, types.Requirement{
			Type:        types.RequirementFirstYearGrade,
			Label:       "Primer curso de grado",
			Grade:       g,
			Description: fmt.Sprintf("Nota mínima de %s puntos para estudiantes de primer curso de grado", g),
		})
	}

	reqs = append(reqs, creditPercentages(scope)...)

	if g, ok := catalogGrade(catalog, "master_grade", scope); ok {
		reqs = append(reqs, types.Requirement{
			Type:        types.RequirementMasterGrade,
			Label:       "Máster",
			Grade:       g,
			Description: fmt.Sprintf("Nota media mínima de %s puntos para estudiantes de máster", g),
		})
	}

	if g, ok := catalogGrade(catalog, "vocational_grade", scope); ok {
		reqs = append(reqs, types.Requirement{
			Type:        types.RequirementVocationalGrade,
			Label:       "Ciclos formativos",
			Grade:       g,
			Description: fmt.Sprintf("Nota mínima de %s puntos para estudiantes de ciclos formativos", g),
		})
	}

	if len(reqs) == 0 {
		return nil
	}
	return &types.AcademicRequirements{Requirements: reqs}
}

func catalogGrade(catalog *pattern.Catalog, field, text string) (string, bool) {
	m, ok := catalog.Field(field).First(text)
	if !ok {
		return "", false
	}
	g, err := normalize.NormalizeScore(m.Group(1))
	if err != nil {
		return "", false
	}
	return g, true
}

// creditPercentages zips the knowledge-area names of the credit table with
// the percentages in order of appearance. Without the table heading or known
// area names it reads "Name 65%" lines.
func creditPercentages(scope string) []types.Requirement {
	var fields []string
	var percents []int

	table := scope
	var areas []string
	if loc := creditTableHeading.FindStringIndex(scope); loc != nil {
		end := min(nextParagraph(scope, loc[1]), loc[1]+creditTableSpan, len(scope))
		table = scope[loc[1]:end]
		areas = knowledgeAreaPattern.FindAllString(table, -1)
	}

	if len(areas) > 0 {
		for _, a := range areas {
			fields = append(fields, normalize.CollapseSpace(a))
		}
		for _, m := range percentagePattern.FindAllStringSubmatch(table, -1) {
			p, _ := strconv.Atoi(m[1])
			percents = append(percents, p)
		}
	} else {
		for _, m := range namedPercentageLine.FindAllStringSubmatch(table, -1) {
			p, _ := strconv.Atoi(m[2])
			fields = append(fields, normalize.CollapseSpace(m[1]))
			percents = append(percents, p)
		}
	}

	n := min(len(fields), len(percents))
	reqs := make([]types.Requirement, 0, n)
	for i := 0; i < n; i++ {
		if percents[i] > 100 {
			continue
		}
		reqs = append(reqs, types.Requirement{
			Type:        types.RequirementCreditPercentage,
			Label:       "Porcentaje de créditos aprobados",
			Field:       fields[i],
			Percentage:  percents[i],
			Description: fmt.Sprintf("%s: %d%% de créditos aprobados", fields[i], percents[i]),
		})
	}
	return reqs
}
