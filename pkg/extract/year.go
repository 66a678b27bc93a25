package extract

import (
	"fmt"

	"github.com/coolbeans/becas/pkg/pattern"
	"github.com/coolbeans/becas/pkg/types"
)

// ExtractAcademicYear finds the "YYYY-YYYY" course the resolution applies to.
// The catalog's academic_year candidates run against the whole document.
func ExtractAcademicYear(catalog *pattern.Catalog, text string) *types.AcademicYear {
	m, ok := catalog.Field("academic_year").First(text)
	if !ok || m.Group(1) == "" {
		return nil
	}
	year := m.Group(1)
	return &types.AcademicYear{
		Year:        year,
		Description: fmt.Sprintf("Convocatoria de becas para el curso académico %s", year),
	}
}
