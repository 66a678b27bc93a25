package extract

import (
	"strings"

	"github.com/coolbeans/becas/pkg/normalize"
	"github.com/coolbeans/becas/pkg/pattern"
	"github.com/coolbeans/becas/pkg/types"
)

// ExtractProcedure reads the application steps of the procedure article. Each
// procedure_steps candidate that matches becomes one step, named after the
// candidate and numbered in catalog order.
func ExtractProcedure(catalog *pattern.Catalog, section string) *types.ApplicationProcedure {
	if strings.TrimSpace(section) == "" {
		return nil
	}

	matches := catalog.Field("procedure_steps").Each(section)
	if len(matches) == 0 {
		return nil
	}

	steps := make([]types.ProcedureStep, 0, len(matches))
	for i, m := range matches {
		steps = append(steps, types.ProcedureStep{
			Step:        i + 1,
			Name:        m.Candidate,
			Description: normalize.CollapseSpace(m.Group(1)),
		})
	}
	return &types.ApplicationProcedure{Steps: steps}
}
