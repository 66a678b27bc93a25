package extract

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/coolbeans/becas/pkg/normalize"
	"github.com/coolbeans/becas/pkg/types"
)

var (
	fixedClassesHeading    = regexp.MustCompile(`(?i)1\.\s+Cuantías\s+fijas[\s.:]*`)
	variableClassesHeading = regexp.MustCompile(`(?i)2\.\s+Cuantía\s+variable[\s.:,]*`)
	classLinePattern       = regexp.MustCompile(`(?m)^[ \t]*((?:Cuantía|Beca)[^\n]*)$`)
)

// ExtractClasses reads the list of fixed amounts and the variable amount
// paragraph of the classes article.
func ExtractClasses(section string) *types.ScholarshipClasses {
	if strings.TrimSpace(section) == "" {
		return nil
	}

	classes := &types.ScholarshipClasses{}

	if loc := fixedClassesHeading.FindStringIndex(section); loc != nil {
		end := nextParagraph(section, loc[1])
		if v := variableClassesHeading.FindStringIndex(section[loc[1]:]); v != nil {
			end = min(end, loc[1]+v[0])
		}
		classes.Fixed = fixedClasses(section[loc[1]:end])
	}

	if loc := variableClassesHeading.FindStringIndex(section); loc != nil {
		end := nextParagraph(section, loc[1])
		classes.Variable = normalize.CollapseSpace(section[loc[1]:end])
	}

	if len(classes.Fixed) == 0 && classes.Variable == "" {
		return nil
	}
	return classes
}

func fixedClasses(span string) []types.Study {
	var items []types.Study
	markers := findMarkers(inlineItemMarkerPattern, span)
	for i, body := range splitByMarkers(span, markers) {
		if d := normalize.CollapseSpace(body); d != "" {
			items = append(items, types.Study{Identifier: string(markers[i].letter) + ")", Description: d})
		}
	}
	if len(items) > 0 {
		return items
	}

	for i, m := range classLinePattern.FindAllStringSubmatch(span, -1) {
		items = append(items, types.Study{Identifier: strconv.Itoa(i + 1), Description: normalize.CollapseSpace(m[1])})
	}
	return items
}
