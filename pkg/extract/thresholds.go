package extract

import (
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/coolbeans/becas/pkg/normalize"
	"github.com/coolbeans/becas/pkg/pattern"
	"github.com/coolbeans/becas/pkg/types"
)

const (
	thresholdCount = 3
	maxFamilySize  = 8
)

var (
	numberedThresholdHeader = regexp.MustCompile(`(?i)(\d)\.\s*Umbral\s+(\d)`)
	colonThresholdHeader    = regexp.MustCompile(`(?i)Umbral\s+(\d)\s*:`)
	bareThresholdHeader     = regexp.MustCompile(`(?im)^[ \t]*Umbral[ \t]+(\d)[ \t]*$`)

	tableRowPattern = regexp.MustCompile(`(?m)^[ \t]*(\d)(?:[ \t]+\p{L}+){0,3}[ \t]+(` + amountExpr + `)[ \t]+(` + amountExpr + `)[ \t]+(` + amountExpr + `)`)
	tableExtraRow   = regexp.MustCompile(`(?i)(?:octavo\s+miembro|miembro\s+adicional)[^\n]*?[ \t](` + amountExpr + `)[ \t]+(` + amountExpr + `)[ \t]+(` + amountExpr + `)`)
)

// ExtractThresholds reads the family income ceilings of thresholds 1 to 3.
// A threshold is kept only when at least one family size was recovered.
func ExtractThresholds(catalog *pattern.Catalog, section string) *types.IncomeThresholds {
	if strings.TrimSpace(section) == "" {
		return nil
	}

	var thresholds []types.Threshold
	for number, sub := range thresholdSubsections(section) {
		th := types.Threshold{
			Number:   number,
			Families: familyAmounts(catalog.Field("family_amount"), sub),
		}
		if m, ok := catalog.Field("additional_member").First(sub); ok {
			th.AdditionalMember = additionalMember(m.Group(1))
		}
		if len(th.Families) > 0 {
			thresholds = append(thresholds, th)
		}
	}

	if len(thresholds) == 0 {
		thresholds = tabularThresholds(section)
	}
	if len(thresholds) == 0 {
		return nil
	}

	sort.Slice(thresholds, func(i, j int) bool { return thresholds[i].Number < thresholds[j].Number })
	return &types.IncomeThresholds{Thresholds: thresholds}
}

type thresholdHeader struct {
	number int
	start  int
	end    int
}

// thresholdSubsections maps threshold numbers to their text. A subsection
// runs from its header to the next threshold header or the section end.
func thresholdSubsections(section string) map[int]string {
	headers := findThresholdHeaders(section)
	subs := make(map[int]string)
	for i, h := range headers {
		if _, seen := subs[h.number]; seen {
			continue
		}
		end := len(section)
		if i+1 < len(headers) {
			end = headers[i+1].start
		}
		subs[h.number] = section[h.end:end]
	}
	return subs
}

func findThresholdHeaders(section string) []thresholdHeader {
	var headers []thresholdHeader
	for _, loc := range numberedThresholdHeader.FindAllStringSubmatchIndex(section, -1) {
		if section[loc[2]:loc[3]] != section[loc[4]:loc[5]] {
			continue
		}
		if n := int(section[loc[4]] - '0'); n >= 1 && n <= thresholdCount {
			headers = append(headers, thresholdHeader{number: n, start: loc[0], end: loc[1]})
		}
	}
	if len(headers) > 0 {
		return headers
	}
	for _, re := range []*regexp.Regexp{colonThresholdHeader, bareThresholdHeader} {
		for _, loc := range re.FindAllStringSubmatchIndex(section, -1) {
			if n := int(section[loc[2]] - '0'); n >= 1 && n <= thresholdCount {
				headers = append(headers, thresholdHeader{number: n, start: loc[0], end: loc[1]})
			}
		}
		if len(headers) > 0 {
			return headers
		}
	}
	return nil
}

// familyAmounts keeps the first amount seen for each family size 1..8,
// sorted by size.
func familyAmounts(candidates pattern.Candidates, text string) []types.FamilyAmount {
	seen := make(map[int]bool)
	var families []types.FamilyAmount
	for _, m := range candidates.FirstAll(text) {
		size, ok := normalize.WordToInt(m.Group(1))
		if !ok || size < 1 || size > maxFamilySize || seen[size] {
			continue
		}
		if fa, ok := familyAmount(size, m.Group(2)); ok {
			seen[size] = true
			families = append(families, fa)
		}
	}
	sort.Slice(families, func(i, j int) bool { return families[i].Size < families[j].Size })
	return families
}

func familyAmount(size int, raw string) (types.FamilyAmount, bool) {
	amt, err := normalize.NormalizeAmount(raw)
	if err != nil {
		return types.FamilyAmount{}, false
	}
	return types.FamilyAmount{
		Size:        size,
		Amount:      amt,
		Description: FamilyDescription(size, raw),
	}, true
}

// FamilyDescription renders "Familias de dos miembros: 24.089,00 euros".
func FamilyDescription(size int, amount string) string {
	if size == 1 {
		return fmt.Sprintf("Familias de un miembro: %s euros", amount)
	}
	return fmt.Sprintf("Familias de %s miembros: %s euros", normalize.DigitToWord(size), amount)
}

func additionalMember(raw string) *types.AdditionalMember {
	amt, err := normalize.NormalizeAmount(raw)
	if err != nil {
		return nil
	}
	return &types.AdditionalMember{
		Amount:      amt,
		Description: fmt.Sprintf("A partir del octavo miembro se añadirán %s euros por cada nuevo miembro computable", raw),
	}
}

// tabularThresholds reads the layout where each row is a family size
// followed by the ceilings of thresholds 1, 2 and 3.
func tabularThresholds(section string) []types.Threshold {
	thresholds := make([]types.Threshold, thresholdCount)
	seen := make([]map[int]bool, thresholdCount)
	for i := range thresholds {
		thresholds[i].Number = i + 1
		seen[i] = make(map[int]bool)
	}

	for _, row := range tableRowPattern.FindAllStringSubmatch(section, -1) {
		size := int(row[1][0] - '0')
		if size < 1 || size > maxFamilySize {
			continue
		}
		for col := 0; col < thresholdCount; col++ {
			if seen[col][size] {
				continue
			}
			if fa, ok := familyAmount(size, row[col+2]); ok {
				seen[col][size] = true
				thresholds[col].Families = append(thresholds[col].Families, fa)
			}
		}
	}

	if row := tableExtraRow.FindStringSubmatch(section); row != nil {
		for col := 0; col < thresholdCount; col++ {
			thresholds[col].AdditionalMember = additionalMember(row[col+1])
		}
	}

	kept := thresholds[:0]
	for _, th := range thresholds {
		if len(th.Families) == 0 {
			continue
		}
		sort.Slice(th.Families, func(i, j int) bool { return th.Families[i].Size < th.Families[j].Size })
		kept = append(kept, th)
	}
	return kept
}
