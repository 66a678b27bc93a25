package extract

import (
	"strings"
	"testing"

	"github.com/coolbeans/becas/pkg/pattern"
	"github.com/coolbeans/becas/pkg/types"
)

func fixtureSection(t *testing.T, key string) string {
	t.Helper()
	text := loadFixture(t, "convocatoria_2023.txt")
	s := NewLocator(pattern.Default()).FindKey(text, key)
	if !s.Found() {
		t.Fatalf("section %s not found in fixture", key)
	}
	return s.Text
}

func TestExtractAcademicYear(t *testing.T) {
	tests := []struct {
		name string
		text string
		want string
	}{
		{"upper case title", "BECAS PARA EL CURSO ACADÉMICO 2023-2024", "2023-2024"},
		{"lower case", "para el curso académico 2022-2023 se convocan", "2022-2023"},
		{"para el curso", "becas para el curso 2021-2022", "2021-2022"},
		{"loose", "convocatoria del curso que empieza en 2020-2021", "2020-2021"},
		{"short year rejected", "curso académico 2023-24", ""},
		{"none", "sin referencia temporal", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ExtractAcademicYear(pattern.Default(), tt.text)
			if tt.want == "" {
				if got != nil {
					t.Errorf("ExtractAcademicYear() = %+v, want nil", got)
				}
				return
			}
			if got == nil || got.Year != tt.want {
				t.Fatalf("ExtractAcademicYear() = %+v, want %s", got, tt.want)
			}
			if got.Description != "Convocatoria de becas para el curso académico "+tt.want {
				t.Errorf("Description = %q", got.Description)
			}
		})
	}
}

func TestExtractEligibleStudies_Fixture(t *testing.T) {
	studies, fallbacks := ExtractEligibleStudies(fixtureSection(t, KeyEligibleStudies), true)
	if studies == nil {
		t.Fatal("ExtractEligibleStudies() = nil")
	}
	if len(fallbacks) != 0 {
		t.Errorf("fallbacks = %v, want none", fallbacks)
	}
	if n := len(studies.NonUniversity.Items); n != 9 {
		t.Errorf("non-university items = %d, want 9", n)
	}
	if n := len(studies.University.Items); n != 3 {
		t.Errorf("university items = %d, want 3", n)
	}

	h := studies.NonUniversity.Items[7]
	if h.Identifier != "h)" || !strings.HasSuffix(h.Description, "formación profesional impartidos en centros públicos.") {
		t.Errorf("continuation line not appended: %+v", h)
	}
	if studies.NonUniversity.Name != NonUniversityGroupName || studies.University.Name != UniversityGroupName {
		t.Errorf("group names = %q, %q", studies.NonUniversity.Name, studies.University.Name)
	}
}

func TestExtractEligibleStudies_Inline(t *testing.T) {
	section := "1. Enseñanzas postobligatorias y superiores no universitarias: a) Primer y segundo cursos de bachillerato. " +
		"b) Enseñanzas artísticas profesionales. c) Enseñanzas deportivas del sistema. " +
		"2. Enseñanzas universitarias: a) Enseñanzas conducentes a títulos oficiales de grado. b) Curso de acceso para mayores de 25 años."

	studies, _ := ExtractEligibleStudies(section, false)
	if studies == nil {
		t.Fatal("ExtractEligibleStudies() = nil")
	}
	if n := len(studies.NonUniversity.Items); n != 3 {
		t.Fatalf("non-university items = %d, want 3: %+v", n, studies.NonUniversity.Items)
	}
	if got := studies.NonUniversity.Items[1]; got.Identifier != "b)" || got.Description != "Enseñanzas artísticas profesionales." {
		t.Errorf("item b = %+v", got)
	}
	if n := len(studies.University.Items); n != 2 {
		t.Errorf("university items = %d, want 2: %+v", n, studies.University.Items)
	}
}

func TestExtractEligibleStudies_Defaults(t *testing.T) {
	section := strings.Join([]string{
		"1. Enseñanzas postobligatorias y superiores no universitarias:",
		"a) Primer y segundo cursos de bachillerato del sistema.",
		"b) Corto.",
		"2. Enseñanzas universitarias del sistema universitario español:",
		"a) Grado y máster en universidades públicas y privadas.",
		"b) Curso de acceso para mayores de 25 años en universidades públicas.",
		"c) Complementos de formación para el acceso al máster.",
	}, "\n")

	t.Run("enabled", func(t *testing.T) {
		studies, fallbacks := ExtractEligibleStudies(section, true)
		if studies == nil {
			t.Fatal("ExtractEligibleStudies() = nil")
		}
		items := studies.NonUniversity.Items
		if len(items) != 9 {
			t.Fatalf("non-university items = %d, want 9", len(items))
		}
		if items[0].Description != "Primer y segundo cursos de bachillerato del sistema." {
			t.Errorf("extracted item replaced by default: %+v", items[0])
		}
		if items[1].Identifier != "b)" || !strings.HasPrefix(items[1].Description, "Formación Profesional") {
			t.Errorf("truncated item not backfilled: %+v", items[1])
		}
		for i := 1; i < len(items); i++ {
			if items[i-1].Identifier >= items[i].Identifier {
				t.Errorf("items not sorted: %s before %s", items[i-1].Identifier, items[i].Identifier)
			}
		}
		if len(fallbacks) != 1 || fallbacks[0] != FallbackNonUniversity {
			t.Errorf("fallbacks = %v, want [%s]", fallbacks, FallbackNonUniversity)
		}
		if studies.University.Items[0].Description != "Grado y máster en universidades públicas y privadas." {
			t.Errorf("complete university group was altered: %+v", studies.University.Items[0])
		}
	})

	t.Run("disabled", func(t *testing.T) {
		studies, fallbacks := ExtractEligibleStudies(section, false)
		if studies == nil {
			t.Fatal("ExtractEligibleStudies() = nil")
		}
		if n := len(studies.NonUniversity.Items); n != 1 {
			t.Errorf("non-university items = %d, want 1", n)
		}
		if len(fallbacks) != 0 {
			t.Errorf("fallbacks = %v, want none", fallbacks)
		}
	})

	t.Run("empty section", func(t *testing.T) {
		if studies, _ := ExtractEligibleStudies("  ", true); studies != nil {
			t.Errorf("ExtractEligibleStudies() = %+v, want nil", studies)
		}
	})

	t.Run("nothing recovered without defaults", func(t *testing.T) {
		if studies, _ := ExtractEligibleStudies("Texto sin apartados.", false); studies != nil {
			t.Errorf("ExtractEligibleStudies() = %+v, want nil", studies)
		}
	})
}

func TestCanonicalStudies(t *testing.T) {
	nonUni, uni := CanonicalStudies()
	if len(nonUni) != 9 || len(uni) != 3 {
		t.Fatalf("canonical sizes = %d, %d", len(nonUni), len(uni))
	}
	nonUni[0].Description = "changed"
	again, _ := CanonicalStudies()
	if again[0].Description == "changed" {
		t.Error("CanonicalStudies() returned shared storage")
	}
}

func TestExtractClasses_Fixture(t *testing.T) {
	classes := ExtractClasses(fixtureSection(t, KeyScholarshipClasses))
	if classes == nil {
		t.Fatal("ExtractClasses() = nil")
	}
	if len(classes.Fixed) != 5 {
		t.Fatalf("fixed classes = %d, want 5: %+v", len(classes.Fixed), classes.Fixed)
	}
	if classes.Fixed[4].Identifier != "e)" || classes.Fixed[4].Description != "Beca básica." {
		t.Errorf("fixed[4] = %+v", classes.Fixed[4])
	}
	if !strings.HasPrefix(classes.Variable, "cuyo importe") {
		t.Errorf("Variable = %q", classes.Variable)
	}
}

func TestExtractAmounts_Fixture(t *testing.T) {
	amounts := ExtractAmounts(fixtureSection(t, KeyScholarshipAmounts))
	if amounts == nil {
		t.Fatal("ExtractAmounts() = nil")
	}

	wantTypes := []types.ComponentType{
		types.ComponentTuition, types.ComponentIncomeLinked, types.ComponentResidence,
		types.ComponentExcellence, types.ComponentBasic, types.ComponentVariable,
	}
	if len(amounts.Components) != len(wantTypes) {
		t.Fatalf("components = %d, want %d", len(amounts.Components), len(wantTypes))
	}
	for i, c := range amounts.Components {
		if c.Type != wantTypes[i] {
			t.Errorf("component %s type = %s, want %s", c.Identifier, c.Type, wantTypes[i])
		}
		if c.Label != c.Type.Label() {
			t.Errorf("component %s label = %q", c.Identifier, c.Label)
		}
	}

	tuition, _ := amounts.Find(types.ComponentTuition)
	if tuition.Coverage != TuitionCoverage || tuition.Amount != "" {
		t.Errorf("tuition = %+v", tuition)
	}

	income, _ := amounts.Find(types.ComponentIncomeLinked)
	if income.Amount != "1700.00" {
		t.Errorf("income amount = %q, want 1700.00", income.Amount)
	}

	residence, _ := amounts.Find(types.ComponentResidence)
	if residence.Amount != "2500.00" {
		t.Errorf("residence amount = %q, want 2500.00", residence.Amount)
	}

	excellence, _ := amounts.Find(types.ComponentExcellence)
	wantBands := []types.ScoreBand{
		{MinScore: "8.00", MaxScore: "8.49", Amount: "50"},
		{MinScore: "8.50", MaxScore: "8.99", Amount: "75"},
		{MinScore: "9.00", MaxScore: "9.49", Amount: "100"},
		{MinScore: "9.50", MaxScore: "10.00", Amount: "125"},
	}
	if len(excellence.Bands) != len(wantBands) {
		t.Fatalf("bands = %+v", excellence.Bands)
	}
	for i, b := range wantBands {
		if excellence.Bands[i] != b {
			t.Errorf("band %d = %+v, want %+v", i, excellence.Bands[i], b)
		}
	}

	basic, _ := amounts.Find(types.ComponentBasic)
	if basic.Amount != "300.00" {
		t.Errorf("basic amount = %q", basic.Amount)
	}
	if basic.SpecialCase == nil || basic.SpecialCase.Name != BasicSpecialCaseName || basic.SpecialCase.Amount != "350.00" {
		t.Errorf("basic special case = %+v", basic.SpecialCase)
	}

	variable, _ := amounts.Find(types.ComponentVariable)
	if variable.MinimumAmount != "60.00" || variable.FormulaDescription != FormulaDescription {
		t.Errorf("variable = %+v", variable)
	}
}

func TestExtractAmounts_Fallbacks(t *testing.T) {
	t.Run("bullets", func(t *testing.T) {
		section := "Cuantías:\n- Beca básica: 200 euros\n• Cuantía fija ligada a la renta: 1.600,00 euros\n- Otro concepto: 10 euros"
		amounts := ExtractAmounts(section)
		if amounts == nil || len(amounts.Components) != 3 {
			t.Fatalf("ExtractAmounts() = %+v", amounts)
		}
		if c := amounts.Components[0]; c.Identifier != "1" || c.Type != types.ComponentBasic || c.Amount != "200" {
			t.Errorf("component 1 = %+v", c)
		}
		if c := amounts.Components[1]; c.Type != types.ComponentIncomeLinked || c.Amount != "1600.00" {
			t.Errorf("component 2 = %+v", c)
		}
		if c := amounts.Components[2]; c.Type != types.ComponentOther || c.Amount != "10" {
			t.Errorf("unknown component must be kept as other: %+v", c)
		}
	})

	t.Run("euro lines", func(t *testing.T) {
		section := "Introducción sin importes.\nLa beca de residencia será de 1.500,00 euros.\nFin."
		amounts := ExtractAmounts(section)
		if amounts == nil || len(amounts.Components) != 1 {
			t.Fatalf("ExtractAmounts() = %+v", amounts)
		}
		if c := amounts.Components[0]; c.Type != types.ComponentResidence || c.Amount != "1500.00" {
			t.Errorf("component = %+v", c)
		}
	})

	t.Run("excerpt starting at B", func(t *testing.T) {
		section := "B) Cuantía fija ligada a la renta del solicitante: 1600,00 euros.\nC) Cuantía fija ligada a la residencia: 2.500,00 euros."
		amounts := ExtractAmounts(section)
		if amounts == nil || len(amounts.Components) != 2 {
			t.Fatalf("ExtractAmounts() = %+v", amounts)
		}
		b := amounts.Components[0]
		if b.Identifier != "B)" || b.Type != types.ComponentIncomeLinked || b.Amount != "1600.00" {
			t.Errorf("component B = %+v", b)
		}
		if strings.HasPrefix(b.Description, "B)") {
			t.Errorf("description kept the marker: %q", b.Description)
		}
		if c := amounts.Components[1]; c.Identifier != "C)" || c.Type != types.ComponentResidence {
			t.Errorf("component C = %+v", c)
		}
	})

	t.Run("cross-reference is not a marker", func(t *testing.T) {
		amounts := ExtractAmounts("Según el apartado C) anterior, la beca básica será de 200 euros.")
		if amounts == nil || len(amounts.Components) != 1 || amounts.Components[0].Identifier != "1" {
			t.Fatalf("ExtractAmounts() = %+v", amounts)
		}
	})

	t.Run("empty", func(t *testing.T) {
		if got := ExtractAmounts(""); got != nil {
			t.Errorf("ExtractAmounts(\"\") = %+v", got)
		}
	})
}

func TestClassifyComponent(t *testing.T) {
	tests := []struct {
		text string
		want types.ComponentType
	}{
		{"Beca de matrícula: cubre el precio", types.ComponentTuition},
		{"Cuantía fija ligada a la renta del solicitante: 1.700 euros", types.ComponentIncomeLinked},
		{"Cuantía fija ligada a la residencia: 2.500 euros, salvo renta", types.ComponentResidence},
		{"Cuantía ligada a la excelencia académica", types.ComponentExcellence},
		{"Beca básica: 300 euros", types.ComponentBasic},
		{"Cuantía variable: mínimo 60 euros", types.ComponentVariable},
		{"Importe adicional.\nSe calcula según la renta", types.ComponentIncomeLinked},
		{"Ayuda de transporte", types.ComponentOther},
	}

	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			if got := ClassifyComponent(tt.text); got != tt.want {
				t.Errorf("ClassifyComponent() = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestExtractThresholds_Fixture(t *testing.T) {
	th := ExtractThresholds(pattern.Default(), fixtureSection(t, KeyIncomeThresholds))
	if th == nil || len(th.Thresholds) != 3 {
		t.Fatalf("ExtractThresholds() = %+v", th)
	}

	one, _ := th.Find(1)
	if len(one.Families) != 8 {
		t.Errorf("threshold 1 families = %d, want 8", len(one.Families))
	}
	if f, ok := one.Family(4); !ok || f.Amount != "21054.00" {
		t.Errorf("threshold 1 family 4 = %+v", f)
	}
	if f, _ := one.Family(1); f.Description != "Familias de un miembro: 8.422,00 euros" {
		t.Errorf("family 1 description = %q", f.Description)
	}
	if f, _ := one.Family(2); f.Description != "Familias de dos miembros: 12.632,00 euros" {
		t.Errorf("family 2 description = %q", f.Description)
	}
	if one.AdditionalMember == nil || one.AdditionalMember.Amount != "3107.00" {
		t.Errorf("threshold 1 additional member = %+v", one.AdditionalMember)
	}

	two, _ := th.Find(2)
	if len(two.Families) != 4 || two.AdditionalMember == nil || two.AdditionalMember.Amount != "3391.00" {
		t.Errorf("threshold 2 = %+v", two)
	}

	three, _ := th.Find(3)
	if len(three.Families) != 3 || three.AdditionalMember != nil {
		t.Errorf("threshold 3 = %+v", three)
	}
	if _, ok := three.Family(3); ok {
		t.Error("threshold 3 has a family size the text does not list")
	}
}

func TestExtractThresholds_Variants(t *testing.T) {
	t.Run("digit sizes and first occurrence wins", func(t *testing.T) {
		section := "Umbral 1:\n1 miembro: 8.000,00\n2 miembros: 12.000,00\n2 miembros: 99.999,00\nUmbral 2:\nsin importes"
		th := ExtractThresholds(pattern.Default(), section)
		if th == nil || len(th.Thresholds) != 1 {
			t.Fatalf("ExtractThresholds() = %+v", th)
		}
		if f, _ := th.Thresholds[0].Family(2); f.Amount != "12000.00" {
			t.Errorf("family 2 = %+v", f)
		}
	})

	t.Run("tabular layout", func(t *testing.T) {
		section := strings.Join([]string{
			"Miembros computables Umbral 1 Umbral 2 Umbral 3",
			"1 8.422,00 13.236,00 14.112,00",
			"2 12.632,00 22.594,00 24.089,00",
			"4 miembros 21.054,00 36.421,00 38.831,00",
			"A partir del octavo miembro 3.107,00 3.391,00 3.500,00",
		}, "\n")
		th := ExtractThresholds(pattern.Default(), section)
		if th == nil || len(th.Thresholds) != 3 {
			t.Fatalf("ExtractThresholds() = %+v", th)
		}
		three, _ := th.Find(3)
		if f, ok := three.Family(4); !ok || f.Amount != "38831.00" {
			t.Errorf("threshold 3 family 4 = %+v", f)
		}
		if three.AdditionalMember == nil || three.AdditionalMember.Amount != "3500.00" {
			t.Errorf("threshold 3 additional member = %+v", three.AdditionalMember)
		}
	})

	t.Run("headers on their own line", func(t *testing.T) {
		section := "Umbral 1\nFamilias de cuatro miembros: 8.000,00\nUmbral 2\nFamilias de dos miembros: 20.000,00"
		th := ExtractThresholds(pattern.Default(), section)
		if th == nil || len(th.Thresholds) != 2 {
			t.Fatalf("ExtractThresholds() = %+v", th)
		}
		one, _ := th.Find(1)
		if f, ok := one.Family(4); !ok || f.Amount != "8000.00" || len(one.Families) != 1 {
			t.Errorf("threshold 1 = %+v", one)
		}
		two, _ := th.Find(2)
		if f, ok := two.Family(2); !ok || f.Amount != "20000.00" {
			t.Errorf("threshold 2 family 2 = %+v", f)
		}
	})

	t.Run("no families", func(t *testing.T) {
		if th := ExtractThresholds(pattern.Default(), "1. Umbral 1: véase el anexo."); th != nil {
			t.Errorf("ExtractThresholds() = %+v, want nil", th)
		}
	})
}

func TestExtractDeadlines_Fixture(t *testing.T) {
	d := ExtractDeadlines(pattern.Default(), fixtureSection(t, KeyApplicationDeadlines))
	if d == nil || len(d.Deadlines) != 2 {
		t.Fatalf("ExtractDeadlines() = %+v", d)
	}

	uni := d.Deadlines[0]
	if uni.Category != types.DeadlineUniversity || uni.Date != "17 de mayo de 2023" || uni.ISODate != "2023-05-17" {
		t.Errorf("university deadline = %+v", uni)
	}
	if uni.Label != "Estudiantes universitarios" {
		t.Errorf("label = %q", uni.Label)
	}

	nonUni := d.Deadlines[1]
	if nonUni.Category != types.DeadlineNonUniversity || nonUni.Date != "31 de mayo de 2023" || nonUni.ISODate != "2023-05-31" {
		t.Errorf("non-university deadline = %+v", nonUni)
	}

	if d.Exceptional == nil {
		t.Fatal("exceptional deadline missing")
	}
	if d.Exceptional.Date != "31 de diciembre de 2023" || d.Exceptional.ISODate != "2023-12-31" {
		t.Errorf("exceptional = %+v", d.Exceptional)
	}
	if d.Exceptional.Conditions != "fallecimiento, enfermedad grave o incapacidad del sustentador principal" {
		t.Errorf("conditions = %q", d.Exceptional.Conditions)
	}
}

func TestExtractDeadlines_WithoutMarkers(t *testing.T) {
	tests := []struct {
		name         string
		section      string
		wantCategory types.DeadlineCategory
		wantDate     string
	}{
		{
			name:         "general",
			section:      "El plazo de presentación de solicitudes será hasta el 15 de octubre de 2024.",
			wantCategory: types.DeadlineGeneral,
			wantDate:     "15 de octubre de 2024",
		},
		{
			name:         "all students",
			section:      "El plazo, tanto para universitarios como para no universitarios, se extiende hasta el 2 de junio de 2022.",
			wantCategory: types.DeadlineAll,
			wantDate:     "2 de junio de 2022",
		},
		{
			name:         "any date",
			section:      "Las solicitudes se presentarán antes del 20/06/2021 en la sede electrónica.",
			wantCategory: types.DeadlineUnspecified,
			wantDate:     "20 de junio de 2021",
		},
		{
			name:         "non-university segment alone",
			section:      "B) Hasta el 30 de junio de 2023 para estudiantes no universitarios.",
			wantCategory: types.DeadlineNonUniversity,
			wantDate:     "30 de junio de 2023",
		},
		{
			name:         "unlabelled B segment",
			section:      "B) Hasta el 30 de junio de 2023.",
			wantCategory: types.DeadlineNonUniversity,
			wantDate:     "30 de junio de 2023",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := ExtractDeadlines(pattern.Default(), tt.section)
			if d == nil || len(d.Deadlines) != 1 {
				t.Fatalf("ExtractDeadlines() = %+v", d)
			}
			got := d.Deadlines[0]
			if got.Category != tt.wantCategory || got.Date != tt.wantDate {
				t.Errorf("deadline = %+v, want %s %q", got, tt.wantCategory, tt.wantDate)
			}
		})
	}

	if d := ExtractDeadlines(pattern.Default(), "Sin fechas."); d != nil {
		t.Errorf("ExtractDeadlines() = %+v, want nil", d)
	}
}

func TestParseDate(t *testing.T) {
	tests := []struct {
		text     string
		wantDate string
		wantISO  string
		wantOK   bool
	}{
		{"hasta el 17 de Mayo de 2023", "17 de mayo de 2023", "2023-05-17", true},
		{"antes del 05/10/2023", "5 de octubre de 2023", "2023-10-05", true},
		{"hasta el día 3 del mes de julio del año 2023", "3 del mes de julio del año 2023", "2023-07-03", true},
		{"hasta el 30 del corriente de 2023", "30 del corriente de 2023", "", true},
		{"el 31/02/2023", "", "", false},
		{"sin fecha", "", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			date, iso, ok := ParseDate(tt.text)
			if ok != tt.wantOK || date != tt.wantDate || iso != tt.wantISO {
				t.Errorf("ParseDate() = %q, %q, %v, want %q, %q, %v", date, iso, ok, tt.wantDate, tt.wantISO, tt.wantOK)
			}
		})
	}
}

func TestExtractRequirements_Fixture(t *testing.T) {
	reqs := ExtractRequirements(pattern.Default(), fixtureSection(t, KeyAcademicRequirements), "")
	if reqs == nil {
		t.Fatal("ExtractRequirements() = nil")
	}

	want := []types.Requirement{
		{Type: types.RequirementFirstYearGrade, Grade: "5.00"},
		{Type: types.RequirementCreditPercentage, Field: "Artes y Humanidades", Percentage: 90},
		{Type: types.RequirementCreditPercentage, Field: "Ciencias", Percentage: 65},
		{Type: types.RequirementCreditPercentage, Field: "Ciencias de la Salud", Percentage: 80},
		{Type: types.RequirementCreditPercentage, Field: "Ciencias Sociales y Jurídicas", Percentage: 90},
		{Type: types.RequirementCreditPercentage, Field: "Ingeniería o Arquitectura", Percentage: 65},
		{Type: types.RequirementMasterGrade, Grade: "7.00"},
		{Type: types.RequirementVocationalGrade, Grade: "5.50"},
	}
	if len(reqs.Requirements) != len(want) {
		t.Fatalf("requirements = %d, want %d: %+v", len(reqs.Requirements), len(want), reqs.Requirements)
	}
	for i, w := range want {
		got := reqs.Requirements[i]
		if got.Type != w.Type || got.Grade != w.Grade || got.Field != w.Field || got.Percentage != w.Percentage {
			t.Errorf("requirement %d = %+v, want %+v", i, got, w)
		}
	}
	if d := reqs.Requirements[1].Description; d != "Artes y Humanidades: 90% de créditos aprobados" {
		t.Errorf("credit description = %q", d)
	}
}

func TestExtractRequirements_Scope(t *testing.T) {
	doc := "Preámbulo. En ciclos formativos de grado superior se exige 6,25 puntos de nota media."

	reqs := ExtractRequirements(pattern.Default(), "", doc)
	if reqs == nil || len(reqs.Requirements) != 1 || reqs.Requirements[0].Grade != "6.25" {
		t.Errorf("whole-document fallback = %+v", reqs)
	}

	if reqs := ExtractRequirements(pattern.Default(), "Sección sin requisitos.", doc); reqs != nil {
		t.Errorf("located section must not fall back to the document: %+v", reqs)
	}
}

func TestExtractRequirements_NamedPercentageLines(t *testing.T) {
	section := "Porcentajes mínimos:\nEnseñanzas técnicas 65 %\nResto de enseñanzas: 90%\nNota de 12,00 puntos en máster"
	reqs := ExtractRequirements(pattern.Default(), section, "")
	if reqs == nil || len(reqs.Requirements) != 2 {
		t.Fatalf("ExtractRequirements() = %+v", reqs)
	}
	if r := reqs.Requirements[0]; r.Field != "Enseñanzas técnicas" || r.Percentage != 65 {
		t.Errorf("first = %+v", r)
	}
}

func TestExtractProcedure_Fixture(t *testing.T) {
	proc := ExtractProcedure(pattern.Default(), fixtureSection(t, KeyApplicationProcedure))
	if proc == nil || len(proc.Steps) != 4 {
		t.Fatalf("ExtractProcedure() = %+v", proc)
	}
	names := []string{"Cumplimentación del formulario", "Firma electrónica", "Autorización de datos", "Documentación específica"}
	for i, name := range names {
		if proc.Steps[i].Step != i+1 || proc.Steps[i].Name != name {
			t.Errorf("step %d = %+v, want %s", i, proc.Steps[i], name)
		}
	}
	if proc.Steps[1].Description != "Una vez cumplimentada la solicitud, deberá ser firmada electrónicamente por el solicitante." {
		t.Errorf("step 2 description = %q", proc.Steps[1].Description)
	}
}

func TestExtractProcedure_Partial(t *testing.T) {
	section := "Una vez cumplimentada la solicitud, se firmará con certificado."
	proc := ExtractProcedure(pattern.Default(), section)
	if proc == nil || len(proc.Steps) != 1 || proc.Steps[0].Step != 1 || proc.Steps[0].Name != "Firma electrónica" {
		t.Errorf("ExtractProcedure() = %+v", proc)
	}
}
