// Package types provides the core domain types for scholarship resolution records.
package types

import (
	"time"
)

// Document is a plain-text rendering of one resolution, as handed over by the
// PDF-to-text step.
type Document struct {
	Name   string    `json:"name"`
	Path   string    `json:"path,omitempty"`
	Text   string    `json:"-"`
	ReadAt time.Time `json:"read_at"`
}

// Verdict is the outcome of the validity classifier for one document.
type Verdict struct {
	Valid    bool     `json:"valid"`
	Matched  []string `json:"matched,omitempty"`
	Count    int      `json:"count"`
	Required int      `json:"required"`
}

// Locator strategies recorded on an ArticleSection.
const (
	StrategyNumberTitle = "number_title"
	StrategyTitle       = "title"
	StrategyNumber      = "number"
	StrategyAnchor      = "anchor"
)

// ArticleSection is the body of one article located in a document.
// An empty Text means the article was not found.
type ArticleSection struct {
	Key      string `json:"key"`
	Number   int    `json:"number"`
	Title    string `json:"title,omitempty"`
	Text     string `json:"text,omitempty"`
	Strategy string `json:"strategy,omitempty"`
}

// Found reports whether the section has any text.
func (s ArticleSection) Found() bool {
	return s.Text != ""
}

// Record is the structured result for one document.
//
// A record with Valid == false carries identity fields only.
type Record struct {
	ID          string    `json:"id"`
	FileName    string    `json:"file_name"`
	Valid       bool      `json:"valid"`
	ProcessedAt time.Time `json:"processed_at"`
	Error       string    `json:"error,omitempty"`

	AcademicYear         *AcademicYear         `json:"academic_year,omitempty"`
	EligibleStudies      *EligibleStudies      `json:"eligible_studies,omitempty"`
	ScholarshipClasses   *ScholarshipClasses   `json:"scholarship_classes,omitempty"`
	ScholarshipAmounts   *ScholarshipAmounts   `json:"scholarship_amounts,omitempty"`
	IncomeThresholds     *IncomeThresholds     `json:"income_thresholds,omitempty"`
	ApplicationProcedure *ApplicationProcedure `json:"application_procedure,omitempty"`
	ApplicationDeadlines *ApplicationDeadlines `json:"application_deadlines,omitempty"`
	AcademicRequirements *AcademicRequirements `json:"academic_requirements,omitempty"`

	// Fallbacks lists field paths filled from the canonical defaults table.
	Fallbacks []string `json:"fallbacks,omitempty"`
}

// Year returns the academic year string or "" when none was extracted.
func (r *Record) Year() string {
	if r.AcademicYear == nil {
		return ""
	}
	return r.AcademicYear.Year
}

// MissingFields returns the JSON names of the extracted fields that are
// empty. Invalid records report nothing.
func (r *Record) MissingFields() []string {
	if !r.Valid {
		return nil
	}
	var missing []string
	check := func(name string, empty bool) {
		if empty {
			missing = append(missing, name)
		}
	}
	check("academic_year", r.AcademicYear == nil)
	check("eligible_studies", r.EligibleStudies == nil)
	check("scholarship_classes", r.ScholarshipClasses == nil)
	check("scholarship_amounts", r.ScholarshipAmounts == nil || len(r.ScholarshipAmounts.Components) == 0)
	check("income_thresholds", r.IncomeThresholds == nil || len(r.IncomeThresholds.Thresholds) == 0)
	check("application_procedure", r.ApplicationProcedure == nil || len(r.ApplicationProcedure.Steps) == 0)
	check("application_deadlines", r.ApplicationDeadlines == nil)
	check("academic_requirements", r.AcademicRequirements == nil || len(r.AcademicRequirements.Requirements) == 0)
	return missing
}

// AcademicYear holds the "YYYY-YYYY" course the resolution applies to.
type AcademicYear struct {
	Year        string `json:"year"`
	Description string `json:"description"`
}

// EligibleStudies splits eligible programs into the two groups of the
// studies article.
type EligibleStudies struct {
	NonUniversity StudyGroup `json:"non_university"`
	University    StudyGroup `json:"university"`
}

// StudyGroup is a named, ordered list of lettered items.
type StudyGroup struct {
	Name  string  `json:"name"`
	Items []Study `json:"items"`
}

// Study is one lettered item such as "a) Primer y segundo cursos de bachillerato."
type Study struct {
	Identifier  string `json:"identifier"`
	Description string `json:"description"`
}

// ScholarshipClasses lists the fixed amounts and the variable amount
// described in the classes article.
type ScholarshipClasses struct {
	Fixed    []Study `json:"fixed,omitempty"`
	Variable string  `json:"variable,omitempty"`
}

// ComponentType tags an AmountComponent.
type ComponentType string

const (
	ComponentTuition      ComponentType = "tuition"
	ComponentIncomeLinked ComponentType = "income_linked"
	ComponentResidence    ComponentType = "residence"
	ComponentExcellence   ComponentType = "excellence"
	ComponentBasic        ComponentType = "basic"
	ComponentVariable     ComponentType = "variable"
	ComponentOther        ComponentType = "other"
)

// Label returns the Spanish display name for the component type.
func (t ComponentType) Label() string {
	switch t {
	case ComponentTuition:
		return "Beca de matrícula"
	case ComponentIncomeLinked:
		return "Cuantía fija ligada a la renta"
	case ComponentResidence:
		return "Cuantía fija ligada a la residencia"
	case ComponentExcellence:
		return "Cuantía fija ligada a la excelencia académica"
	case ComponentBasic:
		return "Beca básica"
	case ComponentVariable:
		return "Cuantía variable"
	default:
		return "Otra cuantía"
	}
}

// ScholarshipAmounts is the ordered list of amount components.
type ScholarshipAmounts struct {
	Components []AmountComponent `json:"components"`
}

// Find returns the first component of the given type.
func (a *ScholarshipAmounts) Find(t ComponentType) (AmountComponent, bool) {
	if a == nil {
		return AmountComponent{}, false
	}
	for _, c := range a.Components {
		if c.Type == t {
			return c, true
		}
	}
	return AmountComponent{}, false
}

// AmountComponent is one lettered component of the amounts article. Which of
// the optional fields are set depends on Type:
//
//	tuition: Coverage
//	income_linked, residence, basic, other: Amount
//	excellence: Bands
//	basic: SpecialCase
//	variable: MinimumAmount, FormulaDescription
type AmountComponent struct {
	Identifier  string        `json:"identifier"`
	Type        ComponentType `json:"type"`
	Label       string        `json:"label"`
	Description string        `json:"description"`

	Coverage           string       `json:"coverage,omitempty"`
	Amount             string       `json:"amount,omitempty"`
	Bands              []ScoreBand  `json:"bands,omitempty"`
	SpecialCase        *SpecialCase `json:"special_case,omitempty"`
	MinimumAmount      string       `json:"minimum_amount,omitempty"`
	FormulaDescription string       `json:"formula_description,omitempty"`
}

// ScoreBand maps an average-grade range to an excellence amount.
type ScoreBand struct {
	MinScore string `json:"min_score"`
	MaxScore string `json:"max_score"`
	Amount   string `json:"amount"`
}

// SpecialCase is a named sub-amount of the basic grant.
type SpecialCase struct {
	Name   string `json:"name"`
	Amount string `json:"amount"`
}

// IncomeThresholds holds up to three family income ceilings.
type IncomeThresholds struct {
	Thresholds []Threshold `json:"thresholds"`
}

// Find returns the threshold with the given number.
func (t *IncomeThresholds) Find(number int) (Threshold, bool) {
	if t == nil {
		return Threshold{}, false
	}
	for _, th := range t.Thresholds {
		if th.Number == number {
			return th, true
		}
	}
	return Threshold{}, false
}

// Threshold is one "Umbral N" table.
type Threshold struct {
	Number           int               `json:"number"`
	Families         []FamilyAmount    `json:"families"`
	AdditionalMember *AdditionalMember `json:"additional_member,omitempty"`
}

// Family returns the amount recorded for a family size.
func (t Threshold) Family(size int) (FamilyAmount, bool) {
	for _, f := range t.Families {
		if f.Size == size {
			return f, true
		}
	}
	return FamilyAmount{}, false
}

// FamilyAmount is the income ceiling for a family of Size members.
type FamilyAmount struct {
	Size        int    `json:"size"`
	Amount      string `json:"amount"`
	Description string `json:"description"`
}

// AdditionalMember is the increment per member beyond the eighth.
type AdditionalMember struct {
	Amount      string `json:"amount"`
	Description string `json:"description"`
}

// DeadlineCategory identifies the applicants a deadline applies to.
type DeadlineCategory string

const (
	DeadlineUniversity    DeadlineCategory = "university"
	DeadlineNonUniversity DeadlineCategory = "non_university"
	DeadlineGeneral       DeadlineCategory = "general"
	DeadlineAll           DeadlineCategory = "all"
	DeadlineUnspecified   DeadlineCategory = "unspecified"
)

// Label returns the Spanish display name for the category.
func (c DeadlineCategory) Label() string {
	switch c {
	case DeadlineUniversity:
		return "Estudiantes universitarios"
	case DeadlineNonUniversity:
		return "Estudiantes no universitarios"
	case DeadlineGeneral:
		return "General"
	case DeadlineAll:
		return "Todos los estudiantes"
	default:
		return "Plazo"
	}
}

// ApplicationDeadlines lists submission deadlines by applicant category.
type ApplicationDeadlines struct {
	Deadlines   []Deadline           `json:"deadlines"`
	Exceptional *ExceptionalDeadline `json:"exceptional,omitempty"`
}

// Deadline is one submission deadline. Date keeps the Spanish
// "D de mes de YYYY" rendering; ISODate is set when the date is complete.
type Deadline struct {
	Category    DeadlineCategory `json:"category"`
	Label       string           `json:"label"`
	Date        string           `json:"date"`
	ISODate     string           `json:"iso_date,omitempty"`
	Description string           `json:"description,omitempty"`
}

// ExceptionalDeadline is the late-submission extension and its conditions.
type ExceptionalDeadline struct {
	Date       string `json:"date"`
	ISODate    string `json:"iso_date,omitempty"`
	Conditions string `json:"conditions"`
}

// ApplicationProcedure lists the submission steps of the procedure article.
type ApplicationProcedure struct {
	Steps []ProcedureStep `json:"steps"`
}

// ProcedureStep is one numbered step of the application procedure.
type ProcedureStep struct {
	Step        int    `json:"step"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

// RequirementType tags a Requirement.
type RequirementType string

const (
	RequirementFirstYearGrade   RequirementType = "first_year_grade"
	RequirementCreditPercentage RequirementType = "credit_percentage"
	RequirementMasterGrade      RequirementType = "master_grade"
	RequirementVocationalGrade  RequirementType = "vocational_grade"
)

// AcademicRequirements is the ordered list of academic performance rules.
type AcademicRequirements struct {
	Requirements []Requirement `json:"requirements"`
}

// Requirement is one academic performance rule. Grade is set for the grade
// types; Field and Percentage for credit_percentage.
type Requirement struct {
	Type        RequirementType `json:"type"`
	Label       string          `json:"label"`
	Grade       string          `json:"grade,omitempty"`
	Field       string          `json:"field,omitempty"`
	Percentage  int             `json:"percentage,omitempty"`
	Description string          `json:"description"`
}
