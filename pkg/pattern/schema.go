package pattern

import (
	"fmt"
	"regexp"
	"strings"
)

// SchemaVersion is the current catalog schema version
const SchemaVersion = "1.0.0"

// ValidationError represents a schema validation error with context
type ValidationError struct {
	Field   string
	Message string
	Value   interface{}
}

func (e ValidationError) Error() string {
	if e.Value != nil {
		return fmt.Sprintf("%s: %s (got: %v)", e.Field, e.Message, e.Value)
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidationErrors is a collection of validation errors
type ValidationErrors []ValidationError

func (errs ValidationErrors) Error() string {
	if len(errs) == 0 {
		return "no errors"
	}
	if len(errs) == 1 {
		return errs[0].Error()
	}
	messages := make([]string, len(errs))
	for i, err := range errs {
		messages[i] = err.Error()
	}
	return fmt.Sprintf("%d validation errors:\n  - %s", len(errs), strings.Join(messages, "\n  - "))
}

// ValidateSchema performs comprehensive validation of a Catalog.
// It returns descriptive errors for all validation failures.
func ValidateSchema(c *Catalog) ValidationErrors {
	var errs ValidationErrors

	if c.Name == "" {
		errs = append(errs, ValidationError{
			Field:   "name",
			Message: "required field is missing",
		})
	}

	if c.CatalogID == "" {
		errs = append(errs, ValidationError{
			Field:   "catalog_id",
			Message: "required field is missing",
		})
	} else if !isValidCatalogID(c.CatalogID) {
		errs = append(errs, ValidationError{
			Field:   "catalog_id",
			Message: "must be lowercase alphanumeric with hyphens, starting with a letter",
			Value:   c.CatalogID,
		})
	}

	if c.Version == "" {
		errs = append(errs, ValidationError{
			Field:   "version",
			Message: "required field is missing",
		})
	} else if !isValidVersion(c.Version) {
		errs = append(errs, ValidationError{
			Field:   "version",
			Message: "must be semantic version (e.g., 1.0.0)",
			Value:   c.Version,
		})
	}

	errs = append(errs, validateDetection(&c.Detection)...)
	errs = append(errs, validateArticles(c.Articles)...)
	errs = append(errs, validateFields(c.Fields)...)

	return errs
}

func validateDetection(d *DetectionConfig) ValidationErrors {
	var errs ValidationErrors

	if len(d.Signatures) == 0 {
		errs = append(errs, ValidationError{
			Field:   "detection.signatures",
			Message: "at least one signature is needed",
		})
	}

	if d.MinSignatures < 1 || d.MinSignatures > len(d.Signatures) {
		errs = append(errs, ValidationError{
			Field:   "detection.min_signatures",
			Message: fmt.Sprintf("must be between 1 and %d", len(d.Signatures)),
			Value:   d.MinSignatures,
		})
	}

	seen := make(map[string]bool)
	for i, ind := range d.Signatures {
		field := fmt.Sprintf("detection.signatures[%d]", i)
		if ind.Name == "" {
			errs = append(errs, ValidationError{
				Field:   field + ".name",
				Message: "name is required",
			})
		} else if seen[ind.Name] {
			errs = append(errs, ValidationError{
				Field:   field + ".name",
				Message: "duplicate signature name",
				Value:   ind.Name,
			})
		}
		seen[ind.Name] = true
		errs = append(errs, validateRegex(field+".pattern", ind.Pattern)...)
	}

	return errs
}

func validateArticles(articles []ArticleSpec) ValidationErrors {
	var errs ValidationErrors

	seen := make(map[string]bool)
	for i, art := range articles {
		field := fmt.Sprintf("articles[%d]", i)

		if art.Key == "" {
			errs = append(errs, ValidationError{
				Field:   field + ".key",
				Message: "key is required",
			})
		} else if seen[art.Key] {
			errs = append(errs, ValidationError{
				Field:   field + ".key",
				Message: "duplicate article key",
				Value:   art.Key,
			})
		}
		seen[art.Key] = true

		if art.Number <= 0 {
			errs = append(errs, ValidationError{
				Field:   field + ".number",
				Message: "must be positive",
				Value:   art.Number,
			})
		}

		if art.Title == "" && len(art.Anchors) == 0 {
			errs = append(errs, ValidationError{
				Field:   field,
				Message: "must specify a title or at least one anchor",
			})
		}

		for j, anchor := range art.Anchors {
			errs = append(errs, validateRegex(fmt.Sprintf("%s.anchors[%d]", field, j), anchor)...)
		}
	}

	return errs
}

func validateFields(fields map[string]Candidates) ValidationErrors {
	var errs ValidationErrors

	for name, candidates := range fields {
		if len(candidates) == 0 {
			errs = append(errs, ValidationError{
				Field:   "fields." + name,
				Message: "at least one candidate is needed",
			})
		}
		for i, cand := range candidates {
			field := fmt.Sprintf("fields.%s[%d]", name, i)
			if cand.Name == "" {
				errs = append(errs, ValidationError{
					Field:   field + ".name",
					Message: "name is required",
				})
			}
			errs = append(errs, validateRegex(field+".pattern", cand.Pattern)...)
		}
	}

	return errs
}

func validateRegex(field, pattern string) ValidationErrors {
	if pattern == "" {
		return ValidationErrors{{Field: field, Message: "pattern is required"}}
	}
	if _, err := regexp.Compile(pattern); err != nil {
		return ValidationErrors{{Field: field, Message: "invalid regex", Value: err.Error()}}
	}
	return nil
}

func isValidCatalogID(id string) bool {
	if len(id) == 0 {
		return false
	}
	// Must start with lowercase letter
	if id[0] < 'a' || id[0] > 'z' {
		return false
	}
	// Rest must be lowercase alphanumeric or hyphen
	for _, c := range id[1:] {
		if !((c >= 'a' && c <= 'z') || (c >= '0' && c <= '9') || c == '-') {
			return false
		}
	}
	return true
}

func isValidVersion(v string) bool {
	parts := strings.Split(v, ".")
	if len(parts) != 3 {
		return false
	}
	for _, part := range parts {
		if len(part) == 0 {
			return false
		}
		for _, c := range part {
			if c < '0' || c > '9' {
				return false
			}
		}
	}
	return true
}
