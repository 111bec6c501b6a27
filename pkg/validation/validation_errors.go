package validation

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

// FieldLabels maps struct field names to user-facing labels
var FieldLabels = map[string]string{
	// Filter fields
	"Query":          "Search query",
	"Cities":         "Cities",
	"States":         "States",
	"Countries":      "Countries",
	"WorkModes":      "Work modes",
	"Lat":            "Latitude",
	"Lng":            "Longitude",
	"RadiusKm":       "Search radius",
	"SalaryMin":      "Minimum salary",
	"SalaryMax":      "Maximum salary",
	"Currency":       "Currency",
	"JobTypes":       "Job types",
	"ExperienceMin":  "Minimum experience",
	"ExperienceMax":  "Maximum experience",
	"Levels":         "Experience levels",
	"CompanyIDs":     "Company IDs",
	"CompanySizes":   "Company sizes",
	"CompanyTypes":   "Company types",
	"RatingMin":      "Minimum company rating",
	"Skills":         "Skills",
	"PostedWithin":   "Posted within",
	"Benefits":       "Benefits",
	"Features":       "Features",
	"DiversityTags":  "Diversity tags",
	"IncludeExpired": "Include expired",

	// Sort fields
	"Strategy":       "Sort strategy",
	"Order":          "Sort order",
	"UserLat":        "User latitude",
	"UserLng":        "User longitude",
	"UserSkills":     "User skills",
	"UserExperience": "User experience",
	"Criteria":       "Sort criteria",
	"Field":          "Criterion field",
	"Weight":         "Criterion weight",
}

// FormatValidationErrors converts validator.ValidationErrors into one
// message per violated constraint, so callers see every problem at once.
func FormatValidationErrors(err error) []string {
	validationErrors, ok := err.(validator.ValidationErrors)
	if !ok {
		return []string{err.Error()}
	}

	var messages []string
	for _, e := range validationErrors {
		messages = append(messages, formatSingleError(e))
	}
	return messages
}

func formatSingleError(e validator.FieldError) string {
	label := getFieldLabel(e.Field())
	param := e.Param()

	switch e.Tag() {
	case "required":
		return fmt.Sprintf("%s: required", label)
	case "min":
		return fmt.Sprintf("%s: must be at least %s", label, param)
	case "max":
		if e.Kind().String() == "string" || e.Kind().String() == "slice" {
			return fmt.Sprintf("%s: at most %s entries/characters allowed", label, param)
		}
		return fmt.Sprintf("%s: must be at most %s", label, param)
	case "gt":
		return fmt.Sprintf("%s: must be greater than %s", label, param)
	case "len":
		return fmt.Sprintf("%s: must be exactly %s characters", label, param)
	case "alpha":
		return fmt.Sprintf("%s: letters only", label)
	case "oneof":
		return fmt.Sprintf("%s: must be one of: %s", label, strings.Join(strings.Split(param, " "), ", "))
	default:
		return fmt.Sprintf("%s: invalid (%s)", label, e.Tag())
	}
}

// getFieldLabel returns the user-facing label for a field
func getFieldLabel(fieldName string) string {
	if label, ok := FieldLabels[fieldName]; ok {
		return label
	}
	return formatCamelCase(fieldName)
}

// formatCamelCase converts CamelCase to spaced words
func formatCamelCase(s string) string {
	var result strings.Builder
	for i, r := range s {
		if i > 0 && r >= 'A' && r <= 'Z' {
			result.WriteRune(' ')
		}
		result.WriteRune(r)
	}
	return result.String()
}
