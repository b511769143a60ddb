package validator

import (
	"strings"

	"github.com/fabricflow/fabricflow/domain"
)

func ValidateRequired(value string) bool {
	return strings.TrimSpace(value) != ""
}

// ValidateSeverity accepts an empty severity or one of the known levels
func ValidateSeverity(value string) bool {
	switch domain.Severity(value) {
	case "", domain.SeverityInfo, domain.SeverityWarning, domain.SeverityError, domain.SeverityCritical:
		return true
	}
	return false
}
