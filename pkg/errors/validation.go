package errors

import (
	"strings"
	"unicode"
)

// MaxIdentifierLength bounds organization names, package IDs and queries.
// CKAN itself limits names to 100 characters.
const MaxIdentifierLength = 100

// ValidateIdentifier rejects identifiers that cannot name a catalog entry:
// empty or blank strings, overly long strings and strings with control
// characters. It does not check existence; see the catalog validator for that.
func ValidateIdentifier(kind, id string) error {
	if strings.TrimSpace(id) == "" {
		return New(ErrCodeInvalidInput, "%s cannot be empty", kind)
	}
	if len(id) > MaxIdentifierLength {
		return New(ErrCodeInvalidInput, "%s too long (max %d characters)", kind, MaxIdentifierLength)
	}
	for _, r := range id {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidInput, "%s contains invalid control characters", kind)
		}
	}
	return nil
}
