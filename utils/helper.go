package utils

import (
	"strings"

	"github.com/go-playground/validator/v10"
)

func ProcessValidationErrors(err error) map[string]string {

	validationErrors := err.(validator.ValidationErrors)

	errorResponse := make(map[string]string)

	for _, ve := range validationErrors {
		errorResponse[ve.Field()] = ve.Tag()
	}

	return errorResponse
}

func Ptr[T any](v T) *T {
	return &v
}

// IsLatin reports whether every rune in s is ASCII. Latin-script booker
// aliases compare case-insensitively; CJK names compare exactly.
func IsLatin(s string) bool {
	for _, r := range s {
		if r > 127 {
			return false
		}
	}
	return true
}

// ContainsAnyFold reports whether s (lowercased) contains any of the given
// keywords (lowercased substring test).
func ContainsAnyFold(s string, keywords []string) bool {
	lower := strings.ToLower(s)
	for _, kw := range keywords {
		if kw == "" {
			continue
		}
		if strings.Contains(lower, strings.ToLower(kw)) {
			return true
		}
	}
	return false
}
