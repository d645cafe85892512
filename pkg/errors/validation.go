package errors

import (
	"regexp"
	"strings"
	"unicode"
)

// maxProjectIDLength bounds project identifiers used as storage keys.
const maxProjectIDLength = 128

// projectIDRegex matches identifiers safe for file names, Redis keys and URLs.
var projectIDRegex = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9._-]*$`)

// ValidateProjectID validates a project identifier for safety and correctness.
// Project ids become file names and database keys, so the rules reject
// anything that could escape a directory or a key namespace:
//   - No empty ids
//   - No control characters
//   - No path traversal sequences (..) or separators
//   - Maximum length of 128 characters
func ValidateProjectID(id string) error {
	if id == "" {
		return New(ErrCodeInvalidProjectID, "project id cannot be empty")
	}

	if len(id) > maxProjectIDLength {
		return New(ErrCodeInvalidProjectID, "project id too long (max %d characters)", maxProjectIDLength)
	}

	for _, r := range id {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidProjectID, "project id contains invalid control characters")
		}
	}

	if strings.Contains(id, "..") {
		return New(ErrCodeInvalidProjectID, "project id cannot contain path traversal sequences (..)")
	}

	if !projectIDRegex.MatchString(id) {
		return New(ErrCodeInvalidProjectID, "invalid project id: %q", id)
	}

	return nil
}

// ValidateURL validates a URL string for safety.
// It ensures the URL has a safe scheme (http or https).
func ValidateURL(rawURL string) error {
	if rawURL == "" {
		return New(ErrCodeInvalidInput, "URL cannot be empty")
	}

	// Simple scheme validation without full URL parsing
	if !strings.HasPrefix(rawURL, "http://") && !strings.HasPrefix(rawURL, "https://") {
		return New(ErrCodeInvalidInput, "URL must use http or https scheme")
	}

	return nil
}
