package errors

import (
	"regexp"
	"strings"
	"unicode"
)

// ValidateTarget validates a target URL or domain for safety and correctness.
// It rejects strings that could be used for injection or that the archive
// index cannot answer for.
//
// The validation rules are intentionally conservative:
//   - No empty targets
//   - No control characters or null bytes
//   - No whitespace inside the target
//   - Maximum length of 2048 characters
//
// Scheme handling and host/path reduction are done separately by the
// client's target normalization.
func ValidateTarget(target string) error {
	target = strings.TrimSpace(target)
	if target == "" {
		return New(ErrCodeInvalidTarget, "target cannot be empty")
	}

	if len(target) > 2048 {
		return New(ErrCodeInvalidTarget, "target too long (max 2048 characters)")
	}

	for _, r := range target {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidTarget, "target contains invalid control characters")
		}
		if unicode.IsSpace(r) {
			return New(ErrCodeInvalidTarget, "target cannot contain whitespace")
		}
	}

	return nil
}

// timestampRegex matches archive capture timestamps: 4 to 14 digits,
// a YYYYMMDDhhmmss prefix of any precision (the index accepts prefixes).
var timestampRegex = regexp.MustCompile(`^\d{4,14}$`)

// ValidateTimestamp validates an archive capture timestamp.
// Full timestamps are 14 digits (YYYYMMDDhhmmss); shorter digit prefixes
// are accepted because the index treats them as range queries.
func ValidateTimestamp(ts string) error {
	if ts == "" {
		return New(ErrCodeInvalidTimestamp, "timestamp cannot be empty")
	}

	if !timestampRegex.MatchString(ts) {
		return New(ErrCodeInvalidTimestamp, "invalid timestamp: %q (expected 4-14 digits)", ts)
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

// ValidateLimit validates a row limit for index queries.
func ValidateLimit(limit int) error {
	if limit <= 0 {
		return New(ErrCodeInvalidInput, "limit must be positive, got %d", limit)
	}

	const maxLimit = 10000
	if limit > maxLimit {
		return New(ErrCodeInvalidInput, "limit too large (max %d)", maxLimit)
	}

	return nil
}
