package utils

import (
	"math"
	"mime"
	"regexp"
)

var (
	// textContentTypePatterns is a slice of regular expressions that match content types
	// considered to be text-based. This includes "text/*", "application/json", and
	// form-encoded request bodies such as token-endpoint exchanges.
	//nolint:gochecknoglobals // These are immutable, pre-compiled regex patterns and used as constants.
	textContentTypePatterns = []*regexp.Regexp{
		regexp.MustCompile("^text/.+"),
		regexp.MustCompile("^application/json$"),
		regexp.MustCompile(`^application/x-www-form-urlencoded$`),
	}
)

// SafeUint64ToInt64 converts a uint64 value to an int64 safely,
// ensuring that the value does not exceed the maximum limit of int64.
func SafeUint64ToInt64(val uint64) int64 {
	if val > math.MaxInt64 {
		return math.MaxInt64
	}

	return int64(val)
}

// SafeInt64ToInt converts an int64 value to an int safely,
// clamping values outside the platform int range.
func SafeInt64ToInt(val int64) int {
	if val > math.MaxInt {
		return math.MaxInt
	}

	if val < math.MinInt {
		return math.MinInt
	}

	return int(val)
}

// IsTextContentType reports whether the given Content-Type header value
// describes a text-based payload that is safe to dump into debug logs.
func IsTextContentType(contentType string) bool {
	if contentType == "" {
		return false
	}

	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return false
	}

	for _, pattern := range textContentTypePatterns {
		if pattern.MatchString(mediaType) {
			return true
		}
	}

	return false
}
