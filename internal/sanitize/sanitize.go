// Package sanitize strips unsafe substrings from free-form submission
// fields. It is a best-effort denylist filter, not a full HTML
// sanitizer: values are meant for plain-text storage, notifications and
// emails, never for rendering as markup.
package sanitize

import (
	"regexp"
	"strings"
)

const (
	// DefaultMaxLen bounds ordinary form fields.
	DefaultMaxLen = 5000
	// LongTextMaxLen bounds long free-text fields such as feedback messages.
	LongTextMaxLen = 10000
)

var (
	jsProtocolPattern   = regexp.MustCompile(`(?i)javascript:`)
	eventHandlerPattern = regexp.MustCompile(`(?i)\bon\w+\s*=`)
)

// Sanitizes a single string: angle brackets, javascript: protocol
// prefixes and inline event-handler attributes are removed, whitespace
// trimmed and the result truncated to maxLen. Removal runs to a fixed
// point so that overlapping fragments cannot reassemble into a match
// (e.g. "javajavascript:script:").
func String(s string, maxLen int) string {
	if maxLen <= 0 {
		maxLen = DefaultMaxLen
	}

	for {
		cleaned := strings.ReplaceAll(s, "<", "")
		cleaned = strings.ReplaceAll(cleaned, ">", "")
		cleaned = jsProtocolPattern.ReplaceAllString(cleaned, "")
		cleaned = eventHandlerPattern.ReplaceAllString(cleaned, "")
		if cleaned == s {
			break
		}
		s = cleaned
	}

	s = strings.TrimSpace(s)
	if len(s) > maxLen {
		s = strings.TrimSpace(s[:maxLen])
	}

	return s
}

// Recursively sanitizes every string reachable from v. Arrays keep
// their order and length, objects keep their keys, and non-string
// leaves pass through unchanged.
func Clean(v interface{}) interface{} {
	return cleanValue(v, DefaultMaxLen)
}

// Like Clean but with a caller-chosen string length cap.
func CleanWithLimit(v interface{}, maxLen int) interface{} {
	return cleanValue(v, maxLen)
}

func cleanValue(v interface{}, maxLen int) interface{} {
	switch value := v.(type) {
	case string:
		return String(value, maxLen)
	case []interface{}:
		cleaned := make([]interface{}, len(value))
		for i, item := range value {
			cleaned[i] = cleanValue(item, maxLen)
		}
		return cleaned
	case map[string]interface{}:
		cleaned := make(map[string]interface{}, len(value))
		for key, item := range value {
			cleaned[key] = cleanValue(item, maxLen)
		}
		return cleaned
	default:
		return v
	}
}

// Sanitizes a decoded JSON object in place of the original.
func CleanMap(payload map[string]interface{}) map[string]interface{} {
	cleaned, _ := cleanValue(payload, DefaultMaxLen).(map[string]interface{})
	return cleaned
}
