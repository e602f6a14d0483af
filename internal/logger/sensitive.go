package logger

import (
	"regexp"
	"strings"
)

// sensitivePatterns match credentials embedded in free-form strings
var sensitivePatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)(bearer\s+)([A-Za-z0-9-._~+/]+=*)`),
	regexp.MustCompile(`(?i)((api|access|auth|token|secret|key|dsn|passw(or)?d)[0-9a-z\-_\.]*[\s:=]+)([^;,\s]{5,})`),
	regexp.MustCompile(`(?i)(https?://)([^:@/\s]+)(:[^@/\s]*)?@`),
}

// sensitiveKeys mark field keys whose string values are always redacted
var sensitiveKeys = []string{"password", "secret", "token", "dsn", "api_key", "apikey", "credential"}

// RedactSensitiveData replaces credentials in input with "[REDACTED]"
func RedactSensitiveData(input string) string {
	if input == "" {
		return input
	}
	for i, pattern := range sensitivePatterns {
		if i == len(sensitivePatterns)-1 {
			// userinfo in URLs
			input = pattern.ReplaceAllString(input, "$1[REDACTED]@")
			continue
		}
		input = pattern.ReplaceAllString(input, "$1[REDACTED]")
	}
	return input
}

// isSensitiveKey reports whether a field key names secret material
func isSensitiveKey(key string) bool {
	lower := strings.ToLower(key)
	for _, k := range sensitiveKeys {
		if strings.Contains(lower, k) {
			return true
		}
	}
	return false
}
