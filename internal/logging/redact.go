package logging

import (
	"net/url"
	"regexp"
	"strings"
)

// RedactedValue is the replacement for sensitive values.
const RedactedValue = "[REDACTED]"

// Query parameters that carry credentials.
var sensitiveParams = []string{
	"idtoken",
	"id_token",
	"access_token",
	"token",
	"key",
	"api_key",
}

var secretPatterns = []*regexp.Regexp{
	// JWTs (id tokens): header.payload.signature, base64url.
	regexp.MustCompile(`eyJ[a-zA-Z0-9_-]{5,}\.[a-zA-Z0-9_-]{5,}\.[a-zA-Z0-9_-]*`),

	// Bearer tokens
	regexp.MustCompile(`(?i)bearer\s+([a-zA-Z0-9._-]{20,})`),
}

// Credential query parameters left in free text.
var paramPattern = regexp.MustCompile(`(?i)((?:id_?token|access_token|api_key)=)[^&\s"']+`)

// Redact replaces sensitive information in a string.
func Redact(s string) string {
	result := s
	for _, pattern := range secretPatterns {
		result = pattern.ReplaceAllString(result, RedactedValue)
	}
	return paramPattern.ReplaceAllString(result, "${1}"+RedactedValue)
}

// RedactURL masks credential query parameters in a URL. Unparsable input
// falls back to pattern redaction.
func RedactURL(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return Redact(raw)
	}
	if u.RawQuery != "" {
		pairs := strings.Split(u.RawQuery, "&")
		for i, pair := range pairs {
			key, _, _ := strings.Cut(pair, "=")
			if name, err := url.QueryUnescape(key); err == nil && IsSensitiveParam(name) {
				pairs[i] = key + "=" + RedactedValue
			}
		}
		u.RawQuery = strings.Join(pairs, "&")
	}
	return Redact(u.String())
}

// IsSensitiveParam reports whether a query parameter name carries a credential.
func IsSensitiveParam(name string) bool {
	lower := strings.ToLower(name)
	for _, p := range sensitiveParams {
		if lower == p {
			return true
		}
	}
	return false
}
