// Package redact scrubs credential material out of strings destined for
// logs, events and status messages.
package redact

import (
	"regexp"
	"strings"
)

const mask = "[REDACTED]"

var patterns = []*regexp.Regexp{
	// AWS-style access key ids
	regexp.MustCompile(`\b(AKIA|ASIA)[0-9A-Z]{16}\b`),
	// key=value style secrets
	regexp.MustCompile(`(?i)(secret[_-]?access[_-]?key|secret[_-]?key|session[_-]?token|password)\s*[:=]\s*\S+`),
	// Authorization headers
	regexp.MustCompile(`(?i)authorization:\s*\S+( \S+)?`),
}

// String replaces credential-looking fragments with a mask.
func String(s string) string {
	for _, p := range patterns {
		s = p.ReplaceAllString(s, mask)
	}
	return s
}

// Error is a convenience over String for error values; nil-safe.
func Error(err error) string {
	if err == nil {
		return ""
	}
	return String(err.Error())
}

// Secrets masks every occurrence of the given secret values, regardless of
// surrounding context.
func Secrets(s string, values ...string) string {
	for _, v := range values {
		if v == "" {
			continue
		}
		s = strings.ReplaceAll(s, v, mask)
	}
	return s
}
