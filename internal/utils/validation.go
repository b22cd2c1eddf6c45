package utils

import (
	"net/url"
	"regexp"
	"strings"
)

var emailPattern = regexp.MustCompile(EmailRegex)

// IsValidEmail checks normalized email format (the store additionally
// enforces per-user uniqueness on the normalized value).
func IsValidEmail(email string) bool {
	return emailPattern.MatchString(email)
}

// NormalizeEmail lowercases and trims an email for uniqueness comparison.
func NormalizeEmail(email string) string {
	return strings.ToLower(regexp.MustCompile(`\s+`).ReplaceAllString(email, ""))
}

// IsValidHTTPURL checks that a string parses as an absolute http(s) URL.
// This is a syntactic check only — SSRF safety is decided separately by
// the unfurl package's fetcher, which resolves and classifies the host.
func IsValidHTTPURL(raw string) bool {
	u, err := url.Parse(raw)
	if err != nil {
		return false
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return false
	}
	return u.Host != ""
}

// IsValidCategory rejects empty or overlong category labels.
func IsValidCategory(category string) bool {
	return len(category) > 0 && len(category) <= 50
}
