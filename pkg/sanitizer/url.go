package sanitizer

import (
	"net/url"
	"strings"
)

// NormalizeMeetingLink validates and normalizes a meeting URL.
// Returns the normalized link, or "" when the input is not an absolute
// http(s) URL with a host.
func NormalizeMeetingLink(link string) string {
	link = strings.TrimSpace(link)
	if link == "" {
		return ""
	}

	parsed, err := url.Parse(link)
	if err != nil {
		return ""
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return ""
	}
	if parsed.Host == "" {
		return ""
	}

	parsed.Host = strings.ToLower(parsed.Host)
	return strings.TrimSuffix(parsed.String(), "/")
}
