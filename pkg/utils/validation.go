package utils

import (
	"fmt"
	"net/url"
	"strings"
)

// ValidateURL trims and validates a backend base URL, returning it without a
// trailing slash. Only http and https with a host are accepted.
func ValidateURL(raw string) (string, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return "", fmt.Errorf("URL is required")
	}
	u, err := url.Parse(s)
	if err != nil {
		return "", fmt.Errorf("invalid URL: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return "", fmt.Errorf("invalid URL %q: scheme must be http or https", s)
	}
	if u.Host == "" {
		return "", fmt.Errorf("invalid URL %q: missing host", s)
	}
	return strings.TrimRight(s, "/"), nil
}

// ParseQueries splits text into one query per line, trimming whitespace and
// dropping blank lines. Order is preserved.
func ParseQueries(text string) []string {
	var queries []string
	for _, line := range strings.Split(text, "\n") {
		q := strings.TrimSpace(line)
		if q == "" {
			continue
		}
		queries = append(queries, q)
	}
	return queries
}

// CleanQueries trims each query and drops empty ones.
func CleanQueries(raw []string) []string {
	return ParseQueries(strings.Join(raw, "\n"))
}
