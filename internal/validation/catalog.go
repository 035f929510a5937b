// Package validation checks free-form input forwarded to the movie catalog.
package validation

import (
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"
)

// MaxSearchQueryLength bounds the title text sent to the catalog search.
const MaxSearchQueryLength = 100

var discoverSortRegex = regexp.MustCompile(`^([a-z_]+)\.(asc|desc)$`)

var discoverSortFields = map[string]struct{}{
	"popularity":           {},
	"revenue":              {},
	"primary_release_date": {},
	"title":                {},
	"vote_average":         {},
	"vote_count":           {},
}

// ValidateSearchQuery trims q and rejects empty or oversized queries.
func ValidateSearchQuery(q string) (string, error) {
	q = strings.TrimSpace(q)
	if q == "" {
		return "", fmt.Errorf("q is required")
	}
	if utf8.RuneCountInString(q) > MaxSearchQueryLength {
		return "", fmt.Errorf("q must be at most %d characters", MaxSearchQueryLength)
	}
	return q, nil
}

// ValidateDiscoverSort accepts "" or "<field>.<asc|desc>" for a known field.
func ValidateDiscoverSort(sortBy string) error {
	if sortBy == "" {
		return nil
	}
	m := discoverSortRegex.FindStringSubmatch(sortBy)
	if m == nil {
		return fmt.Errorf("sortBy must look like popularity.desc")
	}
	if _, ok := discoverSortFields[m[1]]; !ok {
		return fmt.Errorf("sortBy field %q is not supported", m[1])
	}
	return nil
}
