package models

import (
	"regexp"
	"strings"

	"github.com/gosimple/slug"
)

// Record is a row of one of the CMS reference tables.
type Record map[string]any

// Slugify normalises a destination name into its URL slug.
func Slugify(name string) string {
	return slug.Make(strings.TrimSpace(name))
}

var nonAlnum = regexp.MustCompile(`[^a-z0-9]+`)

// DestinationKey is the comparison key for free-text destination columns:
// lower case, runs of other characters folded to "-", trimmed. It mirrors
// the SQL expression used for destination filters.
func DestinationKey(name string) string {
	return strings.Trim(nonAlnum.ReplaceAllString(strings.ToLower(name), "-"), "-")
}
