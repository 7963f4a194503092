package util

import (
	"regexp"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

var reSpaces = regexp.MustCompile(`\s+`)

var titleCaser = cases.Title(language.English)

// CleanText lowercases input and collapses runs of whitespace, including
// non-breaking spaces, into single spaces. All pattern matching runs over
// cleaned text only.
func CleanText(input string) string {
	if input == "" {
		return ""
	}
	s := strings.ToLower(input)
	s = strings.ReplaceAll(s, "\u00a0", " ")
	s = reSpaces.ReplaceAllString(s, " ")
	return strings.TrimSpace(s)
}

// TitleCase turns a catalog service key ("netflix") into a display name
// ("Netflix").
func TitleCase(input string) string {
	return titleCaser.String(input)
}

func StringPtr(v string) *string { return &v }

func FloatPtr(v float64) *float64 { return &v }
