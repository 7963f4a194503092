package pipeline

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

// Date pattern families, tried in declared order across two locales.
var (
	reDayFirst    = regexp.MustCompile(`(\d{1,2})[-/](\d{1,2})[-/](\d{4})`)
	reYearFirst   = regexp.MustCompile(`(\d{4})[-/](\d{1,2})[-/](\d{1,2})`)
	reMonthNameEN = regexp.MustCompile(`(?i)(january|february|march|april|may|june|july|august|september|october|november|december)\s+(\d{1,2}),?\s+(\d{4})`)
	reMonthNameID = regexp.MustCompile(`(?i)(\d{1,2})\s+(januari|februari|maret|april|mei|juni|juli|agustus|september|oktober|november|desember)\s+(\d{4})`)
)

var monthNames = map[string]time.Month{
	"january": time.January, "february": time.February, "march": time.March,
	"april": time.April, "may": time.May, "june": time.June,
	"july": time.July, "august": time.August, "september": time.September,
	"october": time.October, "november": time.November, "december": time.December,
	"januari": time.January, "februari": time.February, "maret": time.March,
	"mei": time.May, "juni": time.June, "juli": time.July,
	"agustus": time.August, "oktober": time.October, "desember": time.December,
}

// ExtractBillingDate recovers a calendar date from free text. Numeric
// day-first and year-first forms are tried before English "Month DD, YYYY"
// and Indonesian "DD Month YYYY". The first match that validates is
// returned; invalid dates are silently skipped.
func ExtractBillingDate(text string) *time.Time {
	if date := scanNumeric(reDayFirst, text); date != nil {
		return date
	}
	if date := scanNumeric(reYearFirst, text); date != nil {
		return date
	}
	for _, match := range reMonthNameEN.FindAllStringSubmatch(text, -1) {
		month, ok := monthNames[strings.ToLower(match[1])]
		if !ok {
			continue
		}
		if date := validDate(atoi(match[3]), month, atoi(match[2])); date != nil {
			return date
		}
	}
	for _, match := range reMonthNameID.FindAllStringSubmatch(text, -1) {
		month, ok := monthNames[strings.ToLower(match[2])]
		if !ok {
			continue
		}
		if date := validDate(atoi(match[3]), month, atoi(match[1])); date != nil {
			return date
		}
	}
	return nil
}

// scanNumeric handles both numeric orderings with one rule: when the third
// captured group exceeds 31 it must be the year, so the match reads
// day-month-year; otherwise the year leads and it reads year-month-day.
func scanNumeric(re *regexp.Regexp, text string) *time.Time {
	for _, match := range re.FindAllStringSubmatch(text, -1) {
		a, b, c := atoi(match[1]), atoi(match[2]), atoi(match[3])
		var date *time.Time
		if c > 31 {
			date = validDate(c, time.Month(b), a)
		} else {
			date = validDate(a, time.Month(b), c)
		}
		if date != nil {
			return date
		}
	}
	return nil
}

func validDate(year int, month time.Month, day int) *time.Time {
	if day < 1 || day > 31 || month < 1 || month > 12 || year < 1900 || year > 2100 {
		return nil
	}
	date := time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
	// Reject overflow like Feb 31, which time.Date would normalize away.
	if date.Day() != day || date.Month() != month {
		return nil
	}
	return &date
}

func atoi(s string) int {
	n, _ := strconv.Atoi(s)
	return n
}
