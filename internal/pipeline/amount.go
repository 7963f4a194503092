package pipeline

import (
	"regexp"
	"strconv"
	"strings"
)

var (
	reAmountJunk   = regexp.MustCompile(`[^0-9.,]`)
	reDotThousands = regexp.MustCompile(`^\d{1,3}(?:\.\d{3})+$`)
)

// ExtractAmount scans text with each pattern in declared order and returns
// the first capture that parses as a number. Matches within one pattern are
// taken left to right; a capture that fails to parse is skipped and the scan
// continues. Exhausting all patterns is a miss, not an error.
func ExtractAmount(text string, patterns []*regexp.Regexp) *float64 {
	for _, pattern := range patterns {
		for _, match := range pattern.FindAllStringSubmatch(text, -1) {
			if len(match) < 2 {
				continue
			}
			if value, ok := parseAmount(match[1]); ok {
				return &value
			}
		}
	}
	return nil
}

// parseAmount normalizes a captured numeral. Commas are assumed to be
// thousands separators and dropped; dot-grouped thousands ("54.000") lose
// their dots too, so a decimal point survives only when the fraction is not
// a 3-digit group.
func parseAmount(capture string) (float64, bool) {
	s := reAmountJunk.ReplaceAllString(capture, "")
	s = strings.ReplaceAll(s, ",", "")
	if reDotThousands.MatchString(s) {
		s = strings.ReplaceAll(s, ".", "")
	}
	if s == "" {
		return 0, false
	}
	value, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return value, true
}
