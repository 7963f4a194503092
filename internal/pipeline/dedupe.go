package pipeline

import (
	"sort"
	"strings"

	"subtrack/internal"
)

// Dedupe merges repeated detections of the same service within one scan.
// Grouping is case-insensitive on service name; within a group the single
// candidate with the greatest amount survives. Candidates without an amount
// are dropped entirely. Output is sorted by service name so the result does
// not depend on input order.
func Dedupe(candidates []internal.DetectionCandidate) []internal.DetectionCandidate {
	best := make(map[string]internal.DetectionCandidate)
	for _, cand := range candidates {
		if cand.Amount == nil {
			continue
		}
		key := strings.ToLower(cand.Service)
		current, seen := best[key]
		if !seen || *current.Amount < *cand.Amount {
			best[key] = cand
		}
	}

	out := make([]internal.DetectionCandidate, 0, len(best))
	for _, cand := range best {
		out = append(out, cand)
	}
	sort.Slice(out, func(i, j int) bool {
		return strings.ToLower(out[i].Service) < strings.ToLower(out[j].Service)
	})
	return out
}
