// Package suggest provides "did you mean" hints shared by the
// interpreter's undefined-name errors and the REPL's :? lookup.
package suggest

import "github.com/lithammer/fuzzysearch/fuzzy"

// Closest returns the candidate fuzzy-matching name closest to want,
// or "" if none of candidates is a plausible fuzzy match.
func Closest(want string, candidates []string) string {
	ranked := fuzzy.RankFindFold(want, candidates)
	if len(ranked) == 0 {
		return ""
	}
	best := ranked[0]
	for _, r := range ranked[1:] {
		if r.Distance < best.Distance {
			best = r
		}
	}
	return best.Target
}
