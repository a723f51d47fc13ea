package services

// LabelForScore returns the label of the first score range whose inclusive
// [Min, Max] band contains score, scanning in slice order. It returns the
// empty string when no band matches; an unclassifiable score is not an
// error.
func LabelForScore(score int, ranges []ScoreRange) string {
	for _, r := range ranges {
		if score >= r.Min && score <= r.Max {
			return r.Label
		}
	}
	return ""
}
