package fixture

import "math"

const (
	currentDescription = "CURRENT"
	locationHome       = "home"
	locationAway       = "away"
)

// Score is the running tally of a fixture.
type Score struct {
	Home int `json:"home"`
	Away int `json:"away"`
}

// ExtractScore derives the current score from a fixture's score records.
// Only records described exactly as CURRENT are considered, and the last
// record seen for each side wins. Missing goals count as zero.
func ExtractScore(scores []RawScore) Score {
	var out Score
	for _, s := range scores {
		if s.Description.Or("") != currentDescription || !s.Score.Set {
			continue
		}

		goals := 0
		if g := s.Score.Data.Goals.Or(0); g >= math.MinInt && g <= math.MaxInt {
			goals = int(g)
		}
		switch s.Score.Data.Participant.Or("") {
		case locationHome:
			out.Home = goals
		case locationAway:
			out.Away = goals
		}
	}
	return out
}
