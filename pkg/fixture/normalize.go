package fixture

import (
	"fmt"
	"strings"
	"time"
)

// DefaultDisplayTimezone is the zone kickoff_local is rendered in.
const DefaultDisplayTimezone = "Europe/London"

// LocalLayout renders kickoff_local as day/month/year with a 24h clock.
const LocalLayout = "02/01/2006, 15:04:05"

// Extra layouts tried when starting_at is not "YYYY-MM-DD HH:MM:SS".
var kickoffLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04Z",
	"2006-01-02Z",
}

// Normalizer converts raw fixtures into canonical fixtures.
type Normalizer struct {
	location *time.Location
	layout   string
}

// NewNormalizer creates a normalizer rendering local kickoffs in loc. A nil
// location disables kickoff_local.
func NewNormalizer(loc *time.Location) *Normalizer {
	return &Normalizer{location: loc, layout: LocalLayout}
}

// LoadNormalizer creates a normalizer for the named IANA zone.
func LoadNormalizer(zone string) (*Normalizer, error) {
	loc, err := time.LoadLocation(zone)
	if err != nil {
		return nil, fmt.Errorf("loading display timezone %q: %w", zone, err)
	}
	return NewNormalizer(loc), nil
}

// Normalize converts one raw fixture. It never fails: absent or malformed
// fields come out as null or zero. A nil fixture yields an all-null result.
func (n *Normalizer) Normalize(raw *RawFixture) Fixture {
	if raw == nil {
		return Fixture{}
	}

	out := Fixture{
		ID:       raw.ID.Ptr(),
		LeagueID: raw.LeagueID.Ptr(),
		StateID:  raw.StateID.Ptr(),
		Home:     pickTeam(raw.Participants, locationHome),
		Away:     pickTeam(raw.Participants, locationAway),
	}
	if raw.League.Set {
		out.LeagueName = raw.League.Data.Name.Ptr()
	}

	if raw.StartingAt.Valid {
		if kickoff, ok := parseKickoff(raw.StartingAt.Value); ok {
			utc := kickoff.UTC().Format(time.RFC3339)
			out.KickoffUTC = &utc
			out.KickoffLocal = n.formatLocal(kickoff)
		}
	}

	score := ExtractScore(raw.Scores)
	out.ScoreHome = score.Home
	out.ScoreAway = score.Away
	return out
}

// NormalizeAll converts a batch. The result is never nil.
func (n *Normalizer) NormalizeAll(raws []RawFixture) []Fixture {
	out := make([]Fixture, 0, len(raws))
	for i := range raws {
		out = append(out, n.Normalize(&raws[i]))
	}
	return out
}

func (n *Normalizer) formatLocal(t time.Time) *string {
	if n == nil || n.location == nil || n.layout == "" {
		return nil
	}
	s := t.In(n.location).Format(n.layout)
	return &s
}

// parseKickoff reads a provider timestamp as UTC. The provider sends
// "YYYY-MM-DD HH:MM:SS" without an offset.
func parseKickoff(value string) (time.Time, bool) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, false
	}

	iso := strings.Replace(value, " ", "T", 1)
	if !strings.HasSuffix(iso, "Z") && !hasOffset(iso) {
		iso += "Z"
	}

	for _, layout := range kickoffLayouts {
		if t, err := time.Parse(layout, iso); err == nil {
			return t.UTC(), true
		}
	}
	return time.Time{}, false
}

// hasOffset reports whether an ISO timestamp already ends in ±hh:mm.
func hasOffset(iso string) bool {
	if len(iso) < len("+00:00") || !strings.Contains(iso, "T") {
		return false
	}
	tail := iso[len(iso)-6:]
	return (tail[0] == '+' || tail[0] == '-') && tail[3] == ':'
}

func pickTeam(participants []RawParticipant, location string) Team {
	for _, p := range participants {
		if !p.Meta.Set || p.Meta.Data.Location.Or("") != location {
			continue
		}
		return Team{
			ID:   p.ID.Ptr(),
			Name: p.Name.Ptr(),
			Code: p.ShortCode.Ptr(),
			Logo: p.ImagePath.Ptr(),
		}
	}
	return Team{}
}
