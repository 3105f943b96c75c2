package fixture

// Team is one side of a fixture. All fields are null when the provider did
// not send a participant for that side.
type Team struct {
	ID   *int64  `json:"id"`
	Name *string `json:"name"`
	Code *string `json:"code"`
	Logo *string `json:"logo"`
}

// Fixture is the canonical, provider-independent view of one match.
type Fixture struct {
	ID           *int64  `json:"id"`
	LeagueID     *int64  `json:"league_id"`
	LeagueName   *string `json:"league_name"`
	StateID      *int64  `json:"state_id"`
	KickoffUTC   *string `json:"kickoff_utc"`
	KickoffLocal *string `json:"kickoff_local"`
	Home         Team    `json:"home"`
	Away         Team    `json:"away"`
	ScoreHome    int     `json:"score_home"`
	ScoreAway    int     `json:"score_away"`
}
