package schedule

import "github.com/Sternrassler/football-fixtures-gateway/pkg/fixture"

// DailySchedule is the sorted fixture list of one UTC calendar day.
type DailySchedule struct {
	DateUTC  string            `json:"date_utc"`
	Fixtures []fixture.Fixture `json:"fixtures"`
}

// UpcomingSchedule covers consecutive days starting today. Days without
// fixtures are omitted, so len(Schedule) <= Days.
type UpcomingSchedule struct {
	Days     int             `json:"days"`
	Schedule []DailySchedule `json:"schedule"`
}

// LiveFixtures lists the matches currently in play.
type LiveFixtures struct {
	Count    int               `json:"count"`
	Fixtures []fixture.Fixture `json:"fixtures"`
}
