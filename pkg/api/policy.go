package api

import (
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/Sternrassler/football-fixtures-gateway/pkg/cache"
	"github.com/Sternrassler/football-fixtures-gateway/pkg/schedule"
)

// Response cache lifetimes per endpoint.
const (
	TTLToday    = 60 * time.Second
	TTLTomorrow = 60 * time.Second
	TTLDate     = 60 * time.Second
	TTLUpcoming = 60 * time.Second
	TTLLive     = 5 * time.Second
	TTLMatch    = 3 * time.Second
)

// Constant keys.
var (
	keyToday    = cache.Key{Kind: "today"}
	keyTomorrow = cache.Key{Kind: "tomorrow"}
	keyLive     = cache.Key{Kind: "live"}
)

func upcomingKey(days int) cache.Key {
	return cache.Key{Kind: "upcoming", Params: map[string]string{"days": strconv.Itoa(days)}}
}

func matchKey(id int64) cache.Key {
	return cache.Key{Kind: "match", Params: map[string]string{"id": strconv.FormatInt(id, 10)}}
}

// parseDays reads the upcoming range. Missing or non-integer values fall back
// to the default; integers are clamped, including those too large for an int.
func parseDays(raw string) int {
	n, err := strconv.Atoi(raw)
	switch {
	case errors.Is(err, strconv.ErrRange):
		if strings.HasPrefix(raw, "-") {
			return schedule.MinUpcomingDays
		}
		return schedule.MaxUpcomingDays
	case err != nil:
		return schedule.DefaultUpcomingDays
	}
	return schedule.ClampDays(n)
}
