package api

import "testing"

func TestParseDays(t *testing.T) {
	tests := []struct {
		raw  string
		want int
	}{
		{raw: "", want: 7},
		{raw: "seven", want: 7},
		{raw: "3.0", want: 7},
		{raw: "5", want: 5},
		{raw: "+20", want: 14},
		{raw: "0", want: 1},
		{raw: "99999999999999999999", want: 14},
		{raw: "+99999999999999999999", want: 14},
		{raw: "-99999999999999999999", want: 1},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			if got := parseDays(tt.raw); got != tt.want {
				t.Errorf("parseDays(%q) = %d, want %d", tt.raw, got, tt.want)
			}
		})
	}
}

func TestTTLPolicy(t *testing.T) {
	tests := map[string]struct {
		got, want int64
	}{
		"today":    {got: int64(TTLToday.Seconds()), want: 60},
		"tomorrow": {got: int64(TTLTomorrow.Seconds()), want: 60},
		"date":     {got: int64(TTLDate.Seconds()), want: 60},
		"upcoming": {got: int64(TTLUpcoming.Seconds()), want: 60},
		"live":     {got: int64(TTLLive.Seconds()), want: 5},
		"match":    {got: int64(TTLMatch.Seconds()), want: 3},
	}

	for name, tt := range tests {
		if tt.got != tt.want {
			t.Errorf("%s TTL = %ds, want %ds", name, tt.got, tt.want)
		}
	}
}
