// Package fixture turns SportMonks fixture records into the gateway's
// canonical fixture shape.
//
// Every raw field is optional. Decoding never fails on a wrong type or a
// missing field: the field is simply left unset and normalization falls back
// to its default, so one malformed record cannot abort a batch.
package fixture

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"
	"strings"

	"github.com/bytedance/sonic"
)

var lenient = sonic.Config{UseNumber: true}.Froze()

// RawFixture is the provider representation of one match.
type RawFixture struct {
	ID           Int                  `json:"id"`
	LeagueID     Int                  `json:"league_id"`
	League       Object[RawLeague]    `json:"league"`
	StateID      Int                  `json:"state_id"`
	StartingAt   String               `json:"starting_at"`
	Participants List[RawParticipant] `json:"participants"`
	Scores       List[RawScore]       `json:"scores"`
}

// RawLeague is the expanded league relation.
type RawLeague struct {
	Name String `json:"name"`
}

// RawParticipant is one team taking part in a fixture.
type RawParticipant struct {
	ID        Int                        `json:"id"`
	Name      String                     `json:"name"`
	ShortCode String                     `json:"short_code"`
	ImagePath String                     `json:"image_path"`
	Meta      Object[RawParticipantMeta] `json:"meta"`
}

// RawParticipantMeta carries the participant's side of the pitch.
type RawParticipantMeta struct {
	Location String `json:"location"`
}

// RawScore is one score record; only records described as CURRENT count.
type RawScore struct {
	Description String                `json:"description"`
	Score       Object[RawScoreValue] `json:"score"`
}

// RawScoreValue is the nested tally of a score record.
type RawScoreValue struct {
	Participant String `json:"participant"`
	Goals       Int    `json:"goals"`
}

// Int is an optional integer. Numbers and numeric strings are accepted;
// anything else leaves it unset.
type Int struct {
	Value int64
	Valid bool
}

// UnmarshalJSON implements json.Unmarshaler and never returns an error.
func (i *Int) UnmarshalJSON(data []byte) error {
	*i = Int{}

	var v any
	if err := lenient.Unmarshal(data, &v); err != nil {
		return nil
	}

	switch typed := v.(type) {
	case json.Number:
		i.Value, i.Valid = numberToInt(typed.String())
	case string:
		i.Value, i.Valid = numberToInt(strings.TrimSpace(typed))
	}
	return nil
}

// Or returns the value, or def when unset.
func (i Int) Or(def int64) int64 {
	if !i.Valid {
		return def
	}
	return i.Value
}

// Ptr returns a pointer to the value, or nil when unset.
func (i Int) Ptr() *int64 {
	if !i.Valid {
		return nil
	}
	v := i.Value
	return &v
}

func numberToInt(raw string) (int64, bool) {
	if raw == "" {
		return 0, false
	}
	if n, err := strconv.ParseInt(raw, 10, 64); err == nil {
		return n, true
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(f) || f < -(1<<63) || f >= 1<<63 {
		return 0, false
	}
	return int64(f), true
}

// String is an optional string. Numbers are accepted in their literal form;
// anything else leaves it unset.
type String struct {
	Value string
	Valid bool
}

// UnmarshalJSON implements json.Unmarshaler and never returns an error.
func (s *String) UnmarshalJSON(data []byte) error {
	*s = String{}

	var v any
	if err := lenient.Unmarshal(data, &v); err != nil {
		return nil
	}

	switch typed := v.(type) {
	case string:
		s.Value, s.Valid = typed, true
	case json.Number:
		s.Value, s.Valid = typed.String(), true
	}
	return nil
}

// Or returns the value, or def when unset.
func (s String) Or(def string) string {
	if !s.Valid {
		return def
	}
	return s.Value
}

// Ptr returns a pointer to the value, or nil when unset.
func (s String) Ptr() *string {
	if !s.Valid {
		return nil
	}
	v := s.Value
	return &v
}

// Object is an optional nested object, either inline or wrapped as
// {"data": {...}}.
type Object[T any] struct {
	Data T
	Set  bool
}

// UnmarshalJSON implements json.Unmarshaler and never returns an error.
func (o *Object[T]) UnmarshalJSON(data []byte) error {
	*o = Object[T]{}

	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return nil
	}

	var wrapped struct {
		Data json.RawMessage `json:"data"`
	}
	if err := lenient.Unmarshal(trimmed, &wrapped); err == nil {
		if inner := bytes.TrimSpace(wrapped.Data); len(inner) > 0 && inner[0] == '{' {
			trimmed = inner
		}
	}

	var direct T
	if err := lenient.Unmarshal(trimmed, &direct); err != nil {
		return nil
	}
	o.Data = direct
	o.Set = true
	return nil
}

// List is an optional array, either inline or wrapped as {"data": [...]}.
// Elements that are not decodable keep their zero value so the list stays
// aligned with the provider's records.
type List[T any] []T

// UnmarshalJSON implements json.Unmarshaler and never returns an error.
func (l *List[T]) UnmarshalJSON(data []byte) error {
	*l = nil

	var items []json.RawMessage
	if err := lenient.Unmarshal(data, &items); err != nil {
		var wrapped struct {
			Data []json.RawMessage `json:"data"`
		}
		if err := lenient.Unmarshal(data, &wrapped); err != nil {
			return nil
		}
		items = wrapped.Data
	}

	out := make(List[T], 0, len(items))
	for _, raw := range items {
		var item T
		if err := lenient.Unmarshal(raw, &item); err != nil {
			var zero T
			item = zero
		}
		out = append(out, item)
	}
	*l = out
	return nil
}

// DecodeList decodes a JSON array of raw fixtures leniently.
func DecodeList(data []byte) []RawFixture {
	var list List[RawFixture]
	_ = list.UnmarshalJSON(data)
	return list
}
