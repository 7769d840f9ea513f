package models

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
	"time"
)

var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// ParseTimestamp accepts RFC 3339 timestamps, zone-less date-times and bare dates (as UTC).
func ParseTimestamp(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), true
		}
	}
	return time.Time{}, false
}

// UnmarshalJSON decodes a plan record leniently: numbers may arrive as strings or
// floats, and dates as RFC 3339, date-only strings or epoch milliseconds.
// Values that cannot be coerced are left unset so NormalizePlan applies its defaults.
func (in *PlanInput) UnmarshalJSON(data []byte) error {
	type plain PlanInput
	var raw struct {
		plain
		Rating      any `json:"rating"`
		IsFavorite  any `json:"isFavorite"`
		Order       any `json:"order"`
		CreatedAt   any `json:"createdAt"`
		CompletedAt any `json:"completedAt"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	*in = PlanInput(raw.plain)
	if f, ok := looseNumber(raw.Rating); ok {
		in.Rating = &f
	}
	if f, ok := looseNumber(raw.Order); ok {
		order := int(math.Round(f))
		in.Order = &order
	}
	if b, ok := looseBool(raw.IsFavorite); ok {
		in.IsFavorite = &b
	}
	in.CreatedAt = looseTime(raw.CreatedAt)
	in.CompletedAt = looseTime(raw.CompletedAt)
	return nil
}

func looseNumber(v any) (float64, bool) {
	var f float64
	switch n := v.(type) {
	case float64:
		f = n
	case string:
		s := strings.TrimSpace(n)
		if s == "" {
			return 0, false
		}
		parsed, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return 0, false
		}
		f = parsed
	default:
		return 0, false
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

func looseBool(v any) (bool, bool) {
	switch b := v.(type) {
	case bool:
		return b, true
	case string:
		parsed, err := strconv.ParseBool(strings.TrimSpace(b))
		return parsed, err == nil
	case float64:
		return b != 0, true
	}
	return false, false
}

func looseTime(v any) *time.Time {
	var t time.Time
	switch x := v.(type) {
	case string:
		parsed, ok := ParseTimestamp(x)
		if !ok {
			return nil
		}
		t = parsed
	case float64:
		t = time.UnixMilli(int64(x)).UTC()
	default:
		return nil
	}
	if t.IsZero() {
		return nil
	}
	return &t
}
