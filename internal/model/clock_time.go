package model

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// ClockTime is a time of day with minute precision, stored in a TIME column.
type ClockTime int

const minutesPerDay = 24 * 60

// ParseClockTime accepts "HH:MM" and "HH:MM:SS" (seconds are dropped).
// Surrounding whitespace is ignored.
func ParseClockTime(s string) (ClockTime, error) {
	s = strings.TrimSpace(s)
	parts := strings.Split(s, ":")
	if len(parts) != 2 && len(parts) != 3 {
		return 0, fmt.Errorf("invalid clock time %q, want HH:MM", s)
	}

	h, err := clockPart(parts[0], 23)
	if err != nil {
		return 0, fmt.Errorf("invalid clock time %q: hour %w", s, err)
	}
	m, err := clockPart(parts[1], 59)
	if err != nil {
		return 0, fmt.Errorf("invalid clock time %q: minute %w", s, err)
	}
	if len(parts) == 3 {
		// fractional seconds come back from postgres TIME columns
		sec, _, _ := strings.Cut(parts[2], ".")
		if _, err := clockPart(sec, 59); err != nil {
			return 0, fmt.Errorf("invalid clock time %q: second %w", s, err)
		}
	}
	return ClockTime(h*60 + m), nil
}

func clockPart(s string, max int) (int, error) {
	if len(s) < 1 || len(s) > 2 {
		return 0, fmt.Errorf("must be 1-2 digits")
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < 0 || n > max {
		return 0, fmt.Errorf("out of range 0-%d", max)
	}
	return n, nil
}

// MustClock panics on malformed input. Seeds and tests only.
func MustClock(s string) ClockTime {
	c, err := ParseClockTime(s)
	if err != nil {
		panic(err)
	}
	return c
}

// Minutes since midnight.
func (c ClockTime) Minutes() int { return int(c) }

// String renders HH:MM.
func (c ClockTime) String() string {
	return fmt.Sprintf("%02d:%02d", int(c)/60, int(c)%60)
}

// On anchors the clock time to date's calendar day in date's location.
func (c ClockTime) On(date time.Time) time.Time {
	y, m, d := date.Date()
	return time.Date(y, m, d, int(c)/60, int(c)%60, 0, 0, date.Location())
}

// Value stores HH:MM:00.
func (c ClockTime) Value() (driver.Value, error) {
	if c < 0 || c >= minutesPerDay {
		return nil, fmt.Errorf("clock time %d out of range", int(c))
	}
	return c.String() + ":00", nil
}

// Scan reads a TIME column in any of the shapes pgx hands back.
func (c *ClockTime) Scan(src interface{}) error {
	switch v := src.(type) {
	case nil:
		*c = 0
		return nil
	case string:
		parsed, err := ParseClockTime(v)
		if err != nil {
			return err
		}
		*c = parsed
		return nil
	case []byte:
		return c.Scan(string(v))
	case time.Time:
		*c = ClockTime(v.Hour()*60 + v.Minute())
		return nil
	case int64:
		// microseconds since midnight
		*c = ClockTime((v / int64(time.Minute/time.Microsecond)) % minutesPerDay)
		return nil
	default:
		return fmt.Errorf("ClockTime.Scan: unsupported type %T", src)
	}
}

// MarshalJSON renders "HH:MM".
func (c ClockTime) MarshalJSON() ([]byte, error) {
	return json.Marshal(c.String())
}

// UnmarshalJSON accepts "HH:MM" or "HH:MM:SS".
func (c *ClockTime) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	parsed, err := ParseClockTime(s)
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}
