package types

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"
)

// DateLayout is the calendar date format, YYYY-MM-DD
const DateLayout = "2006-01-02"

// Date is a calendar date without time of day. The zero value means "no
// date" and is encoded as JSON null.
type Date string

// NewDate returns the calendar date of t in t's location
func NewDate(t time.Time) Date {
	return Date(t.Format(DateLayout))
}

// ParseDate parses a YYYY-MM-DD string. An empty string yields the zero Date.
func ParseDate(s string) (Date, error) {
	if s == "" {
		return "", nil
	}
	if _, err := time.Parse(DateLayout, s); err != nil {
		return "", fmt.Errorf("invalid date %q: %w", s, err)
	}
	return Date(s), nil
}

// IsZero reports whether no date is set
func (d Date) IsZero() bool {
	return d == ""
}

// Time returns midnight UTC of the date. The zero Date returns the zero time.
func (d Date) Time() time.Time {
	if d.IsZero() {
		return time.Time{}
	}
	t, err := time.Parse(DateLayout, string(d))
	if err != nil {
		return time.Time{}
	}
	return t
}

// AddDays returns the date n days later
func (d Date) AddDays(n int) Date {
	if d.IsZero() {
		return d
	}
	return NewDate(d.Time().AddDate(0, 0, n))
}

// Before reports whether d is strictly earlier than other. Dates share one
// layout so lexical order is calendar order.
func (d Date) Before(other Date) bool {
	return d < other
}

func (d Date) String() string {
	return string(d)
}

func (d Date) MarshalJSON() ([]byte, error) {
	if d.IsZero() {
		return []byte("null"), nil
	}
	return json.Marshal(string(d))
}

func (d *Date) UnmarshalJSON(b []byte) error {
	if bytes.Equal(b, []byte("null")) {
		*d = ""
		return nil
	}

	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	parsed, err := ParseDate(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}
