package calendar

import "time"

// Clock tells the current instant and the location used to decide what
// "today" is. The zero Clock uses time.Now and UTC.
type Clock struct {
	Now      func() time.Time
	Location *time.Location
}

// NewClock returns a Clock for the named IANA zone. An empty name means UTC.
func NewClock(zone string) (Clock, error) {
	if zone == "" {
		return Clock{Now: time.Now, Location: time.UTC}, nil
	}
	loc, err := time.LoadLocation(zone)
	if err != nil {
		return Clock{}, err
	}
	return Clock{Now: time.Now, Location: loc}, nil
}

// Fixed returns a Clock frozen at t, in t's location.
func Fixed(t time.Time) Clock {
	return Clock{Now: func() time.Time { return t }, Location: t.Location()}
}

// Time returns the current instant.
func (c Clock) Time() time.Time {
	if c.Now == nil {
		return time.Now()
	}
	return c.Now()
}

// Loc returns the clock's location, defaulting to UTC.
func (c Clock) Loc() *time.Location {
	if c.Location == nil {
		return time.UTC
	}
	return c.Location
}

// Today returns the current civil date in the clock's location.
func (c Clock) Today() Date {
	return In(c.Time(), c.Loc())
}
