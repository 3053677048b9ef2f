package calendar

// Window is an inclusive range of days. A zero To means the window is open
// ended.
type Window struct {
	From Date
	To   Date
}

// Since returns the open-ended window starting at from.
func Since(from Date) Window {
	return Window{From: from}
}

// LastDays returns the n-day window ending on today, inclusive on both ends.
func LastDays(today Date, n int) Window {
	return Window{From: today.AddDays(-(n - 1)), To: today}
}

// Contains reports whether d falls inside the window.
func (w Window) Contains(d Date) bool {
	if d.Before(w.From) {
		return false
	}
	return w.To.IsZero() || !d.After(w.To)
}

// Days lists every day of a closed window in ascending order. An open or
// inverted window yields nil.
func (w Window) Days() []Date {
	if w.To.IsZero() || w.To.Before(w.From) {
		return nil
	}
	n := w.To.DaysSince(w.From) + 1
	days := make([]Date, 0, n)
	for d := w.From; !d.After(w.To); d = d.AddDays(1) {
		days = append(days, d)
	}
	return days
}
