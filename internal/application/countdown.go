package application

import "time"

// Countdown is the time remaining until the event, clamped at zero.
type Countdown struct {
	EventDate time.Time
	Days      int
	Hours     int
	Minutes   int
	Seconds   int
	Started   bool
}

// CountdownUntil splits the duration from now to event into whole units.
func CountdownUntil(event, now time.Time) Countdown {
	remaining := event.Sub(now)
	if remaining <= 0 {
		return Countdown{EventDate: event, Started: true}
	}
	total := int64(remaining / time.Second)
	return Countdown{
		EventDate: event,
		Days:      int(total / 86400),
		Hours:     int(total % 86400 / 3600),
		Minutes:   int(total % 3600 / 60),
		Seconds:   int(total % 60),
	}
}
