package clock

import "time"

// Clock supplies the current time. Aggregations read it once per request so
// every series in a response shares the same anchor month.
type Clock interface {
	Now() time.Time
}

// SystemClock reads the wall clock in UTC.
type SystemClock struct{}

func (SystemClock) Now() time.Time {
	return time.Now().UTC()
}
