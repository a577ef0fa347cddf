package engine

import (
	"strings"
	"time"
)

const (
	// MonthWindowSize is the number of calendar months in every padded series.
	MonthWindowSize = 13

	// MonthLabelLayout renders labels such as "Jan. 2024".
	MonthLabelLayout = "Jan. 2006"
)

var monthInputLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
	"2006-01",
	MonthLabelLayout,
	"Jan 2006",
}

// MonthLabel formats the calendar month of t.
func MonthLabel(t time.Time) string {
	return t.Format(MonthLabelLayout)
}

// NormalizeMonthLabel converts a raw month value (timestamp, date, or label)
// to its canonical month label.
func NormalizeMonthLabel(raw string) (string, bool) {
	value := strings.TrimSpace(raw)
	if value == "" {
		return "", false
	}
	for _, layout := range monthInputLayouts {
		parsed, err := time.Parse(layout, value)
		if err == nil {
			return MonthLabel(parsed), true
		}
	}
	return "", false
}

// LastThirteenMonths returns the labels of the 13 calendar months ending with
// the month of now, oldest first.
func LastThirteenMonths(now time.Time) []string {
	start := truncateToMonth(now)
	labels := make([]string, 0, MonthWindowSize)
	for i := MonthWindowSize - 1; i >= 0; i-- {
		labels = append(labels, MonthLabel(start.AddDate(0, -i, 0)))
	}
	return labels
}

// MonthWindowRange returns the half-open time range [from, to) covered by
// LastThirteenMonths(now).
func MonthWindowRange(now time.Time) (time.Time, time.Time) {
	start := truncateToMonth(now)
	return start.AddDate(0, -(MonthWindowSize - 1), 0), start.AddDate(0, 1, 0)
}

func truncateToMonth(value time.Time) time.Time {
	return time.Date(value.Year(), value.Month(), 1, 0, 0, 0, 0, value.Location())
}
