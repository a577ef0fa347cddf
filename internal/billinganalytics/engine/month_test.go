package engine

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var anchor = time.Date(2024, time.March, 15, 10, 30, 0, 0, time.UTC)

func TestLastThirteenMonths(t *testing.T) {
	labels := LastThirteenMonths(anchor)

	require.Len(t, labels, MonthWindowSize)
	assert.Equal(t, "Mar. 2023", labels[0])
	assert.Equal(t, "Sep. 2023", labels[6])
	assert.Equal(t, "Mar. 2024", labels[12])

	seen := map[string]bool{}
	for _, label := range labels {
		assert.False(t, seen[label], "duplicate label %s", label)
		seen[label] = true
	}
}

func TestLastThirteenMonthsEndOfMonthAnchor(t *testing.T) {
	// Day 31 must not overflow into the following month while walking back.
	labels := LastThirteenMonths(time.Date(2024, time.January, 31, 23, 59, 0, 0, time.UTC))

	require.Len(t, labels, MonthWindowSize)
	assert.Equal(t, "Jan. 2023", labels[0])
	assert.Equal(t, "Feb. 2023", labels[1])
	assert.Equal(t, "Dec. 2023", labels[11])
	assert.Equal(t, "Jan. 2024", labels[12])
}

func TestNormalizeMonthLabel(t *testing.T) {
	cases := []struct {
		raw  string
		want string
		ok   bool
	}{
		{raw: "2024-01-01T00:00:00Z", want: "Jan. 2024", ok: true},
		{raw: "2024-02-10T08:15:00.123Z", want: "Feb. 2024", ok: true},
		{raw: "2023-11-30", want: "Nov. 2023", ok: true},
		{raw: "2023-07", want: "Jul. 2023", ok: true},
		{raw: "May. 2024", want: "May. 2024", ok: true},
		{raw: "Dec 2023", want: "Dec. 2023", ok: true},
		{raw: "  2024-03-01  ", want: "Mar. 2024", ok: true},
		{raw: "", ok: false},
		{raw: "last month", ok: false},
	}

	for _, tc := range cases {
		got, ok := NormalizeMonthLabel(tc.raw)
		assert.Equal(t, tc.ok, ok, "raw=%q", tc.raw)
		assert.Equal(t, tc.want, got, "raw=%q", tc.raw)
	}
}

func TestMonthWindowRange(t *testing.T) {
	from, to := MonthWindowRange(anchor)

	assert.Equal(t, time.Date(2023, time.March, 1, 0, 0, 0, 0, time.UTC), from)
	assert.Equal(t, time.Date(2024, time.April, 1, 0, 0, 0, 0, time.UTC), to)
	assert.Equal(t, LastThirteenMonths(anchor)[0], MonthLabel(from))
}
