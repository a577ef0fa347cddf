package engine

import (
	"fmt"
	"testing"

	"github.com/smallbiznis/billinginsights/internal/billinganalytics/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubFormatter struct{}

func (stubFormatter) Format(amountCents int64, currencyCode string) string {
	return fmt.Sprintf("%s %d", currencyCode, amountCents)
}

func TestWindowSeriesSizes(t *testing.T) {
	padded := PadSeries(nil, "USD", anchor)

	cases := []struct {
		scope domain.PeriodScope
		size  int
		first string
	}{
		{scope: domain.PeriodScopeYear, size: 13, first: "Mar. 2023"},
		{scope: domain.PeriodScopeQuarter, size: 4, first: "Dec. 2023"},
		{scope: domain.PeriodScopeMonth, size: 2, first: "Feb. 2024"},
	}

	for _, tc := range cases {
		window, err := WindowSeries(padded, tc.scope)
		require.NoError(t, err, "scope=%s", tc.scope)
		require.Len(t, window, tc.size, "scope=%s", tc.scope)
		assert.Equal(t, tc.first, window[0].Month, "scope=%s", tc.scope)
		assert.Equal(t, "Mar. 2024", window[len(window)-1].Month, "scope=%s", tc.scope)
	}
}

func TestWindowSeriesRejectsUnknownScope(t *testing.T) {
	_, err := WindowSeries(PadSeries(nil, "USD", anchor), domain.PeriodScope("week"))
	assert.ErrorIs(t, err, domain.ErrInvalidPeriodScope)
}

func TestScopeMonths(t *testing.T) {
	months, err := ScopeMonths(LastThirteenMonths(anchor), domain.PeriodScopeQuarter)
	require.NoError(t, err)

	assert.Len(t, months, 4)
	assert.Contains(t, months, "Jan. 2024")
	assert.NotContains(t, months, "Nov. 2023")
}

func TestBuildChartSeries(t *testing.T) {
	data := []domain.MonthlyAmount{
		{Month: "2024-02-01", AmountCents: 1250, Currency: "USD"},
		{Month: "2024-03-01", AmountCents: 750, Currency: "USD"},
	}
	window, err := WindowSeries(PadSeries(data, "USD", anchor), domain.PeriodScopeQuarter)
	require.NoError(t, err)

	series := BuildChartSeries(window, "USD", stubFormatter{})

	assert.Equal(t, "USD", series.Currency)
	assert.Equal(t, int64(2000), series.AmountSum)
	assert.Equal(t, "Dec. 2023", series.DateFrom)
	assert.Equal(t, "Mar. 2024", series.DateTo)
	require.Len(t, series.Points, 4)
	assert.Equal(t, "Feb. 2024: USD 1250", series.Points[2].TooltipLabel)
	assert.Equal(t, "Dec. 2023: USD 0", series.Points[0].TooltipLabel)
}

func TestBuildChartSeriesWithoutFormatter(t *testing.T) {
	series := BuildChartSeries([]domain.MonthlyAmount{{Month: "Mar. 2024", AmountCents: 42}}, "USD", nil)

	require.Len(t, series.Points, 1)
	assert.Equal(t, "Mar. 2024: 42", series.Points[0].TooltipLabel)
}
