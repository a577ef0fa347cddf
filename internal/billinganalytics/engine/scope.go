package engine

import (
	"fmt"

	"github.com/samber/lo"
	"github.com/smallbiznis/billinginsights/internal/billinganalytics/domain"
	"github.com/smallbiznis/billinginsights/internal/currency"
)

// WindowSeries returns the trailing sub-slice of a padded series for scope.
// The input is expected to hold MonthWindowSize entries; it is never
// reordered or re-padded.
func WindowSeries[T any](series []T, scope domain.PeriodScope) ([]T, error) {
	size, ok := scope.WindowSize()
	if !ok {
		return nil, fmt.Errorf("%w: %q", domain.ErrInvalidPeriodScope, scope)
	}
	drop := len(series) - size
	if drop < 0 {
		drop = 0
	}
	return series[drop:], nil
}

// ScopeMonths returns the month labels visible under scope for the window
// anchored on labels.
func ScopeMonths(labels []string, scope domain.PeriodScope) (map[string]struct{}, error) {
	window, err := WindowSeries(labels, scope)
	if err != nil {
		return nil, err
	}
	return lo.SliceToMap(window, func(label string) (string, struct{}) {
		return label, struct{}{}
	}), nil
}

// BuildChartSeries derives the display values of a windowed series.
func BuildChartSeries(window []domain.MonthlyAmount, currencyCode string, formatter currency.Formatter) domain.ChartSeries {
	points := lo.Map(window, func(item domain.MonthlyAmount, _ int) domain.ChartPoint {
		code := item.Currency
		if code == "" {
			code = currencyCode
		}
		return domain.ChartPoint{
			Month:        item.Month,
			Value:        item.AmountCents,
			TooltipLabel: tooltipLabel(item.Month, item.AmountCents, code, formatter),
		}
	})

	series := domain.ChartSeries{
		Currency: currencyCode,
		Points:   points,
		AmountSum: lo.SumBy(points, func(p domain.ChartPoint) int64 {
			return p.Value
		}),
	}
	if len(points) > 0 {
		series.DateFrom = points[0].Month
		series.DateTo = points[len(points)-1].Month
	}
	return series
}

func tooltipLabel(month string, amountCents int64, currencyCode string, formatter currency.Formatter) string {
	if formatter == nil {
		return fmt.Sprintf("%s: %d", month, amountCents)
	}
	return month + ": " + formatter.Format(amountCents, currencyCode)
}
