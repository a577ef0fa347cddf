package engine

import (
	"time"

	"github.com/smallbiznis/billinginsights/internal/billinganalytics/domain"
)

// PadSeries aligns sparse monthly totals onto the 13-month window anchored on
// now. Missing months become zero records in currency. When several records
// fall into the same month the first one wins.
func PadSeries(data []domain.MonthlyAmount, currency string, now time.Time) []domain.MonthlyAmount {
	byMonth := make(map[string]domain.MonthlyAmount, len(data))
	for _, item := range data {
		label, ok := NormalizeMonthLabel(item.Month)
		if !ok {
			continue
		}
		if _, seen := byMonth[label]; seen {
			continue
		}
		item.Month = label
		byMonth[label] = item
	}

	labels := LastThirteenMonths(now)
	padded := make([]domain.MonthlyAmount, 0, len(labels))
	for _, label := range labels {
		if item, ok := byMonth[label]; ok {
			padded = append(padded, item)
			continue
		}
		padded = append(padded, domain.MonthlyAmount{
			Month:       label,
			AmountCents: 0,
			Currency:    currency,
		})
	}
	return padded
}
