package engine

import "github.com/smallbiznis/billinginsights/internal/billinganalytics/domain"

// ThresholdPercentages splits a progressive billing bar between the usage
// already past the last threshold and the remainder up to the next one.
// Results are not clamped; usage outside [last, next] yields values outside
// [0, 100].
func ThresholdPercentages(usage *domain.ThresholdUsage) domain.ThresholdPercentages {
	if usage == nil {
		return domain.ThresholdPercentages{}
	}

	total := valueOrZero(usage.TotalUsageAmountCents)
	last := valueOrZero(usage.LastThresholdAmountCents)
	next := valueOrZero(usage.NextThresholdAmountCents)

	// No next threshold, or a zero-width segment: the current segment is complete.
	if next == 0 || next == last {
		return domain.ThresholdPercentages{
			LastThresholdPercentage: 100,
			NextThresholdPercentage: 0,
		}
	}

	lastPct := float64(total-last) * 100 / float64(next-last)
	return domain.ThresholdPercentages{
		LastThresholdPercentage: lastPct,
		NextThresholdPercentage: 100 - lastPct,
	}
}

func valueOrZero(v *int64) int64 {
	if v == nil {
		return 0
	}
	return *v
}
