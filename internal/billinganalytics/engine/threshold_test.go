package engine

import (
	"testing"

	"github.com/samber/lo"
	"github.com/smallbiznis/billinginsights/internal/billinganalytics/domain"
	"github.com/stretchr/testify/assert"
)

func TestThresholdPercentages(t *testing.T) {
	cases := []struct {
		name  string
		usage *domain.ThresholdUsage
		last  float64
		next  float64
	}{
		{name: "nil usage", usage: nil, last: 0, next: 0},
		{
			name: "midpoint",
			usage: &domain.ThresholdUsage{
				LastThresholdAmountCents: lo.ToPtr(int64(1000)),
				NextThresholdAmountCents: lo.ToPtr(int64(3000)),
				TotalUsageAmountCents:    lo.ToPtr(int64(2000)),
			},
			last: 50, next: 50,
		},
		{
			name: "no next threshold",
			usage: &domain.ThresholdUsage{
				LastThresholdAmountCents: lo.ToPtr(int64(1000)),
				NextThresholdAmountCents: lo.ToPtr(int64(0)),
				TotalUsageAmountCents:    lo.ToPtr(int64(5000)),
			},
			last: 100, next: 0,
		},
		{
			name: "missing next threshold",
			usage: &domain.ThresholdUsage{
				TotalUsageAmountCents: lo.ToPtr(int64(5000)),
			},
			last: 100, next: 0,
		},
		{
			name: "zero width segment",
			usage: &domain.ThresholdUsage{
				LastThresholdAmountCents: lo.ToPtr(int64(2000)),
				NextThresholdAmountCents: lo.ToPtr(int64(2000)),
				TotalUsageAmountCents:    lo.ToPtr(int64(2000)),
			},
			last: 100, next: 0,
		},
		{
			name: "first segment",
			usage: &domain.ThresholdUsage{
				NextThresholdAmountCents: lo.ToPtr(int64(4000)),
				TotalUsageAmountCents:    lo.ToPtr(int64(1000)),
			},
			last: 25, next: 75,
		},
		{
			name: "overshoot is not clamped",
			usage: &domain.ThresholdUsage{
				LastThresholdAmountCents: lo.ToPtr(int64(0)),
				NextThresholdAmountCents: lo.ToPtr(int64(1000)),
				TotalUsageAmountCents:    lo.ToPtr(int64(1500)),
			},
			last: 150, next: -50,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := ThresholdPercentages(tc.usage)
			assert.InDelta(t, tc.last, got.LastThresholdPercentage, 1e-9)
			assert.InDelta(t, tc.next, got.NextThresholdPercentage, 1e-9)
		})
	}
}
