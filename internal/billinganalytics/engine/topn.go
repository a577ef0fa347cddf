package engine

import (
	"cmp"
	"slices"

	"github.com/samber/lo"
	"github.com/smallbiznis/billinginsights/internal/billinganalytics/domain"
)

const (
	// DefaultTopN is the number of usage lines displayed, Others included.
	DefaultTopN = 5

	// OthersKey names the overflow bucket.
	OthersKey = "Others"

	// NoDataKey is the placeholder bar key used when there is no usage.
	NoDataKey = "1"
)

// BucketTopN groups usage by code, sorts descending and folds everything past
// the first k-1 codes into a trailing Others bucket when more than k codes
// exist. A zero total keeps its true value but shows every bar segment as 1.
func BucketTopN(items []domain.UsageLineItem, k int) domain.UsageBreakdown {
	if len(items) == 0 {
		return domain.UsageBreakdown{
			TotalAmountCents:   0,
			Bar:                []domain.UsagePair{{Key: NoDataKey, AmountCents: 1}},
			Lines:              []domain.UsagePair{},
			HasNoDataToDisplay: true,
		}
	}
	if k <= 0 {
		k = DefaultTopN
	}

	lines := groupByCode(items)
	slices.SortStableFunc(lines, func(a, b domain.UsagePair) int {
		return cmp.Compare(b.AmountCents, a.AmountCents)
	})

	if len(lines) > k {
		keep := k - 1
		others := domain.UsagePair{
			Key:         OthersKey,
			AmountCents: sumPairs(lines[keep:]),
		}
		lines = append(lines[:keep:keep], others)
	}

	total := sumPairs(lines)
	bar := slices.Clone(lines)
	if total == 0 {
		bar = lo.Map(bar, func(p domain.UsagePair, _ int) domain.UsagePair {
			return domain.UsagePair{Key: p.Key, AmountCents: 1}
		})
	}

	return domain.UsageBreakdown{
		TotalAmountCents:   total,
		Bar:                bar,
		Lines:              lines,
		HasNoDataToDisplay: false,
	}
}

func groupByCode(items []domain.UsageLineItem) []domain.UsagePair {
	index := make(map[string]int, len(items))
	pairs := make([]domain.UsagePair, 0, len(items))
	for _, item := range items {
		if i, ok := index[item.Code]; ok {
			pairs[i].AmountCents += item.AmountCents
			continue
		}
		index[item.Code] = len(pairs)
		pairs = append(pairs, domain.UsagePair{Key: item.Code, AmountCents: item.AmountCents})
	}
	return pairs
}

func sumPairs(pairs []domain.UsagePair) int64 {
	return lo.SumBy(pairs, func(p domain.UsagePair) int64 {
		return p.AmountCents
	})
}
