package engine

import (
	"testing"

	"github.com/smallbiznis/billinginsights/internal/billinganalytics/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func usageItems(pairs ...any) []domain.UsageLineItem {
	items := make([]domain.UsageLineItem, 0, len(pairs)/2)
	for i := 0; i+1 < len(pairs); i += 2 {
		items = append(items, domain.UsageLineItem{
			Month:       "Mar. 2024",
			Code:        pairs[i].(string),
			AmountCents: int64(pairs[i+1].(int)),
		})
	}
	return items
}

func TestBucketTopNFoldsOverflowIntoOthers(t *testing.T) {
	items := usageItems(
		"api_calls", 45100,
		"storage", 44400,
		"compute", 43200,
		"bandwidth", 42800,
		"user_seats", 42300,
		"gb", 40020,
	)

	got := BucketTopN(items, DefaultTopN)

	require.Len(t, got.Lines, DefaultTopN)
	assert.Equal(t, []domain.UsagePair{
		{Key: "api_calls", AmountCents: 45100},
		{Key: "storage", AmountCents: 44400},
		{Key: "compute", AmountCents: 43200},
		{Key: "bandwidth", AmountCents: 42800},
		{Key: OthersKey, AmountCents: 82320},
	}, got.Lines)
	assert.Equal(t, int64(257820), got.TotalAmountCents)
	assert.Equal(t, got.Lines, got.Bar)
	assert.False(t, got.HasNoDataToDisplay)
}

func TestBucketTopNWithinCapHasNoOthers(t *testing.T) {
	items := usageItems(
		"storage", 200,
		"api_calls", 500,
		"compute", 300,
		"bandwidth", 100,
		"user_seats", 400,
	)

	got := BucketTopN(items, DefaultTopN)

	require.Len(t, got.Lines, 5)
	assert.Equal(t, "api_calls", got.Lines[0].Key)
	assert.Equal(t, "bandwidth", got.Lines[4].Key)
	for _, line := range got.Lines {
		assert.NotEqual(t, OthersKey, line.Key)
	}
	assert.Equal(t, int64(1500), got.TotalAmountCents)
}

func TestBucketTopNConservesTotal(t *testing.T) {
	items := usageItems(
		"a", 10, "b", 20, "c", 30, "d", 40, "e", 50,
		"f", 60, "g", 70, "a", 5, "h", 1,
	)
	var input int64
	for _, item := range items {
		input += item.AmountCents
	}

	for _, k := range []int{1, 2, 3, 5, 8, 20} {
		got := BucketTopN(items, k)
		assert.LessOrEqual(t, len(got.Lines), k, "k=%d", k)
		assert.Equal(t, input, got.TotalAmountCents, "k=%d", k)

		var lines int64
		for _, line := range got.Lines {
			lines += line.AmountCents
		}
		assert.Equal(t, input, lines, "k=%d", k)
	}
}

func TestBucketTopNGroupsDuplicateCodes(t *testing.T) {
	got := BucketTopN(usageItems("storage", 100, "compute", 150, "storage", 100), DefaultTopN)

	assert.Equal(t, []domain.UsagePair{
		{Key: "storage", AmountCents: 200},
		{Key: "compute", AmountCents: 150},
	}, got.Lines)
}

func TestBucketTopNTiesKeepInputOrder(t *testing.T) {
	got := BucketTopN(usageItems("b", 10, "a", 10, "c", 10), DefaultTopN)

	require.Len(t, got.Lines, 3)
	assert.Equal(t, "b", got.Lines[0].Key)
	assert.Equal(t, "a", got.Lines[1].Key)
	assert.Equal(t, "c", got.Lines[2].Key)
}

func TestBucketTopNZeroTotalShowsUnitBars(t *testing.T) {
	got := BucketTopN(usageItems("storage", 0, "compute", 0), DefaultTopN)

	assert.Zero(t, got.TotalAmountCents)
	assert.False(t, got.HasNoDataToDisplay)
	for _, line := range got.Lines {
		assert.Zero(t, line.AmountCents)
	}
	require.Len(t, got.Bar, 2)
	for _, bar := range got.Bar {
		assert.Equal(t, int64(1), bar.AmountCents)
	}
}

func TestBucketTopNNoData(t *testing.T) {
	got := BucketTopN(nil, DefaultTopN)

	assert.True(t, got.HasNoDataToDisplay)
	assert.Zero(t, got.TotalAmountCents)
	assert.Empty(t, got.Lines)
	assert.NotNil(t, got.Lines)
	assert.Equal(t, []domain.UsagePair{{Key: NoDataKey, AmountCents: 1}}, got.Bar)
}

func TestBucketTopNNonPositiveCapUsesDefault(t *testing.T) {
	items := usageItems("a", 6, "b", 5, "c", 4, "d", 3, "e", 2, "f", 1)

	got := BucketTopN(items, 0)

	require.Len(t, got.Lines, DefaultTopN)
	assert.Equal(t, domain.UsagePair{Key: OthersKey, AmountCents: 3}, got.Lines[4])
}
