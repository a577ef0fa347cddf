package engine

import (
	"testing"

	"github.com/samber/lo"
	"github.com/smallbiznis/billinginsights/internal/billinganalytics/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseAmountCents(t *testing.T) {
	cases := []struct {
		raw  string
		want int64
	}{
		{raw: "", want: 0},
		{raw: "0", want: 0},
		{raw: "45100", want: 45100},
		{raw: " 1200 ", want: 1200},
		{raw: "12.5", want: 13},
		{raw: "12.4", want: 12},
		{raw: "1e3", want: 1000},
		{raw: "-250", want: -250},
		{raw: "9007199254740993", want: 9007199254740993},
	}

	for _, tc := range cases {
		got, err := ParseAmountCents(tc.raw)
		require.NoError(t, err, "raw=%q", tc.raw)
		assert.Equal(t, tc.want, got, "raw=%q", tc.raw)
	}
}

func TestParseAmountCentsRejectsGarbage(t *testing.T) {
	for _, raw := range []string{"abc", "12,00", "99999999999999999999999"} {
		_, err := ParseAmountCents(raw)
		assert.ErrorIs(t, err, domain.ErrInvalidAmount, "raw=%q", raw)
	}
}

func TestCoerceMonthlyAmounts(t *testing.T) {
	raw := []domain.RawMonthlyAmount{
		{Month: "2024-01-01", AmountCents: "1500", Currency: lo.ToPtr("eur")},
		{Month: "2024-02-01", AmountCents: "200", Currency: nil},
		{Month: "2024-03-01", AmountCents: "7", Currency: lo.ToPtr("  ")},
	}

	got, err := CoerceMonthlyAmounts(raw, "USD")
	require.NoError(t, err)
	assert.Equal(t, []domain.MonthlyAmount{
		{Month: "2024-01-01", AmountCents: 1500, Currency: "EUR"},
		{Month: "2024-02-01", AmountCents: 200, Currency: "USD"},
		{Month: "2024-03-01", AmountCents: 7, Currency: "USD"},
	}, got)

	_, err = CoerceMonthlyAmounts([]domain.RawMonthlyAmount{{Month: "2024-01-01", AmountCents: "NaN?"}}, "USD")
	assert.ErrorIs(t, err, domain.ErrInvalidAmount)
}

func TestCoerceInvoiceCollections(t *testing.T) {
	got, err := CoerceInvoiceCollections([]domain.RawInvoiceCollection{
		{Month: "2024-01-01", PaymentStatus: " Failed ", InvoicesCount: "3", AmountCents: "900"},
	}, "USD")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, domain.PaymentStatusFailed, got[0].PaymentStatus)
	assert.Equal(t, int64(3), got[0].InvoicesCount)
	assert.Equal(t, int64(900), got[0].AmountCents)
	assert.Equal(t, "USD", got[0].Currency)

	_, err = CoerceInvoiceCollections([]domain.RawInvoiceCollection{
		{Month: "2024-01-01", PaymentStatus: "pending", InvoicesCount: "two", AmountCents: "1"},
	}, "USD")
	assert.ErrorIs(t, err, domain.ErrInvalidAmount)
}

func TestCoerceThresholdUsage(t *testing.T) {
	usage, err := CoerceThresholdUsage(nil)
	require.NoError(t, err)
	assert.Nil(t, usage)

	usage, err = CoerceThresholdUsage(&domain.RawThresholdUsage{
		LastThresholdAmountCents: lo.ToPtr("1000"),
		TotalUsageAmountCents:    lo.ToPtr("1500"),
	})
	require.NoError(t, err)
	require.NotNil(t, usage)
	assert.Equal(t, int64(1000), *usage.LastThresholdAmountCents)
	assert.Nil(t, usage.NextThresholdAmountCents)
	assert.Equal(t, int64(1500), *usage.TotalUsageAmountCents)

	_, err = CoerceThresholdUsage(&domain.RawThresholdUsage{NextThresholdAmountCents: lo.ToPtr("x")})
	assert.ErrorIs(t, err, domain.ErrInvalidAmount)
}
