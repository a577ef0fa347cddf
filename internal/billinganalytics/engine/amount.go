package engine

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/smallbiznis/billinginsights/internal/billinganalytics/domain"
)

// ParseAmountCents is the single coercion point for numeric-string amounts.
// An empty value is zero; fractional cents are rounded half away from zero.
func ParseAmountCents(raw string) (int64, error) {
	value := strings.TrimSpace(raw)
	if value == "" {
		return 0, nil
	}
	parsed, err := decimal.NewFromString(value)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", domain.ErrInvalidAmount, raw)
	}
	rounded := parsed.Round(0)
	if !rounded.BigInt().IsInt64() {
		return 0, fmt.Errorf("%w: %q out of range", domain.ErrInvalidAmount, raw)
	}
	return rounded.IntPart(), nil
}

func parseOptionalAmount(raw *string) (*int64, error) {
	if raw == nil {
		return nil, nil
	}
	value, err := ParseAmountCents(*raw)
	if err != nil {
		return nil, err
	}
	return &value, nil
}

// CoerceMonthlyAmounts converts wire monthly totals to integer cents.
// Records without a currency inherit fallbackCurrency.
func CoerceMonthlyAmounts(raw []domain.RawMonthlyAmount, fallbackCurrency string) ([]domain.MonthlyAmount, error) {
	out := make([]domain.MonthlyAmount, 0, len(raw))
	for _, item := range raw {
		amount, err := ParseAmountCents(item.AmountCents)
		if err != nil {
			return nil, err
		}
		out = append(out, domain.MonthlyAmount{
			Month:       item.Month,
			AmountCents: amount,
			Currency:    currencyOr(item.Currency, fallbackCurrency),
		})
	}
	return out, nil
}

// CoerceInvoiceCollections converts wire invoice aggregates to integers.
func CoerceInvoiceCollections(raw []domain.RawInvoiceCollection, fallbackCurrency string) ([]domain.InvoiceCollection, error) {
	out := make([]domain.InvoiceCollection, 0, len(raw))
	for _, item := range raw {
		count, err := ParseAmountCents(item.InvoicesCount)
		if err != nil {
			return nil, err
		}
		amount, err := ParseAmountCents(item.AmountCents)
		if err != nil {
			return nil, err
		}
		out = append(out, domain.InvoiceCollection{
			Month:         item.Month,
			PaymentStatus: domain.PaymentStatus(strings.ToLower(strings.TrimSpace(item.PaymentStatus))),
			InvoicesCount: count,
			AmountCents:   amount,
			Currency:      currencyOr(item.Currency, fallbackCurrency),
		})
	}
	return out, nil
}

// CoerceUsageLineItems converts wire usage rows to integer cents.
func CoerceUsageLineItems(raw []domain.RawUsageLineItem) ([]domain.UsageLineItem, error) {
	out := make([]domain.UsageLineItem, 0, len(raw))
	for _, item := range raw {
		amount, err := ParseAmountCents(item.AmountCents)
		if err != nil {
			return nil, err
		}
		out = append(out, domain.UsageLineItem{
			Month:       item.Month,
			Code:        item.Code,
			AmountCents: amount,
		})
	}
	return out, nil
}

// CoerceThresholdUsage converts a wire lifetime usage snapshot. A nil
// snapshot stays nil.
func CoerceThresholdUsage(raw *domain.RawThresholdUsage) (*domain.ThresholdUsage, error) {
	if raw == nil {
		return nil, nil
	}
	last, err := parseOptionalAmount(raw.LastThresholdAmountCents)
	if err != nil {
		return nil, err
	}
	next, err := parseOptionalAmount(raw.NextThresholdAmountCents)
	if err != nil {
		return nil, err
	}
	total, err := parseOptionalAmount(raw.TotalUsageAmountCents)
	if err != nil {
		return nil, err
	}
	return &domain.ThresholdUsage{
		LastThresholdAmountCents: last,
		NextThresholdAmountCents: next,
		TotalUsageAmountCents:    total,
		TotalUsageFromDatetime:   raw.TotalUsageFromDatetime,
		TotalUsageToDatetime:     raw.TotalUsageToDatetime,
	}, nil
}

func currencyOr(value *string, fallback string) string {
	if value == nil {
		return fallback
	}
	trimmed := strings.ToUpper(strings.TrimSpace(*value))
	if trimmed == "" {
		return fallback
	}
	return trimmed
}
