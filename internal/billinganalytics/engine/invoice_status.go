package engine

import (
	"time"

	"github.com/smallbiznis/billinginsights/internal/billinganalytics/domain"
)

type statusKey struct {
	status domain.PaymentStatus
	month  string
}

// AggregateInvoiceCollections pads and windows each payment status
// independently, then reduces the windows to per-status totals.
//
// The header total is the amount at risk: failed plus pending, succeeded
// excluded. When every status sums to zero the stacked bar shows 1 per
// segment while the reported totals stay zero.
func AggregateInvoiceCollections(
	data []domain.InvoiceCollection,
	currency string,
	scope domain.PeriodScope,
	now time.Time,
) (domain.InvoiceCollectionsResult, error) {
	size, ok := scope.WindowSize()
	if !ok {
		return domain.InvoiceCollectionsResult{}, domain.ErrInvalidPeriodScope
	}

	byKey := make(map[statusKey]domain.InvoiceCollection, len(data))
	for _, item := range data {
		label, ok := NormalizeMonthLabel(item.Month)
		if !ok {
			continue
		}
		key := statusKey{status: item.PaymentStatus, month: label}
		if _, seen := byKey[key]; seen {
			continue
		}
		byKey[key] = item
	}

	labels := LastThirteenMonths(now)
	firstVisible := len(labels) - size

	lineData := make(domain.InvoiceStatusTotals, len(domain.PaymentStatuses)+1)
	var all domain.StatusTotals
	var dateFrom, dateTo string

	for _, status := range domain.PaymentStatuses {
		var totals domain.StatusTotals
		for i, label := range labels {
			if i < firstVisible {
				continue
			}
			if item, ok := byKey[statusKey{status: status, month: label}]; ok {
				totals.InvoicesCount += item.InvoicesCount
				totals.AmountCents += item.AmountCents
			}
			if status == domain.PaymentStatusSucceeded {
				if dateFrom == "" {
					dateFrom = label
				}
				dateTo = label
			}
		}
		lineData[status] = totals
		all.InvoicesCount += totals.InvoicesCount
		all.AmountCents += totals.AmountCents
	}
	lineData[domain.PaymentStatusAll] = all

	bar := make([]domain.StatusBarSegment, 0, len(domain.PaymentStatuses))
	for _, status := range domain.PaymentStatuses {
		amount := lineData[status].AmountCents
		if all.AmountCents == 0 {
			amount = 1
		}
		bar = append(bar, domain.StatusBarSegment{Status: status, AmountCents: amount})
	}

	return domain.InvoiceCollectionsResult{
		Currency:         currency,
		BarGraphData:     bar,
		LineData:         lineData,
		DateFrom:         dateFrom,
		DateTo:           dateTo,
		TotalAmountCents: lineData[domain.PaymentStatusFailed].AmountCents + lineData[domain.PaymentStatusPending].AmountCents,
	}, nil
}
