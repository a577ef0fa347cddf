package domain

import (
	"strings"
	"time"
)

// PeriodScope is the zoom level applied to a padded monthly series.
type PeriodScope string

const (
	PeriodScopeYear    PeriodScope = "year"
	PeriodScopeQuarter PeriodScope = "quarter"
	PeriodScopeMonth   PeriodScope = "month"
)

// WindowSize returns the number of trailing months shown for the scope.
func (s PeriodScope) WindowSize() (int, bool) {
	switch s {
	case PeriodScopeYear:
		return 13, true
	case PeriodScopeQuarter:
		return 4, true
	case PeriodScopeMonth:
		return 2, true
	default:
		return 0, false
	}
}

// ParsePeriodScope normalizes a raw scope value.
func ParsePeriodScope(raw string) (PeriodScope, error) {
	scope := PeriodScope(strings.ToLower(strings.TrimSpace(raw)))
	if _, ok := scope.WindowSize(); !ok {
		return "", ErrInvalidPeriodScope
	}
	return scope, nil
}

// RawMonthlyAmount is a monthly total as delivered by the query layer.
// Amounts are numeric strings.
type RawMonthlyAmount struct {
	Month       string  `json:"month"`
	AmountCents string  `json:"amount_cents"`
	Currency    *string `json:"currency"`
}

// MonthlyAmount is one bucket's monetary total for one calendar month.
type MonthlyAmount struct {
	Month       string `json:"month"`
	AmountCents int64  `json:"amount_cents"`
	Currency    string `json:"currency"`
}

// ChartPoint is a single display-ready value of a monthly series.
type ChartPoint struct {
	Month        string `json:"month"`
	Value        int64  `json:"value"`
	TooltipLabel string `json:"tooltip_label"`
}

// ChartSeries is a windowed monthly series ready for charting.
type ChartSeries struct {
	Currency  string       `json:"currency"`
	Points    []ChartPoint `json:"points"`
	AmountSum int64        `json:"amount_sum"`
	DateFrom  string       `json:"date_from"`
	DateTo    string       `json:"date_to"`
}

// RawUsageLineItem is a per-metric monthly usage amount from the query layer.
type RawUsageLineItem struct {
	Month       string `json:"month"`
	Code        string `json:"code"`
	AmountCents string `json:"amount_cents"`
}

// UsageLineItem is a single metric's contribution within a month.
type UsageLineItem struct {
	Month       string `json:"month"`
	Code        string `json:"code"`
	AmountCents int64  `json:"amount_cents"`
}

// UsagePair is one bucketed usage line.
type UsagePair struct {
	Key         string `json:"key"`
	AmountCents int64  `json:"amount_cents"`
}

// UsageBreakdown is the top-N bucketed usage with the Others overflow.
// Lines carry the true amounts, Bar the display amounts.
type UsageBreakdown struct {
	TotalAmountCents   int64       `json:"total_amount_cents"`
	Bar                []UsagePair `json:"bar"`
	Lines              []UsagePair `json:"lines"`
	HasNoDataToDisplay bool        `json:"has_no_data_to_display"`
}

// PaymentStatus is the payment state of an invoice.
type PaymentStatus string

const (
	PaymentStatusSucceeded PaymentStatus = "succeeded"
	PaymentStatusFailed    PaymentStatus = "failed"
	PaymentStatusPending   PaymentStatus = "pending"

	// PaymentStatusAll is the synthetic sum of every status.
	PaymentStatusAll PaymentStatus = "all"
)

// PaymentStatuses lists the real statuses in display order.
var PaymentStatuses = []PaymentStatus{
	PaymentStatusSucceeded,
	PaymentStatusFailed,
	PaymentStatusPending,
}

// RawInvoiceCollection is a per-month, per-status invoice aggregate from the query layer.
type RawInvoiceCollection struct {
	Month         string  `json:"month"`
	PaymentStatus string  `json:"payment_status"`
	InvoicesCount string  `json:"invoices_count"`
	AmountCents   string  `json:"amount_cents"`
	Currency      *string `json:"currency"`
}

// InvoiceCollection is the integer-typed form of RawInvoiceCollection.
type InvoiceCollection struct {
	Month         string        `json:"month"`
	PaymentStatus PaymentStatus `json:"payment_status"`
	InvoicesCount int64         `json:"invoices_count"`
	AmountCents   int64         `json:"amount_cents"`
	Currency      string        `json:"currency"`
}

// StatusTotals holds invoice count and amount for one status.
type StatusTotals struct {
	InvoicesCount int64 `json:"invoices_count"`
	AmountCents   int64 `json:"amount_cents"`
}

// InvoiceStatusTotals maps each status, plus "all", to its totals.
type InvoiceStatusTotals map[PaymentStatus]StatusTotals

// StatusBarSegment is one segment of the stacked invoice status bar.
type StatusBarSegment struct {
	Status      PaymentStatus `json:"status"`
	AmountCents int64         `json:"amount_cents"`
}

// InvoiceCollectionsResult is the aggregated invoice collection view.
type InvoiceCollectionsResult struct {
	Currency         string              `json:"currency"`
	BarGraphData     []StatusBarSegment  `json:"bar_graph_data"`
	LineData         InvoiceStatusTotals `json:"line_data"`
	DateFrom         string              `json:"date_from"`
	DateTo           string              `json:"date_to"`
	TotalAmountCents int64               `json:"total_amount_cents"`
}

// RawThresholdUsage is a lifetime usage snapshot as delivered by the query layer.
type RawThresholdUsage struct {
	LastThresholdAmountCents *string    `json:"last_threshold_amount_cents"`
	NextThresholdAmountCents *string    `json:"next_threshold_amount_cents"`
	TotalUsageAmountCents    *string    `json:"total_usage_amount_cents"`
	TotalUsageFromDatetime   *time.Time `json:"total_usage_from_datetime"`
	TotalUsageToDatetime     *time.Time `json:"total_usage_to_datetime"`
}

// ThresholdUsage is a subscription's progress between two billing thresholds.
type ThresholdUsage struct {
	LastThresholdAmountCents *int64     `json:"last_threshold_amount_cents"`
	NextThresholdAmountCents *int64     `json:"next_threshold_amount_cents"`
	TotalUsageAmountCents    *int64     `json:"total_usage_amount_cents"`
	TotalUsageFromDatetime   *time.Time `json:"total_usage_from_datetime"`
	TotalUsageToDatetime     *time.Time `json:"total_usage_to_datetime"`
}

// ThresholdPercentages is the two-segment split of a threshold progress bar.
// Values are not clamped to [0, 100].
type ThresholdPercentages struct {
	LastThresholdPercentage float64 `json:"last_threshold_percentage"`
	NextThresholdPercentage float64 `json:"next_threshold_percentage"`
}
