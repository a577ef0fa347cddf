package domain

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
)

type ChartRequest struct {
	Scope    PeriodScope
	Currency string
}

type ChartResponse struct {
	Scope  PeriodScope `json:"scope"`
	Series ChartSeries `json:"series"`
}

type InvoiceCollectionsResponse struct {
	Scope PeriodScope `json:"scope"`
	InvoiceCollectionsResult
}

type UsageRequest struct {
	Scope      PeriodScope
	Currency   string
	CustomerID string
	Top        int
}

type UsageBreakdownResponse struct {
	Scope    PeriodScope `json:"scope"`
	Currency string      `json:"currency"`
	DateFrom string      `json:"date_from"`
	DateTo   string      `json:"date_to"`
	UsageBreakdown
}

type LifetimeUsageRequest struct {
	CustomerID     string
	SubscriptionID string
}

type LifetimeUsageResponse struct {
	CustomerID     string          `json:"customer_id"`
	SubscriptionID string          `json:"subscription_id,omitempty"`
	Usage          *ThresholdUsage `json:"usage,omitempty"`
	ThresholdPercentages
}

// Service serves chart-ready billing analytics for the organization in context.
type Service interface {
	GetGrossRevenue(ctx context.Context, req ChartRequest) (ChartResponse, error)
	GetMRR(ctx context.Context, req ChartRequest) (ChartResponse, error)
	GetInvoiceCollections(ctx context.Context, req ChartRequest) (InvoiceCollectionsResponse, error)
	GetUsageBreakdown(ctx context.Context, req UsageRequest) (UsageBreakdownResponse, error)
	GetLifetimeUsage(ctx context.Context, req LifetimeUsageRequest) (LifetimeUsageResponse, error)
}

// RangeQuery bounds a repository read to one organization, currency and [From, To).
type RangeQuery struct {
	OrgID      snowflake.ID
	Currency   string
	From       time.Time
	To         time.Time
	CustomerID *snowflake.ID
}

// Repository fetches the sparse inputs of the aggregation engine.
type Repository interface {
	ListRevenueByMonth(ctx context.Context, q RangeQuery) ([]RawMonthlyAmount, error)
	ListMRRByMonth(ctx context.Context, q RangeQuery) ([]RawMonthlyAmount, error)
	ListInvoiceCollectionsByMonth(ctx context.Context, q RangeQuery) ([]RawInvoiceCollection, error)
	ListUsageByMetric(ctx context.Context, q RangeQuery) ([]RawUsageLineItem, error)
	GetLifetimeUsage(ctx context.Context, orgID, customerID snowflake.ID, subscriptionID *snowflake.ID) (*RawThresholdUsage, error)
}

var (
	ErrInvalidOrganization = errors.New("invalid_organization")
	ErrInvalidPeriodScope  = errors.New("invalid_period_scope")
	ErrInvalidAmount       = errors.New("invalid_amount")
	ErrInvalidCurrency     = errors.New("invalid_currency")
	ErrInvalidCustomer     = errors.New("invalid_customer")
	ErrInvalidSubscription = errors.New("invalid_subscription")
	ErrNotFound            = errors.New("not_found")
)
