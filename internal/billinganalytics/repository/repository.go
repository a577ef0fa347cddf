package repository

import (
	"cmp"
	"context"
	"fmt"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/samber/lo"
	"github.com/shopspring/decimal"
	"github.com/smallbiznis/billinginsights/internal/billinganalytics/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const (
	invoiceStatusFinalized = "finalized"
	monthKeyLayout         = "2006-01-02"
)

type Params struct {
	fx.In

	DB  *gorm.DB
	Log *zap.Logger
}

// Repository reads the billing tables behind the analytics charts. Monthly
// grouping happens in Go so the SQL stays portable across Postgres, MySQL
// and SQLite.
type Repository struct {
	db  *gorm.DB
	log *zap.Logger
}

func NewRepository(p Params) domain.Repository {
	return &Repository{
		db:  p.DB,
		log: p.Log.Named("billinganalytics.repository"),
	}
}

type amountRow struct {
	Period time.Time
	Amount string
}

type collectionRow struct {
	Period        time.Time
	PaymentStatus string
	Amount        string
}

type usageRow struct {
	Period     time.Time
	MetricCode string
	Amount     string
}

type lifetimeUsageRow struct {
	LastThresholdAmount *string
	NextThresholdAmount *string
	TotalUsageAmount    *string
	TotalUsageFrom      *time.Time
	TotalUsageTo        *time.Time
}

func (r *Repository) ListRevenueByMonth(ctx context.Context, q domain.RangeQuery) ([]domain.RawMonthlyAmount, error) {
	var rows []amountRow
	if err := r.db.WithContext(ctx).Raw(
		`
		SELECT issued_at AS period, COALESCE(total_amount, 0) AS amount
		FROM invoices
		WHERE org_id = ?
			AND currency = ?
			AND status = ?
			AND voided_at IS NULL
			AND issued_at >= ?
			AND issued_at < ?
		`,
		q.OrgID,
		q.Currency,
		invoiceStatusFinalized,
		q.From.UTC(),
		q.To.UTC(),
	).Scan(&rows).Error; err != nil {
		return nil, fmt.Errorf("list revenue: %w", err)
	}
	return sumByMonth(rows, q.Currency)
}

func (r *Repository) ListMRRByMonth(ctx context.Context, q domain.RangeQuery) ([]domain.RawMonthlyAmount, error) {
	var rows []amountRow
	if err := r.db.WithContext(ctx).Raw(
		`
		SELECT period_start AS period, COALESCE(mrr, 0) AS amount
		FROM subscription_mrr_snapshots
		WHERE org_id = ?
			AND currency = ?
			AND period_start >= ?
			AND period_start < ?
		`,
		q.OrgID,
		q.Currency,
		q.From.UTC(),
		q.To.UTC(),
	).Scan(&rows).Error; err != nil {
		return nil, fmt.Errorf("list mrr: %w", err)
	}
	return sumByMonth(rows, q.Currency)
}

func (r *Repository) ListInvoiceCollectionsByMonth(ctx context.Context, q domain.RangeQuery) ([]domain.RawInvoiceCollection, error) {
	var rows []collectionRow
	if err := r.db.WithContext(ctx).Raw(
		`
		SELECT issued_at AS period, payment_status, COALESCE(total_amount, 0) AS amount
		FROM invoices
		WHERE org_id = ?
			AND currency = ?
			AND status = ?
			AND voided_at IS NULL
			AND issued_at >= ?
			AND issued_at < ?
		`,
		q.OrgID,
		q.Currency,
		invoiceStatusFinalized,
		q.From.UTC(),
		q.To.UTC(),
	).Scan(&rows).Error; err != nil {
		return nil, fmt.Errorf("list invoice collections: %w", err)
	}

	type key struct {
		month  time.Time
		status string
	}
	type totals struct {
		count  int64
		amount decimal.Decimal
	}

	grouped := make(map[key]totals)
	for _, row := range rows {
		amount, err := parseDecimal(row.Amount)
		if err != nil {
			return nil, err
		}
		k := key{month: monthStart(row.Period), status: strings.ToLower(strings.TrimSpace(row.PaymentStatus))}
		t := grouped[k]
		t.count++
		t.amount = t.amount.Add(amount)
		grouped[k] = t
	}

	keys := lo.Keys(grouped)
	slices.SortFunc(keys, func(a, b key) int {
		if c := a.month.Compare(b.month); c != 0 {
			return c
		}
		return cmp.Compare(a.status, b.status)
	})

	currency := q.Currency
	return lo.Map(keys, func(k key, _ int) domain.RawInvoiceCollection {
		t := grouped[k]
		return domain.RawInvoiceCollection{
			Month:         k.month.Format(monthKeyLayout),
			PaymentStatus: k.status,
			InvoicesCount: strconv.FormatInt(t.count, 10),
			AmountCents:   t.amount.String(),
			Currency:      &currency,
		}
	}), nil
}

func (r *Repository) ListUsageByMetric(ctx context.Context, q domain.RangeQuery) ([]domain.RawUsageLineItem, error) {
	query := `
		SELECT period_start AS period, metric_code, COALESCE(amount, 0) AS amount
		FROM usage_charges
		WHERE org_id = ?
			AND currency = ?
			AND period_start >= ?
			AND period_start < ?
		`
	args := []any{q.OrgID, q.Currency, q.From.UTC(), q.To.UTC()}
	if q.CustomerID != nil {
		query += " AND customer_id = ?"
		args = append(args, *q.CustomerID)
	}

	var rows []usageRow
	if err := r.db.WithContext(ctx).Raw(query, args...).Scan(&rows).Error; err != nil {
		return nil, fmt.Errorf("list usage: %w", err)
	}

	type key struct {
		month time.Time
		code  string
	}
	grouped := make(map[key]decimal.Decimal)
	for _, row := range rows {
		amount, err := parseDecimal(row.Amount)
		if err != nil {
			return nil, err
		}
		k := key{month: monthStart(row.Period), code: strings.TrimSpace(row.MetricCode)}
		grouped[k] = grouped[k].Add(amount)
	}

	keys := lo.Keys(grouped)
	slices.SortFunc(keys, func(a, b key) int {
		if c := a.month.Compare(b.month); c != 0 {
			return c
		}
		return cmp.Compare(a.code, b.code)
	})

	return lo.Map(keys, func(k key, _ int) domain.RawUsageLineItem {
		return domain.RawUsageLineItem{
			Month:       k.month.Format(monthKeyLayout),
			Code:        k.code,
			AmountCents: grouped[k].String(),
		}
	}), nil
}

// GetLifetimeUsage returns the most recent snapshot for the customer, or
// domain.ErrNotFound.
func (r *Repository) GetLifetimeUsage(ctx context.Context, orgID, customerID snowflake.ID, subscriptionID *snowflake.ID) (*domain.RawThresholdUsage, error) {
	query := `
		SELECT last_threshold_amount, next_threshold_amount, total_usage_amount,
			total_usage_from, total_usage_to
		FROM lifetime_usages
		WHERE org_id = ?
			AND customer_id = ?
		`
	args := []any{orgID, customerID}
	if subscriptionID != nil {
		query += " AND subscription_id = ?"
		args = append(args, *subscriptionID)
	}
	query += " ORDER BY updated_at DESC LIMIT 1"

	var rows []lifetimeUsageRow
	if err := r.db.WithContext(ctx).Raw(query, args...).Scan(&rows).Error; err != nil {
		return nil, fmt.Errorf("get lifetime usage: %w", err)
	}
	if len(rows) == 0 {
		return nil, domain.ErrNotFound
	}

	row := rows[0]
	return &domain.RawThresholdUsage{
		LastThresholdAmountCents: row.LastThresholdAmount,
		NextThresholdAmountCents: row.NextThresholdAmount,
		TotalUsageAmountCents:    row.TotalUsageAmount,
		TotalUsageFromDatetime:   utcPtr(row.TotalUsageFrom),
		TotalUsageToDatetime:     utcPtr(row.TotalUsageTo),
	}, nil
}

func sumByMonth(rows []amountRow, currency string) ([]domain.RawMonthlyAmount, error) {
	grouped := make(map[time.Time]decimal.Decimal)
	for _, row := range rows {
		amount, err := parseDecimal(row.Amount)
		if err != nil {
			return nil, err
		}
		month := monthStart(row.Period)
		grouped[month] = grouped[month].Add(amount)
	}

	months := lo.Keys(grouped)
	slices.SortFunc(months, func(a, b time.Time) int { return a.Compare(b) })

	return lo.Map(months, func(month time.Time, _ int) domain.RawMonthlyAmount {
		return domain.RawMonthlyAmount{
			Month:       month.Format(monthKeyLayout),
			AmountCents: grouped[month].String(),
			Currency:    &currency,
		}
	}), nil
}

func parseDecimal(raw string) (decimal.Decimal, error) {
	value := strings.TrimSpace(raw)
	if value == "" {
		return decimal.Zero, nil
	}
	parsed, err := decimal.NewFromString(value)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: column value %q", domain.ErrInvalidAmount, raw)
	}
	return parsed, nil
}

func monthStart(value time.Time) time.Time {
	value = value.UTC()
	return time.Date(value.Year(), value.Month(), 1, 0, 0, 0, 0, time.UTC)
}

func utcPtr(value *time.Time) *time.Time {
	if value == nil {
		return nil
	}
	return lo.ToPtr(value.UTC())
}
