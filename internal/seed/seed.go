package seed

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

const (
	demoCurrency  = "USD"
	demoMonths    = 13
	demoNodeID    = 1
	statusFinal   = "finalized"
	lifetimeLast  = 100000
	lifetimeNext  = 250000
	lifetimeTotal = 175000
)

var demoMetrics = []struct {
	Code string
	Base int64
}{
	{"api_calls", 45100},
	{"storage", 44400},
	{"compute", 43200},
	{"bandwidth", 42800},
	{"user_seats", 42300},
	{"gb", 40020},
}

type invoiceRow struct {
	ID            snowflake.ID
	OrgID         snowflake.ID
	CustomerID    snowflake.ID
	InvoiceNumber string
	Currency      string
	Status        string
	PaymentStatus string
	TotalAmount   decimal.Decimal
	IssuedAt      time.Time
}

func (invoiceRow) TableName() string { return "invoices" }

type mrrSnapshotRow struct {
	ID             snowflake.ID
	OrgID          snowflake.ID
	SubscriptionID snowflake.ID
	CustomerID     snowflake.ID
	Currency       string
	MRR            decimal.Decimal `gorm:"column:mrr"`
	PeriodStart    time.Time
}

func (mrrSnapshotRow) TableName() string { return "subscription_mrr_snapshots" }

type usageChargeRow struct {
	ID             snowflake.ID
	OrgID          snowflake.ID
	CustomerID     snowflake.ID
	SubscriptionID snowflake.ID
	MetricCode     string
	Currency       string
	Amount         decimal.Decimal
	PeriodStart    time.Time
}

func (usageChargeRow) TableName() string { return "usage_charges" }

type lifetimeUsageRow struct {
	ID                  snowflake.ID
	OrgID               snowflake.ID
	CustomerID          snowflake.ID
	SubscriptionID      snowflake.ID
	LastThresholdAmount decimal.Decimal
	NextThresholdAmount decimal.Decimal
	TotalUsageAmount    decimal.Decimal
	TotalUsageFrom      time.Time
	TotalUsageTo        time.Time
	UpdatedAt           time.Time
}

func (lifetimeUsageRow) TableName() string { return "lifetime_usages" }

// Result identifies the demo customer and subscription that were seeded.
type Result struct {
	CustomerID     snowflake.ID
	SubscriptionID snowflake.ID
	Skipped        bool
}

// EnsureDemoData seeds thirteen months of invoices, MRR snapshots, usage
// charges and one lifetime usage snapshot for orgID, ending at the month of
// now. It does nothing when the organization already has invoices.
func EnsureDemoData(ctx context.Context, db *gorm.DB, orgID snowflake.ID, now time.Time) (Result, error) {
	if db == nil {
		return Result{}, errors.New("seed database handle is required")
	}
	if orgID == 0 {
		return Result{}, errors.New("seed organization is required")
	}

	node, err := snowflake.NewNode(demoNodeID)
	if err != nil {
		return Result{}, err
	}

	var result Result
	err = db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing int64
		if err := tx.Model(&invoiceRow{}).Where("org_id = ?", orgID).Count(&existing).Error; err != nil {
			return err
		}
		if existing > 0 {
			result.Skipped = true
			return nil
		}

		customerID := node.Generate()
		subscriptionID := node.Generate()
		result.CustomerID = customerID
		result.SubscriptionID = subscriptionID

		current := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
		var (
			invoices  []invoiceRow
			snapshots []mrrSnapshotRow
			charges   []usageChargeRow
		)
		for i := demoMonths - 1; i >= 0; i-- {
			month := current.AddDate(0, -i, 0)
			step := int64(demoMonths - 1 - i)

			invoices = append(invoices,
				newInvoice(node, orgID, customerID, "succeeded", 100000+step*2500, month),
				newInvoice(node, orgID, customerID, "failed", 7500, month),
			)
			if i < 2 {
				invoices = append(invoices, newInvoice(node, orgID, customerID, "pending", 12000, month))
			}

			snapshots = append(snapshots, mrrSnapshotRow{
				ID:             node.Generate(),
				OrgID:          orgID,
				SubscriptionID: subscriptionID,
				CustomerID:     customerID,
				Currency:       demoCurrency,
				MRR:            decimal.NewFromInt(50000 + step*1000),
				PeriodStart:    month,
			})

			for _, metric := range demoMetrics {
				charges = append(charges, usageChargeRow{
					ID:             node.Generate(),
					OrgID:          orgID,
					CustomerID:     customerID,
					SubscriptionID: subscriptionID,
					MetricCode:     metric.Code,
					Currency:       demoCurrency,
					Amount:         decimal.NewFromInt(metric.Base / demoMonths),
					PeriodStart:    month,
				})
			}
		}

		if err := tx.Create(&invoices).Error; err != nil {
			return err
		}
		if err := tx.Create(&snapshots).Error; err != nil {
			return err
		}
		if err := tx.Create(&charges).Error; err != nil {
			return err
		}

		lifetime := lifetimeUsageRow{
			ID:                  node.Generate(),
			OrgID:               orgID,
			CustomerID:          customerID,
			SubscriptionID:      subscriptionID,
			LastThresholdAmount: decimal.NewFromInt(lifetimeLast),
			NextThresholdAmount: decimal.NewFromInt(lifetimeNext),
			TotalUsageAmount:    decimal.NewFromInt(lifetimeTotal),
			TotalUsageFrom:      current.AddDate(0, -(demoMonths - 1), 0),
			TotalUsageTo:        now.UTC(),
			UpdatedAt:           now.UTC(),
		}
		return tx.Create(&lifetime).Error
	})
	if err != nil {
		return Result{}, err
	}
	return result, nil
}

func newInvoice(node *snowflake.Node, orgID, customerID snowflake.ID, paymentStatus string, amount int64, month time.Time) invoiceRow {
	id := node.Generate()
	return invoiceRow{
		ID:            id,
		OrgID:         orgID,
		CustomerID:    customerID,
		InvoiceNumber: "DEMO-" + id.String(),
		Currency:      demoCurrency,
		Status:        statusFinal,
		PaymentStatus: paymentStatus,
		TotalAmount:   decimal.NewFromInt(amount),
		IssuedAt:      month.AddDate(0, 0, 4),
	}
}
