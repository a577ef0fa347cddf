package seed

import (
	"context"

	"github.com/smallbiznis/billinginsights/internal/clock"
	"github.com/smallbiznis/billinginsights/internal/config"
	"github.com/smallbiznis/billinginsights/internal/orgcontext"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var Module = fx.Module("seed",
	fx.Invoke(func(lc fx.Lifecycle, conn *gorm.DB, cfg config.Config, clk clock.Clock, log *zap.Logger) {
		if cfg.SeedDemoOrgID == "" {
			return
		}
		log = log.Named("seed")
		if cfg.IsProduction() {
			log.Warn("demo seed ignored in production")
			return
		}
		orgID, ok := orgcontext.ParseOrgID(cfg.SeedDemoOrgID)
		if !ok {
			log.Warn("demo seed ignored, invalid organization id", zap.String("org_id", cfg.SeedDemoOrgID))
			return
		}

		lc.Append(fx.Hook{
			OnStart: func(ctx context.Context) error {
				result, err := EnsureDemoData(ctx, conn, orgID, clk.Now())
				if err != nil {
					return err
				}
				if result.Skipped {
					log.Info("demo data already present", zap.String("org_id", orgID.String()))
					return nil
				}
				log.Info("demo data seeded",
					zap.String("org_id", orgID.String()),
					zap.String("customer_id", result.CustomerID.String()),
					zap.String("subscription_id", result.SubscriptionID.String()),
				)
				return nil
			},
		})
	}),
)
