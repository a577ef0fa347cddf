package migration

import (
	"github.com/smallbiznis/billinginsights/internal/config"
	"github.com/smallbiznis/billinginsights/pkg/db"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var Module = fx.Module("migrations",
	fx.Invoke(func(conn *gorm.DB, cfg config.Config, dbCfg db.Config, log *zap.Logger) error {
		if !cfg.DBRunMigrations {
			return nil
		}
		log = log.Named("migration")

		switch dbCfg.Type {
		case db.TypePostgres, "":
			sqlDB, err := conn.DB()
			if err != nil {
				return err
			}
			return RunMigrations(sqlDB)
		case db.TypeSQLite:
			return ApplySchema(conn)
		default:
			log.Warn("schema migrations skipped for database type", zap.String("type", dbCfg.Type))
			return nil
		}
	}),
)
