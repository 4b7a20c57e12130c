package migration

import (
	"github.com/smallbiznis/invoicing/internal/config"
	"github.com/smallbiznis/invoicing/pkg/db"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var Module = fx.Module("migrations",
	fx.Invoke(func(conn *gorm.DB, cfg config.Config, log *zap.Logger) error {
		if !shouldMigrate(cfg) {
			log.Info("skipping schema migrations",
				zap.String("db_type", cfg.DBType),
				zap.Bool("auto_migrate", cfg.DBAutoMigrate),
			)
			return nil
		}

		sqlDB, err := conn.DB()
		if err != nil {
			return err
		}
		return RunMigrations(sqlDB, cfg.DBType)
	}),
)

// shouldMigrate reports whether an embedded migration set applies.
func shouldMigrate(cfg config.Config) bool {
	if !cfg.DBAutoMigrate {
		return false
	}
	return cfg.DBType == db.TypePostgres || cfg.DBType == db.TypeSQLite
}
