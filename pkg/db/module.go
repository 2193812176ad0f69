package db

import (
	"context"
	"time"

	"github.com/procurehq/procure/internal/config"
	obslogger "github.com/procurehq/procure/internal/observability/logger"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func New(cfg config.Config, log *zap.Logger) (*gorm.DB, error) {
	dialector, err := Dialect(cfg)
	if err != nil {
		return nil, err
	}

	conn, err := gorm.Open(dialector, &gorm.Config{
		Logger: obslogger.NewGormLogger(log),
	})
	if err != nil {
		return nil, err
	}

	sqlDB, err := conn.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxIdleConns(cfg.DBMaxIdleConn)
	sqlDB.SetMaxOpenConns(cfg.DBMaxOpenConn)
	sqlDB.SetConnMaxLifetime(time.Duration(cfg.DBConnMaxLifetime) * time.Second)

	return conn, nil
}

func registerHooks(lc fx.Lifecycle, conn *gorm.DB) {
	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			_ = ctx
			sqlDB, err := conn.DB()
			if err != nil {
				return err
			}
			return sqlDB.Close()
		},
	})
}

var Module = fx.Module("db",
	fx.Provide(New),
	fx.Invoke(registerHooks),
)
