package xcontext

import (
	"context"

	"github.com/launchfee/backend/config"
	"github.com/launchfee/backend/pkg/logger"
	"gorm.io/gorm"
)

type (
	loggerKey  struct{}
	configsKey struct{}
	dbKey      struct{}
	txKey      struct{}
)

func WithLogger(ctx context.Context, l logger.Logger) context.Context {
	return context.WithValue(ctx, loggerKey{}, l)
}

func Logger(ctx context.Context) logger.Logger {
	if l, ok := ctx.Value(loggerKey{}).(logger.Logger); ok {
		return l
	}

	return logger.NewLogger(logger.INFO)
}

func WithConfigs(ctx context.Context, cfg config.Configs) context.Context {
	return context.WithValue(ctx, configsKey{}, cfg)
}

func Configs(ctx context.Context) config.Configs {
	if cfg, ok := ctx.Value(configsKey{}).(config.Configs); ok {
		return cfg
	}

	return config.Configs{}
}

func WithDB(ctx context.Context, db *gorm.DB) context.Context {
	return context.WithValue(ctx, dbKey{}, db)
}

// DB returns the current database transaction if one was begun with
// WithDBTransaction, otherwise the root gorm.DB.
func DB(ctx context.Context) *gorm.DB {
	if tx, ok := ctx.Value(txKey{}).(*gorm.DB); ok {
		return tx
	}

	if db, ok := ctx.Value(dbKey{}).(*gorm.DB); ok {
		return db
	}

	return nil
}

func WithDBTransaction(ctx context.Context) context.Context {
	db := DB(ctx)
	if db == nil {
		return ctx
	}

	return context.WithValue(ctx, txKey{}, db.Begin())
}

func WithCommitDBTransaction(ctx context.Context) context.Context {
	tx, ok := ctx.Value(txKey{}).(*gorm.DB)
	if !ok {
		return ctx
	}

	tx.Commit()
	return context.WithValue(ctx, txKey{}, nil)
}

func WithRollbackDBTransaction(ctx context.Context) context.Context {
	tx, ok := ctx.Value(txKey{}).(*gorm.DB)
	if !ok {
		return ctx
	}

	tx.Rollback()
	return context.WithValue(ctx, txKey{}, nil)
}
