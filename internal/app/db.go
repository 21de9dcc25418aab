package app

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
	"gorm.io/gorm"

	cfgpkg "github.com/taoyao-code/walkpad-gateway/internal/config"
	"github.com/taoyao-code/walkpad-gateway/internal/health"
	pgstorage "github.com/taoyao-code/walkpad-gateway/internal/storage/pg"
)

// ConnectDB 建立数据库连接并迁移运动记录表，未启用时全部返回 nil
func ConnectDB(ctx context.Context, cfg cfgpkg.DatabaseConfig, log *zap.Logger) (*pgxpool.Pool, *gorm.DB, error) {
	if !cfg.Enabled {
		log.Info("database is disabled, records kept in memory")
		return nil, nil, nil
	}
	dbpool, err := pgstorage.NewPool(ctx, cfg, log)
	if err != nil {
		log.Error("db connect error", zap.Error(err))
		return nil, nil, err
	}
	n, err := pgstorage.Migrate(ctx, dbpool)
	if err != nil {
		log.Error("db migrate error", zap.Error(err))
		dbpool.Close()
		return nil, nil, err
	}
	log.Info("db migrations applied", zap.Int("applied", n))
	db, err := pgstorage.OpenGorm(dbpool)
	if err != nil {
		log.Error("gorm open error", zap.Error(err))
		dbpool.Close()
		return nil, nil, err
	}
	return dbpool, db, nil
}

// AddDatabaseChecker 添加数据库检查器到聚合器
func AddDatabaseChecker(aggregator *health.Aggregator, dbpool *pgxpool.Pool) {
	if dbpool != nil {
		aggregator.AddChecker(health.NewDatabaseChecker(dbpool))
	}
}
