package db

import (
	"fmt"
	"time"

	"postboard/internal/config"
	"postboard/internal/models"

	"github.com/glebarez/sqlite"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var DB *gorm.DB

// Init 连接数据库、迁移表结构并写入固定话题
func Init(cfg *config.Config) error {
	conn, err := Open(cfg.DBDriver, cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("connect to database: %w", err)
	}
	zap.L().Info("Database connection established", zap.String("driver", cfg.DBDriver))

	if err := Migrate(conn); err != nil {
		return fmt.Errorf("migrate database: %w", err)
	}
	zap.L().Info("Database migration completed")

	if err := SeedTopics(conn); err != nil {
		return fmt.Errorf("seed topics: %w", err)
	}

	DB = conn
	return nil
}

// Open opens a gorm connection for the given driver.
func Open(driver, dsn string) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch driver {
	case config.DriverPostgres:
		dialector = postgres.Open(dsn)
	case config.DriverSQLite:
		dialector = sqlite.Open(dsn)
	default:
		return nil, fmt.Errorf("unsupported driver %q", driver)
	}

	return gorm.Open(dialector, &gorm.Config{
		TranslateError: true,
		Logger:         newGormLogger(zap.L()),
		NowFunc:        func() time.Time { return time.Now().UTC() },
	})
}

// gormWriter 把 gorm 日志转发给 zap
type gormWriter struct {
	log *zap.SugaredLogger
}

func (w gormWriter) Printf(format string, args ...interface{}) {
	w.log.Warnf(format, args...)
}

// newGormLogger 只输出慢查询与错误；查不到记录属于正常分支，不记录
func newGormLogger(l *zap.Logger) logger.Interface {
	return logger.New(gormWriter{log: l.Named("gorm").Sugar()}, logger.Config{
		SlowThreshold:             200 * time.Millisecond,
		LogLevel:                  logger.Warn,
		IgnoreRecordNotFoundError: true,
		Colorful:                  false,
	})
}

// Migrate 自动迁移
func Migrate(conn *gorm.DB) error {
	return conn.AutoMigrate(
		&models.User{},
		&models.Topic{},
		&models.Post{},
		&models.Interaction{},
	)
}

// SeedTopics 写入缺失的固定话题，可重复执行
func SeedTopics(conn *gorm.DB) error {
	var count int64
	if err := conn.Model(&models.Topic{}).Count(&count).Error; err != nil {
		return err
	}
	if count == int64(len(models.TopicNames)) {
		zap.L().Debug("Topics already seeded, skipping")
		return nil
	}

	for _, name := range models.TopicNames {
		topic := models.Topic{Name: name}
		if err := conn.Where(models.Topic{Name: name}).FirstOrCreate(&topic).Error; err != nil {
			return fmt.Errorf("create topic %s: %w", name, err)
		}
	}
	zap.L().Info("Initial topics created successfully")
	return nil
}
