package database

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/fyerfyer/cersai-digest/internal/models"
)

// DB 全局数据库连接
var DB *gorm.DB

// Config 数据库配置，零值字段使用DefaultConfig中的取值
type Config struct {
	Type         string
	DSN          string
	MaxOpenConns int
	MaxIdleConns int
	MaxLifetime  time.Duration
	BusyTimeout  time.Duration // sqlite写锁等待时间
}

// DefaultConfig 返回默认数据库配置
func DefaultConfig() *Config {
	return &Config{
		Type:         "sqlite",
		DSN:          "data/cersai.db",
		MaxOpenConns: 10,
		MaxIdleConns: 5,
		MaxLifetime:  time.Hour,
		BusyTimeout:  5 * time.Second,
	}
}

func (c *Config) withDefaults() *Config {
	out := *c
	def := DefaultConfig()
	if out.Type == "" {
		out.Type = def.Type
	}
	if out.MaxOpenConns <= 0 {
		out.MaxOpenConns = def.MaxOpenConns
	}
	if out.MaxIdleConns <= 0 {
		out.MaxIdleConns = def.MaxIdleConns
	}
	if out.MaxLifetime <= 0 {
		out.MaxLifetime = def.MaxLifetime
	}
	if out.BusyTimeout <= 0 {
		out.BusyTimeout = def.BusyTimeout
	}
	return &out
}

// Setup 打开数据库、配置连接池并迁移报告和摘要表
func Setup(cfg *Config, log *logrus.Logger) error {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	cfg = cfg.withDefaults()

	var dialector gorm.Dialector
	switch cfg.Type {
	case "sqlite":
		if !isMemoryDSN(cfg.DSN) {
			if err := ensureDir(cfg.DSN); err != nil {
				return fmt.Errorf("failed to create database directory: %w", err)
			}
		}
		dialector = sqlite.Open(cfg.DSN)
	default:
		return fmt.Errorf("unsupported database type: %s", cfg.Type)
	}

	gormLogger := logger.New(
		&logrusWriter{log},
		logger.Config{
			SlowThreshold:             200 * time.Millisecond,
			LogLevel:                  logger.Warn,
			IgnoreRecordNotFoundError: true,
			Colorful:                  false,
		},
	)

	db, err := gorm.Open(dialector, &gorm.Config{Logger: gormLogger})
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return fmt.Errorf("failed to get database connection: %w", err)
	}
	sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(cfg.MaxLifetime)

	// 报告和摘要在同一事务中写入，并发请求时需要等待写锁
	if err := db.Exec(fmt.Sprintf("PRAGMA busy_timeout = %d", cfg.BusyTimeout.Milliseconds())).Error; err != nil {
		return fmt.Errorf("failed to configure sqlite: %w", err)
	}

	if err := Migrate(db); err != nil {
		return fmt.Errorf("failed to auto migrate: %w", err)
	}

	DB = db
	log.WithFields(logrus.Fields{
		"type": cfg.Type,
		"dsn":  cfg.DSN,
	}).Info("Database connection established successfully")
	return nil
}

// MustDB 返回全局数据库连接，未初始化时panic
func MustDB() *gorm.DB {
	if DB == nil {
		panic("database not initialized, call database.Setup first")
	}
	return DB
}

// Ping 检查数据库连接是否可用
func Ping() bool {
	if DB == nil {
		return false
	}
	sqlDB, err := DB.DB()
	if err != nil {
		return false
	}
	return sqlDB.Ping() == nil
}

// Migrate 在指定连接上迁移所有模型
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.Report{},
		&models.Summary{},
	)
}

// Close 关闭数据库连接
func Close() error {
	if DB == nil {
		return nil
	}

	sqlDB, err := DB.DB()
	if err != nil {
		return fmt.Errorf("failed to get database connection: %w", err)
	}
	return sqlDB.Close()
}

func isMemoryDSN(dsn string) bool {
	return dsn == ":memory:" || strings.Contains(dsn, "mode=memory")
}

func ensureDir(dbPath string) error {
	dir := filepath.Dir(strings.TrimPrefix(dbPath, "file:"))
	if dir == "." || dir == "" {
		return nil
	}
	return os.MkdirAll(dir, 0755)
}

// logrusWriter 把gorm日志转发到logrus
type logrusWriter struct {
	logger *logrus.Logger
}

func (w *logrusWriter) Printf(format string, args ...interface{}) {
	w.logger.Warnf(format, args...)
}
