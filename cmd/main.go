package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"github.com/fyerfyer/cersai-digest/api"
	"github.com/fyerfyer/cersai-digest/api/handler"
	"github.com/fyerfyer/cersai-digest/api/middleware"
	appconfig "github.com/fyerfyer/cersai-digest/config"
	"github.com/fyerfyer/cersai-digest/internal/cache"
	"github.com/fyerfyer/cersai-digest/internal/database"
	"github.com/fyerfyer/cersai-digest/internal/document"
	"github.com/fyerfyer/cersai-digest/internal/export"
	"github.com/fyerfyer/cersai-digest/internal/extract"
	"github.com/fyerfyer/cersai-digest/internal/repository"
	"github.com/fyerfyer/cersai-digest/internal/services"
	"github.com/fyerfyer/cersai-digest/pkg/storage"
	"github.com/fyerfyer/cersai-digest/pkg/taskqueue"
)

// flags 命令行参数，显式设置时覆盖配置文件
type flags struct {
	ConfigFile   string
	EnvFile      string
	Port         int
	Mode         string
	LogLevel     string
	StoragePath  string
	DatabaseDSN  string
	QueueEnabled bool
	RedisAddr    string
}

func main() {
	f := parseFlags()

	// .env文件可选，不存在时忽略
	if err := godotenv.Load(f.EnvFile); err != nil && !os.IsNotExist(err) {
		log.Printf("Warning: Failed to load env file %s: %v", f.EnvFile, err)
	}

	cfg, err := appconfig.Load(f.ConfigFile)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	applyFlags(cfg, f)

	gin.SetMode(cfg.Server.Mode)

	logger, closer, err := setupLogger(cfg.Log)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer closer.Close()
	extract.SetLogger(logger)
	logger.Info("Starting CERSAI digest service...")

	if err := database.Setup(&database.Config{
		Type: cfg.Database.Type,
		DSN:  cfg.Database.DSN,
	}, logger); err != nil {
		logger.Fatalf("Failed to initialize database: %v", err)
	}
	defer database.Close()

	fileStorage, err := setupStorage(cfg.Storage)
	if err != nil {
		logger.Fatalf("Failed to initialize storage: %v", err)
	}

	summaryCache, err := setupCache(cfg.Cache, logger)
	if err != nil {
		logger.Fatalf("Failed to initialize cache: %v", err)
	}

	opts := []services.SummaryOption{
		services.WithLogger(logger),
		services.WithStorage(fileStorage),
		services.WithSummaryCache(summaryCache),
		services.WithExporter(export.NewExporter(export.WithLogger(logger))),
		services.WithMaxFiles(cfg.Extraction.MaxFiles),
	}

	// 初始化任务队列（如果启用）
	var (
		queue  *taskqueue.RedisQueue
		worker *taskqueue.RedisWorker
	)
	if cfg.Queue.Enable {
		queue, err = setupTaskQueue(cfg.Queue, logger)
		if err != nil {
			logger.Fatalf("Failed to initialize task queue: %v", err)
		}
		defer queue.Close()
		opts = append(opts, services.WithTaskQueue(queue))
		logger.Info("Task queue initialized successfully")
	}

	summaryService := services.NewSummaryService(
		document.NewConverter(document.WithConverterLogger(logger)),
		repository.NewSummaryRepository(),
		opts...,
	)

	var taskHandler *handler.TaskHandler
	if queue != nil {
		worker = taskqueue.NewRedisWorker(queue, nil)
		summaryService.RegisterTaskHandlers(worker)
		if err := worker.Start(); err != nil {
			logger.Fatalf("Failed to start task worker: %v", err)
		}
		taskHandler = handler.NewTaskHandler(queue)
	}

	r := api.SetupRouter(summaryService, handler.NewSummaryHandler(summaryService), taskHandler)
	r.MaxMultipartMemory = int64(cfg.Server.MaxUploadMB) << 20

	srv := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      r,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
	}

	// 优雅关闭
	go func() {
		logger.Infof("Server is running on %s", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatalf("Failed to start server: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Errorf("Server forced to shutdown: %v", err)
	}
	if worker != nil {
		worker.Stop()
	}

	logger.Info("Server exited")
}

// parseFlags 解析命令行参数
func parseFlags() flags {
	f := flags{}

	flag.StringVar(&f.ConfigFile, "config", "config.yaml", "Path to config file")
	flag.StringVar(&f.EnvFile, "env", ".env", "Path to .env file")
	flag.IntVar(&f.Port, "port", 0, "Server port")
	flag.StringVar(&f.Mode, "mode", "", "Run mode (debug/release)")
	flag.StringVar(&f.LogLevel, "log-level", "", "Log level (debug/info/warn/error)")
	flag.StringVar(&f.StoragePath, "storage", "", "Local storage path for uploaded reports")
	flag.StringVar(&f.DatabaseDSN, "db", "", "SQLite database path")
	flag.BoolVar(&f.QueueEnabled, "queue", false, "Enable async task queue")
	flag.StringVar(&f.RedisAddr, "redis-addr", "", "Redis address for task queue")

	flag.Parse()
	return f
}

// applyFlags 用显式设置的命令行参数覆盖配置
func applyFlags(cfg *appconfig.Config, f flags) {
	flag.Visit(func(fl *flag.Flag) {
		switch fl.Name {
		case "port":
			cfg.Server.Port = f.Port
		case "mode":
			cfg.Server.Mode = f.Mode
		case "log-level":
			cfg.Log.Level = f.LogLevel
		case "storage":
			cfg.Storage.Path = f.StoragePath
		case "db":
			cfg.Database.DSN = f.DatabaseDSN
		case "queue":
			cfg.Queue.Enable = f.QueueEnabled
		case "redis-addr":
			cfg.Queue.RedisAddr = f.RedisAddr
		}
	})

	// 兼容DEBUG环境变量
	if os.Getenv("DEBUG") == "true" {
		cfg.Log.Level = "debug"
	}
}

// setupLogger 设置日志系统
func setupLogger(cfg appconfig.LogConfig) (*logrus.Logger, interface{ Close() error }, error) {
	closer, err := middleware.ConfigureLogger(middleware.LogOptions{
		Level:      cfg.Level,
		File:       cfg.File,
		MaxSizeMB:  cfg.MaxSizeMB,
		MaxBackups: cfg.MaxBackups,
		MaxAgeDays: cfg.MaxAgeDays,
		Compress:   cfg.Compress,
	})
	if err != nil {
		return nil, nil, err
	}
	return middleware.GetLogger(), closer, nil
}

// setupStorage 设置上传文件的归档存储
func setupStorage(cfg appconfig.StorageConfig) (storage.Storage, error) {
	return storage.New(storage.Config{
		Type:  cfg.Type,
		Local: storage.LocalConfig{Path: cfg.Path},
		Minio: storage.MinioConfig{
			Endpoint:  cfg.Endpoint,
			AccessKey: cfg.AccessKey,
			SecretKey: cfg.SecretKey,
			UseSSL:    cfg.UseSSL,
			Bucket:    cfg.Bucket,
		},
	})
}

// setupCache 设置摘要缓存，未启用时返回空缓存
func setupCache(cfg appconfig.CacheConfig, logger *logrus.Logger) (*cache.SummaryCache, error) {
	ttl := time.Duration(cfg.TTL) * time.Second
	if !cfg.Enable {
		return cache.NewSummaryCache(nil, ttl, logger), nil
	}

	c, err := cache.NewCache(cache.Config{
		Type:            cfg.Type,
		RedisAddr:       cfg.Address,
		RedisPassword:   cfg.Password,
		RedisDB:         cfg.DB,
		Prefix:          cfg.Prefix,
		DefaultTTL:      ttl,
		CleanupInterval: 10 * time.Minute,
	})
	if err != nil {
		return nil, err
	}
	return cache.NewSummaryCache(c, ttl, logger), nil
}

// setupTaskQueue 设置任务队列
func setupTaskQueue(cfg appconfig.QueueConfig, logger *logrus.Logger) (*taskqueue.RedisQueue, error) {
	queueConfig := taskqueue.DefaultConfig()
	queueConfig.RedisAddr = cfg.RedisAddr
	queueConfig.RedisPassword = cfg.RedisPassword
	queueConfig.RedisDB = cfg.RedisDB
	queueConfig.Concurrency = cfg.Concurrency
	queueConfig.RetryLimit = cfg.RetryLimit
	queueConfig.RetryDelay = time.Duration(cfg.RetryDelay) * time.Second
	queueConfig.TaskTimeout = time.Duration(cfg.TaskTimeout) * time.Second
	queueConfig.Logger = logger

	logger.WithFields(logrus.Fields{
		"type":        cfg.Type,
		"redis_addr":  cfg.RedisAddr,
		"concurrency": cfg.Concurrency,
		"retry_limit": cfg.RetryLimit,
	}).Info("Setting up task queue")

	return taskqueue.NewRedisQueue(queueConfig)
}
