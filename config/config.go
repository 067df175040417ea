package config

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

// Config 应用程序配置结构体
type Config struct {
	Server     ServerConfig     `mapstructure:"server"`
	Log        LogConfig        `mapstructure:"log"`
	Storage    StorageConfig    `mapstructure:"storage"`
	Cache      CacheConfig      `mapstructure:"cache"`
	Queue      QueueConfig      `mapstructure:"queue"`
	Database   DatabaseConfig   `mapstructure:"database"`
	Extraction ExtractionConfig `mapstructure:"extraction"`
}

// ServerConfig 服务器配置
type ServerConfig struct {
	Host         string `mapstructure:"host"`                                     // 服务器主机
	Port         int    `mapstructure:"port" validate:"min=1,max=65535"`          // 服务器端口
	Mode         string `mapstructure:"mode" validate:"oneof=debug release test"` // gin运行模式
	ReadTimeout  int    `mapstructure:"read_timeout" validate:"min=0"`            // 读取超时（秒）
	WriteTimeout int    `mapstructure:"write_timeout" validate:"min=0"`           // 写入超时（秒）
	MaxUploadMB  int    `mapstructure:"max_upload_mb" validate:"min=1"`           // 上传请求的内存上限
}

// LogConfig 日志配置
type LogConfig struct {
	Level      string `mapstructure:"level" validate:"oneof=debug info warn error"` // 日志级别
	File       string `mapstructure:"file"`                                         // 日志文件，为空时只输出到标准输出
	MaxSizeMB  int    `mapstructure:"max_size_mb" validate:"min=0"`                 // 单个日志文件最大尺寸
	MaxBackups int    `mapstructure:"max_backups" validate:"min=0"`                 // 保留的旧日志数
	MaxAgeDays int    `mapstructure:"max_age_days" validate:"min=0"`                // 旧日志保留天数
	Compress   bool   `mapstructure:"compress"`                                     // 是否压缩旧日志
}

// StorageConfig 存储配置
type StorageConfig struct {
	Type      string `mapstructure:"type" validate:"oneof=local minio"` // 存储类型：local 或 minio
	Path      string `mapstructure:"path"`                              // 本地存储路径
	Bucket    string `mapstructure:"bucket"`                            // MinIO桶名称
	Endpoint  string `mapstructure:"endpoint"`                          // MinIO端点
	AccessKey string `mapstructure:"access_key"`
	SecretKey string `mapstructure:"secret_key"`
	UseSSL    bool   `mapstructure:"use_ssl"` // 是否使用SSL
}

// CacheConfig 缓存配置
type CacheConfig struct {
	Enable   bool   `mapstructure:"enable"`                             // 是否启用缓存
	Type     string `mapstructure:"type" validate:"oneof=memory redis"` // 缓存类型：memory 或 redis
	Address  string `mapstructure:"address"`                            // Redis地址
	Password string `mapstructure:"password"`                           // Redis密码
	DB       int    `mapstructure:"db"`                                 // Redis数据库
	TTL      int    `mapstructure:"ttl" validate:"min=0"`               // 缓存TTL（秒）
	Prefix   string `mapstructure:"prefix"`                             // 缓存键前缀
}

// QueueConfig 任务队列配置
type QueueConfig struct {
	Enable        bool   `mapstructure:"enable"`                        // 是否启用任务队列
	Type          string `mapstructure:"type" validate:"oneof=redis"`   // 队列类型
	RedisAddr     string `mapstructure:"redis_addr"`                    // Redis地址
	RedisPassword string `mapstructure:"redis_password"`                // Redis密码
	RedisDB       int    `mapstructure:"redis_db"`                      // Redis数据库编号
	Concurrency   int    `mapstructure:"concurrency" validate:"min=1"`  // 任务处理并发数
	RetryLimit    int    `mapstructure:"retry_limit" validate:"min=0"`  // 任务最大重试次数
	RetryDelay    int    `mapstructure:"retry_delay" validate:"min=0"`  // 重试延迟(秒)
	TaskTimeout   int    `mapstructure:"task_timeout" validate:"min=0"` // 单个任务超时(秒)
}

// DatabaseConfig 数据库配置
type DatabaseConfig struct {
	Type string `mapstructure:"type" validate:"oneof=sqlite"` // 数据库类型
	DSN  string `mapstructure:"dsn" validate:"required"`      // 数据源名称
}

// ExtractionConfig 报告提取配置
type ExtractionConfig struct {
	MaxFiles int `mapstructure:"max_files" validate:"min=0"` // 单次批处理的最大文件数，0表示不限制
}

// Load 从文件和环境变量加载配置
func Load(configPath string) (*Config, error) {
	var config Config

	if configPath == "" {
		configPath = "config.yaml"
	}

	v := viper.New()
	v.SetConfigFile(configPath)
	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		// 配置文件不存在时使用默认值并写出一份默认配置
		if _, statErr := os.Stat(configPath); os.IsNotExist(statErr) {
			log.Printf("Warning: Config file not found at %s, using defaults", configPath)
			if err := os.MkdirAll(filepath.Dir(configPath), 0755); err == nil {
				if err := v.WriteConfigAs(configPath); err != nil {
					log.Printf("Warning: Could not write default config to %s: %v", configPath, err)
				}
			}
		} else {
			return nil, fmt.Errorf("failed to read config file: %v", err)
		}
	} else {
		log.Printf("Using config file: %s", v.ConfigFileUsed())
	}

	// 支持环境变量覆盖，如 SERVER_PORT、QUEUE_REDIS_ADDR
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to parse config: %v", err)
	}

	expandSecrets(&config)

	if err := config.Validate(); err != nil {
		return nil, err
	}
	return &config, nil
}

// Validate 校验配置取值
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

// expandSecrets 展开形如 ${ENV} 的敏感配置
func expandSecrets(cfg *Config) {
	for _, field := range []*string{
		&cfg.Storage.AccessKey,
		&cfg.Storage.SecretKey,
		&cfg.Cache.Password,
		&cfg.Queue.RedisPassword,
	} {
		*field = expandEnv(*field)
	}
}

func expandEnv(value string) string {
	if strings.HasPrefix(value, "${") && strings.HasSuffix(value, "}") {
		if envVal := os.Getenv(value[2 : len(value)-1]); envVal != "" {
			return envVal
		}
	}
	return value
}

// setDefaults 设置配置的默认值
func setDefaults(v *viper.Viper) {
	// 服务器默认配置
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 5000)
	v.SetDefault("server.mode", "release")
	v.SetDefault("server.read_timeout", 60)
	v.SetDefault("server.write_timeout", 120)
	v.SetDefault("server.max_upload_mb", 64)

	// 日志默认配置
	v.SetDefault("log.level", "info")
	v.SetDefault("log.file", "")
	v.SetDefault("log.max_size_mb", 100)
	v.SetDefault("log.max_backups", 5)
	v.SetDefault("log.max_age_days", 30)
	v.SetDefault("log.compress", false)

	// 存储默认配置
	v.SetDefault("storage.type", "local")
	v.SetDefault("storage.path", "./data/uploads")
	v.SetDefault("storage.bucket", "cersai")
	v.SetDefault("storage.use_ssl", false)

	// 缓存默认配置
	v.SetDefault("cache.enable", true)
	v.SetDefault("cache.type", "memory")
	v.SetDefault("cache.address", "localhost:6379")
	v.SetDefault("cache.ttl", 3600)
	v.SetDefault("cache.prefix", "cersai")

	// 队列默认配置
	v.SetDefault("queue.enable", false)
	v.SetDefault("queue.type", "redis")
	v.SetDefault("queue.redis_addr", "localhost:6379")
	v.SetDefault("queue.redis_db", 0)
	v.SetDefault("queue.concurrency", 4)
	v.SetDefault("queue.retry_limit", 3)
	v.SetDefault("queue.retry_delay", 60)
	v.SetDefault("queue.task_timeout", 600)

	// 数据库默认配置
	v.SetDefault("database.type", "sqlite")
	v.SetDefault("database.dsn", "data/cersai.db")

	// 提取默认配置
	v.SetDefault("extraction.max_files", 50)
}
