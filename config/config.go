package config

import (
	"errors"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/go-playground/validator/v10"
	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"
)

// EnvPrefix 环境变量前缀，例如 PICKUP_SERVER_PORT
const EnvPrefix = "PICKUP"

// Config 应用程序配置结构体
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Log      LogConfig      `mapstructure:"log"`
	Extract  ExtractConfig  `mapstructure:"extract"`
	Cache    CacheConfig    `mapstructure:"cache"`
	Database DatabaseConfig `mapstructure:"database"`
	Report   ReportConfig   `mapstructure:"report"`
}

// ServerConfig 服务器配置
type ServerConfig struct {
	Host            string        `mapstructure:"host"`                                        // 服务器主机
	Port            int           `mapstructure:"port" validate:"min=1,max=65535"`             // 服务器端口
	Mode            string        `mapstructure:"mode" validate:"oneof=debug release test"`    // gin运行模式
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`                                // 读取超时
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`                               // 写入超时
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`                            // 优雅关闭等待时间
	BodyLimit       string        `mapstructure:"body_limit" validate:"required"`              // 请求体大小上限，如 50MiB
	BasePath        string        `mapstructure:"base_path" validate:"omitempty,startswith=/"` // 额外挂载的路由前缀
	CORS            bool          `mapstructure:"cors"`                                        // 是否允许跨域请求
}

// LogConfig 日志配置
type LogConfig struct {
	Level      string `mapstructure:"level" validate:"oneof=debug info warn error"` // 日志级别
	File       string `mapstructure:"file"`                                         // 日志文件，为空时只输出到标准输出
	MaxSizeMB  int    `mapstructure:"max_size_mb"`                                  // 单个日志文件大小上限
	MaxBackups int    `mapstructure:"max_backups"`                                  // 保留的旧日志文件数
	MaxAgeDays int    `mapstructure:"max_age_days"`                                 // 旧日志保留天数
	Compress   bool   `mapstructure:"compress"`                                     // 是否压缩旧日志
}

// ExtractConfig 标注提取配置
type ExtractConfig struct {
	ContextRadius int `mapstructure:"context_radius" validate:"min=0"` // 上下文窗口单侧长度
}

// CacheConfig 缓存配置
type CacheConfig struct {
	Enable    bool   `mapstructure:"enable"`                             // 是否启用结果缓存
	Type      string `mapstructure:"type" validate:"oneof=memory redis"` // 缓存类型：memory 或 redis
	Address   string `mapstructure:"address"`                            // Redis地址
	Password  string `mapstructure:"password"`                           // Redis密码
	DB        int    `mapstructure:"db"`                                 // Redis数据库
	TTL       int    `mapstructure:"ttl" validate:"min=0"`               // 缓存TTL（秒）
	KeyPrefix string `mapstructure:"key_prefix"`                         // Redis键前缀
}

// DatabaseConfig 审计数据库配置
type DatabaseConfig struct {
	Enable bool   `mapstructure:"enable"`                    // 是否记录提取审计
	Type   string `mapstructure:"type" validate:"eq=sqlite"` // 数据库类型
	DSN    string `mapstructure:"dsn"`                       // 数据源名称
}

// ReportConfig 标注清单配置
type ReportConfig struct {
	Title  string `mapstructure:"title"`  // 清单标题
	Author string `mapstructure:"author"` // PDF作者
}

// Load 从文件和环境变量加载配置
// configPath为空时只使用默认值和环境变量；指定的文件不存在时写出一份默认配置
func Load(configPath string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	if configPath != "" {
		v.SetConfigFile(configPath)
		if err := v.ReadInConfig(); err != nil {
			if !isNotFound(err) {
				return nil, fmt.Errorf("failed to read config file: %w", err)
			}
			logrus.Warnf("Config file not found at %s, using defaults", configPath)
			writeDefault(v, configPath)
		} else {
			logrus.Infof("Using config file: %s", v.ConfigFileUsed())
		}
	}

	// 支持环境变量覆盖
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	// 兼容常见托管平台注入的PORT
	if err := v.BindEnv("server.port", EnvPrefix+"_SERVER_PORT", "PORT"); err != nil {
		return nil, fmt.Errorf("failed to bind env: %w", err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate 校验配置取值
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	if _, err := c.Server.BodyLimitBytes(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

// Addr 返回监听地址
func (s ServerConfig) Addr() string {
	return net.JoinHostPort(s.Host, strconv.Itoa(s.Port))
}

// BodyLimitBytes 解析请求体大小上限
func (s ServerConfig) BodyLimitBytes() (int64, error) {
	n, err := humanize.ParseBytes(s.BodyLimit)
	if err != nil {
		return 0, fmt.Errorf("server.body_limit %q: %w", s.BodyLimit, err)
	}
	if n == 0 {
		return 0, fmt.Errorf("server.body_limit must be positive")
	}
	return int64(n), nil
}

// CacheTTL 返回缓存有效期
func (c CacheConfig) CacheTTL() time.Duration {
	return time.Duration(c.TTL) * time.Second
}

func isNotFound(err error) bool {
	var notFound viper.ConfigFileNotFoundError
	return errors.As(err, &notFound) || errors.Is(err, os.ErrNotExist)
}

// writeDefault 创建默认配置文件，失败只记录日志
func writeDefault(v *viper.Viper, configPath string) {
	if err := os.MkdirAll(filepath.Dir(configPath), 0755); err != nil {
		logrus.Warnf("Could not create config directory for %s: %v", configPath, err)
		return
	}
	if err := v.WriteConfigAs(configPath); err != nil {
		logrus.Warnf("Could not write default config to %s: %v", configPath, err)
	}
}

// setDefaults 设置配置的默认值
func setDefaults(v *viper.Viper) {
	// 服务器默认配置
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 3000)
	v.SetDefault("server.mode", "release")
	v.SetDefault("server.read_timeout", "30s")
	v.SetDefault("server.write_timeout", "30s")
	v.SetDefault("server.shutdown_timeout", "10s")
	v.SetDefault("server.body_limit", "50MiB")
	v.SetDefault("server.base_path", "")
	v.SetDefault("server.cors", false)

	// 日志默认配置
	v.SetDefault("log.level", "info")
	v.SetDefault("log.file", "")
	v.SetDefault("log.max_size_mb", 100)
	v.SetDefault("log.max_backups", 5)
	v.SetDefault("log.max_age_days", 28)
	v.SetDefault("log.compress", true)

	// 提取默认配置
	v.SetDefault("extract.context_radius", 100)

	// 缓存默认配置
	v.SetDefault("cache.enable", true)
	v.SetDefault("cache.type", "memory")
	v.SetDefault("cache.address", "localhost:6379")
	v.SetDefault("cache.password", "")
	v.SetDefault("cache.db", 0)
	v.SetDefault("cache.ttl", 3600) // 1小时
	v.SetDefault("cache.key_prefix", "pickup")

	// 审计数据库默认配置
	v.SetDefault("database.enable", false)
	v.SetDefault("database.type", "sqlite")
	v.SetDefault("database.dsn", "data/pickups.db")

	// 标注清单默认配置
	v.SetDefault("report.title", "Pickup Sheet")
	v.SetDefault("report.author", "")
}
