package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// 支持的存储驱动
const (
	DriverMemory   = "memory"
	DriverSqlite   = "sqlite"
	DriverPostgres = "postgres"
)

// Config 结构体定义了应用程序的所有配置项
// 它与 config.yaml 文件的结构完全对应
type Config struct {
	Server  ServerConfig  `mapstructure:"server"`
	Admin   AdminConfig   `mapstructure:"admin"`
	Storage StorageConfig `mapstructure:"storage"`
	Redis   RedisConfig   `mapstructure:"redis"`
}

// ServerConfig 定义了服务器相关的配置
type ServerConfig struct {
	Mode    string `mapstructure:"mode"`
	Address string `mapstructure:"address"`

	// SecretKey 用于签名flash消息的cookie，必须配置
	SecretKey string `mapstructure:"secretKey"`

	// AdminAPI 控制是否开放 POST /api/variants
	AdminAPI bool `mapstructure:"adminApi"`

	Cors CorsConfig `mapstructure:"cors"`
}

// CorsConfig 定义了CORS相关的配置
type CorsConfig struct {
	AllowedOrigins []string `mapstructure:"allowedOrigins"`
}

// AdminConfig 定义了管理员令牌，留空则在启动时随机生成
type AdminConfig struct {
	Token string `mapstructure:"token"`
}

// StorageConfig 定义了品种和投票的存储方式
type StorageConfig struct {
	Driver       string         `mapstructure:"driver"`
	Sqlite       SqliteConfig   `mapstructure:"sqlite"`
	Postgres     PostgresConfig `mapstructure:"postgres"`
	SeedVariants []string       `mapstructure:"seedVariants"`
}

// SqliteConfig 定义了SQLite数据库文件的位置
type SqliteConfig struct {
	Path string `mapstructure:"path"`
}

// PostgresConfig 定义了PostgreSQL的连接串
type PostgresConfig struct {
	DSN string `mapstructure:"dsn"`
}

// RedisConfig 定义了Redis的配置，Redis只用作导出数据的缓存
type RedisConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Address  string `mapstructure:"address"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// setDefaults 让没有配置文件时也能以内存模式启动
func setDefaults(v *viper.Viper) {
	v.SetDefault("server.mode", "release")
	v.SetDefault("server.address", ":8080")
	v.SetDefault("server.adminApi", true)
	v.SetDefault("server.cors.allowedOrigins", []string{"http://localhost:3000"})
	v.SetDefault("storage.driver", DriverSqlite)
	v.SetDefault("storage.sqlite.path", "coffee.db")
	v.SetDefault("redis.enabled", false)
	v.SetDefault("redis.address", "localhost:6379")
	v.SetDefault("redis.db", 0)
}

// LoadConfig 函数负责查找、加载和解析配置文件
// 它会在 ./config 和 . 中查找名为 config.yaml 的文件，文件不存在时只使用默认值和环境变量
func LoadConfig() (*Config, error) {
	// 先加载 .env (如果存在)，让其中的变量参与下面的环境变量覆盖
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("无法加载.env文件: %w", err)
	}

	v := viper.New()
	setDefaults(v)

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("./config")
	v.AddConfigPath(".")

	// 允许通过环境变量覆盖配置，例如 COFFEE_SERVER_SECRETKEY=xxx
	v.SetEnvPrefix("COFFEE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	bindEnv(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("无法读取配置文件: %w", err)
		}
		fmt.Println("未找到config.yaml，使用默认配置和环境变量。")
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("无法解析配置: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// bindEnv 显式绑定没有默认值的键，AutomaticEnv 只对 viper 已知的键生效
func bindEnv(v *viper.Viper) {
	for _, key := range []string{
		"server.secretKey",
		"admin.token",
		"storage.postgres.dsn",
		"storage.seedVariants",
		"redis.password",
	} {
		_ = v.BindEnv(key)
	}
}

// Validate 检查配置是否完整
func (c *Config) Validate() error {
	if c.Server.SecretKey == "" {
		return errors.New("the application config has no server.secretKey value")
	}
	switch c.Storage.Driver {
	case DriverMemory:
	case DriverSqlite:
		if c.Storage.Sqlite.Path == "" {
			return errors.New("storage.sqlite.path is required for the sqlite driver")
		}
	case DriverPostgres:
		if c.Storage.Postgres.DSN == "" {
			return errors.New("storage.postgres.dsn is required for the postgres driver")
		}
	default:
		return fmt.Errorf("unknown storage driver %q", c.Storage.Driver)
	}
	return nil
}
