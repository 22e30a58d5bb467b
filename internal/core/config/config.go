package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

var v *viper.Viper
var cfg *Config

// Config App-wide configuration
type Config struct {
	Database  DatabaseConfig  `mapstructure:"-"`
	Redis     RedisConfig     `mapstructure:"-"`
	App       AppConfig       `mapstructure:"-"`
	JWT       JWTConfig       `mapstructure:"-"`
	Cache     CacheConfig     `mapstructure:"-"`
	Snowflake SnowflakeConfig `mapstructure:"-"`
	Logging   LoggingConfig   `mapstructure:"-"`
	Security  SecurityConfig  `mapstructure:"-"`
	Forum     ForumConfig     `mapstructure:"-"`
}

// DatabaseConfig MySQL Database Configuration
type DatabaseConfig struct {
	Host            string
	Port            int
	Username        string
	Password        string
	Name            string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime int
}

// RedisConfig Redis Configuration
type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
	PoolSize int
}

// AppConfig Application Configuration
type AppConfig struct {
	Host string
	Port int
	Mode string
}

// JWTConfig JWT Configuration
type JWTConfig struct {
	Secret string
	Expiry int // token lifetime in seconds
}

// CacheConfig Cache Configuration
type CacheConfig struct {
	L1Cap    int
	L2TTL    int
	StatsTTL int // aggregate cache TTL in seconds
}

// SnowflakeConfig Snowflake Configuration
type SnowflakeConfig struct {
	WorkerID int64
}

// LoggingConfig Logging Configuration
type LoggingConfig struct {
	Level    string
	Output   string
	Filename string
}

// SecurityConfig Security Configuration
type SecurityConfig struct {
	AllowIPs  []string // mgt API whitelist
	DenyIPs   []string
	RateLimit int // requests per minute per IP
}

// ForumConfig Discussion engine configuration
type ForumConfig struct {
	DeletionPolicy string // "soft" or "hard"
	SearchMinChars int
}

// Init Initialize configuration with Viper
func Init(configPath string) error {
	v = viper.New()
	cfg = &Config{}

	v.SetConfigName("config")
	v.SetConfigType("yaml")

	v.AddConfigPath(configPath)
	v.AddConfigPath(".")
	v.AddConfigPath("./config")

	setDefaults()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return fmt.Errorf("failed to read config: %w", err)
		}
	}

	v.SetEnvPrefix("FORUM")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	bindEnvs()

	return parseConfig()
}

// setDefaults Default values used when config file is absent
func setDefaults() {
	v.SetDefault("app.host", "0.0.0.0")
	v.SetDefault("app.port", 8080)
	v.SetDefault("app.mode", "release")

	v.SetDefault("database.host", "127.0.0.1")
	v.SetDefault("database.port", 3306)
	v.SetDefault("database.max_open_conns", 25)
	v.SetDefault("database.max_idle_conns", 10)
	v.SetDefault("database.conn_max_lifetime", 300)

	v.SetDefault("redis.host", "127.0.0.1")
	v.SetDefault("redis.port", 6379)
	v.SetDefault("redis.pool_size", 10)

	v.SetDefault("cache.l1_cap", 1000)
	v.SetDefault("cache.l2_ttl", 3600)
	v.SetDefault("cache.stats_ttl", 300)

	v.SetDefault("snowflake.worker_id", 0)

	v.SetDefault("jwt.secret", "change-me-in-production")
	v.SetDefault("jwt.expiry", 86400)

	v.SetDefault("security.allow_ips", []string{"127.0.0.1", "localhost", "::1"})
	v.SetDefault("security.rate_limit", 100)

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.output", "stdout")
	v.SetDefault("logging.filename", "logs/forum.log")

	v.SetDefault("forum.deletion_policy", "soft")
	v.SetDefault("forum.search_min_chars", 2)
}

// bindEnvs Bind environment variables
func bindEnvs() {
	v.BindEnv("database.host", "FORUM_DATABASE_HOST")
	v.BindEnv("database.port", "FORUM_DATABASE_PORT")
	v.BindEnv("database.username", "FORUM_DATABASE_USERNAME")
	v.BindEnv("database.password", "FORUM_DATABASE_PASSWORD")
	v.BindEnv("database.name", "FORUM_DATABASE_NAME")

	v.BindEnv("redis.host", "FORUM_REDIS_HOST")
	v.BindEnv("redis.port", "FORUM_REDIS_PORT")
	v.BindEnv("redis.password", "FORUM_REDIS_PASSWORD")

	v.BindEnv("jwt.secret", "FORUM_JWT_SECRET")

	v.BindEnv("forum.deletion_policy", "FORUM_DELETION_POLICY")
}

// parseConfig Parse configuration into typed structs
func parseConfig() error {
	cfg.Database.Host = v.GetString("database.host")
	cfg.Database.Port = v.GetInt("database.port")
	cfg.Database.Username = v.GetString("database.username")
	cfg.Database.Password = v.GetString("database.password")
	cfg.Database.Name = v.GetString("database.name")
	cfg.Database.MaxOpenConns = v.GetInt("database.max_open_conns")
	cfg.Database.MaxIdleConns = v.GetInt("database.max_idle_conns")
	cfg.Database.ConnMaxLifetime = v.GetInt("database.conn_max_lifetime")

	cfg.Redis.Host = v.GetString("redis.host")
	cfg.Redis.Port = v.GetInt("redis.port")
	cfg.Redis.Password = v.GetString("redis.password")
	cfg.Redis.DB = v.GetInt("redis.db")
	cfg.Redis.PoolSize = v.GetInt("redis.pool_size")

	cfg.App.Host = v.GetString("app.host")
	cfg.App.Port = v.GetInt("app.port")
	cfg.App.Mode = v.GetString("app.mode")

	cfg.JWT.Secret = v.GetString("jwt.secret")
	cfg.JWT.Expiry = v.GetInt("jwt.expiry")

	cfg.Cache.L1Cap = v.GetInt("cache.l1_cap")
	cfg.Cache.L2TTL = v.GetInt("cache.l2_ttl")
	cfg.Cache.StatsTTL = v.GetInt("cache.stats_ttl")

	cfg.Snowflake.WorkerID = v.GetInt64("snowflake.worker_id")

	cfg.Logging.Level = v.GetString("logging.level")
	cfg.Logging.Output = v.GetString("logging.output")
	cfg.Logging.Filename = v.GetString("logging.filename")

	cfg.Security.AllowIPs = v.GetStringSlice("security.allow_ips")
	cfg.Security.DenyIPs = v.GetStringSlice("security.deny_ips")
	cfg.Security.RateLimit = v.GetInt("security.rate_limit")

	cfg.Forum.DeletionPolicy = v.GetString("forum.deletion_policy")
	cfg.Forum.SearchMinChars = v.GetInt("forum.search_min_chars")

	return nil
}

// Get Get configuration instance
func Get() *Config {
	return cfg
}

// GetDSN Get MySQL DSN
func (c *DatabaseConfig) GetDSN() string {
	return fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?parseTime=true&charset=utf8mb4",
		c.Username, c.Password, c.Host, c.Port, c.Name)
}

// GetRedisAddr Get Redis address
func (c *RedisConfig) GetRedisAddr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// GetServerAddr Get server address
func (c *AppConfig) GetServerAddr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}
