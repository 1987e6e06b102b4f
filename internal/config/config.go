package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/mapdata-service/internal/pkg/validator"
)

type Config struct {
	Server      ServerConfig
	Database    DatabaseConfig
	Redis       RedisConfig
	SQLite      SQLiteConfig
	Cache       CacheConfig
	Log         LogConfig
	Worker      WorkerConfig
	Executor    ExecutorConfig
	Source      SourceConfig
	FilterStore FilterStoreConfig
	Maps        []MapConfig
}

type ServerConfig struct {
	Host         string
	Port         int
	Env          string
	AllowOrigins []string
}

type DatabaseConfig struct {
	Host            string
	Port            int
	User            string
	Password        string
	DBName          string
	SSLMode         string
	MaxConns        int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	ConnMaxIdleTime time.Duration
}

type RedisConfig struct {
	Host         string
	Port         int
	Password     string
	DB           int
	PoolSize     int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

type SQLiteConfig struct {
	Path string
}

type CacheConfig struct {
	MapDataCacheTTL time.Duration
}

type LogConfig struct {
	Level  string
	Format string
}

type WorkerConfig struct {
	Enabled       bool
	ConsumerGroup string
	MaxRetries    int
}

// ExecutorConfig управляет выбором режима выполнения пайплайна
type ExecutorConfig struct {
	Mode    string
	Timeout time.Duration
}

type SourceConfig struct {
	BaseURL        string
	RequestTimeout time.Duration
}

type FilterStoreConfig struct {
	Driver string
}

// MapConfig описывает один набор данных карты из каталога MAPS_CONFIG
type MapConfig struct {
	Key                        string               `mapstructure:"key" json:"key" validate:"required"`
	Name                       string               `mapstructure:"name" json:"name" validate:"required"`
	ItemsURL                   string               `mapstructure:"items_url" json:"-" validate:"required"`
	RegionsURL                 string               `mapstructure:"regions_url" json:"-" validate:"required"`
	TranslationURL             string               `mapstructure:"translation_url" json:"-"`
	SupplementalTranslationURL string               `mapstructure:"supplemental_translation_url" json:"-"`
	MissingItemsURL            string               `mapstructure:"missing_items_url" json:"-"`
	DefaultCategory            string               `mapstructure:"default_category" json:"default_category,omitempty"`
	DefaultDescriptions        []DefaultDescription `mapstructure:"default_descriptions" json:"-" validate:"dive"`
}

// DefaultDescription - описание по умолчанию для предметов с указанным именем.
// Viper приводит ключи словарей к нижнему регистру, поэтому имена хранятся списком.
type DefaultDescription struct {
	Name        string `mapstructure:"name" validate:"required"`
	Description string `mapstructure:"description" validate:"required"`
}

// DescriptionMap возвращает описания по умолчанию в виде name -> description
func (m MapConfig) DescriptionMap() map[string]string {
	if len(m.DefaultDescriptions) == 0 {
		return nil
	}
	result := make(map[string]string, len(m.DefaultDescriptions))
	for _, d := range m.DefaultDescriptions {
		result[d.Name] = d.Description
	}
	return result
}

func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigFile(".env")
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	cfg := &Config{
		Server: ServerConfig{
			Host:         v.GetString("API_HOST"),
			Port:         v.GetInt("API_PORT"),
			Env:          v.GetString("API_ENV"),
			AllowOrigins: splitList(v.GetString("CORS_ALLOW_ORIGINS")),
		},
		Database: DatabaseConfig{
			Host:            v.GetString("DB_HOST"),
			Port:            v.GetInt("DB_PORT"),
			User:            v.GetString("DB_USER"),
			Password:        v.GetString("DB_PASSWORD"),
			DBName:          v.GetString("DB_NAME"),
			SSLMode:         v.GetString("DB_SSLMODE"),
			MaxConns:        v.GetInt("DB_MAX_CONNS"),
			MaxIdleConns:    v.GetInt("DB_MAX_IDLE_CONNS"),
			ConnMaxLifetime: time.Duration(v.GetInt("DB_CONN_MAX_LIFETIME")) * time.Second,
			ConnMaxIdleTime: time.Duration(v.GetInt("DB_CONN_MAX_IDLE_TIME")) * time.Second,
		},
		Redis: RedisConfig{
			Host:     v.GetString("REDIS_HOST"),
			Port:     v.GetInt("REDIS_PORT"),
			Password: v.GetString("REDIS_PASSWORD"),
			DB:       v.GetInt("REDIS_DB"),
			PoolSize: v.GetInt("REDIS_POOL_SIZE"),
			// блокирующее чтение стримов задаёт свой таймаут поверх ReadTimeout
			DialTimeout:  time.Duration(v.GetInt("REDIS_DIAL_TIMEOUT")) * time.Millisecond,
			ReadTimeout:  time.Duration(v.GetInt("REDIS_READ_TIMEOUT")) * time.Millisecond,
			WriteTimeout: time.Duration(v.GetInt("REDIS_WRITE_TIMEOUT")) * time.Millisecond,
		},
		SQLite: SQLiteConfig{
			Path: v.GetString("SQLITE_PATH"),
		},
		Cache: CacheConfig{
			MapDataCacheTTL: time.Duration(v.GetInt("MAPDATA_CACHE_TTL")) * time.Second,
		},
		Log: LogConfig{
			Level:  v.GetString("LOG_LEVEL"),
			Format: v.GetString("LOG_FORMAT"),
		},
		Worker: WorkerConfig{
			Enabled:       v.GetBool("WORKER_ENABLED"),
			ConsumerGroup: v.GetString("WORKER_CONSUMER_GROUP"),
			MaxRetries:    v.GetInt("WORKER_MAX_RETRIES"),
		},
		Executor: ExecutorConfig{
			Mode:    strings.ToLower(strings.TrimSpace(v.GetString("EXECUTOR_MODE"))),
			Timeout: time.Duration(v.GetInt("EXECUTOR_TIMEOUT")) * time.Millisecond,
		},
		Source: SourceConfig{
			BaseURL:        strings.TrimRight(v.GetString("SOURCE_BASE_URL"), "/"),
			RequestTimeout: time.Duration(v.GetInt("SOURCE_REQUEST_TIMEOUT")) * time.Second,
		},
		FilterStore: FilterStoreConfig{
			Driver: strings.ToLower(strings.TrimSpace(v.GetString("FILTER_STORE_DRIVER"))),
		},
	}

	applyDefaults(cfg)

	if path := v.GetString("MAPS_CONFIG"); path != "" {
		maps, err := LoadMaps(path)
		if err != nil {
			return nil, err
		}
		cfg.Maps = maps
	}

	return cfg, nil
}

// applyDefaults - значения по умолчанию для незаданных параметров
func applyDefaults(cfg *Config) {
	if cfg.Redis.DialTimeout == 0 {
		cfg.Redis.DialTimeout = 5 * time.Second
	}
	if cfg.Worker.ConsumerGroup == "" {
		cfg.Worker.ConsumerGroup = "pipeline-workers"
	}
	if cfg.Worker.MaxRetries == 0 {
		cfg.Worker.MaxRetries = 3
	}
	if cfg.Executor.Mode == "" {
		cfg.Executor.Mode = "auto"
	}
	if cfg.Executor.Timeout == 0 {
		cfg.Executor.Timeout = 30 * time.Second
	}
	if cfg.Source.RequestTimeout == 0 {
		cfg.Source.RequestTimeout = 30 * time.Second
	}
	if cfg.FilterStore.Driver == "" {
		cfg.FilterStore.Driver = "redis"
	}
	if cfg.SQLite.Path == "" {
		cfg.SQLite.Path = "mapdata.db"
	}
	if cfg.Cache.MapDataCacheTTL == 0 {
		cfg.Cache.MapDataCacheTTL = 10 * time.Minute
	}
}

// splitList разбирает список через запятую, пустые элементы отбрасываются
func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// LoadMaps читает каталог карт (YAML/JSON) и валидирует каждую запись
func LoadMaps(path string) ([]MapConfig, error) {
	v := viper.New()
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read maps config: %w", err)
	}

	var maps []MapConfig
	if err := v.UnmarshalKey("maps", &maps); err != nil {
		return nil, fmt.Errorf("failed to decode maps config: %w", err)
	}

	seen := make(map[string]struct{}, len(maps))
	for i := range maps {
		if err := validator.Validate(&maps[i]); err != nil {
			return nil, fmt.Errorf("invalid map #%d: %w", i, err)
		}
		if _, dup := seen[maps[i].Key]; dup {
			return nil, fmt.Errorf("duplicate map key %q", maps[i].Key)
		}
		seen[maps[i].Key] = struct{}{}
	}

	return maps, nil
}

// FindMap возвращает конфигурацию карты по ключу
func (c *Config) FindMap(key string) (MapConfig, bool) {
	for _, m := range c.Maps {
		if m.Key == key {
			return m, true
		}
	}
	return MapConfig{}, false
}

func (c *Config) GetServerAddr() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}

func (c *Config) GetDatabaseDSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Database.Host,
		c.Database.Port,
		c.Database.User,
		c.Database.Password,
		c.Database.DBName,
		c.Database.SSLMode,
	)
}

func (c *Config) GetRedisAddr() string {
	return fmt.Sprintf("%s:%d", c.Redis.Host, c.Redis.Port)
}
