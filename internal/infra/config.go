package infra

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config — корневая структура конфигурации ClawdJob.
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	Storage  StorageConfig  `mapstructure:"storage"`
	Redis    RedisConfig    `mapstructure:"redis"`
	Model    ModelConfig    `mapstructure:"model"`
	Sources  SourcesConfig  `mapstructure:"sources"`
	Agent    AgentConfig    `mapstructure:"agent"`
	Engine   EngineConfig   `mapstructure:"engine"`
	Logger   LoggerConfig   `mapstructure:"logger"`
}

// ServerConfig описывает настройки HTTP-сервера.
type ServerConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

// Addr адрес для http.Server
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// DatabaseConfig подключение к PostgreSQL. Пустой URL — работаем на JSON-файлах.
type DatabaseConfig struct {
	URL             string `mapstructure:"url"`
	MaxConns        int    `mapstructure:"max_conns"`
	MinConns        int    `mapstructure:"min_conns"`
	ConnectAttempts uint   `mapstructure:"connect_attempts"`
}

// StorageConfig локальный файловый бэкенд.
type StorageConfig struct {
	DataDir       string `mapstructure:"data_dir"`
	ActivityLimit int    `mapstructure:"activity_limit"`
}

// RedisConfig межпроцессная блокировка охоты и живая лента. Пустой addr — Redis не используется.
type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

func (r RedisConfig) Enabled() bool { return r.Addr != "" }

// ModelConfig языковая модель. Без ключа агент работает на эвристике.
type ModelConfig struct {
	Provider          string `mapstructure:"provider"` // anthropic, openai
	APIKey            string `mapstructure:"api_key"`
	Name              string `mapstructure:"name"`
	AnalysisMaxTokens int    `mapstructure:"analysis_max_tokens"`
	LetterMaxTokens   int    `mapstructure:"letter_max_tokens"`
}

// SourcesConfig публичные площадки вакансий.
type SourcesConfig struct {
	UserAgent        string         `mapstructure:"user_agent"`
	Timeout          time.Duration  `mapstructure:"timeout"`
	Enabled          []string       `mapstructure:"enabled"`
	Limits           map[string]int `mapstructure:"limits"`
	DescriptionLimit int            `mapstructure:"description_limit"`
}

// AgentConfig параметры детерминированной персоны.
type AgentConfig struct {
	Seed  int64  `mapstructure:"seed"`
	Email string `mapstructure:"email"`
}

// EngineConfig цикл охоты и планировщик.
type EngineConfig struct {
	HuntInterval            time.Duration `mapstructure:"hunt_interval"` // 0 — планировщик выключен
	InitialDelay            time.Duration `mapstructure:"initial_delay"`
	MaxApplicationsPerCycle int           `mapstructure:"max_applications_per_cycle"`
	ApplicationPause        time.Duration `mapstructure:"application_pause"`
	MockJobs                int           `mapstructure:"mock_jobs"`
	LockTTL                 time.Duration `mapstructure:"lock_ttl"`
	FeedBufferSize          int           `mapstructure:"feed_buffer_size"`
	FeedFlushInterval       time.Duration `mapstructure:"feed_flush_interval"`
}

// LoggerConfig настраивает поведение zap логгера.
type LoggerConfig struct {
	Level  string `mapstructure:"level"`  // debug, info, warn, error
	Format string `mapstructure:"format"` // json, console
}

// Старые имена переменных окружения, которые принимались исходным деплоем
var envAliases = map[string][]string{
	"model.api_key": {"MODEL_API_KEY", "ANTHROPIC_API_KEY", "OPENAI_API_KEY"},
	"agent.email":   {"AGENT_EMAIL", "EMAIL_ADDRESS"},
	"database.url":  {"DATABASE_URL", "DB_URL"},
}

// LoadConfig инициализирует конфигурацию, объединяя значения из файла и ENV.
func LoadConfig() (*Config, error) {
	return loadConfig(viper.New())
}

func loadConfig(v *viper.Viper) (*Config, error) {
	// 1. Настройка поиска файла
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./configs")

	// 2. ENV перекрывает файл: SERVER_PORT=9000 перекроет server.port
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	for key, names := range envAliases {
		if err := v.BindEnv(append([]string{key}, names...)...); err != nil {
			return nil, fmt.Errorf("bind env %s: %w", key, err)
		}
	}

	// 3. Установка дефолтных значений
	setDefaults(v)

	// 4. Чтение файла
	if err := v.ReadInConfig(); err != nil {
		var configFileNotFoundError viper.ConfigFileNotFoundError
		if !errors.As(err, &configFileNotFoundError) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
		// Если файла нет — работаем на ENV и дефолтах
	}

	// 5. Маппинг в структуру
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unable to decode into struct: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	switch c.Model.Provider {
	case "anthropic", "openai":
	default:
		return fmt.Errorf("config: unknown model.provider %q", c.Model.Provider)
	}
	if c.Engine.HuntInterval < 0 {
		return errors.New("config: engine.hunt_interval must not be negative")
	}
	if c.Engine.MaxApplicationsPerCycle < 0 {
		return errors.New("config: engine.max_applications_per_cycle must not be negative")
	}
	return nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.read_timeout", 5*time.Second)
	// Ручной запуск охоты отвечает только после завершения цикла
	v.SetDefault("server.write_timeout", 2*time.Minute)
	v.SetDefault("server.shutdown_timeout", 10*time.Second)

	v.SetDefault("database.max_conns", 15)
	v.SetDefault("database.min_conns", 5)
	v.SetDefault("database.connect_attempts", 5)

	v.SetDefault("storage.data_dir", "./data")
	v.SetDefault("storage.activity_limit", 1000)

	v.SetDefault("model.provider", "anthropic")
	v.SetDefault("model.analysis_max_tokens", 500)
	v.SetDefault("model.letter_max_tokens", 1000)

	v.SetDefault("sources.user_agent", "ClawdJob/1.0")
	v.SetDefault("sources.timeout", 15*time.Second)
	v.SetDefault("sources.enabled", []string{"remoteok", "arbeitnow", "authenticjobs"})
	v.SetDefault("sources.limits", map[string]int{"remoteok": 10, "arbeitnow": 10, "authenticjobs": 5})
	v.SetDefault("sources.description_limit", 2000)

	v.SetDefault("agent.seed", 42)

	v.SetDefault("engine.hunt_interval", time.Minute)
	v.SetDefault("engine.initial_delay", 3*time.Second)
	v.SetDefault("engine.max_applications_per_cycle", 3)
	v.SetDefault("engine.application_pause", time.Second)
	v.SetDefault("engine.mock_jobs", 5)
	v.SetDefault("engine.lock_ttl", 2*time.Minute)
	v.SetDefault("engine.feed_buffer_size", 256)
	v.SetDefault("engine.feed_flush_interval", 500*time.Millisecond)

	v.SetDefault("logger.level", "info")
	v.SetDefault("logger.format", "json")
}
