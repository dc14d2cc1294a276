// Package config предоставляет управление конфигурацией клиента и сервера разработки
package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v2"
)

// API содержит настройки клиента API
type API struct {
	BaseURL        string        `yaml:"base_url"`
	SessionFile    string        `yaml:"session_file"`
	RequestTimeout time.Duration `yaml:"request_timeout"` // 0 - без ограничений, время задает контекст вызова
}

// Summaries содержит настройки ожидания задач генерации сводок
type Summaries struct {
	PollInterval time.Duration `yaml:"poll_interval"`
	WaitTimeout  time.Duration `yaml:"wait_timeout"`
	DefaultDays  int           `yaml:"default_days"`
}

// Notify содержит настройки доставки сводок в Telegram
type Notify struct {
	BotToken string `yaml:"bot_token"`
	ChatID   int64  `yaml:"chat_id"`
}

// Enabled сообщает, настроена ли доставка.
func (n Notify) Enabled() bool {
	return n.BotToken != ""
}

// Server содержит конфигурацию бэкенда разработки
type Server struct {
	Host             string        `yaml:"host"`
	Port             int           `yaml:"port"`
	PathPrefix       string        `yaml:"path_prefix"`
	ShutdownTimeout  time.Duration `yaml:"shutdown_timeout"`
	VerificationCode string        `yaml:"verification_code"`
	VerificationTTL  time.Duration `yaml:"verification_ttl"`
	JobTTL           time.Duration `yaml:"job_ttl"`
	JobTimeout       time.Duration `yaml:"job_timeout"` // 0 - без ограничений
	CleanupInterval  time.Duration `yaml:"cleanup_interval"`
	SeedFiles        []string      `yaml:"seed_files"`
	SeedRebase       bool          `yaml:"seed_rebase"`
}

// Logging содержит конфигурацию логирования
type Logging struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // text, json
}

// Config содержит конфигурацию приложения
type Config struct {
	API       API       `yaml:"api"`
	Summaries Summaries `yaml:"summaries"`
	Notify    Notify    `yaml:"notify"`
	Server    Server    `yaml:"server"`
	Logging   Logging   `yaml:"logging"`
}

// defaultConfig возвращает конфигурацию со значениями по умолчанию
func defaultConfig() *Config {
	return &Config{
		API: API{
			BaseURL:        DefaultAPIURL,
			SessionFile:    DefaultSessionFile,
			RequestTimeout: DefaultRequestTimeout,
		},
		Summaries: Summaries{
			PollInterval: DefaultPollInterval,
			WaitTimeout:  DefaultWaitTimeout,
			DefaultDays:  DefaultSummaryDays,
		},
		Server: Server{
			Host:             DefaultServerHost,
			Port:             DefaultServerPort,
			PathPrefix:       DefaultPathPrefix,
			ShutdownTimeout:  DefaultShutdownTimeout,
			VerificationCode: DefaultVerificationCode,
			VerificationTTL:  DefaultVerificationTTL,
			JobTTL:           DefaultJobTTL,
			JobTimeout:       DefaultJobTimeout,
			CleanupInterval:  DefaultCleanupInterval,
		},
		Logging: Logging{
			Level:  DefaultLogLevel,
			Format: DefaultLogFormat,
		},
	}
}

// LoadConfig загружает конфигурацию: значения по умолчанию, затем YAML-файл, затем переменные окружения
func LoadConfig(path string) (*Config, error) {
	// .env необязателен, переменные могут прийти из окружения
	_ = godotenv.Load()

	cfg := defaultConfig()
	if err := loadFromYAML(path, cfg); err != nil {
		return nil, err
	}
	if err := applyEnv(cfg); err != nil {
		return nil, fmt.Errorf("не удалось загрузить конфигурацию из env: %w", err)
	}
	return cfg, nil
}

// loadFromYAML накладывает значения из YAML-файла поверх cfg. Отсутствующий файл не является ошибкой.
func loadFromYAML(filename string, cfg *Config) error {
	if filename == "" {
		return nil
	}
	data, err := os.ReadFile(filename)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("не удалось прочитать файл конфигурации %s: %w", filename, err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("не удалось разобрать YAML конфигурацию: %w", err)
	}
	return nil
}

// applyEnv переопределяет значения переменными окружения
func applyEnv(cfg *Config) error {
	cfg.API.BaseURL = getEnv("API_URL", cfg.API.BaseURL)
	cfg.API.SessionFile = getEnv("SESSION_FILE", cfg.API.SessionFile)
	cfg.Logging.Level = getEnv("LOG_LEVEL", cfg.Logging.Level)
	cfg.Logging.Format = getEnv("LOG_FORMAT", cfg.Logging.Format)
	cfg.Server.Host = getEnv("SERVER_HOST", cfg.Server.Host)
	cfg.Server.VerificationCode = getEnv("VERIFICATION_CODE", cfg.Server.VerificationCode)
	cfg.Notify.BotToken = getEnv("NOTIFY_BOT_TOKEN", cfg.Notify.BotToken)

	if seed := os.Getenv("SEED_FILE"); seed != "" {
		cfg.Server.SeedFiles = []string{seed}
	}

	if portStr := os.Getenv("SERVER_PORT"); portStr != "" {
		port, err := strconv.Atoi(portStr)
		if err != nil {
			return fmt.Errorf("недопустимый SERVER_PORT: %w", err)
		}
		cfg.Server.Port = port
	}

	if chatStr := os.Getenv("NOTIFY_CHAT_ID"); chatStr != "" {
		chatID, err := strconv.ParseInt(chatStr, 10, 64)
		if err != nil {
			return fmt.Errorf("недопустимый NOTIFY_CHAT_ID: %w", err)
		}
		cfg.Notify.ChatID = chatID
	}

	return nil
}

// Address возвращает адрес сервера разработки в формате "host:port"
func (c *Config) Address() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}

// Validate проверяет, являются ли значения конфигурации допустимыми
func (c *Config) Validate() error {
	u, err := url.Parse(c.API.BaseURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("api.base_url должен быть абсолютным http(s) URL, получено %q", c.API.BaseURL)
	}
	if c.API.RequestTimeout < 0 {
		return fmt.Errorf("api.request_timeout должно быть неотрицательным (0 для отсутствия ограничений)")
	}

	if c.Summaries.PollInterval <= 0 {
		return fmt.Errorf("summaries.poll_interval должно быть положительным")
	}
	if c.Summaries.WaitTimeout < 0 {
		return fmt.Errorf("summaries.wait_timeout должно быть неотрицательным")
	}
	if c.Summaries.DefaultDays <= 0 {
		return fmt.Errorf("summaries.default_days должно быть положительным")
	}

	if c.Notify.Enabled() && c.Notify.ChatID == 0 {
		return fmt.Errorf("notify.chat_id обязателен, если задан notify.bot_token")
	}

	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port должен быть действительным номером порта (1-65535)")
	}
	if c.Server.ShutdownTimeout <= 0 {
		return fmt.Errorf("server.shutdown_timeout должно быть положительным")
	}
	if c.Server.VerificationCode == "" {
		return fmt.Errorf("server.verification_code не может быть пустым")
	}
	if c.Server.VerificationTTL <= 0 {
		return fmt.Errorf("server.verification_ttl должно быть положительным")
	}
	if c.Server.JobTTL <= 0 {
		return fmt.Errorf("server.job_ttl должно быть положительным")
	}
	if c.Server.JobTimeout < 0 {
		return fmt.Errorf("server.job_timeout должно быть неотрицательным (0 для отсутствия ограничений)")
	}
	if c.Server.CleanupInterval <= 0 {
		return fmt.Errorf("server.cleanup_interval должно быть положительным")
	}

	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
		// all good
	default:
		return fmt.Errorf("logging.level должен быть одним из: debug, info, warn, error")
	}

	switch c.Logging.Format {
	case "text", "json":
	default:
		return fmt.Errorf("logging.format должен быть одним из: text, json")
	}

	return nil
}

// getEnv извлекает значение переменной окружения или возвращает значение по умолчанию, если она не установлена
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
