package config

import (
	"fmt"
	"log"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// AppConfig описывает конфигурацию сервисов.
type AppConfig struct {
	AppEnv       string   `envconfig:"APP_ENV" default:"dev"`
	Port         int      `envconfig:"PORT" default:"8080"`
	MetricsAddr  string   `envconfig:"METRICS_ADDR" default:":9090"`
	AllowOrigins []string `envconfig:"ALLOW_ORIGINS" default:"*"`

	PGDSN      string `envconfig:"PG_DSN"`
	SQLitePath string `envconfig:"SQLITE_PATH" default:"quiz.db"`

	RedisAddr string `envconfig:"REDIS_ADDR"`

	Fetch struct {
		Timeout   time.Duration `envconfig:"FETCH_TIMEOUT" default:"15s"`
		UserAgent string        `envconfig:"FETCH_USER_AGENT" default:"wiki-quiz/1.0 (+https://github.com/wiki-quiz)"`
		MaxBytes  int64         `envconfig:"FETCH_MAX_BYTES" default:"10485760"`
	} `envconfig:""`

	Gemini struct {
		APIKey string `envconfig:"GOOGLE_API_KEY"`
		Model  string `envconfig:"GEMINI_MODEL" default:"gemini-2.0-flash"`
	} `envconfig:""`

	OpenAI struct {
		APIKey  string `envconfig:"OPENAI_API_KEY"`
		BaseURL string `envconfig:"OPENAI_BASE_URL"`
		Model   string `envconfig:"OPENAI_MODEL" default:"gpt-4.1-mini"`
	} `envconfig:""`

	LLMTimeout time.Duration `envconfig:"LLM_TIMEOUT" default:"30s"`
	LockTTL    time.Duration `envconfig:"QUIZ_LOCK_TTL" default:"2m"`
}

// Addr возвращает адрес HTTP сервера.
func (c AppConfig) Addr() string {
	return fmt.Sprintf(":%d", c.Port)
}

// UsePostgres сообщает, настроено ли хранилище Postgres.
func (c AppConfig) UsePostgres() bool {
	return c.PGDSN != ""
}

// Parse читает конфиг из окружения.
func Parse() (AppConfig, error) {
	var cfg AppConfig
	if err := envconfig.Process("", &cfg); err != nil {
		return AppConfig{}, err
	}
	return cfg, nil
}

// Load загружает .env (если есть) и конфиг из окружения.
func Load() AppConfig {
	_ = godotenv.Load()
	cfg, err := Parse()
	if err != nil {
		log.Fatalf("не удалось загрузить конфиг: %v", err)
	}
	return cfg
}
