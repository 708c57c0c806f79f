package config

import (
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/adelgado/vsetrack/internal/domain"
)

// Config es la configuración completa del tracker.
type Config struct {
	Competition CompetitionConfig `yaml:"competition"`
	Source      SourceConfig      `yaml:"source"`
	Scraper     ScraperConfig     `yaml:"scraper"`
	Publish     PublishConfig     `yaml:"publish"`
	Storage     StorageConfig     `yaml:"storage"`
	Log         LogConfig         `yaml:"log"`
}

// CompetitionConfig identifica el juego y sus participantes.
type CompetitionConfig struct {
	GameURI      string               `yaml:"game_uri"`
	Participants []domain.Participant `yaml:"participants"`
}

// SourceConfig contiene los base URLs del upstream y la credencial.
// La cookie nunca va en el YAML: se inyecta vía VSE_AUTH_COOKIE (o .env).
type SourceConfig struct {
	APIBase    string `yaml:"api_base"`
	SiteBase   string `yaml:"site_base"`
	AuthCookie string `yaml:"-"`
}

// ScraperConfig controla el comportamiento del ciclo.
type ScraperConfig struct {
	IntervalSeconds  int    `yaml:"interval_seconds"`
	RequestDelayMS   int    `yaml:"request_delay_ms"`
	FetchWorkers     int    `yaml:"fetch_workers"`
	FeedMax          int    `yaml:"feed_max"`
	RunBudgetSeconds int    `yaml:"run_budget_seconds"`
	Timezone         string `yaml:"timezone"`
}

// PublishConfig controla el store remoto y el backup local.
type PublishConfig struct {
	RedisAddr  string `yaml:"redis_addr"`
	Key        string `yaml:"key"`
	Channel    string `yaml:"channel"`
	BackupPath string `yaml:"backup_path"`
}

// StorageConfig controla dónde se persiste el log de transacciones.
type StorageConfig struct {
	DSN string `yaml:"dsn"` // ruta al archivo SQLite, o ":memory:"
}

// LogConfig controla el formato y nivel de logging.
type LogConfig struct {
	Level  string `yaml:"level"`  // debug | info | warn | error
	Format string `yaml:"format"` // text | json
}

// Load carga la configuración desde el archivo YAML y el archivo .env si
// existe. Las variables de entorno sobreescriben el YAML para las keys
// que correspondan; la cookie solo existe como variable de entorno.
func Load(path string) (*Config, error) {
	// Cargar .env si existe (silencia error si no hay archivo)
	_ = godotenv.Load()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config.Load: read %q: %w", path, err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("config.Load: parse YAML: %w", err)
	}

	applyEnvOverrides(&cfg)
	setDefaults(&cfg)

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// ScanInterval devuelve el intervalo entre ciclos como time.Duration.
func (c *Config) ScanInterval() time.Duration {
	return time.Duration(c.Scraper.IntervalSeconds) * time.Second
}

// RequestDelay devuelve el delay mínimo entre requests al upstream.
func (c *Config) RequestDelay() time.Duration {
	return time.Duration(c.Scraper.RequestDelayMS) * time.Millisecond
}

// RunBudget devuelve el deadline de un ciclo completo.
func (c *Config) RunBudget() time.Duration {
	return time.Duration(c.Scraper.RunBudgetSeconds) * time.Second
}

// validate comprueba lo imprescindible antes de tocar la red.
func (c *Config) validate() error {
	if c.Competition.GameURI == "" {
		return fmt.Errorf("config.Load: game_uri is required: %w", domain.ErrConfig)
	}
	return nil
}

// applyEnvOverrides sobreescribe valores con variables de entorno si
// están presentes.
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("VSE_AUTH_COOKIE"); v != "" {
		cfg.Source.AuthCookie = v
	}
	if v := os.Getenv("REDIS_ADDR"); v != "" {
		cfg.Publish.RedisAddr = v
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.Log.Level = v
	}
	if v := os.Getenv("LOG_FORMAT"); v != "" {
		cfg.Log.Format = v
	}
}

// setDefaults asegura que los valores requeridos tengan valores sensatos.
func setDefaults(cfg *Config) {
	if cfg.Scraper.IntervalSeconds <= 0 {
		cfg.Scraper.IntervalSeconds = 300 // 5 minutos
	}
	if cfg.Scraper.RequestDelayMS <= 0 {
		cfg.Scraper.RequestDelayMS = 500
	}
	if cfg.Scraper.FetchWorkers <= 0 {
		cfg.Scraper.FetchWorkers = 3
	}
	if cfg.Scraper.FeedMax <= 0 {
		cfg.Scraper.FeedMax = 50
	}
	if cfg.Scraper.RunBudgetSeconds <= 0 {
		cfg.Scraper.RunBudgetSeconds = 240
	}
	if cfg.Scraper.Timezone == "" {
		cfg.Scraper.Timezone = "America/New_York"
	}
	if cfg.Publish.RedisAddr == "" {
		cfg.Publish.RedisAddr = "localhost:6379"
	}
	if cfg.Publish.Key == "" {
		cfg.Publish.Key = "competition:" + cfg.Competition.GameURI + ":snapshot"
	}
	if cfg.Publish.Channel == "" {
		cfg.Publish.Channel = "competition:" + cfg.Competition.GameURI + ":updates"
	}
	if cfg.Publish.BackupPath == "" {
		cfg.Publish.BackupPath = "competition_data.json"
	}
	if cfg.Storage.DSN == "" {
		cfg.Storage.DSN = "vsetrack.db"
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "text"
	}
}
