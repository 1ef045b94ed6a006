package config

import (
	"errors"
	"fmt"
	"maps"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"NewsBriefing/internal/domain"
	"NewsBriefing/internal/scanner"
)

const (
	defaultTimezone   = "Europe/Rome"
	defaultConfigPath = "config/sources.yaml"
	configPathEnv     = "NEWSBRIEFING_CONFIG"
	databaseDSNEnv    = "DATABASE_DSN"
	braveAPIKeyEnv    = "BRAVE_API_KEY"
	webhookURLEnv     = "ALERT_WEBHOOK_URL"
	telegramTokenEnv  = "TELEGRAM_BOT_TOKEN"
	telegramChatIDEnv = "TELEGRAM_CHAT_ID"
	logLevelEnv       = "LOG_LEVEL"
)

// ConfigError reports a missing or invalid configuration.
type ConfigError struct {
	Path string
	Err  error
}

func (e *ConfigError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("config: %v", e.Err)
	}
	return fmt.Sprintf("config %s: %v", e.Path, e.Err)
}

func (e *ConfigError) Unwrap() error { return e.Err }

// Config holds the source catalogue and every runtime setting.
type Config struct {
	Timezone  string          `yaml:"timezone"`
	City      string          `yaml:"city"`
	Database  DatabaseConfig  `yaml:"database"`
	Output    OutputConfig    `yaml:"output"`
	Logging   LoggingConfig   `yaml:"logging"`
	HTTP      HTTPConfig      `yaml:"http"`
	Search    SearchConfig    `yaml:"search"`
	Scheduler SchedulerConfig `yaml:"scheduler"`
	Alerts    AlertConfig     `yaml:"alerts"`
	Ops       OpsConfig       `yaml:"ops"`
	Weather   WeatherConfig   `yaml:"weather"`
	Render    RenderConfig    `yaml:"render"`

	Strikes     SectionConfig `yaml:"strikes"`
	ItalianNews SectionConfig `yaml:"italian_news"`
	WorldNews   SectionConfig `yaml:"world_news"`
	AINews      SectionConfig `yaml:"ai_news"`
	MilanEvents SectionConfig `yaml:"milan_events"`

	location *time.Location
	// fileValues holds what the YAML said for fields an env var replaced.
	fileValues map[string]string
}

// DatabaseConfig points at the dedup store. A postgres:// DSN selects Postgres, anything else is a SQLite path.
type DatabaseConfig struct {
	DSN string `yaml:"dsn"`
}

// OutputConfig controls where artifacts are written.
type OutputConfig struct {
	Dir string `yaml:"dir"`
}

// LoggingConfig selects slog level and handler format.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// HTTPConfig bounds every upstream request.
type HTTPConfig struct {
	Timeout   time.Duration `yaml:"timeout"`
	UserAgent string        `yaml:"user_agent"`
}

// SearchConfig configures the web search backends. The API key is env-only.
type SearchConfig struct {
	Endpoint    string `yaml:"endpoint"`
	FallbackURL string `yaml:"fallback_url"`
	APIKey      string `yaml:"-"`
}

// SchedulerConfig defines when serve mode triggers a run.
type SchedulerConfig struct {
	CronExpression string `yaml:"cron_expression"`
}

// AlertConfig wires outbound operational notifications.
type AlertConfig struct {
	WebhookURL string         `yaml:"webhook_url"`
	OnSuccess  bool           `yaml:"on_success"`
	Telegram   TelegramConfig `yaml:"telegram"`
}

// TelegramConfig carries bot credentials; the token is env-only.
type TelegramConfig struct {
	BotToken string `yaml:"-"`
	ChatID   string `yaml:"chat_id"`
}

// OpsConfig drives the daily wrapper around the pipeline.
type OpsConfig struct {
	MaxRetries      int           `yaml:"max_retries"`
	RetryDelay      time.Duration `yaml:"retry_delay"`
	PrecheckTimeout time.Duration `yaml:"precheck_timeout"`
	SkipPrecheck    bool          `yaml:"skip_precheck"`
	AutoDegrade     bool          `yaml:"auto_degrade"`
}

// WeatherConfig locates the forecast.
type WeatherConfig struct {
	Endpoint  string  `yaml:"endpoint"`
	Latitude  float64 `yaml:"latitude"`
	Longitude float64 `yaml:"longitude"`
}

// RenderConfig holds layout defaults.
type RenderConfig struct {
	DefaultLayout string   `yaml:"default_layout"`
	SectionOrder  []string `yaml:"section_order"`
}

// SectionConfig configures one section's sources and recency policy.
type SectionConfig struct {
	Count         int      `yaml:"count"`
	OnlyToday     bool     `yaml:"only_today"`
	FallbackDays  int      `yaml:"fallback_days"`
	LookaheadDays int      `yaml:"lookahead_days,omitempty"`
	Sources       []Source `yaml:"sources"`
}

// Source is a SourceSpec with its parser variant resolved at load time.
type Source struct {
	domain.SourceSpec `yaml:",inline"`
	Kind              scanner.Kind `yaml:"-"`
}

// Location returns the report time zone.
func (c Config) Location() *time.Location {
	if c.location != nil {
		return c.location
	}
	loc, err := time.LoadLocation(defaultTimezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// Section returns the configuration of one section, nil when unknown.
func (c *Config) Section(s domain.Section) *SectionConfig {
	switch s {
	case domain.SectionStrikes:
		return &c.Strikes
	case domain.SectionItalianNews:
		return &c.ItalianNews
	case domain.SectionWorldNews:
		return &c.WorldNews
	case domain.SectionAINews:
		return &c.AINews
	case domain.SectionMilanEvents:
		return &c.MilanEvents
	}
	return nil
}

// Clone returns a deep copy; mutating sources of the copy leaves c untouched.
func (c Config) Clone() Config {
	out := c
	out.fileValues = maps.Clone(c.fileValues)
	out.Render.SectionOrder = append([]string(nil), c.Render.SectionOrder...)
	for _, s := range domain.AllSections {
		sec := out.Section(s)
		sec.Sources = append([]Source(nil), sec.Sources...)
	}
	return out
}

// Path resolves the config path from the argument, the environment and the default.
func Path(arg string) string {
	if arg != "" {
		return arg
	}
	if v := os.Getenv(configPathEnv); v != "" {
		return v
	}
	return defaultConfigPath
}

// Load reads YAML configuration, applies environment overrides and resolves parsers.
func Load(path string) (Config, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return Config{}, &ConfigError{Path: path, Err: err}
	}

	cfg, err := Parse(raw)
	if err != nil {
		var cerr *ConfigError
		if errors.As(err, &cerr) {
			cerr.Path = path
			return Config{}, cerr
		}
		return Config{}, &ConfigError{Path: path, Err: err}
	}
	return cfg, nil
}

// Parse decodes YAML on top of the defaults and validates the result.
func Parse(raw []byte) (Config, error) {
	cfg := defaultConfig()
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return Config{}, &ConfigError{Err: fmt.Errorf("parse yaml: %w", err)}
	}

	cfg.applyEnvOverrides()
	if err := cfg.bindTimezone(); err != nil {
		return Config{}, &ConfigError{Err: err}
	}
	if err := cfg.resolveSources(); err != nil {
		return Config{}, &ConfigError{Err: err}
	}
	return cfg, nil
}

// Save writes cfg as YAML, creating parent directories.
// Values that came from environment variables are written as the file had them.
func Save(path string, cfg Config) error {
	raw, err := yaml.Marshal(cfg.withFileValues())
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}
	if err := os.WriteFile(path, raw, 0o644); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}

// ErrDuplicateSource is returned by AddSource for a name already in the section.
var ErrDuplicateSource = errors.New("source already exists")

// ErrSourceNotFound is returned by RemoveSource for an unknown name.
var ErrSourceNotFound = errors.New("source not found")

// Edit loads the file without environment overrides, applies fn and saves
// the result once it still validates. Secrets from the environment never
// reach the file.
func Edit(path string, fn func(*Config) error) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return &ConfigError{Path: path, Err: err}
	}
	cfg := defaultConfig()
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return &ConfigError{Path: path, Err: fmt.Errorf("parse yaml: %w", err)}
	}
	if err := fn(&cfg); err != nil {
		return err
	}
	if err := cfg.bindTimezone(); err != nil {
		return &ConfigError{Path: path, Err: err}
	}
	if err := cfg.resolveSources(); err != nil {
		return &ConfigError{Path: path, Err: err}
	}
	return Save(path, cfg)
}

// AddSource appends src to section. Names are unique within a section.
func (c *Config) AddSource(section domain.Section, src domain.SourceSpec) error {
	sec := c.Section(section)
	if sec == nil {
		return fmt.Errorf("unknown section %q", section)
	}
	for _, existing := range sec.Sources {
		if strings.EqualFold(existing.Name, src.Name) {
			return fmt.Errorf("%w: %s/%s", ErrDuplicateSource, section, src.Name)
		}
	}
	kind, err := scanner.Resolve(section, src)
	if err != nil {
		return fmt.Errorf("section %s source %s: %w", section, src.Name, err)
	}
	sec.Sources = append(sec.Sources, Source{SourceSpec: src, Kind: kind})
	return nil
}

// RemoveSource drops the named source from section.
func (c *Config) RemoveSource(section domain.Section, name string) error {
	sec := c.Section(section)
	if sec == nil {
		return fmt.Errorf("unknown section %q", section)
	}
	for i, existing := range sec.Sources {
		if strings.EqualFold(existing.Name, name) {
			sec.Sources = append(sec.Sources[:i:i], sec.Sources[i+1:]...)
			return nil
		}
	}
	return fmt.Errorf("%w: %s/%s", ErrSourceNotFound, section, name)
}

func (c *Config) applyEnvOverrides() {
	c.fileValues = nil

	if v := os.Getenv(databaseDSNEnv); v != "" {
		c.override(databaseDSNEnv, v)
	}

	if v := os.Getenv(braveAPIKeyEnv); v != "" {
		c.Search.APIKey = v
	}

	if v := os.Getenv(webhookURLEnv); v != "" {
		c.override(webhookURLEnv, v)
	}

	if v := os.Getenv(telegramTokenEnv); v != "" {
		c.Alerts.Telegram.BotToken = v
	}

	if v := os.Getenv(telegramChatIDEnv); v != "" {
		c.override(telegramChatIDEnv, v)
	}

	if v := os.Getenv(logLevelEnv); v != "" {
		c.override(logLevelEnv, v)
	}
}

// override sets the field bound to env and remembers the file's value.
func (c *Config) override(env, value string) {
	field := c.envField(env)
	if c.fileValues == nil {
		c.fileValues = make(map[string]string)
	}
	c.fileValues[env] = *field
	*field = value
}

func (c *Config) envField(env string) *string {
	switch env {
	case databaseDSNEnv:
		return &c.Database.DSN
	case webhookURLEnv:
		return &c.Alerts.WebhookURL
	case telegramChatIDEnv:
		return &c.Alerts.Telegram.ChatID
	default:
		return &c.Logging.Level
	}
}

// withFileValues undoes env overrides so a saved file only carries what a
// file already held.
func (c Config) withFileValues() Config {
	for env, value := range c.fileValues {
		*c.envField(env) = value
	}
	c.fileValues = nil
	return c
}

func (c *Config) bindTimezone() error {
	tz := strings.TrimSpace(c.Timezone)
	if tz == "" {
		tz = defaultTimezone
	}
	loc, err := time.LoadLocation(tz)
	if err != nil {
		return fmt.Errorf("unknown timezone %s: %w", tz, err)
	}
	c.Timezone = tz
	c.location = loc
	return nil
}

func (c *Config) resolveSources() error {
	for _, s := range domain.AllSections {
		sec := c.Section(s)
		for i := range sec.Sources {
			src := &sec.Sources[i]
			src.URL = strings.TrimSpace(src.URL)
			if src.Name == "" {
				src.Name = "unknown"
			}
			kind, err := scanner.Resolve(s, src.SourceSpec)
			if err != nil {
				return fmt.Errorf("section %s source %s: %w", s, src.Name, err)
			}
			src.Kind = kind
		}
	}
	return nil
}

func defaultConfig() Config {
	news := func(onlyToday bool, fallback int) SectionConfig {
		return SectionConfig{Count: 5, OnlyToday: onlyToday, FallbackDays: fallback}
	}
	return Config{
		Timezone: defaultTimezone,
		City:     "Milan",
		Database: DatabaseConfig{DSN: "data/briefing.db"},
		Output:   OutputConfig{Dir: "output"},
		Logging:  LoggingConfig{Level: "info", Format: "text"},
		HTTP:     HTTPConfig{Timeout: 15 * time.Second, UserAgent: "newsbriefing/1.0"},
		Search: SearchConfig{
			Endpoint:    "https://api.search.brave.com/res/v1/web/search",
			FallbackURL: "https://html.duckduckgo.com/html/",
		},
		Scheduler: SchedulerConfig{CronExpression: "0 7 * * *"},
		Ops: OpsConfig{
			MaxRetries:      2,
			RetryDelay:      2 * time.Minute,
			PrecheckTimeout: 12 * time.Second,
			AutoDegrade:     true,
		},
		Weather: WeatherConfig{
			Endpoint:  "https://api.open-meteo.com/v1/forecast",
			Latitude:  45.4642,
			Longitude: 9.19,
		},
		Render: RenderConfig{
			DefaultLayout: "classic",
			SectionOrder:  []string{"weather", "strikes", "italian_news", "world_news", "ai_news", "milan_events"},
		},
		Strikes:     SectionConfig{LookaheadDays: 20},
		ItalianNews: news(false, 2),
		WorldNews:   news(false, 2),
		AINews:      news(false, 2),
		MilanEvents: news(false, 2),
	}
}
