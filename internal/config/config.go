package config

import (
	"bytes"
	_ "embed"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

//go:embed defaults.yaml
var defaults []byte

// ---- Root ----

type Config struct {
	Log        LogConfig       `mapstructure:"log"`
	HTTP       HTTPConfig      `mapstructure:"http"`
	MySQL      DatabaseConfig  `mapstructure:"mysql"`
	ClickHouse DatabaseConfig  `mapstructure:"clickhouse"`
	Redis      RedisConfig     `mapstructure:"redis"`
	Kafka      KafkaConfig     `mapstructure:"kafka"`
	Upstream   UpstreamConfig  `mapstructure:"upstream"`
	Jokes      JokesConfig     `mapstructure:"jokes"`
	News       NewsConfig      `mapstructure:"news"`
	Mail       MailConfig      `mapstructure:"mail"`
	Gateway    GatewayConfig   `mapstructure:"gateway"`
	Worker     WorkerConfig    `mapstructure:"worker"`
	RateLimit  RateLimitConfig `mapstructure:"rate_limit"`
	Auth       AuthConfig      `mapstructure:"auth"`
}

// ---- Leaf structs ----

type LogConfig struct {
	Level    string `mapstructure:"level"`
	Encoding string `mapstructure:"encoding"`
}

type HTTPConfig struct {
	ContentAddr  string `mapstructure:"content_addr"`
	NotifierAddr string `mapstructure:"notifier_addr"`
	GatewayAddr  string `mapstructure:"gateway_addr"`
}

type DatabaseConfig struct {
	DSN             string        `mapstructure:"dsn"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
	ConnMaxIdleTime time.Duration `mapstructure:"conn_max_idletime"`
	PingTimeout     time.Duration `mapstructure:"ping_timeout"`
}

type RedisConfig struct {
	Addr        string        `mapstructure:"addr"`
	Password    string        `mapstructure:"password"`
	DB          int           `mapstructure:"db"`
	DialTimeout time.Duration `mapstructure:"dial_timeout"`
}

type KafkaConfig struct {
	Brokers        []string `mapstructure:"brokers"`
	GroupID        string   `mapstructure:"group_id"`
	NotifyTopic    string   `mapstructure:"notify_topic"`
	MinBytes       int      `mapstructure:"min_bytes"`
	MaxBytes       int      `mapstructure:"max_bytes"`
	CommitInterval int      `mapstructure:"commit_interval_ms"`
}

// EndpointConfig describes one third-party HTTP API.
type EndpointConfig struct {
	BaseURL   string `mapstructure:"base_url"`
	Path      string `mapstructure:"path"`
	APIKey    string `mapstructure:"api_key"`
	APIHost   string `mapstructure:"api_host"`
	TimeoutMs int    `mapstructure:"timeout_ms"`
}

func (e EndpointConfig) Timeout() time.Duration {
	if e.TimeoutMs <= 0 {
		return 5 * time.Second
	}
	return time.Duration(e.TimeoutMs) * time.Millisecond
}

type UpstreamConfig struct {
	JokeAPI       EndpointConfig `mapstructure:"joke_api"`
	FallbackJokes EndpointConfig `mapstructure:"fallback_jokes"`
	News          EndpointConfig `mapstructure:"news"`
	EmailCheck    EndpointConfig `mapstructure:"email_check"`
	Paraphrase    EndpointConfig `mapstructure:"paraphrase"`
	Scrape        EndpointConfig `mapstructure:"scrape"`
	Content       EndpointConfig `mapstructure:"content"`
	Notifier      EndpointConfig `mapstructure:"notifier"`
}

type JokesConfig struct {
	DefaultCategory    string   `mapstructure:"default_category"`
	BlacklistFlags     []string `mapstructure:"blacklist_flags"`
	IDRange            string   `mapstructure:"id_range"`
	Contains           string   `mapstructure:"contains"`
	StrictPrimaryParse bool     `mapstructure:"strict_primary_parse"`
}

type NewsConfig struct {
	DefaultCategory string `mapstructure:"default_category"`
	GeneralPath     string `mapstructure:"general_path"`
	CategoryPath    string `mapstructure:"category_path"`
	Region          string `mapstructure:"region"`
	MaxResults      int    `mapstructure:"max_results"`
}

type BreakerConfig struct {
	FailThreshold int `mapstructure:"fail_threshold" yaml:"fail_threshold"`
	OpenForMs     int `mapstructure:"open_for_ms"    yaml:"open_for_ms"`
}

type MailProviderConfig struct {
	Name      string        `mapstructure:"name"`
	Kind      string        `mapstructure:"kind"` // sendgrid | smtp | log
	Enabled   bool          `mapstructure:"enabled"`
	BaseURL   string        `mapstructure:"base_url"`
	APIKey    string        `mapstructure:"api_key"`
	Host      string        `mapstructure:"host"`
	Port      int           `mapstructure:"port"`
	User      string        `mapstructure:"user"`
	Pass      string        `mapstructure:"pass"`
	TimeoutMs int           `mapstructure:"timeout_ms"`
	Breaker   BreakerConfig `mapstructure:"breaker"`
}

type MailConfig struct {
	From      string               `mapstructure:"from"`
	Providers []MailProviderConfig `mapstructure:"providers"`
}

type GatewayConfig struct {
	BroadcastInterval time.Duration `mapstructure:"broadcast_interval"`
	StatusInterval    time.Duration `mapstructure:"status_interval"`
	SubscribersKey    string        `mapstructure:"subscribers_key"`
}

type WorkerConfig struct {
	Count int `mapstructure:"count"`
}

type RateLimitConfig struct {
	RPS   int `mapstructure:"rps"`
	Burst int `mapstructure:"burst"`
}

type AuthConfig struct {
	APIKeys []string `mapstructure:"api_keys"`
}

// Load reads embedded defaults, merges user YAML (if provided), and applies env overrides (CONTENTGW_*).
// A .env file in the working directory is loaded first when present.
func Load(path string) (Config, error) {
	_ = godotenv.Load()

	v := viper.New()

	// embedded defaults
	v.SetConfigType("yaml")
	if err := v.ReadConfig(bytes.NewReader(defaults)); err != nil {
		return Config{}, err
	}

	if path != "" {
		v.SetConfigFile(path)
		_ = v.MergeInConfig()
	}

	// env override (CONTENTGW_UPSTREAM_JOKE_API_API_KEY, ...)
	v.SetEnvPrefix("CONTENTGW")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, err
	}

	// list entries are not reachable through AutomaticEnv
	for i := range cfg.Mail.Providers {
		applyProviderEnv(&cfg.Mail.Providers[i])
	}
	return cfg, nil
}

// applyProviderEnv reads CONTENTGW_MAIL_<NAME>_{API_KEY,USER,PASS}.
func applyProviderEnv(p *MailProviderConfig) {
	prefix := "CONTENTGW_MAIL_" + strings.ToUpper(strings.ReplaceAll(p.Name, "-", "_")) + "_"
	if s := os.Getenv(prefix + "API_KEY"); s != "" {
		p.APIKey = s
	}
	if s := os.Getenv(prefix + "USER"); s != "" {
		p.User = s
	}
	if s := os.Getenv(prefix + "PASS"); s != "" {
		p.Pass = s
	}
}
