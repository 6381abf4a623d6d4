package config

import (
	"log/slog"
	"net"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

// Translator backends
const (
	TranslatorMyMemory = "mymemory"
	TranslatorOpenAI   = "openai"
	TranslatorNone     = "none"
)

// Sentiment backends
const (
	SentimentVADER       = "vader"
	SentimentHuggingFace = "huggingface"
)

// Store drivers
const (
	StorePostgres = "postgres"
	StoreSQLite   = "sqlite"
	StoreDynamoDB = "dynamodb"
)

type Logging struct {
	Dir   string
	Level string
}

type Translation struct {
	Backend        string
	MyMemoryEmail  string
	OpenAIKey      string
	OpenAIModel    string
	ValkeyAddress  string
	ValkeyPassword string
	ValkeyTLS      bool
}

type Sentiment struct {
	Backend   string
	HFToken   string
	Endpoint  string
	BatchSize int
}

type Store struct {
	Driver        string
	SQLitePath    string
	DBHost        string
	DBPort        string
	DBUser        string
	DBPassword    string
	DBName        string
	AWSEndpoint   string
	AWSRegion     string
	DynamoDBTable string
}

type Themes struct {
	MatchPolicy string
	RulesFile   string
}

type Scraping struct {
	MaxReviews int
	Lang       string
	Country    string
	RetryDelay time.Duration
}

// Config holds every setting a stage needs. Values come from the environment
// (optionally seeded by LoadEnv) with defaults applied by Load.
type Config struct {
	Env         string
	DataDir     string
	Logging     Logging
	Translation Translation
	Sentiment   Sentiment
	Store       Store
	Themes      Themes
	Scraping    Scraping
}

// Load reads the configuration from the environment.
func Load() *Config {
	cfg := &Config{
		Env:     AppEnv(),
		DataDir: stringOr("DATA_DIR", "./data"),
		Logging: Logging{
			Dir:   lookup("LOG_DIR"),
			Level: stringOr("LOG_LEVEL", "info"),
		},
		Translation: Translation{
			Backend:        strings.ToLower(stringOr("TRANSLATOR", TranslatorMyMemory)),
			MyMemoryEmail:  lookup("MYMEMORY_EMAIL"),
			OpenAIKey:      lookup("OPENAI_API_KEY"),
			OpenAIModel:    stringOr("OPENAI_MODEL", "gpt-4o-mini"),
			ValkeyAddress:  lookup("VALKEY_INIT_ADDRESS"),
			ValkeyPassword: lookup("VALKEY_PASSWORD"),
			ValkeyTLS:      boolOr("VALKEY_TLS", false),
		},
		Sentiment: Sentiment{
			Backend:   strings.ToLower(stringOr("SENTIMENT_BACKEND", SentimentVADER)),
			HFToken:   lookup("HF_API_TOKEN"),
			Endpoint:  lookup("HF_SENTIMENT_ENDPOINT"),
			BatchSize: intOr("SENTIMENT_BATCH_SIZE", 32),
		},
		Store: Store{
			Driver:        strings.ToLower(stringOr("STORE_DRIVER", StoreSQLite)),
			SQLitePath:    lookup("SQLITE_PATH"),
			DBHost:        stringOr("DB_HOST", "localhost"),
			DBPort:        stringOr("DB_PORT", "5432"),
			DBUser:        lookup("DB_USER"),
			DBPassword:    lookup("DB_PASSWORD"),
			DBName:        stringOr("DB_NAME", "bank_reviews"),
			AWSEndpoint:   lookup("AWS_ENDPOINT"),
			AWSRegion:     stringOr("AWS_REGION", "us-west-2"),
			DynamoDBTable: stringOr("DYNAMODB_TABLE", "Reviews"),
		},
		Themes: Themes{
			MatchPolicy: strings.ToLower(stringOr("THEME_MATCH_POLICY", "substring")),
			RulesFile:   lookup("THEME_RULES_FILE"),
		},
		Scraping: Scraping{
			MaxReviews: intOr("SCRAPE_MAX_REVIEWS", 1000),
			Lang:       stringOr("SCRAPE_LANG", "en"),
			Country:    stringOr("SCRAPE_COUNTRY", "et"),
			RetryDelay: durationOr("SCRAPE_RETRY_DELAY", 5*time.Second),
		},
	}

	if cfg.Store.SQLitePath == "" {
		cfg.Store.SQLitePath = filepath.Join(cfg.DataDir, "bank_reviews.sqlite")
	}
	if cfg.Sentiment.BatchSize <= 0 {
		cfg.Sentiment.BatchSize = 32
	}

	return cfg
}

// PostgresDSN builds the connection string from the DB_* variables.
func (s Store) PostgresDSN() string {
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(s.DBUser, s.DBPassword),
		Host:     net.JoinHostPort(s.DBHost, s.DBPort),
		Path:     "/" + s.DBName,
		RawQuery: "sslmode=disable",
	}
	return u.String()
}

// Directory layout shared by the stages.
func (c *Config) RawDir() string { return filepath.Join(c.DataDir, "raw") }
func (c *Config) ProcessedDir() string { return filepath.Join(c.DataDir, "processed") }
func (c *Config) ThematicDir() string { return filepath.Join(c.DataDir, "thematically_analyzed") }
func (c *Config) SentimentDir() string { return filepath.Join(c.DataDir, "analyzed") }
func (c *Config) InsightsDir() string { return filepath.Join(c.DataDir, "insights") }
func (c *Config) DataQualityDir() string { return filepath.Join(c.InsightsDir(), "data_quality") }

func lookup(key string) string {
	return strings.TrimSpace(os.Getenv(key))
}

func stringOr(key, def string) string {
	if v := lookup(key); v != "" {
		return v
	}
	return def
}

func intOr(key string, def int) int {
	v := lookup(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		slog.Warn("[Config] Invalid integer, using default",
			slog.String("key", key),
			slog.String("value", v),
			slog.Int("default", def))
		return def
	}
	return n
}

func boolOr(key string, def bool) bool {
	v := lookup(key)
	if v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		slog.Warn("[Config] Invalid boolean, using default",
			slog.String("key", key),
			slog.String("value", v))
		return def
	}
	return b
}

func durationOr(key string, def time.Duration) time.Duration {
	v := lookup(key)
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		slog.Warn("[Config] Invalid duration, using default",
			slog.String("key", key),
			slog.String("value", v),
			slog.Duration("default", def))
		return def
	}
	return d
}
