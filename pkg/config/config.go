package config

import (
	_ "embed"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/pelletier/go-toml/v2"
	"github.com/rubiojr/kashif/pkg/paginate"
)

//go:embed config.toml.sample
var configTemplate string

// Environment variables that override values from the config file.
const (
	EnvBotToken      = "KASHIF_BOT_TOKEN"
	EnvOwnerID       = "KASHIF_OWNER_ID"
	EnvRedisAddr     = "KASHIF_REDIS_ADDR"
	EnvRedisPassword = "KASHIF_REDIS_PASSWORD"
)

// Cache backends.
const (
	CacheRedis  = "redis"
	CacheBadger = "badger"
	CacheNone   = "none"
)

type Config struct {
	StorageDir    string      `toml:"storage_dir"`
	DBName        string      `toml:"db_name"`
	CorpusFile    string      `toml:"corpus_file"`
	Debug         bool        `toml:"debug"`
	DebugServices []string    `toml:"debug_services,omitempty"`
	Bot           BotConfig   `toml:"bot"`
	Cache         CacheConfig `toml:"cache"`
	Index         IndexConfig `toml:"index"`
	HTTP          HTTPConfig  `toml:"http"`
}

type BotConfig struct {
	Token        string   `toml:"token"`
	OwnerID      int64    `toml:"owner_id"`
	TriggerWords []string `toml:"trigger_words"`
	// MaxMessageLength is the chunk budget used by the paginator.
	MaxMessageLength int `toml:"max_message_length"`
	// HardMessageLimit is the transport cap a composed message must never exceed.
	HardMessageLimit    int      `toml:"hard_message_limit"`
	SnippetContextWords int      `toml:"snippet_context_words"`
	MaxListResults      int      `toml:"max_list_results"`
	Workers             int      `toml:"workers"`
	PaginationTTL       Duration `toml:"pagination_ttl"`
	SendTimeout         Duration `toml:"send_timeout"`
	ChannelURL          string   `toml:"channel_url"`
	DeveloperURL        string   `toml:"developer_url"`
	DeveloperName       string   `toml:"developer_name"`
}

type CacheConfig struct {
	Backend       string   `toml:"backend"`
	RedisAddr     string   `toml:"redis_addr"`
	RedisPassword string   `toml:"redis_password"`
	RedisDB       int      `toml:"redis_db"`
	BadgerDir     string   `toml:"badger_dir,omitempty"`
	Namespace     string   `toml:"namespace"`
	TTL           Duration `toml:"ttl"`
	Timeout       Duration `toml:"timeout"`
	CacheEmpty    bool     `toml:"cache_empty"`
}

type IndexConfig struct {
	QueryTimeout Duration `toml:"query_timeout"`
}

type HTTPConfig struct {
	Listen string `toml:"listen"`
}

type Duration struct {
	time.Duration
}

func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

func (d *Duration) UnmarshalText(text []byte) error {
	var err error
	d.Duration, err = time.ParseDuration(string(text))
	return err
}

func GetDefaultConfig() (*Config, error) {
	storageDir, err := GetDefaultStorageDir()
	if err != nil {
		return nil, fmt.Errorf("getting default storage directory: %w", err)
	}
	cfg := &Config{StorageDir: storageDir}
	cfg.applyDefaults()
	return cfg, nil
}

// LoadConfig reads configPath (defaults are used when the file does not
// exist), then applies .env and environment overrides.
func LoadConfig(configPath string) (*Config, error) {
	var cfg Config

	if _, err := os.Stat(configPath); err == nil {
		data, err := os.ReadFile(configPath)
		if err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		if err := toml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("unmarshaling config: %w", err)
		}
	} else if !os.IsNotExist(err) {
		return nil, fmt.Errorf("checking config file: %w", err)
	}

	if cfg.StorageDir == "" {
		storageDir, err := GetDefaultStorageDir()
		if err != nil {
			return nil, fmt.Errorf("getting default storage directory: %w", err)
		}
		cfg.StorageDir = storageDir
	}

	// A missing .env file is the common case in production.
	_ = godotenv.Load()
	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}

	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if c.DBName == "" {
		c.DBName = "kashif.db"
	}
	if c.CorpusFile == "" {
		c.CorpusFile = "corpus.json"
	}
	b := &c.Bot
	if len(b.TriggerWords) == 0 {
		b.TriggerWords = []string{"شيعة", "شيعه"}
	}
	if b.MaxMessageLength == 0 {
		b.MaxMessageLength = 4000
	}
	if b.HardMessageLimit == 0 {
		b.HardMessageLimit = 4096
	}
	if b.SnippetContextWords == 0 {
		b.SnippetContextWords = 5
	}
	if b.MaxListResults == 0 {
		b.MaxListResults = 10
	}
	if b.Workers == 0 {
		b.Workers = 16
	}
	if b.PaginationTTL.Duration == 0 {
		b.PaginationTTL = Duration{24 * time.Hour}
	}
	if b.SendTimeout.Duration == 0 {
		b.SendTimeout = Duration{15 * time.Second}
	}
	ca := &c.Cache
	if ca.Backend == "" {
		ca.Backend = CacheRedis
	}
	if ca.RedisAddr == "" {
		ca.RedisAddr = "localhost:6379"
	}
	if ca.BadgerDir == "" {
		ca.BadgerDir = filepath.Join(c.StorageDir, "cache")
	}
	if ca.Namespace == "" {
		ca.Namespace = "hadith_search_unique"
	}
	if ca.TTL.Duration == 0 {
		ca.TTL = Duration{time.Hour}
	}
	if ca.Timeout.Duration == 0 {
		ca.Timeout = Duration{500 * time.Millisecond}
	}
	if c.Index.QueryTimeout.Duration == 0 {
		c.Index.QueryTimeout = Duration{5 * time.Second}
	}
}

func (c *Config) applyEnv() error {
	if v := os.Getenv(EnvBotToken); v != "" {
		c.Bot.Token = v
	}
	if v := os.Getenv(EnvOwnerID); v != "" {
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return fmt.Errorf("parsing %s: %w", EnvOwnerID, err)
		}
		c.Bot.OwnerID = id
	}
	if v := os.Getenv(EnvRedisAddr); v != "" {
		c.Cache.RedisAddr = v
	}
	if v := os.Getenv(EnvRedisPassword); v != "" {
		c.Cache.RedisPassword = v
	}
	return nil
}

// Validate checks values that would break pagination or caching.
func (c *Config) Validate() error {
	switch c.Cache.Backend {
	case CacheRedis, CacheBadger, CacheNone:
	default:
		return fmt.Errorf("unknown cache backend %q", c.Cache.Backend)
	}
	// Continuation pages carry a title on top of a full chunk.
	if need := c.Bot.MaxMessageLength + paginate.MaxTitleLen(); c.Bot.HardMessageLimit < need {
		return fmt.Errorf("hard_message_limit (%d) must be at least max_message_length plus page title room (%d)",
			c.Bot.HardMessageLimit, need)
	}
	if c.Bot.MaxMessageLength < 200 {
		return fmt.Errorf("max_message_length %d is too small", c.Bot.MaxMessageLength)
	}
	return nil
}

// DBPath returns the path of the SQLite index.
func (c *Config) DBPath() string {
	return filepath.Join(c.StorageDir, c.DBName)
}

func (c *Config) SaveConfig(configPath string) error {
	if err := os.MkdirAll(filepath.Dir(configPath), 0755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	data, err := toml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}

	return os.WriteFile(configPath, data, 0644)
}

func (c *Config) SaveTemplateConfig(configPath string) error {
	if err := os.MkdirAll(filepath.Dir(configPath), 0755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	// Replace the placeholder storage_dir with the actual path
	template := strings.Replace(configTemplate, "/home/user/.local/share/kashif", c.StorageDir, 1)
	return os.WriteFile(configPath, []byte(template), 0644)
}

// GetDefaultStorageDir returns the default storage directory for the index
func GetDefaultStorageDir() (string, error) {
	dataDir := os.Getenv("XDG_DATA_HOME")
	if dataDir == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("getting user home directory: %w", err)
		}
		dataDir = filepath.Join(homeDir, ".local", "share")
	}

	dir := filepath.Join(dataDir, "kashif")
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("creating storage directory %s: %w", dir, err)
	}

	return dir, nil
}

// GetConfigDir returns the configuration directory
func GetConfigDir() (string, error) {
	configDir := os.Getenv("XDG_CONFIG_HOME")
	if configDir == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("getting user home directory: %w", err)
		}
		configDir = filepath.Join(homeDir, ".config")
	}

	dir := filepath.Join(configDir, "kashif")
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("creating config directory %s: %w", dir, err)
	}

	return dir, nil
}

// GetDefaultConfigPath returns the default configuration file path
func GetDefaultConfigPath() (string, error) {
	configDir, err := GetConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(configDir, "config.toml"), nil
}
