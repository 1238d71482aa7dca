package config

import (
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"slices"
	"strconv"
	"strings"

	"github.com/go-viper/mapstructure/v2"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	"github.com/wikirace/wikirace/internal/constants"
)

// WikiConfig controls the MediaWiki API client.
type WikiConfig struct {
	// Language selects the Wikipedia edition (e.g. "uk", "en").
	Language string `json:"language,omitempty" yaml:"language,omitempty" toml:"language,omitempty"`
	// APIURL overrides the derived endpoint, mainly for tests.
	APIURL            string `json:"apiUrl,omitempty" yaml:"api_url,omitempty" toml:"api_url,omitempty"`
	LinkLimit         int    `json:"linkLimit,omitempty" yaml:"link_limit,omitempty" toml:"link_limit,omitempty"`
	RequestsPerMinute int    `json:"requestsPerMinute,omitempty" yaml:"requests_per_minute,omitempty" toml:"requests_per_minute,omitempty"`
}

// SearchConfig controls the path search.
type SearchConfig struct {
	Workers int `json:"workers,omitempty" yaml:"workers,omitempty" toml:"workers,omitempty"`
}

// DatabaseConfig points at the PostgreSQL page cache, which the dev stack in
// docker-compose.yml provisions. The password may come from three places, in
// order of precedence: the WIKIRACE_DB_PASSWORD environment variable, a
// secret reference, or the plain value.
type DatabaseConfig struct {
	Host           string `json:"host,omitempty" yaml:"host,omitempty" toml:"host,omitempty"`
	Port           Port   `json:"port,omitempty" yaml:"port,omitempty" toml:"port,omitempty"`
	User           string `json:"user,omitempty" yaml:"user,omitempty" toml:"user,omitempty"`
	Password       string `json:"password,omitempty" yaml:"password,omitempty" toml:"password,omitempty"`
	PasswordSecret string `json:"passwordSecret,omitempty" yaml:"password_secret,omitempty" toml:"password_secret,omitempty"`
	Name           string `json:"name,omitempty" yaml:"name,omitempty" toml:"name,omitempty"`
	SSLMode        string `json:"sslMode,omitempty" yaml:"ssl_mode,omitempty" toml:"ssl_mode,omitempty"`
}

// DSN assembles the pgx connection string.
func (d DatabaseConfig) DSN() string {
	password := d.Password
	if envPassword := os.Getenv(constants.EnvVarDBPassword); envPassword != "" {
		password = envPassword
	}
	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=%s",
		d.User, password, d.Host, d.Port, d.Name, d.SSLMode)
}

// HistoryConfig controls the local run history.
type HistoryConfig struct {
	Keep int `json:"keep,omitempty" yaml:"keep,omitempty" toml:"keep,omitempty"`
}

// Config is the full wikirace configuration.
type Config struct {
	Wiki     WikiConfig     `json:"wiki,omitempty" yaml:"wiki,omitempty" toml:"wiki,omitempty"`
	Search   SearchConfig   `json:"search,omitempty" yaml:"search,omitempty" toml:"search,omitempty"`
	Database DatabaseConfig `json:"database,omitempty" yaml:"database,omitempty" toml:"database,omitempty"`
	History  HistoryConfig  `json:"history,omitempty" yaml:"history,omitempty" toml:"history,omitempty"`
	Env      []EnvVar       `json:"env,omitempty" yaml:"env,omitempty" toml:"env,omitempty"`

	// Format is the detected config format, kept for error messages.
	Format string `json:"-" yaml:"-" toml:"-"`
}

// Normalize fills in defaults for everything the file left out. A missing
// config file normalizes to a fully working setup against the dev stack.
func (c *Config) Normalize() {
	if c.Wiki.Language == "" {
		c.Wiki.Language = constants.DefaultWikiLanguage
	}
	if c.Wiki.LinkLimit == 0 {
		c.Wiki.LinkLimit = constants.DefaultLinkLimit
	}
	if c.Wiki.RequestsPerMinute == 0 {
		c.Wiki.RequestsPerMinute = constants.DefaultRequestsPerMinute
	}
	if c.Search.Workers == 0 {
		c.Search.Workers = constants.DefaultSearchWorkers
	}
	if c.Database.Host == "" {
		c.Database.Host = constants.DefaultDBHost
	}
	if c.Database.Port == "" {
		c.Database.Port = Port(constants.DefaultDBPort)
	}
	if c.Database.User == "" {
		c.Database.User = constants.DefaultDBUser
	}
	if c.Database.Name == "" {
		c.Database.Name = constants.DefaultDBName
	}
	if c.Database.SSLMode == "" {
		c.Database.SSLMode = "disable"
	}
	if c.History.Keep == 0 {
		c.History.Keep = constants.DefaultHistoryToKeep
	}
}

// Default returns a normalized config without reading any file.
func Default() Config {
	var cfg Config
	cfg.Normalize()
	cfg.Format = "yaml"
	return cfg
}

// Load loads and validates a wikirace configuration from a file or a
// directory containing one. Returns the parsed config and the detected
// format.
func Load(path string) (Config, string, error) {
	configFile, err := FindConfigFile(path)
	if err != nil {
		return Config{}, "", err
	}

	format, parser, err := getConfigParser(configFile)
	if err != nil {
		return Config{}, "", err
	}

	k := koanf.New(".")
	if err := k.Load(file.Provider(configFile), parser); err != nil {
		return Config{}, "", fmt.Errorf("failed to load config file: %w", err)
	}

	if err := checkUnknownKeys(reflect.TypeOf(Config{}), k.Keys(), format); err != nil {
		return Config{}, "", err
	}

	var cfg Config
	decoderConfig := &mapstructure.DecoderConfig{
		TagName:    format,
		Result:     &cfg,
		Squash:     true,
		DecodeHook: PortDecodeHook(),
	}
	unmarshalConf := koanf.UnmarshalConf{
		Tag:           format,
		DecoderConfig: decoderConfig,
	}
	if err := k.UnmarshalWithConf("", &cfg, unmarshalConf); err != nil {
		return Config{}, "", fmt.Errorf("failed to unmarshal config: %w", err)
	}

	cfg.Normalize()
	cfg.Format = format

	if err := cfg.Validate(); err != nil {
		return Config{}, format, err
	}

	return cfg, format, nil
}

var (
	supportedExtensions  = []string{".json", ".yaml", ".yml", ".toml"}
	supportedConfigNames = []string{"wikirace.json", "wikirace.yaml", "wikirace.yml", "wikirace.toml"}
)

// FindConfigFile locates a wikirace config file. Accepts a path to the file
// itself, a directory containing one, or relative forms of either.
func FindConfigFile(path string) (string, error) {
	if path == "" {
		path = "."
	}

	absPath, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("failed to get absolute path: %w", err)
	}

	stat, err := os.Stat(absPath)
	if err != nil {
		return "", fmt.Errorf("path does not exist: %s", absPath)
	}

	if !stat.IsDir() {
		ext := filepath.Ext(absPath)
		if !slices.Contains(supportedExtensions, ext) {
			return "", fmt.Errorf("file %s is not a valid wikirace config file (must be .json, .yaml, .yml, or .toml)", absPath)
		}
		return absPath, nil
	}

	for _, configName := range supportedConfigNames {
		configPath := filepath.Join(absPath, configName)
		if _, err := os.Stat(configPath); err == nil {
			return configPath, nil
		}
	}

	dirName := path
	if path == "." {
		if cwd, err := os.Getwd(); err == nil {
			dirName = filepath.Base(cwd)
		}
	}

	return "", fmt.Errorf("no wikirace config file found in directory %s (looking for: %s)",
		dirName, strings.Join(supportedConfigNames, ", "))
}

// Port accepts both string and int in config files.
type Port string

func (p Port) String() string {
	return string(p)
}

func PortDecodeHook() mapstructure.DecodeHookFuncType {
	return func(
		f reflect.Type,
		t reflect.Type,
		data any,
	) (any, error) {
		if t != reflect.TypeOf(Port("")) {
			return data, nil
		}

		switch v := data.(type) {
		case string:
			return Port(v), nil
		case int:
			return Port(strconv.Itoa(v)), nil
		case int64:
			return Port(strconv.FormatInt(v, 10)), nil
		case float64:
			// YAML/JSON may parse integers as floats.
			if v == float64(int(v)) {
				return Port(strconv.Itoa(int(v))), nil
			}
			return nil, fmt.Errorf("port must be an integer, got float: %v", v)
		default:
			return nil, fmt.Errorf("port must be a string or integer, got %T: %v", data, data)
		}
	}
}
