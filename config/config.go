package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// Config keys. Flags use the same names with dashes.
const (
	KeyNetwork         = "network"
	KeyHorizonURL      = "horizon_url"
	KeyKeystore        = "keystore"
	KeyHistoryLimit    = "history_limit"
	KeyRequestTimeout  = "request_timeout"
	KeyLogger          = "logger"
	KeyStrictAddresses = "strict_addresses"
)

const (
	fileName    = ".make-it-right.json"
	keystoreDir = ".make-it-right"
	envPrefix   = "MIR"

	// maxHistoryLimit is the largest page Horizon serves.
	maxHistoryLimit = 200
)

// Config represents the application configuration
type Config struct {
	Network         string        `mapstructure:"network"`
	HorizonURL      string        `mapstructure:"horizon_url"`
	Keystore        string        `mapstructure:"keystore"`
	HistoryLimit    int           `mapstructure:"history_limit"`
	RequestTimeout  time.Duration `mapstructure:"request_timeout"`
	Logger          bool          `mapstructure:"logger"`
	StrictAddresses bool          `mapstructure:"strict_addresses"`
}

// fileConfig is the on-disk shape; durations are written as strings.
type fileConfig struct {
	Network         string `json:"network"`
	HorizonURL      string `json:"horizon_url,omitempty"`
	Keystore        string `json:"keystore"`
	HistoryLimit    int    `json:"history_limit"`
	RequestTimeout  string `json:"request_timeout"`
	Logger          bool   `json:"logger"`
	StrictAddresses bool   `json:"strict_addresses"`
}

// DefaultPath is the config file in the user's home directory.
func DefaultPath() string {
	return filepath.Join(homeDir(), fileName)
}

// DefaultKeystorePath is where the keystore commands write by default.
func DefaultKeystorePath() string {
	return filepath.Join(homeDir(), keystoreDir, "keystore.json")
}

func homeDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return home
}

// DefaultConfig returns a new configuration with sensible defaults
func DefaultConfig() Config {
	return Config{
		Network:        "testnet",
		Keystore:       DefaultKeystorePath(),
		HistoryLimit:   10,
		RequestTimeout: 20 * time.Second,
	}
}

// Load merges defaults, the JSON file at path, MIR_* environment variables
// and any flags in fs, in increasing precedence. A missing file is not an
// error. On error the defaults are returned alongside it.
func Load(path string, fs *pflag.FlagSet) (Config, error) {
	def := DefaultConfig()
	v := withDefaults(def)

	v.SetEnvPrefix(envPrefix)
	v.AutomaticEnv()

	if fs != nil {
		for _, key := range keys() {
			if f := fs.Lookup(FlagName(key)); f != nil {
				if err := v.BindPFlag(key, f); err != nil {
					return def, errors.Wrapf(err, "binding flag %s", f.Name)
				}
			}
		}
	}

	return decode(v, path, def)
}

// SaveLogger rewrites the logger key in the file at path. The rest of the
// file is kept as written; environment and flag overrides are not persisted.
func SaveLogger(path string, enabled bool) error {
	def := DefaultConfig()
	cfg, err := decode(withDefaults(def), path, def)
	if err != nil {
		return err
	}
	cfg.Logger = enabled
	return Save(path, cfg)
}

func withDefaults(def Config) *viper.Viper {
	v := viper.New()
	v.SetDefault(KeyNetwork, def.Network)
	v.SetDefault(KeyHorizonURL, def.HorizonURL)
	v.SetDefault(KeyKeystore, def.Keystore)
	v.SetDefault(KeyHistoryLimit, def.HistoryLimit)
	v.SetDefault(KeyRequestTimeout, def.RequestTimeout)
	v.SetDefault(KeyLogger, def.Logger)
	v.SetDefault(KeyStrictAddresses, def.StrictAddresses)
	return v
}

// decode reads the file at path into v, if it exists, and validates the result.
func decode(v *viper.Viper, path string, def Config) (Config, error) {
	if path != "" {
		if _, err := os.Stat(path); err == nil {
			v.SetConfigFile(filepath.Clean(path))
			v.SetConfigType("json")
			if err := v.ReadInConfig(); err != nil {
				return def, errors.Wrap(err, "reading config file")
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return def, errors.Wrap(err, "unmarshalling config")
	}
	if err := cfg.Validate(); err != nil {
		return def, err
	}
	return cfg, nil
}

// Validate checks the values Load cannot coerce.
func (c Config) Validate() error {
	switch c.Network {
	case "testnet", "public":
	default:
		return errors.Errorf("unknown network %q (want testnet or public)", c.Network)
	}
	if c.HistoryLimit < 1 || c.HistoryLimit > maxHistoryLimit {
		return errors.Errorf("history_limit must be between 1 and %d", maxHistoryLimit)
	}
	if c.RequestTimeout <= 0 {
		return errors.New("request_timeout must be positive")
	}
	return nil
}

// Save writes the config to the specified path
func Save(path string, cfg Config) error {
	data, err := json.MarshalIndent(fileConfig{
		Network:         cfg.Network,
		HorizonURL:      cfg.HorizonURL,
		Keystore:        cfg.Keystore,
		HistoryLimit:    cfg.HistoryLimit,
		RequestTimeout:  cfg.RequestTimeout.String(),
		Logger:          cfg.Logger,
		StrictAddresses: cfg.StrictAddresses,
	}, "", "  ")
	if err != nil {
		return errors.Wrap(err, "encoding config")
	}
	return errors.Wrap(os.WriteFile(path, data, 0o644), "writing config")
}

func keys() []string {
	return []string{
		KeyNetwork, KeyHorizonURL, KeyKeystore, KeyHistoryLimit,
		KeyRequestTimeout, KeyLogger, KeyStrictAddresses,
	}
}

// FlagName is the command-line flag bound to key.
func FlagName(key string) string {
	return strings.ReplaceAll(key, "_", "-")
}

// LoadOrCreate loads config from path, writing the defaults there first
// when the file does not exist yet.
func LoadOrCreate(path string, fs *pflag.FlagSet) (Config, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		if err := Save(path, DefaultConfig()); err != nil {
			return DefaultConfig(), err
		}
	}
	return Load(path, fs)
}
