package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

const envPrefix = "BEPRODUCTIVE"

// Config is the focus client's configuration file.
type Config struct {
	Server       string `mapstructure:"server" yaml:"server"`
	Token        string `mapstructure:"token" yaml:"token,omitempty"`
	SnapshotPath string `mapstructure:"snapshot_path" yaml:"snapshot_path,omitempty"`
	LogPath      string `mapstructure:"log_path" yaml:"log_path,omitempty"`
}

// HomeDir is the client's directory under the user's home.
func HomeDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".beproductive"
	}
	return filepath.Join(home, ".beproductive")
}

func DefaultConfigPath() string {
	return filepath.Join(HomeDir(), "config.yaml")
}

func DefaultConfig() Config {
	dir := HomeDir()
	return Config{
		Server:       "http://localhost:8080",
		SnapshotPath: filepath.Join(dir, "focus.db"),
		LogPath:      filepath.Join(dir, "focus.log"),
	}
}

// LoadConfig reads path when it exists and applies BEPRODUCTIVE_* env
// overrides on top of the defaults.
func LoadConfig(path string) (Config, error) {
	defaults := DefaultConfig()

	v := viper.New()
	v.SetDefault("server", defaults.Server)
	v.SetDefault("token", "")
	v.SetDefault("snapshot_path", defaults.SnapshotPath)
	v.SetDefault("log_path", defaults.LogPath)
	v.SetEnvPrefix(envPrefix)
	v.AutomaticEnv()

	if _, err := os.Stat(path); err == nil {
		v.SetConfigFile(path)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config %s: %w", path, err)
		}
	} else if !os.IsNotExist(err) {
		return Config{}, fmt.Errorf("stat config %s: %w", path, err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("decode config: %w", err)
	}
	return cfg, nil
}

// SaveConfig writes cfg to path. The file holds a bearer token, so it is
// readable by the owner only.
func SaveConfig(path string, cfg Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("encode config: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("write config %s: %w", path, err)
	}
	return nil
}
