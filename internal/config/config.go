package config

import (
	"os"
	"path/filepath"
	"runtime"

	"github.com/spf13/viper"
)

// Config holds the tool-wide settings. All fields have working defaults so a
// bare install needs no config file at all.
type Config struct {
	LogDir        string `mapstructure:"log_dir"`
	WingetPath    string `mapstructure:"winget_path"`
	DefaultSource string `mapstructure:"default_source"`
	LogFormat     string `mapstructure:"log_format"`
	LogLevel      string `mapstructure:"log_level"`
	NodeDistURL   string `mapstructure:"node_dist_url"`
	NodePackageID string `mapstructure:"node_package_id"`
	SkipPause     bool   `mapstructure:"skip_pause"`
}

func Default() *Config {
	return &Config{
		LogDir:        filepath.Join(dataDir(), "logs"),
		WingetPath:    "winget",
		LogFormat:     "text",
		LogLevel:      "info",
		NodeDistURL:   "https://nodejs.org/dist/index.json",
		NodePackageID: "OpenJS.NodeJS.LTS",
	}
}

func Load(cfgFile string) (*Config, error) {
	cfg := Default()

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("upkeep")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(configDir())
		viper.AddConfigPath(".")
	}

	viper.AutomaticEnv()
	viper.SetEnvPrefix("UPKEEP")

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
	}

	if err := viper.Unmarshal(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// SessionLogPath returns the path of the timestamped-line session log.
func (c *Config) SessionLogPath() string {
	return filepath.Join(c.LogDir, "upkeep-session.log")
}

func configDir() string {
	switch runtime.GOOS {
	case "windows":
		return filepath.Join(os.Getenv("ProgramData"), "Upkeep")
	case "darwin":
		return "/Library/Application Support/Upkeep"
	default:
		return "/etc/upkeep"
	}
}

func dataDir() string {
	if runtime.GOOS == "windows" {
		return filepath.Join(os.Getenv("ProgramData"), "Upkeep")
	}
	return filepath.Join(os.TempDir(), "upkeep")
}
