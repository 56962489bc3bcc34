package am

import (
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/spf13/viper"

	"github.com/teranos/wdlint/errors"
)

// EnvPrefix prefixes every environment variable wdlint reads.
const EnvPrefix = "WDLINT"

var (
	globalConfig  *Config
	viperInstance *viper.Viper
	loadMu        sync.Mutex

	// ConfigSources records which file each merged key came from
	ConfigSources = make(map[string]SourceInfo)
)

// Load reads the wdlint configuration using Viper
func Load() (*Config, error) {
	loadMu.Lock()
	defer loadMu.Unlock()
	if globalConfig != nil {
		return globalConfig, nil
	}

	v := initViperLocked()

	config, err := LoadWithViper(v)
	if err != nil {
		return nil, err
	}

	globalConfig = config
	return globalConfig, nil
}

// GetViper returns the Viper instance for advanced configuration access
func GetViper() *viper.Viper {
	loadMu.Lock()
	defer loadMu.Unlock()
	return initViperLocked()
}

// LoadWithViper loads configuration using a provided Viper instance
func LoadWithViper(v *viper.Viper) (*Config, error) {
	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, errors.Wrap(err, "failed to unmarshal config")
	}
	return &config, nil
}

// LoadFromFile loads configuration from a specific file path
func LoadFromFile(configPath string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(configPath)
	v.SetConfigType("toml")

	// Set defaults but don't bind environment variables for this specific load
	SetDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		return nil, errors.Wrapf(err, "failed to read config file %s", configPath)
	}

	config, err := LoadWithViper(v)
	if err != nil {
		return nil, errors.Wrapf(err, "config file %s", configPath)
	}
	return config, nil
}

// Reset clears the cached configuration (useful for testing)
func Reset() {
	loadMu.Lock()
	defer loadMu.Unlock()
	globalConfig = nil
	viperInstance = nil
	ConfigSources = make(map[string]SourceInfo)
}

// initViperLocked initializes Viper with configuration sources and defaults
func initViperLocked() *viper.Viper {
	if viperInstance != nil {
		return viperInstance
	}

	v := viper.New()

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	BindSensitiveEnvVars(v)
	SetDefaults(v)

	// system -> user -> project -> env vars
	mergeConfigFiles(v, configPaths(), ConfigSources)

	viperInstance = v
	return v
}

// UserConfigDir returns ~/.wdlint, or "" when there is no home directory
func UserConfigDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".wdlint")
}

// configPaths lists candidate config files, lowest precedence first
func configPaths() []pathSource {
	paths := []pathSource{{path: "/etc/wdlint/am.toml", source: SourceSystem}}
	if dir := UserConfigDir(); dir != "" {
		paths = append(paths, pathSource{path: filepath.Join(dir, "am.toml"), source: SourceUser})
	}
	if project := FindProjectConfig(); project != "" {
		paths = append(paths, pathSource{path: project, source: SourceProject})
	}
	return paths
}

type pathSource struct {
	path   string
	source ConfigSource
}

// FindProjectConfig searches for am.toml by walking up the directory tree
// Returns the path to the first config file found, or empty string if none found
func FindProjectConfig() string {
	dir, err := os.Getwd()
	if err != nil {
		return ""
	}
	for {
		amPath := filepath.Join(dir, "am.toml")
		if _, err := os.Stat(amPath); err == nil {
			return amPath
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return ""
		}
		dir = parent
	}
}

// mergeConfigFiles merges existing configuration files into v in order,
// recording where each key came from. Unreadable files are skipped.
func mergeConfigFiles(v *viper.Viper, paths []pathSource, sources map[string]SourceInfo) {
	for _, p := range paths {
		if _, err := os.Stat(p.path); err != nil {
			continue
		}
		tempViper := viper.New()
		tempViper.SetConfigFile(p.path)
		tempViper.SetConfigType("toml")
		if err := tempViper.ReadInConfig(); err != nil {
			continue
		}
		if err := v.MergeConfigMap(tempViper.AllSettings()); err != nil {
			continue
		}
		markSettingsFromSource(tempViper.AllSettings(), "", p.source, p.path, sources)
	}
}

// markSettingsFromSource records source for every leaf key of settings
func markSettingsFromSource(settings map[string]interface{}, prefix string, source ConfigSource, path string, sources map[string]SourceInfo) {
	for key, value := range settings {
		fullKey := key
		if prefix != "" {
			fullKey = prefix + "." + key
		}
		if nested, ok := value.(map[string]interface{}); ok {
			markSettingsFromSource(nested, fullKey, source, path, sources)
			continue
		}
		sources[fullKey] = SourceInfo{Source: source, Path: path}
	}
}

// GetString returns a configuration value as string using dot notation
func GetString(key string) string {
	return GetViper().GetString(key)
}

// Get returns a configuration value using dot notation
func Get(key string) interface{} {
	return GetViper().Get(key)
}

// IsSet reports whether key has a value from any source, defaults included
func IsSet(key string) bool {
	return GetViper().IsSet(key)
}
