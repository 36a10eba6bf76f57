package config

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"

	"github.com/teranos/libref/errors"
)

// Load reads the configuration.
//
// Precedence (lowest to highest): defaults < user config
// (~/.config/libref/libref.toml) < project config (libref.toml found by
// walking up from the working directory) < configFile < LIBREF_* env vars.
//
// Relative paths resolve against the directory of configFile, or of the
// project config when configFile is empty (see Config.Path).
func Load(configFile string) (*Config, error) {
	v, err := NewViper(configFile)
	if err != nil {
		return nil, err
	}
	cfg, err := LoadWithViper(v)
	if err != nil {
		return nil, err
	}
	if cfg.Root, err = ProjectRoot(configFile); err != nil {
		return nil, err
	}
	return cfg, nil
}

// ProjectRoot returns the directory relative paths resolve against: the
// directory of configFile, else of the project config found from the
// working directory, else "".
func ProjectRoot(configFile string) (string, error) {
	file := configFile
	if file == "" {
		file = FindProjectConfig("")
	}
	if file == "" {
		return "", nil
	}
	abs, err := filepath.Abs(file)
	if err != nil {
		return "", errors.Wrapf(err, "resolve %s", file)
	}
	return filepath.Dir(abs), nil
}

// LoadWithViper unmarshals and validates configuration from v.
func LoadWithViper(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, errors.Wrap(err, "failed to unmarshal config")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// NewViper builds a Viper instance with defaults, config files and env binding.
func NewViper(configFile string) (*viper.Viper, error) {
	v := viper.New()

	v.SetEnvPrefix("LIBREF")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	SetDefaults(v)

	paths := []string{userConfigPath()}
	if project := FindProjectConfig(""); project != "" {
		paths = append(paths, project)
	}
	for _, path := range paths {
		if path == "" {
			continue
		}
		if _, err := os.Stat(path); err != nil {
			continue
		}
		if err := mergeFile(v, path); err != nil {
			return nil, err
		}
	}

	if configFile != "" {
		if err := mergeFile(v, configFile); err != nil {
			return nil, err
		}
	}

	return v, nil
}

// LoadFromFile loads configuration from defaults plus exactly one file,
// ignoring user and project configs and the environment.
func LoadFromFile(configPath string) (*Config, error) {
	v := viper.New()
	SetDefaults(v)
	if err := mergeFile(v, configPath); err != nil {
		return nil, err
	}
	cfg, err := LoadWithViper(v)
	if err != nil {
		return nil, err
	}
	if cfg.Root, err = ProjectRoot(configPath); err != nil {
		return nil, err
	}
	return cfg, nil
}

// mergeFile deep-merges a TOML file into v's config layer.
func mergeFile(v *viper.Viper, path string) error {
	file := viper.New()
	file.SetConfigFile(path)
	file.SetConfigType("toml")
	if err := file.ReadInConfig(); err != nil {
		return errors.Wrapf(err, "failed to read config file %s", path)
	}
	if err := v.MergeConfigMap(file.AllSettings()); err != nil {
		return errors.Wrapf(err, "failed to merge config file %s", path)
	}
	return nil
}

// FindProjectConfig walks up from dir (the working directory when empty)
// looking for libref.toml. Returns "" when none is found.
func FindProjectConfig(dir string) string {
	if dir == "" {
		wd, err := os.Getwd()
		if err != nil {
			return ""
		}
		dir = wd
	}

	for {
		candidate := filepath.Join(dir, ProjectConfigName)
		if _, err := os.Stat(candidate); err == nil {
			return candidate
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return ""
		}
		dir = parent
	}
}

func userConfigPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, "libref", ProjectConfigName)
}
