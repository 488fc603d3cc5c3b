// Package config resolves the settings of one rename run from command-line
// flags, MEDIA_RENAME_* environment variables and an optional YAML file.
//
// Precedence, highest first: explicitly set flag, environment, config file,
// flag default.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/fpang/media-rename/internal/chat"
	"github.com/fpang/media-rename/internal/describe"
	"github.com/fpang/media-rename/internal/filehandler"
	"github.com/fpang/media-rename/internal/naming"
)

// Configuration keys. They double as flag names.
const (
	KeyDirectory   = "directory"
	KeyPick        = "pick"
	KeyFields      = "fields"
	KeyDescribe    = "describe"
	KeyPrompt      = "prompt"
	KeyModel       = "model"
	KeyDryRun      = "dry-run"
	KeyTimeout     = "timeout"
	KeyValidateKey = "validate-key"
	KeyAPIKey      = "api-key"
)

// EnvPrefix is prepended to upper-cased keys, so "dry-run" is read from
// MEDIA_RENAME_DRY_RUN.
const EnvPrefix = "MEDIA_RENAME"

// DefaultFileName is looked up in the home directory when no --config is given.
const DefaultFileName = ".media-rename.yaml"

// Config is the resolved configuration of a run.
type Config struct {
	Kind        filehandler.Kind
	Directory   string
	Pick        bool
	Fields      naming.Selection
	Describe    bool
	Prompt      string
	Model       string
	DryRun      bool
	Timeout     time.Duration
	ValidateKey bool
	APIKey      string

	// File is the config file that was read, empty if none.
	File string
}

// RegisterFlags adds the run flags to fs with their defaults.
func RegisterFlags(fs *pflag.FlagSet) {
	fs.StringP(KeyDirectory, "d", "", "Directory containing the media to rename")
	fs.Bool(KeyPick, false, "Choose the directory with a native folder picker")
	fs.String(KeyFields, "", "Comma-separated name parts (default: every field the media kind supports)")
	fs.Bool(KeyDescribe, false, "Append an AI-generated description to each name")
	fs.String(KeyPrompt, "", "Custom description prompt (default: built-in prompt per media kind)")
	fs.StringP(KeyModel, "m", chat.DefaultModelName, "Gemini model used for descriptions")
	fs.Bool(KeyDryRun, false, "Log the new names without renaming")
	fs.Duration(KeyTimeout, describe.DefaultTimeout, "Timeout for each description call")
	fs.Bool(KeyValidateKey, true, "Validate the Gemini API key before a describing batch")
}

// Load resolves the configuration for kind. flags must carry the flags from
// RegisterFlags; configFile may be empty to use ~/.media-rename.yaml when it
// exists.
func Load(flags *pflag.FlagSet, kind filehandler.Kind, configFile string) (*Config, error) {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	v.SetDefault(KeyModel, chat.DefaultModelName)
	v.SetDefault(KeyTimeout, describe.DefaultTimeout)
	v.SetDefault(KeyValidateKey, true)

	if err := v.BindEnv(KeyModel, EnvPrefix+"_MODEL", "GEMINI_MODEL"); err != nil {
		return nil, fmt.Errorf("bind model env: %w", err)
	}
	if flags != nil {
		if err := v.BindPFlags(flags); err != nil {
			return nil, fmt.Errorf("bind flags: %w", err)
		}
	}

	file, err := readConfigFile(v, configFile)
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		Kind:        kind,
		Directory:   strings.TrimSpace(v.GetString(KeyDirectory)),
		Pick:        v.GetBool(KeyPick),
		Describe:    v.GetBool(KeyDescribe),
		Prompt:      strings.TrimSpace(v.GetString(KeyPrompt)),
		Model:       strings.TrimSpace(v.GetString(KeyModel)),
		DryRun:      v.GetBool(KeyDryRun),
		Timeout:     v.GetDuration(KeyTimeout),
		ValidateKey: v.GetBool(KeyValidateKey),
		APIKey:      strings.TrimSpace(v.GetString(KeyAPIKey)),
		File:        file,
	}

	if err := cfg.resolveFields(v.GetString(KeyFields)); err != nil {
		return nil, err
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// readConfigFile reads an explicit config file, or the default one if it
// exists. It returns the path that was read.
func readConfigFile(v *viper.Viper, explicit string) (string, error) {
	path := explicit
	if path == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			log.Debug().Err(err).Msg("No home directory, skipping default config file")
			return "", nil
		}
		path = filepath.Join(home, DefaultFileName)
		if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
			return "", nil
		}
	}

	v.SetConfigFile(path)
	if filepath.Ext(path) == "" {
		v.SetConfigType("yaml")
	}
	if err := v.ReadInConfig(); err != nil {
		return "", fmt.Errorf("read config file %s: %w", path, err)
	}
	log.Debug().Str("file", path).Msg("Config file loaded")
	return path, nil
}

// resolveFields parses the field list. An empty list selects every field the
// media kind supports. Listing "description" implies Describe, and Describe
// adds the description field.
func (c *Config) resolveFields(list string) error {
	sel, err := naming.ParseSelection(list)
	if err != nil {
		return fmt.Errorf("invalid --%s: %w", KeyFields, err)
	}
	if sel == 0 {
		sel = DefaultFields(c.Kind)
	}
	if sel.Has(naming.FieldDescription) {
		c.Describe = true
	}
	if c.Describe {
		sel = sel.With(naming.FieldDescription)
	}
	c.Fields = sel
	return nil
}

func (c *Config) validate() error {
	if c.Directory != "" && c.Pick {
		return fmt.Errorf("--%s and --%s are mutually exclusive", KeyDirectory, KeyPick)
	}
	if c.Describe {
		if c.Timeout <= 0 {
			return fmt.Errorf("--%s must be positive, got %s", KeyTimeout, c.Timeout)
		}
		if c.Model == "" {
			return fmt.Errorf("--%s must not be empty when describing", KeyModel)
		}
	}
	return nil
}

// DefaultFields returns the field selection used when none is configured.
func DefaultFields(kind filehandler.Kind) naming.Selection {
	if kind == filehandler.KindVideo {
		return naming.VideoFields
	}
	return naming.PhotoFields
}
