package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/viper"

	"github.com/TeamDman/Ehyaioess/internal/models"
)

const (
	EnvPrefix         = "EHYAIOESS"
	DefaultConfigName = "ehyaioess"
)

// Config is read by viper from a config file, EHYAIOESS_* environment variables and defaults.
type Config struct {
	Log           LogConfig           `mapstructure:"log"`
	Conversations ConversationsConfig `mapstructure:"conversations"`
	Console       ConsoleConfig       `mapstructure:"console"`
}

type LogConfig struct {
	Level       string `mapstructure:"level"`       // debug, info, warn, error
	Development bool   `mapstructure:"development"` // console encoder instead of JSON
}

type ConversationsConfig struct {
	DefaultTitle string `mapstructure:"default_title"`
	SystemPrompt string `mapstructure:"system_prompt"` // seeded as a system message into new conversations
}

type ConsoleConfig struct {
	Prompt string `mapstructure:"prompt"`
}

// Load reads configuration from configPath, or searches for ehyaioess.yaml in
// the working directory when configPath is empty. A missing file is not an error.
func Load(configPath string) (*Config, error) {
	v := viper.New()
	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.AddConfigPath(".")
		v.SetConfigName(DefaultConfigName)
		v.SetConfigType("yaml")
	}

	v.SetDefault("log.level", "info")
	v.SetDefault("log.development", false)
	v.SetDefault("conversations.default_title", models.DefaultConversationTitle)
	v.SetDefault("conversations.system_prompt", "")
	v.SetDefault("console.prompt", "> ")

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if configPath != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	return &cfg, nil
}
