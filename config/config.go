package config

import (
	"strings"

	"jukebox/pkg/logger"

	"github.com/spf13/viper"
)

type Config struct {
	Environment          string `mapstructure:"ENVIRONMENT"`
	DatabaseHost         string `mapstructure:"DB_HOST"`
	DatabasePort         int    `mapstructure:"DB_PORT"`
	DatabaseName         string `mapstructure:"DB_NAME"`
	DatabaseUser         string `mapstructure:"DB_USER"`
	DatabasePassword     string `mapstructure:"DB_PASSWORD"`
	DatabaseCacheAddress string `mapstructure:"DB_CACHE_ADDRESS"`
	DatabaseCachePort    int    `mapstructure:"DB_CACHE_PORT"`
	MusicBrainzBaseURL   string `mapstructure:"MUSICBRAINZ_BASE_URL"`
	MusicBrainzUserAgent string `mapstructure:"MUSICBRAINZ_USER_AGENT"`
	AudioDBBaseURL       string `mapstructure:"AUDIODB_BASE_URL"`
	AudioDBAPIKey        string `mapstructure:"AUDIODB_API_KEY"`
	YoutubeBaseURL       string `mapstructure:"YOUTUBE_BASE_URL"`
	YoutubeAPIKeys       string `mapstructure:"YOUTUBE_API_KEYS"`
	SchedulerEnabled     bool   `mapstructure:"SCHEDULER_ENABLED"`
}

var ConfigInstance Config

func New() (Config, error) {
	log := logger.New("config").Function("New")
	log.Info("Initializing config")

	viper.AutomaticEnv()

	envVars := []string{
		"ENVIRONMENT", "DB_HOST", "DB_PORT", "DB_NAME", "DB_USER", "DB_PASSWORD",
		"DB_CACHE_ADDRESS", "DB_CACHE_PORT",
		"MUSICBRAINZ_BASE_URL", "MUSICBRAINZ_USER_AGENT",
		"AUDIODB_BASE_URL", "AUDIODB_API_KEY",
		"YOUTUBE_BASE_URL", "YOUTUBE_API_KEYS",
		"SCHEDULER_ENABLED",
	}

	for _, env := range envVars {
		if err := viper.BindEnv(env); err != nil {
			log.Warn("Failed to bind environment variable", "env", env, "error", err)
		}
	}

	envVarsSet := viper.IsSet("DB_HOST") && viper.IsSet("AUDIODB_API_KEY")

	if envVarsSet {
		log.Info("Environment variables detected, skipping file loading")
	} else {
		log.Info("Environment variables not found, attempting to load from files")

		viper.SetConfigFile(".env")
		viper.SetConfigType("env")

		if err := viper.ReadInConfig(); err != nil {
			log.Warn("Could not find .env file", "error", err)
		} else {
			log.Info("Loaded .env file")
		}

		viper.SetConfigFile(".env.local")
		if err := viper.MergeInConfig(); err != nil {
			log.Debug("No .env.local file found", "error", err)
		} else {
			log.Info("Loaded .env.local overrides")
		}
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return Config{}, log.Err("Fatal error: could not unmarshal config", err)
	}

	if err := validateConfig(&config, log); err != nil {
		return Config{}, err
	}

	log.Info("Successfully initialized config", "environment", config.Environment)
	return ConfigInstance, nil
}

func GetConfig() Config {
	return ConfigInstance
}

// YoutubeKeys returns the configured API keys in rotation order
func (c Config) YoutubeKeys() []string {
	if c.YoutubeAPIKeys == "" {
		return nil
	}

	parts := strings.Split(c.YoutubeAPIKeys, ",")
	keys := make([]string, 0, len(parts))
	for _, part := range parts {
		if key := strings.TrimSpace(part); key != "" {
			keys = append(keys, key)
		}
	}
	return keys
}

func validateConfig(config *Config, log logger.Logger) error {
	if config.DatabaseHost == "" {
		return log.ErrMsg("Fatal error: DB_HOST is required")
	}

	if config.AudioDBAPIKey == "" {
		return log.ErrMsg("Fatal error: AUDIODB_API_KEY is required")
	}

	if len(config.YoutubeKeys()) == 0 {
		return log.ErrMsg("Fatal error: YOUTUBE_API_KEYS requires at least one key")
	}

	if config.MusicBrainzBaseURL == "" {
		config.MusicBrainzBaseURL = "https://musicbrainz.org/ws/2"
	}
	if config.MusicBrainzUserAgent == "" {
		config.MusicBrainzUserAgent = "Jukebox/1.0"
	}
	if config.AudioDBBaseURL == "" {
		config.AudioDBBaseURL = "https://www.theaudiodb.com/api/v1/json"
	}
	if config.YoutubeBaseURL == "" {
		config.YoutubeBaseURL = "https://www.googleapis.com/youtube/v3"
	}

	ConfigInstance = *config
	return nil
}
