// Package config loads postsmith settings from a YAML file, POSTSMITH_* environment
// variables and built-in defaults.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"github.com/spf13/viper"

	"github.com/jonathan/postsmith/internal/fetch"
	"github.com/jonathan/postsmith/internal/llm"
	"github.com/jonathan/postsmith/internal/scraper"
)

// EnvPrefix is the prefix of environment variables that override config keys.
// "llm.timeout" is read from POSTSMITH_LLM_TIMEOUT.
const EnvPrefix = "POSTSMITH"

// Config is the full application configuration.
type Config struct {
	Provider    string   `mapstructure:"provider" validate:"oneof=openai gemini"`
	LLM         LLM      `mapstructure:"llm"`
	Scraper     Scraper  `mapstructure:"scraper"`
	Page        Page     `mapstructure:"page"`
	Defaults    Defaults `mapstructure:"defaults"`
	Log         Log      `mapstructure:"log"`
	Server      Server   `mapstructure:"server"`
	DatabaseURL string   `mapstructure:"database_url"`
	KeysFile    string   `mapstructure:"keys_file"`
}

// LLM configures the provider gateway.
type LLM struct {
	Timeout        time.Duration `mapstructure:"timeout" validate:"gt=0"`
	Temperature    float64       `mapstructure:"temperature" validate:"gte=0.7,lte=0.85"`
	MaxTokens      ProviderInts  `mapstructure:"max_tokens"`
	Models         ProviderNames `mapstructure:"models"`
	OpenAIBaseURL  string        `mapstructure:"openai_base_url" validate:"omitempty,url"`
	GeminiEndpoint string        `mapstructure:"gemini_endpoint"`
}

// ProviderNames holds one string per provider.
type ProviderNames struct {
	OpenAI string `mapstructure:"openai"`
	Gemini string `mapstructure:"gemini"`
}

// ProviderInts holds one int per provider.
type ProviderInts struct {
	OpenAI int `mapstructure:"openai" validate:"gte=0"`
	Gemini int `mapstructure:"gemini" validate:"gte=0"`
}

// Scraper configures the remote article fetcher.
type Scraper struct {
	Endpoint string        `mapstructure:"endpoint" validate:"url"`
	Timeout  time.Duration `mapstructure:"timeout" validate:"gt=0"`
}

// Page configures how the profile page is loaded and read.
type Page struct {
	UseBrowser         bool          `mapstructure:"use_browser"`
	UserDataDir        string        `mapstructure:"user_data_dir"`
	Timeout            time.Duration `mapstructure:"timeout" validate:"gt=0"`
	RequiredHost       string        `mapstructure:"required_host"`
	ProfessionLocators []string      `mapstructure:"profession_locators"`
	AboutLocators      []string      `mapstructure:"about_locators"`
}

// Defaults are the generation settings used when a request leaves them empty.
type Defaults struct {
	Tone   string `mapstructure:"tone"`
	Length string `mapstructure:"length" validate:"omitempty,oneof=short medium long"`
}

// Log configures logging.
type Log struct {
	Level  string `mapstructure:"level" validate:"oneof=trace debug info warn error"`
	Format string `mapstructure:"format" validate:"oneof=json console"`
}

// Server configures the HTTP API.
type Server struct {
	Port int `mapstructure:"port" validate:"gte=1,lte=65535"`
}

// Default returns the built-in configuration.
func Default() Config {
	llmDefaults := llm.DefaultConfig()
	return Config{
		Provider: string(llm.ProviderGemini),
		LLM: LLM{
			Timeout:     llmDefaults.Timeout,
			Temperature: llmDefaults.Temperature,
			MaxTokens: ProviderInts{
				OpenAI: llmDefaults.MaxTokens[llm.ProviderOpenAI],
				Gemini: llmDefaults.MaxTokens[llm.ProviderGemini],
			},
			Models: ProviderNames{
				OpenAI: llmDefaults.Models[llm.ProviderOpenAI],
				Gemini: llmDefaults.Models[llm.ProviderGemini],
			},
		},
		Scraper: Scraper{
			Endpoint: scraper.DefaultEndpoint,
			Timeout:  scraper.DefaultTimeout,
		},
		Page: Page{
			Timeout:      fetch.DefaultTimeout,
			RequiredHost: "linkedin.com",
		},
		Defaults: Defaults{Tone: "Professional", Length: "medium"},
		Log:      Log{Level: "info", Format: "console"},
		Server:   Server{Port: 8080},
		KeysFile: filepath.Join(Dir(), "keys.yaml"),
	}
}

// Dir returns the postsmith settings directory (~/.postsmith).
func Dir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".postsmith"
	}
	return filepath.Join(home, ".postsmith")
}

// Load reads the configuration. An explicit path must exist; without one,
// config.yaml is looked up in ./ and ~/.postsmith and may be absent.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v, Default())

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath(Dir())
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	merged := cfg.MergeWithDefaults(Default())
	if err := merged.Validate(); err != nil {
		return nil, err
	}
	return &merged, nil
}

func setDefaults(v *viper.Viper, d Config) {
	v.SetDefault("provider", d.Provider)
	v.SetDefault("llm.timeout", d.LLM.Timeout)
	v.SetDefault("llm.temperature", d.LLM.Temperature)
	v.SetDefault("llm.max_tokens.openai", d.LLM.MaxTokens.OpenAI)
	v.SetDefault("llm.max_tokens.gemini", d.LLM.MaxTokens.Gemini)
	v.SetDefault("llm.models.openai", d.LLM.Models.OpenAI)
	v.SetDefault("llm.models.gemini", d.LLM.Models.Gemini)
	v.SetDefault("llm.openai_base_url", "")
	v.SetDefault("llm.gemini_endpoint", "")
	v.SetDefault("scraper.endpoint", d.Scraper.Endpoint)
	v.SetDefault("scraper.timeout", d.Scraper.Timeout)
	v.SetDefault("page.use_browser", false)
	v.SetDefault("page.user_data_dir", "")
	v.SetDefault("page.timeout", d.Page.Timeout)
	v.SetDefault("page.required_host", d.Page.RequiredHost)
	v.SetDefault("page.profession_locators", []string{})
	v.SetDefault("page.about_locators", []string{})
	v.SetDefault("defaults.tone", d.Defaults.Tone)
	v.SetDefault("defaults.length", d.Defaults.Length)
	v.SetDefault("log.level", d.Log.Level)
	v.SetDefault("log.format", d.Log.Format)
	v.SetDefault("server.port", d.Server.Port)
	v.SetDefault("database_url", "")
	v.SetDefault("keys_file", d.KeysFile)
}

// Validate checks that the configuration has valid values.
func (c *Config) Validate() error {
	err := validate.Struct(c)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("config error: %w", err)
	}

	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, fmt.Sprintf("'%s' fails %s (got %v)", fe.Namespace(), fe.Tag(), fe.Value()))
	}
	return fmt.Errorf("config error: %s", strings.Join(msgs, "; "))
}

// MergeWithDefaults returns a new Config with empty fields filled from defaults.
// Bool fields cannot distinguish unset from false and are not merged.
func (c *Config) MergeWithDefaults(defaults Config) Config {
	result := *c

	if result.Provider == "" {
		result.Provider = defaults.Provider
	}
	if result.LLM.Timeout == 0 {
		result.LLM.Timeout = defaults.LLM.Timeout
	}
	if result.LLM.Temperature == 0 {
		result.LLM.Temperature = defaults.LLM.Temperature
	}
	if result.LLM.MaxTokens.OpenAI == 0 {
		result.LLM.MaxTokens.OpenAI = defaults.LLM.MaxTokens.OpenAI
	}
	if result.LLM.MaxTokens.Gemini == 0 {
		result.LLM.MaxTokens.Gemini = defaults.LLM.MaxTokens.Gemini
	}
	if result.LLM.Models.OpenAI == "" {
		result.LLM.Models.OpenAI = defaults.LLM.Models.OpenAI
	}
	if result.LLM.Models.Gemini == "" {
		result.LLM.Models.Gemini = defaults.LLM.Models.Gemini
	}
	if result.Scraper.Endpoint == "" {
		result.Scraper.Endpoint = defaults.Scraper.Endpoint
	}
	if result.Scraper.Timeout == 0 {
		result.Scraper.Timeout = defaults.Scraper.Timeout
	}
	if result.Page.Timeout == 0 {
		result.Page.Timeout = defaults.Page.Timeout
	}
	if result.Defaults.Tone == "" {
		result.Defaults.Tone = defaults.Defaults.Tone
	}
	if result.Defaults.Length == "" {
		result.Defaults.Length = defaults.Defaults.Length
	}
	if result.Log.Level == "" {
		result.Log.Level = defaults.Log.Level
	}
	if result.Log.Format == "" {
		result.Log.Format = defaults.Log.Format
	}
	if result.Server.Port == 0 {
		result.Server.Port = defaults.Server.Port
	}
	if result.KeysFile == "" {
		result.KeysFile = defaults.KeysFile
	}

	return result
}

// LLMConfig converts the LLM section for the gateway.
func (c *Config) LLMConfig() *llm.Config {
	return &llm.Config{
		Models: map[llm.ProviderID]string{
			llm.ProviderOpenAI: c.LLM.Models.OpenAI,
			llm.ProviderGemini: c.LLM.Models.Gemini,
		},
		MaxTokens: map[llm.ProviderID]int{
			llm.ProviderOpenAI: c.LLM.MaxTokens.OpenAI,
			llm.ProviderGemini: c.LLM.MaxTokens.Gemini,
		},
		Temperature:    c.LLM.Temperature,
		Timeout:        c.LLM.Timeout,
		OpenAIBaseURL:  c.LLM.OpenAIBaseURL,
		GeminiEndpoint: c.LLM.GeminiEndpoint,
	}
}

// FetchOptions converts the page section for the document loader.
func (c *Config) FetchOptions(logger zerolog.Logger) *fetch.Options {
	opts := fetch.DefaultOptions()
	opts.Timeout = c.Page.Timeout
	opts.UseBrowser = c.Page.UseBrowser
	opts.UserDataDir = c.Page.UserDataDir
	opts.RequiredHost = c.Page.RequiredHost
	opts.Logger = logger
	return opts
}

// ScraperOptions converts the scraper section for the article fetcher.
func (c *Config) ScraperOptions(logger zerolog.Logger) scraper.Options {
	return scraper.Options{
		Endpoint: c.Scraper.Endpoint,
		Timeout:  c.Scraper.Timeout,
		Logger:   logger,
	}
}

var validate = validator.New()
