package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Server Server `yaml:"server"`
	OpenAI OpenAI `yaml:"openai"`
	Forms  Forms  `yaml:"forms"`
	Log    Log    `yaml:"log"`
}

type Server struct {
	Port     int    `yaml:"port"`
	APIToken string `yaml:"api_token"`
}

type OpenAI struct {
	APIKey        string `yaml:"api_key"`
	AssistantID   string `yaml:"assistant_id"`
	VectorStoreID string `yaml:"vector_store_id"`
	BaseURL       string `yaml:"base_url"`
	EmbedModel    string `yaml:"embed_model"`
	FilePurpose   string `yaml:"file_purpose"`
}

type Forms struct {
	BaseURL        string `yaml:"base_url"`
	FormID         string `yaml:"form_id"`
	ConsumerKey    string `yaml:"consumer_key"`
	ConsumerSecret string `yaml:"consumer_secret"`
	PageSize       int    `yaml:"page_size"`
}

type Log struct {
	Level string `yaml:"level"`
}

func defaults() Config {
	return Config{
		Server: Server{
			Port: 4600,
		},
		OpenAI: OpenAI{
			BaseURL:     "https://api.openai.com/v1",
			EmbedModel:  "text-embedding-ada-002",
			FilePurpose: "assistants",
		},
		Forms: Forms{
			PageSize: 50,
		},
		Log: Log{
			Level: "info",
		},
	}
}

// DefaultPath returns the default config file location
// ($XDG_CONFIG_HOME/oneliners/config.yaml, falling back to ~/.config).
func DefaultPath() string {
	base := os.Getenv("XDG_CONFIG_HOME")
	if base == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "config.yaml"
		}
		base = filepath.Join(home, ".config")
	}
	return filepath.Join(base, "oneliners", "config.yaml")
}

// Load reads configuration from the YAML file at path (DefaultPath() when
// path is empty), applies ONELINERS_* environment overrides, and validates
// required fields. A missing config file is not an error; a present but
// unreadable one is. A .env file in the working directory is loaded first
// so local development can keep secrets out of the shell profile.
func Load(path string) (Config, error) {
	// godotenv errors on a present-but-broken file; absence is fine.
	if _, err := os.Stat(".env"); err == nil {
		if err := godotenv.Load(); err != nil {
			return Config{}, fmt.Errorf("loading .env: %w", err)
		}
	}

	cfg := defaults()

	if path == "" {
		path = DefaultPath()
	}
	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("parsing config %s: %w", path, err)
		}
	case os.IsNotExist(err):
		// Defaults plus environment is a valid configuration source.
	default:
		return Config{}, fmt.Errorf("reading config %s: %w", path, err)
	}

	applyEnvOverrides(&cfg)

	if err := validate(cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func applyEnvOverrides(cfg *Config) {
	setString := func(dst *string, key string) {
		if v := os.Getenv(key); v != "" {
			*dst = v
		}
	}
	setInt := func(dst *int, key string) {
		if v := os.Getenv(key); v != "" {
			if n, err := strconv.Atoi(v); err == nil {
				*dst = n
			}
		}
	}

	setInt(&cfg.Server.Port, "ONELINERS_PORT")
	setString(&cfg.Server.APIToken, "ONELINERS_API_TOKEN")
	setString(&cfg.OpenAI.APIKey, "ONELINERS_OPENAI_API_KEY")
	setString(&cfg.OpenAI.AssistantID, "ONELINERS_ASSISTANT_ID")
	setString(&cfg.OpenAI.VectorStoreID, "ONELINERS_VECTOR_STORE_ID")
	setString(&cfg.OpenAI.BaseURL, "ONELINERS_OPENAI_BASE_URL")
	setString(&cfg.OpenAI.EmbedModel, "ONELINERS_EMBED_MODEL")
	setString(&cfg.OpenAI.FilePurpose, "ONELINERS_FILE_PURPOSE")
	setString(&cfg.Forms.BaseURL, "ONELINERS_FORMS_BASE_URL")
	setString(&cfg.Forms.FormID, "ONELINERS_FORM_ID")
	setString(&cfg.Forms.ConsumerKey, "ONELINERS_FORMS_CONSUMER_KEY")
	setString(&cfg.Forms.ConsumerSecret, "ONELINERS_FORMS_CONSUMER_SECRET")
	setInt(&cfg.Forms.PageSize, "ONELINERS_FORMS_PAGE_SIZE")
	setString(&cfg.Log.Level, "ONELINERS_LOG_LEVEL")
}

// validate enforces the settings the orchestrator refuses to run without.
// Missing any of these aborts before any side effect is performed.
func validate(cfg Config) error {
	missing := ""
	switch {
	case cfg.OpenAI.APIKey == "":
		missing = "OpenAI API key (ONELINERS_OPENAI_API_KEY)"
	case cfg.OpenAI.AssistantID == "":
		missing = "assistant ID (ONELINERS_ASSISTANT_ID)"
	case cfg.OpenAI.VectorStoreID == "":
		missing = "vector store ID (ONELINERS_VECTOR_STORE_ID)"
	case cfg.Forms.BaseURL == "":
		missing = "forms base URL (ONELINERS_FORMS_BASE_URL)"
	case cfg.Forms.FormID == "":
		missing = "form ID (ONELINERS_FORM_ID)"
	}
	if missing != "" {
		return fmt.Errorf("missing required config: %s", missing)
	}
	return nil
}
