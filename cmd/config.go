package cmd

import (
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"

	"github.com/spigell/resume-selector/internal/candidate"
	"github.com/spigell/resume-selector/internal/export"
	"github.com/spigell/resume-selector/internal/gateway/gemini"
	"github.com/spigell/resume-selector/internal/gateway/ollama"
)

type Config struct {
	Gateway    *GatewayConfig    `mapstructure:"gateway" validate:"required"`
	Processing *ProcessingConfig `mapstructure:"processing" validate:"required"`
	Export     *ExportConfig     `mapstructure:"export" validate:"required"`
	Prompts    *PromptsConfig    `mapstructure:"prompts"`
	Metrics    *MetricsConfig    `mapstructure:"metrics"`
}

type GatewayConfig struct {
	Provider     string        `mapstructure:"provider" validate:"oneof=ollama gemini"`
	Model        string        `mapstructure:"model" validate:"required"`
	Timeout      time.Duration `mapstructure:"timeout" validate:"gt=0"`
	MaxRetries   int           `mapstructure:"max-retries" validate:"gte=0,lte=10"`
	RetryDelay   time.Duration `mapstructure:"retry-delay" validate:"gte=0"`
	MaxLogLength int           `mapstructure:"max-log-length" validate:"gt=0"`
	Ollama       *OllamaConfig `mapstructure:"ollama" validate:"required"`
	Gemini       *GeminiConfig `mapstructure:"gemini" validate:"required"`
}

type OllamaConfig struct {
	BaseURL     string  `mapstructure:"base-url" validate:"required,url"`
	Temperature float64 `mapstructure:"temperature" validate:"gte=0,lte=2"`
	NumPredict  int     `mapstructure:"num-predict" validate:"gt=0"`
}

type GeminiConfig struct {
	APIKey          string  `mapstructure:"api-key" json:"-"`
	APIKeyFile      string  `mapstructure:"api-key-file"`
	Temperature     float64 `mapstructure:"temperature" validate:"gte=0,lte=2"`
	MaxOutputTokens int     `mapstructure:"max-output-tokens" validate:"gt=0"`
}

type ProcessingConfig struct {
	MaxConcurrent        int    `mapstructure:"max-concurrent" validate:"gte=1,lte=32"`
	MaxSkills            int    `mapstructure:"max-skills" validate:"gte=1"`
	MaxQuestions         int    `mapstructure:"max-questions" validate:"gte=1"`
	RecommendationPolicy string `mapstructure:"recommendation-policy" validate:"oneof=model threshold"`
}

type ExportConfig struct {
	Path     string       `mapstructure:"path" validate:"required"`
	Validate bool         `mapstructure:"validate"`
	Redis    *RedisConfig `mapstructure:"redis"`
}

type RedisConfig struct {
	Addr string `mapstructure:"addr" validate:"omitempty,hostname_port"`
	Key  string `mapstructure:"key" validate:"required_with=Addr"`
}

type PromptsConfig struct {
	Dir string `mapstructure:"dir"`
}

type MetricsConfig struct {
	// Textfile is a node_exporter textfile collector path. Empty disables the dump.
	Textfile string `mapstructure:"textfile"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("gateway.provider", ollama.Provider)
	v.SetDefault("gateway.model", "")
	v.SetDefault("gateway.timeout", ollama.DefaultTimeout)
	v.SetDefault("gateway.max-retries", 2)
	v.SetDefault("gateway.retry-delay", 2*time.Second)
	v.SetDefault("gateway.max-log-length", 200)
	v.SetDefault("gateway.ollama.base-url", ollama.DefaultBaseURL)
	v.SetDefault("gateway.ollama.temperature", ollama.DefaultTemperature)
	v.SetDefault("gateway.ollama.num-predict", ollama.DefaultNumPredict)
	v.SetDefault("gateway.gemini.api-key", "")
	v.SetDefault("gateway.gemini.api-key-file", "")
	v.SetDefault("gateway.gemini.temperature", gemini.DefaultTemperature)
	v.SetDefault("gateway.gemini.max-output-tokens", gemini.DefaultMaxOutputTokens)

	v.SetDefault("processing.max-concurrent", 1)
	v.SetDefault("processing.max-skills", candidate.DefaultMaxSkills)
	v.SetDefault("processing.max-questions", candidate.DefaultMaxQuestions)
	v.SetDefault("processing.recommendation-policy", string(candidate.PolicyModel))

	v.SetDefault("export.path", export.DefaultPath)
	v.SetDefault("export.validate", true)
	v.SetDefault("export.redis.addr", "")
	v.SetDefault("export.redis.key", "")

	v.SetDefault("prompts.dir", "")
	v.SetDefault("metrics.textfile", "")
}

func getConfig() (*Config, error) {
	return loadConfig(viper.GetViper())
}

// loadConfig decodes and validates the configuration held by v.
func loadConfig(v *viper.Viper) (*Config, error) {
	var config *Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}

	if config == nil {
		return nil, fmt.Errorf("config is empty")
	}

	if config.Gateway != nil && config.Gateway.Model == "" {
		config.Gateway.Model = defaultModel(config.Gateway.Provider)
	}

	if err := validator.New().Struct(config); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return config, nil
}

func defaultModel(provider string) string {
	if provider == gemini.Provider {
		return gemini.DefaultModel
	}
	return ollama.DefaultModel
}
