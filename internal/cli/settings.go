package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/ppiankov/macrolens/internal/catalog"
	"github.com/ppiankov/macrolens/internal/gateway"
	"github.com/ppiankov/macrolens/internal/model"
	"github.com/ppiankov/macrolens/internal/pipeline"
)

// LLM flags shared by ask and batch
var (
	llmEnabled  bool
	llmProvider string
	llmModel    string
)

// loadConfig layers the config file and MACROLENS_* environment over the defaults.
// Command flags are applied by each command afterwards.
func loadConfig() (*model.Config, error) {
	cfg := model.DefaultConfig()

	if path := viper.ConfigFileUsed(); path != "" {
		data, err := os.ReadFile(path)
		if err != nil && !os.IsNotExist(err) {
			return nil, fmt.Errorf("read config: %w", err)
		}
		if len(data) > 0 {
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("parse config %s: %w", path, err)
			}
		}
	}

	applyEnv(cfg)
	return cfg, nil
}

// applyEnv copies the settings most often overridden per environment
func applyEnv(cfg *model.Config) {
	strs := map[string]*string{
		"llm.provider":     &cfg.LLM.Provider,
		"llm.model":        &cfg.LLM.Model,
		"llm.api_key":      &cfg.LLM.APIKey,
		"llm.base_url":     &cfg.LLM.BaseURL,
		"gateway.driver":   &cfg.Gateway.Driver,
		"gateway.dsn":      &cfg.Gateway.DSN,
		"http.http_proxy":  &cfg.HTTP.HTTPProxy,
		"http.https_proxy": &cfg.HTTP.HTTPSProxy,
		"http.no_proxy":    &cfg.HTTP.NoProxy,
		"server.addr":      &cfg.Server.Addr,
		"log.level":        &cfg.Log.Level,
		"log.file":         &cfg.Log.File,
	}
	for key, dst := range strs {
		if viper.IsSet(key) {
			*dst = viper.GetString(key)
		}
	}

	if viper.IsSet("llm.recognizer") {
		cfg.LLM.Recognizer = viper.GetBool("llm.recognizer")
	}
	if viper.IsSet("cache.enabled") {
		cfg.Cache.Enabled = viper.GetBool("cache.enabled")
	}
	if viper.IsSet("gateway.sources") {
		if sources := splitList(viper.GetString("gateway.sources")); len(sources) > 0 {
			cfg.Gateway.Sources = sources
		}
	}
}

// applyLLMFlags enables the summarizer from --llm flags and fills the API key
// from the provider's conventional environment variable
func applyLLMFlags(cfg *model.Config) error {
	if llmEnabled {
		cfg.LLM.Provider = llmProvider
		if llmModel != "" {
			cfg.LLM.Model = llmModel
		}
		cfg.LLM.StrictNumbers = true // Always enforce
	}
	if cfg.LLM.Provider == "" || cfg.LLM.APIKey != "" {
		return nil
	}

	switch cfg.LLM.Provider {
	case "openai":
		cfg.LLM.APIKey = os.Getenv("OPENAI_API_KEY")
		if cfg.LLM.APIKey == "" {
			return fmt.Errorf("OPENAI_API_KEY environment variable not set")
		}
	case "anthropic", "claude":
		cfg.LLM.APIKey = os.Getenv("ANTHROPIC_API_KEY")
		if cfg.LLM.APIKey == "" {
			return fmt.Errorf("ANTHROPIC_API_KEY environment variable not set")
		}
	case "ollama":
		// Ollama doesn't need an API key
		if baseURL := os.Getenv("OLLAMA_BASE_URL"); baseURL != "" && cfg.LLM.BaseURL == "" {
			cfg.LLM.BaseURL = baseURL
		}
	}
	return nil
}

// buildPipeline opens the configured gateway chain and wires the pipeline.
// The closer releases the SQL store.
func buildPipeline(ctx context.Context, cfg *model.Config) (*pipeline.Pipeline, io.Closer, error) {
	cat := catalog.Default()
	gw, closer, err := gateway.Build(ctx, cfg, cat)
	if err != nil {
		return nil, nil, fmt.Errorf("build gateway: %w", err)
	}
	return pipeline.NewPipeline(cfg, cat, gw), closer, nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
