package llm

import (
	"strings"
	"time"

	contractx "github.com/tanpawarit/Montebello-TourBot/agent/contract"
	openrouterx "github.com/tanpawarit/Montebello-TourBot/pkg/openrouter"
)

type Config struct {
	BaseURL            string        `envconfig:"BASE_URL" split_words:"true" default:"https://openrouter.ai/api/v1"`
	APIKey             string        `envconfig:"API_KEY" split_words:"true"`
	Model              string        `envconfig:"MODEL" split_words:"true" default:"openai/gpt-4o-mini"`
	MaxCompletionToken int           `envconfig:"MAX_COMPLETION_TOKEN" split_words:"true" default:"150"`
	Temperature        float32       `envconfig:"TEMPERATURE" split_words:"true" default:"0.6"`
	Timeout            time.Duration `envconfig:"TIMEOUT" split_words:"true" default:"30s"`
	SiteURL            string        `envconfig:"SITE_URL" split_words:"true"`
	SiteName           string        `envconfig:"SITE_NAME" split_words:"true"`

	// The extraction call is cheaper and deterministic; it may run on its
	// own model with a tighter token budget.
	ExtractorModel       string  `envconfig:"EXTRACTOR_MODEL" split_words:"true"`
	ExtractorMaxToken    int     `envconfig:"EXTRACTOR_MAX_TOKEN" split_words:"true" default:"120"`
	ExtractorTemperature float32 `envconfig:"EXTRACTOR_TEMPERATURE" split_words:"true" default:"0"`
}

// Enabled reports whether a hosted model can be called at all. When false the
// assistant degrades to a fixed non-LLM reply path.
func (c Config) Enabled() bool {
	return strings.TrimSpace(c.APIKey) != ""
}

func (c Config) OpenRouterFor(role contractx.ModelRole) openrouterx.Config {
	modelName := strings.TrimSpace(c.Model)
	temp := c.Temperature
	maxToken := c.MaxCompletionToken

	if role == contractx.ModelRoleExtractor {
		if v := strings.TrimSpace(c.ExtractorModel); v != "" {
			modelName = v
		}
		temp = c.ExtractorTemperature
		maxToken = c.ExtractorMaxToken
	}

	return openrouterx.Config{
		BaseURL:            strings.TrimSpace(c.BaseURL),
		APIKey:             strings.TrimSpace(c.APIKey),
		Model:              modelName,
		MaxCompletionToken: &maxToken,
		Temperature:        temp,
		Timeout:            c.Timeout,
		SiteURL:            strings.TrimSpace(c.SiteURL),
		SiteName:           strings.TrimSpace(c.SiteName),
	}
}
