package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	openaisdk "github.com/openai/openai-go"
	contractx "github.com/tanpawarit/Montebello-TourBot/agent/contract"
	statex "github.com/tanpawarit/Montebello-TourBot/agent/state"
)

// Extractor pulls the user's registration facts out of the last few turns
// with a JSON-mode completion call.
type Extractor struct {
	client      *openaisdk.Client
	model       string
	prompt      string
	maxTokens   int64
	temperature float64
}

var _ statex.Extractor = (*Extractor)(nil)

func NewExtractor(client *openaisdk.Client, cfg Config, prompt string) (*Extractor, error) {
	if client == nil {
		return nil, fmt.Errorf("%w: openai client is nil", contractx.ErrValidation)
	}
	if strings.TrimSpace(prompt) == "" {
		return nil, fmt.Errorf("%w: extractor system prompt", contractx.ErrPromptMissing)
	}

	model := strings.TrimSpace(cfg.ExtractorModel)
	if model == "" {
		model = strings.TrimSpace(cfg.Model)
	}

	return &Extractor{
		client:      client,
		model:       model,
		prompt:      prompt,
		maxTokens:   int64(cfg.ExtractorMaxToken),
		temperature: float64(cfg.ExtractorTemperature),
	}, nil
}

func (e *Extractor) Extract(ctx context.Context, turns []statex.Turn) (statex.Profile, error) {
	dialogue := renderDialogue(turns)
	if dialogue == "" {
		return statex.Profile{}, fmt.Errorf("%w: no turns to extract from", contractx.ErrValidation)
	}

	resp, err := e.client.Chat.Completions.New(ctx, openaisdk.ChatCompletionNewParams{
		Model: openaisdk.ChatModel(e.model),
		Messages: []openaisdk.ChatCompletionMessageParamUnion{
			openaisdk.SystemMessage(e.prompt),
			openaisdk.UserMessage(dialogue),
		},
		ResponseFormat: openaisdk.ChatCompletionNewParamsResponseFormatUnion{
			OfJSONObject: &openaisdk.ResponseFormatJSONObjectParam{},
		},
		Temperature: openaisdk.Float(e.temperature),
		MaxTokens:   openaisdk.Int(e.maxTokens),
	})
	if err != nil {
		return statex.Profile{}, fmt.Errorf("%w: extraction call: %v", contractx.ErrModelInvoke, err)
	}
	if len(resp.Choices) == 0 {
		return statex.Profile{}, fmt.Errorf("%w: extraction returned no choices", contractx.ErrSchemaViolation)
	}

	var profile statex.Profile
	if err := json.Unmarshal([]byte(resp.Choices[0].Message.Content), &profile); err != nil {
		return statex.Profile{}, fmt.Errorf("%w: decode extraction payload: %v", contractx.ErrSchemaViolation, err)
	}
	return profile, nil
}

// renderDialogue compresses turns into "U: .../A: ..." lines to keep the
// extraction call cheap.
func renderDialogue(turns []statex.Turn) string {
	var b strings.Builder
	for _, turn := range turns {
		content := strings.TrimSpace(turn.Content)
		if content == "" {
			continue
		}
		prefix := "U"
		if turn.Role == statex.RoleAssistant {
			prefix = "A"
		}
		if b.Len() > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(prefix)
		b.WriteString(": ")
		b.WriteString(content)
	}
	return b.String()
}
