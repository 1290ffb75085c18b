// Package llm adapts the hosted model boundary to the contracts the dialogue
// service consumes: a tool-calling chat model for the conversation turn and a
// JSON-mode completion client for state extraction.
package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	einomodel "github.com/cloudwego/eino/components/model"
	einoprompt "github.com/cloudwego/eino/components/prompt"
	"github.com/cloudwego/eino/compose"
	"github.com/cloudwego/eino/schema"
	contractx "github.com/tanpawarit/Montebello-TourBot/agent/contract"
	statex "github.com/tanpawarit/Montebello-TourBot/agent/state"
)

// Dialogue runs one conversation turn against a tool-bound chat model.
type Dialogue struct {
	runner compose.Runnable[map[string]any, *schema.Message]
}

var _ contractx.DialogueModel = (*Dialogue)(nil)

func NewDialogue(
	ctx context.Context,
	chatModel einomodel.ToolCallingChatModel,
	systemPrompt string,
	tools []*schema.ToolInfo,
) (*Dialogue, error) {
	if strings.TrimSpace(systemPrompt) == "" {
		return nil, fmt.Errorf("%w: tourbot system prompt", contractx.ErrPromptMissing)
	}

	toolModel, err := chatModel.WithTools(tools)
	if err != nil {
		return nil, fmt.Errorf("%w: bind tools: %v", contractx.ErrModelInvoke, err)
	}

	runner, err := compileDialogueGraph(ctx, toolModel, systemPrompt)
	if err != nil {
		return nil, fmt.Errorf("%w: compile dialogue graph: %v", contractx.ErrModelInvoke, err)
	}
	return &Dialogue{runner: runner}, nil
}

func (d *Dialogue) Respond(ctx context.Context, req contractx.DialogueRequest) (contractx.DialogueOutcome, error) {
	summary := strings.TrimSpace(req.Summary)
	if summary == "" {
		summary = "-"
	}

	history := make([]*schema.Message, 0, len(req.History))
	for _, turn := range req.History {
		switch turn.Role {
		case statex.RoleAssistant:
			history = append(history, schema.AssistantMessage(turn.Content, nil))
		default:
			history = append(history, schema.UserMessage(turn.Content))
		}
	}

	msg, err := d.runner.Invoke(ctx, map[string]any{
		"tour_context":     req.TourContext,
		"capacity_context": req.CapacityContext,
		"summary":          summary,
		"history":          history,
	})
	if err != nil {
		return contractx.DialogueOutcome{}, fmt.Errorf("%w: dialogue invoke: %v", contractx.ErrModelInvoke, err)
	}
	if msg == nil {
		return contractx.DialogueOutcome{}, fmt.Errorf("%w: empty model response", contractx.ErrSchemaViolation)
	}

	if len(msg.ToolCalls) > 0 {
		call, err := toToolRequest(msg.ToolCalls[0])
		if err != nil {
			return contractx.DialogueOutcome{}, err
		}
		return contractx.DialogueOutcome{ToolCall: call}, nil
	}

	content := strings.TrimSpace(msg.Content)
	if content == "" {
		return contractx.DialogueOutcome{}, fmt.Errorf("%w: model returned neither text nor tool call", contractx.ErrSchemaViolation)
	}
	return contractx.DialogueOutcome{Message: content}, nil
}

func toToolRequest(call schema.ToolCall) (*contractx.ToolRequest, error) {
	tool := strings.TrimSpace(call.Function.Name)
	if tool == "" {
		return nil, fmt.Errorf("%w: tool call name is empty", contractx.ErrSchemaViolation)
	}

	args := map[string]any{}
	if rawArgs := strings.TrimSpace(call.Function.Arguments); rawArgs != "" {
		if err := json.Unmarshal([]byte(rawArgs), &args); err != nil {
			return nil, fmt.Errorf("%w: invalid tool args for tool=%s: %v", contractx.ErrSchemaViolation, tool, err)
		}
	}
	return &contractx.ToolRequest{Tool: tool, Args: args}, nil
}

func compileDialogueGraph(
	ctx context.Context,
	chatModel einomodel.BaseChatModel,
	systemPrompt string,
) (compose.Runnable[map[string]any, *schema.Message], error) {
	template := einoprompt.FromMessages(
		schema.FString,
		schema.SystemMessage(systemPrompt),
		schema.SystemMessage("Fechas de tour disponibles (JSON): {tour_context}"),
		schema.SystemMessage("Cupos por grado (JSON): {capacity_context}"),
		schema.SystemMessage("Resumen comprimido de la conversación previa (no repitas literalmente): {summary}"),
		schema.MessagesPlaceholder("history", false),
	)

	graph := compose.NewGraph[map[string]any, *schema.Message]()
	if err := graph.AddChatTemplateNode("prompt", template); err != nil {
		return nil, fmt.Errorf("add dialogue prompt node: %w", err)
	}
	if err := graph.AddChatModelNode("model", chatModel); err != nil {
		return nil, fmt.Errorf("add dialogue model node: %w", err)
	}
	if err := graph.AddEdge(compose.START, "prompt"); err != nil {
		return nil, fmt.Errorf("add dialogue edge start->prompt: %w", err)
	}
	if err := graph.AddEdge("prompt", "model"); err != nil {
		return nil, fmt.Errorf("add dialogue edge prompt->model: %w", err)
	}
	if err := graph.AddEdge("model", compose.END); err != nil {
		return nil, fmt.Errorf("add dialogue edge model->end: %w", err)
	}

	runner, err := graph.Compile(ctx, compose.WithGraphName("tourbot.dialogue_graph"))
	if err != nil {
		return nil, fmt.Errorf("compile dialogue graph: %w", err)
	}
	return runner, nil
}
