package contract

import (
	statex "github.com/tanpawarit/Montebello-TourBot/agent/state"
)

type ModelRole string

const (
	ModelRoleTourbot   ModelRole = "tourbot"
	ModelRoleExtractor ModelRole = "extractor"
)

const (
	// StageChat means the conversation continues; StageCompleted means a
	// registration was written and the client may navigate away.
	StageChat      = "chat"
	StageCompleted = "completed"
)

// DialogueRequest is one model call: the retained history plus the compact
// summary and the live tour/capacity context rendered as JSON text.
type DialogueRequest struct {
	History         []statex.Turn `json:"history"`
	Summary         string        `json:"summary"`
	TourContext     string        `json:"tour_context"`
	CapacityContext string        `json:"capacity_context"`
}

// ToolRequest is a structured action the model asked for.
type ToolRequest struct {
	Tool string         `json:"tool"`
	Args map[string]any `json:"args,omitempty"`
}

// DialogueOutcome is exactly one of: a text reply, or a tool invocation.
type DialogueOutcome struct {
	Message  string       `json:"message,omitempty"`
	ToolCall *ToolRequest `json:"tool_call,omitempty"`
}

// ToolResult carries the outcome of executing a tool. Error is a user-facing
// rejection reason; execution-level failures come back as Go errors instead.
type ToolResult struct {
	Tool   string `json:"tool"`
	Result any    `json:"result,omitempty"`
	Error  string `json:"error,omitempty"`
}

// TurnResult is what one user turn produces.
type TurnResult struct {
	Reply                 string `json:"reply"`
	Stage                 string `json:"stage"`
	RegistrationCompleted bool   `json:"registration_completed"`
	WaitListed            bool   `json:"wait_listed"`
}
