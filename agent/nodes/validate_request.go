// Package tourbotnode holds the graph nodes for one conversation turn. Each
// node takes the shared GraphState, does one thing, and hands the state on;
// the tourbot service wires them into a compiled graph.
package tourbotnode

import (
	"errors"
	"strings"
	"time"

	contractx "github.com/tanpawarit/Montebello-TourBot/agent/contract"
	statex "github.com/tanpawarit/Montebello-TourBot/agent/state"
)

var (
	ErrInvalidMessage = errors.New("message is empty")
	ErrInvalidConvID  = errors.New("conversation id is empty")
)

type GraphInput struct {
	ConversationID string
	Text           string
}

type GraphOutput struct {
	Reply                 string
	Stage                 string
	RegistrationCompleted bool
	WaitListed            bool
}

type GraphState struct {
	ConversationID string
	Text           string
	Now            time.Time

	Thread          *statex.Thread
	TourContext     string
	CapacityContext string

	Outcome contractx.DialogueOutcome

	Reply                 string
	Stage                 string
	RegistrationCompleted bool
	WaitListed            bool
}

func ValidateRequest(in GraphInput, nowFn func() time.Time) (*GraphState, error) {
	conversationID := strings.TrimSpace(in.ConversationID)
	if conversationID == "" {
		return nil, ErrInvalidConvID
	}

	text := strings.TrimSpace(in.Text)
	if text == "" {
		return nil, ErrInvalidMessage
	}

	return &GraphState{
		ConversationID: conversationID,
		Text:           text,
		Now:            nowFn().UTC(),
		Stage:          contractx.StageChat,
	}, nil
}
