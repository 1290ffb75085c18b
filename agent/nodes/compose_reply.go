package tourbotnode

import (
	"fmt"
	"strings"

	contractx "github.com/tanpawarit/Montebello-TourBot/agent/contract"
)

// ComposeReply handles the plain-text outcome: the model's message becomes
// the assistant turn and the conversation continues.
func ComposeReply(in *GraphState) (*GraphState, error) {
	if in == nil {
		return nil, fmt.Errorf("%w: graph state is nil", contractx.ErrValidation)
	}

	message := strings.TrimSpace(in.Outcome.Message)
	if message == "" {
		return nil, fmt.Errorf("%w: model message is empty", contractx.ErrSchemaViolation)
	}

	in.Reply = message
	in.Stage = contractx.StageChat
	return in, nil
}
