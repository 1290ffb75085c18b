package tourbotnode

import (
	"context"
	"fmt"

	contractx "github.com/tanpawarit/Montebello-TourBot/agent/contract"
	statex "github.com/tanpawarit/Montebello-TourBot/agent/state"
)

// InvokeModel runs the single hosted-model call of the turn. The current user
// message rides along as the last history entry; it is persisted later.
func InvokeModel(ctx context.Context, in *GraphState, model contractx.DialogueModel) (*GraphState, error) {
	if in == nil {
		return nil, fmt.Errorf("%w: graph state is nil", contractx.ErrValidation)
	}
	if in.Thread == nil {
		return nil, fmt.Errorf("%w: thread is not loaded", contractx.ErrValidation)
	}

	history := make([]statex.Turn, 0, len(in.Thread.Turns)+1)
	history = append(history, in.Thread.Turns...)
	history = append(history, statex.Turn{Role: statex.RoleUser, Content: in.Text})

	outcome, err := model.Respond(ctx, contractx.DialogueRequest{
		History:         history,
		Summary:         in.Thread.Summary,
		TourContext:     in.TourContext,
		CapacityContext: in.CapacityContext,
	})
	if err != nil {
		return nil, err
	}

	in.Outcome = outcome
	return in, nil
}
