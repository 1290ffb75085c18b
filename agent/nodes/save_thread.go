package tourbotnode

import (
	"context"
	"fmt"
	"strings"

	contractx "github.com/tanpawarit/Montebello-TourBot/agent/contract"
	statex "github.com/tanpawarit/Montebello-TourBot/agent/state"
)

// SaveThread commits the turn: append both messages, compact if the history
// outgrew its budget, and persist. Compaction failure is non-fatal and keeps
// the raw history.
func SaveThread(ctx context.Context, in *GraphState, store statex.Store, extractor statex.Extractor) (*GraphState, error) {
	if in == nil {
		return nil, fmt.Errorf("%w: graph state is nil", contractx.ErrValidation)
	}
	if in.Thread == nil {
		return nil, fmt.Errorf("%w: thread is not loaded", contractx.ErrValidation)
	}

	in.Thread.Append(statex.RoleUser, in.Text)
	in.Thread.Append(statex.RoleAssistant, in.Reply)
	in.Thread.Compact(ctx, extractor)
	in.Thread.Touch(in.Now)

	if err := store.Put(ctx, in.Thread); err != nil {
		return nil, err
	}
	return in, nil
}

func FinalizeReply(in *GraphState) (GraphOutput, error) {
	if in == nil {
		return GraphOutput{}, fmt.Errorf("%w: graph state is nil", contractx.ErrValidation)
	}

	reply := strings.TrimSpace(in.Reply)
	if reply == "" {
		return GraphOutput{}, fmt.Errorf("%w: turn produced an empty reply", contractx.ErrValidation)
	}

	return GraphOutput{
		Reply:                 reply,
		Stage:                 in.Stage,
		RegistrationCompleted: in.RegistrationCompleted,
		WaitListed:            in.WaitListed,
	}, nil
}
