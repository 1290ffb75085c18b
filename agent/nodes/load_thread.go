package tourbotnode

import (
	"context"
	"errors"
	"fmt"

	contractx "github.com/tanpawarit/Montebello-TourBot/agent/contract"
	statex "github.com/tanpawarit/Montebello-TourBot/agent/state"
)

// LoadOrCreateThread resolves the conversation thread. The thread is not
// mutated here: the user turn is appended only after the turn succeeds, so a
// failed model call leaves the stored state untouched.
func LoadOrCreateThread(ctx context.Context, in *GraphState, store statex.Store) (*GraphState, error) {
	if in == nil {
		return nil, fmt.Errorf("%w: graph state is nil", contractx.ErrValidation)
	}

	thread, err := store.Get(ctx, in.ConversationID)
	if err != nil {
		if !errors.Is(err, statex.ErrThreadNotFound) {
			return nil, err
		}
		thread = statex.NewThread(in.ConversationID, in.Now)
	}

	in.Thread = thread
	return in, nil
}
