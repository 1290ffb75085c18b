package tourbotnode

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"
	contractx "github.com/tanpawarit/Montebello-TourBot/agent/contract"
	toolx "github.com/tanpawarit/Montebello-TourBot/agent/tool"
)

// User-facing replies for the registration path. The assistant speaks
// Spanish; these mirror the scripted confirmations it was trained around.
const (
	ReplyConfirmDate = "Necesito confirmar la fecha exacta del tour. ¿Cuál deseas?"
	ReplyRetryData   = "No logré completar el registro. ¿Podrías confirmarme nuevamente tus datos?"
	ReplyCompleted   = "¡Listo! 🙌 Tu registro al tour fue procesado con éxito. En breve recibirás la confirmación por correo."
)

// ExecuteRegistration runs the register_user tool call and composes the
// closing (or re-prompting) reply. Rejections are conversational, not errors:
// the user is asked again and the turn still succeeds.
func ExecuteRegistration(ctx context.Context, in *GraphState, executor toolx.Executor) (*GraphState, error) {
	if in == nil {
		return nil, fmt.Errorf("%w: graph state is nil", contractx.ErrValidation)
	}
	if in.Outcome.ToolCall == nil {
		return nil, fmt.Errorf("%w: registration node without tool call", contractx.ErrValidation)
	}

	call := in.Outcome.ToolCall
	result, err := executor(ctx, call.Tool, call.Args)
	if err != nil {
		return nil, err
	}

	switch payload := result.Result.(type) {
	case toolx.RegisterRejection:
		log.Info().
			Str("conversation_id", in.ConversationID).
			Str("kind", payload.Kind).
			Str("detail", payload.Detail).
			Msg("registration rejected")
		if payload.Kind == toolx.RejectionBadDate {
			in.Reply = ReplyConfirmDate
		} else {
			in.Reply = ReplyRetryData
		}
		in.Stage = contractx.StageChat
		return in, nil

	case toolx.RegisterOutput:
		log.Info().
			Str("conversation_id", in.ConversationID).
			Int64("registration_id", payload.RegistrationID).
			Bool("wait_listed", payload.WaitListed).
			Msg("registration completed")
		in.Reply = ReplyCompleted
		in.Stage = contractx.StageCompleted
		in.RegistrationCompleted = true
		in.WaitListed = payload.WaitListed
		return in, nil

	default:
		// Unknown tool name or a malformed result; ask the user to retry.
		in.Reply = ReplyRetryData
		in.Stage = contractx.StageChat
		return in, nil
	}
}
