package tourbot

import (
	"context"

	contractx "github.com/tanpawarit/Montebello-TourBot/agent/contract"
)

// FallbackReply is what families see when no model API key is configured.
const FallbackReply = "Por el momento no puedo procesar tu mensaje de forma automática. " +
	"Puedes elegir una de las fechas de tour sugeridas o escribirnos a admisiones " +
	"para completar tu registro."

// Fallback is the degraded DialogueModel used when the hosted model is not
// configured. It never registers anyone; it only points at the tour list.
type Fallback struct{}

var _ contractx.DialogueModel = Fallback{}

func (Fallback) Respond(ctx context.Context, req contractx.DialogueRequest) (contractx.DialogueOutcome, error) {
	return contractx.DialogueOutcome{Message: FallbackReply}, nil
}
