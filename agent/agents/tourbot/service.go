// Package tourbot is the dialogue orchestrator: one compiled graph per user
// turn, with exactly two terminal outcomes — reply-and-continue or
// reply-and-complete (a registration was written).
package tourbot

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cloudwego/eino/compose"
	"github.com/google/uuid"
	contractx "github.com/tanpawarit/Montebello-TourBot/agent/contract"
	tourbotnode "github.com/tanpawarit/Montebello-TourBot/agent/nodes"
	statex "github.com/tanpawarit/Montebello-TourBot/agent/state"
	toolx "github.com/tanpawarit/Montebello-TourBot/agent/tool"
)

var (
	ErrInvalidMessage = tourbotnode.ErrInvalidMessage
	ErrInvalidConvID  = tourbotnode.ErrInvalidConvID
)

const (
	// IntroReply opens every conversation.
	IntroReply = "Hola 👋 soy SAM, tu asistente de Admisiones del Montebello. " +
		"¿En qué puedo ayudarte hoy? Estoy aquí para responder tus dudas " +
		"y ayudarte a registrarte en el tour informativo cuando lo desees."

	// ReplyModelDown is the generic apology when the hosted model call fails.
	ReplyModelDown = "Lo siento, tuve un inconveniente técnico al procesar tu mensaje. " +
		"¿Podrías intentarlo de nuevo en un momento?"

	// ReplyBadToolData re-prompts when the model sent unusable tool arguments.
	ReplyBadToolData = "Creo que hubo un problema con los datos. " +
		"¿Me confirmas nuevamente la fecha que deseas?"
)

// Tourbot handles conversation turns for the admissions assistant.
type Tourbot struct {
	threads   statex.Store
	catalog   contractx.CapacityStore
	model     contractx.DialogueModel
	executor  toolx.Executor
	extractor statex.Extractor

	graphRunner compose.Runnable[tourbotnode.GraphInput, tourbotnode.GraphOutput]

	now func() time.Time
}

// New wires the dialogue graph. extractor may be nil: compaction then keeps
// raw history, which only costs tokens.
func New(
	threads statex.Store,
	catalog contractx.CapacityStore,
	writer contractx.RegistrationWriter,
	model contractx.DialogueModel,
	extractor statex.Extractor,
) (*Tourbot, error) {
	if threads == nil {
		return nil, errors.New("thread store is required")
	}
	if catalog == nil {
		return nil, errors.New("capacity store is required")
	}
	if writer == nil {
		return nil, errors.New("registration writer is required")
	}
	if model == nil {
		model = Fallback{}
	}

	b := &Tourbot{
		threads:   threads,
		catalog:   catalog,
		model:     model,
		executor:  toolx.NewExecutor(catalog, writer),
		extractor: extractor,
		now:       time.Now,
	}

	graphRunner, err := b.compileHandleTurnGraph(context.Background())
	if err != nil {
		return nil, err
	}
	b.graphRunner = graphRunner

	return b, nil
}

// StartConversation creates a fresh thread seeded with the intro reply and
// returns its id.
func (b *Tourbot) StartConversation(ctx context.Context) (string, string, error) {
	conversationID := uuid.NewString()

	thread := statex.NewThread(conversationID, b.now())
	thread.Append(statex.RoleAssistant, IntroReply)
	if err := b.threads.Put(ctx, thread); err != nil {
		return "", "", fmt.Errorf("store new thread: %w", err)
	}
	return conversationID, IntroReply, nil
}

// HandleTurn processes one user message. Model-side failures come back as a
// conversational apology or re-prompt with the stored state untouched; only
// infrastructure failures (the database, the thread store) return an error.
func (b *Tourbot) HandleTurn(ctx context.Context, conversationID, text string) (contractx.TurnResult, error) {
	out, err := b.graphRunner.Invoke(ctx, tourbotnode.GraphInput{
		ConversationID: conversationID,
		Text:           text,
	})
	if err != nil {
		switch {
		case errors.Is(err, contractx.ErrModelInvoke):
			return contractx.TurnResult{Reply: ReplyModelDown, Stage: contractx.StageChat}, nil
		case errors.Is(err, contractx.ErrSchemaViolation):
			return contractx.TurnResult{Reply: ReplyBadToolData, Stage: contractx.StageChat}, nil
		default:
			return contractx.TurnResult{}, err
		}
	}

	return contractx.TurnResult{
		Reply:                 out.Reply,
		Stage:                 out.Stage,
		RegistrationCompleted: out.RegistrationCompleted,
		WaitListed:            out.WaitListed,
	}, nil
}

// SuggestTours renders the pickable tour list shown beside every reply.
func (b *Tourbot) SuggestTours(ctx context.Context) ([]string, error) {
	tours, err := b.catalog.ListActiveTours(ctx)
	if err != nil {
		return nil, err
	}
	suggestions := make([]string, 0, len(tours))
	for i, tour := range tours {
		suggestions = append(suggestions, fmt.Sprintf("%d. %s · Cupo abierto", i+1, tour.Display()))
	}
	return suggestions, nil
}
