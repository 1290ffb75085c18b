package state

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
)

type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Turn is one message in a conversation.
type Turn struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

const (
	// IntentUnknown and friends mirror the extraction contract.
	IntentUnknown  = "unknown"
	IntentInfo     = "info"
	IntentQuestion = "question"
	IntentRegister = "register"
)

// GradeList tolerates the extractor returning either a JSON array or a
// comma-separated string.
type GradeList []string

func (g *GradeList) UnmarshalJSON(data []byte) error {
	var asList []string
	if err := json.Unmarshal(data, &asList); err == nil {
		*g = asList
		return nil
	}

	var asString string
	if err := json.Unmarshal(data, &asString); err != nil {
		return fmt.Errorf("grades must be a list or a string: %w", err)
	}
	var grades []string
	for _, part := range strings.Split(asString, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			grades = append(grades, trimmed)
		}
	}
	*g = grades
	return nil
}

// Profile holds the fields extracted from a conversation so far.
type Profile struct {
	Name   string    `json:"name"`
	Email  string    `json:"email"`
	Phone  string    `json:"phone"`
	Grades GradeList `json:"grades"`
	Intent string    `json:"intent"`
	Ready  bool      `json:"ready_for_registration"`
}

// Merge overlays p with the non-empty fields of next, so a later extraction
// over a short window never erases facts captured earlier.
func (p Profile) Merge(next Profile) Profile {
	merged := p
	if next.Name != "" {
		merged.Name = next.Name
	}
	if next.Email != "" {
		merged.Email = next.Email
	}
	if next.Phone != "" {
		merged.Phone = next.Phone
	}
	if len(next.Grades) > 0 {
		merged.Grades = next.Grades
	}
	if next.Intent != "" && next.Intent != IntentUnknown {
		merged.Intent = next.Intent
	}
	if next.Ready {
		merged.Ready = true
	}
	return merged
}

// Snapshot renders the compressed summary line injected into the model input.
func (p Profile) Snapshot() string {
	orDash := func(v string) string {
		if v == "" {
			return "-"
		}
		return v
	}
	ready := "no"
	if p.Ready {
		ready = "sí"
	}
	return fmt.Sprintf(
		"Nombre: %s, Email: %s, Teléfono: %s, Grados: %s, Intención: %s, Listo: %s",
		orDash(p.Name),
		orDash(p.Email),
		orDash(p.Phone),
		orDash(strings.Join(p.Grades, ", ")),
		orDash(p.Intent),
		ready,
	)
}

// Extractor turns the last few raw turns into a Profile. Implementations
// call a hosted model; failures are treated as non-fatal by the thread.
type Extractor interface {
	Extract(ctx context.Context, turns []Turn) (Profile, error)
}

const (
	// MaxMessages is the raw-history threshold that triggers compaction.
	MaxMessages = 10
	// RecentMessages is how many raw turns survive a compaction.
	RecentMessages = 6
	// ExtractWindow is how many trailing turns the extractor sees.
	ExtractWindow = 4
)

// Thread stores the rolling history and compressed summary for one
// conversation. Lifetime is process memory only.
type Thread struct {
	ConversationID string    `json:"conversation_id"`
	Turns          []Turn    `json:"turns"`
	Summary        string    `json:"summary"`
	Profile        Profile   `json:"profile"`
	UpdatedAt      time.Time `json:"updated_at"`
}

func NewThread(conversationID string, now time.Time) *Thread {
	return &Thread{
		ConversationID: conversationID,
		UpdatedAt:      now.UTC(),
	}
}

func (t *Thread) Append(role Role, content string) {
	t.Turns = append(t.Turns, Turn{Role: role, Content: content})
}

func (t *Thread) Touch(now time.Time) {
	t.UpdatedAt = now.UTC()
}

// RecentTurns returns up to n trailing turns.
func (t *Thread) RecentTurns(n int) []Turn {
	if n <= 0 || len(t.Turns) <= n {
		return t.Turns
	}
	return t.Turns[len(t.Turns)-n:]
}

// Compact bounds the history sent to the model. Once the raw history exceeds
// MaxMessages it runs the extractor over the trailing window, folds the
// result into the accumulated profile, rewrites the summary snapshot, and
// drops everything but the last RecentMessages turns. An extraction failure
// keeps the raw history unsummarized; the next turn retries.
func (t *Thread) Compact(ctx context.Context, extractor Extractor) {
	if len(t.Turns) <= MaxMessages {
		return
	}
	if extractor == nil {
		return
	}

	profile, err := extractor.Extract(ctx, t.RecentTurns(ExtractWindow))
	if err != nil {
		log.Warn().
			Err(err).
			Str("conversation_id", t.ConversationID).
			Msg("state extraction failed, keeping raw history")
		return
	}

	t.Profile = t.Profile.Merge(profile)
	t.Summary = t.Profile.Snapshot()
	t.Turns = append([]Turn(nil), t.RecentTurns(RecentMessages)...)
}
