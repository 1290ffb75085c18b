package contract

import (
	"context"

	admissionsx "github.com/tanpawarit/Montebello-TourBot/admissions"
)

// DialogueModel is the hosted-model boundary for a conversation turn. It is
// an interface so tests can run without a network.
type DialogueModel interface {
	Respond(ctx context.Context, req DialogueRequest) (DialogueOutcome, error)
}

// CapacityStore exposes the read and reserve operations the assistant needs.
// FindTourByInput resolves free-form user wording (list index, Spanish
// ordinal, date prefix) to a tour; nil means no match.
type CapacityStore interface {
	ListActiveTours(ctx context.Context) ([]admissionsx.TourDate, error)
	ListCourses(ctx context.Context) ([]admissionsx.Course, error)
	FindTourByInput(ctx context.Context, userChoice string) (*admissionsx.TourDate, error)
	ReserveCourseInterest(ctx context.Context, grades []string) (admissionsx.ReservationResult, error)
}

// RegistrationWriter persists one completed booking.
type RegistrationWriter interface {
	CreateRegistration(ctx context.Context, input admissionsx.RegistrationInput) (*admissionsx.Registration, error)
}
