package tool

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	admissionsx "github.com/tanpawarit/Montebello-TourBot/admissions"
	contractx "github.com/tanpawarit/Montebello-TourBot/agent/contract"
)

// Rejection kinds let the reply layer pick the right re-prompt without
// sniffing error strings.
const (
	RejectionBadDate    = "bad_tour_date"
	RejectionBadContact = "bad_contact"
)

// RegisterRejection is placed in ToolResult.Result when the registration was
// refused for a user-correctable reason.
type RegisterRejection struct {
	Kind   string `json:"kind"`
	Detail string `json:"detail"`
}

// RegisterOutput is placed in ToolResult.Result on success.
type RegisterOutput struct {
	RegistrationID int64                           `json:"registration_id"`
	WaitListed     bool                            `json:"wait_listed"`
	TourDate       string                          `json:"tour_date"`
	Reservations   []admissionsx.CourseReservation `json:"reservations,omitempty"`
}

type registerArgs struct {
	Name       string
	Email      string
	Phone      string
	Grades     []string
	TourDateID int64
}

func executeRegisterUser(
	ctx context.Context,
	store contractx.CapacityStore,
	writer contractx.RegistrationWriter,
	args map[string]any,
) (contractx.ToolResult, error) {
	parsed, rejection := parseRegisterArgs(args)
	if rejection != nil {
		return rejected(*rejection), nil
	}

	if parsed.TourDateID == 0 {
		// The model sometimes echoes the user's wording instead of an id.
		tour, err := store.FindTourByInput(ctx, stringArg(args, "tour_date_id"))
		if err != nil {
			return contractx.ToolResult{}, fmt.Errorf("resolve tour date: %w", err)
		}
		if tour == nil {
			return rejected(RegisterRejection{
				Kind:   RejectionBadDate,
				Detail: "tour_date_id does not match any open tour",
			}), nil
		}
		parsed.TourDateID = tour.ID
	}

	// Per-grade capacity first: full courses flip the whole registration to
	// the waitlist, they never block it.
	reservation, err := store.ReserveCourseInterest(ctx, parsed.Grades)
	if err != nil {
		return contractx.ToolResult{}, fmt.Errorf("reserve course interest: %w", err)
	}

	first, last := splitName(parsed.Name)
	reg, err := writer.CreateRegistration(ctx, admissionsx.RegistrationInput{
		FirstName:     first,
		LastName:      last,
		Email:         parsed.Email,
		Phone:         parsed.Phone,
		GradeInterest: strings.Join(parsed.Grades, ", "),
		TourDateID:    parsed.TourDateID,
		WaitListed:    reservation.WaitListed,
	})
	if errors.Is(err, admissionsx.ErrTourNotFound) || errors.Is(err, admissionsx.ErrTourClosed) {
		return rejected(RegisterRejection{
			Kind:   RejectionBadDate,
			Detail: fmt.Sprintf("tour_date_id=%d is unknown or closed", parsed.TourDateID),
		}), nil
	}
	if err != nil {
		return contractx.ToolResult{}, fmt.Errorf("create registration: %w", err)
	}

	return contractx.ToolResult{
		Tool: ToolRegisterUser,
		Result: RegisterOutput{
			RegistrationID: reg.ID,
			WaitListed:     reg.WaitListed,
			TourDate:       tourDateOf(ctx, store, reg.TourDateID),
			Reservations:   reservation.Matched,
		},
	}, nil
}

func parseRegisterArgs(args map[string]any) (registerArgs, *RegisterRejection) {
	name := stringArg(args, "name")
	email := stringArg(args, "email")
	if name == "" || email == "" {
		return registerArgs{}, &RegisterRejection{
			Kind:   RejectionBadContact,
			Detail: "name and email are required",
		}
	}

	// A zero id means the argument was not a usable integer; the caller gets
	// one chance to resolve it from the raw wording before rejecting.
	tourDateID, ok := intArg(args, "tour_date_id")
	if !ok || tourDateID <= 0 {
		if stringArg(args, "tour_date_id") == "" {
			return registerArgs{}, &RegisterRejection{
				Kind:   RejectionBadDate,
				Detail: "tour_date_id is required",
			}
		}
		tourDateID = 0
	}

	return registerArgs{
		Name:       name,
		Email:      email,
		Phone:      stringArg(args, "phone"),
		Grades:     splitGrades(stringArg(args, "grade")),
		TourDateID: tourDateID,
	}, nil
}

func rejected(r RegisterRejection) contractx.ToolResult {
	return contractx.ToolResult{
		Tool:   ToolRegisterUser,
		Result: r,
		Error:  r.Detail,
	}
}

func stringArg(args map[string]any, key string) string {
	raw, ok := args[key]
	if !ok {
		return ""
	}
	s, ok := raw.(string)
	if !ok {
		return ""
	}
	return strings.TrimSpace(s)
}

// intArg accepts the numeric encodings a JSON tool call can produce.
func intArg(args map[string]any, key string) (int64, bool) {
	switch v := args[key].(type) {
	case float64:
		return int64(v), true
	case int:
		return int64(v), true
	case int64:
		return v, true
	case json.Number:
		n, err := v.Int64()
		return n, err == nil
	default:
		return 0, false
	}
}

func splitName(full string) (first, last string) {
	parts := strings.Fields(full)
	if len(parts) == 0 {
		return "", ""
	}
	return parts[0], strings.Join(parts[1:], " ")
}

func splitGrades(raw string) []string {
	var grades []string
	for _, part := range strings.Split(raw, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			grades = append(grades, trimmed)
		}
	}
	return grades
}

func tourDateOf(ctx context.Context, store contractx.CapacityStore, tourDateID int64) string {
	tours, err := store.ListActiveTours(ctx)
	if err != nil {
		return ""
	}
	for i := range tours {
		if tours[i].ID == tourDateID {
			return tours[i].Date
		}
	}
	return ""
}
