package tool

import (
	"context"
	"errors"
	"testing"

	admissionsx "github.com/tanpawarit/Montebello-TourBot/admissions"
	contractx "github.com/tanpawarit/Montebello-TourBot/agent/contract"
)

type fakeCapacityStore struct {
	tours       []admissionsx.TourDate
	courses     []admissionsx.Course
	reservation admissionsx.ReservationResult
	reserveErr  error
	reserved    [][]string
}

func (f *fakeCapacityStore) ListActiveTours(ctx context.Context) ([]admissionsx.TourDate, error) {
	return f.tours, nil
}

func (f *fakeCapacityStore) ListCourses(ctx context.Context) ([]admissionsx.Course, error) {
	return f.courses, nil
}

func (f *fakeCapacityStore) FindTourByInput(ctx context.Context, userChoice string) (*admissionsx.TourDate, error) {
	for i := range f.tours {
		if f.tours[i].Date == userChoice {
			return &f.tours[i], nil
		}
	}
	return nil, nil
}

func (f *fakeCapacityStore) ReserveCourseInterest(ctx context.Context, grades []string) (admissionsx.ReservationResult, error) {
	f.reserved = append(f.reserved, append([]string(nil), grades...))
	if f.reserveErr != nil {
		return admissionsx.ReservationResult{}, f.reserveErr
	}
	return f.reservation, nil
}

type fakeWriter struct {
	created []admissionsx.RegistrationInput
	err     error
	nextID  int64
}

func (f *fakeWriter) CreateRegistration(ctx context.Context, input admissionsx.RegistrationInput) (*admissionsx.Registration, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.created = append(f.created, input)
	f.nextID++
	return &admissionsx.Registration{
		ID:            f.nextID,
		FirstName:     input.FirstName,
		LastName:      input.LastName,
		Email:         input.Email,
		Phone:         input.Phone,
		GradeInterest: input.GradeInterest,
		TourDateID:    input.TourDateID,
		WaitListed:    input.WaitListed,
	}, nil
}

func validArgs() map[string]any {
	return map[string]any{
		"name":         "María Paz Andrade",
		"email":        "maria@example.com",
		"phone":        "0991234567",
		"grade":        "Inicial, 1° EGB",
		"tour_date_id": float64(2),
	}
}

func TestExecutorUnknownTool(t *testing.T) {
	t.Parallel()

	exec := NewExecutor(&fakeCapacityStore{}, &fakeWriter{})

	result, err := exec(context.Background(), "transfer_money", nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Error == "" {
		t.Fatal("expected a tool-not-available error message")
	}
}

func TestRegisterUserSuccess(t *testing.T) {
	t.Parallel()

	store := &fakeCapacityStore{
		tours: []admissionsx.TourDate{{ID: 2, Date: "2026-03-07"}},
		reservation: admissionsx.ReservationResult{
			Matched: []admissionsx.CourseReservation{
				{Course: "Inicial", Status: admissionsx.ReservationAvailable},
				{Course: "1° EGB", Status: admissionsx.ReservationAvailable},
			},
		},
	}
	writer := &fakeWriter{}
	exec := NewExecutor(store, writer)

	result, err := exec(context.Background(), ToolRegisterUser, validArgs())
	if err != nil {
		t.Fatalf("execute: %v", err)
	}
	if result.Error != "" {
		t.Fatalf("unexpected rejection: %q", result.Error)
	}

	output, ok := result.Result.(RegisterOutput)
	if !ok {
		t.Fatalf("expected RegisterOutput, got %T", result.Result)
	}
	if output.RegistrationID != 1 || output.WaitListed {
		t.Fatalf("unexpected output: %+v", output)
	}
	if output.TourDate != "2026-03-07" {
		t.Fatalf("expected tour date resolved, got %q", output.TourDate)
	}

	if len(writer.created) != 1 {
		t.Fatalf("expected 1 registration, got %d", len(writer.created))
	}
	created := writer.created[0]
	if created.FirstName != "María" || created.LastName != "Paz Andrade" {
		t.Fatalf("name split wrong: %+v", created)
	}
	if created.GradeInterest != "Inicial, 1° EGB" {
		t.Fatalf("grade interest wrong: %q", created.GradeInterest)
	}

	if len(store.reserved) != 1 || len(store.reserved[0]) != 2 {
		t.Fatalf("expected one reservation over two grades, got %+v", store.reserved)
	}
}

func TestRegisterUserWaitlistFlagPropagates(t *testing.T) {
	t.Parallel()

	store := &fakeCapacityStore{
		tours: []admissionsx.TourDate{{ID: 2, Date: "2026-03-07"}},
		reservation: admissionsx.ReservationResult{
			WaitListed: true,
			Matched: []admissionsx.CourseReservation{
				{Course: "4° EGB", Status: admissionsx.ReservationWaitlist},
			},
		},
	}
	writer := &fakeWriter{}
	exec := NewExecutor(store, writer)

	result, err := exec(context.Background(), ToolRegisterUser, validArgs())
	if err != nil {
		t.Fatalf("execute: %v", err)
	}
	output, ok := result.Result.(RegisterOutput)
	if !ok {
		t.Fatalf("expected RegisterOutput, got %T", result.Result)
	}
	if !output.WaitListed {
		t.Fatal("waitlist flag should propagate to the output")
	}
	if !writer.created[0].WaitListed {
		t.Fatal("waitlist flag should be stored on the registration")
	}
}

func TestRegisterUserMissingContact(t *testing.T) {
	t.Parallel()

	exec := NewExecutor(&fakeCapacityStore{}, &fakeWriter{})

	args := validArgs()
	delete(args, "email")

	result, err := exec(context.Background(), ToolRegisterUser, args)
	if err != nil {
		t.Fatalf("execute: %v", err)
	}
	rejection, ok := result.Result.(RegisterRejection)
	if !ok {
		t.Fatalf("expected RegisterRejection, got %T", result.Result)
	}
	if rejection.Kind != RejectionBadContact {
		t.Fatalf("expected %q rejection, got %q", RejectionBadContact, rejection.Kind)
	}
}

func TestRegisterUserBadTourDateArg(t *testing.T) {
	t.Parallel()

	exec := NewExecutor(&fakeCapacityStore{}, &fakeWriter{})

	for _, bad := range []any{nil, "mañana", float64(0), float64(-3)} {
		args := validArgs()
		if bad == nil {
			delete(args, "tour_date_id")
		} else {
			args["tour_date_id"] = bad
		}

		result, err := exec(context.Background(), ToolRegisterUser, args)
		if err != nil {
			t.Fatalf("execute with tour_date_id=%v: %v", bad, err)
		}
		rejection, ok := result.Result.(RegisterRejection)
		if !ok || rejection.Kind != RejectionBadDate {
			t.Fatalf("expected bad date rejection for %v, got %+v", bad, result.Result)
		}
	}
}

func TestRegisterUserResolvesTextualTourDate(t *testing.T) {
	t.Parallel()

	store := &fakeCapacityStore{
		tours: []admissionsx.TourDate{{ID: 5, Date: "2026-03-07"}},
	}
	writer := &fakeWriter{}
	exec := NewExecutor(store, writer)

	args := validArgs()
	args["tour_date_id"] = "2026-03-07"

	result, err := exec(context.Background(), ToolRegisterUser, args)
	if err != nil {
		t.Fatalf("execute: %v", err)
	}
	if _, ok := result.Result.(RegisterOutput); !ok {
		t.Fatalf("expected RegisterOutput, got %+v", result.Result)
	}
	if writer.created[0].TourDateID != 5 {
		t.Fatalf("textual date resolved to wrong tour: %+v", writer.created[0])
	}
}

func TestRegisterUserUnknownTourRejected(t *testing.T) {
	t.Parallel()

	store := &fakeCapacityStore{}
	writer := &fakeWriter{err: admissionsx.ErrTourNotFound}
	exec := NewExecutor(store, writer)

	result, err := exec(context.Background(), ToolRegisterUser, validArgs())
	if err != nil {
		t.Fatalf("unknown tour should be a rejection, not an error: %v", err)
	}
	rejection, ok := result.Result.(RegisterRejection)
	if !ok || rejection.Kind != RejectionBadDate {
		t.Fatalf("expected bad date rejection, got %+v", result.Result)
	}
}

func TestRegisterUserStorageFailureIsError(t *testing.T) {
	t.Parallel()

	store := &fakeCapacityStore{}
	writer := &fakeWriter{err: errors.New("disk full")}
	exec := NewExecutor(store, writer)

	_, err := exec(context.Background(), ToolRegisterUser, validArgs())
	if err == nil {
		t.Fatal("expected storage failure to surface as an error")
	}
}

func TestInfosDeclareRegisterUser(t *testing.T) {
	t.Parallel()

	infos := Infos()
	if len(infos) != 1 {
		t.Fatalf("expected 1 tool, got %d", len(infos))
	}
	if infos[0].Name != ToolRegisterUser {
		t.Fatalf("expected %q, got %q", ToolRegisterUser, infos[0].Name)
	}
}

var (
	_ contractx.CapacityStore     = (*fakeCapacityStore)(nil)
	_ contractx.RegistrationWriter = (*fakeWriter)(nil)
)
