package admissions

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/uptrace/bun"
)

var (
	ErrTourNotFound = errors.New("tour date not found")
	ErrTourClosed   = errors.New("tour date is closed")
)

// Store exposes capacity reservation and registration writes over the
// SQLite-backed tables. A reservation either decrements capacity_available or
// increments waitlist_count, never both; racing reservations on the same
// course are not serialized beyond the single UPDATE statement.
type Store struct {
	db  *bun.DB
	now func() time.Time
}

type StoreOption func(*Store)

// WithClock overrides the wall clock, for tests.
func WithClock(now func() time.Time) StoreOption {
	return func(s *Store) {
		if now != nil {
			s.now = now
		}
	}
}

func NewStore(db *bun.DB, opts ...StoreOption) (*Store, error) {
	if db == nil {
		return nil, errors.New("db is required")
	}
	s := &Store{db: db, now: time.Now}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s, nil
}

// ListActiveTours returns open tour dates from today onwards, soonest first.
func (s *Store) ListActiveTours(ctx context.Context) ([]TourDate, error) {
	today := s.now().Format("2006-01-02")

	var tours []TourDate
	err := s.db.NewSelect().
		Model(&tours).
		Where("status != ?", TourStatusClosed).
		Where("date >= ?", today).
		Order("date ASC").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("list active tours: %w", err)
	}
	return tours, nil
}

// GetTour returns a tour date by id regardless of its status.
func (s *Store) GetTour(ctx context.Context, id int64) (*TourDate, error) {
	tour := new(TourDate)
	err := s.db.NewSelect().Model(tour).Where("id = ?", id).Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrTourNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get tour id=%d: %w", id, err)
	}
	return tour, nil
}

func (s *Store) ListCourses(ctx context.Context) ([]Course, error) {
	var courses []Course
	err := s.db.NewSelect().Model(&courses).Order("id ASC").Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("list courses: %w", err)
	}
	return courses, nil
}

// ReserveCourseInterest reserves one seat per matched grade label. A full
// course goes to the waitlist instead; unmatched labels are skipped.
func (s *Store) ReserveCourseInterest(ctx context.Context, grades []string) (ReservationResult, error) {
	courses, err := s.ListCourses(ctx)
	if err != nil {
		return ReservationResult{}, err
	}

	result := ReservationResult{}
	for _, grade := range grades {
		course := matchCourse(courses, grade)
		if course == nil {
			continue
		}

		status := ReservationAvailable
		if course.IsFull() {
			status = ReservationWaitlist
			result.WaitListed = true
			_, err = s.db.NewUpdate().
				Model((*Course)(nil)).
				Set("waitlist_count = waitlist_count + 1").
				Where("id = ?", course.ID).
				Exec(ctx)
		} else {
			_, err = s.db.NewUpdate().
				Model((*Course)(nil)).
				Set("capacity_available = capacity_available - 1").
				Where("id = ?", course.ID).
				Exec(ctx)
			course.CapacityAvailable--
		}
		if err != nil {
			return ReservationResult{}, fmt.Errorf("reserve course %q: %w", course.Name, err)
		}

		result.Matched = append(result.Matched, CourseReservation{
			Course: course.Name,
			Status: status,
		})
	}
	return result, nil
}

// CreateRegistration validates the tour date, bumps its registered count, and
// inserts exactly one registration row. The stored wait_listed flag is
// returned; it may have been forced true at reservation time.
func (s *Store) CreateRegistration(ctx context.Context, input RegistrationInput) (*Registration, error) {
	tour, err := s.GetTour(ctx, input.TourDateID)
	if err != nil {
		return nil, err
	}
	if !tour.IsOpen() {
		return nil, fmt.Errorf("%w: id=%d", ErrTourClosed, tour.ID)
	}

	_, err = s.db.NewUpdate().
		Model((*TourDate)(nil)).
		Set("registered = registered + 1").
		Where("id = ?", tour.ID).
		Exec(ctx)
	if err != nil {
		return nil, fmt.Errorf("bump tour registered count: %w", err)
	}

	reg := &Registration{
		FirstName:     input.FirstName,
		LastName:      input.LastName,
		Email:         input.Email,
		Phone:         input.Phone,
		GradeInterest: input.GradeInterest,
		TourDateID:    tour.ID,
		WaitListed:    input.WaitListed,
	}
	if _, err := s.db.NewInsert().Model(reg).Exec(ctx); err != nil {
		return nil, fmt.Errorf("insert registration: %w", err)
	}
	return reg, nil
}
