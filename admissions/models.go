package admissions

import (
	"time"

	"github.com/uptrace/bun"
)

const (
	TourStatusOpen   = "open"
	TourStatusClosed = "closed"
)

// TourDate is a scheduled open-house event with a seat capacity.
type TourDate struct {
	bun.BaseModel `bun:"table:tour_dates"`

	ID         int64  `bun:"id,pk,autoincrement" json:"id"`
	Date       string `bun:"date,notnull,unique" json:"date"` // calendar day, YYYY-MM-DD
	Capacity   int    `bun:"capacity,notnull,default:12" json:"capacity"`
	Registered int    `bun:"registered,notnull,default:0" json:"registered"`
	Status     string `bun:"status,notnull,default:'open'" json:"status"`
}

// Day parses the stored calendar day. A zero time means the row is corrupt;
// callers treat it as never matching.
func (t *TourDate) Day() time.Time {
	day, err := time.Parse("2006-01-02", t.Date)
	if err != nil {
		return time.Time{}
	}
	return day
}

// Display renders the date the way the assistant presents it to families.
func (t *TourDate) Display() string {
	day := t.Day()
	if day.IsZero() {
		return t.Date
	}
	return day.Format("02/01/2006")
}

func (t *TourDate) AvailableSlots() int {
	if slots := t.Capacity - t.Registered; slots > 0 {
		return slots
	}
	return 0
}

func (t *TourDate) IsOpen() bool {
	return t.Status != TourStatusClosed
}

// Course is an admissions cohort (grade) with its own capacity, independent
// of tour-date capacity.
type Course struct {
	bun.BaseModel `bun:"table:courses"`

	ID                int64  `bun:"id,pk,autoincrement" json:"id"`
	Name              string `bun:"name,notnull,unique" json:"name"`
	CapacityAvailable int    `bun:"capacity_available,notnull,default:0" json:"capacity_available"`
	WaitlistCount     int    `bun:"waitlist_count,notnull,default:0" json:"waitlist_count"`
}

func (c *Course) IsFull() bool {
	return c.CapacityAvailable <= 0
}

// Registration is a completed booking. Rows are inserted once and never
// updated afterwards.
type Registration struct {
	bun.BaseModel `bun:"table:registrations"`

	ID            int64  `bun:"id,pk,autoincrement" json:"id"`
	FirstName     string `bun:"first_name,notnull" json:"first_name"`
	LastName      string `bun:"last_name" json:"last_name"`
	Email         string `bun:"email,notnull" json:"email"`
	Phone         string `bun:"phone,notnull" json:"phone"`
	GradeInterest string `bun:"grade_interest,notnull" json:"grade_interest"`
	TourDateID    int64  `bun:"tour_date_id,notnull" json:"tour_date_id"`
	WaitListed    bool   `bun:"wait_listed,notnull,default:false" json:"wait_listed"`
}

// RegistrationInput carries the validated fields for a new registration.
type RegistrationInput struct {
	FirstName     string
	LastName      string
	Email         string
	Phone         string
	GradeInterest string
	TourDateID    int64
	WaitListed    bool
}

const (
	ReservationAvailable = "available"
	ReservationWaitlist  = "waitlist"
)

// CourseReservation reports the outcome for one matched grade label.
type CourseReservation struct {
	Course string `json:"course"`
	Status string `json:"status"`
}

// ReservationResult aggregates the outcome of ReserveCourseInterest.
// WaitListed is true when at least one matched course was already full.
type ReservationResult struct {
	WaitListed bool                `json:"wait_listed"`
	Matched    []CourseReservation `json:"matched"`
}
