package admissions

import (
	"context"
	"strconv"
	"strings"
)

// Families pick tours by position ("la segunda fecha") as often as by date.
var ordinalKeywords = map[string]int{
	"primera": 1,
	"primer":  1,
	"segunda": 2,
	"segundo": 2,
	"tercera": 3,
	"tercer":  3,
	"cuarta":  4,
	"cuarto":  4,
	"quinta":  5,
	"quinto":  5,
}

// FindTourByInput resolves a tour date from free-form user input: a 1-based
// list index, a Spanish ordinal keyword, or a date prefix in any of the
// formats the assistant displays. Returns nil when nothing matches.
func (s *Store) FindTourByInput(ctx context.Context, userChoice string) (*TourDate, error) {
	tours, err := s.ListActiveTours(ctx)
	if err != nil {
		return nil, err
	}
	return matchTour(tours, userChoice), nil
}

func matchTour(tours []TourDate, userChoice string) *TourDate {
	choice := strings.ToLower(strings.TrimSpace(userChoice))
	if choice == "" || len(tours) == 0 {
		return nil
	}

	if idx, err := strconv.Atoi(choice); err == nil {
		if idx >= 1 && idx <= len(tours) {
			return &tours[idx-1]
		}
	}

	for keyword, position := range ordinalKeywords {
		if strings.Contains(choice, keyword) {
			if position >= 1 && position <= len(tours) {
				return &tours[position-1]
			}
		}
	}

	for i := range tours {
		tour := &tours[i]
		day := tour.Day()
		if day.IsZero() {
			continue
		}
		options := []string{
			day.Format("02/01/2006"),
			day.Format("2006-01-02"),
			day.Format("02/01"),
			strconv.Itoa(day.Day()),
		}
		for _, opt := range options {
			if strings.HasPrefix(opt, choice) {
				return tour
			}
		}
	}
	return nil
}

// matchCourse pairs a grade label with a course by case-insensitive equality
// or substring containment in either direction ("1°" matches "1° EGB").
func matchCourse(courses []Course, grade string) *Course {
	g := strings.ToLower(strings.TrimSpace(grade))
	if g == "" {
		return nil
	}
	for i := range courses {
		name := strings.ToLower(courses[i].Name)
		if g == name || strings.Contains(name, g) || strings.Contains(g, name) {
			return &courses[i]
		}
	}
	return nil
}
