package tourbotnode

import (
	"context"
	"encoding/json"
	"fmt"

	contractx "github.com/tanpawarit/Montebello-TourBot/agent/contract"
)

type tourContextEntry struct {
	Index   int    `json:"index"`
	Date    string `json:"date"`
	Display string `json:"display"`
	ID      int64  `json:"id"`
}

// BuildContext renders the live tour dates and per-grade capacity as compact
// JSON so the model grounds its answers (and tool calls) in real ids.
func BuildContext(ctx context.Context, in *GraphState, store contractx.CapacityStore) (*GraphState, error) {
	if in == nil {
		return nil, fmt.Errorf("%w: graph state is nil", contractx.ErrValidation)
	}

	tours, err := store.ListActiveTours(ctx)
	if err != nil {
		return nil, err
	}
	entries := make([]tourContextEntry, 0, len(tours))
	for i, tour := range tours {
		entries = append(entries, tourContextEntry{
			Index:   i + 1,
			Date:    tour.Date,
			Display: tour.Display(),
			ID:      tour.ID,
		})
	}
	tourJSON, err := json.Marshal(map[string]any{"tour_dates": entries})
	if err != nil {
		return nil, fmt.Errorf("marshal tour context: %w", err)
	}

	courses, err := store.ListCourses(ctx)
	if err != nil {
		return nil, err
	}
	capacity := make(map[string]int, len(courses))
	for _, course := range courses {
		available := course.CapacityAvailable
		if available < 0 {
			available = 0
		}
		capacity[course.Name] = available
	}
	capacityJSON, err := json.Marshal(map[string]any{"capacity": capacity})
	if err != nil {
		return nil, fmt.Errorf("marshal capacity context: %w", err)
	}

	in.TourContext = string(tourJSON)
	in.CapacityContext = string(capacityJSON)
	return in, nil
}
