package scheduler

import (
	"context"
	"time"

	"github.com/avishkarm/clinic-scheduler/models"
)

// Slot is a concrete, dated, fixed-duration candidate interval derived from
// an availability window.
type Slot struct {
	Start           time.Time `json:"start"`
	End             time.Time `json:"end"`
	DurationMinutes int       `json:"duration_minutes"`
	ProviderID      uint      `json:"provider_id"`
}

// concreteWindow is one dated expansion of a weekly window, already clipped
// to the requested range.
type concreteWindow struct {
	start       time.Time
	end         time.Time
	stepMinutes int
}

// CandidateSlots expands the provider's active weekly windows over the
// half-open range [from, to) into fixed-length candidates. It performs no
// conflict checking.
//
// stepMinutes <= 0 means "use each window's own granularity".
func (s *Service) CandidateSlots(ctx context.Context, providerID uint, from, to time.Time, durationMinutes, stepMinutes int) ([]Slot, error) {
	if durationMinutes <= 0 {
		return nil, newValidationError("duration_minutes", "must be positive")
	}
	windows, err := s.activeWindows(ctx, providerID)
	if err != nil {
		return nil, err
	}

	var out []Slot
	s.eachCandidate(windows, from, to, durationMinutes, stepMinutes, func(start, end time.Time) bool {
		out = append(out, Slot{Start: start, End: end, DurationMinutes: durationMinutes, ProviderID: providerID})
		return true
	})
	return out, nil
}

func (s *Service) activeWindows(ctx context.Context, providerID uint) ([]models.AvailabilityWindow, error) {
	var windows []models.AvailabilityWindow
	err := s.db.WithContext(ctx).
		Where("provider_id = ? AND is_active = ?", providerID, true).
		Order("weekday asc, start_time asc, id asc").
		Find(&windows).Error
	if err != nil {
		return nil, err
	}
	return windows, nil
}

// eachCandidate walks candidates date-ascending, then window-ascending within
// a day, then time-ascending within a window, calling fn for each until it
// returns false. Overlapping windows are not merged; their slots are emitted
// as-is. The walk is a pure function of its inputs, so it can be restarted.
func (s *Service) eachCandidate(windows []models.AvailabilityWindow, from, to time.Time, durationMinutes, stepMinutes int, fn func(start, end time.Time) bool) {
	if durationMinutes <= 0 || !from.Before(to) || len(windows) == 0 {
		return
	}
	duration := time.Duration(durationMinutes) * time.Minute

	byWeekday := make(map[models.DayOfWeek][]models.AvailabilityWindow)
	for _, w := range windows {
		byWeekday[w.Weekday] = append(byWeekday[w.Weekday], w)
	}

	from = from.In(s.loc)
	to = to.In(s.loc)
	day := time.Date(from.Year(), from.Month(), from.Day(), 0, 0, 0, 0, s.loc)

	for ; !day.After(to); day = day.AddDate(0, 0, 1) {
		for _, w := range byWeekday[models.DayOfWeek(day.Weekday())] {
			win, ok := concreteWindowFor(w, day, from, to)
			if !ok {
				continue
			}
			step := time.Duration(stepMinutes) * time.Minute
			if stepMinutes <= 0 {
				step = time.Duration(win.stepMinutes) * time.Minute
			}
			if step <= 0 {
				continue
			}
			for cur := win.start; !cur.Add(duration).After(win.end); cur = cur.Add(step) {
				if !fn(cur, cur.Add(duration)) {
					return
				}
			}
		}
	}
}

// concreteWindowFor builds the dated interval for one window on one day and
// clips it to [from, to). ok is false when the clipped interval is empty or
// the window's times do not parse.
func concreteWindowFor(w models.AvailabilityWindow, day, from, to time.Time) (concreteWindow, bool) {
	start, err := atClock(day, w.StartTime)
	if err != nil {
		return concreteWindow{}, false
	}
	end, err := atClock(day, w.EndTime)
	if err != nil {
		return concreteWindow{}, false
	}
	if start.Before(from) {
		start = from
	}
	if end.After(to) {
		end = to
	}
	if !start.Before(end) {
		return concreteWindow{}, false
	}
	stepMinutes := w.SlotMinutes
	if stepMinutes <= 0 {
		stepMinutes = 30
	}
	return concreteWindow{start: start, end: end, stepMinutes: stepMinutes}, true
}

// atClock combines a date with an "HH:MM" time-of-day in the date's location.
func atClock(day time.Time, clock string) (time.Time, error) {
	t, err := time.Parse("15:04", clock)
	if err != nil {
		return time.Time{}, err
	}
	return time.Date(day.Year(), day.Month(), day.Day(), t.Hour(), t.Minute(), 0, 0, day.Location()), nil
}
