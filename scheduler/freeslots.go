package scheduler

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/avishkarm/clinic-scheduler/models"
)

// FreeSlotRequest describes one free-slot suggestion query.
type FreeSlotRequest struct {
	ProviderID      uint
	From            time.Time
	To              time.Time
	DurationMinutes int
	StepMinutes     int // 0: use each window's granularity
	SubjectID       uint
	Limit           int // 0: configured default
	ExcludeID       uint
}

// FreeSlots composes the slot generator and the conflict checker into an
// ordered, capped list of bookable slots. An empty or inverted range, a
// non-positive duration, or a provider with no active windows is a normal
// outcome and yields an empty list, never an error.
//
// Generation short-circuits once limit slots are accepted. Results are
// cached briefly when a cache is configured; stale suggestions simply fail
// the conflict check again at booking time.
func (s *Service) FreeSlots(ctx context.Context, req FreeSlotRequest) ([]Slot, error) {
	if req.ProviderID == 0 || req.DurationMinutes <= 0 || !req.From.Before(req.To) {
		return []Slot{}, nil
	}
	if req.Limit <= 0 {
		req.Limit = s.cfg.SuggestLimit
	}

	key := freeSlotCacheKey(req)
	if cached, ok := s.cachedSlots(ctx, key); ok {
		return cached, nil
	}

	windows, err := s.activeWindows(ctx, req.ProviderID)
	if err != nil {
		return nil, err
	}

	slots := []Slot{}
	var walkErr error
	s.eachCandidate(windows, req.From, req.To, req.DurationMinutes, req.StepMinutes, func(start, end time.Time) bool {
		var conflicts []models.Booking
		conflicts, walkErr = s.ConflictingBookings(ctx, req.ProviderID, req.SubjectID, start, end, req.ExcludeID)
		if walkErr != nil {
			return false
		}
		if len(conflicts) == 0 {
			slots = append(slots, Slot{
				Start:           start,
				End:             end,
				DurationMinutes: req.DurationMinutes,
				ProviderID:      req.ProviderID,
			})
		}
		return len(slots) < req.Limit
	})
	if walkErr != nil {
		return nil, walkErr
	}

	s.storeSlots(ctx, key, slots)
	return slots, nil
}

func freeSlotCacheKey(req FreeSlotRequest) string {
	return fmt.Sprintf("freeslots:%d:%d:%d:%d:%d:%d:%d:%d",
		req.ProviderID, req.From.Unix(), req.To.Unix(),
		req.DurationMinutes, req.StepMinutes, req.SubjectID, req.Limit, req.ExcludeID)
}

func (s *Service) cachedSlots(ctx context.Context, key string) ([]Slot, bool) {
	if s.cache == nil {
		return nil, false
	}
	raw, err := s.cache.Get(ctx, key).Bytes()
	if err != nil {
		return nil, false
	}
	var slots []Slot
	if err := json.Unmarshal(raw, &slots); err != nil {
		return nil, false
	}
	return slots, true
}

func (s *Service) storeSlots(ctx context.Context, key string, slots []Slot) {
	if s.cache == nil {
		return
	}
	raw, err := json.Marshal(slots)
	if err != nil {
		return
	}
	// Cache failures are invisible to callers; the DB remains authoritative.
	s.cache.Set(ctx, key, raw, s.cfg.CacheTTL)
}
