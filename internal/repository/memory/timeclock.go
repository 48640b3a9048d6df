package memory

import (
	"context"
	"sort"
	"time"

	"github.com/timesheet-hr/timesheet-backend-go/internal/domain/calendar"
	"github.com/timesheet-hr/timesheet-backend-go/internal/domain/timeclock"
)

type timeclockRepository struct {
	s *Store
}

func NewTimeclockRepository(s *Store) timeclock.Repository {
	return &timeclockRepository{s: s}
}

func recordKey(userID string, date time.Time) string {
	return userID + "|" + calendar.FormatDate(date)
}

func (r *timeclockRepository) CreateIfAbsent(ctx context.Context, rec timeclock.Record) (timeclock.Record, bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	key := recordKey(rec.UserID, rec.Date)
	if existing, ok := r.s.records[key]; ok {
		return existing, false, nil
	}

	now := r.s.now()
	rec.CreatedAt = now
	rec.UpdatedAt = now
	r.s.records[key] = rec
	return rec, true, nil
}

func (r *timeclockRepository) GetByUserAndDate(ctx context.Context, userID string, date time.Time) (timeclock.Record, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	rec, ok := r.s.records[recordKey(userID, date)]
	if !ok {
		return timeclock.Record{}, timeclock.ErrRecordNotFound
	}
	return rec, nil
}

func (r *timeclockRepository) Update(ctx context.Context, rec timeclock.Record, from timeclock.Status) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	key := recordKey(rec.UserID, rec.Date)
	stored, ok := r.s.records[key]
	if !ok {
		return timeclock.ErrRecordNotFound
	}
	if stored.Status != from {
		return timeclock.ErrStatusChanged
	}

	rec.CreatedAt = stored.CreatedAt
	rec.UpdatedAt = r.s.now()
	r.s.records[key] = rec
	return nil
}

func (r *timeclockRepository) ListStaleOpen(ctx context.Context, userID string, before time.Time, limit int) ([]timeclock.Record, error) {
	cutoff := calendar.DateOf(before)
	out := r.list(func(rec timeclock.Record) bool {
		return rec.Status == timeclock.StatusInProgress &&
			(userID == "" || rec.UserID == userID) &&
			rec.Date.Before(cutoff)
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *timeclockRepository) ListByUserAndRange(ctx context.Context, userID string, from, to time.Time) ([]timeclock.Record, error) {
	from, to = calendar.DateOf(from), calendar.DateOf(to)
	return r.list(func(rec timeclock.Record) bool {
		return rec.UserID == userID && !rec.Date.Before(from) && !rec.Date.After(to)
	}), nil
}

// list returns matching records ordered by date, then user.
func (r *timeclockRepository) list(match func(timeclock.Record) bool) []timeclock.Record {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	out := []timeclock.Record{}
	for _, rec := range r.s.records {
		if match(rec) {
			out = append(out, rec)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].Date.Equal(out[j].Date) {
			return out[i].Date.Before(out[j].Date)
		}
		return out[i].UserID < out[j].UserID
	})
	return out
}
