// Package availability decides whether a court can be booked for a date and
// time range. It is the single place that defines a conflicting booking or a
// blocked slot, and is used both for read-only queries and inside the booking
// transaction.
package availability

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"github.com/mauv0809/courtside/internal/apperr"
	"github.com/mauv0809/courtside/internal/database"
	"github.com/mauv0809/courtside/internal/slot"
	"github.com/mauv0809/courtside/internal/venue"
)

type Reason string

const (
	ReasonNone                  Reason = ""
	ReasonCourtInactive         Reason = "court_inactive"
	ReasonOutsideOperatingHours Reason = "outside_operating_hours"
	ReasonBooked                Reason = "booked"
	ReasonBlocked               Reason = "blocked"
)

type Result struct {
	Available bool   `json:"available"`
	Reason    Reason `json:"reason,omitempty"`
	// ConflictID is the booking or blocked slot that made the range unavailable.
	ConflictID string `json:"conflict_id,omitempty"`
}

// CourtSource is the court lookup the checker needs. venue.VenueStore satisfies it.
type CourtSource interface {
	GetCourt(ctx context.Context, id string) (*venue.Court, error)
}

type Checker struct {
	db     *sql.DB
	courts CourtSource
}

func New(db *sql.DB, courts CourtSource) *Checker {
	return &Checker{db: db, courts: courts}
}

// IsSlotAvailable reports whether courtID can be booked on date between
// start and end. date is YYYY-MM-DD and times are HH:MM wall-clock values.
func (c *Checker) IsSlotAvailable(ctx context.Context, courtID, date, start, end string) (bool, error) {
	res, err := c.Evaluate(ctx, courtID, date, start, end)
	if err != nil {
		return false, err
	}
	return res.Available, nil
}

// Evaluate is IsSlotAvailable with the reason for a refusal.
func (c *Checker) Evaluate(ctx context.Context, courtID, date, start, end string) (Result, error) {
	day, r, err := ParseRequest(courtID, date, start, end)
	if err != nil {
		return Result{}, err
	}
	court, err := c.courts.GetCourt(ctx, courtID)
	if err != nil {
		return Result{}, err
	}
	return Check(ctx, c.db, court, day, r)
}

// ParseRequest validates the raw slot request fields.
func ParseRequest(courtID, date, start, end string) (time.Time, slot.Range, error) {
	if courtID == "" {
		return time.Time{}, slot.Range{}, apperr.Validation("court id is required")
	}
	day, err := slot.ParseDate(date)
	if err != nil {
		return time.Time{}, slot.Range{}, apperr.Validation("%v", err)
	}
	r, err := slot.NewRange(start, end)
	if err != nil {
		return time.Time{}, slot.Range{}, apperr.Validation("%v", err)
	}
	return day, r, nil
}

// Check evaluates the range against court through q, which may be a
// transaction. Overlap is half-open: a booking ending at 11:00 does not
// conflict with one starting at 11:00.
func Check(ctx context.Context, q database.Querier, court *venue.Court, day time.Time, r slot.Range) (Result, error) {
	if !court.Active {
		return Result{Reason: ReasonCourtInactive}, nil
	}

	windows, _ := court.WindowsFor(day.Weekday())
	inside := false
	for _, w := range windows {
		if w.Contains(r) {
			inside = true
			break
		}
	}
	if !inside {
		return Result{Reason: ReasonOutsideOperatingHours}, nil
	}

	date := day.Format(slot.DateLayout)

	id, err := FindBookingOverlap(ctx, q, court.ID, date, r)
	if err != nil {
		return Result{}, err
	}
	if id != "" {
		return Result{Reason: ReasonBooked, ConflictID: id}, nil
	}

	id, err = FindBlockOverlap(ctx, q, court.ID, date, r)
	if err != nil {
		return Result{}, err
	}
	if id != "" {
		return Result{Reason: ReasonBlocked, ConflictID: id}, nil
	}

	return Result{Available: true}, nil
}

// FindBookingOverlap returns the id of a non-cancelled booking overlapping r,
// or "" when there is none.
func FindBookingOverlap(ctx context.Context, q database.Querier, courtID, date string, r slot.Range) (string, error) {
	id, err := firstOverlap(ctx, q, `
		SELECT id FROM bookings
		WHERE court_id = ? AND date = ? AND status != 'CANCELLED'
		  AND start_time < ? AND end_time > ?
		ORDER BY start_time
		LIMIT 1
	`, courtID, date, r)
	if err != nil {
		return "", fmt.Errorf("failed to check bookings: %w", err)
	}
	return id, nil
}

// FindBlockOverlap returns the id of a blocked slot overlapping r, or "".
func FindBlockOverlap(ctx context.Context, q database.Querier, courtID, date string, r slot.Range) (string, error) {
	id, err := firstOverlap(ctx, q, `
		SELECT id FROM blocked_slots
		WHERE court_id = ? AND date = ?
		  AND start_time < ? AND end_time > ?
		ORDER BY start_time
		LIMIT 1
	`, courtID, date, r)
	if err != nil {
		return "", fmt.Errorf("failed to check blocked slots: %w", err)
	}
	return id, nil
}

func firstOverlap(ctx context.Context, q database.Querier, query, courtID, date string, r slot.Range) (string, error) {
	var id string
	err := q.QueryRowContext(ctx, query, courtID, date, r.End.String(), r.Start.String()).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	return id, err
}

// FreeSlots lists the slot-duration-sized ranges inside the court's windows
// on date that are neither booked nor blocked.
func (c *Checker) FreeSlots(ctx context.Context, courtID, date string) ([]slot.Range, error) {
	day, err := slot.ParseDate(date)
	if err != nil {
		return nil, apperr.Validation("%v", err)
	}
	court, err := c.courts.GetCourt(ctx, courtID)
	if err != nil {
		return nil, err
	}
	free := []slot.Range{}
	if !court.Active || court.SlotMinutes <= 0 {
		return free, nil
	}

	busy, err := busyRanges(ctx, c.db, court.ID, day.Format(slot.DateLayout))
	if err != nil {
		return nil, err
	}

	step := slot.Clock(court.SlotMinutes)
	windows, _ := court.WindowsFor(day.Weekday())
	for _, w := range windows {
		for start := w.Start; start+step <= w.End; start += step {
			candidate := slot.Range{Start: start, End: start + step}
			if !overlapsAny(candidate, busy) {
				free = append(free, candidate)
			}
		}
	}
	return free, nil
}

func overlapsAny(r slot.Range, busy []slot.Range) bool {
	for _, b := range busy {
		if r.Overlaps(b) {
			return true
		}
	}
	return false
}

func busyRanges(ctx context.Context, q database.Querier, courtID, date string) ([]slot.Range, error) {
	rows, err := q.QueryContext(ctx, `
		SELECT start_time, end_time FROM bookings
		WHERE court_id = ? AND date = ? AND status != 'CANCELLED'
		UNION ALL
		SELECT start_time, end_time FROM blocked_slots
		WHERE court_id = ? AND date = ?
	`, courtID, date, courtID, date)
	if err != nil {
		return nil, fmt.Errorf("failed to load busy ranges: %w", err)
	}
	defer rows.Close()

	var busy []slot.Range
	for rows.Next() {
		var start, end string
		if err := rows.Scan(&start, &end); err != nil {
			return nil, fmt.Errorf("failed to scan busy range: %w", err)
		}
		r, err := slot.NewRange(start, end)
		if err != nil {
			log.Error("Skipping malformed busy range", "court", courtID, "date", date, "start", start, "end", end, "error", err)
			continue
		}
		busy = append(busy, r)
	}
	return busy, rows.Err()
}
