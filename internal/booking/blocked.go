package booking

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"github.com/mauv0809/courtside/internal/apperr"
	"github.com/mauv0809/courtside/internal/auth"
	"github.com/mauv0809/courtside/internal/availability"
	"github.com/mauv0809/courtside/internal/database"
	"github.com/mauv0809/courtside/internal/slot"
	"github.com/mauv0809/courtside/internal/venue"
)

func canManage(actor auth.Actor, ownerID string) error {
	if actor.Banned {
		return apperr.Forbidden("account is suspended")
	}
	if actor.UserID != ownerID && !actor.IsAdmin() {
		return apperr.Forbidden("only the venue owner may block slots")
	}
	return nil
}

// BlockSlot blocks a range by hand, e.g. for maintenance. The range may not
// overlap an active booking or another blocked slot.
func (s *Service) BlockSlot(ctx context.Context, actor auth.Actor, courtID, date, start, end, reason string) (*BlockedSlot, error) {
	day, r, err := availability.ParseRequest(courtID, date, start, end)
	if err != nil {
		return nil, err
	}

	var blocked *BlockedSlot
	err = database.RunInTx(ctx, s.db, func(tx *sql.Tx) error {
		court, err := venue.LoadCourt(ctx, tx, courtID)
		if err != nil {
			return err
		}
		if err := canManage(actor, court.OwnerID); err != nil {
			return err
		}

		d := day.Format(slot.DateLayout)
		id, err := availability.FindBookingOverlap(ctx, tx, court.ID, d, r)
		if err != nil {
			return err
		}
		if id != "" {
			return apperr.Conflict("%s on %s overlaps booking %s", r, d, id)
		}
		id, err = availability.FindBlockOverlap(ctx, tx, court.ID, d, r)
		if err != nil {
			return err
		}
		if id != "" {
			return apperr.Conflict("%s on %s overlaps blocked slot %s", r, d, id)
		}

		now := s.now()
		blocked = &BlockedSlot{
			ID:        uuid.NewString(),
			CourtID:   court.ID,
			Date:      d,
			StartTime: r.Start.String(),
			EndTime:   r.End.String(),
			Reason:    reason,
			CreatedBy: actor.UserID,
			CreatedAt: time.Unix(now.Unix(), 0),
		}
		_, err = tx.ExecContext(ctx, `
			INSERT INTO blocked_slots (id, court_id, date, start_time, end_time, reason, created_by, created_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		`, blocked.ID, blocked.CourtID, blocked.Date, blocked.StartTime, blocked.EndTime, blocked.Reason, blocked.CreatedBy, now.Unix())
		if err != nil {
			return fmt.Errorf("failed to insert blocked slot: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.metrics.IncBlockedSlots("manual")
	log.Info("Slot blocked", "slot", blocked.ID, "court", blocked.CourtID, "date", blocked.Date, "range", r, "actor", actor.UserID)
	return blocked, nil
}

// UnblockSlot removes a manual block. Slots created by confirming a booking
// stay for as long as the booking does.
func (s *Service) UnblockSlot(ctx context.Context, actor auth.Actor, slotID string) error {
	return database.RunInTx(ctx, s.db, func(tx *sql.Tx) error {
		var (
			bookingID sql.NullString
			ownerID   string
		)
		err := tx.QueryRowContext(ctx, `
			SELECT bs.booking_id, v.owner_id
			FROM blocked_slots bs
			JOIN courts c ON c.id = bs.court_id
			JOIN venues v ON v.id = c.venue_id
			WHERE bs.id = ?
		`, slotID).Scan(&bookingID, &ownerID)
		if errors.Is(err, sql.ErrNoRows) {
			return apperr.NotFound("blocked slot %s", slotID)
		}
		if err != nil {
			return fmt.Errorf("failed to get blocked slot %s: %w", slotID, err)
		}
		if err := canManage(actor, ownerID); err != nil {
			return err
		}
		if bookingID.Valid {
			return apperr.Forbidden("blocked slot %s guards booking %s", slotID, bookingID.String)
		}

		if _, err := tx.ExecContext(ctx, "DELETE FROM blocked_slots WHERE id = ?", slotID); err != nil {
			return fmt.Errorf("failed to delete blocked slot %s: %w", slotID, err)
		}
		log.Info("Slot unblocked", "slot", slotID, "actor", actor.UserID)
		return nil
	})
}

// ListBlockedSlots lists the blocked slots of a court, on date when it is set.
func (s *Service) ListBlockedSlots(ctx context.Context, courtID, date string) ([]BlockedSlot, error) {
	if courtID == "" {
		return nil, apperr.Validation("court id is required")
	}
	query := `
		SELECT id, court_id, date, start_time, end_time, reason, booking_id, created_by, created_at
		FROM blocked_slots WHERE court_id = ?`
	args := []any{courtID}
	if date != "" {
		day, err := slot.ParseDate(date)
		if err != nil {
			return nil, apperr.Validation("%v", err)
		}
		query += " AND date = ?"
		args = append(args, day.Format(slot.DateLayout))
	}
	query += " ORDER BY date, start_time"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list blocked slots: %w", err)
	}
	defer rows.Close()

	slots := []BlockedSlot{}
	for rows.Next() {
		var (
			bs        BlockedSlot
			bookingID sql.NullString
			createdAt int64
		)
		if err := rows.Scan(&bs.ID, &bs.CourtID, &bs.Date, &bs.StartTime, &bs.EndTime, &bs.Reason, &bookingID, &bs.CreatedBy, &createdAt); err != nil {
			return nil, fmt.Errorf("failed to scan blocked slot row: %w", err)
		}
		bs.BookingID = bookingID.String
		bs.CreatedAt = time.Unix(createdAt, 0)
		slots = append(slots, bs)
	}
	return slots, rows.Err()
}
