package venue

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"github.com/mauv0809/courtside/internal/apperr"
	"github.com/mauv0809/courtside/internal/auth"
	"github.com/mauv0809/courtside/internal/cache"
	"github.com/mauv0809/courtside/internal/database"
	"github.com/mauv0809/courtside/internal/slot"
	"github.com/mauv0809/courtside/internal/user"
)

const defaultSlotMinutes = 60

// New creates a VenueStore. Court lookups are cached in c for ttl.
func New(db *sql.DB, c cache.Cache, ttl time.Duration) VenueStore {
	if c == nil {
		c = cache.NewNoop()
	}
	return &store{db: db, cache: c, cacheTTL: ttl}
}

func courtKey(id string) string { return "court:" + id }

func canManage(actor auth.Actor, ownerID string) error {
	if actor.Banned {
		return apperr.Forbidden("account is suspended")
	}
	if actor.UserID != ownerID && !actor.IsAdmin() {
		return apperr.Forbidden("only the venue owner may manage it")
	}
	return nil
}

func (s *store) CreateVenue(ctx context.Context, actor auth.Actor, in NewVenue) (*Venue, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if actor.Banned {
		return nil, apperr.Forbidden("account is suspended")
	}
	if actor.Role != user.RoleOwner && !actor.IsAdmin() {
		return nil, apperr.Forbidden("only venue owners can create venues")
	}
	if strings.TrimSpace(in.Name) == "" {
		return nil, apperr.Validation("venue name is required")
	}
	ownerID := actor.UserID
	if actor.IsAdmin() && in.OwnerID != "" {
		ownerID = in.OwnerID
	}

	v := &Venue{
		ID:        uuid.New().String(),
		OwnerID:   ownerID,
		Name:      strings.TrimSpace(in.Name),
		City:      strings.TrimSpace(in.City),
		Address:   in.Address,
		Sports:    normaliseSports(in.Sports),
		CreatedAt: time.Now(),
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO venues (id, owner_id, name, city, address, sports, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, v.ID, v.OwnerID, v.Name, v.City, v.Address, strings.Join(v.Sports, ","), v.CreatedAt.Unix())
	if err != nil {
		return nil, fmt.Errorf("failed to create venue: %w", err)
	}

	log.Info("Created venue", "id", v.ID, "name", v.Name, "owner", v.OwnerID)
	return v, nil
}

func normaliseSports(sports []string) []string {
	out := make([]string, 0, len(sports))
	for _, sp := range sports {
		sp = strings.ToLower(strings.TrimSpace(sp))
		if sp != "" {
			out = append(out, sp)
		}
	}
	return out
}

func (s *store) GetVenue(ctx context.Context, id string) (*Venue, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	v, err := scanVenue(s.db.QueryRowContext(ctx, `
		SELECT id, owner_id, name, city, address, sports, created_at
		FROM venues WHERE id = ?
	`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperr.NotFound("venue %s", id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get venue %s: %w", id, err)
	}
	return v, nil
}

// ListVenues filters by city and sport when they are non-empty.
func (s *store) ListVenues(ctx context.Context, city, sport string) ([]Venue, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	query := `SELECT id, owner_id, name, city, address, sports, created_at FROM venues WHERE 1 = 1`
	var args []any
	if city != "" {
		query += ` AND city = ? COLLATE NOCASE`
		args = append(args, city)
	}
	if sport != "" {
		query += ` AND (',' || sports || ',') LIKE ?`
		args = append(args, "%,"+strings.ToLower(sport)+",%")
	}
	query += ` ORDER BY name`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list venues: %w", err)
	}
	defer rows.Close()

	venues := []Venue{}
	for rows.Next() {
		v, err := scanVenue(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan venue row: %w", err)
		}
		venues = append(venues, *v)
	}
	return venues, rows.Err()
}

func scanVenue(scanner interface{ Scan(...any) error }) (*Venue, error) {
	var (
		v         Venue
		sports    string
		createdAt int64
	)
	if err := scanner.Scan(&v.ID, &v.OwnerID, &v.Name, &v.City, &v.Address, &sports, &createdAt); err != nil {
		return nil, err
	}
	v.Sports = []string{}
	if sports != "" {
		v.Sports = strings.Split(sports, ",")
	}
	v.CreatedAt = time.Unix(createdAt, 0)
	return &v, nil
}

func (s *store) CreateCourt(ctx context.Context, actor auth.Actor, venueID string, in NewCourt) (*Court, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var ownerID string
	err := s.db.QueryRowContext(ctx, "SELECT owner_id FROM venues WHERE id = ?", venueID).Scan(&ownerID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperr.NotFound("venue %s", venueID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load venue %s: %w", venueID, err)
	}
	if err := canManage(actor, ownerID); err != nil {
		return nil, err
	}

	if strings.TrimSpace(in.Name) == "" {
		return nil, apperr.Validation("court name is required")
	}
	if strings.TrimSpace(in.Sport) == "" {
		return nil, apperr.Validation("court sport is required")
	}
	if in.PricePerHour < 0 {
		return nil, apperr.Validation("price per hour cannot be negative")
	}
	if in.SlotMinutes == 0 {
		in.SlotMinutes = defaultSlotMinutes
	}
	if in.SlotMinutes < 0 || in.SlotMinutes > int(slot.EndOfDay) {
		return nil, apperr.Validation("slot duration must be between 1 and 1440 minutes")
	}

	c := &Court{
		ID:           uuid.New().String(),
		VenueID:      venueID,
		OwnerID:      ownerID,
		Name:         strings.TrimSpace(in.Name),
		Sport:        strings.ToLower(strings.TrimSpace(in.Sport)),
		PricePerHour: in.PricePerHour,
		SlotMinutes:  in.SlotMinutes,
		Active:       true,
		Windows:      map[time.Weekday][]slot.Range{},
		CreatedAt:    time.Now(),
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO courts (id, venue_id, name, sport, price_per_hour, slot_minutes, active, created_at)
		VALUES (?, ?, ?, ?, ?, ?, 1, ?)
	`, c.ID, c.VenueID, c.Name, c.Sport, c.PricePerHour, c.SlotMinutes, c.CreatedAt.Unix())
	if err != nil {
		return nil, fmt.Errorf("failed to create court: %w", err)
	}

	log.Info("Created court", "id", c.ID, "venue", venueID, "sport", c.Sport)
	return c, nil
}

// GetCourt returns the court with its weekly windows, served from the cache
// when possible.
func (s *store) GetCourt(ctx context.Context, id string) (*Court, error) {
	if data, ok, err := s.cache.Get(ctx, courtKey(id)); err != nil {
		log.Warn("Court cache read failed", "court", id, "error", err)
	} else if ok {
		var c Court
		if err := json.Unmarshal(data, &c); err == nil {
			return &c, nil
		}
		log.Warn("Discarding undecodable cached court", "court", id)
	}

	// Writers invalidate before releasing the write lock, so filling the
	// cache under the read lock cannot store a court older than the database.
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, err := LoadCourt(ctx, s.db, id)
	if err != nil {
		return nil, err
	}

	if data, err := json.Marshal(c); err == nil {
		if err := s.cache.Set(ctx, courtKey(id), data, s.cacheTTL); err != nil {
			log.Warn("Court cache write failed", "court", id, "error", err)
		}
	}
	return c, nil
}

// LoadCourt reads a court and its windows through q, bypassing the cache.
// Use it inside transactions.
func LoadCourt(ctx context.Context, q database.Querier, id string) (*Court, error) {
	var (
		c               Court
		active          bool
		hoursConfigured bool
		createdAt       int64
	)
	err := q.QueryRowContext(ctx, `
		SELECT c.id, c.venue_id, v.owner_id, c.name, c.sport, c.price_per_hour, c.slot_minutes, c.active, c.hours_configured, c.created_at
		FROM courts c JOIN venues v ON v.id = c.venue_id
		WHERE c.id = ?
	`, id).Scan(&c.ID, &c.VenueID, &c.OwnerID, &c.Name, &c.Sport, &c.PricePerHour, &c.SlotMinutes, &active, &hoursConfigured, &createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperr.NotFound("court %s", id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get court %s: %w", id, err)
	}
	c.Active = active
	c.HoursConfigured = hoursConfigured
	c.CreatedAt = time.Unix(createdAt, 0)

	rows, err := q.QueryContext(ctx, `
		SELECT weekday, start_time, end_time FROM court_windows
		WHERE court_id = ? ORDER BY weekday, start_time
	`, id)
	if err != nil {
		return nil, fmt.Errorf("failed to load windows for court %s: %w", id, err)
	}
	defer rows.Close()

	c.Windows = map[time.Weekday][]slot.Range{}
	for rows.Next() {
		var (
			day        int
			start, end string
		)
		if err := rows.Scan(&day, &start, &end); err != nil {
			return nil, fmt.Errorf("failed to scan window row: %w", err)
		}
		r, err := slot.NewRange(start, end)
		if err != nil {
			log.Error("Skipping malformed court window", "court", id, "start", start, "end", end, "error", err)
			continue
		}
		c.Windows[time.Weekday(day)] = append(c.Windows[time.Weekday(day)], r)
	}
	return &c, rows.Err()
}

func (s *store) ListCourts(ctx context.Context, venueID string) ([]Court, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, "SELECT id FROM courts WHERE venue_id = ? ORDER BY name", venueID)
	if err != nil {
		return nil, fmt.Errorf("failed to list courts for venue %s: %w", venueID, err)
	}
	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			rows.Close()
			return nil, fmt.Errorf("failed to scan court id: %w", err)
		}
		ids = append(ids, id)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}

	courts := make([]Court, 0, len(ids))
	for _, id := range ids {
		c, err := LoadCourt(ctx, s.db, id)
		if err != nil {
			return nil, err
		}
		courts = append(courts, *c)
	}
	return courts, nil
}

// SetAvailabilityWindows replaces the windows of one weekday. An empty list
// closes the court on that day. The first call marks the court's hours as
// configured, after which days without windows are closed.
func (s *store) SetAvailabilityWindows(ctx context.Context, actor auth.Actor, courtID string, day time.Weekday, windows []slot.Range) (*Court, error) {
	if day < time.Sunday || day > time.Saturday {
		return nil, apperr.Validation("weekday must be between 0 (Sunday) and 6 (Saturday)")
	}
	sorted, err := slot.ValidateWindows(windows)
	if err != nil {
		return nil, apperr.Validation("%v", err)
	}

	s.mu.Lock()
	err = database.RunInTx(ctx, s.db, func(tx *sql.Tx) error {
		c, err := LoadCourt(ctx, tx, courtID)
		if err != nil {
			return err
		}
		if err := canManage(actor, c.OwnerID); err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, "UPDATE courts SET hours_configured = 1 WHERE id = ?", courtID); err != nil {
			return fmt.Errorf("failed to mark hours configured: %w", err)
		}
		if _, err := tx.ExecContext(ctx, "DELETE FROM court_windows WHERE court_id = ? AND weekday = ?", courtID, int(day)); err != nil {
			return fmt.Errorf("failed to clear windows: %w", err)
		}
		for _, w := range sorted {
			if _, err := tx.ExecContext(ctx, `
				INSERT INTO court_windows (court_id, weekday, start_time, end_time) VALUES (?, ?, ?, ?)
			`, courtID, int(day), w.Start.String(), w.End.String()); err != nil {
				return fmt.Errorf("failed to insert window %s: %w", w, err)
			}
		}
		return nil
	})
	if err == nil {
		s.invalidate(ctx, courtID)
	}
	s.mu.Unlock()
	if err != nil {
		return nil, err
	}

	log.Info("Updated court windows", "court", courtID, "weekday", day, "windows", len(sorted))
	return s.GetCourt(ctx, courtID)
}

// DeactivateCourt soft-deletes a court. Existing bookings are kept.
func (s *store) DeactivateCourt(ctx context.Context, actor auth.Actor, courtID string) error {
	s.mu.Lock()
	err := database.RunInTx(ctx, s.db, func(tx *sql.Tx) error {
		c, err := LoadCourt(ctx, tx, courtID)
		if err != nil {
			return err
		}
		if err := canManage(actor, c.OwnerID); err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, "UPDATE courts SET active = 0 WHERE id = ?", courtID); err != nil {
			return fmt.Errorf("failed to deactivate court %s: %w", courtID, err)
		}
		return nil
	})
	if err == nil {
		s.invalidate(ctx, courtID)
	}
	s.mu.Unlock()
	if err != nil {
		return err
	}

	log.Info("Deactivated court", "court", courtID, "by", actor.UserID)
	return nil
}

func (s *store) invalidate(ctx context.Context, courtID string) {
	if err := s.cache.Delete(ctx, courtKey(courtID)); err != nil {
		log.Warn("Court cache invalidation failed", "court", courtID, "error", err)
	}
}
