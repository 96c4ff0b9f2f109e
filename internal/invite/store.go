package invite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"github.com/mauv0809/courtside/internal/apperr"
	"github.com/mauv0809/courtside/internal/auth"
	"github.com/mauv0809/courtside/internal/database"
	"github.com/mauv0809/courtside/internal/metrics"
	"github.com/mauv0809/courtside/internal/pubsub"
	"github.com/mauv0809/courtside/internal/slot"
)

// NewStore creates the invite store. region is the default region for
// contact phone numbers given without a country code.
func NewStore(db *sql.DB, events pubsub.PubSubClient, m metrics.Metrics, region string) InviteService {
	if events == nil {
		events = pubsub.NewNoop()
	}
	if region == "" {
		region = "US"
	}
	return &store{db: db, events: events, metrics: m, region: strings.ToUpper(region)}
}

// selectInvite derives players_joined from the accepted requests instead of
// trusting the stored column.
const selectInvite = `
	SELECT id, creator_id, venue, sport, date, time, players_required, players_joined,
	       contact_name, contact_phone, contact_email, created_at
	FROM (
		SELECT i.id, i.creator_id, i.venue, i.sport, i.date, i.time, i.players_required,
		       COALESCE((SELECT SUM(jr.players_count) FROM join_requests jr
		                 WHERE jr.invite_id = i.id AND jr.status = 'ACCEPTED'), 0) AS players_joined,
		       i.contact_name, i.contact_phone, i.contact_email, i.created_at
		FROM invites i
	)
`

func scanInvite(scanner interface{ Scan(...any) error }) (*Invite, error) {
	var (
		inv       Invite
		createdAt int64
	)
	err := scanner.Scan(&inv.ID, &inv.CreatorID, &inv.Venue, &inv.Sport, &inv.Date, &inv.Time,
		&inv.PlayersRequired, &inv.PlayersJoined,
		&inv.ContactName, &inv.ContactPhone, &inv.ContactEmail, &createdAt)
	if err != nil {
		return nil, err
	}
	inv.PlayersLeft = max(0, inv.PlayersRequired-inv.PlayersJoined)
	inv.CreatedAt = time.Unix(createdAt, 0)
	return &inv, nil
}

func loadInvite(ctx context.Context, q database.Querier, id string) (*Invite, error) {
	inv, err := scanInvite(q.QueryRowContext(ctx, selectInvite+" WHERE id = ?", id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperr.NotFound("invite %s", id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get invite %s: %w", id, err)
	}
	return inv, nil
}

const selectJoinRequest = `
	SELECT id, invite_id, user_id, joiner_name, contact, players_count, status, created_at, updated_at
	FROM join_requests
`

func scanJoinRequest(scanner interface{ Scan(...any) error }) (*JoinRequest, error) {
	var (
		jr                   JoinRequest
		userID               sql.NullString
		status               string
		createdAt, updatedAt int64
	)
	err := scanner.Scan(&jr.ID, &jr.InviteID, &userID, &jr.JoinerName, &jr.Contact, &jr.PlayersCount, &status, &createdAt, &updatedAt)
	if err != nil {
		return nil, err
	}
	jr.UserID = userID.String
	jr.Status = RequestStatus(status)
	jr.CreatedAt = time.Unix(createdAt, 0)
	jr.UpdatedAt = time.Unix(updatedAt, 0)
	return &jr, nil
}

// CreateInvite creates a new invite
func (s *store) CreateInvite(ctx context.Context, actor auth.Actor, in NewInvite) (*Invite, error) {
	if actor.UserID == "" {
		return nil, apperr.Unauthenticated("sign in to create an invite")
	}
	if actor.Banned {
		return nil, apperr.Forbidden("account is suspended")
	}
	if strings.TrimSpace(in.Venue) == "" || strings.TrimSpace(in.Sport) == "" {
		return nil, apperr.Validation("venue and sport are required")
	}
	day, err := slot.ParseDate(in.Date)
	if err != nil {
		return nil, apperr.Validation("%v", err)
	}
	at, err := slot.ParseClock(in.Time)
	if err != nil {
		return nil, apperr.Validation("%v", err)
	}
	if in.PlayersRequired <= 0 {
		return nil, apperr.Validation("players required must be at least 1")
	}
	phone := ""
	if strings.TrimSpace(in.ContactPhone) != "" {
		if phone, err = NormalizePhone(in.ContactPhone, s.region); err != nil {
			return nil, apperr.Validation("%v", err)
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	inv := &Invite{
		ID:              uuid.New().String(),
		CreatorID:       actor.UserID,
		Venue:           strings.TrimSpace(in.Venue),
		Sport:           strings.ToLower(strings.TrimSpace(in.Sport)),
		Date:            day.Format(slot.DateLayout),
		Time:            at.String(),
		PlayersRequired: in.PlayersRequired,
		PlayersJoined:   0,
		PlayersLeft:     in.PlayersRequired,
		ContactName:     strings.TrimSpace(in.ContactName),
		ContactPhone:    phone,
		ContactEmail:    strings.TrimSpace(in.ContactEmail),
		CreatedAt:       time.Unix(now.Unix(), 0),
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO invites (
			id, creator_id, venue, sport, date, time, players_required, players_joined, players_left,
			contact_name, contact_phone, contact_email, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, inv.ID, inv.CreatorID, inv.Venue, inv.Sport, inv.Date, inv.Time, inv.PlayersRequired, inv.PlayersJoined, inv.PlayersLeft,
		inv.ContactName, inv.ContactPhone, inv.ContactEmail, now.Unix())
	if err != nil {
		return nil, fmt.Errorf("failed to create invite: %w", err)
	}

	log.Info("Created invite", "id", inv.ID, "creator", inv.CreatorID, "sport", inv.Sport, "players", inv.PlayersRequired)
	return inv, nil
}

func (s *store) GetInvite(ctx context.Context, id string) (*Invite, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return loadInvite(ctx, s.db, id)
}

func (s *store) ListOpenInvites(ctx context.Context, sport, date string) ([]Invite, error) {
	query := selectInvite + " WHERE players_required > players_joined"
	var args []any
	if sport != "" {
		query += " AND sport = ?"
		args = append(args, strings.ToLower(strings.TrimSpace(sport)))
	}
	if date != "" {
		day, err := slot.ParseDate(date)
		if err != nil {
			return nil, apperr.Validation("%v", err)
		}
		query += " AND date = ?"
		args = append(args, day.Format(slot.DateLayout))
	}
	query += " ORDER BY date, time, created_at"

	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query invites: %w", err)
	}
	defer rows.Close()

	invites := []Invite{}
	for rows.Next() {
		inv, err := scanInvite(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan invite row: %w", err)
		}
		invites = append(invites, *inv)
	}
	return invites, rows.Err()
}

// SubmitJoinRequest checks the request against the places still free. Other
// pending requests are not counted; the creator decides between them.
func (s *store) SubmitJoinRequest(ctx context.Context, actor auth.Actor, inviteID string, in NewJoinRequest) (*JoinRequest, error) {
	if actor.Banned {
		return nil, apperr.Forbidden("account is suspended")
	}
	name := strings.TrimSpace(in.JoinerName)
	if name == "" {
		return nil, apperr.Validation("joiner name is required")
	}
	if actor.UserID == "" && strings.TrimSpace(in.Contact) == "" {
		return nil, apperr.Validation("contact details are required to join without an account")
	}
	if in.PlayersCount <= 0 {
		return nil, apperr.Validation("players count must be at least 1")
	}
	contact, err := normalizeContact(in.Contact, s.region)
	if err != nil {
		return nil, apperr.Validation("%v", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	var jr *JoinRequest
	err = database.RunInTx(ctx, s.db, func(tx *sql.Tx) error {
		inv, err := loadInvite(ctx, tx, inviteID)
		if err != nil {
			return err
		}
		if inv.PlayersJoined+in.PlayersCount > inv.PlayersRequired {
			return apperr.CapacityExceeded("invite %s has %d place(s) left, %d requested", inv.ID, inv.PlayersLeft, in.PlayersCount)
		}

		now := time.Now()
		jr = &JoinRequest{
			ID:           uuid.New().String(),
			InviteID:     inv.ID,
			UserID:       actor.UserID,
			JoinerName:   name,
			Contact:      contact,
			PlayersCount: in.PlayersCount,
			Status:       StatusPending,
			CreatedAt:    time.Unix(now.Unix(), 0),
			UpdatedAt:    time.Unix(now.Unix(), 0),
		}
		var userID sql.NullString
		if actor.UserID != "" {
			userID = sql.NullString{String: actor.UserID, Valid: true}
		}
		_, err = tx.ExecContext(ctx, `
			INSERT INTO join_requests (id, invite_id, user_id, joiner_name, contact, players_count, status, created_at, updated_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		`, jr.ID, jr.InviteID, userID, jr.JoinerName, jr.Contact, jr.PlayersCount, string(jr.Status), now.Unix(), now.Unix())
		if err != nil {
			return fmt.Errorf("failed to create join request: %w", err)
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, apperr.ErrCapacityExceeded) {
			s.metrics.IncJoinRequests("rejected")
		}
		return nil, err
	}

	s.metrics.IncJoinRequests("submitted")
	log.Info("Join request submitted", "id", jr.ID, "invite", jr.InviteID, "players", jr.PlayersCount, "anonymous", jr.UserID == "")
	return jr, nil
}

// ResolveJoinRequest accepts or declines a pending request. Acceptance is
// refused when it would take the invite past its required player count.
func (s *store) ResolveJoinRequest(ctx context.Context, actor auth.Actor, requestID string, decision RequestStatus) (*JoinRequest, *Invite, error) {
	if decision != StatusAccepted && decision != StatusDeclined {
		return nil, nil, apperr.Validation("decision must be %s or %s", StatusAccepted, StatusDeclined)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	var (
		jr  *JoinRequest
		inv *Invite
	)
	err := database.RunInTx(ctx, s.db, func(tx *sql.Tx) error {
		var err error
		jr, err = scanJoinRequest(tx.QueryRowContext(ctx, selectJoinRequest+" WHERE id = ?", requestID))
		if errors.Is(err, sql.ErrNoRows) {
			return apperr.NotFound("join request %s", requestID)
		}
		if err != nil {
			return fmt.Errorf("failed to get join request %s: %w", requestID, err)
		}
		inv, err = loadInvite(ctx, tx, jr.InviteID)
		if err != nil {
			return err
		}
		if actor.Banned || actor.UserID != inv.CreatorID {
			return apperr.Forbidden("only the invite creator may resolve join requests")
		}
		if jr.Status != StatusPending {
			return apperr.AlreadyProcessed("join request %s is already %s", jr.ID, jr.Status)
		}
		if decision == StatusAccepted && inv.PlayersJoined+jr.PlayersCount > inv.PlayersRequired {
			return apperr.CapacityExceeded("invite %s has %d place(s) left, request needs %d", inv.ID, inv.PlayersLeft, jr.PlayersCount)
		}

		now := time.Now().Unix()
		if _, err := tx.ExecContext(ctx, `
			UPDATE join_requests SET status = ?, updated_at = ? WHERE id = ?
		`, string(decision), now, jr.ID); err != nil {
			return fmt.Errorf("failed to update join request %s: %w", jr.ID, err)
		}
		if err := recount(ctx, tx, inv.ID); err != nil {
			return err
		}

		jr.Status = decision
		jr.UpdatedAt = time.Unix(now, 0)
		inv, err = loadInvite(ctx, tx, inv.ID)
		return err
	})
	if err != nil {
		return nil, nil, err
	}

	s.metrics.IncJoinRequests(strings.ToLower(string(decision)))
	log.Info("Join request resolved", "id", jr.ID, "invite", inv.ID, "decision", decision, "joined", inv.PlayersJoined, "left", inv.PlayersLeft)

	if decision == StatusAccepted {
		s.publishAccepted(jr, inv)
	}
	return jr, inv, nil
}

// recount rewrites the stored counters from the accepted requests.
func recount(ctx context.Context, tx *sql.Tx, inviteID string) error {
	_, err := tx.ExecContext(ctx, `
		UPDATE invites SET
			players_joined = (SELECT COALESCE(SUM(players_count), 0) FROM join_requests WHERE invite_id = ? AND status = 'ACCEPTED'),
			players_left = MAX(0, players_required - (SELECT COALESCE(SUM(players_count), 0) FROM join_requests WHERE invite_id = ? AND status = 'ACCEPTED'))
		WHERE id = ?
	`, inviteID, inviteID, inviteID)
	if err != nil {
		return fmt.Errorf("failed to recount invite %s: %w", inviteID, err)
	}
	return nil
}

func (s *store) publishAccepted(jr *JoinRequest, inv *Invite) {
	event := pubsub.JoinRequestEvent{
		RequestID:     jr.ID,
		InviteID:      inv.ID,
		PlayersCount:  jr.PlayersCount,
		PlayersJoined: inv.PlayersJoined,
		PlayersLeft:   inv.PlayersLeft,
		OccurredAt:    time.Now().Unix(),
	}
	topic := pubsub.EventJoinRequestAccepted
	if err := s.events.SendMessage(topic, event); err != nil {
		s.metrics.IncEventsFailed(string(topic))
		log.Error("Failed to publish join request event", "request", jr.ID, "error", err)
		return
	}
	s.metrics.IncEventsPublished(string(topic))
}

func (s *store) ListJoinRequests(ctx context.Context, actor auth.Actor, inviteID string) ([]JoinRequest, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	inv, err := loadInvite(ctx, s.db, inviteID)
	if err != nil {
		return nil, err
	}
	if actor.UserID != inv.CreatorID {
		return nil, apperr.Forbidden("only the invite creator may list join requests")
	}

	rows, err := s.db.QueryContext(ctx, selectJoinRequest+" WHERE invite_id = ? ORDER BY created_at, rowid", inviteID)
	if err != nil {
		return nil, fmt.Errorf("failed to query join requests: %w", err)
	}
	defer rows.Close()

	requests := []JoinRequest{}
	for rows.Next() {
		jr, err := scanJoinRequest(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan join request row: %w", err)
		}
		requests = append(requests, *jr)
	}
	return requests, rows.Err()
}
