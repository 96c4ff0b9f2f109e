package handlers

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/mauv0809/courtside/internal/apperr"
	"github.com/mauv0809/courtside/internal/availability"
	"github.com/mauv0809/courtside/internal/slot"
	"github.com/mauv0809/courtside/internal/venue"
)

func ListVenuesHandler(store venue.VenueStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		venues, err := store.ListVenues(r.Context(), q.Get("city"), q.Get("sport"))
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, venues)
	}
}

// GetVenueHandler returns the venue together with its courts.
func GetVenueHandler(store venue.VenueStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		v, err := store.GetVenue(r.Context(), r.PathValue("id"))
		if err != nil {
			writeError(w, r, err)
			return
		}
		courts, err := store.ListCourts(r.Context(), v.ID)
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, struct {
			*venue.Venue
			Courts []venue.Court `json:"courts"`
		}{v, courts})
	}
}

func CreateVenueHandler(store venue.VenueStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var in venue.NewVenue
		if err := decodeJSON(w, r, &in); err != nil {
			writeError(w, r, err)
			return
		}
		v, err := store.CreateVenue(r.Context(), actorFrom(r), in)
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusCreated, v)
	}
}

func CreateCourtHandler(store venue.VenueStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var in venue.NewCourt
		if err := decodeJSON(w, r, &in); err != nil {
			writeError(w, r, err)
			return
		}
		c, err := store.CreateCourt(r.Context(), actorFrom(r), r.PathValue("id"), in)
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusCreated, c)
	}
}

func GetCourtHandler(store venue.VenueStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c, err := store.GetCourt(r.Context(), r.PathValue("id"))
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, c)
	}
}

type windowsRequest struct {
	Windows []slot.Range `json:"windows"`
}

// SetWindowsHandler replaces the opening windows of one weekday. An empty
// list closes the court on that day.
func SetWindowsHandler(store venue.VenueStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		day, err := parseWeekday(r.PathValue("weekday"))
		if err != nil {
			writeError(w, r, err)
			return
		}
		var req windowsRequest
		if err := decodeJSON(w, r, &req); err != nil {
			writeError(w, r, err)
			return
		}
		c, err := store.SetAvailabilityWindows(r.Context(), actorFrom(r), r.PathValue("id"), day, req.Windows)
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, c)
	}
}

func DeactivateCourtHandler(store venue.VenueStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := r.PathValue("id")
		if err := store.DeactivateCourt(r.Context(), actorFrom(r), id); err != nil {
			writeError(w, r, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

// parseWeekday accepts 0-6 (Sunday first) or an English day name.
func parseWeekday(raw string) (time.Weekday, error) {
	if n, err := strconv.Atoi(raw); err == nil {
		if n < 0 || n > 6 {
			return 0, apperr.Validation("weekday must be between 0 and 6")
		}
		return time.Weekday(n), nil
	}
	for d := time.Sunday; d <= time.Saturday; d++ {
		if strings.EqualFold(raw, d.String()) || strings.EqualFold(raw, d.String()[:3]) {
			return d, nil
		}
	}
	return 0, apperr.Validation("unknown weekday %q", raw)
}

type availabilityResponse struct {
	CourtID   string `json:"court_id"`
	Date      string `json:"date"`
	StartTime string `json:"start_time"`
	EndTime   string `json:"end_time"`
	availability.Result
}

func AvailabilityHandler(checker *availability.Checker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		courtID := r.PathValue("id")
		res, err := checker.Evaluate(r.Context(), courtID, q.Get("date"), q.Get("start"), q.Get("end"))
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, availabilityResponse{
			CourtID:   courtID,
			Date:      q.Get("date"),
			StartTime: q.Get("start"),
			EndTime:   q.Get("end"),
			Result:    res,
		})
	}
}

func FreeSlotsHandler(checker *availability.Checker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		courtID := r.PathValue("id")
		date := r.URL.Query().Get("date")
		slots, err := checker.FreeSlots(r.Context(), courtID, date)
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{
			"court_id": courtID,
			"date":     date,
			"slots":    slots,
		})
	}
}
