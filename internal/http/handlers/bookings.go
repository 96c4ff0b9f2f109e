package handlers

import (
	"net/http"
	"strings"
	"time"

	"github.com/mauv0809/courtside/internal/booking"
)

// bookingResponse adds the derived status to a stored booking.
type bookingResponse struct {
	*booking.Booking
	EffectiveStatus booking.Status `json:"effective_status"`
}

func present(b *booking.Booking, now time.Time) bookingResponse {
	return bookingResponse{Booking: b, EffectiveStatus: b.EffectiveStatus(now)}
}

func presentAll(bs []booking.Booking, now time.Time) []bookingResponse {
	out := make([]bookingResponse, 0, len(bs))
	for i := range bs {
		out = append(out, present(&bs[i], now))
	}
	return out
}

func CreateBookingHandler(svc booking.BookingService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var in booking.CreateBookingInput
		if err := decodeJSON(w, r, &in); err != nil {
			writeError(w, r, err)
			return
		}
		b, err := svc.CreateBooking(r.Context(), actorFrom(r), in)
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusCreated, present(b, time.Now()))
	}
}

func GetBookingHandler(svc booking.BookingService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		b, err := svc.GetBooking(r.Context(), actorFrom(r), r.PathValue("id"))
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, present(b, time.Now()))
	}
}

type transitionRequest struct {
	Action string `json:"action"`
}

// TransitionBookingHandler confirms or cancels a pending booking.
func TransitionBookingHandler(svc booking.BookingService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req transitionRequest
		if err := decodeJSON(w, r, &req); err != nil {
			writeError(w, r, err)
			return
		}
		action := booking.Status(strings.ToUpper(strings.TrimSpace(req.Action)))
		b, err := svc.TransitionBooking(r.Context(), actorFrom(r), r.PathValue("id"), action)
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, present(b, time.Now()))
	}
}

func MyBookingsHandler(svc booking.BookingService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		bs, err := svc.ListBookingsForUser(r.Context(), actorFrom(r))
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, presentAll(bs, time.Now()))
	}
}

func VenueBookingsHandler(svc booking.BookingService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		bs, err := svc.ListBookingsForVenue(r.Context(), actorFrom(r), r.PathValue("id"))
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, presentAll(bs, time.Now()))
	}
}

type blockSlotRequest struct {
	Date      string `json:"date"`
	StartTime string `json:"start_time"`
	EndTime   string `json:"end_time"`
	Reason    string `json:"reason"`
}

func BlockSlotHandler(svc booking.BookingService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req blockSlotRequest
		if err := decodeJSON(w, r, &req); err != nil {
			writeError(w, r, err)
			return
		}
		bs, err := svc.BlockSlot(r.Context(), actorFrom(r), r.PathValue("id"), req.Date, req.StartTime, req.EndTime, req.Reason)
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusCreated, bs)
	}
}

func ListBlockedSlotsHandler(svc booking.BookingService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		slots, err := svc.ListBlockedSlots(r.Context(), r.PathValue("id"), r.URL.Query().Get("date"))
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, slots)
	}
}

func UnblockSlotHandler(svc booking.BookingService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := r.PathValue("id")
		if err := svc.UnblockSlot(r.Context(), actorFrom(r), id); err != nil {
			writeError(w, r, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}
