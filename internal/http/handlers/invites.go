package handlers

import (
	"net/http"
	"strings"

	"github.com/mauv0809/courtside/internal/invite"
)

func CreateInviteHandler(svc invite.InviteService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var in invite.NewInvite
		if err := decodeJSON(w, r, &in); err != nil {
			writeError(w, r, err)
			return
		}
		inv, err := svc.CreateInvite(r.Context(), actorFrom(r), in)
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusCreated, inv)
	}
}

func GetInviteHandler(svc invite.InviteService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		inv, err := svc.GetInvite(r.Context(), r.PathValue("id"))
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, inv)
	}
}

// ListInvitesHandler lists invites that still have places left.
func ListInvitesHandler(svc invite.InviteService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		invites, err := svc.ListOpenInvites(r.Context(), q.Get("sport"), q.Get("date"))
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, invites)
	}
}

// SubmitJoinRequestHandler accepts requests from signed-in and anonymous
// players alike.
func SubmitJoinRequestHandler(svc invite.InviteService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var in invite.NewJoinRequest
		if err := decodeJSON(w, r, &in); err != nil {
			writeError(w, r, err)
			return
		}
		jr, err := svc.SubmitJoinRequest(r.Context(), actorFrom(r), r.PathValue("id"), in)
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusCreated, jr)
	}
}

func ListJoinRequestsHandler(svc invite.InviteService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		requests, err := svc.ListJoinRequests(r.Context(), actorFrom(r), r.PathValue("id"))
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, requests)
	}
}

type resolveRequest struct {
	Decision string `json:"decision"`
}

type resolveResponse struct {
	Request *invite.JoinRequest `json:"request"`
	Invite  *invite.Invite      `json:"invite"`
}

// ResolveJoinRequestHandler accepts or declines a request and returns the
// invite with its recomputed places.
func ResolveJoinRequestHandler(svc invite.InviteService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req resolveRequest
		if err := decodeJSON(w, r, &req); err != nil {
			writeError(w, r, err)
			return
		}
		decision := invite.RequestStatus(strings.ToUpper(strings.TrimSpace(req.Decision)))
		jr, inv, err := svc.ResolveJoinRequest(r.Context(), actorFrom(r), r.PathValue("id"), decision)
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, resolveResponse{Request: jr, Invite: inv})
	}
}
