package invite

import (
	"context"

	"github.com/mauv0809/courtside/internal/auth"
)

// InviteService tracks play-together invites and the capacity taken by
// accepted join requests.
type InviteService interface {
	// CreateInvite opens an invite with every place still free
	CreateInvite(ctx context.Context, actor auth.Actor, in NewInvite) (*Invite, error)

	GetInvite(ctx context.Context, id string) (*Invite, error)

	// ListOpenInvites lists invites with places left. Empty filters match all.
	ListOpenInvites(ctx context.Context, sport, date string) ([]Invite, error)

	// SubmitJoinRequest records a pending request. actor is the zero Actor for
	// anonymous joiners.
	SubmitJoinRequest(ctx context.Context, actor auth.Actor, inviteID string, in NewJoinRequest) (*JoinRequest, error)

	// ResolveJoinRequest accepts or declines a pending request and returns the
	// request together with the invite's recomputed counts
	ResolveJoinRequest(ctx context.Context, actor auth.Actor, requestID string, decision RequestStatus) (*JoinRequest, *Invite, error)

	// ListJoinRequests is only available to the invite creator
	ListJoinRequests(ctx context.Context, actor auth.Actor, inviteID string) ([]JoinRequest, error)
}
