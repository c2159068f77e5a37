package ports

import (
	"context"

	"github.com/vncsmyrnk/borderless/internal/core/domain"
)

// VoteGateway talks to the remote vote endpoint. FetchStatus returns a
// *domain.TransportError or *domain.RemoteError on failure. SubmitVote never
// fails loudly: it reports false and leaves the reason in LastError.
type VoteGateway interface {
	FetchStatus(ctx context.Context, selfID domain.OptionalMemberID) (*domain.VoteStatus, error)
	SubmitVote(ctx context.Context, selfID domain.MemberID, choice domain.VoteChoice) bool
	LastError() string
}

// VoteSnapshot is a consistent read of a VoteSession's state.
type VoteSnapshot struct {
	Status    *domain.VoteStatus
	IsBusy    bool
	LastError string
}

type VoteSession interface {
	FetchVoteStatus(ctx context.Context, selfID domain.OptionalMemberID)
	SubmitVote(ctx context.Context, selfID domain.OptionalMemberID, choice domain.VoteChoice) bool
	ClearError()
	Snapshot() VoteSnapshot
	Close()
}

type SummaryService interface {
	Load(ctx context.Context)
	RefreshStatus(ctx context.Context)
}
