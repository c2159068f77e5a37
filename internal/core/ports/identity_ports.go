package ports

import (
	"context"

	"github.com/vncsmyrnk/borderless/internal/core/domain"
)

// KeyValueStore is the durable backend behind the identity store. Get reports
// found=false for a missing key.
type KeyValueStore interface {
	Get(ctx context.Context, key string) (value string, found bool, err error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, key string) error
	Close() error
}

// IdentityStore persists the self id and the cached last vote. Its methods
// never fail: backend faults read as absent and writes become no-ops.
type IdentityStore interface {
	GetSelfID() domain.OptionalMemberID
	SetSelfID(id domain.MemberID)
	ClearSelfID()
	GetCachedVote() domain.OptionalChoice
	SetCachedVote(choice domain.VoteChoice)
	ClearCachedVote()
	ClearAll()
}

type IdentityService interface {
	CurrentSelfID() domain.OptionalMemberID
	IsRegistered() bool
	RegisterAsMe(id domain.MemberID)
	Unregister()
	IsMe(id domain.MemberID) bool
	CachedVote() domain.OptionalChoice
	CacheVote(owner domain.MemberID, choice domain.VoteChoice) bool
}
