package services

import (
	"sync"

	"github.com/vncsmyrnk/borderless/internal/core/domain"
	"github.com/vncsmyrnk/borderless/internal/core/ports"
)

// IdentityService is the in-memory view of who this device claims to be. It
// reads the store once at construction and then only through its own
// mutators.
type IdentityService struct {
	mu     sync.RWMutex
	store  ports.IdentityStore
	selfID domain.OptionalMemberID
}

func NewIdentityService(store ports.IdentityStore) ports.IdentityService {
	return &IdentityService{
		store:  store,
		selfID: store.GetSelfID(),
	}
}

func (s *IdentityService) CurrentSelfID() domain.OptionalMemberID {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.selfID
}

func (s *IdentityService) IsRegistered() bool {
	return s.CurrentSelfID().Present()
}

// RegisterAsMe replaces any previous self id. Whether id names a real member
// is up to the caller.
func (s *IdentityService) RegisterAsMe(id domain.MemberID) {
	if !id.Valid() {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.store.SetSelfID(id)
	s.selfID = domain.SomeMember(id)
}

// Unregister clears the self id and the cached vote together.
func (s *IdentityService) Unregister() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.store.ClearSelfID()
	s.store.ClearCachedVote()
	s.selfID = domain.NoMember()
}

func (s *IdentityService) IsMe(id domain.MemberID) bool {
	return s.CurrentSelfID().Is(id)
}

// CachedVote returns the last vote echoed into the store, if any.
func (s *IdentityService) CachedVote() domain.OptionalChoice {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.selfID.Present() {
		return domain.NoChoice()
	}
	return s.store.GetCachedVote()
}

// CacheVote writes choice into the vote cache only while owner is still the
// registered self id. A vote for an identity that has since been unregistered
// or replaced is dropped.
func (s *IdentityService) CacheVote(owner domain.MemberID, choice domain.VoteChoice) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.selfID.Is(owner) {
		return false
	}
	s.store.SetCachedVote(choice)
	return true
}
