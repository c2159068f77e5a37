package services

import (
	"context"
	"sync"

	"github.com/vncsmyrnk/borderless/internal/core/ports"
)

type summaryService struct {
	identity ports.IdentityService
	session  ports.VoteSession
	profiles ports.ProfileService
}

// NewSummaryService loads everything a freshly opened page needs.
func NewSummaryService(identity ports.IdentityService, session ports.VoteSession, profiles ports.ProfileService) ports.SummaryService {
	return &summaryService{
		identity: identity,
		session:  session,
		profiles: profiles,
	}
}

// Load fetches the roster and the vote status scoped to the current self id
// in parallel. Both calls fall back on their own, so Load only waits.
func (s *summaryService) Load(ctx context.Context) {
	var wg sync.WaitGroup

	wg.Add(2)
	go func() {
		defer wg.Done()
		s.profiles.Refresh(ctx)
	}()
	go func() {
		defer wg.Done()
		s.session.FetchVoteStatus(ctx, s.identity.CurrentSelfID())
	}()

	wg.Wait()
}

// RefreshStatus re-fetches the vote status for whoever is registered now.
func (s *summaryService) RefreshStatus(ctx context.Context) {
	s.session.FetchVoteStatus(ctx, s.identity.CurrentSelfID())
}
