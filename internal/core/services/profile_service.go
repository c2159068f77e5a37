package services

import (
	"context"
	"log/slog"
	"sync"

	"github.com/vncsmyrnk/borderless/internal/core/domain"
	"github.com/vncsmyrnk/borderless/internal/core/ports"
)

const defaultFetchProfilesError = "failed to fetch profiles"

type profileService struct {
	source ports.ProfileSource
	logger *slog.Logger

	mu       sync.RWMutex
	profiles []domain.Profile
	lastErr  string
	loaded   bool
}

func NewProfileService(source ports.ProfileSource, logger *slog.Logger) ports.ProfileService {
	if logger == nil {
		logger = slog.Default()
	}
	return &profileService{
		source: source,
		logger: logger,
	}
}

// List fetches the roster. When the fetch fails the demo roster is returned
// along with the error message.
func (s *profileService) List(ctx context.Context) ([]domain.Profile, string) {
	profiles, err := s.source.FetchProfiles(ctx)
	errMsg := ""
	if err != nil {
		errMsg = err.Error()
		if errMsg == "" {
			errMsg = defaultFetchProfilesError
		}
		s.logger.Error("failed to fetch profiles", "error", err)
		profiles = domain.DemoProfiles()
	} else {
		s.logger.Debug("loaded profiles", "count", len(profiles))
	}

	s.mu.Lock()
	s.profiles = profiles
	s.lastErr = errMsg
	s.loaded = true
	s.mu.Unlock()

	return append([]domain.Profile(nil), profiles...), errMsg
}

func (s *profileService) Refresh(ctx context.Context) {
	s.List(ctx)
}

// Cached returns the last roster without a network call, fetching once if
// nothing has been loaded yet.
func (s *profileService) Cached() ([]domain.Profile, string) {
	s.mu.RLock()
	if s.loaded {
		defer s.mu.RUnlock()
		return append([]domain.Profile(nil), s.profiles...), s.lastErr
	}
	s.mu.RUnlock()
	return s.List(context.Background())
}

func (s *profileService) Get(id domain.MemberID) (domain.Profile, bool) {
	profiles, _ := s.Cached()
	for _, p := range profiles {
		if p.ID == id {
			return p, true
		}
	}
	return domain.Profile{}, false
}
