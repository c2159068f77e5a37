package ports

import (
	"context"

	"github.com/vncsmyrnk/borderless/internal/core/domain"
)

type ProfileSource interface {
	FetchProfiles(ctx context.Context) ([]domain.Profile, error)
}

type ProfileService interface {
	// List returns the roster and, when the demo roster had to be used
	// because the fetch failed, the error message.
	List(ctx context.Context) ([]domain.Profile, string)
	Refresh(ctx context.Context)
	Cached() ([]domain.Profile, string)
	Get(id domain.MemberID) (domain.Profile, bool)
}
