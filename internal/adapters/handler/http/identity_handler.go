package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/vncsmyrnk/borderless/internal/core/domain"
	"github.com/vncsmyrnk/borderless/internal/core/ports"
)

type IdentityHandler struct {
	identity ports.IdentityService
	poller   StatusPoller
}

func NewIdentityHandler(identity ports.IdentityService, poller StatusPoller) *IdentityHandler {
	return &IdentityHandler{
		identity: identity,
		poller:   poller,
	}
}

type meResponse struct {
	SelfID     domain.OptionalMemberID `json:"self_id"`
	Registered bool                    `json:"registered"`
	CachedVote domain.OptionalChoice   `json:"cached_vote"`
}

func (h *IdentityHandler) me() meResponse {
	return meResponse{
		SelfID:     h.identity.CurrentSelfID(),
		Registered: h.identity.IsRegistered(),
		CachedVote: h.identity.CachedVote(),
	}
}

func (h *IdentityHandler) GetMe(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.me())
}

// RegisterAsMe replaces the current self id. The vote status is scoped to the
// self id, so a refresh is triggered.
func (h *IdentityHandler) RegisterAsMe(w http.ResponseWriter, r *http.Request) {
	id, err := domain.ParseMemberID(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, err.Error(), errorStatus(err))
		return
	}

	h.identity.RegisterAsMe(id)
	h.poller.Trigger()

	writeJSON(w, http.StatusOK, h.me())
}

func (h *IdentityHandler) Unregister(w http.ResponseWriter, r *http.Request) {
	h.identity.Unregister()
	h.poller.Trigger()

	writeJSON(w, http.StatusOK, h.me())
}
