package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/vncsmyrnk/borderless/internal/core/domain"
	"github.com/vncsmyrnk/borderless/internal/core/ports"
)

// StatusPoller is the polling driver that refreshes the vote status.
type StatusPoller interface {
	IsPolling() bool
	Trigger()
}

type VoteHandler struct {
	session  ports.VoteSession
	identity ports.IdentityService
	poller   StatusPoller
}

func NewVoteHandler(session ports.VoteSession, identity ports.IdentityService, poller StatusPoller) *VoteHandler {
	return &VoteHandler{
		session:  session,
		identity: identity,
		poller:   poller,
	}
}

type statusResponse struct {
	Status  *domain.VoteStatus `json:"status"`
	Busy    bool               `json:"busy"`
	Error   string             `json:"error,omitempty"`
	Polling bool               `json:"polling"`
}

func (h *VoteHandler) status() statusResponse {
	snap := h.session.Snapshot()
	return statusResponse{
		Status:  snap.Status,
		Busy:    snap.IsBusy,
		Error:   snap.LastError,
		Polling: h.poller.IsPolling(),
	}
}

func (h *VoteHandler) GetStatus(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.status())
}

type voteRequest struct {
	Status int `json:"status"`
}

func (h *VoteHandler) SubmitVote(w http.ResponseWriter, r *http.Request) {
	var req voteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	choice, err := domain.ParseChoiceWire(req.Status)
	if err != nil {
		http.Error(w, err.Error(), errorStatus(err))
		return
	}

	selfID := h.identity.CurrentSelfID()
	if !selfID.Present() {
		http.Error(w, domain.ErrNotRegistered.Error(), errorStatus(domain.ErrNotRegistered))
		return
	}

	if !h.session.SubmitVote(r.Context(), selfID, choice) {
		resp := h.status()
		if resp.Error == "" {
			resp.Error = "failed to submit vote"
		}
		writeJSON(w, http.StatusBadGateway, resp)
		return
	}

	writeJSON(w, http.StatusOK, h.status())
}

func (h *VoteHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	h.poller.Trigger()
	w.WriteHeader(http.StatusAccepted)
}

func (h *VoteHandler) ClearError(w http.ResponseWriter, r *http.Request) {
	h.session.ClearError()
	w.WriteHeader(http.StatusNoContent)
}

// errorStatus maps gateway errors to the status code reported to the
// frontend.
func errorStatus(err error) int {
	var transport *domain.TransportError
	var remote *domain.RemoteError
	switch {
	case errors.As(err, &transport), errors.As(err, &remote):
		return http.StatusBadGateway
	case errors.Is(err, domain.ErrInvalidChoice), errors.Is(err, domain.ErrInvalidMemberID):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrNotRegistered):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}
