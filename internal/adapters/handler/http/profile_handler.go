package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/vncsmyrnk/borderless/internal/core/domain"
	"github.com/vncsmyrnk/borderless/internal/core/ports"
)

type ProfileHandler struct {
	profiles ports.ProfileService
	identity ports.IdentityService
}

func NewProfileHandler(profiles ports.ProfileService, identity ports.IdentityService) *ProfileHandler {
	return &ProfileHandler{
		profiles: profiles,
		identity: identity,
	}
}

type profileView struct {
	domain.Profile
	IsMe bool `json:"is_me"`
}

type profilesResponse struct {
	Profiles []profileView `json:"profiles"`
	Error    string        `json:"error,omitempty"`
}

func (h *ProfileHandler) ListProfiles(w http.ResponseWriter, r *http.Request) {
	profiles, errMsg := h.profiles.Cached()

	resp := profilesResponse{
		Profiles: make([]profileView, 0, len(profiles)),
		Error:    errMsg,
	}
	for _, p := range profiles {
		resp.Profiles = append(resp.Profiles, profileView{Profile: p, IsMe: h.identity.IsMe(p.ID)})
	}

	writeJSON(w, http.StatusOK, resp)
}

type questionsResponse struct {
	Questions []string `json:"questions"`
}

// GetQuestions returns the conversation starters for a profile. Visitors do
// not get questions about themselves.
func (h *ProfileHandler) GetQuestions(w http.ResponseWriter, r *http.Request) {
	id, err := domain.ParseMemberID(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, err.Error(), errorStatus(err))
		return
	}

	profile, ok := h.profiles.Get(id)
	if !ok {
		http.Error(w, "profile not found", http.StatusNotFound)
		return
	}

	questions := []string{}
	if !h.identity.IsMe(id) {
		if q := profile.Questions(); q != nil {
			questions = q
		}
	}

	writeJSON(w, http.StatusOK, questionsResponse{Questions: questions})
}
