package http

import (
	"encoding/json"
	"net/http"
)

// VisibilitySetter receives page visibility changes from the frontend.
type VisibilitySetter interface {
	SetVisible(visible bool)
}

type VisibilityHandler struct {
	visibility VisibilitySetter
}

func NewVisibilityHandler(visibility VisibilitySetter) *VisibilityHandler {
	return &VisibilityHandler{visibility: visibility}
}

type visibilityRequest struct {
	Hidden *bool `json:"hidden"`
}

func (h *VisibilityHandler) SetVisibility(w http.ResponseWriter, r *http.Request) {
	var req visibilityRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Hidden == nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	h.visibility.SetVisible(!*req.Hidden)
	w.WriteHeader(http.StatusNoContent)
}
