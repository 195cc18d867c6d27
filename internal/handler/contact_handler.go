package handler

import (
	"net/http"

	"learnhub-web/internal/endpoint"
	"learnhub-web/internal/model"
)

type ContactHandler struct {
	reg *endpoint.Registry
}

func NewContactHandler(reg *endpoint.Registry) *ContactHandler {
	return &ContactHandler{reg: reg}
}

func (h *ContactHandler) Create(w http.ResponseWriter, r *http.Request) {
	var input model.ContactInput
	if err := decodeJSON(r, &input); err != nil {
		writeError(w, err)
		return
	}

	// Attach the user id when someone is logged in; the form works without.
	if input.UserID == "" {
		if user := h.reg.Session().Snapshot().User; user != nil {
			input.UserID = user.ID
		}
	}

	res, err := endpoint.CreateContactMessage.Call(r.Context(), h.reg, input)
	if err != nil {
		writeError(w, err)
		return
	}

	writeSuccess(w, http.StatusCreated, map[string]any{"message": res.Message})
}
