package handler

import (
	"io"
	"net/http"
	"strings"

	"learnhub-web/internal/endpoint"
	"learnhub-web/internal/model"
	"learnhub-web/internal/util"
	"learnhub-web/pkg/apierror"
)

const maxAvatarUpload = 10 << 20

type UserHandler struct {
	reg          *endpoint.Registry
	avatarMaxDim int
}

func NewUserHandler(reg *endpoint.Registry, avatarMaxDim int) *UserHandler {
	return &UserHandler{reg: reg, avatarMaxDim: avatarMaxDim}
}

// UpdateProfile forwards the multipart profile form to the backend. An
// attached profile image is downscaled first so phone camera uploads do not
// hit the backend at full size.
func (h *UserHandler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	user := h.reg.Session().Snapshot().User
	if user == nil || user.ID == "" {
		writeError(w, model.ErrNotAuthenticated)
		return
	}

	if err := r.ParseMultipartForm(maxAvatarUpload); err != nil {
		writeError(w, apierror.Validation("BAD_REQUEST", "malformed multipart form", err.Error()))
		return
	}

	args := endpoint.UpdateUserArgs{
		ID: user.ID,
		Profile: model.ProfileUpdateInput{
			Name:       r.FormValue("name"),
			Email:      r.FormValue("email"),
			Phone:      r.FormValue("phone"),
			ProfileURL: r.FormValue("profileURL"),
			Bio:        r.FormValue("bio"),
			Skills:     splitSkills(r.FormValue("skills")),
		},
	}

	if file, _, err := r.FormFile("profileImage"); err == nil {
		defer file.Close()

		data, err := io.ReadAll(io.LimitReader(file, maxAvatarUpload))
		if err != nil {
			writeError(w, err)
			return
		}

		scaled, format, err := util.DownscaleAvatar(data, h.avatarMaxDim)
		if err != nil {
			writeError(w, err)
			return
		}

		args.Image = scaled
		args.ImageName = "avatar." + format
	}

	res, err := endpoint.UpdateUser.Call(r.Context(), h.reg, args)
	if err != nil {
		writeError(w, err)
		return
	}

	writeSuccess(w, http.StatusOK, map[string]any{"user": res.User})
}

func splitSkills(raw string) []string {
	if strings.TrimSpace(raw) == "" {
		return nil
	}

	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
