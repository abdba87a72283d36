package handler

import (
	"log/slog"
	"net/http"

	"github.com/mkarpinski/blog-api/internal/auth"
	"github.com/mkarpinski/blog-api/internal/service"
)

// UserHandler exposes public profiles and avatar management.
type UserHandler struct {
	users  *service.UserService
	logger *slog.Logger
}

func NewUserHandler(users *service.UserService, logger *slog.Logger) *UserHandler {
	return &UserHandler{users: users, logger: logger}
}

// HandleGet returns a public profile.
// GET /api/v1/users/{username}
func (h *UserHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	user, err := h.users.Get(r.Context(), r.PathValue("username"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, user)
}

// HandleGetAvatar serves a user's avatar image.
// GET /api/v1/users/{username}/avatar
func (h *UserHandler) HandleGetAvatar(w http.ResponseWriter, r *http.Request) {
	path, err := h.users.AvatarPath(r.Context(), r.PathValue("username"))
	if err != nil {
		writeError(w, err)
		return
	}
	http.ServeFile(w, r, path)
}

// HandleSetAvatar replaces the caller's own avatar.
// PUT /api/v1/users/{username}/avatar  (multipart field "avatar")
func (h *UserHandler) HandleSetAvatar(w http.ResponseWriter, r *http.Request) {
	callerID, _ := auth.UserIDFromContext(r.Context())

	file, header, err := formImage(w, r, "avatar")
	if err != nil {
		writeError(w, err)
		return
	}
	defer file.Close()

	user, err := h.users.SetAvatar(r.Context(), callerID, r.PathValue("username"), header.Filename, file)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, user)
}

// HandleDeleteAvatar removes the caller's own avatar.
// DELETE /api/v1/users/{username}/avatar
func (h *UserHandler) HandleDeleteAvatar(w http.ResponseWriter, r *http.Request) {
	callerID, _ := auth.UserIDFromContext(r.Context())

	if err := h.users.DeleteAvatar(r.Context(), callerID, r.PathValue("username")); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
