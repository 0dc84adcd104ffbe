package api

import (
	"net/http"

	"github.com/blagoySimandov/teachermail/internal/user"
)

type UserHandler struct{}

func NewUserHandler() *UserHandler {
	return &UserHandler{}
}

type MeResponse struct {
	ID     string `json:"id"`
	Email  string `json:"email"`
	Tokens int    `json:"tokens"`
}

// Me reports the caller's balance. Must sit behind user.UserMiddleware.
func (h *UserHandler) Me(w http.ResponseWriter, r *http.Request) {
	dbUser, ok := user.GetDBUserFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, unauthorizedMessage)
		return
	}

	writeJSON(w, http.StatusOK, MeResponse{
		ID:     dbUser.ID,
		Email:  dbUser.Email,
		Tokens: dbUser.Tokens,
	})
}
