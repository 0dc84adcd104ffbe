package user

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/blagoySimandov/teachermail/internal/models"
)

type dbContextKey string

const (
	dbUserContextKey dbContextKey = "db_user"
)

func GetDBUserFromContext(ctx context.Context) (*models.User, bool) {
	user, ok := ctx.Value(dbUserContextKey).(*models.User)
	return user, ok
}

func WithDBUser(ctx context.Context, user *models.User) context.Context {
	return context.WithValue(ctx, dbUserContextKey, user)
}

// UserMiddleware rejects requests whose session does not resolve and stores
// the resolved user in the request context otherwise.
func UserMiddleware(resolver Resolver) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			dbUser, ok := resolver.Resolve(r)
			if !ok {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusUnauthorized)
				_ = json.NewEncoder(w).Encode(models.ErrorResponse{Error: "Unauthorized"})
				return
			}

			next.ServeHTTP(w, r.WithContext(WithDBUser(r.Context(), dbUser)))
		})
	}
}
