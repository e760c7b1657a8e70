package auth

import (
	"context"
	"net/http"
	"time"

	"github.com/google/uuid"

	"budgetbuddy/internal/database"
	"budgetbuddy/internal/logger"
)

const (
	UserCookieName = "budgetbuddy_user"
	cookieLifetime = 365 * 24 * time.Hour
)

type contextKey string

const userIDKey contextKey = "user_id"

// Auth hands every request a stable anonymous identity. There are no
// credentials: the cookie partitions data per browser, which is all
// the (user_id, raw_hash) dedup key needs.
type Auth struct {
	db *database.DB
}

func New(db *database.DB) *Auth {
	return &Auth{db: db}
}

// UserID returns the user bound to the request context, or "" outside
// the middleware.
func UserID(ctx context.Context) string {
	if id, ok := ctx.Value(userIDKey).(string); ok {
		return id
	}
	return ""
}

// Middleware resolves the user from the X-User-ID header or the user
// cookie, provisioning a fresh UUID (and its users row) when neither
// is present. The header exists for API clients that don't keep a
// cookie jar.
func (a *Auth) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get("X-User-ID")
		if id == "" {
			if c, err := r.Cookie(UserCookieName); err == nil {
				id = c.Value
			}
		}
		if id == "" {
			id = uuid.NewString()
			http.SetCookie(w, &http.Cookie{
				Name:     UserCookieName,
				Value:    id,
				Path:     "/",
				MaxAge:   int(cookieLifetime.Seconds()),
				HttpOnly: true,
				SameSite: http.SameSiteLaxMode,
			})
			logger.FromContext(r.Context()).Info("user_provisioned", "user_id", id)
		}

		if err := a.db.EnsureUser(id); err != nil {
			logger.FromContext(r.Context()).Error("user_ensure_failed", "error", err.Error())
			http.Error(w, "Internal Server Error", http.StatusInternalServerError)
			return
		}

		ctx := context.WithValue(r.Context(), userIDKey, id)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
