package httpserver

import (
	"context"
	"net/http"
	"strings"
	"time"

	"emoji_map/internal/domain"
)

type ctxKey int

const userCtxKey ctxKey = iota

// Authenticator resolves session tokens issued by the external identity
// provider. Tokens arrive as a bearer header or the session cookie; the
// session row lives in the relational store and is cached briefly.
type Authenticator struct {
	users domain.UserRepository
	cache domain.Cache
	ttl   time.Duration
}

func NewAuthenticator(users domain.UserRepository, cache domain.Cache, ttl time.Duration) *Authenticator {
	return &Authenticator{users: users, cache: cache, ttl: ttl}
}

// Required rejects unauthenticated requests with 401 and stores the resolved
// user on the request context otherwise.
func (a *Authenticator) Required(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := sessionToken(r)
		if token == "" {
			writeProblem(w, http.StatusUnauthorized, "Authentication Required", "missing session token")
			return
		}

		sess, err := a.lookupSession(r.Context(), token)
		if err != nil || sess.ExpiredAt(time.Now()) {
			writeProblem(w, http.StatusUnauthorized, "Authentication Required", "invalid or expired session")
			return
		}

		user, err := a.users.GetUser(r.Context(), sess.UserID)
		if err != nil {
			writeProblem(w, http.StatusUnauthorized, "Authentication Required", "session user no longer exists")
			return
		}

		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), userCtxKey, user)))
	})
}

func (a *Authenticator) lookupSession(ctx context.Context, token string) (domain.Session, error) {
	key := "session:" + token
	var sess domain.Session
	if a.cache != nil {
		if ok, _ := a.cache.Get(ctx, key, &sess); ok {
			return sess, nil
		}
	}
	sess, err := a.users.GetSession(ctx, token)
	if err != nil {
		return domain.Session{}, err
	}
	if a.cache != nil {
		_ = a.cache.Set(ctx, key, sess, int(a.ttl.Seconds()))
	}
	return sess, nil
}

func sessionToken(r *http.Request) string {
	if h := r.Header.Get("Authorization"); strings.HasPrefix(h, "Bearer ") {
		return strings.TrimPrefix(h, "Bearer ")
	}
	if c, err := r.Cookie("session_token"); err == nil {
		return c.Value
	}
	return ""
}

// UserFrom returns the authenticated user placed by Required.
func UserFrom(ctx context.Context) (domain.User, bool) {
	u, ok := ctx.Value(userCtxKey).(domain.User)
	return u, ok
}
