package auth

import (
	"context"
	"crypto/subtle"
	"net/http"
	"strings"
	"time"

	"byte-highlight/internal/handler/http/respond"
	authservice "byte-highlight/internal/service/auth"
)

// CookieName carries the signed admin session.
const CookieName = "admin-auth"

const (
	LoginPath = "/admin/login"
	AdminPath = "/admin"
)

type ctxKey string

const ctxUser ctxKey = "user"

// UserFromContext returns the admin subject stored by RequireAdmin or
// AdminGate.
func UserFromContext(ctx context.Context) (string, bool) {
	u, ok := ctx.Value(ctxUser).(string)
	return u, ok
}

// Sessions reads and writes the admin-auth cookie.
type Sessions struct {
	Tokens *authservice.TokenIssuer
	// Secure marks the cookie Secure; enable behind HTTPS.
	Secure bool
}

// Set stores token in the session cookie.
func (s *Sessions) Set(w http.ResponseWriter, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   int(authservice.SessionTTL / time.Second),
		HttpOnly: true,
		Secure:   s.Secure,
		SameSite: http.SameSiteLaxMode,
	})
}

// Clear expires the session cookie.
func (s *Sessions) Clear(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   s.Secure,
		SameSite: http.SameSiteLaxMode,
	})
}

// subject returns the admin identified by the session cookie, or "" if the
// cookie is absent or does not verify.
func (s *Sessions) subject(r *http.Request) string {
	c, err := r.Cookie(CookieName)
	if err != nil || c.Value == "" {
		return ""
	}
	claims, err := s.Tokens.Verify(c.Value, authservice.PurposeSession)
	if err != nil || claims.Role != authservice.RoleAdmin {
		return ""
	}
	return claims.Subject
}

// AdminGate protects the HTML admin pages. Anything under /admin except the
// login page needs a session, and a signed-in admin visiting the login page
// is sent to the dashboard.
func (s *Sessions) AdminGate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user := s.subject(r)
		isLogin := r.URL.Path == LoginPath
		isAdmin := r.URL.Path == AdminPath || strings.HasPrefix(r.URL.Path, AdminPath+"/")

		switch {
		case isLogin && user != "" && r.Method == http.MethodGet:
			http.Redirect(w, r, AdminPath, http.StatusFound)
			return
		case isAdmin && !isLogin && user == "":
			recordRejection("admin_page", "no_session")
			http.Redirect(w, r, LoginPath, http.StatusFound)
			return
		}
		if user != "" {
			r = r.WithContext(context.WithValue(r.Context(), ctxUser, user))
		}
		next.ServeHTTP(w, r)
	})
}

// RequireAdmin protects the admin JSON API. A session cookie or a bearer API
// token is accepted.
func (s *Sessions) RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user := s.subject(r)
		if user == "" {
			user = s.bearerSubject(r.Header.Get("Authorization"))
		}
		if user == "" {
			recordRejection("admin_api", "unauthorized")
			respond.Fail(w, http.StatusUnauthorized, "unauthorized")
			return
		}
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), ctxUser, user)))
	})
}

func (s *Sessions) bearerSubject(header string) string {
	token, ok := bearer(header)
	if !ok {
		return ""
	}
	claims, err := s.Tokens.Verify(token, authservice.PurposeAPI)
	if err != nil || claims.Role != authservice.RoleAdmin {
		return ""
	}
	return claims.Subject
}

// CronAuth accepts only requests carrying "Authorization: Bearer <secret>".
// An empty secret rejects everything.
func CronAuth(secret string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, ok := bearer(r.Header.Get("Authorization"))
			if secret == "" || !ok || subtle.ConstantTimeCompare([]byte(token), []byte(secret)) != 1 {
				recordRejection("cron", "unauthorized")
				respond.Fail(w, http.StatusUnauthorized, "Unauthorized")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func bearer(header string) (string, bool) {
	const prefix = "Bearer "
	if !strings.HasPrefix(header, prefix) {
		return "", false
	}
	token := strings.TrimSpace(strings.TrimPrefix(header, prefix))
	return token, token != ""
}
