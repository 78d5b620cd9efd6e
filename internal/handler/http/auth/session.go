package auth

import (
	"log/slog"
	"net/http"
	"strings"
	"time"

	"byte-highlight/internal/handler/http/requestid"
	"byte-highlight/internal/handler/http/respond"
	authservice "byte-highlight/internal/service/auth"
)

// LoginPageRenderer draws the login form, optionally with an error line.
type LoginPageRenderer func(w http.ResponseWriter, status int, errMsg string)

// SessionHandler serves POST /admin/login and POST /admin/logout.
type SessionHandler struct {
	Auth     *authservice.AuthService
	Sessions *Sessions
	// RenderLogin re-renders the form after a failed browser login.
	RenderLogin LoginPageRenderer
}

// Login accepts either an HTML form post or a JSON body.
//
// @Summary      管理者ログイン
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        request body credentialsRequest true "資格情報"
// @Success      200 {object} respond.MessageBody
// @Failure      401 {object} respond.ErrorBody
// @Router       /admin/login [post]
func (h *SessionHandler) Login(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	logger := slog.With(slog.String("request_id", requestid.FromContext(r.Context())))
	isJSON := strings.HasPrefix(r.Header.Get("Content-Type"), "application/json")

	var creds authservice.Credentials
	if isJSON {
		var req credentialsRequest
		if err := respond.DecodeJSON(r, &req); err != nil {
			recordLogin("session", "invalid_request", time.Since(start).Seconds())
			respond.Fail(w, http.StatusBadRequest, "invalid request")
			return
		}
		creds = authservice.Credentials{Username: req.Username, Password: req.Password}
	} else {
		if err := r.ParseForm(); err != nil {
			recordLogin("session", "invalid_request", time.Since(start).Seconds())
			h.fail(w, false, http.StatusBadRequest, "invalid request")
			return
		}
		creds = authservice.Credentials{
			Username: strings.TrimSpace(r.PostFormValue("username")),
			Password: r.PostFormValue("password"),
		}
	}

	token, err := h.Auth.Login(r.Context(), creds)
	if err != nil {
		logger.Warn("admin login failed", slog.String("reason", "invalid_credentials"))
		recordLogin("session", "failure", time.Since(start).Seconds())
		h.fail(w, isJSON, http.StatusUnauthorized, ErrInvalidCredentials.Error())
		return
	}

	h.Sessions.Set(w, token)
	recordLogin("session", "success", time.Since(start).Seconds())
	logger.Info("admin logged in")

	if isJSON {
		respond.Message(w, http.StatusOK, "Login successful")
		return
	}
	http.Redirect(w, r, AdminPath, http.StatusSeeOther)
}

// Logout clears the session and returns to the login page.
func (h *SessionHandler) Logout(w http.ResponseWriter, r *http.Request) {
	h.Sessions.Clear(w)
	http.Redirect(w, r, LoginPath, http.StatusSeeOther)
}

func (h *SessionHandler) fail(w http.ResponseWriter, isJSON bool, status int, msg string) {
	if isJSON || h.RenderLogin == nil {
		respond.Fail(w, status, msg)
		return
	}
	h.RenderLogin(w, status, msg)
}
