package auth

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"byte-highlight/internal/handler/http/requestid"
	"byte-highlight/internal/handler/http/respond"
	authservice "byte-highlight/internal/service/auth"
)

type credentialsRequest struct {
	Username string `json:"username" example:"admin"`
	Password string `json:"password" example:"your_password"`
}

type tokenResponse struct {
	Token     string `json:"token" example:"eyJhbGciOiJIUzI1NiIsInR5cCI6IkpXVCJ9..."`
	ExpiresIn int    `json:"expires_in" example:"3600"`
}

// TokenHandler issues short-lived API tokens for scripted admin access.
// Credentials come from HTTP basic auth or a JSON body.
//
// @Summary      API トークン取得
// @Description  管理者の資格情報で認証し、Bearer トークンを発行します
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        request body credentialsRequest false "資格情報 (Basic 認証の代わり)"
// @Success      200 {object} tokenResponse
// @Failure      400 {object} respond.ErrorBody "リクエストが不正"
// @Failure      401 {object} respond.ErrorBody "認証失敗"
// @Failure      429 {object} respond.ErrorBody "レート制限"
// @Router       /auth/token [post]
func TokenHandler(svc *authservice.AuthService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		logger := slog.With(slog.String("request_id", requestid.FromContext(r.Context())))

		creds, ok := basicCredentials(r)
		if !ok {
			var req credentialsRequest
			if err := respond.DecodeJSON(r, &req); err != nil {
				recordLogin("token", "invalid_request", time.Since(start).Seconds())
				respond.Fail(w, http.StatusBadRequest, "invalid request")
				return
			}
			creds = authservice.Credentials{Username: req.Username, Password: req.Password}
		}

		if err := svc.ValidateCredentials(r.Context(), creds); err != nil {
			logger.Warn("token request rejected", slog.String("reason", "invalid_credentials"))
			recordLogin("token", "failure", time.Since(start).Seconds())
			respond.Fail(w, http.StatusUnauthorized, ErrInvalidCredentials.Error())
			return
		}

		token, err := svc.Tokens().Issue(creds.Username, authservice.RoleAdmin, authservice.PurposeAPI, authservice.APITokenTTL)
		if err != nil {
			logger.Error("token generation failed", slog.String("error", respond.SanitizeError(err)))
			recordLogin("token", "error", time.Since(start).Seconds())
			respond.SafeError(w, http.StatusInternalServerError, errors.New("token generation failed"))
			return
		}

		recordLogin("token", "success", time.Since(start).Seconds())
		logger.Info("api token issued", slog.Int64("duration_ms", time.Since(start).Milliseconds()))
		respond.JSON(w, http.StatusOK, tokenResponse{
			Token:     token,
			ExpiresIn: int(authservice.APITokenTTL / time.Second),
		})
	}
}

func basicCredentials(r *http.Request) (authservice.Credentials, bool) {
	user, pass, ok := r.BasicAuth()
	if !ok {
		return authservice.Credentials{}, false
	}
	return authservice.Credentials{Username: user, Password: pass}, true
}
