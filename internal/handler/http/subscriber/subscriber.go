// Package subscriber serves the public sign-up and unsubscribe endpoints and
// the admin subscriber list.
package subscriber

import (
	"errors"
	"html/template"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"byte-highlight/internal/domain/entity"
	"byte-highlight/internal/handler/http/requestid"
	"byte-highlight/internal/handler/http/respond"
	"byte-highlight/internal/observability/metrics"
	subUC "byte-highlight/internal/usecase/subscriber"
)

const (
	msgInvalidEmail      = "Please provide a valid email address"
	msgAlreadySubscribed = "You are already subscribed to our newsletter"
	msgSubscribed        = "Successfully subscribed to newsletter"
	msgUnsubscribed      = "You have been unsubscribed from The Byte Highlight"
	msgInvalidLink       = "This unsubscribe link is invalid or has expired"
)

// DTO is the JSON shape of a subscriber.
type DTO struct {
	ID        string    `json:"id" example:"5f1d7c1e-2f0b-4a7e-9a53-0c1f5d9b2e11"`
	Email     string    `json:"email" example:"reader@example.com"`
	Status    string    `json:"status" example:"active"`
	CreatedAt time.Time `json:"created_at" example:"2026-01-05T08:30:00Z"`
}

func toDTO(s *entity.Subscriber) DTO {
	return DTO{ID: s.ID, Email: s.Email, Status: string(s.Status), CreatedAt: s.CreatedAt}
}

type Handler struct {
	Svc *subUC.Service
}

// Register mounts the routes. requireAdmin wraps the list management routes.
func (h *Handler) Register(mux *http.ServeMux, requireAdmin func(http.Handler) http.Handler) {
	mux.HandleFunc("POST /api/subscribe", h.Subscribe)
	mux.HandleFunc("GET /api/unsubscribe", h.UnsubscribePage)
	mux.HandleFunc("POST /api/unsubscribe", h.Unsubscribe)

	mux.Handle("GET /api/subscribers", requireAdmin(http.HandlerFunc(h.List)))
	mux.Handle("PATCH /api/subscribers/{id}", requireAdmin(http.HandlerFunc(h.UpdateStatus)))
	mux.Handle("DELETE /api/subscribers/{id}", requireAdmin(http.HandlerFunc(h.Delete)))
}

type subscribeRequest struct {
	Email string `json:"email" example:"reader@example.com"`
}

// Subscribe 購読登録
// @Summary      購読登録
// @Tags         subscribers
// @Accept       json
// @Produce      json
// @Param        request body subscribeRequest true "メールアドレス"
// @Success      201 {object} respond.MessageBody "登録完了"
// @Success      200 {object} respond.MessageBody "登録済み"
// @Failure      400 {object} respond.ErrorBody
// @Failure      429 {object} respond.ErrorBody
// @Router       /api/subscribe [post]
func (h *Handler) Subscribe(w http.ResponseWriter, r *http.Request) {
	var req subscribeRequest
	if err := respond.DecodeJSON(r, &req); err != nil {
		metrics.RecordSubscription("invalid")
		respond.Fail(w, http.StatusBadRequest, msgInvalidEmail)
		return
	}

	res, err := h.Svc.Subscribe(r.Context(), req.Email)
	var ve *entity.ValidationError
	switch {
	case errors.As(err, &ve):
		metrics.RecordSubscription("invalid")
		respond.Fail(w, http.StatusBadRequest, msgInvalidEmail)
	case errors.Is(err, subUC.ErrAlreadySubscribed):
		metrics.RecordSubscription("duplicate")
		respond.Message(w, http.StatusOK, msgAlreadySubscribed)
	case err != nil:
		metrics.RecordSubscription("error")
		slog.Error("subscribe failed",
			slog.String("request_id", requestid.FromContext(r.Context())),
			slog.String("error", respond.SanitizeError(err)))
		respond.Fail(w, http.StatusInternalServerError, "Failed to subscribe. Please try again later.")
	case res.Reactivated:
		metrics.RecordSubscription("reactivated")
		respond.Message(w, http.StatusCreated, msgSubscribed)
	default:
		metrics.RecordSubscription("created")
		respond.Message(w, http.StatusCreated, msgSubscribed)
	}
}

var unsubscribePage = template.Must(template.New("unsubscribe").Parse(`<!DOCTYPE html>
<html lang="en"><head><meta charset="utf-8"><title>The Byte Highlight</title></head>
<body style="font-family: sans-serif; max-width: 32rem; margin: 4rem auto; text-align: center;">
<h1>The Byte Highlight</h1>
<p>{{.}}</p>
</body></html>`))

// UnsubscribePage handles the link in newsletter footers.
//
// @Summary      購読解除 (メール内リンク)
// @Tags         subscribers
// @Produce      html
// @Param        email query string false "メールアドレス"
// @Param        token query string true  "購読解除トークン"
// @Success      200 {string} string "HTML"
// @Failure      400 {string} string "HTML"
// @Router       /api/unsubscribe [get]
func (h *Handler) UnsubscribePage(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	status, msg := h.unsubscribe(r, q.Get("email"), q.Get("token"))

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := unsubscribePage.Execute(w, msg); err != nil {
		slog.Error("failed to render unsubscribe page", slog.Any("error", err))
	}
}

type unsubscribeRequest struct {
	Email string `json:"email"`
	Token string `json:"token"`
}

// Unsubscribe is the JSON / one-click variant. Mail clients post the form
// "List-Unsubscribe=One-Click" with the token in the query string.
//
// @Summary      購読解除
// @Tags         subscribers
// @Accept       json
// @Produce      json
// @Param        request body unsubscribeRequest true "トークン"
// @Success      200 {object} respond.MessageBody
// @Failure      400 {object} respond.ErrorBody
// @Router       /api/unsubscribe [post]
func (h *Handler) Unsubscribe(w http.ResponseWriter, r *http.Request) {
	req := unsubscribeRequest{Email: r.URL.Query().Get("email"), Token: r.URL.Query().Get("token")}
	if strings.HasPrefix(r.Header.Get("Content-Type"), "application/json") {
		if err := respond.DecodeJSON(r, &req); err != nil {
			respond.Fail(w, http.StatusBadRequest, msgInvalidLink)
			return
		}
	}

	status, msg := h.unsubscribe(r, req.Email, req.Token)
	if status != http.StatusOK {
		respond.Fail(w, status, msg)
		return
	}
	respond.Message(w, status, msg)
}

func (h *Handler) unsubscribe(r *http.Request, email, token string) (int, string) {
	err := h.Svc.Unsubscribe(r.Context(), email, token)
	switch {
	case err == nil:
		metrics.RecordSubscription("unsubscribed")
		return http.StatusOK, msgUnsubscribed
	case errors.Is(err, subUC.ErrInvalidUnsubscribeToken):
		return http.StatusBadRequest, msgInvalidLink
	case errors.Is(err, subUC.ErrSubscriberNotFound):
		// 存在有無は開示しない
		return http.StatusOK, msgUnsubscribed
	default:
		slog.Error("unsubscribe failed",
			slog.String("request_id", requestid.FromContext(r.Context())),
			slog.String("error", respond.SanitizeError(err)))
		return http.StatusInternalServerError, "Something went wrong. Please try again later."
	}
}

// List 購読者一覧
// @Summary      購読者一覧
// @Tags         subscribers
// @Security     BearerAuth
// @Produce      json
// @Param        status query string false "ステータス" Enums(active, unsubscribed)
// @Success      200 {array} DTO
// @Failure      400 {object} respond.ErrorBody
// @Failure      401 {object} respond.ErrorBody
// @Router       /api/subscribers [get]
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	subs, err := h.Svc.List(r.Context(), r.URL.Query().Get("status"))
	if err != nil {
		writeError(w, err)
		return
	}
	out := make([]DTO, 0, len(subs))
	for _, s := range subs {
		out = append(out, toDTO(s))
	}
	respond.JSON(w, http.StatusOK, out)
}

type statusRequest struct {
	Status string `json:"status" example:"unsubscribed"`
}

// UpdateStatus ステータス変更
// @Summary      購読者ステータス変更
// @Tags         subscribers
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        id      path string        true "購読者ID"
// @Param        request body statusRequest true "新しいステータス"
// @Success      200 {object} respond.MessageBody
// @Failure      400 {object} respond.ErrorBody
// @Failure      404 {object} respond.ErrorBody
// @Router       /api/subscribers/{id} [patch]
func (h *Handler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	var req statusRequest
	if err := respond.DecodeJSON(r, &req); err != nil {
		respond.Fail(w, http.StatusBadRequest, "invalid request body")
		return
	}
	sub, err := h.Svc.UpdateStatus(r.Context(), r.PathValue("id"), req.Status)
	if err != nil {
		writeError(w, err)
		return
	}
	respond.MessageWithData(w, http.StatusOK, "Subscriber updated", toDTO(sub))
}

// Delete 購読者削除
// @Summary      購読者削除
// @Tags         subscribers
// @Security     BearerAuth
// @Param        id path string true "購読者ID"
// @Success      200 {object} respond.MessageBody
// @Failure      404 {object} respond.ErrorBody
// @Router       /api/subscribers/{id} [delete]
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.Svc.Delete(r.Context(), r.PathValue("id")); err != nil {
		writeError(w, err)
		return
	}
	respond.Message(w, http.StatusOK, "Subscriber deleted")
}

func writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, subUC.ErrInvalidStatus):
		respond.Fail(w, http.StatusBadRequest, "status must be one of: active, unsubscribed")
	case errors.Is(err, subUC.ErrSubscriberNotFound):
		respond.Fail(w, http.StatusNotFound, "Subscriber not found")
	default:
		respond.SafeError(w, http.StatusInternalServerError, err)
	}
}
