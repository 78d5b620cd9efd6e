// Package newsletter exposes newsletter sending to the admin area and to the
// external scheduler.
package newsletter

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"byte-highlight/internal/domain/entity"
	"byte-highlight/internal/handler/http/requestid"
	"byte-highlight/internal/handler/http/respond"
	nlUC "byte-highlight/internal/usecase/newsletter"
)

const senderNotVerifiedDetail = "The sender email must be verified in your SendGrid account"

type Handler struct {
	Svc *nlUC.Service
}

// Register mounts the routes. Admin routes are wrapped with requireAdmin and
// the cron trigger with cronAuth.
func (h *Handler) Register(mux *http.ServeMux, requireAdmin, cronAuth func(http.Handler) http.Handler) {
	mux.Handle("POST /api/send-newsletter", requireAdmin(http.HandlerFunc(h.SendNewsletter)))
	mux.Handle("GET /api/test-email", requireAdmin(http.HandlerFunc(h.TestEmail)))
	mux.Handle("POST /api/test-email", requireAdmin(http.HandlerFunc(h.TestEmail)))
	mux.Handle("POST /api/debug-email", requireAdmin(http.HandlerFunc(h.DebugEmail)))
	mux.Handle("GET /api/newsletter/preview", requireAdmin(http.HandlerFunc(h.Preview)))
	mux.Handle("GET /api/newsletter/sends", requireAdmin(http.HandlerFunc(h.Sends)))
	mux.Handle("GET /api/cron/weekly-newsletter", cronAuth(http.HandlerFunc(h.CronWeekly)))
}

// outcomeData is attached to successful send responses.
type outcomeData struct {
	Recipients int    `json:"recipients"`
	Mode       string `json:"mode,omitempty"`
	Sent       int    `json:"sent"`
	Failed     int    `json:"failed"`
	Note       string `json:"note,omitempty"`
}

func writeOutcome(w http.ResponseWriter, o *nlUC.Outcome) {
	data := outcomeData{Recipients: o.Recipients}
	if o.Result != nil {
		data.Mode = string(o.Result.Mode)
		data.Sent = o.Result.Sent
		data.Failed = o.Result.Failed
		data.Note = o.Result.Message
	}
	respond.MessageWithData(w, http.StatusOK, o.Message, data)
}

// writeSendError maps dispatch errors. failMsg is the generic error text.
func writeSendError(w http.ResponseWriter, r *http.Request, failMsg string, err error) {
	var ve *entity.ValidationError
	switch {
	case errors.Is(err, nlUC.ErrMissingContent), errors.Is(err, nlUC.ErrMissingRecipient):
		respond.Error(w, http.StatusBadRequest, err)
	case errors.As(err, &ve):
		respond.Fail(w, http.StatusBadRequest, "Please provide a valid email address")
	case errors.Is(err, nlUC.ErrNotConfigured):
		respond.Error(w, http.StatusInternalServerError, nlUC.ErrNotConfigured)
	case errors.Is(err, nlUC.ErrSenderNotVerified):
		respond.FailWithDetail(w, http.StatusForbidden, nlUC.ErrSenderNotVerified.Error(), senderNotVerifiedDetail)
	default:
		slog.Error(failMsg,
			slog.String("request_id", requestid.FromContext(r.Context())),
			slog.String("error", respond.SanitizeError(err)))
		respond.FailWithDetail(w, http.StatusInternalServerError, failMsg, respond.SanitizeError(err))
	}
}

type sendRequest struct {
	Subject       string `json:"subject" example:"March product news"`
	Content       string `json:"content" example:"<h1>Hello</h1>"`
	TestMode      bool   `json:"testMode"`
	TestRecipient string `json:"testRecipient,omitempty" example:"editor@example.com"`
}

// SendNewsletter ニュースレター送信
// @Summary      ニュースレター送信
// @Description  有効な購読者全員、または testRecipient のみに送信します。testMode ではプロバイダに送信しません。
// @Tags         newsletter
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        request body sendRequest true "件名と本文"
// @Success      200 {object} respond.MessageBody
// @Failure      400 {object} respond.ErrorBody
// @Failure      401 {object} respond.ErrorBody
// @Failure      403 {object} respond.ErrorBody
// @Failure      500 {object} respond.ErrorBody
// @Router       /api/send-newsletter [post]
func (h *Handler) SendNewsletter(w http.ResponseWriter, r *http.Request) {
	var req sendRequest
	if err := respond.DecodeJSON(r, &req); err != nil {
		respond.Error(w, http.StatusBadRequest, nlUC.ErrMissingContent)
		return
	}

	out, err := h.Svc.SendNewsletter(r.Context(), nlUC.SendInput{
		Subject:       req.Subject,
		Content:       req.Content,
		TestMode:      req.TestMode,
		TestRecipient: req.TestRecipient,
	})
	if err != nil {
		writeSendError(w, r, "Failed to send newsletter", err)
		return
	}
	writeOutcome(w, out)
}

type testEmailRequest struct {
	Recipient string `json:"recipient" example:"editor@example.com"`
	Sandbox   *bool  `json:"sandbox,omitempty"`
}

// TestEmail テストメール送信
// @Summary      テストメール送信
// @Description  固定のテストメッセージを送信します。sandbox は "false" 以外なら有効です。
// @Tags         newsletter
// @Security     BearerAuth
// @Produce      json
// @Param        recipient query string false "宛先"
// @Param        sandbox   query string false "サンドボックス" default(true)
// @Success      200 {object} respond.MessageBody
// @Failure      400 {object} respond.ErrorBody
// @Failure      500 {object} respond.ErrorBody
// @Router       /api/test-email [get]
// @Router       /api/test-email [post]
func (h *Handler) TestEmail(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	recipient := q.Get("recipient")
	sandbox := q.Get("sandbox") != "false"

	if r.Method == http.MethodPost {
		var req testEmailRequest
		if err := respond.DecodeJSON(r, &req); err != nil {
			respond.Error(w, http.StatusBadRequest, nlUC.ErrMissingRecipient)
			return
		}
		recipient = req.Recipient
		sandbox = req.Sandbox == nil || *req.Sandbox
	}

	out, err := h.Svc.SendTestEmail(r.Context(), recipient, sandbox)
	if err != nil {
		writeSendError(w, r, "Failed to send test email", err)
		return
	}
	writeOutcome(w, out)
}

type debugRequest struct {
	To string `json:"to" example:"editor@example.com"`
}

// DebugEmail 送信設定の診断
// @Summary      送信元設定の診断メール
// @Description  サンドボックスなしで1通送信し、送信元の認証状態を確認します
// @Tags         newsletter
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        request body debugRequest true "宛先"
// @Success      200 {object} respond.MessageBody
// @Failure      400 {object} respond.ErrorBody
// @Failure      403 {object} respond.ErrorBody
// @Failure      500 {object} respond.ErrorBody
// @Router       /api/debug-email [post]
func (h *Handler) DebugEmail(w http.ResponseWriter, r *http.Request) {
	var req debugRequest
	if err := respond.DecodeJSON(r, &req); err != nil {
		respond.Error(w, http.StatusBadRequest, nlUC.ErrMissingRecipient)
		return
	}
	out, err := h.Svc.SendDebugEmail(r.Context(), req.To)
	if err != nil {
		writeSendError(w, r, "SendGrid error", err)
		return
	}
	writeOutcome(w, out)
}

// CronWeekly 週次ニュースレター (スケジューラ用)
// @Summary      週次ニュースレター送信
// @Description  Authorization: Bearer <CRON_SECRET> が必要です
// @Tags         newsletter
// @Produce      json
// @Success      200 {object} respond.MessageBody
// @Failure      401 {object} respond.ErrorBody
// @Failure      500 {object} respond.ErrorBody
// @Router       /api/cron/weekly-newsletter [get]
func (h *Handler) CronWeekly(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	out, err := h.Svc.SendWeekly(r.Context())
	if err != nil {
		writeSendError(w, r, "Failed to send weekly newsletter", err)
		return
	}
	slog.Info("weekly newsletter triggered by cron endpoint",
		slog.Int("recipients", out.Recipients),
		slog.Duration("duration", time.Since(start)))
	writeOutcome(w, out)
}

// Preview 週次ニュースレタープレビュー
// @Summary      週次ニュースレターのプレビュー
// @Tags         newsletter
// @Security     BearerAuth
// @Produce      html
// @Success      200 {string} string "HTML"
// @Router       /api/newsletter/preview [get]
func (h *Handler) Preview(w http.ResponseWriter, r *http.Request) {
	digest, err := h.Svc.PreviewWeekly(r.Context())
	if err != nil {
		respond.SafeError(w, http.StatusInternalServerError, err)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("X-Newsletter-Subject", digest.Subject)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(digest.HTML))
}

// SendLogDTO is one recorded dispatch.
type SendLogDTO struct {
	ID         int64     `json:"id"`
	Subject    string    `json:"subject"`
	Mode       string    `json:"mode"`
	TestMode   bool      `json:"testMode"`
	Recipients int       `json:"recipients"`
	Sent       int       `json:"sent"`
	Failed     int       `json:"failed"`
	Error      string    `json:"error,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}

// Sends 送信履歴
// @Summary      送信履歴
// @Tags         newsletter
// @Security     BearerAuth
// @Produce      json
// @Param        limit query int false "件数" default(20) maximum(100)
// @Success      200 {array} SendLogDTO
// @Router       /api/newsletter/sends [get]
func (h *Handler) Sends(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if s := r.URL.Query().Get("limit"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n < 1 || n > 100 {
			respond.Fail(w, http.StatusBadRequest, "limit must be between 1 and 100")
			return
		}
		limit = n
	}
	logs, err := h.Svc.RecentSends(r.Context(), limit)
	if err != nil {
		respond.SafeError(w, http.StatusInternalServerError, err)
		return
	}
	out := make([]SendLogDTO, 0, len(logs))
	for _, l := range logs {
		out = append(out, SendLogDTO{
			ID: l.ID, Subject: l.Subject, Mode: string(l.Mode), TestMode: l.TestMode,
			Recipients: l.Recipients, Sent: l.Sent, Failed: l.Failed, Error: l.Error,
			CreatedAt: l.CreatedAt,
		})
	}
	respond.JSON(w, http.StatusOK, out)
}
