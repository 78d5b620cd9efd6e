package article

import (
	"net/http"

	"byte-highlight/internal/handler/http/respond"
	artUC "byte-highlight/internal/usecase/article"
)

type CreateHandler struct{ Svc *artUC.Service }

// ServeHTTP 記事作成
// @Summary      記事作成
// @Tags         articles
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        article body writeRequest true "記事情報"
// @Success      201 {object} respond.MessageBody
// @Failure      400 {object} respond.ErrorBody
// @Failure      401 {object} respond.ErrorBody
// @Router       /api/articles [post]
func (h CreateHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var req writeRequest
	if err := respond.DecodeJSON(r, &req); err != nil {
		respond.Fail(w, http.StatusBadRequest, "invalid request body")
		return
	}

	a, err := h.Svc.Create(r.Context(), artUC.CreateInput{
		Title:      deref(req.Title),
		Subtitle:   deref(req.Subtitle),
		URL:        deref(req.URL),
		Author:     deref(req.Author),
		Channel:    deref(req.Channel),
		Category:   deref(req.Category),
		Newsletter: deref(req.Newsletter),
		Topic:      deref(req.Topic),
	})
	if err != nil {
		writeError(w, err)
		return
	}
	respond.MessageWithData(w, http.StatusCreated, "Article created successfully", toDTO(a))
}
