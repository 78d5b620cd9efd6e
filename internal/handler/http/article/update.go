package article

import (
	"net/http"

	"byte-highlight/internal/handler/http/respond"
	artUC "byte-highlight/internal/usecase/article"
)

type UpdateHandler struct{ Svc *artUC.Service }

// ServeHTTP 記事更新
// @Summary      記事更新
// @Description  指定したフィールドのみ更新します
// @Tags         articles
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        id      path int          true "記事ID"
// @Param        article body writeRequest true "更新する記事情報"
// @Success      200 {object} respond.MessageBody
// @Failure      400 {object} respond.ErrorBody
// @Failure      401 {object} respond.ErrorBody
// @Failure      404 {object} respond.ErrorBody
// @Router       /api/articles/{id} [put]
func (h UpdateHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var req writeRequest
	if err := respond.DecodeJSON(r, &req); err != nil {
		respond.Fail(w, http.StatusBadRequest, "invalid request body")
		return
	}

	a, err := h.Svc.Update(r.Context(), artUC.UpdateInput{
		ID:         id,
		Title:      req.Title,
		Subtitle:   req.Subtitle,
		URL:        req.URL,
		Author:     req.Author,
		Channel:    req.Channel,
		Category:   req.Category,
		Newsletter: req.Newsletter,
		Topic:      req.Topic,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	respond.MessageWithData(w, http.StatusOK, "Article updated successfully", toDTO(a))
}
