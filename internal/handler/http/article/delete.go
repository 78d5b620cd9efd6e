package article

import (
	"net/http"

	"byte-highlight/internal/handler/http/respond"
	artUC "byte-highlight/internal/usecase/article"
)

type DeleteHandler struct{ Svc *artUC.Service }

// ServeHTTP 記事削除
// @Summary      記事削除
// @Tags         articles
// @Security     BearerAuth
// @Param        id path int true "記事ID"
// @Success      200 {object} respond.MessageBody
// @Failure      401 {object} respond.ErrorBody
// @Failure      404 {object} respond.ErrorBody
// @Router       /api/articles/{id} [delete]
func (h DeleteHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	if err := h.Svc.Delete(r.Context(), id); err != nil {
		writeError(w, err)
		return
	}
	respond.Message(w, http.StatusOK, "Article deleted successfully")
}
