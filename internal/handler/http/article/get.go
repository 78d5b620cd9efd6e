package article

import (
	"net/http"
	"strconv"

	"byte-highlight/internal/handler/http/respond"
	artUC "byte-highlight/internal/usecase/article"
)

type GetHandler struct{ Svc *artUC.Service }

// ServeHTTP 記事詳細取得
// @Summary      記事詳細取得
// @Tags         articles
// @Produce      json
// @Param        id path int true "記事ID"
// @Success      200 {object} DTO
// @Failure      400 {object} respond.ErrorBody
// @Failure      404 {object} respond.ErrorBody
// @Router       /api/articles/{id} [get]
func (h GetHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	a, err := h.Svc.Get(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	respond.JSON(w, http.StatusOK, toDTO(a))
}

// pathID parses {id}; it writes a 400 and returns false when invalid.
func pathID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil || id <= 0 {
		respond.Error(w, http.StatusBadRequest, artUC.ErrInvalidArticleID)
		return 0, false
	}
	return id, true
}
