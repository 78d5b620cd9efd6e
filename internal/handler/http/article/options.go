package article

import (
	"net/http"

	"byte-highlight/internal/handler/http/respond"
	artUC "byte-highlight/internal/usecase/article"
)

type OptionsHandler struct{ Svc *artUC.Service }

// ServeHTTP フィルタ候補取得
// @Summary      フィルタ候補取得
// @Description  author, category, topic, channel, newsletter の重複しない値を返します
// @Tags         articles
// @Produce      json
// @Param        type path string true "列名" Enums(author, category, topic, channel, newsletter)
// @Success      200 {array} string
// @Failure      400 {object} respond.ErrorBody
// @Router       /api/options/{type} [get]
func (h OptionsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	values, err := h.Svc.Options(r.Context(), r.PathValue("type"))
	if err != nil {
		writeError(w, err)
		return
	}
	if values == nil {
		values = []string{}
	}
	respond.JSON(w, http.StatusOK, values)
}
