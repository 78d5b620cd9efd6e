package article

import (
	"context"
	"fmt"
	"net/http"

	"byte-highlight/internal/handler/http/respond"
	"byte-highlight/internal/usecase/importer"
)

// FeedImporter imports one feed on demand.
type FeedImporter interface {
	ImportFeed(ctx context.Context, req importer.FeedRequest) (*importer.Stats, error)
}

type ImportHandler struct{ Importer FeedImporter }

// ServeHTTP フィード取り込み
// @Summary      RSS/Atom フィード取り込み
// @Description  フィードの項目を記事として登録します。登録済み URL はスキップされます。
// @Tags         articles
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        request body importer.FeedRequest true "フィードとラベル"
// @Success      200 {object} respond.MessageBody
// @Failure      400 {object} respond.ErrorBody
// @Failure      401 {object} respond.ErrorBody
// @Failure      502 {object} respond.ErrorBody
// @Router       /api/articles/import [post]
func (h ImportHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var req importer.FeedRequest
	if err := respond.DecodeJSON(r, &req); err != nil {
		respond.Fail(w, http.StatusBadRequest, "invalid request body")
		return
	}

	stats, err := h.Importer.ImportFeed(r.Context(), req)
	if err != nil {
		writeError(w, err)
		return
	}
	msg := fmt.Sprintf("Imported %d new articles (%d already known, %d invalid)",
		stats.Inserted, stats.Duplicated, stats.Invalid)
	respond.MessageWithData(w, http.StatusOK, msg, stats)
}
