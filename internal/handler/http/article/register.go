package article

import (
	"log/slog"
	"net/http"

	"byte-highlight/internal/common/pagination"
	artUC "byte-highlight/internal/usecase/article"
)

// Register mounts the article routes. Reads are public; writes and imports
// are wrapped with requireAdmin.
func Register(mux *http.ServeMux, svc *artUC.Service, imp FeedImporter, paginationCfg pagination.Config, requireAdmin func(http.Handler) http.Handler, logger *slog.Logger) {
	mux.Handle("GET /api/articles", ListHandler{Svc: svc, PaginationCfg: paginationCfg, Logger: logger})
	mux.Handle("GET /api/articles/{id}", GetHandler{svc})
	mux.Handle("GET /api/options/{type}", OptionsHandler{svc})

	mux.Handle("POST /api/articles", requireAdmin(CreateHandler{svc}))
	mux.Handle("PUT /api/articles/{id}", requireAdmin(UpdateHandler{svc}))
	mux.Handle("DELETE /api/articles/{id}", requireAdmin(DeleteHandler{svc}))
	if imp != nil {
		mux.Handle("POST /api/articles/import", requireAdmin(ImportHandler{imp}))
	}
}
