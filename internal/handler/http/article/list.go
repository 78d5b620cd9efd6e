package article

import (
	"log/slog"
	"net/http"
	"strings"
	"time"

	"byte-highlight/internal/common/pagination"
	"byte-highlight/internal/handler/http/respond"
	"byte-highlight/internal/observability/logging"
	"byte-highlight/internal/repository"
	artUC "byte-highlight/internal/usecase/article"
)

type ListHandler struct {
	Svc           *artUC.Service
	PaginationCfg pagination.Config
	Logger        *slog.Logger
}

// ServeHTTP 記事一覧取得
// @Summary      記事一覧取得
// @Description  記事を新しい順に返します。q はタイトルとサブタイトルに対する AND 検索です。
// @Tags         articles
// @Produce      json
// @Param        q          query string false "キーワード (空白区切り)"
// @Param        author     query string false "著者"
// @Param        category   query string false "カテゴリ"
// @Param        topic      query string false "トピック"
// @Param        channel    query string false "チャンネル"
// @Param        newsletter query string false "ニュースレター"
// @Param        page       query int    false "ページ番号 (1-based)" default(1) minimum(1)
// @Param        limit      query int    false "1ページあたりの件数" default(20) minimum(1) maximum(100)
// @Success      200 {object} pagination.Response[DTO]
// @Failure      400 {object} respond.ErrorBody
// @Failure      500 {object} respond.ErrorBody
// @Router       /api/articles [get]
func (h ListHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	logger := logging.WithRequestID(r.Context(), h.logger())

	params, err := pagination.ParseQueryParams(r, h.PaginationCfg)
	if err != nil {
		respond.SafeError(w, http.StatusBadRequest, err)
		return
	}

	q := r.URL.Query()
	filter := repository.ArticleFilter{
		Keywords:   artUC.ParseKeywords(q.Get("q")),
		Author:     strings.TrimSpace(q.Get("author")),
		Category:   strings.TrimSpace(q.Get("category")),
		Topic:      strings.TrimSpace(q.Get("topic")),
		Channel:    strings.TrimSpace(q.Get("channel")),
		Newsletter: strings.TrimSpace(q.Get("newsletter")),
	}

	result, err := h.Svc.List(r.Context(), filter, params)
	if err != nil {
		logger.Error("failed to list articles",
			slog.String("error", respond.SanitizeError(err)),
			slog.Int("page", params.Page))
		respond.SafeError(w, http.StatusInternalServerError, err)
		return
	}

	dtos := make([]DTO, 0, len(result.Data))
	for _, a := range result.Data {
		dtos = append(dtos, toDTO(a))
	}

	logger.Debug("article list served",
		slog.Int("page", params.Page),
		slog.Int("returned", len(dtos)),
		slog.Bool("filtered", !filter.IsEmpty()),
		slog.Int64("duration_ms", time.Since(start).Milliseconds()))

	respond.JSON(w, http.StatusOK, pagination.Response[DTO]{Data: dtos, Pagination: result.Pagination})
}

func (h ListHandler) logger() *slog.Logger {
	if h.Logger != nil {
		return h.Logger
	}
	return slog.Default()
}
