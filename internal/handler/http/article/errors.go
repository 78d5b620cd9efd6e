package article

import (
	"errors"
	"net/http"

	"byte-highlight/internal/domain/entity"
	"byte-highlight/internal/handler/http/respond"
	artUC "byte-highlight/internal/usecase/article"
	"byte-highlight/internal/usecase/importer"
)

// writeError maps use case errors to status codes.
func writeError(w http.ResponseWriter, err error) {
	var ve *entity.ValidationError
	switch {
	case errors.As(err, &ve):
		respond.Fail(w, http.StatusBadRequest, ve.Message)
	case errors.Is(err, artUC.ErrArticleNotFound):
		respond.Fail(w, http.StatusNotFound, "Article not found")
	case errors.Is(err, artUC.ErrInvalidArticleID),
		errors.Is(err, artUC.ErrInvalidOptionType),
		errors.Is(err, importer.ErrMissingFeedURL):
		respond.Fail(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, importer.ErrInvalidURL),
		errors.Is(err, importer.ErrPrivateIP),
		errors.Is(err, importer.ErrTooManyRedirects):
		respond.Fail(w, http.StatusBadRequest, "Feed URL cannot be fetched")
	case errors.Is(err, importer.ErrFeedFetchFailed),
		errors.Is(err, importer.ErrTimeout),
		errors.Is(err, importer.ErrBodyTooLarge):
		respond.FailWithDetail(w, http.StatusBadGateway, "Failed to fetch feed", respond.SanitizeError(err))
	default:
		respond.SafeError(w, http.StatusInternalServerError, err)
	}
}
