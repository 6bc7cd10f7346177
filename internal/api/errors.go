package api

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sony/gobreaker"

	"github.com/labextract-server/internal/domain"
	"github.com/labextract-server/internal/middleware"
	"github.com/labextract-server/internal/service"
	"github.com/labextract-server/internal/textract"
)

// respondError maps service errors to an HTTP status and APIError code. Internal details
// are logged, never returned.
func (s *Server) respondError(c *gin.Context, err error) {
	status, code, message, details := classifyError(err)
	if status >= http.StatusInternalServerError {
		s.logger.WithError(err).WithField("correlation_id", c.GetString(middleware.CorrelationIDKey)).
			Error("Request failed")
	}
	middleware.Abort(c, status, code, message, details)
}

func classifyError(err error) (status int, code, message, details string) {
	var (
		validation *domain.ValidationError
		tooLarge   *http.MaxBytesError
		malformed  *requestError
		upstream   *textract.StatusError
	)
	switch {
	case errors.As(err, &validation):
		return http.StatusBadRequest, domain.ErrValidation, validation.Message, validation.Field
	case errors.As(err, &tooLarge):
		return http.StatusRequestEntityTooLarge, domain.ErrInputTooLarge, "request body too large", ""
	case errors.As(err, &malformed):
		return http.StatusBadRequest, domain.ErrInvalidInput, "malformed request", err.Error()
	case errors.Is(err, textract.ErrUnsupportedContentType):
		return http.StatusUnsupportedMediaType, domain.ErrUnsupportedType, "document type is not supported", ""
	case errors.Is(err, textract.ErrEmptyText):
		return http.StatusUnprocessableEntity, domain.ErrTextExtraction, "document contains no text", ""
	case errors.Is(err, gobreaker.ErrOpenState), errors.Is(err, gobreaker.ErrTooManyRequests):
		return http.StatusServiceUnavailable, domain.ErrTextExtraction, "text extraction is temporarily unavailable", ""
	case errors.As(err, &upstream):
		return http.StatusBadGateway, domain.ErrTextExtraction, "text extraction failed", ""
	case errors.Is(err, service.ErrPersistenceDisabled):
		return http.StatusNotImplemented, domain.ErrDatabaseError, "persistence is disabled", ""
	case errors.Is(err, service.ErrPersistence):
		return http.StatusInternalServerError, domain.ErrDatabaseError, "failed to save extraction", ""
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout, domain.ErrInternalServer, "request timed out", ""
	}
	return http.StatusInternalServerError, domain.ErrInternalServer, "internal server error", ""
}
