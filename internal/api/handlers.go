package api

import (
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/labextract-server/internal/domain"
	"github.com/labextract-server/internal/middleware"
	"github.com/labextract-server/internal/service"
	"github.com/labextract-server/internal/textract"
	"github.com/labextract-server/pkg/vocabulary"
)

// ExtractRequest is the JSON body of POST /api/v1/extract.
type ExtractRequest struct {
	Text     string `json:"text"`
	TypeHint string `json:"type_hint,omitempty"`
	UserID   string `json:"user_id,omitempty"`
}

// ResolveResponse is the body of GET /api/v1/vocabulary/resolve.
type ResolveResponse struct {
	Name    string          `json:"name"`
	Kind    vocabulary.Kind `json:"kind"`
	Matched bool            `json:"matched"`
	vocabulary.Match
}

func (s *Server) handleExtract(c *gin.Context) {
	var body ExtractRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		s.respondError(c, bindError(err))
		return
	}
	hint, err := domain.ParseDocumentType(body.TypeHint)
	if err != nil {
		s.respondError(c, err)
		return
	}

	resp, err := s.reports.Extract(c.Request.Context(), service.ExtractRequest{
		Text:      body.Text,
		TypeHint:  hint,
		UserID:    body.UserID,
		Source:    domain.SourceText,
		RequestID: c.GetString(middleware.CorrelationIDKey),
	})
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (s *Server) handleUpload(c *gin.Context) {
	header, err := c.FormFile("file")
	if err != nil {
		s.respondError(c, bindError(err))
		return
	}
	hint, err := domain.ParseDocumentType(c.PostForm("type_hint"))
	if err != nil {
		s.respondError(c, err)
		return
	}

	f, err := header.Open()
	if err != nil {
		s.respondError(c, err)
		return
	}
	defer f.Close()
	data, err := io.ReadAll(f)
	if err != nil {
		s.respondError(c, bindError(err))
		return
	}

	resp, err := s.reports.ExtractDocument(c.Request.Context(), textract.Document{
		Filename:    header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		Data:        data,
	}, service.ExtractRequest{
		TypeHint:  hint,
		UserID:    c.PostForm("user_id"),
		Source:    domain.SourceUpload,
		Filename:  header.Filename,
		RequestID: c.GetString(middleware.CorrelationIDKey),
	})
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (s *Server) handleListBiomarkers(c *gin.Context) {
	userID := c.Param("user_id")
	limit, offset, err := page(c)
	if err != nil {
		s.respondError(c, err)
		return
	}
	records, err := s.reports.ListBiomarkers(c.Request.Context(), userID, limit, offset)
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"user_id": userID, "biomarkers": records, "count": len(records)})
}

func (s *Server) handleListVariants(c *gin.Context) {
	userID := c.Param("user_id")
	limit, offset, err := page(c)
	if err != nil {
		s.respondError(c, err)
		return
	}
	records, err := s.reports.ListVariants(c.Request.Context(), userID, limit, offset)
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"user_id": userID, "variants": records, "count": len(records)})
}

func (s *Server) handleResolve(c *gin.Context) {
	kind, err := vocabulary.ParseKind(c.Query("kind"))
	if err != nil {
		s.respondError(c, domain.NewValidationError("kind", err.Error(), c.Query("kind")))
		return
	}
	name := c.Query("name")
	m, err := s.reports.Resolve(kind, name)
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, ResolveResponse{Name: name, Kind: kind, Matched: m.Matched(), Match: m})
}

func page(c *gin.Context) (limit, offset int, err error) {
	if v := c.Query("limit"); v != "" {
		if limit, err = strconv.Atoi(v); err != nil || limit < 0 {
			return 0, 0, domain.NewValidationError("limit", "limit must be a non-negative integer", v)
		}
	}
	if v := c.Query("offset"); v != "" {
		if offset, err = strconv.Atoi(v); err != nil || offset < 0 {
			return 0, 0, domain.NewValidationError("offset", "offset must be a non-negative integer", v)
		}
	}
	return limit, offset, nil
}

// bindError keeps body-size failures distinguishable from malformed input.
func bindError(err error) error {
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		return err
	}
	return &requestError{err: err}
}

type requestError struct {
	err error
}

func (e *requestError) Error() string { return e.err.Error() }
func (e *requestError) Unwrap() error { return e.err }
