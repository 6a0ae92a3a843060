package httpapi

import (
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"myclaim/internal/apperr"
	"myclaim/internal/claims"
	"myclaim/internal/documents"
	"myclaim/internal/rag"
)

func (s *server) predict(c *gin.Context) {
	var payload map[string]any
	if err := c.ShouldBindJSON(&payload); err != nil {
		writeError(c, apperr.Invalid("body", "invalid JSON body"))
		return
	}
	features, err := claims.Normalize(payload)
	if err != nil {
		writeError(c, err)
		return
	}
	if s.Scorer == nil {
		writeError(c, apperr.New(apperr.ModelUnavailable, "scoring models unavailable"))
		return
	}
	res, err := s.Scorer.Score(c.Request.Context(), features)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

type ragRequest struct {
	Query  string `json:"query"`
	Prompt string `json:"prompt"`
}

func (s *server) rag(c *gin.Context) {
	var req ragRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, apperr.Invalid("query", "invalid JSON body"))
		return
	}
	query := strings.TrimSpace(req.Query)
	if query == "" {
		query = strings.TrimSpace(req.Prompt)
	}
	// Blank questions and a missing backend both get the canned answers.
	if query == "" || s.RAG == nil {
		c.JSON(http.StatusOK, gin.H{"answer": rag.Fallback(query)})
		return
	}
	ans := s.RAG.Answer(c.Request.Context(), query)
	c.JSON(http.StatusOK, gin.H{"answer": ans.Text})
}

func (s *server) analyze(kind documents.Kind) gin.HandlerFunc {
	return func(c *gin.Context) {
		if s.Documents == nil {
			writeError(c, apperr.New(apperr.UpstreamService, "document extraction not configured"))
			return
		}
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, s.opts.MaxUploadBytes)
		image, contentType, err := readUpload(c)
		if err != nil {
			var tooLarge *http.MaxBytesError
			if errors.As(err, &tooLarge) {
				c.AbortWithStatusJSON(http.StatusRequestEntityTooLarge, gin.H{"error": "file too large"})
				return
			}
			writeError(c, err)
			return
		}
		result, err := s.Documents.Analyze(c.Request.Context(), kind, image, contentType)
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, result)
	}
}

func readUpload(c *gin.Context) ([]byte, string, error) {
	header, err := c.FormFile("file")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return nil, "", err
		}
		return nil, "", apperr.Invalid("file", "file is required")
	}
	f, err := header.Open()
	if err != nil {
		return nil, "", apperr.Wrap(err, apperr.Internal, "open upload")
	}
	defer f.Close()
	data, err := io.ReadAll(f)
	if err != nil {
		return nil, "", apperr.Wrap(err, apperr.Internal, "read upload")
	}
	if len(data) == 0 {
		return nil, "", apperr.Invalid("file", "file is empty")
	}
	contentType := header.Header.Get("Content-Type")
	if contentType == "" || contentType == "application/octet-stream" {
		contentType = http.DetectContentType(data)
	}
	if !strings.HasPrefix(contentType, "image/") && contentType != "application/pdf" {
		contentType = "image/jpeg"
	}
	return data, contentType, nil
}
