package api

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/izikbr/calorific2-app/internal/service"
)

const maxUploadBytes = 10 << 20

type estimateTextRequest struct {
	Description string `json:"description"`
}

func (s *Server) listPresets(c *gin.Context) {
	q := c.Query("q")
	if strings.TrimSpace(q) == "" {
		ok(c, http.StatusOK, service.Presets())
		return
	}
	limit := 0
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			_ = c.Error(badRequest(fmt.Errorf("invalid limit %q", raw)))
			return
		}
		limit = n
	}
	ok(c, http.StatusOK, service.SearchPresets(q, limit))
}

func (s *Server) estimateText(c *gin.Context) {
	var req estimateTextRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		_ = c.Error(badRequest(err))
		return
	}
	res, err := service.EstimateText(c.Request.Context(), s.Estimate, req.Description)
	if err != nil {
		_ = c.Error(err)
		return
	}
	ok(c, http.StatusOK, res)
}

func (s *Server) estimateImage(c *gin.Context) {
	fh, err := c.FormFile("image")
	if err != nil {
		_ = c.Error(badRequest(fmt.Errorf("multipart field \"image\" is required")))
		return
	}
	if fh.Size > maxUploadBytes {
		_ = c.Error(badRequest(fmt.Errorf("image is larger than %d bytes", maxUploadBytes)))
		return
	}
	f, err := fh.Open()
	if err != nil {
		_ = c.Error(fmt.Errorf("open upload: %w", err))
		return
	}
	defer f.Close()
	data, err := io.ReadAll(io.LimitReader(f, maxUploadBytes+1))
	if err != nil {
		_ = c.Error(fmt.Errorf("read upload: %w", err))
		return
	}
	mimeType := fh.Header.Get("Content-Type")
	if mimeType == "" || mimeType == "application/octet-stream" {
		mimeType = http.DetectContentType(data)
	}
	res, err := service.EstimateImage(c.Request.Context(), s.Estimate, data, mimeType)
	if err != nil {
		if errors.Is(err, service.ErrEstimateUnavailable) {
			s.Log.WithField("request_id", c.GetString(requestIDKey)).WithError(err).Warn("image estimate failed")
		}
		_ = c.Error(err)
		return
	}
	ok(c, http.StatusOK, res)
}

func (s *Server) lookupBarcode(c *gin.Context) {
	res, err := service.LookupBarcode(c.Request.Context(), s.Products, c.Param("code"))
	if err != nil {
		_ = c.Error(err)
		return
	}
	ok(c, http.StatusOK, res)
}

func (s *Server) searchProducts(c *gin.Context) {
	limit := 0
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			_ = c.Error(badRequest(fmt.Errorf("invalid limit %q", raw)))
			return
		}
		limit = n
	}
	items, err := service.SearchProducts(c.Request.Context(), s.Products, c.Query("q"), limit)
	if err != nil {
		_ = c.Error(err)
		return
	}
	ok(c, http.StatusOK, items)
}
