package server

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/trungkien2003ntk/BookRetrieval/internal/domain"
)

type imageSearchRequest struct {
	Base64Image string `json:"base64_image"`
}

// handleRelatedByID serves POST /product/:product_id/related.
//
// The orchestrator itself treats an unknown ID as an empty result; the 404
// comes from an explicit existence pre-check here, so "known product with no
// neighbors" and "unknown product" stay distinguishable to clients.
func (s *Server) handleRelatedByID(c *gin.Context) {
	productID := strings.TrimSpace(c.Param("product_id"))
	if productID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Product ID is required."})
		return
	}

	ctx := c.Request.Context()

	exists, err := s.search.HasProduct(ctx, productID)
	if err != nil {
		s.internalError(c, "product lookup failed", err)
		return
	}
	if !exists {
		c.JSON(http.StatusNotFound, gin.H{"message": "Product ID not found."})
		return
	}

	ids, err := s.search.SearchByID(ctx, productID, 0)
	if err != nil {
		s.internalError(c, "search by id failed", err)
		return
	}

	c.JSON(http.StatusOK, ids)
}

// handleRelatedByImage serves POST /product/related-by-image.
func (s *Server) handleRelatedByImage(c *gin.Context) {
	var req imageSearchRequest
	if err := c.ShouldBindJSON(&req); err != nil || strings.TrimSpace(req.Base64Image) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Base64 image is required."})
		return
	}

	ids, err := s.search.SearchByImage(c.Request.Context(), req.Base64Image, 0)
	if err != nil {
		// Decode failures are internal failures to the client, but worth
		// telling apart in the logs.
		if errors.Is(err, domain.ErrImageDecode) {
			s.internalError(c, "image payload could not be decoded", err)
		} else {
			s.internalError(c, "search by image failed", err)
		}
		return
	}

	c.JSON(http.StatusOK, ids)
}

// internalError logs the cause and answers with a generic message; upstream
// error detail never reaches the client.
func (s *Server) internalError(c *gin.Context, msg string, err error) {
	s.logger.Error(msg, "error", err, "request_id", c.GetString(requestIDKey), "path", c.FullPath())
	c.JSON(http.StatusInternalServerError, gin.H{"message": "An error occurred while processing the request."})
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "healthy", "service": "bookretrieval"})
}

func (s *Server) handleHealthDetailed(c *gin.Context) {
	ctx := c.Request.Context()

	textCount, textErr := s.textCol.Count(ctx)
	imageCount, imageErr := s.imgCol.Count(ctx)

	status := "healthy"
	if textErr != nil || imageErr != nil {
		status = "degraded"
	}

	c.JSON(http.StatusOK, gin.H{
		"status":         status,
		"timestamp":      time.Now().Unix(),
		"uptime_seconds": time.Since(s.started).Seconds(),
		"text_entries":   textCount,
		"image_entries":  imageCount,
	})
}

func (s *Server) handleReady(c *gin.Context) {
	ctx := c.Request.Context()

	if _, err := s.textCol.Count(ctx); err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "not_ready", "error": "text collection unavailable"})
		return
	}
	if _, err := s.imgCol.Count(ctx); err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "not_ready", "error": "image collection unavailable"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ready"})
}

func (s *Server) handleStartup(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":         "started",
		"uptime_seconds": time.Since(s.started).Seconds(),
	})
}
