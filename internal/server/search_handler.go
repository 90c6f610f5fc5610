// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package server

import (
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/jeffreyroshan2006-crypto/scholarsync-ai/pkg/types"
)

const (
	msgQueryRequired = "Query is required"
	msgInvalidBody   = "Invalid request body"
	msgInternal      = "Internal server error"
)

// SearchHandler serves POST /search.
type SearchHandler struct {
	searcher Searcher
	lib      Library
	logger   *zap.Logger
}

// NewSearchHandler creates a SearchHandler. lib may be nil.
func NewSearchHandler(searcher Searcher, lib Library, logger *zap.Logger) *SearchHandler {
	return &SearchHandler{searcher: searcher, lib: lib, logger: logger}
}

type searchRequest struct {
	Query   *string              `json:"query"`
	Filters *types.SearchFilters `json:"filters"`
}

// Search validates the request, runs the aggregation, and responds with
// {"papers": [...]}.
func (h *SearchHandler) Search(c *gin.Context) {
	var req searchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		if errors.Is(err, io.EOF) {
			c.JSON(http.StatusBadRequest, gin.H{"error": msgQueryRequired})
			return
		}
		h.logger.Warn("rejecting search request", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": msgInvalidBody})
		return
	}

	if req.Query == nil || strings.TrimSpace(*req.Query) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": msgQueryRequired})
		return
	}
	query := strings.TrimSpace(*req.Query)

	filters := types.DefaultFilters()
	if req.Filters != nil {
		filters = *req.Filters
	}
	if err := filters.Validate(); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	out, err := h.searcher.Search(c.Request.Context(), query, filters)
	if err != nil {
		h.logger.Error("search failed", zap.String("query", query), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": msgInternal})
		return
	}

	if uid := userID(c); uid != "" && h.lib != nil {
		if _, err := h.lib.RecordSearch(c.Request.Context(), uid, query, &filters, len(out.Papers)); err != nil {
			h.logger.Warn("recording search history failed",
				zap.String("user", uid),
				zap.Error(err),
			)
		}
	}

	papers := out.Papers
	if papers == nil {
		papers = []types.Paper{}
	}
	c.JSON(http.StatusOK, gin.H{"papers": papers})
}
