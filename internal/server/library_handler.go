// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package server

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/jeffreyroshan2006-crypto/scholarsync-ai/internal/library"
	"github.com/jeffreyroshan2006-crypto/scholarsync-ai/pkg/types"
)

// LibraryHandler serves the saved-paper and history routes. Every route
// runs behind RequireUser.
type LibraryHandler struct {
	lib    Library
	logger *zap.Logger
}

// NewLibraryHandler creates a LibraryHandler.
func NewLibraryHandler(lib Library, logger *zap.Logger) *LibraryHandler {
	return &LibraryHandler{lib: lib, logger: logger}
}

type savePaperRequest struct {
	PaperID  string   `json:"paper_id"`
	Title    string   `json:"title"`
	Authors  []string `json:"authors"`
	Abstract string   `json:"abstract"`
	URL      string   `json:"url"`
	Source   string   `json:"source"`
	Notes    *string  `json:"notes"`
	Tags     []string `json:"tags"`
}

// Save handles POST /saved-papers.
func (h *LibraryHandler) Save(c *gin.Context) {
	var req savePaperRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": msgInvalidBody})
		return
	}
	if strings.TrimSpace(req.PaperID) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "paper_id is required"})
		return
	}

	saved, err := h.lib.SavePaper(c.Request.Context(), types.SavedPaper{
		UserID:   userID(c),
		PaperID:  req.PaperID,
		Title:    req.Title,
		Authors:  req.Authors,
		Abstract: req.Abstract,
		URL:      req.URL,
		Source:   req.Source,
		Notes:    req.Notes,
		Tags:     req.Tags,
	})
	if errors.Is(err, library.ErrAlreadySaved) {
		c.JSON(http.StatusConflict, gin.H{"error": "Paper already saved"})
		return
	}
	if err != nil {
		h.logger.Error("saving paper failed", zap.String("paper_id", req.PaperID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": msgInternal})
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": saved})
}

// Delete handles DELETE /saved-papers?paperId=.
func (h *LibraryHandler) Delete(c *gin.Context) {
	paperID := strings.TrimSpace(c.Query("paperId"))
	if paperID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "paperId is required"})
		return
	}
	if err := h.lib.DeleteSavedPaper(c.Request.Context(), userID(c), paperID); err != nil {
		h.logger.Error("deleting saved paper failed", zap.String("paper_id", paperID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": msgInternal})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// List handles GET /saved-papers.
func (h *LibraryHandler) List(c *gin.Context) {
	papers, err := h.lib.ListSavedPapers(c.Request.Context(), userID(c))
	if err != nil {
		h.logger.Error("listing saved papers failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": msgInternal})
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": papers})
}

// History handles GET /history?limit=. An unparsable limit falls back to
// the store default.
func (h *LibraryHandler) History(c *gin.Context) {
	limit, err := strconv.Atoi(c.DefaultQuery("limit", "20"))
	if err != nil {
		limit = 0
	}
	entries, err := h.lib.ListHistory(c.Request.Context(), userID(c), limit)
	if err != nil {
		h.logger.Error("listing search history failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": msgInternal})
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": entries})
}
