package ai

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/lfdantoni/dashboard-ai/internal/logger"
)

type Handler struct {
	gemini *GeminiClient
}

func NewHandler(gemini *GeminiClient) *Handler {
	return &Handler{gemini: gemini}
}

type analyzeRequest struct {
	Prompt      string `json:"prompt"`
	ImageBase64 string `json:"imageBase64"`
	MimeType    string `json:"mimeType"`
}

// Analyze runs the prompt (optionally with an inline image) through
// Gemini. The route requires the "ai" action tag.
func (h *Handler) Analyze(c *gin.Context) {
	var req analyzeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	result, err := h.gemini.AnalyzePrompt(
		c.Request.Context(),
		req.Prompt,
		req.ImageBase64,
		req.MimeType,
	)
	if err != nil {
		if errors.Is(err, ErrInvalidRequest) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		logger.Error("gemini analysis failed", zap.Error(err))
		c.JSON(http.StatusBadGateway, gin.H{"error": "Error processing request with Gemini"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"result":    result,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}
