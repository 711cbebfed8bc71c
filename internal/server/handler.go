package server

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/ppiankov/labeleval/internal/model"
)

// Inferer is the part of the pipeline the query interface needs
type Inferer interface {
	InferText(ctx context.Context, text string) (string, bool, error)
	ModelLoaded() bool
}

// Query is the body of POST /infer
type Query struct {
	Question string `json:"question"`
}

// InferResponse carries the human label or null
type InferResponse struct {
	Infer *string `json:"infer"`
	Error string  `json:"error,omitempty"`
}

// HealthStatus is the body of GET /health
type HealthStatus struct {
	Status      string `json:"status"`
	ModelLoaded bool   `json:"model_loaded"`
}

// Handler serves the query endpoints
type Handler struct {
	pipeline Inferer
	metrics  *Metrics
	logger   *zap.Logger
}

// NewHandler creates the query handler
func NewHandler(pipeline Inferer, metrics *Metrics, logger *zap.Logger) *Handler {
	return &Handler{pipeline: pipeline, metrics: metrics, logger: logger}
}

// Infer handles POST /infer
func (h *Handler) Infer(c *gin.Context) {
	var q Query
	if err := c.ShouldBindJSON(&q); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body: " + err.Error()})
		return
	}
	if strings.TrimSpace(q.Question) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "question must not be empty"})
		return
	}

	code, ok, err := h.pipeline.InferText(c.Request.Context(), q.Question)
	if err != nil {
		h.logger.Error("inference failed", zap.String("request_id", c.GetString("request_id")), zap.Error(err))
		_ = c.Error(err)
		c.JSON(http.StatusBadGateway, InferResponse{Error: err.Error()})
		return
	}

	resp := InferResponse{}
	label := "none"
	if ok {
		if human, mapped := model.HumanLabel(code); mapped {
			resp.Infer = &human
			label = human
		}
	}
	h.metrics.inferences.WithLabelValues(label).Inc()
	c.JSON(http.StatusOK, resp)
}

// Health handles GET /health
func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, HealthStatus{Status: "ok", ModelLoaded: h.pipeline.ModelLoaded()})
}
