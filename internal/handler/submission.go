package handler

import (
	"context"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/ozclean/submission-gateway/internal/models"
	"github.com/ozclean/submission-gateway/internal/sanitize"
	"github.com/ozclean/submission-gateway/internal/service"
	"github.com/ozclean/submission-gateway/internal/validate"
)

// What the handler needs from the orchestrator.
type SubmissionProcessor interface {
	Process(ctx context.Context, submissionType string, payload map[string]interface{}, sourceIP string) (*service.ProcessResult, error)
}

type SubmissionHandler struct {
	service SubmissionProcessor
}

func NewSubmissionHandler(service SubmissionProcessor) *SubmissionHandler {
	return &SubmissionHandler{service: service}
}

// POST /submit/:type
func (h *SubmissionHandler) Submit(c *gin.Context) {
	submissionType := c.Param("type")
	if !models.IsValidType(submissionType) {
		c.JSON(http.StatusNotFound, gin.H{
			"success": false,
			"error":   "Unknown submission type",
		})
		return
	}

	var payload map[string]interface{}
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error":   "Invalid request body",
		})
		return
	}

	result := validate.Validate(submissionType, payload)
	if !result.Valid {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error":   "Validation failed",
			"details": result.Errors,
		})
		return
	}

	// Feedback carries a long free-text message, so it gets the larger
	// field cap.
	if submissionType == models.TypeFeedback {
		payload, _ = sanitize.CleanWithLimit(payload, sanitize.LongTextMaxLen).(map[string]interface{})
	} else {
		payload = sanitize.CleanMap(payload)
	}

	ctx := c.Request.Context()
	processResult, err := h.service.Process(ctx, submissionType, payload, c.ClientIP())
	if err != nil {
		// Persistence failed; nothing was attempted downstream
		c.JSON(http.StatusBadGateway, gin.H{
			"success": false,
			"error":   "Failed to save submission, please try again",
		})
		return
	}

	for _, step := range processResult.StepResults {
		if step.Status == service.StepFailed {
			log.Printf("submission %s: step %s failed: %s", processResult.ReferenceID, step.Step, step.Error)
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"success":      true,
		"reference_id": processResult.ReferenceID,
	})
}
