package handler

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/ozclean/submission-gateway/internal/repository"
	"github.com/ozclean/submission-gateway/internal/service"
)

// What the admin surface needs from the orchestrator.
type SubmissionActions interface {
	Approve(ctx context.Context, id string, schedule service.ScheduleDetails) (*service.ActionResult, error)
	Complete(ctx context.Context, id string, invoice service.InvoiceDetails) (*service.ActionResult, error)
	RequestReview(ctx context.Context, id string) (*service.ActionResult, error)
}

type AdminHandler struct {
	actions     SubmissionActions
	submissions *repository.SubmissionRepository
	events      *repository.SecurityEventRepository
}

func NewAdminHandler(actions SubmissionActions, submissions *repository.SubmissionRepository, events *repository.SecurityEventRepository) *AdminHandler {
	return &AdminHandler{
		actions:     actions,
		submissions: submissions,
		events:      events,
	}
}

// GET /admin/submissions
func (h *AdminHandler) ListSubmissions(c *gin.Context) {
	limit := intQuery(c, "limit", 50)
	offset := intQuery(c, "offset", 0)

	submissions, err := h.submissions.List(c.Request.Context(), c.Query("type"), c.Query("status"), limit, offset)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"submissions": submissions,
		"count":       len(submissions),
	})
}

// GET /admin/submissions/:id
func (h *AdminHandler) GetSubmission(c *gin.Context) {
	submission, err := h.submissions.FindByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if submission == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Submission not found"})
		return
	}

	c.JSON(http.StatusOK, submission)
}

// POST /admin/submissions/:id/approve
func (h *AdminHandler) Approve(c *gin.Context) {
	var schedule service.ScheduleDetails
	if err := c.ShouldBindJSON(&schedule); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid schedule details"})
		return
	}

	result, err := h.actions.Approve(c.Request.Context(), c.Param("id"), schedule)
	h.respond(c, result, err)
}

// POST /admin/submissions/:id/complete
func (h *AdminHandler) Complete(c *gin.Context) {
	var invoice service.InvoiceDetails
	if err := c.ShouldBindJSON(&invoice); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid invoice details"})
		return
	}

	result, err := h.actions.Complete(c.Request.Context(), c.Param("id"), invoice)
	h.respond(c, result, err)
}

// POST /admin/submissions/:id/request-review
func (h *AdminHandler) RequestReview(c *gin.Context) {
	result, err := h.actions.RequestReview(c.Request.Context(), c.Param("id"))
	h.respond(c, result, err)
}

// GET /admin/security-events
func (h *AdminHandler) ListSecurityEvents(c *gin.Context) {
	limit := intQuery(c, "limit", 100)
	offset := intQuery(c, "offset", 0)

	events, err := h.events.ListRecent(c.Request.Context(), limit, offset)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"events": events,
		"count":  len(events),
	})
}

func (h *AdminHandler) respond(c *gin.Context, result *service.ActionResult, err error) {
	if errors.Is(err, service.ErrSubmissionNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Submission not found"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, result)
}

func intQuery(c *gin.Context, name string, fallback int) int {
	value, err := strconv.Atoi(c.Query(name))
	if err != nil || value < 0 {
		return fallback
	}
	return value
}
