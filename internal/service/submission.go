package service

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/ozclean/submission-gateway/internal/circuitbreaker"
	"github.com/ozclean/submission-gateway/internal/models"
	"github.com/ozclean/submission-gateway/internal/notify"
)

var ErrSubmissionNotFound = errors.New("submission not found")

// Step outcomes. A skipped step means the integration is unconfigured,
// which is not a failure.
const (
	StepOK      = "ok"
	StepFailed  = "failed"
	StepSkipped = "skipped"
)

type StepResult struct {
	Step   string `json:"step"`
	Status string `json:"status"`
	Error  string `json:"error,omitempty"`
}

type ProcessResult struct {
	Success     bool         `json:"success"`
	ReferenceID string       `json:"reference_id,omitempty"`
	StepResults []StepResult `json:"step_results"`
}

type ActionResult struct {
	Success     bool         `json:"success"`
	Status      string       `json:"status,omitempty"`
	PaymentURL  string       `json:"payment_url,omitempty"`
	StepResults []StepResult `json:"step_results"`
}

type ScheduleDetails struct {
	Date        string `json:"date"`
	Time        string `json:"time"`
	DurationMin int    `json:"duration_min"`
	Notes       string `json:"notes"`
}

type InvoiceDetails struct {
	AmountCents int64  `json:"amount_cents"`
	Description string `json:"description"`
	DueDate     string `json:"due_date"`
}

// Persistence seam for the orchestrator; the gorm repository satisfies
// it in production.
type SubmissionStore interface {
	Create(ctx context.Context, submission *models.Submission) error
	FindByID(ctx context.Context, id string) (*models.Submission, error)
	UpdateStatus(ctx context.Context, id, status string) error
}

type TeamNotifier interface {
	Notify(ctx context.Context, message string) error
}

type WebhookForwarder interface {
	Forward(ctx context.Context, payload map[string]interface{}) error
}

type EmailSender interface {
	Send(ctx context.Context, to, template string, data map[string]interface{}) (string, error)
}

type CalendarClient interface {
	CreateEvent(ctx context.Context, event notify.CalendarEvent) (string, error)
}

type BillingClient interface {
	CreateInvoice(ctx context.Context, invoice notify.InvoiceRequest) (string, error)
	PaymentLink() string
}

// SubmissionService orchestrates the submission pipeline: one mandatory
// persistence step, then a fan-out of best-effort side effects that are
// each attempted exactly once and never fail the caller's request.
type SubmissionService struct {
	store    SubmissionStore
	team     TeamNotifier
	webhook  WebhookForwarder
	email    EmailSender
	calendar CalendarClient
	billing  BillingClient
	breakers map[string]*circuitbreaker.CircuitBreaker
}

func NewSubmissionService(store SubmissionStore, team TeamNotifier, webhook WebhookForwarder, email EmailSender, calendar CalendarClient, billing BillingClient) *SubmissionService {
	breakers := make(map[string]*circuitbreaker.CircuitBreaker)
	for _, channel := range []string{"team-notify", "webhook-forward", "customer-email", "calendar-create", "invoice-create", "confirmation-email", "invoice-email", "review-email"} {
		breakers[channel] = circuitbreaker.New(circuitbreaker.Config{})
	}

	return &SubmissionService{
		store:    store,
		team:     team,
		webhook:  webhook,
		email:    email,
		calendar: calendar,
		billing:  billing,
		breakers: breakers,
	}
}

// Runs one best-effort step through its channel breaker. Failures are
// logged and recorded, never propagated.
func (s *SubmissionService) runStep(name string, fn func() error) StepResult {
	breaker, ok := s.breakers[name]
	var err error
	if ok {
		err = breaker.Call(fn)
	} else {
		err = fn()
	}

	if err == nil {
		return StepResult{Step: name, Status: StepOK}
	}
	if errors.Is(err, notify.ErrNotConfigured) {
		return StepResult{Step: name, Status: StepSkipped, Error: err.Error()}
	}

	log.Printf("submission: step %s failed: %v", name, err)
	return StepResult{Step: name, Status: StepFailed, Error: err.Error()}
}

// Processes a validated, sanitized submission. Persistence is the only
// fatal step: without a reference id nothing else runs, and once the
// record is durable the user-visible result is success regardless of
// how the notification fan-out goes.
func (s *SubmissionService) Process(ctx context.Context, submissionType string, payload map[string]interface{}, sourceIP string) (*ProcessResult, error) {
	submission := &models.Submission{
		Type:     submissionType,
		Status:   models.StatusSubmitted,
		FullName: stringValue(payload, "fullName"),
		Email:    stringValue(payload, "email"),
		Phone:    stringValue(payload, "phone"),
		Payload:  models.JSONMap(payload),
		SourceIP: sourceIP,
	}

	if err := s.store.Create(ctx, submission); err != nil {
		return nil, fmt.Errorf("failed to save submission: %w", err)
	}

	steps := make([]StepResult, 0, 3)

	steps = append(steps, s.runStep("team-notify", func() error {
		message := fmt.Sprintf("New %s %s from %s", submissionType, submission.Reference, submission.FullName)
		if submission.Phone != "" {
			message += "\nPhone: " + submission.Phone
		}
		if submission.Email != "" {
			message += "\nEmail: " + submission.Email
		}
		return s.team.Notify(ctx, message)
	}))

	steps = append(steps, s.runStep("webhook-forward", func() error {
		return s.webhook.Forward(ctx, map[string]interface{}{
			"type":         submissionType,
			"reference":    submission.Reference,
			"payload":      payload,
			"submitted_at": submission.SubmittedAt,
		})
	}))

	if submission.Email != "" {
		steps = append(steps, s.runStep("customer-email", func() error {
			_, err := s.email.Send(ctx, submission.Email, "submission-received", map[string]interface{}{
				"name":      submission.FullName,
				"reference": submission.Reference,
				"type":      submissionType,
			})
			return err
		}))
	} else {
		steps = append(steps, StepResult{Step: "customer-email", Status: StepSkipped, Error: "no customer email"})
	}

	return &ProcessResult{
		Success:     true,
		ReferenceID: submission.Reference,
		StepResults: steps,
	}, nil
}

// Approves a submission: books the calendar slot and emails the
// customer (both best-effort), then applies the status transition. The
// transition is the only fatal part. Re-invoking Approve books a second
// calendar slot; callers retrying after a timeout should check the
// status first.
func (s *SubmissionService) Approve(ctx context.Context, id string, schedule ScheduleDetails) (*ActionResult, error) {
	submission, err := s.store.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if submission == nil {
		return nil, ErrSubmissionNotFound
	}

	steps := make([]StepResult, 0, 2)

	steps = append(steps, s.runStep("calendar-create", func() error {
		_, err := s.calendar.CreateEvent(ctx, notify.CalendarEvent{
			Title:       fmt.Sprintf("%s - %s", submission.Reference, submission.FullName),
			Date:        schedule.Date,
			Time:        schedule.Time,
			DurationMin: schedule.DurationMin,
			Location:    stringValue(submission.Payload, "suburb"),
			Notes:       schedule.Notes,
		})
		return err
	}))

	if submission.Email != "" {
		steps = append(steps, s.runStep("confirmation-email", func() error {
			_, err := s.email.Send(ctx, submission.Email, "booking-confirmed", map[string]interface{}{
				"name":      submission.FullName,
				"reference": submission.Reference,
				"date":      schedule.Date,
				"time":      schedule.Time,
			})
			return err
		}))
	}

	if err := s.store.UpdateStatus(ctx, id, models.StatusApproved); err != nil {
		return nil, fmt.Errorf("failed to update status: %w", err)
	}

	return &ActionResult{Success: true, Status: models.StatusApproved, StepResults: steps}, nil
}

// Completes a submission: raises an invoice (falling back to the
// generic payment link when invoicing fails), emails it, then applies
// the status transition.
func (s *SubmissionService) Complete(ctx context.Context, id string, invoice InvoiceDetails) (*ActionResult, error) {
	submission, err := s.store.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if submission == nil {
		return nil, ErrSubmissionNotFound
	}

	steps := make([]StepResult, 0, 2)
	paymentURL := ""

	invoiceStep := s.runStep("invoice-create", func() error {
		url, err := s.billing.CreateInvoice(ctx, notify.InvoiceRequest{
			Reference:     submission.Reference,
			CustomerName:  submission.FullName,
			CustomerEmail: submission.Email,
			AmountCents:   invoice.AmountCents,
			Description:   invoice.Description,
			DueDate:       invoice.DueDate,
		})
		if err != nil {
			return err
		}
		paymentURL = url
		return nil
	})
	steps = append(steps, invoiceStep)

	if invoiceStep.Status != StepOK {
		paymentURL = s.billing.PaymentLink()
	}

	if submission.Email != "" {
		steps = append(steps, s.runStep("invoice-email", func() error {
			_, err := s.email.Send(ctx, submission.Email, "invoice", map[string]interface{}{
				"name":        submission.FullName,
				"reference":   submission.Reference,
				"payment_url": paymentURL,
				"amount":      invoice.AmountCents,
			})
			return err
		}))
	}

	if err := s.store.UpdateStatus(ctx, id, models.StatusCompleted); err != nil {
		return nil, fmt.Errorf("failed to update status: %w", err)
	}

	return &ActionResult{Success: true, Status: models.StatusCompleted, PaymentURL: paymentURL, StepResults: steps}, nil
}

// Sends a review-request email. Does not change the submission status.
func (s *SubmissionService) RequestReview(ctx context.Context, id string) (*ActionResult, error) {
	submission, err := s.store.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if submission == nil {
		return nil, ErrSubmissionNotFound
	}

	var step StepResult
	if submission.Email == "" {
		step = StepResult{Step: "review-email", Status: StepSkipped, Error: "no customer email"}
	} else {
		step = s.runStep("review-email", func() error {
			_, err := s.email.Send(ctx, submission.Email, "review-request", map[string]interface{}{
				"name":      submission.FullName,
				"reference": submission.Reference,
			})
			return err
		})
	}

	return &ActionResult{Success: true, Status: submission.Status, StepResults: []StepResult{step}}, nil
}

func stringValue(payload map[string]interface{}, field string) string {
	if v, ok := payload[field].(string); ok {
		return v
	}
	return ""
}
