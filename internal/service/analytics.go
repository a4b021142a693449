package service

import (
	"context"
	"time"

	"github.com/ozclean/submission-gateway/internal/repository"
)

type AnalyticsService struct {
	logs        *repository.RequestLogRepository
	events      *repository.SecurityEventRepository
	submissions *repository.SubmissionRepository
}

func NewAnalyticsService(logs *repository.RequestLogRepository, events *repository.SecurityEventRepository, submissions *repository.SubmissionRepository) *AnalyticsService {
	return &AnalyticsService{
		logs:        logs,
		events:      events,
		submissions: submissions,
	}
}

// Holds the operational summary shown on the admin dashboard
type AnalyticsSummary struct {
	TotalRequests   int64            `json:"total_requests"`
	AvgResponseTime float64          `json:"avg_response_time_ms"`
	ErrorRate       float64          `json:"error_rate"`
	SuccessRate     float64          `json:"success_rate"`
	DenialsByReason map[string]int64 `json:"denials_by_reason"`
	Submissions     map[string]int64 `json:"submissions"`
}

func (s *AnalyticsService) GetSummary(ctx context.Context, from, to time.Time) (*AnalyticsSummary, error) {
	summary := &AnalyticsSummary{}

	totalRequests, err := s.logs.CountByTimeRange(ctx, from, to)
	if err != nil {
		return nil, err
	}
	summary.TotalRequests = totalRequests

	denials, err := s.events.CountByReason(ctx, from, to)
	if err != nil {
		return nil, err
	}
	summary.DenialsByReason = denials

	submissionCounts, err := s.submissions.CountByTypeAndStatus(ctx)
	if err != nil {
		return nil, err
	}
	summary.Submissions = submissionCounts

	if totalRequests == 0 {
		return summary, nil
	}

	avgResponseTime, err := s.logs.GetAverageResponseTime(ctx, from, to)
	if err != nil {
		return nil, err
	}
	summary.AvgResponseTime = avgResponseTime

	clientErrors, err := s.logs.CountByStatusCodeRange(ctx, 400, 499, from, to)
	if err != nil {
		return nil, err
	}
	serverErrors, err := s.logs.CountByStatusCodeRange(ctx, 500, 599, from, to)
	if err != nil {
		return nil, err
	}

	totalErrors := clientErrors + serverErrors
	summary.ErrorRate = (float64(totalErrors) / float64(totalRequests)) * 100
	summary.SuccessRate = 100 - summary.ErrorRate

	return summary, nil
}

// Deletes request logs and security events past the retention period.
func (s *AnalyticsService) Cleanup(ctx context.Context, retentionDays int) (int64, error) {
	cutoff := time.Now().AddDate(0, 0, -retentionDays)

	removedLogs, err := s.logs.DeleteOldLogs(ctx, cutoff)
	if err != nil {
		return 0, err
	}

	removedEvents, err := s.events.DeleteOlderThan(ctx, cutoff)
	if err != nil {
		return removedLogs, err
	}

	return removedLogs + removedEvents, nil
}
