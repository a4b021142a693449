package repository

import (
	"context"
	"time"

	"github.com/ozclean/submission-gateway/internal/models"
	"github.com/ozclean/submission-gateway/internal/storage"
)

type SecurityEventRepository struct {
	db *storage.Postgres
}

func NewSecurityEventRepository(db *storage.Postgres) *SecurityEventRepository {
	return &SecurityEventRepository{db: db}
}

// Satisfies the security gate's EventRecorder.
func (r *SecurityEventRepository) RecordDenial(ctx context.Context, event *models.SecurityEvent) error {
	return r.db.DB.WithContext(ctx).Create(event).Error
}

func (r *SecurityEventRepository) ListRecent(ctx context.Context, limit, offset int) ([]models.SecurityEvent, error) {
	var events []models.SecurityEvent
	err := r.db.DB.WithContext(ctx).
		Order("timestamp DESC").
		Limit(limit).
		Offset(offset).
		Find(&events).Error

	return events, err
}

func (r *SecurityEventRepository) CountByReason(ctx context.Context, from, to time.Time) (map[string]int64, error) {
	var rows []struct {
		Reason string
		Count  int64
	}

	err := r.db.DB.WithContext(ctx).
		Model(&models.SecurityEvent{}).
		Select("reason, count(*) as count").
		Where("timestamp BETWEEN ? AND ?", from, to).
		Group("reason").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}

	counts := make(map[string]int64, len(rows))
	for _, row := range rows {
		counts[row.Reason] = row.Count
	}

	return counts, nil
}

func (r *SecurityEventRepository) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	result := r.db.DB.WithContext(ctx).
		Where("timestamp < ?", cutoff).
		Delete(&models.SecurityEvent{})

	return result.RowsAffected, result.Error
}
