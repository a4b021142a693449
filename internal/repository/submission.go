package repository

import (
	"context"

	"github.com/ozclean/submission-gateway/internal/models"
	"github.com/ozclean/submission-gateway/internal/storage"
	"gorm.io/gorm"
)

type SubmissionRepository struct {
	db *storage.Postgres
}

func NewSubmissionRepository(db *storage.Postgres) *SubmissionRepository {
	return &SubmissionRepository{db: db}
}

// Persists a submission; the reference is assigned by the model hook.
func (r *SubmissionRepository) Create(ctx context.Context, submission *models.Submission) error {
	return r.db.DB.WithContext(ctx).Create(submission).Error
}

func (r *SubmissionRepository) FindByID(ctx context.Context, id string) (*models.Submission, error) {
	var submission models.Submission
	err := r.db.DB.WithContext(ctx).
		Where("id = ?", id).
		First(&submission).Error

	if err == gorm.ErrRecordNotFound {
		return nil, nil
	}

	return &submission, err
}

func (r *SubmissionRepository) FindByReference(ctx context.Context, reference string) (*models.Submission, error) {
	var submission models.Submission
	err := r.db.DB.WithContext(ctx).
		Where("reference = ?", reference).
		First(&submission).Error

	if err == gorm.ErrRecordNotFound {
		return nil, nil
	}

	return &submission, err
}

func (r *SubmissionRepository) List(ctx context.Context, submissionType, status string, limit, offset int) ([]models.Submission, error) {
	query := r.db.DB.WithContext(ctx).Order("submitted_at DESC")

	if submissionType != "" {
		query = query.Where("type = ?", submissionType)
	}
	if status != "" {
		query = query.Where("status = ?", status)
	}

	var submissions []models.Submission
	err := query.Limit(limit).Offset(offset).Find(&submissions).Error

	return submissions, err
}

func (r *SubmissionRepository) UpdateStatus(ctx context.Context, id, status string) error {
	result := r.db.DB.WithContext(ctx).
		Model(&models.Submission{}).
		Where("id = ?", id).
		Update("status", status)

	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}

	return nil
}

func (r *SubmissionRepository) CountByTypeAndStatus(ctx context.Context) (map[string]int64, error) {
	var rows []struct {
		Type   string
		Status string
		Count  int64
	}

	err := r.db.DB.WithContext(ctx).
		Model(&models.Submission{}).
		Select("type, status, count(*) as count").
		Group("type, status").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}

	counts := make(map[string]int64, len(rows))
	for _, row := range rows {
		counts[row.Type+":"+row.Status] = row.Count
	}

	return counts, nil
}
