package repository

import (
	"context"

	"coursehub_backend/internal/model"

	"gorm.io/gorm"
)

type EvaluationResultRepository struct {
	DB *gorm.DB
}

func NewEvaluationResultRepository(db *gorm.DB) *EvaluationResultRepository {
	return &EvaluationResultRepository{DB: db}
}

func (r *EvaluationResultRepository) WithTx(tx *gorm.DB) *EvaluationResultRepository {
	return &EvaluationResultRepository{DB: tx}
}

func (r *EvaluationResultRepository) CountByUserAndEvaluation(ctx context.Context, userID, evaluationID string) (int64, error) {
	var count int64
	err := r.DB.WithContext(ctx).
		Model(&model.EvaluationResult{}).
		Where("user_id = ? AND evaluation_id = ?", userID, evaluationID).
		Count(&count).Error
	return count, err
}

// Create inserts the result and its selected answers.
func (r *EvaluationResultRepository) Create(ctx context.Context, result *model.EvaluationResult) error {
	return r.DB.WithContext(ctx).Create(result).Error
}

// ListByUserAndEvaluation returns the attempt history in attempt order.
func (r *EvaluationResultRepository) ListByUserAndEvaluation(ctx context.Context, userID, evaluationID string) ([]model.EvaluationResult, error) {
	var results []model.EvaluationResult
	err := r.DB.WithContext(ctx).
		Preload("SelectedAnswers").
		Where("user_id = ? AND evaluation_id = ?", userID, evaluationID).
		Order("attempt ASC").
		Find(&results).Error
	return results, err
}
