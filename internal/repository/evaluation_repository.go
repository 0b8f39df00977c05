package repository

import (
	"context"
	"errors"

	"coursehub_backend/internal/model"
	"coursehub_backend/internal/util"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type EvaluationRepository struct {
	DB *gorm.DB
}

func NewEvaluationRepository(db *gorm.DB) *EvaluationRepository {
	return &EvaluationRepository{DB: db}
}

func (r *EvaluationRepository) WithTx(tx *gorm.DB) *EvaluationRepository {
	return &EvaluationRepository{DB: tx}
}

func (r *EvaluationRepository) Create(ctx context.Context, e *model.Evaluation) error {
	return r.DB.WithContext(ctx).Create(e).Error
}

func (r *EvaluationRepository) FindByModule(ctx context.Context, moduleID string) (*model.Evaluation, error) {
	var e model.Evaluation
	err := r.DB.WithContext(ctx).Where("module_id = ?", moduleID).First(&e).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, util.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &e, nil
}

// FindWithQuestions loads the evaluation of a module together with its questions and answers,
// both in position order.
func (r *EvaluationRepository) FindWithQuestions(ctx context.Context, moduleID, evaluationID string) (*model.Evaluation, error) {
	var e model.Evaluation
	err := r.DB.WithContext(ctx).
		Preload("Questions", func(db *gorm.DB) *gorm.DB {
			return db.Order("position ASC").Order("created_at ASC")
		}).
		Preload("Questions.Answers", func(db *gorm.DB) *gorm.DB {
			return db.Order(clause.OrderByColumn{Column: clause.Column{Name: "order"}}).Order("created_at ASC")
		}).
		Where("id = ? AND module_id = ?", evaluationID, moduleID).
		First(&e).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, util.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &e, nil
}

// LockForAttempt reloads the evaluation row under FOR UPDATE so that concurrent submissions
// for it are serialised. sqlite has no row locks; its writers are already serialised.
func (r *EvaluationRepository) LockForAttempt(ctx context.Context, evaluationID string) (*model.Evaluation, error) {
	query := r.DB.WithContext(ctx)
	if r.DB.Dialector.Name() != "sqlite" {
		query = query.Clauses(clause.Locking{Strength: "UPDATE"})
	}

	var e model.Evaluation
	err := query.Where("id = ?", evaluationID).First(&e).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, util.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &e, nil
}

func (r *EvaluationRepository) Updates(ctx context.Context, id string, fields map[string]interface{}) error {
	return r.DB.WithContext(ctx).
		Model(&model.Evaluation{}).
		Where("id = ?", id).
		Updates(fields).Error
}

func (r *EvaluationRepository) CountQuestions(ctx context.Context, evaluationID string) (int64, error) {
	var count int64
	err := r.DB.WithContext(ctx).Model(&model.Question{}).Where("evaluation_id = ?", evaluationID).Count(&count).Error
	return count, err
}

// CountQuestionsWithoutCorrectAnswer is the publish precondition check.
func (r *EvaluationRepository) CountQuestionsWithoutCorrectAnswer(ctx context.Context, evaluationID string) (int64, error) {
	var count int64
	err := r.DB.WithContext(ctx).
		Model(&model.Question{}).
		Where("evaluation_id = ?", evaluationID).
		Where("NOT EXISTS (SELECT 1 FROM answers WHERE answers.question_id = questions.id AND answers.is_correct = ?)", true).
		Count(&count).Error
	return count, err
}

func (r *EvaluationRepository) MaxQuestionPosition(ctx context.Context, evaluationID string) (int, error) {
	var max *int
	err := r.DB.WithContext(ctx).
		Model(&model.Question{}).
		Where("evaluation_id = ?", evaluationID).
		Select("MAX(position)").
		Scan(&max).Error
	if err != nil || max == nil {
		return 0, err
	}
	return *max, nil
}

// CreateQuestion inserts the question and its answers (gorm saves the association).
func (r *EvaluationRepository) CreateQuestion(ctx context.Context, q *model.Question) error {
	return r.DB.WithContext(ctx).Create(q).Error
}

func (r *EvaluationRepository) FindQuestion(ctx context.Context, evaluationID, questionID string) (*model.Question, error) {
	var q model.Question
	err := r.DB.WithContext(ctx).
		Preload("Answers").
		Where("id = ? AND evaluation_id = ?", questionID, evaluationID).
		First(&q).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, util.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &q, nil
}

func (r *EvaluationRepository) DeleteQuestion(ctx context.Context, questionID string) error {
	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("question_id = ?", questionID).Delete(&model.Answer{}).Error; err != nil {
			return err
		}
		return tx.Delete(&model.Question{}, "id = ?", questionID).Error
	})
}

// DeleteQuestions removes every question and answer of the evaluation. Attempts are kept.
func (r *EvaluationRepository) DeleteQuestions(ctx context.Context, evaluationID string) error {
	tx := r.DB.WithContext(ctx)
	questionIDs := tx.Model(&model.Question{}).Select("id").Where("evaluation_id = ?", evaluationID)
	if err := tx.Where("question_id IN (?)", questionIDs).Delete(&model.Answer{}).Error; err != nil {
		return err
	}
	return tx.Where("evaluation_id = ?", evaluationID).Delete(&model.Question{}).Error
}

// Delete removes the evaluation with its questions, answers, results and selected answers.
func (r *EvaluationRepository) Delete(ctx context.Context, evaluationID string) error {
	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return r.deleteCascade(tx, evaluationID)
	})
}

func (r *EvaluationRepository) deleteCascade(tx *gorm.DB, evaluationID string) error {
	resultIDs := tx.Model(&model.EvaluationResult{}).Select("id").Where("evaluation_id = ?", evaluationID)
	if err := tx.Where("evaluation_result_id IN (?)", resultIDs).Delete(&model.SelectedAnswer{}).Error; err != nil {
		return err
	}
	if err := tx.Where("evaluation_id = ?", evaluationID).Delete(&model.EvaluationResult{}).Error; err != nil {
		return err
	}
	questionIDs := tx.Model(&model.Question{}).Select("id").Where("evaluation_id = ?", evaluationID)
	if err := tx.Where("question_id IN (?)", questionIDs).Delete(&model.Answer{}).Error; err != nil {
		return err
	}
	if err := tx.Where("evaluation_id = ?", evaluationID).Delete(&model.Question{}).Error; err != nil {
		return err
	}
	return tx.Delete(&model.Evaluation{}, "id = ?", evaluationID).Error
}
