package service

import (
	"context"
	"fmt"
	"strings"

	"coursehub_backend/internal/model"
	"coursehub_backend/internal/repository"
	"coursehub_backend/internal/util"
	"coursehub_backend/pkg/logger"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// EvaluationAuthoringService 课程作者管理测评、题目和答案
type EvaluationAuthoringService struct {
	CourseRepo     *repository.CourseRepository
	ModuleRepo     *repository.ModuleRepository
	EvaluationRepo *repository.EvaluationRepository
	DB             *gorm.DB
}

func NewEvaluationAuthoringService(
	courseRepo *repository.CourseRepository,
	moduleRepo *repository.ModuleRepository,
	evaluationRepo *repository.EvaluationRepository,
	db *gorm.DB,
) *EvaluationAuthoringService {
	return &EvaluationAuthoringService{
		CourseRepo:     courseRepo,
		ModuleRepo:     moduleRepo,
		EvaluationRepo: evaluationRepo,
		DB:             db,
	}
}

type AnswerInput struct {
	Title     string `json:"title" binding:"required"`
	IsCorrect bool   `json:"isCorrect"`
	Order     int    `json:"order"`
}

type QuestionInput struct {
	Title   string        `json:"title" binding:"required"`
	Answers []AnswerInput `json:"answers" binding:"required,min=1,dive"`
}

// ownedModule 校验课程归属后返回模块
func (s *EvaluationAuthoringService) ownedModule(ctx context.Context, ownerID, courseID, moduleID string) (*model.Module, error) {
	if _, err := s.CourseRepo.FindOwned(ctx, courseID, ownerID); err != nil {
		return nil, err
	}
	return s.ModuleRepo.FindInCourse(ctx, courseID, moduleID)
}

func (s *EvaluationAuthoringService) ownedEvaluation(ctx context.Context, ownerID, courseID, moduleID, evaluationID string) (*model.Evaluation, error) {
	if _, err := s.ownedModule(ctx, ownerID, courseID, moduleID); err != nil {
		return nil, err
	}
	return s.EvaluationRepo.FindWithQuestions(ctx, moduleID, evaluationID)
}

// Create 为模块创建测评，每个模块最多一个
func (s *EvaluationAuthoringService) Create(ctx context.Context, ownerID, courseID, moduleID string, evalType model.EvaluationType) (*model.Evaluation, error) {
	if !evalType.Valid() {
		return nil, fmt.Errorf("%w: unknown evaluation type %q", util.ErrValidation, evalType)
	}

	module, err := s.ownedModule(ctx, ownerID, courseID, moduleID)
	if err != nil {
		return nil, err
	}
	if module.Evaluation != nil {
		return nil, fmt.Errorf("%w: module already has an evaluation", util.ErrValidation)
	}

	evaluation := &model.Evaluation{
		ModuleID:    moduleID,
		Type:        evalType,
		MaxAttempts: 1,
	}
	if err := s.EvaluationRepo.Create(ctx, evaluation); err != nil {
		return nil, err
	}
	return evaluation, nil
}

// Get 返回包含正确答案的完整测评
func (s *EvaluationAuthoringService) Get(ctx context.Context, ownerID, courseID, moduleID, evaluationID string) (*model.Evaluation, error) {
	return s.ownedEvaluation(ctx, ownerID, courseID, moduleID, evaluationID)
}

// ChangeType 修改测评类型，已有题目会被删除，未确认时返回 ErrConfirmationRequired
// 确认后删除题目和答案，取消发布测评和模块，课程没有已发布模块时一并取消发布
func (s *EvaluationAuthoringService) ChangeType(ctx context.Context, ownerID, courseID, moduleID, evaluationID string, newType model.EvaluationType, confirm bool) (*model.Evaluation, error) {
	if !newType.Valid() {
		return nil, fmt.Errorf("%w: unknown evaluation type %q", util.ErrValidation, newType)
	}

	evaluation, err := s.ownedEvaluation(ctx, ownerID, courseID, moduleID, evaluationID)
	if err != nil {
		return nil, err
	}
	if evaluation.Type == newType {
		return evaluation, nil
	}
	if !confirm {
		return nil, util.ErrConfirmationRequired
	}

	err = s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		evaluations := s.EvaluationRepo.WithTx(tx)
		if err := evaluations.DeleteQuestions(ctx, evaluationID); err != nil {
			return err
		}
		if err := evaluations.Updates(ctx, evaluationID, map[string]interface{}{
			"type":         newType,
			"is_published": false,
		}); err != nil {
			return err
		}
		if err := s.ModuleRepo.WithTx(tx).SetPublished(ctx, moduleID, false); err != nil {
			return err
		}
		return syncCoursePublication(ctx, s.CourseRepo.WithTx(tx), s.ModuleRepo.WithTx(tx), courseID)
	})
	if err != nil {
		return nil, err
	}

	logger.Log.Warn("Evaluation type changed, questions removed",
		zap.String("evaluationId", evaluationID),
		zap.String("from", string(evaluation.Type)),
		zap.String("to", string(newType)),
		zap.Int("questions", len(evaluation.Questions)))

	return s.EvaluationRepo.FindWithQuestions(ctx, moduleID, evaluationID)
}

func (s *EvaluationAuthoringService) UpdateMaxAttempts(ctx context.Context, ownerID, courseID, moduleID, evaluationID string, maxAttempts int) (*model.Evaluation, error) {
	if maxAttempts < 1 {
		return nil, fmt.Errorf("%w: maxAttempts must be at least 1", util.ErrValidation)
	}
	if _, err := s.ownedEvaluation(ctx, ownerID, courseID, moduleID, evaluationID); err != nil {
		return nil, err
	}

	if err := s.EvaluationRepo.Updates(ctx, evaluationID, map[string]interface{}{"max_attempts": maxAttempts}); err != nil {
		return nil, err
	}
	return s.EvaluationRepo.FindWithQuestions(ctx, moduleID, evaluationID)
}

// AddQuestion 按测评类型校验答案后追加题目
func (s *EvaluationAuthoringService) AddQuestion(ctx context.Context, ownerID, courseID, moduleID, evaluationID string, input QuestionInput) (*model.Question, error) {
	evaluation, err := s.ownedEvaluation(ctx, ownerID, courseID, moduleID, evaluationID)
	if err != nil {
		return nil, err
	}

	answers, err := buildAnswers(evaluation.Type, input.Answers)
	if err != nil {
		return nil, err
	}
	title := strings.TrimSpace(input.Title)
	if title == "" {
		return nil, fmt.Errorf("%w: question title is required", util.ErrValidation)
	}

	position, err := s.EvaluationRepo.MaxQuestionPosition(ctx, evaluationID)
	if err != nil {
		return nil, err
	}

	question := &model.Question{
		Title:        title,
		Position:     position + 1,
		EvaluationID: evaluationID,
		Answers:      answers,
	}
	if err := s.EvaluationRepo.CreateQuestion(ctx, question); err != nil {
		return nil, err
	}
	return question, nil
}

func (s *EvaluationAuthoringService) DeleteQuestion(ctx context.Context, ownerID, courseID, moduleID, evaluationID, questionID string) error {
	if _, err := s.ownedEvaluation(ctx, ownerID, courseID, moduleID, evaluationID); err != nil {
		return err
	}
	if _, err := s.EvaluationRepo.FindQuestion(ctx, evaluationID, questionID); err != nil {
		return err
	}
	return s.EvaluationRepo.DeleteQuestion(ctx, questionID)
}

// Publish 至少一道题，且每道题都有正确答案
func (s *EvaluationAuthoringService) Publish(ctx context.Context, ownerID, courseID, moduleID, evaluationID string) (*model.Evaluation, error) {
	evaluation, err := s.ownedEvaluation(ctx, ownerID, courseID, moduleID, evaluationID)
	if err != nil {
		return nil, err
	}

	questions, err := s.EvaluationRepo.CountQuestions(ctx, evaluationID)
	if err != nil {
		return nil, err
	}
	if questions == 0 {
		return nil, fmt.Errorf("%w: evaluation has no questions", util.ErrMissingFields)
	}
	missing, err := s.EvaluationRepo.CountQuestionsWithoutCorrectAnswer(ctx, evaluationID)
	if err != nil {
		return nil, err
	}
	if missing > 0 {
		return nil, fmt.Errorf("%w: %d question(s) without a correct answer", util.ErrMissingFields, missing)
	}

	if err := s.EvaluationRepo.Updates(ctx, evaluationID, map[string]interface{}{"is_published": true}); err != nil {
		return nil, err
	}
	evaluation.IsPublished = true
	return evaluation, nil
}

func (s *EvaluationAuthoringService) Unpublish(ctx context.Context, ownerID, courseID, moduleID, evaluationID string) (*model.Evaluation, error) {
	evaluation, err := s.ownedEvaluation(ctx, ownerID, courseID, moduleID, evaluationID)
	if err != nil {
		return nil, err
	}
	if err := s.EvaluationRepo.Updates(ctx, evaluationID, map[string]interface{}{"is_published": false}); err != nil {
		return nil, err
	}
	evaluation.IsPublished = false
	return evaluation, nil
}

// Delete 删除测评及其全部作答记录
func (s *EvaluationAuthoringService) Delete(ctx context.Context, ownerID, courseID, moduleID, evaluationID string) error {
	if _, err := s.ownedEvaluation(ctx, ownerID, courseID, moduleID, evaluationID); err != nil {
		return err
	}
	return s.EvaluationRepo.Delete(ctx, evaluationID)
}

// buildAnswers 按测评类型校验新题目的答案
func buildAnswers(evalType model.EvaluationType, inputs []AnswerInput) ([]model.Answer, error) {
	if len(inputs) == 0 {
		return nil, fmt.Errorf("%w: at least one answer is required", util.ErrValidation)
	}

	answers := make([]model.Answer, 0, len(inputs))
	correct := 0
	orders := make(map[int]bool, len(inputs))
	for i, in := range inputs {
		title := strings.TrimSpace(in.Title)
		if title == "" {
			return nil, fmt.Errorf("%w: answer %d has no title", util.ErrValidation, i+1)
		}
		a := model.Answer{Title: title, IsCorrect: in.IsCorrect, Order: in.Order}

		if evalType == model.EvaluationSequence {
			// 每项都属于序列，Order 即答案
			a.IsCorrect = true
			if a.Order < 1 || orders[a.Order] {
				return nil, fmt.Errorf("%w: sequence answers need distinct positive orders", util.ErrValidation)
			}
			orders[a.Order] = true
		} else {
			a.Order = i + 1
		}
		if a.IsCorrect {
			correct++
		}
		answers = append(answers, a)
	}

	switch evalType {
	case model.EvaluationSingle:
		if len(answers) < 2 {
			return nil, fmt.Errorf("%w: single choice needs at least two answers", util.ErrValidation)
		}
		if correct != 1 {
			return nil, fmt.Errorf("%w: single choice needs exactly one correct answer", util.ErrValidation)
		}
	case model.EvaluationMultiple:
		if len(answers) < 2 {
			return nil, fmt.Errorf("%w: multiple choice needs at least two answers", util.ErrValidation)
		}
		if correct < 1 {
			return nil, fmt.Errorf("%w: multiple choice needs a correct answer", util.ErrValidation)
		}
	case model.EvaluationSequence:
		if len(answers) < 2 {
			return nil, fmt.Errorf("%w: a sequence needs at least two items", util.ErrValidation)
		}
	default:
		if correct < 1 {
			return nil, fmt.Errorf("%w: at least one answer must be correct", util.ErrValidation)
		}
	}
	return answers, nil
}
