package service

import (
	"context"
	"fmt"
	"sort"
	"time"

	"coursehub_backend/internal/grading"
	"coursehub_backend/internal/model"
	"coursehub_backend/internal/repository"
	"coursehub_backend/internal/util"
	"coursehub_backend/pkg/logger"
	"coursehub_backend/pkg/monitoring"
	"coursehub_backend/pkg/tracing"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// EvaluationService 学员端测评：作答、评分和作答记录
type EvaluationService struct {
	CourseRepo       *repository.CourseRepository
	ModuleRepo       *repository.ModuleRepository
	EvaluationRepo   *repository.EvaluationRepository
	ResultRepo       *repository.EvaluationResultRepository
	ProgressRepo     *repository.ProgressRepository
	RegistrationRepo *repository.RegistrationRepository
	ProgressService  *ProgressService
	Scorer           *grading.Scorer
	DB               *gorm.DB
}

func NewEvaluationService(
	courseRepo *repository.CourseRepository,
	moduleRepo *repository.ModuleRepository,
	evaluationRepo *repository.EvaluationRepository,
	resultRepo *repository.EvaluationResultRepository,
	progressRepo *repository.ProgressRepository,
	registrationRepo *repository.RegistrationRepository,
	progressService *ProgressService,
	scorer *grading.Scorer,
	db *gorm.DB,
) *EvaluationService {
	return &EvaluationService{
		CourseRepo:       courseRepo,
		ModuleRepo:       moduleRepo,
		EvaluationRepo:   evaluationRepo,
		ResultRepo:       resultRepo,
		ProgressRepo:     progressRepo,
		RegistrationRepo: registrationRepo,
		ProgressService:  progressService,
		Scorer:           scorer,
		DB:               db,
	}
}

// LearnerAnswer 不含正确性和排序信息，答案按 ID 排列
type LearnerAnswer struct {
	ID    string `json:"id"`
	Title string `json:"title"`
}

type LearnerQuestion struct {
	ID      string          `json:"id"`
	Title   string          `json:"title"`
	Answers []LearnerAnswer `json:"answers"`
}

// LearnerEvaluation 学员视角的测评（不含正确答案）
type LearnerEvaluation struct {
	ID           string               `json:"id"`
	ModuleID     string               `json:"moduleId"`
	CourseID     string               `json:"courseId"`
	Type         model.EvaluationType `json:"type"`
	MaxAttempts  int                  `json:"maxAttempts"`
	Gradable     bool                 `json:"gradable"`
	NextModuleID string               `json:"nextModuleId,omitempty"`
	Questions    []LearnerQuestion    `json:"questions"`
	Summary      AttemptSummary       `json:"summary"`
}

type AttemptOutcome struct {
	Result  *model.EvaluationResult `json:"result"`
	Passed  bool                    `json:"passed"`
	Summary AttemptSummary          `json:"summary"`
}

type AttemptHistory struct {
	Results []model.EvaluationResult `json:"results"`
	Summary AttemptSummary           `json:"summary"`
}

type evaluationContext struct {
	module     *model.Module
	evaluation *model.Evaluation
	nextModule *model.Module
}

// load 依次加载课程、模块和测评并校验权限，只有已发布内容可见
// 除免费试看模块外需要已报名
func (s *EvaluationService) load(ctx context.Context, userID, courseID, moduleID, evaluationID string) (*evaluationContext, error) {
	if _, err := s.CourseRepo.FindPublished(ctx, courseID); err != nil {
		return nil, err
	}

	module, err := s.ModuleRepo.FindInCourse(ctx, courseID, moduleID)
	if err != nil {
		return nil, err
	}
	if !module.IsPublished {
		return nil, util.ErrNotFound
	}

	evaluation, err := s.EvaluationRepo.FindWithQuestions(ctx, moduleID, evaluationID)
	if err != nil {
		return nil, err
	}
	if !evaluation.IsPublished {
		return nil, util.ErrNotFound
	}

	if !module.IsEnabled {
		enrolled, err := s.RegistrationRepo.Exists(ctx, userID, courseID)
		if err != nil {
			return nil, err
		}
		if !enrolled {
			return nil, fmt.Errorf("%w: not enrolled in course", util.ErrForbidden)
		}
	}

	next, err := s.ModuleRepo.FindNextPublished(ctx, courseID, module.Position)
	if err != nil {
		return nil, err
	}

	return &evaluationContext{module: module, evaluation: evaluation, nextModule: next}, nil
}

func (s *EvaluationService) GetEvaluationForLearner(ctx context.Context, userID, courseID, moduleID, evaluationID string) (*LearnerEvaluation, error) {
	ec, err := s.load(ctx, userID, courseID, moduleID, evaluationID)
	if err != nil {
		return nil, err
	}

	history, err := s.ResultRepo.ListByUserAndEvaluation(ctx, userID, evaluationID)
	if err != nil {
		return nil, err
	}

	out := &LearnerEvaluation{
		ID:          ec.evaluation.ID,
		ModuleID:    ec.module.ID,
		CourseID:    courseID,
		Type:        ec.evaluation.Type,
		MaxAttempts: ec.evaluation.MaxAttempts,
		Gradable:    s.Scorer.CanGrade(grading.Type(ec.evaluation.Type)),
		Questions:   make([]LearnerQuestion, 0, len(ec.evaluation.Questions)),
		Summary:     DeriveAttemptState(ec.evaluation.MaxAttempts, history, ec.nextModule != nil),
	}
	if ec.nextModule != nil {
		out.NextModuleID = ec.nextModule.ID
	}

	for _, q := range ec.evaluation.Questions {
		lq := LearnerQuestion{ID: q.ID, Title: q.Title, Answers: []LearnerAnswer{}}
		// 开放题为自由作答，答案即参考答案，不下发
		if ec.evaluation.Type != model.EvaluationOpen {
			for _, a := range q.Answers {
				lq.Answers = append(lq.Answers, LearnerAnswer{ID: a.ID, Title: a.Title})
			}
			// 题目按 order 加载，排序题的 order 就是答案，按随机 ID 重新排列
			sort.Slice(lq.Answers, func(i, j int) bool { return lq.Answers[i].ID < lq.Answers[j].ID })
		}
		out.Questions = append(out.Questions, lq)
	}
	return out, nil
}

// SubmitAttempt 评分并记录为用户的下一次作答
//
// 统计次数、写入结果和所选答案、通过时标记模块完成在同一事务内进行，测评行加锁，
// 并发提交不会重复使用次数编号，也不会超过 MaxAttempts
func (s *EvaluationService) SubmitAttempt(ctx context.Context, userID, courseID, moduleID, evaluationID string, responses map[string]grading.Response) (*AttemptOutcome, error) {
	ctx, span := tracing.Tracer.Start(ctx, "EvaluationService.SubmitAttempt")
	defer span.End()
	span.SetAttributes(
		attribute.String("evaluation.id", evaluationID),
		attribute.String("module.id", moduleID),
	)

	ec, err := s.load(ctx, userID, courseID, moduleID, evaluationID)
	if err != nil {
		return nil, err
	}
	evalType := string(ec.evaluation.Type)

	graded := s.Scorer.Score(grading.Type(ec.evaluation.Type), toGradingQuestions(ec.evaluation.Questions), responses)
	passed := grading.Passed(graded.Score)

	var result *model.EvaluationResult
	err = s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		locked, err := s.EvaluationRepo.WithTx(tx).LockForAttempt(ctx, evaluationID)
		if err != nil {
			return err
		}

		used, err := s.ResultRepo.WithTx(tx).CountByUserAndEvaluation(ctx, userID, evaluationID)
		if err != nil {
			return err
		}
		if used >= int64(locked.MaxAttempts) {
			return fmt.Errorf("%w: %d of %d used", util.ErrAttemptsExhausted, used, locked.MaxAttempts)
		}

		result = &model.EvaluationResult{
			UserID:          userID,
			EvaluationID:    evaluationID,
			Attempt:         int(used) + 1,
			Score:           graded.Score,
			CompletedAt:     time.Now(),
			SelectedAnswers: make([]model.SelectedAnswer, 0, len(graded.Selections)),
		}
		for _, sel := range graded.Selections {
			result.SelectedAnswers = append(result.SelectedAnswers, model.SelectedAnswer{
				QuestionID: sel.QuestionID,
				Title:      sel.Title,
				IsCorrect:  sel.IsCorrect,
			})
		}
		if err := s.ResultRepo.WithTx(tx).Create(ctx, result); err != nil {
			return err
		}

		if passed {
			if _, err := s.ProgressRepo.WithTx(tx).Upsert(ctx, userID, moduleID, true); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		monitoring.AttemptCounter.WithLabelValues(evalType, "rejected").Inc()
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	outcome := "failed"
	if passed {
		outcome = "passed"
		s.ProgressService.Invalidate(ctx, userID, courseID)
	}
	monitoring.AttemptCounter.WithLabelValues(evalType, outcome).Inc()
	monitoring.AttemptScore.WithLabelValues(evalType).Observe(float64(result.Score))
	span.SetAttributes(
		attribute.Int("attempt.number", result.Attempt),
		attribute.Int("attempt.score", result.Score),
	)

	logger.Log.Info("Evaluation attempt recorded",
		zap.String("userId", userID),
		zap.String("evaluationId", evaluationID),
		zap.Int("attempt", result.Attempt),
		zap.Int("score", result.Score),
		zap.Bool("passed", passed))

	history, err := s.ResultRepo.ListByUserAndEvaluation(ctx, userID, evaluationID)
	if err != nil {
		return nil, err
	}

	return &AttemptOutcome{
		Result:  result,
		Passed:  passed,
		Summary: DeriveAttemptState(ec.evaluation.MaxAttempts, history, ec.nextModule != nil),
	}, nil
}

// GetAttemptHistory 按顺序返回作答记录和推导出的状态
func (s *EvaluationService) GetAttemptHistory(ctx context.Context, userID, courseID, moduleID, evaluationID string) (*AttemptHistory, error) {
	ec, err := s.load(ctx, userID, courseID, moduleID, evaluationID)
	if err != nil {
		return nil, err
	}

	results, err := s.ResultRepo.ListByUserAndEvaluation(ctx, userID, evaluationID)
	if err != nil {
		return nil, err
	}

	return &AttemptHistory{
		Results: results,
		Summary: DeriveAttemptState(ec.evaluation.MaxAttempts, results, ec.nextModule != nil),
	}, nil
}

func toGradingQuestions(questions []model.Question) []grading.Question {
	out := make([]grading.Question, 0, len(questions))
	for _, q := range questions {
		gq := grading.Question{ID: q.ID, Title: q.Title, Answers: make([]grading.Answer, 0, len(q.Answers))}
		for _, a := range q.Answers {
			gq.Answers = append(gq.Answers, grading.Answer{
				ID:        a.ID,
				Title:     a.Title,
				IsCorrect: a.IsCorrect,
				Order:     a.Order,
			})
		}
		out = append(out, gq)
	}
	return out
}
