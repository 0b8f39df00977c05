package service

import (
	"context"
	"errors"
	"sort"
	"sync"
	"testing"

	"coursehub_backend/internal/grading"
	"coursehub_backend/internal/model"
	"coursehub_backend/internal/testutil"
	"coursehub_backend/internal/util"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type evalSetup struct {
	course     *model.Course
	module     *model.Module
	next       *model.Module
	evaluation *model.Evaluation
}

func setupEvaluation(t *testing.T, f *fixture, maxAttempts, questions int) evalSetup {
	t.Helper()
	course := testutil.Course(t, f.db, "teacher", true)
	m1 := testutil.Module(t, f.db, course.ID, 1)
	m2 := testutil.Module(t, f.db, course.ID, 2)
	e := testutil.Evaluation(t, f.db, m1.ID, model.EvaluationSingle, maxAttempts, questions)
	return evalSetup{course: course, module: m1, next: m2, evaluation: e}
}

// answers builds responses choosing the correct answer for the first `right` questions and
// the wrong one for the rest.
func answers(e *model.Evaluation, right int) map[string]grading.Response {
	out := make(map[string]grading.Response, len(e.Questions))
	for i, q := range e.Questions {
		if i < right {
			out[q.ID] = grading.Choice(q.Answers[0].ID)
		} else {
			out[q.ID] = grading.Choice(q.Answers[1].ID)
		}
	}
	return out
}

func (s evalSetup) submit(f *fixture, userID string, responses map[string]grading.Response) (*AttemptOutcome, error) {
	return f.evaluation.SubmitAttempt(context.Background(), userID, s.course.ID, s.module.ID, s.evaluation.ID, responses)
}

func TestSubmitAttemptNumbersAndState(t *testing.T) {
	f := newFixture(t)
	s := setupEvaluation(t, f, 3, 10)
	testutil.Enroll(t, f.db, "learner", s.course.ID)

	first, err := s.submit(f, "learner", answers(s.evaluation, 6))
	require.NoError(t, err)
	assert.Equal(t, 1, first.Result.Attempt)
	assert.Equal(t, 60, first.Result.Score)
	assert.False(t, first.Passed)
	assert.Equal(t, StateFailedRetryable, first.Summary.State)

	second, err := s.submit(f, "learner", answers(s.evaluation, 7))
	require.NoError(t, err)
	assert.Equal(t, 2, second.Result.Attempt)
	assert.Equal(t, StateFailedRetryable, second.Summary.State)
	assert.Equal(t, 1, second.Summary.AttemptsLeft)

	third, err := s.submit(f, "learner", answers(s.evaluation, 9))
	require.NoError(t, err)
	assert.Equal(t, 3, third.Result.Attempt)
	assert.Equal(t, 90, third.Result.Score)
	assert.True(t, third.Passed)
	assert.Equal(t, StatePassedExhausted, third.Summary.State)
	assert.Contains(t, third.Summary.Actions, ActionAdvance)
	assert.Len(t, third.Result.SelectedAnswers, 10)
}

func TestSubmitAttemptExhausted(t *testing.T) {
	f := newFixture(t)
	s := setupEvaluation(t, f, 1, 2)
	testutil.Enroll(t, f.db, "learner", s.course.ID)

	_, err := s.submit(f, "learner", answers(s.evaluation, 0))
	require.NoError(t, err)

	_, err = s.submit(f, "learner", answers(s.evaluation, 2))
	assert.ErrorIs(t, err, util.ErrAttemptsExhausted)

	var count int64
	require.NoError(t, f.db.Model(&model.EvaluationResult{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestSubmitAttemptPassMarksModuleCompleted(t *testing.T) {
	f := newFixture(t)
	s := setupEvaluation(t, f, 2, 5)
	testutil.Enroll(t, f.db, "learner", s.course.ID)
	ctx := context.Background()

	assert.Equal(t, 0, f.progress.GetCourseProgress(ctx, "learner", s.course.ID))

	outcome, err := s.submit(f, "learner", answers(s.evaluation, 4))
	require.NoError(t, err)
	assert.Equal(t, 80, outcome.Result.Score)
	assert.True(t, outcome.Passed)

	var progress model.UserProgress
	require.NoError(t, f.db.Where("user_id = ? AND module_id = ?", "learner", s.module.ID).First(&progress).Error)
	assert.True(t, progress.IsCompleted)
	assert.Equal(t, 50, f.progress.GetCourseProgress(ctx, "learner", s.course.ID))
}

func TestSubmitAttemptFailDoesNotTouchProgress(t *testing.T) {
	f := newFixture(t)
	s := setupEvaluation(t, f, 2, 5)
	testutil.Enroll(t, f.db, "learner", s.course.ID)

	_, err := s.submit(f, "learner", answers(s.evaluation, 3))
	require.NoError(t, err)

	var count int64
	require.NoError(t, f.db.Model(&model.UserProgress{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestSubmitAttemptRequiresEnrollment(t *testing.T) {
	f := newFixture(t)
	s := setupEvaluation(t, f, 2, 2)

	_, err := s.submit(f, "stranger", answers(s.evaluation, 2))
	assert.ErrorIs(t, err, util.ErrForbidden)
}

func TestSubmitAttemptFreePreview(t *testing.T) {
	f := newFixture(t)
	s := setupEvaluation(t, f, 2, 2)
	require.NoError(t, f.db.Model(&model.Module{}).Where("id = ?", s.module.ID).Update("is_enabled", true).Error)

	outcome, err := s.submit(f, "stranger", answers(s.evaluation, 2))
	require.NoError(t, err)
	assert.Equal(t, 100, outcome.Result.Score)
	assert.Equal(t, StatePassedMax, outcome.Summary.State)
}

func TestSubmitAttemptSameResponsesDistinctAttempts(t *testing.T) {
	f := newFixture(t)
	s := setupEvaluation(t, f, 3, 3)
	testutil.Enroll(t, f.db, "learner", s.course.ID)
	responses := answers(s.evaluation, 1)

	a, err := s.submit(f, "learner", responses)
	require.NoError(t, err)
	b, err := s.submit(f, "learner", responses)
	require.NoError(t, err)

	assert.Equal(t, a.Result.Score, b.Result.Score)
	assert.Equal(t, 33, a.Result.Score)
	assert.NotEqual(t, a.Result.Attempt, b.Result.Attempt)
	assert.NotEqual(t, a.Result.ID, b.Result.ID)
}

func TestSubmitAttemptUnpublishedEvaluation(t *testing.T) {
	f := newFixture(t)
	s := setupEvaluation(t, f, 2, 2)
	testutil.Enroll(t, f.db, "learner", s.course.ID)
	require.NoError(t, f.db.Model(&model.Evaluation{}).Where("id = ?", s.evaluation.ID).Update("is_published", false).Error)

	_, err := s.submit(f, "learner", answers(s.evaluation, 2))
	assert.ErrorIs(t, err, util.ErrNotFound)
}

func TestSubmitAttemptUngradableType(t *testing.T) {
	f := newFixture(t)
	course := testutil.Course(t, f.db, "teacher", true)
	m := testutil.Module(t, f.db, course.ID, 1)
	e := testutil.Evaluation(t, f.db, m.ID, model.EvaluationSequence, 2, 2)
	testutil.Enroll(t, f.db, "learner", course.ID)

	outcome, err := f.evaluation.SubmitAttempt(context.Background(), "learner", course.ID, m.ID, e.ID, answers(e, 2))
	require.NoError(t, err)
	assert.Equal(t, 0, outcome.Result.Score)
	assert.Equal(t, 1, outcome.Result.Attempt)
}

func TestGetEvaluationForLearnerHidesKey(t *testing.T) {
	f := newFixture(t)
	s := setupEvaluation(t, f, 3, 2)
	testutil.Enroll(t, f.db, "learner", s.course.ID)

	view, err := f.evaluation.GetEvaluationForLearner(context.Background(), "learner", s.course.ID, s.module.ID, s.evaluation.ID)
	require.NoError(t, err)

	assert.True(t, view.Gradable)
	assert.Equal(t, s.next.ID, view.NextModuleID)
	assert.Equal(t, StateNotStarted, view.Summary.State)
	require.Len(t, view.Questions, 2)
	require.Len(t, view.Questions[0].Answers, 2)
	titles := []string{view.Questions[0].Answers[0].Title, view.Questions[0].Answers[1].Title}
	assert.ElementsMatch(t, []string{"Right 1", "Wrong 1"}, titles)
}

func TestGetEvaluationForLearnerHidesSequenceOrder(t *testing.T) {
	f := newFixture(t)
	course := testutil.Course(t, f.db, "teacher", true)
	m := testutil.Module(t, f.db, course.ID, 1)
	e := testutil.Evaluation(t, f.db, m.ID, model.EvaluationSequence, 1, 0)
	testutil.Enroll(t, f.db, "learner", course.ID)

	// ids sort differently from the required order
	require.NoError(t, f.db.Create(&model.Question{
		Title: "Order the steps", EvaluationID: e.ID, Position: 1,
		Answers: []model.Answer{
			{UUIDBase: model.UUIDBase{ID: "a-third"}, Title: "third", IsCorrect: true, Order: 3},
			{UUIDBase: model.UUIDBase{ID: "b-first"}, Title: "first", IsCorrect: true, Order: 1},
			{UUIDBase: model.UUIDBase{ID: "c-second"}, Title: "second", IsCorrect: true, Order: 2},
		},
	}).Error)

	view, err := f.evaluation.GetEvaluationForLearner(context.Background(), "learner", course.ID, m.ID, e.ID)
	require.NoError(t, err)

	require.Len(t, view.Questions, 1)
	var titles []string
	for _, a := range view.Questions[0].Answers {
		titles = append(titles, a.Title)
	}
	assert.Equal(t, []string{"third", "first", "second"}, titles)
	assert.NotEqual(t, []string{"first", "second", "third"}, titles)
}

func TestGetEvaluationForLearnerOpenHidesAnswers(t *testing.T) {
	f := newFixture(t)
	course := testutil.Course(t, f.db, "teacher", true)
	m := testutil.Module(t, f.db, course.ID, 1)
	e := testutil.Evaluation(t, f.db, m.ID, model.EvaluationOpen, 1, 1)
	testutil.Enroll(t, f.db, "learner", course.ID)

	view, err := f.evaluation.GetEvaluationForLearner(context.Background(), "learner", course.ID, m.ID, e.ID)
	require.NoError(t, err)

	require.Len(t, view.Questions, 1)
	assert.Empty(t, view.Questions[0].Answers)
	assert.Empty(t, view.NextModuleID)
}

func TestGetAttemptHistory(t *testing.T) {
	f := newFixture(t)
	s := setupEvaluation(t, f, 3, 4)
	testutil.Enroll(t, f.db, "learner", s.course.ID)

	for _, right := range []int{1, 2} {
		_, err := s.submit(f, "learner", answers(s.evaluation, right))
		require.NoError(t, err)
	}
	// another learner's attempts stay out of the history
	testutil.Enroll(t, f.db, "other", s.course.ID)
	_, err := s.submit(f, "other", answers(s.evaluation, 4))
	require.NoError(t, err)

	h, err := f.evaluation.GetAttemptHistory(context.Background(), "learner", s.course.ID, s.module.ID, s.evaluation.ID)
	require.NoError(t, err)

	require.Len(t, h.Results, 2)
	assert.Equal(t, 1, h.Results[0].Attempt)
	assert.Equal(t, 25, h.Results[0].Score)
	assert.Equal(t, 2, h.Results[1].Attempt)
	assert.Equal(t, 50, h.Results[1].Score)
	assert.Len(t, h.Results[0].SelectedAnswers, 4)
	assert.Equal(t, 50, h.Summary.BestScore)
	assert.Equal(t, StateFailedRetryable, h.Summary.State)
}

func TestSubmitAttemptConcurrentSubmissions(t *testing.T) {
	f := newFixture(t)
	s := setupEvaluation(t, f, 2, 4)
	testutil.Enroll(t, f.db, "learner", s.course.ID)

	const workers = 5
	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		attempts  []int
		exhausted int
		failures  []error
	)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			outcome, err := s.submit(f, "learner", answers(s.evaluation, 2))

			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				attempts = append(attempts, outcome.Result.Attempt)
			case errors.Is(err, util.ErrAttemptsExhausted):
				exhausted++
			default:
				failures = append(failures, err)
			}
		}()
	}
	wg.Wait()

	require.Empty(t, failures)
	sort.Ints(attempts)
	assert.Equal(t, []int{1, 2}, attempts)
	assert.Equal(t, workers-2, exhausted)

	var stored int64
	require.NoError(t, f.db.Model(&model.EvaluationResult{}).
		Where("user_id = ? AND evaluation_id = ?", "learner", s.evaluation.ID).
		Count(&stored).Error)
	assert.Equal(t, int64(2), stored)
}
