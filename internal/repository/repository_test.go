package repository_test

import (
	"context"
	"testing"

	"coursehub_backend/internal/model"
	"coursehub_backend/internal/repository"
	"coursehub_backend/internal/testutil"
	"coursehub_backend/internal/util"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProgressUpsertKeepsOneRow(t *testing.T) {
	db := testutil.NewDB(t)
	repo := repository.NewProgressRepository(db)
	ctx := context.Background()

	course := testutil.Course(t, db, "teacher", true)
	m := testutil.Module(t, db, course.ID, 1)

	first, err := repo.Upsert(ctx, "learner", m.ID, true)
	require.NoError(t, err)
	second, err := repo.Upsert(ctx, "learner", m.ID, false)
	require.NoError(t, err)

	assert.Equal(t, first.ID, second.ID)
	assert.False(t, second.IsCompleted)

	found, err := repo.FindByUserAndModule(ctx, "learner", m.ID)
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.False(t, found.IsCompleted)

	missing, err := repo.FindByUserAndModule(ctx, "nobody", m.ID)
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestCountCompletedAndPublishedByCourse(t *testing.T) {
	db := testutil.NewDB(t)
	ctx := context.Background()
	modules := repository.NewModuleRepository(db)
	progress := repository.NewProgressRepository(db)

	a := testutil.Course(t, db, "teacher", true)
	a1 := testutil.Module(t, db, a.ID, 1)
	a2 := testutil.Module(t, db, a.ID, 2)
	b := testutil.Course(t, db, "teacher", true)
	b1 := testutil.Module(t, db, b.ID, 1)
	require.NoError(t, modules.SetPublished(ctx, b1.ID, false))

	testutil.Complete(t, db, "learner", a1.ID)
	testutil.Complete(t, db, "learner", a2.ID)
	testutil.Complete(t, db, "learner", b1.ID)
	require.NoError(t, db.Create(&model.UserProgress{UserID: "other", ModuleID: a1.ID, IsCompleted: true}).Error)

	totals, err := modules.CountPublishedByCourse(ctx, []string{a.ID, b.ID})
	require.NoError(t, err)
	assert.Equal(t, map[string]int{a.ID: 2}, totals)

	completed, err := progress.CountCompletedByCourse(ctx, "learner", []string{a.ID, b.ID})
	require.NoError(t, err)
	assert.Equal(t, map[string]int{a.ID: 2}, completed)

	empty, err := progress.CountCompletedByCourse(ctx, "learner", nil)
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestFindByUserAndModules(t *testing.T) {
	db := testutil.NewDB(t)
	repo := repository.NewProgressRepository(db)

	course := testutil.Course(t, db, "teacher", true)
	m1 := testutil.Module(t, db, course.ID, 1)
	m2 := testutil.Module(t, db, course.ID, 2)
	testutil.Complete(t, db, "learner", m1.ID)

	got, err := repo.FindByUserAndModules(context.Background(), "learner", []string{m1.ID, m2.ID})
	require.NoError(t, err)
	assert.True(t, got[m1.ID])
	assert.False(t, got[m2.ID])
}

func TestFindNextPublished(t *testing.T) {
	db := testutil.NewDB(t)
	repo := repository.NewModuleRepository(db)
	ctx := context.Background()

	course := testutil.Course(t, db, "teacher", true)
	m1 := testutil.Module(t, db, course.ID, 1)
	hidden := testutil.Module(t, db, course.ID, 2)
	m3 := testutil.Module(t, db, course.ID, 5)
	require.NoError(t, repo.SetPublished(ctx, hidden.ID, false))

	next, err := repo.FindNextPublished(ctx, course.ID, m1.Position)
	require.NoError(t, err)
	require.NotNil(t, next)
	assert.Equal(t, m3.ID, next.ID)

	last, err := repo.FindNextPublished(ctx, course.ID, m3.Position)
	require.NoError(t, err)
	assert.Nil(t, last)

	maxPos, err := repo.MaxPosition(ctx, course.ID)
	require.NoError(t, err)
	assert.Equal(t, 5, maxPos)
}

func TestEvaluationResultsOrderedByAttempt(t *testing.T) {
	db := testutil.NewDB(t)
	results := repository.NewEvaluationResultRepository(db)
	ctx := context.Background()

	course := testutil.Course(t, db, "teacher", true)
	m := testutil.Module(t, db, course.ID, 1)
	e := testutil.Evaluation(t, db, m.ID, model.EvaluationSingle, 3, 1)

	for _, attempt := range []int{2, 1} {
		require.NoError(t, results.Create(ctx, &model.EvaluationResult{
			UserID: "learner", EvaluationID: e.ID, Attempt: attempt, Score: attempt * 10,
			SelectedAnswers: []model.SelectedAnswer{{QuestionID: e.Questions[0].ID, Title: "Right 1", IsCorrect: true}},
		}))
	}

	count, err := results.CountByUserAndEvaluation(ctx, "learner", e.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)

	list, err := results.ListByUserAndEvaluation(ctx, "learner", e.ID)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, 1, list[0].Attempt)
	assert.Len(t, list[0].SelectedAnswers, 1)

	// attempt numbers are unique per user and evaluation
	err = results.Create(ctx, &model.EvaluationResult{UserID: "learner", EvaluationID: e.ID, Attempt: 1, Score: 0})
	assert.Error(t, err)
}

func TestEvaluationQuestionQueries(t *testing.T) {
	db := testutil.NewDB(t)
	repo := repository.NewEvaluationRepository(db)
	ctx := context.Background()

	course := testutil.Course(t, db, "teacher", true)
	m := testutil.Module(t, db, course.ID, 1)
	e := testutil.Evaluation(t, db, m.ID, model.EvaluationSingle, 1, 2)

	missing, err := repo.CountQuestionsWithoutCorrectAnswer(ctx, e.ID)
	require.NoError(t, err)
	assert.Zero(t, missing)

	require.NoError(t, repo.CreateQuestion(ctx, &model.Question{
		Title: "no key", EvaluationID: e.ID, Position: 3,
		Answers: []model.Answer{{Title: "x"}},
	}))
	missing, err = repo.CountQuestionsWithoutCorrectAnswer(ctx, e.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), missing)

	pos, err := repo.MaxQuestionPosition(ctx, e.ID)
	require.NoError(t, err)
	assert.Equal(t, 3, pos)

	loaded, err := repo.FindWithQuestions(ctx, m.ID, e.ID)
	require.NoError(t, err)
	require.Len(t, loaded.Questions, 3)
	assert.Equal(t, "Right 1", loaded.Questions[0].Answers[0].Title)

	_, err = repo.FindWithQuestions(ctx, "other-module", e.ID)
	assert.ErrorIs(t, err, util.ErrNotFound)
}

func TestCourseOwnershipAndCategories(t *testing.T) {
	db := testutil.NewDB(t)
	courses := repository.NewCourseRepository(db)
	categories := repository.NewCategoryRepository(db)
	ctx := context.Background()

	course := testutil.Course(t, db, "teacher", false)

	_, err := courses.FindOwned(ctx, course.ID, "intruder")
	assert.ErrorIs(t, err, util.ErrUnauthorized)
	_, err = courses.FindPublished(ctx, course.ID)
	assert.ErrorIs(t, err, util.ErrNotFound)
	_, err = courses.FindByID(ctx, "missing")
	assert.ErrorIs(t, err, util.ErrNotFound)

	created, err := categories.EnsureNames(ctx, []string{"Go", "Rust", "Go"})
	require.NoError(t, err)
	assert.Equal(t, 2, created)

	created, err = categories.EnsureNames(ctx, []string{"Go", "Zig"})
	require.NoError(t, err)
	assert.Equal(t, 1, created)

	list, err := categories.List(ctx)
	require.NoError(t, err)
	assert.Len(t, list, 3)
}
