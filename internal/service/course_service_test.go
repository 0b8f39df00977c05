package service

import (
	"context"
	"strings"
	"testing"

	"coursehub_backend/internal/model"
	"coursehub_backend/internal/repository"
	"coursehub_backend/internal/testutil"
	"coursehub_backend/internal/util"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPublishCourseReportsMissingFields(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	course, err := f.course.Create(ctx, "teacher", "Draft")
	require.NoError(t, err)

	_, err = f.course.Publish(ctx, "teacher", course.ID)
	require.ErrorIs(t, err, util.ErrMissingFields)
	for _, field := range []string{"description", "level", "previousSkills", "developedSkills", "imageUrl", "categoryId", "price", "publishedModule"} {
		assert.Contains(t, err.Error(), field)
	}
	assert.NotContains(t, err.Error(), "title")
}

func TestPublishCourse(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	course := testutil.PublishableCourse(t, f.db, "teacher")

	_, err := f.course.Publish(ctx, "teacher", course.ID)
	require.ErrorIs(t, err, util.ErrMissingFields)
	assert.Contains(t, err.Error(), "publishedModule")

	testutil.Module(t, f.db, course.ID, 1)
	published, err := f.course.Publish(ctx, "teacher", course.ID)
	require.NoError(t, err)
	assert.True(t, published.IsPublished)

	_, err = f.course.Publish(ctx, "intruder", course.ID)
	assert.ErrorIs(t, err, util.ErrUnauthorized)
}

func TestUpdateCourseValidation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	course := testutil.Course(t, f.db, "teacher", false)

	negative := -1.0
	_, err := f.course.Update(ctx, "teacher", course.ID, CoursePatch{Price: &negative})
	assert.ErrorIs(t, err, util.ErrValidation)

	unknown := "no-such-category"
	_, err = f.course.Update(ctx, "teacher", course.ID, CoursePatch{CategoryID: &unknown})
	assert.ErrorIs(t, err, util.ErrValidation)

	title := "Renamed"
	updated, err := f.course.Update(ctx, "teacher", course.ID, CoursePatch{Title: &title})
	require.NoError(t, err)
	assert.Equal(t, "Renamed", updated.Title)
}

func TestCatalogue(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	enrolled := testutil.Course(t, f.db, "teacher", true)
	m := testutil.Module(t, f.db, enrolled.ID, 1)
	testutil.Module(t, f.db, enrolled.ID, 2)
	testutil.Enroll(t, f.db, "learner", enrolled.ID)
	testutil.Complete(t, f.db, "learner", m.ID)

	browsing := testutil.Course(t, f.db, "teacher", true)
	testutil.Course(t, f.db, "teacher", false)

	items, err := f.course.Catalogue(ctx, "learner", repository.CatalogFilter{})
	require.NoError(t, err)
	require.Len(t, items, 2)

	byID := map[string]CatalogCourse{}
	for _, item := range items {
		byID[item.ID] = item
	}
	require.Contains(t, byID, enrolled.ID)
	require.Contains(t, byID, browsing.ID)

	assert.True(t, byID[enrolled.ID].IsEnrolled)
	require.NotNil(t, byID[enrolled.ID].Progress)
	assert.Equal(t, 50, *byID[enrolled.ID].Progress)
	assert.Equal(t, 2, byID[enrolled.ID].ModuleCount)

	assert.False(t, byID[browsing.ID].IsEnrolled)
	assert.Nil(t, byID[browsing.ID].Progress)

	anonymous, err := f.course.Catalogue(ctx, "", repository.CatalogFilter{})
	require.NoError(t, err)
	for _, item := range anonymous {
		assert.Nil(t, item.Progress)
	}
}

func TestCatalogueTitleFilter(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	course := testutil.Course(t, f.db, "teacher", true)
	testutil.Course(t, f.db, "teacher", true)

	items, err := f.course.Catalogue(ctx, "", repository.CatalogFilter{Title: course.Title[len(course.Title)-8:]})
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, course.ID, items[0].ID)
}

func TestGetOutline(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	s := setupEvaluation(t, f, 2, 1)
	testutil.Enroll(t, f.db, "learner", s.course.ID)
	testutil.Complete(t, f.db, "learner", s.module.ID)

	outline, err := f.course.GetOutline(ctx, "learner", s.course.ID)
	require.NoError(t, err)

	assert.True(t, outline.IsEnrolled)
	assert.Equal(t, 50, outline.Progress)
	require.Len(t, outline.Modules, 2)
	assert.True(t, outline.Modules[0].IsUnlocked)
	require.NotNil(t, outline.Modules[0].Evaluation)
	assert.True(t, outline.Modules[0].Evaluation.IsUnlocked)
	assert.True(t, outline.Modules[1].IsUnlocked)

	stranger, err := f.course.GetOutline(ctx, "stranger", s.course.ID)
	require.NoError(t, err)
	assert.False(t, stranger.IsEnrolled)
	assert.False(t, stranger.Modules[0].IsUnlocked)
}

func TestGetOutlineUnpublishedCourse(t *testing.T) {
	f := newFixture(t)
	course := testutil.Course(t, f.db, "teacher", false)

	_, err := f.course.GetOutline(context.Background(), "learner", course.ID)
	assert.ErrorIs(t, err, util.ErrNotFound)
}

func TestDeleteCourseCascades(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	s := setupEvaluation(t, f, 2, 2)
	testutil.Enroll(t, f.db, "learner", s.course.ID)
	_, err := s.submit(f, "learner", answers(s.evaluation, 2))
	require.NoError(t, err)
	_, err = f.course.AddAttachment(ctx, "teacher", s.course.ID, "", "https://cdn.example.com/files/syllabus.pdf")
	require.NoError(t, err)

	require.NoError(t, f.course.Delete(ctx, "teacher", s.course.ID))

	for _, table := range []interface{}{
		&model.Course{}, &model.Module{}, &model.Attachment{}, &model.Registration{},
		&model.UserProgress{}, &model.Evaluation{}, &model.EvaluationResult{},
	} {
		var count int64
		require.NoError(t, f.db.Model(table).Count(&count).Error)
		assert.Zero(t, count)
	}
}

func TestAttachments(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	course := testutil.Course(t, f.db, "teacher", false)

	linked, err := f.course.AddAttachment(ctx, "teacher", course.ID, "", "https://cdn.example.com/files/syllabus.pdf")
	require.NoError(t, err)
	assert.Equal(t, "syllabus.pdf", linked.Name)

	uploaded, err := f.course.UploadAttachment(ctx, "teacher", course.ID, "notes.txt", strings.NewReader("notes"), 5, "text/plain")
	require.NoError(t, err)
	assert.Equal(t, "notes.txt", uploaded.Name)

	require.NoError(t, f.course.DeleteAttachment(ctx, "teacher", course.ID, uploaded.ID))
	err = f.course.DeleteAttachment(ctx, "teacher", course.ID, uploaded.ID)
	assert.ErrorIs(t, err, util.ErrNotFound)

	_, err = f.course.AddAttachment(ctx, "teacher", course.ID, "empty", " ")
	assert.ErrorIs(t, err, util.ErrValidation)
}
