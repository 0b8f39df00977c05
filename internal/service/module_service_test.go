package service

import (
	"context"
	"errors"
	"os"
	"strings"
	"testing"

	"coursehub_backend/internal/model"
	"coursehub_backend/internal/testutil"
	"coursehub_backend/internal/util"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestCreateModuleAppends(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	course := testutil.Course(t, f.db, "teacher", false)
	testutil.Module(t, f.db, course.ID, 7)

	m, err := f.module.Create(ctx, "teacher", course.ID, "  Intro  ")
	require.NoError(t, err)
	assert.Equal(t, "Intro", m.Title)
	assert.Equal(t, 8, m.Position)
	assert.False(t, m.IsPublished)

	_, err = f.module.Create(ctx, "teacher", course.ID, "   ")
	assert.ErrorIs(t, err, util.ErrValidation)

	_, err = f.module.Create(ctx, "intruder", course.ID, "Intro")
	assert.ErrorIs(t, err, util.ErrUnauthorized)
}

func TestReorderModules(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	course := testutil.Course(t, f.db, "teacher", false)
	a := testutil.Module(t, f.db, course.ID, 1)
	b := testutil.Module(t, f.db, course.ID, 2)

	err := f.module.Reorder(ctx, "teacher", course.ID, []ReorderItem{{ID: a.ID, Position: 20}, {ID: b.ID, Position: 10}})
	require.NoError(t, err)

	var modules []model.Module
	require.NoError(t, f.db.Where("course_id = ?", course.ID).Order("position ASC").Find(&modules).Error)
	require.Len(t, modules, 2)
	assert.Equal(t, b.ID, modules[0].ID)
	assert.Equal(t, a.ID, modules[1].ID)
}

func TestReorderRejectsForeignAndDuplicateModules(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	course := testutil.Course(t, f.db, "teacher", false)
	other := testutil.Course(t, f.db, "teacher", false)
	a := testutil.Module(t, f.db, course.ID, 1)
	foreign := testutil.Module(t, f.db, other.ID, 1)

	err := f.module.Reorder(ctx, "teacher", course.ID, []ReorderItem{{ID: a.ID, Position: 5}, {ID: foreign.ID, Position: 6}})
	assert.ErrorIs(t, err, util.ErrNotFound)

	// the whole reorder rolled back
	var reloaded model.Module
	require.NoError(t, f.db.First(&reloaded, "id = ?", a.ID).Error)
	assert.Equal(t, 1, reloaded.Position)

	err = f.module.Reorder(ctx, "teacher", course.ID, []ReorderItem{{ID: a.ID, Position: 1}, {ID: a.ID, Position: 2}})
	assert.ErrorIs(t, err, util.ErrValidation)
}

func TestReorderKeepsPositionsUnique(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	course := testutil.Course(t, f.db, "teacher", true)
	m1 := testutil.Module(t, f.db, course.ID, 1)
	m2 := testutil.Module(t, f.db, course.ID, 2)
	m3 := testutil.Module(t, f.db, course.ID, 3)

	tests := []struct {
		name  string
		items []ReorderItem
	}{
		{name: "same position twice in the request", items: []ReorderItem{{ID: m1.ID, Position: 1}, {ID: m2.ID, Position: 1}}},
		{name: "position held by a module outside the request", items: []ReorderItem{{ID: m1.ID, Position: 3}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := f.module.Reorder(ctx, "teacher", course.ID, tt.items)
			assert.ErrorIs(t, err, util.ErrValidation)

			positions := map[string]int{}
			var modules []model.Module
			require.NoError(t, f.db.Where("course_id = ?", course.ID).Find(&modules).Error)
			for _, m := range modules {
				positions[m.ID] = m.Position
			}
			assert.Equal(t, map[string]int{m1.ID: 1, m2.ID: 2, m3.ID: 3}, positions)
		})
	}

	next, err := f.module.ModuleRepo.FindNextPublished(ctx, course.ID, 1)
	require.NoError(t, err)
	require.NotNil(t, next)
	assert.Equal(t, m2.ID, next.ID)

	// swapping two modules in one request is fine
	err = f.module.Reorder(ctx, "teacher", course.ID, []ReorderItem{{ID: m1.ID, Position: 2}, {ID: m2.ID, Position: 1}})
	require.NoError(t, err)
}

func TestPublishModuleRequiresContent(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	course := testutil.Course(t, f.db, "teacher", false)

	m, err := f.module.Create(ctx, "teacher", course.ID, "Intro")
	require.NoError(t, err)

	_, err = f.module.Publish(ctx, "teacher", course.ID, m.ID)
	require.ErrorIs(t, err, util.ErrMissingFields)
	assert.Contains(t, err.Error(), "description")
	assert.Contains(t, err.Error(), "videoUrl")

	desc, video := "Basics", "/uploads/videos/intro.mp4"
	_, err = f.module.Update(ctx, "teacher", course.ID, m.ID, ModulePatch{Description: &desc, VideoURL: &video})
	require.NoError(t, err)

	published, err := f.module.Publish(ctx, "teacher", course.ID, m.ID)
	require.NoError(t, err)
	assert.True(t, published.IsPublished)
}

func TestUnpublishLastModuleUnpublishesCourse(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	course := testutil.Course(t, f.db, "teacher", true)
	a := testutil.Module(t, f.db, course.ID, 1)
	b := testutil.Module(t, f.db, course.ID, 2)

	_, err := f.module.Unpublish(ctx, "teacher", course.ID, a.ID)
	require.NoError(t, err)

	var reloaded model.Course
	require.NoError(t, f.db.First(&reloaded, "id = ?", course.ID).Error)
	assert.True(t, reloaded.IsPublished)

	_, err = f.module.Unpublish(ctx, "teacher", course.ID, b.ID)
	require.NoError(t, err)

	require.NoError(t, f.db.First(&reloaded, "id = ?", course.ID).Error)
	assert.False(t, reloaded.IsPublished)
}

func TestDeleteModuleCascades(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	s := setupEvaluation(t, f, 2, 2)
	testutil.Enroll(t, f.db, "learner", s.course.ID)
	_, err := s.submit(f, "learner", answers(s.evaluation, 2))
	require.NoError(t, err)

	require.NoError(t, f.module.Delete(ctx, "teacher", s.course.ID, s.module.ID))

	for _, table := range []interface{}{&model.Evaluation{}, &model.Question{}, &model.EvaluationResult{}, &model.UserProgress{}} {
		var count int64
		require.NoError(t, f.db.Model(table).Count(&count).Error)
		assert.Zero(t, count)
	}

	// the second module is still published, so the course stays listed
	var reloaded model.Course
	require.NoError(t, f.db.First(&reloaded, "id = ?", s.course.ID).Error)
	assert.True(t, reloaded.IsPublished)
}

func TestUploadVideo(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	course := testutil.Course(t, f.db, "teacher", false)
	m, err := f.module.Create(ctx, "teacher", course.ID, "Intro")
	require.NoError(t, err)

	updated, err := f.module.UploadVideo(ctx, "teacher", course.ID, m.ID, "intro.MP4", strings.NewReader("video bytes"), 11)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(updated.VideoURL, "/uploads/videos/"))
	assert.Equal(t, float64(42), updated.VideoDuration)

	path, ok := f.module.Storage.LocalPath(updated.VideoURL)
	require.True(t, ok)
	_, err = os.Stat(path)
	assert.NoError(t, err)

	_, err = f.module.UploadVideo(ctx, "teacher", course.ID, m.ID, "intro.exe", strings.NewReader("x"), 1)
	assert.ErrorIs(t, err, util.ErrInvalidVideoExt)
}

func TestUploadVideoDurationFailureKeepsUpload(t *testing.T) {
	f := newFixture(t)
	f.module.ReadDuration = func(string) (float64, error) { return 0, errors.New("ffmpeg missing") }
	ctx := context.Background()
	course := testutil.Course(t, f.db, "teacher", false)
	m, err := f.module.Create(ctx, "teacher", course.ID, "Intro")
	require.NoError(t, err)

	updated, err := f.module.UploadVideo(ctx, "teacher", course.ID, m.ID, "intro.webm", strings.NewReader("v"), 1)
	require.NoError(t, err)
	assert.NotEmpty(t, updated.VideoURL)
	assert.Zero(t, updated.VideoDuration)
}

func TestUpdateModuleTranscript(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	course := testutil.Course(t, f.db, "teacher", false)
	m, err := f.module.Create(ctx, "teacher", course.ID, "Intro")
	require.NoError(t, err)

	transcript := "En este módulo veremos..."
	updated, err := f.module.Update(ctx, "teacher", course.ID, m.ID, ModulePatch{VideoTranscript: &transcript})
	require.NoError(t, err)
	assert.Equal(t, transcript, updated.VideoTranscript)

	reloaded, err := f.module.Get(ctx, "teacher", course.ID, m.ID)
	require.NoError(t, err)
	assert.Equal(t, transcript, reloaded.VideoTranscript)
}

func TestUpdateModuleKeepsVideoWhenSaveFails(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	course := testutil.Course(t, f.db, "teacher", false)
	m, err := f.module.Create(ctx, "teacher", course.ID, "Intro")
	require.NoError(t, err)

	uploaded, err := f.module.UploadVideo(ctx, "teacher", course.ID, m.ID, "intro.mp4", strings.NewReader("video bytes"), 11)
	require.NoError(t, err)
	oldPath, ok := f.module.Storage.LocalPath(uploaded.VideoURL)
	require.True(t, ok)

	require.NoError(t, f.db.Callback().Update().Before("gorm:update").Register("test:fail_update", func(db *gorm.DB) {
		db.AddError(errors.New("disk full"))
	}))

	other := "https://cdn.example.com/intro.mp4"
	_, err = f.module.Update(ctx, "teacher", course.ID, m.ID, ModulePatch{VideoURL: &other})
	require.Error(t, err)

	_, err = os.Stat(oldPath)
	assert.NoError(t, err, "old video must survive a failed save")

	require.NoError(t, f.db.Callback().Update().Remove("test:fail_update"))
	_, err = f.module.Update(ctx, "teacher", course.ID, m.ID, ModulePatch{VideoURL: &other})
	require.NoError(t, err)

	_, err = os.Stat(oldPath)
	assert.True(t, os.IsNotExist(err))
}
