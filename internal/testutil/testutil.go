// Package testutil builds sqlite-backed fixtures for repository, service and controller tests.
package testutil

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"coursehub_backend/internal/model"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// NewDB opens a private in-memory sqlite database with every table migrated.
func NewDB(t *testing.T) *gorm.DB {
	t.Helper()

	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	dsn := fmt.Sprintf("file:%s_%d?mode=memory&cache=shared&_foreign_keys=0", name, time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	// one connection keeps the in-memory database alive and serialises writers
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	require.NoError(t, db.AutoMigrate(model.All()...))
	return db
}

func float(v float64) *float64 { return &v }

// Course inserts a course owned by ownerID.
func Course(t *testing.T, db *gorm.DB, ownerID string, published bool) *model.Course {
	t.Helper()
	c := &model.Course{
		UserID:      ownerID,
		Title:       "Course " + model.GenerateUUID()[:8],
		IsPublished: published,
		Price:       float(0),
	}
	require.NoError(t, db.Create(c).Error)
	return c
}

// PublishableCourse inserts an unpublished course with every field Publish checks set.
func PublishableCourse(t *testing.T, db *gorm.DB, ownerID string) *model.Course {
	t.Helper()
	cat := &model.Category{Name: "Category " + model.GenerateUUID()[:8]}
	require.NoError(t, db.Create(cat).Error)

	c := &model.Course{
		UserID:          ownerID,
		Title:           "Go in practice",
		Description:     "Services and tooling",
		ImageURL:        "/uploads/images/cover.png",
		Price:           float(0),
		Level:           "beginner",
		PreviousSkills:  "none",
		DevelopedSkills: "go",
		CategoryID:      &cat.ID,
	}
	require.NoError(t, db.Create(c).Error)
	return c
}

// Module inserts a published module at position.
func Module(t *testing.T, db *gorm.DB, courseID string, position int) *model.Module {
	t.Helper()
	m := &model.Module{
		Title:       fmt.Sprintf("Module %d", position),
		Description: "content",
		VideoURL:    "/uploads/videos/m.mp4",
		Position:    position,
		IsPublished: true,
		CourseID:    courseID,
	}
	require.NoError(t, db.Create(m).Error)
	return m
}

// Evaluation inserts a published evaluation with the given number of questions. Each
// question has a correct answer first and a wrong one second.
func Evaluation(t *testing.T, db *gorm.DB, moduleID string, evalType model.EvaluationType, maxAttempts, questions int) *model.Evaluation {
	t.Helper()
	e := &model.Evaluation{
		ModuleID:    moduleID,
		Type:        evalType,
		MaxAttempts: maxAttempts,
		IsPublished: true,
	}
	require.NoError(t, db.Create(e).Error)

	for i := 1; i <= questions; i++ {
		q := &model.Question{
			Title:        fmt.Sprintf("Question %d", i),
			Position:     i,
			EvaluationID: e.ID,
			Answers: []model.Answer{
				{Title: fmt.Sprintf("Right %d", i), IsCorrect: true, Order: 1},
				{Title: fmt.Sprintf("Wrong %d", i), Order: 2},
			},
		}
		require.NoError(t, db.Create(q).Error)
		e.Questions = append(e.Questions, *q)
	}
	return e
}

func Enroll(t *testing.T, db *gorm.DB, userID, courseID string) {
	t.Helper()
	require.NoError(t, db.Create(&model.Registration{UserID: userID, CourseID: courseID}).Error)
}

func Complete(t *testing.T, db *gorm.DB, userID, moduleID string) {
	t.Helper()
	require.NoError(t, db.Create(&model.UserProgress{UserID: userID, ModuleID: moduleID, IsCompleted: true}).Error)
}
