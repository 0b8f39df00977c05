package service

import (
	"testing"

	"coursehub_backend/internal/config"
	"coursehub_backend/internal/grading"
	"coursehub_backend/internal/repository"
	"coursehub_backend/internal/testutil"

	"gorm.io/gorm"
)

type fixture struct {
	db         *gorm.DB
	progress   *ProgressService
	course     *CourseService
	module     *ModuleService
	evaluation *EvaluationService
	authoring  *EvaluationAuthoringService
	enrollment *EnrollmentService
	dashboard  *DashboardService
	analytics  *AnalyticsService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db := testutil.NewDB(t)

	courses := repository.NewCourseRepository(db)
	categories := repository.NewCategoryRepository(db)
	attachments := repository.NewAttachmentRepository(db)
	registrations := repository.NewRegistrationRepository(db)
	modules := repository.NewModuleRepository(db)
	progressRepo := repository.NewProgressRepository(db)
	evaluations := repository.NewEvaluationRepository(db)
	results := repository.NewEvaluationResultRepository(db)

	storage := NewStorageService(&config.Config{Storage: config.StorageConfig{Type: "local", LocalPath: t.TempDir()}})
	progress := NewProgressService(modules, progressRepo, nil, 0)

	moduleService := NewModuleService(courses, modules, evaluations, progressRepo, storage, db)
	moduleService.ReadDuration = func(string) (float64, error) { return 42, nil }

	return &fixture{
		db:       db,
		progress: progress,
		course: NewCourseService(courses, categories, attachments, modules, progressRepo, registrations,
			progress, storage, db),
		module: moduleService,
		evaluation: NewEvaluationService(courses, modules, evaluations, results, progressRepo, registrations,
			progress, grading.NewScorer(nil), db),
		authoring:  NewEvaluationAuthoringService(courses, modules, evaluations, db),
		enrollment: NewEnrollmentService(courses, registrations),
		dashboard:  NewDashboardService(registrations, progress),
		analytics:  NewAnalyticsService(courses, registrations),
	}
}
