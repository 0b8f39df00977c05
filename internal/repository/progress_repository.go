package repository

import (
	"context"
	"errors"
	"time"

	"coursehub_backend/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ProgressRepository struct {
	DB *gorm.DB
}

func NewProgressRepository(db *gorm.DB) *ProgressRepository {
	return &ProgressRepository{DB: db}
}

func (r *ProgressRepository) WithTx(tx *gorm.DB) *ProgressRepository {
	return &ProgressRepository{DB: tx}
}

// FindByUserAndModule returns nil when the user has no record for the module.
func (r *ProgressRepository) FindByUserAndModule(ctx context.Context, userID, moduleID string) (*model.UserProgress, error) {
	var p model.UserProgress
	err := r.DB.WithContext(ctx).
		Where("user_id = ? AND module_id = ?", userID, moduleID).
		First(&p).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// FindByUserAndModules returns completion flags for the given modules in one query.
// Modules without a record are absent from the map.
func (r *ProgressRepository) FindByUserAndModules(ctx context.Context, userID string, moduleIDs []string) (map[string]bool, error) {
	statusMap := make(map[string]bool, len(moduleIDs))
	if len(moduleIDs) == 0 {
		return statusMap, nil
	}

	var rows []model.UserProgress
	err := r.DB.WithContext(ctx).
		Where("user_id = ? AND module_id IN ?", userID, moduleIDs).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}

	for _, p := range rows {
		statusMap[p.ModuleID] = p.IsCompleted
	}
	return statusMap, nil
}

// Upsert creates the (user, module) record on first write and updates it in place after.
// The unique index on (user_id, module_id) makes concurrent first writes converge.
func (r *ProgressRepository) Upsert(ctx context.Context, userID, moduleID string, isCompleted bool) (*model.UserProgress, error) {
	p := &model.UserProgress{
		UserID:      userID,
		ModuleID:    moduleID,
		IsCompleted: isCompleted,
	}
	err := r.DB.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}, {Name: "module_id"}},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"is_completed": isCompleted,
			"updated_at":   time.Now(),
		}),
	}).Create(p).Error
	if err != nil {
		return nil, err
	}

	// re-read so the caller sees the persisted id when the row already existed
	var saved model.UserProgress
	if err := r.DB.WithContext(ctx).
		Where("user_id = ? AND module_id = ?", userID, moduleID).
		First(&saved).Error; err != nil {
		return nil, err
	}
	return &saved, nil
}

type courseCount struct {
	CourseID string
	Total    int64
}

// CountCompletedByCourse counts the user's completed records on published modules, grouped
// by course, for every course in the batch.
func (r *ProgressRepository) CountCompletedByCourse(ctx context.Context, userID string, courseIDs []string) (map[string]int, error) {
	counts := make(map[string]int, len(courseIDs))
	if len(courseIDs) == 0 {
		return counts, nil
	}

	var rows []courseCount
	err := r.DB.WithContext(ctx).
		Table("user_progress").
		Select("modules.course_id AS course_id, COUNT(*) AS total").
		Joins("JOIN modules ON modules.id = user_progress.module_id").
		Where("user_progress.user_id = ?", userID).
		Where("user_progress.is_completed = ?", true).
		Where("modules.is_published = ?", true).
		Where("modules.course_id IN ?", courseIDs).
		Group("modules.course_id").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	for _, row := range rows {
		counts[row.CourseID] = int(row.Total)
	}
	return counts, nil
}

func (r *ProgressRepository) DeleteByModule(ctx context.Context, moduleID string) error {
	return r.DB.WithContext(ctx).Where("module_id = ?", moduleID).Delete(&model.UserProgress{}).Error
}
