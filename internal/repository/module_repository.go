package repository

import (
	"context"
	"errors"

	"coursehub_backend/internal/model"
	"coursehub_backend/internal/util"

	"gorm.io/gorm"
)

type ModuleRepository struct {
	DB *gorm.DB
}

func NewModuleRepository(db *gorm.DB) *ModuleRepository {
	return &ModuleRepository{DB: db}
}

func (r *ModuleRepository) WithTx(tx *gorm.DB) *ModuleRepository {
	return &ModuleRepository{DB: tx}
}

func (r *ModuleRepository) Create(ctx context.Context, m *model.Module) error {
	return r.DB.WithContext(ctx).Create(m).Error
}

func (r *ModuleRepository) Save(ctx context.Context, m *model.Module) error {
	return r.DB.WithContext(ctx).Save(m).Error
}

// FindInCourse loads a module only when it belongs to courseID.
func (r *ModuleRepository) FindInCourse(ctx context.Context, courseID, moduleID string) (*model.Module, error) {
	var m model.Module
	err := r.DB.WithContext(ctx).
		Preload("Evaluation").
		Where("id = ? AND course_id = ?", moduleID, courseID).
		First(&m).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, util.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &m, nil
}

// ListByCourse returns all modules of a course in position order.
func (r *ModuleRepository) ListByCourse(ctx context.Context, courseID string) ([]model.Module, error) {
	var modules []model.Module
	err := r.DB.WithContext(ctx).
		Preload("Evaluation").
		Where("course_id = ?", courseID).
		Order("position ASC").Order("id ASC").
		Find(&modules).Error
	return modules, err
}

func (r *ModuleRepository) ListPublishedByCourse(ctx context.Context, courseID string) ([]model.Module, error) {
	var modules []model.Module
	err := r.DB.WithContext(ctx).
		Preload("Evaluation", "is_published = ?", true).
		Where("course_id = ? AND is_published = ?", courseID, true).
		Order("position ASC").Order("id ASC").
		Find(&modules).Error
	return modules, err
}

// FindNextPublished returns the first published module after position, or nil.
func (r *ModuleRepository) FindNextPublished(ctx context.Context, courseID string, position int) (*model.Module, error) {
	var m model.Module
	err := r.DB.WithContext(ctx).
		Where("course_id = ? AND is_published = ? AND position > ?", courseID, true, position).
		Order("position ASC").
		First(&m).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &m, nil
}

// MaxPosition returns the highest position in the course, 0 when it has no modules.
func (r *ModuleRepository) MaxPosition(ctx context.Context, courseID string) (int, error) {
	var max *int
	err := r.DB.WithContext(ctx).
		Model(&model.Module{}).
		Where("course_id = ?", courseID).
		Select("MAX(position)").
		Scan(&max).Error
	if err != nil || max == nil {
		return 0, err
	}
	return *max, nil
}

func (r *ModuleRepository) UpdatePosition(ctx context.Context, courseID, moduleID string, position int) (int64, error) {
	res := r.DB.WithContext(ctx).
		Model(&model.Module{}).
		Where("id = ? AND course_id = ?", moduleID, courseID).
		Update("position", position)
	return res.RowsAffected, res.Error
}

// DuplicatePositions 返回课程内被多个模块占用的位置
func (r *ModuleRepository) DuplicatePositions(ctx context.Context, courseID string) ([]int, error) {
	var positions []int
	err := r.DB.WithContext(ctx).
		Model(&model.Module{}).
		Where("course_id = ?", courseID).
		Group("position").
		Having("COUNT(*) > 1").
		Pluck("position", &positions).Error
	return positions, err
}

func (r *ModuleRepository) SetPublished(ctx context.Context, moduleID string, published bool) error {
	return r.DB.WithContext(ctx).
		Model(&model.Module{}).
		Where("id = ?", moduleID).
		Update("is_published", published).Error
}

func (r *ModuleRepository) CountPublished(ctx context.Context, courseID string) (int64, error) {
	var count int64
	err := r.DB.WithContext(ctx).
		Model(&model.Module{}).
		Where("course_id = ? AND is_published = ?", courseID, true).
		Count(&count).Error
	return count, err
}

// CountPublishedByCourse returns the number of published modules per course in one query.
// Courses without published modules are absent from the map.
func (r *ModuleRepository) CountPublishedByCourse(ctx context.Context, courseIDs []string) (map[string]int, error) {
	counts := make(map[string]int, len(courseIDs))
	if len(courseIDs) == 0 {
		return counts, nil
	}

	var rows []courseCount
	err := r.DB.WithContext(ctx).
		Model(&model.Module{}).
		Select("course_id, COUNT(*) AS total").
		Where("course_id IN ? AND is_published = ?", courseIDs, true).
		Group("course_id").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	for _, row := range rows {
		counts[row.CourseID] = int(row.Total)
	}
	return counts, nil
}

func (r *ModuleRepository) Delete(ctx context.Context, moduleID string) error {
	return r.DB.WithContext(ctx).Delete(&model.Module{}, "id = ?", moduleID).Error
}
