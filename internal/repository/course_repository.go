package repository

import (
	"context"
	"errors"

	"coursehub_backend/internal/model"
	"coursehub_backend/internal/util"

	"gorm.io/gorm"
)

type CourseRepository struct {
	DB *gorm.DB
}

func NewCourseRepository(db *gorm.DB) *CourseRepository {
	return &CourseRepository{DB: db}
}

func (r *CourseRepository) WithTx(tx *gorm.DB) *CourseRepository {
	return &CourseRepository{DB: tx}
}

// CatalogFilter 课程目录查询条件
type CatalogFilter struct {
	Title      string
	CategoryID string
}

func (r *CourseRepository) Create(ctx context.Context, course *model.Course) error {
	return r.DB.WithContext(ctx).Create(course).Error
}

func (r *CourseRepository) FindByID(ctx context.Context, id string) (*model.Course, error) {
	var course model.Course
	err := r.DB.WithContext(ctx).
		Preload("Category").
		Preload("Attachments", func(db *gorm.DB) *gorm.DB {
			return db.Order("created_at DESC")
		}).
		Preload("Modules", func(db *gorm.DB) *gorm.DB {
			return db.Order("position ASC")
		}).
		First(&course, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, util.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &course, nil
}

// FindOwned loads a course only when ownerID is its author.
func (r *CourseRepository) FindOwned(ctx context.Context, id, ownerID string) (*model.Course, error) {
	course, err := r.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if course.UserID != ownerID {
		return nil, util.ErrUnauthorized
	}
	return course, nil
}

func (r *CourseRepository) FindPublished(ctx context.Context, id string) (*model.Course, error) {
	var course model.Course
	err := r.DB.WithContext(ctx).
		Where("id = ? AND is_published = ?", id, true).
		First(&course).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, util.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &course, nil
}

func (r *CourseRepository) Updates(ctx context.Context, id string, fields map[string]interface{}) error {
	return r.DB.WithContext(ctx).
		Model(&model.Course{}).
		Where("id = ?", id).
		Updates(fields).Error
}

func (r *CourseRepository) SetPublished(ctx context.Context, id string, published bool) error {
	return r.DB.WithContext(ctx).
		Model(&model.Course{}).
		Where("id = ?", id).
		Update("is_published", published).Error
}

func (r *CourseRepository) ListByOwner(ctx context.Context, ownerID string) ([]model.Course, error) {
	var courses []model.Course
	err := r.DB.WithContext(ctx).
		Where("user_id = ?", ownerID).
		Order("created_at DESC").
		Find(&courses).Error
	return courses, err
}

// CountByLevel 按难度统计 ownerID 的课程数，未设置难度的课程不计入
func (r *CourseRepository) CountByLevel(ctx context.Context, ownerID string) ([]LevelCount, error) {
	var rows []LevelCount
	err := r.DB.WithContext(ctx).
		Model(&model.Course{}).
		Select("level, COUNT(*) AS total").
		Where("user_id = ? AND level <> ?", ownerID, "").
		Group("level").
		Scan(&rows).Error
	return rows, err
}

// ListPublished returns the public catalogue, newest first.
func (r *CourseRepository) ListPublished(ctx context.Context, filter CatalogFilter) ([]model.Course, error) {
	var courses []model.Course
	query := r.DB.WithContext(ctx).
		Preload("Category").
		Preload("Modules", "is_published = ?", true).
		Where("is_published = ?", true)

	if filter.Title != "" {
		query = query.Where("title LIKE ?", "%"+filter.Title+"%")
	}
	if filter.CategoryID != "" {
		query = query.Where("category_id = ?", filter.CategoryID)
	}

	err := query.Order("created_at DESC").Find(&courses).Error
	return courses, err
}

// Delete removes the course with its modules, evaluations, attempts, progress,
// attachments and registrations in one transaction.
func (r *CourseRepository) Delete(ctx context.Context, id string) error {
	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var moduleIDs []string
		if err := tx.Model(&model.Module{}).Where("course_id = ?", id).Pluck("id", &moduleIDs).Error; err != nil {
			return err
		}
		if len(moduleIDs) > 0 {
			var evaluationIDs []string
			if err := tx.Model(&model.Evaluation{}).Where("module_id IN ?", moduleIDs).Pluck("id", &evaluationIDs).Error; err != nil {
				return err
			}
			evaluations := NewEvaluationRepository(tx)
			for _, evaluationID := range evaluationIDs {
				if err := evaluations.deleteCascade(tx, evaluationID); err != nil {
					return err
				}
			}
			if err := tx.Where("module_id IN ?", moduleIDs).Delete(&model.UserProgress{}).Error; err != nil {
				return err
			}
			if err := tx.Where("course_id = ?", id).Delete(&model.Module{}).Error; err != nil {
				return err
			}
		}
		if err := tx.Where("course_id = ?", id).Delete(&model.Attachment{}).Error; err != nil {
			return err
		}
		if err := tx.Where("course_id = ?", id).Delete(&model.Registration{}).Error; err != nil {
			return err
		}
		return tx.Delete(&model.Course{}, "id = ?", id).Error
	})
}

type CategoryRepository struct {
	DB *gorm.DB
}

func NewCategoryRepository(db *gorm.DB) *CategoryRepository {
	return &CategoryRepository{DB: db}
}

func (r *CategoryRepository) List(ctx context.Context) ([]model.Category, error) {
	var categories []model.Category
	err := r.DB.WithContext(ctx).Order("name ASC").Find(&categories).Error
	return categories, err
}

func (r *CategoryRepository) Exists(ctx context.Context, id string) (bool, error) {
	var count int64
	err := r.DB.WithContext(ctx).Model(&model.Category{}).Where("id = ?", id).Count(&count).Error
	return count > 0, err
}

// EnsureNames inserts the categories that are missing and returns how many were created.
func (r *CategoryRepository) EnsureNames(ctx context.Context, names []string) (int, error) {
	created := 0
	for _, name := range names {
		var count int64
		if err := r.DB.WithContext(ctx).Model(&model.Category{}).Where("name = ?", name).Count(&count).Error; err != nil {
			return created, err
		}
		if count > 0 {
			continue
		}
		if err := r.DB.WithContext(ctx).Create(&model.Category{Name: name}).Error; err != nil {
			return created, err
		}
		created++
	}
	return created, nil
}

type AttachmentRepository struct {
	DB *gorm.DB
}

func NewAttachmentRepository(db *gorm.DB) *AttachmentRepository {
	return &AttachmentRepository{DB: db}
}

func (r *AttachmentRepository) Create(ctx context.Context, a *model.Attachment) error {
	return r.DB.WithContext(ctx).Create(a).Error
}

func (r *AttachmentRepository) FindInCourse(ctx context.Context, courseID, id string) (*model.Attachment, error) {
	var a model.Attachment
	err := r.DB.WithContext(ctx).Where("id = ? AND course_id = ?", id, courseID).First(&a).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, util.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &a, nil
}

func (r *AttachmentRepository) Delete(ctx context.Context, id string) error {
	return r.DB.WithContext(ctx).Delete(&model.Attachment{}, "id = ?", id).Error
}
