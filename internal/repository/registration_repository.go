package repository

import (
	"context"
	"time"

	"coursehub_backend/internal/model"

	"gorm.io/gorm"
)

type RegistrationRepository struct {
	DB *gorm.DB
}

func NewRegistrationRepository(db *gorm.DB) *RegistrationRepository {
	return &RegistrationRepository{DB: db}
}

func (r *RegistrationRepository) Exists(ctx context.Context, userID, courseID string) (bool, error) {
	var count int64
	err := r.DB.WithContext(ctx).
		Model(&model.Registration{}).
		Where("user_id = ? AND course_id = ?", userID, courseID).
		Count(&count).Error
	return count > 0, err
}

func (r *RegistrationRepository) Create(ctx context.Context, reg *model.Registration) error {
	return r.DB.WithContext(ctx).Create(reg).Error
}

// ListCoursesByUser returns the published courses the user is registered in.
func (r *RegistrationRepository) ListCoursesByUser(ctx context.Context, userID string) ([]model.Course, error) {
	var courses []model.Course
	err := r.DB.WithContext(ctx).
		Model(&model.Course{}).
		Preload("Category").
		Joins("JOIN registrations ON registrations.course_id = courses.id").
		Where("registrations.user_id = ? AND courses.is_published = ?", userID, true).
		Order("registrations.created_at DESC").
		Find(&courses).Error
	return courses, err
}

// CourseRegistrations 单门课程的报名人数
type CourseRegistrations struct {
	CourseID string `json:"courseId"`
	Title    string `json:"title"`
	Total    int64  `json:"total"`
}

// CountByOwner counts registrations for every course owned by ownerID, including courses
// nobody has registered in yet.
func (r *RegistrationRepository) CountByOwner(ctx context.Context, ownerID string) ([]CourseRegistrations, error) {
	var rows []CourseRegistrations
	err := r.DB.WithContext(ctx).
		Table("courses").
		Select("courses.id AS course_id, courses.title AS title, COUNT(registrations.id) AS total").
		Joins("LEFT JOIN registrations ON registrations.course_id = courses.id").
		Where("courses.user_id = ?", ownerID).
		Group("courses.id, courses.title").
		Order("courses.title ASC").
		Scan(&rows).Error
	return rows, err
}

// LevelCount 按难度分组的数量
type LevelCount struct {
	Level string `json:"level"`
	Total int64  `json:"total"`
}

// CountByLevel 按课程难度统计 ownerID 名下课程的报名数，未设置难度的课程不计入
func (r *RegistrationRepository) CountByLevel(ctx context.Context, ownerID string) ([]LevelCount, error) {
	var rows []LevelCount
	err := r.DB.WithContext(ctx).
		Table("registrations").
		Select("courses.level AS level, COUNT(registrations.id) AS total").
		Joins("JOIN courses ON courses.id = registrations.course_id").
		Where("courses.user_id = ? AND courses.level <> ?", ownerID, "").
		Group("courses.level").
		Scan(&rows).Error
	return rows, err
}

// CreatedSince 返回 ownerID 名下课程自 since 起的报名时间
func (r *RegistrationRepository) CreatedSince(ctx context.Context, ownerID string, since time.Time) ([]time.Time, error) {
	var times []time.Time
	err := r.DB.WithContext(ctx).
		Table("registrations").
		Joins("JOIN courses ON courses.id = registrations.course_id").
		Where("courses.user_id = ? AND registrations.created_at >= ?", ownerID, since).
		Pluck("registrations.created_at", &times).Error
	return times, err
}
