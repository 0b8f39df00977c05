package service

import (
	"context"
	"fmt"
	"io"
	"strings"

	"coursehub_backend/internal/model"
	"coursehub_backend/internal/repository"
	"coursehub_backend/internal/util"

	"gorm.io/gorm"
)

type CourseService struct {
	CourseRepo       *repository.CourseRepository
	CategoryRepo     *repository.CategoryRepository
	AttachmentRepo   *repository.AttachmentRepository
	ModuleRepo       *repository.ModuleRepository
	ProgressRepo     *repository.ProgressRepository
	RegistrationRepo *repository.RegistrationRepository
	ProgressService  *ProgressService
	Storage          *StorageService
	DB               *gorm.DB
}

func NewCourseService(
	courseRepo *repository.CourseRepository,
	categoryRepo *repository.CategoryRepository,
	attachmentRepo *repository.AttachmentRepository,
	moduleRepo *repository.ModuleRepository,
	progressRepo *repository.ProgressRepository,
	registrationRepo *repository.RegistrationRepository,
	progressService *ProgressService,
	storage *StorageService,
	db *gorm.DB,
) *CourseService {
	return &CourseService{
		CourseRepo:       courseRepo,
		CategoryRepo:     categoryRepo,
		AttachmentRepo:   attachmentRepo,
		ModuleRepo:       moduleRepo,
		ProgressRepo:     progressRepo,
		RegistrationRepo: registrationRepo,
		ProgressService:  progressService,
		Storage:          storage,
		DB:               db,
	}
}

// CoursePatch 课程可修改字段，nil 表示不修改
type CoursePatch struct {
	Title           *string  `json:"title"`
	Description     *string  `json:"description"`
	ImageURL        *string  `json:"imageUrl"`
	Price           *float64 `json:"price"`
	Level           *string  `json:"level"`
	PreviousSkills  *string  `json:"previousSkills"`
	DevelopedSkills *string  `json:"developedSkills"`
	CategoryID      *string  `json:"categoryId"`
}

// CatalogCourse 课程目录条目
type CatalogCourse struct {
	model.Course
	ModuleCount int  `json:"moduleCount"`
	Progress    *int `json:"progress,omitempty"`
	IsEnrolled  bool `json:"isEnrolled"`
}

// CourseOutline 学员视角的课程页
type CourseOutline struct {
	Course     *model.Course `json:"course"`
	IsEnrolled bool          `json:"isEnrolled"`
	Progress   int           `json:"progress"`
	Modules    []OutlineItem `json:"modules"`
}

func (s *CourseService) Create(ctx context.Context, ownerID, title string) (*model.Course, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, fmt.Errorf("%w: title is required", util.ErrValidation)
	}

	course := &model.Course{UserID: ownerID, Title: title}
	if err := s.CourseRepo.Create(ctx, course); err != nil {
		return nil, err
	}
	return course, nil
}

func (s *CourseService) ListOwned(ctx context.Context, ownerID string) ([]model.Course, error) {
	return s.CourseRepo.ListByOwner(ctx, ownerID)
}

func (s *CourseService) Get(ctx context.Context, ownerID, courseID string) (*model.Course, error) {
	return s.CourseRepo.FindOwned(ctx, courseID, ownerID)
}

func (s *CourseService) Update(ctx context.Context, ownerID, courseID string, patch CoursePatch) (*model.Course, error) {
	course, err := s.CourseRepo.FindOwned(ctx, courseID, ownerID)
	if err != nil {
		return nil, err
	}

	fields := map[string]interface{}{}
	if patch.Title != nil {
		title := strings.TrimSpace(*patch.Title)
		if title == "" {
			return nil, fmt.Errorf("%w: title cannot be empty", util.ErrValidation)
		}
		fields["title"] = title
	}
	if patch.Description != nil {
		fields["description"] = *patch.Description
	}
	if patch.ImageURL != nil {
		if *patch.ImageURL != course.ImageURL {
			s.Storage.Remove(ctx, course.ImageURL)
		}
		fields["image_url"] = *patch.ImageURL
	}
	if patch.Price != nil {
		if *patch.Price < 0 {
			return nil, fmt.Errorf("%w: price cannot be negative", util.ErrValidation)
		}
		fields["price"] = *patch.Price
	}
	if patch.Level != nil {
		fields["level"] = *patch.Level
	}
	if patch.PreviousSkills != nil {
		fields["previous_skills"] = *patch.PreviousSkills
	}
	if patch.DevelopedSkills != nil {
		fields["developed_skills"] = *patch.DevelopedSkills
	}
	if patch.CategoryID != nil {
		exists, err := s.CategoryRepo.Exists(ctx, *patch.CategoryID)
		if err != nil {
			return nil, err
		}
		if !exists {
			return nil, fmt.Errorf("%w: unknown category", util.ErrValidation)
		}
		fields["category_id"] = *patch.CategoryID
	}

	if len(fields) > 0 {
		if err := s.CourseRepo.Updates(ctx, courseID, fields); err != nil {
			return nil, err
		}
	}
	return s.CourseRepo.FindByID(ctx, courseID)
}

// UploadImage 保存封面图并设置到课程
func (s *CourseService) UploadImage(ctx context.Context, ownerID, courseID, filename string, reader io.Reader, size int64, contentType string) (*model.Course, error) {
	if !util.HasExtension(filename, util.AllowedImageExtensions) {
		return nil, fmt.Errorf("%w: %s", util.ErrInvalidFileType, filename)
	}
	if _, err := s.CourseRepo.FindOwned(ctx, courseID, ownerID); err != nil {
		return nil, err
	}

	body, size, err := util.FitImage(reader, filename, util.CoverMaxWidth, util.CoverMaxHeight)
	if err != nil {
		return nil, err
	}

	url, err := s.Storage.Upload(ctx, util.ObjectName("images", filename), body, size, contentType)
	if err != nil {
		return nil, err
	}
	return s.Update(ctx, ownerID, courseID, CoursePatch{ImageURL: &url})
}

// Publish 检查课程信息是否完整，缺失字段一次性返回
func (s *CourseService) Publish(ctx context.Context, ownerID, courseID string) (*model.Course, error) {
	course, err := s.CourseRepo.FindOwned(ctx, courseID, ownerID)
	if err != nil {
		return nil, err
	}

	published, err := s.ModuleRepo.CountPublished(ctx, courseID)
	if err != nil {
		return nil, err
	}
	if missing := missingCourseFields(course, published); len(missing) > 0 {
		return nil, fmt.Errorf("%w: %s", util.ErrMissingFields, strings.Join(missing, ", "))
	}

	if err := s.CourseRepo.SetPublished(ctx, courseID, true); err != nil {
		return nil, err
	}
	course.IsPublished = true
	return course, nil
}

func missingCourseFields(course *model.Course, publishedModules int64) []string {
	var missing []string
	check := func(name, value string) {
		if strings.TrimSpace(value) == "" {
			missing = append(missing, name)
		}
	}
	check("title", course.Title)
	check("description", course.Description)
	check("level", course.Level)
	check("previousSkills", course.PreviousSkills)
	check("developedSkills", course.DevelopedSkills)
	check("imageUrl", course.ImageURL)
	if course.CategoryID == nil || *course.CategoryID == "" {
		missing = append(missing, "categoryId")
	}
	if course.Price == nil {
		missing = append(missing, "price")
	}
	if publishedModules == 0 {
		missing = append(missing, "publishedModule")
	}
	return missing
}

func (s *CourseService) Unpublish(ctx context.Context, ownerID, courseID string) (*model.Course, error) {
	course, err := s.CourseRepo.FindOwned(ctx, courseID, ownerID)
	if err != nil {
		return nil, err
	}
	if err := s.CourseRepo.SetPublished(ctx, courseID, false); err != nil {
		return nil, err
	}
	course.IsPublished = false
	return course, nil
}

// Delete 删除课程及其下所有数据，记录删除后再尽力清理存储文件
func (s *CourseService) Delete(ctx context.Context, ownerID, courseID string) error {
	course, err := s.CourseRepo.FindOwned(ctx, courseID, ownerID)
	if err != nil {
		return err
	}
	if err := s.CourseRepo.Delete(ctx, courseID); err != nil {
		return err
	}

	s.Storage.Remove(ctx, course.ImageURL)
	for _, a := range course.Attachments {
		s.Storage.Remove(ctx, a.URL)
	}
	for _, m := range course.Modules {
		s.Storage.Remove(ctx, m.VideoURL)
	}
	return nil
}

func (s *CourseService) ListCategories(ctx context.Context) ([]model.Category, error) {
	return s.CategoryRepo.List(ctx)
}

func (s *CourseService) AddAttachment(ctx context.Context, ownerID, courseID, name, url string) (*model.Attachment, error) {
	if strings.TrimSpace(url) == "" {
		return nil, fmt.Errorf("%w: url is required", util.ErrValidation)
	}
	if _, err := s.CourseRepo.FindOwned(ctx, courseID, ownerID); err != nil {
		return nil, err
	}
	if name == "" {
		name = url[strings.LastIndex(url, "/")+1:]
	}

	attachment := &model.Attachment{Name: name, URL: url, CourseID: courseID}
	if err := s.AttachmentRepo.Create(ctx, attachment); err != nil {
		return nil, err
	}
	return attachment, nil
}

func (s *CourseService) UploadAttachment(ctx context.Context, ownerID, courseID, filename string, reader io.Reader, size int64, contentType string) (*model.Attachment, error) {
	if _, err := s.CourseRepo.FindOwned(ctx, courseID, ownerID); err != nil {
		return nil, err
	}
	url, err := s.Storage.Upload(ctx, util.ObjectName("attachments", filename), reader, size, contentType)
	if err != nil {
		return nil, err
	}
	return s.AddAttachment(ctx, ownerID, courseID, filename, url)
}

func (s *CourseService) DeleteAttachment(ctx context.Context, ownerID, courseID, attachmentID string) error {
	if _, err := s.CourseRepo.FindOwned(ctx, courseID, ownerID); err != nil {
		return err
	}
	attachment, err := s.AttachmentRepo.FindInCourse(ctx, courseID, attachmentID)
	if err != nil {
		return err
	}
	if err := s.AttachmentRepo.Delete(ctx, attachmentID); err != nil {
		return err
	}
	s.Storage.Remove(ctx, attachment.URL)
	return nil
}

// Catalogue 已发布课程目录，登录用户的进度一次批量计算
func (s *CourseService) Catalogue(ctx context.Context, userID string, filter repository.CatalogFilter) ([]CatalogCourse, error) {
	courses, err := s.CourseRepo.ListPublished(ctx, filter)
	if err != nil {
		return nil, err
	}

	items := make([]CatalogCourse, 0, len(courses))
	ids := make([]string, 0, len(courses))
	for _, c := range courses {
		ids = append(ids, c.ID)
	}

	var progress map[string]int
	enrolled := map[string]bool{}
	if userID != "" && len(ids) > 0 {
		registered, err := s.RegistrationRepo.ListCoursesByUser(ctx, userID)
		if err != nil {
			return nil, err
		}
		for _, c := range registered {
			enrolled[c.ID] = true
		}
		progress = s.ProgressService.ComputeProgress(ctx, userID, ids)
	}

	for _, c := range courses {
		item := CatalogCourse{Course: c, ModuleCount: len(c.Modules), IsEnrolled: enrolled[c.ID]}
		item.Course.Modules = nil
		if enrolled[c.ID] {
			p := progress[c.ID]
			item.Progress = &p
		}
		items = append(items, item)
	}
	return items, nil
}

// GetOutline 返回已发布课程的大纲，标注每个模块的完成、解锁和测评状态
func (s *CourseService) GetOutline(ctx context.Context, userID, courseID string) (*CourseOutline, error) {
	course, err := s.CourseRepo.FindPublished(ctx, courseID)
	if err != nil {
		return nil, err
	}

	modules, err := s.ModuleRepo.ListPublishedByCourse(ctx, courseID)
	if err != nil {
		return nil, err
	}

	enrolled, err := s.RegistrationRepo.Exists(ctx, userID, courseID)
	if err != nil {
		return nil, err
	}

	moduleIDs := make([]string, 0, len(modules))
	for _, m := range modules {
		moduleIDs = append(moduleIDs, m.ID)
	}
	completion, err := s.ProgressRepo.FindByUserAndModules(ctx, userID, moduleIDs)
	if err != nil {
		return nil, err
	}

	return &CourseOutline{
		Course:     course,
		IsEnrolled: enrolled,
		Progress:   s.ProgressService.GetCourseProgress(ctx, userID, courseID),
		Modules:    BuildOutline(modules, completion, enrolled),
	}, nil
}
