package service

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"coursehub_backend/internal/model"
	"coursehub_backend/internal/repository"
	"coursehub_backend/internal/util"
	"coursehub_backend/pkg/logger"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

type ModuleService struct {
	CourseRepo     *repository.CourseRepository
	ModuleRepo     *repository.ModuleRepository
	EvaluationRepo *repository.EvaluationRepository
	ProgressRepo   *repository.ProgressRepository
	Storage        *StorageService
	DB             *gorm.DB
	// ReadDuration 读取本地视频时长，测试中可替换
	ReadDuration func(path string) (float64, error)
}

func NewModuleService(
	courseRepo *repository.CourseRepository,
	moduleRepo *repository.ModuleRepository,
	evaluationRepo *repository.EvaluationRepository,
	progressRepo *repository.ProgressRepository,
	storage *StorageService,
	db *gorm.DB,
) *ModuleService {
	return &ModuleService{
		CourseRepo:     courseRepo,
		ModuleRepo:     moduleRepo,
		EvaluationRepo: evaluationRepo,
		ProgressRepo:   progressRepo,
		Storage:        storage,
		DB:             db,
		ReadDuration:   videoDurationOf,
	}
}

func videoDurationOf(path string) (float64, error) {
	info, err := util.GetVideoInfo(path)
	if err != nil {
		return 0, err
	}
	return info.Duration, nil
}

// ModulePatch 模块可修改字段，nil 表示不修改
type ModulePatch struct {
	Title           *string `json:"title"`
	Description     *string `json:"description"`
	VideoURL        *string `json:"videoUrl"`
	VideoTranscript *string `json:"videoTranscript"`
	IsEnabled       *bool   `json:"isEnabled"`
}

// ReorderItem 模块的新位置
type ReorderItem struct {
	ID       string `json:"id" binding:"required"`
	Position int    `json:"position"`
}

func (s *ModuleService) owned(ctx context.Context, ownerID, courseID string) error {
	_, err := s.CourseRepo.FindOwned(ctx, courseID, ownerID)
	return err
}

// Create 在课程末尾追加模块
func (s *ModuleService) Create(ctx context.Context, ownerID, courseID, title string) (*model.Module, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, fmt.Errorf("%w: title is required", util.ErrValidation)
	}
	if err := s.owned(ctx, ownerID, courseID); err != nil {
		return nil, err
	}

	last, err := s.ModuleRepo.MaxPosition(ctx, courseID)
	if err != nil {
		return nil, err
	}

	module := &model.Module{
		Title:    title,
		CourseID: courseID,
		Position: last + 1,
	}
	if err := s.ModuleRepo.Create(ctx, module); err != nil {
		return nil, err
	}
	return module, nil
}

func (s *ModuleService) Get(ctx context.Context, ownerID, courseID, moduleID string) (*model.Module, error) {
	if err := s.owned(ctx, ownerID, courseID); err != nil {
		return nil, err
	}
	return s.ModuleRepo.FindInCourse(ctx, courseID, moduleID)
}

func (s *ModuleService) Update(ctx context.Context, ownerID, courseID, moduleID string, patch ModulePatch) (*model.Module, error) {
	module, err := s.Get(ctx, ownerID, courseID, moduleID)
	if err != nil {
		return nil, err
	}

	if patch.Title != nil {
		title := strings.TrimSpace(*patch.Title)
		if title == "" {
			return nil, fmt.Errorf("%w: title cannot be empty", util.ErrValidation)
		}
		module.Title = title
	}
	if patch.Description != nil {
		module.Description = *patch.Description
	}
	var staleVideo string
	if patch.VideoURL != nil && *patch.VideoURL != module.VideoURL {
		staleVideo = module.VideoURL
		module.VideoURL = *patch.VideoURL
		module.VideoDuration = 0
	}
	if patch.VideoTranscript != nil {
		module.VideoTranscript = *patch.VideoTranscript
	}
	if patch.IsEnabled != nil {
		module.IsEnabled = *patch.IsEnabled
	}

	evaluation := module.Evaluation
	module.Evaluation = nil
	if err := s.ModuleRepo.Save(ctx, module); err != nil {
		return nil, err
	}
	module.Evaluation = evaluation

	// 保存成功后再删除旧视频
	if staleVideo != "" {
		s.Storage.Remove(ctx, staleVideo)
	}
	return module, nil
}

// UploadVideo 保存视频并关联到模块，本地文件读取时长，读取失败时长为 0
func (s *ModuleService) UploadVideo(ctx context.Context, ownerID, courseID, moduleID, filename string, reader io.Reader, size int64) (*model.Module, error) {
	if !util.HasExtension(filename, util.AllowedVideoExtensions) {
		return nil, fmt.Errorf("%w: %s", util.ErrInvalidVideoExt, filename)
	}

	module, err := s.Get(ctx, ownerID, courseID, moduleID)
	if err != nil {
		return nil, err
	}

	contentType := util.MimeVideo + strings.TrimPrefix(strings.ToLower(filepath.Ext(filename)), ".")

	url, err := s.Storage.Upload(ctx, util.ObjectName("videos", filename), reader, size, contentType)
	if err != nil {
		return nil, err
	}

	var duration float64
	if path, ok := s.Storage.LocalPath(url); ok && s.ReadDuration != nil {
		duration, err = s.ReadDuration(path)
		if err != nil {
			logger.Log.Warn("Failed to read video duration",
				zap.String("moduleId", moduleID),
				zap.String("path", path),
				zap.Error(err))
			duration = 0
		}
	}

	staleVideo := module.VideoURL
	module.VideoURL = url
	module.VideoDuration = duration

	evaluation := module.Evaluation
	module.Evaluation = nil
	if err := s.ModuleRepo.Save(ctx, module); err != nil {
		s.Storage.Remove(ctx, url)
		return nil, err
	}
	module.Evaluation = evaluation

	s.Storage.Remove(ctx, staleVideo)
	return module, nil
}

// Reorder 批量调整位置，所有模块必须属于该课程，位置不能重复
func (s *ModuleService) Reorder(ctx context.Context, ownerID, courseID string, items []ReorderItem) error {
	if err := s.owned(ctx, ownerID, courseID); err != nil {
		return err
	}
	if len(items) == 0 {
		return nil
	}

	seen := make(map[string]bool, len(items))
	taken := make(map[int]bool, len(items))
	for _, item := range items {
		if seen[item.ID] {
			return fmt.Errorf("%w: module %s listed twice", util.ErrValidation, item.ID)
		}
		if taken[item.Position] {
			return fmt.Errorf("%w: position %d assigned twice", util.ErrValidation, item.Position)
		}
		seen[item.ID] = true
		taken[item.Position] = true
	}

	return s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		modules := s.ModuleRepo.WithTx(tx)
		for _, item := range items {
			affected, err := modules.UpdatePosition(ctx, courseID, item.ID, item.Position)
			if err != nil {
				return err
			}
			if affected == 0 {
				return fmt.Errorf("%w: module %s is not part of the course", util.ErrNotFound, item.ID)
			}
		}

		// 未出现在请求中的模块可能已占用目标位置
		dups, err := modules.DuplicatePositions(ctx, courseID)
		if err != nil {
			return err
		}
		if len(dups) > 0 {
			return fmt.Errorf("%w: positions %v are used by more than one module", util.ErrValidation, dups)
		}
		return nil
	})
}

// Publish 需要标题、描述和视频
func (s *ModuleService) Publish(ctx context.Context, ownerID, courseID, moduleID string) (*model.Module, error) {
	module, err := s.Get(ctx, ownerID, courseID, moduleID)
	if err != nil {
		return nil, err
	}

	var missing []string
	if strings.TrimSpace(module.Title) == "" {
		missing = append(missing, "title")
	}
	if strings.TrimSpace(module.Description) == "" {
		missing = append(missing, "description")
	}
	if module.VideoURL == "" {
		missing = append(missing, "videoUrl")
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("%w: %s", util.ErrMissingFields, strings.Join(missing, ", "))
	}

	if err := s.ModuleRepo.SetPublished(ctx, moduleID, true); err != nil {
		return nil, err
	}
	module.IsPublished = true
	return module, nil
}

// Unpublish 取消发布模块，课程没有已发布模块时一并取消发布
func (s *ModuleService) Unpublish(ctx context.Context, ownerID, courseID, moduleID string) (*model.Module, error) {
	module, err := s.Get(ctx, ownerID, courseID, moduleID)
	if err != nil {
		return nil, err
	}

	err = s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.ModuleRepo.WithTx(tx).SetPublished(ctx, moduleID, false); err != nil {
			return err
		}
		return syncCoursePublication(ctx, s.CourseRepo.WithTx(tx), s.ModuleRepo.WithTx(tx), courseID)
	})
	if err != nil {
		return nil, err
	}
	module.IsPublished = false
	return module, nil
}

// Delete 删除模块及其测评和进度记录
func (s *ModuleService) Delete(ctx context.Context, ownerID, courseID, moduleID string) error {
	module, err := s.Get(ctx, ownerID, courseID, moduleID)
	if err != nil {
		return err
	}

	err = s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if module.Evaluation != nil {
			if err := s.EvaluationRepo.WithTx(tx).Delete(ctx, module.Evaluation.ID); err != nil {
				return err
			}
		}
		if err := s.ProgressRepo.WithTx(tx).DeleteByModule(ctx, moduleID); err != nil {
			return err
		}
		if err := s.ModuleRepo.WithTx(tx).Delete(ctx, moduleID); err != nil {
			return err
		}
		return syncCoursePublication(ctx, s.CourseRepo.WithTx(tx), s.ModuleRepo.WithTx(tx), courseID)
	})
	if err != nil {
		return err
	}

	s.Storage.Remove(ctx, module.VideoURL)
	return nil
}

// syncCoursePublication 课程没有已发布模块时取消发布
func syncCoursePublication(ctx context.Context, courses *repository.CourseRepository, modules *repository.ModuleRepository, courseID string) error {
	count, err := modules.CountPublished(ctx, courseID)
	if err != nil {
		return err
	}
	if count > 0 {
		return nil
	}
	return courses.SetPublished(ctx, courseID, false)
}
