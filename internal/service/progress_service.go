package service

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"coursehub_backend/internal/grading"
	"coursehub_backend/internal/model"
	"coursehub_backend/internal/repository"
	"coursehub_backend/pkg/logger"
	"coursehub_backend/pkg/monitoring"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

const defaultProgressCacheTTL = 30 * time.Second

type ProgressService struct {
	ModuleRepo   *repository.ModuleRepository
	ProgressRepo *repository.ProgressRepository
	// Cache 可选，nil 时不缓存
	Cache    *redis.Client
	CacheTTL time.Duration
}

func NewProgressService(
	moduleRepo *repository.ModuleRepository,
	progressRepo *repository.ProgressRepository,
	cache *redis.Client,
	cacheTTL time.Duration,
) *ProgressService {
	if cacheTTL <= 0 {
		cacheTTL = defaultProgressCacheTTL
	}
	return &ProgressService{
		ModuleRepo:   moduleRepo,
		ProgressRepo: progressRepo,
		Cache:        cache,
		CacheTTL:     cacheTTL,
	}
}

func progressCacheKey(userID, courseID string) string {
	return fmt.Sprintf("progress:%s:%s", userID, courseID)
}

// ComputeProgress 批量计算用户在各课程的完成百分比
// 百分比为 round(100*已完成/已发布模块数)，没有已发布模块的课程为 0
// 整批只需两次分组查询，读取失败时记录日志并返回空 map，调用方按 0 展示
func (s *ProgressService) ComputeProgress(ctx context.Context, userID string, courseIDs []string) map[string]int {
	result := make(map[string]int, len(courseIDs))
	ids := uniqueIDs(courseIDs)
	if len(ids) == 0 {
		return result
	}
	monitoring.ProgressBatchSize.Observe(float64(len(ids)))

	missing := s.readCache(ctx, userID, ids, result)
	if len(missing) == 0 {
		return result
	}

	totals, err := s.ModuleRepo.CountPublishedByCourse(ctx, missing)
	if err != nil {
		logger.Log.Error("Failed to count published modules",
			zap.String("userId", userID),
			zap.Strings("courseIds", missing),
			zap.Error(err))
		return map[string]int{}
	}

	completed, err := s.ProgressRepo.CountCompletedByCourse(ctx, userID, missing)
	if err != nil {
		logger.Log.Error("Failed to count completed modules",
			zap.String("userId", userID),
			zap.Strings("courseIds", missing),
			zap.Error(err))
		return map[string]int{}
	}

	computed := make(map[string]int, len(missing))
	for _, courseID := range missing {
		computed[courseID] = grading.Percent(completed[courseID], totals[courseID])
		result[courseID] = computed[courseID]
	}
	s.writeCache(ctx, userID, computed)

	return result
}

// GetCourseProgress 单门课程的 ComputeProgress
func (s *ProgressService) GetCourseProgress(ctx context.Context, userID, courseID string) int {
	return s.ComputeProgress(ctx, userID, []string{courseID})[courseID]
}

// UpdateProgress 记录用户完成模块
func (s *ProgressService) UpdateProgress(ctx context.Context, userID, courseID, moduleID string, isCompleted bool) (*model.UserProgress, error) {
	if _, err := s.ModuleRepo.FindInCourse(ctx, courseID, moduleID); err != nil {
		return nil, err
	}

	progress, err := s.ProgressRepo.Upsert(ctx, userID, moduleID, isCompleted)
	if err != nil {
		return nil, err
	}

	s.Invalidate(ctx, userID, courseID)
	return progress, nil
}

// Invalidate 删除用户某门课程的进度缓存
func (s *ProgressService) Invalidate(ctx context.Context, userID, courseID string) {
	if s.Cache == nil {
		return
	}
	if err := s.Cache.Del(ctx, progressCacheKey(userID, courseID)).Err(); err != nil {
		logger.Log.Warn("Failed to invalidate progress cache",
			zap.String("userId", userID),
			zap.String("courseId", courseID),
			zap.Error(err))
	}
}

// readCache 从缓存填充 result，返回未命中的课程 ID
func (s *ProgressService) readCache(ctx context.Context, userID string, ids []string, result map[string]int) []string {
	if s.Cache == nil {
		return ids
	}

	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = progressCacheKey(userID, id)
	}

	values, err := s.Cache.MGet(ctx, keys...).Result()
	if err != nil {
		logger.Log.Warn("Progress cache unavailable", zap.Error(err))
		monitoring.ProgressCacheLookups.WithLabelValues("error").Add(float64(len(ids)))
		return ids
	}

	var missing []string
	for i, v := range values {
		raw, ok := v.(string)
		if !ok {
			missing = append(missing, ids[i])
			continue
		}
		percent, err := strconv.Atoi(raw)
		if err != nil {
			missing = append(missing, ids[i])
			continue
		}
		result[ids[i]] = percent
	}

	monitoring.ProgressCacheLookups.WithLabelValues("hit").Add(float64(len(ids) - len(missing)))
	monitoring.ProgressCacheLookups.WithLabelValues("miss").Add(float64(len(missing)))
	return missing
}

func (s *ProgressService) writeCache(ctx context.Context, userID string, computed map[string]int) {
	if s.Cache == nil || len(computed) == 0 {
		return
	}

	pipe := s.Cache.Pipeline()
	for courseID, percent := range computed {
		pipe.Set(ctx, progressCacheKey(userID, courseID), percent, s.CacheTTL)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		logger.Log.Warn("Failed to write progress cache", zap.Error(err))
	}
}

func uniqueIDs(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if id == "" {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
