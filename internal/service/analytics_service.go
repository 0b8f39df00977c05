package service

import (
	"context"
	"time"

	"coursehub_backend/internal/repository"
)

// registrationMonths 报名趋势覆盖的月数，含当月
const registrationMonths = 6

type AnalyticsService struct {
	CourseRepo       *repository.CourseRepository
	RegistrationRepo *repository.RegistrationRepository
	Now              func() time.Time
}

func NewAnalyticsService(courseRepo *repository.CourseRepository, registrationRepo *repository.RegistrationRepository) *AnalyticsService {
	return &AnalyticsService{CourseRepo: courseRepo, RegistrationRepo: registrationRepo, Now: time.Now}
}

// TeacherAnalytics 教师课程报名统计
type TeacherAnalytics struct {
	Courses              []repository.CourseRegistrations `json:"courses"`
	TotalRegistrations   int64                            `json:"totalRegistrations"`
	CoursesByLevel       map[string]int64                 `json:"coursesByLevel"`
	RegistrationsByLevel map[string]int64                 `json:"registrationsByLevel"`
	// RegistrationsByMonth 键为 "2006-01"，没有报名的月份为 0
	RegistrationsByMonth map[string]int64 `json:"registrationsByMonth"`
}

func (s *AnalyticsService) GetAnalytics(ctx context.Context, ownerID string) (*TeacherAnalytics, error) {
	rows, err := s.RegistrationRepo.CountByOwner(ctx, ownerID)
	if err != nil {
		return nil, err
	}

	out := &TeacherAnalytics{Courses: rows}
	if out.Courses == nil {
		out.Courses = []repository.CourseRegistrations{}
	}
	for _, r := range rows {
		out.TotalRegistrations += r.Total
	}

	courseLevels, err := s.CourseRepo.CountByLevel(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	out.CoursesByLevel = levelMap(courseLevels)

	registrationLevels, err := s.RegistrationRepo.CountByLevel(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	out.RegistrationsByLevel = levelMap(registrationLevels)

	out.RegistrationsByMonth, err = s.registrationsByMonth(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (s *AnalyticsService) registrationsByMonth(ctx context.Context, ownerID string) (map[string]int64, error) {
	now := s.Now().UTC()
	current := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
	since := current.AddDate(0, -(registrationMonths - 1), 0)

	months := make(map[string]int64, registrationMonths)
	for i := 0; i < registrationMonths; i++ {
		months[since.AddDate(0, i, 0).Format("2006-01")] = 0
	}

	times, err := s.RegistrationRepo.CreatedSince(ctx, ownerID, since)
	if err != nil {
		return nil, err
	}
	for _, t := range times {
		key := t.UTC().Format("2006-01")
		// 晚于当前时间的记录不在窗口内
		if _, ok := months[key]; ok {
			months[key]++
		}
	}
	return months, nil
}

func levelMap(rows []repository.LevelCount) map[string]int64 {
	out := make(map[string]int64, len(rows))
	for _, r := range rows {
		out[r.Level] = r.Total
	}
	return out
}
