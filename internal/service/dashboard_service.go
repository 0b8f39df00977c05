package service

import (
	"context"

	"coursehub_backend/internal/model"
	"coursehub_backend/internal/repository"
)

type DashboardService struct {
	RegistrationRepo *repository.RegistrationRepository
	ProgressService  *ProgressService
}

func NewDashboardService(registrationRepo *repository.RegistrationRepository, progressService *ProgressService) *DashboardService {
	return &DashboardService{
		RegistrationRepo: registrationRepo,
		ProgressService:  progressService,
	}
}

type DashboardCourse struct {
	model.Course
	Progress int `json:"progress"`
}

// DashboardCourses 学员已报名课程，按完成情况分组
type DashboardCourses struct {
	Completed  []DashboardCourse `json:"completedCourses"`
	InProgress []DashboardCourse `json:"coursesInProgress"`
}

// GetDashboardCourses 将已报名课程分为已完成（100%）和进行中，进度只计算一次
func (s *DashboardService) GetDashboardCourses(ctx context.Context, userID string) (*DashboardCourses, error) {
	courses, err := s.RegistrationRepo.ListCoursesByUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	ids := make([]string, 0, len(courses))
	for _, c := range courses {
		ids = append(ids, c.ID)
	}
	progress := s.ProgressService.ComputeProgress(ctx, userID, ids)

	out := &DashboardCourses{
		Completed:  []DashboardCourse{},
		InProgress: []DashboardCourse{},
	}
	for _, c := range courses {
		dc := DashboardCourse{Course: c, Progress: progress[c.ID]}
		if dc.Progress == 100 {
			out.Completed = append(out.Completed, dc)
		} else {
			out.InProgress = append(out.InProgress, dc)
		}
	}
	return out, nil
}
