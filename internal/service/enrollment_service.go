package service

import (
	"context"
	"errors"

	"coursehub_backend/internal/model"
	"coursehub_backend/internal/repository"
	"coursehub_backend/internal/util"
	"coursehub_backend/pkg/logger"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

type EnrollmentService struct {
	CourseRepo       *repository.CourseRepository
	RegistrationRepo *repository.RegistrationRepository
}

func NewEnrollmentService(courseRepo *repository.CourseRepository, registrationRepo *repository.RegistrationRepository) *EnrollmentService {
	return &EnrollmentService{
		CourseRepo:       courseRepo,
		RegistrationRepo: registrationRepo,
	}
}

func (s *EnrollmentService) IsEnrolled(ctx context.Context, userID, courseID string) (bool, error) {
	return s.RegistrationRepo.Exists(ctx, userID, courseID)
}

// Enroll 报名已发布课程
func (s *EnrollmentService) Enroll(ctx context.Context, userID, courseID string) (*model.Registration, error) {
	if _, err := s.CourseRepo.FindPublished(ctx, courseID); err != nil {
		return nil, err
	}
	return s.register(ctx, userID, courseID)
}

// Checkout 免费课程直接报名，付费课程暂不支持支付
func (s *EnrollmentService) Checkout(ctx context.Context, userID, courseID string) (*model.Registration, error) {
	course, err := s.CourseRepo.FindPublished(ctx, courseID)
	if err != nil {
		return nil, err
	}
	if !course.IsFree() {
		return nil, util.ErrPaymentRequired
	}
	return s.register(ctx, userID, courseID)
}

func (s *EnrollmentService) register(ctx context.Context, userID, courseID string) (*model.Registration, error) {
	exists, err := s.RegistrationRepo.Exists(ctx, userID, courseID)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, util.ErrAlreadyEnrolled
	}

	reg := &model.Registration{UserID: userID, CourseID: courseID}
	if err := s.RegistrationRepo.Create(ctx, reg); err != nil {
		// 并发报名时唯一索引冲突
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, util.ErrAlreadyEnrolled
		}
		return nil, err
	}

	logger.Log.Info("User enrolled", zap.String("userId", userID), zap.String("courseId", courseID))
	return reg, nil
}
