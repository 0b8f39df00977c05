package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"coursehub_backend/internal/model"
	"coursehub_backend/internal/repository"
	"coursehub_backend/internal/util"
	"coursehub_backend/pkg/logger"

	"go.uber.org/zap"
)

type EventService struct {
	EventRepo *repository.EventRepository
	// Now 默认 time.Now，测试中可替换
	Now func() time.Time
}

func NewEventService(eventRepo *repository.EventRepository) *EventService {
	return &EventService{EventRepo: eventRepo, Now: time.Now}
}

// EventInput 创建活动的参数
type EventInput struct {
	Title         string    `json:"title"`
	Description   string    `json:"description"`
	Location      string    `json:"location"`
	ImageURL      string    `json:"imageUrl"`
	StartDateTime time.Time `json:"startDateTime"`
	EndDateTime   time.Time `json:"endDateTime"`
}

func (s *EventService) Create(ctx context.Context, userID string, in EventInput) (*model.Event, error) {
	title := strings.TrimSpace(in.Title)
	location := strings.TrimSpace(in.Location)
	if title == "" || location == "" {
		return nil, fmt.Errorf("%w: title and location are required", util.ErrValidation)
	}
	if in.StartDateTime.IsZero() || in.EndDateTime.IsZero() {
		return nil, fmt.Errorf("%w: start and end date are required", util.ErrValidation)
	}
	if !in.StartDateTime.Before(in.EndDateTime) {
		return nil, fmt.Errorf("%w: start must be before end", util.ErrValidation)
	}
	if in.StartDateTime.Before(s.Now()) {
		return nil, fmt.Errorf("%w: start must not be in the past", util.ErrValidation)
	}

	event := &model.Event{
		Title:         title,
		Description:   strings.TrimSpace(in.Description),
		Location:      location,
		ImageURL:      in.ImageURL,
		StartDateTime: in.StartDateTime,
		EndDateTime:   in.EndDateTime,
		UserID:        userID,
	}
	if err := s.EventRepo.Create(ctx, event); err != nil {
		return nil, err
	}
	return event, nil
}

// ListUpcoming 尚未开始的活动，最近的在前
func (s *EventService) ListUpcoming(ctx context.Context) ([]model.Event, error) {
	events, err := s.EventRepo.ListUpcoming(ctx, s.Now())
	if err != nil {
		return nil, err
	}
	if events == nil {
		events = []model.Event{}
	}
	return events, nil
}

// Delete 只有创建者可以删除
func (s *EventService) Delete(ctx context.Context, userID, eventID string) error {
	event, err := s.EventRepo.FindByID(ctx, eventID)
	if err != nil {
		return err
	}
	if event.UserID != userID {
		return util.ErrUnauthorized
	}
	return s.EventRepo.Delete(ctx, eventID)
}

// CleanupEnded 删除已结束的活动，由定时任务调用
func (s *EventService) CleanupEnded(ctx context.Context) (int64, error) {
	removed, err := s.EventRepo.DeleteEndedBefore(ctx, s.Now())
	if err != nil {
		logger.Log.Error("Event cleanup failed", zap.Error(err))
		return 0, err
	}
	if removed > 0 {
		logger.Log.Info("Ended events removed", zap.Int64("count", removed))
	}
	return removed, nil
}
