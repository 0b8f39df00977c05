package repository

import (
	"context"
	"errors"
	"time"

	"coursehub_backend/internal/model"
	"coursehub_backend/internal/util"

	"gorm.io/gorm"
)

type EventRepository struct {
	DB *gorm.DB
}

func NewEventRepository(db *gorm.DB) *EventRepository {
	return &EventRepository{DB: db}
}

func (r *EventRepository) Create(ctx context.Context, event *model.Event) error {
	return r.DB.WithContext(ctx).Create(event).Error
}

func (r *EventRepository) FindByID(ctx context.Context, id string) (*model.Event, error) {
	var event model.Event
	err := r.DB.WithContext(ctx).Where("id = ?", id).First(&event).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, util.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &event, nil
}

// ListUpcoming 返回开始时间不早于 from 的活动，按开始时间升序
func (r *EventRepository) ListUpcoming(ctx context.Context, from time.Time) ([]model.Event, error) {
	var events []model.Event
	err := r.DB.WithContext(ctx).
		Where("start_date_time >= ?", from).
		Order("start_date_time ASC").
		Find(&events).Error
	return events, err
}

func (r *EventRepository) Delete(ctx context.Context, id string) error {
	return r.DB.WithContext(ctx).Where("id = ?", id).Delete(&model.Event{}).Error
}

// DeleteEndedBefore 删除结束时间早于 cutoff 的活动，返回删除条数
func (r *EventRepository) DeleteEndedBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	res := r.DB.WithContext(ctx).Where("end_date_time < ?", cutoff).Delete(&model.Event{})
	return res.RowsAffected, res.Error
}
