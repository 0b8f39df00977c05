package service

import (
	"context"
	"testing"
	"time"

	"coursehub_backend/internal/model"
	"coursehub_backend/internal/repository"
	"coursehub_backend/internal/testutil"
	"coursehub_backend/internal/util"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var eventNow = time.Date(2026, 5, 10, 9, 0, 0, 0, time.UTC)

func newEventService(t *testing.T) *EventService {
	t.Helper()
	s := NewEventService(repository.NewEventRepository(testutil.NewDB(t)))
	s.Now = func() time.Time { return eventNow }
	return s
}

func TestCreateEventValidation(t *testing.T) {
	valid := EventInput{
		Title:         "Go meetup",
		Location:      "Room 4",
		StartDateTime: eventNow.Add(24 * time.Hour),
		EndDateTime:   eventNow.Add(26 * time.Hour),
	}

	tests := []struct {
		name   string
		mutate func(in *EventInput)
	}{
		{name: "blank title", mutate: func(in *EventInput) { in.Title = "   " }},
		{name: "blank location", mutate: func(in *EventInput) { in.Location = "" }},
		{name: "missing start", mutate: func(in *EventInput) { in.StartDateTime = time.Time{} }},
		{name: "missing end", mutate: func(in *EventInput) { in.EndDateTime = time.Time{} }},
		{name: "end before start", mutate: func(in *EventInput) { in.EndDateTime = in.StartDateTime.Add(-time.Hour) }},
		{name: "end equals start", mutate: func(in *EventInput) { in.EndDateTime = in.StartDateTime }},
		{name: "start in the past", mutate: func(in *EventInput) {
			in.StartDateTime = eventNow.Add(-time.Minute)
			in.EndDateTime = eventNow.Add(time.Hour)
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newEventService(t)
			in := valid
			tt.mutate(&in)
			_, err := s.Create(context.Background(), "teacher", in)
			assert.ErrorIs(t, err, util.ErrValidation)
		})
	}

	t.Run("valid input is trimmed and stored", func(t *testing.T) {
		s := newEventService(t)
		in := valid
		in.Title = "  Go meetup  "
		event, err := s.Create(context.Background(), "teacher", in)
		require.NoError(t, err)
		assert.Equal(t, "Go meetup", event.Title)
		assert.Equal(t, "teacher", event.UserID)
		assert.NotEmpty(t, event.ID)
	})
}

func TestListUpcomingEvents(t *testing.T) {
	s := newEventService(t)
	ctx := context.Background()
	db := s.EventRepo.DB

	insert := func(title string, start time.Time) {
		require.NoError(t, db.Create(&model.Event{
			Title: title, Location: "Online", UserID: "teacher",
			StartDateTime: start, EndDateTime: start.Add(time.Hour),
		}).Error)
	}
	insert("later", eventNow.Add(72*time.Hour))
	insert("past", eventNow.Add(-48*time.Hour))
	insert("soon", eventNow.Add(2*time.Hour))

	events, err := s.ListUpcoming(ctx)
	require.NoError(t, err)
	titles := make([]string, 0, len(events))
	for _, e := range events {
		titles = append(titles, e.Title)
	}
	assert.Equal(t, []string{"soon", "later"}, titles)
}

func TestDeleteEventOwnerOnly(t *testing.T) {
	s := newEventService(t)
	ctx := context.Background()
	event, err := s.Create(ctx, "teacher", EventInput{
		Title: "Office hours", Location: "Lab",
		StartDateTime: eventNow.Add(time.Hour), EndDateTime: eventNow.Add(2 * time.Hour),
	})
	require.NoError(t, err)

	assert.ErrorIs(t, s.Delete(ctx, "intruder", event.ID), util.ErrUnauthorized)
	assert.ErrorIs(t, s.Delete(ctx, "teacher", "missing"), util.ErrNotFound)
	require.NoError(t, s.Delete(ctx, "teacher", event.ID))

	_, err = s.EventRepo.FindByID(ctx, event.ID)
	assert.ErrorIs(t, err, util.ErrNotFound)
}

func TestCleanupEndedEvents(t *testing.T) {
	s := newEventService(t)
	ctx := context.Background()
	db := s.EventRepo.DB

	for _, e := range []model.Event{
		{Title: "finished", StartDateTime: eventNow.Add(-3 * time.Hour), EndDateTime: eventNow.Add(-time.Hour)},
		{Title: "running", StartDateTime: eventNow.Add(-time.Hour), EndDateTime: eventNow.Add(time.Hour)},
		{Title: "upcoming", StartDateTime: eventNow.Add(time.Hour), EndDateTime: eventNow.Add(2 * time.Hour)},
	} {
		e.Location, e.UserID = "Online", "teacher"
		require.NoError(t, db.Create(&e).Error)
	}

	removed, err := s.CleanupEnded(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), removed)

	var left []string
	require.NoError(t, db.Model(&model.Event{}).Order("start_date_time ASC").Pluck("title", &left).Error)
	assert.Equal(t, []string{"running", "upcoming"}, left)
}
