package controller

import (
	"time"

	"coursehub_backend/internal/service"
	"coursehub_backend/internal/util"

	"github.com/gin-gonic/gin"
)

// EventController 活动动态
type EventController struct {
	EventService *service.EventService
}

func NewEventController(eventService *service.EventService) *EventController {
	return &EventController{EventService: eventService}
}

type CreateEventRequest struct {
	Title         string `json:"title" binding:"required"`
	Description   string `json:"description"`
	Location      string `json:"location" binding:"required"`
	ImageURL      string `json:"imageUrl"`
	StartDateTime string `json:"startDateTime" binding:"required"`
	EndDateTime   string `json:"endDateTime" binding:"required"`
}

// @Summary 即将开始的活动
// @Tags 活动
// @Produce json
// @Security BearerAuth
// @Success 200 {object} util.Response{data=[]model.Event}
// @Router /events [get]
func (c *EventController) ListEvents(ctx *gin.Context) {
	events, err := c.EventService.ListUpcoming(ctx.Request.Context())
	if err != nil {
		util.HandleServiceError(ctx, err)
		return
	}
	util.Success(ctx, events)
}

// @Summary 创建活动
// @Tags 教师-活动
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body CreateEventRequest true "活动信息，时间为 RFC3339"
// @Success 201 {object} util.Response{data=model.Event}
// @Router /teacher/events [post]
func (c *EventController) CreateEvent(ctx *gin.Context) {
	var req CreateEventRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	start, err := time.Parse(time.RFC3339, req.StartDateTime)
	if err != nil {
		util.BadRequest(ctx, "invalid startDateTime")
		return
	}
	end, err := time.Parse(time.RFC3339, req.EndDateTime)
	if err != nil {
		util.BadRequest(ctx, "invalid endDateTime")
		return
	}

	event, err := c.EventService.Create(ctx.Request.Context(), util.GetUserID(ctx), service.EventInput{
		Title:         req.Title,
		Description:   req.Description,
		Location:      req.Location,
		ImageURL:      req.ImageURL,
		StartDateTime: start,
		EndDateTime:   end,
	})
	if err != nil {
		util.HandleServiceError(ctx, err)
		return
	}
	util.Created(ctx, event)
}

// @Summary 删除活动
// @Tags 教师-活动
// @Produce json
// @Security BearerAuth
// @Param eventId path string true "活动ID"
// @Success 200 {object} util.Response
// @Router /teacher/events/{eventId} [delete]
func (c *EventController) DeleteEvent(ctx *gin.Context) {
	if err := c.EventService.Delete(ctx.Request.Context(), util.GetUserID(ctx), ctx.Param("eventId")); err != nil {
		util.HandleServiceError(ctx, err)
		return
	}
	util.Success(ctx, gin.H{"message": "Event deleted"})
}
