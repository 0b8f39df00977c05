package controller

import (
	"coursehub_backend/internal/service"
	"coursehub_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type ProgressController struct {
	ProgressService *service.ProgressService
}

func NewProgressController(progressService *service.ProgressService) *ProgressController {
	return &ProgressController{ProgressService: progressService}
}

type UpdateProgressRequest struct {
	IsCompleted *bool `json:"isCompleted" binding:"required"`
}

type BatchProgressRequest struct {
	CourseIDs []string `json:"courseIds" binding:"required,max=200"`
}

// @Summary 更新模块学习进度
// @Description 标记当前用户某个模块是否已完成
// @Tags 学习进度
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param courseId path string true "课程ID"
// @Param moduleId path string true "模块ID"
// @Param body body UpdateProgressRequest true "完成状态"
// @Success 200 {object} util.Response{data=model.UserProgress}
// @Failure 400 {object} util.Response
// @Failure 401 {object} util.Response
// @Failure 404 {object} util.Response
// @Router /courses/{courseId}/modules/{moduleId}/progress [put]
func (c *ProgressController) UpdateProgress(ctx *gin.Context) {
	userID := util.GetUserID(ctx)
	if userID == "" {
		util.Unauthorized(ctx)
		return
	}

	var req UpdateProgressRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	progress, err := c.ProgressService.UpdateProgress(ctx.Request.Context(), userID, ctx.Param("courseId"), ctx.Param("moduleId"), *req.IsCompleted)
	if err != nil {
		util.HandleServiceError(ctx, err)
		return
	}

	util.Success(ctx, progress)
}

// @Summary 批量获取课程进度
// @Description 一次计算多门课程的完成百分比
// @Tags 学习进度
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body BatchProgressRequest true "课程ID列表"
// @Success 200 {object} util.Response{data=map[string]int}
// @Failure 400 {object} util.Response
// @Router /progress/batch [post]
func (c *ProgressController) BatchProgress(ctx *gin.Context) {
	userID := util.GetUserID(ctx)
	if userID == "" {
		util.Unauthorized(ctx)
		return
	}

	var req BatchProgressRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	util.Success(ctx, c.ProgressService.ComputeProgress(ctx.Request.Context(), userID, req.CourseIDs))
}
