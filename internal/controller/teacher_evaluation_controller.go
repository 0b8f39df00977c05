package controller

import (
	"coursehub_backend/internal/model"
	"coursehub_backend/internal/service"
	"coursehub_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type TeacherEvaluationController struct {
	AuthoringService *service.EvaluationAuthoringService
}

func NewTeacherEvaluationController(authoringService *service.EvaluationAuthoringService) *TeacherEvaluationController {
	return &TeacherEvaluationController{AuthoringService: authoringService}
}

type CreateEvaluationRequest struct {
	Type model.EvaluationType `json:"type" binding:"required,evaltype"`
}

type ChangeEvaluationTypeRequest struct {
	Type    model.EvaluationType `json:"type" binding:"required,evaltype"`
	Confirm bool                 `json:"confirm"`
}

type UpdateMaxAttemptsRequest struct {
	MaxAttempts int `json:"maxAttempts" binding:"required"`
}

type evaluationPath struct {
	courseID, moduleID, evaluationID string
}

func pathOf(ctx *gin.Context) evaluationPath {
	return evaluationPath{
		courseID:     ctx.Param("courseId"),
		moduleID:     ctx.Param("moduleId"),
		evaluationID: ctx.Param("evaluationId"),
	}
}

// @Summary 创建测评
// @Tags 教师-测评
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param courseId path string true "课程ID"
// @Param moduleId path string true "模块ID"
// @Param body body CreateEvaluationRequest true "测评类型"
// @Success 201 {object} util.Response{data=model.Evaluation}
// @Router /teacher/courses/{courseId}/modules/{moduleId}/evaluations [post]
func (c *TeacherEvaluationController) CreateEvaluation(ctx *gin.Context) {
	var req CreateEvaluationRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	evaluation, err := c.AuthoringService.Create(ctx.Request.Context(), util.GetUserID(ctx), ctx.Param("courseId"), ctx.Param("moduleId"), req.Type)
	if err != nil {
		util.HandleServiceError(ctx, err)
		return
	}
	util.Created(ctx, evaluation)
}

// @Summary 测评详情（含答案）
// @Tags 教师-测评
// @Produce json
// @Security BearerAuth
// @Param courseId path string true "课程ID"
// @Param moduleId path string true "模块ID"
// @Param evaluationId path string true "测评ID"
// @Success 200 {object} util.Response{data=model.Evaluation}
// @Router /teacher/courses/{courseId}/modules/{moduleId}/evaluations/{evaluationId} [get]
func (c *TeacherEvaluationController) GetEvaluation(ctx *gin.Context) {
	p := pathOf(ctx)
	evaluation, err := c.AuthoringService.Get(ctx.Request.Context(), util.GetUserID(ctx), p.courseID, p.moduleID, p.evaluationID)
	if err != nil {
		util.HandleServiceError(ctx, err)
		return
	}
	util.Success(ctx, evaluation)
}

// @Summary 修改测评类型
// @Description 会删除全部题目并取消发布，需 confirm=true
// @Tags 教师-测评
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param courseId path string true "课程ID"
// @Param moduleId path string true "模块ID"
// @Param evaluationId path string true "测评ID"
// @Param body body ChangeEvaluationTypeRequest true "新类型"
// @Success 200 {object} util.Response{data=model.Evaluation}
// @Failure 409 {object} util.Response "需要确认"
// @Router /teacher/courses/{courseId}/modules/{moduleId}/evaluations/{evaluationId}/type [patch]
func (c *TeacherEvaluationController) ChangeType(ctx *gin.Context) {
	var req ChangeEvaluationTypeRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	p := pathOf(ctx)
	evaluation, err := c.AuthoringService.ChangeType(ctx.Request.Context(), util.GetUserID(ctx), p.courseID, p.moduleID, p.evaluationID, req.Type, req.Confirm)
	if err != nil {
		util.HandleServiceError(ctx, err)
		return
	}
	util.Success(ctx, evaluation)
}

// @Summary 修改最大作答次数
// @Tags 教师-测评
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param courseId path string true "课程ID"
// @Param moduleId path string true "模块ID"
// @Param evaluationId path string true "测评ID"
// @Param body body UpdateMaxAttemptsRequest true "最大次数"
// @Success 200 {object} util.Response{data=model.Evaluation}
// @Router /teacher/courses/{courseId}/modules/{moduleId}/evaluations/{evaluationId}/max-attempts [patch]
func (c *TeacherEvaluationController) UpdateMaxAttempts(ctx *gin.Context) {
	var req UpdateMaxAttemptsRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	p := pathOf(ctx)
	evaluation, err := c.AuthoringService.UpdateMaxAttempts(ctx.Request.Context(), util.GetUserID(ctx), p.courseID, p.moduleID, p.evaluationID, req.MaxAttempts)
	if err != nil {
		util.HandleServiceError(ctx, err)
		return
	}
	util.Success(ctx, evaluation)
}

// @Summary 添加题目
// @Tags 教师-测评
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param courseId path string true "课程ID"
// @Param moduleId path string true "模块ID"
// @Param evaluationId path string true "测评ID"
// @Param body body service.QuestionInput true "题目及选项"
// @Success 201 {object} util.Response{data=model.Question}
// @Router /teacher/courses/{courseId}/modules/{moduleId}/evaluations/{evaluationId}/questions [post]
func (c *TeacherEvaluationController) AddQuestion(ctx *gin.Context) {
	var req service.QuestionInput
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	p := pathOf(ctx)
	question, err := c.AuthoringService.AddQuestion(ctx.Request.Context(), util.GetUserID(ctx), p.courseID, p.moduleID, p.evaluationID, req)
	if err != nil {
		util.HandleServiceError(ctx, err)
		return
	}
	util.Created(ctx, question)
}

// @Summary 删除题目
// @Tags 教师-测评
// @Produce json
// @Security BearerAuth
// @Param courseId path string true "课程ID"
// @Param moduleId path string true "模块ID"
// @Param evaluationId path string true "测评ID"
// @Param questionId path string true "题目ID"
// @Success 200 {object} util.Response
// @Router /teacher/courses/{courseId}/modules/{moduleId}/evaluations/{evaluationId}/questions/{questionId} [delete]
func (c *TeacherEvaluationController) DeleteQuestion(ctx *gin.Context) {
	p := pathOf(ctx)
	err := c.AuthoringService.DeleteQuestion(ctx.Request.Context(), util.GetUserID(ctx), p.courseID, p.moduleID, p.evaluationID, ctx.Param("questionId"))
	if err != nil {
		util.HandleServiceError(ctx, err)
		return
	}
	util.Success(ctx, gin.H{"message": "Question deleted"})
}

// @Summary 发布测评
// @Tags 教师-测评
// @Produce json
// @Security BearerAuth
// @Param courseId path string true "课程ID"
// @Param moduleId path string true "模块ID"
// @Param evaluationId path string true "测评ID"
// @Success 200 {object} util.Response{data=model.Evaluation}
// @Failure 400 {object} util.Response
// @Router /teacher/courses/{courseId}/modules/{moduleId}/evaluations/{evaluationId}/publish [patch]
func (c *TeacherEvaluationController) Publish(ctx *gin.Context) {
	p := pathOf(ctx)
	evaluation, err := c.AuthoringService.Publish(ctx.Request.Context(), util.GetUserID(ctx), p.courseID, p.moduleID, p.evaluationID)
	if err != nil {
		util.HandleServiceError(ctx, err)
		return
	}
	util.Success(ctx, evaluation)
}

// @Summary 取消发布测评
// @Tags 教师-测评
// @Produce json
// @Security BearerAuth
// @Param courseId path string true "课程ID"
// @Param moduleId path string true "模块ID"
// @Param evaluationId path string true "测评ID"
// @Success 200 {object} util.Response{data=model.Evaluation}
// @Router /teacher/courses/{courseId}/modules/{moduleId}/evaluations/{evaluationId}/unpublish [patch]
func (c *TeacherEvaluationController) Unpublish(ctx *gin.Context) {
	p := pathOf(ctx)
	evaluation, err := c.AuthoringService.Unpublish(ctx.Request.Context(), util.GetUserID(ctx), p.courseID, p.moduleID, p.evaluationID)
	if err != nil {
		util.HandleServiceError(ctx, err)
		return
	}
	util.Success(ctx, evaluation)
}

// @Summary 删除测评
// @Description 同时删除题目和全部作答记录
// @Tags 教师-测评
// @Produce json
// @Security BearerAuth
// @Param courseId path string true "课程ID"
// @Param moduleId path string true "模块ID"
// @Param evaluationId path string true "测评ID"
// @Success 200 {object} util.Response
// @Router /teacher/courses/{courseId}/modules/{moduleId}/evaluations/{evaluationId} [delete]
func (c *TeacherEvaluationController) DeleteEvaluation(ctx *gin.Context) {
	p := pathOf(ctx)
	if err := c.AuthoringService.Delete(ctx.Request.Context(), util.GetUserID(ctx), p.courseID, p.moduleID, p.evaluationID); err != nil {
		util.HandleServiceError(ctx, err)
		return
	}
	util.Success(ctx, gin.H{"message": "Evaluation deleted"})
}
