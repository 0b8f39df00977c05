package controller

import (
	"coursehub_backend/internal/grading"
	"coursehub_backend/internal/service"
	"coursehub_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type EvaluationController struct {
	EvaluationService *service.EvaluationService
}

func NewEvaluationController(evaluationService *service.EvaluationService) *EvaluationController {
	return &EvaluationController{EvaluationService: evaluationService}
}

// SubmitAttemptRequest maps question ids to the learner's response: an answer id for single
// choice, a list of answer ids for multiple choice, free text for open questions.
type SubmitAttemptRequest struct {
	Responses map[string]grading.Response `json:"responses" binding:"required" swaggertype:"object"`
}

// @Summary 获取测评
// @Description 获取测评题目（不含答案）及当前用户的作答状态
// @Tags 测评
// @Produce json
// @Security BearerAuth
// @Param courseId path string true "课程ID"
// @Param moduleId path string true "模块ID"
// @Param evaluationId path string true "测评ID"
// @Success 200 {object} util.Response{data=service.LearnerEvaluation}
// @Failure 403 {object} util.Response
// @Failure 404 {object} util.Response
// @Router /courses/{courseId}/modules/{moduleId}/evaluations/{evaluationId} [get]
func (c *EvaluationController) GetEvaluation(ctx *gin.Context) {
	userID := util.GetUserID(ctx)
	if userID == "" {
		util.Unauthorized(ctx)
		return
	}

	evaluation, err := c.EvaluationService.GetEvaluationForLearner(ctx.Request.Context(), userID,
		ctx.Param("courseId"), ctx.Param("moduleId"), ctx.Param("evaluationId"))
	if err != nil {
		util.HandleServiceError(ctx, err)
		return
	}

	util.Success(ctx, evaluation)
}

// @Summary 提交测评
// @Description 服务端评分并记录一次作答，得分不低于80时自动完成所属模块
// @Tags 测评
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param courseId path string true "课程ID"
// @Param moduleId path string true "模块ID"
// @Param evaluationId path string true "测评ID"
// @Param body body SubmitAttemptRequest true "作答内容"
// @Success 201 {object} util.Response{data=service.AttemptOutcome}
// @Failure 400 {object} util.Response
// @Failure 403 {object} util.Response
// @Failure 409 {object} util.Response "作答次数已用完"
// @Router /courses/{courseId}/modules/{moduleId}/evaluations/{evaluationId}/results [post]
func (c *EvaluationController) SubmitAttempt(ctx *gin.Context) {
	userID := util.GetUserID(ctx)
	if userID == "" {
		util.Unauthorized(ctx)
		return
	}

	var req SubmitAttemptRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	outcome, err := c.EvaluationService.SubmitAttempt(ctx.Request.Context(), userID,
		ctx.Param("courseId"), ctx.Param("moduleId"), ctx.Param("evaluationId"), req.Responses)
	if err != nil {
		util.HandleServiceError(ctx, err)
		return
	}

	util.Created(ctx, outcome)
}

// @Summary 获取作答历史
// @Tags 测评
// @Produce json
// @Security BearerAuth
// @Param courseId path string true "课程ID"
// @Param moduleId path string true "模块ID"
// @Param evaluationId path string true "测评ID"
// @Success 200 {object} util.Response{data=service.AttemptHistory}
// @Router /courses/{courseId}/modules/{moduleId}/evaluations/{evaluationId}/results [get]
func (c *EvaluationController) GetResults(ctx *gin.Context) {
	userID := util.GetUserID(ctx)
	if userID == "" {
		util.Unauthorized(ctx)
		return
	}

	history, err := c.EvaluationService.GetAttemptHistory(ctx.Request.Context(), userID,
		ctx.Param("courseId"), ctx.Param("moduleId"), ctx.Param("evaluationId"))
	if err != nil {
		util.HandleServiceError(ctx, err)
		return
	}

	util.Success(ctx, history)
}
