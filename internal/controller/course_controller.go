package controller

import (
	"coursehub_backend/internal/repository"
	"coursehub_backend/internal/service"
	"coursehub_backend/internal/util"

	"github.com/gin-gonic/gin"
)

// CourseController serves the learner side of courses.
type CourseController struct {
	CourseService     *service.CourseService
	EnrollmentService *service.EnrollmentService
	DashboardService  *service.DashboardService
}

func NewCourseController(
	courseService *service.CourseService,
	enrollmentService *service.EnrollmentService,
	dashboardService *service.DashboardService,
) *CourseController {
	return &CourseController{
		CourseService:     courseService,
		EnrollmentService: enrollmentService,
		DashboardService:  dashboardService,
	}
}

// @Summary 课程目录
// @Description 已发布课程列表，登录用户附带学习进度
// @Tags 课程
// @Produce json
// @Param title query string false "标题关键字"
// @Param categoryId query string false "分类ID"
// @Success 200 {object} util.Response{data=[]service.CatalogCourse}
// @Router /courses [get]
func (c *CourseController) Catalogue(ctx *gin.Context) {
	filter := repository.CatalogFilter{
		Title:      ctx.Query("title"),
		CategoryID: ctx.Query("categoryId"),
	}

	courses, err := c.CourseService.Catalogue(ctx.Request.Context(), util.GetUserID(ctx), filter)
	if err != nil {
		util.HandleServiceError(ctx, err)
		return
	}

	util.Success(ctx, courses)
}

// @Summary 课程分类
// @Tags 课程
// @Produce json
// @Success 200 {object} util.Response{data=[]model.Category}
// @Router /categories [get]
func (c *CourseController) ListCategories(ctx *gin.Context) {
	categories, err := c.CourseService.ListCategories(ctx.Request.Context())
	if err != nil {
		util.HandleServiceError(ctx, err)
		return
	}
	util.Success(ctx, categories)
}

// @Summary 课程大纲
// @Description 模块列表及每个模块的完成、解锁状态
// @Tags 课程
// @Produce json
// @Security BearerAuth
// @Param courseId path string true "课程ID"
// @Success 200 {object} util.Response{data=service.CourseOutline}
// @Failure 404 {object} util.Response
// @Router /courses/{courseId}/outline [get]
func (c *CourseController) GetOutline(ctx *gin.Context) {
	userID := util.GetUserID(ctx)
	if userID == "" {
		util.Unauthorized(ctx)
		return
	}

	outline, err := c.CourseService.GetOutline(ctx.Request.Context(), userID, ctx.Param("courseId"))
	if err != nil {
		util.HandleServiceError(ctx, err)
		return
	}

	util.Success(ctx, outline)
}

// @Summary 报名课程
// @Tags 课程
// @Produce json
// @Security BearerAuth
// @Param courseId path string true "课程ID"
// @Success 201 {object} util.Response{data=model.Registration}
// @Failure 400 {object} util.Response "已报名"
// @Failure 404 {object} util.Response
// @Router /courses/{courseId}/enroll [post]
func (c *CourseController) Enroll(ctx *gin.Context) {
	userID := util.GetUserID(ctx)
	if userID == "" {
		util.Unauthorized(ctx)
		return
	}

	reg, err := c.EnrollmentService.Enroll(ctx.Request.Context(), userID, ctx.Param("courseId"))
	if err != nil {
		util.HandleServiceError(ctx, err)
		return
	}

	util.Created(ctx, reg)
}

// @Summary 结算课程
// @Description 免费课程直接报名，付费课程返回 400
// @Tags 课程
// @Produce json
// @Security BearerAuth
// @Param courseId path string true "课程ID"
// @Success 201 {object} util.Response{data=model.Registration}
// @Failure 400 {object} util.Response
// @Router /courses/{courseId}/checkout [post]
func (c *CourseController) Checkout(ctx *gin.Context) {
	userID := util.GetUserID(ctx)
	if userID == "" {
		util.Unauthorized(ctx)
		return
	}

	reg, err := c.EnrollmentService.Checkout(ctx.Request.Context(), userID, ctx.Param("courseId"))
	if err != nil {
		util.HandleServiceError(ctx, err)
		return
	}

	util.Created(ctx, reg)
}

// @Summary 我的课程
// @Description 已报名课程，按已完成/学习中分组
// @Tags 仪表盘
// @Produce json
// @Security BearerAuth
// @Success 200 {object} util.Response{data=service.DashboardCourses}
// @Router /dashboard/courses [get]
func (c *CourseController) DashboardCourses(ctx *gin.Context) {
	userID := util.GetUserID(ctx)
	if userID == "" {
		util.Unauthorized(ctx)
		return
	}

	courses, err := c.DashboardService.GetDashboardCourses(ctx.Request.Context(), userID)
	if err != nil {
		util.HandleServiceError(ctx, err)
		return
	}

	util.Success(ctx, courses)
}
