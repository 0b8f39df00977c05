package controller

import (
	"coursehub_backend/internal/service"
	"coursehub_backend/internal/util"

	"github.com/gin-gonic/gin"
)

// TeacherCourseController serves course authoring and analytics for teachers.
type TeacherCourseController struct {
	CourseService    *service.CourseService
	AnalyticsService *service.AnalyticsService
}

func NewTeacherCourseController(courseService *service.CourseService, analyticsService *service.AnalyticsService) *TeacherCourseController {
	return &TeacherCourseController{
		CourseService:    courseService,
		AnalyticsService: analyticsService,
	}
}

type CreateCourseRequest struct {
	Title string `json:"title" binding:"required"`
}

type AddAttachmentRequest struct {
	Name string `json:"name"`
	URL  string `json:"url" binding:"required"`
}

// @Summary 创建课程
// @Tags 教师-课程
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body CreateCourseRequest true "课程标题"
// @Success 201 {object} util.Response{data=model.Course}
// @Router /teacher/courses [post]
func (c *TeacherCourseController) CreateCourse(ctx *gin.Context) {
	var req CreateCourseRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	course, err := c.CourseService.Create(ctx.Request.Context(), util.GetUserID(ctx), req.Title)
	if err != nil {
		util.HandleServiceError(ctx, err)
		return
	}
	util.Created(ctx, course)
}

// @Summary 我创建的课程
// @Tags 教师-课程
// @Produce json
// @Security BearerAuth
// @Success 200 {object} util.Response{data=[]model.Course}
// @Router /teacher/courses [get]
func (c *TeacherCourseController) ListCourses(ctx *gin.Context) {
	courses, err := c.CourseService.ListOwned(ctx.Request.Context(), util.GetUserID(ctx))
	if err != nil {
		util.HandleServiceError(ctx, err)
		return
	}
	util.Success(ctx, courses)
}

// @Summary 课程详情
// @Tags 教师-课程
// @Produce json
// @Security BearerAuth
// @Param courseId path string true "课程ID"
// @Success 200 {object} util.Response{data=model.Course}
// @Router /teacher/courses/{courseId} [get]
func (c *TeacherCourseController) GetCourse(ctx *gin.Context) {
	course, err := c.CourseService.Get(ctx.Request.Context(), util.GetUserID(ctx), ctx.Param("courseId"))
	if err != nil {
		util.HandleServiceError(ctx, err)
		return
	}
	util.Success(ctx, course)
}

// @Summary 修改课程
// @Tags 教师-课程
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param courseId path string true "课程ID"
// @Param body body service.CoursePatch true "修改字段"
// @Success 200 {object} util.Response{data=model.Course}
// @Router /teacher/courses/{courseId} [patch]
func (c *TeacherCourseController) UpdateCourse(ctx *gin.Context) {
	var patch service.CoursePatch
	if err := ctx.ShouldBindJSON(&patch); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	course, err := c.CourseService.Update(ctx.Request.Context(), util.GetUserID(ctx), ctx.Param("courseId"), patch)
	if err != nil {
		util.HandleServiceError(ctx, err)
		return
	}
	util.Success(ctx, course)
}

// @Summary 删除课程
// @Tags 教师-课程
// @Produce json
// @Security BearerAuth
// @Param courseId path string true "课程ID"
// @Success 200 {object} util.Response
// @Router /teacher/courses/{courseId} [delete]
func (c *TeacherCourseController) DeleteCourse(ctx *gin.Context) {
	if err := c.CourseService.Delete(ctx.Request.Context(), util.GetUserID(ctx), ctx.Param("courseId")); err != nil {
		util.HandleServiceError(ctx, err)
		return
	}
	util.Success(ctx, gin.H{"message": "Course deleted"})
}

// @Summary 发布课程
// @Description 课程信息完整且至少有一个已发布模块时才能发布
// @Tags 教师-课程
// @Produce json
// @Security BearerAuth
// @Param courseId path string true "课程ID"
// @Success 200 {object} util.Response{data=model.Course}
// @Failure 400 {object} util.Response "缺少必填字段"
// @Router /teacher/courses/{courseId}/publish [patch]
func (c *TeacherCourseController) PublishCourse(ctx *gin.Context) {
	course, err := c.CourseService.Publish(ctx.Request.Context(), util.GetUserID(ctx), ctx.Param("courseId"))
	if err != nil {
		util.HandleServiceError(ctx, err)
		return
	}
	util.Success(ctx, course)
}

// @Summary 取消发布课程
// @Tags 教师-课程
// @Produce json
// @Security BearerAuth
// @Param courseId path string true "课程ID"
// @Success 200 {object} util.Response{data=model.Course}
// @Router /teacher/courses/{courseId}/unpublish [patch]
func (c *TeacherCourseController) UnpublishCourse(ctx *gin.Context) {
	course, err := c.CourseService.Unpublish(ctx.Request.Context(), util.GetUserID(ctx), ctx.Param("courseId"))
	if err != nil {
		util.HandleServiceError(ctx, err)
		return
	}
	util.Success(ctx, course)
}

// @Summary 上传课程封面
// @Tags 教师-课程
// @Accept multipart/form-data
// @Produce json
// @Security BearerAuth
// @Param courseId path string true "课程ID"
// @Param file formData file true "图片文件"
// @Success 200 {object} util.Response{data=model.Course}
// @Router /teacher/courses/{courseId}/image [post]
func (c *TeacherCourseController) UploadImage(ctx *gin.Context) {
	file, header, contentType, err := openUpload(ctx, []string{util.MimeImage})
	if err != nil {
		util.HandleServiceError(ctx, err)
		return
	}
	defer file.Close()

	course, err := c.CourseService.UploadImage(ctx.Request.Context(), util.GetUserID(ctx), ctx.Param("courseId"),
		header.Filename, file, header.Size, contentType)
	if err != nil {
		util.HandleServiceError(ctx, err)
		return
	}
	util.Success(ctx, course)
}

// @Summary 添加附件链接
// @Tags 教师-课程
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param courseId path string true "课程ID"
// @Param body body AddAttachmentRequest true "附件"
// @Success 201 {object} util.Response{data=model.Attachment}
// @Router /teacher/courses/{courseId}/attachments [post]
func (c *TeacherCourseController) AddAttachment(ctx *gin.Context) {
	var req AddAttachmentRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	attachment, err := c.CourseService.AddAttachment(ctx.Request.Context(), util.GetUserID(ctx), ctx.Param("courseId"), req.Name, req.URL)
	if err != nil {
		util.HandleServiceError(ctx, err)
		return
	}
	util.Created(ctx, attachment)
}

// @Summary 上传附件
// @Tags 教师-课程
// @Accept multipart/form-data
// @Produce json
// @Security BearerAuth
// @Param courseId path string true "课程ID"
// @Param file formData file true "附件文件"
// @Success 201 {object} util.Response{data=model.Attachment}
// @Router /teacher/courses/{courseId}/attachments/upload [post]
func (c *TeacherCourseController) UploadAttachment(ctx *gin.Context) {
	file, header, _, err := openUpload(ctx, nil)
	if err != nil {
		util.HandleServiceError(ctx, err)
		return
	}
	defer file.Close()

	contentType := header.Header.Get("Content-Type")
	if contentType == "" {
		contentType = util.MimeOctetStream
	}

	attachment, err := c.CourseService.UploadAttachment(ctx.Request.Context(), util.GetUserID(ctx), ctx.Param("courseId"),
		header.Filename, file, header.Size, contentType)
	if err != nil {
		util.HandleServiceError(ctx, err)
		return
	}
	util.Created(ctx, attachment)
}

// @Summary 删除附件
// @Tags 教师-课程
// @Produce json
// @Security BearerAuth
// @Param courseId path string true "课程ID"
// @Param attachmentId path string true "附件ID"
// @Success 200 {object} util.Response
// @Router /teacher/courses/{courseId}/attachments/{attachmentId} [delete]
func (c *TeacherCourseController) DeleteAttachment(ctx *gin.Context) {
	err := c.CourseService.DeleteAttachment(ctx.Request.Context(), util.GetUserID(ctx), ctx.Param("courseId"), ctx.Param("attachmentId"))
	if err != nil {
		util.HandleServiceError(ctx, err)
		return
	}
	util.Success(ctx, gin.H{"message": "Attachment deleted"})
}

// @Summary 报名统计
// @Description 每门课程的报名人数及总数
// @Tags 教师-分析
// @Produce json
// @Security BearerAuth
// @Success 200 {object} util.Response{data=service.TeacherAnalytics}
// @Router /teacher/analytics [get]
func (c *TeacherCourseController) GetAnalytics(ctx *gin.Context) {
	analytics, err := c.AnalyticsService.GetAnalytics(ctx.Request.Context(), util.GetUserID(ctx))
	if err != nil {
		util.HandleServiceError(ctx, err)
		return
	}
	util.Success(ctx, analytics)
}
