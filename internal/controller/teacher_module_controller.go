package controller

import (
	"coursehub_backend/internal/service"
	"coursehub_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type TeacherModuleController struct {
	ModuleService *service.ModuleService
}

func NewTeacherModuleController(moduleService *service.ModuleService) *TeacherModuleController {
	return &TeacherModuleController{ModuleService: moduleService}
}

type CreateModuleRequest struct {
	Title string `json:"title" binding:"required"`
}

type ReorderModulesRequest struct {
	List []service.ReorderItem `json:"list" binding:"required,min=1,dive"`
}

// @Summary 创建模块
// @Description 新模块追加在课程末尾
// @Tags 教师-模块
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param courseId path string true "课程ID"
// @Param body body CreateModuleRequest true "模块标题"
// @Success 201 {object} util.Response{data=model.Module}
// @Router /teacher/courses/{courseId}/modules [post]
func (c *TeacherModuleController) CreateModule(ctx *gin.Context) {
	var req CreateModuleRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	module, err := c.ModuleService.Create(ctx.Request.Context(), util.GetUserID(ctx), ctx.Param("courseId"), req.Title)
	if err != nil {
		util.HandleServiceError(ctx, err)
		return
	}
	util.Created(ctx, module)
}

// @Summary 模块详情
// @Tags 教师-模块
// @Produce json
// @Security BearerAuth
// @Param courseId path string true "课程ID"
// @Param moduleId path string true "模块ID"
// @Success 200 {object} util.Response{data=model.Module}
// @Router /teacher/courses/{courseId}/modules/{moduleId} [get]
func (c *TeacherModuleController) GetModule(ctx *gin.Context) {
	module, err := c.ModuleService.Get(ctx.Request.Context(), util.GetUserID(ctx), ctx.Param("courseId"), ctx.Param("moduleId"))
	if err != nil {
		util.HandleServiceError(ctx, err)
		return
	}
	util.Success(ctx, module)
}

// @Summary 修改模块
// @Tags 教师-模块
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param courseId path string true "课程ID"
// @Param moduleId path string true "模块ID"
// @Param body body service.ModulePatch true "修改字段"
// @Success 200 {object} util.Response{data=model.Module}
// @Router /teacher/courses/{courseId}/modules/{moduleId} [patch]
func (c *TeacherModuleController) UpdateModule(ctx *gin.Context) {
	var patch service.ModulePatch
	if err := ctx.ShouldBindJSON(&patch); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	module, err := c.ModuleService.Update(ctx.Request.Context(), util.GetUserID(ctx), ctx.Param("courseId"), ctx.Param("moduleId"), patch)
	if err != nil {
		util.HandleServiceError(ctx, err)
		return
	}
	util.Success(ctx, module)
}

// @Summary 删除模块
// @Tags 教师-模块
// @Produce json
// @Security BearerAuth
// @Param courseId path string true "课程ID"
// @Param moduleId path string true "模块ID"
// @Success 200 {object} util.Response
// @Router /teacher/courses/{courseId}/modules/{moduleId} [delete]
func (c *TeacherModuleController) DeleteModule(ctx *gin.Context) {
	if err := c.ModuleService.Delete(ctx.Request.Context(), util.GetUserID(ctx), ctx.Param("courseId"), ctx.Param("moduleId")); err != nil {
		util.HandleServiceError(ctx, err)
		return
	}
	util.Success(ctx, gin.H{"message": "Module deleted"})
}

// @Summary 模块排序
// @Tags 教师-模块
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param courseId path string true "课程ID"
// @Param body body ReorderModulesRequest true "新的位置"
// @Success 200 {object} util.Response
// @Router /teacher/courses/{courseId}/modules/reorder [put]
func (c *TeacherModuleController) ReorderModules(ctx *gin.Context) {
	var req ReorderModulesRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	if err := c.ModuleService.Reorder(ctx.Request.Context(), util.GetUserID(ctx), ctx.Param("courseId"), req.List); err != nil {
		util.HandleServiceError(ctx, err)
		return
	}
	util.Success(ctx, gin.H{"message": "Modules reordered"})
}

// @Summary 发布模块
// @Description 需要标题、描述和视频
// @Tags 教师-模块
// @Produce json
// @Security BearerAuth
// @Param courseId path string true "课程ID"
// @Param moduleId path string true "模块ID"
// @Success 200 {object} util.Response{data=model.Module}
// @Failure 400 {object} util.Response
// @Router /teacher/courses/{courseId}/modules/{moduleId}/publish [patch]
func (c *TeacherModuleController) PublishModule(ctx *gin.Context) {
	module, err := c.ModuleService.Publish(ctx.Request.Context(), util.GetUserID(ctx), ctx.Param("courseId"), ctx.Param("moduleId"))
	if err != nil {
		util.HandleServiceError(ctx, err)
		return
	}
	util.Success(ctx, module)
}

// @Summary 取消发布模块
// @Description 课程没有其他已发布模块时同时取消发布课程
// @Tags 教师-模块
// @Produce json
// @Security BearerAuth
// @Param courseId path string true "课程ID"
// @Param moduleId path string true "模块ID"
// @Success 200 {object} util.Response{data=model.Module}
// @Router /teacher/courses/{courseId}/modules/{moduleId}/unpublish [patch]
func (c *TeacherModuleController) UnpublishModule(ctx *gin.Context) {
	module, err := c.ModuleService.Unpublish(ctx.Request.Context(), util.GetUserID(ctx), ctx.Param("courseId"), ctx.Param("moduleId"))
	if err != nil {
		util.HandleServiceError(ctx, err)
		return
	}
	util.Success(ctx, module)
}

// @Summary 上传模块视频
// @Tags 教师-模块
// @Accept multipart/form-data
// @Produce json
// @Security BearerAuth
// @Param courseId path string true "课程ID"
// @Param moduleId path string true "模块ID"
// @Param file formData file true "视频文件"
// @Success 200 {object} util.Response{data=model.Module}
// @Router /teacher/courses/{courseId}/modules/{moduleId}/video [post]
func (c *TeacherModuleController) UploadVideo(ctx *gin.Context) {
	file, header, _, err := openUpload(ctx, []string{util.MimeVideo, util.MimeOctetStream})
	if err != nil {
		util.HandleServiceError(ctx, err)
		return
	}
	defer file.Close()

	module, err := c.ModuleService.UploadVideo(ctx.Request.Context(), util.GetUserID(ctx), ctx.Param("courseId"), ctx.Param("moduleId"),
		header.Filename, file, header.Size)
	if err != nil {
		util.HandleServiceError(ctx, err)
		return
	}
	util.Success(ctx, module)
}
