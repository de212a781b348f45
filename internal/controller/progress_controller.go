package controller

import (
	"assessment_backend/internal/service"
	"assessment_backend/internal/util"
	"context"

	"github.com/gin-gonic/gin"
)

type ProgressController struct {
	ProgressService *service.ProgressService
}

func NewProgressController(progressService *service.ProgressService) *ProgressController {
	return &ProgressController{ProgressService: progressService}
}

// @Summary 课程解锁状态
// @Tags 学习进度
// @Produce json
// @Security BearerAuth
// @Param id path int true "课程ID"
// @Success 200 {object} util.Response{data=[]service.TopicGate}
// @Failure 404 {object} util.Response
// @Router /api/courses/{id}/progress [get]
func (c *ProgressController) GetCourseProgress(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	courseID, ok := util.ParamUint(ctx, "id")
	if !ok {
		util.BadRequest(ctx, "invalid course id")
		return
	}

	gates, err := c.ProgressService.GetCourseProgress(ctx.Request.Context(), user.UserID, courseID)
	if err != nil {
		util.HandleServiceError(ctx, err)
		return
	}
	util.Success(ctx, gates)
}

// @Summary 标记视频完成
// @Tags 学习进度
// @Produce json
// @Security BearerAuth
// @Param id path int true "主题ID"
// @Success 200 {object} util.Response{data=[]service.TopicGate}
// @Failure 400 {object} util.Response
// @Router /api/topics/{id}/video-done [post]
func (c *ProgressController) MarkVideoDone(ctx *gin.Context) {
	c.mark(ctx, c.ProgressService.MarkVideoDone)
}

// @Summary 标记练习完成
// @Description 需要先完成视频
// @Tags 学习进度
// @Produce json
// @Security BearerAuth
// @Param id path int true "主题ID"
// @Success 200 {object} util.Response{data=[]service.TopicGate}
// @Failure 400 {object} util.Response
// @Router /api/topics/{id}/drill-done [post]
func (c *ProgressController) MarkDrillDone(ctx *gin.Context) {
	c.mark(ctx, c.ProgressService.MarkDrillDone)
}

type markFunc func(ctx context.Context, learnerID, topicID uint) ([]service.TopicGate, error)

func (c *ProgressController) mark(ctx *gin.Context, fn markFunc) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	topicID, ok := util.ParamUint(ctx, "id")
	if !ok {
		util.BadRequest(ctx, "invalid topic id")
		return
	}

	gates, err := fn(ctx.Request.Context(), user.UserID, topicID)
	if err != nil {
		util.HandleServiceError(ctx, err)
		return
	}
	util.Success(ctx, gates)
}
