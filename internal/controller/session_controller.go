package controller

import (
	"assessment_backend/internal/model"
	"assessment_backend/internal/service"
	"assessment_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type SessionController struct {
	SessionService  *service.SessionService
	AnswerService   *service.AnswerService
	QuestionService *service.QuestionService
}

func NewSessionController(
	sessionService *service.SessionService,
	answerService *service.AnswerService,
	questionService *service.QuestionService,
) *SessionController {
	return &SessionController{
		SessionService:  sessionService,
		AnswerService:   answerService,
		QuestionService: questionService,
	}
}

type StartSessionRequest struct {
	DurationMinutes int `json:"durationMinutes" binding:"gte=0"`
}

// @Summary 开始或继续作答
// @Description 同一学员对同一 Section 只会有一个 Session，重复调用返回已有的 Session
// @Tags 作答
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Section ID"
// @Param body body StartSessionRequest false "作答时长（分钟），不超过 Section 时长"
// @Success 200 {object} util.Response{data=model.Session}
// @Failure 400 {object} util.Response
// @Failure 404 {object} util.Response
// @Router /api/sections/{id}/sessions [post]
func (c *SessionController) StartSession(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	sectionID, ok := util.ParamUint(ctx, "id")
	if !ok {
		util.BadRequest(ctx, "invalid section id")
		return
	}

	var req StartSessionRequest
	if ctx.Request.ContentLength > 0 {
		if err := ctx.ShouldBindJSON(&req); err != nil {
			util.BadRequest(ctx, err.Error())
			return
		}
	}

	sess, err := c.SessionService.CreateOrGetSession(ctx.Request.Context(), user.UserID, sectionID, req.DurationMinutes)
	if err != nil {
		util.HandleServiceError(ctx, err)
		return
	}
	util.Success(ctx, sess)
}

// @Summary 获取题目
// @Description 不包含正确选项与参考答案
// @Tags 作答
// @Produce json
// @Security BearerAuth
// @Param id path int true "Section ID"
// @Success 200 {object} util.Response{data=[]model.QuestionView}
// @Failure 404 {object} util.Response
// @Router /api/sections/{id}/questions [get]
func (c *SessionController) GetQuestions(ctx *gin.Context) {
	sectionID, ok := util.ParamUint(ctx, "id")
	if !ok {
		util.BadRequest(ctx, "invalid section id")
		return
	}

	questions, err := c.QuestionService.GetQuestions(ctx.Request.Context(), sectionID)
	if err != nil {
		util.HandleServiceError(ctx, err)
		return
	}
	util.Success(ctx, questions)
}

// @Summary 获取 Session 详情
// @Description 截止时间已过的 Session 会先被自动提交
// @Tags 作答
// @Produce json
// @Security BearerAuth
// @Param id path string true "Session ID"
// @Success 200 {object} util.Response{data=service.SessionDetails}
// @Failure 403 {object} util.Response
// @Failure 404 {object} util.Response
// @Router /api/sessions/{id} [get]
func (c *SessionController) GetSession(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	details, err := c.SessionService.GetDetails(ctx.Request.Context(), user.UserID, ctx.Param("id"))
	if err != nil {
		util.HandleServiceError(ctx, err)
		return
	}
	util.Success(ctx, details)
}

// @Summary 保存答案
// @Description 同一题目重复保存会覆盖之前的答案；Session 结束后返回 409
// @Tags 作答
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Session ID"
// @Param questionId path int true "题目ID"
// @Param payload body model.AnswerPayload true "答案"
// @Success 200 {object} util.Response{data=model.Response}
// @Failure 400 {object} util.Response
// @Failure 409 {object} util.Response
// @Router /api/sessions/{id}/responses/{questionId} [put]
func (c *SessionController) SaveAnswer(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	questionID, ok := util.ParamUint(ctx, "questionId")
	if !ok {
		util.BadRequest(ctx, "invalid question id")
		return
	}

	var payload model.AnswerPayload
	if err := ctx.ShouldBindJSON(&payload); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	resp, err := c.AnswerService.Save(ctx.Request.Context(), user.UserID, ctx.Param("id"), questionID, payload)
	if err != nil {
		util.HandleServiceError(ctx, err)
		return
	}
	util.Success(ctx, resp)
}

// @Summary 提交 Session
// @Description 重复提交返回相同结果
// @Tags 作答
// @Produce json
// @Security BearerAuth
// @Param id path string true "Session ID"
// @Success 200 {object} util.Response{data=model.Session}
// @Failure 403 {object} util.Response
// @Failure 404 {object} util.Response
// @Router /api/sessions/{id}/submit [post]
func (c *SessionController) Submit(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	sess, err := c.SessionService.Submit(ctx.Request.Context(), user.UserID, ctx.Param("id"))
	if err != nil {
		util.HandleServiceError(ctx, err)
		return
	}
	util.Success(ctx, sess)
}

// @Summary 作答回顾
// @Description 仅在 Session 结束后可用，包含正确答案与每题判分
// @Tags 作答
// @Produce json
// @Security BearerAuth
// @Param id path string true "Session ID"
// @Success 200 {object} util.Response{data=service.SessionReview}
// @Failure 400 {object} util.Response
// @Router /api/sessions/{id}/review [get]
func (c *SessionController) Review(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	review, err := c.SessionService.Review(ctx.Request.Context(), user.UserID, ctx.Param("id"))
	if err != nil {
		util.HandleServiceError(ctx, err)
		return
	}
	util.Success(ctx, review)
}
