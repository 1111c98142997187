package controller

import (
	"errors"

	"fellowship_backend/internal/service"
	"fellowship_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type LiveQuizController struct {
	Quiz *service.LiveQuizService
	Hub  *service.QuizHub
}

func NewLiveQuizController(quiz *service.LiveQuizService, hub *service.QuizHub) *LiveQuizController {
	return &LiveQuizController{
		Quiz: quiz,
		Hub:  hub,
	}
}

// quizError 把业务哨兵错误映射为合适的 HTTP 状态
func quizError(ctx *gin.Context, err error) {
	switch {
	case errors.Is(err, util.ErrSessionNotFound), errors.Is(err, util.ErrQuestionNotFound):
		util.NotFound(ctx)
	case errors.Is(err, util.ErrPermissionDenied):
		util.Forbidden(ctx)
	case errors.Is(err, util.ErrQuizNotPending),
		errors.Is(err, util.ErrQuizNotActive),
		errors.Is(err, util.ErrQuizFinished),
		errors.Is(err, util.ErrAlreadyAnswered),
		errors.Is(err, util.ErrQuestionClosed):
		util.Conflict(ctx, err.Error())
	case errors.Is(err, util.ErrInvalidOption), errors.Is(err, util.ErrParticipantNotFound):
		util.BadRequest(ctx, err.Error())
	default:
		util.LogInternalError(ctx, err)
	}
}

// CreateSession godoc
// @Summary 创建实时抢答赛
// @Description 带教创建一场比赛，题目随会话一次性写入后不可变
// @Tags 实时抢答赛
// @Accept  json
// @Produce  json
// @Security ApiKeyAuth
// @Param   body body service.CreateSessionRequest true "比赛定义"
// @Success 201 {object} util.Response{data=model.LiveQuizSession} "创建成功"
// @Failure 400 {object} util.Response "请求参数错误"
// @Router /api/live-quizzes [post]
func (c *LiveQuizController) CreateSession(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	var req service.CreateSessionRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	session, err := c.Quiz.Create(claims.UserID, &req)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Created(ctx, session)
}

// ListSessions godoc
// @Summary 比赛列表
// @Tags 实时抢答赛
// @Produce  json
// @Param   cohortId query int false "营期 ID，缺省为当前用户所属营期"
// @Success 200 {object} util.Response{data=[]model.LiveQuizSession} "成功"
// @Router /api/live-quizzes [get]
func (c *LiveQuizController) ListSessions(ctx *gin.Context) {
	cohortID := util.MustParseUint(ctx.Query("cohortId"))
	if cohortID == 0 {
		if claims := util.GetUserFromContext(ctx); claims != nil {
			cohortID = claims.CohortID
		}
	}
	sessions, err := c.Quiz.List(cohortID)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, sessions)
}

// GetSession godoc
// @Summary 比赛详情
// @Tags 实时抢答赛
// @Produce  json
// @Param   id path int true "比赛 ID"
// @Success 200 {object} util.Response{data=model.LiveQuizSession} "成功"
// @Failure 404 {object} util.Response "比赛不存在"
// @Router /api/live-quizzes/{id} [get]
func (c *LiveQuizController) GetSession(ctx *gin.Context) {
	session, err := c.Quiz.Get(util.MustParseUint(ctx.Param("id")))
	if err != nil {
		quizError(ctx, err)
		return
	}
	util.Success(ctx, session)
}

// Join godoc
// @Summary 加入比赛
// @Description 幂等：重复加入直接返回当前名单
// @Tags 实时抢答赛
// @Produce  json
// @Security ApiKeyAuth
// @Param   id path int true "比赛 ID"
// @Success 200 {object} util.Response{data=[]service.QuizStanding} "成功"
// @Failure 409 {object} util.Response "比赛已结束"
// @Router /api/live-quizzes/{id}/join [post]
func (c *LiveQuizController) Join(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	standings, err := c.Quiz.Join(util.MustParseUint(ctx.Param("id")), claims.UserID)
	if err != nil {
		quizError(ctx, err)
		return
	}
	util.Success(ctx, standings)
}

// Start godoc
// @Summary 开始比赛
// @Description 仅主持人可操作，且比赛必须处于待开始状态
// @Tags 实时抢答赛
// @Produce  json
// @Security ApiKeyAuth
// @Param   id path int true "比赛 ID"
// @Success 200 {object} util.Response "成功"
// @Failure 403 {object} util.Response "非主持人"
// @Failure 409 {object} util.Response "状态不允许"
// @Router /api/live-quizzes/{id}/start [post]
func (c *LiveQuizController) Start(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	if err := c.Quiz.Start(util.MustParseUint(ctx.Param("id")), claims.UserID); err != nil {
		quizError(ctx, err)
		return
	}
	util.Success(ctx, nil)
}

// Advance godoc
// @Summary 推进下一题
// @Description 主持人翻页；越过最后一题即结算比赛
// @Tags 实时抢答赛
// @Produce  json
// @Security ApiKeyAuth
// @Param   id path int true "比赛 ID"
// @Success 200 {object} util.Response "成功"
// @Router /api/live-quizzes/{id}/advance [post]
func (c *LiveQuizController) Advance(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	if err := c.Quiz.Advance(util.MustParseUint(ctx.Param("id")), claims.UserID); err != nil {
		quizError(ctx, err)
		return
	}
	util.Success(ctx, nil)
}

// Cancel godoc
// @Summary 中止比赛
// @Tags 实时抢答赛
// @Produce  json
// @Security ApiKeyAuth
// @Param   id path int true "比赛 ID"
// @Success 200 {object} util.Response "成功"
// @Router /api/live-quizzes/{id}/cancel [post]
func (c *LiveQuizController) Cancel(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	if err := c.Quiz.Cancel(util.MustParseUint(ctx.Param("id")), claims.UserID); err != nil {
		quizError(ctx, err)
		return
	}
	util.Success(ctx, nil)
}

// swagger:model SubmitAnswerRequest
// 作答耗时由服务端按题目下发时刻计算，请求体不携带也不接受耗时字段
type SubmitAnswerRequest struct {
	QuestionID uint `json:"questionId" binding:"required"`
	Option     *int `json:"option" binding:"required"`
}

// SubmitAnswer godoc
// @Summary 提交作答
// @Description WebSocket 之外的 HTTP 降级通道，语义一致。计时以服务端下发题目的时刻为准，客户端时间不参与计分
// @Tags 实时抢答赛
// @Accept  json
// @Produce  json
// @Security ApiKeyAuth
// @Param   id path int true "比赛 ID"
// @Param   body body SubmitAnswerRequest true "作答内容"
// @Success 200 {object} util.Response{data=service.AnswerOutcome} "成功"
// @Failure 409 {object} util.Response "重复作答或题目已关闭"
// @Router /api/live-quizzes/{id}/answers [post]
func (c *LiveQuizController) SubmitAnswer(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	var req SubmitAnswerRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	outcome, err := c.Quiz.SubmitAnswer(util.MustParseUint(ctx.Param("id")), claims.UserID, req.QuestionID, *req.Option)
	if err != nil {
		quizError(ctx, err)
		return
	}
	util.Success(ctx, outcome)
}

// GetStandings godoc
// @Summary 比赛榜单
// @Description 进行中为实时比分，已结束为冻结的最终名次
// @Tags 实时抢答赛
// @Produce  json
// @Param   id path int true "比赛 ID"
// @Success 200 {object} util.Response{data=[]service.QuizStanding} "成功"
// @Router /api/live-quizzes/{id}/standings [get]
func (c *LiveQuizController) GetStandings(ctx *gin.Context) {
	standings, err := c.Quiz.Standings(util.MustParseUint(ctx.Param("id")))
	if err != nil {
		quizError(ctx, err)
		return
	}
	util.Success(ctx, standings)
}

// ServeWs godoc
// @Summary 比赛 WebSocket 连接
// @Description 升级为 WebSocket，接收比赛事件并可提交作答。需先加入比赛
// @Tags 实时抢答赛
// @Security ApiKeyAuth
// @Param   id path int true "比赛 ID"
// @Router /api/live-quizzes/{id}/ws [get]
func (c *LiveQuizController) ServeWs(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	sessionID := util.MustParseUint(ctx.Param("id"))
	if _, err := c.Quiz.Get(sessionID); err != nil {
		quizError(ctx, err)
		return
	}

	service.ServeQuizWs(c.Hub, ctx.Writer, ctx.Request, claims.UserID, sessionID)
}
