package controller

import (
	"errors"

	"fellowship_backend/internal/model"
	"fellowship_backend/internal/service"
	"fellowship_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type ContentController struct {
	Content *service.ContentService
}

func NewContentController(content *service.ContentService) *ContentController {
	return &ContentController{Content: content}
}

// swagger:model CreateResourceRequest
type CreateResourceRequest struct {
	Title     string `json:"title" binding:"required,max=200"`
	URL       string `json:"url" binding:"omitempty,url"`
	CohortID  uint   `json:"cohortId"`
	SessionNo int    `json:"sessionNo"`
	Core      *bool  `json:"core"`
	Month     int    `json:"month" binding:"omitempty,min=1,max=12"`
	Year      int    `json:"year"`
}

// CreateResource godoc
// @Summary 创建学习资源
// @Description 带教发布学习资源，month/year 缺省取当前月份
// @Tags 学习内容
// @Accept  json
// @Produce  json
// @Security ApiKeyAuth
// @Param   body body CreateResourceRequest true "资源信息"
// @Success 201 {object} util.Response{data=model.Resource} "创建成功"
// @Router /api/resources [post]
func (c *ContentController) CreateResource(ctx *gin.Context) {
	var req CreateResourceRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	core := true
	if req.Core != nil {
		core = *req.Core
	}
	resource := &model.Resource{
		Title:     req.Title,
		URL:       req.URL,
		CohortID:  req.CohortID,
		SessionNo: req.SessionNo,
		Core:      core,
		Month:     req.Month,
		Year:      req.Year,
	}
	if err := c.Content.CreateResource(resource); err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Created(ctx, resource)
}

// ListResources godoc
// @Summary 资源列表
// @Tags 学习内容
// @Produce  json
// @Param   cohortId query int false "营期 ID"
// @Success 200 {object} util.Response{data=[]model.Resource} "成功"
// @Router /api/resources [get]
func (c *ContentController) ListResources(ctx *gin.Context) {
	resources, err := c.Content.ListResources(util.MustParseUint(ctx.Query("cohortId")))
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, resources)
}

// CompleteResource godoc
// @Summary 标记资源完成
// @Description 幂等：重复标记不再发分。首次完成发放积分并触发成就评估
// @Tags 学习内容
// @Produce  json
// @Security ApiKeyAuth
// @Param   id path int true "资源 ID"
// @Success 200 {object} util.Response{data=service.CompletionResult} "成功"
// @Failure 404 {object} util.Response "资源不存在"
// @Router /api/resources/{id}/complete [post]
func (c *ContentController) CompleteResource(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	result, err := c.Content.CompleteResource(claims.UserID, util.MustParseUint(ctx.Param("id")))
	if err != nil {
		if errors.Is(err, util.ErrResourceNotFound) {
			util.NotFound(ctx)
			return
		}
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, result)
}

// SubmitQuiz godoc
// @Summary 提交测验成绩
// @Description 记录普通测验成绩，及格发放积分，满分计入成就统计
// @Tags 学习内容
// @Accept  json
// @Produce  json
// @Security ApiKeyAuth
// @Param   body body service.QuizSubmission true "成绩"
// @Success 200 {object} util.Response{data=service.QuizOutcome} "成功"
// @Router /api/quizzes/submit [post]
func (c *ContentController) SubmitQuiz(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	var req service.QuizSubmission
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}
	if req.Score > req.MaxScore {
		util.BadRequest(ctx, "score 不能超过 maxScore")
		return
	}

	outcome, err := c.Content.SubmitQuiz(claims.UserID, &req)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, outcome)
}
