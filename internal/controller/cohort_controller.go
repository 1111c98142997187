package controller

import (
	"errors"
	"time"

	"fellowship_backend/internal/model"
	"fellowship_backend/internal/service"
	"fellowship_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type CohortController struct {
	Cohorts *service.CohortService
}

func NewCohortController(cohorts *service.CohortService) *CohortController {
	return &CohortController{Cohorts: cohorts}
}

// swagger:model CreateCohortRequest
type CreateCohortRequest struct {
	Name      string    `json:"name" binding:"required,max=100"`
	StartDate time.Time `json:"startDate" binding:"required"`
	EndDate   time.Time `json:"endDate" binding:"required"`
}

// CreateCohort godoc
// @Summary 创建营期
// @Description 管理员创建训练营期，起止时间决定积分目标与月度上限
// @Tags 营期
// @Accept  json
// @Produce  json
// @Security ApiKeyAuth
// @Param   body body CreateCohortRequest true "营期信息"
// @Success 201 {object} util.Response{data=model.Cohort} "创建成功"
// @Failure 400 {object} util.Response "请求参数错误"
// @Router /api/admin/cohorts [post]
func (c *CohortController) CreateCohort(ctx *gin.Context) {
	var req CreateCohortRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}
	if !req.EndDate.After(req.StartDate) {
		util.BadRequest(ctx, "endDate 必须晚于 startDate")
		return
	}

	cohort := &model.Cohort{
		Name:      req.Name,
		StartDate: req.StartDate,
		EndDate:   req.EndDate,
		Active:    true,
	}
	if err := c.Cohorts.Create(cohort); err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Created(ctx, cohort)
}

// GetOverview godoc
// @Summary 营期概览
// @Description 营期基础信息与按时长换算的积分目标、月度上限
// @Tags 营期
// @Produce  json
// @Param   id path int true "营期 ID"
// @Success 200 {object} util.Response{data=service.CohortOverview} "成功"
// @Failure 404 {object} util.Response "营期不存在"
// @Router /api/cohorts/{id} [get]
func (c *CohortController) GetOverview(ctx *gin.Context) {
	overview, err := c.Cohorts.Overview(util.MustParseUint(ctx.Param("id")))
	if err != nil {
		if errors.Is(err, util.ErrCohortNotFound) {
			util.NotFound(ctx)
			return
		}
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, overview)
}

// swagger:model AssignUserRequest
type AssignUserRequest struct {
	UserID uint `json:"userId" binding:"required"`
}

// AssignUser godoc
// @Summary 编入营期
// @Description 管理员把用户编入指定营期
// @Tags 营期
// @Accept  json
// @Produce  json
// @Security ApiKeyAuth
// @Param   id path int true "营期 ID"
// @Param   body body AssignUserRequest true "用户"
// @Success 200 {object} util.Response "成功"
// @Failure 404 {object} util.Response "用户或营期不存在"
// @Router /api/admin/cohorts/{id}/members [post]
func (c *CohortController) AssignUser(ctx *gin.Context) {
	var req AssignUserRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	err := c.Cohorts.AssignUser(req.UserID, util.MustParseUint(ctx.Param("id")))
	if err != nil {
		if errors.Is(err, util.ErrCohortNotFound) || errors.Is(err, util.ErrUserNotFound) {
			util.NotFound(ctx)
			return
		}
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, nil)
}
