package controller

import (
	"fellowship_backend/internal/model"
	"fellowship_backend/internal/service"
	"fellowship_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type PointsController struct {
	Points *service.PointsService
}

func NewPointsController(points *service.PointsService) *PointsController {
	return &PointsController{Points: points}
}

// GetMyPoints godoc
// @Summary 我的当月积分
// @Description 当前用户的当月累计与月度上限
// @Tags 积分
// @Produce  json
// @Security ApiKeyAuth
// @Success 200 {object} util.Response{data=object} "成功"
// @Router /api/points/me [get]
func (c *PointsController) GetMyPoints(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	total, cap, err := c.Points.MonthlyTotal(claims.UserID)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, gin.H{
		"monthlyTotal": total,
		"monthlyCap":   cap,
	})
}

// swagger:model AdjustPointsRequest
type AdjustPointsRequest struct {
	UserID uint   `json:"userId" binding:"required"`
	Amount int    `json:"amount" binding:"required"`
	Reason string `json:"reason" binding:"required"`
}

// AdjustPoints godoc
// @Summary 管理员修正积分
// @Description 人工增减用户积分，不受月度上限约束，可为负数
// @Tags 积分
// @Accept  json
// @Produce  json
// @Security ApiKeyAuth
// @Param   body body AdjustPointsRequest true "修正内容"
// @Success 200 {object} util.Response "成功"
// @Failure 400 {object} util.Response "请求参数错误"
// @Router /api/admin/points/adjust [post]
func (c *PointsController) AdjustPoints(ctx *gin.Context) {
	var req AdjustPointsRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	granted, err := c.Points.Grant(req.UserID, req.Amount, model.EventAdminAdjustment, req.Reason)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, gin.H{"applied": granted})
}
