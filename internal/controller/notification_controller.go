package controller

import (
	"strconv"

	"fellowship_backend/internal/service"
	"fellowship_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type NotificationController struct {
	Notifications *service.NotificationService
}

func NewNotificationController(notifications *service.NotificationService) *NotificationController {
	return &NotificationController{Notifications: notifications}
}

// List godoc
// @Summary 我的通知
// @Tags 通知
// @Produce  json
// @Security ApiKeyAuth
// @Param   limit query int false "条数上限，默认 50"
// @Success 200 {object} util.Response{data=[]model.Notification} "成功"
// @Router /api/notifications [get]
func (c *NotificationController) List(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	limit, _ := strconv.Atoi(ctx.DefaultQuery("limit", "50"))
	notifications, err := c.Notifications.List(claims.UserID, limit)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, notifications)
}

// MarkRead godoc
// @Summary 标记已读
// @Tags 通知
// @Produce  json
// @Security ApiKeyAuth
// @Param   id path int true "通知 ID"
// @Success 200 {object} util.Response "成功"
// @Router /api/notifications/{id}/read [post]
func (c *NotificationController) MarkRead(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	if err := c.Notifications.MarkRead(claims.UserID, util.MustParseUint(ctx.Param("id"))); err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, nil)
}
