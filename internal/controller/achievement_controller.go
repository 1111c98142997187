package controller

import (
	"fmt"
	"path/filepath"

	"fellowship_backend/internal/model"
	"fellowship_backend/internal/service"
	"fellowship_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type AchievementController struct {
	Achievements *service.AchievementService
	Storage      *service.StorageService
}

func NewAchievementController(achievements *service.AchievementService, storage *service.StorageService) *AchievementController {
	return &AchievementController{
		Achievements: achievements,
		Storage:      storage,
	}
}

// ListCatalog godoc
// @Summary 成就目录
// @Description 全部可解锁成就的定义列表
// @Tags 成就
// @Produce  json
// @Success 200 {object} util.Response{data=[]model.Achievement} "成功"
// @Router /api/achievements [get]
func (c *AchievementController) ListCatalog(ctx *gin.Context) {
	definitions, err := c.Achievements.AchievementRepo.FindAll()
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, definitions)
}

// GetMyAchievements godoc
// @Summary 我的成就
// @Description 当前用户已解锁徽章与当月积分概览
// @Tags 成就
// @Produce  json
// @Security ApiKeyAuth
// @Success 200 {object} util.Response{data=object} "成功"
// @Router /api/achievements/me [get]
func (c *AchievementController) GetMyAchievements(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	result, err := c.Achievements.GetUserAchievements(claims.UserID)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, result)
}

// Recheck godoc
// @Summary 重新评估成就
// @Description 立即对当前用户做一轮成就评估，返回新解锁项
// @Tags 成就
// @Produce  json
// @Security ApiKeyAuth
// @Success 200 {object} util.Response{data=[]model.Achievement} "成功"
// @Router /api/achievements/recheck [post]
func (c *AchievementController) Recheck(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	unlocked, err := c.Achievements.CheckAndAward(claims.UserID)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, unlocked)
}

// UploadIcon godoc
// @Summary 上传成就图标
// @Description 上传成就徽章图片，返回可访问的 URL
// @Tags 成就
// @Accept  multipart/form-data
// @Produce  json
// @Security ApiKeyAuth
// @Param   file formData file true "图标文件"
// @Success 200 {object} util.Response{data=object} "成功"
// @Failure 400 {object} util.Response "请求参数错误"
// @Router /api/admin/achievements/icon [post]
func (c *AchievementController) UploadIcon(ctx *gin.Context) {
	file, header, err := ctx.Request.FormFile("file")
	if err != nil {
		util.BadRequest(ctx, "缺少文件")
		return
	}
	defer file.Close()

	contentType := header.Header.Get("Content-Type")
	if len(contentType) < len(util.MimeImage) || contentType[:len(util.MimeImage)] != util.MimeImage {
		util.BadRequest(ctx, "仅支持图片文件")
		return
	}

	// 文件名不可预测，避免覆盖与猜测式拉取
	filename := fmt.Sprintf("icons/%s%s", model.GenerateUUID(), filepath.Ext(header.Filename))
	url, err := c.Storage.Upload(ctx.Request.Context(), filename, file, header.Size, contentType)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, gin.H{"url": url})
}
