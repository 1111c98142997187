package controller

import (
	"fellowship_backend/internal/service"
	"fellowship_backend/internal/util"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type CommunityController struct {
	Community *service.CommunityService
}

func NewCommunityController(community *service.CommunityService) *CommunityController {
	return &CommunityController{Community: community}
}

// swagger:model PostDiscussionRequest
type PostDiscussionRequest struct {
	Title   string `json:"title" binding:"required,max=200"`
	Content string `json:"content" binding:"required"`
}

// PostDiscussion godoc
// @Summary 发起讨论
// @Description 创建讨论帖并发放发帖积分
// @Tags 社区
// @Accept  json
// @Produce  json
// @Security ApiKeyAuth
// @Param   body body PostDiscussionRequest true "讨论内容"
// @Success 201 {object} util.Response{data=object} "创建成功"
// @Router /api/discussions [post]
func (c *CommunityController) PostDiscussion(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	var req PostDiscussionRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	// 营期取自令牌；老令牌没带时回源查一次
	cohortID := claims.CohortID
	if cohortID == 0 {
		if u, err := c.Community.Achievements.UserRepo.FindByID(claims.UserID); err == nil {
			cohortID = u.CohortID
		}
	}

	discussion, unlocked, err := c.Community.PostDiscussion(claims.UserID, cohortID, req.Title, req.Content)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Created(ctx, gin.H{
		"discussion":      discussion,
		"newAchievements": unlocked,
	})
}

// swagger:model PostCommentRequest
type PostCommentRequest struct {
	Content string `json:"content" binding:"required"`
}

// PostComment godoc
// @Summary 回复讨论
// @Tags 社区
// @Accept  json
// @Produce  json
// @Security ApiKeyAuth
// @Param   id path int true "讨论 ID"
// @Param   body body PostCommentRequest true "回复内容"
// @Success 201 {object} util.Response{data=object} "创建成功"
// @Failure 404 {object} util.Response "讨论不存在"
// @Router /api/discussions/{id}/comments [post]
func (c *CommunityController) PostComment(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	var req PostCommentRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	comment, unlocked, err := c.Community.PostComment(claims.UserID, util.MustParseUint(ctx.Param("id")), req.Content)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			util.NotFound(ctx)
			return
		}
		util.LogInternalError(ctx, err)
		return
	}
	util.Created(ctx, gin.H{
		"comment":         comment,
		"newAchievements": unlocked,
	})
}

// swagger:model PostChatRequest
type PostChatRequest struct {
	Content string `json:"content" binding:"required,max=2000"`
}

// PostChat godoc
// @Summary 发送群聊消息
// @Description 消息计入连续活跃与聊天量统计，本身不发积分
// @Tags 社区
// @Accept  json
// @Produce  json
// @Security ApiKeyAuth
// @Param   body body PostChatRequest true "消息内容"
// @Success 201 {object} util.Response{data=model.ChatMessage} "创建成功"
// @Router /api/chat/messages [post]
func (c *CommunityController) PostChat(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	var req PostChatRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	cohortID := claims.CohortID
	if cohortID == 0 {
		if u, err := c.Community.Achievements.UserRepo.FindByID(claims.UserID); err == nil {
			cohortID = u.CohortID
		}
	}

	msg, err := c.Community.PostChatMessage(claims.UserID, cohortID, req.Content)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Created(ctx, msg)
}

// swagger:model RateDiscussionRequest
type RateDiscussionRequest struct {
	Score int `json:"score" binding:"min=0,max=100"`
}

// RateDiscussion godoc
// @Summary 讨论质量评分
// @Description 带教打分，达标的讨论计入质量类成就
// @Tags 社区
// @Accept  json
// @Produce  json
// @Security ApiKeyAuth
// @Param   id path int true "讨论 ID"
// @Param   body body RateDiscussionRequest true "评分"
// @Success 200 {object} util.Response "成功"
// @Failure 404 {object} util.Response "讨论不存在"
// @Router /api/discussions/{id}/rate [post]
func (c *CommunityController) RateDiscussion(ctx *gin.Context) {
	var req RateDiscussionRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	if err := c.Community.RateDiscussion(util.MustParseUint(ctx.Param("id")), req.Score); err != nil {
		if err == gorm.ErrRecordNotFound {
			util.NotFound(ctx)
			return
		}
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, nil)
}
