package controller

import (
	"strconv"
	"time"

	"fellowship_backend/internal/service"
	"fellowship_backend/internal/util"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type LeaderboardController struct {
	Leaderboard *service.LeaderboardService
	Archive     *service.ArchiveService
}

func NewLeaderboardController(leaderboard *service.LeaderboardService, archive *service.ArchiveService) *LeaderboardController {
	return &LeaderboardController{
		Leaderboard: leaderboard,
		Archive:     archive,
	}
}

func parseFilter(ctx *gin.Context) service.LeaderboardFilter {
	month, _ := strconv.Atoi(ctx.Query("month"))
	year, _ := strconv.Atoi(ctx.Query("year"))
	page, _ := strconv.Atoi(ctx.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(ctx.DefaultQuery("limit", "20"))
	return service.LeaderboardFilter{
		Month:    month,
		Year:     year,
		CohortID: util.MustParseUint(ctx.Query("cohortId")),
		Page:     page,
		Limit:    limit,
	}
}

// GetLeaderboard godoc
// @Summary 月度排行榜
// @Description 指定月份（可选营期）的实时排行榜，综合分 = 基础积分 + 连续活跃加成
// @Tags 排行榜
// @Produce  json
// @Param   month query int false "月份 1-12，缺省为当月"
// @Param   year query int false "年份，缺省为当年"
// @Param   cohortId query int false "营期 ID"
// @Param   page query int false "页码"
// @Param   limit query int false "每页条数"
// @Success 200 {object} util.Response{data=util.PageResponse} "成功"
// @Router /api/leaderboard [get]
func (c *LeaderboardController) GetLeaderboard(ctx *gin.Context) {
	filter := parseFilter(ctx)
	rows, total, err := c.Leaderboard.GetLeaderboard(filter)
	if err != nil {
		if service.IsNotFound(err) {
			util.NotFound(ctx)
			return
		}
		util.LogInternalError(ctx, err)
		return
	}

	util.Success(ctx, util.PageResponse{
		List:  rows,
		Total: int64(total),
		Page:  filter.Page,
		Limit: filter.Limit,
	})
}

// GetMyRank godoc
// @Summary 我的名次
// @Description 当前用户在指定月份排行榜中的名次，非学员角色不上榜
// @Tags 排行榜
// @Produce  json
// @Security ApiKeyAuth
// @Param   month query int false "月份 1-12"
// @Param   year query int false "年份"
// @Success 200 {object} util.Response{data=service.UserRankResult} "成功"
// @Router /api/leaderboard/me [get]
func (c *LeaderboardController) GetMyRank(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	result, err := c.Leaderboard.GetUserRank(claims.UserID, parseFilter(ctx))
	if err != nil {
		if service.IsNotFound(err) {
			util.NotFound(ctx)
			return
		}
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, result)
}

// GetArchive godoc
// @Summary 历史榜单快照
// @Description 已归档月份的最终名次，归档后不再变化
// @Tags 排行榜
// @Produce  json
// @Param   cohortId query int true "营期 ID"
// @Param   month query int true "月份 1-12"
// @Param   year query int true "年份"
// @Success 200 {object} util.Response{data=model.MonthlyLeaderboard} "成功"
// @Failure 404 {object} util.Response "该月尚未归档"
// @Router /api/leaderboard/archive [get]
func (c *LeaderboardController) GetArchive(ctx *gin.Context) {
	cohortID := util.MustParseUint(ctx.Query("cohortId"))
	month, _ := strconv.Atoi(ctx.Query("month"))
	year, _ := strconv.Atoi(ctx.Query("year"))
	if cohortID == 0 || month < 1 || month > 12 || year == 0 {
		util.BadRequest(ctx, "cohortId、month、year 均为必填")
		return
	}

	snapshot, err := c.Archive.LeaderboardRepo.FindSnapshot(cohortID, month, year)
	if err == gorm.ErrRecordNotFound {
		util.NotFound(ctx)
		return
	}
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, snapshot)
}

// TriggerArchive godoc
// @Summary 手动触发月度归档
// @Description 幂等：已归档的营期月份会被跳过
// @Tags 排行榜
// @Produce  json
// @Security ApiKeyAuth
// @Success 200 {object} util.Response "成功"
// @Router /api/admin/leaderboard/archive [post]
func (c *LeaderboardController) TriggerArchive(ctx *gin.Context) {
	if err := c.Archive.ArchivePriorMonth(time.Now()); err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, nil)
}
