package service

import (
	"sort"
	"time"

	"fellowship_backend/internal/model"
	"fellowship_backend/internal/repository"

	"gorm.io/gorm"
)

// 连续活跃判定最多回看的天数（覆盖最高 28 天档位）
const streakLookbackDays = 40

// 聊天量加成：窗口内聊天+回复总数达标时一次性 +30
const (
	chatVolumeFloor = 50
	chatVolumeBonus = 30
)

type LeaderboardFilter struct {
	Month    int
	Year     int
	CohortID uint
	Page     int
	Limit    int
}

type LeaderboardRow struct {
	Rank           int    `json:"rank"`
	UserID         uint   `json:"userId"`
	Name           string `json:"name"`
	Avatar         string `json:"avatar,omitempty"`
	BasePoints     int    `json:"basePoints"`
	ChatStreakDays int    `json:"chatStreakDays"`
	ActivityStreak int    `json:"activityStreakDays"`
	BonusPoints    int    `json:"bonusPoints"`
	TotalPoints    int    `json:"totalPoints"`
}

type UserRankResult struct {
	Ranked       bool            `json:"ranked"`
	Row          *LeaderboardRow `json:"row,omitempty"`
	Participants int             `json:"participants"`
}

type LeaderboardService struct {
	UserRepo     *repository.UserRepository
	CohortRepo   *repository.CohortRepository
	PointRepo    *repository.PointRepository
	ActivityRepo *repository.ActivityRepository
}

func NewLeaderboardService(
	userRepo *repository.UserRepository,
	cohortRepo *repository.CohortRepository,
	pointRepo *repository.PointRepository,
	activityRepo *repository.ActivityRepository,
) *LeaderboardService {
	return &LeaderboardService{
		UserRepo:     userRepo,
		CohortRepo:   cohortRepo,
		PointRepo:    pointRepo,
		ActivityRepo: activityRepo,
	}
}

func truncateToDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// monthWindow 日历月的起止瞬间
func monthWindow(month, year int, loc *time.Location) (time.Time, time.Time) {
	start := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, loc)
	end := start.AddDate(0, 1, 0).Add(-time.Nanosecond)
	return start, end
}

// clipWindow 将窗口裁剪进营期存续区间 [start, min(end, now)]。
// 第三个返回值为 false 表示窗口与营期完全不相交。
func clipWindow(winStart, winEnd, cohortStart, cohortEnd, now time.Time) (time.Time, time.Time, bool) {
	activeEnd := cohortEnd
	if now.Before(activeEnd) {
		activeEnd = now
	}
	if winStart.Before(cohortStart) {
		winStart = cohortStart
	}
	if winEnd.After(activeEnd) {
		winEnd = activeEnd
	}
	if winEnd.Before(winStart) {
		return winStart, winEnd, false
	}
	return winStart, winEnd, true
}

// dayStreak 从 endDay 往回数连续活跃天数。
// 最近一次活跃必须落在 endDay 当天或前一天，否则视为断连
func dayStreak(days map[time.Time]bool, endDay time.Time) int {
	anchor := endDay
	if !days[anchor] {
		anchor = endDay.AddDate(0, 0, -1)
		if !days[anchor] {
			return 0
		}
	}
	streak := 0
	for day := anchor; days[day]; day = day.AddDate(0, 0, -1) {
		streak++
	}
	return streak
}

// streakBonus 连续活跃天数的加成档位
func streakBonus(days int) int {
	switch {
	case days >= 28:
		return 25
	case days >= 21:
		return 20
	case days >= 14:
		return 15
	case days >= 7:
		return 10
	default:
		return 0
	}
}

// composeRows 合成综合分并排序：综合分降序，平分时基础分高者在前，
// 名次为排序后的 1..N 稠密序号
func composeRows(users []model.User, base map[uint]int, chatDays, activityDays map[uint]map[time.Time]bool, volumes map[uint]int, endDay time.Time) []LeaderboardRow {
	rows := make([]LeaderboardRow, 0, len(users))
	for _, user := range users {
		chatStreak := dayStreak(chatDays[user.ID], endDay)
		activityStreak := dayStreak(activityDays[user.ID], endDay)

		bonus := streakBonus(chatStreak) + streakBonus(activityStreak)
		if volumes[user.ID] >= chatVolumeFloor {
			bonus += chatVolumeBonus
		}

		basePoints := base[user.ID]
		rows = append(rows, LeaderboardRow{
			UserID:         user.ID,
			Name:           user.Name,
			Avatar:         user.Avatar,
			BasePoints:     basePoints,
			ChatStreakDays: chatStreak,
			ActivityStreak: activityStreak,
			BonusPoints:    bonus,
			TotalPoints:    basePoints + bonus,
		})
	}

	sort.SliceStable(rows, func(i, j int) bool {
		if rows[i].TotalPoints != rows[j].TotalPoints {
			return rows[i].TotalPoints > rows[j].TotalPoints
		}
		return rows[i].BasePoints > rows[j].BasePoints
	})
	for i := range rows {
		rows[i].Rank = i + 1
	}
	return rows
}

func groupDays(rows []repository.UserDay, into map[uint]map[time.Time]bool) {
	for _, row := range rows {
		days, ok := into[row.UserID]
		if !ok {
			days = make(map[time.Time]bool)
			into[row.UserID] = days
		}
		days[truncateToDay(row.Day)] = true
	}
}

// rankAll 拉取窗口内全部数据并合成完整榜单
func (s *LeaderboardService) rankAll(filter LeaderboardFilter) ([]LeaderboardRow, error) {
	now := time.Now()
	month, year := filter.Month, filter.Year
	if month == 0 {
		month = int(now.Month())
	}
	if year == 0 {
		year = now.Year()
	}

	winStart, winEnd := monthWindow(month, year, now.Location())
	if filter.CohortID != 0 {
		cohort, err := s.CohortRepo.FindByID(filter.CohortID)
		if err != nil {
			return nil, err
		}
		var inRange bool
		winStart, winEnd, inRange = clipWindow(winStart, winEnd, cohort.StartDate, cohort.EndDate, now)
		if !inRange {
			// 营期已结束或尚未开始的月份没有排行榜
			return []LeaderboardRow{}, nil
		}
	}

	users, err := s.UserRepo.FindFellows(filter.CohortID)
	if err != nil {
		return nil, err
	}

	base, err := s.PointRepo.SumByUserInWindow(winStart, winEnd)
	if err != nil {
		return nil, err
	}

	chatRows, err := s.ActivityRepo.ChatDaysByUser(winStart, winEnd)
	if err != nil {
		return nil, err
	}
	commentRows, err := s.ActivityRepo.CommentDaysByUser(winStart, winEnd)
	if err != nil {
		return nil, err
	}
	grantRows, err := s.PointRepo.GrantDaysByUser(winStart, winEnd)
	if err != nil {
		return nil, err
	}

	// 聊天连续天数看聊天与回复；总活跃连续天数再叠加积分事件
	chatDays := make(map[uint]map[time.Time]bool)
	groupDays(chatRows, chatDays)
	groupDays(commentRows, chatDays)

	activityDays := make(map[uint]map[time.Time]bool)
	groupDays(chatRows, activityDays)
	groupDays(commentRows, activityDays)
	groupDays(grantRows, activityDays)

	volumes, err := s.ActivityRepo.ChatVolumeByUser(winStart, winEnd)
	if err != nil {
		return nil, err
	}

	return composeRows(users, base, chatDays, activityDays, volumes, truncateToDay(winEnd)), nil
}

// GetLeaderboard 指定月份（可选营期）的分页榜单
func (s *LeaderboardService) GetLeaderboard(filter LeaderboardFilter) ([]LeaderboardRow, int, error) {
	rows, err := s.rankAll(filter)
	if err != nil {
		return nil, 0, err
	}

	total := len(rows)
	page := filter.Page
	if page < 1 {
		page = 1
	}
	limit := filter.Limit
	if limit < 1 {
		limit = 20
	}

	start := (page - 1) * limit
	if start >= total {
		return []LeaderboardRow{}, total, nil
	}
	end := start + limit
	if end > total {
		end = total
	}
	return rows[start:end], total, nil
}

// GetUserRank 同一套计算取单个用户的名次；非学员角色返回未上榜哨兵值
func (s *LeaderboardService) GetUserRank(userID uint, filter LeaderboardFilter) (*UserRankResult, error) {
	user, err := s.UserRepo.FindByID(userID)
	if err != nil {
		return nil, err
	}
	if user.Role != model.Fellow {
		return &UserRankResult{Ranked: false}, nil
	}
	if filter.CohortID == 0 {
		filter.CohortID = user.CohortID
	}

	rows, err := s.rankAll(filter)
	if err != nil {
		return nil, err
	}
	for i := range rows {
		if rows[i].UserID == userID {
			return &UserRankResult{Ranked: true, Row: &rows[i], Participants: len(rows)}, nil
		}
	}
	return &UserRankResult{Ranked: false, Participants: len(rows)}, nil
}

// IsNotFound 供控制层区分未找到与内部错误
func IsNotFound(err error) bool {
	return err == gorm.ErrRecordNotFound
}
