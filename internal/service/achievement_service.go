package service

import (
	"fmt"
	"time"

	"fellowship_backend/internal/model"
	"fellowship_backend/internal/repository"
	"fellowship_backend/pkg/logger"
	"fellowship_backend/pkg/monitoring"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// 讨论被视为高质量的 AI 评分下限
const qualityScoreFloor = 70

type AchievementService struct {
	AchievementRepo *repository.AchievementRepository
	UserRepo        *repository.UserRepository
	CohortRepo      *repository.CohortRepository
	PointRepo       *repository.PointRepository
	ActivityRepo    *repository.ActivityRepository
	ResourceRepo    *repository.ResourceRepository
	LiveQuizRepo    *repository.LiveQuizRepository
	Points          *PointsService
	Notifier        Notifier
}

func NewAchievementService(
	achievementRepo *repository.AchievementRepository,
	userRepo *repository.UserRepository,
	cohortRepo *repository.CohortRepository,
	pointRepo *repository.PointRepository,
	activityRepo *repository.ActivityRepository,
	resourceRepo *repository.ResourceRepository,
	liveQuizRepo *repository.LiveQuizRepository,
	points *PointsService,
	notifier Notifier,
) *AchievementService {
	return &AchievementService{
		AchievementRepo: achievementRepo,
		UserRepo:        userRepo,
		CohortRepo:      cohortRepo,
		PointRepo:       pointRepo,
		ActivityRepo:    activityRepo,
		ResourceRepo:    resourceRepo,
		LiveQuizRepo:    liveQuizRepo,
		Points:          points,
		Notifier:        notifier,
	}
}

// SyncCatalog 启动时同步固定成就目录：按名称创建或就地更新，不产生重复行
func (s *AchievementService) SyncCatalog() error {
	for _, entry := range achievementCatalog {
		criteria := marshalCriteria(entry.Criteria)
		existing, err := s.AchievementRepo.FindByName(entry.Name)
		if err == gorm.ErrRecordNotFound {
			achievement := &model.Achievement{
				Name:        entry.Name,
				Description: entry.Description,
				Category:    entry.Category,
				Icon:        entry.Icon,
				BonusPoints: entry.BonusPoints,
				Criteria:    criteria,
			}
			if err := s.AchievementRepo.Create(achievement); err != nil {
				return err
			}
			continue
		}
		if err != nil {
			return err
		}

		existing.Description = entry.Description
		existing.Category = entry.Category
		existing.Icon = entry.Icon
		existing.BonusPoints = entry.BonusPoints
		existing.Criteria = criteria
		if err := s.AchievementRepo.Update(existing); err != nil {
			return err
		}
	}
	logger.Log.Info("achievement catalog synced", zap.Int("entries", len(achievementCatalog)))
	return nil
}

// buildStats 汇总用户的终身统计快照
func (s *AchievementService) buildStats(userID uint) (map[StatKey]int, int, uint, error) {
	user, err := s.UserRepo.FindByID(userID)
	if err != nil {
		return nil, 0, 0, err
	}

	stats := make(map[StatKey]int)
	now := time.Now()

	totalTarget := TotalTargetForMonths(1)
	cohortStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	if cohort, err := s.CohortRepo.FindByID(user.CohortID); err == nil {
		months := MonthsBetween(cohort.StartDate, cohort.EndDate)
		totalTarget = TotalTargetForMonths(months)
		cohortStart = cohort.StartDate
	}

	resources, err := s.ResourceRepo.CountCompletionsByUser(userID)
	if err != nil {
		return nil, 0, 0, err
	}
	stats[StatResourcesCompleted] = int(resources)

	passed, err := s.ResourceRepo.CountPassedQuizzesByUser(userID)
	if err != nil {
		return nil, 0, 0, err
	}
	stats[StatQuizzesPassed] = int(passed)

	perfect, err := s.ResourceRepo.CountPerfectQuizzesByUser(userID)
	if err != nil {
		return nil, 0, 0, err
	}
	stats[StatPerfectQuizzes] = int(perfect)
	if perfect >= 1 {
		stats[StatPerfectQuizLegacy] = 1
	} else {
		stats[StatPerfectQuizLegacy] = 0
	}

	discussions, err := s.ActivityRepo.CountDiscussionsByUser(userID)
	if err != nil {
		return nil, 0, 0, err
	}
	stats[StatDiscussionsPosted] = int(discussions)

	comments, err := s.ActivityRepo.CountCommentsByUser(userID)
	if err != nil {
		return nil, 0, 0, err
	}
	stats[StatCommentsPosted] = int(comments)

	quality, err := s.ActivityRepo.CountQualityDiscussionsByUser(userID, qualityScoreFloor)
	if err != nil {
		return nil, 0, 0, err
	}
	stats[StatQualityDiscussions] = int(quality)

	joined, err := s.LiveQuizRepo.CountJoinedByUser(userID)
	if err != nil {
		return nil, 0, 0, err
	}
	stats[StatLiveQuizzesJoined] = int(joined)

	top3, err := s.LiveQuizRepo.CountTop3ByUser(userID)
	if err != nil {
		return nil, 0, 0, err
	}
	stats[StatLiveQuizTop3] = int(top3)

	points, err := s.PointRepo.SumForUserSince(userID, cohortStart)
	if err != nil {
		return nil, 0, 0, err
	}
	stats[StatCohortPoints] = points

	total, completed, err := s.ResourceRepo.MonthlyCoreProgress(userID, user.CohortID, int(now.Month()), now.Year())
	if err != nil {
		return nil, 0, 0, err
	}
	if total > 0 {
		stats[StatMonthlyCorePct] = int(completed * 100 / total)
	} else {
		stats[StatMonthlyCorePct] = 0
	}

	optionalDone, err := s.ResourceRepo.SessionsWithAllOptionalDone(userID, user.CohortID)
	if err != nil {
		return nil, 0, 0, err
	}
	if optionalDone {
		stats[StatOptionalSessionDone] = 1
	}

	streak, err := s.currentActivityStreak(userID, now)
	if err != nil {
		return nil, 0, 0, err
	}
	stats[StatActivityStreakDays] = streak

	return stats, totalTarget, user.CohortID, nil
}

// currentActivityStreak 截至今天的连续活跃天数（积分事件、聊天、讨论回复）
func (s *AchievementService) currentActivityStreak(userID uint, now time.Time) (int, error) {
	windowStart := now.AddDate(0, 0, -streakLookbackDays)

	grantDays, err := s.PointRepo.GrantDaysByUser(windowStart, now)
	if err != nil {
		return 0, err
	}
	chatDays, err := s.ActivityRepo.ChatDaysByUser(windowStart, now)
	if err != nil {
		return 0, err
	}
	commentDays, err := s.ActivityRepo.CommentDaysByUser(windowStart, now)
	if err != nil {
		return 0, err
	}

	days := make(map[time.Time]bool)
	for _, row := range grantDays {
		if row.UserID == userID {
			days[truncateToDay(row.Day)] = true
		}
	}
	for _, row := range chatDays {
		if row.UserID == userID {
			days[truncateToDay(row.Day)] = true
		}
	}
	for _, row := range commentDays {
		if row.UserID == userID {
			days[truncateToDay(row.Day)] = true
		}
	}

	return dayStreak(days, truncateToDay(now)), nil
}

// evaluateAchievement 判定是否满足全部条件。条件为合取；
// 快照中缺失的统计项视为不满足，而不是默认通过
func evaluateAchievement(name string, criteria map[StatKey]int, stats map[StatKey]int, totalTarget int) bool {
	if len(criteria) == 0 {
		return false
	}
	for key, threshold := range criteria {
		if key == StatCohortPoints {
			threshold = ScaledLeaderboardThreshold(name, totalTarget, threshold)
		}
		value, ok := stats[key]
		if !ok {
			return false
		}
		if value < threshold {
			return false
		}
	}
	return true
}

// CheckAndAward 重新评估用户的全部未解锁成就，返回本次新解锁的列表。
// 解锁幂等：并发评估下以存在性检查兜底，重复触发不会产生第二行记录。
func (s *AchievementService) CheckAndAward(userID uint) ([]model.Achievement, error) {
	definitions, err := s.AchievementRepo.FindAll()
	if err != nil {
		return nil, err
	}
	unlocked, err := s.AchievementRepo.UnlockedIDSet(userID)
	if err != nil {
		return nil, err
	}

	stats, totalTarget, cohortID, err := s.buildStats(userID)
	if err != nil {
		return nil, err
	}

	var newlyUnlocked []model.Achievement
	for _, definition := range definitions {
		if unlocked[definition.ID] {
			continue
		}

		criteria, err := parseCriteria(definition.Criteria)
		if err != nil {
			// 单条目录数据损坏只跳过自身，评估继续
			logger.Log.Warn("skipping achievement with malformed criteria",
				zap.String("achievement", definition.Name),
				zap.Error(err))
			continue
		}
		if isRankCriteria(criteria) {
			continue
		}
		if !evaluateAchievement(definition.Name, criteria, stats, totalTarget) {
			continue
		}

		created, err := s.AchievementRepo.CreateUnlock(userID, definition.ID)
		if err != nil {
			return newlyUnlocked, err
		}
		if !created {
			continue
		}

		s.awardUnlock(userID, cohortID, &definition)
		newlyUnlocked = append(newlyUnlocked, definition)
	}

	return newlyUnlocked, nil
}

// awardUnlock 发放解锁奖励并通知。奖励触顶不撤销徽章，通知失败不回滚。
func (s *AchievementService) awardUnlock(userID, cohortID uint, definition *model.Achievement) {
	monitoring.AchievementUnlockCounter.WithLabelValues(string(definition.Category)).Inc()

	if definition.BonusPoints > 0 {
		granted, err := s.Points.Grant(userID, definition.BonusPoints, model.EventAchievementBonus,
			fmt.Sprintf("成就奖励: %s", definition.Name))
		if err != nil {
			logger.Log.Error("achievement bonus grant failed",
				zap.Uint("userId", userID),
				zap.String("achievement", definition.Name),
				zap.Error(err))
		} else if !granted {
			logger.Log.Info("achievement bonus hit monthly cap, badge kept",
				zap.Uint("userId", userID),
				zap.String("achievement", definition.Name))
		}
	}

	if s.Notifier != nil {
		s.Notifier.NotifyUser(userID, "achievement_unlocked",
			"成就解锁",
			fmt.Sprintf("恭喜解锁成就「%s」", definition.Name))
		s.Notifier.NotifyStaff(cohortID, "achievement_unlocked",
			"学员成就解锁",
			fmt.Sprintf("用户 %d 解锁了成就「%s」", userID, definition.Name))
	}
}

// AwardRankAchievement 归档任务专用：按月末名次解锁名次类成就
func (s *AchievementService) AwardRankAchievement(userID, cohortID uint, rank int) {
	definitions, err := s.AchievementRepo.FindAll()
	if err != nil {
		logger.Log.Error("loading achievements for rank award failed", zap.Error(err))
		return
	}

	for _, definition := range definitions {
		criteria, err := parseCriteria(definition.Criteria)
		if err != nil || !isRankCriteria(criteria) {
			continue
		}
		if rank > criteria[StatMonthlyRank] {
			continue
		}

		created, err := s.AchievementRepo.CreateUnlock(userID, definition.ID)
		if err != nil {
			logger.Log.Error("rank achievement unlock failed",
				zap.Uint("userId", userID),
				zap.String("achievement", definition.Name),
				zap.Error(err))
			continue
		}
		if !created {
			continue
		}
		s.awardUnlock(userID, cohortID, &definition)
	}
}

// GetUserAchievements 用户已解锁徽章与当月积分概览
func (s *AchievementService) GetUserAchievements(userID uint) (map[string]interface{}, error) {
	badges, err := s.AchievementRepo.FindUnlockedByUser(userID)
	if err != nil {
		return nil, err
	}
	total, cap, err := s.Points.MonthlyTotal(userID)
	if err != nil {
		return nil, err
	}
	return map[string]interface{}{
		"badges":       badges,
		"monthlyTotal": total,
		"monthlyCap":   cap,
	}, nil
}
