package service

import (
	"fmt"
	"time"

	"fellowship_backend/internal/model"
	"fellowship_backend/internal/repository"
	"fellowship_backend/pkg/logger"

	"go.uber.org/zap"
)

// ArchiveService 月度归档：冻结上月榜单、评定名次成就、硬重置当月累计
type ArchiveService struct {
	CohortRepo      *repository.CohortRepository
	UserRepo        *repository.UserRepository
	PointRepo       *repository.PointRepository
	LeaderboardRepo *repository.LeaderboardRepository
	Achievements    *AchievementService
	Notifier        Notifier
}

func NewArchiveService(
	cohortRepo *repository.CohortRepository,
	userRepo *repository.UserRepository,
	pointRepo *repository.PointRepository,
	leaderboardRepo *repository.LeaderboardRepository,
	achievements *AchievementService,
	notifier Notifier,
) *ArchiveService {
	return &ArchiveService{
		CohortRepo:      cohortRepo,
		UserRepo:        userRepo,
		PointRepo:       pointRepo,
		LeaderboardRepo: leaderboardRepo,
		Achievements:    achievements,
		Notifier:        notifier,
	}
}

// buildRankEntries 按合计降序生成 1..N 稠密名次，输入顺序即平分时的先后
func buildRankEntries(rows []repository.UserAmount) []model.LeaderboardEntry {
	entries := make([]model.LeaderboardEntry, 0, len(rows))
	for i, row := range rows {
		entries = append(entries, model.LeaderboardEntry{
			Rank:        i + 1,
			UserID:      row.UserID,
			TotalPoints: row.Total,
		})
	}
	return entries
}

// ArchivePriorMonth 归档上一个日历月。
// 对每个营期以 (cohort, month, year) 快照存在性做幂等保护，可安全重复触发。
func (s *ArchiveService) ArchivePriorMonth(now time.Time) error {
	prevStart, prevEnd := monthWindow(int(now.AddDate(0, -1, 0).Month()), now.AddDate(0, -1, 0).Year(), now.Location())
	month := int(prevStart.Month())
	year := prevStart.Year()

	cohorts, err := s.CohortRepo.FindActiveDuring(prevStart, prevEnd)
	if err != nil {
		return err
	}

	for _, cohort := range cohorts {
		exists, err := s.LeaderboardRepo.SnapshotExists(cohort.ID, month, year)
		if err != nil {
			return err
		}
		if exists {
			continue
		}
		if err := s.archiveCohort(&cohort, prevStart, prevEnd, month, year); err != nil {
			logger.Log.Error("cohort archival failed",
				zap.Uint("cohortId", cohort.ID),
				zap.Int("month", month),
				zap.Int("year", year),
				zap.Error(err))
			continue
		}
	}

	// 全局硬重置：当月累计按流水重算，不依赖发放时的懒惰滚动，
	// 不活跃用户的过期累计也会在这里归位
	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	if err := s.PointRepo.HardResetMonthlyTotals(monthStart, now); err != nil {
		return err
	}

	logger.Log.Info("monthly archival finished",
		zap.Int("month", month),
		zap.Int("year", year),
		zap.Int("cohorts", len(cohorts)))
	return nil
}

func (s *ArchiveService) archiveCohort(cohort *model.Cohort, start, end time.Time, month, year int) error {
	fellows, err := s.UserRepo.FindFellows(cohort.ID)
	if err != nil {
		return err
	}
	inCohort := make(map[uint]bool, len(fellows))
	for _, fellow := range fellows {
		inCohort[fellow.ID] = true
	}

	rows, err := s.PointRepo.SumByUserInWindowOrdered(start, end)
	if err != nil {
		return err
	}
	scoped := rows[:0:0]
	for _, row := range rows {
		if inCohort[row.UserID] {
			scoped = append(scoped, row)
		}
	}

	entries := buildRankEntries(scoped)
	snapshot := &model.MonthlyLeaderboard{
		CohortID:  cohort.ID,
		Month:     month,
		Year:      year,
		StartDate: start,
		EndDate:   end,
	}
	if err := s.LeaderboardRepo.CreateSnapshot(snapshot, entries); err != nil {
		return err
	}

	for _, entry := range entries {
		s.Achievements.AwardRankAchievement(entry.UserID, cohort.ID, entry.Rank)
		if s.Notifier != nil {
			s.Notifier.NotifyUser(entry.UserID, "rank_changed",
				"月度排行榜已结算",
				fmt.Sprintf("%d 年 %d 月你的最终名次是第 %d 名", year, month, entry.Rank))
		}
	}

	logger.Log.Info("cohort month archived",
		zap.Uint("cohortId", cohort.ID),
		zap.Int("participants", len(entries)))
	return nil
}

// RunScheduler 由后台定时器驱动，跨入新月后补齐上月归档；
// 幂等保护使得每次触发都安全
func (s *ArchiveService) RunScheduler(interval time.Duration, stop <-chan struct{}) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			if err := s.ArchivePriorMonth(time.Now()); err != nil {
				logger.Log.Error("scheduled archival error", zap.Error(err))
			}
		case <-stop:
			return
		}
	}
}
