package repository

import (
	"fellowship_backend/internal/model"

	"gorm.io/gorm"
)

type LeaderboardRepository struct {
	DB *gorm.DB
}

func NewLeaderboardRepository(db *gorm.DB) *LeaderboardRepository {
	return &LeaderboardRepository{DB: db}
}

// SnapshotExists 归档幂等保护：同一 (cohort, month, year) 只生成一次
func (r *LeaderboardRepository) SnapshotExists(cohortID uint, month, year int) (bool, error) {
	var count int64
	err := r.DB.Model(&model.MonthlyLeaderboard{}).
		Where("cohort_id = ? AND month = ? AND year = ?", cohortID, month, year).
		Count(&count).Error
	return count > 0, err
}

// CreateSnapshot 快照与名次行在同一事务内写入
func (r *LeaderboardRepository) CreateSnapshot(snapshot *model.MonthlyLeaderboard, entries []model.LeaderboardEntry) error {
	return r.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(snapshot).Error; err != nil {
			return err
		}
		for i := range entries {
			entries[i].LeaderboardID = snapshot.ID
		}
		if len(entries) == 0 {
			return nil
		}
		return tx.Create(&entries).Error
	})
}

func (r *LeaderboardRepository) FindSnapshot(cohortID uint, month, year int) (*model.MonthlyLeaderboard, error) {
	var snapshot model.MonthlyLeaderboard
	err := r.DB.Preload("Entries", func(db *gorm.DB) *gorm.DB {
		return db.Order("leaderboard_entries.rank asc")
	}).Where("cohort_id = ? AND month = ? AND year = ?", cohortID, month, year).
		First(&snapshot).Error
	if err != nil {
		return nil, err
	}
	return &snapshot, nil
}
