package model

import "time"

// MonthlyLeaderboard 月末归档生成的冻结快照，(cohort, month, year) 唯一且不再重算
// swagger:model MonthlyLeaderboard
type MonthlyLeaderboard struct {
	BaseModel
	CohortID  uint      `gorm:"index:idx_cohort_month,unique;type:bigint unsigned;not null" json:"cohortId"`
	Month     int       `gorm:"index:idx_cohort_month,unique;not null" json:"month"`
	Year      int       `gorm:"index:idx_cohort_month,unique;not null" json:"year"`
	StartDate time.Time `json:"startDate"`
	EndDate   time.Time `json:"endDate"`

	Entries []LeaderboardEntry `gorm:"foreignKey:LeaderboardID" json:"entries,omitempty"`
}

func (MonthlyLeaderboard) TableName() string {
	return "monthly_leaderboards"
}

// LeaderboardEntry 快照中的一行名次，rank 从 1 起稠密递增
type LeaderboardEntry struct {
	BaseModel
	LeaderboardID uint `gorm:"index;type:bigint unsigned;not null" json:"leaderboardId"`
	Rank          int  `gorm:"not null" json:"rank"`
	UserID        uint `gorm:"index;type:bigint unsigned;not null" json:"userId"`
	TotalPoints   int  `gorm:"not null" json:"totalPoints"`
}

func (LeaderboardEntry) TableName() string {
	return "leaderboard_entries"
}
