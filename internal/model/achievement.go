package model

import "time"

type AchievementCategory string

const (
	CategoryMilestone   AchievementCategory = "milestone"
	CategorySocial      AchievementCategory = "social"
	CategoryStreak      AchievementCategory = "streak"
	CategoryLeaderboard AchievementCategory = "leaderboard"
)

// Achievement 成就定义，进程启动时由固定目录同步（按 Name 去重，就地更新）
// swagger:model Achievement
type Achievement struct {
	BaseModel
	Name        string              `gorm:"size:100;uniqueIndex;not null" json:"name"`
	Description string              `gorm:"size:255" json:"description"`
	Category    AchievementCategory `gorm:"size:32;index" json:"category"`
	Icon        string              `gorm:"size:255" json:"icon"`
	BonusPoints int                 `gorm:"default:0" json:"bonusPoints"`
	Criteria    string              `gorm:"type:text" json:"criteria"` // JSON: 统计项 -> 阈值
}

func (Achievement) TableName() string {
	return "achievements"
}

// UserAchievement 解锁记录，(user, achievement) 全局唯一
type UserAchievement struct {
	BaseModel
	UserID        uint      `gorm:"index:idx_user_achievement,unique;type:bigint unsigned;not null" json:"userId"`
	AchievementID uint      `gorm:"index:idx_user_achievement,unique;type:bigint unsigned;not null" json:"achievementId"`
	UnlockedAt    time.Time `gorm:"not null" json:"unlockedAt"`
}

func (UserAchievement) TableName() string {
	return "user_achievements"
}
