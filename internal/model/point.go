package model

import "time"

type PointEventKind string

const (
	EventResourceComplete PointEventKind = "resource_complete"
	EventQuizSubmit       PointEventKind = "quiz_submit"
	EventDiscussionPost   PointEventKind = "discussion_post"
	EventDiscussionReply  PointEventKind = "discussion_reply"
	EventAdminAdjustment  PointEventKind = "admin_adjustment"
	EventAchievementBonus PointEventKind = "achievement_bonus"
)

// PointGrant 积分流水，只追加不修改，是所有聚合统计的事实来源
// swagger:model PointGrant
type PointGrant struct {
	BaseModel
	UserID      uint           `gorm:"index:idx_user_created;type:bigint unsigned;not null" json:"userId"`
	Amount      int            `gorm:"not null" json:"amount"` // 管理员修正时可为负
	Kind        PointEventKind `gorm:"size:32;index;not null" json:"kind"`
	Description string         `gorm:"size:255" json:"description"`
}

func (PointGrant) TableName() string {
	return "point_grants"
}

// UserPointState 每用户的当月累计与上限，随每次发放更新
type UserPointState struct {
	BaseModel
	UserID       uint      `gorm:"uniqueIndex;type:bigint unsigned;not null" json:"userId"`
	MonthlyTotal int       `gorm:"default:0" json:"monthlyTotal"`
	MonthlyCap   int       `gorm:"default:0" json:"monthlyCap"`
	LastResetAt  time.Time `json:"lastResetAt"`
}

func (UserPointState) TableName() string {
	return "user_point_states"
}
