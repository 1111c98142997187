package model

// Notification 站内通知，投递失败不回滚触发它的计分操作
type Notification struct {
	BaseModel
	UserID  uint   `gorm:"index;type:bigint unsigned;not null" json:"userId"`
	Kind    string `gorm:"size:32;index" json:"kind"` // achievement_unlocked / rank_changed
	Title   string `gorm:"size:200" json:"title"`
	Message string `gorm:"size:500" json:"message"`
	Read    bool   `gorm:"default:false" json:"read"`
}

func (Notification) TableName() string {
	return "notifications"
}
