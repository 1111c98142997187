package model

// ChatMessage 营内群聊消息，计入聊天连续天数与聊天量加成。
// 高频写入走 UUID 主键，避免自增热点
type ChatMessage struct {
	UUIDBase
	UserID   uint   `gorm:"index:idx_chat_user_created;type:bigint unsigned;not null" json:"userId"`
	CohortID uint   `gorm:"index;type:bigint unsigned" json:"cohortId"`
	Content  string `gorm:"type:text;not null" json:"content"`
}

func (ChatMessage) TableName() string {
	return "chat_messages"
}

// Discussion 讨论帖
type Discussion struct {
	BaseModel
	UserID       uint   `gorm:"index;type:bigint unsigned;not null" json:"userId"`
	CohortID     uint   `gorm:"index;type:bigint unsigned" json:"cohortId"`
	Title        string `gorm:"size:200;not null" json:"title"`
	Content      string `gorm:"type:text" json:"content"`
	QualityScore int    `gorm:"default:0" json:"qualityScore"` // AI 质量评分 0-100

	Comments []DiscussionComment `gorm:"foreignKey:DiscussionID" json:"comments,omitempty"`
}

func (Discussion) TableName() string {
	return "discussions"
}

// DiscussionComment 讨论回复，计入两类连续天数统计
type DiscussionComment struct {
	BaseModel
	DiscussionID uint   `gorm:"index;type:bigint unsigned;not null" json:"discussionId"`
	UserID       uint   `gorm:"index:idx_comment_user_created;type:bigint unsigned;not null" json:"userId"`
	Content      string `gorm:"type:text;not null" json:"content"`
}

func (DiscussionComment) TableName() string {
	return "discussion_comments"
}
