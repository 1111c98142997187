package model

import "time"

// Resource 学习资源，core 为核心必修项，optional 项用于选修完成度成就
// swagger:model Resource
type Resource struct {
	BaseModel
	Title     string `gorm:"size:200;not null" json:"title"`
	URL       string `gorm:"size:500" json:"url"`
	CohortID  uint   `gorm:"index;type:bigint unsigned" json:"cohortId"`
	SessionNo int    `gorm:"index;default:0" json:"sessionNo"` // 所属课次
	Core      bool   `gorm:"default:true" json:"core"`
	Month     int    `gorm:"default:0" json:"month"` // 发布月份 1-12
	Year      int    `gorm:"default:0" json:"year"`
}

func (Resource) TableName() string {
	return "resources"
}

// ResourceCompletion 完成记录，(user, resource) 唯一
type ResourceCompletion struct {
	BaseModel
	UserID      uint      `gorm:"index:idx_user_resource,unique;type:bigint unsigned;not null" json:"userId"`
	ResourceID  uint      `gorm:"index:idx_user_resource,unique;type:bigint unsigned;not null" json:"resourceId"`
	CompletedAt time.Time `gorm:"not null" json:"completedAt"`
}

func (ResourceCompletion) TableName() string {
	return "resource_completions"
}

// QuizResult 普通测验成绩（非实时抢答赛）
type QuizResult struct {
	BaseModel
	UserID  uint `gorm:"index;type:bigint unsigned;not null" json:"userId"`
	QuizID  uint `gorm:"index;type:bigint unsigned;not null" json:"quizId"`
	Score   int  `gorm:"not null" json:"score"`
	MaxScore int `gorm:"not null" json:"maxScore"`
	Passed  bool `gorm:"default:false" json:"passed"`
	Perfect bool `gorm:"default:false" json:"perfect"`
}

func (QuizResult) TableName() string {
	return "quiz_results"
}
