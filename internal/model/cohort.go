package model

import "time"

// Cohort 一期训练营，积分、排行榜与成就阈值均以其起止时间为界
// swagger:model Cohort
type Cohort struct {
	BaseModel
	Name      string    `gorm:"size:100;not null" json:"name"`
	StartDate time.Time `gorm:"not null" json:"startDate"`
	EndDate   time.Time `gorm:"not null" json:"endDate"`
	Active    bool      `gorm:"default:true" json:"active"`
}

func (Cohort) TableName() string {
	return "cohorts"
}
