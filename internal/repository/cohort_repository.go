package repository

import (
	"fellowship_backend/internal/model"
	"time"

	"gorm.io/gorm"
)

type CohortRepository struct {
	DB *gorm.DB
}

func NewCohortRepository(db *gorm.DB) *CohortRepository {
	return &CohortRepository{DB: db}
}

func (r *CohortRepository) FindByID(id uint) (*model.Cohort, error) {
	var cohort model.Cohort
	err := r.DB.First(&cohort, id).Error
	if err != nil {
		return nil, err
	}
	return &cohort, nil
}

func (r *CohortRepository) Create(cohort *model.Cohort) error {
	return r.DB.Create(cohort).Error
}

// FindActiveDuring 起止时间与给定区间有交集的营期
func (r *CohortRepository) FindActiveDuring(start, end time.Time) ([]model.Cohort, error) {
	var cohorts []model.Cohort
	err := r.DB.Where("start_date <= ? AND end_date >= ?", end, start).Find(&cohorts).Error
	return cohorts, err
}

func (r *CohortRepository) FindForUser(userID uint) (*model.Cohort, error) {
	var user model.User
	if err := r.DB.First(&user, userID).Error; err != nil {
		return nil, err
	}
	if user.CohortID == 0 {
		return nil, gorm.ErrRecordNotFound
	}
	return r.FindByID(user.CohortID)
}
