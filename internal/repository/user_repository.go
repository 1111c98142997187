package repository

import (
	"fellowship_backend/internal/model"
	"time"

	"gorm.io/gorm"
)

type UserRepository struct {
	DB *gorm.DB
}

func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{DB: db}
}

func (r *UserRepository) FindByID(id uint) (*model.User, error) {
	var user model.User
	err := r.DB.First(&user, id).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *UserRepository) FindByEmail(email string) (*model.User, error) {
	var user model.User
	err := r.DB.Where("email = ?", email).First(&user).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *UserRepository) Create(user *model.User) error {
	return r.DB.Create(user).Error
}

func (r *UserRepository) Update(user *model.User) error {
	return r.DB.Save(user).Error
}

func (r *UserRepository) UpdateLastSeen(userID uint) error {
	return r.DB.Model(&model.User{}).Where("id = ?", userID).
		Update("last_seen", time.Now()).Error
}

// FindFellows 返回参与排行的学员，cohortID 为 0 时不限营期
func (r *UserRepository) FindFellows(cohortID uint) ([]model.User, error) {
	var users []model.User
	q := r.DB.Where("role = ? AND disabled = ?", model.Fellow, false)
	if cohortID != 0 {
		q = q.Where("cohort_id = ?", cohortID)
	}
	err := q.Find(&users).Error
	return users, err
}

// FindStaffForCohort 营期的带教/管理员，用于成就解锁的员工侧通知
func (r *UserRepository) FindStaffForCohort(cohortID uint) ([]model.User, error) {
	var users []model.User
	q := r.DB.Where("role IN ?", []model.UserRole{model.Facilitator, model.Admin})
	if cohortID != 0 {
		q = q.Where("cohort_id = ? OR role = ?", cohortID, model.Admin)
	}
	err := q.Find(&users).Error
	return users, err
}
