package repository

import (
	"fellowship_backend/internal/model"

	"gorm.io/gorm"
)

type ResourceRepository struct {
	DB *gorm.DB
}

func NewResourceRepository(db *gorm.DB) *ResourceRepository {
	return &ResourceRepository{DB: db}
}

func (r *ResourceRepository) FindByID(id uint) (*model.Resource, error) {
	var resource model.Resource
	err := r.DB.First(&resource, id).Error
	if err != nil {
		return nil, err
	}
	return &resource, nil
}

func (r *ResourceRepository) ListByCohort(cohortID uint) ([]model.Resource, error) {
	var resources []model.Resource
	q := r.DB.Order("session_no asc, id asc")
	if cohortID != 0 {
		q = q.Where("cohort_id = ?", cohortID)
	}
	err := q.Find(&resources).Error
	return resources, err
}

func (r *ResourceRepository) Create(resource *model.Resource) error {
	return r.DB.Create(resource).Error
}

// CreateCompletion 幂等：同一 (user, resource) 已存在时返回 false
func (r *ResourceRepository) CreateCompletion(completion *model.ResourceCompletion) (bool, error) {
	var count int64
	err := r.DB.Model(&model.ResourceCompletion{}).
		Where("user_id = ? AND resource_id = ?", completion.UserID, completion.ResourceID).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	if count > 0 {
		return false, nil
	}
	return true, r.DB.Create(completion).Error
}

func (r *ResourceRepository) CountCompletionsByUser(userID uint) (int64, error) {
	var count int64
	err := r.DB.Model(&model.ResourceCompletion{}).Where("user_id = ?", userID).Count(&count).Error
	return count, err
}

// MonthlyCoreProgress 当月核心资源总数与用户已完成数
func (r *ResourceRepository) MonthlyCoreProgress(userID, cohortID uint, month, year int) (total, completed int64, err error) {
	q := r.DB.Model(&model.Resource{}).
		Where("core = ? AND month = ? AND year = ?", true, month, year)
	if cohortID != 0 {
		q = q.Where("cohort_id = ?", cohortID)
	}
	if err = q.Count(&total).Error; err != nil {
		return
	}

	sub := r.DB.Model(&model.Resource{}).Select("id").
		Where("core = ? AND month = ? AND year = ?", true, month, year)
	if cohortID != 0 {
		sub = sub.Where("cohort_id = ?", cohortID)
	}
	err = r.DB.Model(&model.ResourceCompletion{}).
		Where("user_id = ? AND resource_id IN (?)", userID, sub).
		Count(&completed).Error
	return
}

// SessionsWithAllOptionalDone 是否存在某一课次的选修资源被该用户全部完成
func (r *ResourceRepository) SessionsWithAllOptionalDone(userID, cohortID uint) (bool, error) {
	type sessionRow struct {
		SessionNo int
		Total     int64
		Done      int64
	}
	var rows []sessionRow
	sub := r.DB.Model(&model.ResourceCompletion{}).Select("resource_id").Where("user_id = ?", userID)
	q := r.DB.Model(&model.Resource{}).
		Select("session_no, COUNT(*) AS total, SUM(CASE WHEN id IN (?) THEN 1 ELSE 0 END) AS done", sub).
		Where("core = ?", false)
	if cohortID != 0 {
		q = q.Where("cohort_id = ?", cohortID)
	}
	err := q.Group("session_no").Scan(&rows).Error
	if err != nil {
		return false, err
	}
	for _, row := range rows {
		if row.Total > 0 && row.Done == row.Total {
			return true, nil
		}
	}
	return false, nil
}

func (r *ResourceRepository) CreateQuizResult(result *model.QuizResult) error {
	return r.DB.Create(result).Error
}

func (r *ResourceRepository) CountPassedQuizzesByUser(userID uint) (int64, error) {
	var count int64
	err := r.DB.Model(&model.QuizResult{}).
		Where("user_id = ? AND passed = ?", userID, true).
		Count(&count).Error
	return count, err
}

func (r *ResourceRepository) CountPerfectQuizzesByUser(userID uint) (int64, error) {
	var count int64
	err := r.DB.Model(&model.QuizResult{}).
		Where("user_id = ? AND perfect = ?", userID, true).
		Count(&count).Error
	return count, err
}
