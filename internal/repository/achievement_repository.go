package repository

import (
	"fellowship_backend/internal/model"
	"time"

	"gorm.io/gorm"
)

type AchievementRepository struct {
	DB *gorm.DB
}

func NewAchievementRepository(db *gorm.DB) *AchievementRepository {
	return &AchievementRepository{DB: db}
}

func (r *AchievementRepository) FindAll() ([]model.Achievement, error) {
	var achievements []model.Achievement
	err := r.DB.Order("id asc").Find(&achievements).Error
	return achievements, err
}

func (r *AchievementRepository) FindByName(name string) (*model.Achievement, error) {
	var achievement model.Achievement
	err := r.DB.Where("name = ?", name).First(&achievement).Error
	if err != nil {
		return nil, err
	}
	return &achievement, nil
}

func (r *AchievementRepository) Create(achievement *model.Achievement) error {
	return r.DB.Create(achievement).Error
}

func (r *AchievementRepository) Update(achievement *model.Achievement) error {
	return r.DB.Save(achievement).Error
}

// FindUnlockedByUser 用户已解锁的成就定义
func (r *AchievementRepository) FindUnlockedByUser(userID uint) ([]model.Achievement, error) {
	var achievements []model.Achievement
	err := r.DB.Joins("JOIN user_achievements ON user_achievements.achievement_id = achievements.id").
		Where("user_achievements.user_id = ? AND user_achievements.deleted_at IS NULL", userID).
		Find(&achievements).Error
	if err != nil {
		return nil, err
	}
	return achievements, nil
}

// UnlockedIDSet 已解锁成就 ID 集合，评估前用于过滤
func (r *AchievementRepository) UnlockedIDSet(userID uint) (map[uint]bool, error) {
	var ids []uint
	err := r.DB.Model(&model.UserAchievement{}).
		Where("user_id = ?", userID).
		Pluck("achievement_id", &ids).Error
	if err != nil {
		return nil, err
	}
	set := make(map[uint]bool, len(ids))
	for _, id := range ids {
		set[id] = true
	}
	return set, nil
}

func (r *AchievementRepository) HasUnlock(userID, achievementID uint) (bool, error) {
	var count int64
	err := r.DB.Model(&model.UserAchievement{}).
		Where("user_id = ? AND achievement_id = ?", userID, achievementID).
		Count(&count).Error
	return count > 0, err
}

// CreateUnlock 写入解锁记录；唯一索引冲突视为并发评估下的安全空操作
func (r *AchievementRepository) CreateUnlock(userID, achievementID uint) (bool, error) {
	unlock := &model.UserAchievement{
		UserID:        userID,
		AchievementID: achievementID,
		UnlockedAt:    time.Now(),
	}
	err := r.DB.Create(unlock).Error
	if err != nil {
		exists, checkErr := r.HasUnlock(userID, achievementID)
		if checkErr == nil && exists {
			return false, nil
		}
		return false, err
	}
	return true, nil
}
