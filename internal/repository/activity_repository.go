package repository

import (
	"fellowship_backend/internal/model"
	"time"

	"gorm.io/gorm"
)

type ActivityRepository struct {
	DB *gorm.DB
}

func NewActivityRepository(db *gorm.DB) *ActivityRepository {
	return &ActivityRepository{DB: db}
}

func (r *ActivityRepository) CreateChatMessage(msg *model.ChatMessage) error {
	return r.DB.Create(msg).Error
}

func (r *ActivityRepository) CreateDiscussion(discussion *model.Discussion) error {
	return r.DB.Create(discussion).Error
}

func (r *ActivityRepository) CreateComment(comment *model.DiscussionComment) error {
	return r.DB.Create(comment).Error
}

func (r *ActivityRepository) FindDiscussion(id uint) (*model.Discussion, error) {
	var discussion model.Discussion
	err := r.DB.First(&discussion, id).Error
	if err != nil {
		return nil, err
	}
	return &discussion, nil
}

func (r *ActivityRepository) CountDiscussionsByUser(userID uint) (int64, error) {
	var count int64
	err := r.DB.Model(&model.Discussion{}).Where("user_id = ?", userID).Count(&count).Error
	return count, err
}

func (r *ActivityRepository) CountCommentsByUser(userID uint) (int64, error) {
	var count int64
	err := r.DB.Model(&model.DiscussionComment{}).Where("user_id = ?", userID).Count(&count).Error
	return count, err
}

// CountQualityDiscussionsByUser AI 质量评分达标的讨论数
func (r *ActivityRepository) CountQualityDiscussionsByUser(userID uint, minScore int) (int64, error) {
	var count int64
	err := r.DB.Model(&model.Discussion{}).
		Where("user_id = ? AND quality_score >= ?", userID, minScore).
		Count(&count).Error
	return count, err
}

// ChatDaysByUser 窗口内各用户有聊天发言的日期（去重）
func (r *ActivityRepository) ChatDaysByUser(start, end time.Time) ([]UserDay, error) {
	var rows []UserDay
	err := r.DB.Model(&model.ChatMessage{}).
		Select("user_id, DATE(created_at) AS day").
		Where("created_at BETWEEN ? AND ?", start, end).
		Group("user_id, DATE(created_at)").
		Scan(&rows).Error
	return rows, err
}

// CommentDaysByUser 窗口内各用户有讨论回复的日期（去重）
func (r *ActivityRepository) CommentDaysByUser(start, end time.Time) ([]UserDay, error) {
	var rows []UserDay
	err := r.DB.Model(&model.DiscussionComment{}).
		Select("user_id, DATE(created_at) AS day").
		Where("created_at BETWEEN ? AND ?", start, end).
		Group("user_id, DATE(created_at)").
		Scan(&rows).Error
	return rows, err
}

type UserCount struct {
	UserID uint
	Total  int
}

// ChatVolumeByUser 窗口内各用户聊天消息与讨论回复的总条数
func (r *ActivityRepository) ChatVolumeByUser(start, end time.Time) (map[uint]int, error) {
	volumes := make(map[uint]int)

	var chatRows []UserCount
	err := r.DB.Model(&model.ChatMessage{}).
		Select("user_id, COUNT(*) AS total").
		Where("created_at BETWEEN ? AND ?", start, end).
		Group("user_id").
		Scan(&chatRows).Error
	if err != nil {
		return nil, err
	}
	for _, row := range chatRows {
		volumes[row.UserID] += row.Total
	}

	var commentRows []UserCount
	err = r.DB.Model(&model.DiscussionComment{}).
		Select("user_id, COUNT(*) AS total").
		Where("created_at BETWEEN ? AND ?", start, end).
		Group("user_id").
		Scan(&commentRows).Error
	if err != nil {
		return nil, err
	}
	for _, row := range commentRows {
		volumes[row.UserID] += row.Total
	}

	return volumes, nil
}
