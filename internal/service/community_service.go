package service

import (
	"fmt"

	"fellowship_backend/internal/model"
	"fellowship_backend/internal/repository"
	"fellowship_backend/internal/util"
	"fellowship_backend/pkg/logger"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// CommunityService 讨论区与营内群聊。发帖回帖发分，
// 聊天消息本身不发分，只进连续天数与聊天量统计
type CommunityService struct {
	ActivityRepo *repository.ActivityRepository
	Points       *PointsService
	Achievements *AchievementService
}

func NewCommunityService(
	activityRepo *repository.ActivityRepository,
	points *PointsService,
	achievements *AchievementService,
) *CommunityService {
	return &CommunityService{
		ActivityRepo: activityRepo,
		Points:       points,
		Achievements: achievements,
	}
}

func (s *CommunityService) recheckAchievements(userID uint) []model.Achievement {
	unlocked, err := s.Achievements.CheckAndAward(userID)
	if err != nil {
		logger.Log.Warn("achievement check after community action failed",
			zap.Uint("userId", userID), zap.Error(err))
		return nil
	}
	return unlocked
}

func (s *CommunityService) PostDiscussion(userID, cohortID uint, title, content string) (*model.Discussion, []model.Achievement, error) {
	discussion := &model.Discussion{
		UserID:   userID,
		CohortID: cohortID,
		Title:    title,
		Content:  content,
	}
	if err := s.ActivityRepo.CreateDiscussion(discussion); err != nil {
		return nil, nil, err
	}

	if _, err := s.Points.Grant(userID, util.PointsDiscussionPost, model.EventDiscussionPost,
		fmt.Sprintf("发起讨论: %s", title)); err != nil {
		return nil, nil, err
	}
	return discussion, s.recheckAchievements(userID), nil
}

func (s *CommunityService) PostComment(userID, discussionID uint, content string) (*model.DiscussionComment, []model.Achievement, error) {
	if _, err := s.ActivityRepo.FindDiscussion(discussionID); err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil, gorm.ErrRecordNotFound
		}
		return nil, nil, err
	}

	comment := &model.DiscussionComment{
		DiscussionID: discussionID,
		UserID:       userID,
		Content:      content,
	}
	if err := s.ActivityRepo.CreateComment(comment); err != nil {
		return nil, nil, err
	}

	if _, err := s.Points.Grant(userID, util.PointsDiscussionReply, model.EventDiscussionReply,
		fmt.Sprintf("回复讨论 #%d", discussionID)); err != nil {
		return nil, nil, err
	}
	return comment, s.recheckAchievements(userID), nil
}

func (s *CommunityService) PostChatMessage(userID, cohortID uint, content string) (*model.ChatMessage, error) {
	msg := &model.ChatMessage{
		UserID:   userID,
		CohortID: cohortID,
		Content:  content,
	}
	if err := s.ActivityRepo.CreateChatMessage(msg); err != nil {
		return nil, err
	}
	// 连续活跃类成就可能因这条消息达成
	s.recheckAchievements(userID)
	return msg, nil
}

// RateDiscussion 带教为讨论打质量分，达标的讨论计入质量类成就
func (s *CommunityService) RateDiscussion(discussionID uint, score int) error {
	discussion, err := s.ActivityRepo.FindDiscussion(discussionID)
	if err != nil {
		return err
	}
	if score < 0 {
		score = 0
	}
	if score > 100 {
		score = 100
	}
	discussion.QualityScore = score
	if err := s.ActivityRepo.DB.Save(discussion).Error; err != nil {
		return err
	}

	if score >= qualityScoreFloor {
		s.recheckAchievements(discussion.UserID)
	}
	return nil
}
