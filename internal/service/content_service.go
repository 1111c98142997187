package service

import (
	"fmt"
	"time"

	"fellowship_backend/internal/model"
	"fellowship_backend/internal/repository"
	"fellowship_backend/internal/util"
	"fellowship_backend/pkg/logger"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// 测验及格线（百分比）
const quizPassPct = 60

// ContentService 学习资源与普通测验，是积分发放的主要触发方
type ContentService struct {
	ResourceRepo *repository.ResourceRepository
	Points       *PointsService
	Achievements *AchievementService
}

func NewContentService(
	resourceRepo *repository.ResourceRepository,
	points *PointsService,
	achievements *AchievementService,
) *ContentService {
	return &ContentService{
		ResourceRepo: resourceRepo,
		Points:       points,
		Achievements: achievements,
	}
}

func (s *ContentService) CreateResource(resource *model.Resource) error {
	if resource.Month == 0 || resource.Year == 0 {
		now := time.Now()
		resource.Month = int(now.Month())
		resource.Year = now.Year()
	}
	return s.ResourceRepo.Create(resource)
}

func (s *ContentService) ListResources(cohortID uint) ([]model.Resource, error) {
	return s.ResourceRepo.ListByCohort(cohortID)
}

// CompletionResult 完成资源的结算概要，含本次新解锁的成就
type CompletionResult struct {
	AlreadyDone     bool                `json:"alreadyDone"`
	PointsGranted   bool                `json:"pointsGranted"`
	PointsAmount    int                 `json:"pointsAmount"`
	NewAchievements []model.Achievement `json:"newAchievements,omitempty"`
}

// CompleteResource 标记完成。幂等：重复完成不再发分、不再评估成就
func (s *ContentService) CompleteResource(userID, resourceID uint) (*CompletionResult, error) {
	resource, err := s.ResourceRepo.FindByID(resourceID)
	if err == gorm.ErrRecordNotFound {
		return nil, util.ErrResourceNotFound
	}
	if err != nil {
		return nil, err
	}

	created, err := s.ResourceRepo.CreateCompletion(&model.ResourceCompletion{
		UserID:      userID,
		ResourceID:  resourceID,
		CompletedAt: time.Now(),
	})
	if err != nil {
		return nil, err
	}
	if !created {
		return &CompletionResult{AlreadyDone: true}, nil
	}

	granted, err := s.Points.Grant(userID, util.PointsResourceComplete, model.EventResourceComplete,
		fmt.Sprintf("完成资源: %s", resource.Title))
	if err != nil {
		return nil, err
	}

	result := &CompletionResult{
		PointsGranted: granted,
		PointsAmount:  util.PointsResourceComplete,
	}
	unlocked, err := s.Achievements.CheckAndAward(userID)
	if err != nil {
		logger.Log.Warn("achievement check after completion failed",
			zap.Uint("userId", userID), zap.Error(err))
		return result, nil
	}
	result.NewAchievements = unlocked
	return result, nil
}

type QuizSubmission struct {
	QuizID   uint `json:"quizId" binding:"required"`
	Score    int  `json:"score" binding:"min=0"`
	MaxScore int  `json:"maxScore" binding:"required,min=1"`
}

type QuizOutcome struct {
	Passed          bool                `json:"passed"`
	Perfect         bool                `json:"perfect"`
	PointsGranted   bool                `json:"pointsGranted"`
	NewAchievements []model.Achievement `json:"newAchievements,omitempty"`
}

// SubmitQuiz 记录普通测验成绩，及格才发分，满分另外计入成就统计
func (s *ContentService) SubmitQuiz(userID uint, submission *QuizSubmission) (*QuizOutcome, error) {
	passed := submission.Score*100 >= submission.MaxScore*quizPassPct
	perfect := submission.Score == submission.MaxScore

	if err := s.ResourceRepo.CreateQuizResult(&model.QuizResult{
		UserID:   userID,
		QuizID:   submission.QuizID,
		Score:    submission.Score,
		MaxScore: submission.MaxScore,
		Passed:   passed,
		Perfect:  perfect,
	}); err != nil {
		return nil, err
	}

	outcome := &QuizOutcome{Passed: passed, Perfect: perfect}
	if passed {
		granted, err := s.Points.Grant(userID, util.PointsQuizPass, model.EventQuizSubmit,
			fmt.Sprintf("测验及格: #%d", submission.QuizID))
		if err != nil {
			return nil, err
		}
		outcome.PointsGranted = granted
	}

	unlocked, err := s.Achievements.CheckAndAward(userID)
	if err != nil {
		logger.Log.Warn("achievement check after quiz failed",
			zap.Uint("userId", userID), zap.Error(err))
		return outcome, nil
	}
	outcome.NewAchievements = unlocked
	return outcome, nil
}
