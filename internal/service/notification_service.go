package service

import (
	"fellowship_backend/internal/model"
	"fellowship_backend/internal/repository"
	"fellowship_backend/pkg/logger"

	"go.uber.org/zap"
)

// Notifier 站内通知出口。实现必须是尽力而为：
// 投递失败只记日志，绝不向调用方冒泡
type Notifier interface {
	NotifyUser(userID uint, kind, title, message string)
	NotifyStaff(cohortID uint, kind, title, message string)
}

type NotificationService struct {
	NotificationRepo *repository.NotificationRepository
	UserRepo         *repository.UserRepository
}

func NewNotificationService(
	notificationRepo *repository.NotificationRepository,
	userRepo *repository.UserRepository,
) *NotificationService {
	return &NotificationService{
		NotificationRepo: notificationRepo,
		UserRepo:         userRepo,
	}
}

func (s *NotificationService) NotifyUser(userID uint, kind, title, message string) {
	notification := &model.Notification{
		UserID:  userID,
		Kind:    kind,
		Title:   title,
		Message: message,
	}
	if err := s.NotificationRepo.Create(notification); err != nil {
		logger.Log.Warn("notification delivery failed",
			zap.Uint("userId", userID),
			zap.String("kind", kind),
			zap.Error(err))
	}
}

// NotifyStaff 广播给营期的带教与全体管理员
func (s *NotificationService) NotifyStaff(cohortID uint, kind, title, message string) {
	staff, err := s.UserRepo.FindStaffForCohort(cohortID)
	if err != nil {
		logger.Log.Warn("loading staff for notification failed",
			zap.Uint("cohortId", cohortID),
			zap.Error(err))
		return
	}
	for _, member := range staff {
		s.NotifyUser(member.ID, kind, title, message)
	}
}

func (s *NotificationService) List(userID uint, limit int) ([]model.Notification, error) {
	if limit < 1 || limit > 100 {
		limit = 50
	}
	return s.NotificationRepo.ListByUser(userID, limit)
}

func (s *NotificationService) MarkRead(userID, id uint) error {
	return s.NotificationRepo.MarkRead(userID, id)
}
