package util

import "errors"

var (
	ErrUserNotFound        = errors.New("用户不存在")
	ErrEmailRegistered     = errors.New("该邮箱已被注册")
	ErrPermissionDenied    = errors.New("permission denied")
	ErrCohortNotFound      = errors.New("cohort not found")
	ErrSessionNotFound     = errors.New("quiz session not found")
	ErrQuestionNotFound    = errors.New("question not found")
	ErrParticipantNotFound = errors.New("participant not found")
	ErrQuizNotPending      = errors.New("quiz already started or finished")
	ErrQuizNotActive       = errors.New("quiz not active")
	ErrQuizFinished        = errors.New("quiz already completed or cancelled")
	ErrAlreadyAnswered     = errors.New("question already answered")
	ErrQuestionClosed      = errors.New("question closed, host has moved on")
	ErrInvalidOption       = errors.New("invalid option index")
	ErrAchievementNotFound = errors.New("achievement not found")
	ErrResourceNotFound    = errors.New("resource not found")
)
