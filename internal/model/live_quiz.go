package model

import "time"

type LiveQuizStatus string

const (
	QuizPending   LiveQuizStatus = "PENDING"
	QuizActive    LiveQuizStatus = "ACTIVE"
	QuizCompleted LiveQuizStatus = "COMPLETED"
	QuizCancelled LiveQuizStatus = "CANCELLED"
)

// LiveQuizSession 一场实时抢答赛，状态只能单向流转
// swagger:model LiveQuizSession
type LiveQuizSession struct {
	BaseModel
	Title           string         `gorm:"size:200;not null" json:"title"`
	HostID          uint           `gorm:"index;type:bigint unsigned;not null" json:"hostId"`
	CohortID        uint           `gorm:"index;type:bigint unsigned" json:"cohortId"`
	Status          LiveQuizStatus `gorm:"size:16;index;default:'PENDING'" json:"status"`
	TimePerQuestion int            `gorm:"default:20" json:"timePerQuestion"` // 秒，题目未单独指定时使用
	CurrentIndex    int            `gorm:"default:-1" json:"currentIndex"`
	StartedAt       *time.Time     `json:"startedAt,omitempty"`
	CompletedAt     *time.Time     `json:"completedAt,omitempty"`

	Questions []LiveQuizQuestion `gorm:"foreignKey:SessionID" json:"questions,omitempty"`
}

func (LiveQuizSession) TableName() string {
	return "live_quiz_sessions"
}

// LiveQuizQuestion 四选一题目，会话创建后不可变
type LiveQuizQuestion struct {
	BaseModel
	SessionID     uint   `gorm:"index;type:bigint unsigned;not null" json:"sessionId"`
	Text          string `gorm:"size:500;not null" json:"text"`
	OptionA       string `gorm:"size:255;not null" json:"optionA"`
	OptionB       string `gorm:"size:255;not null" json:"optionB"`
	OptionC       string `gorm:"size:255;not null" json:"optionC"`
	OptionD       string `gorm:"size:255;not null" json:"optionD"`
	CorrectOption int    `gorm:"not null" json:"-"` // 0..3，不下发给参赛者
	TimeLimitSec  int    `gorm:"default:0" json:"timeLimitSec"`
	BasePoints    int    `gorm:"default:100" json:"basePoints"`
	OrderIndex    int    `gorm:"not null" json:"orderIndex"`
}

func (LiveQuizQuestion) TableName() string {
	return "live_quiz_questions"
}

// LiveQuizParticipant 每场每用户一行，作答时更新，结束时落定名次
type LiveQuizParticipant struct {
	BaseModel
	SessionID    uint   `gorm:"index:idx_session_user,unique;type:bigint unsigned;not null" json:"sessionId"`
	UserID       uint   `gorm:"index:idx_session_user,unique;type:bigint unsigned;not null" json:"userId"`
	DisplayName  string `gorm:"size:100;not null" json:"displayName"`
	Score        int    `gorm:"default:0" json:"score"`
	CorrectCount int    `gorm:"default:0" json:"correctCount"`
	Streak       int    `gorm:"default:0" json:"streak"`
	FinalRank    int    `gorm:"default:0" json:"finalRank"` // 0 表示尚未结束
}

func (LiveQuizParticipant) TableName() string {
	return "live_quiz_participants"
}

// LiveQuizAnswer (participant, question) 唯一，重复提交即拒绝，是防重复计分的边界
type LiveQuizAnswer struct {
	BaseModel
	ParticipantID  uint `gorm:"index:idx_participant_question,unique;type:bigint unsigned;not null" json:"participantId"`
	QuestionID     uint `gorm:"index:idx_participant_question,unique;type:bigint unsigned;not null" json:"questionId"`
	SelectedOption int  `gorm:"not null" json:"selectedOption"`
	Correct        bool `gorm:"not null" json:"correct"`
	ElapsedMs      int  `gorm:"not null" json:"elapsedMs"`
	PointsEarned   int  `gorm:"not null" json:"pointsEarned"`
}

func (LiveQuizAnswer) TableName() string {
	return "live_quiz_answers"
}
