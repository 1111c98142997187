package repository

import (
	"fellowship_backend/internal/model"

	"gorm.io/gorm"
)

type LiveQuizRepository struct {
	DB *gorm.DB
}

func NewLiveQuizRepository(db *gorm.DB) *LiveQuizRepository {
	return &LiveQuizRepository{DB: db}
}

func (r *LiveQuizRepository) CreateSession(session *model.LiveQuizSession) error {
	return r.DB.Create(session).Error
}

func (r *LiveQuizRepository) FindSession(id uint) (*model.LiveQuizSession, error) {
	var session model.LiveQuizSession
	err := r.DB.Preload("Questions", func(db *gorm.DB) *gorm.DB {
		return db.Order("live_quiz_questions.order_index asc")
	}).First(&session, id).Error
	if err != nil {
		return nil, err
	}
	return &session, nil
}

func (r *LiveQuizRepository) ListSessionsByCohort(cohortID uint) ([]model.LiveQuizSession, error) {
	var sessions []model.LiveQuizSession
	q := r.DB.Order("created_at desc")
	if cohortID != 0 {
		q = q.Where("cohort_id = ?", cohortID)
	}
	err := q.Find(&sessions).Error
	return sessions, err
}

func (r *LiveQuizRepository) SaveSession(session *model.LiveQuizSession) error {
	return r.DB.Save(session).Error
}

func (r *LiveQuizRepository) CreateParticipant(p *model.LiveQuizParticipant) error {
	return r.DB.Create(p).Error
}

func (r *LiveQuizRepository) FindParticipant(sessionID, userID uint) (*model.LiveQuizParticipant, error) {
	var participant model.LiveQuizParticipant
	err := r.DB.Where("session_id = ? AND user_id = ?", sessionID, userID).First(&participant).Error
	if err != nil {
		return nil, err
	}
	return &participant, nil
}

func (r *LiveQuizRepository) ListParticipants(sessionID uint) ([]model.LiveQuizParticipant, error) {
	var participants []model.LiveQuizParticipant
	err := r.DB.Where("session_id = ?", sessionID).Order("id asc").Find(&participants).Error
	return participants, err
}

func (r *LiveQuizRepository) SaveParticipant(p *model.LiveQuizParticipant) error {
	return r.DB.Save(p).Error
}

// participantResultColumns 终局落库的更新列。行由内存态合成，建档时间等
// 其余列不在其中，整结构 Save 会把零值时间写回去
func participantResultColumns(p *model.LiveQuizParticipant) map[string]interface{} {
	return map[string]interface{}{
		"score":         p.Score,
		"correct_count": p.CorrectCount,
		"streak":        p.Streak,
		"final_rank":    p.FinalRank,
	}
}

// SaveParticipants 结束时批量落定名次，只更新比分与名次列
func (r *LiveQuizRepository) SaveParticipants(participants []model.LiveQuizParticipant) error {
	return r.DB.Transaction(func(tx *gorm.DB) error {
		for i := range participants {
			p := &participants[i]
			err := tx.Model(&model.LiveQuizParticipant{}).
				Where("id = ?", p.ID).
				Updates(participantResultColumns(p)).Error
			if err != nil {
				return err
			}
		}
		return nil
	})
}

func (r *LiveQuizRepository) CreateAnswer(answer *model.LiveQuizAnswer) error {
	return r.DB.Create(answer).Error
}

// ListAnswersBySession 场次内全部作答记录，重建内存态时用于恢复防重复集合
func (r *LiveQuizRepository) ListAnswersBySession(sessionID uint) ([]model.LiveQuizAnswer, error) {
	var answers []model.LiveQuizAnswer
	err := r.DB.
		Joins("JOIN live_quiz_participants p ON p.id = live_quiz_answers.participant_id").
		Where("p.session_id = ?", sessionID).
		Find(&answers).Error
	return answers, err
}

// CountJoinedByUser 参加过的实时赛场次
func (r *LiveQuizRepository) CountJoinedByUser(userID uint) (int64, error) {
	var count int64
	err := r.DB.Model(&model.LiveQuizParticipant{}).Where("user_id = ?", userID).Count(&count).Error
	return count, err
}

// CountTop3ByUser 获得前三名的场次（仅统计已结束的）
func (r *LiveQuizRepository) CountTop3ByUser(userID uint) (int64, error) {
	var count int64
	err := r.DB.Model(&model.LiveQuizParticipant{}).
		Where("user_id = ? AND final_rank BETWEEN 1 AND 3", userID).
		Count(&count).Error
	return count, err
}
