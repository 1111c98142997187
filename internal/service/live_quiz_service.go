package service

import (
	"sync"
	"time"

	"fellowship_backend/internal/config"
	"fellowship_backend/internal/model"
	"fellowship_backend/internal/repository"
	"fellowship_backend/internal/util"
	"fellowship_backend/pkg/logger"
	"fellowship_backend/pkg/monitoring"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// QuizEvent 推给客户端的实时事件
type QuizEvent struct {
	Type      string      `json:"type"`
	SessionID uint        `json:"sessionId"`
	Payload   interface{} `json:"payload,omitempty"`
}

const (
	EventParticipantJoined = "participant_joined"
	EventQuizStarted       = "quiz_started"
	EventQuestionShown     = "question_shown"
	EventAnswerResult      = "answer_result"
	EventLeaderboardUpdate = "leaderboard_update"
	EventQuizCompleted     = "quiz_completed"
	EventQuizCancelled     = "quiz_cancelled"
)

// QuizPublisher 事件出口，由 WebSocket 枢纽实现。
// 发布是尽力而为的，失败不影响比分结算。
type QuizPublisher interface {
	PublishToSession(sessionID uint, event QuizEvent)
	PublishToUser(sessionID, userID uint, event QuizEvent)
}

type CreateQuestionRequest struct {
	Text          string `json:"text" binding:"required"`
	OptionA       string `json:"optionA" binding:"required"`
	OptionB       string `json:"optionB" binding:"required"`
	OptionC       string `json:"optionC" binding:"required"`
	OptionD       string `json:"optionD" binding:"required"`
	CorrectOption int    `json:"correctOption" binding:"min=0,max=3"`
	TimeLimitSec  int    `json:"timeLimitSec"`
	BasePoints    int    `json:"basePoints"`
}

type CreateSessionRequest struct {
	Title           string                  `json:"title" binding:"required"`
	CohortID        uint                    `json:"cohortId"`
	TimePerQuestion int                     `json:"timePerQuestion"`
	Questions       []CreateQuestionRequest `json:"questions" binding:"required,min=1,dive"`
}

// LiveQuizService 实时抢答赛编排：持久层之上挂一层内存运行时，
// 作答路径全部走内存结算，数据库只做落盘
type LiveQuizService struct {
	Repo         *repository.LiveQuizRepository
	UserRepo     *repository.UserRepository
	Achievements *AchievementService
	Publisher    QuizPublisher
	Cfg          config.LiveQuizConfig

	mu       sync.Mutex
	runtimes map[uint]*quizRuntime
}

func NewLiveQuizService(
	repo *repository.LiveQuizRepository,
	userRepo *repository.UserRepository,
	achievements *AchievementService,
	cfg config.LiveQuizConfig,
) *LiveQuizService {
	return &LiveQuizService{
		Repo:         repo,
		UserRepo:     userRepo,
		Achievements: achievements,
		Cfg:          cfg,
		runtimes:     make(map[uint]*quizRuntime),
	}
}

// SetPublisher 枢纽在服务之后构建，启动时回填
func (s *LiveQuizService) SetPublisher(publisher QuizPublisher) {
	s.Publisher = publisher
}

func (s *LiveQuizService) publish(event QuizEvent) {
	if s.Publisher != nil {
		s.Publisher.PublishToSession(event.SessionID, event)
	}
}

func (s *LiveQuizService) publishTo(userID uint, event QuizEvent) {
	if s.Publisher != nil {
		s.Publisher.PublishToUser(event.SessionID, userID, event)
	}
}

// runtimeFor 取场次的内存态，进程重启后从持久层重建
func (s *LiveQuizService) runtimeFor(sessionID uint) (*quizRuntime, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if rt, ok := s.runtimes[sessionID]; ok {
		return rt, nil
	}

	session, err := s.Repo.FindSession(sessionID)
	if err == gorm.ErrRecordNotFound {
		return nil, util.ErrSessionNotFound
	}
	if err != nil {
		return nil, err
	}

	rt := newQuizRuntime(session)
	participants, err := s.Repo.ListParticipants(sessionID)
	if err != nil {
		return nil, err
	}
	for i := range participants {
		rt.addParticipant(&participants[i])
	}

	answers, err := s.Repo.ListAnswersBySession(sessionID)
	if err != nil {
		return nil, err
	}
	byParticipant := make(map[uint]uint, len(participants))
	for _, p := range participants {
		byParticipant[p.ID] = p.UserID
	}
	rt.mu.Lock()
	for _, answer := range answers {
		if userID, ok := byParticipant[answer.ParticipantID]; ok {
			if entry, ok := rt.participants[userID]; ok {
				entry.answered[answer.QuestionID] = true
			}
		}
	}
	rt.mu.Unlock()

	s.runtimes[sessionID] = rt
	return rt, nil
}

// Create 建一场新比赛，题序按请求顺序固定
func (s *LiveQuizService) Create(hostID uint, req *CreateSessionRequest) (*model.LiveQuizSession, error) {
	timePerQuestion := req.TimePerQuestion
	if timePerQuestion <= 0 {
		timePerQuestion = s.Cfg.DefaultTimeLimitSec
	}

	session := &model.LiveQuizSession{
		Title:           req.Title,
		HostID:          hostID,
		CohortID:        req.CohortID,
		Status:          model.QuizPending,
		TimePerQuestion: timePerQuestion,
		CurrentIndex:    -1,
	}
	for i, q := range req.Questions {
		basePoints := q.BasePoints
		if basePoints <= 0 {
			basePoints = 100
		}
		session.Questions = append(session.Questions, model.LiveQuizQuestion{
			Text:          q.Text,
			OptionA:       q.OptionA,
			OptionB:       q.OptionB,
			OptionC:       q.OptionC,
			OptionD:       q.OptionD,
			CorrectOption: q.CorrectOption,
			TimeLimitSec:  q.TimeLimitSec,
			BasePoints:    basePoints,
			OrderIndex:    i,
		})
	}

	if err := s.Repo.CreateSession(session); err != nil {
		return nil, err
	}
	return session, nil
}

func (s *LiveQuizService) Get(sessionID uint) (*model.LiveQuizSession, error) {
	session, err := s.Repo.FindSession(sessionID)
	if err == gorm.ErrRecordNotFound {
		return nil, util.ErrSessionNotFound
	}
	return session, err
}

func (s *LiveQuizService) List(cohortID uint) ([]model.LiveQuizSession, error) {
	return s.Repo.ListSessionsByCohort(cohortID)
}

// Join 报名参赛。幂等：已加入的用户重复 Join 直接返回现有名单
func (s *LiveQuizService) Join(sessionID, userID uint) ([]QuizStanding, error) {
	session, err := s.Get(sessionID)
	if err != nil {
		return nil, err
	}
	if session.Status == model.QuizCompleted || session.Status == model.QuizCancelled {
		return nil, util.ErrQuizFinished
	}

	rt, err := s.runtimeFor(sessionID)
	if err != nil {
		return nil, err
	}

	participant, err := s.Repo.FindParticipant(sessionID, userID)
	if err == gorm.ErrRecordNotFound {
		user, uerr := s.UserRepo.FindByID(userID)
		if uerr != nil {
			return nil, util.ErrUserNotFound
		}
		participant = &model.LiveQuizParticipant{
			SessionID:   sessionID,
			UserID:      userID,
			DisplayName: user.Name,
		}
		if cerr := s.Repo.CreateParticipant(participant); cerr != nil {
			return nil, cerr
		}
	} else if err != nil {
		return nil, err
	}

	_, added := rt.addParticipant(participant)
	if added {
		s.publish(QuizEvent{Type: EventParticipantJoined, SessionID: sessionID, Payload: map[string]interface{}{
			"userId":      userID,
			"displayName": participant.DisplayName,
			"count":       rt.participantCount(),
		}})
	}
	return rt.standings(), nil
}

// Start 只有主持人能开赛，且只允许从 PENDING 出发
func (s *LiveQuizService) Start(sessionID, hostID uint) error {
	session, err := s.Get(sessionID)
	if err != nil {
		return err
	}
	if session.HostID != hostID {
		return util.ErrPermissionDenied
	}

	rt, err := s.runtimeFor(sessionID)
	if err != nil {
		return err
	}
	now := time.Now()
	question, err := rt.start(now)
	if err != nil {
		return err
	}

	session.Status = model.QuizActive
	session.CurrentIndex = 0
	session.StartedAt = &now
	if err := s.Repo.SaveSession(session); err != nil {
		return err
	}

	monitoring.QuizEventCounter.WithLabelValues(EventQuizStarted, "out").Inc()
	s.publish(QuizEvent{Type: EventQuizStarted, SessionID: sessionID, Payload: map[string]interface{}{
		"title":     session.Title,
		"questions": len(session.Questions),
	}})
	s.publishQuestion(sessionID, question, 0)
	return nil
}

func (s *LiveQuizService) publishQuestion(sessionID uint, question *model.LiveQuizQuestion, index int) {
	limit := question.TimeLimitSec
	if limit <= 0 {
		limit = s.Cfg.DefaultTimeLimitSec
	}
	// CorrectOption 在模型上标记为不序列化，这里直接下发题目本体
	s.publish(QuizEvent{Type: EventQuestionShown, SessionID: sessionID, Payload: map[string]interface{}{
		"index":        index,
		"question":     question,
		"timeLimitSec": limit,
	}})
}

// Advance 主持人翻到下一题；越过末题即收卷结算
func (s *LiveQuizService) Advance(sessionID, hostID uint) error {
	session, err := s.Get(sessionID)
	if err != nil {
		return err
	}
	if session.HostID != hostID {
		return util.ErrPermissionDenied
	}

	rt, err := s.runtimeFor(sessionID)
	if err != nil {
		return err
	}
	question, finished, err := rt.advance(time.Now())
	if err != nil {
		return err
	}

	if finished {
		return s.complete(session, rt)
	}

	session.CurrentIndex++
	if err := s.Repo.SaveSession(session); err != nil {
		return err
	}
	s.publishQuestion(sessionID, question, session.CurrentIndex)
	s.publish(QuizEvent{Type: EventLeaderboardUpdate, SessionID: sessionID, Payload: s.topN(rt.standings())})
	return nil
}

func (s *LiveQuizService) complete(session *model.LiveQuizSession, rt *quizRuntime) error {
	final, rows := rt.finalize()

	now := time.Now()
	session.Status = model.QuizCompleted
	session.CompletedAt = &now
	if err := s.Repo.SaveSession(session); err != nil {
		return err
	}
	if err := s.Repo.SaveParticipants(rows); err != nil {
		return err
	}

	monitoring.QuizEventCounter.WithLabelValues(EventQuizCompleted, "out").Inc()
	s.publish(QuizEvent{Type: EventQuizCompleted, SessionID: session.ID, Payload: final})

	// 终局名次入库后重新评估参赛/前三类成就
	for _, row := range rows {
		if _, err := s.Achievements.CheckAndAward(row.UserID); err != nil {
			logger.Log.Warn("post-quiz achievement check failed",
				zap.Uint("userId", row.UserID),
				zap.Error(err))
		}
	}

	s.mu.Lock()
	delete(s.runtimes, session.ID)
	s.mu.Unlock()
	return nil
}

// Cancel 主持人中止比赛，比分不落定名次
func (s *LiveQuizService) Cancel(sessionID, hostID uint) error {
	session, err := s.Get(sessionID)
	if err != nil {
		return err
	}
	if session.HostID != hostID {
		return util.ErrPermissionDenied
	}

	rt, err := s.runtimeFor(sessionID)
	if err != nil {
		return err
	}
	if err := rt.cancel(); err != nil {
		return err
	}

	session.Status = model.QuizCancelled
	if err := s.Repo.SaveSession(session); err != nil {
		return err
	}

	s.publish(QuizEvent{Type: EventQuizCancelled, SessionID: sessionID})
	s.mu.Lock()
	delete(s.runtimes, sessionID)
	s.mu.Unlock()
	return nil
}

// SubmitAnswer 结算作答并广播榜单。个人结果只回给提交者
func (s *LiveQuizService) SubmitAnswer(sessionID, userID, questionID uint, option int) (*AnswerOutcome, error) {
	rt, err := s.runtimeFor(sessionID)
	if err != nil {
		return nil, err
	}

	outcome, record, err := rt.submitAnswer(userID, questionID, option, time.Now())
	if err != nil {
		return nil, err
	}

	if err := s.Repo.CreateAnswer(record); err != nil {
		logger.Log.Error("persisting quiz answer failed",
			zap.Uint("sessionId", sessionID),
			zap.Uint("userId", userID),
			zap.Error(err))
	}
	if participant, perr := s.Repo.FindParticipant(sessionID, userID); perr == nil {
		participant.Score = outcome.TotalScore
		participant.Streak = outcome.Streak
		if outcome.Correct {
			participant.CorrectCount++
		}
		if serr := s.Repo.SaveParticipant(participant); serr != nil {
			logger.Log.Error("persisting participant score failed",
				zap.Uint("sessionId", sessionID),
				zap.Uint("userId", userID),
				zap.Error(serr))
		}
	}

	monitoring.QuizEventCounter.WithLabelValues(EventAnswerResult, "out").Inc()
	s.publishTo(userID, QuizEvent{Type: EventAnswerResult, SessionID: sessionID, Payload: outcome})
	s.publish(QuizEvent{Type: EventLeaderboardUpdate, SessionID: sessionID, Payload: s.topN(rt.standings())})
	return outcome, nil
}

// Standings 当前榜单（全量，未截断）
func (s *LiveQuizService) Standings(sessionID uint) ([]QuizStanding, error) {
	session, err := s.Get(sessionID)
	if err != nil {
		return nil, err
	}
	if session.Status == model.QuizCompleted {
		participants, err := s.Repo.ListParticipants(sessionID)
		if err != nil {
			return nil, err
		}
		rows := make([]QuizStanding, 0, len(participants))
		for _, p := range participants {
			rows = append(rows, QuizStanding{
				Rank:         p.FinalRank,
				UserID:       p.UserID,
				DisplayName:  p.DisplayName,
				Score:        p.Score,
				CorrectCount: p.CorrectCount,
				Streak:       p.Streak,
			})
		}
		sortStandingsByRank(rows)
		return rows, nil
	}

	rt, err := s.runtimeFor(sessionID)
	if err != nil {
		return nil, err
	}
	return rt.standings(), nil
}

func (s *LiveQuizService) topN(rows []QuizStanding) []QuizStanding {
	n := s.Cfg.LeaderboardTopN
	if n <= 0 || n >= len(rows) {
		return rows
	}
	return rows[:n]
}
