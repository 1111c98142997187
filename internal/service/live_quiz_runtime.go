package service

import (
	"sort"
	"sync"
	"time"

	"fellowship_backend/internal/model"
	"fellowship_backend/internal/util"
)

// 连续答对奖励：每满 3 连击一档，每档 100 分
const (
	streakStep      = 3
	streakStepBonus = 100
)

// answerScore 单题得分：答对得基础分，剩余时间最多再奖励基础分的一半，
// 奖励随耗时线性衰减，超时后只剩基础分
func answerScore(basePoints, limitMs, elapsedMs int) int {
	if elapsedMs < 0 {
		elapsedMs = 0
	}
	if limitMs <= 0 || elapsedMs >= limitMs {
		return basePoints
	}
	speedBonus := float64(basePoints) * 0.5 * float64(limitMs-elapsedMs) / float64(limitMs)
	return basePoints + int(speedBonus)
}

// streakBonusPoints 连击达到 3 后，每 3 连击累计 100 分
func streakBonusPoints(streak int) int {
	if streak < streakStep {
		return 0
	}
	return streak / streakStep * streakStepBonus
}

type runtimeParticipant struct {
	ParticipantID uint
	UserID        uint
	DisplayName   string
	Score         int
	CorrectCount  int
	Streak        int
	answered      map[uint]bool
}

// AnswerOutcome 单次作答的结算结果，回传给提交者
type AnswerOutcome struct {
	Correct       bool `json:"correct"`
	CorrectOption int  `json:"correctOption"`
	PointsEarned  int  `json:"pointsEarned"`
	StreakBonus   int  `json:"streakBonus"`
	Streak        int  `json:"streak"`
	TotalScore    int  `json:"totalScore"`
	ElapsedMs     int  `json:"elapsedMs"`
}

// QuizStanding 赛中/赛后榜单的一行
type QuizStanding struct {
	Rank         int    `json:"rank"`
	UserID       uint   `json:"userId"`
	DisplayName  string `json:"displayName"`
	Score        int    `json:"score"`
	CorrectCount int    `json:"correctCount"`
	Streak       int    `json:"streak"`
}

// quizRuntime 单场比赛的内存态。所有读写都走互斥锁，
// 计时基准是题目下发的瞬间，与客户端时钟无关。
type quizRuntime struct {
	mu sync.RWMutex

	sessionID       uint
	status          model.LiveQuizStatus
	questions       []model.LiveQuizQuestion
	defaultLimitSec int
	currentIndex    int
	questionShownAt time.Time

	participants map[uint]*runtimeParticipant
	joinOrder    []uint
}

func newQuizRuntime(session *model.LiveQuizSession) *quizRuntime {
	return &quizRuntime{
		sessionID:       session.ID,
		status:          session.Status,
		questions:       session.Questions,
		defaultLimitSec: session.TimePerQuestion,
		currentIndex:    session.CurrentIndex,
		participants:    make(map[uint]*runtimeParticipant),
	}
}

func (rt *quizRuntime) questionLimitMs(q *model.LiveQuizQuestion) int {
	limit := q.TimeLimitSec
	if limit <= 0 {
		limit = rt.defaultLimitSec
	}
	return limit * 1000
}

// addParticipant 幂等：同一用户重复加入返回已有条目
func (rt *quizRuntime) addParticipant(p *model.LiveQuizParticipant) (*runtimeParticipant, bool) {
	rt.mu.Lock()
	defer rt.mu.Unlock()

	if existing, ok := rt.participants[p.UserID]; ok {
		return existing, false
	}
	entry := &runtimeParticipant{
		ParticipantID: p.ID,
		UserID:        p.UserID,
		DisplayName:   p.DisplayName,
		Score:         p.Score,
		CorrectCount:  p.CorrectCount,
		Streak:        p.Streak,
		answered:      make(map[uint]bool),
	}
	rt.participants[p.UserID] = entry
	rt.joinOrder = append(rt.joinOrder, p.UserID)
	return entry, true
}

func (rt *quizRuntime) start(now time.Time) (*model.LiveQuizQuestion, error) {
	rt.mu.Lock()
	defer rt.mu.Unlock()

	if rt.status != model.QuizPending {
		return nil, util.ErrQuizNotPending
	}
	if len(rt.questions) == 0 {
		return nil, util.ErrQuestionNotFound
	}
	rt.status = model.QuizActive
	rt.currentIndex = 0
	rt.questionShownAt = now
	question := rt.questions[0]
	return &question, nil
}

// advance 推进到下一题；越过末题时进入 COMPLETED 并返回 finished=true。
// 推进后旧题即关闭，迟到的作答一律拒绝。
func (rt *quizRuntime) advance(now time.Time) (*model.LiveQuizQuestion, bool, error) {
	rt.mu.Lock()
	defer rt.mu.Unlock()

	switch rt.status {
	case model.QuizActive:
	case model.QuizCompleted, model.QuizCancelled:
		return nil, false, util.ErrQuizFinished
	default:
		return nil, false, util.ErrQuizNotActive
	}

	rt.currentIndex++
	if rt.currentIndex >= len(rt.questions) {
		rt.status = model.QuizCompleted
		return nil, true, nil
	}
	rt.questionShownAt = now
	question := rt.questions[rt.currentIndex]
	return &question, false, nil
}

func (rt *quizRuntime) cancel() error {
	rt.mu.Lock()
	defer rt.mu.Unlock()

	if rt.status == model.QuizCompleted || rt.status == model.QuizCancelled {
		return util.ErrQuizFinished
	}
	rt.status = model.QuizCancelled
	return nil
}

// submitAnswer 结算一次作答。只接受当前题，重复提交与越界选项都拒绝
func (rt *quizRuntime) submitAnswer(userID, questionID uint, option int, now time.Time) (*AnswerOutcome, *model.LiveQuizAnswer, error) {
	rt.mu.Lock()
	defer rt.mu.Unlock()

	if rt.status != model.QuizActive {
		if rt.status == model.QuizCompleted || rt.status == model.QuizCancelled {
			return nil, nil, util.ErrQuizFinished
		}
		return nil, nil, util.ErrQuizNotActive
	}
	participant, ok := rt.participants[userID]
	if !ok {
		return nil, nil, util.ErrParticipantNotFound
	}
	if option < 0 || option > 3 {
		return nil, nil, util.ErrInvalidOption
	}

	current := &rt.questions[rt.currentIndex]
	if questionID != current.ID {
		// 主持人已翻页或抢跑提交，统一按题目已关闭处理
		return nil, nil, util.ErrQuestionClosed
	}
	if participant.answered[questionID] {
		return nil, nil, util.ErrAlreadyAnswered
	}
	participant.answered[questionID] = true

	elapsedMs := int(now.Sub(rt.questionShownAt) / time.Millisecond)
	if elapsedMs < 0 {
		elapsedMs = 0
	}

	outcome := &AnswerOutcome{
		CorrectOption: current.CorrectOption,
		ElapsedMs:     elapsedMs,
	}
	if option == current.CorrectOption {
		outcome.Correct = true
		outcome.PointsEarned = answerScore(current.BasePoints, rt.questionLimitMs(current), elapsedMs)
		participant.Streak++
		participant.CorrectCount++
		outcome.StreakBonus = streakBonusPoints(participant.Streak)
		participant.Score += outcome.PointsEarned + outcome.StreakBonus
	} else {
		participant.Streak = 0
	}
	outcome.Streak = participant.Streak
	outcome.TotalScore = participant.Score

	record := &model.LiveQuizAnswer{
		ParticipantID:  participant.ParticipantID,
		QuestionID:     questionID,
		SelectedOption: option,
		Correct:        outcome.Correct,
		ElapsedMs:      elapsedMs,
		PointsEarned:   outcome.PointsEarned + outcome.StreakBonus,
	}
	return outcome, record, nil
}

// standings 按得分降序排名，平分时先加入者在前，名次为 1..N
func (rt *quizRuntime) standings() []QuizStanding {
	rt.mu.RLock()
	defer rt.mu.RUnlock()
	return rt.standingsLocked()
}

func (rt *quizRuntime) standingsLocked() []QuizStanding {
	rows := make([]QuizStanding, 0, len(rt.joinOrder))
	for _, userID := range rt.joinOrder {
		p := rt.participants[userID]
		rows = append(rows, QuizStanding{
			UserID:       p.UserID,
			DisplayName:  p.DisplayName,
			Score:        p.Score,
			CorrectCount: p.CorrectCount,
			Streak:       p.Streak,
		})
	}
	sort.SliceStable(rows, func(i, j int) bool {
		return rows[i].Score > rows[j].Score
	})
	for i := range rows {
		rows[i].Rank = i + 1
	}
	return rows
}

// finalize 生成终局名次并回填参赛者行，供落库
func (rt *quizRuntime) finalize() ([]QuizStanding, []model.LiveQuizParticipant) {
	rt.mu.Lock()
	defer rt.mu.Unlock()

	final := rt.standingsLocked()
	rows := make([]model.LiveQuizParticipant, 0, len(final))
	for _, standing := range final {
		p := rt.participants[standing.UserID]
		rows = append(rows, model.LiveQuizParticipant{
			BaseModel:    model.BaseModel{ID: p.ParticipantID},
			SessionID:    rt.sessionID,
			UserID:       p.UserID,
			DisplayName:  p.DisplayName,
			Score:        p.Score,
			CorrectCount: p.CorrectCount,
			Streak:       p.Streak,
			FinalRank:    standing.Rank,
		})
	}
	return final, rows
}

func (rt *quizRuntime) currentQuestion() (*model.LiveQuizQuestion, int) {
	rt.mu.RLock()
	defer rt.mu.RUnlock()
	if rt.status != model.QuizActive || rt.currentIndex < 0 || rt.currentIndex >= len(rt.questions) {
		return nil, -1
	}
	question := rt.questions[rt.currentIndex]
	return &question, rt.currentIndex
}

func sortStandingsByRank(rows []QuizStanding) {
	sort.SliceStable(rows, func(i, j int) bool {
		return rows[i].Rank < rows[j].Rank
	})
}

func (rt *quizRuntime) participantCount() int {
	rt.mu.RLock()
	defer rt.mu.RUnlock()
	return len(rt.participants)
}
