package service

import (
	"testing"
	"time"

	"fellowship_backend/internal/model"
	"fellowship_backend/internal/util"
)

func TestAnswerScore(t *testing.T) {
	cases := []struct {
		name      string
		base      int
		limitMs   int
		elapsedMs int
		want      int
	}{
		{"instant answer gets full speed bonus", 100, 20000, 0, 150},
		{"half time gets half bonus", 100, 20000, 10000, 125},
		{"at limit only base", 100, 20000, 20000, 100},
		{"past limit only base", 100, 20000, 25000, 100},
		{"negative elapsed clamps to zero", 100, 20000, -50, 150},
		{"zero limit only base", 100, 0, 0, 100},
		{"bonus truncates toward zero", 100, 30000, 10000, 133},
	}
	for _, tc := range cases {
		if got := answerScore(tc.base, tc.limitMs, tc.elapsedMs); got != tc.want {
			t.Errorf("%s: answerScore = %d, want %d", tc.name, got, tc.want)
		}
	}
}

func TestStreakBonusPoints(t *testing.T) {
	cases := []struct{ streak, want int }{
		{0, 0}, {1, 0}, {2, 0}, {3, 100}, {4, 100}, {5, 100}, {6, 200}, {9, 300},
	}
	for _, tc := range cases {
		if got := streakBonusPoints(tc.streak); got != tc.want {
			t.Errorf("streakBonusPoints(%d) = %d, want %d", tc.streak, got, tc.want)
		}
	}
}

func testSession(questions int) *model.LiveQuizSession {
	session := &model.LiveQuizSession{
		BaseModel:       model.BaseModel{ID: 1},
		Title:           "周五抢答",
		HostID:          99,
		Status:          model.QuizPending,
		TimePerQuestion: 20,
		CurrentIndex:    -1,
	}
	for i := 0; i < questions; i++ {
		session.Questions = append(session.Questions, model.LiveQuizQuestion{
			BaseModel:     model.BaseModel{ID: uint(100 + i)},
			SessionID:     1,
			Text:          "q",
			CorrectOption: 1,
			BasePoints:    100,
			OrderIndex:    i,
		})
	}
	return session
}

func joinUser(t *testing.T, rt *quizRuntime, participantID, userID uint, name string) {
	t.Helper()
	_, added := rt.addParticipant(&model.LiveQuizParticipant{
		BaseModel:   model.BaseModel{ID: participantID},
		SessionID:   rt.sessionID,
		UserID:      userID,
		DisplayName: name,
	})
	if !added {
		t.Fatalf("participant %d not added", userID)
	}
}

func TestAddParticipantIdempotent(t *testing.T) {
	rt := newQuizRuntime(testSession(1))
	joinUser(t, rt, 10, 1, "Ada")

	entry, added := rt.addParticipant(&model.LiveQuizParticipant{
		BaseModel: model.BaseModel{ID: 11}, UserID: 1, DisplayName: "Ada",
	})
	if added {
		t.Fatal("rejoin must not add a second entry")
	}
	if entry.ParticipantID != 10 {
		t.Fatalf("rejoin returned participant %d, want original 10", entry.ParticipantID)
	}
	if rt.participantCount() != 1 {
		t.Fatalf("participantCount = %d, want 1", rt.participantCount())
	}
}

func TestStartOnlyFromPending(t *testing.T) {
	rt := newQuizRuntime(testSession(2))
	now := time.Now()

	question, err := rt.start(now)
	if err != nil {
		t.Fatalf("start failed: %v", err)
	}
	if question.ID != 100 {
		t.Fatalf("first question = %d, want 100", question.ID)
	}

	if _, err := rt.start(now); err != util.ErrQuizNotPending {
		t.Fatalf("second start err = %v, want ErrQuizNotPending", err)
	}
}

func TestStartWithoutQuestions(t *testing.T) {
	rt := newQuizRuntime(testSession(0))
	if _, err := rt.start(time.Now()); err != util.ErrQuestionNotFound {
		t.Fatalf("err = %v, want ErrQuestionNotFound", err)
	}
}

func TestSubmitAnswerScoring(t *testing.T) {
	rt := newQuizRuntime(testSession(3))
	joinUser(t, rt, 10, 1, "Ada")

	shown := time.Now()
	if _, err := rt.start(shown); err != nil {
		t.Fatalf("start failed: %v", err)
	}

	// 5 秒后答对：100 + 100*0.5*15/20 = 137
	outcome, record, err := rt.submitAnswer(1, 100, 1, shown.Add(5*time.Second))
	if err != nil {
		t.Fatalf("submit failed: %v", err)
	}
	if !outcome.Correct || outcome.PointsEarned != 137 {
		t.Fatalf("correct=%v earned=%d, want true 137", outcome.Correct, outcome.PointsEarned)
	}
	if outcome.Streak != 1 || outcome.StreakBonus != 0 {
		t.Fatalf("streak=%d bonus=%d, want 1/0", outcome.Streak, outcome.StreakBonus)
	}
	if outcome.TotalScore != 137 {
		t.Fatalf("total = %d, want 137", outcome.TotalScore)
	}
	if record.ParticipantID != 10 || record.QuestionID != 100 || !record.Correct {
		t.Fatalf("record = %+v", record)
	}
	if record.PointsEarned != 137 {
		t.Fatalf("record points = %d, want 137", record.PointsEarned)
	}
}

func TestSubmitAnswerWrongOptionResetsStreak(t *testing.T) {
	rt := newQuizRuntime(testSession(2))
	joinUser(t, rt, 10, 1, "Ada")

	shown := time.Now()
	rt.start(shown)
	rt.submitAnswer(1, 100, 1, shown.Add(time.Second))

	rt.advance(shown)
	outcome, record, err := rt.submitAnswer(1, 101, 0, shown.Add(time.Second))
	if err != nil {
		t.Fatalf("submit failed: %v", err)
	}
	if outcome.Correct {
		t.Fatal("option 0 is wrong, outcome marked correct")
	}
	if outcome.Streak != 0 || outcome.PointsEarned != 0 {
		t.Fatalf("streak=%d earned=%d, want 0/0", outcome.Streak, outcome.PointsEarned)
	}
	if outcome.CorrectOption != 1 {
		t.Fatalf("correctOption = %d, want 1", outcome.CorrectOption)
	}
	if record.Correct || record.PointsEarned != 0 {
		t.Fatalf("record = %+v", record)
	}
}

func TestSubmitAnswerStreakBonusAccumulates(t *testing.T) {
	rt := newQuizRuntime(testSession(3))
	joinUser(t, rt, 10, 1, "Ada")

	shown := time.Now()
	rt.start(shown)

	// 三连击：第三题触发 100 分连击奖励
	late := shown.Add(30 * time.Second) // 超时提交，只有基础分，便于对账
	rt.submitAnswer(1, 100, 1, late)
	rt.advance(shown)
	rt.submitAnswer(1, 101, 1, late)
	rt.advance(shown)
	outcome, _, err := rt.submitAnswer(1, 102, 1, late)
	if err != nil {
		t.Fatalf("submit failed: %v", err)
	}
	if outcome.Streak != 3 || outcome.StreakBonus != 100 {
		t.Fatalf("streak=%d bonus=%d, want 3/100", outcome.Streak, outcome.StreakBonus)
	}
	if outcome.TotalScore != 400 {
		t.Fatalf("total = %d, want 400 (3×100 base + 100 bonus)", outcome.TotalScore)
	}
}

func TestSubmitAnswerRejections(t *testing.T) {
	rt := newQuizRuntime(testSession(2))
	joinUser(t, rt, 10, 1, "Ada")

	shown := time.Now()
	if _, _, err := rt.submitAnswer(1, 100, 1, shown); err != util.ErrQuizNotActive {
		t.Fatalf("pre-start err = %v, want ErrQuizNotActive", err)
	}

	rt.start(shown)

	if _, _, err := rt.submitAnswer(2, 100, 1, shown); err != util.ErrParticipantNotFound {
		t.Fatalf("stranger err = %v, want ErrParticipantNotFound", err)
	}
	if _, _, err := rt.submitAnswer(1, 100, 4, shown); err != util.ErrInvalidOption {
		t.Fatalf("option 4 err = %v, want ErrInvalidOption", err)
	}
	if _, _, err := rt.submitAnswer(1, 100, -1, shown); err != util.ErrInvalidOption {
		t.Fatalf("option -1 err = %v, want ErrInvalidOption", err)
	}
	if _, _, err := rt.submitAnswer(1, 101, 1, shown); err != util.ErrQuestionClosed {
		t.Fatalf("future question err = %v, want ErrQuestionClosed", err)
	}

	if _, _, err := rt.submitAnswer(1, 100, 1, shown); err != nil {
		t.Fatalf("first submit failed: %v", err)
	}
	if _, _, err := rt.submitAnswer(1, 100, 2, shown); err != util.ErrAlreadyAnswered {
		t.Fatalf("duplicate err = %v, want ErrAlreadyAnswered", err)
	}

	// 主持人翻页后旧题关闭
	rt.advance(shown)
	if _, _, err := rt.submitAnswer(1, 100, 1, shown); err != util.ErrQuestionClosed {
		t.Fatalf("stale question err = %v, want ErrQuestionClosed", err)
	}
}

func TestAdvancePastLastQuestionFinishes(t *testing.T) {
	rt := newQuizRuntime(testSession(2))
	shown := time.Now()
	rt.start(shown)

	question, finished, err := rt.advance(shown)
	if err != nil || finished {
		t.Fatalf("advance 1: q=%v finished=%v err=%v", question, finished, err)
	}
	if question.ID != 101 {
		t.Fatalf("second question = %d, want 101", question.ID)
	}

	question, finished, err = rt.advance(shown)
	if err != nil || !finished || question != nil {
		t.Fatalf("final advance: q=%v finished=%v err=%v", question, finished, err)
	}

	if _, _, err := rt.advance(shown); err != util.ErrQuizFinished {
		t.Fatalf("advance after completion err = %v, want ErrQuizFinished", err)
	}
	if _, _, err := rt.submitAnswer(1, 101, 1, shown); err != util.ErrQuizFinished {
		t.Fatalf("submit after completion err = %v, want ErrQuizFinished", err)
	}
}

func TestAdvanceBeforeStart(t *testing.T) {
	rt := newQuizRuntime(testSession(1))
	if _, _, err := rt.advance(time.Now()); err != util.ErrQuizNotActive {
		t.Fatalf("err = %v, want ErrQuizNotActive", err)
	}
}

func TestCancel(t *testing.T) {
	rt := newQuizRuntime(testSession(1))
	if err := rt.cancel(); err != nil {
		t.Fatalf("cancel pending failed: %v", err)
	}
	if err := rt.cancel(); err != util.ErrQuizFinished {
		t.Fatalf("second cancel err = %v, want ErrQuizFinished", err)
	}
	if _, err := rt.start(time.Now()); err != util.ErrQuizNotPending {
		t.Fatalf("start after cancel err = %v, want ErrQuizNotPending", err)
	}
}

func TestStandingsTieOrderFollowsJoinOrder(t *testing.T) {
	rt := newQuizRuntime(testSession(1))
	joinUser(t, rt, 10, 1, "Ada")
	joinUser(t, rt, 11, 2, "Ben")
	joinUser(t, rt, 12, 3, "Cleo")

	shown := time.Now()
	rt.start(shown)
	late := shown.Add(30 * time.Second)

	// Cleo 答对得 100，Ada 与 Ben 均为 0 分并列
	rt.submitAnswer(3, 100, 1, late)

	rows := rt.standings()
	if len(rows) != 3 {
		t.Fatalf("rows = %d, want 3", len(rows))
	}
	if rows[0].UserID != 3 || rows[0].Rank != 1 || rows[0].Score != 100 {
		t.Fatalf("top = %+v", rows[0])
	}
	// 平分按加入顺序：Ada 先于 Ben
	if rows[1].UserID != 1 || rows[2].UserID != 2 {
		t.Fatalf("tie order = %d,%d, want 1,2", rows[1].UserID, rows[2].UserID)
	}
	if rows[1].Rank != 2 || rows[2].Rank != 3 {
		t.Fatalf("ranks = %d,%d, want 2,3", rows[1].Rank, rows[2].Rank)
	}
}

func TestFinalizeFreezesRanks(t *testing.T) {
	rt := newQuizRuntime(testSession(1))
	joinUser(t, rt, 10, 1, "Ada")
	joinUser(t, rt, 11, 2, "Ben")

	shown := time.Now()
	rt.start(shown)
	late := shown.Add(30 * time.Second)
	rt.submitAnswer(2, 100, 1, late)
	rt.advance(shown)

	final, rows := rt.finalize()
	if len(final) != 2 || len(rows) != 2 {
		t.Fatalf("finalize sizes = %d/%d, want 2/2", len(final), len(rows))
	}
	if final[0].UserID != 2 || final[0].Rank != 1 {
		t.Fatalf("winner = %+v", final[0])
	}
	if rows[0].FinalRank != 1 || rows[0].ID != 11 || rows[0].Score != 100 {
		t.Fatalf("persisted winner row = %+v", rows[0])
	}
	if rows[1].FinalRank != 2 || rows[1].ID != 10 {
		t.Fatalf("persisted runner-up row = %+v", rows[1])
	}
	if rows[0].CorrectCount != 1 || rows[1].CorrectCount != 0 {
		t.Fatalf("correct counts = %d/%d", rows[0].CorrectCount, rows[1].CorrectCount)
	}
}

func TestSortStandingsByRank(t *testing.T) {
	rows := []QuizStanding{{Rank: 3, UserID: 3}, {Rank: 1, UserID: 1}, {Rank: 2, UserID: 2}}
	sortStandingsByRank(rows)
	for i, row := range rows {
		if row.Rank != i+1 {
			t.Fatalf("position %d has rank %d", i, row.Rank)
		}
	}
}

func TestCurrentQuestion(t *testing.T) {
	rt := newQuizRuntime(testSession(2))
	if q, idx := rt.currentQuestion(); q != nil || idx != -1 {
		t.Fatalf("pending currentQuestion = %v/%d, want nil/-1", q, idx)
	}
	rt.start(time.Now())
	q, idx := rt.currentQuestion()
	if q == nil || q.ID != 100 || idx != 0 {
		t.Fatalf("active currentQuestion = %v/%d, want 100/0", q, idx)
	}
}
