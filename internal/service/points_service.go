package service

import (
	"fellowship_backend/internal/model"
	"fellowship_backend/internal/repository"
	"fellowship_backend/pkg/logger"
	"fellowship_backend/pkg/monitoring"
	"sync"
	"time"

	"go.uber.org/zap"
)

// PointsService 积分账本：只追加流水 + 当月累计上限
type PointsService struct {
	PointRepo  *repository.PointRepository
	CohortRepo *repository.CohortRepository

	mu    sync.Mutex
	locks map[uint]*sync.Mutex // 每用户串行化，防止并发越过月上限
}

func NewPointsService(pointRepo *repository.PointRepository, cohortRepo *repository.CohortRepository) *PointsService {
	return &PointsService{
		PointRepo:  pointRepo,
		CohortRepo: cohortRepo,
		locks:      make(map[uint]*sync.Mutex),
	}
}

func (s *PointsService) userLock(userID uint) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	lock, ok := s.locks[userID]
	if !ok {
		lock = &sync.Mutex{}
		s.locks[userID] = lock
	}
	return lock
}

// grantDecision 上限判定的纯计算部分：
// 跨月时按 0 起算（重置在写入时一并持久化），超限整笔拒绝而非截断
func grantDecision(state *model.UserPointState, amount int, kind model.PointEventKind, now time.Time) (rollover bool, newTotal int, allowed bool) {
	rollover = state.LastResetAt.Month() != now.Month() || state.LastResetAt.Year() != now.Year()

	base := state.MonthlyTotal
	if rollover {
		base = 0
	}
	newTotal = base + amount

	// 管理员修正不受上限约束，必须能把分数改回去
	if kind == model.EventAdminAdjustment && amount != 0 {
		return rollover, newTotal, true
	}
	if newTotal > state.MonthlyCap {
		return rollover, base, false
	}
	return rollover, newTotal, true
}

// monthlyCapForUser 按用户所属营期时长查上限，查不到时用单月默认
func (s *PointsService) monthlyCapForUser(userID uint) int {
	cohort, err := s.CohortRepo.FindForUser(userID)
	if err != nil {
		return MonthlyCapForMonths(1)
	}
	return MonthlyCapForMonths(MonthsBetween(cohort.StartDate, cohort.EndDate))
}

// Grant 尝试发放积分。返回 false 表示触达当月上限被整笔拒绝（不写任何记录）。
func (s *PointsService) Grant(userID uint, amount int, kind model.PointEventKind, description string) (bool, error) {
	lock := s.userLock(userID)
	lock.Lock()
	defer lock.Unlock()

	cap := s.monthlyCapForUser(userID)
	state, err := s.PointRepo.FindOrInitState(userID, cap)
	if err != nil {
		return false, err
	}
	state.MonthlyCap = cap

	now := time.Now()
	rollover, newTotal, allowed := grantDecision(state, amount, kind, now)
	if !allowed {
		monitoring.PointGrantCounter.WithLabelValues(string(kind), "capped").Inc()
		logger.Log.Info("point grant rejected by monthly cap",
			zap.Uint("userId", userID),
			zap.Int("amount", amount),
			zap.Int("monthlyTotal", state.MonthlyTotal),
			zap.Int("cap", state.MonthlyCap))
		return false, nil
	}

	if rollover {
		state.LastResetAt = now
	}
	state.MonthlyTotal = newTotal

	grant := &model.PointGrant{
		UserID:      userID,
		Amount:      amount,
		Kind:        kind,
		Description: description,
	}
	if err := s.PointRepo.CreateGrantWithState(grant, state); err != nil {
		return false, err
	}

	monitoring.PointGrantCounter.WithLabelValues(string(kind), "granted").Inc()
	return true, nil
}

// MonthlyTotal 用户当月累计（跨月未发生发放时按 0 返回）
func (s *PointsService) MonthlyTotal(userID uint) (int, int, error) {
	cap := s.monthlyCapForUser(userID)
	state, err := s.PointRepo.FindOrInitState(userID, cap)
	if err != nil {
		return 0, 0, err
	}
	now := time.Now()
	if state.LastResetAt.Month() != now.Month() || state.LastResetAt.Year() != now.Year() {
		return 0, cap, nil
	}
	return state.MonthlyTotal, cap, nil
}
