package service

import (
	"testing"
	"time"

	"fellowship_backend/internal/model"
)

func newState(total, cap int, lastReset time.Time) *model.UserPointState {
	return &model.UserPointState{
		UserID:       1,
		MonthlyTotal: total,
		MonthlyCap:   cap,
		LastResetAt:  lastReset,
	}
}

func TestGrantDecisionWithinCap(t *testing.T) {
	now := date(2026, 3, 10)
	state := newState(4000, 10000, date(2026, 3, 1))

	rollover, newTotal, allowed := grantDecision(state, 4000, model.EventQuizSubmit, now)
	if rollover {
		t.Fatal("unexpected rollover within same month")
	}
	if !allowed {
		t.Fatal("grant within cap should be allowed")
	}
	if newTotal != 8000 {
		t.Fatalf("newTotal = %d, want 8000", newTotal)
	}
}

func TestGrantDecisionRejectsWholeGrant(t *testing.T) {
	now := date(2026, 3, 20)
	state := newState(8000, 10000, date(2026, 3, 1))

	// 8000 + 4000 超过 10000：整笔拒绝，不截断到 2000
	_, newTotal, allowed := grantDecision(state, 4000, model.EventQuizSubmit, now)
	if allowed {
		t.Fatal("grant exceeding cap should be rejected")
	}
	if newTotal != 8000 {
		t.Fatalf("rejected grant must not change total, got %d", newTotal)
	}

	// 恰好触顶允许
	_, newTotal, allowed = grantDecision(state, 2000, model.EventQuizSubmit, now)
	if !allowed || newTotal != 10000 {
		t.Fatalf("exact cap grant: allowed=%v total=%d, want true 10000", allowed, newTotal)
	}
}

func TestGrantDecisionMonthRollover(t *testing.T) {
	// 上月已触顶，跨月后从 0 起算
	now := date(2026, 4, 1)
	state := newState(10000, 10000, date(2026, 3, 5))

	rollover, newTotal, allowed := grantDecision(state, 500, model.EventResourceComplete, now)
	if !rollover {
		t.Fatal("expected rollover across month boundary")
	}
	if !allowed || newTotal != 500 {
		t.Fatalf("post-rollover grant: allowed=%v total=%d, want true 500", allowed, newTotal)
	}
}

func TestGrantDecisionYearBoundaryRollover(t *testing.T) {
	// 同月不同年也要重置
	now := date(2027, 3, 1)
	state := newState(9000, 10000, date(2026, 3, 15))

	rollover, _, _ := grantDecision(state, 100, model.EventQuizSubmit, now)
	if !rollover {
		t.Fatal("same month of a different year must roll over")
	}
}

func TestGrantDecisionAdminBypassesCap(t *testing.T) {
	now := date(2026, 3, 20)
	state := newState(9500, 10000, date(2026, 3, 1))

	_, newTotal, allowed := grantDecision(state, 2000, model.EventAdminAdjustment, now)
	if !allowed {
		t.Fatal("admin adjustment must bypass the cap")
	}
	if newTotal != 11500 {
		t.Fatalf("newTotal = %d, want 11500", newTotal)
	}

	// 负数修正同样放行
	_, newTotal, allowed = grantDecision(state, -3000, model.EventAdminAdjustment, now)
	if !allowed || newTotal != 6500 {
		t.Fatalf("negative adjustment: allowed=%v total=%d, want true 6500", allowed, newTotal)
	}
}

func TestGrantDecisionZeroAdminAmount(t *testing.T) {
	now := date(2026, 3, 20)
	state := newState(10000, 10000, date(2026, 3, 1))

	// 零额修正不走旁路，但 10000+0 未超限，仍允许
	_, newTotal, allowed := grantDecision(state, 0, model.EventAdminAdjustment, now)
	if !allowed || newTotal != 10000 {
		t.Fatalf("zero adjustment: allowed=%v total=%d, want true 10000", allowed, newTotal)
	}
}
