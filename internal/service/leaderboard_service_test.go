package service

import (
	"testing"
	"time"

	"fellowship_backend/internal/model"
)

func daySet(days ...time.Time) map[time.Time]bool {
	set := make(map[time.Time]bool, len(days))
	for _, d := range days {
		set[d] = true
	}
	return set
}

func TestDayStreakAnchoredToday(t *testing.T) {
	end := date(2026, 3, 10)
	days := daySet(end, end.AddDate(0, 0, -1), end.AddDate(0, 0, -2))
	if got := dayStreak(days, end); got != 3 {
		t.Fatalf("dayStreak = %d, want 3", got)
	}
}

func TestDayStreakAnchoredYesterday(t *testing.T) {
	// 今天还没活跃，但昨天起往前连续 4 天
	end := date(2026, 3, 10)
	days := daySet(
		end.AddDate(0, 0, -1),
		end.AddDate(0, 0, -2),
		end.AddDate(0, 0, -3),
		end.AddDate(0, 0, -4),
	)
	if got := dayStreak(days, end); got != 4 {
		t.Fatalf("dayStreak = %d, want 4", got)
	}
}

func TestDayStreakBrokenByGap(t *testing.T) {
	end := date(2026, 3, 10)
	// 最近一次活跃在前天：已断连
	days := daySet(end.AddDate(0, 0, -2), end.AddDate(0, 0, -3))
	if got := dayStreak(days, end); got != 0 {
		t.Fatalf("dayStreak = %d, want 0", got)
	}
	if got := dayStreak(nil, end); got != 0 {
		t.Fatalf("dayStreak on empty set = %d, want 0", got)
	}
}

func TestDayStreakGapStopsCount(t *testing.T) {
	end := date(2026, 3, 10)
	// 今天、昨天活跃，前天缺席，更早的不计入
	days := daySet(end, end.AddDate(0, 0, -1), end.AddDate(0, 0, -3), end.AddDate(0, 0, -4))
	if got := dayStreak(days, end); got != 2 {
		t.Fatalf("dayStreak = %d, want 2", got)
	}
}

func TestStreakBonusTiers(t *testing.T) {
	cases := []struct{ days, want int }{
		{0, 0}, {6, 0}, {7, 10}, {13, 10}, {14, 15}, {20, 15}, {21, 20}, {27, 20}, {28, 25}, {60, 25},
	}
	for _, tc := range cases {
		if got := streakBonus(tc.days); got != tc.want {
			t.Errorf("streakBonus(%d) = %d, want %d", tc.days, got, tc.want)
		}
	}
}

func TestComposeRowsOrderingAndRanks(t *testing.T) {
	end := date(2026, 3, 31)
	users := []model.User{
		{BaseModel: model.BaseModel{ID: 1}, Name: "Ada"},
		{BaseModel: model.BaseModel{ID: 2}, Name: "Ben"},
		{BaseModel: model.BaseModel{ID: 3}, Name: "Cleo"},
	}
	base := map[uint]int{1: 500, 2: 800, 3: 490}
	// Cleo 连续活跃 7 天拿 10 分加成，综合分与 Ada 持平
	activityDays := map[uint]map[time.Time]bool{3: {}}
	for i := 0; i < 7; i++ {
		activityDays[3][end.AddDate(0, 0, -i)] = true
	}

	rows := composeRows(users, base, map[uint]map[time.Time]bool{}, activityDays, map[uint]int{}, end)
	if len(rows) != 3 {
		t.Fatalf("rows = %d, want 3", len(rows))
	}
	if rows[0].UserID != 2 || rows[0].Rank != 1 {
		t.Fatalf("top row = user %d rank %d, want user 2 rank 1", rows[0].UserID, rows[0].Rank)
	}
	// 综合分均为 500：基础分高的 Ada 在前
	if rows[1].UserID != 1 || rows[2].UserID != 3 {
		t.Fatalf("tie order = %d,%d, want 1,3", rows[1].UserID, rows[2].UserID)
	}
	if rows[2].TotalPoints != 500 || rows[2].BonusPoints != 10 {
		t.Fatalf("Cleo total=%d bonus=%d, want 500/10", rows[2].TotalPoints, rows[2].BonusPoints)
	}
	if rows[1].Rank != 2 || rows[2].Rank != 3 {
		t.Fatalf("ranks = %d,%d, want 2,3", rows[1].Rank, rows[2].Rank)
	}
}

func TestComposeRowsChatVolumeBonus(t *testing.T) {
	end := date(2026, 3, 31)
	users := []model.User{{BaseModel: model.BaseModel{ID: 1}, Name: "Ada"}}
	rows := composeRows(users, map[uint]int{1: 100}, nil, nil, map[uint]int{1: chatVolumeFloor}, end)
	if rows[0].BonusPoints != chatVolumeBonus || rows[0].TotalPoints != 130 {
		t.Fatalf("bonus=%d total=%d, want %d/130", rows[0].BonusPoints, rows[0].TotalPoints, chatVolumeBonus)
	}

	rows = composeRows(users, map[uint]int{1: 100}, nil, nil, map[uint]int{1: chatVolumeFloor - 1}, end)
	if rows[0].BonusPoints != 0 {
		t.Fatalf("below-floor volume got bonus %d", rows[0].BonusPoints)
	}
}

func TestClipWindow(t *testing.T) {
	cohortStart := date(2026, 2, 10)
	cohortEnd := date(2026, 6, 10)
	now := date(2026, 4, 20)

	// 月窗口部分落在营期之前：起点裁到营期开始
	winStart, winEnd := monthWindow(2, 2026, time.UTC)
	start, _, ok := clipWindow(winStart, winEnd, cohortStart, cohortEnd, now)
	if !ok || !start.Equal(cohortStart) {
		t.Fatalf("clip start = %v ok=%v, want %v true", start, ok, cohortStart)
	}

	// 当前月：终点裁到 now
	winStart, winEnd = monthWindow(4, 2026, time.UTC)
	_, end, ok := clipWindow(winStart, winEnd, cohortStart, cohortEnd, now)
	if !ok || !end.Equal(now) {
		t.Fatalf("clip end = %v ok=%v, want %v true", end, ok, now)
	}

	// 营期开始之前的月份：完全不相交
	winStart, winEnd = monthWindow(1, 2026, time.UTC)
	if _, _, ok := clipWindow(winStart, winEnd, cohortStart, cohortEnd, now); ok {
		t.Fatal("window before cohort must not intersect")
	}

	// 营期结束之后的月份也不相交
	winStart, winEnd = monthWindow(7, 2026, time.UTC)
	if _, _, ok := clipWindow(winStart, winEnd, cohortStart, cohortEnd, date(2026, 8, 1)); ok {
		t.Fatal("window after cohort must not intersect")
	}
}

func TestMonthWindow(t *testing.T) {
	start, end := monthWindow(2, 2026, time.UTC)
	if !start.Equal(date(2026, 2, 1)) {
		t.Fatalf("start = %v", start)
	}
	if !end.Before(date(2026, 3, 1)) || end.Before(date(2026, 2, 28)) {
		t.Fatalf("end = %v not inside February", end)
	}
}
