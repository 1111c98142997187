package service

import (
	"testing"
	"time"
)

func TestMonthsBetween(t *testing.T) {
	cases := []struct {
		name  string
		start time.Time
		end   time.Time
		want  int
	}{
		{"exact single month", date(2026, 1, 1), date(2026, 2, 1), 1},
		{"four months", date(2026, 1, 15), date(2026, 5, 15), 4},
		{"partial month rounds down", date(2026, 1, 20), date(2026, 3, 10), 1},
		{"under one month clamps to one", date(2026, 1, 1), date(2026, 1, 20), 1},
		{"across year boundary", date(2025, 11, 1), date(2026, 2, 1), 3},
	}
	for _, tc := range cases {
		if got := MonthsBetween(tc.start, tc.end); got != tc.want {
			t.Errorf("%s: MonthsBetween = %d, want %d", tc.name, got, tc.want)
		}
	}
}

func TestDurationTable(t *testing.T) {
	cases := []struct {
		months     int
		wantCap    int
		wantTarget int
	}{
		{1, 10000, 10000},
		{2, 15000, 25000},
		{3, 18000, 50000},
		{4, 20000, 80000},
		{5, 23000, 110000},
		{6, 20000, 120000},
		{12, 20000, 120000},
	}
	for _, tc := range cases {
		if got := MonthlyCapForMonths(tc.months); got != tc.wantCap {
			t.Errorf("MonthlyCapForMonths(%d) = %d, want %d", tc.months, got, tc.wantCap)
		}
		if got := TotalTargetForMonths(tc.months); got != tc.wantTarget {
			t.Errorf("TotalTargetForMonths(%d) = %d, want %d", tc.months, got, tc.wantTarget)
		}
	}
}

func TestScaledLeaderboardThreshold(t *testing.T) {
	// 1 个月营期（总目标 10000）的最低档
	if got := ScaledLeaderboardThreshold("Point Starter", 10000, 100); got != 13 {
		t.Errorf("Point Starter @10000 = %d, want 13", got)
	}
	// 4 个月营期（总目标 80000）
	if got := ScaledLeaderboardThreshold("Point Starter", 80000, 100); got != 100 {
		t.Errorf("Point Starter @80000 = %d, want 100", got)
	}
	if got := ScaledLeaderboardThreshold("Point Titan", 80000, 72000); got != 72000 {
		t.Errorf("Point Titan @80000 = %d, want 72000", got)
	}
	// 未命名的成就使用兜底阈值
	if got := ScaledLeaderboardThreshold("First Steps", 80000, 1); got != 1 {
		t.Errorf("fallback = %d, want 1", got)
	}
}

func TestThresholdsMonotonic(t *testing.T) {
	names := []string{
		"Point Starter", "Point Gatherer", "Point Collector", "Point Achiever",
		"Point Builder", "Point Accumulator", "Point Champion", "Point Master",
		"Point Legend", "Point Titan",
	}
	prev := 0
	for _, name := range names {
		got := ScaledLeaderboardThreshold(name, 120000, 0)
		if got <= prev {
			t.Fatalf("%s threshold %d not greater than previous %d", name, got, prev)
		}
		prev = got
	}
}

func date(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}
