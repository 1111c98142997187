package service

import (
	"math"
	"time"
)

// 不同营期时长对应的积分经济参数。
// 短营期的月上限高于 总目标/月数，保证积分增速在不同时长下大致一致。
var durationTable = map[int]struct {
	MonthlyCap  int
	TotalTarget int
}{
	1: {10000, 10000},
	2: {15000, 25000},
	3: {18000, 50000},
	4: {20000, 80000},
	5: {23000, 110000},
}

const (
	// 6 个月及以上统一使用固定封顶
	defaultTotalTarget = 120000
	defaultMonthlyCap  = defaultTotalTarget / 6
)

// 里程碑成就阈值占总目标的比例，0.125% 到 90%
var leaderboardThresholdPct = map[string]float64{
	"Point Starter":     0.00125,
	"Point Gatherer":    0.005,
	"Point Collector":   0.0125,
	"Point Achiever":    0.025,
	"Point Builder":     0.05,
	"Point Accumulator": 0.10,
	"Point Champion":    0.25,
	"Point Master":      0.40,
	"Point Legend":      0.60,
	"Point Titan":       0.90,
}

// MonthsBetween 计算起止日期的整月差，最小为 1
func MonthsBetween(start, end time.Time) int {
	months := (end.Year()-start.Year())*12 + int(end.Month()) - int(start.Month())
	if end.Day() < start.Day() {
		months--
	}
	if months < 1 {
		return 1
	}
	return months
}

func MonthlyCapForMonths(months int) int {
	if entry, ok := durationTable[months]; ok {
		return entry.MonthlyCap
	}
	return defaultMonthlyCap
}

func TotalTargetForMonths(months int) int {
	if entry, ok := durationTable[months]; ok {
		return entry.TotalTarget
	}
	return defaultTotalTarget
}

// ScaledLeaderboardThreshold 将十个命名里程碑的阈值按营期总目标等比缩放，
// 未命名的成就返回调用方给定的兜底阈值
func ScaledLeaderboardThreshold(achievementName string, totalTarget, fallback int) int {
	pct, ok := leaderboardThresholdPct[achievementName]
	if !ok {
		return fallback
	}
	return int(math.Round(pct * float64(totalTarget)))
}
