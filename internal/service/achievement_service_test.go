package service

import (
	"testing"
)

func TestEvaluateAchievementConjunctive(t *testing.T) {
	criteria := map[StatKey]int{
		StatResourcesCompleted: 10,
		StatQuizzesPassed:      5,
	}
	stats := map[StatKey]int{
		StatResourcesCompleted: 12,
		StatQuizzesPassed:      5,
	}
	if !evaluateAchievement("Dedicated Learner", criteria, stats, 120000) {
		t.Fatal("all conditions met, expected unlock")
	}

	stats[StatQuizzesPassed] = 4
	if evaluateAchievement("Dedicated Learner", criteria, stats, 120000) {
		t.Fatal("one condition short, must not unlock")
	}
}

func TestEvaluateAchievementMissingStat(t *testing.T) {
	criteria := map[StatKey]int{StatLiveQuizTop3: 3}
	// 快照里没有该统计项：判定失败而不是默认通过
	if evaluateAchievement("Podium Finisher", criteria, map[StatKey]int{}, 120000) {
		t.Fatal("missing stat key must evaluate to false")
	}
}

func TestEvaluateAchievementEmptyCriteria(t *testing.T) {
	stats := map[StatKey]int{StatResourcesCompleted: 100}
	if evaluateAchievement("Broken", map[StatKey]int{}, stats, 120000) {
		t.Fatal("empty criteria must never unlock")
	}
}

func TestEvaluateAchievementScalesCohortPoints(t *testing.T) {
	// Point Starter 兜底阈值 100，在 1 个月营期（总目标 10000）下缩放为 13
	criteria := map[StatKey]int{StatCohortPoints: 100}
	stats := map[StatKey]int{StatCohortPoints: 13}
	if !evaluateAchievement("Point Starter", criteria, stats, 10000) {
		t.Fatal("scaled threshold 13 should be met at 13 points")
	}
	stats[StatCohortPoints] = 12
	if evaluateAchievement("Point Starter", criteria, stats, 10000) {
		t.Fatal("12 points must not meet scaled threshold 13")
	}
}

func TestParseCriteriaRoundTrip(t *testing.T) {
	raw := marshalCriteria(map[StatKey]int{StatActivityStreakDays: 7})
	criteria, err := parseCriteria(raw)
	if err != nil {
		t.Fatalf("parseCriteria failed: %v", err)
	}
	if criteria[StatActivityStreakDays] != 7 {
		t.Fatalf("threshold = %d, want 7", criteria[StatActivityStreakDays])
	}
}

func TestParseCriteriaMalformed(t *testing.T) {
	if _, err := parseCriteria("{not json"); err == nil {
		t.Fatal("malformed criteria must return an error")
	}
}

func TestIsRankCriteria(t *testing.T) {
	if !isRankCriteria(map[StatKey]int{StatMonthlyRank: 1}) {
		t.Fatal("monthly_rank criteria not detected")
	}
	if isRankCriteria(map[StatKey]int{StatCohortPoints: 100}) {
		t.Fatal("points criteria wrongly detected as rank")
	}
}

func TestCatalogCriteriaParseable(t *testing.T) {
	for _, entry := range achievementCatalog {
		raw := marshalCriteria(entry.Criteria)
		criteria, err := parseCriteria(raw)
		if err != nil {
			t.Fatalf("%s: criteria does not round-trip: %v", entry.Name, err)
		}
		if len(criteria) == 0 {
			t.Fatalf("%s: catalog entry has no criteria", entry.Name)
		}
	}
}
