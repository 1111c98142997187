package service

import (
	"encoding/json"

	"fellowship_backend/internal/model"
)

// StatKey 成就判定可引用的统计项，评估时按此枚举取值，
// 目录里出现未知键只会让对应成就判定失败，不影响整轮评估
type StatKey string

const (
	StatResourcesCompleted  StatKey = "resources_completed"
	StatQuizzesPassed       StatKey = "quizzes_passed"
	StatPerfectQuizzes      StatKey = "perfect_quizzes"
	StatPerfectQuizLegacy   StatKey = "perfect_quiz" // 历史布尔标记：至少一次满分测验
	StatDiscussionsPosted   StatKey = "discussions_posted"
	StatCommentsPosted      StatKey = "comments_posted"
	StatLiveQuizzesJoined   StatKey = "live_quizzes_joined"
	StatLiveQuizTop3        StatKey = "live_quiz_top3"
	StatQualityDiscussions  StatKey = "quality_discussions"
	StatCohortPoints        StatKey = "cohort_points" // 阈值会按营期总目标缩放
	StatMonthlyCorePct      StatKey = "monthly_core_pct"
	StatOptionalSessionDone StatKey = "optional_session_done"
	StatActivityStreakDays  StatKey = "activity_streak_days"
	StatMonthlyRank         StatKey = "monthly_rank" // 仅月度归档时评定
)

type catalogEntry struct {
	Name        string
	Description string
	Category    model.AchievementCategory
	Icon        string
	BonusPoints int
	Criteria    map[StatKey]int
}

// 固定成就目录。进程启动时按 Name 同步进库：缺失则创建，已存在则就地更新。
var achievementCatalog = []catalogEntry{
	// 积分里程碑，阈值为兜底值，实际判定按营期总目标缩放
	{"Point Starter", "获得首批积分", model.CategoryMilestone, "icons/point-starter.png", 50, map[StatKey]int{StatCohortPoints: 100}},
	{"Point Gatherer", "积分渐入佳境", model.CategoryMilestone, "icons/point-gatherer.png", 50, map[StatKey]int{StatCohortPoints: 400}},
	{"Point Collector", "稳定收获积分", model.CategoryMilestone, "icons/point-collector.png", 100, map[StatKey]int{StatCohortPoints: 1000}},
	{"Point Achiever", "积分小有所成", model.CategoryMilestone, "icons/point-achiever.png", 100, map[StatKey]int{StatCohortPoints: 2000}},
	{"Point Builder", "积分持续积累", model.CategoryMilestone, "icons/point-builder.png", 150, map[StatKey]int{StatCohortPoints: 4000}},
	{"Point Accumulator", "积分突破一成", model.CategoryMilestone, "icons/point-accumulator.png", 150, map[StatKey]int{StatCohortPoints: 8000}},
	{"Point Champion", "积分达成四分之一", model.CategoryMilestone, "icons/point-champion.png", 200, map[StatKey]int{StatCohortPoints: 20000}},
	{"Point Master", "积分逼近半程", model.CategoryMilestone, "icons/point-master.png", 250, map[StatKey]int{StatCohortPoints: 32000}},
	{"Point Legend", "积分超过六成", model.CategoryMilestone, "icons/point-legend.png", 300, map[StatKey]int{StatCohortPoints: 48000}},
	{"Point Titan", "积分逼近总目标", model.CategoryMilestone, "icons/point-titan.png", 500, map[StatKey]int{StatCohortPoints: 72000}},

	// 学习里程碑
	{"First Steps", "完成第一份学习资源", model.CategoryMilestone, "icons/first-steps.png", 20, map[StatKey]int{StatResourcesCompleted: 1}},
	{"Dedicated Learner", "完成 10 份学习资源", model.CategoryMilestone, "icons/dedicated-learner.png", 100, map[StatKey]int{StatResourcesCompleted: 10}},
	{"Knowledge Seeker", "完成 25 份学习资源", model.CategoryMilestone, "icons/knowledge-seeker.png", 200, map[StatKey]int{StatResourcesCompleted: 25}},
	{"Quiz Taker", "通过 5 次测验", model.CategoryMilestone, "icons/quiz-taker.png", 100, map[StatKey]int{StatQuizzesPassed: 5}},
	{"Perfectionist", "拿到一次满分测验", model.CategoryMilestone, "icons/perfectionist.png", 150, map[StatKey]int{StatPerfectQuizLegacy: 1}},
	{"Flawless Five", "拿到五次满分测验", model.CategoryMilestone, "icons/flawless-five.png", 300, map[StatKey]int{StatPerfectQuizzes: 5}},
	{"Monthly Devotee", "当月核心资源完成 80%", model.CategoryMilestone, "icons/monthly-devotee.png", 200, map[StatKey]int{StatMonthlyCorePct: 80}},
	{"Extra Miler", "某一课次的选修资源全部完成", model.CategoryMilestone, "icons/extra-miler.png", 150, map[StatKey]int{StatOptionalSessionDone: 1}},

	// 社区
	{"Conversation Starter", "发起第一个讨论", model.CategorySocial, "icons/conversation-starter.png", 30, map[StatKey]int{StatDiscussionsPosted: 1}},
	{"Community Voice", "发起 10 个讨论", model.CategorySocial, "icons/community-voice.png", 150, map[StatKey]int{StatDiscussionsPosted: 10}},
	{"Helpful Peer", "发表 25 条回复", model.CategorySocial, "icons/helpful-peer.png", 150, map[StatKey]int{StatCommentsPosted: 25}},
	{"Thoughtful Contributor", "5 个讨论获得质量认可", model.CategorySocial, "icons/thoughtful-contributor.png", 250, map[StatKey]int{StatQualityDiscussions: 5}},

	// 连续活跃
	{"Week Warrior", "连续活跃 7 天", model.CategoryStreak, "icons/week-warrior.png", 100, map[StatKey]int{StatActivityStreakDays: 7}},
	{"Fortnight Force", "连续活跃 14 天", model.CategoryStreak, "icons/fortnight-force.png", 200, map[StatKey]int{StatActivityStreakDays: 14}},
	{"Monthly Momentum", "连续活跃 28 天", model.CategoryStreak, "icons/monthly-momentum.png", 400, map[StatKey]int{StatActivityStreakDays: 28}},

	// 实时抢答赛
	{"Quiz Rookie", "参加第一场实时抢答赛", model.CategoryMilestone, "icons/quiz-rookie.png", 50, map[StatKey]int{StatLiveQuizzesJoined: 1}},
	{"Quiz Regular", "参加 5 场实时抢答赛", model.CategoryMilestone, "icons/quiz-regular.png", 150, map[StatKey]int{StatLiveQuizzesJoined: 5}},
	{"Podium Finisher", "实时抢答赛拿到 3 次前三", model.CategoryMilestone, "icons/podium-finisher.png", 300, map[StatKey]int{StatLiveQuizTop3: 3}},

	// 名次成就：月度归档时按快照名次评定，日常评估跳过
	{"Monthly Champion", "月度排行榜第一名", model.CategoryLeaderboard, "icons/monthly-champion.png", 500, map[StatKey]int{StatMonthlyRank: 1}},
	{"Top Ten Finisher", "月度排行榜前十名", model.CategoryLeaderboard, "icons/top-ten.png", 200, map[StatKey]int{StatMonthlyRank: 10}},
}

func marshalCriteria(criteria map[StatKey]int) string {
	raw, _ := json.Marshal(criteria)
	return string(raw)
}

func parseCriteria(raw string) (map[StatKey]int, error) {
	criteria := make(map[StatKey]int)
	if err := json.Unmarshal([]byte(raw), &criteria); err != nil {
		return nil, err
	}
	return criteria, nil
}

// isRankCriteria 名次类成就只在归档时处理
func isRankCriteria(criteria map[StatKey]int) bool {
	_, ok := criteria[StatMonthlyRank]
	return ok
}
