package repository

import (
	"fellowship_backend/internal/model"
	"time"

	"gorm.io/gorm"
)

type PointRepository struct {
	DB *gorm.DB
}

func NewPointRepository(db *gorm.DB) *PointRepository {
	return &PointRepository{DB: db}
}

// CreateGrantWithState 在同一事务内追加流水并保存聚合状态
func (r *PointRepository) CreateGrantWithState(grant *model.PointGrant, state *model.UserPointState) error {
	return r.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(grant).Error; err != nil {
			return err
		}
		return tx.Save(state).Error
	})
}

// FindOrInitState 读取用户当月状态，不存在时初始化（不落库，由首次发放写入）
func (r *PointRepository) FindOrInitState(userID uint, cap int) (*model.UserPointState, error) {
	var state model.UserPointState
	err := r.DB.Where("user_id = ?", userID).First(&state).Error
	if err == gorm.ErrRecordNotFound {
		return &model.UserPointState{
			UserID:      userID,
			MonthlyCap:  cap,
			LastResetAt: time.Now(),
		}, nil
	}
	if err != nil {
		return nil, err
	}
	return &state, nil
}

func (r *PointRepository) SumForUserInWindow(userID uint, start, end time.Time) (int, error) {
	var total int64
	err := r.DB.Model(&model.PointGrant{}).
		Select("COALESCE(SUM(amount), 0)").
		Where("user_id = ? AND created_at BETWEEN ? AND ?", userID, start, end).
		Scan(&total).Error
	return int(total), err
}

func (r *PointRepository) SumForUserSince(userID uint, since time.Time) (int, error) {
	var total int64
	err := r.DB.Model(&model.PointGrant{}).
		Select("COALESCE(SUM(amount), 0)").
		Where("user_id = ? AND created_at >= ?", userID, since).
		Scan(&total).Error
	return int(total), err
}

type UserAmount struct {
	UserID uint
	Total  int
}

// SumByUserInWindow 窗口内各用户的积分合计
func (r *PointRepository) SumByUserInWindow(start, end time.Time) (map[uint]int, error) {
	var rows []UserAmount
	err := r.DB.Model(&model.PointGrant{}).
		Select("user_id, SUM(amount) AS total").
		Where("created_at BETWEEN ? AND ?", start, end).
		Group("user_id").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	totals := make(map[uint]int, len(rows))
	for _, row := range rows {
		totals[row.UserID] = row.Total
	}
	return totals, nil
}

// SumByUserInWindowOrdered 同上，但按合计降序返回，供归档生成稳定名次
func (r *PointRepository) SumByUserInWindowOrdered(start, end time.Time) ([]UserAmount, error) {
	var rows []UserAmount
	err := r.DB.Model(&model.PointGrant{}).
		Select("user_id, SUM(amount) AS total").
		Where("created_at BETWEEN ? AND ?", start, end).
		Group("user_id").
		Order("total DESC, user_id ASC").
		Scan(&rows).Error
	return rows, err
}

type UserDay struct {
	UserID uint
	Day    time.Time
}

// GrantDaysByUser 窗口内各用户产生过积分流水的日期（去重）
func (r *PointRepository) GrantDaysByUser(start, end time.Time) ([]UserDay, error) {
	var rows []UserDay
	err := r.DB.Model(&model.PointGrant{}).
		Select("user_id, DATE(created_at) AS day").
		Where("created_at BETWEEN ? AND ?", start, end).
		Group("user_id, DATE(created_at)").
		Scan(&rows).Error
	return rows, err
}

// HardResetMonthlyTotals 月度归档的全局硬重置：当月累计改为按流水重算，
// 避免懒惰滚动与归档重置竞争时清掉新月份已发放的积分
func (r *PointRepository) HardResetMonthlyTotals(monthStart, now time.Time) error {
	return r.DB.Exec(`
		UPDATE user_point_states ups
		SET monthly_total = COALESCE((
			SELECT SUM(pg.amount) FROM point_grants pg
			WHERE pg.user_id = ups.user_id
			  AND pg.created_at >= ?
			  AND pg.deleted_at IS NULL
		), 0),
		last_reset_at = ?`, monthStart, now).Error
}
