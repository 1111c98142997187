package database

import (
	"fellowship_backend/internal/config"
	"fellowship_backend/internal/model"
	"fmt"
	"log"

	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func InitDB(cfg *config.DatabaseConfig) (*gorm.DB, error) {
	dsn := fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?charset=%s&parseTime=%t&loc=Local",
		cfg.User,
		cfg.Password,
		cfg.Host,
		cfg.Port,
		cfg.DBName,
		cfg.Charset,
		cfg.ParseTime,
	)

	db, err := gorm.Open(mysql.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Info),
	})

	if err != nil {
		return nil, err
	}

	log.Println("Database connection established")

	err = db.AutoMigrate(
		&model.User{},
		&model.Cohort{},
		&model.PointGrant{},
		&model.UserPointState{},
		&model.Achievement{},
		&model.UserAchievement{},
		&model.MonthlyLeaderboard{},
		&model.LeaderboardEntry{},
		&model.LiveQuizSession{},
		&model.LiveQuizQuestion{},
		&model.LiveQuizParticipant{},
		&model.LiveQuizAnswer{},
		&model.ChatMessage{},
		&model.Discussion{},
		&model.DiscussionComment{},
		&model.Resource{},
		&model.ResourceCompletion{},
		&model.QuizResult{},
		&model.Notification{},
	)

	if err != nil {
		return nil, err
	}

	log.Println("Database migration completed")

	return db, nil
}
