package service

import (
	"fellowship_backend/internal/model"
	"fellowship_backend/internal/repository"
	"fellowship_backend/internal/util"

	"gorm.io/gorm"
)

type CohortService struct {
	CohortRepo *repository.CohortRepository
	UserRepo   *repository.UserRepository
}

func NewCohortService(cohortRepo *repository.CohortRepository, userRepo *repository.UserRepository) *CohortService {
	return &CohortService{
		CohortRepo: cohortRepo,
		UserRepo:   userRepo,
	}
}

func (s *CohortService) Create(cohort *model.Cohort) error {
	return s.CohortRepo.Create(cohort)
}

// CohortOverview 营期概览：时长换算出的积分目标与月上限
type CohortOverview struct {
	Cohort       *model.Cohort `json:"cohort"`
	Months       int           `json:"months"`
	TotalTarget  int           `json:"totalTarget"`
	MonthlyCap   int           `json:"monthlyCap"`
	FellowCount  int           `json:"fellowCount"`
}

func (s *CohortService) Overview(cohortID uint) (*CohortOverview, error) {
	cohort, err := s.CohortRepo.FindByID(cohortID)
	if err == gorm.ErrRecordNotFound {
		return nil, util.ErrCohortNotFound
	}
	if err != nil {
		return nil, err
	}

	fellows, err := s.UserRepo.FindFellows(cohortID)
	if err != nil {
		return nil, err
	}

	months := MonthsBetween(cohort.StartDate, cohort.EndDate)
	return &CohortOverview{
		Cohort:      cohort,
		Months:      months,
		TotalTarget: TotalTargetForMonths(months),
		MonthlyCap:  MonthlyCapForMonths(months),
		FellowCount: len(fellows),
	}, nil
}

// AssignUser 把用户编入营期
func (s *CohortService) AssignUser(userID, cohortID uint) error {
	if _, err := s.CohortRepo.FindByID(cohortID); err != nil {
		if err == gorm.ErrRecordNotFound {
			return util.ErrCohortNotFound
		}
		return err
	}
	user, err := s.UserRepo.FindByID(userID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return util.ErrUserNotFound
		}
		return err
	}
	user.CohortID = cohortID
	return s.UserRepo.Update(user)
}
