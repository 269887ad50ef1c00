package gormstore

import (
	"context"
	"errors"
	"time"

	"github.com/nutridiary/backend/internal/domain"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GoalsStore is a GoalsStore backed by gorm
type GoalsStore struct {
	db *gorm.DB
}

// NewGoalsStore creates a goals store on db
func NewGoalsStore(db *gorm.DB) *GoalsStore {
	return &GoalsStore{db: db}
}

// Get returns the owner's goals and whether they were ever saved
func (s *GoalsStore) Get(ctx context.Context, ownerID string) (domain.DailyGoals, bool, error) {
	var model dailyGoalModel
	err := s.db.WithContext(ctx).Where("owner_id = ?", ownerID).First(&model).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return domain.DailyGoals{}, false, nil
	}
	if err != nil {
		return domain.DailyGoals{}, false, err
	}
	return domain.DailyGoals{
		Calories: model.Calories,
		Protein:  model.Protein,
		Fat:      model.Fat,
		Carbs:    model.Carbs,
	}, true, nil
}

// Save replaces the owner's goals
func (s *GoalsStore) Save(ctx context.Context, ownerID string, goals domain.DailyGoals) error {
	model := dailyGoalModel{
		OwnerID:   ownerID,
		Calories:  goals.Calories,
		Protein:   goals.Protein,
		Fat:       goals.Fat,
		Carbs:     goals.Carbs,
		UpdatedAt: time.Now(),
	}
	return s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "owner_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"calories", "protein", "fat", "carbs", "updated_at"}),
	}).Create(&model).Error
}
