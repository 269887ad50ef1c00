package gormstore

import (
	"encoding/json"
	"time"

	"github.com/nutridiary/backend/internal/domain"
)

// diaryEntryModel is one diary row. The food snapshot is kept as JSON.
type diaryEntryModel struct {
	ID           string  `gorm:"primaryKey;type:varchar(64)"`
	OwnerID      string  `gorm:"type:varchar(128);not null;index:idx_diary_owner_date,priority:1"`
	Date         string  `gorm:"type:varchar(10);not null;index:idx_diary_owner_date,priority:2"`
	MealSlot     string  `gorm:"type:varchar(16);not null"`
	FoodID       string  `gorm:"type:varchar(64);not null"`
	FoodSnapshot string  `gorm:"type:text;not null"`
	Amount       float64 `gorm:"not null;default:0"`
	Unit         string  `gorm:"type:varchar(16)"`
	WeightGrams  float64 `gorm:"not null;default:0"`
	Calories     float64 `gorm:"not null;default:0"`
	Protein      float64 `gorm:"not null;default:0"`
	Fat          float64 `gorm:"not null;default:0"`
	Carbs        float64 `gorm:"not null;default:0"`
	Note         string  `gorm:"type:text"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

func (diaryEntryModel) TableName() string { return "diary_entries" }

// dailyGoalModel holds one owner's targets
type dailyGoalModel struct {
	OwnerID   string  `gorm:"primaryKey;type:varchar(128)"`
	Calories  float64 `gorm:"not null;default:0"`
	Protein   float64 `gorm:"not null;default:0"`
	Fat       float64 `gorm:"not null;default:0"`
	Carbs     float64 `gorm:"not null;default:0"`
	UpdatedAt time.Time
}

func (dailyGoalModel) TableName() string { return "daily_goals" }

func toEntryModel(e domain.DiaryEntry) (diaryEntryModel, error) {
	snapshot, err := json.Marshal(e.Food)
	if err != nil {
		return diaryEntryModel{}, err
	}
	return diaryEntryModel{
		ID:           e.ID,
		OwnerID:      e.OwnerID,
		Date:         e.Date,
		MealSlot:     string(e.MealSlot),
		FoodID:       e.FoodID,
		FoodSnapshot: string(snapshot),
		Amount:       e.Amount,
		Unit:         e.Unit,
		WeightGrams:  e.WeightGrams,
		Calories:     e.Macros.Calories,
		Protein:      e.Macros.Protein,
		Fat:          e.Macros.Fat,
		Carbs:        e.Macros.Carbs,
		Note:         e.Note,
		CreatedAt:    e.CreatedAt,
		UpdatedAt:    e.UpdatedAt,
	}, nil
}

func (m diaryEntryModel) toDomain() (domain.DiaryEntry, error) {
	var food domain.FoodItem
	if err := json.Unmarshal([]byte(m.FoodSnapshot), &food); err != nil {
		return domain.DiaryEntry{}, err
	}
	return domain.DiaryEntry{
		ID:          m.ID,
		OwnerID:     m.OwnerID,
		Date:        m.Date,
		MealSlot:    domain.MealSlot(m.MealSlot),
		FoodID:      m.FoodID,
		Food:        food,
		Amount:      m.Amount,
		Unit:        m.Unit,
		WeightGrams: m.WeightGrams,
		Macros:      domain.Macros{Calories: m.Calories, Protein: m.Protein, Fat: m.Fat, Carbs: m.Carbs},
		Note:        m.Note,
		CreatedAt:   m.CreatedAt,
		UpdatedAt:   m.UpdatedAt,
	}, nil
}
