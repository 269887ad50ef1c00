package domain

import "time"

// MealSlot is one of the fixed meals of a day
type MealSlot string

const (
	MealBreakfast MealSlot = "breakfast"
	MealLunch     MealSlot = "lunch"
	MealDinner    MealSlot = "dinner"
	MealSnack     MealSlot = "snack"
)

// MealSlots lists the slots in display order
var MealSlots = []MealSlot{MealBreakfast, MealLunch, MealDinner, MealSnack}

// Valid reports whether s is a known slot
func (s MealSlot) Valid() bool {
	for _, slot := range MealSlots {
		if s == slot {
			return true
		}
	}
	return false
}

// DateLayout is the format of diary dates
const DateLayout = "2006-01-02"

// DiaryEntry is one consumption record. Food is a snapshot taken when the
// entry was written; Macros are not recomputed if the catalog changes later.
type DiaryEntry struct {
	ID          string    `json:"id"`
	OwnerID     string    `json:"ownerId"`
	Date        string    `json:"date"`
	MealSlot    MealSlot  `json:"mealSlot"`
	FoodID      string    `json:"foodId"`
	Food        FoodItem  `json:"food"`
	Amount      float64   `json:"amount"`
	Unit        string    `json:"unit"`
	WeightGrams float64   `json:"weightGrams"`
	Macros      Macros    `json:"macros"`
	Note        string    `json:"note,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// DayLog groups one day's entries by meal slot
type DayLog struct {
	Date  string                    `json:"date"`
	Meals map[MealSlot][]DiaryEntry `json:"meals"`
}

// NewDayLog buckets entries by slot. Entries with unknown slots land in snack.
func NewDayLog(date string, entries []DiaryEntry) DayLog {
	day := DayLog{Date: date, Meals: make(map[MealSlot][]DiaryEntry, len(MealSlots))}
	for _, e := range entries {
		slot := e.MealSlot
		if !slot.Valid() {
			slot = MealSnack
		}
		day.Meals[slot] = append(day.Meals[slot], e)
	}
	return day
}

// Entries returns all entries in slot order
func (d DayLog) Entries() []DiaryEntry {
	var out []DiaryEntry
	for _, slot := range MealSlots {
		out = append(out, d.Meals[slot]...)
	}
	return out
}

// EntryUpdate holds the mutable fields of a diary entry; nil means unchanged
type EntryUpdate struct {
	Amount *float64 `json:"amount,omitempty"`
	Unit   *string  `json:"unit,omitempty"`
	Note   *string  `json:"note,omitempty"`
}

// EntryInput carries a new diary entry as entered by the user
type EntryInput struct {
	MealSlot MealSlot `json:"mealSlot" binding:"required"`
	FoodID   string   `json:"foodId" binding:"required"`
	Amount   float64  `json:"amount"`
	Unit     string   `json:"unit"`
	Note     string   `json:"note,omitempty"`
}
