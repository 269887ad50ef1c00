package domain

// DailyGoals holds a user's daily targets
type DailyGoals struct {
	Calories float64 `json:"caloriesTarget"`
	Protein  float64 `json:"proteinTarget"`
	Fat      float64 `json:"fatTarget"`
	Carbs    float64 `json:"carbsTarget"`
}

// DefaultGoals are applied when a user has not set any targets
var DefaultGoals = DailyGoals{Calories: 2000, Protein: 100, Fat: 70, Carbs: 250}

// IsZero reports whether no target is set
func (g DailyGoals) IsZero() bool {
	return g.Calories == 0 && g.Protein == 0 && g.Fat == 0 && g.Carbs == 0
}

// DailyExcess is consumption above target, never negative
type DailyExcess struct {
	ExtraCalories float64 `json:"extraCalories"`
	ExtraProtein  float64 `json:"extraProtein"`
	ExtraFat      float64 `json:"extraFat"`
	ExtraCarbs    float64 `json:"extraCarbs"`
}

// Add returns the field-wise sum
func (e DailyExcess) Add(o DailyExcess) DailyExcess {
	return DailyExcess{
		ExtraCalories: e.ExtraCalories + o.ExtraCalories,
		ExtraProtein:  e.ExtraProtein + o.ExtraProtein,
		ExtraFat:      e.ExtraFat + o.ExtraFat,
		ExtraCarbs:    e.ExtraCarbs + o.ExtraCarbs,
	}
}

// ExcessLevel grades calorie excess
type ExcessLevel string

const (
	ExcessNone     ExcessLevel = "none"
	ExcessLow      ExcessLevel = "low"
	ExcessModerate ExcessLevel = "moderate"
	ExcessHigh     ExcessLevel = "high"
)

// DayStatus is the dashboard status of a day
type DayStatus string

const (
	DayNormal            DayStatus = "normal"
	DayExcess            DayStatus = "excess"
	DaySignificantExcess DayStatus = "significant_excess"
)

// DayExcessPoint is one point of a period series
type DayExcessPoint struct {
	Date   string      `json:"date"`
	Excess DailyExcess `json:"excess"`
	Level  ExcessLevel `json:"level"`
	Status DayStatus   `json:"status"`
}

// PeriodExcess aggregates excess over several days
type PeriodExcess struct {
	Totals               DailyExcess      `json:"totals"`
	Days                 []DayExcessPoint `json:"days"`
	DaysOverLimit        int              `json:"daysOverLimit"`
	AverageExtraCalories float64          `json:"averageExtraCalories"`
}

// SweetFlourBreakdown splits calories of sweet and flour foods and the
// share of the period's excess attributed to them.
type SweetFlourBreakdown struct {
	SweetCalories      float64 `json:"sweetCalories"`
	FlourCalories      float64 `json:"flourCalories"`
	ExtraSweetCalories float64 `json:"extraSweetCalories"`
	ExtraFlourCalories float64 `json:"extraFlourCalories"`
}

// DailyReport is the dashboard view of one day
type DailyReport struct {
	Date   string      `json:"date"`
	Actual Macros      `json:"actual"`
	Goals  DailyGoals  `json:"goals"`
	Excess DailyExcess `json:"excess"`
	Level  ExcessLevel `json:"level"`
	Status DayStatus   `json:"status"`
}

// PeriodReport is the dashboard view of a date range
type PeriodReport struct {
	From       string              `json:"from"`
	To         string              `json:"to"`
	Goals      DailyGoals          `json:"goals"`
	Excess     PeriodExcess        `json:"excess"`
	SweetFlour SweetFlourBreakdown `json:"sweetFlour"`
}
