package usecase

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/nutridiary/backend/internal/domain"
	"github.com/rs/zerolog/log"
)

// MaxReportDays bounds a period report
const MaxReportDays = 366

// Calorie excess thresholds
const (
	moderateExcessCalories    = 100
	significantExcessCalories = 300
)

// Keywords matched against an entry's category and name. An entry may be
// both sweet and flour ("выпечка").
var (
	sweetKeywords = stems(
		"sweet", "dessert", "candy", "candies", "chocolate", "cake", "cookie", "ice cream", "sugar", "honey",
		"сладк", "десерт", "конфет", "шоколад", "тортик", "пирожн", "печенье", "мороженое", "сахар", "варенье",
		"выпечк").
		withWords("jam", "мед", "меда", "торт", "торта", "торты")
	flourKeywords = stems(
		"bakery", "bread", "flour", "pasta", "pastry", "pancake", "pizza", "dumpling", "croissant",
		"выпечк", "хлеб", "мучн", "мука", "макарон", "булк", "булоч", "пирог", "блин", "пицц", "пельмен", "батон").
		withWords("bun", "buns")
)

// CalculateActualConsumption sums macros over every meal slot of a day.
// Negative or non-finite values contribute zero.
func CalculateActualConsumption(day domain.DayLog) domain.Macros {
	var total domain.Macros
	for _, e := range day.Entries() {
		total = total.Add(sanitizeMacros(e.Macros))
	}
	return total
}

// CalculateDailyExcess returns max(0, actual-target) per macro. With no
// targets at all there is nothing to judge against and the excess is zero.
func CalculateDailyExcess(actual domain.Macros, goals domain.DailyGoals) domain.DailyExcess {
	if goals.IsZero() {
		return domain.DailyExcess{}
	}
	actual = sanitizeMacros(actual)
	return domain.DailyExcess{
		ExtraCalories: excessOver(actual.Calories, goals.Calories),
		ExtraProtein:  excessOver(actual.Protein, goals.Protein),
		ExtraFat:      excessOver(actual.Fat, goals.Fat),
		ExtraCarbs:    excessOver(actual.Carbs, goals.Carbs),
	}
}

// GetExcessLevel grades calorie excess
func GetExcessLevel(extraCalories float64) domain.ExcessLevel {
	switch {
	case !(extraCalories > 0):
		return domain.ExcessNone
	case extraCalories < moderateExcessCalories:
		return domain.ExcessLow
	case extraCalories <= significantExcessCalories:
		return domain.ExcessModerate
	default:
		return domain.ExcessHigh
	}
}

// GetDayStatus maps calorie excess to a dashboard status
func GetDayStatus(extraCalories float64) domain.DayStatus {
	switch {
	case !(extraCalories > 0):
		return domain.DayNormal
	case extraCalories <= significantExcessCalories:
		return domain.DayExcess
	default:
		return domain.DaySignificantExcess
	}
}

// AggregatePeriodExcess pairs days with their excess by index. Extra items in
// the longer slice are ignored.
func AggregatePeriodExcess(days []domain.DayLog, excessList []domain.DailyExcess) domain.PeriodExcess {
	n := len(days)
	if len(excessList) < n {
		n = len(excessList)
	}

	period := domain.PeriodExcess{Days: make([]domain.DayExcessPoint, 0, n)}
	for i := 0; i < n; i++ {
		excess := excessList[i]
		period.Totals = period.Totals.Add(excess)
		if excess.ExtraCalories > 0 {
			period.DaysOverLimit++
		}
		period.Days = append(period.Days, domain.DayExcessPoint{
			Date:   days[i].Date,
			Excess: excess,
			Level:  GetExcessLevel(excess.ExtraCalories),
			Status: GetDayStatus(excess.ExtraCalories),
		})
	}
	if n > 0 {
		period.AverageExtraCalories = round2(period.Totals.ExtraCalories / float64(n))
	}
	return period
}

// CalculateSweetAndFlourCalories totals sweet and flour calories over days and
// attributes each day's calorie excess to them in proportion to their share of
// that day's calories.
func CalculateSweetAndFlourCalories(days []domain.DayLog, goals domain.DailyGoals) domain.SweetFlourBreakdown {
	var out domain.SweetFlourBreakdown
	for _, day := range days {
		var daySweet, dayFlour float64
		for _, e := range day.Entries() {
			calories := sanitizeAmount(e.Macros.Calories)
			if IsSweetFood(&e.Food) {
				daySweet += calories
			}
			if IsFlourFood(&e.Food) {
				dayFlour += calories
			}
		}
		out.SweetCalories += daySweet
		out.FlourCalories += dayFlour

		actual := CalculateActualConsumption(day)
		excess := CalculateDailyExcess(actual, goals)
		if actual.Calories > 0 && excess.ExtraCalories > 0 {
			share := excess.ExtraCalories / actual.Calories
			out.ExtraSweetCalories += daySweet * share
			out.ExtraFlourCalories += dayFlour * share
		}
	}

	out.SweetCalories = round2(out.SweetCalories)
	out.FlourCalories = round2(out.FlourCalories)
	out.ExtraSweetCalories = round2(out.ExtraSweetCalories)
	out.ExtraFlourCalories = round2(out.ExtraFlourCalories)
	return out
}

// IsSweetFood reports whether category or name mentions a sweet keyword
func IsSweetFood(food *domain.FoodItem) bool {
	return containsKeyword(food, sweetKeywords)
}

// IsFlourFood reports whether category or name mentions a flour keyword
func IsFlourFood(food *domain.FoodItem) bool {
	return containsKeyword(food, flourKeywords)
}

func containsKeyword(food *domain.FoodItem, keywords keywordSet) bool {
	return keywords.matchWords(splitWords(food.Category + " " + food.Name + " " + food.NameLocalized))
}

func excessOver(actual, target float64) float64 {
	return round2(math.Max(0, actual-sanitizeAmount(target)))
}

func sanitizeMacros(m domain.Macros) domain.Macros {
	return domain.Macros{
		Calories: sanitizeAmount(m.Calories),
		Protein:  sanitizeAmount(m.Protein),
		Fat:      sanitizeAmount(m.Fat),
		Carbs:    sanitizeAmount(m.Carbs),
	}
}

// GoalsService stores daily goals and builds excess reports from the diary
type GoalsService struct {
	goals domain.GoalsStore
	diary domain.DiaryStore
}

// NewGoalsService creates a new goals service
func NewGoalsService(goals domain.GoalsStore, diary domain.DiaryStore) *GoalsService {
	return &GoalsService{goals: goals, diary: diary}
}

// GetGoals returns the owner's goals or the defaults when none were saved
func (s *GoalsService) GetGoals(ctx context.Context, ownerID string) (domain.DailyGoals, error) {
	goals, ok, err := s.goals.Get(ctx, ownerID)
	if err != nil {
		return domain.DailyGoals{}, fmt.Errorf("load goals: %w", err)
	}
	if !ok {
		return domain.DefaultGoals, nil
	}
	return goals, nil
}

// SaveGoals stores goals; negative or non-finite targets are saved as zero
func (s *GoalsService) SaveGoals(ctx context.Context, ownerID string, goals domain.DailyGoals) (domain.DailyGoals, error) {
	if ownerID == "" {
		return domain.DailyGoals{}, fmt.Errorf("%w: owner id is required", domain.ErrInvalidRequest)
	}
	goals = domain.DailyGoals{
		Calories: round2(sanitizeAmount(goals.Calories)),
		Protein:  round2(sanitizeAmount(goals.Protein)),
		Fat:      round2(sanitizeAmount(goals.Fat)),
		Carbs:    round2(sanitizeAmount(goals.Carbs)),
	}
	if err := s.goals.Save(ctx, ownerID, goals); err != nil {
		return domain.DailyGoals{}, fmt.Errorf("save goals: %w", err)
	}
	log.Info().Str("component", "goals").Str("owner", ownerID).Float64("calories", goals.Calories).
		Msg("goals saved")
	return goals, nil
}

// DailyReport compares one day's consumption with the owner's goals
func (s *GoalsService) DailyReport(ctx context.Context, ownerID, date string) (*domain.DailyReport, error) {
	if _, err := parseDate(date); err != nil {
		return nil, err
	}
	goals, err := s.GetGoals(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	entries, err := s.diary.ListDay(ctx, ownerID, date)
	if err != nil {
		return nil, fmt.Errorf("load diary day: %w", err)
	}

	actual := CalculateActualConsumption(domain.NewDayLog(date, entries))
	excess := CalculateDailyExcess(actual, goals)
	return &domain.DailyReport{
		Date:   date,
		Actual: roundMacros(actual),
		Goals:  goals,
		Excess: excess,
		Level:  GetExcessLevel(excess.ExtraCalories),
		Status: GetDayStatus(excess.ExtraCalories),
	}, nil
}

// PeriodReport aggregates excess for every day in [from, to], including days
// without entries.
func (s *GoalsService) PeriodReport(ctx context.Context, ownerID, from, to string) (*domain.PeriodReport, error) {
	start, err := parseDate(from)
	if err != nil {
		return nil, err
	}
	end, err := parseDate(to)
	if err != nil {
		return nil, err
	}
	if end.Before(start) {
		return nil, fmt.Errorf("%w: from is after to", domain.ErrInvalidRequest)
	}
	if span := int(end.Sub(start).Hours()/24) + 1; span > MaxReportDays {
		return nil, fmt.Errorf("%w: period longer than %d days", domain.ErrInvalidRequest, MaxReportDays)
	}

	goals, err := s.GetGoals(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	entries, err := s.diary.ListRange(ctx, ownerID, from, to)
	if err != nil {
		return nil, fmt.Errorf("load diary range: %w", err)
	}

	byDate := make(map[string][]domain.DiaryEntry)
	for _, e := range entries {
		byDate[e.Date] = append(byDate[e.Date], e)
	}

	var days []domain.DayLog
	var excessList []domain.DailyExcess
	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		date := d.Format(domain.DateLayout)
		day := domain.NewDayLog(date, byDate[date])
		days = append(days, day)
		excessList = append(excessList, CalculateDailyExcess(CalculateActualConsumption(day), goals))
	}

	return &domain.PeriodReport{
		From:       from,
		To:         to,
		Goals:      goals,
		Excess:     AggregatePeriodExcess(days, excessList),
		SweetFlour: CalculateSweetAndFlourCalories(days, goals),
	}, nil
}

func parseDate(date string) (time.Time, error) {
	t, err := time.Parse(domain.DateLayout, date)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: invalid date %q", domain.ErrInvalidRequest, date)
	}
	return t, nil
}

func roundMacros(m domain.Macros) domain.Macros {
	return domain.Macros{
		Calories: round2(m.Calories),
		Protein:  round2(m.Protein),
		Fat:      round2(m.Fat),
		Carbs:    round2(m.Carbs),
	}
}
