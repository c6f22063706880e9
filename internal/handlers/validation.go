package handlers

import (
	"fmt"
	"strings"
	"time"
	_ "time/tzdata"

	"github.com/saeid-a/NutriScanBack/internal/models"
	"github.com/saeid-a/NutriScanBack/internal/nutrition"
)

const maxFullNameLength = 100

func validateFullName(name string) string {
	if len(strings.TrimSpace(name)) > maxFullNameLength {
		return fmt.Sprintf("full_name must be at most %d characters", maxFullNameLength)
	}
	return ""
}

func validateProfileUpdateRequest(req updateProfileRequest) string {
	if req.FullName != nil {
		if strings.TrimSpace(*req.FullName) == "" {
			return "full_name must not be empty"
		}
		if msg := validateFullName(*req.FullName); msg != "" {
			return msg
		}
	}
	if req.Age != nil && !nutrition.ValidAge(*req.Age) {
		return fmt.Sprintf("age must be between %d and %d", nutrition.MinAge, nutrition.MaxAge)
	}
	if req.Gender != nil {
		if err := validateGender(*req.Gender); err != "" {
			return err
		}
	}
	if req.HeightCM != nil && *req.HeightCM <= 0 {
		return "height_cm must be greater than 0"
	}
	if req.WeightKG != nil && *req.WeightKG <= 0 {
		return "weight_kg must be greater than 0"
	}
	if req.Goal != nil {
		if err := validateGoal(*req.Goal); err != "" {
			return err
		}
	}
	if req.TargetWeightKG != nil && *req.TargetWeightKG <= 0 {
		return "target_weight_kg must be greater than 0"
	}
	if req.TimelineMonths != nil && !nutrition.ValidTimeline(*req.TimelineMonths) {
		return fmt.Sprintf("timeline_months must be between %d and %d", nutrition.MinTimelineMonths, nutrition.MaxTimelineMonths)
	}
	return ""
}

func validateFoodLogRequest(req createFoodLogRequest) string {
	if strings.TrimSpace(req.FoodName) == "" {
		return "food_name is required"
	}
	if err := validateMealType(req.MealType); err != "" {
		return err
	}
	nutrients := []struct {
		name  string
		value *float64
	}{
		{"calories", req.Calories},
		{"protein_g", req.ProteinG},
		{"carbs_g", req.CarbsG},
		{"fat_g", req.FatG},
		{"fiber_g", req.FiberG},
	}
	for _, n := range nutrients {
		if n.value != nil && *n.value < 0 {
			return n.name + " must be 0 or greater"
		}
	}
	return ""
}

func validateGender(gender string) string {
	if _, ok := nutrition.ParseGender(gender); !ok {
		return "gender must be one of: male, female, other"
	}
	return ""
}

func validateGoal(goal string) string {
	if _, ok := nutrition.ParseGoal(goal); !ok {
		return "goal must be one of: lose_weight, gain_weight, maintain"
	}
	return ""
}

func validateMealType(mealType string) string {
	for _, m := range models.MealTypes {
		if mealType == m {
			return ""
		}
	}
	return "meal_type must be one of: " + strings.Join(models.MealTypes, ", ")
}

// parseDay resolves the start of a calendar day. date defaults to today and
// tz to UTC.
func parseDay(date, tz string, now time.Time) (time.Time, error) {
	loc := time.UTC
	if tz != "" {
		l, err := time.LoadLocation(tz)
		if err != nil {
			return time.Time{}, fmt.Errorf("tz must be an IANA time zone name")
		}
		loc = l
	}
	if date == "" {
		y, m, d := now.In(loc).Date()
		return time.Date(y, m, d, 0, 0, 0, 0, loc), nil
	}
	day, err := time.ParseInLocation("2006-01-02", date, loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("date must be formatted as YYYY-MM-DD")
	}
	return day, nil
}
