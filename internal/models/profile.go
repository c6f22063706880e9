package models

import (
	"time"

	"github.com/saeid-a/NutriScanBack/internal/nutrition"
)

type Profile struct {
	ID                 int64      `json:"id"`
	UserID             int64      `json:"user_id"`
	FullName           *string    `json:"full_name"`
	Age                *int       `json:"age"`
	Gender             *string    `json:"gender"`
	HeightCM           *float64   `json:"height_cm"`
	WeightKG           *float64   `json:"weight_kg"`
	Goal               *string    `json:"goal"`
	TargetWeightKG     *float64   `json:"target_weight_kg"`
	TimelineMonths     *int       `json:"timeline_months"`
	DailyCalories      *int       `json:"daily_calories"`
	DailyProteinG      *int       `json:"daily_protein_g"`
	DailyCarbsG        *int       `json:"daily_carbs_g"`
	DailyFatG          *int       `json:"daily_fat_g"`
	OnboardingComplete bool       `json:"onboarding_complete"`
	IsSubscribed       bool       `json:"is_subscribed"`
	SubscriptionEndsAt *time.Time `json:"subscription_ends_at"`
	CreatedAt          time.Time  `json:"created_at"`
	UpdatedAt          time.Time  `json:"updated_at"`
}

// Biometrics converts the nullable columns to calculator input. NULL maps
// to the zero value, which the calculator treats as missing.
func (p *Profile) Biometrics() nutrition.Profile {
	var out nutrition.Profile
	if p.Gender != nil {
		out.Gender = nutrition.Gender(*p.Gender)
	}
	if p.Age != nil {
		out.Age = *p.Age
	}
	if p.WeightKG != nil {
		out.WeightKG = *p.WeightKG
	}
	if p.HeightCM != nil {
		out.HeightCM = *p.HeightCM
	}
	if p.Goal != nil {
		out.Goal = nutrition.Goal(*p.Goal)
	}
	return out
}

func (p *Profile) GoalTarget() *nutrition.Target {
	if p.TargetWeightKG == nil || p.TimelineMonths == nil {
		return nil
	}
	return &nutrition.Target{TargetWeightKG: *p.TargetWeightKG, TimelineMonths: *p.TimelineMonths}
}

// Plan returns the stored plan. ok is false until all four values are set.
func (p *Profile) Plan() (nutrition.Plan, bool) {
	if p.DailyCalories == nil || p.DailyProteinG == nil || p.DailyCarbsG == nil || p.DailyFatG == nil {
		return nutrition.Plan{}, false
	}
	return nutrition.Plan{
		DailyCalories: *p.DailyCalories,
		DailyProteinG: *p.DailyProteinG,
		DailyCarbsG:   *p.DailyCarbsG,
		DailyFatG:     *p.DailyFatG,
	}, true
}

// SubscriptionActive is true only while subscription_ends_at lies after now.
func (p *Profile) SubscriptionActive(now time.Time) bool {
	return p.IsSubscribed && p.SubscriptionEndsAt != nil && p.SubscriptionEndsAt.After(now)
}
