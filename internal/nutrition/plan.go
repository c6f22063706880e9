package nutrition

import "math"

type Gender string

const (
	GenderMale   Gender = "male"
	GenderFemale Gender = "female"
	GenderOther  Gender = "other"
)

type Goal string

const (
	GoalLoseWeight Goal = "lose_weight"
	GoalGainWeight Goal = "gain_weight"
	GoalMaintain   Goal = "maintain"
)

const (
	activityMultiplier = 1.55

	simpleDeficit = 500
	simpleSurplus = 400

	weeksPerMonth   = 4.33
	kcalPerKgFat    = 7700
	maxDailyDeficit = 1000
	maxDailySurplus = 500

	minCaloriesMale    = 1500
	minCaloriesDefault = 1200

	proteinPerKg   = 1.6
	fatCalorieRate = 0.25
	kcalPerGramFat = 9
	kcalPerGramPC  = 4
)

// Profile is the biometric input to the calculator. A zero field means the
// value has not been collected yet.
type Profile struct {
	Gender   Gender  `json:"gender"`
	Age      int     `json:"age"`
	WeightKG float64 `json:"weight_kg"`
	HeightCM float64 `json:"height_cm"`
	Goal     Goal    `json:"goal"`
}

// Target is the optional weight target used by the timeline policy.
type Target struct {
	TargetWeightKG float64 `json:"target_weight_kg"`
	TimelineMonths int     `json:"timeline_months"`
}

type Plan struct {
	DailyCalories int `json:"daily_calories"`
	DailyProteinG int `json:"daily_protein_g"`
	DailyCarbsG   int `json:"daily_carbs_g"`
	DailyFatG     int `json:"daily_fat_g"`
}

// Feasible reports whether the macro split leaves room for carbohydrates.
// Very low calorie targets combined with a high protein requirement produce
// a negative carb allowance, which is kept as computed.
func (p Plan) Feasible() bool {
	return p.DailyCarbsG >= 0
}

func (p Profile) Complete() bool {
	return p.Gender != "" && p.Age != 0 && p.WeightKG != 0 && p.HeightCM != 0 && p.Goal != ""
}

// BMR uses the Mifflin-St Jeor equation.
func BMR(p Profile) float64 {
	base := 10*p.WeightKG + 6.25*p.HeightCM - 5*float64(p.Age)
	if p.Gender == GenderMale {
		return base + 5
	}
	return base - 161
}

func TDEE(p Profile) float64 {
	return BMR(p) * activityMultiplier
}

// ComputePlan derives the daily calorie and macro targets for a profile.
// The timeline policy applies when target carries both a weight and a
// timeline and the goal is not maintain; otherwise the fixed deficit or
// surplus is used. ok is false when the profile is incomplete.
func ComputePlan(profile Profile, target *Target) (Plan, bool) {
	if !profile.Complete() {
		return Plan{}, false
	}

	calories := dailyCalories(profile, target)

	protein := roundHalfUp(profile.WeightKG * proteinPerKg)
	fat := roundHalfUp(float64(calories) * fatCalorieRate / kcalPerGramFat)
	carbs := roundHalfUp(float64(calories-protein*kcalPerGramPC-fat*kcalPerGramFat) / kcalPerGramPC)

	return Plan{
		DailyCalories: calories,
		DailyProteinG: protein,
		DailyCarbsG:   carbs,
		DailyFatG:     fat,
	}, true
}

func dailyCalories(profile Profile, target *Target) int {
	tdee := TDEE(profile)

	if profile.Goal == GoalMaintain {
		return roundHalfUp(tdee)
	}

	if target == nil || target.TargetWeightKG == 0 || target.TimelineMonths == 0 {
		switch profile.Goal {
		case GoalLoseWeight:
			return roundHalfUp(tdee - simpleDeficit)
		case GoalGainWeight:
			return roundHalfUp(tdee + simpleSurplus)
		default:
			return roundHalfUp(tdee)
		}
	}

	adjustment := timelineAdjustment(profile.WeightKG, *target)

	switch profile.Goal {
	case GoalLoseWeight:
		if adjustment > maxDailyDeficit {
			adjustment = maxDailyDeficit
		}
		calories := roundHalfUp(tdee - float64(adjustment))
		if floor := minimumCalories(profile.Gender); calories < floor {
			return floor
		}
		return calories
	case GoalGainWeight:
		if adjustment > maxDailySurplus {
			adjustment = maxDailySurplus
		}
		return roundHalfUp(tdee + float64(adjustment))
	default:
		return roundHalfUp(tdee)
	}
}

// timelineAdjustment is the daily kcal change needed to move weightKG to the
// target within the timeline, before any cap is applied.
func timelineAdjustment(weightKG float64, target Target) int {
	difference := math.Abs(weightKG - target.TargetWeightKG)
	weeks := float64(target.TimelineMonths) * weeksPerMonth
	weeklyChange := difference / weeks
	return roundHalfUp(weeklyChange * kcalPerKgFat / 7)
}

func minimumCalories(g Gender) int {
	if g == GenderMale {
		return minCaloriesMale
	}
	return minCaloriesDefault
}

func roundHalfUp(x float64) int {
	return int(math.Floor(x + 0.5))
}
