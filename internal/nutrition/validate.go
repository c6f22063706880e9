package nutrition

import "strings"

const (
	MinAge = 10
	MaxAge = 120

	MinTimelineMonths = 1
	MaxTimelineMonths = 36

	minLoseTargetKG = 30
	maxGainTargetKG = 200
)

func ParseGender(value string) (Gender, bool) {
	switch g := Gender(strings.ToLower(strings.TrimSpace(value))); g {
	case GenderMale, GenderFemale, GenderOther:
		return g, true
	default:
		return "", false
	}
}

func ParseGoal(value string) (Goal, bool) {
	switch g := Goal(strings.ToLower(strings.TrimSpace(value))); g {
	case GoalLoseWeight, GoalGainWeight, GoalMaintain:
		return g, true
	default:
		return "", false
	}
}

func ValidAge(age int) bool {
	return age >= MinAge && age <= MaxAge
}

func ValidTimeline(months int) bool {
	return months >= MinTimelineMonths && months <= MaxTimelineMonths
}

// ValidTargetWeight checks a target weight against the current weight for
// the direction implied by goal. maintain never has a target.
func ValidTargetWeight(goal Goal, weightKG, targetKG float64) bool {
	switch goal {
	case GoalLoseWeight:
		return targetKG < weightKG && targetKG > minLoseTargetKG
	case GoalGainWeight:
		return targetKG > weightKG && targetKG < maxGainTargetKG
	default:
		return false
	}
}

// NeedsTarget reports whether goal collects a target weight and timeline.
func NeedsTarget(goal Goal) bool {
	return goal == GoalLoseWeight || goal == GoalGainWeight
}
