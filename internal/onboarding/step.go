package onboarding

import "github.com/saeid-a/NutriScanBack/internal/nutrition"

type Step string

const (
	StepGender       Step = "gender"
	StepAge          Step = "age"
	StepWeight       Step = "weight"
	StepHeight       Step = "height"
	StepGoal         Step = "goal"
	StepTargetWeight Step = "target_weight"
	StepTimeline     Step = "timeline"
	StepResults      Step = "results"
)

var (
	baseSteps   = []Step{StepGender, StepAge, StepWeight, StepHeight, StepGoal, StepResults}
	targetSteps = []Step{StepGender, StepAge, StepWeight, StepHeight, StepGoal, StepTargetWeight, StepTimeline, StepResults}
)

// Sequence returns the ordered steps for a goal. Goals that collect a
// target weight get the target_weight and timeline steps before results;
// maintain and a not yet chosen goal get the base sequence.
func Sequence(goal nutrition.Goal) []Step {
	src := baseSteps
	if nutrition.NeedsTarget(goal) {
		src = targetSteps
	}
	out := make([]Step, len(src))
	copy(out, src)
	return out
}

func indexOf(steps []Step, step Step) int {
	for i, s := range steps {
		if s == step {
			return i
		}
	}
	return -1
}

// CanAdvance reports whether the data collected so far satisfies the guard
// of step.
func CanAdvance(step Step, profile nutrition.Profile, target nutrition.Target) bool {
	switch step {
	case StepGender:
		return profile.Gender != ""
	case StepAge:
		return nutrition.ValidAge(profile.Age)
	case StepWeight:
		return profile.WeightKG > 0
	case StepHeight:
		return profile.HeightCM > 0
	case StepGoal:
		return profile.Goal != ""
	case StepTargetWeight:
		return nutrition.ValidTargetWeight(profile.Goal, profile.WeightKG, target.TargetWeightKG)
	case StepTimeline:
		return nutrition.ValidTimeline(target.TimelineMonths)
	default:
		return false
	}
}
