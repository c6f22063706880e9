package onboarding

import (
	"context"
	"errors"
	"fmt"

	"github.com/saeid-a/NutriScanBack/internal/nutrition"
)

var (
	ErrInvalidAnswer = errors.New("invalid onboarding answer")
	ErrAtResults     = errors.New("answers are locked on the results step")
	ErrNotAtResults  = errors.New("onboarding is not on the results step")
	ErrPersistFailed = errors.New("failed to save onboarding, please retry")
)

// BlockedError is returned when the guard of Step rejects the collected data.
type BlockedError struct {
	Step Step
}

func (e *BlockedError) Error() string {
	return fmt.Sprintf("step %s is incomplete", e.Step)
}

// State is one user's onboarding attempt: a pointer into the goal-dependent
// step sequence plus the draft being collected.
type State struct {
	Index   int               `json:"step_index"`
	Profile nutrition.Profile `json:"profile"`
	Target  nutrition.Target  `json:"target"`
	Plan    *nutrition.Plan   `json:"plan,omitempty"`
}

// Answers carries the fields submitted by the client. Nil fields are left
// untouched.
type Answers struct {
	Gender         *string  `json:"gender"`
	Age            *int     `json:"age"`
	WeightKG       *float64 `json:"weight_kg"`
	HeightCM       *float64 `json:"height_cm"`
	Goal           *string  `json:"goal"`
	TargetWeightKG *float64 `json:"target_weight_kg"`
	TimelineMonths *int     `json:"timeline_months"`
}

// Result is what gets persisted when the user confirms the results step.
type Result struct {
	Profile nutrition.Profile
	Target  *nutrition.Target
	Plan    nutrition.Plan
}

type ProfileSaver interface {
	SaveOnboarding(ctx context.Context, userID int64, result Result) error
}

func New() *State {
	return &State{}
}

func (s *State) Steps() []Step {
	return Sequence(s.Profile.Goal)
}

func (s *State) Current() Step {
	steps := s.Steps()
	if s.Index < 0 || s.Index >= len(steps) {
		return StepResults
	}
	return steps[s.Index]
}

// Apply merges answers into the draft without moving the step pointer
// forward. When an answer changes a step that was already passed, the
// pointer returns to the earliest changed step so its guard runs again.
// A goal change rebuilds the remaining sequence the same way.
func (s *State) Apply(a Answers) error {
	if s.Current() == StepResults {
		return ErrAtResults
	}

	next := s.Profile
	if a.Gender != nil {
		g, ok := nutrition.ParseGender(*a.Gender)
		if !ok {
			return fmt.Errorf("%w: gender", ErrInvalidAnswer)
		}
		next.Gender = g
	}
	if a.Goal != nil {
		g, ok := nutrition.ParseGoal(*a.Goal)
		if !ok {
			return fmt.Errorf("%w: goal", ErrInvalidAnswer)
		}
		next.Goal = g
	}
	if a.Age != nil {
		next.Age = *a.Age
	}
	if a.WeightKG != nil {
		next.WeightKG = *a.WeightKG
	}
	if a.HeightCM != nil {
		next.HeightCM = *a.HeightCM
	}
	nextTarget := s.Target
	if a.TargetWeightKG != nil {
		nextTarget.TargetWeightKG = *a.TargetWeightKG
	}
	if a.TimelineMonths != nil {
		nextTarget.TimelineMonths = *a.TimelineMonths
	}

	var changed []Step
	if next.Gender != s.Profile.Gender {
		changed = append(changed, StepGender)
	}
	if next.Age != s.Profile.Age {
		changed = append(changed, StepAge)
	}
	if next.WeightKG != s.Profile.WeightKG {
		changed = append(changed, StepWeight)
	}
	if next.HeightCM != s.Profile.HeightCM {
		changed = append(changed, StepHeight)
	}
	if next.Goal != s.Profile.Goal {
		changed = append(changed, StepGoal)
	}
	if nextTarget.TargetWeightKG != s.Target.TargetWeightKG {
		changed = append(changed, StepTargetWeight)
	}
	if nextTarget.TimelineMonths != s.Target.TimelineMonths {
		changed = append(changed, StepTimeline)
	}

	steps := Sequence(next.Goal)
	for _, step := range changed {
		if i := indexOf(steps, step); i >= 0 && i < s.Index {
			s.Index = i
		}
	}
	s.Profile = next
	s.Target = nextTarget
	return nil
}

// firstBlocked returns the first step before results whose guard fails.
func (s *State) firstBlocked() (Step, bool) {
	for _, step := range s.Steps() {
		if step == StepResults {
			break
		}
		if !CanAdvance(step, s.Profile, s.Target) {
			return step, true
		}
	}
	return "", false
}

// Next advances one step when the current guard passes. Entering results
// re-checks every earlier guard and then computes the plan from the
// collected draft. A rejected advance leaves the state untouched.
func (s *State) Next() error {
	current := s.Current()
	if current == StepResults {
		return nil
	}
	if !CanAdvance(current, s.Profile, s.Target) {
		return &BlockedError{Step: current}
	}

	s.Index++
	if s.Current() == StepResults {
		if blocked, ok := s.firstBlocked(); ok {
			s.Index--
			return &BlockedError{Step: blocked}
		}
		plan, ok := nutrition.ComputePlan(s.Profile, s.target())
		if !ok {
			s.Index--
			return &BlockedError{Step: current}
		}
		s.Plan = &plan
	}
	return nil
}

// Back moves the pointer one step toward the start. Collected answers are
// kept; only the derived plan is dropped.
func (s *State) Back() {
	if s.Index == 0 {
		return
	}
	if s.Current() == StepResults {
		s.Plan = nil
	}
	s.Index--
}

// Complete persists the draft and plan through saver. On failure the state
// stays on results so the caller can retry without re-entering data.
func (s *State) Complete(ctx context.Context, userID int64, saver ProfileSaver) error {
	if s.Current() != StepResults || s.Plan == nil {
		return ErrNotAtResults
	}
	result := Result{
		Profile: s.Profile,
		Target:  s.target(),
		Plan:    *s.Plan,
	}
	if err := saver.SaveOnboarding(ctx, userID, result); err != nil {
		return fmt.Errorf("%w: %w", ErrPersistFailed, err)
	}
	return nil
}

// target is the goal target when the active sequence collected one.
func (s *State) target() *nutrition.Target {
	if !nutrition.NeedsTarget(s.Profile.Goal) {
		return nil
	}
	t := s.Target
	return &t
}

// Run replays the wizard over a complete set of answers, stopping at the
// first step whose guard fails.
func Run(a Answers) (*State, error) {
	s := New()
	if err := s.Apply(a); err != nil {
		return s, err
	}
	for s.Current() != StepResults {
		if err := s.Next(); err != nil {
			return s, err
		}
	}
	return s, nil
}
