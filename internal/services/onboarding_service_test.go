package services

import (
	"context"
	"errors"
	"testing"

	"github.com/saeid-a/NutriScanBack/internal/logger"
	"github.com/saeid-a/NutriScanBack/internal/models"
	"github.com/saeid-a/NutriScanBack/internal/onboarding"
	"github.com/saeid-a/NutriScanBack/internal/repository"
)

type memoryOnboardingStore struct {
	states    map[int64]*onboarding.State
	deleted   []int64
	deleteErr error
}

func newMemoryOnboardingStore() *memoryOnboardingStore {
	return &memoryOnboardingStore{states: map[int64]*onboarding.State{}}
}

func (m *memoryOnboardingStore) Load(_ context.Context, userID int64) (*onboarding.State, error) {
	state, ok := m.states[userID]
	if !ok {
		return nil, onboarding.ErrNoSession
	}
	copied := *state
	return &copied, nil
}

func (m *memoryOnboardingStore) Save(_ context.Context, userID int64, state *onboarding.State) error {
	copied := *state
	m.states[userID] = &copied
	return nil
}

func (m *memoryOnboardingStore) Delete(_ context.Context, userID int64) error {
	if m.deleteErr != nil {
		return m.deleteErr
	}
	delete(m.states, userID)
	m.deleted = append(m.deleted, userID)
	return nil
}

type stubOnboardingRepo struct {
	err   error
	calls int
	last  repository.CompleteOnboardingInput
}

func (s *stubOnboardingRepo) CompleteOnboarding(_ context.Context, userID int64, in repository.CompleteOnboardingInput) (*models.Profile, error) {
	s.calls++
	s.last = in
	if s.err != nil {
		return nil, s.err
	}
	calories := in.Plan.DailyCalories
	return &models.Profile{UserID: userID, DailyCalories: &calories, OnboardingComplete: true}, nil
}

func wizardAnswers(goal string) onboarding.Answers {
	return onboarding.Answers{
		Gender:   stringPtr("male"),
		Age:      intPtr(30),
		WeightKG: floatPtr(75),
		HeightCM: floatPtr(175),
		Goal:     stringPtr(goal),
	}
}

func walkToResults(t *testing.T, svc *OnboardingService, userID int64) *onboarding.State {
	t.Helper()
	for i := 0; i < 10; i++ {
		state, err := svc.Next(context.Background(), userID)
		if err != nil {
			t.Fatalf("Next: %v", err)
		}
		if state.Current() == onboarding.StepResults {
			return state
		}
	}
	t.Fatal("never reached results")
	return nil
}

func TestOnboardingServiceStartsFreshSession(t *testing.T) {
	store := newMemoryOnboardingStore()
	svc := NewOnboardingService(store, &stubOnboardingRepo{}, logger.NewNop())

	state, err := svc.State(context.Background(), 1)
	if err != nil {
		t.Fatalf("State: %v", err)
	}
	if state.Current() != onboarding.StepGender {
		t.Fatalf("expected gender step, got %s", state.Current())
	}
	if _, ok := store.states[1]; !ok {
		t.Fatal("expected session to be saved")
	}
}

func TestOnboardingServiceNextBlockedKeepsStep(t *testing.T) {
	store := newMemoryOnboardingStore()
	svc := NewOnboardingService(store, &stubOnboardingRepo{}, logger.NewNop())

	state, err := svc.Next(context.Background(), 1)
	var blocked *onboarding.BlockedError
	if !errors.As(err, &blocked) || blocked.Step != onboarding.StepGender {
		t.Fatalf("expected blocked on gender, got %v", err)
	}
	if state.Index != 0 {
		t.Fatalf("expected index 0, got %d", state.Index)
	}
}

func TestOnboardingServiceCompleteDeletesSession(t *testing.T) {
	store := newMemoryOnboardingStore()
	repo := &stubOnboardingRepo{}
	svc := NewOnboardingService(store, repo, logger.NewNop())
	ctx := context.Background()

	answers := wizardAnswers("lose_weight")
	answers.TargetWeightKG = floatPtr(70)
	answers.TimelineMonths = intPtr(3)
	if _, err := svc.Answer(ctx, 1, answers); err != nil {
		t.Fatalf("Answer: %v", err)
	}
	walkToResults(t, svc, 1)

	profile, err := svc.Complete(ctx, 1)
	if err != nil {
		t.Fatalf("Complete: %v", err)
	}
	if profile == nil || *profile.DailyCalories != 2210 {
		t.Fatalf("expected saved profile with 2210 kcal, got %+v", profile)
	}
	if repo.last.TargetWeightKG == nil || *repo.last.TargetWeightKG != 70 || *repo.last.TimelineMonths != 3 {
		t.Fatalf("expected target to be persisted, got %+v", repo.last)
	}
	if _, ok := store.states[1]; ok {
		t.Fatal("expected session to be removed after completion")
	}
}

func TestOnboardingServiceCompleteFailureKeepsSession(t *testing.T) {
	store := newMemoryOnboardingStore()
	repo := &stubOnboardingRepo{err: errors.New("connection reset")}
	svc := NewOnboardingService(store, repo, logger.NewNop())
	ctx := context.Background()

	if _, err := svc.Answer(ctx, 1, wizardAnswers("maintain")); err != nil {
		t.Fatalf("Answer: %v", err)
	}
	walkToResults(t, svc, 1)

	_, err := svc.Complete(ctx, 1)
	if !errors.Is(err, onboarding.ErrPersistFailed) {
		t.Fatalf("expected ErrPersistFailed, got %v", err)
	}
	state, ok := store.states[1]
	if !ok || state.Current() != onboarding.StepResults || state.Plan == nil {
		t.Fatalf("expected session to stay on results, got %+v", state)
	}

	repo.err = nil
	if _, err := svc.Complete(ctx, 1); err != nil {
		t.Fatalf("retry Complete: %v", err)
	}
	if repo.calls != 2 {
		t.Fatalf("expected two save attempts, got %d", repo.calls)
	}
}

func TestOnboardingServiceCompleteBeforeResults(t *testing.T) {
	svc := NewOnboardingService(newMemoryOnboardingStore(), &stubOnboardingRepo{}, logger.NewNop())

	_, err := svc.Complete(context.Background(), 1)
	if !errors.Is(err, onboarding.ErrNotAtResults) {
		t.Fatalf("expected ErrNotAtResults, got %v", err)
	}
}

func TestOnboardingServiceBackFromResults(t *testing.T) {
	store := newMemoryOnboardingStore()
	svc := NewOnboardingService(store, &stubOnboardingRepo{}, logger.NewNop())
	ctx := context.Background()

	if _, err := svc.Answer(ctx, 1, wizardAnswers("maintain")); err != nil {
		t.Fatalf("Answer: %v", err)
	}
	walkToResults(t, svc, 1)

	state, err := svc.Back(ctx, 1)
	if err != nil {
		t.Fatalf("Back: %v", err)
	}
	if state.Current() != onboarding.StepGoal || state.Plan != nil {
		t.Fatalf("expected goal step without plan, got %+v", state)
	}
	if state.Profile.WeightKG != 75 {
		t.Fatal("expected answers to survive Back")
	}
}

func TestOnboardingServiceSubmit(t *testing.T) {
	repo := &stubOnboardingRepo{}
	svc := NewOnboardingService(newMemoryOnboardingStore(), repo, logger.NewNop())

	profile, state, err := svc.Submit(context.Background(), 1, wizardAnswers("maintain"))
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if profile == nil || state.Plan == nil || state.Plan.DailyCalories != 2633 {
		t.Fatalf("unexpected result %+v %+v", profile, state)
	}
	if repo.last.TargetWeightKG != nil {
		t.Fatal("maintain should not persist a target")
	}

	answers := wizardAnswers("gain_weight")
	answers.TargetWeightKG = floatPtr(70)
	answers.TimelineMonths = intPtr(6)
	_, state, err = svc.Submit(context.Background(), 1, answers)
	var blocked *onboarding.BlockedError
	if !errors.As(err, &blocked) || blocked.Step != onboarding.StepTargetWeight {
		t.Fatalf("expected target weight to block, got %v", err)
	}
	if state.Current() != onboarding.StepTargetWeight {
		t.Fatalf("expected state on target_weight, got %s", state.Current())
	}
}

func TestOnboardingServiceAnswerRewindsPassedStep(t *testing.T) {
	ctx := context.Background()
	store := newMemoryOnboardingStore()
	svc := NewOnboardingService(store, &stubOnboardingRepo{}, logger.NewNop())

	if _, err := svc.Answer(ctx, 1, wizardAnswers("maintain")); err != nil {
		t.Fatalf("Answer: %v", err)
	}
	for i := 0; i < 4; i++ {
		if _, err := svc.Next(ctx, 1); err != nil {
			t.Fatalf("Next: %v", err)
		}
	}

	state, err := svc.Answer(ctx, 1, onboarding.Answers{Age: intPtr(500)})
	if err != nil {
		t.Fatalf("Answer: %v", err)
	}
	if state.Current() != onboarding.StepAge {
		t.Fatalf("expected rewind to age, got %s", state.Current())
	}
	var blocked *onboarding.BlockedError
	if _, err := svc.Next(ctx, 1); !errors.As(err, &blocked) || blocked.Step != onboarding.StepAge {
		t.Fatalf("expected age to block, got %v", err)
	}
}

func TestOnboardingServiceCompleteKeepsSessionWhenDeleteFails(t *testing.T) {
	ctx := context.Background()
	store := newMemoryOnboardingStore()
	store.deleteErr = errors.New("redis down")
	repo := &stubOnboardingRepo{}
	svc := NewOnboardingService(store, repo, logger.NewNop())

	if _, err := svc.Answer(ctx, 1, wizardAnswers("maintain")); err != nil {
		t.Fatalf("Answer: %v", err)
	}
	walkToResults(t, svc, 1)

	for i := 1; i <= 2; i++ {
		profile, err := svc.Complete(ctx, 1)
		if err != nil {
			t.Fatalf("Complete %d: %v", i, err)
		}
		if profile == nil || !profile.OnboardingComplete {
			t.Fatalf("Complete %d: unexpected profile %+v", i, profile)
		}
	}
	if repo.calls != 2 || repo.last.Plan.DailyCalories != 2633 {
		t.Fatalf("expected the same plan written twice, got %d calls %+v", repo.calls, repo.last.Plan)
	}
	if state, ok := store.states[1]; !ok || state.Current() != onboarding.StepResults {
		t.Fatal("expected the session to remain on results")
	}
}
