package services

import (
	"context"
	"errors"

	"github.com/saeid-a/NutriScanBack/internal/logger"
	"github.com/saeid-a/NutriScanBack/internal/models"
	"github.com/saeid-a/NutriScanBack/internal/onboarding"
	"github.com/saeid-a/NutriScanBack/internal/repository"
)

type onboardingProfileStore interface {
	CompleteOnboarding(ctx context.Context, userID int64, in repository.CompleteOnboardingInput) (*models.Profile, error)
}

// OnboardingService drives one user's wizard, keeping the state in the
// session store between requests.
type OnboardingService struct {
	store       onboarding.Store
	profileRepo onboardingProfileStore
	log         *logger.Logger
}

func NewOnboardingService(store onboarding.Store, profileRepo onboardingProfileStore, log *logger.Logger) *OnboardingService {
	return &OnboardingService{
		store:       store,
		profileRepo: profileRepo,
		log:         log.With("service", "OnboardingService"),
	}
}

// profileSaver adapts the profile repository to onboarding.ProfileSaver and
// keeps the written row.
type profileSaver struct {
	repo  onboardingProfileStore
	saved *models.Profile
}

func (p *profileSaver) SaveOnboarding(ctx context.Context, userID int64, result onboarding.Result) error {
	in := repository.CompleteOnboardingInput{Profile: result.Profile, Plan: result.Plan}
	if result.Target != nil {
		in.TargetWeightKG = &result.Target.TargetWeightKG
		in.TimelineMonths = &result.Target.TimelineMonths
	}
	profile, err := p.repo.CompleteOnboarding(ctx, userID, in)
	if err != nil {
		return err
	}
	p.saved = profile
	return nil
}

func (s *OnboardingService) load(ctx context.Context, userID int64) (*onboarding.State, error) {
	state, err := s.store.Load(ctx, userID)
	if errors.Is(err, onboarding.ErrNoSession) {
		return onboarding.New(), nil
	}
	return state, err
}

func (s *OnboardingService) State(ctx context.Context, userID int64) (*onboarding.State, error) {
	state, err := s.load(ctx, userID)
	if err != nil {
		return nil, err
	}
	if err := s.store.Save(ctx, userID, state); err != nil {
		return nil, err
	}
	return state, nil
}

func (s *OnboardingService) Answer(ctx context.Context, userID int64, answers onboarding.Answers) (*onboarding.State, error) {
	state, err := s.load(ctx, userID)
	if err != nil {
		return nil, err
	}
	if err := state.Apply(answers); err != nil {
		return state, err
	}
	if err := s.store.Save(ctx, userID, state); err != nil {
		return nil, err
	}
	return state, nil
}

// Next returns the unchanged state together with a *onboarding.BlockedError
// when the current step's guard fails.
func (s *OnboardingService) Next(ctx context.Context, userID int64) (*onboarding.State, error) {
	state, err := s.load(ctx, userID)
	if err != nil {
		return nil, err
	}
	if err := state.Next(); err != nil {
		return state, err
	}
	if err := s.store.Save(ctx, userID, state); err != nil {
		return nil, err
	}
	return state, nil
}

func (s *OnboardingService) Back(ctx context.Context, userID int64) (*onboarding.State, error) {
	state, err := s.load(ctx, userID)
	if err != nil {
		return nil, err
	}
	state.Back()
	if err := s.store.Save(ctx, userID, state); err != nil {
		return nil, err
	}
	return state, nil
}

// Complete persists the results step. The session is kept when the write
// fails so the client can retry.
func (s *OnboardingService) Complete(ctx context.Context, userID int64) (*models.Profile, error) {
	state, err := s.load(ctx, userID)
	if err != nil {
		return nil, err
	}
	return s.complete(ctx, userID, state)
}

// Submit runs the whole wizard over one payload and persists the result.
func (s *OnboardingService) Submit(ctx context.Context, userID int64, answers onboarding.Answers) (*models.Profile, *onboarding.State, error) {
	state, err := onboarding.Run(answers)
	if err != nil {
		return nil, state, err
	}
	profile, err := s.complete(ctx, userID, state)
	return profile, state, err
}

func (s *OnboardingService) complete(ctx context.Context, userID int64, state *onboarding.State) (*models.Profile, error) {
	saver := &profileSaver{repo: s.profileRepo}
	if err := state.Complete(ctx, userID, saver); err != nil {
		if errors.Is(err, onboarding.ErrPersistFailed) {
			s.log.Error("onboarding save failed", "user_id", userID, "error", err)
		}
		return nil, err
	}

	// A session that survives here stays on results; a repeated Complete
	// writes the same row again.
	if err := s.store.Delete(ctx, userID); err != nil {
		s.log.Warn("failed to drop onboarding session", "user_id", userID, "error", err)
	}
	s.log.Info("onboarding complete", "user_id", userID, "daily_calories", state.Plan.DailyCalories)
	return saver.saved, nil
}
