package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/saeid-a/NutriScanBack/internal/models"
	"github.com/saeid-a/NutriScanBack/internal/nutrition"
	"github.com/saeid-a/NutriScanBack/internal/repository"
)

type ProfileStore interface {
	GetByUserID(ctx context.Context, userID int64) (*models.Profile, error)
	UpdatePartial(ctx context.Context, userID int64, in repository.UpdateProfileInput) (*models.Profile, error)
}

type ProfileService struct {
	profileRepo ProfileStore
}

func NewProfileService(profileRepo ProfileStore) *ProfileService {
	return &ProfileService{profileRepo: profileRepo}
}

func (s *ProfileService) GetProfile(ctx context.Context, userID int64) (*models.Profile, error) {
	profile, err := s.profileRepo.GetByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return profile, nil
}

// UpdateProfile applies a partial update. When a field the calculator
// consumes changes and the resulting profile is complete, the stored plan
// is recomputed in the same statement.
func (s *ProfileService) UpdateProfile(ctx context.Context, userID int64, in repository.UpdateProfileInput) (*models.Profile, error) {
	current, err := s.GetProfile(ctx, userID)
	if err != nil {
		return nil, err
	}

	merged := *current
	if in.Age != nil {
		merged.Age = in.Age
	}
	if in.Gender != nil {
		merged.Gender = in.Gender
	}
	if in.HeightCM != nil {
		merged.HeightCM = in.HeightCM
	}
	if in.WeightKG != nil {
		merged.WeightKG = in.WeightKG
	}
	if in.Goal != nil {
		merged.Goal = in.Goal
	}
	if in.TargetWeightKG != nil {
		merged.TargetWeightKG = in.TargetWeightKG
	}
	if in.TimelineMonths != nil {
		merged.TimelineMonths = in.TimelineMonths
	}

	biometrics := merged.Biometrics()
	if !nutrition.NeedsTarget(biometrics.Goal) {
		if in.TargetWeightKG != nil || in.TimelineMonths != nil {
			return nil, fmt.Errorf("%w: target_weight_kg and timeline_months require a lose_weight or gain_weight goal", ErrInvalidInput)
		}
		if merged.TargetWeightKG != nil || merged.TimelineMonths != nil {
			in.ClearTarget = true
			merged.TargetWeightKG = nil
			merged.TimelineMonths = nil
		}
	}
	if target := merged.GoalTarget(); target != nil && biometrics.WeightKG > 0 {
		if !nutrition.ValidTargetWeight(biometrics.Goal, biometrics.WeightKG, target.TargetWeightKG) {
			return nil, fmt.Errorf("%w: target_weight_kg does not match the goal for the current weight", ErrInvalidInput)
		}
	}

	if biometricsChanged(in) {
		if plan, ok := nutrition.ComputePlan(biometrics, merged.GoalTarget()); ok {
			in.Plan = &plan
		}
	}

	return s.profileRepo.UpdatePartial(ctx, userID, in)
}

func biometricsChanged(in repository.UpdateProfileInput) bool {
	return in.Age != nil || in.Gender != nil || in.HeightCM != nil || in.WeightKG != nil ||
		in.Goal != nil || in.TargetWeightKG != nil || in.TimelineMonths != nil || in.ClearTarget
}
