package repository

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/saeid-a/NutriScanBack/internal/models"
	"github.com/saeid-a/NutriScanBack/internal/nutrition"
)

const profileColumns = `
	id, user_id, full_name, age, gender, height_cm, weight_kg, goal,
	target_weight_kg, timeline_months, daily_calories, daily_protein_g, daily_carbs_g, daily_fat_g,
	onboarding_complete, is_subscribed, subscription_ends_at, created_at, updated_at`

type ProfileRepository struct {
	db DBTX
}

func NewProfileRepository(db DBTX) *ProfileRepository {
	return &ProfileRepository{db: db}
}

func scanProfile(row pgx.Row) (*models.Profile, error) {
	var profile models.Profile
	err := row.Scan(
		&profile.ID,
		&profile.UserID,
		&profile.FullName,
		&profile.Age,
		&profile.Gender,
		&profile.HeightCM,
		&profile.WeightKG,
		&profile.Goal,
		&profile.TargetWeightKG,
		&profile.TimelineMonths,
		&profile.DailyCalories,
		&profile.DailyProteinG,
		&profile.DailyCarbsG,
		&profile.DailyFatG,
		&profile.OnboardingComplete,
		&profile.IsSubscribed,
		&profile.SubscriptionEndsAt,
		&profile.CreatedAt,
		&profile.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &profile, nil
}

func (r *ProfileRepository) CreateEmpty(ctx context.Context, userID int64, fullName *string) error {
	query := `INSERT INTO profiles (user_id, full_name) VALUES ($1, $2)`
	_, err := r.db.Exec(ctx, query, userID, fullName)
	return err
}

func (r *ProfileRepository) GetByUserID(ctx context.Context, userID int64) (*models.Profile, error) {
	query := `SELECT ` + profileColumns + ` FROM profiles WHERE user_id = $1`
	return scanProfile(r.db.QueryRow(ctx, query, userID))
}

// CompleteOnboarding writes the collected answers, the plan and the
// completion flag in one statement.
func (r *ProfileRepository) CompleteOnboarding(ctx context.Context, userID int64, in CompleteOnboardingInput) (*models.Profile, error) {
	query := `
		UPDATE profiles
		SET age = $1,
			gender = $2,
			height_cm = $3,
			weight_kg = $4,
			goal = $5,
			target_weight_kg = $6,
			timeline_months = $7,
			daily_calories = $8,
			daily_protein_g = $9,
			daily_carbs_g = $10,
			daily_fat_g = $11,
			onboarding_complete = TRUE,
			updated_at = NOW()
		WHERE user_id = $12
		RETURNING ` + profileColumns
	return scanProfile(r.db.QueryRow(ctx, query,
		in.Profile.Age,
		string(in.Profile.Gender),
		in.Profile.HeightCM,
		in.Profile.WeightKG,
		string(in.Profile.Goal),
		in.TargetWeightKG,
		in.TimelineMonths,
		in.Plan.DailyCalories,
		in.Plan.DailyProteinG,
		in.Plan.DailyCarbsG,
		in.Plan.DailyFatG,
		userID,
	))
}

// UpdatePartial applies the non-nil fields. Plan is written only when set,
// ClearTarget resets target_weight_kg and timeline_months to NULL.
func (r *ProfileRepository) UpdatePartial(ctx context.Context, userID int64, in UpdateProfileInput) (*models.Profile, error) {
	var calories, protein, carbs, fat *int
	if in.Plan != nil {
		calories = &in.Plan.DailyCalories
		protein = &in.Plan.DailyProteinG
		carbs = &in.Plan.DailyCarbsG
		fat = &in.Plan.DailyFatG
	}

	query := `
		UPDATE profiles
		SET full_name = COALESCE($1, full_name),
			age = COALESCE($2, age),
			gender = COALESCE($3, gender),
			height_cm = COALESCE($4, height_cm),
			weight_kg = COALESCE($5, weight_kg),
			goal = COALESCE($6, goal),
			target_weight_kg = CASE WHEN $7 THEN NULL ELSE COALESCE($8, target_weight_kg) END,
			timeline_months = CASE WHEN $7 THEN NULL ELSE COALESCE($9, timeline_months) END,
			daily_calories = COALESCE($10, daily_calories),
			daily_protein_g = COALESCE($11, daily_protein_g),
			daily_carbs_g = COALESCE($12, daily_carbs_g),
			daily_fat_g = COALESCE($13, daily_fat_g),
			updated_at = NOW()
		WHERE user_id = $14
		RETURNING ` + profileColumns
	return scanProfile(r.db.QueryRow(ctx, query,
		in.FullName,
		in.Age,
		in.Gender,
		in.HeightCM,
		in.WeightKG,
		in.Goal,
		in.ClearTarget,
		in.TargetWeightKG,
		in.TimelineMonths,
		calories,
		protein,
		carbs,
		fat,
		userID,
	))
}

func (r *ProfileRepository) ActivateSubscription(ctx context.Context, userID int64, endsAt time.Time) (*models.Profile, error) {
	query := `
		UPDATE profiles
		SET is_subscribed = TRUE,
			subscription_ends_at = $1,
			updated_at = NOW()
		WHERE user_id = $2
		RETURNING ` + profileColumns
	return scanProfile(r.db.QueryRow(ctx, query, endsAt, userID))
}

type CompleteOnboardingInput struct {
	Profile        nutrition.Profile
	TargetWeightKG *float64
	TimelineMonths *int
	Plan           nutrition.Plan
}

type UpdateProfileInput struct {
	FullName       *string
	Age            *int
	Gender         *string
	HeightCM       *float64
	WeightKG       *float64
	Goal           *string
	TargetWeightKG *float64
	TimelineMonths *int
	ClearTarget    bool
	Plan           *nutrition.Plan
}
