package services

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/saeid-a/NutriScanBack/internal/logger"
	"github.com/saeid-a/NutriScanBack/internal/models"
	"github.com/saeid-a/NutriScanBack/internal/nutrition"
	"github.com/saeid-a/NutriScanBack/internal/repository"
)

type foodLogStore interface {
	Create(ctx context.Context, in repository.CreateFoodLogInput) (*models.FoodLog, error)
	ListByUserBetween(ctx context.Context, userID int64, from, to time.Time) ([]models.FoodLog, error)
	Delete(ctx context.Context, userID int64, id uuid.UUID) (*models.FoodLog, error)
}

type profileReader interface {
	GetByUserID(ctx context.Context, userID int64) (*models.Profile, error)
}

type scanQuota interface {
	Consume(ctx context.Context, userID int64) (ScanTicket, error)
	Release(ctx context.Context, ticket ScanTicket) error
}

var imageExtensions = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/webp": ".webp",
	"image/gif":  ".gif",
}

// ImageExtension returns the file extension for a sniffed image type, or
// false when the content is not a supported image.
func ImageExtension(content []byte) (string, bool) {
	ext, ok := imageExtensions[http.DetectContentType(content)]
	return ext, ok
}

type FoodLogService struct {
	logRepo     foodLogStore
	profileRepo profileReader
	storage     StorageService
	guard       FoodGuard
	classifier  FoodClassifier
	suggester   MealSuggester
	quota       scanQuota
	log         *logger.Logger
	now         func() time.Time
}

type FoodLogDeps struct {
	LogRepo     foodLogStore
	ProfileRepo profileReader
	Storage     StorageService
	Guard       FoodGuard
	Classifier  FoodClassifier
	Suggester   MealSuggester
	Quota       scanQuota
	Log         *logger.Logger
}

func NewFoodLogService(deps FoodLogDeps) *FoodLogService {
	return &FoodLogService{
		logRepo:     deps.LogRepo,
		profileRepo: deps.ProfileRepo,
		storage:     deps.Storage,
		guard:       deps.Guard,
		classifier:  deps.Classifier,
		suggester:   deps.Suggester,
		quota:       deps.Quota,
		log:         deps.Log.With("service", "FoodLogService"),
		now:         time.Now,
	}
}

type ScanResult struct {
	Analysis       *models.FoodAnalysis `json:"analysis"`
	ScansRemaining *int                 `json:"scans_remaining,omitempty"`
}

type DailySummary struct {
	Date           string                      `json:"date"`
	Plan           *nutrition.Plan             `json:"plan"`
	Totals         nutrition.Totals            `json:"totals"`
	Remaining      nutrition.Remaining         `json:"remaining"`
	Progress       float64                     `json:"progress_percent"`
	ByMealType     map[string]nutrition.Totals `json:"by_meal_type"`
	GoalInfeasible bool                        `json:"goal_infeasible"`
	Logs           []models.FoodLog            `json:"logs"`
}

func (s *FoodLogService) profile(ctx context.Context, userID int64) (*models.Profile, error) {
	profile, err := s.profileRepo.GetByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return profile, nil
}

// Scan checks, stores and classifies one food photo. Free users spend one
// scan from the daily quota; the scan is given back if classification
// fails.
func (s *FoodLogService) Scan(ctx context.Context, userID int64, image []byte) (*ScanResult, error) {
	ext, ok := ImageExtension(image)
	if !ok {
		return nil, fmt.Errorf("%w: unsupported image type", ErrInvalidInput)
	}
	if s.classifier == nil {
		return nil, ErrClassifierUnavailable
	}

	profile, err := s.profile(ctx, userID)
	if err != nil {
		return nil, err
	}
	subscribed := profile.SubscriptionActive(s.now())

	var labels []string
	if s.guard != nil {
		labels, err = s.guard.CheckFood(ctx, image)
		if errors.Is(err, ErrNotFood) {
			return nil, err
		}
		if err != nil {
			s.log.Warn("food guard unavailable, continuing", "user_id", userID, "error", err)
		}
	}

	result := &ScanResult{}
	var ticket *ScanTicket
	if !subscribed {
		counted, err := s.quota.Consume(ctx, userID)
		if err != nil {
			return nil, err
		}
		ticket = &counted
		left := counted.Remaining
		result.ScansRemaining = &left
	}

	var imageURL *string
	if s.storage != nil {
		filename := uuid.New().String() + ext
		url, err := s.storage.UploadFile(ctx, image, filename, fmt.Sprintf("food/%d", userID))
		if err != nil {
			s.log.Warn("food photo upload failed", "user_id", userID, "error", err)
		} else {
			imageURL = &url
		}
	}

	analysis, err := s.classifier.Classify(ctx, image)
	if err != nil {
		s.rollbackScan(ctx, userID, ticket, imageURL)
		return nil, err
	}
	analysis.FoodImageURL = imageURL
	analysis.Labels = labels
	result.Analysis = analysis
	return result, nil
}

func (s *FoodLogService) rollbackScan(ctx context.Context, userID int64, ticket *ScanTicket, imageURL *string) {
	if ticket != nil {
		if err := s.quota.Release(ctx, *ticket); err != nil {
			s.log.Warn("release scan quota", "user_id", userID, "error", err)
		}
	}
	if imageURL != nil {
		if err := s.storage.DeleteFile(ctx, *imageURL); err != nil {
			s.log.Warn("delete orphaned food photo", "user_id", userID, "error", err)
		}
	}
}

func (s *FoodLogService) LogFood(ctx context.Context, userID int64, in repository.CreateFoodLogInput) (*models.FoodLog, error) {
	in.UserID = userID
	if in.LoggedAt.IsZero() {
		in.LoggedAt = s.now().UTC()
	}
	return s.logRepo.Create(ctx, in)
}

// ListDay returns the logs of the calendar day starting at dayStart, in
// dayStart's location.
func (s *FoodLogService) ListDay(ctx context.Context, userID int64, dayStart time.Time) ([]models.FoodLog, error) {
	return s.logRepo.ListByUserBetween(ctx, userID, dayStart, dayStart.AddDate(0, 0, 1))
}

func (s *FoodLogService) DeleteLog(ctx context.Context, userID int64, id uuid.UUID) error {
	deleted, err := s.logRepo.Delete(ctx, userID, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrNotFound
		}
		return err
	}
	if deleted.FoodImageURL != nil && s.storage != nil {
		if err := s.storage.DeleteFile(ctx, *deleted.FoodImageURL); err != nil {
			s.log.Warn("delete food photo", "user_id", userID, "food_log_id", id, "error", err)
		}
	}
	return nil
}

// Summary aggregates the day's logs against the stored plan. Without a plan
// the remaining allowance and progress are zero.
func (s *FoodLogService) Summary(ctx context.Context, userID int64, dayStart time.Time) (*DailySummary, error) {
	profile, err := s.profile(ctx, userID)
	if err != nil {
		return nil, err
	}
	logs, err := s.ListDay(ctx, userID, dayStart)
	if err != nil {
		return nil, err
	}

	entries := models.Entries(logs)
	totals := nutrition.Aggregate(entries)
	summary := &DailySummary{
		Date:       dayStart.Format("2006-01-02"),
		Totals:     totals,
		ByMealType: nutrition.ByMealType(entries),
		Logs:       logs,
	}
	if plan, ok := profile.Plan(); ok {
		summary.Plan = &plan
		summary.Remaining = nutrition.RemainingFor(plan, totals)
		summary.Progress = nutrition.ProgressPercent(plan, totals)
		summary.GoalInfeasible = !plan.Feasible()
	}
	return summary, nil
}

func (s *FoodLogService) Suggest(ctx context.Context, userID int64, dayStart time.Time) ([]models.MealSuggestion, nutrition.Remaining, error) {
	if s.suggester == nil {
		return nil, nutrition.Remaining{}, ErrClassifierUnavailable
	}
	summary, err := s.Summary(ctx, userID, dayStart)
	if err != nil {
		return nil, nutrition.Remaining{}, err
	}
	if summary.Plan == nil {
		return nil, nutrition.Remaining{}, ErrOnboardingIncomplete
	}
	suggestions, err := s.suggester.Suggest(ctx, summary.Remaining)
	if err != nil {
		return nil, summary.Remaining, err
	}
	return suggestions, summary.Remaining, nil
}
