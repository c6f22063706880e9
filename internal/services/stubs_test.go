package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/saeid-a/NutriScanBack/internal/models"
	"github.com/saeid-a/NutriScanBack/internal/nutrition"
	"github.com/saeid-a/NutriScanBack/internal/repository"
)

func intPtr(v int) *int              { return &v }
func floatPtr(v float64) *float64    { return &v }
func stringPtr(v string) *string     { return &v }
func timePtr(v time.Time) *time.Time { return &v }

// A 1x1 PNG; enough for content sniffing.
var pngImage = []byte{
	0x89, 0x50, 0x4e, 0x47, 0x0d, 0x0a, 0x1a, 0x0a, 0x00, 0x00, 0x00, 0x0d,
	0x49, 0x48, 0x44, 0x52, 0x00, 0x00, 0x00, 0x01, 0x00, 0x00, 0x00, 0x01,
}

type stubProfileRepo struct {
	profile     *models.Profile
	getErr      error
	updateErr   error
	lastUpdate  repository.UpdateProfileInput
	updateCalls int
}

func (s *stubProfileRepo) GetByUserID(_ context.Context, _ int64) (*models.Profile, error) {
	if s.getErr != nil {
		return nil, s.getErr
	}
	if s.profile == nil {
		return nil, pgx.ErrNoRows
	}
	copied := *s.profile
	return &copied, nil
}

func (s *stubProfileRepo) UpdatePartial(_ context.Context, _ int64, in repository.UpdateProfileInput) (*models.Profile, error) {
	s.updateCalls++
	s.lastUpdate = in
	if s.updateErr != nil {
		return nil, s.updateErr
	}
	if in.Plan != nil {
		s.profile.DailyCalories = &in.Plan.DailyCalories
	}
	return s.profile, nil
}

type stubFoodLogRepo struct {
	logs       []models.FoodLog
	created    []repository.CreateFoodLogInput
	lastFrom   time.Time
	lastTo     time.Time
	deleted    *models.FoodLog
	deleteErr  error
	lastDelete uuid.UUID
}

func (s *stubFoodLogRepo) Create(_ context.Context, in repository.CreateFoodLogInput) (*models.FoodLog, error) {
	s.created = append(s.created, in)
	return &models.FoodLog{
		ID:       uuid.New(),
		UserID:   in.UserID,
		FoodName: in.FoodName,
		Calories: in.Calories,
		MealType: in.MealType,
		LoggedAt: in.LoggedAt,
	}, nil
}

func (s *stubFoodLogRepo) ListByUserBetween(_ context.Context, _ int64, from, to time.Time) ([]models.FoodLog, error) {
	s.lastFrom = from
	s.lastTo = to
	return s.logs, nil
}

func (s *stubFoodLogRepo) Delete(_ context.Context, _ int64, id uuid.UUID) (*models.FoodLog, error) {
	s.lastDelete = id
	if s.deleteErr != nil {
		return nil, s.deleteErr
	}
	return s.deleted, nil
}

type stubStorage struct {
	uploadURL    string
	uploadErr    error
	lastFolder   string
	lastFilename string
	deleted      []string
}

func (s *stubStorage) UploadFile(_ context.Context, _ []byte, filename string, folder string) (string, error) {
	s.lastFilename = filename
	s.lastFolder = folder
	if s.uploadErr != nil {
		return "", s.uploadErr
	}
	return s.uploadURL, nil
}

func (s *stubStorage) DeleteFile(_ context.Context, fileURL string) error {
	s.deleted = append(s.deleted, fileURL)
	return nil
}

func (s *stubStorage) GetSignedURL(_ context.Context, fileURL string) (string, error) {
	return fileURL, nil
}

type stubGuard struct {
	labels []string
	err    error
}

func (s *stubGuard) CheckFood(_ context.Context, _ []byte) ([]string, error) {
	return s.labels, s.err
}

type stubClassifier struct {
	analysis *models.FoodAnalysis
	err      error
	calls    int
}

func (s *stubClassifier) Classify(_ context.Context, _ []byte) (*models.FoodAnalysis, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	copied := *s.analysis
	return &copied, nil
}

type stubSuggester struct {
	suggestions   []models.MealSuggestion
	err           error
	lastRemaining nutrition.Remaining
}

func (s *stubSuggester) Suggest(_ context.Context, remaining nutrition.Remaining) ([]models.MealSuggestion, error) {
	s.lastRemaining = remaining
	return s.suggestions, s.err
}

type stubQuota struct {
	limit    int
	used     int
	released []ScanTicket
	day      string
}

func (s *stubQuota) Consume(_ context.Context, userID int64) (ScanTicket, error) {
	if s.used >= s.limit {
		return ScanTicket{Used: s.limit}, ErrQuotaExceeded
	}
	s.used++
	return ScanTicket{Key: fmt.Sprintf("scan_quota:%d:%s", userID, s.day), Used: s.used, Remaining: s.limit - s.used}, nil
}

func (s *stubQuota) Release(_ context.Context, ticket ScanTicket) error {
	s.released = append(s.released, ticket)
	s.used--
	return nil
}
