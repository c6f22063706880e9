package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/saeid-a/NutriScanBack/internal/nutrition"
)

var MealTypes = []string{"breakfast", "lunch", "dinner", "snack"}

type FoodLog struct {
	ID           uuid.UUID `json:"id"`
	UserID       int64     `json:"user_id"`
	FoodName     string    `json:"food_name"`
	ServingSize  *string   `json:"serving_size"`
	Calories     *float64  `json:"calories"`
	ProteinG     *float64  `json:"protein_g"`
	CarbsG       *float64  `json:"carbs_g"`
	FatG         *float64  `json:"fat_g"`
	FiberG       *float64  `json:"fiber_g"`
	MealType     string    `json:"meal_type"`
	FoodImageURL *string   `json:"food_image_url"`
	LoggedAt     time.Time `json:"logged_at"`
	CreatedAt    time.Time `json:"created_at"`
}

func (l FoodLog) Entry() nutrition.Entry {
	return nutrition.Entry{
		MealType: l.MealType,
		Calories: l.Calories,
		ProteinG: l.ProteinG,
		CarbsG:   l.CarbsG,
		FatG:     l.FatG,
		FiberG:   l.FiberG,
	}
}

func Entries(logs []FoodLog) []nutrition.Entry {
	out := make([]nutrition.Entry, 0, len(logs))
	for _, l := range logs {
		out = append(out, l.Entry())
	}
	return out
}

// FoodAnalysis is the classifier's estimate for one photo.
type FoodAnalysis struct {
	FoodName     string   `json:"food_name"`
	ServingSize  string   `json:"serving_size"`
	Calories     float64  `json:"calories"`
	ProteinG     float64  `json:"protein_g"`
	CarbsG       float64  `json:"carbs_g"`
	FatG         float64  `json:"fat_g"`
	FiberG       float64  `json:"fiber_g"`
	Confidence   string   `json:"confidence"`
	FoodImageURL *string  `json:"food_image_url,omitempty"`
	Labels       []string `json:"labels,omitempty"`
}

type MealSuggestion struct {
	Name        string  `json:"name"`
	Calories    float64 `json:"calories"`
	ProteinG    float64 `json:"protein_g"`
	CarbsG      float64 `json:"carbs_g"`
	FatG        float64 `json:"fat_g"`
	Description string  `json:"description"`
	MealType    string  `json:"meal_type"`
}
