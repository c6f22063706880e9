package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/rekognition"
	"github.com/aws/aws-sdk-go-v2/service/rekognition/types"
)

// FoodGuard rejects photos that do not show food before they reach storage
// or the classifier.
type FoodGuard interface {
	CheckFood(ctx context.Context, image []byte) ([]string, error)
}

type labelDetector interface {
	DetectLabels(ctx context.Context, params *rekognition.DetectLabelsInput, optFns ...func(*rekognition.Options)) (*rekognition.DetectLabelsOutput, error)
}

var foodLabels = map[string]struct{}{
	"food":       {},
	"meal":       {},
	"dish":       {},
	"bread":      {},
	"curry":      {},
	"dessert":    {},
	"fruit":      {},
	"vegetable":  {},
	"produce":    {},
	"plant":      {},
	"breakfast":  {},
	"lunch":      {},
	"dinner":     {},
	"snack":      {},
	"beverage":   {},
	"drink":      {},
	"rice":       {},
	"noodle":     {},
	"pizza":      {},
	"sandwich":   {},
	"burger":     {},
	"meat":       {},
	"egg":        {},
	"seafood":    {},
	"salad":      {},
	"soup":       {},
	"bowl":       {},
	"plate":      {},
	"cutlery":    {},
	"platter":    {},
	"roti":       {},
	"naan":       {},
	"cuisine":    {},
	"vegetarian": {},
}

type RekognitionFoodGuard struct {
	client        labelDetector
	maxLabels     int32
	minConfidence float32
}

func NewRekognitionFoodGuard(cfg aws.Config) *RekognitionFoodGuard {
	return newRekognitionFoodGuard(rekognition.NewFromConfig(cfg))
}

func newRekognitionFoodGuard(client labelDetector) *RekognitionFoodGuard {
	return &RekognitionFoodGuard{client: client, maxLabels: 10, minConfidence: 70}
}

// CheckFood returns the detected labels, or ErrNotFood when none of them
// relates to food.
func (g *RekognitionFoodGuard) CheckFood(ctx context.Context, image []byte) ([]string, error) {
	out, err := g.client.DetectLabels(ctx, &rekognition.DetectLabelsInput{
		Image:         &types.Image{Bytes: image},
		MaxLabels:     aws.Int32(g.maxLabels),
		MinConfidence: aws.Float32(g.minConfidence),
	})
	if err != nil {
		return nil, fmt.Errorf("detect labels: %w", err)
	}

	labels := make([]string, 0, len(out.Labels))
	food := false
	for _, l := range out.Labels {
		if l.Name == nil {
			continue
		}
		labels = append(labels, *l.Name)
		if _, ok := foodLabels[strings.ToLower(*l.Name)]; ok {
			food = true
		}
		for _, parent := range l.Parents {
			if parent.Name != nil {
				if _, ok := foodLabels[strings.ToLower(*parent.Name)]; ok {
					food = true
				}
			}
		}
	}
	if !food {
		return labels, ErrNotFood
	}
	return labels, nil
}
