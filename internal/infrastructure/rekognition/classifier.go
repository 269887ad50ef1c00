// Package rekognition classifies food photos with Amazon Rekognition.
package rekognition

import (
	"context"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/rekognition"
	"github.com/aws/aws-sdk-go-v2/service/rekognition/types"
	"github.com/nutridiary/backend/internal/domain"
	"github.com/rs/zerolog/log"
)

// detectLabelsAPI is the part of the Rekognition client the classifier uses
type detectLabelsAPI interface {
	DetectLabels(ctx context.Context, params *rekognition.DetectLabelsInput, optFns ...func(*rekognition.Options)) (*rekognition.DetectLabelsOutput, error)
}

// genericLabels say nothing about which food is on the plate
var genericLabels = map[string]bool{
	"food": true, "meal": true, "dish": true, "plate": true, "produce": true, "plant": true,
	"fruit": true, "vegetable": true, "dinner": true, "lunch": true, "breakfast": true,
	"cutlery": true, "tableware": true, "bowl": true, "platter": true, "cuisine": true,
}

// Config holds classifier settings
type Config struct {
	Region        string
	MaxLabels     int
	MinConfidence float64 // 0..1
}

// Classifier is a domain.Classifier over Rekognition DetectLabels
type Classifier struct {
	client        detectLabelsAPI
	maxLabels     int32
	minConfidence float32
}

// NewClassifier loads AWS credentials from the default chain
func NewClassifier(ctx context.Context, cfg Config) (*Classifier, error) {
	awsCfg, err := config.LoadDefaultConfig(ctx, config.WithRegion(cfg.Region))
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}
	return newClassifier(rekognition.NewFromConfig(awsCfg), cfg), nil
}

func newClassifier(client detectLabelsAPI, cfg Config) *Classifier {
	maxLabels := cfg.MaxLabels
	if maxLabels <= 0 {
		maxLabels = 10
	}
	minConfidence := cfg.MinConfidence
	if minConfidence < 0 || minConfidence > 1 {
		minConfidence = 0.5
	}
	return &Classifier{
		client: client,
		// Generic labels are dropped afterwards, so ask for a few more
		maxLabels:     int32(maxLabels * 2),
		minConfidence: float32(minConfidence * 100),
	}
}

// Classify returns specific food labels with confidence in 0..1
func (c *Classifier) Classify(ctx context.Context, image []byte) ([]domain.Prediction, error) {
	out, err := c.client.DetectLabels(ctx, &rekognition.DetectLabelsInput{
		Image:         &types.Image{Bytes: image},
		MaxLabels:     aws.Int32(c.maxLabels),
		MinConfidence: aws.Float32(c.minConfidence),
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrClassifierUnavailable, err)
	}

	predictions := make([]domain.Prediction, 0, len(out.Labels))
	for _, label := range out.Labels {
		name := strings.TrimSpace(aws.ToString(label.Name))
		if name == "" || genericLabels[strings.ToLower(name)] {
			continue
		}
		predictions = append(predictions, domain.Prediction{
			Label:      name,
			Confidence: float64(aws.ToFloat32(label.Confidence)) / 100,
		})
	}

	log.Debug().Str("component", "rekognition").Int("labels", len(out.Labels)).
		Int("kept", len(predictions)).Msg("image classified")
	return predictions, nil
}
