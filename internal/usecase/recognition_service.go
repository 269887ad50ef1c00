package usecase

import (
	"context"
	"sort"
	"strings"

	"github.com/nutridiary/backend/internal/domain"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
)

// Recognition defaults
const (
	DefaultMaxLabels     = 5
	DefaultMinConfidence = 0.3
	maxParallelLookups   = 4
)

// RecognitionConfig holds configuration for the recognition service
type RecognitionConfig struct {
	MaxLabels     int
	MinConfidence float64
}

// RecognitionService turns classifier output into catalog matches with
// portion estimates
type RecognitionService struct {
	classifier    domain.Classifier
	mapper        *LabelMapper
	maxLabels     int
	minConfidence float64
}

// NewRecognitionService creates a recognition service. classifier may be nil,
// in which case only MapLabels is usable.
func NewRecognitionService(classifier domain.Classifier, mapper *LabelMapper, config RecognitionConfig) *RecognitionService {
	maxLabels := config.MaxLabels
	if maxLabels <= 0 {
		maxLabels = DefaultMaxLabels
	}
	minConfidence := config.MinConfidence
	if minConfidence <= 0 || minConfidence > 1 {
		minConfidence = DefaultMinConfidence
	}
	return &RecognitionService{
		classifier:    classifier,
		mapper:        mapper,
		maxLabels:     maxLabels,
		minConfidence: minConfidence,
	}
}

// RecognizeImage classifies an image and maps the confident labels. A failing
// classifier yields no matches rather than an error.
func (s *RecognitionService) RecognizeImage(ctx context.Context, ownerID string, image []byte) ([]domain.LabelMatch, error) {
	if s.classifier == nil {
		return nil, domain.ErrClassifierUnavailable
	}
	if len(image) == 0 {
		return nil, domain.ErrInvalidRequest
	}

	predictions, err := s.classifier.Classify(ctx, image)
	if err != nil {
		log.Warn().Err(err).Str("component", "recognition").Msg("classifier failed, returning no matches")
		return []domain.LabelMatch{}, nil
	}

	return s.MapLabels(ctx, ownerID, s.selectPredictions(predictions))
}

// MapLabels maps predictions to foods concurrently, preserving input order
func (s *RecognitionService) MapLabels(ctx context.Context, ownerID string, predictions []domain.Prediction) ([]domain.LabelMatch, error) {
	matches := make([]domain.LabelMatch, len(predictions))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxParallelLookups)
	for i, p := range predictions {
		i, p := i, p
		g.Go(func() error {
			matches[i] = s.mapper.MapLabelToFood(gctx, p.Label, p.Confidence, ownerID)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return matches, nil
}

// selectPredictions keeps the most confident labels above the threshold,
// one per distinct label
func (s *RecognitionService) selectPredictions(predictions []domain.Prediction) []domain.Prediction {
	sorted := make([]domain.Prediction, 0, len(predictions))
	for _, p := range predictions {
		if strings.TrimSpace(p.Label) == "" || clampConfidence(p.Confidence) < s.minConfidence {
			continue
		}
		sorted = append(sorted, p)
	}
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Confidence > sorted[j].Confidence
	})

	seen := make(map[string]bool, len(sorted))
	out := make([]domain.Prediction, 0, s.maxLabels)
	for _, p := range sorted {
		key := foldText(p.Label)
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, p)
		if len(out) == s.maxLabels {
			break
		}
	}
	return out
}
