package services

import (
	"context"
	"fmt"
	"math"

	"github.com/rs/zerolog"

	"github.com/aggiereview/aggiereview/internal/app/models"
)

// roundHalfUp rounds to the given number of decimals, ties away from zero for
// the non-negative values used here.
func roundHalfUp(x float64, decimals int) float64 {
	scale := math.Pow(10, float64(decimals))
	return math.Floor(x*scale+0.5) / scale
}

// ComputeAggregates derives a professor's statistics from their full review set.
// An empty set yields all zeros.
func ComputeAggregates(reviews []models.Review) models.Aggregates {
	if len(reviews) == 0 {
		return models.Aggregates{}
	}

	var ratingSum, difficultySum, yes int
	for _, r := range reviews {
		ratingSum += r.Rating
		difficultySum += r.Difficulty
		if r.WouldTakeAgain {
			yes++
		}
	}

	n := float64(len(reviews))
	return models.Aggregates{
		AverageRating:         roundHalfUp(float64(ratingSum)/n, 1),
		DifficultyRating:      roundHalfUp(float64(difficultySum)/n, 1),
		WouldTakeAgainPercent: int(roundHalfUp(float64(yes)/n*100, 0)),
		TotalReviews:          len(reviews),
	}
}

type reviewLister interface {
	ListByProfessor(ctx context.Context, professorID string) ([]models.Review, error)
}

type aggregateWriter interface {
	UpdateAggregates(ctx context.Context, id string, agg models.Aggregates) error
}

// AggregateRecomputer refreshes a professor's materialized aggregates
type AggregateRecomputer struct {
	reviews    reviewLister
	professors aggregateWriter
	logger     zerolog.Logger
}

// NewAggregateRecomputer creates a new recomputer
func NewAggregateRecomputer(reviews reviewLister, professors aggregateWriter, logger zerolog.Logger) *AggregateRecomputer {
	return &AggregateRecomputer{
		reviews:    reviews,
		professors: professors,
		logger:     logger,
	}
}

// Recompute reads every review of the professor and writes the four aggregate
// fields back in one update. Concurrent recomputations are last-writer-wins.
func (a *AggregateRecomputer) Recompute(ctx context.Context, professorID string) (models.Aggregates, error) {
	reviews, err := a.reviews.ListByProfessor(ctx, professorID)
	if err != nil {
		return models.Aggregates{}, fmt.Errorf("failed to load reviews for recomputation: %w", err)
	}

	agg := ComputeAggregates(reviews)
	if err := a.professors.UpdateAggregates(ctx, professorID, agg); err != nil {
		return models.Aggregates{}, err
	}

	a.logger.Debug().
		Str("professorID", professorID).
		Float64("averageRating", agg.AverageRating).
		Int("totalReviews", agg.TotalReviews).
		Msg("Professor aggregates recomputed")
	return agg, nil
}
