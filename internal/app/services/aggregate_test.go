package services

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/aggiereview/aggiereview/internal/app/models"
)

func reviews(ratings, difficulties []int, again []bool) []models.Review {
	out := make([]models.Review, len(ratings))
	for i := range ratings {
		out[i] = models.Review{Rating: ratings[i], Difficulty: difficulties[i], WouldTakeAgain: again[i]}
	}
	return out
}

func TestComputeAggregates(t *testing.T) {
	tests := []struct {
		name string
		in   []models.Review
		want models.Aggregates
	}{
		{
			name: "empty set is all zero",
			want: models.Aggregates{},
		},
		{
			name: "mixed reviews",
			in:   reviews([]int{4, 5, 3}, []int{2, 3, 2}, []bool{true, true, false}),
			want: models.Aggregates{AverageRating: 4.0, DifficultyRating: 2.3, WouldTakeAgainPercent: 67, TotalReviews: 3},
		},
		{
			name: "tenths round half up",
			in:   reviews([]int{4, 5, 4, 4}, []int{1, 2, 1, 1}, []bool{true, false, false, false}),
			want: models.Aggregates{AverageRating: 4.3, DifficultyRating: 1.3, WouldTakeAgainPercent: 25, TotalReviews: 4},
		},
		{
			name: "percentage half rounds up",
			in:   reviews([]int{1, 2}, []int{5, 5}, []bool{true, false}),
			want: models.Aggregates{AverageRating: 1.5, DifficultyRating: 5, WouldTakeAgainPercent: 50, TotalReviews: 2},
		},
		{
			name: "one of eight",
			in: reviews([]int{5, 5, 5, 5, 5, 5, 5, 4}, []int{1, 1, 1, 1, 1, 1, 1, 1},
				[]bool{true, false, false, false, false, false, false, false}),
			want: models.Aggregates{AverageRating: 4.9, DifficultyRating: 1, WouldTakeAgainPercent: 13, TotalReviews: 8},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ComputeAggregates(tt.in))
		})
	}
}

func TestRoundHalfUp(t *testing.T) {
	assert.Equal(t, 2.5, roundHalfUp(2.45, 1))
	assert.Equal(t, 3.0, roundHalfUp(2.95, 1))
	assert.Equal(t, 67.0, roundHalfUp(66.666, 0))
}
