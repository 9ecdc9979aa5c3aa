package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClampRating(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		rating float64
		want   float64
	}{
		{name: "within range", rating: 4.2, want: 4.2},
		{name: "below minimum", rating: 0.3, want: RatingMin},
		{name: "negative", rating: -1, want: RatingMin},
		{name: "above maximum", rating: 5.04, want: RatingMax},
		{name: "exactly min", rating: RatingMin, want: RatingMin},
		{name: "exactly max", rating: RatingMax, want: RatingMax},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tc.want, ClampRating(tc.rating))
		})
	}
}
