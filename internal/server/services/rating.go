package services

import "github.com/dmitrijs2005/aviato/internal/server/models"

const (
	goodRatingChange  = 10
	defaultBadPenalty = -10
)

var badRatingPenalties = map[string]int{
	"No response / Ghosted": -15,
	"Rude or disrespectful": -20,
	"Spam messages":         -25,
	"Inappropriate content": -30,
	"One-word answers":      -10,
}

// ratingChange returns the approval rating delta for a rating.
func ratingChange(ratingType, reason string) int {
	if ratingType == models.RatingGood {
		return goodRatingChange
	}
	if p, ok := badRatingPenalties[reason]; ok {
		return p
	}
	return defaultBadPenalty
}
