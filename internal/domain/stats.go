package domain

import "time"

// BusinessStats is the single summary snapshot per business. Unlike reviews
// it is mutable: each fetch overwrites the prior row (last-write-wins).
// Platform numbers are stored as given; rating counts are not reconciled
// against TotalReviews.
type BusinessStats struct {
	ID         int64
	BusinessID int64

	TotalReviews  int
	AverageRating float64
	TrustIndex    float64

	Rating1Count int
	Rating2Count int
	Rating3Count int
	Rating4Count int
	Rating5Count int

	IndustryID       *int64
	IndustryRanking  *int
	ReviewCountTotal *int
	AvgResponseTime  *float64
	ResponseRate     *float64

	LastUpdated time.Time
}
