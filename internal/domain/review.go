package domain

import "time"

// Review is a single platform review. ReviewID is the platform-assigned
// identifier and is globally unique across the store; rows are immutable once
// written (a re-fetch of the same ID is a no-op).
type Review struct {
	ID         int64
	ReviewID   int64
	BusinessID int64

	UserID            *string
	CreatedAt         *time.Time
	AuthorDisplayName *string
	Author            *string
	AuthorID          *string
	ReviewTitle       *string
	ReviewRating      int
	ReviewContent     *string
	Permalink         *string
	Replied           bool
	NPSRating         *int
	Source            *string
	IsReported        bool

	AuthorCreatedDate       *time.Time
	AuthorTotalReviewsCount *int
}
