package domain

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound is returned by read paths when the requested row is absent.
var ErrNotFound = errors.New("not found")

// StoreOutcome tags the result of a review write. The three-way distinction
// matters: callers count Inserted rows, skip AlreadyExists rows unchanged,
// and log Rejected rows without aborting the batch.
type StoreOutcome int

const (
	StoreInserted StoreOutcome = iota
	StoreAlreadyExists
	StoreRejected
)

func (o StoreOutcome) String() string {
	switch o {
	case StoreInserted:
		return "inserted"
	case StoreAlreadyExists:
		return "already_exists"
	case StoreRejected:
		return "rejected"
	}
	return "unknown"
}

// ReviewStore is the persistence gateway: idempotent storage of businesses,
// reviews and stats, plus the known-ID set the fetch coordinator needs.
type ReviewStore interface {
	// Write paths
	GetOrCreateBusiness(ctx context.Context, info BusinessInfo) (Business, error)
	StoreReview(ctx context.Context, r Review) (Review, StoreOutcome, error)
	StoreStats(ctx context.Context, s BusinessStats) (BusinessStats, error)

	// SaveBusinessData commits one business-level unit of work in a single
	// transaction: the business row, a batch of reviews, and an optional
	// stats snapshot. Returns the number of newly inserted reviews.
	SaveBusinessData(ctx context.Context, info BusinessInfo, reviews []Review, stats *BusinessStats) (int, error)

	// Dedup support
	ExistingReviewIDs(ctx context.Context, slug string) (map[int64]struct{}, error)
	LatestReviewDate(ctx context.Context, slug string) (*time.Time, error)

	// Read paths
	GetBusiness(ctx context.Context, slug string) (Business, error)
	ListBusinesses(ctx context.Context) ([]Business, error)
	ListReviews(ctx context.Context, slug string, limit int) ([]Review, error)
	GetStats(ctx context.Context, slug string) (BusinessStats, error)

	// Reset drops and recreates the schema. Destroys all stored data.
	Reset(ctx context.Context) error
}
