package sqlite_test

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/MatthewGuile/hellopeter-cli/internal/domain"
	"github.com/MatthewGuile/hellopeter-cli/internal/storage/sqlite"
)

func openRepo(t *testing.T) *sqlite.Repo {
	t.Helper()
	repo, err := sqlite.Open(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { repo.Close() })
	return repo
}

func mustBusiness(t *testing.T, repo *sqlite.Repo, slug, name string) domain.Business {
	t.Helper()
	b, err := repo.GetOrCreateBusiness(context.Background(), domain.BusinessInfo{Slug: slug, Name: name})
	require.NoError(t, err)
	return b
}

func ptr[T any](v T) *T { return &v }

func TestGetOrCreateBusiness_FirstWriteWins(t *testing.T) {
	repo := openRepo(t)
	ctx := context.Background()

	first, err := repo.GetOrCreateBusiness(ctx, domain.BusinessInfo{
		Slug: "acme-bank", Name: "Acme Bank", IndustryName: ptr("Banking"),
	})
	require.NoError(t, err)
	require.NotZero(t, first.ID)

	// A later fetch carrying a different name must not rename the business.
	second, err := repo.GetOrCreateBusiness(ctx, domain.BusinessInfo{
		Slug: "acme-bank", Name: "ACME BANK LTD",
	})
	require.NoError(t, err)
	require.Equal(t, first.ID, second.ID)
	require.Equal(t, "Acme Bank", second.Name)
	require.NotNil(t, second.IndustryName)
	require.Equal(t, "Banking", *second.IndustryName)
}

func TestStoreReview_Idempotent(t *testing.T) {
	repo := openRepo(t)
	ctx := context.Background()
	b := mustBusiness(t, repo, "acme-bank", "Acme Bank")

	created := time.Date(2024, 3, 1, 10, 30, 0, 0, time.UTC)
	first, outcome, err := repo.StoreReview(ctx, domain.Review{
		ReviewID:    101,
		BusinessID:  b.ID,
		ReviewTitle: ptr("Great service"),
		CreatedAt:   &created,
	})
	require.NoError(t, err)
	require.Equal(t, domain.StoreInserted, outcome)
	require.NotZero(t, first.ID)

	// Same platform ID with a different payload: stored row is untouched.
	second, outcome, err := repo.StoreReview(ctx, domain.Review{
		ReviewID:    101,
		BusinessID:  b.ID,
		ReviewTitle: ptr("Terrible service"),
	})
	require.NoError(t, err)
	require.Equal(t, domain.StoreAlreadyExists, outcome)
	require.Equal(t, first.ID, second.ID)
	require.Equal(t, "Great service", *second.ReviewTitle)

	rows, err := repo.ListReviews(ctx, "acme-bank", 10)
	require.NoError(t, err)
	require.Len(t, rows, 1)
}

func TestStoreStats_OverwriteIdempotent(t *testing.T) {
	repo := openRepo(t)
	ctx := context.Background()
	b := mustBusiness(t, repo, "acme-bank", "Acme Bank")

	_, err := repo.StoreStats(ctx, domain.BusinessStats{
		BusinessID: b.ID, TotalReviews: 10, AverageRating: 3.5, Rating5Count: 4,
	})
	require.NoError(t, err)

	second, err := repo.StoreStats(ctx, domain.BusinessStats{
		BusinessID: b.ID, TotalReviews: 12, AverageRating: 4.5, Rating5Count: 6,
		ResponseRate: ptr(0.8),
	})
	require.NoError(t, err)
	require.Equal(t, 12, second.TotalReviews)

	got, err := repo.GetStats(ctx, "acme-bank")
	require.NoError(t, err)
	require.Equal(t, 12, got.TotalReviews)
	require.Equal(t, 4.5, got.AverageRating)
	require.Equal(t, 6, got.Rating5Count)
	require.NotNil(t, got.ResponseRate)
	require.Equal(t, 0.8, *got.ResponseRate)
}

func TestExistingReviewIDs(t *testing.T) {
	repo := openRepo(t)
	ctx := context.Background()

	// Unknown business yields an empty set, not an error.
	ids, err := repo.ExistingReviewIDs(ctx, "ghost")
	require.NoError(t, err)
	require.Empty(t, ids)

	b := mustBusiness(t, repo, "acme-bank", "Acme Bank")
	for _, id := range []int64{5, 6, 7} {
		_, _, err := repo.StoreReview(ctx, domain.Review{ReviewID: id, BusinessID: b.ID})
		require.NoError(t, err)
	}

	ids, err = repo.ExistingReviewIDs(ctx, "acme-bank")
	require.NoError(t, err)
	require.Len(t, ids, 3)
	_, ok := ids[6]
	require.True(t, ok)
}

func TestLatestReviewDate(t *testing.T) {
	repo := openRepo(t)
	ctx := context.Background()

	latest, err := repo.LatestReviewDate(ctx, "acme-bank")
	require.NoError(t, err)
	require.Nil(t, latest)

	b := mustBusiness(t, repo, "acme-bank", "Acme Bank")
	old := time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC)
	recent := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	for i, ts := range []time.Time{recent, old} {
		_, _, err := repo.StoreReview(ctx, domain.Review{ReviewID: int64(i + 1), BusinessID: b.ID, CreatedAt: &ts})
		require.NoError(t, err)
	}

	latest, err = repo.LatestReviewDate(ctx, "acme-bank")
	require.NoError(t, err)
	require.NotNil(t, latest)
	require.True(t, latest.Equal(recent), "got %v, want %v", latest, recent)
}

func TestSaveBusinessData_UnitOfWork(t *testing.T) {
	repo := openRepo(t)
	ctx := context.Background()

	info := domain.BusinessInfo{Slug: "acme-bank", Name: "Acme Bank"}
	reviews := []domain.Review{
		{ReviewID: 1, ReviewRating: 5},
		{ReviewID: 2, ReviewRating: 4},
	}
	stats := &domain.BusinessStats{TotalReviews: 2, AverageRating: 4.5}

	inserted, err := repo.SaveBusinessData(ctx, info, reviews, stats)
	require.NoError(t, err)
	require.Equal(t, 2, inserted)

	// Overlapping batch: only the unseen review counts.
	inserted, err = repo.SaveBusinessData(ctx, info, []domain.Review{
		{ReviewID: 2, ReviewRating: 1},
		{ReviewID: 3, ReviewRating: 3},
	}, nil)
	require.NoError(t, err)
	require.Equal(t, 1, inserted)

	rows, err := repo.ListReviews(ctx, "acme-bank", 10)
	require.NoError(t, err)
	require.Len(t, rows, 3)

	got, err := repo.GetStats(ctx, "acme-bank")
	require.NoError(t, err)
	require.Equal(t, 2, got.TotalReviews)
}

func TestGetBusiness_NotFound(t *testing.T) {
	repo := openRepo(t)

	_, err := repo.GetBusiness(context.Background(), "ghost")
	require.ErrorIs(t, err, domain.ErrNotFound)

	_, err = repo.GetStats(context.Background(), "ghost")
	require.ErrorIs(t, err, domain.ErrNotFound)
}

func TestReset(t *testing.T) {
	repo := openRepo(t)
	ctx := context.Background()

	b := mustBusiness(t, repo, "acme-bank", "Acme Bank")
	_, _, err := repo.StoreReview(ctx, domain.Review{ReviewID: 1, BusinessID: b.ID})
	require.NoError(t, err)

	require.NoError(t, repo.Reset(ctx))

	businesses, err := repo.ListBusinesses(ctx)
	require.NoError(t, err)
	require.Empty(t, businesses)

	ids, err := repo.ExistingReviewIDs(ctx, "acme-bank")
	require.NoError(t, err)
	require.Empty(t, ids)
}
