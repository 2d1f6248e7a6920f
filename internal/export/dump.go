package export

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/rs/zerolog/log"

	"github.com/MatthewGuile/hellopeter-cli/internal/domain"
)

// DumpTables exports the stored tables to CSV files in dir. When slug is
// non-empty only that business's reviews and stats are written.
func DumpTables(ctx context.Context, store domain.ReviewStore, dir, slug string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}

	businesses, err := store.ListBusinesses(ctx)
	if err != nil {
		return fmt.Errorf("list businesses: %w", err)
	}
	if slug != "" {
		var filtered []domain.Business
		for _, b := range businesses {
			if b.Slug == slug {
				filtered = append(filtered, b)
			}
		}
		businesses = filtered
		if len(businesses) == 0 {
			return fmt.Errorf("business %q: %w", slug, domain.ErrNotFound)
		}
	}

	if err := dumpBusinesses(dir, businesses); err != nil {
		return err
	}
	if err := dumpReviews(ctx, store, dir, slug, businesses); err != nil {
		return err
	}
	return dumpStats(ctx, store, dir, slug, businesses)
}

func dumpBusinesses(dir string, businesses []domain.Business) error {
	path := filepath.Join(dir, "businesses.csv")
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write([]string{"id", "slug", "name", "industry_name", "industry_slug"}); err != nil {
		return err
	}
	for _, b := range businesses {
		row := []string{
			strconv.FormatInt(b.ID, 10), b.Slug, b.Name,
			deref(b.IndustryName), deref(b.IndustrySlug),
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return err
	}
	log.Info().Str("file", path).Int("rows", len(businesses)).Msg("businesses exported")
	return nil
}

func dumpReviews(ctx context.Context, store domain.ReviewStore, dir, slug string, businesses []domain.Business) error {
	name := "reviews.csv"
	if slug != "" {
		name = fmt.Sprintf("reviews_%s.csv", slug)
	}
	path := filepath.Join(dir, name)
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	header := []string{
		"id", "review_id", "business_id", "user_id", "created_at",
		"author_display_name", "author", "author_id", "review_title",
		"review_rating", "review_content", "permalink", "replied",
		"nps_rating", "source", "is_reported", "author_created_date",
		"author_total_reviews_count",
	}
	if err := w.Write(header); err != nil {
		return err
	}

	rows := 0
	for _, b := range businesses {
		// No pagination on export: dump everything for each business.
		reviews, err := store.ListReviews(ctx, b.Slug, 1<<30)
		if err != nil {
			return fmt.Errorf("list reviews for %s: %w", b.Slug, err)
		}
		for _, rv := range reviews {
			row := []string{
				strconv.FormatInt(rv.ID, 10),
				strconv.FormatInt(rv.ReviewID, 10),
				strconv.FormatInt(rv.BusinessID, 10),
				deref(rv.UserID),
				fmtTime(rv.CreatedAt, "2006-01-02 15:04:05"),
				deref(rv.AuthorDisplayName),
				deref(rv.Author),
				deref(rv.AuthorID),
				deref(rv.ReviewTitle),
				strconv.Itoa(rv.ReviewRating),
				deref(rv.ReviewContent),
				deref(rv.Permalink),
				strconv.FormatBool(rv.Replied),
				fmtIntPtr(rv.NPSRating),
				deref(rv.Source),
				strconv.FormatBool(rv.IsReported),
				fmtTime(rv.AuthorCreatedDate, "2006-01-02"),
				fmtIntPtr(rv.AuthorTotalReviewsCount),
			}
			if err := w.Write(row); err != nil {
				return err
			}
			rows++
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return err
	}
	log.Info().Str("file", path).Int("rows", rows).Msg("reviews exported")
	return nil
}

func dumpStats(ctx context.Context, store domain.ReviewStore, dir, slug string, businesses []domain.Business) error {
	name := "business_stats.csv"
	if slug != "" {
		name = fmt.Sprintf("business_stats_%s.csv", slug)
	}
	path := filepath.Join(dir, name)
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	header := []string{
		"business_id", "slug", "name", "total_reviews", "average_rating",
		"trust_index", "rating_1_count", "rating_2_count", "rating_3_count",
		"rating_4_count", "rating_5_count", "industry_id", "industry_ranking",
		"review_count_total", "avg_response_time", "response_rate", "last_updated",
	}
	if err := w.Write(header); err != nil {
		return err
	}

	rows := 0
	for _, b := range businesses {
		s, err := store.GetStats(ctx, b.Slug)
		if errors.Is(err, domain.ErrNotFound) {
			continue
		}
		if err != nil {
			return fmt.Errorf("stats for %s: %w", b.Slug, err)
		}
		row := []string{
			strconv.FormatInt(s.BusinessID, 10), b.Slug, b.Name,
			strconv.Itoa(s.TotalReviews),
			strconv.FormatFloat(s.AverageRating, 'f', -1, 64),
			strconv.FormatFloat(s.TrustIndex, 'f', -1, 64),
			strconv.Itoa(s.Rating1Count),
			strconv.Itoa(s.Rating2Count),
			strconv.Itoa(s.Rating3Count),
			strconv.Itoa(s.Rating4Count),
			strconv.Itoa(s.Rating5Count),
			fmtInt64Ptr(s.IndustryID),
			fmtIntPtr(s.IndustryRanking),
			fmtIntPtr(s.ReviewCountTotal),
			fmtFloatPtr(s.AvgResponseTime),
			fmtFloatPtr(s.ResponseRate),
			s.LastUpdated.Format("2006-01-02 15:04:05"),
		}
		if err := w.Write(row); err != nil {
			return err
		}
		rows++
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return err
	}
	log.Info().Str("file", path).Int("rows", rows).Msg("business stats exported")
	return nil
}
