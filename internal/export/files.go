// Package export writes fetch results and stored tables to flat files.
package export

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/MatthewGuile/hellopeter-cli/internal/domain"
)

const fileTimestamp = "20060102_150405"

// CSVSink writes per-slug timestamped CSV files. Business identity columns
// lead every row so each file is self-describing.
type CSVSink struct{ Dir string }

func (s CSVSink) Save(ctx context.Context, slug string, info *domain.BusinessInfo, reviews []domain.Review, stats *domain.BusinessStats) error {
	if err := os.MkdirAll(s.Dir, 0o755); err != nil {
		return err
	}
	ts := time.Now().Format(fileTimestamp)

	if len(reviews) > 0 {
		path := filepath.Join(s.Dir, fmt.Sprintf("reviews_%s_%s.csv", slug, ts))
		if err := writeReviewsCSV(path, slug, info, reviews); err != nil {
			return err
		}
		log.Info().Str("file", path).Int("reviews", len(reviews)).Msg("reviews saved to CSV")
	}
	if stats != nil {
		path := filepath.Join(s.Dir, fmt.Sprintf("stats_%s_%s.csv", slug, ts))
		if err := writeStatsCSV(path, slug, info, *stats); err != nil {
			return err
		}
		log.Info().Str("file", path).Msg("business stats saved to CSV")
	}
	return nil
}

// JSONSink writes per-slug timestamped JSON files: business identity,
// reviews, and the extracted stats record.
type JSONSink struct{ Dir string }

func (s JSONSink) Save(ctx context.Context, slug string, info *domain.BusinessInfo, reviews []domain.Review, stats *domain.BusinessStats) error {
	if err := os.MkdirAll(s.Dir, 0o755); err != nil {
		return err
	}
	ts := time.Now().Format(fileTimestamp)

	if info != nil {
		if err := writeJSON(filepath.Join(s.Dir, fmt.Sprintf("business_%s_%s.json", slug, ts)), info); err != nil {
			return err
		}
	}
	if len(reviews) > 0 {
		if err := writeJSON(filepath.Join(s.Dir, fmt.Sprintf("reviews_%s_%s.json", slug, ts)), reviews); err != nil {
			return err
		}
	}
	if stats != nil {
		if err := writeJSON(filepath.Join(s.Dir, fmt.Sprintf("stats_%s_%s.json", slug, ts)), stats); err != nil {
			return err
		}
	}
	return nil
}

func writeJSON(path string, v any) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	enc := json.NewEncoder(f)
	enc.SetIndent("", "    ")
	if err := enc.Encode(v); err != nil {
		return err
	}
	log.Info().Str("file", path).Msg("data saved to JSON")
	return nil
}

// ---- CSV row shaping ----

var businessCols = []string{"business_slug", "business_name", "business_industry_name", "business_industry_slug"}

func businessVals(slug string, info *domain.BusinessInfo) []string {
	name := slug
	var industryName, industrySlug string
	if info != nil {
		name = info.Name
		industryName = deref(info.IndustryName)
		industrySlug = deref(info.IndustrySlug)
	}
	return []string{slug, name, industryName, industrySlug}
}

func writeReviewsCSV(path, slug string, info *domain.BusinessInfo, reviews []domain.Review) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	w := csv.NewWriter(f)

	header := append(append([]string{}, businessCols...),
		"review_id", "user_id", "created_at", "author_display_name", "author",
		"author_id", "review_title", "review_rating", "review_content",
		"permalink", "replied", "nps_rating", "source", "is_reported",
		"author_created_date", "author_total_reviews_count")
	if err := w.Write(header); err != nil {
		return err
	}

	biz := businessVals(slug, info)
	for _, rv := range reviews {
		row := append(append([]string{}, biz...),
			strconv.FormatInt(rv.ReviewID, 10),
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
			fmtIntPtr(rv.AuthorTotalReviewsCount))
		if err := w.Write(row); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}

func writeStatsCSV(path, slug string, info *domain.BusinessInfo, s domain.BusinessStats) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	w := csv.NewWriter(f)

	header := append(append([]string{}, businessCols...),
		"total_reviews", "average_rating", "trust_index",
		"rating_1_count", "rating_2_count", "rating_3_count", "rating_4_count", "rating_5_count",
		"industry_id", "industry_ranking", "review_count_total",
		"avg_response_time", "response_rate")
	if err := w.Write(header); err != nil {
		return err
	}

	row := append(append([]string{}, businessVals(slug, info)...),
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
		fmtFloatPtr(s.ResponseRate))
	if err := w.Write(row); err != nil {
		return err
	}
	w.Flush()
	return w.Error()
}

func deref(p *string) string {
	if p == nil {
		return ""
	}
	return *p
}

func fmtTime(t *time.Time, layout string) string {
	if t == nil {
		return ""
	}
	return t.Format(layout)
}

func fmtIntPtr(p *int) string {
	if p == nil {
		return ""
	}
	return strconv.Itoa(*p)
}

func fmtInt64Ptr(p *int64) string {
	if p == nil {
		return ""
	}
	return strconv.FormatInt(*p, 10)
}

func fmtFloatPtr(p *float64) string {
	if p == nil {
		return ""
	}
	return strconv.FormatFloat(*p, 'f', -1, 64)
}
