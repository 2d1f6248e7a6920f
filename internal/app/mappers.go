package app

import (
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/MatthewGuile/hellopeter-cli/internal/adapters/hellopeter"
	"github.com/MatthewGuile/hellopeter-cli/internal/domain"
)

// Platform date layouts.
const (
	createdAtLayout  = "2006-01-02 15:04:05"
	authorDateLayout = "2006-01-02"
)

func mapReviews(items []hellopeter.ReviewItem) []domain.Review {
	out := make([]domain.Review, 0, len(items))
	for _, it := range items {
		out = append(out, mapReview(it))
	}
	return out
}

// mapReview converts one platform review into a store record. Dates are
// parsed defensively: an unparseable value is logged and stored absent,
// never failing the record.
func mapReview(it hellopeter.ReviewItem) domain.Review {
	return domain.Review{
		ReviewID:                it.ID,
		UserID:                  strPtr(it.UserID),
		CreatedAt:               parseDate(it.CreatedAt, createdAtLayout, it.ID, "created_at"),
		AuthorDisplayName:       strPtr(it.AuthorDisplayName),
		Author:                  strPtr(it.Author),
		AuthorID:                strPtr(it.AuthorID),
		ReviewTitle:             strPtr(it.ReviewTitle),
		ReviewRating:            it.ReviewRating,
		ReviewContent:           strPtr(it.ReviewContent),
		Permalink:               strPtr(it.Permalink),
		Replied:                 it.Replied == 1,
		NPSRating:               it.NPSRating,
		Source:                  strPtr(it.Source),
		IsReported:              it.IsReported,
		AuthorCreatedDate:       parseDate(it.AuthorCreatedDate, authorDateLayout, it.ID, "author_created_date"),
		AuthorTotalReviewsCount: it.AuthorTotalReviewsCount,
	}
}

// mapStats flattens the stats envelope into a store record: the rating
// histogram comes from label-tagged rows, the average from a loosely typed
// field. Malformed values default to zero and are logged.
func mapStats(p *hellopeter.StatsPayload) *domain.BusinessStats {
	if p == nil {
		return nil
	}
	s := &domain.BusinessStats{
		TotalReviews:     p.TotalReviews,
		AverageRating:    parseReviewAverage(p.ReviewAverage),
		TrustIndex:       p.MonthlyStats.TrustIndex,
		IndustryID:       p.MonthlyStats.IndustryID,
		IndustryRanking:  p.MonthlyStats.IndustryRanking,
		ReviewCountTotal: p.MonthlyStats.ReviewCountTotal,
		AvgResponseTime:  p.AvgResponseTime,
		ResponseRate:     p.ResponseRate,
	}
	for _, row := range p.ReviewRatings.Rows {
		switch {
		case strings.Contains(row.Label, "1 Star"):
			s.Rating1Count = row.Count
		case strings.Contains(row.Label, "2 Stars"):
			s.Rating2Count = row.Count
		case strings.Contains(row.Label, "3 Stars"):
			s.Rating3Count = row.Count
		case strings.Contains(row.Label, "4 Stars"):
			s.Rating4Count = row.Count
		case strings.Contains(row.Label, "5 Stars"):
			s.Rating5Count = row.Count
		}
	}
	return s
}

// parseReviewAverage accepts the field as string, number, or absent.
// Anything unparseable defaults to 0.0.
func parseReviewAverage(v any) float64 {
	switch x := v.(type) {
	case nil:
		return 0
	case float64:
		return x
	case string:
		t := strings.TrimSpace(x)
		if t == "" {
			return 0
		}
		f, err := strconv.ParseFloat(t, 64)
		if err != nil {
			log.Warn().Str("reviewAverage", x).Msg("could not parse review average, defaulting to 0.0")
			return 0
		}
		return f
	default:
		log.Warn().Interface("reviewAverage", v).Msg("unexpected review average type, defaulting to 0.0")
		return 0
	}
}

func parseDate(s, layout string, reviewID int64, field string) *time.Time {
	if s == "" {
		return nil
	}
	t, err := time.Parse(layout, s)
	if err != nil {
		log.Warn().Int64("review_id", reviewID).Str(field, s).
			Msg("could not parse date, storing absent")
		return nil
	}
	return &t
}

func strPtr(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
