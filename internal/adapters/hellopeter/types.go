package hellopeter

import "encoding/json"

// ReviewPage is the envelope returned by
// GET {reviewsBase}/{slug}/reviews?page=N&count=10.
type ReviewPage struct {
	Data     []ReviewItem `json:"data"`
	LastPage int          `json:"last_page"`
}

// ReviewItem is one review as the platform serves it. Fields the platform
// omits decode to zero values; nothing here is required.
type ReviewItem struct {
	ID                int64  `json:"id"`
	UserID            string `json:"user_id"`
	CreatedAt         string `json:"created_at"`
	AuthorDisplayName string `json:"authorDisplayName"`
	Author            string `json:"author"`
	AuthorID          string `json:"author_id"`
	ReviewTitle       string `json:"review_title"`
	ReviewRating      int    `json:"review_rating"`
	ReviewContent     string `json:"review_content"`
	Permalink         string `json:"permalink"`
	Replied           int    `json:"replied"`
	NPSRating         *int   `json:"nps_rating"`
	Source            string `json:"source"`
	IsReported        bool   `json:"is_reported"`

	AuthorCreatedDate       string `json:"author_created_date"`
	AuthorTotalReviewsCount *int   `json:"author_total_reviews_count"`

	// Business identity embedded in review rows; used to derive the
	// business record from the first fetched page.
	BusinessName string `json:"business_name"`
	IndustryName string `json:"industry_name"`
	IndustrySlug string `json:"industry_slug"`
}

// StatsPayload is the envelope returned by GET {statsBase}/{slug}.
// ReviewAverage arrives as a string-encoded decimal ("4.5") but the field is
// kept loose since the platform has shipped numbers there too.
type StatsPayload struct {
	TotalReviews    int           `json:"totalReviews"`
	ReviewAverage   any           `json:"reviewAverage"`
	AvgResponseTime *float64      `json:"avgResponseTime"`
	ResponseRate    *float64      `json:"responseRate"`
	MonthlyStats    MonthlyStats  `json:"monthlyStats"`
	ReviewRatings   ReviewRatings `json:"reviewRatings"`
}

type MonthlyStats struct {
	TrustIndex       float64 `json:"trustIndex"`
	IndustryID       *int64  `json:"industryId"`
	IndustryRanking  *int    `json:"industryRanking"`
	ReviewCountTotal *int    `json:"reviewCountTotal"`
	BusinessName     string  `json:"businessName"`
	IndustryName     string  `json:"industryName"`
	IndustrySlug     string  `json:"industrySlug"`
}

type ReviewRatings struct {
	Rows []RatingRow `json:"rows"`
}

// RatingRow is one [label, count] pair from the rating histogram. Rows that
// are short or carry unexpected types decode to zero values rather than
// failing the envelope.
type RatingRow struct {
	Label string
	Count int
}

func (r *RatingRow) UnmarshalJSON(b []byte) error {
	var raw []any
	if err := json.Unmarshal(b, &raw); err != nil {
		// Malformed row: leave zero values, keep the envelope.
		return nil
	}
	if len(raw) > 0 {
		if s, ok := raw[0].(string); ok {
			r.Label = s
		}
	}
	if len(raw) > 1 {
		if f, ok := raw[1].(float64); ok {
			r.Count = int(f)
		}
	}
	return nil
}
