package app

import (
	"context"
	"errors"

	"github.com/rs/zerolog/log"

	"github.com/MatthewGuile/hellopeter-cli/internal/adapters/hellopeter"
	"github.com/MatthewGuile/hellopeter-cli/internal/domain"
)

// Client is the slice of the platform client the coordinator needs.
type Client interface {
	TotalPages(ctx context.Context, slug string) (int, error)
	ReviewPage(ctx context.Context, slug string, page int) (hellopeter.ReviewPage, error)
	Stats(ctx context.Context, slug string) (hellopeter.StatsPayload, error)
}

// FetchService drives page-by-page retrieval for one business: it walks pages
// in ascending order (the platform paginates newest-first), filters each page
// against the known-ID set, and decides when further paging is pointless.
type FetchService struct {
	client Client
}

func NewFetchService(c Client) *FetchService {
	return &FetchService{client: c}
}

// FetchReviews retrieves review pages startPage..endPage inclusive.
//
// endPage <= 0 means "consult TotalPages"; a zero total signals a business
// that is unknown or has no reviews, which yields (nil, nil, nil) — not an
// error. Pages are walked strictly in order because the stopping policy
// depends on newest-first ordering:
//
//   - a page with at least one known ID and zero new reviews is assumed to
//     lie entirely inside previously synced territory, so the walk halts;
//   - a mixed page (known and new IDs together) can occur under reordering
//     or concurrent submissions, so the walk continues;
//   - a page with no known IDs continues normally.
//
// A per-page failure aborts the walk but returns everything accumulated so
// far; partial progress is never discarded.
func (s *FetchService) FetchReviews(ctx context.Context, slug string, startPage, endPage int, known map[int64]struct{}) (*domain.BusinessInfo, []hellopeter.ReviewItem, error) {
	if startPage <= 0 {
		startPage = 1
	}
	if endPage <= 0 {
		total, err := s.client.TotalPages(ctx, slug)
		if err != nil {
			return nil, nil, err
		}
		if total == 0 {
			return nil, nil, nil
		}
		endPage = total
	}

	var (
		info *domain.BusinessInfo
		out  []hellopeter.ReviewItem
	)
	for page := startPage; page <= endPage; page++ {
		pg, err := s.client.ReviewPage(ctx, slug, page)
		if err != nil {
			log.Error().Str("slug", slug).Int("page", page).Err(err).
				Msg("review page fetch failed, keeping partial results")
			break
		}

		if info == nil {
			info = businessInfoFromPage(slug, pg)
		}

		if len(known) == 0 {
			out = append(out, pg.Data...)
			continue
		}

		foundExisting := false
		var fresh []hellopeter.ReviewItem
		for _, rv := range pg.Data {
			if _, ok := known[rv.ID]; ok {
				foundExisting = true
			} else {
				fresh = append(fresh, rv)
			}
		}
		out = append(out, fresh...)

		if foundExisting && len(fresh) == 0 {
			log.Info().Str("slug", slug).Int("page", page).
				Msg("reached existing reviews, stopping fetch")
			break
		}
		if foundExisting {
			log.Info().Str("slug", slug).Int("page", page).Int("new", len(fresh)).
				Msg("page mixes known and new reviews, continuing")
		}
	}
	return info, out, nil
}

// FetchStats fetches the stats snapshot and the business identity it embeds.
// Any terminal HTTP outcome (404 included) yields (nil, nil, nil): the run
// continues with remaining targets. Transport failures are returned.
func (s *FetchService) FetchStats(ctx context.Context, slug string) (*domain.BusinessInfo, *hellopeter.StatsPayload, error) {
	payload, err := s.client.Stats(ctx, slug)
	if err != nil {
		if errors.Is(err, hellopeter.ErrNotFound) {
			log.Warn().Str("slug", slug).Msg("business stats not found")
			return nil, nil, nil
		}
		var se *hellopeter.StatusError
		if errors.As(err, &se) {
			log.Error().Str("slug", slug).Int("status", se.Code).Msg("business stats fetch failed")
			return nil, nil, nil
		}
		return nil, nil, err
	}

	info := &domain.BusinessInfo{
		Slug:         slug,
		Name:         payload.MonthlyStats.BusinessName,
		IndustryName: optStr(payload.MonthlyStats.IndustryName),
		IndustrySlug: optStr(payload.MonthlyStats.IndustrySlug),
	}
	if info.Name == "" {
		info.Name = slug
	}
	return info, &payload, nil
}

// businessInfoFromPage derives business identity from the first review on a
// page, or synthesizes a slug-as-name record when the page is empty.
func businessInfoFromPage(slug string, pg hellopeter.ReviewPage) *domain.BusinessInfo {
	if len(pg.Data) == 0 {
		return domain.MinimalInfo(slug)
	}
	first := pg.Data[0]
	info := &domain.BusinessInfo{
		Slug:         slug,
		Name:         first.BusinessName,
		IndustryName: optStr(first.IndustryName),
		IndustrySlug: optStr(first.IndustrySlug),
	}
	if info.Name == "" {
		info.Name = slug
	}
	return info
}

func optStr(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
