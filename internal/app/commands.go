package app

import (
	"context"

	"github.com/rs/zerolog/log"

	"github.com/MatthewGuile/hellopeter-cli/internal/adapters/observability"
	"github.com/MatthewGuile/hellopeter-cli/internal/domain"
)

// Sink receives the per-business fetch result. The store-backed sink commits
// it as one transaction; the flat-file sinks write timestamped files.
type Sink interface {
	Save(ctx context.Context, slug string, info *domain.BusinessInfo, reviews []domain.Review, stats *domain.BusinessStats) error
}

// StoreSink commits fetch results to the relational store.
type StoreSink struct{ Store domain.ReviewStore }

func (s StoreSink) Save(ctx context.Context, slug string, info *domain.BusinessInfo, reviews []domain.Review, stats *domain.BusinessStats) error {
	if info == nil {
		info = domain.MinimalInfo(slug)
	}
	inserted, err := s.Store.SaveBusinessData(ctx, *info, reviews, stats)
	if err != nil {
		return err
	}
	log.Info().Str("slug", slug).Int("reviews", inserted).Msg("saved to database")
	return nil
}

// RunOptions configures one fetch run across a list of business slugs.
type RunOptions struct {
	Businesses   []string
	StartPage    int
	EndPage      int
	StatsOnly    bool
	ReviewsOnly  bool
	ForceRefresh bool
}

// Summary is the per-run report: a run never aborts on a single target's
// failure, so the caller gets counts instead of an error.
type Summary struct {
	Processed  int
	Skipped    int
	NewReviews int
}

// Runner processes businesses strictly one at a time: stats fetch, then
// review pages in order, then a single save. The store is consulted for the
// known-ID set only when saving to the store and not force-refreshing; a nil
// store disables deduplication.
type Runner struct {
	fetch *FetchService
	store domain.ReviewStore
	sink  Sink
}

func NewRunner(f *FetchService, store domain.ReviewStore, sink Sink) *Runner {
	return &Runner{fetch: f, store: store, sink: sink}
}

func (r *Runner) Run(ctx context.Context, opts RunOptions) Summary {
	var sum Summary
	for _, slug := range opts.Businesses {
		log.Info().Str("slug", slug).Msg("processing business")
		newReviews, ok := r.processSlug(ctx, slug, opts)
		if ok {
			sum.Processed++
			sum.NewReviews += newReviews
		} else {
			sum.Skipped++
		}
	}
	log.Info().
		Int("processed", sum.Processed).
		Int("skipped", sum.Skipped).
		Int("new_reviews", sum.NewReviews).
		Msg("fetch run complete")
	return sum
}

func (r *Runner) processSlug(ctx context.Context, slug string, opts RunOptions) (int, bool) {
	var (
		info    *domain.BusinessInfo
		stats   *domain.BusinessStats
		reviews []domain.Review
		fetched bool
	)

	if !opts.ReviewsOnly {
		bi, payload, err := r.fetch.FetchStats(ctx, slug)
		if err != nil {
			log.Error().Str("slug", slug).Err(err).Msg("stats fetch failed, skipping business")
			return 0, false
		}
		if bi != nil {
			fetched = true
			info = bi
			stats = mapStats(payload)
		}
	}

	if !opts.StatsOnly {
		var known map[int64]struct{}
		if r.store != nil && !opts.ForceRefresh {
			var err error
			known, err = r.store.ExistingReviewIDs(ctx, slug)
			if err != nil {
				log.Warn().Str("slug", slug).Err(err).Msg("could not load existing review IDs, fetching without dedup")
				known = nil
			} else if len(known) > 0 {
				ev := log.Info().Str("slug", slug).Int("existing", len(known))
				if latest, err := r.store.LatestReviewDate(ctx, slug); err == nil && latest != nil {
					ev = ev.Time("latest_review", *latest)
				}
				ev.Msg("found existing reviews, fetching only newer ones")
			}
		}

		bi, items, err := r.fetch.FetchReviews(ctx, slug, opts.StartPage, opts.EndPage, known)
		if err != nil {
			log.Error().Str("slug", slug).Err(err).Msg("reviews fetch failed")
			if !fetched {
				return 0, false
			}
		} else if bi == nil && len(items) == 0 {
			if !fetched {
				log.Warn().Str("slug", slug).Msg("no data could be retrieved, skipping business")
				return 0, false
			}
			log.Info().Str("slug", slug).Msg("no new reviews found")
		} else {
			fetched = true
			reviews = mapReviews(items)
			if info == nil {
				info = bi
			}
			observability.ReviewsFetched.WithLabelValues(slug).Add(float64(len(reviews)))
		}
	}

	if !fetched {
		return 0, false
	}
	if info == nil {
		info = domain.MinimalInfo(slug)
	}

	if err := r.sink.Save(ctx, slug, info, reviews, stats); err != nil {
		log.Error().Str("slug", slug).Err(err).Msg("save failed, skipping business")
		return 0, false
	}
	return len(reviews), true
}
