package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/rs/zerolog/log"

	"github.com/MatthewGuile/hellopeter-cli/internal/domain"
)

// Repo is the SQLite persistence gateway.
type Repo struct{ db *sql.DB }

// Open opens (creating if needed) the database at path and ensures the
// schema exists.
func Open(path string) (*Repo, error) {
	if dir := filepath.Dir(path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create data directory: %w", err)
		}
	}
	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_busy_timeout=5000&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("connect to database: %w", err)
	}
	r := &Repo{db: db}
	if err := r.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("init schema: %w", err)
	}
	return r, nil
}

func (r *Repo) Close() error { return r.db.Close() }

func (r *Repo) migrate() error {
	for _, stmt := range schema {
		if _, err := r.db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}

// Reset drops all three tables and recreates them empty.
func (r *Repo) Reset(ctx context.Context) error {
	for _, stmt := range dropTables {
		if _, err := r.db.ExecContext(ctx, stmt); err != nil {
			return err
		}
	}
	return r.migrate()
}

// dbtx abstracts *sql.DB and *sql.Tx so the write paths work standalone and
// inside SaveBusinessData's transaction.
type dbtx interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// ---- Write paths ----

// GetOrCreateBusiness looks the business up by slug, inserting it if absent.
// Identity fields are first-write-wins: an existing row is returned
// unchanged even if info carries a different name.
func (r *Repo) GetOrCreateBusiness(ctx context.Context, info domain.BusinessInfo) (domain.Business, error) {
	return getOrCreateBusiness(ctx, r.db, info)
}

func getOrCreateBusiness(ctx context.Context, q dbtx, info domain.BusinessInfo) (domain.Business, error) {
	b, err := scanBusiness(q.QueryRowContext(ctx,
		`SELECT id, slug, name, industry_name, industry_slug FROM businesses WHERE slug = ?`, info.Slug))
	if err == nil {
		return b, nil
	}
	if err != sql.ErrNoRows {
		return domain.Business{}, err
	}

	res, err := q.ExecContext(ctx,
		`INSERT INTO businesses (slug, name, industry_name, industry_slug) VALUES (?, ?, ?, ?)`,
		info.Slug, info.Name, info.IndustryName, info.IndustrySlug)
	if err != nil {
		return domain.Business{}, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return domain.Business{}, err
	}
	log.Info().Str("slug", info.Slug).Str("name", info.Name).Msg("created new business")
	return domain.Business{
		ID:           id,
		Slug:         info.Slug,
		Name:         info.Name,
		IndustryName: info.IndustryName,
		IndustrySlug: info.IndustrySlug,
	}, nil
}

// StoreReview inserts the review unless its platform ID is already present,
// in which case the existing row is returned untouched (reviews are
// immutable once recorded). A failed insert reports StoreRejected.
func (r *Repo) StoreReview(ctx context.Context, rv domain.Review) (domain.Review, domain.StoreOutcome, error) {
	return storeReview(ctx, r.db, rv)
}

func storeReview(ctx context.Context, q dbtx, rv domain.Review) (domain.Review, domain.StoreOutcome, error) {
	existing, err := scanReview(q.QueryRowContext(ctx, selectReviewSQL+` WHERE review_id = ?`, rv.ReviewID))
	if err == nil {
		return existing, domain.StoreAlreadyExists, nil
	}
	if err != sql.ErrNoRows {
		return domain.Review{}, domain.StoreRejected, err
	}

	res, err := q.ExecContext(ctx, insertReviewSQL,
		rv.ReviewID, rv.BusinessID, rv.UserID, rv.CreatedAt,
		rv.AuthorDisplayName, rv.Author, rv.AuthorID,
		rv.ReviewTitle, rv.ReviewRating, rv.ReviewContent, rv.Permalink,
		rv.Replied, rv.NPSRating, rv.Source, rv.IsReported,
		rv.AuthorCreatedDate, rv.AuthorTotalReviewsCount)
	if err != nil {
		return domain.Review{}, domain.StoreRejected, err
	}
	rv.ID, err = res.LastInsertId()
	if err != nil {
		return domain.Review{}, domain.StoreRejected, err
	}
	return rv, domain.StoreInserted, nil
}

// StoreStats upserts the stats snapshot keyed by business: all fields are
// overwritten in place, no history retained.
func (r *Repo) StoreStats(ctx context.Context, s domain.BusinessStats) (domain.BusinessStats, error) {
	return storeStats(ctx, r.db, s)
}

func storeStats(ctx context.Context, q dbtx, s domain.BusinessStats) (domain.BusinessStats, error) {
	_, err := q.ExecContext(ctx, upsertStatsSQL,
		s.BusinessID, s.TotalReviews, s.AverageRating, s.TrustIndex,
		s.Rating1Count, s.Rating2Count, s.Rating3Count, s.Rating4Count, s.Rating5Count,
		s.IndustryID, s.IndustryRanking, s.ReviewCountTotal,
		s.AvgResponseTime, s.ResponseRate)
	if err != nil {
		return domain.BusinessStats{}, err
	}
	return scanStats(q.QueryRowContext(ctx, selectStatsSQL+` WHERE bs.business_id = ?`, s.BusinessID))
}

// SaveBusinessData commits one business-level unit of work in a single
// transaction. Reviews that already exist are skipped silently; a hard
// write failure rolls back the whole batch.
func (r *Repo) SaveBusinessData(ctx context.Context, info domain.BusinessInfo, reviews []domain.Review, stats *domain.BusinessStats) (int, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	b, err := getOrCreateBusiness(ctx, tx, info)
	if err != nil {
		return 0, err
	}

	inserted := 0
	for _, rv := range reviews {
		rv.BusinessID = b.ID
		_, outcome, err := storeReview(ctx, tx, rv)
		if err != nil {
			return 0, fmt.Errorf("store review %d: %w", rv.ReviewID, err)
		}
		if outcome == domain.StoreInserted {
			inserted++
		}
	}

	if stats != nil {
		st := *stats
		st.BusinessID = b.ID
		if _, err := storeStats(ctx, tx, st); err != nil {
			return 0, fmt.Errorf("store stats: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, err
	}
	return inserted, nil
}

// ---- Dedup support ----

// ExistingReviewIDs returns the platform IDs already stored for the
// business, or an empty set when the business is unknown.
func (r *Repo) ExistingReviewIDs(ctx context.Context, slug string) (map[int64]struct{}, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT r.review_id FROM reviews r
		JOIN businesses b ON r.business_id = b.id
		WHERE b.slug = ?`, slug)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	ids := make(map[int64]struct{})
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids[id] = struct{}{}
	}
	return ids, rows.Err()
}

// LatestReviewDate returns the newest stored creation timestamp for the
// business's reviews, or nil when there are none.
func (r *Repo) LatestReviewDate(ctx context.Context, slug string) (*time.Time, error) {
	var latest sql.NullTime
	err := r.db.QueryRowContext(ctx, `
		SELECT r.created_at FROM reviews r
		JOIN businesses b ON r.business_id = b.id
		WHERE b.slug = ? AND r.created_at IS NOT NULL
		ORDER BY r.created_at DESC
		LIMIT 1`, slug).Scan(&latest)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if !latest.Valid {
		return nil, nil
	}
	t := latest.Time
	return &t, nil
}

// ---- Read paths ----

func (r *Repo) GetBusiness(ctx context.Context, slug string) (domain.Business, error) {
	b, err := scanBusiness(r.db.QueryRowContext(ctx,
		`SELECT id, slug, name, industry_name, industry_slug FROM businesses WHERE slug = ?`, slug))
	if err == sql.ErrNoRows {
		return domain.Business{}, domain.ErrNotFound
	}
	return b, err
}

func (r *Repo) ListBusinesses(ctx context.Context) ([]domain.Business, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, slug, name, industry_name, industry_slug FROM businesses ORDER BY slug`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Business
	for rows.Next() {
		var b domain.Business
		if err := rows.Scan(&b.ID, &b.Slug, &b.Name, &b.IndustryName, &b.IndustrySlug); err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

func (r *Repo) ListReviews(ctx context.Context, slug string, limit int) ([]domain.Review, error) {
	rows, err := r.db.QueryContext(ctx, selectReviewSQL+`
		WHERE business_id = (SELECT id FROM businesses WHERE slug = ?)
		ORDER BY created_at DESC, review_id DESC
		LIMIT ?`, slug, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Review
	for rows.Next() {
		rv, err := scanReview(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, rv)
	}
	return out, rows.Err()
}

func (r *Repo) GetStats(ctx context.Context, slug string) (domain.BusinessStats, error) {
	s, err := scanStats(r.db.QueryRowContext(ctx, selectStatsSQL+`
		JOIN businesses b ON bs.business_id = b.id
		WHERE b.slug = ?`, slug))
	if err == sql.ErrNoRows {
		return domain.BusinessStats{}, domain.ErrNotFound
	}
	return s, err
}

// ---- row scanning ----

type rowScanner interface{ Scan(dest ...any) error }

func scanBusiness(row rowScanner) (domain.Business, error) {
	var b domain.Business
	err := row.Scan(&b.ID, &b.Slug, &b.Name, &b.IndustryName, &b.IndustrySlug)
	return b, err
}

func scanReview(row rowScanner) (domain.Review, error) {
	var (
		rv        domain.Review
		createdAt sql.NullTime
		authorAt  sql.NullTime
	)
	err := row.Scan(
		&rv.ID, &rv.ReviewID, &rv.BusinessID, &rv.UserID, &createdAt,
		&rv.AuthorDisplayName, &rv.Author, &rv.AuthorID,
		&rv.ReviewTitle, &rv.ReviewRating, &rv.ReviewContent, &rv.Permalink,
		&rv.Replied, &rv.NPSRating, &rv.Source, &rv.IsReported,
		&authorAt, &rv.AuthorTotalReviewsCount)
	if err != nil {
		return domain.Review{}, err
	}
	if createdAt.Valid {
		t := createdAt.Time
		rv.CreatedAt = &t
	}
	if authorAt.Valid {
		t := authorAt.Time
		rv.AuthorCreatedDate = &t
	}
	return rv, nil
}

func scanStats(row rowScanner) (domain.BusinessStats, error) {
	var s domain.BusinessStats
	err := row.Scan(
		&s.ID, &s.BusinessID, &s.TotalReviews, &s.AverageRating, &s.TrustIndex,
		&s.Rating1Count, &s.Rating2Count, &s.Rating3Count, &s.Rating4Count, &s.Rating5Count,
		&s.IndustryID, &s.IndustryRanking, &s.ReviewCountTotal,
		&s.AvgResponseTime, &s.ResponseRate, &s.LastUpdated)
	return s, err
}
