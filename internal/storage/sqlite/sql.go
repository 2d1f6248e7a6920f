package sqlite

var schema = []string{
	`CREATE TABLE IF NOT EXISTS businesses (
		id            INTEGER PRIMARY KEY AUTOINCREMENT,
		slug          TEXT NOT NULL UNIQUE,
		name          TEXT NOT NULL,
		industry_name TEXT,
		industry_slug TEXT
	)`,
	`CREATE TABLE IF NOT EXISTS reviews (
		id                         INTEGER PRIMARY KEY AUTOINCREMENT,
		review_id                  INTEGER NOT NULL UNIQUE,
		business_id                INTEGER NOT NULL REFERENCES businesses(id),
		user_id                    TEXT,
		created_at                 DATETIME,
		author_display_name        TEXT,
		author                     TEXT,
		author_id                  TEXT,
		review_title               TEXT,
		review_rating              INTEGER,
		review_content             TEXT,
		permalink                  TEXT,
		replied                    BOOLEAN NOT NULL DEFAULT 0,
		nps_rating                 INTEGER,
		source                     TEXT,
		is_reported                BOOLEAN NOT NULL DEFAULT 0,
		author_created_date        DATETIME,
		author_total_reviews_count INTEGER
	)`,
	`CREATE INDEX IF NOT EXISTS idx_reviews_business ON reviews(business_id)`,
	`CREATE TABLE IF NOT EXISTS business_stats (
		id                 INTEGER PRIMARY KEY AUTOINCREMENT,
		business_id        INTEGER NOT NULL UNIQUE REFERENCES businesses(id),
		total_reviews      INTEGER,
		average_rating     REAL,
		trust_index        REAL,
		rating_1_count     INTEGER,
		rating_2_count     INTEGER,
		rating_3_count     INTEGER,
		rating_4_count     INTEGER,
		rating_5_count     INTEGER,
		industry_id        INTEGER,
		industry_ranking   INTEGER,
		review_count_total INTEGER,
		avg_response_time  REAL,
		response_rate      REAL,
		last_updated       DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
	)`,
}

var dropTables = []string{
	`DROP TABLE IF EXISTS business_stats`,
	`DROP TABLE IF EXISTS reviews`,
	`DROP TABLE IF EXISTS businesses`,
}

const insertReviewSQL = `
INSERT INTO reviews
  (review_id, business_id, user_id, created_at, author_display_name, author,
   author_id, review_title, review_rating, review_content, permalink, replied,
   nps_rating, source, is_reported, author_created_date, author_total_reviews_count)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
`

const selectReviewSQL = `
SELECT id, review_id, business_id, user_id, created_at, author_display_name,
       author, author_id, review_title, review_rating, review_content,
       permalink, replied, nps_rating, source, is_reported,
       author_created_date, author_total_reviews_count
FROM reviews
`

const upsertStatsSQL = `
INSERT INTO business_stats
  (business_id, total_reviews, average_rating, trust_index,
   rating_1_count, rating_2_count, rating_3_count, rating_4_count, rating_5_count,
   industry_id, industry_ranking, review_count_total,
   avg_response_time, response_rate, last_updated)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, CURRENT_TIMESTAMP)
ON CONFLICT(business_id) DO UPDATE SET
  total_reviews      = excluded.total_reviews,
  average_rating     = excluded.average_rating,
  trust_index        = excluded.trust_index,
  rating_1_count     = excluded.rating_1_count,
  rating_2_count     = excluded.rating_2_count,
  rating_3_count     = excluded.rating_3_count,
  rating_4_count     = excluded.rating_4_count,
  rating_5_count     = excluded.rating_5_count,
  industry_id        = excluded.industry_id,
  industry_ranking   = excluded.industry_ranking,
  review_count_total = excluded.review_count_total,
  avg_response_time  = excluded.avg_response_time,
  response_rate      = excluded.response_rate,
  last_updated       = CURRENT_TIMESTAMP
`

const selectStatsSQL = `
SELECT bs.id, bs.business_id, bs.total_reviews, bs.average_rating, bs.trust_index,
       bs.rating_1_count, bs.rating_2_count, bs.rating_3_count, bs.rating_4_count, bs.rating_5_count,
       bs.industry_id, bs.industry_ranking, bs.review_count_total,
       bs.avg_response_time, bs.response_rate, bs.last_updated
FROM business_stats bs
`
