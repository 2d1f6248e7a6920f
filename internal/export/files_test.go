package export

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/MatthewGuile/hellopeter-cli/internal/domain"
)

func sampleData() (*domain.BusinessInfo, []domain.Review, *domain.BusinessStats) {
	industry := "Banking"
	title := "Great service"
	created := time.Date(2024, 3, 1, 10, 30, 0, 0, time.UTC)
	info := &domain.BusinessInfo{Slug: "acme-bank", Name: "Acme Bank", IndustryName: &industry}
	reviews := []domain.Review{
		{ReviewID: 101, ReviewRating: 5, ReviewTitle: &title, CreatedAt: &created, Replied: true},
		{ReviewID: 102, ReviewRating: 1},
	}
	stats := &domain.BusinessStats{TotalReviews: 2, AverageRating: 3.0, Rating5Count: 1, Rating1Count: 1}
	return info, reviews, stats
}

func readCSV(t *testing.T, path string) [][]string {
	t.Helper()
	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	rows, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	return rows
}

func globOne(t *testing.T, dir, pattern string) string {
	t.Helper()
	matches, err := filepath.Glob(filepath.Join(dir, pattern))
	require.NoError(t, err)
	require.Len(t, matches, 1)
	return matches[0]
}

func TestCSVSink_Save(t *testing.T) {
	dir := t.TempDir()
	info, reviews, stats := sampleData()

	err := CSVSink{Dir: dir}.Save(context.Background(), "acme-bank", info, reviews, stats)
	require.NoError(t, err)

	rows := readCSV(t, globOne(t, dir, "reviews_acme-bank_*.csv"))
	require.Len(t, rows, 3)

	// Business identity leads every row.
	require.Equal(t, businessCols, rows[0][:4])
	require.Equal(t, []string{"acme-bank", "Acme Bank", "Banking", ""}, rows[1][:4])

	get := func(row []string, col string) string {
		for i, h := range rows[0] {
			if h == col {
				return row[i]
			}
		}
		t.Fatalf("column %q not in header", col)
		return ""
	}
	require.Equal(t, "101", get(rows[1], "review_id"))
	require.Equal(t, "Great service", get(rows[1], "review_title"))
	require.Equal(t, "2024-03-01 10:30:00", get(rows[1], "created_at"))
	require.Equal(t, "true", get(rows[1], "replied"))
	// Absent optionals render empty, not "0" or "null".
	require.Equal(t, "", get(rows[2], "created_at"))
	require.Equal(t, "", get(rows[2], "nps_rating"))

	statRows := readCSV(t, globOne(t, dir, "stats_acme-bank_*.csv"))
	require.Len(t, statRows, 2)
	require.Equal(t, "2", statRows[1][4])  // total_reviews
	require.Equal(t, "3", statRows[1][5])  // average_rating
	require.Equal(t, "1", statRows[1][11]) // rating_5_count
}

func TestCSVSink_SkipsEmptySections(t *testing.T) {
	dir := t.TempDir()
	info, _, _ := sampleData()

	err := CSVSink{Dir: dir}.Save(context.Background(), "acme-bank", info, nil, nil)
	require.NoError(t, err)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Empty(t, entries)
}

func TestJSONSink_Save(t *testing.T) {
	dir := t.TempDir()
	info, reviews, stats := sampleData()

	err := JSONSink{Dir: dir}.Save(context.Background(), "acme-bank", info, reviews, stats)
	require.NoError(t, err)

	var gotInfo domain.BusinessInfo
	raw, err := os.ReadFile(globOne(t, dir, "business_acme-bank_*.json"))
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(raw, &gotInfo))
	require.Equal(t, *info, gotInfo)

	var gotReviews []domain.Review
	raw, err = os.ReadFile(globOne(t, dir, "reviews_acme-bank_*.json"))
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(raw, &gotReviews))
	require.Len(t, gotReviews, 2)
	require.Equal(t, int64(101), gotReviews[0].ReviewID)

	raw, err = os.ReadFile(globOne(t, dir, "stats_acme-bank_*.json"))
	require.NoError(t, err)
	require.True(t, strings.Contains(string(raw), "\n    "), "expected indented output")
	var gotStats domain.BusinessStats
	require.NoError(t, json.Unmarshal(raw, &gotStats))
	require.Equal(t, 2, gotStats.TotalReviews)
}
